package dbtx_test

import (
	"context"
	"testing"

	"github.com/Wakkzz12/employee-leave-tracker/internal/shared/dbtx"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestBind_RunsStatementsInsideTransaction(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE counters").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := sqlDB.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	res := dbtx.Bind(gdb, tx).WithContext(context.Background()).Exec("UPDATE counters SET last_value = 0")
	require.NoError(t, res.Error)
	require.NoError(t, tx.Commit())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBind_LeavesRootHandleOnPool(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO counters").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	tx, err := sqlDB.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	bound := dbtx.Bind(gdb, tx)
	require.NoError(t, bound.Exec("INSERT INTO counters (counter_type, last_value) VALUES ('employee', 1)").Error)
	require.NoError(t, tx.Commit())

	assert.NotSame(t, gdb.Statement, bound.Statement)

	var count int64
	require.NoError(t, gdb.Raw("SELECT COUNT(*) FROM counters").Scan(&count).Error)
	assert.Equal(t, int64(1), count)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBind_NilTxReturnsSameHandle(t *testing.T) {
	sqlDB, _, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)

	require.Same(t, gdb, dbtx.Bind(gdb, nil))
}
