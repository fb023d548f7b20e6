package counter_test

import (
	"context"
	"testing"

	"github.com/Wakkzz12/employee-leave-tracker/internal/shared/counter"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestGetNextValue(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	mock.ExpectQuery("INSERT INTO counters").
		WithArgs(counter.EmployeeNumber).
		WillReturnRows(sqlmock.NewRows([]string{"last_value"}).AddRow(7))

	n, err := counter.NewRepository(gdb).GetNextValue(context.Background(), counter.EmployeeNumber)

	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
	assert.Equal(t, "EMP-000007", counter.FormatEmployeeNumber(n))
	require.NoError(t, mock.ExpectationsWereMet())
}
