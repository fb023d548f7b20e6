package kafka_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/Wakkzz12/employee-leave-tracker/internal/events"
	"github.com/Wakkzz12/employee-leave-tracker/internal/messaging/kafka"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOutboxEvent(t *testing.T) {
	ev, err := kafka.NewOutboxEvent("rid-1", "leave_request", "lr-1", events.LeaveStatusChanged, events.LeaveLifecycleTopic,
		events.LeaveStatusChangedEvent{EventType: events.LeaveStatusChanged, LeaveRequestID: "lr-1"})
	require.NoError(t, err)

	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, kafka.OutboxStatusPending, ev.Status)
	assert.NoError(t, kafka.ValidateOutboxEvent(ev))

	var decoded events.Header
	require.NoError(t, json.Unmarshal(ev.Payload, &decoded))
	assert.Equal(t, events.LeaveStatusChanged, decoded.EventType)
}

func TestOutboxRepository_CreateUsesTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ev, err := kafka.NewOutboxEvent("rid", "employee", "e-1", events.EmployeeCreated, events.EmployeeLifecycleTopic, map[string]string{"a": "b"})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO outbox_events").
		WithArgs(ev.ID, "rid", "employee", "e-1", events.EmployeeCreated, events.EmployeeLifecycleTopic, ev.Payload, kafka.OutboxStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, kafka.NewOutboxRepository(db).WithTx(tx).Create(context.Background(), ev))
	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_CreateRejectsInvalid(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	err = kafka.NewOutboxRepository(db).Create(context.Background(), kafka.OutboxEvent{ID: "x"})
	assert.EqualError(t, err, "outbox topic is required")
}

func TestOutboxRepository_ListPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	cols := []string{"id", "request_id", "aggregate_type", "aggregate_id", "event_type", "topic", "payload", "status", "retry_count", "next_retry_at"}
	mock.ExpectQuery("SELECT (.+) FROM outbox_events").
		WithArgs(kafka.OutboxStatusPending, kafka.OutboxStatusFailed, 50).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			"o-1", "rid", "leave_request", "lr-1", events.LeaveCreated, events.LeaveLifecycleTopic,
			[]byte(`{"event_type":"leave_created"}`), kafka.OutboxStatusFailed, 2, now,
		))

	pending, err := kafka.NewOutboxRepository(db).ListPending(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "rid", pending[0].RequestID)
	assert.Equal(t, 2, pending[0].RetryCount)
	assert.Equal(t, now, pending[0].NextRetryAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_MarkFailedParksAfterMaxRetries(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE outbox_events").
		WithArgs("o-1", kafka.OutboxStatusFailed, "broker down", kafka.MaxOutboxRetries, kafka.OutboxStatusDead).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, kafka.NewOutboxRepository(db).MarkFailed(context.Background(), "o-1", "broker down"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_PurgeSent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cutoff := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec("DELETE FROM outbox_events").
		WithArgs(kafka.OutboxStatusSent, cutoff).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := kafka.NewOutboxRepository(db).PurgeSent(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	require.NoError(t, mock.ExpectationsWereMet())
}
