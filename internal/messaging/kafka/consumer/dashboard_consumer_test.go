package consumer

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/Wakkzz12/employee-leave-tracker/internal/events"
	"github.com/Wakkzz12/employee-leave-tracker/internal/shared/cache"

	"github.com/go-redis/redismock/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// sliceReader serves msgs in order and then cancels the consumer.
type sliceReader struct {
	msgs      []kafkago.Message
	cancel    context.CancelFunc
	committed []int64
}

func (r *sliceReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	if len(r.msgs) == 0 {
		r.cancel()
		<-ctx.Done()
		return kafkago.Message{}, ctx.Err()
	}
	m := r.msgs[0]
	r.msgs = r.msgs[1:]
	return m, nil
}

func (r *sliceReader) CommitMessages(_ context.Context, msgs ...kafkago.Message) error {
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func withHeader(offset int64, eventType string) kafkago.Message {
	return kafkago.Message{
		Offset:  offset,
		Headers: []kafkago.Header{{Key: "event_type", Value: []byte(eventType)}},
		Value:   []byte(`{}`),
	}
}

func TestConsumeDashboardInvalidation(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	mock.ExpectDel(cache.DashboardKey).SetVal(1)
	mock.ExpectDel(cache.DashboardKey, cache.EmployeeOptionsKey).SetVal(2)
	mock.ExpectDel(cache.DashboardKey).SetVal(0)

	bodyOnly, _ := json.Marshal(events.LeaveCreatedEvent{EventType: events.LeaveCreated})

	ctx, cancel := context.WithCancel(context.Background())
	reader := &sliceReader{
		cancel: cancel,
		msgs: []kafkago.Message{
			withHeader(1, events.LeaveStatusChanged),
			withHeader(2, events.EmployeeCreated),
			withHeader(3, "payroll_generated"),
			{Offset: 4, Value: bodyOnly},
			{Offset: 5, Value: []byte("not json")},
		},
	}

	ConsumeDashboardInvalidation(ctx, reader, rdb, zap.NewNop())

	assert.Equal(t, []int64{1, 2, 3, 4, 5}, reader.committed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKeysFor(t *testing.T) {
	assert.Equal(t, []string{cache.DashboardKey}, keysFor(events.LeaveCreated))
	assert.Equal(t, []string{cache.DashboardKey, cache.EmployeeOptionsKey}, keysFor(events.EmployeeCreated))
	assert.Nil(t, keysFor("unknown"))
}
