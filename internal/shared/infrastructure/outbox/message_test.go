package outbox

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhle/planwise/internal/shared/domain"
)

type stubEvent struct {
	domain.BaseEvent
	Title string `json:"title"`
}

func TestNewMessage(t *testing.T) {
	aggregateID := uuid.New()
	event := &stubEvent{
		BaseEvent: domain.NewBaseEvent(aggregateID, "task", "tasks.task.created"),
		Title:     "prepare slides",
	}
	event.SetMetadata(domain.EventMetadata{
		CorrelationID: uuid.New(),
		UserID:        uuid.New(),
	})

	msg, err := NewMessage(event)
	require.NoError(t, err)

	assert.Equal(t, event.EventID(), msg.EventID)
	assert.Equal(t, "task", msg.AggregateType)
	assert.Equal(t, aggregateID, msg.AggregateID)
	assert.Equal(t, "tasks.task.created", msg.RoutingKey)
	assert.Equal(t, "tasks.task.created", msg.EventType)
	assert.JSONEq(t, `{"title":"prepare slides"}`, string(msg.Payload))
	assert.NotEmpty(t, msg.Metadata)
	assert.False(t, msg.IsPublished())
}

func TestMessageCanRetry(t *testing.T) {
	msg := &Message{RetryCount: 2}

	assert.True(t, msg.CanRetry(5))
	assert.False(t, msg.CanRetry(2))
	assert.False(t, msg.CanRetry(0))
}
