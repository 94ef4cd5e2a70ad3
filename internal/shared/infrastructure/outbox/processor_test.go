package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	published map[string][][]byte
	err       error
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{published: make(map[string][][]byte)}
}

func (f *fakePublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	if f.err != nil {
		return f.err
	}
	f.published[routingKey] = append(f.published[routingKey], payload)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

func newTestMessage(routingKey string) *Message {
	return &Message{
		EventID:       uuid.New(),
		AggregateType: "task",
		AggregateID:   uuid.New(),
		EventType:     routingKey,
		RoutingKey:    routingKey,
		Payload:       []byte(`{"title":"write report"}`),
		CreatedAt:     time.Now(),
	}
}

func TestProcessorPublishesUnpublishedMessages(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	publisher := newFakePublisher()
	processor := NewProcessor(repo, publisher, DefaultProcessorConfig(), nil)

	msg := newTestMessage("tasks.task.created")
	require.NoError(t, repo.Save(ctx, msg))

	require.NoError(t, processor.ProcessOnce(ctx))

	assert.Len(t, publisher.published["tasks.task.created"], 1)
	assert.True(t, msg.IsPublished())

	stats := processor.GetStats()
	assert.Equal(t, uint64(1), stats.PublishedCount)
}

func TestProcessorRetriesFailedMessages(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	publisher := newFakePublisher()
	publisher.err = errors.New("broker unavailable")
	processor := NewProcessor(repo, publisher, DefaultProcessorConfig(), nil)

	msg := newTestMessage("tasks.task.completed")
	require.NoError(t, repo.Save(ctx, msg))

	require.NoError(t, processor.ProcessOnce(ctx))

	assert.False(t, msg.IsPublished())
	assert.Equal(t, 1, msg.RetryCount)
	require.NotNil(t, msg.LastError)
	assert.Equal(t, "broker unavailable", *msg.LastError)
	require.NotNil(t, msg.NextRetryAt)

	// Backoff postpones the retry, so an immediate second pass skips it.
	require.NoError(t, processor.ProcessOnce(ctx))
	assert.Equal(t, 1, msg.RetryCount)
}

func TestProcessorDeadLettersAfterMaxRetries(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	publisher := newFakePublisher()
	publisher.err = errors.New("broker unavailable")

	config := DefaultProcessorConfig()
	config.MaxRetries = 1
	processor := NewProcessor(repo, publisher, config, nil)

	msg := newTestMessage("planner.plan.closed")
	require.NoError(t, repo.Save(ctx, msg))

	require.NoError(t, processor.ProcessOnce(ctx))

	require.NotNil(t, msg.DeadLetteredAt)
	require.NotNil(t, msg.DeadLetterReason)
	assert.Equal(t, "broker unavailable", *msg.DeadLetterReason)

	stats := processor.GetStats()
	assert.Equal(t, uint64(1), stats.DeadCount)
}

func TestProcessorStartStop(t *testing.T) {
	repo := NewInMemoryRepository()
	publisher := newFakePublisher()

	config := DefaultProcessorConfig()
	config.PollInterval = 10 * time.Millisecond
	processor := NewProcessor(repo, publisher, config, nil)

	require.NoError(t, processor.Start(context.Background()))
	assert.True(t, processor.IsRunning())

	processor.Stop()
	assert.False(t, processor.IsRunning())
}

func TestRetryBackoffIsCapped(t *testing.T) {
	processor := NewProcessor(NewInMemoryRepository(), newFakePublisher(), DefaultProcessorConfig(), nil)

	assert.Equal(t, time.Second, processor.retryBackoff(1))
	assert.Equal(t, 2*time.Second, processor.retryBackoff(2))
	assert.Equal(t, 4*time.Second, processor.retryBackoff(3))
	assert.Equal(t, time.Minute, processor.retryBackoff(10))
	assert.Equal(t, time.Minute, processor.retryBackoff(100))
}
