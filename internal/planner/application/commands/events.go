// Package commands contains write operations for the planner context.
package commands

import (
	"context"

	"github.com/google/uuid"

	sharedApplication "github.com/minhle/planwise/internal/shared/application"
	"github.com/minhle/planwise/internal/shared/domain"
	"github.com/minhle/planwise/internal/shared/infrastructure/outbox"
)

// stageEvents converts domain events to outbox messages and saves them in
// the ambient transaction.
func stageEvents(ctx context.Context, repo outbox.Repository, userID uuid.UUID, events []domain.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(userID))

	msgs := make([]*outbox.Message, 0, len(events))
	for _, event := range events {
		msg, err := outbox.NewMessage(event)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	return repo.SaveBatch(ctx, msgs)
}
