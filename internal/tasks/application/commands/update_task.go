package commands

import (
	"context"
	"time"

	"github.com/google/uuid"

	sharedApplication "github.com/minhle/planwise/internal/shared/application"
	"github.com/minhle/planwise/internal/shared/infrastructure/outbox"
	"github.com/minhle/planwise/internal/tasks/application/services"
	"github.com/minhle/planwise/internal/tasks/domain/task"
	"github.com/minhle/planwise/internal/tasks/domain/value_objects"
)

// Updatable field names. Anything outside this set is silently ignored,
// matching the allow-list semantics of the update operation.
const (
	FieldTitle            = "title"
	FieldDescription      = "description"
	FieldStatus           = "status"
	FieldPriority         = "priority"
	FieldStartDate        = "startDate"
	FieldDueDate          = "dueDate"
	FieldCategoryID       = "categoryId"
	FieldTags             = "tags"
	FieldEstimatedMinutes = "estimatedMinutes"
	FieldActualMinutes    = "actualMinutes"
	FieldEnergyLevel      = "energyLevel"
	FieldFocusLevel       = "focusLevel"
)

// UpdateTaskCommand carries a sparse set of field changes for one task.
type UpdateTaskCommand struct {
	UserID  uuid.UUID
	TaskID  uuid.UUID
	Changes map[string]any
}

// UpdateTaskResult contains the result of the update.
type UpdateTaskResult struct {
	AppliedFields []string
	PriorityScore int
	Priority      string
}

// UpdateTaskHandler handles the UpdateTaskCommand.
type UpdateTaskHandler struct {
	taskRepo   task.Repository
	outboxRepo outbox.Repository
	engine     *services.PriorityEngine
	uow        sharedApplication.UnitOfWork
}

// NewUpdateTaskHandler creates a new UpdateTaskHandler.
func NewUpdateTaskHandler(taskRepo task.Repository, outboxRepo outbox.Repository, engine *services.PriorityEngine, uow sharedApplication.UnitOfWork) *UpdateTaskHandler {
	if engine == nil {
		engine = services.NewPriorityEngine()
	}
	return &UpdateTaskHandler{
		taskRepo:   taskRepo,
		outboxRepo: outboxRepo,
		engine:     engine,
		uow:        uow,
	}
}

// Handle executes the UpdateTaskCommand.
func (h *UpdateTaskHandler) Handle(ctx context.Context, cmd UpdateTaskCommand) (*UpdateTaskResult, error) {
	var result *UpdateTaskResult

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		t, err := h.taskRepo.FindByID(txCtx, cmd.TaskID)
		if err != nil {
			return err
		}
		if t.UserID() != cmd.UserID {
			return task.ErrTaskNotFound
		}

		applied, rescore, err := applyChanges(t, cmd.Changes)
		if err != nil {
			return err
		}

		if len(applied) > 0 {
			t.AddDomainEvent(task.NewTaskUpdated(t.ID(), applied))
		}
		if rescore {
			h.engine.Rescore(t)
		}

		if err := h.taskRepo.Save(txCtx, t); err != nil {
			return err
		}

		if err := stageEvents(txCtx, h.outboxRepo, cmd.UserID, t.DomainEvents()); err != nil {
			return err
		}

		result = &UpdateTaskResult{
			AppliedFields: applied,
			PriorityScore: t.PriorityScore(),
			Priority:      t.Priority().String(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// updateOrder fixes the order in which fields are applied. Status goes
// last, so a transition to archived in the same request does not block
// the other changes.
var updateOrder = []string{
	FieldTitle,
	FieldDescription,
	FieldStartDate,
	FieldDueDate,
	FieldCategoryID,
	FieldTags,
	FieldEstimatedMinutes,
	FieldActualMinutes,
	FieldEnergyLevel,
	FieldFocusLevel,
	FieldPriority,
	FieldStatus,
}

// applyChanges applies allow-listed fields and reports whether the score
// inputs (status, due date) changed. Fields outside the allow-list are
// silently ignored.
func applyChanges(t *task.Task, changes map[string]any) (applied []string, rescore bool, err error) {
	for _, field := range updateOrder {
		value, present := changes[field]
		if !present {
			continue
		}
		switch field {
		case FieldTitle:
			title, ok := value.(string)
			if !ok {
				continue
			}
			if err := t.SetTitle(title); err != nil {
				return nil, false, err
			}
		case FieldDescription:
			description, ok := value.(string)
			if !ok {
				continue
			}
			if err := t.SetDescription(description); err != nil {
				return nil, false, err
			}
		case FieldStatus:
			raw, ok := value.(string)
			if !ok {
				continue
			}
			status, err := task.ParseStatus(raw)
			if err != nil {
				return nil, false, err
			}
			if err := t.SetStatus(status); err != nil {
				return nil, false, err
			}
			rescore = true
		case FieldPriority:
			raw, ok := value.(string)
			if !ok {
				continue
			}
			priority, err := value_objects.ParsePriority(raw)
			if err != nil {
				return nil, false, err
			}
			if err := t.SetPriority(priority); err != nil {
				return nil, false, err
			}
		case FieldStartDate:
			start, ok := value.(*time.Time)
			if !ok {
				continue
			}
			if err := t.SetStartDate(start); err != nil {
				return nil, false, err
			}
		case FieldDueDate:
			due, ok := value.(*time.Time)
			if !ok {
				continue
			}
			if err := t.SetDueDate(due); err != nil {
				return nil, false, err
			}
			rescore = true
		case FieldCategoryID:
			categoryID, ok := value.(*uuid.UUID)
			if !ok {
				continue
			}
			if err := t.SetCategory(categoryID); err != nil {
				return nil, false, err
			}
		case FieldTags:
			tags, ok := value.([]string)
			if !ok {
				continue
			}
			if err := t.SetTags(tags); err != nil {
				return nil, false, err
			}
		case FieldEstimatedMinutes:
			minutes, ok := value.(*int)
			if !ok {
				continue
			}
			if err := t.SetEstimatedMinutes(minutes); err != nil {
				return nil, false, err
			}
		case FieldActualMinutes:
			minutes, ok := value.(*int)
			if !ok {
				continue
			}
			if err := t.SetActualMinutes(minutes); err != nil {
				return nil, false, err
			}
		case FieldEnergyLevel:
			level, ok := value.(*int)
			if !ok {
				continue
			}
			if err := t.SetEnergyLevel(level); err != nil {
				return nil, false, err
			}
		case FieldFocusLevel:
			level, ok := value.(*int)
			if !ok {
				continue
			}
			if err := t.SetFocusLevel(level); err != nil {
				return nil, false, err
			}
		}
		applied = append(applied, field)
	}

	return applied, rescore, nil
}
