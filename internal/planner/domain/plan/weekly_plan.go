// Package plan contains the weekly plan aggregate.
package plan

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/minhle/planwise/internal/shared/domain"
)

var (
	// ErrPlanLocked is returned when mutating a plan that has been closed.
	ErrPlanLocked = errors.New("weekly plan is locked")

	// ErrInvalidWeek is returned for week numbers outside 1-53 or a
	// non-positive year.
	ErrInvalidWeek = errors.New("week must be between 1 and 53")
)

// WeeklyPlan binds a user to exactly one planning week and the tasks
// they intend to work on that week.
type WeeklyPlan struct {
	domain.BaseAggregateRoot
	userID         uuid.UUID
	week           domain.WeekRef
	taskIDs        []uuid.UUID
	targetTasks    int
	completedTasks int
	locked         bool
	notes          string
}

// NewWeeklyPlan creates a plan for the given week, seeded with the given
// tasks. Target count is derived from the seed.
func NewWeeklyPlan(userID uuid.UUID, year, week int, seedTaskIDs []uuid.UUID) (*WeeklyPlan, error) {
	ref, err := domain.NewWeekRef(year, week)
	if err != nil {
		return nil, ErrInvalidWeek
	}

	p := &WeeklyPlan{
		BaseAggregateRoot: domain.NewBaseAggregateRoot(),
		userID:            userID,
		week:              ref,
		taskIDs:           append([]uuid.UUID(nil), seedTaskIDs...),
		targetTasks:       len(seedTaskIDs),
	}

	p.AddDomainEvent(NewPlanCreated(p.ID(), ref.Year(), ref.Week(), len(seedTaskIDs)))

	return p, nil
}

func (p *WeeklyPlan) UserID() uuid.UUID       { return p.userID }
func (p *WeeklyPlan) WeekRef() domain.WeekRef { return p.week }
func (p *WeeklyPlan) Year() int               { return p.week.Year() }
func (p *WeeklyPlan) Week() int               { return p.week.Week() }
func (p *WeeklyPlan) TargetTasks() int        { return p.targetTasks }
func (p *WeeklyPlan) CompletedTasks() int     { return p.completedTasks }
func (p *WeeklyPlan) Locked() bool            { return p.locked }
func (p *WeeklyPlan) Notes() string           { return p.notes }

// TaskIDs returns the member task ids in plan order.
func (p *WeeklyPlan) TaskIDs() []uuid.UUID {
	return append([]uuid.UUID(nil), p.taskIDs...)
}

// Contains reports whether the task is a member of the plan.
func (p *WeeklyPlan) Contains(taskID uuid.UUID) bool {
	for _, id := range p.taskIDs {
		if id == taskID {
			return true
		}
	}
	return false
}

// AddTask appends a task to the plan. Adding a member that is already
// present is a no-op apart from re-deriving the target count.
func (p *WeeklyPlan) AddTask(taskID uuid.UUID) error {
	if p.locked {
		return ErrPlanLocked
	}

	if !p.Contains(taskID) {
		p.taskIDs = append(p.taskIDs, taskID)
		p.AddDomainEvent(NewPlanTaskAdded(p.ID(), taskID))
	}
	p.targetTasks = len(p.taskIDs)
	p.Touch()
	return nil
}

// Close records the completed count and locks the plan. Locking is one-way:
// closing an already locked plan fails.
func (p *WeeklyPlan) Close(completedTasks int) error {
	if p.locked {
		return ErrPlanLocked
	}

	p.completedTasks = completedTasks
	p.locked = true
	p.Touch()
	p.AddDomainEvent(NewPlanClosed(p.ID(), p.week.Year(), p.week.Week(), completedTasks, p.targetTasks))
	return nil
}

// SetNotes updates the free-form notes while the plan is open.
func (p *WeeklyPlan) SetNotes(notes string) error {
	if p.locked {
		return ErrPlanLocked
	}
	p.notes = strings.TrimSpace(notes)
	p.Touch()
	return nil
}

// State carries a plan's persisted fields for rehydration.
type State struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	Year           int
	Week           int
	TaskIDs        []uuid.UUID
	TargetTasks    int
	CompletedTasks int
	Locked         bool
	Notes          string
	Version        int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Rehydrate reconstructs a plan from persisted state without emitting events.
func Rehydrate(s State) *WeeklyPlan {
	return &WeeklyPlan{
		BaseAggregateRoot: domain.RehydrateBaseAggregateRoot(
			domain.RehydrateBaseEntity(s.ID, s.CreatedAt, s.UpdatedAt),
			s.Version,
		),
		userID:         s.UserID,
		week:           domain.RehydrateWeekRef(s.Year, s.Week),
		taskIDs:        s.TaskIDs,
		targetTasks:    s.TargetTasks,
		completedTasks: s.CompletedTasks,
		locked:         s.Locked,
		notes:          s.Notes,
	}
}
