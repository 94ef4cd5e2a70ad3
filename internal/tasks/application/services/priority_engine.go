// Package services contains domain services for the tasks context.
package services

import (
	"time"

	"github.com/minhle/planwise/internal/tasks/domain/task"
	"github.com/minhle/planwise/internal/tasks/domain/value_objects"
)

// Deadline score contributions by day distance.
const (
	scoreOverdue    = 50
	scoreDueToday   = 40
	scoreDueIn1Day  = 35
	scoreDueIn2Days = 30
	scoreDueSoon    = 20 // 3-5 days out
	scoreDueLater   = 10 // 6-10 days out
	scoreDueFar     = 5  // more than 10 days out

	bonusInProgress = 10
	bonusTodo       = 5
)

// PriorityEngine computes priority scores and tiers. The only
// time-dependent input is "today" truncated to day granularity, so two
// calls within the same calendar day with unchanged inputs agree.
type PriorityEngine struct {
	now func() time.Time
}

// NewPriorityEngine creates a priority engine using the wall clock.
func NewPriorityEngine() *PriorityEngine {
	return &PriorityEngine{now: time.Now}
}

// NewPriorityEngineWithClock creates a priority engine with an injected
// clock for deterministic tests.
func NewPriorityEngineWithClock(now func() time.Time) *PriorityEngine {
	return &PriorityEngine{now: now}
}

// Score computes the urgency score for a task. Done tasks always score 0.
func (e *PriorityEngine) Score(t *task.Task) int {
	if t.IsDone() {
		return 0
	}

	score := 0

	if due := t.DueDate(); due != nil {
		diffDays := daysBetween(startOfDay(e.now()), startOfDay(*due))
		switch {
		case diffDays < 0:
			score += scoreOverdue
		case diffDays == 0:
			score += scoreDueToday
		case diffDays == 1:
			score += scoreDueIn1Day
		case diffDays == 2:
			score += scoreDueIn2Days
		case diffDays <= 5:
			score += scoreDueSoon
		case diffDays <= 10:
			score += scoreDueLater
		default:
			score += scoreDueFar
		}
	}

	// Statuses other than todo/in_progress contribute no bonus.
	switch t.Status() {
	case task.StatusInProgress:
		score += bonusInProgress
	case task.StatusTodo:
		score += bonusTodo
	}

	return score
}

// Classify maps a score onto its priority tier.
func (e *PriorityEngine) Classify(score int) value_objects.Priority {
	return value_objects.PriorityFromScore(score)
}

// ScoreAndClassify computes both score and tier in one call.
func (e *PriorityEngine) ScoreAndClassify(t *task.Task) (int, value_objects.Priority) {
	score := e.Score(t)
	return score, e.Classify(score)
}

// Rescore recomputes and applies the task's score and tier, stamping the
// calculation time.
func (e *PriorityEngine) Rescore(t *task.Task) {
	score, priority := e.ScoreAndClassify(t)
	t.ApplyScore(score, priority, e.now())
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
