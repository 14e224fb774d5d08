// Package domain contains the planning context: tasks, plans and their
// items, feedback logs, and the events they emit.
package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	sharedDomain "github.com/daybreakhq/daybreak/internal/shared/domain"
)

var (
	// ErrTaskNotFound is returned when a task does not exist.
	ErrTaskNotFound = errors.New("task not found")

	// ErrInvalidTitle is returned when a task title is empty.
	ErrInvalidTitle = errors.New("task title cannot be empty")

	// ErrInvalidDuration is returned when a task duration is not positive.
	ErrInvalidDuration = errors.New("task duration must be positive")
)

// TaskStatus tracks where a task stands in the planning lifecycle.
// completed is terminal; the planner and mutator never touch it.
type TaskStatus string

const (
	TaskStatusPending     TaskStatus = "pending"
	TaskStatusScheduled   TaskStatus = "scheduled"
	TaskStatusUnscheduled TaskStatus = "unscheduled"
	TaskStatusCompleted   TaskStatus = "completed"
)

// Category classifies what kind of work a task is.
type Category string

const (
	CategoryStudy    Category = "study"
	CategoryWork     Category = "work"
	CategoryMeeting  Category = "meeting"
	CategoryPersonal Category = "personal"
	CategorySocial   Category = "social"
	CategoryAdmin    Category = "admin"
)

// Importance is the user-declared priority tier of a task.
type Importance string

const (
	ImportanceLow    Importance = "low"
	ImportanceMedium Importance = "medium"
	ImportanceHigh   Importance = "high"
)

// Rank orders importance for allocator sorting: high first.
func (i Importance) Rank() int {
	switch i {
	case ImportanceHigh:
		return 0
	case ImportanceMedium:
		return 1
	default:
		return 2
	}
}

// PreferredTime is the part of day the user wants a task placed in.
type PreferredTime string

const (
	PreferredMorning   PreferredTime = "morning"
	PreferredAfternoon PreferredTime = "afternoon"
	PreferredEvening   PreferredTime = "evening"
	PreferredAnytime   PreferredTime = "anytime"
)

// Energy is the effort level a task demands.
type Energy string

const (
	EnergyLow    Energy = "low"
	EnergyMedium Energy = "medium"
	EnergyHigh   Energy = "high"
)

// Task is a unit of work to be placed on a day plan. Tasks are created by
// an external collaborator; Daybreak only mutates their status.
type Task struct {
	sharedDomain.BaseEntity
	userID          uuid.UUID
	title           string
	description     string
	durationMinutes int
	deadline        time.Time
	category        Category
	importance      Importance
	preferredTime   PreferredTime
	energy          Energy
	status          TaskStatus
}

// NewTask creates a pending task.
func NewTask(
	userID uuid.UUID,
	title, description string,
	durationMinutes int,
	deadline time.Time,
	category Category,
	importance Importance,
	preferredTime PreferredTime,
	energy Energy,
) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrInvalidTitle
	}
	if durationMinutes <= 0 {
		return nil, ErrInvalidDuration
	}

	return &Task{
		BaseEntity:      sharedDomain.NewBaseEntity(),
		userID:          userID,
		title:           title,
		description:     description,
		durationMinutes: durationMinutes,
		deadline:        NormalizeInstant(deadline),
		category:        category,
		importance:      importance,
		preferredTime:   preferredTime,
		energy:          energy,
		status:          TaskStatusPending,
	}, nil
}

// RehydrateTask reconstructs a task from persistence without validation.
func RehydrateTask(
	id, userID uuid.UUID,
	title, description string,
	durationMinutes int,
	deadline time.Time,
	category Category,
	importance Importance,
	preferredTime PreferredTime,
	energy Energy,
	status TaskStatus,
	createdAt, updatedAt time.Time,
) *Task {
	return &Task{
		BaseEntity:      sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt),
		userID:          userID,
		title:           title,
		description:     description,
		durationMinutes: durationMinutes,
		deadline:        deadline,
		category:        category,
		importance:      importance,
		preferredTime:   preferredTime,
		energy:          energy,
		status:          status,
	}
}

func (t *Task) UserID() uuid.UUID            { return t.userID }
func (t *Task) Title() string                { return t.title }
func (t *Task) Description() string          { return t.description }
func (t *Task) DurationMinutes() int         { return t.durationMinutes }
func (t *Task) Deadline() time.Time          { return t.deadline }
func (t *Task) Category() Category           { return t.category }
func (t *Task) Importance() Importance       { return t.importance }
func (t *Task) PreferredTime() PreferredTime { return t.preferredTime }
func (t *Task) Energy() Energy               { return t.energy }
func (t *Task) Status() TaskStatus           { return t.status }

// MarkScheduled records that the task holds at least one plan item.
// Completed tasks are never touched.
func (t *Task) MarkScheduled() {
	if t.status == TaskStatusCompleted {
		return
	}
	t.status = TaskStatusScheduled
	t.Touch()
}

// MarkUnscheduled records that the task could not be placed, or lost its
// last plan item.
func (t *Task) MarkUnscheduled() {
	if t.status == TaskStatusCompleted {
		return
	}
	t.status = TaskStatusUnscheduled
	t.Touch()
}

// NormalizeInstant converts an instant to naive UTC: zone-aware values are
// converted to UTC, and the offset is dropped.
func NormalizeInstant(t time.Time) time.Time {
	return t.UTC()
}

// NormalizeDate truncates an instant to midnight UTC of its day.
func NormalizeDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
