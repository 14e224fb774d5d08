// Package application holds the view types shared by the planning commands
// and queries: the assembled plan responses the API adapter serializes.
package application

import (
	"time"

	"github.com/google/uuid"

	"github.com/daybreakhq/daybreak/internal/planning/domain"
)

// ScheduledItemView is one placed item, ready for response assembly.
type ScheduledItemView struct {
	PlanItemID     uuid.UUID
	TaskID         uuid.UUID
	Title          string
	Start          time.Time
	End            time.Time
	Explanation    string
	Priority       float64
	LLMExplanation string
}

// UnscheduledTaskView is a task that is not on the plan, with the reason.
type UnscheduledTaskView struct {
	Task   *domain.Task
	Reason string
}

// PlanView is the assembled response for one plan date.
type PlanView struct {
	ModelVersion    string
	ModelConfidence *float64
	Scheduled       []ScheduledItemView
	Unscheduled     []UnscheduledTaskView
}

// CalendarDayView is one day in a calendar range response.
type CalendarDayView struct {
	PlanDate     time.Time
	ModelVersion string
	Summary      string
	Scheduled    []ScheduledItemView
}

// CalendarView is the calendar range response.
type CalendarView struct {
	Days []CalendarDayView
}

// FeedbackView is one feedback log entry for listing.
type FeedbackView struct {
	ID        uuid.UUID
	TaskID    *uuid.UUID
	Outcome   int
	Note      string
	CreatedAt time.Time
}
