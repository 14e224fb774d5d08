package domain

import (
	"time"

	"github.com/google/uuid"

	sharedDomain "github.com/daybreakhq/daybreak/internal/shared/domain"
)

// Routing keys for planning domain events.
const (
	EventPlanGenerated    = "plan.generated"
	EventItemMoved        = "plan.item.moved"
	EventItemRemoved      = "plan.item.removed"
	EventFeedbackRecorded = "feedback.recorded"
)

// PlanGeneratedEvent is emitted after a planning request commits.
type PlanGeneratedEvent struct {
	sharedDomain.BaseEvent
	UserID      uuid.UUID `json:"user_id"`
	PlanDate    time.Time `json:"plan_date"`
	Scheduled   int       `json:"scheduled"`
	Unscheduled int       `json:"unscheduled"`
}

// NewPlanGeneratedEvent creates a plan.generated event.
func NewPlanGeneratedEvent(plan *Plan, scheduled, unscheduled int) *PlanGeneratedEvent {
	return &PlanGeneratedEvent{
		BaseEvent:   sharedDomain.NewBaseEvent(plan.ID(), "plan", EventPlanGenerated),
		UserID:      plan.UserID(),
		PlanDate:    plan.PlanDate(),
		Scheduled:   scheduled,
		Unscheduled: unscheduled,
	}
}

// ItemMovedEvent is emitted when a user moves or resizes an item.
type ItemMovedEvent struct {
	sharedDomain.BaseEvent
	UserID   uuid.UUID `json:"user_id"`
	TaskID   uuid.UUID `json:"task_id"`
	NewStart time.Time `json:"new_start"`
	NewEnd   time.Time `json:"new_end"`
}

// NewItemMovedEvent creates a plan.item.moved event.
func NewItemMovedEvent(item *PlanItem, userID uuid.UUID) *ItemMovedEvent {
	return &ItemMovedEvent{
		BaseEvent: sharedDomain.NewBaseEvent(item.ID(), "plan_item", EventItemMoved),
		UserID:    userID,
		TaskID:    item.TaskID(),
		NewStart:  item.Start(),
		NewEnd:    item.End(),
	}
}

// ItemRemovedEvent is emitted when a user deletes an item.
type ItemRemovedEvent struct {
	sharedDomain.BaseEvent
	UserID uuid.UUID `json:"user_id"`
	TaskID uuid.UUID `json:"task_id"`
}

// NewItemRemovedEvent creates a plan.item.removed event.
func NewItemRemovedEvent(itemID, userID, taskID uuid.UUID) *ItemRemovedEvent {
	return &ItemRemovedEvent{
		BaseEvent: sharedDomain.NewBaseEvent(itemID, "plan_item", EventItemRemoved),
		UserID:    userID,
		TaskID:    taskID,
	}
}

// FeedbackRecordedEvent is emitted when a feedback log is written.
type FeedbackRecordedEvent struct {
	sharedDomain.BaseEvent
	UserID  uuid.UUID `json:"user_id"`
	Outcome int       `json:"outcome"`
}

// NewFeedbackRecordedEvent creates a feedback.recorded event.
func NewFeedbackRecordedEvent(log *FeedbackLog) *FeedbackRecordedEvent {
	return &FeedbackRecordedEvent{
		BaseEvent: sharedDomain.NewBaseEvent(log.ID(), "feedback_log", EventFeedbackRecorded),
		UserID:    log.UserID(),
		Outcome:   log.Outcome(),
	}
}
