package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidOutcome is returned when a feedback outcome is not +1 or -1.
var ErrInvalidOutcome = errors.New("feedback outcome must be +1 or -1")

// ManualAdjustmentNote is recorded when feedback originates from a user
// moving an item by hand.
const ManualAdjustmentNote = "User manually adjusted schedule"

// FeedbackLog is one observation of user preference: +1 means the user
// moved an item earlier or rated it higher, -1 later or lower. Logs are
// immutable once written.
type FeedbackLog struct {
	id        uuid.UUID
	userID    uuid.UUID
	taskID    uuid.NullUUID
	outcome   int
	note      string
	createdAt time.Time
}

// NewFeedbackLog records a feedback observation.
func NewFeedbackLog(userID uuid.UUID, taskID uuid.NullUUID, outcome int, note string) (*FeedbackLog, error) {
	if outcome != 1 && outcome != -1 {
		return nil, ErrInvalidOutcome
	}
	return &FeedbackLog{
		id:        uuid.New(),
		userID:    userID,
		taskID:    taskID,
		outcome:   outcome,
		note:      note,
		createdAt: time.Now().UTC(),
	}, nil
}

// RehydrateFeedbackLog reconstructs a log entry from persistence.
func RehydrateFeedbackLog(id, userID uuid.UUID, taskID uuid.NullUUID, outcome int, note string, createdAt time.Time) *FeedbackLog {
	return &FeedbackLog{
		id:        id,
		userID:    userID,
		taskID:    taskID,
		outcome:   outcome,
		note:      note,
		createdAt: createdAt,
	}
}

func (f *FeedbackLog) ID() uuid.UUID         { return f.id }
func (f *FeedbackLog) UserID() uuid.UUID     { return f.userID }
func (f *FeedbackLog) TaskID() uuid.NullUUID { return f.taskID }
func (f *FeedbackLog) Outcome() int          { return f.outcome }
func (f *FeedbackLog) Note() string          { return f.note }
func (f *FeedbackLog) CreatedAt() time.Time  { return f.createdAt }

// FeedbackWithTask pairs a log entry with its linked task, eagerly fetched
// for the learner. Task is nil when the log has no task reference.
type FeedbackWithTask struct {
	Log  *FeedbackLog
	Task *Task
}
