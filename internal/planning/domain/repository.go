package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TaskRepository provides access to stored tasks.
type TaskRepository interface {
	// Save persists a task (insert or update).
	Save(ctx context.Context, task *Task) error

	// FindByID retrieves a task by identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Task, error)

	// FindByIDs retrieves multiple tasks keyed by id.
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Task, error)

	// FindEligible returns the user's tasks with status pending or
	// unscheduled and deadline within [from, to].
	FindEligible(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*Task, error)

	// FindUnscheduled returns the user's unscheduled tasks with deadline at
	// or after the given instant.
	FindUnscheduled(ctx context.Context, userID uuid.UUID, deadlineAfter time.Time) ([]*Task, error)
}

// PlanRepository provides access to plans and their items.
type PlanRepository interface {
	// Save persists a plan and all of its items (insert or update;
	// orphaned item rows are removed).
	Save(ctx context.Context, plan *Plan) error

	// FindByUserAndDate retrieves the plan for a user and date with its
	// items, or ErrPlanNotFound.
	FindByUserAndDate(ctx context.Context, userID uuid.UUID, planDate time.Time) (*Plan, error)

	// FindRange retrieves all plans for a user with plan_date in
	// [start, end], items included, ordered by date.
	FindRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]*Plan, error)

	// FindPlanByItemID retrieves the plan containing the given item,
	// scoped to the owning user.
	FindPlanByItemID(ctx context.Context, userID, itemID uuid.UUID) (*Plan, error)

	// DeleteItem removes a single item row.
	DeleteItem(ctx context.Context, itemID uuid.UUID) error

	// CountItemsForTask counts items referencing the task across all plans.
	CountItemsForTask(ctx context.Context, taskID uuid.UUID) (int, error)
}

// FeedbackRepository provides access to feedback logs.
type FeedbackRepository interface {
	// Save persists a feedback log.
	Save(ctx context.Context, log *FeedbackLog) error

	// FindRecentWithTasks returns up to limit most-recent logs for the
	// user, each paired with its linked task when one exists.
	FindRecentWithTasks(ctx context.Context, userID uuid.UUID, limit int) ([]FeedbackWithTask, error)

	// ListByUser returns up to limit most-recent logs for the user.
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*FeedbackLog, error)
}
