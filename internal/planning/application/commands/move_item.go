package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/daybreakhq/daybreak/internal/planning/application"
	"github.com/daybreakhq/daybreak/internal/planning/domain"
	"github.com/daybreakhq/daybreak/internal/shared/infrastructure/database"
	"github.com/daybreakhq/daybreak/internal/shared/infrastructure/eventbus"
)

// MoveItemCommand moves or resizes one plan item.
type MoveItemCommand struct {
	UserID uuid.UUID
	ItemID uuid.UUID
	Start  time.Time
	End    time.Time
}

// MoveItemHandler applies a user edit to a plan item: conflict detection,
// cross-day migration, and feedback emission.
type MoveItemHandler struct {
	planRepo     domain.PlanRepository
	taskRepo     domain.TaskRepository
	feedbackRepo domain.FeedbackRepository
	uow          database.UnitOfWork
	publisher    eventbus.Publisher
	logger       *slog.Logger
}

// NewMoveItemHandler creates the handler.
func NewMoveItemHandler(
	planRepo domain.PlanRepository,
	taskRepo domain.TaskRepository,
	feedbackRepo domain.FeedbackRepository,
	uow database.UnitOfWork,
	publisher eventbus.Publisher,
	logger *slog.Logger,
) *MoveItemHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &MoveItemHandler{
		planRepo:     planRepo,
		taskRepo:     taskRepo,
		feedbackRepo: feedbackRepo,
		uow:          uow,
		publisher:    publisher,
		logger:       logger,
	}
}

// Handle executes the move and returns the updated item view.
func (h *MoveItemHandler) Handle(ctx context.Context, cmd MoveItemCommand) (*application.ScheduledItemView, error) {
	start := domain.NormalizeInstant(cmd.Start)
	end := domain.NormalizeInstant(cmd.End)
	if !end.After(start) {
		return nil, domain.ErrInvalidInterval
	}

	var (
		moved  *domain.PlanItem
		task   *domain.Task
		logRow *domain.FeedbackLog
	)
	err := database.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		plan, err := h.planRepo.FindPlanByItemID(txCtx, cmd.UserID, cmd.ItemID)
		if err != nil {
			return err
		}
		item := plan.ItemByID(cmd.ItemID)
		if item == nil {
			return domain.ErrPlanItemNotFound
		}
		originalStart := item.Start()

		targetPlan := plan
		crossDay := !domain.NormalizeDate(start).Equal(plan.PlanDate())
		if crossDay {
			targetPlan, err = h.planRepo.FindByUserAndDate(txCtx, cmd.UserID, start)
			if errors.Is(err, domain.ErrPlanNotFound) {
				targetPlan = nil
			} else if err != nil {
				return err
			}
		}

		if targetPlan != nil {
			if conflict := targetPlan.FindConflict(start, end, item.ID()); conflict != nil {
				title := ""
				if t, err := h.taskRepo.FindByID(txCtx, conflict.TaskID()); err == nil {
					title = t.Title()
				}
				return &domain.ConflictError{Title: title, Start: conflict.Start(), End: conflict.End()}
			}
		}

		if crossDay {
			plan.RemoveItem(item.ID())
			if targetPlan == nil {
				targetPlan = domain.NewPlan(cmd.UserID, start)
				targetPlan.MarkAdjusted()
				item.Reassign(targetPlan.ID(), 0)
			} else {
				item.Reassign(targetPlan.ID(), targetPlan.NextPosition())
			}
			targetPlan.AttachItem(item)
		}

		if err := item.Move(start, end); err != nil {
			return err
		}

		task, err = h.taskRepo.FindByID(txCtx, item.TaskID())
		switch {
		case err == nil:
			task.MarkScheduled()
			if err := h.taskRepo.Save(txCtx, task); err != nil {
				return err
			}
		case errors.Is(err, domain.ErrTaskNotFound):
			// An item may outlive its task; the move still stands.
			err = nil
		default:
			return err
		}

		if crossDay {
			if err := h.planRepo.Save(txCtx, plan); err != nil {
				return err
			}
		}
		if err := h.planRepo.Save(txCtx, targetPlan); err != nil {
			return err
		}

		switch {
		case start.Before(originalStart):
			logRow, err = domain.NewFeedbackLog(cmd.UserID,
				uuid.NullUUID{UUID: item.TaskID(), Valid: true}, 1, domain.ManualAdjustmentNote)
		case start.After(originalStart):
			logRow, err = domain.NewFeedbackLog(cmd.UserID,
				uuid.NullUUID{UUID: item.TaskID(), Valid: true}, -1, domain.ManualAdjustmentNote)
		}
		if err != nil {
			return err
		}
		if logRow != nil {
			if err := h.feedbackRepo.Save(txCtx, logRow); err != nil {
				return err
			}
		}

		moved = item
		return nil
	})
	if err != nil {
		return nil, err
	}

	if h.publisher != nil {
		if err := eventbus.PublishEvent(ctx, h.publisher, domain.NewItemMovedEvent(moved, cmd.UserID)); err != nil {
			h.logger.Warn("failed to publish plan.item.moved", "item_id", moved.ID(), "error", err)
		}
		if logRow != nil {
			if err := eventbus.PublishEvent(ctx, h.publisher, domain.NewFeedbackRecordedEvent(logRow)); err != nil {
				h.logger.Warn("failed to publish feedback.recorded", "feedback_id", logRow.ID(), "error", err)
			}
		}
	}

	view := &application.ScheduledItemView{
		PlanItemID:  moved.ID(),
		TaskID:      moved.TaskID(),
		Start:       moved.Start(),
		End:         moved.End(),
		Explanation: moved.Explanation(),
	}
	if task != nil {
		view.Title = task.Title()
	}
	return view, nil
}
