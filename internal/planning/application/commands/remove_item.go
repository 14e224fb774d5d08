package commands

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/daybreakhq/daybreak/internal/planning/domain"
	"github.com/daybreakhq/daybreak/internal/shared/infrastructure/database"
	"github.com/daybreakhq/daybreak/internal/shared/infrastructure/eventbus"
)

// RemoveItemCommand deletes one plan item.
type RemoveItemCommand struct {
	UserID uuid.UUID
	ItemID uuid.UUID
}

// RemoveItemHandler deletes an item and unschedules its task when no items
// remain for it anywhere.
type RemoveItemHandler struct {
	planRepo  domain.PlanRepository
	taskRepo  domain.TaskRepository
	uow       database.UnitOfWork
	publisher eventbus.Publisher
	logger    *slog.Logger
}

// NewRemoveItemHandler creates the handler.
func NewRemoveItemHandler(
	planRepo domain.PlanRepository,
	taskRepo domain.TaskRepository,
	uow database.UnitOfWork,
	publisher eventbus.Publisher,
	logger *slog.Logger,
) *RemoveItemHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RemoveItemHandler{
		planRepo:  planRepo,
		taskRepo:  taskRepo,
		uow:       uow,
		publisher: publisher,
		logger:    logger,
	}
}

// Handle executes the removal.
func (h *RemoveItemHandler) Handle(ctx context.Context, cmd RemoveItemCommand) error {
	var taskID uuid.UUID

	err := database.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		plan, err := h.planRepo.FindPlanByItemID(txCtx, cmd.UserID, cmd.ItemID)
		if err != nil {
			return err
		}
		item := plan.ItemByID(cmd.ItemID)
		if item == nil {
			return domain.ErrPlanItemNotFound
		}
		taskID = item.TaskID()

		if err := h.planRepo.DeleteItem(txCtx, cmd.ItemID); err != nil {
			return err
		}

		remaining, err := h.planRepo.CountItemsForTask(txCtx, taskID)
		if err != nil {
			return err
		}
		if remaining == 0 {
			task, err := h.taskRepo.FindByID(txCtx, taskID)
			if errors.Is(err, domain.ErrTaskNotFound) {
				return nil
			} else if err != nil {
				return err
			}
			task.MarkUnscheduled()
			return h.taskRepo.Save(txCtx, task)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if h.publisher != nil {
		event := domain.NewItemRemovedEvent(cmd.ItemID, cmd.UserID, taskID)
		if err := eventbus.PublishEvent(ctx, h.publisher, event); err != nil {
			h.logger.Warn("failed to publish plan.item.removed", "item_id", cmd.ItemID, "error", err)
		}
	}
	return nil
}
