// Package queries implements the planning read operations.
package queries

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/daybreakhq/daybreak/internal/planning/application"
	"github.com/daybreakhq/daybreak/internal/planning/domain"
	"github.com/daybreakhq/daybreak/internal/planning/engine"
)

// GetPlanQuery fetches the persisted plan for one date.
type GetPlanQuery struct {
	UserID   uuid.UUID
	PlanDate time.Time
}

// GetPlanHandler handles the GetPlanQuery.
type GetPlanHandler struct {
	planRepo domain.PlanRepository
	taskRepo domain.TaskRepository
}

// NewGetPlanHandler creates the handler.
func NewGetPlanHandler(planRepo domain.PlanRepository, taskRepo domain.TaskRepository) *GetPlanHandler {
	return &GetPlanHandler{planRepo: planRepo, taskRepo: taskRepo}
}

// Handle returns the stored plan view, or domain.ErrPlanNotFound.
// Priorities are not persisted, so fetched items carry a zero priority and
// no one-line rationale.
func (h *GetPlanHandler) Handle(ctx context.Context, q GetPlanQuery) (*application.PlanView, error) {
	planDate := domain.NormalizeDate(q.PlanDate)

	plan, err := h.planRepo.FindByUserAndDate(ctx, q.UserID, planDate)
	if err != nil {
		return nil, err
	}

	items := plan.Items()
	taskIDs := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		taskIDs = append(taskIDs, item.TaskID())
	}
	tasks, err := h.taskRepo.FindByIDs(ctx, taskIDs)
	if err != nil {
		return nil, err
	}

	view := &application.PlanView{ModelVersion: plan.ModelVersion()}
	for _, item := range items {
		sv := application.ScheduledItemView{
			PlanItemID:  item.ID(),
			TaskID:      item.TaskID(),
			Start:       item.Start(),
			End:         item.End(),
			Explanation: item.Explanation(),
		}
		if t, ok := tasks[item.TaskID()]; ok {
			sv.Title = t.Title()
		}
		view.Scheduled = append(view.Scheduled, sv)
	}

	unscheduled, err := h.taskRepo.FindUnscheduled(ctx, q.UserID, planDate)
	if err != nil {
		return nil, err
	}
	for _, t := range unscheduled {
		view.Unscheduled = append(view.Unscheduled, application.UnscheduledTaskView{
			Task:   t,
			Reason: engine.ReasonNotPlaced,
		})
	}

	return view, nil
}
