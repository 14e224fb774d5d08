package queries

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/daybreakhq/daybreak/internal/planning/application"
	"github.com/daybreakhq/daybreak/internal/planning/domain"
)

// GetCalendarQuery fetches all plans in a date range.
type GetCalendarQuery struct {
	UserID    uuid.UUID
	StartDate time.Time
	EndDate   time.Time
}

// GetCalendarHandler handles the GetCalendarQuery.
type GetCalendarHandler struct {
	planRepo domain.PlanRepository
	taskRepo domain.TaskRepository
}

// NewGetCalendarHandler creates the handler.
func NewGetCalendarHandler(planRepo domain.PlanRepository, taskRepo domain.TaskRepository) *GetCalendarHandler {
	return &GetCalendarHandler{planRepo: planRepo, taskRepo: taskRepo}
}

// Handle returns one day entry per stored plan in the range.
func (h *GetCalendarHandler) Handle(ctx context.Context, q GetCalendarQuery) (*application.CalendarView, error) {
	plans, err := h.planRepo.FindRange(ctx, q.UserID, q.StartDate, q.EndDate)
	if err != nil {
		return nil, err
	}

	var taskIDs []uuid.UUID
	for _, plan := range plans {
		for _, item := range plan.Items() {
			taskIDs = append(taskIDs, item.TaskID())
		}
	}
	tasks, err := h.taskRepo.FindByIDs(ctx, taskIDs)
	if err != nil {
		return nil, err
	}

	view := &application.CalendarView{}
	for _, plan := range plans {
		day := application.CalendarDayView{
			PlanDate:     plan.PlanDate(),
			ModelVersion: plan.ModelVersion(),
			Summary:      plan.Summary(),
		}
		for _, item := range plan.Items() {
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
			day.Scheduled = append(day.Scheduled, sv)
		}
		view.Days = append(view.Days, day)
	}
	return view, nil
}
