// Package commands implements the planning write operations: plan
// generation, item moves and removals, and feedback recording.
package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	identityDomain "github.com/daybreakhq/daybreak/internal/identity/domain"
	"github.com/daybreakhq/daybreak/internal/planning/application"
	"github.com/daybreakhq/daybreak/internal/planning/domain"
	"github.com/daybreakhq/daybreak/internal/planning/engine"
	"github.com/daybreakhq/daybreak/internal/shared/infrastructure/database"
	"github.com/daybreakhq/daybreak/internal/shared/infrastructure/eventbus"
	"github.com/daybreakhq/daybreak/internal/shared/infrastructure/locking"
)

// ErrNoPendingTasks is returned when there is nothing to plan and no prior
// items anywhere in the horizon.
var ErrNoPendingTasks = errors.New("No pending tasks to plan for this date")

// GeneratePlanCommand requests a plan for one date.
type GeneratePlanCommand struct {
	UserID  uuid.UUID
	Profile identityDomain.Profile
	Date    time.Time
}

// GeneratePlanHandler orchestrates a full planning request: settings,
// horizon expansion, allocation, per-day scheduling, and transactional
// persistence.
type GeneratePlanHandler struct {
	settingsRepo  identityDomain.SettingsRepository
	taskRepo      domain.TaskRepository
	planRepo      domain.PlanRepository
	feedbackRepo  domain.FeedbackRepository
	scheduler     *engine.DayScheduler
	uow           database.UnitOfWork
	locker        locking.PlanLocker
	publisher     eventbus.Publisher
	logger        *slog.Logger
	feedbackLimit int
	lockTTL       time.Duration
	now           func() time.Time
}

// NewGeneratePlanHandler creates the handler.
func NewGeneratePlanHandler(
	settingsRepo identityDomain.SettingsRepository,
	taskRepo domain.TaskRepository,
	planRepo domain.PlanRepository,
	feedbackRepo domain.FeedbackRepository,
	scheduler *engine.DayScheduler,
	uow database.UnitOfWork,
	locker locking.PlanLocker,
	publisher eventbus.Publisher,
	logger *slog.Logger,
	feedbackLimit int,
	lockTTL time.Duration,
) *GeneratePlanHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if feedbackLimit <= 0 {
		feedbackLimit = 500
	}
	return &GeneratePlanHandler{
		settingsRepo:  settingsRepo,
		taskRepo:      taskRepo,
		planRepo:      planRepo,
		feedbackRepo:  feedbackRepo,
		scheduler:     scheduler,
		uow:           uow,
		locker:        locker,
		publisher:     publisher,
		logger:        logger,
		feedbackLimit: feedbackLimit,
		lockTTL:       lockTTL,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the handler's clock. Intended for tests.
func (h *GeneratePlanHandler) WithClock(now func() time.Time) *GeneratePlanHandler {
	h.now = now
	return h
}

// Handle runs the planning request and returns the view for the requested
// date.
func (h *GeneratePlanHandler) Handle(ctx context.Context, cmd GeneratePlanCommand) (*application.PlanView, error) {
	planDate := domain.NormalizeDate(cmd.Date)

	release, err := h.locker.Acquire(ctx, locking.PlanKey(cmd.UserID.String(), planDate), h.lockTTL)
	if err != nil {
		return nil, err
	}
	defer release()

	var (
		view        *application.PlanView
		requested   *domain.Plan
		scheduled   int
		unscheduled int
	)
	err = database.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		view, requested, scheduled, unscheduled, err = h.generate(txCtx, cmd, planDate)
		return err
	})
	if err != nil {
		return nil, err
	}

	if h.publisher != nil && requested != nil {
		event := domain.NewPlanGeneratedEvent(requested, scheduled, unscheduled)
		if err := eventbus.PublishEvent(ctx, h.publisher, event); err != nil {
			h.logger.Warn("failed to publish plan.generated",
				"plan_id", requested.ID(),
				"error", err,
			)
		}
	}

	return view, nil
}

func (h *GeneratePlanHandler) generate(
	ctx context.Context,
	cmd GeneratePlanCommand,
	planDate time.Time,
) (*application.PlanView, *domain.Plan, int, int, error) {
	now := h.now()

	settings, err := h.settingsRepo.FindByUserID(ctx, cmd.UserID)
	if errors.Is(err, identityDomain.ErrSettingsNotFound) {
		settings = identityDomain.NewUserSettings(cmd.UserID)
		if err := h.settingsRepo.Save(ctx, settings); err != nil {
			return nil, nil, 0, 0, err
		}
	} else if err != nil {
		return nil, nil, 0, 0, err
	}
	hours := settings.EffectiveWorkingHours()

	horizonDates := engine.BuildHorizonDates(planDate, settings.IsWorkDay)

	plansByDay := make(map[time.Time]*domain.Plan, len(horizonDates))
	occupiedByDay := make(map[time.Time][]engine.Interval, len(horizonDates))
	existingMinutes := make(map[time.Time]int, len(horizonDates))
	placedTasks := make(map[uuid.UUID]bool)
	existingItems := 0

	for _, day := range horizonDates {
		plan, err := h.planRepo.FindByUserAndDate(ctx, cmd.UserID, day)
		if errors.Is(err, domain.ErrPlanNotFound) {
			plan = domain.NewPlan(cmd.UserID, day)
		} else if err != nil {
			return nil, nil, 0, 0, err
		}
		plansByDay[day] = plan

		for _, item := range plan.Items() {
			occupiedByDay[day] = append(occupiedByDay[day], engine.Interval{Start: item.Start(), End: item.End()})
			existingMinutes[day] += int(item.End().Sub(item.Start()).Minutes())
			placedTasks[item.TaskID()] = true
			existingItems++
		}
	}

	eligible, err := h.taskRepo.FindEligible(ctx, cmd.UserID, planDate, planDate.AddDate(0, 0, engine.DeadlineHorizonDays))
	if err != nil {
		return nil, nil, 0, 0, err
	}
	tasksToAssign := make([]*domain.Task, 0, len(eligible))
	for _, t := range eligible {
		if !placedTasks[t.ID()] {
			tasksToAssign = append(tasksToAssign, t)
		}
	}

	if len(tasksToAssign) == 0 && existingItems == 0 {
		return nil, nil, 0, 0, ErrNoPendingTasks
	}

	feedback, err := h.feedbackRepo.FindRecentWithTasks(ctx, cmd.UserID, h.feedbackLimit)
	if err != nil {
		return nil, nil, 0, 0, err
	}

	byDay, allocUnscheduled := engine.AllocateHorizon(engine.AllocatorInput{
		Tasks:           tasksToAssign,
		HorizonDates:    horizonDates,
		ExistingMinutes: existingMinutes,
		StartHour:       hours.Start,
		EndHour:         hours.End,
	})

	rng := engine.NewPlanRand(planDate, string(cmd.Profile))

	reasonByTask := make(map[uuid.UUID]string)
	for _, u := range allocUnscheduled {
		reasonByTask[u.Task.ID()] = u.Reason
	}

	newItems := make(map[uuid.UUID]engine.ScheduledItem)
	var requestedConfidence *float64
	totalUnscheduled := len(allocUnscheduled)

	for _, day := range horizonDates {
		dayTasks := byDay[day]
		result := h.scheduler.Schedule(engine.DayInput{
			Tasks:     dayTasks,
			Profile:   string(cmd.Profile),
			PlanDate:  day,
			Feedback:  feedback,
			StartHour: hours.Start,
			EndHour:   hours.End,
			Occupied:  occupiedByDay[day],
			Now:       now,
			Rand:      rng,
		})
		if day.Equal(planDate) {
			requestedConfidence = result.ModelConfidence
		}
		if len(dayTasks) == 0 {
			continue
		}

		plan := plansByDay[day]
		position := plan.NextPosition()
		for _, s := range result.Scheduled {
			item, err := domain.NewPlanItem(plan.ID(), s.Task.ID(), s.Start, s.End, s.Explanation, position)
			if err != nil {
				return nil, nil, 0, 0, err
			}
			position++
			if err := plan.AddItem(item); err != nil {
				return nil, nil, 0, 0, err
			}
			newItems[s.Task.ID()] = s

			s.Task.MarkScheduled()
			if err := h.taskRepo.Save(ctx, s.Task); err != nil {
				return nil, nil, 0, 0, err
			}
		}
		for _, u := range result.Unscheduled {
			reasonByTask[u.Task.ID()] = u.Reason
			totalUnscheduled++
		}
	}

	for _, u := range allocUnscheduled {
		u.Task.MarkUnscheduled()
		if err := h.taskRepo.Save(ctx, u.Task); err != nil {
			return nil, nil, 0, 0, err
		}
	}
	for _, day := range horizonDates {
		for _, u := range dayUnscheduled(byDay[day], newItems) {
			u.MarkUnscheduled()
			if err := h.taskRepo.Save(ctx, u); err != nil {
				return nil, nil, 0, 0, err
			}
		}
	}

	for _, day := range horizonDates {
		plan := plansByDay[day]
		touched := len(byDay[day]) > 0 || day.Equal(planDate)
		if !touched {
			continue
		}
		plan.UpdateSummary(len(plan.Items()), totalUnscheduled)
		if err := h.planRepo.Save(ctx, plan); err != nil {
			return nil, nil, 0, 0, err
		}
	}

	view, err := h.assembleView(ctx, plansByDay[planDate], requestedConfidence, newItems, reasonByTask, planDate)
	if err != nil {
		return nil, nil, 0, 0, err
	}
	requested := plansByDay[planDate]
	return view, requested, len(requested.Items()), totalUnscheduled, nil
}

// dayUnscheduled returns the tasks assigned to a day that did not end up
// with a new item.
func dayUnscheduled(assigned []*domain.Task, newItems map[uuid.UUID]engine.ScheduledItem) []*domain.Task {
	var out []*domain.Task
	for _, t := range assigned {
		if _, ok := newItems[t.ID()]; !ok {
			out = append(out, t)
		}
	}
	return out
}

func (h *GeneratePlanHandler) assembleView(
	ctx context.Context,
	plan *domain.Plan,
	confidence *float64,
	newItems map[uuid.UUID]engine.ScheduledItem,
	reasonByTask map[uuid.UUID]string,
	planDate time.Time,
) (*application.PlanView, error) {
	items := plan.Items()
	taskIDs := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		taskIDs = append(taskIDs, item.TaskID())
	}
	tasks, err := h.taskRepo.FindByIDs(ctx, taskIDs)
	if err != nil {
		return nil, err
	}

	view := &application.PlanView{
		ModelVersion:    plan.ModelVersion(),
		ModelConfidence: confidence,
	}
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
		if s, ok := newItems[item.TaskID()]; ok {
			sv.Priority = s.Priority
			sv.LLMExplanation = s.LLMExplanation
		}
		view.Scheduled = append(view.Scheduled, sv)
	}

	unscheduledTasks, err := h.taskRepo.FindUnscheduled(ctx, plan.UserID(), planDate)
	if err != nil {
		return nil, err
	}
	for _, t := range unscheduledTasks {
		reason := reasonByTask[t.ID()]
		if reason == "" {
			reason = engine.ReasonNotPlaced
		}
		view.Unscheduled = append(view.Unscheduled, application.UnscheduledTaskView{Task: t, Reason: reason})
	}

	return view, nil
}
