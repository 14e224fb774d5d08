package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daybreakhq/daybreak/internal/planning/domain"
)

func at(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02T15:04", value)
	require.NoError(t, err)
	return parsed.UTC()
}

func newItem(t *testing.T, plan *domain.Plan, start, end time.Time) *domain.PlanItem {
	t.Helper()
	item, err := domain.NewPlanItem(plan.ID(), uuid.New(), start, end, "placed", plan.NextPosition())
	require.NoError(t, err)
	require.NoError(t, plan.AddItem(item))
	return item
}

func TestNewPlanItem_RejectsEmptyInterval(t *testing.T) {
	start := at(t, "2026-03-02T09:00")

	_, err := domain.NewPlanItem(uuid.New(), uuid.New(), start, start, "", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInterval)

	_, err = domain.NewPlanItem(uuid.New(), uuid.New(), start, start.Add(-time.Hour), "", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInterval)
}

func TestPlanItem_Overlaps(t *testing.T) {
	plan := domain.NewPlan(uuid.New(), at(t, "2026-03-02T00:00"))
	item := newItem(t, plan, at(t, "2026-03-02T09:00"), at(t, "2026-03-02T10:00"))

	assert.True(t, item.Overlaps(at(t, "2026-03-02T09:30"), at(t, "2026-03-02T10:30")))
	assert.True(t, item.Overlaps(at(t, "2026-03-02T08:30"), at(t, "2026-03-02T09:30")))
	// Half-open intervals: touching endpoints do not overlap.
	assert.False(t, item.Overlaps(at(t, "2026-03-02T10:00"), at(t, "2026-03-02T11:00")))
	assert.False(t, item.Overlaps(at(t, "2026-03-02T08:00"), at(t, "2026-03-02T09:00")))
}

func TestPlanItem_MoveMarksManual(t *testing.T) {
	plan := domain.NewPlan(uuid.New(), at(t, "2026-03-02T00:00"))
	item := newItem(t, plan, at(t, "2026-03-02T09:00"), at(t, "2026-03-02T10:00"))
	require.Equal(t, domain.SourceAI, item.Source())

	err := item.Move(at(t, "2026-03-02T14:00"), at(t, "2026-03-02T15:00"))
	require.NoError(t, err)

	assert.Equal(t, domain.SourceManual, item.Source())
	assert.Equal(t, at(t, "2026-03-02T14:00"), item.Start())

	err = item.Move(at(t, "2026-03-02T15:00"), at(t, "2026-03-02T15:00"))
	assert.ErrorIs(t, err, domain.ErrInvalidInterval)
}

func TestPlan_AddItemRejectsOverlap(t *testing.T) {
	plan := domain.NewPlan(uuid.New(), at(t, "2026-03-02T00:00"))
	newItem(t, plan, at(t, "2026-03-02T09:00"), at(t, "2026-03-02T10:00"))

	conflicting, err := domain.NewPlanItem(plan.ID(), uuid.New(),
		at(t, "2026-03-02T09:30"), at(t, "2026-03-02T10:30"), "", 1)
	require.NoError(t, err)

	err = plan.AddItem(conflicting)
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, at(t, "2026-03-02T09:00"), conflict.Start)
}

func TestPlan_FindConflictReturnsEarliestAndHonorsExclusion(t *testing.T) {
	plan := domain.NewPlan(uuid.New(), at(t, "2026-03-02T00:00"))
	first := newItem(t, plan, at(t, "2026-03-02T09:00"), at(t, "2026-03-02T10:00"))
	second := newItem(t, plan, at(t, "2026-03-02T10:00"), at(t, "2026-03-02T11:00"))

	// A request spanning both items reports the earliest one.
	conflict := plan.FindConflict(at(t, "2026-03-02T09:30"), at(t, "2026-03-02T10:30"), uuid.Nil)
	require.NotNil(t, conflict)
	assert.Equal(t, first.ID(), conflict.ID())

	// Excluding the earliest surfaces the next.
	conflict = plan.FindConflict(at(t, "2026-03-02T09:30"), at(t, "2026-03-02T10:30"), first.ID())
	require.NotNil(t, conflict)
	assert.Equal(t, second.ID(), conflict.ID())

	assert.Nil(t, plan.FindConflict(at(t, "2026-03-02T12:00"), at(t, "2026-03-02T13:00"), uuid.Nil))
}

func TestConflictError_Message(t *testing.T) {
	err := &domain.ConflictError{
		Title: "Deep work",
		Start: at(t, "2026-03-02T09:00"),
		End:   at(t, "2026-03-02T10:30"),
	}
	assert.Equal(t, "Time slot already occupied by 'Deep work' from 09:00 to 10:30", err.Error())
}

func TestPlan_ItemsSortedByStart(t *testing.T) {
	plan := domain.NewPlan(uuid.New(), at(t, "2026-03-02T00:00"))
	late := newItem(t, plan, at(t, "2026-03-02T15:00"), at(t, "2026-03-02T16:00"))
	early := newItem(t, plan, at(t, "2026-03-02T09:00"), at(t, "2026-03-02T10:00"))

	items := plan.Items()
	require.Len(t, items, 2)
	assert.Equal(t, early.ID(), items[0].ID())
	assert.Equal(t, late.ID(), items[1].ID())
}

func TestPlan_RemoveItem(t *testing.T) {
	plan := domain.NewPlan(uuid.New(), at(t, "2026-03-02T00:00"))
	item := newItem(t, plan, at(t, "2026-03-02T09:00"), at(t, "2026-03-02T10:00"))

	assert.True(t, plan.RemoveItem(item.ID()))
	assert.False(t, plan.RemoveItem(item.ID()))
	assert.Empty(t, plan.Items())
}

func TestPlan_NextPosition(t *testing.T) {
	plan := domain.NewPlan(uuid.New(), at(t, "2026-03-02T00:00"))
	assert.Equal(t, 0, plan.NextPosition())

	newItem(t, plan, at(t, "2026-03-02T09:00"), at(t, "2026-03-02T10:00"))
	assert.Equal(t, 1, plan.NextPosition())

	newItem(t, plan, at(t, "2026-03-02T11:00"), at(t, "2026-03-02T12:00"))
	assert.Equal(t, 2, plan.NextPosition())
}

func TestPlan_SummaryAndStatus(t *testing.T) {
	plan := domain.NewPlan(uuid.New(), at(t, "2026-03-02T00:00"))
	assert.Equal(t, domain.PlanStatusGenerated, plan.Status())
	assert.Equal(t, domain.ModelVersion, plan.ModelVersion())

	plan.UpdateSummary(3, 1)
	assert.Equal(t, "3 scheduled, 1 unscheduled", plan.Summary())

	plan.MarkAdjusted()
	assert.Equal(t, domain.PlanStatusAdjusted, plan.Status())
}

func TestPlan_OccupiedMinutes(t *testing.T) {
	plan := domain.NewPlan(uuid.New(), at(t, "2026-03-02T00:00"))
	newItem(t, plan, at(t, "2026-03-02T09:00"), at(t, "2026-03-02T10:00"))
	newItem(t, plan, at(t, "2026-03-02T11:00"), at(t, "2026-03-02T11:30"))

	assert.Equal(t, 90, plan.OccupiedMinutes())
}

func TestNormalizeDate(t *testing.T) {
	zone := time.FixedZone("UTC+2", 2*60*60)
	local := time.Date(2026, 3, 3, 1, 30, 0, 0, zone) // 2026-03-02 23:30 UTC

	normalized := domain.NormalizeDate(local)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), normalized)
}

func TestTask_StatusTransitions(t *testing.T) {
	task, err := domain.NewTask(uuid.New(), "Ship release", "", 60,
		at(t, "2026-03-06T17:00"),
		domain.CategoryWork, domain.ImportanceHigh,
		domain.PreferredMorning, domain.EnergyHigh)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusPending, task.Status())

	task.MarkScheduled()
	assert.Equal(t, domain.TaskStatusScheduled, task.Status())

	task.MarkUnscheduled()
	assert.Equal(t, domain.TaskStatusUnscheduled, task.Status())

	completed := domain.RehydrateTask(uuid.New(), uuid.New(), "Done", "", 30,
		at(t, "2026-03-06T17:00"),
		domain.CategoryWork, domain.ImportanceLow,
		domain.PreferredAnytime, domain.EnergyMedium,
		domain.TaskStatusCompleted, time.Now(), time.Now())
	completed.MarkScheduled()
	assert.Equal(t, domain.TaskStatusCompleted, completed.Status())
}

func TestNewTask_Validation(t *testing.T) {
	_, err := domain.NewTask(uuid.New(), "  ", "", 60, at(t, "2026-03-06T17:00"),
		domain.CategoryWork, domain.ImportanceHigh, domain.PreferredMorning, domain.EnergyHigh)
	assert.ErrorIs(t, err, domain.ErrInvalidTitle)

	_, err = domain.NewTask(uuid.New(), "Zero", "", 0, at(t, "2026-03-06T17:00"),
		domain.CategoryWork, domain.ImportanceHigh, domain.PreferredMorning, domain.EnergyHigh)
	assert.ErrorIs(t, err, domain.ErrInvalidDuration)
}

func TestNewFeedbackLog_OutcomeValidation(t *testing.T) {
	_, err := domain.NewFeedbackLog(uuid.New(), uuid.NullUUID{}, 0, "")
	assert.ErrorIs(t, err, domain.ErrInvalidOutcome)

	_, err = domain.NewFeedbackLog(uuid.New(), uuid.NullUUID{}, 2, "")
	assert.ErrorIs(t, err, domain.ErrInvalidOutcome)

	log, err := domain.NewFeedbackLog(uuid.New(), uuid.NullUUID{}, -1, "too late in the day")
	require.NoError(t, err)
	assert.Equal(t, -1, log.Outcome())
	assert.False(t, log.TaskID().Valid)
}
