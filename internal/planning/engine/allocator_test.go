package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daybreakhq/daybreak/internal/planning/domain"
	"github.com/daybreakhq/daybreak/internal/planning/engine"
)

func TestBuildHorizonDates_AllDaysWorking(t *testing.T) {
	dates := engine.BuildHorizonDates(mustDate(t, "2026-03-02"), func(time.Weekday) bool { return true })

	require.Len(t, dates, 7)
	assert.Equal(t, mustDate(t, "2026-03-02"), dates[0])
	assert.Equal(t, mustDate(t, "2026-03-08"), dates[6])
}

func TestBuildHorizonDates_MaskFiltersExpansionDays(t *testing.T) {
	weekdaysOnly := func(day time.Weekday) bool {
		return day != time.Saturday && day != time.Sunday
	}

	// Monday start: Saturday the 7th and Sunday the 8th drop out.
	dates := engine.BuildHorizonDates(mustDate(t, "2026-03-02"), weekdaysOnly)
	require.Len(t, dates, 5)
	assert.Equal(t, mustDate(t, "2026-03-06"), dates[4])
}

func TestBuildHorizonDates_SelectedDateNeverFiltered(t *testing.T) {
	never := func(time.Weekday) bool { return false }

	dates := engine.BuildHorizonDates(mustDate(t, "2026-03-07"), never)
	require.Len(t, dates, 1)
	assert.Equal(t, mustDate(t, "2026-03-07"), dates[0])
}

func horizonInput(t *testing.T, tasks []*domain.Task) engine.AllocatorInput {
	t.Helper()
	return engine.AllocatorInput{
		Tasks:           tasks,
		HorizonDates:    engine.BuildHorizonDates(mustDate(t, "2026-03-02"), nil),
		ExistingMinutes: map[time.Time]int{},
		StartHour:       8,
		EndHour:         18,
	}
}

func TestAllocateHorizon_DeadlineBeforeHorizon(t *testing.T) {
	task := makeTask(t, taskSpec{title: "Overdue", duration: 60, deadline: mustDate(t, "2026-03-01")})

	byDay, unscheduled := engine.AllocateHorizon(horizonInput(t, []*domain.Task{task}))

	assert.Empty(t, byDay)
	require.Len(t, unscheduled, 1)
	assert.Equal(t, "Deadline outside horizon", unscheduled[0].Reason)
}

func TestAllocateHorizon_TightDeadlineStaysEarly(t *testing.T) {
	task := makeTask(t, taskSpec{title: "Due tomorrow", duration: 60, deadline: mustDate(t, "2026-03-03")})

	byDay, unscheduled := engine.AllocateHorizon(horizonInput(t, []*domain.Task{task}))

	assert.Empty(t, unscheduled)
	day := assignedDay(t, byDay, task)
	assert.True(t, day.Equal(mustDate(t, "2026-03-02")) || day.Equal(mustDate(t, "2026-03-03")),
		"tight deadline must land on day one or two, got %s", day)
}

func TestAllocateHorizon_FarDeadlineAvoidsFirstDays(t *testing.T) {
	task := makeTask(t, taskSpec{title: "Plenty of time", duration: 60, deadline: mustDate(t, "2026-03-08")})

	byDay, unscheduled := engine.AllocateHorizon(horizonInput(t, []*domain.Task{task}))

	assert.Empty(t, unscheduled)
	day := assignedDay(t, byDay, task)
	assert.True(t, day.After(mustDate(t, "2026-03-03")),
		"far deadline should skip the first two days, got %s", day)
}

func TestAllocateHorizon_LoadBalancesAcrossDays(t *testing.T) {
	deadline := mustDate(t, "2026-03-03") // restrict to the first two days
	in := horizonInput(t, []*domain.Task{
		makeTask(t, taskSpec{title: "Busy day filler", duration: 60, deadline: deadline}),
	})
	// Day one is nearly full; day two is empty.
	in.ExistingMinutes[mustDate(t, "2026-03-02")] = 540

	byDay, unscheduled := engine.AllocateHorizon(in)

	assert.Empty(t, unscheduled)
	day := assignedDay(t, byDay, in.Tasks[0])
	assert.Equal(t, mustDate(t, "2026-03-03"), day)
}

func TestAllocateHorizon_OrdersByDeadlineThenImportance(t *testing.T) {
	deadline := mustDate(t, "2026-03-02")
	low := makeTask(t, taskSpec{title: "Low", duration: 300, deadline: deadline,
		importance: domain.ImportanceLow})
	high := makeTask(t, taskSpec{title: "High", duration: 300, deadline: deadline,
		importance: domain.ImportanceHigh})

	// Same deadline: the high-importance task must be allocated first, so
	// it grabs the emptier day even when listed second.
	byDay, unscheduled := engine.AllocateHorizon(horizonInput(t, []*domain.Task{low, high}))

	assert.Empty(t, unscheduled)
	firstDay := byDay[mustDate(t, "2026-03-02")]
	require.NotEmpty(t, firstDay)
	assert.Equal(t, "High", firstDay[0].Title())
}

func TestAllocateHorizon_EveryTaskAccountedForOnce(t *testing.T) {
	tasks := []*domain.Task{
		makeTask(t, taskSpec{title: "A", duration: 60, deadline: mustDate(t, "2026-03-03")}),
		makeTask(t, taskSpec{title: "B", duration: 90, deadline: mustDate(t, "2026-03-05")}),
		makeTask(t, taskSpec{title: "C", duration: 30, deadline: mustDate(t, "2026-03-08")}),
		makeTask(t, taskSpec{title: "D", duration: 45, deadline: mustDate(t, "2026-02-28")}),
	}

	byDay, unscheduled := engine.AllocateHorizon(horizonInput(t, tasks))

	seen := map[string]int{}
	for _, assigned := range byDay {
		for _, task := range assigned {
			seen[task.Title()]++
		}
	}
	for _, item := range unscheduled {
		seen[item.Task.Title()]++
	}
	for _, task := range tasks {
		assert.Equal(t, 1, seen[task.Title()], "task %s", task.Title())
	}
}

func assignedDay(t *testing.T, byDay map[time.Time][]*domain.Task, task *domain.Task) time.Time {
	t.Helper()
	for day, assigned := range byDay {
		for _, candidate := range assigned {
			if candidate.ID() == task.ID() {
				return day
			}
		}
	}
	t.Fatalf("task %s not allocated to any day", task.Title())
	return time.Time{}
}
