package engine

import (
	"math"
	"sort"
	"time"

	"github.com/daybreakhq/daybreak/internal/planning/domain"
)

// Horizon bounds: eligible deadlines reach 14 days out; the planning
// expansion covers the selected date plus the following six calendar days,
// filtered by the working mask.
const (
	DeadlineHorizonDays  = 14
	ExpansionWindowDays  = 6
	farDeadlineThreshold = 4
)

// BuildHorizonDates returns the selected date followed by the working days
// among the next six calendar days. The selected date is never filtered by
// the mask.
func BuildHorizonDates(planDate time.Time, isWorkDay func(time.Weekday) bool) []time.Time {
	first := domain.NormalizeDate(planDate)
	dates := []time.Time{first}
	for i := 1; i <= ExpansionWindowDays; i++ {
		d := first.AddDate(0, 0, i)
		if isWorkDay == nil || isWorkDay(d.Weekday()) {
			dates = append(dates, d)
		}
	}
	return dates
}

// AllocatorInput carries everything horizon allocation needs.
type AllocatorInput struct {
	// Tasks is the eligible set: pending or unscheduled, deadline within
	// the 14-day horizon, not already placed anywhere in the horizon.
	Tasks []*domain.Task

	// HorizonDates is the selected date plus working expansion days,
	// ascending.
	HorizonDates []time.Time

	// ExistingMinutes holds already-occupied minutes per horizon date.
	ExistingMinutes map[time.Time]int

	StartHour int
	EndHour   int
}

// AllocateHorizon assigns each eligible task to one horizon day, balancing
// day load against deadline distance. Tasks whose deadline precedes every
// horizon day are unscheduled with "Deadline outside horizon".
func AllocateHorizon(in AllocatorInput) (map[time.Time][]*domain.Task, []UnscheduledItem) {
	capacity := float64((in.EndHour - in.StartHour) * 60)
	if capacity < 1 {
		capacity = 1
	}

	planDate := time.Time{}
	if len(in.HorizonDates) > 0 {
		planDate = in.HorizonDates[0]
	}

	assignedMinutes := make(map[time.Time]int, len(in.HorizonDates))
	byDay := make(map[time.Time][]*domain.Task, len(in.HorizonDates))

	ordered := make([]*domain.Task, len(in.Tasks))
	copy(ordered, in.Tasks)
	sort.SliceStable(ordered, func(a, b int) bool {
		da, db := ordered[a].Deadline(), ordered[b].Deadline()
		if !da.Equal(db) {
			return da.Before(db)
		}
		return ordered[a].Importance().Rank() < ordered[b].Importance().Rank()
	})

	var unscheduled []UnscheduledItem

	for _, task := range ordered {
		deadlineDate := domain.NormalizeDate(task.Deadline())
		daysToDeadline := deadlineDate.Sub(planDate).Hours() / 24
		farDeadline := daysToDeadline >= farDeadlineThreshold

		bestIdx := -1
		bestCost := 0.0
		for idx, day := range in.HorizonDates {
			if day.After(deadlineDate) {
				continue
			}

			load := float64(in.ExistingMinutes[day]+assignedMinutes[day]) / capacity
			loadPenalty := load * load * 8

			days := deadlineDate.Sub(day).Hours() / 24
			deadlinePenalty := 0.0
			if days > 1 {
				deadlinePenalty = math.Min(6, days*0.6)
			}

			earlyPenalty := 0.0
			if farDeadline && idx < 2 {
				earlyPenalty = 2.5
			}

			cost := loadPenalty + deadlinePenalty + earlyPenalty
			if bestIdx == -1 || cost < bestCost || (cost == bestCost && farDeadline) {
				bestIdx = idx
				bestCost = cost
			}
		}

		if bestIdx == -1 {
			unscheduled = append(unscheduled, UnscheduledItem{Task: task, Reason: ReasonOutsideHorizon})
			continue
		}

		day := in.HorizonDates[bestIdx]
		byDay[day] = append(byDay[day], task)
		assignedMinutes[day] += task.DurationMinutes()
	}

	return byDay, unscheduled
}
