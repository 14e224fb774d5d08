package engine

import (
	"math/rand"
	"sort"
	"time"

	"github.com/daybreakhq/daybreak/internal/planning/domain"
)

// Unscheduled reasons surfaced to the client. Logical placement failures
// are not errors; they flow into the unscheduled list with one of these.
const (
	ReasonNoWorkingHours = "No working hours configured for this day"
	ReasonTooLong        = "Duration exceeds available day length"
	ReasonNoSlot         = "No available slot before deadline/preference"
	ReasonOutsideHorizon = "Deadline outside horizon"
	ReasonNotPlaced      = "Not placed in the last plan"
)

// Interval is a half-open [Start, End) time range.
type Interval struct {
	Start time.Time
	End   time.Time
}

// DayInput carries everything the day scheduler needs for one date.
type DayInput struct {
	Tasks     []*domain.Task
	Profile   string
	PlanDate  time.Time
	Feedback  []domain.FeedbackWithTask
	StartHour int
	EndHour   int
	Occupied  []Interval
	Now       time.Time
	Rand      *rand.Rand
}

// ScheduledItem is one placed task with its rationale.
type ScheduledItem struct {
	Task           *domain.Task
	Start          time.Time
	End            time.Time
	Priority       float64
	Explanation    string
	LLMExplanation string
}

// UnscheduledItem is a task that could not be placed, with the reason.
type UnscheduledItem struct {
	Task   *domain.Task
	Reason string
}

// DayResult is the outcome of scheduling one day.
type DayResult struct {
	Scheduled       []ScheduledItem
	Unscheduled     []UnscheduledItem
	ModelConfidence *float64
}

// DayScheduler places one day's tasks against the working-hour grid using
// the priority predictor and learned feedback bias.
type DayScheduler struct {
	predictor Predictor
}

// NewDayScheduler creates a scheduler over the given predictor.
func NewDayScheduler(predictor Predictor) *DayScheduler {
	return &DayScheduler{predictor: predictor}
}

type assignment struct {
	taskIdx int
	start   int
	input   placementInput
}

// Schedule runs the full per-day pipeline: score, sort, place, then shift
// placed tasks earlier where that strictly lowers their cost.
func (ds *DayScheduler) Schedule(in DayInput) DayResult {
	confidence := ModelConfidence(ds.predictor)
	topFeatures := TopFeatures(ds.predictor)

	result := DayResult{ModelConfidence: confidence}

	slots := BuildSlots(in.PlanDate, in.StartHour, in.EndHour)
	if len(slots) == 0 {
		for _, t := range in.Tasks {
			result.Unscheduled = append(result.Unscheduled, UnscheduledItem{Task: t, Reason: ReasonNoWorkingHours})
		}
		return result
	}
	n := len(slots)

	owners := make([]int, n)
	for i := range owners {
		owners[i] = slotFree
	}
	for _, iv := range in.Occupied {
		for i, anchor := range slots {
			slotEnd := anchor.Add(SlotMinutes * time.Minute)
			if anchor.Before(iv.End) && iv.Start.Before(slotEnd) {
				owners[i] = slotBlocked
			}
		}
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	bias, strength := LearnBias(in.Feedback, now)

	dayOfWeek := MondayWeekday(int(in.PlanDate.Weekday()))
	isWeekend := dayOfWeek >= 5
	dayStart := slots[0]
	dayEnd := time.Date(in.PlanDate.Year(), in.PlanDate.Month(), in.PlanDate.Day(), 0, 0, 0, 0, time.UTC).
		Add(time.Duration(in.EndHour) * time.Hour)

	type scored struct {
		task               *domain.Task
		idx                int
		priority           float64
		hoursUntilDeadline float64
		biasTotal          float64
		matchedKeys        []string
	}
	scoredTasks := make([]scored, 0, len(in.Tasks))
	for idx, t := range in.Tasks {
		h := t.Deadline().Sub(dayStart).Hours()
		if h < 0 {
			h = 0
		}
		features := EncodeFeatures(
			in.Profile,
			t.DurationMinutes(),
			h,
			t.Importance(),
			t.Category(),
			t.PreferredTime(),
			t.Energy(),
			dayOfWeek,
			isWeekend,
		)
		base := ds.predictor.Predict(features)

		taskBias := 0.0
		var matched []string
		for _, key := range BiasKeys(t) {
			if v, ok := bias[key]; ok && v != 0 {
				taskBias += v
				matched = append(matched, key)
			}
		}

		urgency := 0.0
		if h < 48 {
			urgency = (48 - h) / 48 * 1.5
			if h < 24 {
				urgency += (24 - h) / 24 * 1.5
			}
		}
		importanceBoost := 0.0
		if t.Importance() == domain.ImportanceHigh {
			importanceBoost = 0.4
		}

		scoredTasks = append(scoredTasks, scored{
			task:               t,
			idx:                idx,
			priority:           base + taskBias + urgency + importanceBoost,
			hoursUntilDeadline: h,
			biasTotal:          taskBias,
			matchedKeys:        matched,
		})
	}

	sort.SliceStable(scoredTasks, func(a, b int) bool {
		return scoredTasks[a].priority > scoredTasks[b].priority
	})

	var placed []assignment
	placedMeta := make(map[int]scored)
	for _, st := range scoredTasks {
		t := st.task
		req := RequiredSlots(t.DurationMinutes())
		if req > n {
			result.Unscheduled = append(result.Unscheduled, UnscheduledItem{Task: t, Reason: ReasonTooLong})
			continue
		}

		latestEnd := dayEnd
		if t.Deadline().Before(latestEnd) {
			latestEnd = t.Deadline()
		}
		prefLo, prefHi := preferredWindow(t.PreferredTime(), n, in.StartHour, in.EndHour)

		input := placementInput{
			slots:              slots,
			owners:             owners,
			req:                req,
			durationMinutes:    t.DurationMinutes(),
			latestEnd:          latestEnd,
			hoursUntilDeadline: st.hoursUntilDeadline,
			prefLo:             prefLo,
			prefHi:             prefHi,
			energy:             t.Energy(),
		}

		start, ok := findStart(input, st.idx, strength, in.Rand)
		if !ok {
			result.Unscheduled = append(result.Unscheduled, UnscheduledItem{Task: t, Reason: ReasonNoSlot})
			continue
		}

		for i := start; i < start+req; i++ {
			owners[i] = st.idx
		}
		placed = append(placed, assignment{taskIdx: st.idx, start: start, input: input})
		placedMeta[st.idx] = st
	}

	shiftEarlier(placed, owners)

	for _, a := range placed {
		st := placedMeta[a.taskIdx]
		t := st.task
		start := slots[a.start]
		end := start.Add(time.Duration(t.DurationMinutes()) * time.Minute)

		preferredMatched := a.start >= a.input.prefLo && a.start < a.input.prefHi
		deadlineBinding := !end.Before(t.Deadline().Add(-time.Hour))

		biasText := biasRationale(st.biasTotal, st.matchedKeys)
		explanation := buildExplanation(explanationInput{
			task:               t,
			profile:            in.Profile,
			priority:           st.priority,
			start:              start,
			end:                end,
			hoursUntilDeadline: st.hoursUntilDeadline,
			preferredMatched:   preferredMatched,
			deadlineBinding:    deadlineBinding,
			lowConflicts:       true,
			topFeatures:        topFeatures,
			biasReason:         biasText,
		})

		result.Scheduled = append(result.Scheduled, ScheduledItem{
			Task:           t,
			Start:          start,
			End:            end,
			Priority:       st.priority,
			Explanation:    explanation,
			LLMExplanation: llmExplanation(t, start, in.Profile, st.priority, biasText),
		})
	}

	return result
}

// shiftEarlier tries to move each placed task to the first earlier start
// whose cost, with the task's own slots treated as free, is strictly lower
// than its current cost.
func shiftEarlier(placed []assignment, owners []int) {
	for pi := range placed {
		a := &placed[pi]
		current := placementCost(a.input, a.start, a.taskIdx)
		for s := 0; s < a.start; s++ {
			if !feasible(a.input, s, a.taskIdx) {
				continue
			}
			if placementCost(a.input, s, a.taskIdx) < current {
				for i := a.start; i < a.start+a.input.req; i++ {
					owners[i] = slotFree
				}
				for i := s; i < s+a.input.req; i++ {
					owners[i] = a.taskIdx
				}
				a.start = s
				break
			}
		}
	}
}
