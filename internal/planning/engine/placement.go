package engine

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/daybreakhq/daybreak/internal/planning/domain"
)

// Slot owner sentinels. Values >= 0 are task indexes within the current
// scheduling run; blocked slots come from pre-occupied intervals and are
// never freed by placement.
const (
	slotFree    = -2
	slotBlocked = -1
)

// Exploration policy: while feedback is weak, occasionally pick among the
// cheapest few candidates instead of the single best.
const (
	explorationStrengthCeiling = 0.4
	explorationProbability     = 0.10
	explorationPoolSize        = 3
)

// placementInput is everything needed to place one task on a day grid.
type placementInput struct {
	slots              []time.Time
	owners             []int
	req                int
	durationMinutes    int
	latestEnd          time.Time
	hoursUntilDeadline float64
	prefLo, prefHi     int
	energy             domain.Energy
}

// preferredWindow maps a preferred-time tag to a slot index range against
// the configured working hours.
func preferredWindow(pref domain.PreferredTime, n, startHour, endHour int) (int, int) {
	hourToIdx := func(hour int) int {
		idx := (hour - startHour) * 60 / SlotMinutes
		if idx < 0 {
			return 0
		}
		return idx
	}

	switch pref {
	case domain.PreferredMorning:
		return 0, hourToIdx(min(endHour, 12))
	case domain.PreferredAfternoon:
		return hourToIdx(max(startHour, 12)), hourToIdx(min(endHour, 18))
	case domain.PreferredEvening:
		return hourToIdx(max(startHour, 18)), n
	default:
		return 0, n
	}
}

// feasible reports whether the task can start at slot index s: it must fit
// on the grid, finish before latestEnd, and only cross free slots. Slots
// owned by selfOwner count as free, which lets shift_earlier re-evaluate a
// task's own footprint.
func feasible(in placementInput, s, selfOwner int) bool {
	end := s + in.req
	if end > len(in.slots) {
		return false
	}
	if !in.slots[end-1].Before(in.latestEnd) {
		return false
	}
	for i := s; i < end; i++ {
		if in.owners[i] != slotFree && in.owners[i] != selfOwner {
			return false
		}
	}
	return true
}

// placementCost scores a feasible start index; lower is better.
func placementCost(in placementInput, s, selfOwner int) float64 {
	cost := 0.0

	if s < in.prefLo || s >= in.prefHi {
		cost += 4
	}

	if in.hoursUntilDeadline < 48 {
		slackMin := in.latestEnd.Sub(in.slots[s].Add(time.Duration(in.durationMinutes) * time.Minute)).Minutes()
		if slackMin < 0 {
			slackMin = 0
		}
		if slackMin < 240 {
			w := (48 - in.hoursUntilDeadline) / 48
			cost += ((240 - slackMin) / 240) * 6 * w
		}
	}

	hour := in.slots[s].Hour()
	if (in.energy == domain.EnergyHigh && hour >= 17) || (in.energy == domain.EnergyLow && hour < 12) {
		cost += 2
	}

	cost += fragmentation(in, s, selfOwner) * 2

	return cost
}

// fragmentation counts single-slot gaps the placement would leave against
// an occupied neighbor on either side.
func fragmentation(in placementInput, s, selfOwner int) float64 {
	occupied := func(i int) bool {
		return in.owners[i] != slotFree && in.owners[i] != selfOwner
	}
	count := 0.0
	if s-2 >= 0 && !occupied(s-1) && occupied(s-2) {
		count++
	}
	right := s + in.req
	if right+1 < len(in.slots) && !occupied(right) && occupied(right+1) {
		count++
	}
	return count
}

// findStart picks the best feasible start index for the task, or false when
// none exists.
//
// Candidates are ordered by (cost, distance to the preferred-window center,
// not-day-start, index). While feedback strength is below the exploration
// ceiling, with probability 0.10 the choice falls uniformly on one of the
// three lowest-cost candidates instead.
func findStart(in placementInput, selfOwner int, strength float64, rng *rand.Rand) (int, bool) {
	n := len(in.slots)
	type candidate struct {
		start int
		cost  float64
	}
	var candidates []candidate
	for s := 0; s+in.req <= n; s++ {
		if feasible(in, s, selfOwner) {
			candidates = append(candidates, candidate{start: s, cost: placementCost(in, s, selfOwner)})
		}
	}
	if len(candidates) == 0 {
		return 0, false
	}

	center := float64(n-1) / 2
	if in.prefHi > in.prefLo {
		center = float64(in.prefLo+in.prefHi-1) / 2
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		ca, cb := candidates[a], candidates[b]
		if ca.cost != cb.cost {
			return ca.cost < cb.cost
		}
		da := math.Abs(float64(ca.start) - center)
		db := math.Abs(float64(cb.start) - center)
		if da != db {
			return da < db
		}
		za, zb := 0, 0
		if ca.start == 0 {
			za = 1
		}
		if cb.start == 0 {
			zb = 1
		}
		if za != zb {
			return za < zb
		}
		return ca.start < cb.start
	})

	if strength < explorationStrengthCeiling && rng != nil && rng.Float64() < explorationProbability {
		pool := make([]candidate, len(candidates))
		copy(pool, candidates)
		sort.SliceStable(pool, func(a, b int) bool {
			if pool[a].cost != pool[b].cost {
				return pool[a].cost < pool[b].cost
			}
			return pool[a].start < pool[b].start
		})
		if len(pool) > explorationPoolSize {
			pool = pool[:explorationPoolSize]
		}
		return pool[rng.Intn(len(pool))].start, true
	}

	return candidates[0].start, true
}
