package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/daybreakhq/daybreak/internal/planning/domain"
)

// Feedback decay half-life and the weighted count at which personalization
// reaches full strength.
const (
	feedbackHalfLifeDays     = 14.0
	feedbackStrengthSaturate = 8.0
)

// BiasKeys derives the three personalization keys for a task.
func BiasKeys(task *domain.Task) [3]string {
	return [3]string{
		fmt.Sprintf("type_importance:%s:%s", task.Category(), task.Importance()),
		fmt.Sprintf("preferred_time:%s", task.PreferredTime()),
		fmt.Sprintf("energy:%s", task.Energy()),
	}
}

// LearnBias turns feedback history into a bias map and a strength in [0,1].
//
// Each entry with a linked task and non-zero outcome contributes its
// outcome to three keys, weighted by exp(-age_days/14). Each key's raw
// bias is twice its weighted average outcome; strength saturates at a
// total weight of 8 and scales every bias. Zero strength yields an empty
// map. The result depends only on the multiset of entries.
func LearnBias(entries []domain.FeedbackWithTask, now time.Time) (map[string]float64, float64) {
	type accum struct {
		weightedSum float64
		weightSum   float64
	}
	sums := make(map[string]*accum)
	totalWeight := 0.0

	for _, entry := range entries {
		if entry.Task == nil || entry.Log == nil || entry.Log.Outcome() == 0 {
			continue
		}
		ageDays := now.Sub(entry.Log.CreatedAt()).Hours() / 24.0
		if ageDays < 0 {
			ageDays = 0
		}
		weight := math.Exp(-ageDays / feedbackHalfLifeDays)
		totalWeight += weight

		for _, key := range BiasKeys(entry.Task) {
			acc := sums[key]
			if acc == nil {
				acc = &accum{}
				sums[key] = acc
			}
			acc.weightedSum += float64(entry.Log.Outcome()) * weight
			acc.weightSum += weight
		}
	}

	strength := math.Min(1, totalWeight/feedbackStrengthSaturate)
	if strength <= 0 {
		return map[string]float64{}, 0
	}

	bias := make(map[string]float64, len(sums))
	for key, acc := range sums {
		if acc.weightSum == 0 {
			continue
		}
		bias[key] = 2 * (acc.weightedSum / acc.weightSum) * strength
	}
	return bias, strength
}
