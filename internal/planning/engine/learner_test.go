package engine_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daybreakhq/daybreak/internal/planning/domain"
	"github.com/daybreakhq/daybreak/internal/planning/engine"
)

func TestLearnBias_EmptyHistory(t *testing.T) {
	now := mustInstant(t, "2026-03-02T08:00")

	bias, strength := engine.LearnBias(nil, now)

	assert.Empty(t, bias)
	assert.Zero(t, strength)
}

func TestLearnBias_SingleFreshEntry(t *testing.T) {
	now := mustInstant(t, "2026-03-02T08:00")
	task := makeTask(t, taskSpec{
		title: "Prepare slides", duration: 60,
		deadline:   mustDate(t, "2026-03-06"),
		category:   domain.CategoryWork,
		importance: domain.ImportanceHigh,
		preferred:  domain.PreferredMorning,
		energy:     domain.EnergyHigh,
	})

	bias, strength := engine.LearnBias([]domain.FeedbackWithTask{
		feedbackAt(t, task, 1, now),
	}, now)

	// One entry at zero age: weight 1, strength 1/8, bias 2*1*(1/8) per key.
	assert.InDelta(t, 0.125, strength, 1e-9)
	require.Len(t, bias, 3)
	assert.InDelta(t, 0.25, bias["type_importance:work:high"], 1e-9)
	assert.InDelta(t, 0.25, bias["preferred_time:morning"], 1e-9)
	assert.InDelta(t, 0.25, bias["energy:high"], 1e-9)
}

func TestLearnBias_AncientEntryDecaysToNothing(t *testing.T) {
	now := mustInstant(t, "2026-03-02T08:00")
	task := makeTask(t, taskSpec{
		title: "Old habit", duration: 30,
		deadline: mustDate(t, "2026-03-06"),
	})

	bias, strength := engine.LearnBias([]domain.FeedbackWithTask{
		feedbackAt(t, task, 1, now.AddDate(0, 0, -200)),
	}, now)

	assert.Less(t, strength, 0.01)
	for key, value := range bias {
		assert.Less(t, math.Abs(value), 0.01, "key %s", key)
	}
}

func TestLearnBias_StrengthGrowsWithHistoryAndSaturates(t *testing.T) {
	now := mustInstant(t, "2026-03-02T08:00")
	task := makeTask(t, taskSpec{
		title: "Repeated", duration: 30,
		deadline: mustDate(t, "2026-03-06"),
	})

	previous := 0.0
	for count := 1; count <= 10; count++ {
		entries := make([]domain.FeedbackWithTask, count)
		for i := range entries {
			entries[i] = feedbackAt(t, task, 1, now)
		}
		_, strength := engine.LearnBias(entries, now)
		assert.GreaterOrEqual(t, strength, previous)
		previous = strength
	}
	// Ten fresh entries exceed the saturation point of eight.
	assert.Equal(t, 1.0, previous)
}

func TestLearnBias_OrderIndependent(t *testing.T) {
	now := mustInstant(t, "2026-03-02T08:00")
	taskA := makeTask(t, taskSpec{
		title: "A", duration: 30, deadline: mustDate(t, "2026-03-06"),
		category: domain.CategoryWork, importance: domain.ImportanceHigh,
	})
	taskB := makeTask(t, taskSpec{
		title: "B", duration: 30, deadline: mustDate(t, "2026-03-06"),
		category: domain.CategoryStudy, importance: domain.ImportanceLow,
		preferred: domain.PreferredEvening, energy: domain.EnergyLow,
	})

	entries := []domain.FeedbackWithTask{
		feedbackAt(t, taskA, 1, now.AddDate(0, 0, -1)),
		feedbackAt(t, taskB, -1, now.AddDate(0, 0, -3)),
		feedbackAt(t, taskA, -1, now.AddDate(0, 0, -7)),
		feedbackAt(t, taskB, 1, now),
	}
	reversed := make([]domain.FeedbackWithTask, len(entries))
	for i, entry := range entries {
		reversed[len(entries)-1-i] = entry
	}

	biasForward, strengthForward := engine.LearnBias(entries, now)
	biasReversed, strengthReversed := engine.LearnBias(reversed, now)

	assert.InDelta(t, strengthForward, strengthReversed, 1e-12)
	require.Equal(t, len(biasForward), len(biasReversed))
	for key, value := range biasForward {
		assert.InDelta(t, value, biasReversed[key], 1e-12, "key %s", key)
	}
}

func TestLearnBias_IgnoresUnlinkedAndZeroOutcomeEntries(t *testing.T) {
	now := mustInstant(t, "2026-03-02T08:00")
	task := makeTask(t, taskSpec{
		title: "Linked", duration: 30, deadline: mustDate(t, "2026-03-06"),
	})

	linked := feedbackAt(t, task, 1, now)
	unlinked := feedbackAt(t, task, 1, now)
	unlinked.Task = nil

	bias, strength := engine.LearnBias([]domain.FeedbackWithTask{linked, unlinked}, now)

	// Only the linked entry counts.
	assert.InDelta(t, 0.125, strength, 1e-9)
	assert.Len(t, bias, 3)
}

func TestLearnBias_MixedOutcomesCancel(t *testing.T) {
	now := mustInstant(t, "2026-03-02T08:00")
	task := makeTask(t, taskSpec{
		title: "Contested", duration: 30, deadline: mustDate(t, "2026-03-06"),
	})

	bias, _ := engine.LearnBias([]domain.FeedbackWithTask{
		feedbackAt(t, task, 1, now),
		feedbackAt(t, task, -1, now),
	}, now)

	for key, value := range bias {
		assert.InDelta(t, 0, value, 1e-9, "key %s", key)
	}
}
