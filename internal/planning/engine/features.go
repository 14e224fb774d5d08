// Package engine implements the planning core: feature encoding, the
// priority predictor, the feedback learner, intra-day placement, the day
// scheduler, and the horizon allocator. Everything here is pure CPU; the
// only I/O is the one-time model artifact load.
package engine

import (
	"github.com/daybreakhq/daybreak/internal/planning/domain"
)

// FeatureCount is the length of the encoded feature vector. The predictor
// artifact was trained against this exact layout; the order is part of the
// contract.
const FeatureCount = 9

// Feature vector indices.
const (
	FeatProfile = iota
	FeatDuration
	FeatHoursUntilDeadline
	FeatImportance
	FeatCategory
	FeatPreferredTime
	FeatEnergy
	FeatDayOfWeek
	FeatIsWeekend
)

var profileIndex = map[string]float64{
	"student":      0,
	"worker":       1,
	"entrepreneur": 2,
}

var importanceIndex = map[domain.Importance]float64{
	domain.ImportanceLow:    0,
	domain.ImportanceMedium: 1,
	domain.ImportanceHigh:   2,
}

var categoryIndex = map[domain.Category]float64{
	domain.CategoryStudy:    0,
	domain.CategoryWork:     1,
	domain.CategoryMeeting:  2,
	domain.CategoryPersonal: 3,
	domain.CategorySocial:   4,
	domain.CategoryAdmin:    5,
}

var preferredIndex = map[domain.PreferredTime]float64{
	domain.PreferredMorning:   0,
	domain.PreferredAfternoon: 1,
	domain.PreferredEvening:   2,
	domain.PreferredAnytime:   3,
}

var energyIndex = map[domain.Energy]float64{
	domain.EnergyLow:    0,
	domain.EnergyMedium: 1,
	domain.EnergyHigh:   2,
}

// EncodeFeatures builds the 9-float vector for a task in a planning
// context. Unknown strings fall back to their defaults: importance medium,
// preferred anytime, energy medium, category study, profile student.
func EncodeFeatures(
	profile string,
	durationMinutes int,
	hoursUntilDeadline float64,
	importance domain.Importance,
	category domain.Category,
	preferred domain.PreferredTime,
	energy domain.Energy,
	dayOfWeek int,
	isWeekend bool,
) []float64 {
	if hoursUntilDeadline < 0 {
		hoursUntilDeadline = 0
	}
	weekend := 0.0
	if isWeekend {
		weekend = 1
	}
	return []float64{
		lookup(profileIndex, profile, 0),
		float64(durationMinutes),
		hoursUntilDeadline,
		lookup(importanceIndex, importance, 1),
		lookup(categoryIndex, category, 0),
		lookup(preferredIndex, preferred, 3),
		lookup(energyIndex, energy, 1),
		float64(dayOfWeek),
		weekend,
	}
}

func lookup[K comparable](m map[K]float64, key K, fallback float64) float64 {
	if v, ok := m[key]; ok {
		return v
	}
	return fallback
}

// MondayWeekday converts Go's Sunday-first weekday to the Monday-first
// 0..6 index the encoder and mask use.
func MondayWeekday(day int) int {
	return (day + 6) % 7
}
