package engine

import "time"

// SlotMinutes is the fixed planning granularity.
const SlotMinutes = 30

// BuildSlots generates slot anchors at 30-minute steps from dayDate at
// startHour up to, but excluding, dayDate at endHour. Empty when
// endHour <= startHour.
func BuildSlots(dayDate time.Time, startHour, endHour int) []time.Time {
	day := time.Date(dayDate.Year(), dayDate.Month(), dayDate.Day(), 0, 0, 0, 0, time.UTC)
	start := day.Add(time.Duration(startHour) * time.Hour)
	end := day.Add(time.Duration(endHour) * time.Hour)

	var slots []time.Time
	for current := start; current.Before(end); current = current.Add(SlotMinutes * time.Minute) {
		slots = append(slots, current)
	}
	return slots
}

// RequiredSlots is the slot count a duration occupies, rounded up.
func RequiredSlots(durationMinutes int) int {
	return (durationMinutes + SlotMinutes - 1) / SlotMinutes
}
