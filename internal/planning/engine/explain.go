package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/daybreakhq/daybreak/internal/planning/domain"
)

// featureLabels maps feature indices to the phrases used in explanations.
var featureLabels = map[int]string{
	FeatProfile:            "user profile affinity",
	FeatDuration:           "shorter duration",
	FeatHoursUntilDeadline: "deadline proximity",
	FeatImportance:         "task importance",
	FeatCategory:           "task category",
	FeatPreferredTime:      "preferred time",
	FeatEnergy:             "energy requirement",
	FeatDayOfWeek:          "day-of-week fit",
	FeatIsWeekend:          "weekend/weekday context",
}

func partOfDay(t time.Time) string {
	h := t.Hour()
	switch {
	case h >= 6 && h < 12:
		return "morning"
	case h >= 12 && h < 18:
		return "afternoon"
	default:
		return "evening"
	}
}

type explanationInput struct {
	task               *domain.Task
	profile            string
	priority           float64
	start              time.Time
	end                time.Time
	hoursUntilDeadline float64
	preferredMatched   bool
	deadlineBinding    bool
	lowConflicts       bool
	topFeatures        []int
	biasReason         string
}

// buildExplanation assembles the per-item rationale from the signals the
// scheduler already computed.
func buildExplanation(in explanationInput) string {
	var parts []string

	switch in.task.Importance() {
	case domain.ImportanceHigh:
		parts = append(parts, "Marked as high importance.")
	case domain.ImportanceMedium:
		parts = append(parts, "Moderate importance, balanced with other tasks.")
	default:
		parts = append(parts, "Lower importance, scheduled after critical items.")
	}

	switch {
	case in.hoursUntilDeadline <= 4:
		parts = append(parts, "Deadline is imminent, so it was prioritized aggressively.")
	case in.hoursUntilDeadline <= 24:
		parts = append(parts, "Due within the day, elevated in the ranking.")
	case in.hoursUntilDeadline <= 72:
		parts = append(parts, "Due in a few days, kept near the middle of the day.")
	default:
		parts = append(parts, "Deadline is far out, giving flexibility.")
	}

	category := in.task.Category()
	if in.profile == "student" && category == domain.CategoryStudy {
		parts = append(parts, "Study items boosted for your student profile.")
	}
	if in.profile == "worker" && (category == domain.CategoryWork || category == domain.CategoryMeeting) {
		parts = append(parts, "Work/meeting tasks favored for a working profile.")
	}
	if in.profile == "entrepreneur" && (category == domain.CategoryWork || category == domain.CategoryAdmin) {
		parts = append(parts, "Work/admin emphasized for entrepreneurial profile.")
	}

	scheduledPart := partOfDay(in.start)
	if in.task.PreferredTime() != domain.PreferredAnytime {
		if in.preferredMatched {
			parts = append(parts, fmt.Sprintf("Placed in the %s to match your preferred window.", scheduledPart))
		} else {
			parts = append(parts, fmt.Sprintf("Preferred %s but scheduled in the %s to satisfy constraints.",
				in.task.PreferredTime(), scheduledPart))
		}
	} else {
		parts = append(parts, fmt.Sprintf("Scheduled in the %s since no specific time preference was set.", scheduledPart))
	}

	if in.deadlineBinding {
		parts = append(parts, "Slot chosen to remain before the deadline.")
	}
	if in.lowConflicts {
		parts = append(parts, "Position selected to reduce context switches.")
	}

	var phrases []string
	for _, idx := range in.topFeatures {
		if label, ok := featureLabels[idx]; ok {
			phrases = append(phrases, label)
		}
	}
	if len(phrases) > 0 {
		parts = append(parts, "Key signals: "+strings.Join(phrases, ", ")+".")
	}

	if in.biasReason != "" {
		parts = append(parts, in.biasReason)
	}

	parts = append(parts, fmt.Sprintf("Learned priority score: %.1f (relative scale).", in.priority))

	return strings.Join(parts, " ")
}

// biasRationale renders the personalization fragment for a task whose bias
// keys matched the learned map.
func biasRationale(bias float64, matchedKeys []string) string {
	if bias == 0 || len(matchedKeys) == 0 {
		return ""
	}
	direction := "earlier"
	if bias < 0 {
		direction = "later"
	}
	var fragments []string
	for _, key := range matchedKeys {
		fields := strings.Split(key, ":")
		switch fields[0] {
		case "type_importance":
			if len(fields) == 3 {
				fragments = append(fragments, fmt.Sprintf("%s tasks marked %s", fields[1], fields[2]))
			}
		case "preferred_time":
			if len(fields) == 2 {
				fragments = append(fragments, fields[1]+" placements")
			}
		case "energy":
			if len(fields) == 2 {
				fragments = append(fragments, fields[1]+"-energy tasks")
			}
		}
	}
	if len(fragments) == 0 {
		return ""
	}
	return fmt.Sprintf("Personalization: adjusted %s based on your past feedback for %s.",
		direction, strings.Join(fragments, ", "))
}

// llmExplanation is the short one-line rationale attached next to the full
// explanation.
func llmExplanation(task *domain.Task, start time.Time, profile string, priority float64, biasText string) string {
	tail := biasText
	if tail == "" {
		tail = "Kept preferences and deadline in mind."
	}
	return fmt.Sprintf("I placed '%s' at %s because you're a %s, priority %.1f. %s",
		task.Title(), start.Format("15:04"), profile, priority, tail)
}
