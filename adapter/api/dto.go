package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/daybreakhq/daybreak/internal/planning/application"
)

// PlanRequest is the body of POST /planning/plan.
type PlanRequest struct {
	Date string `json:"date"`
}

// ScheduledTaskOut is one placed item in a plan response.
type ScheduledTaskOut struct {
	PlanItemID     uuid.UUID `json:"plan_item_id"`
	TaskID         uuid.UUID `json:"task_id"`
	Title          string    `json:"title"`
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	Explanation    string    `json:"explanation"`
	Priority       float64   `json:"priority"`
	LLMExplanation *string   `json:"llm_explanation,omitempty"`
}

// UnscheduledTaskOut is a task that is not on the plan.
type UnscheduledTaskOut struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	DurationMinutes int       `json:"duration_minutes"`
	Deadline        time.Time `json:"deadline"`
	Category        string    `json:"category"`
	Importance      string    `json:"importance"`
	PreferredTime   string    `json:"preferred_time"`
	Energy          string    `json:"energy"`
	Status          string    `json:"status"`
	Reason          string    `json:"reason"`
}

// PlanOut is the response of POST and GET /planning/plan.
type PlanOut struct {
	ModelVersion    string               `json:"model_version"`
	ModelConfidence *float64             `json:"model_confidence"`
	Scheduled       []ScheduledTaskOut   `json:"scheduled"`
	Unscheduled     []UnscheduledTaskOut `json:"unscheduled"`
}

// CalendarDayOut is one day in the calendar response.
type CalendarDayOut struct {
	PlanDate     string             `json:"plan_date"`
	ModelVersion string             `json:"model_version"`
	Summary      string             `json:"summary"`
	Scheduled    []ScheduledTaskOut `json:"scheduled"`
}

// CalendarOut is the response of GET /planning/calendar.
type CalendarOut struct {
	Days []CalendarDayOut `json:"days"`
}

// FeedbackRequest is the body of POST /feedback.
type FeedbackRequest struct {
	TaskID  *uuid.UUID `json:"task_id"`
	Outcome int        `json:"outcome"`
	Note    string     `json:"note"`
}

// FeedbackOut is one feedback log entry.
type FeedbackOut struct {
	ID        uuid.UUID  `json:"id"`
	TaskID    *uuid.UUID `json:"task_id"`
	Outcome   int        `json:"outcome"`
	Note      string     `json:"note,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// DetailOut carries a single human-readable detail string.
type DetailOut struct {
	Detail string `json:"detail"`
}

func toScheduledOut(v application.ScheduledItemView) ScheduledTaskOut {
	out := ScheduledTaskOut{
		PlanItemID:  v.PlanItemID,
		TaskID:      v.TaskID,
		Title:       v.Title,
		Start:       v.Start,
		End:         v.End,
		Explanation: v.Explanation,
		Priority:    v.Priority,
	}
	if v.LLMExplanation != "" {
		llm := v.LLMExplanation
		out.LLMExplanation = &llm
	}
	return out
}

func toPlanOut(view *application.PlanView) PlanOut {
	out := PlanOut{
		ModelVersion:    view.ModelVersion,
		ModelConfidence: view.ModelConfidence,
		Scheduled:       make([]ScheduledTaskOut, 0, len(view.Scheduled)),
		Unscheduled:     make([]UnscheduledTaskOut, 0, len(view.Unscheduled)),
	}
	for _, s := range view.Scheduled {
		out.Scheduled = append(out.Scheduled, toScheduledOut(s))
	}
	for _, u := range view.Unscheduled {
		t := u.Task
		out.Unscheduled = append(out.Unscheduled, UnscheduledTaskOut{
			ID:              t.ID(),
			Title:           t.Title(),
			Description:     t.Description(),
			DurationMinutes: t.DurationMinutes(),
			Deadline:        t.Deadline(),
			Category:        string(t.Category()),
			Importance:      string(t.Importance()),
			PreferredTime:   string(t.PreferredTime()),
			Energy:          string(t.Energy()),
			Status:          string(t.Status()),
			Reason:          u.Reason,
		})
	}
	return out
}

func toCalendarOut(view *application.CalendarView) CalendarOut {
	out := CalendarOut{Days: make([]CalendarDayOut, 0, len(view.Days))}
	for _, d := range view.Days {
		day := CalendarDayOut{
			PlanDate:     d.PlanDate.Format("2006-01-02"),
			ModelVersion: d.ModelVersion,
			Summary:      d.Summary,
			Scheduled:    make([]ScheduledTaskOut, 0, len(d.Scheduled)),
		}
		for _, s := range d.Scheduled {
			day.Scheduled = append(day.Scheduled, toScheduledOut(s))
		}
		out.Days = append(out.Days, day)
	}
	return out
}

func toFeedbackOut(v application.FeedbackView) FeedbackOut {
	return FeedbackOut{
		ID:        v.ID,
		TaskID:    v.TaskID,
		Outcome:   v.Outcome,
		Note:      v.Note,
		CreatedAt: v.CreatedAt,
	}
}
