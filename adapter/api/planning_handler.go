package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/daybreakhq/daybreak/internal/planning/application/commands"
	"github.com/daybreakhq/daybreak/internal/planning/application/queries"
	"github.com/daybreakhq/daybreak/internal/planning/domain"
	"github.com/daybreakhq/daybreak/internal/shared/infrastructure/locking"
)

// PlanningHandler exposes the planning endpoints.
type PlanningHandler struct {
	generatePlan   *commands.GeneratePlanHandler
	moveItem       *commands.MoveItemHandler
	removeItem     *commands.RemoveItemHandler
	recordFeedback *commands.RecordFeedbackHandler
	getPlan        *queries.GetPlanHandler
	getCalendar    *queries.GetCalendarHandler
	listFeedback   *queries.ListFeedbackHandler
	logger         *slog.Logger
}

// NewPlanningHandler creates the handler.
func NewPlanningHandler(
	generatePlan *commands.GeneratePlanHandler,
	moveItem *commands.MoveItemHandler,
	removeItem *commands.RemoveItemHandler,
	recordFeedback *commands.RecordFeedbackHandler,
	getPlan *queries.GetPlanHandler,
	getCalendar *queries.GetCalendarHandler,
	listFeedback *queries.ListFeedbackHandler,
	logger *slog.Logger,
) *PlanningHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlanningHandler{
		generatePlan:   generatePlan,
		moveItem:       moveItem,
		removeItem:     removeItem,
		recordFeedback: recordFeedback,
		getPlan:        getPlan,
		getCalendar:    getCalendar,
		listFeedback:   listFeedback,
		logger:         logger,
	}
}

// GeneratePlan handles POST /api/v1/planning/plan.
func (h *PlanningHandler) GeneratePlan(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
		return
	}

	view, err := h.generatePlan.Handle(r.Context(), commands.GeneratePlanCommand{
		UserID:  user.ID(),
		Profile: user.Profile(),
		Date:    date,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPlanOut(view))
}

// GetPlan handles GET /api/v1/planning/plan?plan_date=YYYY-MM-DD.
func (h *PlanningHandler) GetPlan(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	date, err := time.Parse("2006-01-02", r.URL.Query().Get("plan_date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid plan_date, expected YYYY-MM-DD")
		return
	}

	view, err := h.getPlan.Handle(r.Context(), queries.GetPlanQuery{
		UserID:   user.ID(),
		PlanDate: date,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPlanOut(view))
}

// GetCalendar handles GET /api/v1/planning/calendar?start_date,end_date.
func (h *PlanningHandler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	start, err := time.Parse("2006-01-02", r.URL.Query().Get("start_date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date, expected YYYY-MM-DD")
		return
	}
	end, err := time.Parse("2006-01-02", r.URL.Query().Get("end_date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_date, expected YYYY-MM-DD")
		return
	}

	view, err := h.getCalendar.Handle(r.Context(), queries.GetCalendarQuery{
		UserID:    user.ID(),
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCalendarOut(view))
}

// MoveItem handles PATCH /api/v1/planning/item/{itemID}?start=...&end=...
func (h *PlanningHandler) MoveItem(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	itemID, err := uuid.Parse(r.PathValue("itemID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Plan item not found")
		return
	}
	start, err := parseInstant(r.URL.Query().Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start instant")
		return
	}
	end, err := parseInstant(r.URL.Query().Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end instant")
		return
	}

	view, err := h.moveItem.Handle(r.Context(), commands.MoveItemCommand{
		UserID: user.ID(),
		ItemID: itemID,
		Start:  start,
		End:    end,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toScheduledOut(*view))
}

// RemoveItem handles DELETE /api/v1/planning/item/{itemID}.
func (h *PlanningHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	itemID, err := uuid.Parse(r.PathValue("itemID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Plan item not found")
		return
	}

	err = h.removeItem.Handle(r.Context(), commands.RemoveItemCommand{
		UserID: user.ID(),
		ItemID: itemID,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DetailOut{Detail: "Removed from calendar"})
}

// RecordFeedback handles POST /api/v1/feedback.
func (h *PlanningHandler) RecordFeedback(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	view, err := h.recordFeedback.Handle(r.Context(), commands.RecordFeedbackCommand{
		UserID:  user.ID(),
		TaskID:  req.TaskID,
		Outcome: req.Outcome,
		Note:    req.Note,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toFeedbackOut(*view))
}

// ListFeedback handles GET /api/v1/feedback.
func (h *PlanningHandler) ListFeedback(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	views, err := h.listFeedback.Handle(r.Context(), queries.ListFeedbackQuery{
		UserID: user.ID(),
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	out := make([]FeedbackOut, 0, len(views))
	for _, v := range views {
		out = append(out, toFeedbackOut(v))
	}
	writeJSON(w, http.StatusOK, out)
}

// writeDomainError maps domain and application errors to HTTP status codes.
// Logical placement failures never reach here; they ride in the response's
// unscheduled list.
func (h *PlanningHandler) writeDomainError(w http.ResponseWriter, err error) {
	var conflict *domain.ConflictError
	switch {
	case errors.As(err, &conflict):
		writeError(w, http.StatusBadRequest, conflict.Error())
	case errors.Is(err, commands.ErrNoPendingTasks):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInvalidInterval),
		errors.Is(err, domain.ErrInvalidOutcome):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrPlanNotFound):
		writeError(w, http.StatusNotFound, "No plan found for this date")
	case errors.Is(err, domain.ErrPlanItemNotFound):
		writeError(w, http.StatusNotFound, "Plan item not found")
	case errors.Is(err, domain.ErrTaskNotFound):
		writeError(w, http.StatusNotFound, "Task not found")
	case errors.Is(err, locking.ErrLockHeld),
		errors.Is(err, domain.ErrPlanExists):
		writeError(w, http.StatusConflict, "A planning request for this date is already in progress")
	default:
		h.logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// parseInstant accepts RFC3339 instants with or without an offset. Offset
// instants are converted to UTC and the offset is dropped.
func parseInstant(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty instant")
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errors.New("unparseable instant")
}
