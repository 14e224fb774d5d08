package queries

import (
	"context"

	"github.com/google/uuid"

	"github.com/daybreakhq/daybreak/internal/planning/application"
	"github.com/daybreakhq/daybreak/internal/planning/domain"
)

// ListFeedbackQuery fetches a user's recent feedback logs.
type ListFeedbackQuery struct {
	UserID uuid.UUID
	Limit  int
}

// ListFeedbackHandler handles the ListFeedbackQuery.
type ListFeedbackHandler struct {
	feedbackRepo domain.FeedbackRepository
}

// NewListFeedbackHandler creates the handler.
func NewListFeedbackHandler(feedbackRepo domain.FeedbackRepository) *ListFeedbackHandler {
	return &ListFeedbackHandler{feedbackRepo: feedbackRepo}
}

// Handle returns the most recent logs, newest first.
func (h *ListFeedbackHandler) Handle(ctx context.Context, q ListFeedbackQuery) ([]application.FeedbackView, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}

	logs, err := h.feedbackRepo.ListByUser(ctx, q.UserID, limit)
	if err != nil {
		return nil, err
	}

	views := make([]application.FeedbackView, 0, len(logs))
	for _, log := range logs {
		v := application.FeedbackView{
			ID:        log.ID(),
			Outcome:   log.Outcome(),
			Note:      log.Note(),
			CreatedAt: log.CreatedAt(),
		}
		if log.TaskID().Valid {
			id := log.TaskID().UUID
			v.TaskID = &id
		}
		views = append(views, v)
	}
	return views, nil
}
