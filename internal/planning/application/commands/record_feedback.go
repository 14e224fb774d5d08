package commands

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/daybreakhq/daybreak/internal/planning/application"
	"github.com/daybreakhq/daybreak/internal/planning/domain"
	"github.com/daybreakhq/daybreak/internal/shared/infrastructure/database"
	"github.com/daybreakhq/daybreak/internal/shared/infrastructure/eventbus"
)

// RecordFeedbackCommand writes one feedback observation.
type RecordFeedbackCommand struct {
	UserID  uuid.UUID
	TaskID  *uuid.UUID
	Outcome int
	Note    string
}

// RecordFeedbackHandler persists feedback logs submitted directly through
// the API, alongside the ones the item mutator emits.
type RecordFeedbackHandler struct {
	feedbackRepo domain.FeedbackRepository
	uow          database.UnitOfWork
	publisher    eventbus.Publisher
	logger       *slog.Logger
}

// NewRecordFeedbackHandler creates the handler.
func NewRecordFeedbackHandler(
	feedbackRepo domain.FeedbackRepository,
	uow database.UnitOfWork,
	publisher eventbus.Publisher,
	logger *slog.Logger,
) *RecordFeedbackHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordFeedbackHandler{
		feedbackRepo: feedbackRepo,
		uow:          uow,
		publisher:    publisher,
		logger:       logger,
	}
}

// Handle validates and stores the feedback log.
func (h *RecordFeedbackHandler) Handle(ctx context.Context, cmd RecordFeedbackCommand) (*application.FeedbackView, error) {
	taskID := uuid.NullUUID{}
	if cmd.TaskID != nil {
		taskID = uuid.NullUUID{UUID: *cmd.TaskID, Valid: true}
	}

	log, err := domain.NewFeedbackLog(cmd.UserID, taskID, cmd.Outcome, cmd.Note)
	if err != nil {
		return nil, err
	}

	err = database.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		return h.feedbackRepo.Save(txCtx, log)
	})
	if err != nil {
		return nil, err
	}

	if h.publisher != nil {
		if err := eventbus.PublishEvent(ctx, h.publisher, domain.NewFeedbackRecordedEvent(log)); err != nil {
			h.logger.Warn("failed to publish feedback.recorded", "feedback_id", log.ID(), "error", err)
		}
	}

	view := &application.FeedbackView{
		ID:        log.ID(),
		Outcome:   log.Outcome(),
		Note:      log.Note(),
		CreatedAt: log.CreatedAt(),
	}
	if cmd.TaskID != nil {
		view.TaskID = cmd.TaskID
	}
	return view, nil
}
