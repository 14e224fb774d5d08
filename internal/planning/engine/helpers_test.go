package engine_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/daybreakhq/daybreak/internal/planning/domain"
)

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", value)
	require.NoError(t, err)
	return parsed
}

func mustInstant(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02T15:04", value)
	require.NoError(t, err)
	return parsed.UTC()
}

type taskSpec struct {
	title      string
	duration   int
	deadline   time.Time
	category   domain.Category
	importance domain.Importance
	preferred  domain.PreferredTime
	energy     domain.Energy
}

func makeTask(t *testing.T, spec taskSpec) *domain.Task {
	t.Helper()
	if spec.category == "" {
		spec.category = domain.CategoryWork
	}
	if spec.importance == "" {
		spec.importance = domain.ImportanceMedium
	}
	if spec.preferred == "" {
		spec.preferred = domain.PreferredAnytime
	}
	if spec.energy == "" {
		spec.energy = domain.EnergyMedium
	}
	task, err := domain.NewTask(
		uuid.New(), spec.title, "", spec.duration, spec.deadline,
		spec.category, spec.importance, spec.preferred, spec.energy,
	)
	require.NoError(t, err)
	return task
}

func feedbackAt(t *testing.T, task *domain.Task, outcome int, createdAt time.Time) domain.FeedbackWithTask {
	t.Helper()
	log := domain.RehydrateFeedbackLog(
		uuid.New(), uuid.New(),
		uuid.NullUUID{UUID: task.ID(), Valid: true},
		outcome, "", createdAt,
	)
	return domain.FeedbackWithTask{Log: log, Task: task}
}
