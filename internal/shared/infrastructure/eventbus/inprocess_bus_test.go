package eventbus_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	planningDomain "github.com/daybreakhq/daybreak/internal/planning/domain"
	"github.com/daybreakhq/daybreak/internal/shared/infrastructure/eventbus"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestInProcessBus_DeliversToSubscribers(t *testing.T) {
	bus := eventbus.NewInProcessBus(testLogger())

	var received []*eventbus.Envelope
	bus.Subscribe("feedback.recorded", func(ctx context.Context, env *eventbus.Envelope) error {
		received = append(received, env)
		return nil
	})

	log, err := planningDomain.NewFeedbackLog(uuid.New(), uuid.NullUUID{}, 1, "")
	require.NoError(t, err)
	event := planningDomain.NewFeedbackRecordedEvent(log)

	require.NoError(t, eventbus.PublishEvent(context.Background(), bus, event))

	require.Len(t, received, 1)
	assert.Equal(t, "feedback.recorded", received[0].RoutingKey)
	assert.Equal(t, log.ID(), received[0].AggregateID)
	assert.NotEqual(t, uuid.Nil, received[0].EventID)
	assert.WithinDuration(t, time.Now(), received[0].OccurredAt, time.Minute)
}

func TestInProcessBus_IgnoresUnsubscribedKeys(t *testing.T) {
	bus := eventbus.NewInProcessBus(testLogger())

	delivered := false
	bus.Subscribe("plan.generated", func(ctx context.Context, env *eventbus.Envelope) error {
		delivered = true
		return nil
	})

	log, err := planningDomain.NewFeedbackLog(uuid.New(), uuid.NullUUID{}, -1, "")
	require.NoError(t, err)

	require.NoError(t, eventbus.PublishEvent(context.Background(), bus, planningDomain.NewFeedbackRecordedEvent(log)))
	assert.False(t, delivered)
}

func TestInProcessBus_HandlerErrorsDoNotPropagate(t *testing.T) {
	bus := eventbus.NewInProcessBus(testLogger())

	calls := 0
	bus.Subscribe("feedback.recorded", func(ctx context.Context, env *eventbus.Envelope) error {
		calls++
		return errors.New("handler exploded")
	})
	bus.Subscribe("feedback.recorded", func(ctx context.Context, env *eventbus.Envelope) error {
		calls++
		return nil
	})

	log, err := planningDomain.NewFeedbackLog(uuid.New(), uuid.NullUUID{}, 1, "")
	require.NoError(t, err)

	require.NoError(t, eventbus.PublishEvent(context.Background(), bus, planningDomain.NewFeedbackRecordedEvent(log)))
	assert.Equal(t, 2, calls, "all handlers run despite the failure")
}
