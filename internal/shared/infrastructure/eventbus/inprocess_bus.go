package eventbus

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
)

// Handler consumes events delivered on the in-process bus.
type Handler func(ctx context.Context, env *Envelope) error

// InProcessBus is an in-memory event bus for local mode (no RabbitMQ).
// Events are delivered synchronously to registered handlers.
type InProcessBus struct {
	logger   *slog.Logger
	mu       sync.Mutex
	handlers map[string][]Handler
}

// NewInProcessBus creates a new in-process event bus.
func NewInProcessBus(logger *slog.Logger) *InProcessBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &InProcessBus{
		logger:   logger,
		handlers: make(map[string][]Handler),
	}
}

// Subscribe registers a handler for a routing key.
func (b *InProcessBus) Subscribe(routingKey string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[routingKey] = append(b.handlers[routingKey], handler)
}

// Publish dispatches an event synchronously to all handlers for its key.
// Handler failures are logged, never propagated; local mode must not fail
// the request that produced the event.
func (b *InProcessBus) Publish(ctx context.Context, routingKey string, payload []byte) error {
	env := &Envelope{}
	if err := json.Unmarshal(payload, env); err != nil {
		b.logger.Error("failed to unmarshal event payload",
			"routing_key", routingKey,
			"error", err,
		)
		return nil
	}
	if env.RoutingKey == "" {
		env.RoutingKey = routingKey
	}

	b.mu.Lock()
	handlers := b.handlers[routingKey]
	b.mu.Unlock()

	for _, handler := range handlers {
		if err := handler(ctx, env); err != nil {
			b.logger.Error("event handler failed",
				"routing_key", routingKey,
				"event_id", env.EventID,
				"error", err,
			)
		}
	}

	b.logger.Debug("event dispatched",
		"routing_key", routingKey,
		"event_id", env.EventID,
		"handlers", len(handlers),
	)

	return nil
}

// Close implements Publisher.
func (b *InProcessBus) Close() error {
	return nil
}
