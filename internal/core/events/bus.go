package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is anything dispatched through the bus. Subscribers type-assert to
// the concrete session event they care about.
type Event interface {
	EventType() string
	EventID() string
}

// Header carries the identity shared by every session event.
type Header struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
}

func newHeader(eventType string) Header {
	return Header{ID: uuid.NewString(), Type: eventType, OccurredAt: time.Now().UTC()}
}

func (h Header) EventType() string { return h.Type }

func (h Header) EventID() string { return h.ID }

type Handler func(ctx context.Context, event Event) error

// EventBus dispatches session events in-process, in the caller's goroutine.
type EventBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   *slog.Logger
}

func NewEventBus(logger *slog.Logger) *EventBus {
	return &EventBus{handlers: make(map[string][]Handler), logger: logger}
}

func (eb *EventBus) Subscribe(eventType string, handler Handler) {
	eb.mu.Lock()
	eb.handlers[eventType] = append(eb.handlers[eventType], handler)
	n := len(eb.handlers[eventType])
	eb.mu.Unlock()

	eb.logger.Debug("EventBus: subscribed", "event_type", eventType, "subscribers", n)
}

// Subscribers reports how many handlers listen for eventType.
func (eb *EventBus) Subscribers(eventType string) int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return len(eb.handlers[eventType])
}

// PublishSync runs every subscriber of the event in registration order.
// A failing or panicking handler does not stop the others; all failures are
// joined into the returned error.
func (eb *EventBus) PublishSync(ctx context.Context, event Event) error {
	eb.mu.RLock()
	handlers := append([]Handler(nil), eb.handlers[event.EventType()]...)
	eb.mu.RUnlock()

	if len(handlers) == 0 {
		return nil
	}

	var errs []error
	for i, handler := range handlers {
		if err := eb.call(ctx, handler, event); err != nil {
			eb.logger.Error("EventBus: handler failed",
				"event_type", event.EventType(),
				"event_id", event.EventID(),
				"handler", i,
				"error", err)
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s: %w", event.EventType(), errors.Join(errs...))
	}
	return nil
}

func (eb *EventBus) call(ctx context.Context, handler Handler, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return handler(ctx, event)
}
