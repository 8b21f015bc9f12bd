package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	sessionDatamodel "github.com/frahmantamala/employee-portal/internal/core/datamodel/session"
	"github.com/frahmantamala/employee-portal/internal/core/events"
)

type EventSubscriber interface {
	Subscribe(eventType string, handler events.Handler)
}

// HistoryRecorder keeps login_history in step with session events.
type HistoryRecorder struct {
	repo   HistoryRepositoryAPI
	logger *slog.Logger
}

func NewHistoryRecorder(repo HistoryRepositoryAPI, logger *slog.Logger) *HistoryRecorder {
	return &HistoryRecorder{repo: repo, logger: logger}
}

func (r *HistoryRecorder) Register(bus EventSubscriber) {
	bus.Subscribe(events.EventTypeSessionCreated, r.HandleSessionCreated)
	bus.Subscribe(events.EventTypeSessionTerminated, r.HandleSessionTerminated)
}

func (r *HistoryRecorder) HandleSessionCreated(ctx context.Context, event events.Event) error {
	created, ok := event.(*events.SessionCreatedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}

	err := r.repo.Record(ctx, &sessionDatamodel.LoginHistory{
		UserID:    created.UserID,
		SessionID: created.SessionID,
		IPAddress: created.IPAddress,
		AppName:   created.AppName,
		LoginAt:   created.LoginAt,
	})
	if err != nil {
		r.logger.Error("failed to record login", "session_id", created.SessionID, "error", err)
		return err
	}
	return nil
}

func (r *HistoryRecorder) HandleSessionTerminated(ctx context.Context, event events.Event) error {
	terminated, ok := event.(*events.SessionTerminatedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}

	if err := r.repo.MarkLoggedOut(ctx, terminated.SessionID, time.Now().UTC(), terminated.Reason); err != nil {
		r.logger.Error("failed to record logout", "session_id", terminated.SessionID, "error", err)
		return err
	}
	return nil
}
