package worker

import (
	"context"
	"fmt"
	"time"

	"omegavideos/internal/fanout"
	"omegavideos/internal/logging"
	"omegavideos/internal/queue"
)

// Handler processes notification events from the queue.
type Handler struct {
	dispatcher fanout.Dispatcher
}

// NewHandler takes the dispatcher that performs the writes, normally a
// *fanout.Direct.
func NewHandler(dispatcher fanout.Dispatcher) *Handler {
	return &Handler{dispatcher: dispatcher}
}

// HandleEvent routes an event by type. Per-recipient write failures are
// logged by the dispatcher and do not make the event fail.
func (h *Handler) HandleEvent(ctx context.Context, event queue.NotificationEvent) error {
	log := logging.Component("Worker")
	startTime := time.Now()

	switch event.Type {
	case queue.EventNotificationsRequested:
		res := h.dispatcher.Dispatch(ctx, event.Intents)
		log.Debug().
			Int("delivered", res.Delivered).
			Int("suppressed", res.Suppressed).
			Int("failed", res.Failed).
			Dur("duration", time.Since(startTime)).
			Msg("HandleEvent OK")
		return nil
	default:
		return fmt.Errorf("unknown event type: %s", event.Type)
	}
}
