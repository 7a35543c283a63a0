// Package fanout delivers notification intents produced by social actions.
//
// Direct writes every intent before returning. Stream hands the intents to
// a Redis stream drained by worker.Manager and falls back to Direct when
// the stream is unavailable. In both modes a failed write for one
// recipient never fails the action that produced it.
package fanout

import (
	"context"

	"github.com/rs/zerolog"

	"omegavideos/internal/logging"
	"omegavideos/internal/metrics"
	"omegavideos/internal/model"
	"omegavideos/internal/queue"
)

// Result counts what happened to a batch of intents.
type Result struct {
	Delivered  int
	Suppressed int
	Failed     int
	Queued     int
}

func (r *Result) add(o Result) {
	r.Delivered += o.Delivered
	r.Suppressed += o.Suppressed
	r.Failed += o.Failed
	r.Queued += o.Queued
}

// Dispatcher delivers intents. It never returns an error; failures are
// logged and counted.
type Dispatcher interface {
	Dispatch(ctx context.Context, intents []model.NotificationIntent) Result
}

// NotificationWriter persists one notification.
type NotificationWriter interface {
	Create(ctx context.Context, intent model.NotificationIntent) error
}

// Direct writes one notification per intent in order.
type Direct struct {
	writer NotificationWriter
	log    zerolog.Logger
}

func NewDirect(writer NotificationWriter) *Direct {
	return &Direct{writer: writer, log: logging.Component("Fanout")}
}

func (d *Direct) Dispatch(ctx context.Context, intents []model.NotificationIntent) Result {
	var res Result
	for _, in := range intents {
		if in.SelfTriggered() {
			res.Suppressed++
			metrics.NotificationsFanoutTotal.WithLabelValues(in.Type, metrics.ResultSuppressed).Inc()
			continue
		}

		if err := d.writer.Create(ctx, in); err != nil {
			res.Failed++
			metrics.NotificationsFanoutTotal.WithLabelValues(in.Type, metrics.ResultFailed).Inc()
			d.log.Warn().Err(err).
				Int64("recipient_id", in.RecipientID).
				Int64("actor_id", in.ActorID).
				Str("type", in.Type).
				Msg("notification write failed")
			continue
		}

		res.Delivered++
		metrics.NotificationsFanoutTotal.WithLabelValues(in.Type, metrics.ResultDelivered).Inc()
	}
	return res
}

// Stream publishes intents to the notification stream.
type Stream struct {
	publisher queue.Publisher
	fallback  *Direct
	log       zerolog.Logger
}

func NewStream(publisher queue.Publisher, fallback *Direct) *Stream {
	return &Stream{publisher: publisher, fallback: fallback, log: logging.Component("Fanout")}
}

func (s *Stream) Dispatch(ctx context.Context, intents []model.NotificationIntent) Result {
	var res Result
	pending := make([]model.NotificationIntent, 0, len(intents))
	for _, in := range intents {
		if in.SelfTriggered() {
			res.Suppressed++
			metrics.NotificationsFanoutTotal.WithLabelValues(in.Type, metrics.ResultSuppressed).Inc()
			continue
		}
		pending = append(pending, in)
	}
	if len(pending) == 0 {
		return res
	}

	if _, err := s.publisher.Publish(ctx, queue.StreamNotifications, queue.NewNotificationEvent(pending)); err != nil {
		s.log.Warn().Err(err).Int("intents", len(pending)).Msg("stream publish failed, writing directly")
		res.add(s.fallback.Dispatch(ctx, pending))
		return res
	}

	res.Queued += len(pending)
	return res
}
