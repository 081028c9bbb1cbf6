package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/AbstractLogica/acp-tracker/internal/core/domain"
	"github.com/AbstractLogica/acp-tracker/internal/metrics"
)

// Dispatcher hands a message to every notifier. A failing channel never
// stops delivery to the others.
type Dispatcher struct {
	notifiers []domain.Notifier
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

func NewDispatcher(notifiers []domain.Notifier, m *metrics.Metrics, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		notifiers: notifiers,
		metrics:   m,
		logger:    logger.With(zap.String("component", "dispatcher")),
	}
}

// Dispatch returns how many channels accepted the message.
func (d *Dispatcher) Dispatch(ctx context.Context, msg domain.Message) int {
	delivered := 0
	for _, n := range d.notifiers {
		log := d.logger.With(zap.String("channel", n.Name()), zap.String("title", msg.Title))

		err := n.Send(ctx, msg)
		switch {
		case errors.Is(err, domain.ErrNotConfigured):
			log.Warn("Channel not configured, skipping", zap.Error(err))
			d.metrics.Delivery(n.Name(), "skipped")
		case err != nil:
			log.Error("Failed to send message", zap.Error(err))
			d.metrics.Delivery(n.Name(), "error")
		default:
			log.Info("Message sent")
			d.metrics.Delivery(n.Name(), "ok")
			delivered++
		}
	}
	return delivered
}
