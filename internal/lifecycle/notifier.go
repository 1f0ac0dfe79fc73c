package lifecycle

import (
	"context"

	"go.uber.org/zap"

	"github.com/slotworks/salon-scheduler/internal/models"
)

// Notifier receives fired lifecycle events. Delivery transport (mail, push,
// SMS) lives behind this interface and outside this service.
type Notifier interface {
	Notify(ctx context.Context, ap *models.Appointment, kind EventKind) error
}

// LogNotifier is the default sink: it records the firing and nothing else.
type LogNotifier struct {
	Log *zap.Logger
}

func (n *LogNotifier) Notify(_ context.Context, ap *models.Appointment, kind EventKind) error {
	n.Log.Info("lifecycle event fired",
		zap.Uint("booking_id", ap.ID),
		zap.String("reference", ap.Reference),
		zap.String("kind", string(kind)),
		zap.String("status", ap.Status),
		zap.Time("starts_at", ap.StartsAt),
	)
	return nil
}

var _ Notifier = (*LogNotifier)(nil)
