package worker

import (
	"context"
	"time"

	"github.com/jwalitptl/medibook/pkg/logger"
)

// Cleaner cancels appointments whose date has passed.
type Cleaner interface {
	CleanupPastAppointments(ctx context.Context) (int64, error)
}

type AppointmentCleanupWorker struct {
	cleaner         Cleaner
	cleanupInterval time.Duration
	log             *logger.Logger
}

func NewAppointmentCleanupWorker(cleaner Cleaner, cleanupInterval time.Duration, log *logger.Logger) *AppointmentCleanupWorker {
	if log == nil {
		log = logger.Nop()
	}
	return &AppointmentCleanupWorker{
		cleaner:         cleaner,
		cleanupInterval: cleanupInterval,
		log:             log,
	}
}

// Start runs a cleanup immediately and then on every tick until ctx is done.
func (w *AppointmentCleanupWorker) Start(ctx context.Context) {
	w.cleanup(ctx)

	ticker := time.NewTicker(w.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.cleanup(ctx)
		}
	}
}

func (w *AppointmentCleanupWorker) cleanup(ctx context.Context) {
	n, err := w.cleaner.CleanupPastAppointments(ctx)
	if err != nil {
		// Log error but continue
		w.log.Error(err, "failed to clean up past appointments")
		return
	}
	if n > 0 {
		w.log.Info("cancelled past appointments", "count", n)
	}
}
