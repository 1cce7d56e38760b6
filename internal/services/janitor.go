package services

import (
	"context"
	"log/slog"
	"time"
)

// ReportDataPurger deletes report data whose retention period has elapsed.
type ReportDataPurger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// Janitor periodically purges expired report data. Retention tags stay
// advisory for everything else; the janitor only applies the documented
// deletion eligibility rule to rows this service itself produced.
type Janitor struct {
	purger   ReportDataPurger
	interval time.Duration
	logger   *slog.Logger
}

// NewJanitor creates a janitor running at the given interval.
func NewJanitor(purger ReportDataPurger, interval time.Duration, logger *slog.Logger) *Janitor {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return &Janitor{
		purger:   purger,
		interval: interval,
		logger:   logger.With(slog.String("service", "janitor")),
	}
}

// Run purges on the configured interval until ctx is cancelled.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged, err := j.purger.PurgeExpired(ctx, time.Now())
			if err != nil {
				j.logger.Error("purge failed", slog.String("error", err.Error()))
				continue
			}
			if purged > 0 {
				j.logger.Info("purged expired report data", slog.Int64("rows", purged))
			}
		}
	}
}
