package service

import (
	"context"
	"log/slog"
	"time"
)

// Expirer runs one expiry sweep.
type Expirer interface {
	ExpireApplications(ctx context.Context) (*ExpiryReport, error)
}

// Sweeper calls ExpireApplications on a fixed interval until its context is
// cancelled. Sweeps never overlap.
type Sweeper struct {
	expirer  Expirer
	interval time.Duration
	logger   *slog.Logger
}

func NewSweeper(expirer Expirer, interval time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{expirer: expirer, interval: interval, logger: logger}
}

// Run sweeps once immediately, then on every tick.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	report, err := s.expirer.ExpireApplications(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.ErrorContext(ctx, "expiry sweep failed", "error", err)
		}
		return
	}
	if len(report.Failures) > 0 {
		s.logger.WarnContext(ctx, "expiry sweep finished with failures",
			"expired", len(report.Expired),
			"failures", len(report.Failures),
			"error", report.Err(),
		)
	}
}
