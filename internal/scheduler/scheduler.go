package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/univlib/circulation-service/internal/model"
)

// Sweeper is the slice of the circulation service the scheduler drives.
type Sweeper interface {
	SweepOverdue(ctx context.Context) (model.SweepSummary, error)
	SweepReadyExpiry(ctx context.Context) (model.SweepSummary, error)
	SweepHoldExpiry(ctx context.Context) (model.SweepSummary, error)
}

// Scheduler runs the three time-based sweeps on a fixed interval. Each sweep
// is idempotent, so a crash mid-pass is recovered by simply running again,
// either here or via the HTTP cron endpoints.
type Scheduler struct {
	svc      Sweeper
	interval time.Duration
	log      *zap.Logger
}

func New(svc Sweeper, interval time.Duration, log *zap.Logger) *Scheduler {
	return &Scheduler{
		svc:      svc,
		interval: interval,
		log:      log.Named("scheduler"),
	}
}

func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	type sweep struct {
		name string
		fn   func(ctx context.Context) (model.SweepSummary, error)
	}
	for _, sw := range []sweep{
		{"overdue-fines", s.svc.SweepOverdue},
		{"ready-expiry", s.svc.SweepReadyExpiry},
		{"hold-expiry", s.svc.SweepHoldExpiry},
	} {
		summary, err := sw.fn(ctx)
		if err != nil {
			s.log.Error("sweep failed", zap.String("sweep", sw.name), zap.Error(err))
			continue
		}
		s.log.Info("sweep done",
			zap.String("sweep", sw.name), zap.Int("processed", summary.Processed))
	}
}
