package retag

import (
	"context"
	"log/slog"
	"time"
)

const finalRunTimeout = 30 * time.Second

// Runner is one unit of scheduled work. *Job implements it.
type Runner interface {
	Run(ctx context.Context) (Result, error)
}

// Scheduler runs a retag job on a periodic interval.
// It is stateless: each tick recomputes from the stored definitions.
type Scheduler struct {
	interval time.Duration
	runner   Runner
}

// NewScheduler creates a scheduler for runner.
func NewScheduler(interval time.Duration, runner Runner) *Scheduler {
	return &Scheduler{interval: interval, runner: runner}
}

// Start runs once immediately, then on every tick until ctx is cancelled.
// A last run happens on shutdown so definitions saved since the previous tick are applied.
func (s *Scheduler) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("[Scheduler] Starting retag scheduler", "interval", s.interval)

	s.runOnce(ctx)

	for {
		select {
		case <-ticker.C:
			s.runOnce(ctx)
		case <-ctx.Done():
			slog.Info("[Scheduler] Stopping (context cancelled)")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), finalRunTimeout)
			defer cancel()

			slog.Info("[Scheduler] Running final retag before shutdown...")
			s.runOnce(shutdownCtx)
			slog.Info("[Scheduler] Final retag complete")

			return nil
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if _, err := s.runner.Run(ctx); err != nil {
		slog.Error("[Scheduler] Retag failed", "error", err)
	}
}
