package sweep

import (
	"context"
	"log/slog"
	"time"
)

// Ledger is the sweep's single dependency: the bulk release of expired,
// never-confirmed holds.
type Ledger interface {
	ExpireHolds(ctx context.Context) (int64, error)
}

// Sweeper periodically releases pending reservations whose order was
// abandoned past the hold window. Client-side cart pruning only affects the
// buyer's own view; this is the mechanism that actually frees the seats.
type Sweeper struct {
	ledger   Ledger
	interval time.Duration
	logger   *slog.Logger
}

func New(ledger Ledger, interval time.Duration, logger *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Sweeper{
		ledger:   ledger,
		interval: interval,
		logger:   logger,
	}
}

// Run loops until the context is cancelled. Sweep errors are logged and the
// loop keeps going; a failed pass is retried on the next tick.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single sweep pass.
func (s *Sweeper) RunOnce(ctx context.Context) {
	released, err := s.ledger.ExpireHolds(ctx)
	if err != nil {
		s.logger.Error("hold sweep failed", "error", err)
		return
	}

	if released > 0 {
		s.logger.Info("released expired holds", "count", released)
	}
}
