// Package jobs holds background maintenance loops.
package jobs

import (
	"context"
	"log/slog"
	"time"
)

// CheckoutExpirer is the slice of the checkout service the sweeper needs.
type CheckoutExpirer interface {
	ExpireStale(ctx context.Context, ttl time.Duration) (int, error)
}

// Sweeper periodically tears down pending checkout sessions older than the
// TTL, releasing their stock reservations. Sessions only leave the pending
// state through payment, explicit deletion or this sweep, so without it an
// abandoned checkout would hold stock forever.
type Sweeper struct {
	checkouts CheckoutExpirer
	logger    *slog.Logger
	ttl       time.Duration
	interval  time.Duration
}

func NewSweeper(checkouts CheckoutExpirer, logger *slog.Logger, ttl, interval time.Duration) *Sweeper {
	return &Sweeper{
		checkouts: checkouts,
		logger:    logger,
		ttl:       ttl,
		interval:  interval,
	}
}

// Run blocks until ctx is cancelled, sweeping once per interval. Call it in
// its own goroutine. A TTL of zero disables sweeping entirely.
func (s *Sweeper) Run(ctx context.Context) {
	if s.ttl <= 0 {
		s.logger.Info("checkout sweeper disabled")
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("checkout sweeper started",
		slog.Duration("ttl", s.ttl),
		slog.Duration("interval", s.interval),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("checkout sweeper stopped")
			return
		case <-ticker.C:
			expired, err := s.checkouts.ExpireStale(ctx, s.ttl)
			if err != nil {
				s.logger.Error("checkout sweep failed", slog.String("error", err.Error()))
				continue
			}
			if expired > 0 {
				s.logger.Info("expired stale checkout sessions", slog.Int("count", expired))
			}
		}
	}
}
