package jobs

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

type fakeExpirer struct {
	calls atomic.Int32
	ttl   atomic.Int64
}

func (f *fakeExpirer) ExpireStale(_ context.Context, ttl time.Duration) (int, error) {
	f.calls.Add(1)
	f.ttl.Store(int64(ttl))
	return 1, nil
}

func TestSweeper_Run(t *testing.T) {
	expirer := &fakeExpirer{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sweeper := NewSweeper(expirer, logger, 45*time.Minute, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for expirer.calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatal("sweeper never ticked")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop on cancel")
	}

	if got := time.Duration(expirer.ttl.Load()); got != 45*time.Minute {
		t.Errorf("ttl = %s, want 45m", got)
	}
}

func TestSweeper_DisabledWithoutTTL(t *testing.T) {
	expirer := &fakeExpirer{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sweeper := NewSweeper(expirer, logger, 0, 10*time.Millisecond)

	done := make(chan struct{})
	go func() {
		sweeper.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper with zero TTL should return immediately")
	}
	if expirer.calls.Load() != 0 {
		t.Errorf("calls = %d, want 0", expirer.calls.Load())
	}
}
