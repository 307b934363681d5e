package sweep

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLedger struct {
	calls    atomic.Int64
	released int64
	err      error
}

func (f *fakeLedger) ExpireHolds(_ context.Context) (int64, error) {
	f.calls.Add(1)
	return f.released, f.err
}

func TestRunOnce(t *testing.T) {
	ledger := &fakeLedger{released: 3}
	s := New(ledger, time.Minute, nil)

	s.RunOnce(context.Background())
	assert.Equal(t, int64(1), ledger.calls.Load())
}

func TestRunOnce_ErrorDoesNotPanic(t *testing.T) {
	ledger := &fakeLedger{err: errors.New("db down")}
	s := New(ledger, time.Minute, nil)

	s.RunOnce(context.Background())
	assert.Equal(t, int64(1), ledger.calls.Load())
}

func TestRun_TicksUntilCancelled(t *testing.T) {
	ledger := &fakeLedger{released: 1}
	s := New(ledger, 10*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool {
		return ledger.calls.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}

func TestNew_DefaultsInterval(t *testing.T) {
	s := New(&fakeLedger{}, 0, nil)
	assert.Equal(t, time.Minute, s.interval)
}
