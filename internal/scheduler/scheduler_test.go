package scheduler_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/univlib/circulation-service/internal/model"
	"github.com/univlib/circulation-service/internal/scheduler"
)

type fakeSweeper struct {
	overdue int32
	ready   int32
	holds   int32
}

func (f *fakeSweeper) SweepOverdue(context.Context) (model.SweepSummary, error) {
	atomic.AddInt32(&f.overdue, 1)
	return model.SweepSummary{}, nil
}

func (f *fakeSweeper) SweepReadyExpiry(context.Context) (model.SweepSummary, error) {
	atomic.AddInt32(&f.ready, 1)
	return model.SweepSummary{}, nil
}

func (f *fakeSweeper) SweepHoldExpiry(context.Context) (model.SweepSummary, error) {
	atomic.AddInt32(&f.holds, 1)
	return model.SweepSummary{}, nil
}

func TestScheduler_RunsAllSweeps(t *testing.T) {
	t.Parallel()

	fake := &fakeSweeper{}
	s := scheduler.New(fake, 10*time.Millisecond, zap.NewExample())

	ctx, cancel := context.WithTimeout(context.Background(), 55*time.Millisecond)
	defer cancel()

	require.NoError(t, s.Run(ctx))

	// one immediate pass plus at least one tick
	require.GreaterOrEqual(t, atomic.LoadInt32(&fake.overdue), int32(2))
	require.GreaterOrEqual(t, atomic.LoadInt32(&fake.ready), int32(2))
	require.GreaterOrEqual(t, atomic.LoadInt32(&fake.holds), int32(2))
}

func TestScheduler_StopsOnCancel(t *testing.T) {
	t.Parallel()

	fake := &fakeSweeper{}
	s := scheduler.New(fake, time.Hour, zap.NewExample())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		_ = s.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop on cancel")
	}
}
