package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingCleaner struct {
	calls atomic.Int32
	err   error
}

func (c *countingCleaner) CleanupPastAppointments(context.Context) (int64, error) {
	c.calls.Add(1)
	return 1, c.err
}

func TestCleanupRunsAtStartAndOnTick(t *testing.T) {
	cleaner := &countingCleaner{}
	w := NewAppointmentCleanupWorker(cleaner, 10*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return cleaner.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestCleanupErrorsDoNotStopWorker(t *testing.T) {
	cleaner := &countingCleaner{err: errors.New("storage down")}
	w := NewAppointmentCleanupWorker(cleaner, 5*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	assert.Eventually(t, func() bool { return cleaner.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
}

func TestCleanupStopsBeforeFirstTick(t *testing.T) {
	cleaner := &countingCleaner{}
	w := NewAppointmentCleanupWorker(cleaner, time.Hour, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.Start(ctx)
	assert.Equal(t, int32(1), cleaner.calls.Load())
}
