package driver

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type countingUpdater struct {
	calls atomic.Int32
	err   error
	delay time.Duration
}

func (u *countingUpdater) Update() error {
	u.calls.Add(1)
	time.Sleep(u.delay)
	return u.err
}

func runFor(t *testing.T, u Updater, interval time.Duration, until func() bool) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		Run(ctx, interval, u)
	}()

	assert.Eventually(t, until, 2*time.Second, time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("driver did not stop")
	}
}

func TestRunTicks(t *testing.T) {
	u := &countingUpdater{}
	runFor(t, u, time.Millisecond, func() bool { return u.calls.Load() >= 5 })
}

func TestRunKeepsGoingAfterErrors(t *testing.T) {
	u := &countingUpdater{err: errors.New("strip unplugged")}
	runFor(t, u, time.Millisecond, func() bool { return u.calls.Load() >= 3 })
}

func TestRunWhenFramesAreSlow(t *testing.T) {
	u := &countingUpdater{delay: 3 * time.Millisecond}
	runFor(t, u, time.Millisecond, func() bool { return u.calls.Load() >= 2 })
}

func TestRunReturnsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	u := &countingUpdater{}
	Run(ctx, time.Hour, u)
	assert.Zero(t, u.calls.Load())
}
