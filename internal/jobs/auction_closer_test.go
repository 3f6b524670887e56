package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeCloser struct {
	calls atomic.Int32
	err   error
}

func (f *fakeCloser) CloseExpired(context.Context) (int, error) {
	f.calls.Add(1)
	return 1, f.err
}

func TestAuctionCloser_SweepsUntilStopped(t *testing.T) {
	t.Parallel()

	closer := &fakeCloser{}
	job := NewAuctionCloser(closer, 5*time.Millisecond)
	go job.Start(context.Background())

	require.Eventually(t, func() bool { return closer.calls.Load() >= 3 }, time.Second, time.Millisecond)

	job.Stop()
	stopped := closer.calls.Load()
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, stopped, closer.calls.Load(), "no sweeps after Stop returns")

	job.Stop() // idempotent
}

func TestAuctionCloser_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	closer := &fakeCloser{err: errors.New("store unavailable")}
	job := NewAuctionCloser(closer, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	go job.Start(ctx)

	// sweep errors are logged and the loop keeps going
	require.Eventually(t, func() bool { return closer.calls.Load() >= 2 }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-job.done:
	case <-time.After(time.Second):
		t.Fatal("closer did not stop after context cancel")
	}
	job.Stop()
}
