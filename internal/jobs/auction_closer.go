package jobs

import (
	"context"
	"crop-auction/utils"
	"sync"
	"time"
)

// ExpiredCloser closes auctions whose end time has passed
type ExpiredCloser interface {
	CloseExpired(ctx context.Context) (int, error)
}

// AuctionCloser periodically closes expired auctions
type AuctionCloser struct {
	closer   ExpiredCloser
	interval time.Duration
	stopChan chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewAuctionCloser creates a new auction closer job
func NewAuctionCloser(closer ExpiredCloser, interval time.Duration) *AuctionCloser {
	return &AuctionCloser{
		closer:   closer,
		interval: interval,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs the sweep loop until ctx is cancelled or Stop is called
func (j *AuctionCloser) Start(ctx context.Context) {
	defer close(j.done)
	utils.Info("auction closer started", map[string]any{"interval": j.interval.String()})

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.sweep(ctx)
		case <-ctx.Done():
			utils.Info("auction closer stopping", map[string]any{"reason": ctx.Err().Error()})
			return
		case <-j.stopChan:
			utils.Info("auction closer stopping", map[string]any{"reason": "stopped"})
			return
		}
	}
}

// Stop ends the loop and waits for an in-flight sweep to finish
func (j *AuctionCloser) Stop() {
	j.stopOnce.Do(func() { close(j.stopChan) })
	<-j.done
}

func (j *AuctionCloser) sweep(ctx context.Context) {
	n, err := j.closer.CloseExpired(ctx)
	if err != nil {
		utils.Error("auction closer: sweep failed", map[string]any{"closed": n, "error": err.Error()})
		return
	}
	if n > 0 {
		utils.Info("auction closer: closed expired auctions", map[string]any{"closed": n})
	}
}
