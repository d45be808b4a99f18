package ticker

import (
	"context"
	"sync"
	"time"
)

type Ticker struct {
	ticker *time.Ticker
	pollCh chan chan struct{}
	stopCh chan struct{}
	doneCh chan struct{}

	stopOnce sync.Once
}

func New(period time.Duration) *Ticker {
	return &Ticker{
		ticker: time.NewTicker(period),
		pollCh: make(chan chan struct{}),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Poll polls the ticker. It blocks until the tick has been executed.
// It returns false if the ticker stopped before the tick could run.
func (ticker *Ticker) Poll() bool {
	doneCh := make(chan struct{})

	select {
	case ticker.pollCh <- doneCh:
		<-doneCh
		return true

	case <-ticker.doneCh:
		return false
	}
}

// Stop stops the ticker. It may be called more than once.
func (ticker *Ticker) Stop() {
	ticker.stopOnce.Do(func() { close(ticker.stopCh) })
}

// Tick calls the given callback at regular intervals or when the ticker is polled,
// until the ticker is stopped or the context is done.
func (ticker *Ticker) Tick(ctx context.Context, fn func(time.Time)) {
	defer close(ticker.doneCh)
	defer ticker.ticker.Stop()

	for {
		select {
		case tick := <-ticker.ticker.C:
			fn(tick)

		case doneCh := <-ticker.pollCh:
			fn(time.Now())
			close(doneCh)

		case <-ticker.stopCh:
			return

		case <-ctx.Done():
			return
		}
	}
}
