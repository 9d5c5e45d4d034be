package game

import (
	"context"
	"time"
)

// Ticker drives automatic simulation ticks at a fixed wall-clock period.
// Each firing advances the game by exactly one period.
type Ticker struct {
	period time.Duration
	tick   func(time.Duration)
}

func NewTicker(period time.Duration, tick func(time.Duration)) *Ticker {
	return &Ticker{period: period, tick: tick}
}

// Run fires until ctx is cancelled.
func (t *Ticker) Run(ctx context.Context) error {
	ticker := time.NewTicker(t.period)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			t.tick(t.period)
		case <-ctx.Done():
			return nil
		}
	}
}
