package tracker

import (
	"context"
	"sync"
	"time"
)

const (
	TimeLayout = "15:04:05"
	DateLayout = "Monday, January 2, 2006"
)

// Clock is the cosmetic wall clock shown next to the timers
type Clock struct {
	now    func() time.Time
	ticker *Ticker

	mu      sync.RWMutex
	current time.Time
}

func NewClock(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{now: now, ticker: NewTicker(time.Second), current: now()}
}

// Start ticks once per second; onTick runs after each update
func (c *Clock) Start(ctx context.Context, onTick func()) {
	c.ticker.Start(ctx, func(time.Time) {
		c.mu.Lock()
		c.current = c.now()
		c.mu.Unlock()
		if onTick != nil {
			onTick()
		}
	})
}

func (c *Clock) Stop() {
	c.ticker.Stop()
}

func (c *Clock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

func (c *Clock) Time() string {
	return c.Now().Format(TimeLayout)
}

func (c *Clock) Date() string {
	return c.Now().Format(DateLayout)
}
