package rpcclient

import (
	"sync"
	"time"
)

// RateWindow is a sliding-window request-cost accounting log. It resets the
// window once the current period has elapsed, and admits a request only if
// the post-admit count stays strictly below the configured limit — one unit
// of headroom is reserved per window by design, not a bug, and every caller
// must preserve the strict "<" comparison at the boundary.
type RateWindow struct {
	mu          sync.Mutex
	windowStart time.Time
	count       int
	limit       int
	windowMs    int64
	now         func() time.Time
}

// NewRateWindow builds a RateWindow for the given limit and window duration.
func NewRateWindow(limit int, windowMs int64) *RateWindow {
	return &RateWindow{
		limit:       limit,
		windowMs:    windowMs,
		windowStart: time.Now(),
		now:         time.Now,
	}
}

// Admit tries to account for cost units in the current window. It resets the
// window when the elapsed time since windowStart reaches windowMs, then
// succeeds only if count+cost is strictly less than limit.
func (w *RateWindow) Admit(cost int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	if now.Sub(w.windowStart) >= time.Duration(w.windowMs)*time.Millisecond {
		w.windowStart = now
		w.count = 0
	}

	if w.count+cost < w.limit {
		w.count += cost
		return nil
	}
	return &LimitExceededError{Cost: cost, Count: w.count, Limit: w.limit, WindowMs: w.windowMs}
}

// Available reports how much headroom remains in the current window without
// mutating state; it is advisory only — Admit is the source of truth.
func (w *RateWindow) Available() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	if now.Sub(w.windowStart) >= time.Duration(w.windowMs)*time.Millisecond {
		return w.limit - 1
	}
	headroom := w.limit - 1 - w.count
	if headroom < 0 {
		return 0
	}
	return headroom
}
