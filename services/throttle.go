package services

import (
	"sync"
	"time"
)

// Throttle is a fixed-window request limiter keyed by caller (client IP for anonymous traffic).
// Each key may make Limit requests per Window; the window starts at the key's first request.
type Throttle struct {
	Limit  int
	Window time.Duration

	mu        sync.Mutex
	now       func() time.Time
	windows   map[string]*throttleWindow
	lastSweep time.Time
}

type throttleWindow struct {
	start time.Time
	count int
}

// NewThrottle allows perMinute requests per key per minute. perMinute 0 disables throttling.
func NewThrottle(perMinute int) *Throttle {
	return &Throttle{
		Limit:   perMinute,
		Window:  time.Minute,
		now:     time.Now,
		windows: make(map[string]*throttleWindow),
	}
}

// Allow records a request for key. When the key is over its limit it returns false and
// how long until the window resets.
func (t *Throttle) Allow(key string) (bool, time.Duration) {
	if t == nil || t.Limit <= 0 {
		return true, 0
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.sweep(now)

	w, ok := t.windows[key]
	if !ok || now.Sub(w.start) >= t.Window {
		t.windows[key] = &throttleWindow{start: now, count: 1}
		return true, 0
	}
	if w.count >= t.Limit {
		return false, w.start.Add(t.Window).Sub(now)
	}
	w.count++
	return true, 0
}

// sweep drops expired windows at most once per window length. Caller holds mu.
func (t *Throttle) sweep(now time.Time) {
	if now.Sub(t.lastSweep) < t.Window {
		return
	}
	for k, w := range t.windows {
		if now.Sub(w.start) >= t.Window {
			delete(t.windows, k)
		}
	}
	t.lastSweep = now
}

func (t *Throttle) tracked() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.windows)
}
