package clock

import (
	"sync"
	"time"
)

// Clock abstracts the current time so that exports generated from tests
// are reproducible (ex: ${date} placeholders).
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// FrozenClock always returns the same instant until moved forward explicitly.
type FrozenClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *FrozenClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the frozen time forward.
func (c *FrozenClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

var (
	mu      sync.RWMutex
	current Clock = systemClock{}
)

// Current returns the clock in use.
func Current() Clock {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Now is time.Now() but can be frozen from tests.
// Export workers may call it concurrently.
func Now() time.Time {
	return Current().Now()
}

// FreezeAt stops the time at the given instant.
func FreezeAt(instant time.Time) *FrozenClock {
	c := &FrozenClock{now: instant}
	mu.Lock()
	current = c
	mu.Unlock()
	return c
}

// Freeze stops the time now.
func Freeze() *FrozenClock {
	return FreezeAt(time.Now())
}

// Unfreeze restores the system clock.
func Unfreeze() {
	mu.Lock()
	current = systemClock{}
	mu.Unlock()
}
