// Package resync provides a sync.Once that can be reset.
//
// Lazily-created singletons (configuration, logger, clock) rely on it so that
// tests can force their recreation between test cases.
package resync

import (
	"sync"
	"sync/atomic"
)

// Once is like sync.Once but supports Reset.
type Once struct {
	m    sync.Mutex
	done atomic.Uint32
}

// Do calls the function f if and only if Do is being called for the
// first time since the last Reset.
func (o *Once) Do(f func()) {
	if o.done.Load() == 1 {
		return
	}
	o.m.Lock()
	defer o.m.Unlock()
	if o.done.Load() == 0 {
		defer o.done.Store(1)
		f()
	}
}

// Reset makes the next call to Do execute its function again.
func (o *Once) Reset() {
	o.m.Lock()
	defer o.m.Unlock()
	o.done.Store(0)
}
