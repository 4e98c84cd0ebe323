package lifecycle

import (
	"sync"
	"sync/atomic"
)

var shuttingDown atomic.Bool

// SetShuttingDown flips the drain flag. Health handlers answer 503 while it is set.
func SetShuttingDown(v bool) {
	shuttingDown.Store(v)
}

// IsShuttingDown reports whether the process is draining.
func IsShuttingDown() bool {
	return shuttingDown.Load()
}

var (
	mu         sync.RWMutex
	components = map[string]bool{}
)

// SetReady records whether a named component (a loaded model, a cache) can serve.
func SetReady(component string, ready bool) {
	mu.Lock()
	defer mu.Unlock()
	components[component] = ready
}

// IsReady reports a single component; unknown components are not ready.
func IsReady(component string) bool {
	mu.RLock()
	defer mu.RUnlock()
	return components[component]
}

// Readiness returns every registered component and whether all are ready.
func Readiness() (allReady bool, states map[string]bool) {
	mu.RLock()
	defer mu.RUnlock()
	states = make(map[string]bool, len(components))
	allReady = true
	for name, ok := range components {
		states[name] = ok
		if !ok {
			allReady = false
		}
	}
	return allReady, states
}

// Reset clears all state. For tests.
func Reset() {
	shuttingDown.Store(false)
	mu.Lock()
	components = map[string]bool{}
	mu.Unlock()
}
