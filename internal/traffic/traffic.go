package traffic

import (
	"sync"
	"time"
)

// Outcome classifies a finished request.
type Outcome int

const (
	Success Outcome = iota
	Failure
	Denied
)

// bucketCount seconds of history are kept.
const bucketCount = 300

type bucket struct {
	second int64
	counts [3]int
}

// Tracker counts outcomes in one-second buckets over the last five minutes.
type Tracker struct {
	mu      sync.Mutex
	buckets [bucketCount]bucket
	now     func() time.Time
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{now: time.Now}
}

// Record adds one outcome at the current time.
func (t *Tracker) Record(o Outcome) {
	t.mu.Lock()
	defer t.mu.Unlock()
	sec := t.now().Unix()
	b := &t.buckets[sec%bucketCount]
	if b.second != sec {
		*b = bucket{second: sec}
	}
	b.counts[o]++
}

// Counts returns successes, failures and denials seen within window.
func (t *Tracker) Counts(window time.Duration) (success, failure, denied int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now().Unix()
	oldest := now - int64(window/time.Second) + 1
	if window < time.Second {
		oldest = now
	}
	for _, b := range t.buckets {
		if b.second < oldest || b.second > now || b.second == 0 {
			continue
		}
		success += b.counts[Success]
		failure += b.counts[Failure]
		denied += b.counts[Denied]
	}
	return success, failure, denied
}

// ErrorRate returns failures and successes+failures within window. Denials are excluded.
func (t *Tracker) ErrorRate(window time.Duration) (failures, total int) {
	s, f, _ := t.Counts(window)
	return f, s + f
}

// Degraded reports whether at least minSamples outcomes were seen in window and
// failures make up pct percent or more of them.
func (t *Tracker) Degraded(window time.Duration, pct, minSamples int) bool {
	failures, total := t.ErrorRate(window)
	if total == 0 || total < minSamples {
		return false
	}
	return failures*100 >= pct*total
}

// Overloaded reports whether at least minSamples requests were seen in window and
// denials make up pct percent or more of them.
func (t *Tracker) Overloaded(window time.Duration, pct, minSamples int) bool {
	s, f, d := t.Counts(window)
	total := s + f + d
	if total == 0 || total < minSamples {
		return false
	}
	return d*100 >= pct*total
}

// Reset forgets all outcomes.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buckets = [bucketCount]bucket{}
}

var (
	// Upstream tracks outcomes of calls to the weather provider and geocoder.
	Upstream = NewTracker()
	// Inbound tracks served, failed and rate-limited HTTP requests.
	Inbound = NewTracker()
)
