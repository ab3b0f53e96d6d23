package layout

import (
	"sync"
	"time"

	"github.com/bep/debounce"
)

// FrameDelay is the default deferral for frame-rate work such as
// group resizes: roughly one animation frame.
const FrameDelay = 16 * time.Millisecond

// Scheduler defers work under string keys with replace-on-reschedule
// semantics: at most one callback is ever pending per key, and
// scheduling again replaces whatever was pending. The editor keys
// group resizes by group ID so many children moving in one frame
// coalesce into a single recomputation.
//
// Implementations must be safe for concurrent use.
type Scheduler interface {
	// Defer schedules fn to run after delay, replacing any pending
	// callback for the same key.
	Defer(key string, delay time.Duration, fn func())

	// Cancel drops the pending callback for the key, if any.
	Cancel(key string)

	// Stop cancels all pending callbacks and rejects further work.
	Stop()
}

// TimerScheduler is the production [Scheduler]: one debouncer per key,
// so rescheduling a key resets its timer and replaces its callback.
type TimerScheduler struct {
	mu      sync.Mutex
	entries map[string]*timerEntry
	stopped bool
}

type timerEntry struct {
	delay time.Duration
	fire  func(func())
}

// NewTimerScheduler returns an empty timer scheduler.
func NewTimerScheduler() *TimerScheduler {
	return &TimerScheduler{entries: make(map[string]*timerEntry)}
}

// Defer implements [Scheduler]. A key keeps its debouncer as long as
// the delay is stable; a changed delay neutralizes the old debouncer
// and starts a fresh one.
func (s *TimerScheduler) Defer(key string, delay time.Duration, fn func()) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	e := s.entries[key]
	if e == nil || e.delay != delay {
		if e != nil {
			e.fire(func() {})
		}
		e = &timerEntry{delay: delay, fire: debounce.New(delay)}
		s.entries[key] = e
	}
	fire := e.fire
	s.mu.Unlock()

	fire(func() {
		s.mu.Lock()
		stopped := s.stopped
		s.mu.Unlock()
		if !stopped {
			fn()
		}
	})
}

// Cancel implements [Scheduler] by replacing the key's pending
// callback with a no-op. The timer still fires, harmlessly.
func (s *TimerScheduler) Cancel(key string) {
	s.mu.Lock()
	e := s.entries[key]
	s.mu.Unlock()
	if e != nil {
		e.fire(func() {})
	}
}

// Stop implements [Scheduler]. Pending callbacks observe the stopped
// flag and become no-ops; further Defer calls are rejected.
func (s *TimerScheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	entries := s.entries
	s.entries = make(map[string]*timerEntry)
	s.mu.Unlock()

	for _, e := range entries {
		e.fire(func() {})
	}
}

var _ Scheduler = (*TimerScheduler)(nil)
