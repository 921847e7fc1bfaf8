package app

import (
	"sync"
	"time"
)

// Scheduler invokes a callback at a fixed interval with start/stop/reset
// semantics. An interval of zero disables the timer entirely; this is the
// initial state for backends that opt out of autosave.
//
// The callback runs on a timer goroutine. It must post work through the
// orchestrator's normal request path and return quickly; it must never
// mutate orchestrator state directly.
type Scheduler struct {
	mu       sync.Mutex
	interval time.Duration
	timer    *time.Timer
	seq      uint64
	stopped  bool
	fire     func()
}

// NewScheduler creates a disabled scheduler that will invoke fire on every
// tick once started with a positive interval.
func NewScheduler(fire func()) *Scheduler {
	return &Scheduler{fire: fire}
}

// Start sets the interval and arms the timer. interval == 0 disables the
// scheduler without stopping it permanently.
func (s *Scheduler) Start(interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.interval = interval
	s.armLocked()
}

// SetInterval atomically cancels the old timer and arms a new one with the
// given interval. The old and new timers never both fire.
func (s *Scheduler) SetInterval(interval time.Duration) {
	s.Start(interval)
}

// Reset re-arms the timer from now. Used after any save, interactive or
// scheduled, so a manual save does not leave a stale short wait before the
// next tick.
func (s *Scheduler) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.armLocked()
}

// Stop cancels the timer permanently. Idempotent.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	s.disarmLocked()
}

// Interval returns the current interval; zero means disabled.
func (s *Scheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// armLocked invalidates any armed timer and arms a fresh one if the
// interval is positive. Callers hold s.mu.
func (s *Scheduler) armLocked() {
	s.disarmLocked()
	if s.interval <= 0 {
		return
	}
	s.seq++
	seq := s.seq
	s.timer = time.AfterFunc(s.interval, func() { s.tick(seq) })
}

func (s *Scheduler) disarmLocked() {
	s.seq++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// tick runs on the timer goroutine. The sequence check discards ticks from
// timers that were cancelled after their function was already scheduled.
func (s *Scheduler) tick(seq uint64) {
	s.mu.Lock()
	if s.stopped || seq != s.seq || s.interval <= 0 {
		s.mu.Unlock()
		return
	}
	fire := s.fire
	s.armLocked()
	s.mu.Unlock()

	fire()
}
