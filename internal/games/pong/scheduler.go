package pong

import (
	"context"
	"sync"
	"time"
)

// Scheduler delivers frames the way a host's per-frame animation callback does.
// RequestFrame schedules fn once; the returned cancel drops it if still pending.
type Scheduler interface {
	RequestFrame(fn func()) (cancel func())
}

// ManualScheduler holds at most one pending frame until Step is called.
// Tests and headless runs use it to drive the engine deterministically.
type ManualScheduler struct {
	pending func()
	gen     uint64
}

// NewManualScheduler creates an idle manual scheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// RequestFrame implements Scheduler.
func (m *ManualScheduler) RequestFrame(fn func()) func() {
	m.gen++
	gen := m.gen
	m.pending = fn
	return func() {
		if m.gen == gen {
			m.pending = nil
		}
	}
}

// Pending reports whether a frame is scheduled.
func (m *ManualScheduler) Pending() bool {
	return m.pending != nil
}

// Step runs the pending frame, if any, and reports whether one ran.
func (m *ManualScheduler) Step() bool {
	fn := m.pending
	if fn == nil {
		return false
	}
	m.pending = nil
	fn()
	return true
}

// Run steps until no frame is pending or n frames ran. It returns the frame count.
func (m *ManualScheduler) Run(n int) int {
	ran := 0
	for ran < n && m.Step() {
		ran++
	}
	return ran
}

// TickerScheduler delivers frames from a time.Ticker on its own goroutine
// until the context is canceled. Frames run on that goroutine.
type TickerScheduler struct {
	mu      sync.Mutex
	pending func()
	gen     uint64
	done    chan struct{}
}

// NewTickerScheduler starts a scheduler firing every interval.
func NewTickerScheduler(ctx context.Context, interval time.Duration) *TickerScheduler {
	s := &TickerScheduler{done: make(chan struct{})}
	go s.run(ctx, interval)
	return s
}

func (s *TickerScheduler) run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer close(s.done)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			fn := s.pending
			s.pending = nil
			s.mu.Unlock()
			if fn != nil {
				fn()
			}
		}
	}
}

// RequestFrame implements Scheduler.
func (s *TickerScheduler) RequestFrame(fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	gen := s.gen
	s.pending = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.gen == gen {
			s.pending = nil
		}
	}
}

// Done is closed once the scheduler goroutine has exited.
func (s *TickerScheduler) Done() <-chan struct{} {
	return s.done
}
