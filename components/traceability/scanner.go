package traceability

import (
	"sync"
	"time"
)

// DefaultScanDelay mirrors the time a camera decode takes in the demo.
const DefaultScanDelay = 2 * time.Second

// ScanHandler receives decoded product codes.
type ScanHandler func(code string)

// ScannerOptions configures a ScanSimulator.
type ScannerOptions struct {
	Delay    time.Duration
	DemoCode string
	Handler  ScanHandler
}

// ScanSimulator fakes a camera decode: Trigger waits Delay and then emits DemoCode,
// Manual emits a caller supplied code straight away.
type ScanSimulator struct {
	mu       sync.Mutex
	delay    time.Duration
	demoCode string
	handler  ScanHandler
	busy     bool
	closed   bool
	gen      uint64
	timer    *time.Timer
}

// NewScanSimulator builds a simulator with safe defaults.
func NewScanSimulator(opts ScannerOptions) *ScanSimulator {
	if opts.Delay <= 0 {
		opts.Delay = DefaultScanDelay
	}
	if opts.DemoCode == "" {
		opts.DemoCode = DemoTraceabilityCode
	}
	if opts.Handler == nil {
		opts.Handler = func(string) {}
	}
	return &ScanSimulator{
		delay:    opts.Delay,
		demoCode: opts.DemoCode,
		handler:  opts.Handler,
	}
}

// Trigger starts a simulated scan. It returns false, and schedules nothing,
// while a scan is already in flight or after Close.
func (s *ScanSimulator) Trigger() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.busy {
		return false
	}
	s.busy = true
	s.gen++
	gen := s.gen
	s.timer = time.AfterFunc(s.delay, func() { s.complete(gen) })
	return true
}

// Manual emits code immediately. A pending simulated scan is abandoned so its
// callback cannot fire after the scanner screen has been left.
func (s *ScanSimulator) Manual(code string) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	s.cancelLocked()
	handler := s.handler
	s.mu.Unlock()
	handler(code)
	return true
}

// Busy reports whether a simulated scan is in flight.
func (s *ScanSimulator) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Delay returns the configured scan delay.
func (s *ScanSimulator) Delay() time.Duration {
	return s.delay
}

// Cancel abandons a pending scan without closing the simulator.
func (s *ScanSimulator) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
}

// Close stops any pending scan; later triggers are ignored.
func (s *ScanSimulator) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
	s.closed = true
}

func (s *ScanSimulator) cancelLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.busy = false
	s.gen++
}

func (s *ScanSimulator) complete(gen uint64) {
	s.mu.Lock()
	if s.closed || gen != s.gen || !s.busy {
		s.mu.Unlock()
		return
	}
	s.busy = false
	s.timer = nil
	handler, code := s.handler, s.demoCode
	s.mu.Unlock()
	handler(code)
}
