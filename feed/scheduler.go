package feed

import (
	"sync"
	"time"

	"github.com/goliatone/go-activity-feed/pkg/types"
)

const (
	// DefaultCleanupInterval is the cadence of the rolling-window cleanup.
	DefaultCleanupInterval = 5 * time.Minute
	// DefaultCleanupWindow is the rolling age limit for stored activities.
	DefaultCleanupWindow = 24 * time.Hour
	// Default local wall-clock instant for the daily reset.
	defaultResetHour   = 0
	defaultResetMinute = 1
)

// SchedulerConfig wires the expiry scheduler. Both callbacks are invoked from
// the scheduler's own goroutines.
type SchedulerConfig struct {
	Clock           types.Clock
	Logger          types.Logger
	Location        *time.Location
	CleanupInterval time.Duration
	ResetHour       int
	ResetMinute     int
	// ResetAtMidnight pins the daily reset to exactly 00:00. Without it a
	// zero hour and minute are treated as unset and fall back to 00:01.
	ResetAtMidnight bool
	OnCleanup       func(now time.Time)
	OnReset         func(now time.Time)
}

// Scheduler owns the two expiry timers: a fixed-interval rolling cleanup and
// a recurring one-shot daily reset. The reset is a one-shot recomputed after
// each firing, not a fixed-period interval, because day lengths vary with the
// calendar and DST. It is explicitly started and stopped by the feed
// lifecycle; there are no ambient global timers.
type Scheduler struct {
	clock           types.Clock
	logger          types.Logger
	location        *time.Location
	cleanupInterval time.Duration
	resetHour       int
	resetMinute     int
	onCleanup       func(time.Time)
	onReset         func(time.Time)

	mu      sync.Mutex
	stop    chan struct{}
	done    sync.WaitGroup
	running bool
}

// NewScheduler constructs a stopped scheduler.
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = types.NopLogger{}
	}
	location := cfg.Location
	if location == nil {
		location = time.Local
	}
	interval := cfg.CleanupInterval
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}
	hour := cfg.ResetHour
	minute := cfg.ResetMinute
	if hour == 0 && minute == 0 && !cfg.ResetAtMidnight {
		hour = defaultResetHour
		minute = defaultResetMinute
	}
	return &Scheduler{
		clock:           clock,
		logger:          logger,
		location:        location,
		cleanupInterval: interval,
		resetHour:       hour,
		resetMinute:     minute,
		onCleanup:       cfg.OnCleanup,
		onReset:         cfg.OnReset,
	}
}

// Start launches both timers. Calling Start on a running scheduler is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stop = make(chan struct{})

	s.done.Add(2)
	go s.cleanupLoop(s.stop)
	go s.resetLoop(s.stop)
}

// Stop cancels both timers and waits for their goroutines to exit. Calling
// Stop on a stopped scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stop)
	s.mu.Unlock()
	s.done.Wait()
}

func (s *Scheduler) cleanupLoop(stop <-chan struct{}) {
	defer s.done.Done()
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if s.onCleanup != nil {
				s.onCleanup(s.clock.Now())
			}
		}
	}
}

func (s *Scheduler) resetLoop(stop <-chan struct{}) {
	defer s.done.Done()
	for {
		now := s.clock.Now()
		next := s.NextReset(now)
		timer := time.NewTimer(next.Sub(now))
		select {
		case <-stop:
			timer.Stop()
			return
		case <-timer.C:
			s.logger.Debug("daily reset fired", "at", next)
			if s.onReset != nil {
				s.onReset(s.clock.Now())
			}
		}
	}
}

// NextReset computes the next local reset instant strictly after now.
func (s *Scheduler) NextReset(now time.Time) time.Time {
	local := now.In(s.location)
	next := time.Date(local.Year(), local.Month(), local.Day(), s.resetHour, s.resetMinute, 0, 0, s.location)
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, s.resetHour, s.resetMinute, 0, 0, s.location)
	}
	return next
}
