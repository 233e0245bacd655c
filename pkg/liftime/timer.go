package liftime

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Phase records one named span of work. A phase is stopped once, via
// Start/StopPhase, when it measures a single span such as "copy border"'s
// initial halo refresh — or accumulated across many short spans via Add,
// the way the original engine sums serial_time and barrier_time once per
// generation instead of timing the whole run as a single span.
type Phase struct {
	Name      string
	StartTime time.Time
	Duration  time.Duration
	completed bool
}

// PhaseTimer is the handle returned by Timer.Start; Stop records the
// elapsed time against the phase and is idempotent.
type PhaseTimer struct {
	timer     *Timer
	phaseName string
}

// Stop stops the phase timer and records the duration. Safe to call
// multiple times; only the first call has effect.
func (pt *PhaseTimer) Stop() time.Duration {
	return pt.timer.StopPhase(pt.phaseName)
}

// Timer accumulates named phase durations for one run of the engine. It is
// safe for concurrent use: every barrier worker and the coordinator pool
// report into the same Timer from different goroutines.
type Timer struct {
	mu         sync.RWMutex
	name       string
	phases     map[string]*Phase
	phaseOrder []string
	clock      Clock
}

// TimerOption configures a Timer at construction.
type TimerOption func(*Timer)

// WithClock sets a custom clock for testability.
func WithClock(clock Clock) TimerOption {
	return func(t *Timer) {
		t.clock = clock
	}
}

// NewTimer creates a new Timer identified by name, used as the title of its
// summary output.
func NewTimer(name string, opts ...TimerOption) *Timer {
	t := &Timer{
		name:       name,
		phases:     make(map[string]*Phase),
		phaseOrder: make([]string, 0),
		clock:      NewRealClock(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Timer) ensurePhaseLocked(phaseName string) *Phase {
	p, ok := t.phases[phaseName]
	if !ok {
		p = &Phase{Name: phaseName}
		t.phases[phaseName] = p
		t.phaseOrder = append(t.phaseOrder, phaseName)
	}
	return p
}

// Start starts timing a single-span phase. Returns a PhaseTimer whose Stop
// records the elapsed duration.
func (t *Timer) Start(phaseName string) *PhaseTimer {
	start := t.clock.Now()
	t.mu.Lock()
	p := t.ensurePhaseLocked(phaseName)
	p.StartTime = start
	t.mu.Unlock()
	return &PhaseTimer{timer: t, phaseName: phaseName}
}

// StopPhase stops timing a phase started with Start and returns its
// duration. Safe to call multiple times; only the first call has effect.
func (t *Timer) StopPhase(phaseName string) time.Duration {
	now := t.clock.Now()
	t.mu.Lock()
	defer t.mu.Unlock()

	phase, ok := t.phases[phaseName]
	if !ok || phase.completed {
		if ok {
			return phase.Duration
		}
		return 0
	}

	phase.Duration = now.Sub(phase.StartTime)
	phase.completed = true
	return phase.Duration
}

// Add accumulates d into phaseName's total duration, the way the original
// engine sums serial_time and barrier_time across every generation rather
// than timing the whole run as a single span. Safe to call from multiple
// goroutines concurrently: every barrier worker and the coordinator loop
// report into the same phase.
func (t *Timer) Add(phaseName string, d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	phase := t.ensurePhaseLocked(phaseName)
	phase.Duration += d
	phase.completed = true
}

// GetPhases returns all phases in the order they were first started or
// added to.
func (t *Timer) GetPhases() []*Phase {
	t.mu.RLock()
	defer t.mu.RUnlock()

	phases := make([]*Phase, 0, len(t.phaseOrder))
	for _, name := range t.phaseOrder {
		phaseCopy := *t.phases[name]
		phases = append(phases, &phaseCopy)
	}
	return phases
}

// Summary renders a human-readable listing of every recorded phase, ordered
// by descending duration, with a total at the end.
func (t *Timer) Summary() string {
	phases := t.GetPhases()
	sort.Slice(phases, func(i, j int) bool { return phases[i].Duration > phases[j].Duration })

	var total time.Duration
	summary := fmt.Sprintf("=== %s Timing Summary ===\n", t.name)
	for _, p := range phases {
		summary += fmt.Sprintf("  %-20s %v\n", p.Name, p.Duration)
		total += p.Duration
	}
	summary += fmt.Sprintf("Total: %v\n", total)
	return summary
}
