package birch

import (
	"time"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
)

// Timer calls a function every Interval while running. It is owned by a
// TimerScheduler, which belongs to a node (or a scene's root) and removes its
// timers when that node is detached or disposed.
type Timer struct {
	name     string
	hash     uint64
	interval time.Duration
	elapsed  time.Duration
	runs     int
	maxRuns  int
	running  bool
	removed  bool
	fn       func(t *Timer)
}

// NewTimer creates a stopped-until-added timer. maxRuns <= 0 means no limit.
func NewTimer(name string, interval time.Duration, maxRuns int, fn func(t *Timer)) *Timer {
	return &Timer{
		name:     name,
		hash:     xxhash.Sum64String(name),
		interval: interval,
		maxRuns:  maxRuns,
		running:  true,
		fn:       fn,
	}
}

// Name returns the timer's name.
func (t *Timer) Name() string { return t.name }

// Interval returns the firing interval.
func (t *Timer) Interval() time.Duration { return t.interval }

// SetInterval changes the firing interval. Time already accumulated is kept.
func (t *Timer) SetInterval(d time.Duration) { t.interval = d }

// Elapsed returns the time accumulated since the last firing.
func (t *Timer) Elapsed() time.Duration { return t.elapsed }

// Runs returns how many times the timer has fired.
func (t *Timer) Runs() int { return t.runs }

// IsRunning reports whether the timer is started and not removed.
func (t *Timer) IsRunning() bool { return t.running && !t.removed }

// Start resumes a stopped timer.
func (t *Timer) Start() {
	if !t.removed {
		t.running = true
	}
}

// Stop pauses the timer. Accumulated time is kept.
func (t *Timer) Stop() { t.running = false }

// Remove unregisters the timer. It never fires again.
func (t *Timer) Remove() {
	t.running = false
	t.removed = true
}

// tick accumulates dt and fires once per whole interval elapsed. A stop or
// removal from inside the callback ends the catch-up loop. A non-positive
// interval fires exactly once per tick.
func (t *Timer) tick(dt time.Duration) {
	t.elapsed += dt
	if t.interval <= 0 {
		t.elapsed = 0
		t.fire()
		return
	}
	for t.elapsed >= t.interval && t.running && !t.removed {
		t.elapsed -= t.interval
		t.fire()
	}
}

func (t *Timer) fire() {
	t.runs++
	if t.fn != nil {
		t.fn(t)
	}
	if t.maxRuns > 0 && t.runs >= t.maxRuns {
		t.Remove()
	}
}

// TimerScheduler holds a scope's timers.
type TimerScheduler struct {
	timers  []*Timer
	ticking bool
}

// NewTimerScheduler creates an empty scheduler.
func NewTimerScheduler() *TimerScheduler {
	return &TimerScheduler{}
}

// Add creates and registers a running timer.
func (s *TimerScheduler) Add(name string, interval time.Duration, maxRuns int, fn func(t *Timer)) *Timer {
	t := NewTimer(name, interval, maxRuns, fn)
	s.AddTimer(t)
	return t
}

// AddTimer registers t. Adding a nil timer, a removed timer or one already
// registered is rejected with a warning.
func (s *TimerScheduler) AddTimer(t *Timer) {
	if t == nil {
		warn("AddTimer: nil timer")
		return
	}
	if t.removed {
		warn("AddTimer: timer was removed", zap.String("timer", t.name))
		return
	}
	for _, existing := range s.timers {
		if existing == t {
			warn("AddTimer: timer already added", zap.String("timer", t.name))
			return
		}
	}
	s.timers = append(s.timers, t)
}

// Tick advances every running timer by dt. Timers added during the tick
// start accumulating on the next one; removed timers are dropped when the
// tick ends.
func (s *TimerScheduler) Tick(dt time.Duration) {
	if s.ticking {
		return
	}
	s.ticking = true
	count := len(s.timers)
	for i := 0; i < count; i++ {
		t := s.timers[i]
		if t.running && !t.removed {
			t.tick(dt)
		}
	}
	s.ticking = false
	s.compact()
}

func (s *TimerScheduler) compact() {
	kept := s.timers[:0]
	for _, t := range s.timers {
		if !t.removed {
			kept = append(kept, t)
		}
	}
	for i := len(kept); i < len(s.timers); i++ {
		s.timers[i] = nil
	}
	s.timers = kept
}

// each calls fn on every live timer named name.
func (s *TimerScheduler) each(name string, fn func(*Timer)) {
	h := xxhash.Sum64String(name)
	for _, t := range s.timers {
		if t.hash == h && t.name == name && !t.removed {
			fn(t)
		}
	}
}

// StartByName starts every timer with the given name.
func (s *TimerScheduler) StartByName(name string) {
	s.each(name, (*Timer).Start)
}

// StopByName stops every timer with the given name.
func (s *TimerScheduler) StopByName(name string) {
	s.each(name, (*Timer).Stop)
}

// RemoveByName removes every timer with the given name.
func (s *TimerScheduler) RemoveByName(name string) {
	s.each(name, (*Timer).Remove)
	if !s.ticking {
		s.compact()
	}
}

// StartAll starts every timer.
func (s *TimerScheduler) StartAll() {
	for _, t := range s.timers {
		t.Start()
	}
}

// StopAll stops every timer.
func (s *TimerScheduler) StopAll() {
	for _, t := range s.timers {
		t.Stop()
	}
}

// RemoveAll removes every timer without firing it.
func (s *TimerScheduler) RemoveAll() {
	for _, t := range s.timers {
		t.Remove()
	}
	if !s.ticking {
		s.compact()
	}
}

// Timer returns the first live timer with the given name, or nil.
func (s *TimerScheduler) Timer(name string) *Timer {
	var found *Timer
	s.each(name, func(t *Timer) {
		if found == nil {
			found = t
		}
	})
	return found
}

// Len returns the number of live timers.
func (s *TimerScheduler) Len() int {
	count := 0
	for _, t := range s.timers {
		if !t.removed {
			count++
		}
	}
	return count
}

// --- Node helpers ---

// Timers returns the node's timer scheduler, creating it on first use. A
// nil node gets an empty scheduler that is never ticked.
func (n *Node) Timers() *TimerScheduler {
	if debugCheckNil(n, "Timers") {
		return NewTimerScheduler()
	}
	if n.timers == nil {
		n.timers = NewTimerScheduler()
	}
	return n.timers
}

// AddTimer registers a timer scoped to this node. It is removed without
// firing when the node is detached or disposed.
func (n *Node) AddTimer(name string, interval time.Duration, maxRuns int, fn func(t *Timer)) *Timer {
	if debugCheckNil(n, "AddTimer") {
		return nil
	}
	if debugCheckDisposed(n, "AddTimer") {
		return nil
	}
	return n.Timers().Add(name, interval, maxRuns, fn)
}
