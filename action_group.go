package birch

import "time"

// --- Delay ---

// Delay does nothing for its duration. Useful inside a Sequence.
type Delay struct {
	actionCore
	duration time.Duration
	elapsed  time.Duration
}

// NewDelay creates a Delay lasting d.
func NewDelay(d time.Duration) *Delay {
	return &Delay{duration: d}
}

func (a *Delay) Duration() time.Duration { return a.duration }
func (a *Delay) Clone() Action           { return &Delay{actionCore: a.cloneCore(), duration: a.duration} }
func (a *Delay) Reverse() Action         { return a.Clone() }
func (a *Delay) begin(*Node)             { a.elapsed = 0 }

func (a *Delay) advance(dt time.Duration) (time.Duration, bool) {
	a.elapsed += dt
	if a.elapsed >= a.duration {
		return a.elapsed - a.duration, true
	}
	return 0, false
}

// --- CallFunc ---

// CallFunc invokes a callback once and finishes without consuming time.
type CallFunc struct {
	actionCore
	fn func()
}

// NewCallFunc creates a CallFunc. A nil fn makes it an instant no-op.
func NewCallFunc(fn func()) *CallFunc {
	return &CallFunc{fn: fn}
}

func (a *CallFunc) Duration() time.Duration { return 0 }
func (a *CallFunc) Clone() Action           { return &CallFunc{actionCore: a.cloneCore(), fn: a.fn} }
func (a *CallFunc) Reverse() Action         { return a.Clone() }
func (a *CallFunc) begin(*Node)             {}

func (a *CallFunc) advance(dt time.Duration) (time.Duration, bool) {
	if a.fn != nil {
		a.fn()
	}
	return dt, true
}

// --- Sequence ---

// Sequence runs its actions one after another. Time left over when one
// finishes is handed to the next within the same tick.
type Sequence struct {
	actionCore
	actions []Action
	index   int
}

// NewSequence creates a Sequence of the given actions. Nil entries are
// dropped.
func NewSequence(actions ...Action) *Sequence {
	return &Sequence{actions: compactActions(actions)}
}

func (a *Sequence) Duration() time.Duration {
	var total time.Duration
	for _, c := range a.actions {
		d := c.Duration()
		if d < 0 {
			return -1
		}
		total += d
	}
	return total
}

func (a *Sequence) Clone() Action {
	return &Sequence{actionCore: a.cloneCore(), actions: cloneActions(a.actions)}
}

func (a *Sequence) Reverse() Action {
	rev := make([]Action, len(a.actions))
	for i, c := range a.actions {
		rev[len(a.actions)-1-i] = c.Reverse()
	}
	return &Sequence{actionCore: a.cloneCore(), actions: rev}
}

func (a *Sequence) begin(*Node) {
	a.index = 0
	for _, c := range a.actions {
		rewind(c)
	}
}

func (a *Sequence) advance(dt time.Duration) (time.Duration, bool) {
	for a.index < len(a.actions) {
		left, done := runChild(a.actions[a.index], a.target, dt)
		if a.interrupted() || !done {
			return 0, false
		}
		a.index++
		dt = left
	}
	return dt, true
}

// interrupted reports whether a callback stopped the composite or destroyed
// its target while a child was running.
func (c *actionCore) interrupted() bool {
	return c.state == ActionDone || c.target == nil || c.target.disposed
}

// --- Spawn ---

// Spawn runs its actions in parallel and finishes when all of them have.
type Spawn struct {
	actionCore
	actions []Action
}

// NewSpawn creates a Spawn of the given actions. Nil entries are dropped.
func NewSpawn(actions ...Action) *Spawn {
	return &Spawn{actions: compactActions(actions)}
}

func (a *Spawn) Duration() time.Duration {
	var longest time.Duration
	for _, c := range a.actions {
		d := c.Duration()
		if d < 0 {
			return -1
		}
		longest = max(longest, d)
	}
	return longest
}

func (a *Spawn) Clone() Action {
	return &Spawn{actionCore: a.cloneCore(), actions: cloneActions(a.actions)}
}

func (a *Spawn) Reverse() Action {
	rev := make([]Action, len(a.actions))
	for i, c := range a.actions {
		rev[i] = c.Reverse()
	}
	return &Spawn{actionCore: a.cloneCore(), actions: rev}
}

func (a *Spawn) begin(*Node) {
	for _, c := range a.actions {
		rewind(c)
	}
}

func (a *Spawn) advance(dt time.Duration) (time.Duration, bool) {
	allDone := true
	leftover := dt
	for _, c := range a.actions {
		if c.core().started && c.IsDone() {
			continue
		}
		left, done := runChild(c, a.target, dt)
		if a.interrupted() {
			return 0, false
		}
		if !done {
			allDone = false
			continue
		}
		leftover = min(leftover, left)
	}
	if !allDone {
		return 0, false
	}
	return leftover, true
}

// --- Repeat ---

// Repeat runs an action a fixed number of times, or forever.
type Repeat struct {
	actionCore
	action Action
	times  int
	count  int
}

// NewRepeat repeats action times times. times <= 0 repeats forever.
func NewRepeat(action Action, times int) *Repeat {
	if action == nil {
		warn("NewRepeat: nil action")
		action = NewDelay(0)
	}
	return &Repeat{action: action, times: times}
}

// NewRepeatForever repeats action until it is stopped.
func NewRepeatForever(action Action) *Repeat {
	return NewRepeat(action, 0)
}

// Count returns the number of completed iterations.
func (a *Repeat) Count() int { return a.count }

func (a *Repeat) Duration() time.Duration {
	d := a.action.Duration()
	if a.times <= 0 || d < 0 {
		return -1
	}
	return d * time.Duration(a.times)
}

func (a *Repeat) Clone() Action {
	return &Repeat{actionCore: a.cloneCore(), action: a.action.Clone(), times: a.times}
}

func (a *Repeat) Reverse() Action {
	return &Repeat{actionCore: a.cloneCore(), action: a.action.Reverse(), times: a.times}
}

func (a *Repeat) begin(*Node) {
	a.count = 0
	rewind(a.action)
}

func (a *Repeat) advance(dt time.Duration) (time.Duration, bool) {
	for {
		left, done := runChild(a.action, a.target, dt)
		if a.interrupted() || !done {
			return 0, false
		}
		a.count++
		if a.times > 0 && a.count >= a.times {
			return left, true
		}
		rewind(a.action)
		// An endless repeat of an instant action runs once per tick.
		if a.times <= 0 && left >= dt {
			return 0, false
		}
		dt = left
	}
}

// --- helpers ---

func compactActions(actions []Action) []Action {
	out := make([]Action, 0, len(actions))
	for _, a := range actions {
		if a != nil {
			out = append(out, a)
		}
	}
	return out
}

func cloneActions(actions []Action) []Action {
	out := make([]Action, len(actions))
	for i, a := range actions {
		out[i] = a.Clone()
	}
	return out
}
