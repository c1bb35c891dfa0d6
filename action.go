package birch

import (
	"time"

	"go.uber.org/zap"
)

// ActionState is the lifecycle state of an Action.
type ActionState uint8

const (
	ActionCreated ActionState = iota // not yet scheduled
	ActionRunning                    // scheduled and advancing each tick
	ActionPaused                     // scheduled but not advancing
	ActionDone                       // finished or stopped; removed on the next pass
)

var actionStateNames = [...]string{"created", "running", "paused", "done"}

func (s ActionState) String() string {
	if int(s) < len(actionStateNames) {
		return actionStateNames[s]
	}
	return "unknown"
}

// Action is a time-driven behaviour that mutates its target node across
// frames. Actions are created with the constructors in this package
// (MoveTo, NewSequence, ...) and run by an ActionScheduler.
//
// The target is not kept alive by the action: once the target is disposed
// the action is marked done without touching it.
type Action interface {
	Name() string
	SetName(name string)
	Target() *Node
	State() ActionState
	IsDone() bool
	Pause()
	Resume()
	// Stop forces the action to Done. OnDone callbacks do not fire.
	Stop()
	// OnDone sets a callback invoked when the action completes on its own.
	OnDone(fn func())
	// Duration returns the total running time, or a negative value for
	// actions that never finish.
	Duration() time.Duration
	// Clone returns an unscheduled copy.
	Clone() Action
	// Reverse returns an unscheduled action that plays this one backwards.
	Reverse() Action

	core() *actionCore
	begin(target *Node)
	// advance moves the action forward by dt and returns the unused part of
	// dt once it finishes.
	advance(dt time.Duration) (leftover time.Duration, finished bool)
}

// actionCore holds the state shared by every action kind.
type actionCore struct {
	name      string
	target    *Node
	state     ActionState
	scheduled bool
	started   bool
	onDone    func()
}

func (c *actionCore) Name() string        { return c.name }
func (c *actionCore) SetName(name string) { c.name = name }
func (c *actionCore) Target() *Node       { return c.target }
func (c *actionCore) State() ActionState  { return c.state }
func (c *actionCore) IsDone() bool        { return c.state == ActionDone }
func (c *actionCore) OnDone(fn func())    { c.onDone = fn }
func (c *actionCore) core() *actionCore   { return c }

func (c *actionCore) Pause() {
	if c.state == ActionRunning {
		c.state = ActionPaused
	}
}

func (c *actionCore) Resume() {
	if c.state == ActionPaused {
		c.state = ActionRunning
	}
}

func (c *actionCore) Stop() {
	c.state = ActionDone
}

// cloneCore copies the configuration of c, not its runtime state.
func (c *actionCore) cloneCore() actionCore {
	return actionCore{name: c.name}
}

// rewind returns a sub-action to its pre-start state so it can run again.
func rewind(a Action) {
	c := a.core()
	c.started = false
	c.state = ActionCreated
}

// runChild advances a sub-action on behalf of a composite, starting it on
// first use.
func runChild(a Action, target *Node, dt time.Duration) (time.Duration, bool) {
	c := a.core()
	if !c.started {
		c.started = true
		c.state = ActionRunning
		c.target = target
		a.begin(target)
	}
	if c.state == ActionDone {
		return dt, true
	}
	left, done := a.advance(dt)
	if done {
		c.state = ActionDone
		if c.onDone != nil {
			c.onDone()
		}
	}
	return left, done
}

// targetStatus classifies an action's target for a scheduler pass.
type targetStatus uint8

const (
	targetLive targetStatus = iota // advance the action
	targetIdle                     // skip the action this pass
	targetGone                     // mark the action done
)

// ActionScheduler runs actions against their targets once per Tick. Every
// Node owns one (created on first use) and the Director owns another for
// actions bound to arbitrary nodes.
//
// Actions scheduled during a Tick start on the next one. Finished and stopped
// actions are removed at the end of the pass that observes them.
type ActionScheduler struct {
	actions []Action
	ticking bool
	filter  func(target *Node) targetStatus
}

// NewActionScheduler creates an empty scheduler.
func NewActionScheduler() *ActionScheduler {
	return &ActionScheduler{}
}

// Schedule binds action to target and marks it running. It starts on the
// next Tick. A nil action or target, or an action that is already
// scheduled, is rejected with a warning.
func (s *ActionScheduler) Schedule(action Action, target *Node) Action {
	if action == nil {
		warn("Schedule: nil action")
		return nil
	}
	if target == nil {
		warn("Schedule: nil target", zap.String("action", action.Name()))
		return action
	}
	if debugCheckDisposed(target, "Schedule") {
		return action
	}
	c := action.core()
	if c.scheduled {
		warn("Schedule: action already scheduled", zap.String("action", c.name), nodeField(target))
		return action
	}
	c.target = target
	c.state = ActionRunning
	c.started = false
	c.scheduled = true
	s.actions = append(s.actions, action)
	return action
}

// Tick advances every running action by dt.
func (s *ActionScheduler) Tick(dt time.Duration) {
	if s.ticking {
		return
	}
	s.ticking = true
	count := len(s.actions)
	for i := 0; i < count; i++ {
		a := s.actions[i]
		c := a.core()
		if c.state != ActionRunning {
			continue
		}
		target := c.target
		if target == nil || target.disposed {
			c.state = ActionDone
			continue
		}
		if s.filter != nil {
			switch s.filter(target) {
			case targetGone:
				c.state = ActionDone
				continue
			case targetIdle:
				continue
			}
		}
		if !c.started {
			c.started = true
			a.begin(target)
		}
		if _, done := a.advance(dt); done && c.state != ActionDone {
			c.state = ActionDone
			if c.onDone != nil {
				c.onDone()
			}
		}
	}
	s.ticking = false
	s.compact()
}

// compact drops done actions, keeping the backing array.
func (s *ActionScheduler) compact() {
	kept := s.actions[:0]
	for _, a := range s.actions {
		if a.IsDone() {
			a.core().scheduled = false
			continue
		}
		kept = append(kept, a)
	}
	for i := len(kept); i < len(s.actions); i++ {
		s.actions[i] = nil
	}
	s.actions = kept
}

// Action returns the first unfinished action with the given name, or nil.
func (s *ActionScheduler) Action(name string) Action {
	for _, a := range s.actions {
		if !a.IsDone() && a.Name() == name {
			return a
		}
	}
	return nil
}

// StopAction stops every action with the given name.
func (s *ActionScheduler) StopAction(name string) {
	for _, a := range s.actions {
		if a.Name() == name {
			a.Stop()
		}
	}
	if !s.ticking {
		s.compact()
	}
}

// PauseAll pauses every running action.
func (s *ActionScheduler) PauseAll() {
	for _, a := range s.actions {
		a.Pause()
	}
}

// ResumeAll resumes every paused action.
func (s *ActionScheduler) ResumeAll() {
	for _, a := range s.actions {
		a.Resume()
	}
}

// StopAll stops every action.
func (s *ActionScheduler) StopAll() {
	for _, a := range s.actions {
		a.Stop()
	}
	if !s.ticking {
		s.compact()
	}
}

// Len returns the number of unfinished actions.
func (s *ActionScheduler) Len() int {
	count := 0
	for _, a := range s.actions {
		if !a.IsDone() {
			count++
		}
	}
	return count
}

// --- Node helpers ---

// Actions returns the node's action scheduler, creating it on first use. A
// nil node gets an empty scheduler that is never ticked.
func (n *Node) Actions() *ActionScheduler {
	if debugCheckNil(n, "Actions") {
		return NewActionScheduler()
	}
	if n.actions == nil {
		n.actions = NewActionScheduler()
	}
	return n.actions
}

// RunAction schedules a on this node's scheduler with the node as target.
func (n *Node) RunAction(a Action) Action {
	if debugCheckNil(n, "RunAction") {
		return a
	}
	if debugCheckDisposed(n, "RunAction") {
		return a
	}
	return n.Actions().Schedule(a, n)
}

// StopAllActions stops every action on this node's scheduler.
func (n *Node) StopAllActions() {
	if debugCheckNil(n, "StopAllActions") {
		return
	}
	if n.actions != nil {
		n.actions.StopAll()
	}
}
