package birch

import (
	"time"

	"go.uber.org/zap"
)

// Audio is the sound collaborator a Director can carry. Calls are
// fire-and-forget and never affect scheduling.
type Audio interface {
	Play(id string, loops int) error
	Pause(id string)
	Resume(id string)
	Stop(id string)
	SetVolume(v float64)
}

// Director owns the current scene, the scene coming in during a switch, and
// a stack of scenes pushed for back-navigation. Each frame it dispatches
// queued input, updates the active scene(s), runs the transition, swaps the
// input buffers and flushes release pools.
type Director struct {
	current    *Scene
	next       *Scene
	stack      []*Scene
	transition Transition
	keepPrev   bool
	swapDue    bool

	input   *Input
	actions *ActionScheduler
	events  *EventDispatcher
	audio   Audio

	paused      bool
	inFrame     bool
	frame       uint64
	viewport    Vec2
	deadZone    float64
	runner      *TestRunner
	injectQueue []syntheticEvent
}

// NewDirector creates an idle director.
func NewDirector() *Director {
	d := &Director{
		input:    NewInput(),
		actions:  NewActionScheduler(),
		events:   NewEventDispatcher(),
		deadZone: defaultDragDeadZone,
	}
	d.actions.filter = d.classifyTarget
	return d
}

// classifyTarget lets director-scheduled actions run only on nodes in an
// active scene. Nodes outside any scene end their actions.
func (d *Director) classifyTarget(n *Node) targetStatus {
	s := n.Scene()
	switch {
	case s == nil:
		return targetGone
	case s == d.current || s == d.next:
		return targetLive
	default:
		return targetIdle
	}
}

// --- Stage switching ---

// EnterStage makes next the current scene, discarding the current one. With
// a nil transition the switch happens at once (or at the end of the frame
// when called from inside Update); otherwise both scenes run through the
// transition until it is done.
func (d *Director) EnterStage(next *Scene, tr Transition) {
	d.beginSwitch("EnterStage", next, tr, false)
}

// PushStage is like EnterStage but keeps the current scene on the stack for
// PopStage.
func (d *Director) PushStage(next *Scene, tr Transition) {
	d.beginSwitch("PushStage", next, tr, true)
}

// PopStage switches back to the most recently pushed scene, discarding the
// current one. Popping an empty stack is a warned no-op.
func (d *Director) PopStage(tr Transition) {
	if len(d.stack) == 0 {
		warn("PopStage: stage stack is empty")
		return
	}
	if d.next != nil {
		warn("PopStage: a stage switch is already in progress", zap.String("next", d.next.Name))
		return
	}
	top := d.stack[len(d.stack)-1]
	if !d.canSwitch("PopStage", top) {
		return
	}
	d.stack[len(d.stack)-1] = nil
	d.stack = d.stack[:len(d.stack)-1]
	d.beginSwitch("PopStage", top, tr, false)
}

// canSwitch reports whether next may become the incoming scene, warning
// when it may not.
func (d *Director) canSwitch(op string, next *Scene) bool {
	if next == nil {
		warn(op + ": nil scene")
		return false
	}
	if next.disposed {
		warn(op+": scene is disposed", zap.String("scene", next.Name))
		return false
	}
	if next == d.current {
		warn(op+": scene is already current", zap.String("scene", next.Name))
		return false
	}
	if d.next != nil {
		warn(op+": a stage switch is already in progress", zap.String("next", d.next.Name))
		return false
	}
	return true
}

func (d *Director) beginSwitch(op string, next *Scene, tr Transition, keep bool) {
	if !d.canSwitch(op, next) {
		return
	}
	d.next = next
	d.keepPrev = keep
	next.director = d
	next.dragDeadZone = d.deadZone
	logger.Debug("stage switch",
		zap.String("op", op),
		zap.String("scene", next.Name),
		zap.Stringer("id", next.id),
		zap.Bool("transition", tr != nil))
	if tr == nil {
		if d.inFrame {
			d.swapDue = true
			return
		}
		d.finalize()
		return
	}
	d.transition = tr
	tr.Init(d.current, next, d.viewport)
}

// finalize completes a pending switch: the outgoing scene's OnExit runs,
// then it is pushed or disposed, and the incoming scene's OnEnter runs.
func (d *Director) finalize() {
	prev, next := d.current, d.next
	d.next = nil
	d.transition = nil
	d.swapDue = false
	if prev != nil {
		prev.pointer = pointerState{}
		if prev.OnExit != nil {
			prev.OnExit()
		}
		if d.keepPrev {
			d.stack = append(d.stack, prev)
		} else {
			prev.Dispose()
		}
	}
	d.keepPrev = false
	d.current = next
	if next.OnEnter != nil {
		next.OnEnter()
	}
}

// ClearStack disposes every pushed scene.
func (d *Director) ClearStack() {
	for i, s := range d.stack {
		s.Dispose()
		d.stack[i] = nil
	}
	d.stack = d.stack[:0]
}

// CurrentStage returns the current scene, or nil when idle.
func (d *Director) CurrentStage() *Scene { return d.current }

// NextStage returns the scene being switched to, or nil.
func (d *Director) NextStage() *Scene { return d.next }

// Transition returns the running transition, or nil.
func (d *Director) Transition() Transition { return d.transition }

// IsTransitioning reports whether a transition is running.
func (d *Director) IsTransitioning() bool { return d.transition != nil }

// StackLen returns the number of pushed scenes.
func (d *Director) StackLen() int { return len(d.stack) }

// --- Collaborators ---

// Input returns the director's input state.
func (d *Director) Input() *Input { return d.input }

// Actions returns the director-level action scheduler. Its actions advance
// only while their target is in the current or incoming scene.
func (d *Director) Actions() *ActionScheduler { return d.actions }

// RunAction schedules a on the director-level scheduler against target.
func (d *Director) RunAction(a Action, target *Node) Action {
	return d.actions.Schedule(a, target)
}

// Events returns the director-level dispatcher, which sees every input event
// before the current scene does.
func (d *Director) Events() *EventDispatcher { return d.events }

// SetAudio sets the audio collaborator.
func (d *Director) SetAudio(a Audio) { d.audio = a }

// Audio returns the audio collaborator, or nil.
func (d *Director) Audio() Audio { return d.audio }

// Pause stops scene updates, actions and timers until Resume. Input is still
// dispatched.
func (d *Director) Pause() { d.paused = true }

// Resume undoes Pause.
func (d *Director) Resume() { d.paused = false }

// IsPaused reports whether the director is paused.
func (d *Director) IsPaused() bool { return d.paused }

// SetDebugMode enables or disables debug mode globally.
func (d *Director) SetDebugMode(enabled bool) { SetDebugMode(enabled) }

// SetViewport sets the size transitions composite into.
func (d *Director) SetViewport(w, h float64) { d.viewport = Vec2{w, h} }

// Viewport returns the size set with SetViewport.
func (d *Director) Viewport() Vec2 { return d.viewport }

// SetDragDeadZone sets the drag dead zone applied to scenes as they enter.
func (d *Director) SetDragDeadZone(pixels float64) {
	d.deadZone = pixels
	if d.current != nil {
		d.current.dragDeadZone = pixels
	}
}

// Frame returns the number of frames updated so far.
func (d *Director) Frame() uint64 { return d.frame }

// --- Frame ---

// Update runs one frame.
func (d *Director) Update(dt time.Duration) {
	d.frame++
	d.inFrame = true

	var stats debugStats
	var t0 time.Time
	if globalDebug {
		t0 = time.Now()
	}

	if d.runner != nil {
		d.runner.step(d)
	}
	d.processInjectedInput()
	events := d.input.drain()
	for i := range events {
		d.dispatch(&events[i])
	}

	if globalDebug {
		stats.dispatchTime = time.Since(t0)
		stats.eventCount = len(events)
		t0 = time.Now()
	}

	if !d.paused {
		d.actions.Tick(dt)
		if d.transition != nil {
			d.transition.Update(dt)
			if d.current != nil {
				d.current.update(dt)
			}
			d.next.update(dt)
			if d.transition.IsDone() {
				d.swapDue = true
			}
		} else if d.current != nil {
			d.current.update(dt)
		}
	}

	d.input.EndFrame()
	d.inFrame = false

	if globalDebug {
		stats.updateTime = time.Since(t0)
		t0 = time.Now()
	}

	if d.swapDue && d.next != nil {
		d.finalize()
	}
	if d.current != nil {
		stats.releaseCount += d.current.flush()
	}
	if d.next != nil {
		stats.releaseCount += d.next.flush()
	}

	if globalDebug {
		stats.flushTime = time.Since(t0)
		if d.current != nil {
			stats.nodeCount = d.current.NodeCount()
		}
		d.debugLog(stats)
	}
}

// dispatch hands e to the director-level listeners, then to the current
// scene. Scenes receive no input while a transition runs.
func (d *Director) dispatch(e *Event) {
	if !d.events.Dispatch(e) {
		return
	}
	if d.transition == nil && d.current != nil {
		d.current.DispatchEvent(e)
	}
}

// Render draws the current scene, or the transition while one runs.
func (d *Director) Render(r Renderer) {
	if d.transition != nil {
		d.transition.Render(r)
		return
	}
	if d.current != nil {
		d.current.Render(r)
	}
}
