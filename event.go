package birch

import (
	"github.com/cespare/xxhash/v2"
	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

// Event carries one input or pointer event through the dispatchers.
type Event struct {
	Type EventType

	// Keyboard
	Key ebiten.Key

	// Pointer, in scene coordinates
	Button MouseButton
	X, Y   float64

	// LocalX and LocalY are X and Y in the coordinate space of Node.
	LocalX, LocalY float64

	// WheelDelta is the scroll amount for EventMouseWheel.
	WheelDelta float64

	// Drag origin and the movement since the previous drag event.
	StartX, StartY float64
	DeltaX, DeltaY float64

	Modifiers KeyModifiers

	// Node is the node whose listeners are receiving the event.
	Node *Node

	stopped bool
}

// StopPropagation prevents the event from reaching any further listener.
func (e *Event) StopPropagation() {
	e.stopped = true
}

// Stopped reports whether StopPropagation was called or a swallowing
// listener consumed the event.
func (e *Event) Stopped() bool {
	return e.stopped
}

func (e *Event) isPointer() bool {
	switch e.Type {
	case EventKeyDown, EventKeyUp, EventAny:
		return false
	}
	return true
}

// Listener is a callback registered on an EventDispatcher for one event type
// (or EventAny).
type Listener struct {
	name    string
	hash    uint64
	typ     EventType
	fn      func(e *Event)
	swallow bool
	running bool
	removed bool
}

// NewListener creates a running listener.
func NewListener(name string, typ EventType, fn func(e *Event)) *Listener {
	return &Listener{
		name:    name,
		hash:    xxhash.Sum64String(name),
		typ:     typ,
		fn:      fn,
		running: true,
	}
}

// SetSwallow makes the listener consume every event it handles, stopping
// dispatch to the listeners and nodes after it.
func (l *Listener) SetSwallow(swallow bool) *Listener {
	l.swallow = swallow
	return l
}

// Name returns the listener's name.
func (l *Listener) Name() string { return l.name }

// Type returns the event type the listener filters on.
func (l *Listener) Type() EventType { return l.typ }

// IsRunning reports whether the listener receives events.
func (l *Listener) IsRunning() bool { return l.running && !l.removed }

// Start resumes a stopped listener.
func (l *Listener) Start() {
	if !l.removed {
		l.running = true
	}
}

// Stop pauses the listener.
func (l *Listener) Stop() { l.running = false }

// Remove unregisters the listener. If its dispatcher is mid-dispatch the
// listener is dropped when the dispatch completes.
func (l *Listener) Remove() {
	l.running = false
	l.removed = true
}

// EventDispatcher is an ordered list of listeners.
type EventDispatcher struct {
	listeners   []*Listener
	dispatching int
}

// NewEventDispatcher creates an empty dispatcher.
func NewEventDispatcher() *EventDispatcher {
	return &EventDispatcher{}
}

// AddListener appends l. A nil or already registered listener is rejected
// with a warning.
func (d *EventDispatcher) AddListener(l *Listener) *Listener {
	if l == nil {
		warn("AddListener: nil listener")
		return nil
	}
	if l.removed {
		warn("AddListener: listener was removed", zap.String("listener", l.name))
		return l
	}
	for _, existing := range d.listeners {
		if existing == l {
			warn("AddListener: listener already added", zap.String("listener", l.name))
			return l
		}
	}
	d.listeners = append(d.listeners, l)
	return l
}

// On registers an unnamed listener for typ.
func (d *EventDispatcher) On(typ EventType, fn func(e *Event)) *Listener {
	return d.AddListener(NewListener("", typ, fn))
}

// Dispatch calls every running listener matching e.Type in order. It returns
// false when the event was consumed, either by a swallowing listener or by
// StopPropagation. Listeners added during dispatch do not see the event.
func (d *EventDispatcher) Dispatch(e *Event) bool {
	if e.stopped {
		return false
	}
	d.dispatching++
	count := len(d.listeners)
	for i := 0; i < count; i++ {
		l := d.listeners[i]
		if !l.running || l.removed || l.fn == nil {
			continue
		}
		if l.typ != EventAny && l.typ != e.Type {
			continue
		}
		l.fn(e)
		if l.swallow {
			e.stopped = true
		}
		if e.stopped {
			break
		}
	}
	d.dispatching--
	if d.dispatching == 0 {
		d.compact()
	}
	return !e.stopped
}

func (d *EventDispatcher) compact() {
	kept := d.listeners[:0]
	for _, l := range d.listeners {
		if !l.removed {
			kept = append(kept, l)
		}
	}
	for i := len(kept); i < len(d.listeners); i++ {
		d.listeners[i] = nil
	}
	d.listeners = kept
}

func (d *EventDispatcher) each(name string, fn func(*Listener)) {
	h := xxhash.Sum64String(name)
	for _, l := range d.listeners {
		if l.hash == h && l.name == name && !l.removed {
			fn(l)
		}
	}
}

// StartListeners starts every listener with the given name.
func (d *EventDispatcher) StartListeners(name string) {
	d.each(name, (*Listener).Start)
}

// StopListeners stops every listener with the given name.
func (d *EventDispatcher) StopListeners(name string) {
	d.each(name, (*Listener).Stop)
}

// RemoveListeners removes every listener with the given name.
func (d *EventDispatcher) RemoveListeners(name string) {
	d.each(name, (*Listener).Remove)
	if d.dispatching == 0 {
		d.compact()
	}
}

// RemoveAllListeners removes every listener.
func (d *EventDispatcher) RemoveAllListeners() {
	for _, l := range d.listeners {
		l.Remove()
	}
	if d.dispatching == 0 {
		d.compact()
	}
}

// Len returns the number of registered listeners.
func (d *EventDispatcher) Len() int {
	count := 0
	for _, l := range d.listeners {
		if !l.removed {
			count++
		}
	}
	return count
}

// --- Node helpers ---

// Events returns the node's event dispatcher, creating it on first use. A
// nil node gets an empty dispatcher that never receives events.
func (n *Node) Events() *EventDispatcher {
	if debugCheckNil(n, "Events") {
		return NewEventDispatcher()
	}
	if n.events == nil {
		n.events = NewEventDispatcher()
	}
	return n.events
}

// AddListener registers l on this node.
func (n *Node) AddListener(l *Listener) *Listener {
	if debugCheckNil(n, "AddListener") {
		return l
	}
	if debugCheckDisposed(n, "AddListener") {
		return l
	}
	return n.Events().AddListener(l)
}

// On registers an unnamed listener for typ on this node.
func (n *Node) On(typ EventType, fn func(e *Event)) *Listener {
	return n.AddListener(NewListener("", typ, fn))
}

// dispatchEvent routes e through the subtree: children from the topmost
// down, then the node's own listeners. Invisible subtrees are skipped.
// Returns false once the event is consumed.
func (n *Node) dispatchEvent(e *Event) bool {
	if !n.Visible {
		return true
	}
	cont := true
	n.forEachChildReverse(func(c *Node) bool {
		cont = c.dispatchEvent(e)
		return cont
	})
	if !cont {
		return false
	}
	return n.deliver(e)
}

// deliver hands e to the node's own listeners only.
func (n *Node) deliver(e *Event) bool {
	if n.events == nil || n.disposed || n.pendingDispose {
		return !e.stopped
	}
	e.Node = n
	if e.isPointer() {
		e.LocalX, e.LocalY = n.WorldToLocal(e.X, e.Y)
	}
	return n.events.Dispatch(e)
}
