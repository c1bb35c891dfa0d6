package birch

import (
	"slices"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

// --- EventDispatcher ---

func TestDispatchFiltersByType(t *testing.T) {
	d := NewEventDispatcher()
	var got []EventType
	d.On(EventKeyDown, func(e *Event) { got = append(got, e.Type) })
	d.On(EventAny, func(e *Event) { got = append(got, EventAny) })

	d.Dispatch(&Event{Type: EventKeyUp})
	d.Dispatch(&Event{Type: EventKeyDown})

	want := []EventType{EventAny, EventKeyDown, EventAny}
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestDispatchSwallowStops(t *testing.T) {
	d := NewEventDispatcher()
	calls := 0
	d.AddListener(NewListener("first", EventKeyDown, func(*Event) { calls++ }).SetSwallow(true))
	d.On(EventKeyDown, func(*Event) { calls += 10 })

	e := &Event{Type: EventKeyDown}
	if d.Dispatch(e) {
		t.Error("Dispatch should return false when swallowed")
	}
	if calls != 1 || !e.Stopped() {
		t.Errorf("calls = %d, stopped = %v", calls, e.Stopped())
	}
}

func TestDispatchStopPropagation(t *testing.T) {
	d := NewEventDispatcher()
	second := false
	d.On(EventKeyDown, func(e *Event) { e.StopPropagation() })
	d.On(EventKeyDown, func(*Event) { second = true })

	if d.Dispatch(&Event{Type: EventKeyDown}) || second {
		t.Error("StopPropagation should end dispatch")
	}
}

func TestDispatchRemoveDuringDispatchDeferred(t *testing.T) {
	d := NewEventDispatcher()
	var order []string
	var self *Listener
	self = d.AddListener(NewListener("self", EventKeyDown, func(*Event) {
		order = append(order, "self")
		self.Remove()
	}))
	d.AddListener(NewListener("next", EventKeyDown, func(*Event) { order = append(order, "next") }))

	d.Dispatch(&Event{Type: EventKeyDown})
	d.Dispatch(&Event{Type: EventKeyDown})

	if !slices.Equal(order, []string{"self", "next", "next"}) {
		t.Errorf("order = %v", order)
	}
	if d.Len() != 1 || len(d.listeners) != 1 {
		t.Errorf("Len = %d, slots = %d, want 1", d.Len(), len(d.listeners))
	}
}

func TestDispatchAddDuringDispatchWaits(t *testing.T) {
	d := NewEventDispatcher()
	late := 0
	d.On(EventKeyDown, func(*Event) {
		d.On(EventKeyDown, func(*Event) { late++ })
	})
	d.Dispatch(&Event{Type: EventKeyDown})
	if late != 0 {
		t.Error("listener added during dispatch saw the event")
	}
}

func TestDispatchNilCallbackIsNoop(t *testing.T) {
	d := NewEventDispatcher()
	d.On(EventKeyDown, nil)
	if !d.Dispatch(&Event{Type: EventKeyDown}) {
		t.Error("nil callback should not consume the event")
	}
}

func TestListenerStartStopByName(t *testing.T) {
	d := NewEventDispatcher()
	calls := 0
	d.AddListener(NewListener("ui", EventKeyDown, func(*Event) { calls++ }))
	d.AddListener(NewListener("ui", EventKeyDown, func(*Event) { calls++ }))
	d.AddListener(NewListener("game", EventKeyDown, func(*Event) { calls += 10 }))

	d.StopListeners("ui")
	d.Dispatch(&Event{Type: EventKeyDown})
	if calls != 10 {
		t.Errorf("calls = %d after StopListeners, want 10", calls)
	}
	d.StartListeners("ui")
	d.Dispatch(&Event{Type: EventKeyDown})
	if calls != 22 {
		t.Errorf("calls = %d after StartListeners, want 22", calls)
	}
	d.RemoveListeners("ui")
	if d.Len() != 1 {
		t.Errorf("Len = %d, want 1", d.Len())
	}
	d.RemoveAllListeners()
	if d.Len() != 0 {
		t.Errorf("Len = %d, want 0", d.Len())
	}
}

func TestAddListenerRejected(t *testing.T) {
	logs := observeWarnings(t)
	d := NewEventDispatcher()
	d.AddListener(nil)
	assertWarned(t, logs, "nil listener")

	l := d.On(EventClick, func(*Event) {})
	d.AddListener(l)
	assertWarned(t, logs, "already added")
	if d.Len() != 1 {
		t.Errorf("Len = %d, want 1", d.Len())
	}

	l.Remove()
	l.Start()
	if l.IsRunning() {
		t.Error("removed listener cannot be restarted")
	}
}

// --- Tree dispatch ---

func TestTreeDispatchTopmostFirst(t *testing.T) {
	root := NewNode("root")
	low := NewNode("low")
	high := NewNode("high")
	child := NewNode("child")
	root.AddChildZ(low, 0)
	root.AddChildZ(high, 1)
	low.AddChild(child)

	var order []string
	for _, n := range []*Node{root, low, high, child} {
		name := n.Name
		n.On(EventKeyDown, func(e *Event) {
			if e.Node.Name != name {
				t.Errorf("Event.Node = %q, want %q", e.Node.Name, name)
			}
			order = append(order, name)
		})
	}
	root.dispatchEvent(&Event{Type: EventKeyDown})

	want := []string{"high", "child", "low", "root"}
	if !slices.Equal(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestTreeDispatchSwallowStopsSiblings(t *testing.T) {
	root := NewNode("root")
	a := NewNode("a")
	b := NewNode("b")
	root.AddChild(a)
	root.AddChild(b)

	aCalled := false
	a.On(EventKeyDown, func(*Event) { aCalled = true })
	b.AddListener(NewListener("", EventKeyDown, func(*Event) {}).SetSwallow(true))

	if root.dispatchEvent(&Event{Type: EventKeyDown}) {
		t.Error("dispatch should report the event consumed")
	}
	if aCalled {
		t.Error("sibling below the swallowing node received the event")
	}
}

func TestTreeDispatchSkipsInvisible(t *testing.T) {
	root := NewNode("root")
	hidden := NewNode("hidden")
	hidden.Visible = false
	root.AddChild(hidden)
	called := false
	hidden.On(EventKeyDown, func(*Event) { called = true })

	root.dispatchEvent(&Event{Type: EventKeyDown})
	if called {
		t.Error("invisible node received an event")
	}
}

func TestTreeDispatchLocalCoordinates(t *testing.T) {
	root := NewNode("root")
	n := NewNode("n")
	n.SetPosition(100, 50)
	root.AddChild(n)

	var lx, ly float64
	n.On(EventMouseMove, func(e *Event) { lx, ly = e.LocalX, e.LocalY })
	root.dispatchEvent(&Event{Type: EventMouseMove, X: 110, Y: 55})
	assertNear(t, "LocalX", lx, 10)
	assertNear(t, "LocalY", ly, 5)
}

// --- Pointer synthesis ---

func newButtonScene(t *testing.T) (*Scene, *Node, *[]EventType) {
	t.Helper()
	s := NewScene("s")
	btn := NewNode("btn")
	btn.SetPosition(10, 10)
	btn.SetSize(20, 20)
	btn.Interactable = true
	s.AddChild(btn)

	var got []EventType
	for _, typ := range []EventType{EventMouseHover, EventMouseOut, EventClick, EventDragStart, EventDrag, EventDragEnd} {
		btn.On(typ, func(e *Event) { got = append(got, e.Type) })
	}
	return s, btn, &got
}

func TestPointerClick(t *testing.T) {
	s, btn, got := newButtonScene(t)
	var local [2]float64
	btn.On(EventClick, func(e *Event) { local = [2]float64{e.LocalX, e.LocalY} })

	s.DispatchEvent(&Event{Type: EventMouseDown, X: 15, Y: 15, Button: MouseButtonLeft})
	s.DispatchEvent(&Event{Type: EventMouseUp, X: 15, Y: 15, Button: MouseButtonLeft})

	want := []EventType{EventMouseHover, EventClick}
	if !slices.Equal(*got, want) {
		t.Errorf("events = %v, want %v", *got, want)
	}
	if local != [2]float64{5, 5} {
		t.Errorf("click local = %v, want [5 5]", local)
	}
}

func TestPointerReleaseElsewhereNoClick(t *testing.T) {
	s, _, got := newButtonScene(t)
	s.DispatchEvent(&Event{Type: EventMouseDown, X: 15, Y: 15})
	s.DispatchEvent(&Event{Type: EventMouseUp, X: 100, Y: 100})

	want := []EventType{EventMouseHover, EventMouseOut}
	if !slices.Equal(*got, want) {
		t.Errorf("events = %v, want %v", *got, want)
	}
}

func TestPointerDrag(t *testing.T) {
	s, btn, got := newButtonScene(t)
	var deltas [][2]float64
	btn.On(EventDrag, func(e *Event) { deltas = append(deltas, [2]float64{e.DeltaX, e.DeltaY}) })

	s.DispatchEvent(&Event{Type: EventMouseDown, X: 15, Y: 15})
	s.DispatchEvent(&Event{Type: EventMouseMove, X: 17, Y: 15})
	s.DispatchEvent(&Event{Type: EventMouseMove, X: 25, Y: 15})
	s.DispatchEvent(&Event{Type: EventMouseMove, X: 28, Y: 19})
	s.DispatchEvent(&Event{Type: EventMouseUp, X: 28, Y: 19})

	want := []EventType{EventMouseHover, EventDragStart, EventDrag, EventDrag, EventDragEnd}
	if !slices.Equal(*got, want) {
		t.Errorf("events = %v, want %v", *got, want)
	}
	wantDeltas := [][2]float64{{8, 0}, {3, 4}}
	if !slices.Equal(deltas, wantDeltas) {
		t.Errorf("drag deltas = %v, want %v", deltas, wantDeltas)
	}
}

func TestPointerHoverOut(t *testing.T) {
	s, _, got := newButtonScene(t)
	s.DispatchEvent(&Event{Type: EventMouseMove, X: 15, Y: 15})
	s.DispatchEvent(&Event{Type: EventMouseMove, X: 16, Y: 16})
	s.DispatchEvent(&Event{Type: EventMouseMove, X: 50, Y: 50})

	want := []EventType{EventMouseHover, EventMouseOut}
	if !slices.Equal(*got, want) {
		t.Errorf("events = %v, want %v", *got, want)
	}
}

func TestPointerTopmostWins(t *testing.T) {
	s := NewScene("s")
	under := NewNode("under")
	over := NewNode("over")
	for _, n := range []*Node{under, over} {
		n.SetSize(50, 50)
		n.Interactable = true
		s.AddChild(n)
	}
	var clicked []string
	under.On(EventClick, func(*Event) { clicked = append(clicked, "under") })
	over.On(EventClick, func(*Event) { clicked = append(clicked, "over") })

	s.DispatchEvent(&Event{Type: EventMouseDown, X: 5, Y: 5})
	s.DispatchEvent(&Event{Type: EventMouseUp, X: 5, Y: 5})
	if !slices.Equal(clicked, []string{"over"}) {
		t.Errorf("clicked = %v", clicked)
	}
}

func TestPointerRootSeesSynthesizedEvents(t *testing.T) {
	s, btn, _ := newButtonScene(t)
	var target *Node
	s.On(EventClick, func(e *Event) { target = e.Node })

	s.DispatchEvent(&Event{Type: EventMouseDown, X: 15, Y: 15})
	s.DispatchEvent(&Event{Type: EventMouseUp, X: 15, Y: 15})
	if target != btn {
		t.Errorf("root listener saw Node = %v, want btn", target)
	}
}

func TestPointerHitShape(t *testing.T) {
	s := NewScene("s")
	n := NewNode("circle")
	n.HitShape = CircleShape{CenterX: 0, CenterY: 0, Radius: 10}
	n.Interactable = true
	s.AddChild(n)

	if s.hitTest(5, 5) != n {
		t.Error("point inside circle should hit")
	}
	if s.hitTest(9, 9) != nil {
		t.Error("point outside circle should miss")
	}
}

func TestPointerRemovedNodeForgotten(t *testing.T) {
	s, btn, got := newButtonScene(t)
	s.DispatchEvent(&Event{Type: EventMouseDown, X: 15, Y: 15})
	btn.Retain()
	s.RemoveChild(btn)
	s.DispatchEvent(&Event{Type: EventMouseUp, X: 15, Y: 15})

	if slices.Contains(*got, EventClick) {
		t.Error("removed node received a click")
	}
	if s.pointer.hitNode != nil || s.pointer.hoverNode != nil {
		t.Error("pointer state still references the removed node")
	}
}

func TestKeyEventsNotPointer(t *testing.T) {
	e := &Event{Type: EventKeyDown, Key: ebiten.KeyA}
	if e.isPointer() {
		t.Error("key events are not pointer events")
	}
	if !(&Event{Type: EventClick}).isPointer() {
		t.Error("click is a pointer event")
	}
}
