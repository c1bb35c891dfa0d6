package birch

import "math"

const defaultDragDeadZone = 4.0 // pixels

// pointerState tracks the mouse pointer across events for hover, click and
// drag synthesis.
type pointerState struct {
	down      bool
	startX    float64
	startY    float64
	lastX     float64
	lastY     float64
	hitNode   *Node // node under the pointer when the button went down
	hoverNode *Node // last node the pointer was hovering over
	dragging  bool
	button    MouseButton // button captured at press time
}

// SetDragDeadZone sets the minimum movement in pixels before a drag starts.
func (s *Scene) SetDragDeadZone(pixels float64) {
	s.dragDeadZone = pixels
}

// --- Hit testing ---

// nodeContainsLocal tests whether (lx, ly) falls inside a node's hit region.
// Uses HitShape if set; otherwise the node's Width and Height. Nodes with
// neither are not hit-testable.
func nodeContainsLocal(n *Node, lx, ly float64) bool {
	if n.HitShape != nil {
		return n.HitShape.Contains(lx, ly)
	}
	if n.Width == 0 && n.Height == 0 {
		return false
	}
	return lx >= 0 && lx <= n.Width && ly >= 0 && ly <= n.Height
}

// ContainsPoint reports whether the scene point (x, y) falls inside the
// node's hit region.
func (n *Node) ContainsPoint(x, y float64) bool {
	if n == nil {
		return false
	}
	lx, ly := n.WorldToLocal(x, y)
	return nodeContainsLocal(n, lx, ly)
}

// hitTest finds the topmost visible interactable node at (x, y).
func (s *Scene) hitTest(x, y float64) *Node {
	return hitTestNode(s.root, x, y)
}

func hitTestNode(n *Node, x, y float64) *Node {
	if !n.Visible || n.IsDisposed() {
		return nil
	}
	for i := len(n.children) - 1; i >= 0; i-- {
		c := n.children[i]
		if c == nil {
			continue
		}
		if hit := hitTestNode(c, x, y); hit != nil {
			return hit
		}
	}
	if n.Interactable && n.ContainsPoint(x, y) {
		return n
	}
	return nil
}

// --- Synthesis ---

// processPointer turns raw mouse events into hover, out, click and drag
// events on the node under the pointer.
func (s *Scene) processPointer(e *Event) {
	ps := &s.pointer
	switch e.Type {
	case EventMouseMove, EventMouseDown, EventMouseUp:
	default:
		return
	}
	target := s.hitTest(e.X, e.Y)

	// Fire hover enter/leave when the hovered node changes.
	if target != ps.hoverNode {
		if ps.hoverNode != nil {
			s.firePointer(EventMouseOut, ps.hoverNode, e)
		}
		if target != nil {
			s.firePointer(EventMouseHover, target, e)
		}
		ps.hoverNode = target
	}

	switch e.Type {
	case EventMouseDown:
		if ps.down {
			return
		}
		// Just pressed: capture button for the duration of this interaction.
		ps.down = true
		ps.button = e.Button
		ps.startX, ps.startY = e.X, e.Y
		ps.lastX, ps.lastY = e.X, e.Y
		ps.hitNode = target
		ps.dragging = false

	case EventMouseUp:
		if !ps.down || e.Button != ps.button {
			return
		}
		if ps.dragging {
			s.firePointer(EventDragEnd, ps.hitNode, e)
		} else if ps.hitNode != nil && ps.hitNode == target {
			s.firePointer(EventClick, target, e)
		}
		ps.down = false
		ps.hitNode = nil
		ps.dragging = false

	case EventMouseMove:
		if !ps.down || ps.hitNode == nil {
			ps.lastX, ps.lastY = e.X, e.Y
			return
		}
		if !ps.dragging {
			dx := e.X - ps.startX
			dy := e.Y - ps.startY
			if math.Sqrt(dx*dx+dy*dy) > s.dragDeadZone {
				ps.dragging = true
				s.firePointer(EventDragStart, ps.hitNode, e)
			}
		}
		if ps.dragging {
			s.firePointer(EventDrag, ps.hitNode, e)
		}
		ps.lastX, ps.lastY = e.X, e.Y
	}
}

// firePointer delivers a synthesized event to node's listeners, then to the
// scene root's, then to the entity store.
func (s *Scene) firePointer(typ EventType, node *Node, src *Event) {
	if node == nil {
		return
	}
	ps := &s.pointer
	ev := Event{
		Type:      typ,
		Button:    src.Button,
		X:         src.X,
		Y:         src.Y,
		Modifiers: src.Modifiers,
	}
	switch typ {
	case EventClick, EventDragStart, EventDrag, EventDragEnd:
		ev.Button = ps.button
	}
	switch typ {
	case EventDragStart:
		ev.StartX, ev.StartY = ps.startX, ps.startY
		ev.DeltaX, ev.DeltaY = src.X-ps.startX, src.Y-ps.startY
	case EventDrag, EventDragEnd:
		ev.StartX, ev.StartY = ps.startX, ps.startY
		ev.DeltaX, ev.DeltaY = src.X-ps.lastX, src.Y-ps.lastY
	}

	ev.LocalX, ev.LocalY = node.WorldToLocal(ev.X, ev.Y)
	if node.deliver(&ev) && node != s.root && s.root.events != nil {
		s.root.events.Dispatch(&ev)
	}
	s.emitInteraction(typ, node, &ev)
}

// forgetPointer drops pointer state that refers to n.
func (s *Scene) forgetPointer(n *Node) {
	ps := &s.pointer
	if ps.hoverNode == n {
		ps.hoverNode = nil
	}
	if ps.hitNode == n {
		ps.hitNode = nil
		ps.dragging = false
	}
}
