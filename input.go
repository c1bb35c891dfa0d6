package birch

import (
	"maps"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

// Input tracks keyboard and mouse state fed by the platform layer and queues
// the matching events for dispatch. State is double-buffered: the Director
// calls EndFrame once per frame after every event has been processed, so the
// edge queries compare this frame against the previous one.
//
// A key pressed and released within the same frame produces both events but
// neither edge.
type Input struct {
	keys     map[ebiten.Key]bool
	prevKeys map[ebiten.Key]bool

	buttons     [mouseButtonCount]bool
	prevButtons [mouseButtonCount]bool

	mouseX, mouseY float64
	wheel          float64

	queue []Event
}

// NewInput creates an Input with nothing pressed.
func NewInput() *Input {
	return &Input{
		keys:     make(map[ebiten.Key]bool),
		prevKeys: make(map[ebiten.Key]bool),
	}
}

// --- Raw callbacks ---

// KeyDown records that k went down. Repeats while held are ignored.
func (in *Input) KeyDown(k ebiten.Key) {
	if in.keys[k] {
		return
	}
	in.keys[k] = true
	in.queue = append(in.queue, Event{Type: EventKeyDown, Key: k, Modifiers: in.Modifiers()})
}

// KeyUp records that k went up.
func (in *Input) KeyUp(k ebiten.Key) {
	if !in.keys[k] {
		return
	}
	delete(in.keys, k)
	in.queue = append(in.queue, Event{Type: EventKeyUp, Key: k, Modifiers: in.Modifiers()})
}

// MouseMove records the cursor position in scene coordinates.
func (in *Input) MouseMove(x, y float64) {
	if x == in.mouseX && y == in.mouseY {
		return
	}
	in.mouseX, in.mouseY = x, y
	in.queue = append(in.queue, Event{Type: EventMouseMove, X: x, Y: y, Modifiers: in.Modifiers()})
}

// MouseButton records a button transition at (x, y).
func (in *Input) MouseButton(b MouseButton, down bool, x, y float64) {
	if b >= mouseButtonCount {
		warn("MouseButton: unknown button", zap.Uint8("button", uint8(b)))
		return
	}
	in.MouseMove(x, y)
	if in.buttons[b] == down {
		return
	}
	in.buttons[b] = down
	typ := EventMouseUp
	if down {
		typ = EventMouseDown
	}
	in.queue = append(in.queue, Event{Type: typ, Button: b, X: x, Y: y, Modifiers: in.Modifiers()})
}

// MouseWheel records a scroll of delta.
func (in *Input) MouseWheel(delta float64) {
	if delta == 0 {
		return
	}
	in.wheel += delta
	in.queue = append(in.queue, Event{
		Type: EventMouseWheel, X: in.mouseX, Y: in.mouseY,
		WheelDelta: delta, Modifiers: in.Modifiers(),
	})
}

// --- Queries ---

// IsKeyDown reports whether k is currently held.
func (in *Input) IsKeyDown(k ebiten.Key) bool {
	return in.keys[k]
}

// WasKeyPressed reports whether k went down this frame.
func (in *Input) WasKeyPressed(k ebiten.Key) bool {
	return in.keys[k] && !in.prevKeys[k]
}

// WasKeyReleased reports whether k went up this frame.
func (in *Input) WasKeyReleased(k ebiten.Key) bool {
	return !in.keys[k] && in.prevKeys[k]
}

// IsButtonDown reports whether b is currently held.
func (in *Input) IsButtonDown(b MouseButton) bool {
	return b < mouseButtonCount && in.buttons[b]
}

// WasButtonPressed reports whether b went down this frame.
func (in *Input) WasButtonPressed(b MouseButton) bool {
	return b < mouseButtonCount && in.buttons[b] && !in.prevButtons[b]
}

// WasButtonReleased reports whether b went up this frame.
func (in *Input) WasButtonReleased(b MouseButton) bool {
	return b < mouseButtonCount && !in.buttons[b] && in.prevButtons[b]
}

// MousePosition returns the last reported cursor position.
func (in *Input) MousePosition() (float64, float64) {
	return in.mouseX, in.mouseY
}

// WheelDelta returns the scroll accumulated this frame.
func (in *Input) WheelDelta() float64 {
	return in.wheel
}

// Modifiers returns the modifier keys currently held.
func (in *Input) Modifiers() KeyModifiers {
	var mods KeyModifiers
	if in.anyDown(ebiten.KeyShift, ebiten.KeyShiftLeft, ebiten.KeyShiftRight) {
		mods |= ModShift
	}
	if in.anyDown(ebiten.KeyControl, ebiten.KeyControlLeft, ebiten.KeyControlRight) {
		mods |= ModCtrl
	}
	if in.anyDown(ebiten.KeyAlt, ebiten.KeyAltLeft, ebiten.KeyAltRight) {
		mods |= ModAlt
	}
	if in.anyDown(ebiten.KeyMeta, ebiten.KeyMetaLeft, ebiten.KeyMetaRight) {
		mods |= ModMeta
	}
	return mods
}

func (in *Input) anyDown(keys ...ebiten.Key) bool {
	for _, k := range keys {
		if in.keys[k] {
			return true
		}
	}
	return false
}

// --- Frame bookkeeping ---

// EndFrame copies the current state into the previous-frame buffer and
// clears the per-frame wheel accumulator.
func (in *Input) EndFrame() {
	clear(in.prevKeys)
	maps.Copy(in.prevKeys, in.keys)
	in.prevButtons = in.buttons
	in.wheel = 0
}

// Reset releases everything without generating events.
func (in *Input) Reset() {
	clear(in.keys)
	clear(in.prevKeys)
	in.buttons = [mouseButtonCount]bool{}
	in.prevButtons = [mouseButtonCount]bool{}
	in.wheel = 0
	in.queue = nil
}

// drain returns the queued events and empties the queue.
func (in *Input) drain() []Event {
	events := in.queue
	in.queue = nil
	return events
}
