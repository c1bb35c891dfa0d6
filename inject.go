package birch

import "github.com/hajimehoshi/ebiten/v2"

type injectKind uint8

const (
	injectPress injectKind = iota
	injectMove
	injectRelease
	injectKeyDown
	injectKeyUp
)

// syntheticEvent represents a single injected input event. Injected events
// go through the Director's Input exactly like platform input, one per
// frame.
type syntheticEvent struct {
	kind   injectKind
	x, y   float64
	button MouseButton
	key    ebiten.Key
}

// InjectPress queues a left-button press at (x, y). The event is consumed on
// the next frame.
func (d *Director) InjectPress(x, y float64) {
	d.injectQueue = append(d.injectQueue, syntheticEvent{kind: injectPress, x: x, y: y, button: MouseButtonLeft})
}

// InjectMove queues a pointer move to (x, y). Use this between InjectPress
// and InjectRelease to simulate a drag.
func (d *Director) InjectMove(x, y float64) {
	d.injectQueue = append(d.injectQueue, syntheticEvent{kind: injectMove, x: x, y: y, button: MouseButtonLeft})
}

// InjectRelease queues a left-button release at (x, y).
func (d *Director) InjectRelease(x, y float64) {
	d.injectQueue = append(d.injectQueue, syntheticEvent{kind: injectRelease, x: x, y: y, button: MouseButtonLeft})
}

// InjectClick is a convenience that queues a press followed by a release
// at the same coordinates. Consumes two frames.
func (d *Director) InjectClick(x, y float64) {
	d.InjectPress(x, y)
	d.InjectRelease(x, y)
}

// InjectDrag queues a full drag sequence: press at (fromX, fromY),
// linearly interpolated moves over frames-2 intermediate frames, and
// release at (toX, toY). The total sequence consumes `frames` frames.
// Minimum frames is 2 (press + release).
func (d *Director) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	d.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		x := fromX + (toX-fromX)*t
		y := fromY + (toY-fromY)*t
		d.InjectMove(x, y)
	}
	d.InjectRelease(toX, toY)
}

// InjectKey queues a key press followed by its release. Consumes two frames.
func (d *Director) InjectKey(k ebiten.Key) {
	d.injectQueue = append(d.injectQueue,
		syntheticEvent{kind: injectKeyDown, key: k},
		syntheticEvent{kind: injectKeyUp, key: k},
	)
}

// PendingInjections returns the number of injected events not yet consumed.
func (d *Director) PendingInjections() int {
	return len(d.injectQueue)
}

// processInjectedInput pops one event from the inject queue and feeds it to
// the Input. Returns true if an event was consumed.
func (d *Director) processInjectedInput() bool {
	if len(d.injectQueue) == 0 {
		return false
	}
	evt := d.injectQueue[0]
	copy(d.injectQueue, d.injectQueue[1:])
	d.injectQueue = d.injectQueue[:len(d.injectQueue)-1]

	switch evt.kind {
	case injectPress:
		d.input.MouseButton(evt.button, true, evt.x, evt.y)
	case injectMove:
		d.input.MouseMove(evt.x, evt.y)
	case injectRelease:
		d.input.MouseButton(evt.button, false, evt.x, evt.y)
	case injectKeyDown:
		d.input.KeyDown(evt.key)
	case injectKeyUp:
		d.input.KeyUp(evt.key)
	}
	return true
}
