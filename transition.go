package birch

import (
	"math"
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Transition is a timed effect composited between the outgoing and incoming
// scene while a Director switches stages. Both scenes keep updating until
// IsDone reports true, then the switch is finalized.
type Transition interface {
	// Init is called once when the switch starts. prev is nil when there is
	// no current scene.
	Init(prev, next *Scene, viewport Vec2)
	Update(dt time.Duration)
	Render(r Renderer)
	IsDone() bool
}

// transitionBase drives an eased progress value from 0 to 1 over a duration.
type transitionBase struct {
	duration time.Duration
	easing   ease.TweenFunc
	tween    *gween.Tween
	elapsed  time.Duration
	progress float64
	done     bool

	prev, next *Scene
	viewport   Vec2
}

func newTransitionBase(d time.Duration, easing ease.TweenFunc) transitionBase {
	if easing == nil {
		easing = ease.Linear
	}
	return transitionBase{duration: d, easing: easing}
}

func (t *transitionBase) Init(prev, next *Scene, viewport Vec2) {
	t.prev, t.next = prev, next
	t.viewport = viewport
	t.elapsed = 0
	t.progress = 0
	t.done = false
	t.tween = gween.New(0, 1, float32(t.duration.Seconds()), t.easing)
}

func (t *transitionBase) Update(dt time.Duration) {
	if t.done {
		return
	}
	t.elapsed += dt
	if t.elapsed >= t.duration {
		t.progress = 1
		t.done = true
		return
	}
	p, _ := t.tween.Update(float32(dt.Seconds()))
	t.progress = float64(p)
}

// IsDone reports whether the transition has run its full duration.
func (t *transitionBase) IsDone() bool { return t.done }

// Progress returns the eased progress in [0, 1].
func (t *transitionBase) Progress() float64 { return t.progress }

// Duration returns the transition's length.
func (t *transitionBase) Duration() time.Duration { return t.duration }

func renderScene(s *Scene, r Renderer, view Transform, alpha float64) {
	if s != nil && alpha > 0 {
		s.RenderWith(r, view, alpha)
	}
}

// aroundCenter returns a scale-and-rotate transform about the viewport center.
func aroundCenter(vp Vec2, scale, angle float64) Transform {
	cx, cy := vp.X/2, vp.Y/2
	sin, cos := math.Sincos(angle)
	m := Transform{cos * scale, sin * scale, -sin * scale, cos * scale, 0, 0}
	return Translate(cx, cy).Multiply(m).Multiply(Translate(-cx, -cy))
}

// --- Fade ---

// FadeTransition fades the outgoing scene out during the first half, then
// the incoming scene in during the second.
type FadeTransition struct {
	transitionBase
}

// NewFadeTransition creates a FadeTransition lasting d.
func NewFadeTransition(d time.Duration, easing ease.TweenFunc) *FadeTransition {
	return &FadeTransition{transitionBase: newTransitionBase(d, easing)}
}

func (t *FadeTransition) Render(r Renderer) {
	if t.progress < 0.5 {
		renderScene(t.prev, r, IdentityTransform, 1-t.progress*2)
		return
	}
	renderScene(t.next, r, IdentityTransform, t.progress*2-1)
}

// --- CrossFade ---

// CrossFadeTransition blends the outgoing scene into the incoming one.
type CrossFadeTransition struct {
	transitionBase
}

// NewCrossFadeTransition creates a CrossFadeTransition lasting d.
func NewCrossFadeTransition(d time.Duration, easing ease.TweenFunc) *CrossFadeTransition {
	return &CrossFadeTransition{transitionBase: newTransitionBase(d, easing)}
}

func (t *CrossFadeTransition) Render(r Renderer) {
	renderScene(t.prev, r, IdentityTransform, 1-t.progress)
	renderScene(t.next, r, IdentityTransform, t.progress)
}

// --- Move ---

// MoveDirection is the direction the incoming scene travels in.
type MoveDirection uint8

const (
	MoveUp MoveDirection = iota
	MoveDown
	MoveLeft
	MoveRight
)

// MoveTransition slides the incoming scene in from one edge while pushing
// the outgoing scene out the opposite one.
type MoveTransition struct {
	transitionBase
	direction MoveDirection
}

// NewMoveTransition creates a MoveTransition lasting d.
func NewMoveTransition(d time.Duration, dir MoveDirection, easing ease.TweenFunc) *MoveTransition {
	return &MoveTransition{transitionBase: newTransitionBase(d, easing), direction: dir}
}

// offset returns how far the scenes travel over the whole transition.
func (t *MoveTransition) offset() (float64, float64) {
	switch t.direction {
	case MoveUp:
		return 0, -t.viewport.Y
	case MoveDown:
		return 0, t.viewport.Y
	case MoveLeft:
		return -t.viewport.X, 0
	default:
		return t.viewport.X, 0
	}
}

func (t *MoveTransition) Render(r Renderer) {
	dx, dy := t.offset()
	p := t.progress
	renderScene(t.prev, r, Translate(dx*p, dy*p), 1)
	renderScene(t.next, r, Translate(dx*(p-1), dy*(p-1)), 1)
}

// --- Rotation ---

// RotationTransition spins the outgoing scene away while shrinking it, then
// spins the incoming scene in while growing it.
type RotationTransition struct {
	transitionBase
}

// NewRotationTransition creates a RotationTransition lasting d.
func NewRotationTransition(d time.Duration, easing ease.TweenFunc) *RotationTransition {
	return &RotationTransition{transitionBase: newTransitionBase(d, easing)}
}

func (t *RotationTransition) Render(r Renderer) {
	if t.progress < 0.5 {
		k := 1 - t.progress*2
		renderScene(t.prev, r, aroundCenter(t.viewport, k, (1-k)*2*math.Pi), 1)
		return
	}
	k := t.progress*2 - 1
	renderScene(t.next, r, aroundCenter(t.viewport, k, (k-1)*2*math.Pi), 1)
}

// --- Box ---

// BoxTransition collapses the outgoing scene into the viewport center, then
// expands the incoming scene out of it.
type BoxTransition struct {
	transitionBase
}

// NewBoxTransition creates a BoxTransition lasting d.
func NewBoxTransition(d time.Duration, easing ease.TweenFunc) *BoxTransition {
	return &BoxTransition{transitionBase: newTransitionBase(d, easing)}
}

func (t *BoxTransition) Render(r Renderer) {
	if t.progress < 0.5 {
		renderScene(t.prev, r, aroundCenter(t.viewport, 1-t.progress*2, 0), 1)
		return
	}
	renderScene(t.next, r, aroundCenter(t.viewport, t.progress*2-1, 0), 1)
}
