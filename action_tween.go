package birch

import (
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Tween interpolates one or more node properties over a fixed duration. The
// progress curve comes from a gween easing function; a nil easing is linear.
type Tween struct {
	actionCore
	duration time.Duration
	easing   ease.TweenFunc
	prop     tweenProp
	tween    *gween.Tween
	elapsed  time.Duration
}

// tweenProp maps tween progress in [0, 1] onto node properties.
type tweenProp interface {
	setup(n *Node)
	apply(n *Node, p float64)
	clone() tweenProp
	reversed() tweenProp
}

func newTween(d time.Duration, easing ease.TweenFunc, prop tweenProp) *Tween {
	if easing == nil {
		easing = ease.Linear
	}
	return &Tween{duration: d, easing: easing, prop: prop}
}

func (t *Tween) Duration() time.Duration { return t.duration }

func (t *Tween) Clone() Action {
	return &Tween{actionCore: t.cloneCore(), duration: t.duration, easing: t.easing, prop: t.prop.clone()}
}

func (t *Tween) Reverse() Action {
	return &Tween{actionCore: t.cloneCore(), duration: t.duration, easing: t.easing, prop: t.prop.reversed()}
}

func (t *Tween) begin(target *Node) {
	t.elapsed = 0
	t.tween = gween.New(0, 1, float32(t.duration.Seconds()), t.easing)
	t.prop.setup(target)
}

func (t *Tween) advance(dt time.Duration) (time.Duration, bool) {
	t.elapsed += dt
	if t.elapsed >= t.duration {
		t.prop.apply(t.target, 1)
		return t.elapsed - t.duration, true
	}
	p, _ := t.tween.Update(float32(dt.Seconds()))
	t.prop.apply(t.target, float64(p))
	return 0, false
}

func lerp(a, b, p float64) float64 {
	return a + (b-a)*p
}

// --- Constructors ---

// MoveTo moves the target to (x, y).
func MoveTo(d time.Duration, x, y float64, easing ease.TweenFunc) *Tween {
	return newTween(d, easing, &moveTo{toX: x, toY: y})
}

// MoveBy moves the target by (dx, dy) relative to wherever it is. Several
// MoveBy actions on the same target compose.
func MoveBy(d time.Duration, dx, dy float64, easing ease.TweenFunc) *Tween {
	return newTween(d, easing, &moveBy{dx: dx, dy: dy})
}

// ScaleTo scales the target to (sx, sy).
func ScaleTo(d time.Duration, sx, sy float64, easing ease.TweenFunc) *Tween {
	return newTween(d, easing, &scaleTo{toX: sx, toY: sy})
}

// ScaleBy multiplies the target's scale by (fx, fy).
func ScaleBy(d time.Duration, fx, fy float64, easing ease.TweenFunc) *Tween {
	return newTween(d, easing, &scaleBy{fx: fx, fy: fy})
}

// RotateTo rotates the target to angle radians.
func RotateTo(d time.Duration, angle float64, easing ease.TweenFunc) *Tween {
	return newTween(d, easing, &rotateTo{to: angle})
}

// RotateBy rotates the target by delta radians.
func RotateBy(d time.Duration, delta float64, easing ease.TweenFunc) *Tween {
	return newTween(d, easing, &rotateBy{delta: delta})
}

// SkewTo skews the target to (sx, sy) radians.
func SkewTo(d time.Duration, sx, sy float64, easing ease.TweenFunc) *Tween {
	return newTween(d, easing, &skewTo{toX: sx, toY: sy})
}

// FadeTo fades the target's alpha to a.
func FadeTo(d time.Duration, a float64, easing ease.TweenFunc) *Tween {
	return newTween(d, easing, &fadeTo{to: a, back: a})
}

// FadeIn fades the target's alpha to 1. Its reverse is FadeOut.
func FadeIn(d time.Duration, easing ease.TweenFunc) *Tween {
	return newTween(d, easing, &fadeTo{to: 1, back: 0})
}

// FadeOut fades the target's alpha to 0. Its reverse is FadeIn.
func FadeOut(d time.Duration, easing ease.TweenFunc) *Tween {
	return newTween(d, easing, &fadeTo{to: 0, back: 1})
}

// NewTweenFunc calls fn each tick with the eased progress in [0, 1].
func NewTweenFunc(d time.Duration, easing ease.TweenFunc, fn func(n *Node, p float64)) *Tween {
	return newTween(d, easing, &tweenFunc{fn: fn})
}

// --- Properties ---

// Absolute tweens have no meaningful reverse; reversed returns a copy.

type moveTo struct{ toX, toY, fromX, fromY float64 }

func (m *moveTo) setup(n *Node)         { m.fromX, m.fromY = n.X, n.Y }
func (m *moveTo) clone() tweenProp      { return &moveTo{toX: m.toX, toY: m.toY} }
func (m *moveTo) reversed() tweenProp   { return m.clone() }
func (m *moveTo) apply(n *Node, p float64) {
	n.SetPosition(lerp(m.fromX, m.toX, p), lerp(m.fromY, m.toY, p))
}

type moveBy struct{ dx, dy, prev float64 }

func (m *moveBy) setup(*Node)           { m.prev = 0 }
func (m *moveBy) clone() tweenProp      { return &moveBy{dx: m.dx, dy: m.dy} }
func (m *moveBy) reversed() tweenProp   { return &moveBy{dx: -m.dx, dy: -m.dy} }
func (m *moveBy) apply(n *Node, p float64) {
	step := p - m.prev
	m.prev = p
	n.SetPosition(n.X+m.dx*step, n.Y+m.dy*step)
}

type scaleTo struct{ toX, toY, fromX, fromY float64 }

func (s *scaleTo) setup(n *Node)       { s.fromX, s.fromY = n.ScaleX, n.ScaleY }
func (s *scaleTo) clone() tweenProp    { return &scaleTo{toX: s.toX, toY: s.toY} }
func (s *scaleTo) reversed() tweenProp { return s.clone() }
func (s *scaleTo) apply(n *Node, p float64) {
	n.SetScale(lerp(s.fromX, s.toX, p), lerp(s.fromY, s.toY, p))
}

type scaleBy struct{ fx, fy, fromX, fromY float64 }

func (s *scaleBy) setup(n *Node)    { s.fromX, s.fromY = n.ScaleX, n.ScaleY }
func (s *scaleBy) clone() tweenProp { return &scaleBy{fx: s.fx, fy: s.fy} }
func (s *scaleBy) reversed() tweenProp {
	return &scaleBy{fx: inverseFactor(s.fx), fy: inverseFactor(s.fy)}
}
func (s *scaleBy) apply(n *Node, p float64) {
	n.SetScale(lerp(s.fromX, s.fromX*s.fx, p), lerp(s.fromY, s.fromY*s.fy, p))
}

func inverseFactor(f float64) float64 {
	if f == 0 {
		return 0
	}
	return 1 / f
}

type rotateTo struct{ to, from float64 }

func (r *rotateTo) setup(n *Node)       { r.from = n.Rotation }
func (r *rotateTo) clone() tweenProp    { return &rotateTo{to: r.to} }
func (r *rotateTo) reversed() tweenProp { return r.clone() }
func (r *rotateTo) apply(n *Node, p float64) {
	n.SetRotation(lerp(r.from, r.to, p))
}

type rotateBy struct{ delta, prev float64 }

func (r *rotateBy) setup(*Node)         { r.prev = 0 }
func (r *rotateBy) clone() tweenProp    { return &rotateBy{delta: r.delta} }
func (r *rotateBy) reversed() tweenProp { return &rotateBy{delta: -r.delta} }
func (r *rotateBy) apply(n *Node, p float64) {
	step := p - r.prev
	r.prev = p
	n.SetRotation(n.Rotation + r.delta*step)
}

type skewTo struct{ toX, toY, fromX, fromY float64 }

func (s *skewTo) setup(n *Node)       { s.fromX, s.fromY = n.SkewX, n.SkewY }
func (s *skewTo) clone() tweenProp    { return &skewTo{toX: s.toX, toY: s.toY} }
func (s *skewTo) reversed() tweenProp { return s.clone() }
func (s *skewTo) apply(n *Node, p float64) {
	n.SetSkew(lerp(s.fromX, s.toX, p), lerp(s.fromY, s.toY, p))
}

// fadeTo reverses to a fade towards back.
type fadeTo struct{ to, back, from float64 }

func (f *fadeTo) setup(n *Node)       { f.from = n.Alpha }
func (f *fadeTo) clone() tweenProp    { return &fadeTo{to: f.to, back: f.back} }
func (f *fadeTo) reversed() tweenProp { return &fadeTo{to: f.back, back: f.to} }
func (f *fadeTo) apply(n *Node, p float64) {
	n.SetAlpha(lerp(f.from, f.to, p))
}

type tweenFunc struct {
	fn      func(n *Node, p float64)
	reverse bool
}

func (f *tweenFunc) setup(*Node)         {}
func (f *tweenFunc) clone() tweenProp    { return &tweenFunc{fn: f.fn, reverse: f.reverse} }
func (f *tweenFunc) reversed() tweenProp { return &tweenFunc{fn: f.fn, reverse: !f.reverse} }
func (f *tweenFunc) apply(n *Node, p float64) {
	if f.fn == nil {
		return
	}
	if f.reverse {
		p = 1 - p
	}
	f.fn(n, p)
}
