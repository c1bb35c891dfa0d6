package birch

import (
	"math"
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// scrollAnim holds active scroll-to tweens for camera X and Y.
type scrollAnim struct {
	tweenX *gween.Tween
	tweenY *gween.Tween
	doneX  bool
	doneY  bool
}

// cameraKey is the set of inputs the cached view matrix was built from.
type cameraKey struct {
	x, y, zoom, rotation float64
	viewport             Rect
}

// Camera controls the view into a scene: position, zoom, rotation, and
// viewport. A scene with a camera renders through it, and pointer events
// reaching the scene are converted from screen to scene coordinates.
type Camera struct {
	// X and Y are the scene position the camera centers on.
	X, Y float64
	// Zoom is the scale factor (1.0 = no zoom, >1 = zoom in, <1 = zoom out).
	Zoom float64
	// Rotation is the camera rotation in radians (clockwise).
	Rotation float64
	// Viewport is the screen-space rectangle the camera renders into.
	Viewport Rect

	// CullEnabled skips drawing nodes whose drawable lies entirely outside
	// the visible area. Their children are still visited.
	CullEnabled bool

	followTarget  *Node
	followOffsetX float64
	followOffsetY float64
	followLerp    float64

	// BoundsEnabled clamps the camera position so the visible area stays
	// within Bounds.
	BoundsEnabled bool
	// Bounds is the scene rectangle the camera is clamped to when
	// BoundsEnabled is true.
	Bounds Rect

	view  Transform
	inv   Transform
	built cameraKey
	valid bool

	scroll *scrollAnim
}

// NewCamera creates a camera with zoom 1 and culling enabled, centered on
// the scene origin.
func NewCamera(viewport Rect) *Camera {
	return &Camera{
		Zoom:        1.0,
		Viewport:    viewport,
		CullEnabled: true,
	}
}

// Follow makes the camera track a target node with the given offset and lerp
// factor. A lerp of 1.0 snaps immediately; lower values give smoother
// following.
func (c *Camera) Follow(node *Node, offsetX, offsetY, lerp float64) {
	c.followTarget = node
	c.followOffsetX = offsetX
	c.followOffsetY = offsetY
	c.followLerp = lerp
}

// Unfollow stops tracking the current target node.
func (c *Camera) Unfollow() {
	c.followTarget = nil
}

// Following returns the tracked node, or nil.
func (c *Camera) Following() *Node {
	return c.followTarget
}

// ScrollTo animates the camera to (x, y) over d.
func (c *Camera) ScrollTo(x, y float64, d time.Duration, easing ease.TweenFunc) {
	if easing == nil {
		easing = ease.Linear
	}
	secs := float32(d.Seconds())
	c.scroll = &scrollAnim{
		tweenX: gween.New(float32(c.X), float32(x), secs, easing),
		tweenY: gween.New(float32(c.Y), float32(y), secs, easing),
	}
}

// ScrollToTile scrolls to the center of the given tile in a grid of
// tileW by tileH cells.
func (c *Camera) ScrollToTile(tileX, tileY int, tileW, tileH float64, d time.Duration, easing ease.TweenFunc) {
	x := float64(tileX)*tileW + tileW/2
	y := float64(tileY)*tileH + tileH/2
	c.ScrollTo(x, y, d, easing)
}

// IsScrolling reports whether a ScrollTo animation is running.
func (c *Camera) IsScrolling() bool {
	return c.scroll != nil
}

// SetBounds enables bounds clamping.
func (c *Camera) SetBounds(bounds Rect) {
	c.BoundsEnabled = true
	c.Bounds = bounds
}

// ClearBounds disables bounds clamping.
func (c *Camera) ClearBounds() {
	c.BoundsEnabled = false
}

// ClampToBounds immediately clamps the camera position. Call it after
// changing X or Y outside the frame (e.g. in a drag listener) so no frame
// shows anything outside Bounds.
func (c *Camera) ClampToBounds() {
	if c.BoundsEnabled {
		c.clampToBounds()
	}
}

// update advances follow, scroll, and bounds clamping. Called from the
// owning scene's update after world transforms are refreshed.
func (c *Camera) update(dt time.Duration) {
	if t := c.followTarget; t != nil {
		if t.IsDisposed() {
			c.followTarget = nil
		} else {
			x, y := t.WorldTransform().Translation()
			c.X += (x + c.followOffsetX - c.X) * c.followLerp
			c.Y += (y + c.followOffsetY - c.Y) * c.followLerp
		}
	}

	if s := c.scroll; s != nil {
		secs := float32(dt.Seconds())
		if !s.doneX {
			val, done := s.tweenX.Update(secs)
			c.X = float64(val)
			s.doneX = done
		}
		if !s.doneY {
			val, done := s.tweenY.Update(secs)
			c.Y = float64(val)
			s.doneY = done
		}
		if s.doneX && s.doneY {
			c.scroll = nil
		}
	}

	if c.BoundsEnabled {
		c.clampToBounds()
	}
}

// clampToBounds restricts the camera position so the visible area stays
// within Bounds. A Bounds smaller than the visible area centers the camera.
func (c *Camera) clampToBounds() {
	halfW := c.Viewport.Width / (2 * c.Zoom)
	halfH := c.Viewport.Height / (2 * c.Zoom)

	minX := c.Bounds.X + halfW
	maxX := c.Bounds.X + c.Bounds.Width - halfW
	minY := c.Bounds.Y + halfH
	maxY := c.Bounds.Y + c.Bounds.Height - halfH

	if minX > maxX {
		c.X = c.Bounds.X + c.Bounds.Width/2
	} else {
		c.X = math.Max(minX, math.Min(c.X, maxX))
	}
	if minY > maxY {
		c.Y = c.Bounds.Y + c.Bounds.Height/2
	} else {
		c.Y = math.Max(minY, math.Min(c.Y, maxY))
	}
}

// ViewTransform returns the scene-to-screen matrix:
//
//	Translate(cx, cy) * Scale(zoom) * Rotate(-rotation) * Translate(-X, -Y)
//
// where cx, cy is the viewport center. The result is cached until one of
// its inputs changes.
func (c *Camera) ViewTransform() Transform {
	key := cameraKey{c.X, c.Y, c.Zoom, c.Rotation, c.Viewport}
	if c.valid && key == c.built {
		return c.view
	}

	cx := c.Viewport.X + c.Viewport.Width/2
	cy := c.Viewport.Y + c.Viewport.Height/2
	sin, cos := math.Sincos(-c.Rotation)
	z := c.Zoom

	c.view = Transform{
		z * cos,
		z * sin,
		-z * sin,
		z * cos,
		cx + z*(-cos*c.X+sin*c.Y),
		cy + z*(-sin*c.X-cos*c.Y),
	}
	c.inv = c.view.Invert()
	c.built = key
	c.valid = true
	return c.view
}

// WorldToScreen converts scene coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float64) (float64, float64) {
	return c.ViewTransform().Apply(wx, wy)
}

// ScreenToWorld converts screen coordinates to scene coordinates.
func (c *Camera) ScreenToWorld(sx, sy float64) (float64, float64) {
	c.ViewTransform()
	return c.inv.Apply(sx, sy)
}

// VisibleBounds returns the axis-aligned bounds of the visible area in scene
// coordinates.
func (c *Camera) VisibleBounds() Rect {
	c.ViewTransform()
	return transformedBounds(c.inv, c.Viewport)
}

// transformedBounds returns the axis-aligned bounds of r mapped through t.
func transformedBounds(t Transform, r Rect) Rect {
	x0, y0 := t.Apply(r.X, r.Y)
	x1, y1 := t.Apply(r.X+r.Width, r.Y)
	x2, y2 := t.Apply(r.X+r.Width, r.Y+r.Height)
	x3, y3 := t.Apply(r.X, r.Y+r.Height)

	minX := math.Min(math.Min(x0, x1), math.Min(x2, x3))
	minY := math.Min(math.Min(y0, y1), math.Min(y2, y3))
	maxX := math.Max(math.Max(x0, x1), math.Max(x2, x3))
	maxY := math.Max(math.Max(y0, y1), math.Max(y2, y3))

	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// culled reports whether n's drawable lies outside visible. Nodes without a
// drawable, or with an empty one, are never culled.
func culled(n *Node, visible Rect) bool {
	if n.Drawable == nil {
		return false
	}
	b := n.Drawable.Bounds()
	if b.Width == 0 && b.Height == 0 {
		return false
	}
	return !transformedBounds(n.worldTransform, b).Intersects(visible)
}

// --- Scene wiring ---

// SetCamera makes c the scene's camera. A nil camera renders the scene
// untransformed and leaves pointer coordinates as they are.
func (s *Scene) SetCamera(c *Camera) {
	s.camera = c
}

// Camera returns the scene's camera, or nil.
func (s *Scene) Camera() *Camera {
	return s.camera
}
