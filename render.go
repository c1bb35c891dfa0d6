package birch

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// Renderer draws nodes. Render passes call Draw once per visible node in
// traversal order (parents before children, lower ZIndex first) with the
// node's final transform and opacity.
type Renderer interface {
	Draw(n *Node, world Transform, alpha float64)
}

// Render draws the scene's tree with r.
func (s *Scene) Render(r Renderer) {
	s.RenderWith(r, IdentityTransform, 1)
}

// RenderWith draws the scene's tree with every transform premultiplied by
// view and every opacity multiplied by alpha. Transitions use it to
// composite two scenes. The scene's camera, if any, applies inside view.
func (s *Scene) RenderWith(r Renderer, view Transform, alpha float64) {
	if s.disposed || r == nil {
		return
	}
	s.passDepth++
	updateWorldTransform(s.root, IdentityTransform, 1, 0)
	var cull *Rect
	if c := s.camera; c != nil {
		view = view.Multiply(c.ViewTransform())
		if c.CullEnabled {
			visible := c.VisibleBounds()
			cull = &visible
		}
	}
	renderNode(s.root, r, view, alpha, cull)
	s.passDepth--
}

// renderNode draws n and its subtree. With cull set, nodes whose drawable
// lies outside it are not drawn; their children still are.
func renderNode(n *Node, r Renderer, view Transform, alpha float64, cull *Rect) {
	if !n.Visible {
		return
	}
	if cull == nil || !culled(n, *cull) {
		r.Draw(n, view.Multiply(n.worldTransform), alpha*n.worldAlpha)
	}
	n.forEachChild(func(c *Node) bool {
		renderNode(c, r, view, alpha, cull)
		return true
	})
}

// GeoM converts t to an ebiten.GeoM.
func (t Transform) GeoM() ebiten.GeoM {
	var g ebiten.GeoM
	g.SetElement(0, 0, t[0])
	g.SetElement(0, 1, t[2])
	g.SetElement(0, 2, t[4])
	g.SetElement(1, 0, t[1])
	g.SetElement(1, 1, t[3])
	g.SetElement(1, 2, t[5])
	return g
}

// EbitenRenderer draws Sprite, SolidRect and Label drawables onto an
// ebiten.Image. Other drawables, and sprites without an image, are skipped.
type EbitenRenderer struct {
	target *ebiten.Image
	pixel  *ebiten.Image
	op     ebiten.DrawImageOptions
}

// NewEbitenRenderer creates a renderer drawing onto target.
func NewEbitenRenderer(target *ebiten.Image) *EbitenRenderer {
	return &EbitenRenderer{target: target}
}

// SetTarget changes the image drawn onto.
func (r *EbitenRenderer) SetTarget(target *ebiten.Image) {
	r.target = target
}

// Draw implements Renderer.
func (r *EbitenRenderer) Draw(n *Node, world Transform, alpha float64) {
	if r.target == nil || n.Drawable == nil || alpha <= 0 {
		return
	}
	switch d := n.Drawable.(type) {
	case *Sprite:
		if d.Image == nil {
			return
		}
		r.drawImage(d.Image, world, d.Color, alpha)
	case *SolidRect:
		if d.Width <= 0 || d.Height <= 0 {
			return
		}
		if r.pixel == nil {
			r.pixel = ebiten.NewImage(1, 1)
			r.pixel.Fill(ColorWhite.toRGBA())
		}
		r.drawImage(r.pixel, world.Multiply(Transform{d.Width, 0, 0, d.Height, 0, 0}), d.Color, alpha)
	case *Label:
		x, y := world.Translation()
		ebitenutil.DebugPrintAt(r.target, d.Text, int(x), int(y))
	}
}

func (r *EbitenRenderer) drawImage(img *ebiten.Image, world Transform, c Color, alpha float64) {
	r.op = ebiten.DrawImageOptions{}
	r.op.GeoM = world.GeoM()
	a := c.A * alpha
	r.op.ColorScale.Scale(float32(c.R*a), float32(c.G*a), float32(c.B*a), float32(a))
	r.target.DrawImage(img, &r.op)
}
