package birch

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// Drawable is the render capability of a node. A Renderer decides how to draw
// each concrete Drawable it knows; unknown ones are skipped.
type Drawable interface {
	// Bounds returns the drawable's extent in node-local coordinates.
	Bounds() Rect
}

// Component is a per-frame behaviour attached to a node.
type Component interface {
	Update(n *Node, dt time.Duration)
}

// ComponentFunc adapts a function to the Component interface.
type ComponentFunc func(n *Node, dt time.Duration)

// Update calls f(n, dt).
func (f ComponentFunc) Update(n *Node, dt time.Duration) { f(n, dt) }

// Sprite draws an image tinted by Color. A nil Image draws nothing.
type Sprite struct {
	Image *ebiten.Image
	Color Color
}

// Bounds returns the image rectangle, or an empty Rect without an image.
func (s *Sprite) Bounds() Rect {
	if s.Image == nil {
		return Rect{}
	}
	b := s.Image.Bounds()
	return Rect{Width: float64(b.Dx()), Height: float64(b.Dy())}
}

// SolidRect draws a filled rectangle.
type SolidRect struct {
	Width, Height float64
	Color         Color
}

// Bounds returns the rectangle.
func (r *SolidRect) Bounds() Rect {
	return Rect{Width: r.Width, Height: r.Height}
}

// Label draws debug text with the built-in bitmap font.
type Label struct {
	Text string
}

// Debug font cell size.
const (
	labelCharWidth  = 6
	labelLineHeight = 16
)

// Bounds returns an estimate of the text extent.
func (l *Label) Bounds() Rect {
	lines, width, cur := 1, 0, 0
	for _, r := range l.Text {
		if r == '\n' {
			lines++
			cur = 0
			continue
		}
		cur++
		width = max(width, cur)
	}
	return Rect{Width: float64(width * labelCharWidth), Height: float64(lines * labelLineHeight)}
}

// NewSprite creates a node that draws img. The node is sized to the image.
func NewSprite(name string, img *ebiten.Image) *Node {
	n := NewNode(name)
	s := &Sprite{Image: img, Color: ColorWhite}
	n.Drawable = s
	b := s.Bounds()
	n.Width, n.Height = b.Width, b.Height
	return n
}

// NewRect creates a node that draws a w x h rectangle of color c.
func NewRect(name string, w, h float64, c Color) *Node {
	n := NewNode(name)
	n.Drawable = &SolidRect{Width: w, Height: h, Color: c}
	n.Width, n.Height = w, h
	return n
}

// NewLabel creates a node that draws text.
func NewLabel(name, text string) *Node {
	n := NewNode(name)
	l := &Label{Text: text}
	n.Drawable = l
	b := l.Bounds()
	n.Width, n.Height = b.Width, b.Height
	return n
}
