package birch

import (
	"slices"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

type drawCall struct {
	name  string
	world Transform
	alpha float64
}

// recordingRenderer records Draw calls instead of drawing.
type recordingRenderer struct {
	calls []drawCall
}

func (r *recordingRenderer) Draw(n *Node, world Transform, alpha float64) {
	r.calls = append(r.calls, drawCall{n.Name, world, alpha})
}

func (r *recordingRenderer) names() []string {
	out := make([]string, len(r.calls))
	for i, c := range r.calls {
		out[i] = c.name
	}
	return out
}

func (r *recordingRenderer) find(name string) (drawCall, bool) {
	for _, c := range r.calls {
		if c.name == name {
			return c, true
		}
	}
	return drawCall{}, false
}

func TestRenderOrder(t *testing.T) {
	s := NewScene("s")
	bg := NewNode("bg")
	ui := NewNode("ui")
	button := NewNode("button")
	hud := NewNode("hud")
	s.Root().AddChildZ(ui, 10)
	s.Root().AddChildZ(bg, 0)
	ui.AddChild(button)
	s.Root().AddChildZ(hud, 10)

	r := &recordingRenderer{}
	s.Render(r)
	want := []string{"root", "bg", "ui", "button", "hud"}
	if got := r.names(); !slices.Equal(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestRenderSkipsInvisibleSubtree(t *testing.T) {
	s := NewScene("s")
	hidden := NewNode("hidden")
	hidden.Visible = false
	hidden.AddChild(NewNode("inner"))
	s.AddChild(hidden)
	s.AddChild(NewNode("shown"))

	r := &recordingRenderer{}
	s.Render(r)
	if got := r.names(); !slices.Equal(got, []string{"root", "shown"}) {
		t.Errorf("drawn = %v", got)
	}
}

func TestRenderFinalTransformAndAlpha(t *testing.T) {
	s := NewScene("s")
	parent := NewNode("parent")
	parent.SetPosition(10, 20)
	parent.SetAlpha(0.5)
	child := NewNode("child")
	child.SetPosition(1, 2)
	parent.AddChild(child)
	s.AddChild(parent)

	r := &recordingRenderer{}
	s.RenderWith(r, Translate(100, 0), 0.5)

	c, ok := r.find("child")
	if !ok {
		t.Fatal("child not drawn")
	}
	assertMatrix(t, "child world", c.world, Translate(111, 22))
	assertNear(t, "child alpha", c.alpha, 0.25)
}

func TestRenderDisposedSceneNoop(t *testing.T) {
	s := NewScene("s")
	s.Dispose()
	r := &recordingRenderer{}
	s.Render(r)
	if len(r.calls) != 0 {
		t.Errorf("disposed scene drew %d nodes", len(r.calls))
	}
}

func TestTransformGeoM(t *testing.T) {
	m := Transform{2, 0.5, -1, 3, 7, 9}
	g := m.GeoM()
	x, y := g.Apply(1, 1)
	wx, wy := m.Apply(1, 1)
	assertNear(t, "x", x, wx)
	assertNear(t, "y", y, wy)
}

func TestDrawableBounds(t *testing.T) {
	rect := NewRect("r", 30, 10, ColorWhite)
	if b := rect.Drawable.Bounds(); b.Width != 30 || b.Height != 10 {
		t.Errorf("rect bounds = %+v", b)
	}
	if rect.Width != 30 || rect.Height != 10 {
		t.Errorf("rect size = (%v, %v)", rect.Width, rect.Height)
	}

	label := NewLabel("l", "hello")
	if b := label.Drawable.Bounds(); b.Width <= 0 || b.Height <= 0 {
		t.Errorf("label bounds = %+v", b)
	}

	empty := NewSprite("s", nil)
	if b := empty.Drawable.Bounds(); b != (Rect{}) {
		t.Errorf("nil-image sprite bounds = %+v", b)
	}
}

func TestSpriteSizedToImage(t *testing.T) {
	img := ebiten.NewImage(16, 8)
	n := NewSprite("s", img)
	if n.Width != 16 || n.Height != 8 {
		t.Errorf("size = (%v, %v), want (16, 8)", n.Width, n.Height)
	}
}

func TestEbitenRendererDraw(t *testing.T) {
	target := ebiten.NewImage(64, 64)
	r := NewEbitenRenderer(target)
	s := NewScene("s")
	s.AddChild(NewRect("rect", 10, 10, ColorWhite))
	s.AddChild(NewSprite("sprite", ebiten.NewImage(4, 4)))
	s.AddChild(NewSprite("empty", nil))
	s.AddChild(NewLabel("label", "hi"))
	s.Render(r)
	if r.pixel == nil {
		t.Error("solid rect should allocate the fill pixel")
	}

	r.SetTarget(nil)
	s.Render(r)
}
