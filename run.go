package birch

import (
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// ebitenButtons maps MouseButton values to Ebitengine buttons.
var ebitenButtons = [mouseButtonCount]ebiten.MouseButton{
	MouseButtonLeft:   ebiten.MouseButtonLeft,
	MouseButtonRight:  ebiten.MouseButtonRight,
	MouseButtonMiddle: ebiten.MouseButtonMiddle,
}

// Game adapts a Director to ebiten.Game. Each Update polls Ebitengine's
// input into the Director's Input and advances one frame of 1/TPS seconds.
type Game struct {
	director *Director
	renderer *EbitenRenderer
	cfg      RunConfig
	fps      *Node
	keys     []ebiten.Key
}

// NewGame creates a Game for d. Zero fields of cfg take their defaults.
func NewGame(d *Director, cfg RunConfig) *Game {
	cfg = withDefaults(cfg)
	g := &Game{
		director: d,
		renderer: NewEbitenRenderer(nil),
		cfg:      cfg,
	}
	if cfg.ShowFPS {
		g.fps = NewFPSWidget()
	}
	d.SetViewport(float64(cfg.Width), float64(cfg.Height))
	d.SetDragDeadZone(cfg.DragDeadZone)
	return g
}

// withDefaults fills zero fields of cfg from DefaultRunConfig.
func withDefaults(cfg RunConfig) RunConfig {
	def := DefaultRunConfig()
	if cfg.Title == "" {
		cfg.Title = def.Title
	}
	if cfg.Width == 0 {
		cfg.Width = def.Width
	}
	if cfg.Height == 0 {
		cfg.Height = def.Height
	}
	if cfg.TPS == 0 {
		cfg.TPS = def.TPS
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}
	if cfg.ClearColor == (Color{}) {
		cfg.ClearColor = def.ClearColor
	}
	if cfg.DragDeadZone == 0 {
		cfg.DragDeadZone = def.DragDeadZone
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = def.SampleRate
	}
	return cfg
}

// frameDelta returns the fixed update step for tps ticks per second.
func frameDelta(tps int) time.Duration {
	if tps <= 0 {
		tps = DefaultRunConfig().TPS
	}
	return time.Second / time.Duration(tps)
}

// Update implements ebiten.Game.
func (g *Game) Update() error {
	g.pollInput()
	dt := frameDelta(ebiten.TPS())
	g.director.Update(dt)
	if g.fps != nil {
		g.fps.update(dt)
	}
	return nil
}

func (g *Game) pollInput() {
	in := g.director.Input()

	g.keys = inpututil.AppendJustPressedKeys(g.keys[:0])
	for _, k := range g.keys {
		in.KeyDown(k)
	}
	g.keys = inpututil.AppendJustReleasedKeys(g.keys[:0])
	for _, k := range g.keys {
		in.KeyUp(k)
	}

	cx, cy := ebiten.CursorPosition()
	x, y := float64(cx), float64(cy)
	in.MouseMove(x, y)
	for b, eb := range ebitenButtons {
		if inpututil.IsMouseButtonJustPressed(eb) {
			in.MouseButton(MouseButton(b), true, x, y)
		}
		if inpututil.IsMouseButtonJustReleased(eb) {
			in.MouseButton(MouseButton(b), false, x, y)
		}
	}
	if _, wy := ebiten.Wheel(); wy != 0 {
		in.MouseWheel(wy)
	}
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	clearColor := g.cfg.ClearColor
	if s := g.director.CurrentStage(); s != nil && s.ClearColor != (Color{}) {
		clearColor = s.ClearColor
	}
	screen.Fill(clearColor.toRGBA())
	g.renderer.SetTarget(screen)
	g.director.Render(g.renderer)
	if g.fps != nil {
		updateWorldTransform(g.fps, IdentityTransform, 1, 0)
		renderNode(g.fps, g.renderer, IdentityTransform, 1, nil)
	}
}

// Layout implements ebiten.Game.
func (g *Game) Layout(_, _ int) (int, int) {
	return g.cfg.Width, g.cfg.Height
}

// Run opens a window and drives d until the window is closed. It applies
// cfg's log level and debug mode, then blocks in ebiten.RunGame.
func Run(d *Director, cfg RunConfig) error {
	cfg = withDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := SetLogLevel(cfg.LogLevel); err != nil {
		return err
	}
	SetDebugMode(cfg.Debug)

	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetTPS(cfg.TPS)

	if err := ebiten.RunGame(NewGame(d, cfg)); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	return nil
}
