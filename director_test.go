package birch

import (
	"slices"
	"testing"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// lifecycleLog records OnEnter and OnExit calls of several scenes.
type lifecycleLog []string

func (l *lifecycleLog) track(s *Scene) *Scene {
	s.OnEnter = func() { *l = append(*l, "enter "+s.Name) }
	s.OnExit = func() { *l = append(*l, "exit "+s.Name) }
	return s
}

func TestEnterStageImmediate(t *testing.T) {
	var log lifecycleLog
	d := NewDirector()
	a := log.track(NewScene("a"))
	b := log.track(NewScene("b"))

	d.EnterStage(a, nil)
	if d.CurrentStage() != a {
		t.Fatal("a should be current")
	}
	d.EnterStage(b, nil)
	if d.CurrentStage() != b || d.NextStage() != nil {
		t.Error("b should be current with nothing pending")
	}
	if !a.IsDisposed() {
		t.Error("replaced scene should be disposed")
	}
	want := lifecycleLog{"enter a", "exit a", "enter b"}
	if !slices.Equal(log, want) {
		t.Errorf("lifecycle = %v, want %v", log, want)
	}
	if b.Director() != d {
		t.Error("scene should know its director")
	}
}

func TestEnterStageFadeTransition(t *testing.T) {
	d := NewDirector()
	a := NewScene("a")
	b := NewScene("b")
	d.EnterStage(a, nil)

	tr := NewFadeTransition(500*time.Millisecond, nil)
	d.EnterStage(b, tr)
	if !d.IsTransitioning() || d.CurrentStage() != a || d.NextStage() != b {
		t.Fatal("transition should be running from a to b")
	}

	d.Update(500 * time.Millisecond)
	if d.CurrentStage() != b {
		t.Error("b should be current after the transition")
	}
	if !tr.IsDone() {
		t.Error("transition should report done")
	}
	if d.IsTransitioning() || d.Transition() != nil {
		t.Error("director should be idle after the transition")
	}
}

func TestTransitionUpdatesBothScenes(t *testing.T) {
	d := NewDirector()
	a := NewScene("a")
	b := NewScene("b")
	d.EnterStage(a, nil)

	var aTicks, bTicks int
	a.Root().OnUpdate = func(time.Duration) { aTicks++ }
	b.Root().OnUpdate = func(time.Duration) { bTicks++ }

	d.EnterStage(b, NewCrossFadeTransition(time.Second, nil))
	d.Update(ms(100))
	d.Update(ms(100))
	if aTicks != 2 || bTicks != 2 {
		t.Errorf("ticks a=%d b=%d, want 2 each", aTicks, bTicks)
	}
}

func TestEnterStageDuringUpdateDeferred(t *testing.T) {
	d := NewDirector()
	a := NewScene("a")
	b := NewScene("b")
	d.EnterStage(a, nil)

	var sawCurrent *Scene
	a.Root().OnUpdate = func(time.Duration) {
		if d.NextStage() == nil && d.CurrentStage() == a {
			d.EnterStage(b, nil)
			sawCurrent = d.CurrentStage()
		}
	}
	d.Update(ms(16))

	if sawCurrent != a {
		t.Error("switch requested mid-frame should not take effect during the frame")
	}
	if d.CurrentStage() != b {
		t.Error("switch should complete at the end of the frame")
	}
	if !a.IsDisposed() {
		t.Error("outgoing scene should be disposed")
	}
}

func TestPushPopStage(t *testing.T) {
	var log lifecycleLog
	d := NewDirector()
	menu := log.track(NewScene("menu"))
	game := log.track(NewScene("game"))

	d.EnterStage(menu, nil)
	d.PushStage(game, nil)
	if d.CurrentStage() != game || d.StackLen() != 1 {
		t.Fatalf("current = %v, stack = %d", d.CurrentStage().Name, d.StackLen())
	}
	if menu.IsDisposed() {
		t.Fatal("pushed-over scene must be kept")
	}

	d.PopStage(nil)
	if d.CurrentStage() != menu || d.StackLen() != 0 {
		t.Error("PopStage should restore menu")
	}
	if !game.IsDisposed() {
		t.Error("popped-off scene should be disposed")
	}
	want := lifecycleLog{"enter menu", "exit menu", "enter game", "exit game", "enter menu"}
	if !slices.Equal(log, want) {
		t.Errorf("lifecycle = %v, want %v", log, want)
	}
}

func TestPopStageEmpty(t *testing.T) {
	logs := observeWarnings(t)
	d := NewDirector()
	a := NewScene("a")
	d.EnterStage(a, nil)
	d.PopStage(nil)
	assertWarned(t, logs, "stack is empty")
	if d.CurrentStage() != a {
		t.Error("PopStage on an empty stack should be a no-op")
	}
}

func TestPopStageEmptyPanicsInDebug(t *testing.T) {
	withDebug(t)
	d := NewDirector()
	expectPanic(t, "stack is empty", func() { d.PopStage(nil) })
}

func TestPopStageRejectedKeepsStack(t *testing.T) {
	logs := observeWarnings(t)
	d := NewDirector()
	menu := NewScene("menu")
	game := NewScene("game")
	d.EnterStage(menu, nil)
	d.PushStage(game, nil)
	d.EnterStage(menu, nil)

	d.PopStage(nil)
	assertWarned(t, logs, "already current")
	if d.StackLen() != 1 || d.CurrentStage() != menu {
		t.Errorf("stack = %d, current = %s", d.StackLen(), d.CurrentStage().Name)
	}

	d = NewDirector()
	other := NewScene("other")
	pause := NewScene("pause")
	d.EnterStage(other, nil)
	d.PushStage(pause, nil)
	other.Dispose()
	d.PopStage(nil)
	assertWarned(t, logs, "scene is disposed")
	if d.StackLen() != 1 || d.CurrentStage() != pause {
		t.Errorf("stack = %d, current = %s", d.StackLen(), d.CurrentStage().Name)
	}
}

func TestStageSwitchRejected(t *testing.T) {
	logs := observeWarnings(t)
	d := NewDirector()
	a := NewScene("a")
	b := NewScene("b")
	c := NewScene("c")
	d.EnterStage(a, nil)

	d.EnterStage(nil, nil)
	assertWarned(t, logs, "nil scene")

	d.EnterStage(a, nil)
	assertWarned(t, logs, "already current")

	d.EnterStage(b, NewFadeTransition(time.Second, nil))
	d.EnterStage(c, nil)
	assertWarned(t, logs, "already in progress")
	if d.NextStage() != b {
		t.Error("in-progress switch should be kept")
	}

	gone := NewScene("gone")
	gone.Dispose()
	d.Update(time.Second)
	d.EnterStage(gone, nil)
	assertWarned(t, logs, "disposed")
}

func TestClearStack(t *testing.T) {
	d := NewDirector()
	a := NewScene("a")
	b := NewScene("b")
	c := NewScene("c")
	d.EnterStage(a, nil)
	d.PushStage(b, nil)
	d.PushStage(c, nil)
	d.ClearStack()
	if d.StackLen() != 0 || !a.IsDisposed() || !b.IsDisposed() {
		t.Error("ClearStack should dispose every pushed scene")
	}
	if d.CurrentStage() != c || c.IsDisposed() {
		t.Error("current scene should be untouched")
	}
}

func TestDirectorPause(t *testing.T) {
	d := NewDirector()
	s := NewScene("s")
	d.EnterStage(s, nil)
	ticks := 0
	s.Root().OnUpdate = func(time.Duration) { ticks++ }
	keys := 0
	s.On(EventKeyDown, func(*Event) { keys++ })

	d.Pause()
	d.Input().KeyDown(ebiten.KeyA)
	d.Update(ms(16))
	if ticks != 0 {
		t.Error("paused director should not update the scene")
	}
	if keys != 1 {
		t.Error("paused director should still dispatch input")
	}
	d.Resume()
	d.Update(ms(16))
	if ticks != 1 || d.IsPaused() {
		t.Errorf("ticks = %d after resume", ticks)
	}
}

func TestDirectorEventsFirst(t *testing.T) {
	d := NewDirector()
	s := NewScene("s")
	d.EnterStage(s, nil)
	sceneSaw := false
	s.On(EventKeyDown, func(*Event) { sceneSaw = true })
	d.Events().AddListener(NewListener("modal", EventKeyDown, func(*Event) {}).SetSwallow(true))

	d.Input().KeyDown(ebiten.KeyEscape)
	d.Update(ms(16))
	if sceneSaw {
		t.Error("swallowed director event reached the scene")
	}
}

func TestNoInputDuringTransition(t *testing.T) {
	d := NewDirector()
	a := NewScene("a")
	b := NewScene("b")
	d.EnterStage(a, nil)
	saw := 0
	a.On(EventKeyDown, func(*Event) { saw++ })
	b.On(EventKeyDown, func(*Event) { saw++ })

	d.EnterStage(b, NewFadeTransition(time.Second, nil))
	d.Input().KeyDown(ebiten.KeyA)
	d.Update(ms(16))
	if saw != 0 {
		t.Error("scenes should not receive input during a transition")
	}
}

func TestDirectorActionsFollowActiveScene(t *testing.T) {
	d := NewDirector()
	a := NewScene("a")
	b := NewScene("b")
	d.EnterStage(a, nil)

	onA := NewNode("onA")
	a.AddChild(onA)
	onB := NewNode("onB")
	b.AddChild(onB)
	loose := NewNode("loose")

	moveA := d.RunAction(MoveBy(time.Second, 100, 0, nil), onA)
	moveB := d.RunAction(MoveBy(time.Second, 100, 0, nil), onB)
	moveLoose := d.RunAction(MoveBy(time.Second, 100, 0, nil), loose)

	d.Update(ms(100))
	if onA.X == 0 {
		t.Error("action on the current scene should advance")
	}
	if onB.X != 0 || moveB.IsDone() {
		t.Error("action on an inactive scene should idle")
	}
	if !moveLoose.IsDone() {
		t.Error("action on a node outside any scene should end")
	}
	if moveA.IsDone() {
		t.Error("moveA ended early")
	}
}

func TestDirectorNodeActionsRunInScene(t *testing.T) {
	d := NewDirector()
	s := NewScene("s")
	d.EnterStage(s, nil)
	n := NewNode("n")
	s.AddChild(n)
	n.RunAction(MoveTo(ms(100), 10, 0, nil))

	d.Update(ms(100))
	assertNear(t, "X", n.X, 10)
}

func TestDirectorFlushesReleasePool(t *testing.T) {
	d := NewDirector()
	s := NewScene("s")
	d.EnterStage(s, nil)
	n := NewNode("n")
	s.AddChild(n)
	n.OnUpdate = func(time.Duration) { n.RemoveFromParent() }

	d.Update(ms(16))
	if !n.disposed {
		t.Error("released node should be disposed when the frame ends")
	}
}

type fakeAudio struct{ calls []string }

func (f *fakeAudio) Play(id string, loops int) error { f.calls = append(f.calls, "play "+id); return nil }
func (f *fakeAudio) Pause(id string)                 { f.calls = append(f.calls, "pause "+id) }
func (f *fakeAudio) Resume(id string)                { f.calls = append(f.calls, "resume "+id) }
func (f *fakeAudio) Stop(id string)                  { f.calls = append(f.calls, "stop "+id) }
func (f *fakeAudio) SetVolume(float64)               { f.calls = append(f.calls, "volume") }

func TestDirectorAudio(t *testing.T) {
	d := NewDirector()
	if d.Audio() != nil {
		t.Error("Audio should default to nil")
	}
	a := &fakeAudio{}
	d.SetAudio(a)
	s := NewScene("s")
	s.OnEnter = func() { _ = s.Director().Audio().Play("theme", 0) }
	d.EnterStage(s, nil)
	if !slices.Equal(a.calls, []string{"play theme"}) {
		t.Errorf("calls = %v", a.calls)
	}
}

func TestDirectorFrameAndViewport(t *testing.T) {
	d := NewDirector()
	d.SetViewport(320, 240)
	if d.Viewport() != (Vec2{320, 240}) {
		t.Errorf("Viewport = %v", d.Viewport())
	}
	d.Update(ms(16))
	d.Update(ms(16))
	if d.Frame() != 2 {
		t.Errorf("Frame = %d, want 2", d.Frame())
	}
}

func TestDirectorDragDeadZoneApplied(t *testing.T) {
	d := NewDirector()
	d.SetDragDeadZone(12)
	s := NewScene("s")
	d.EnterStage(s, nil)
	if s.dragDeadZone != 12 {
		t.Errorf("dragDeadZone = %v, want 12", s.dragDeadZone)
	}
}

func TestDirectorRender(t *testing.T) {
	d := NewDirector()
	a := NewScene("a")
	a.AddChild(NewNode("a-child"))
	d.EnterStage(a, nil)

	r := &recordingRenderer{}
	d.Render(r)
	if got := r.names(); !slices.Equal(got, []string{"root", "a-child"}) {
		t.Errorf("drawn = %v", got)
	}
}
