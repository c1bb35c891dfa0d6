package birch

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestSetDebugMode(t *testing.T) {
	if DebugMode() {
		t.Fatal("debug mode should start off")
	}
	d := NewDirector()
	d.SetDebugMode(true)
	t.Cleanup(func() { SetDebugMode(false) })
	if !DebugMode() {
		t.Error("Director.SetDebugMode should set the global flag")
	}
}

func TestDebugFrameStats(t *testing.T) {
	logs := observeWarnings(t)
	withDebug(t)

	d := NewDirector()
	s := NewScene("s")
	s.AddChild(NewNode("a"))
	s.AddChild(NewNode("b"))
	d.EnterStage(s, nil)
	d.Input().KeyDown(0)
	d.Update(ms(16))

	frames := logs.FilterMessage("frame").FilterLevelExact(zapcore.DebugLevel).All()
	if len(frames) != 1 {
		t.Fatalf("frame entries = %d, want 1", len(frames))
	}
	fields := frames[0].ContextMap()
	if fields["frame"] != uint64(1) {
		t.Errorf("frame = %v, want 1", fields["frame"])
	}
	if fields["nodes"] != int64(3) {
		t.Errorf("nodes = %v, want 3", fields["nodes"])
	}
	if fields["events"] != int64(1) {
		t.Errorf("events = %v, want 1", fields["events"])
	}
}

func TestNoFrameStatsWithoutDebug(t *testing.T) {
	logs := observeWarnings(t)
	d := NewDirector()
	d.EnterStage(NewScene("s"), nil)
	d.Update(ms(16))
	if n := logs.FilterMessage("frame").Len(); n != 0 {
		t.Errorf("frame entries = %d, want 0", n)
	}
}

func TestDebugTreeDepthWarning(t *testing.T) {
	logs := observeWarnings(t)
	withDebug(t)

	parent := NewNode("n0")
	for i := 1; i <= debugMaxTreeDepth; i++ {
		child := NewNode("n")
		parent.AddChild(child)
		parent = child
	}
	assertWarned(t, logs, "tree depth exceeds threshold")
}

func TestDebugChildCountWarning(t *testing.T) {
	logs := observeWarnings(t)
	withDebug(t)

	parent := NewNode("crowd")
	for range debugMaxChildCount + 1 {
		parent.AddChild(NewNode("c"))
	}
	assertWarned(t, logs, "child count exceeds threshold")
}

func TestDebugChecksOffByDefault(t *testing.T) {
	logs := observeWarnings(t)
	parent := NewNode("crowd")
	for range debugMaxChildCount + 1 {
		parent.AddChild(NewNode("c"))
	}
	if logs.Len() != 0 {
		t.Errorf("unexpected logs: %v", logs.All())
	}
}

func TestCountNodes(t *testing.T) {
	if countNodes(nil) != 0 {
		t.Error("countNodes(nil) should be 0")
	}
	root := NewNode("root")
	a := NewNode("a")
	root.AddChild(a)
	a.AddChild(NewNode("a1"))
	root.AddChild(NewNode("b"))
	if got := countNodes(root); got != 4 {
		t.Errorf("countNodes = %d, want 4", got)
	}
}
