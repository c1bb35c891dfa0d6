package birch

import "testing"

func TestTimerCatchUp(t *testing.T) {
	s := NewTimerScheduler()
	fired := 0
	tm := s.Add("tick", ms(100), 0, func(*Timer) { fired++ })

	s.Tick(ms(350))
	if fired != 3 {
		t.Errorf("fired = %d, want 3", fired)
	}
	if tm.Elapsed() != ms(50) {
		t.Errorf("Elapsed = %v, want 50ms", tm.Elapsed())
	}
	if tm.Runs() != 3 {
		t.Errorf("Runs = %d, want 3", tm.Runs())
	}

	s.Tick(ms(50))
	if fired != 4 {
		t.Errorf("fired = %d after remainder, want 4", fired)
	}
}

func TestTimerMaxRuns(t *testing.T) {
	s := NewTimerScheduler()
	fired := 0
	tm := s.Add("twice", ms(10), 2, func(*Timer) { fired++ })

	s.Tick(ms(100))
	if fired != 2 {
		t.Errorf("fired = %d, want 2", fired)
	}
	if tm.IsRunning() || s.Len() != 0 {
		t.Error("timer should be removed after its last run")
	}
	s.Tick(ms(100))
	if fired != 2 {
		t.Errorf("fired = %d after removal, want 2", fired)
	}
}

func TestTimerZeroIntervalFiresOncePerTick(t *testing.T) {
	s := NewTimerScheduler()
	fired := 0
	s.Add("frame", 0, 0, func(*Timer) { fired++ })
	for range 4 {
		s.Tick(ms(16))
	}
	if fired != 4 {
		t.Errorf("fired = %d, want 4", fired)
	}
}

func TestTimerStopInCallbackEndsCatchUp(t *testing.T) {
	s := NewTimerScheduler()
	fired := 0
	tm := s.Add("once", ms(100), 0, func(tm *Timer) {
		fired++
		tm.Stop()
	})

	s.Tick(ms(350))
	if fired != 1 {
		t.Errorf("fired = %d, want 1", fired)
	}
	if tm.Elapsed() != ms(250) {
		t.Errorf("Elapsed = %v, want 250ms", tm.Elapsed())
	}

	tm.Start()
	s.Tick(0)
	if fired != 2 {
		t.Errorf("fired = %d after restart, want 2", fired)
	}
}

func TestTimerRemoveSelfInCallback(t *testing.T) {
	s := NewTimerScheduler()
	var order []string
	s.Add("self", ms(10), 0, func(tm *Timer) {
		order = append(order, "self")
		tm.Remove()
	})
	s.Add("other", ms(10), 0, func(*Timer) { order = append(order, "other") })

	s.Tick(ms(10))
	s.Tick(ms(10))

	want := []string{"self", "other", "other"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
}

func TestTimerAddedDuringTickWaits(t *testing.T) {
	s := NewTimerScheduler()
	lateFired := 0
	s.Add("spawner", ms(10), 1, func(*Timer) {
		s.Add("late", ms(10), 0, func(*Timer) { lateFired++ })
	})

	s.Tick(ms(10))
	if lateFired != 0 {
		t.Error("timer added during Tick fired in the same Tick")
	}
	s.Tick(ms(10))
	if lateFired != 1 {
		t.Errorf("lateFired = %d, want 1", lateFired)
	}
}

func TestTimerByName(t *testing.T) {
	s := NewTimerScheduler()
	counts := map[string]int{}
	add := func(name string) {
		s.Add(name, ms(10), 0, func(tm *Timer) { counts[tm.Name()]++ })
	}
	add("blink")
	add("blink")
	add("spawn")

	s.StopByName("blink")
	s.Tick(ms(10))
	if counts["blink"] != 0 || counts["spawn"] != 1 {
		t.Errorf("after StopByName: %v", counts)
	}

	s.StartByName("blink")
	s.Tick(ms(10))
	if counts["blink"] != 2 {
		t.Errorf("after StartByName: %v", counts)
	}

	s.RemoveByName("blink")
	if s.Len() != 1 || s.Timer("blink") != nil {
		t.Errorf("after RemoveByName: Len = %d", s.Len())
	}
	if s.Timer("spawn") == nil {
		t.Error("Timer(spawn) should be found")
	}
}

func TestTimerStopAllStartAll(t *testing.T) {
	s := NewTimerScheduler()
	fired := 0
	s.Add("a", ms(10), 0, func(*Timer) { fired++ })
	s.Add("b", ms(10), 0, func(*Timer) { fired++ })

	s.StopAll()
	s.Tick(ms(10))
	if fired != 0 {
		t.Errorf("fired = %d while stopped", fired)
	}
	s.StartAll()
	s.Tick(ms(10))
	if fired != 2 {
		t.Errorf("fired = %d, want 2", fired)
	}
	s.RemoveAll()
	if s.Len() != 0 {
		t.Errorf("Len = %d after RemoveAll", s.Len())
	}
}

func TestAddTimerRejected(t *testing.T) {
	logs := observeWarnings(t)
	s := NewTimerScheduler()
	s.AddTimer(nil)
	assertWarned(t, logs, "nil timer")

	tm := NewTimer("t", ms(10), 0, nil)
	s.AddTimer(tm)
	s.AddTimer(tm)
	assertWarned(t, logs, "already added")
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}

	tm.Remove()
	other := NewTimerScheduler()
	other.AddTimer(tm)
	assertWarned(t, logs, "was removed")
}

func TestTimerNilCallback(t *testing.T) {
	s := NewTimerScheduler()
	tm := s.Add("nil", ms(10), 0, nil)
	s.Tick(ms(30))
	if tm.Runs() != 3 {
		t.Errorf("Runs = %d, want 3", tm.Runs())
	}
}

func TestSceneTimer(t *testing.T) {
	scene := NewScene("s")
	fired := 0
	scene.AddTimer("clock", ms(100), 0, func(*Timer) { fired++ })
	scene.Update(ms(250))
	if fired != 2 {
		t.Errorf("fired = %d, want 2", fired)
	}
	if scene.Timers().Timer("clock") == nil {
		t.Error("Timers() should expose the scene timer")
	}
}

func TestNodeTimerRemovedWithNode(t *testing.T) {
	scene := NewScene("s")
	n := NewNode("n")
	scene.AddChild(n)
	fired := 0
	n.AddTimer("t", ms(10), 0, func(*Timer) { fired++ })

	scene.Update(ms(10))
	scene.RemoveChild(n)
	scene.Update(ms(10))
	if fired != 1 {
		t.Errorf("fired = %d, want 1", fired)
	}
}
