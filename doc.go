// Package birch is the scene-graph core of a 2D game engine built on
// [Ebitengine].
//
// Birch owns everything between the window and the game: a node tree with
// lazily computed transforms, per-node action and timer schedulers, event
// listeners with synthesized pointer gestures, a collision manager, and a
// [Director] that switches between scenes with transitions. Drawing goes
// through the small [Renderer] interface; [EbitenRenderer] is the default.
//
// # Quick start
//
//	d := birch.NewDirector()
//	scene := birch.NewScene("title")
//	scene.AddChild(birch.NewLabel("hello", "Hello"))
//	d.EnterStage(scene, nil)
//
//	cfg := birch.DefaultRunConfig()
//	cfg.Title = "My Game"
//	if err := birch.Run(d, cfg); err != nil {
//		log.Fatal(err)
//	}
//
// Run creates the window, feeds Ebitengine input into the Director and calls
// [Director.Update] and [Director.Render] every tick. Games that own their
// loop can wrap a Director in [NewGame] or call Update and Render directly.
//
// # Scene graph
//
// Every element is a [Node]. Children inherit their parent's transform and
// alpha and are kept sorted by ZIndex, then insertion order. A node joins a
// scene by being added under [Scene.Root]:
//
//	ship := birch.NewRect("ship", 32, 16, birch.Color{R: 1, G: 0.8, B: 0.2, A: 1})
//	ship.X, ship.Y = 100, 50
//	scene.AddChild(ship)
//
// World transforms are recomputed only when read after a change.
//
// # Actions and timers
//
// Actions animate a node over time and compose with [NewSequence],
// [NewSpawn] and [NewRepeat]. Tweens are driven by [gween]:
//
//	ship.RunAction(birch.NewSequence(
//		birch.MoveTo(time.Second, 300, 50, ease.OutQuad),
//		birch.FadeOut(500*time.Millisecond, nil),
//	))
//
// Timers fire a callback at a fixed interval and catch up when a frame is
// longer than the interval:
//
//	ship.AddTimer("blink", 250*time.Millisecond, 0, func(t *birch.Timer) {
//		ship.Visible = !ship.Visible
//	})
//
// Both stop when their node leaves the tree.
//
// # Events
//
// Raw input reaches nodes topmost first through their [EventDispatcher].
// Interactable nodes also receive synthesized hover, click and drag events:
//
//	ship.Interactable = true
//	ship.On(birch.EventClick, func(e *birch.Event) { fire() })
//
// # Camera
//
// A scene with a [Camera] renders through its view transform, and pointer
// events are converted to scene coordinates before hit testing:
//
//	cam := birch.NewCamera(birch.Rect{Width: 640, Height: 480})
//	cam.Follow(ship, 0, 0, 0.1)
//	scene.SetCamera(cam)
//
// # Lifetime
//
// A parent retains its children. Removing a child releases it; a node whose
// count drops to zero is disposed when the frame ends, so callbacks running
// in the same frame still see it intact. Call [Node.Retain] to keep a
// detached node for later reuse.
//
// # Debugging
//
// Misuse such as adding a node twice is logged through [zap] and ignored.
// [SetDebugMode] turns those warnings into panics and logs per-frame timing.
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
// [zap]: https://github.com/uber-go/zap
package birch
