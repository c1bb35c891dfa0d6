package birch

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EntityStore is the interface for optional ECS integration.
// When set on a Scene, interaction and collision events on nodes with a
// non-zero EntityID are forwarded to the ECS.
type EntityStore interface {
	EmitEvent(event InteractionEvent)
}

// InteractionEvent carries interaction data for the ECS bridge.
type InteractionEvent struct {
	Type      EventType
	EntityID  uint32
	GlobalX   float64
	GlobalY   float64
	LocalX    float64
	LocalY    float64
	Button    MouseButton
	Modifiers KeyModifiers
	// Drag fields (valid for EventDragStart, EventDrag, EventDragEnd)
	StartX float64
	StartY float64
	DeltaX float64
	DeltaY float64
	// Collision fields (valid for EventCollision)
	OtherEntityID uint32
	Relation      Relation
}

// Scene is the root of one screen's node tree. It owns the tree's collision
// manager, release pool and pointer state. A Scene can be driven on its own
// with Update and Render, or handed to a Director.
type Scene struct {
	id   uuid.UUID
	Name string

	root      *Node
	director  *Director
	collision *CollisionManager
	pool      releasePool
	store     EntityStore
	camera    *Camera

	pointer      pointerState
	dragDeadZone float64

	// passDepth is non-zero while the scene is updating, dispatching or
	// rendering; disposal requested meanwhile is deferred.
	passDepth int
	disposed  bool

	// ClearColor fills the screen before the scene is drawn by Game.
	ClearColor Color

	// OnEnter is called when a Director makes the scene current.
	OnEnter func()
	// OnExit is called when a Director switches away from the scene.
	OnExit func()
}

// NewScene creates a new scene with a pre-created root node.
func NewScene(name string) *Scene {
	s := &Scene{
		id:           uuid.New(),
		Name:         name,
		collision:    NewCollisionManager(),
		dragDeadZone: defaultDragDeadZone,
	}
	root := NewNode("root")
	root.scene = s
	root.Retain()
	s.root = root
	s.collision.emit = s.emitCollision
	return s
}

// ID returns the scene's unique identifier.
func (s *Scene) ID() uuid.UUID {
	return s.id
}

// Root returns the scene's root node.
func (s *Scene) Root() *Node {
	return s.root
}

// Collision returns the scene's collision manager.
func (s *Scene) Collision() *CollisionManager {
	return s.collision
}

// Director returns the director that last entered the scene, or nil.
func (s *Scene) Director() *Director {
	return s.director
}

// IsDisposed reports whether the scene has been disposed.
func (s *Scene) IsDisposed() bool {
	return s.disposed
}

// AddChild adds n to the scene's root.
func (s *Scene) AddChild(n *Node) {
	s.root.AddChild(n)
}

// RemoveChild removes n from the scene's root.
func (s *Scene) RemoveChild(n *Node) {
	s.root.RemoveChild(n)
}

// AddTimer registers a timer scoped to the scene. It lives until the scene
// is disposed or the timer is removed.
func (s *Scene) AddTimer(name string, interval time.Duration, maxRuns int, fn func(t *Timer)) *Timer {
	return s.root.AddTimer(name, interval, maxRuns, fn)
}

// Timers returns the scene-scoped timer scheduler.
func (s *Scene) Timers() *TimerScheduler {
	return s.root.Timers()
}

// RunAction schedules a on the scene's root node.
func (s *Scene) RunAction(a Action) Action {
	return s.root.RunAction(a)
}

// On registers a scene-level listener. Raw input events reach it after every
// node in the tree; synthesized pointer events after the target node.
func (s *Scene) On(typ EventType, fn func(e *Event)) *Listener {
	return s.root.On(typ, fn)
}

// SetEntityStore sets the optional ECS bridge.
func (s *Scene) SetEntityStore(store EntityStore) {
	s.store = store
}

// NodeCount returns the number of nodes in the scene's tree.
func (s *Scene) NodeCount() int {
	return countNodes(s.root)
}

// --- Frame ---

// Update runs one frame without a Director: the update traversal, world
// transform refresh, collision pass and camera update, then the release
// pool flush.
func (s *Scene) Update(dt time.Duration) {
	s.update(dt)
	s.flush()
}

func (s *Scene) update(dt time.Duration) {
	if s.disposed {
		return
	}
	s.passDepth++
	s.root.update(dt)
	updateWorldTransform(s.root, IdentityTransform, 1, 0)
	s.collision.Update()
	if s.camera != nil {
		s.camera.update(dt)
	}
	s.passDepth--
}

// DispatchEvent routes e through the scene: pointer synthesis first, then
// the tree from the topmost node down. With a camera set, pointer
// coordinates are converted to scene space on a copy of e. Returns false if
// e was consumed.
func (s *Scene) DispatchEvent(e *Event) bool {
	if s.disposed || e == nil {
		return true
	}
	s.passDepth++
	defer func() { s.passDepth-- }()
	if e.isPointer() {
		if s.camera != nil {
			ev := *e
			ev.X, ev.Y = s.camera.ScreenToWorld(e.X, e.Y)
			e = &ev
		}
		s.processPointer(e)
	}
	return s.root.dispatchEvent(e)
}

// flush disposes everything queued on the release pool.
func (s *Scene) flush() int {
	return s.pool.flush()
}

// releasePool returns the scene's pool, or nil for a nil scene.
func (s *Scene) releasePool() *releasePool {
	if s == nil {
		return nil
	}
	return &s.pool
}

// Dispose destroys the scene's tree and unregisters its colliders and
// listeners. The scene cannot be used afterwards.
func (s *Scene) Dispose() {
	if s.disposed {
		return
	}
	if s.passDepth > 0 {
		warn("Scene.Dispose during a pass", zap.String("scene", s.Name))
		return
	}
	logger.Debug("scene disposed", zap.String("scene", s.Name), zap.Stringer("id", s.id))
	s.disposed = true
	s.collision.reset()
	s.pointer = pointerState{}
	root := s.root
	root.scene = nil
	root.detach(nil)
	root.dispose()
	s.pool.flush()
}

// --- Tree membership ---

// adoptNode registers the colliders of a subtree that joined the scene.
func (s *Scene) adoptNode(n *Node) {
	if n.collider != nil {
		s.collision.register(n.collider)
	}
	for _, c := range n.children {
		if c != nil {
			s.adoptNode(c)
		}
	}
}

// forgetNode drops every scene-level reference to n.
func (s *Scene) forgetNode(n *Node) {
	if n.collider != nil {
		s.collision.unregister(n.collider)
	}
	s.collision.removeNodeListeners(n)
	s.forgetPointer(n)
}

// --- ECS bridge ---

func (s *Scene) emitInteraction(typ EventType, n *Node, e *Event) {
	if s.store == nil || n.EntityID == 0 {
		return
	}
	s.store.EmitEvent(InteractionEvent{
		Type:      typ,
		EntityID:  n.EntityID,
		GlobalX:   e.X,
		GlobalY:   e.Y,
		LocalX:    e.LocalX,
		LocalY:    e.LocalY,
		Button:    e.Button,
		Modifiers: e.Modifiers,
		StartX:    e.StartX,
		StartY:    e.StartY,
		DeltaX:    e.DeltaX,
		DeltaY:    e.DeltaY,
	})
}

func (s *Scene) emitCollision(c Collision) {
	if s.store == nil {
		return
	}
	emit := func(self, other *Node, rel Relation) {
		if self.EntityID == 0 {
			return
		}
		x, y := self.WorldTransform().Translation()
		s.store.EmitEvent(InteractionEvent{
			Type:          EventCollision,
			EntityID:      self.EntityID,
			OtherEntityID: other.EntityID,
			GlobalX:       x,
			GlobalY:       y,
			Relation:      rel,
		})
	}
	emit(c.Active, c.Passive, c.Relation)
	emit(c.Passive, c.Active, c.Relation.Inverse())
}
