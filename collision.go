package birch

import (
	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
)

// Collider attaches a Shape to exactly one node and caches the shape's
// world-space outline. The cache is rebuilt when the node's world matrix
// changes. Whether the collider moved since the last collision pass is
// tracked apart from the cache, so reading the outline never hides a move.
type Collider struct {
	node    *Node
	shape   Shape
	Enabled bool

	world   []Vec2
	bounds  Rect
	version uint64

	// tested is the node's matrixVersion at the last collision pass;
	// untested forces the next pass to test the collider.
	tested   uint64
	untested bool

	manager *CollisionManager
	removed bool
	moved   bool
	checked bool
}

// NewCollider creates an enabled collider for shape.
func NewCollider(shape Shape) *Collider {
	return &Collider{shape: shape, Enabled: true}
}

// Node returns the node the collider is attached to, or nil.
func (c *Collider) Node() *Node { return c.node }

// Shape returns the collider's shape.
func (c *Collider) Shape() Shape { return c.shape }

// SetShape replaces the shape. The world outline is rebuilt on next use.
func (c *Collider) SetShape(s Shape) {
	c.shape = s
	c.world = nil
	c.untested = true
}

// stale reports whether the cached outline no longer matches the node.
func (c *Collider) stale() bool {
	if c.node == nil || c.shape == nil {
		return false
	}
	c.node.refreshWorld()
	return c.world == nil || c.version != c.node.matrixVersion
}

// pending reports whether the collider changed since the last collision
// pass. Only CollisionManager.Update clears it.
func (c *Collider) pending() bool {
	if c.node == nil || c.shape == nil {
		return false
	}
	c.node.refreshWorld()
	return c.untested || c.tested != c.node.matrixVersion
}

// refresh rebuilds the world outline from the node's world transform.
func (c *Collider) refresh() {
	wt := c.node.WorldTransform()
	local := c.shape.Points()
	c.world = c.world[:0]
	for _, p := range local {
		x, y := wt.Apply(p.X, p.Y)
		c.world = append(c.world, Vec2{x, y})
	}
	c.bounds = polygonBounds(c.world)
	c.version = c.node.matrixVersion
}

// WorldPoints returns the shape's outline in scene coordinates.
func (c *Collider) WorldPoints() []Vec2 {
	if c.stale() {
		c.refresh()
	}
	return c.world
}

// WorldBounds returns the axis-aligned bounds of the world outline.
func (c *Collider) WorldBounds() Rect {
	if c.stale() {
		c.refresh()
	}
	return c.bounds
}

// Relation classifies c against other using their current world outlines.
// It returns RelationUnknown if either collider is detached or shapeless.
func (c *Collider) Relation(other *Collider) Relation {
	if c == nil || other == nil || c.node == nil || other.node == nil ||
		c.shape == nil || other.shape == nil {
		return RelationUnknown
	}
	return polygonRelation(c.WorldPoints(), other.WorldPoints())
}

// active reports whether c may take part in collision tests.
func (c *Collider) active() bool {
	if !c.Enabled || c.removed || c.node == nil || c.shape == nil {
		return false
	}
	for p := c.node; p != nil; p = p.Parent {
		if !p.Visible {
			return false
		}
	}
	return true
}

// --- Node helpers ---

// SetShape attaches a new collider for shape to the node, replacing any
// existing one. A nil shape removes the collider.
func (n *Node) SetShape(shape Shape) *Collider {
	if debugCheckNil(n, "SetShape") {
		return nil
	}
	if shape == nil {
		n.SetCollider(nil)
		return nil
	}
	c := NewCollider(shape)
	n.SetCollider(c)
	return c
}

// SetCollider attaches c to the node, replacing any existing collider. A
// collider already attached to another node is rejected with a warning.
func (n *Node) SetCollider(c *Collider) {
	if debugCheckNil(n, "SetCollider") {
		return
	}
	if debugCheckDisposed(n, "SetCollider") {
		return
	}
	if c != nil && c.node != nil && c.node != n {
		warn("SetCollider: collider already attached to another node", nodeField(n), zap.String("owner", c.node.Name))
		return
	}
	if n.collider == c {
		return
	}
	if old := n.collider; old != nil {
		if old.manager != nil {
			old.manager.unregister(old)
		}
		old.node = nil
	}
	n.collider = c
	if c == nil {
		return
	}
	c.node = n
	c.world = nil
	c.untested = true
	if s := n.Scene(); s != nil {
		s.collision.register(c)
	}
}

// Collider returns the node's collider, or nil.
func (n *Node) Collider() *Collider {
	if n == nil {
		return nil
	}
	return n.collider
}

// --- Manager ---

// Collision describes one contact found during a collision pass. Active is
// the node whose transform changed; Relation is seen from Active.
type Collision struct {
	Active   *Node
	Passive  *Node
	Relation Relation
}

// CollisionListener receives collisions, either all of them or only those
// involving one node.
type CollisionListener struct {
	name    string
	hash    uint64
	node    *Node
	fn      func(c Collision)
	running bool
	removed bool
}

// NewCollisionListener creates a running listener. A nil node receives every
// collision; otherwise only collisions involving node.
func NewCollisionListener(name string, node *Node, fn func(c Collision)) *CollisionListener {
	return &CollisionListener{
		name:    name,
		hash:    xxhash.Sum64String(name),
		node:    node,
		fn:      fn,
		running: true,
	}
}

// Name returns the listener's name.
func (l *CollisionListener) Name() string { return l.name }

// IsRunning reports whether the listener receives collisions.
func (l *CollisionListener) IsRunning() bool { return l.running && !l.removed }

// Start resumes a stopped listener.
func (l *CollisionListener) Start() {
	if !l.removed {
		l.running = true
	}
}

// Stop pauses the listener.
func (l *CollisionListener) Stop() { l.running = false }

// Remove unregisters the listener.
func (l *CollisionListener) Remove() {
	l.running = false
	l.removed = true
}

// CollisionManager tracks the colliders of one scene's nodes and tests them
// once per frame. Pass one rebuilds the outline of every collider whose node
// moved; pass two compares each moved collider against every other active
// one. A pair in which both colliders moved is reported once.
type CollisionManager struct {
	colliders []*Collider
	listeners []*CollisionListener
	pairs     map[[2]uint64]struct{}
	moved     []*Collider
	updating  bool
	notifying int

	// emit receives every collision before the listeners do.
	emit func(c Collision)
}

// NewCollisionManager creates an empty manager.
func NewCollisionManager() *CollisionManager {
	return &CollisionManager{}
}

func (m *CollisionManager) register(c *Collider) {
	if c.manager == m && !c.removed {
		return
	}
	if c.manager != nil && c.manager != m {
		c.manager.unregister(c)
	}
	c.manager = m
	c.removed = false
	c.world = nil
	c.untested = true
	for _, existing := range m.colliders {
		if existing == c {
			return
		}
	}
	m.colliders = append(m.colliders, c)
}

func (m *CollisionManager) unregister(c *Collider) {
	if c.manager != m {
		return
	}
	c.removed = true
	c.manager = nil
	if !m.updating {
		m.compact()
	}
}

func (m *CollisionManager) compact() {
	kept := m.colliders[:0]
	for _, c := range m.colliders {
		if !c.removed {
			kept = append(kept, c)
		}
	}
	for i := len(kept); i < len(m.colliders); i++ {
		m.colliders[i] = nil
	}
	m.colliders = kept
}

// Len returns the number of registered colliders.
func (m *CollisionManager) Len() int {
	count := 0
	for _, c := range m.colliders {
		if !c.removed {
			count++
		}
	}
	return count
}

// Colliders returns the registered colliders.
func (m *CollisionManager) Colliders() []*Collider {
	out := make([]*Collider, 0, len(m.colliders))
	for _, c := range m.colliders {
		if !c.removed {
			out = append(out, c)
		}
	}
	return out
}

// SetCollisionPair restricts testing to colliders whose node names form one
// of the registered pairs. With no pairs registered every pair is tested.
func (m *CollisionManager) SetCollisionPair(nameA, nameB string) {
	if m.pairs == nil {
		m.pairs = make(map[[2]uint64]struct{})
	}
	m.pairs[pairKey(nameA, nameB)] = struct{}{}
}

// ClearCollisionPairs removes every pair restriction.
func (m *CollisionManager) ClearCollisionPairs() {
	m.pairs = nil
}

func pairKey(a, b string) [2]uint64 {
	ha, hb := xxhash.Sum64String(a), xxhash.Sum64String(b)
	if ha > hb {
		ha, hb = hb, ha
	}
	return [2]uint64{ha, hb}
}

func (m *CollisionManager) pairAllowed(a, b *Node) bool {
	if len(m.pairs) == 0 {
		return true
	}
	_, ok := m.pairs[pairKey(a.Name, b.Name)]
	return ok
}

// Update runs the two collision passes.
func (m *CollisionManager) Update() {
	if m.updating {
		return
	}
	m.updating = true

	m.moved = m.moved[:0]
	for _, c := range m.colliders {
		if c.removed {
			continue
		}
		if c.stale() {
			c.refresh()
		}
		if c.pending() {
			c.tested = c.node.matrixVersion
			c.untested = false
			c.moved = true
			m.moved = append(m.moved, c)
		}
	}

	count := len(m.colliders)
	for _, a := range m.moved {
		if a.active() {
			for i := 0; i < count; i++ {
				b := m.colliders[i]
				if b == a || (b.moved && b.checked) || !b.active() || !a.active() {
					continue
				}
				if !m.pairAllowed(a.node, b.node) {
					continue
				}
				if !a.bounds.Intersects(b.bounds) {
					continue
				}
				rel := polygonRelation(a.world, b.world)
				if rel == RelationUnknown || rel == RelationDisjoint {
					continue
				}
				m.notify(Collision{Active: a.node, Passive: b.node, Relation: rel})
			}
		}
		a.checked = true
	}

	for _, c := range m.moved {
		c.moved = false
		c.checked = false
	}
	clear(m.moved)
	m.updating = false
	m.compact()
}

func (m *CollisionManager) notify(c Collision) {
	if m.emit != nil {
		m.emit(c)
	}
	m.notifying++
	count := len(m.listeners)
	for i := 0; i < count; i++ {
		l := m.listeners[i]
		if !l.running || l.removed || l.fn == nil {
			continue
		}
		if l.node != nil && l.node != c.Active && l.node != c.Passive {
			continue
		}
		if l.node != nil && l.node == c.Passive {
			l.fn(Collision{Active: c.Passive, Passive: c.Active, Relation: c.Relation.Inverse()})
			continue
		}
		l.fn(c)
	}
	m.notifying--
	if m.notifying == 0 {
		m.compactListeners()
	}
}

// --- Listeners ---

// AddListener registers l. A nil or already registered listener is rejected
// with a warning.
func (m *CollisionManager) AddListener(l *CollisionListener) *CollisionListener {
	if l == nil {
		warn("AddListener: nil collision listener")
		return nil
	}
	for _, existing := range m.listeners {
		if existing == l {
			warn("AddListener: collision listener already added", zap.String("listener", l.name))
			return l
		}
	}
	m.listeners = append(m.listeners, l)
	return l
}

// On registers an unnamed listener for every collision.
func (m *CollisionManager) On(fn func(c Collision)) *CollisionListener {
	return m.AddListener(NewCollisionListener("", nil, fn))
}

// OnNode registers an unnamed listener for collisions involving n. The
// listener sees n as Active, with the relation adjusted to match. It is
// removed when n leaves the scene.
func (m *CollisionManager) OnNode(n *Node, fn func(c Collision)) *CollisionListener {
	if n == nil {
		warn("OnNode: nil node")
		return nil
	}
	return m.AddListener(NewCollisionListener("", n, fn))
}

func (m *CollisionManager) eachListener(name string, fn func(*CollisionListener)) {
	h := xxhash.Sum64String(name)
	for _, l := range m.listeners {
		if l.hash == h && l.name == name && !l.removed {
			fn(l)
		}
	}
}

// StartListeners starts every listener with the given name.
func (m *CollisionManager) StartListeners(name string) {
	m.eachListener(name, (*CollisionListener).Start)
}

// StopListeners stops every listener with the given name.
func (m *CollisionManager) StopListeners(name string) {
	m.eachListener(name, (*CollisionListener).Stop)
}

// RemoveListeners removes every listener with the given name.
func (m *CollisionManager) RemoveListeners(name string) {
	m.eachListener(name, (*CollisionListener).Remove)
	if m.notifying == 0 {
		m.compactListeners()
	}
}

// removeNodeListeners removes listeners scoped to n.
func (m *CollisionManager) removeNodeListeners(n *Node) {
	for _, l := range m.listeners {
		if l.node == n {
			l.Remove()
		}
	}
	if m.notifying == 0 {
		m.compactListeners()
	}
}

// ListenerLen returns the number of registered listeners.
func (m *CollisionManager) ListenerLen() int {
	count := 0
	for _, l := range m.listeners {
		if !l.removed {
			count++
		}
	}
	return count
}

func (m *CollisionManager) compactListeners() {
	kept := m.listeners[:0]
	for _, l := range m.listeners {
		if !l.removed {
			kept = append(kept, l)
		}
	}
	for i := len(kept); i < len(m.listeners); i++ {
		m.listeners[i] = nil
	}
	m.listeners = kept
}

// reset unregisters every collider and listener.
func (m *CollisionManager) reset() {
	for _, c := range m.colliders {
		c.removed = true
		c.manager = nil
	}
	for _, l := range m.listeners {
		l.Remove()
	}
	if !m.updating {
		m.compact()
	}
	if m.notifying == 0 {
		m.compactListeners()
	}
}
