package birch

import (
	"reflect"
	"sort"
	"time"

	"go.uber.org/zap"
)

// HitShape is used for custom hit testing regions in node-local coordinates.
type HitShape interface {
	Contains(x, y float64) bool
}

// --- ID counter ---

// nodeIDCounter is a plain counter; birch runs on one goroutine.
var nodeIDCounter uint32

func nextNodeID() uint32 {
	nodeIDCounter++
	return nodeIDCounter
}

// insertSeq breaks ZIndex ties: a higher value was inserted later.
var insertSeq uint64

func nextInsertSeq() uint64 {
	insertSeq++
	return insertSeq
}

// --- Node ---

// Node is the fundamental scene graph element. A single flat struct is used
// for every kind of node; capabilities (drawing, hit testing, behaviours) are
// composed through the Drawable, HitShape and Component fields.
type Node struct {
	// Identity
	ID   uint32
	Name string

	// Hierarchy
	Parent   *Node
	children []*Node

	// Transform (local)
	X, Y         float64
	ScaleX       float64
	ScaleY       float64
	Rotation     float64
	SkewX, SkewY float64
	PivotX       float64
	PivotY       float64

	// Size of the node's content box, used for hit testing when no HitShape
	// is set.
	Width, Height float64

	// Computed (unexported, refreshed lazily or during the frame pass)
	worldTransform Transform
	worldAlpha     float64
	transformDirty bool
	worldVersion   uint64 // bumped on every recompute
	parentVersion  uint64 // parent's worldVersion at last recompute
	matrixVersion  uint64 // bumped only when worldTransform changes

	// Visibility & interaction
	Alpha        float64
	Visible      bool
	Interactable bool

	// Ordering
	ZIndex int
	order  uint64

	// Metadata
	UserData any
	EntityID uint32

	// Capabilities
	Drawable   Drawable
	HitShape   HitShape
	components []Component

	// OnUpdate is called once per frame after the node's actions, timers and
	// components, before its children are updated.
	OnUpdate func(dt time.Duration)

	// Behaviours (created on first use)
	actions  *ActionScheduler
	timers   *TimerScheduler
	events   *EventDispatcher
	collider *Collider

	// Lifetime
	refs           int
	disposed       bool
	pendingDispose bool
	queued         bool

	// Deferred child mutation
	iterating    int
	needsCompact bool
	needsSort    bool

	// scene is set on scene roots only.
	scene *Scene
}

// nodeDefaults sets the common default field values shared by all constructors.
func nodeDefaults(n *Node) {
	n.ID = nextNodeID()
	n.ScaleX = 1
	n.ScaleY = 1
	n.Alpha = 1
	n.worldAlpha = 1
	n.worldTransform = IdentityTransform
	n.Visible = true
	n.transformDirty = true
}

// NewNode creates a node with no visual representation.
func NewNode(name string) *Node {
	n := &Node{Name: name}
	nodeDefaults(n)
	return n
}

// --- Tree manipulation ---

// AddChild inserts child into this node's children, ordered by the child's
// ZIndex with ties broken by insertion order. The parent takes a reference to
// the child.
//
// A nil child, a child that already has a parent, a child that is an ancestor
// of this node, a disposed node or a scene root is rejected with a warning.
func (n *Node) AddChild(child *Node) {
	if debugCheckNil(n, "AddChild") {
		return
	}
	if child == nil {
		warn("AddChild: nil child", nodeField(n))
		return
	}
	n.insertChild(child, child.ZIndex)
}

// AddChildZ sets child's ZIndex to z, then adds it like AddChild.
func (n *Node) AddChildZ(child *Node, z int) {
	if debugCheckNil(n, "AddChildZ") {
		return
	}
	if child == nil {
		warn("AddChildZ: nil child", nodeField(n))
		return
	}
	n.insertChild(child, z)
}

func (n *Node) insertChild(child *Node, z int) {
	if debugCheckDisposed(n, "AddChild (parent)") || debugCheckDisposed(child, "AddChild (child)") {
		return
	}
	if child.Parent != nil {
		warn("AddChild: child already has a parent", nodeField(child), zap.String("parent", child.Parent.Name))
		return
	}
	if child.scene != nil {
		warn("AddChild: cannot add a scene root as a child", nodeField(child))
		return
	}
	if isAncestor(child, n) {
		warn("AddChild: adding child would create a cycle", nodeField(child))
		return
	}

	child.ZIndex = z
	child.order = nextInsertSeq()
	child.Parent = n
	child.Retain()
	n.placeChild(child)
	markSubtreeDirty(child)

	if s := n.Scene(); s != nil {
		s.adoptNode(child)
	}
	if globalDebug {
		debugCheckTreeDepth(child)
		debugCheckChildCount(n)
	}
}

// placeChild puts child after every sibling with a ZIndex <= its own. During
// a traversal the child is appended and the list re-sorted when it ends.
func (n *Node) placeChild(child *Node) {
	if n.iterating > 0 {
		n.children = append(n.children, child)
		n.needsSort = true
		return
	}
	i := sort.Search(len(n.children), func(i int) bool {
		return n.children[i].ZIndex > child.ZIndex
	})
	n.children = append(n.children, nil)
	copy(n.children[i+1:], n.children[i:])
	n.children[i] = child
}

// RemoveChild detaches child from this node. Actions, timers, listeners and
// the collider registration of every node in the child's subtree are
// cancelled, and the parent's reference to the child is released.
// Removing a node that is not a child of this node is a warned no-op.
func (n *Node) RemoveChild(child *Node) {
	if debugCheckNil(n, "RemoveChild") {
		return
	}
	if child == nil {
		warn("RemoveChild: nil child", nodeField(n))
		return
	}
	if child.Parent != n {
		warn("RemoveChild: node is not a child of this node", nodeField(child), nodeField(n))
		return
	}
	s := n.Scene()
	n.unlinkChild(child)
	child.Parent = nil
	markSubtreeDirty(child)
	child.detach(s)
	child.release(s.releasePool())
}

// unlinkChild takes child out of the child list. During a traversal the slot
// is nil-ed and the list compacted when the traversal ends.
func (n *Node) unlinkChild(child *Node) {
	for i, c := range n.children {
		if c != child {
			continue
		}
		if n.iterating > 0 {
			n.children[i] = nil
			n.needsCompact = true
			return
		}
		copy(n.children[i:], n.children[i+1:])
		n.children[len(n.children)-1] = nil
		n.children = n.children[:len(n.children)-1]
		return
	}
}

// RemoveFromParent detaches this node from its parent.
// No-op if this node has no parent.
func (n *Node) RemoveFromParent() {
	if n == nil || n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}

// RemoveChildren detaches all children from this node.
func (n *Node) RemoveChildren() {
	if debugCheckNil(n, "RemoveChildren") {
		return
	}
	for _, child := range n.Children() {
		n.RemoveChild(child)
	}
}

// Children returns a copy of the child list in traversal order.
func (n *Node) Children() []*Node {
	if n == nil {
		return nil
	}
	out := make([]*Node, 0, len(n.children))
	for _, c := range n.children {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	if n == nil {
		return 0
	}
	if !n.needsCompact {
		return len(n.children)
	}
	count := 0
	for _, c := range n.children {
		if c != nil {
			count++
		}
	}
	return count
}

// ChildAt returns the child at the given index in traversal order, or nil
// (with a warning) if the index is out of range.
func (n *Node) ChildAt(index int) *Node {
	if debugCheckNil(n, "ChildAt") {
		return nil
	}
	children := n.children
	if n.needsCompact {
		children = n.Children()
	}
	if index < 0 || index >= len(children) {
		warn("ChildAt: index out of range", nodeField(n), zap.Int("index", index))
		return nil
	}
	return children[index]
}

// FindChild returns the first direct child with the given name, or nil.
func (n *Node) FindChild(name string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.children {
		if c != nil && c.Name == name {
			return c
		}
	}
	return nil
}

// FindChildren returns every node in the subtree (excluding n) whose name
// matches, in depth-first order.
func (n *Node) FindChildren(name string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	var walk func(*Node)
	walk = func(p *Node) {
		for _, c := range p.children {
			if c == nil {
				continue
			}
			if c.Name == name {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(n)
	return out
}

// SetZIndex sets the node's ZIndex. If the node has a parent it is moved to
// the end of its new z bucket, as if it had just been added.
func (n *Node) SetZIndex(z int) {
	if debugCheckNil(n, "SetZIndex") {
		return
	}
	p := n.Parent
	if p == nil {
		n.ZIndex = z
		return
	}
	if n.ZIndex == z {
		return
	}
	p.unlinkChild(n)
	n.ZIndex = z
	n.order = nextInsertSeq()
	p.placeChild(n)
}

// Scene returns the scene whose tree contains this node, or nil.
func (n *Node) Scene() *Scene {
	if n == nil {
		return nil
	}
	root := n
	for root.Parent != nil {
		root = root.Parent
	}
	return root.scene
}

// Size returns the node's Width and Height.
func (n *Node) Size() (float64, float64) {
	if n == nil {
		return 0, 0
	}
	return n.Width, n.Height
}

// SetSize sets the node's Width and Height.
func (n *Node) SetSize(w, h float64) {
	if debugCheckNil(n, "SetSize") {
		return
	}
	n.Width = w
	n.Height = h
}

// AddComponent appends a behaviour updated once per frame with the node.
func (n *Node) AddComponent(c Component) {
	if debugCheckNil(n, "AddComponent") {
		return
	}
	if c == nil {
		warn("AddComponent: nil component", nodeField(n))
		return
	}
	n.components = append(n.components, c)
}

// RemoveComponent removes a previously added component. Components of an
// uncomparable type, such as ComponentFunc, cannot be removed individually.
func (n *Node) RemoveComponent(c Component) {
	if debugCheckNil(n, "RemoveComponent") {
		return
	}
	if c == nil || !reflect.TypeOf(c).Comparable() {
		warn("RemoveComponent: component is not comparable", nodeField(n))
		return
	}
	for i, existing := range n.components {
		if !reflect.TypeOf(existing).Comparable() {
			continue
		}
		if existing == c {
			n.components = append(n.components[:i:i], n.components[i+1:]...)
			return
		}
	}
}

// --- Traversal ---

// forEachChild calls fn for each child in order. Children added during the
// walk are not visited; removed ones are skipped. fn returning false stops
// the walk.
func (n *Node) forEachChild(fn func(*Node) bool) {
	n.iterating++
	count := len(n.children)
	for i := 0; i < count && i < len(n.children); i++ {
		c := n.children[i]
		if c == nil {
			continue
		}
		if !fn(c) {
			break
		}
	}
	n.endIteration()
}

// forEachChildReverse is forEachChild from the topmost child down.
func (n *Node) forEachChildReverse(fn func(*Node) bool) {
	n.iterating++
	for i := len(n.children) - 1; i >= 0; i-- {
		if i >= len(n.children) {
			continue
		}
		c := n.children[i]
		if c == nil {
			continue
		}
		if !fn(c) {
			break
		}
	}
	n.endIteration()
}

func (n *Node) endIteration() {
	n.iterating--
	if n.iterating == 0 {
		n.settleChildren()
	}
}

// settleChildren applies removals and re-sorts deferred during a traversal.
func (n *Node) settleChildren() {
	if n.needsCompact {
		kept := n.children[:0]
		for _, c := range n.children {
			if c != nil {
				kept = append(kept, c)
			}
		}
		for i := len(kept); i < len(n.children); i++ {
			n.children[i] = nil
		}
		n.children = kept
		n.needsCompact = false
	}
	if n.needsSort {
		sort.SliceStable(n.children, func(i, j int) bool {
			a, b := n.children[i], n.children[j]
			if a.ZIndex != b.ZIndex {
				return a.ZIndex < b.ZIndex
			}
			return a.order < b.order
		})
		n.needsSort = false
	}
}

// update runs the node's own behaviours, then its children's. A node removed
// or disposed by one of its own behaviours stops updating for this frame.
func (n *Node) update(dt time.Duration) {
	parent := n.Parent
	gone := func() bool {
		return n.disposed || n.pendingDispose || n.Parent != parent
	}

	if n.actions != nil {
		n.actions.Tick(dt)
		if gone() {
			return
		}
	}
	if n.timers != nil {
		n.timers.Tick(dt)
		if gone() {
			return
		}
	}
	for i := 0; i < len(n.components); i++ {
		n.components[i].Update(n, dt)
		if gone() {
			return
		}
	}
	if n.OnUpdate != nil {
		n.OnUpdate(dt)
		if gone() {
			return
		}
	}
	n.forEachChild(func(c *Node) bool {
		c.update(dt)
		return !gone()
	})
}

// --- Helpers ---

// isAncestor reports whether candidate is an ancestor of node (or node itself).
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// markSubtreeDirty sets transformDirty on node and all its descendants.
func markSubtreeDirty(node *Node) {
	node.transformDirty = true
	for _, child := range node.children {
		if child != nil {
			markSubtreeDirty(child)
		}
	}
}

// detach cancels everything bound to the subtree rooted at n: actions are
// stopped, timers and listeners removed, and the scene forgets the nodes'
// colliders and pointer state.
func (n *Node) detach(s *Scene) {
	if n.actions != nil {
		n.actions.StopAll()
	}
	if n.timers != nil {
		n.timers.RemoveAll()
	}
	if n.events != nil {
		n.events.RemoveAllListeners()
	}
	if s != nil {
		s.forgetNode(n)
	}
	for _, c := range n.children {
		if c != nil {
			c.detach(s)
		}
	}
}
