package birch

import "go.uber.org/zap"

// Nodes are reference counted. A parent holds one reference to each child;
// application code that keeps a node across frames while it is detached
// holds its own with Retain. When the last reference is released the node is
// queued on its scene's release pool and disposed when the pool is flushed at
// the end of the frame, unless it was re-attached in the meantime.
//
// A node that was never part of a scene has no pool: releasing it to zero
// leaves it to the garbage collector.

// Retain adds a reference to n.
func (n *Node) Retain() {
	if n == nil {
		warn("Retain: nil node")
		return
	}
	if debugCheckDisposed(n, "Retain") {
		return
	}
	n.refs++
}

// Release drops a reference to n. Releasing more often than retaining is a
// warned no-op.
func (n *Node) Release() {
	if n == nil {
		warn("Release: nil node")
		return
	}
	n.release(n.Scene().releasePool())
}

func (n *Node) release(pool *releasePool) {
	if n.refs <= 0 {
		warn("Release: reference count already zero", nodeField(n))
		return
	}
	n.refs--
	if n.refs == 0 && pool != nil {
		pool.add(n)
	}
}

// RefCount returns the number of references held on n.
func (n *Node) RefCount() int {
	if n == nil {
		return 0
	}
	return n.refs
}

// Dispose removes n from its parent and destroys it and every descendant not
// retained elsewhere. If n's scene is in the middle of a pass, destruction is
// deferred until the scene's release pool is flushed; n is detached at once
// either way. Calling Dispose twice is a no-op.
func (n *Node) Dispose() {
	if n == nil || n.disposed || n.pendingDispose {
		return
	}
	s := n.Scene()
	if n.Parent != nil {
		n.RemoveFromParent()
	} else if s != nil {
		n.detach(s)
	}
	if s != nil && s.passDepth > 0 {
		n.pendingDispose = true
		s.pool.add(n)
		return
	}
	n.dispose()
}

// dispose destroys n. Children lose the parent's reference and are destroyed
// too unless something else still holds them.
func (n *Node) dispose() {
	n.disposed = true
	n.pendingDispose = false
	n.ID = 0
	n.detach(nil)
	for _, child := range n.children {
		if child == nil {
			continue
		}
		child.Parent = nil
		child.refs--
		if child.refs <= 0 {
			child.dispose()
		}
	}
	n.children = nil
	n.Parent = nil
	n.scene = nil
	n.Drawable = nil
	n.HitShape = nil
	n.components = nil
	n.OnUpdate = nil
	n.UserData = nil
	n.actions = nil
	n.timers = nil
	n.events = nil
	if n.collider != nil {
		n.collider.node = nil
		n.collider = nil
	}
	n.refs = 0
}

// IsDisposed reports whether n has been disposed or is waiting to be.
func (n *Node) IsDisposed() bool {
	if n == nil {
		return false
	}
	return n.disposed || n.pendingDispose
}

// --- Release pool ---

// releasePool collects nodes whose last reference was dropped, or whose
// disposal was requested mid-pass, and destroys them in flush.
type releasePool struct {
	nodes []*Node
}

func (p *releasePool) add(n *Node) {
	if n.queued {
		return
	}
	n.queued = true
	p.nodes = append(p.nodes, n)
}

// Len returns the number of queued nodes.
func (p *releasePool) Len() int {
	return len(p.nodes)
}

// flush disposes every queued node that is still unowned and returns how many
// were destroyed. Nodes re-attached or retained since being queued survive.
func (p *releasePool) flush() int {
	count := 0
	for len(p.nodes) > 0 {
		batch := p.nodes
		p.nodes = nil
		for _, n := range batch {
			n.queued = false
			if n.disposed {
				continue
			}
			if n.pendingDispose || (n.refs <= 0 && n.Parent == nil && n.scene == nil) {
				n.dispose()
				count++
			}
		}
	}
	if count > 0 {
		logger.Debug("release pool flushed", zap.Int("disposed", count))
	}
	return count
}
