package birch

import (
	"time"

	"go.uber.org/zap"
)

// globalDebug mirrors the most recently set debug flag so that node
// operations (which lack a Director pointer) can check it cheaply.
var globalDebug bool

// SetDebugMode enables or disables debug mode globally. When enabled,
// programmer errors panic instead of logging a warning, tree depth and child
// count warnings are emitted, and a Director logs per-frame timing stats at
// debug level.
func SetDebugMode(enabled bool) {
	globalDebug = enabled
}

// DebugMode reports whether debug mode is enabled.
func DebugMode() bool {
	return globalDebug
}

// debugStats holds per-frame timing and counts.
// Only populated when debug mode is on.
type debugStats struct {
	dispatchTime time.Duration
	updateTime   time.Duration
	flushTime    time.Duration
	eventCount   int
	nodeCount    int
	releaseCount int
}

func (d *Director) debugLog(stats debugStats) {
	logger.Debug("frame",
		zap.Uint64("frame", d.frame),
		zap.Duration("dispatch", stats.dispatchTime),
		zap.Duration("update", stats.updateTime),
		zap.Duration("flush", stats.flushTime),
		zap.Int("events", stats.eventCount),
		zap.Int("nodes", stats.nodeCount),
		zap.Int("released", stats.releaseCount),
	)
}

// debugCheckNil reports a method called on a nil node. Returns true when the
// operation must be abandoned.
func debugCheckNil(n *Node, op string) bool {
	if n == nil {
		warn(op + ": nil node")
		return true
	}
	return false
}

// debugCheckDisposed reports use of a disposed node in a tree operation.
// Returns true when the operation must be abandoned.
func debugCheckDisposed(n *Node, op string) bool {
	if n != nil && (n.disposed || n.pendingDispose) {
		warn(op+" on disposed node", zap.String("name", n.Name))
		return true
	}
	return false
}

// debugMaxTreeDepth is the depth past which debugCheckTreeDepth warns.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(n *Node) {
	depth := 0
	for p := n; p != nil; p = p.Parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		logger.Warn("tree depth exceeds threshold",
			nodeField(n), zap.Int("depth", depth), zap.Int("threshold", debugMaxTreeDepth))
	}
}

// debugMaxChildCount is the child count past which debugCheckChildCount warns.
const debugMaxChildCount = 1000

func debugCheckChildCount(n *Node) {
	if len(n.children) > debugMaxChildCount {
		logger.Warn("child count exceeds threshold",
			nodeField(n), zap.Int("children", len(n.children)), zap.Int("threshold", debugMaxChildCount))
	}
}

// countNodes returns the number of nodes in the subtree rooted at n.
func countNodes(n *Node) int {
	if n == nil {
		return 0
	}
	count := 1
	for _, c := range n.children {
		if c != nil {
			count += countNodes(c)
		}
	}
	return count
}
