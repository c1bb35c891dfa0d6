package birch

import "math"

// Transform is a 2D affine matrix stored as [a, b, c, d, tx, ty]:
//
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
type Transform [6]float64

// IdentityTransform is the identity affine matrix.
var IdentityTransform = Transform{1, 0, 0, 1, 0, 0}

// Multiply returns t * child, i.e. child's transform expressed in t's parent
// space.
func (t Transform) Multiply(child Transform) Transform {
	return Transform{
		t[0]*child[0] + t[2]*child[1],
		t[1]*child[0] + t[3]*child[1],
		t[0]*child[2] + t[2]*child[3],
		t[1]*child[2] + t[3]*child[3],
		t[0]*child[4] + t[2]*child[5] + t[4],
		t[1]*child[4] + t[3]*child[5] + t[5],
	}
}

// Invert computes the inverse of the matrix.
// Returns the identity matrix if the matrix is singular (determinant ~ 0).
func (t Transform) Invert() Transform {
	det := t[0]*t[3] - t[2]*t[1]
	if det > -1e-12 && det < 1e-12 {
		return IdentityTransform
	}
	invDet := 1.0 / det
	a := t[3] * invDet
	b := -t[1] * invDet
	c := -t[2] * invDet
	d := t[0] * invDet
	return Transform{
		a, b, c, d,
		-(a*t[4] + c*t[5]),
		-(b*t[4] + d*t[5]),
	}
}

// Apply transforms the point (x, y).
func (t Transform) Apply(x, y float64) (float64, float64) {
	return t[0]*x + t[2]*y + t[4], t[1]*x + t[3]*y + t[5]
}

// Translation returns the translation component.
func (t Transform) Translation() (float64, float64) {
	return t[4], t[5]
}

// Translate returns a pure translation matrix.
func Translate(x, y float64) Transform {
	return Transform{1, 0, 0, 1, x, y}
}

// computeLocalTransform computes the local affine matrix from the node's
// transform properties.
//
// Composition order:
//
//	Translate(-PivotX, -PivotY) -> Scale -> Skew -> Rotate -> Translate(X, Y)
func computeLocalTransform(n *Node) Transform {
	sx := n.ScaleX
	sy := n.ScaleY

	sin, cos := math.Sincos(n.Rotation)

	var tanSkewX, tanSkewY float64
	if n.SkewX != 0 {
		tanSkewX = math.Tan(n.SkewX)
	}
	if n.SkewY != 0 {
		tanSkewY = math.Tan(n.SkewY)
	}

	// After Scale * Translate(-pivot):
	//   a=sx, b=0, c=0, d=sy, tx=-px*sx, ty=-py*sy
	//
	// After Skew:
	a := sx
	b := tanSkewY * sx
	c := tanSkewX * sy
	d := sy

	px := n.PivotX
	py := n.PivotY
	preTx := -px*sx - tanSkewX*py*sy
	preTy := -tanSkewY*px*sx - py*sy

	// After Rotate:
	ra := cos*a - sin*b
	rb := sin*a + cos*b
	rc := cos*c - sin*d
	rd := sin*c + cos*d
	rtx := cos*preTx - sin*preTy
	rty := sin*preTx + cos*preTy

	// After Translate(X, Y):
	return Transform{ra, rb, rc, rd, rtx + n.X, rty + n.Y}
}

// recompute rebuilds n's world transform from its parent's cached values if
// n is dirty or the parent changed since n was last computed. The parent must
// already be up to date.
func (n *Node) recompute(parentTransform Transform, parentAlpha float64, parentVersion uint64) {
	if !n.transformDirty && n.parentVersion == parentVersion {
		return
	}
	wt := parentTransform.Multiply(computeLocalTransform(n))
	if wt != n.worldTransform || n.matrixVersion == 0 {
		n.worldTransform = wt
		n.matrixVersion++
	}
	n.worldAlpha = parentAlpha * n.Alpha
	n.transformDirty = false
	n.parentVersion = parentVersion
	n.worldVersion++
}

// refreshWorld brings n and every ancestor up to date, walking the parent
// chain only.
func (n *Node) refreshWorld() {
	parentTransform := IdentityTransform
	parentAlpha := 1.0
	var parentVersion uint64
	if p := n.Parent; p != nil {
		p.refreshWorld()
		parentTransform, parentAlpha, parentVersion = p.worldTransform, p.worldAlpha, p.worldVersion
	}
	n.recompute(parentTransform, parentAlpha, parentVersion)
}

// updateWorldTransform refreshes n and its whole subtree top-down.
func updateWorldTransform(n *Node, parentTransform Transform, parentAlpha float64, parentVersion uint64) {
	n.recompute(parentTransform, parentAlpha, parentVersion)
	for _, child := range n.children {
		if child != nil {
			updateWorldTransform(child, n.worldTransform, n.worldAlpha, n.worldVersion)
		}
	}
}

// WorldTransform returns the node's transform in scene space, recomputing it
// from the parent chain if anything along the chain changed.
func (n *Node) WorldTransform() Transform {
	if n == nil {
		return IdentityTransform
	}
	n.refreshWorld()
	return n.worldTransform
}

// WorldAlpha returns the node's alpha multiplied by every ancestor's alpha.
func (n *Node) WorldAlpha() float64 {
	if n == nil {
		return 0
	}
	n.refreshWorld()
	return n.worldAlpha
}

// LocalTransform returns the node's transform relative to its parent.
func (n *Node) LocalTransform() Transform {
	if n == nil {
		return IdentityTransform
	}
	return computeLocalTransform(n)
}

// --- Transform property setters ---

// SetPosition sets the node's local X and Y and marks it dirty.
func (n *Node) SetPosition(x, y float64) {
	if debugCheckNil(n, "SetPosition") {
		return
	}
	n.X = x
	n.Y = y
	n.transformDirty = true
}

// Position returns the node's local X and Y.
func (n *Node) Position() (float64, float64) {
	if n == nil {
		return 0, 0
	}
	return n.X, n.Y
}

// SetScale sets the node's ScaleX and ScaleY and marks it dirty.
func (n *Node) SetScale(sx, sy float64) {
	if debugCheckNil(n, "SetScale") {
		return
	}
	n.ScaleX = sx
	n.ScaleY = sy
	n.transformDirty = true
}

// SetRotation sets the node's rotation (in radians) and marks it dirty.
func (n *Node) SetRotation(r float64) {
	if debugCheckNil(n, "SetRotation") {
		return
	}
	n.Rotation = r
	n.transformDirty = true
}

// SetSkew sets the node's SkewX and SkewY and marks it dirty.
func (n *Node) SetSkew(sx, sy float64) {
	if debugCheckNil(n, "SetSkew") {
		return
	}
	n.SkewX = sx
	n.SkewY = sy
	n.transformDirty = true
}

// SetPivot sets the node's PivotX and PivotY and marks it dirty.
func (n *Node) SetPivot(px, py float64) {
	if debugCheckNil(n, "SetPivot") {
		return
	}
	n.PivotX = px
	n.PivotY = py
	n.transformDirty = true
}

// SetAlpha sets the node's alpha and marks it dirty.
func (n *Node) SetAlpha(a float64) {
	if debugCheckNil(n, "SetAlpha") {
		return
	}
	n.Alpha = a
	n.transformDirty = true
}

// MarkDirty marks the node's transform as dirty, forcing recomputation
// on the next query or frame. Useful after bulk-setting fields directly.
func (n *Node) MarkDirty() {
	if debugCheckNil(n, "MarkDirty") {
		return
	}
	n.transformDirty = true
}

// --- Coordinate conversion ---

// WorldToLocal converts a world-space point to this node's local coordinate space.
func (n *Node) WorldToLocal(wx, wy float64) (lx, ly float64) {
	return n.WorldTransform().Invert().Apply(wx, wy)
}

// LocalToWorld converts a local-space point to world-space.
func (n *Node) LocalToWorld(lx, ly float64) (wx, wy float64) {
	return n.WorldTransform().Apply(lx, ly)
}
