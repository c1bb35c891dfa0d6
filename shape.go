package birch

import "math"

// Shape is a geometric primitive in node-local coordinates. Shapes serve both
// as collision geometry (through a Collider) and as a node's HitShape.
type Shape interface {
	// Points returns the outline as a closed polygon.
	Points() []Vec2
	// Contains reports whether (x, y) lies inside or on the shape.
	Contains(x, y float64) bool
}

// ellipseSegments is the number of polygon edges used to flatten circles and
// ellipses.
const ellipseSegments = 32

// RectShape is an axis-aligned rectangle in local coordinates.
type RectShape struct {
	X, Y, Width, Height float64
}

// Points returns the four corners, clockwise from the top-left.
func (r RectShape) Points() []Vec2 {
	return []Vec2{
		{r.X, r.Y},
		{r.X + r.Width, r.Y},
		{r.X + r.Width, r.Y + r.Height},
		{r.X, r.Y + r.Height},
	}
}

// Contains reports whether (x, y) lies inside the rectangle.
func (r RectShape) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// CircleShape is a circle in local coordinates.
type CircleShape struct {
	CenterX, CenterY, Radius float64
}

// Points returns the circle flattened to a polygon.
func (c CircleShape) Points() []Vec2 {
	return ellipsePoints(c.CenterX, c.CenterY, c.Radius, c.Radius)
}

// Contains reports whether (x, y) lies inside or on the circle.
func (c CircleShape) Contains(x, y float64) bool {
	dx := x - c.CenterX
	dy := y - c.CenterY
	return dx*dx+dy*dy <= c.Radius*c.Radius
}

// EllipseShape is an axis-aligned ellipse in local coordinates.
type EllipseShape struct {
	CenterX, CenterY float64
	RadiusX, RadiusY float64
}

// Points returns the ellipse flattened to a polygon.
func (e EllipseShape) Points() []Vec2 {
	return ellipsePoints(e.CenterX, e.CenterY, e.RadiusX, e.RadiusY)
}

// Contains reports whether (x, y) lies inside or on the ellipse.
func (e EllipseShape) Contains(x, y float64) bool {
	if e.RadiusX <= 0 || e.RadiusY <= 0 {
		return false
	}
	dx := (x - e.CenterX) / e.RadiusX
	dy := (y - e.CenterY) / e.RadiusY
	return dx*dx+dy*dy <= 1
}

func ellipsePoints(cx, cy, rx, ry float64) []Vec2 {
	pts := make([]Vec2, ellipseSegments)
	for i := range pts {
		sin, cos := math.Sincos(2 * math.Pi * float64(i) / ellipseSegments)
		pts[i] = Vec2{cx + rx*cos, cy + ry*sin}
	}
	return pts
}

// PolygonShape is a simple polygon in local coordinates, in either winding
// order.
type PolygonShape struct {
	Vertices []Vec2
}

// Points returns a copy of the vertices.
func (p PolygonShape) Points() []Vec2 {
	out := make([]Vec2, len(p.Vertices))
	copy(out, p.Vertices)
	return out
}

// Contains reports whether (x, y) lies inside the polygon.
func (p PolygonShape) Contains(x, y float64) bool {
	return pointInPolygon(p.Vertices, x, y)
}

// --- Relations ---

// Relation describes how two shapes lie relative to each other, from the
// point of view of the first.
type Relation uint8

const (
	RelationUnknown     Relation = iota // geometry unavailable
	RelationDisjoint                    // no common point
	RelationIsContained                 // the first lies inside the second
	RelationContains                    // the second lies inside the first
	RelationOverlap                     // the outlines cross or touch
)

var relationNames = [...]string{"unknown", "disjoint", "is-contained", "contains", "overlap"}

func (r Relation) String() string {
	if int(r) < len(relationNames) {
		return relationNames[r]
	}
	return "unknown"
}

// Inverse returns the relation seen from the other shape.
func (r Relation) Inverse() Relation {
	switch r {
	case RelationIsContained:
		return RelationContains
	case RelationContains:
		return RelationIsContained
	}
	return r
}

// polygonRelation classifies two closed polygons. The result is symmetric:
// polygonRelation(b, a) == polygonRelation(a, b).Inverse().
func polygonRelation(a, b []Vec2) Relation {
	if len(a) < 3 || len(b) < 3 {
		return RelationUnknown
	}
	if !polygonBounds(a).Intersects(polygonBounds(b)) {
		return RelationDisjoint
	}
	for i := range a {
		a1, a2 := a[i], a[(i+1)%len(a)]
		for j := range b {
			if segmentsIntersect(a1, a2, b[j], b[(j+1)%len(b)]) {
				return RelationOverlap
			}
		}
	}
	if pointInPolygon(b, a[0].X, a[0].Y) {
		return RelationIsContained
	}
	if pointInPolygon(a, b[0].X, b[0].Y) {
		return RelationContains
	}
	return RelationDisjoint
}

func polygonBounds(pts []Vec2) Rect {
	if len(pts) == 0 {
		return Rect{}
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// pointInPolygon is the even-odd ray casting test.
func pointInPolygon(pts []Vec2, x, y float64) bool {
	n := len(pts)
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := pts[i], pts[j]
		if (pi.Y > y) != (pj.Y > y) &&
			x < (pj.X-pi.X)*(y-pi.Y)/(pj.Y-pi.Y)+pi.X {
			inside = !inside
		}
	}
	return inside
}

// segmentsIntersect reports whether segments p1p2 and q1q2 share a point.
func segmentsIntersect(p1, p2, q1, q2 Vec2) bool {
	d1 := orientation(q1, q2, p1)
	d2 := orientation(q1, q2, p2)
	d3 := orientation(p1, p2, q1)
	d4 := orientation(p1, p2, q2)
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	return (d1 == 0 && onSegment(q1, q2, p1)) ||
		(d2 == 0 && onSegment(q1, q2, p2)) ||
		(d3 == 0 && onSegment(p1, p2, q1)) ||
		(d4 == 0 && onSegment(p1, p2, q2))
}

func orientation(a, b, c Vec2) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// onSegment reports whether c, known to be collinear with ab, lies on ab.
func onSegment(a, b, c Vec2) bool {
	return c.X >= math.Min(a.X, b.X) && c.X <= math.Max(a.X, b.X) &&
		c.Y >= math.Min(a.Y, b.Y) && c.Y <= math.Max(a.Y, b.Y)
}
