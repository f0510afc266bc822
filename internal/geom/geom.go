// Package geom implements the pure geometry primitives the rest of the
// core builds on: fixed-point coordinates, angles, bounding boxes, and
// constructive geometry on lines, arcs, and polygons.
//
// All distances are in Coord units (1/100 mil in the reference editor;
// the unit is opaque here — only ratios between values matter). Angles
// are degrees, normalized to [0,360).
package geom

import "math"

// Coord is the board's one signed integer coordinate unit.
type Coord int32

// Point is a location in board space.
type Point struct {
	X, Y Coord
}

// Angle is a degree measure; Delta preserves the sign of a sweep.
type Angle float64

// Normalize reduces a to the range [0,360).
func (a Angle) Normalize() Angle {
	const full = 360
	r := math.Mod(float64(a), full)
	if r < 0 {
		r += full
	}
	return Angle(r)
}

// Box is an axis-aligned bounding box, inclusive of both edges, in the
// sense the source uses: X1 <= X2, Y1 <= Y2. A degenerate point box is
// legal (X1==X2 && Y1==Y2).
type Box struct {
	X1, Y1, X2, Y2 Coord
}

// EmptyBox returns a box that Union treats as an identity element.
func EmptyBox() Box {
	return Box{X1: math.MaxInt32, Y1: math.MaxInt32, X2: math.MinInt32, Y2: math.MinInt32}
}

// IsEmpty reports whether b was never extended by a point.
func (b Box) IsEmpty() bool {
	return b.X1 > b.X2 || b.Y1 > b.Y2
}

// ExtendPoint grows b, if necessary, to contain p.
func (b Box) ExtendPoint(p Point) Box {
	if b.IsEmpty() {
		return Box{p.X, p.Y, p.X, p.Y}
	}
	if p.X < b.X1 {
		b.X1 = p.X
	}
	if p.X > b.X2 {
		b.X2 = p.X
	}
	if p.Y < b.Y1 {
		b.Y1 = p.Y
	}
	if p.Y > b.Y2 {
		b.Y2 = p.Y
	}
	return b
}

// Union returns the smallest box containing both a and b.
func Union(a, b Box) Box {
	if a.IsEmpty() {
		return b
	}
	if b.IsEmpty() {
		return a
	}
	return Box{
		X1: min32(a.X1, b.X1),
		Y1: min32(a.Y1, b.Y1),
		X2: max32(a.X2, b.X2),
		Y2: max32(a.Y2, b.Y2),
	}
}

// Intersects reports whether a and b share at least one point.
func Intersects(a, b Box) bool {
	if a.IsEmpty() || b.IsEmpty() {
		return false
	}
	return a.X1 <= b.X2 && a.X2 >= b.X1 && a.Y1 <= b.Y2 && a.Y2 >= b.Y1
}

// Contains reports whether a wholly contains b.
func Contains(a, b Box) bool {
	if a.IsEmpty() || b.IsEmpty() {
		return false
	}
	return a.X1 <= b.X1 && a.X2 >= b.X2 && a.Y1 <= b.Y1 && a.Y2 >= b.Y2
}

// ContainsPoint reports whether p lies within b, inclusive.
func (b Box) ContainsPoint(p Point) bool {
	return p.X >= b.X1 && p.X <= b.X2 && p.Y >= b.Y1 && p.Y <= b.Y2
}

// InflateBy grows a box symmetrically by d on every side, for clearance
// and keepaway rings.
func (b Box) InflateBy(d Coord) Box {
	if b.IsEmpty() {
		return b
	}
	return Box{b.X1 - d, b.Y1 - d, b.X2 + d, b.Y2 + d}
}

func min32(a, b Coord) Coord {
	if a < b {
		return a
	}
	return b
}

func max32(a, b Coord) Coord {
	if a > b {
		return a
	}
	return b
}

// Distance returns the Euclidean distance between two points. Squaring
// is done in int64 — at least twice Coord's width — to avoid overflow
// per the numeric semantics in the spec.
func Distance(a, b Point) float64 {
	dx := int64(a.X) - int64(b.X)
	dy := int64(a.Y) - int64(b.Y)
	return math.Sqrt(float64(dx*dx + dy*dy))
}

// SquaredDistance avoids the sqrt when only comparisons are needed.
func SquaredDistance(a, b Point) int64 {
	dx := int64(a.X) - int64(b.X)
	dy := int64(a.Y) - int64(b.Y)
	return dx*dx + dy*dy
}

// RoundCoord rounds a float to the nearest Coord, ties away from zero,
// per the numeric semantics in the spec.
func RoundCoord(v float64) Coord {
	if v >= 0 {
		return Coord(math.Floor(v + 0.5))
	}
	return Coord(math.Ceil(v - 0.5))
}

// PointToSegmentDistance returns the shortest distance from p to the
// closed segment [a,b].
func PointToSegmentDistance(p, a, b Point) float64 {
	abx := int64(b.X) - int64(a.X)
	aby := int64(b.Y) - int64(a.Y)
	apx := int64(p.X) - int64(a.X)
	apy := int64(p.Y) - int64(a.Y)

	abLenSq := abx*abx + aby*aby
	if abLenSq == 0 {
		return Distance(p, a)
	}

	t := float64(apx*abx+apy*aby) / float64(abLenSq)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	proj := Point{
		X: a.X + RoundCoord(t*float64(abx)),
		Y: a.Y + RoundCoord(t*float64(aby)),
	}
	return Distance(p, proj)
}

// SegmentsIntersect reports whether segments p1p2 and p3p4 share a
// point, using signed int64 cross products (Coord is int32, so int64
// is twice the width per the spec's overflow-avoidance rule).
func SegmentsIntersect(p1, p2, p3, p4 Point) bool {
	d1 := cross(p3, p4, p1)
	d2 := cross(p3, p4, p2)
	d3 := cross(p1, p2, p3)
	d4 := cross(p1, p2, p4)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	if d1 == 0 && onSegment(p3, p4, p1) {
		return true
	}
	if d2 == 0 && onSegment(p3, p4, p2) {
		return true
	}
	if d3 == 0 && onSegment(p1, p2, p3) {
		return true
	}
	if d4 == 0 && onSegment(p1, p2, p4) {
		return true
	}
	return false
}

func cross(a, b, c Point) int64 {
	return (int64(b.X)-int64(a.X))*(int64(c.Y)-int64(a.Y)) -
		(int64(b.Y)-int64(a.Y))*(int64(c.X)-int64(a.X))
}

func onSegment(a, b, p Point) bool {
	return min32(a.X, b.X) <= p.X && p.X <= max32(a.X, b.X) &&
		min32(a.Y, b.Y) <= p.Y && p.Y <= max32(a.Y, b.Y)
}

// ArcEndpoints computes the start and end points of an elliptical arc
// given its center, radii, start angle, and sweep (delta, which may be
// negative). Matches the source's convention of 0 degrees pointing in
// +X and positive angles sweeping counter-clockwise in board space.
func ArcEndpoints(center Point, width, height Coord, start, delta Angle) (from, to Point) {
	from = pointOnEllipse(center, width, height, start)
	to = pointOnEllipse(center, width, height, start+delta)
	return from, to
}

func pointOnEllipse(center Point, width, height Coord, a Angle) Point {
	rad := float64(a) * math.Pi / 180.0
	return Point{
		X: center.X + RoundCoord(float64(width)*math.Cos(rad)),
		Y: center.Y + RoundCoord(float64(height)*math.Sin(rad)),
	}
}

// PolygonArea2 returns twice the signed area of a closed contour (the
// shoelace sum); its sign gives the winding direction: positive is
// counter-clockwise in a Y-down board coordinate system.
func PolygonArea2(points []Point) int64 {
	n := len(points)
	if n < 3 {
		return 0
	}
	var sum int64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += int64(points[i].X)*int64(points[j].Y) - int64(points[j].X)*int64(points[i].Y)
	}
	return sum
}

// Clockwise reports the winding direction of a contour.
func Clockwise(points []Point) bool {
	return PolygonArea2(points) < 0
}

// BoundingBoxOfPoints computes the axis-aligned box enclosing points.
func BoundingBoxOfPoints(points []Point) Box {
	b := EmptyBox()
	for _, p := range points {
		b = b.ExtendPoint(p)
	}
	return b
}

// BoundingBoxOfArc computes the conservative box of an elliptical arc
// segment: the two endpoints plus the quadrant extrema the sweep
// passes through.
func BoundingBoxOfArc(center Point, width, height Coord, start, delta Angle) Box {
	from, to := ArcEndpoints(center, width, height, start, delta)
	b := EmptyBox().ExtendPoint(from).ExtendPoint(to)

	// Quadrant extrema occur at angles that are multiples of 90.
	s := float64(start.Normalize())
	d := float64(delta)
	end := s + d
	step := 90.0
	if d < 0 {
		step = -90.0
	}
	for a := nextMultiple(s, step); inSweep(s, d, a); a += step {
		b = b.ExtendPoint(pointOnEllipse(center, width, height, Angle(a)))
	}
	_ = end
	return b
}

func nextMultiple(s, step float64) float64 {
	if step > 0 {
		return math.Ceil(s/step) * step
	}
	return math.Floor(s/step) * step
}

func inSweep(start, delta, a float64) bool {
	if delta >= 0 {
		return a >= start && a <= start+delta
	}
	return a <= start && a >= start+delta
}
