// Package clearance implements the polygon clearance engine (spec 4.4):
// each polygon's effective shape is its declared contour minus the union
// of clearance regions cast by overlapping, non-joining conductors, plus
// thermal spoke geometry unioned back in.
//
// The boolean algebra itself is delegated to clipper2, the same
// polygon-clipping engine the retrieved corpus names for this purpose
// (see CWBudde-Go-Clipper2 in the example pack) — hand-rolling a robust
// polygon boolean-subtraction routine is exactly the kind of "reinvent a
// library" work this module is meant to avoid.
package clearance

import (
	"github.com/go-clipper/clipper2"

	"github.com/pcb-core/pcb/internal/geom"
)

// toPath64 converts a board contour into the engine's integer path type.
// Coord is already an integer unit, so no scaling is needed.
func toPath64(points []geom.Point) clipper2.Path64 {
	path := make(clipper2.Path64, len(points))
	for i, p := range points {
		path[i] = clipper2.Point64{X: int64(p.X), Y: int64(p.Y)}
	}
	return path
}

func toPaths64(contours [][]geom.Point) clipper2.Paths64 {
	out := make(clipper2.Paths64, len(contours))
	for i, c := range contours {
		out[i] = toPath64(c)
	}
	return out
}

func fromPath64(path clipper2.Path64) []geom.Point {
	out := make([]geom.Point, len(path))
	for i, p := range path {
		out[i] = geom.Point{X: geom.Coord(p.X), Y: geom.Coord(p.Y)}
	}
	return out
}

func fromPaths64(paths clipper2.Paths64) [][]geom.Point {
	out := make([][]geom.Point, len(paths))
	for i, p := range paths {
		out[i] = fromPath64(p)
	}
	return out
}

// subtract returns subject minus every path in clips, using the
// nonzero fill rule (the source's polygon fill convention — holes wind
// opposite the outer contour).
func subtract(subject [][]geom.Point, clips [][]geom.Point) [][]geom.Point {
	if len(clips) == 0 {
		return subject
	}
	result := clipper2.Difference(toPaths64(subject), toPaths64(clips), clipper2.FillRuleNonZero)
	return snapSlivers(fromPaths64(result), subject)
}

// union merges shapes, used to add thermal spokes back into a clipped
// shape and to combine multiple clearance regions before one subtraction.
func union(shapes ...[][]geom.Point) [][]geom.Point {
	var acc clipper2.Paths64
	for _, s := range shapes {
		if len(s) == 0 {
			continue
		}
		if acc == nil {
			acc = toPaths64(s)
			continue
		}
		acc = clipper2.Union(acc, toPaths64(s), clipper2.FillRuleNonZero)
	}
	return fromPaths64(acc)
}

// intersects reports whether two contour sets overlap at all.
func intersects(a, b [][]geom.Point) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	got := clipper2.Intersect(toPaths64(a), toPaths64(b), clipper2.FillRuleNonZero)
	return len(got) > 0
}

// snapVertexTolerance is the "within one coordinate unit of an input
// edge" sliver-avoidance tolerance the spec calls for.
const snapVertexTolerance = 1

// snapSlivers nudges any result vertex that landed within
// snapVertexTolerance of an original subject edge back onto that edge,
// so a near-miss intersection doesn't leave a one-unit sliver triangle.
func snapSlivers(result [][]geom.Point, originalSubject [][]geom.Point) [][]geom.Point {
	for ci, contour := range result {
		for pi, p := range contour {
			result[ci][pi] = snapToNearestEdge(p, originalSubject)
		}
	}
	return result
}

func snapToNearestEdge(p geom.Point, contours [][]geom.Point) geom.Point {
	best := p
	bestDist := float64(snapVertexTolerance) + 1
	for _, c := range contours {
		n := len(c)
		for i := 0; i < n; i++ {
			a := c[i]
			b := c[(i+1)%n]
			d := geom.PointToSegmentDistance(p, a, b)
			if d < bestDist {
				bestDist = d
				best = snapPointOntoSegment(p, a, b)
			}
		}
	}
	if bestDist <= float64(snapVertexTolerance) {
		return best
	}
	return p
}

func snapPointOntoSegment(p, a, b geom.Point) geom.Point {
	abx := float64(b.X - a.X)
	aby := float64(b.Y - a.Y)
	lenSq := abx*abx + aby*aby
	if lenSq == 0 {
		return a
	}
	t := (float64(p.X-a.X)*abx + float64(p.Y-a.Y)*aby) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return geom.Point{
		X: a.X + geom.RoundCoord(t*abx),
		Y: a.Y + geom.RoundCoord(t*aby),
	}
}

// area64 returns the absolute area of a single contour, used by
// MorphPolygon's minimum-island-area discard and full-poly/largest-only
// selection.
func area64(contour []geom.Point) float64 {
	a := geom.PolygonArea2(contour)
	if a < 0 {
		a = -a
	}
	return float64(a) / 2
}
