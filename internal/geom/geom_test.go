package geom

import "testing"

func TestBoxUnionAndIntersect(t *testing.T) {
	a := Box{0, 0, 10, 10}
	b := Box{5, 5, 20, 20}
	u := Union(a, b)
	if u != (Box{0, 0, 20, 20}) {
		t.Fatalf("union: got %+v", u)
	}
	if !Intersects(a, b) {
		t.Fatalf("expected intersection")
	}
	c := Box{100, 100, 200, 200}
	if Intersects(a, c) {
		t.Fatalf("expected no intersection")
	}
}

func TestEmptyBoxIsIdentity(t *testing.T) {
	e := EmptyBox()
	if !e.IsEmpty() {
		t.Fatalf("expected empty")
	}
	a := Box{1, 1, 5, 5}
	if Union(e, a) != a {
		t.Fatalf("empty union should be identity")
	}
}

func TestDegeneratePointBoxIsLegal(t *testing.T) {
	b := Box{10, 10, 10, 10}
	if b.IsEmpty() {
		t.Fatalf("point box must not be empty")
	}
	if !b.ContainsPoint(Point{10, 10}) {
		t.Fatalf("point box must contain its own point")
	}
}

func TestSegmentsIntersect(t *testing.T) {
	if !SegmentsIntersect(Point{0, 0}, Point{10, 10}, Point{0, 10}, Point{10, 0}) {
		t.Fatalf("expected crossing segments to intersect")
	}
	if SegmentsIntersect(Point{0, 0}, Point{1, 0}, Point{0, 5}, Point{1, 5}) {
		t.Fatalf("parallel non-touching segments must not intersect")
	}
}

func TestAngleNormalize(t *testing.T) {
	if Angle(-90).Normalize() != 270 {
		t.Fatalf("got %v", Angle(-90).Normalize())
	}
	if Angle(370).Normalize() != 10 {
		t.Fatalf("got %v", Angle(370).Normalize())
	}
}

func TestRoundCoordTiesAwayFromZero(t *testing.T) {
	if RoundCoord(0.5) != 1 {
		t.Fatalf("got %v", RoundCoord(0.5))
	}
	if RoundCoord(-0.5) != -1 {
		t.Fatalf("got %v", RoundCoord(-0.5))
	}
}

func TestClockwiseWinding(t *testing.T) {
	ccw := []Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	if Clockwise(ccw) {
		t.Fatalf("expected counter-clockwise winding")
	}
	cw := []Point{{0, 0}, {0, 10}, {10, 10}, {10, 0}}
	if !Clockwise(cw) {
		t.Fatalf("expected clockwise winding")
	}
}

func TestArcEndpointsAtZeroDegrees(t *testing.T) {
	from, _ := ArcEndpoints(Point{0, 0}, 100, 100, 0, 90)
	if from.X != 100 || from.Y != 0 {
		t.Fatalf("got %+v", from)
	}
}
