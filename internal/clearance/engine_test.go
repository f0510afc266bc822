package clearance

import (
	"testing"

	"github.com/pcb-core/pcb/internal/geom"
	"github.com/pcb-core/pcb/internal/model"
	"github.com/pcb-core/pcb/internal/spatial"
)

func newTestBoard() (*model.Board, int) {
	b := model.NewBoard("test", 100000, 100000)
	li := b.AddLayer(&model.Layer{Name: "top", Type: model.LayerCopper, Visible: true})
	return b, li
}

func squareContour(x1, y1, x2, y2 geom.Coord) []geom.Point {
	return []geom.Point{{X: x1, Y: y1}, {X: x2, Y: y1}, {X: x2, Y: y2}, {X: x1, Y: y2}}
}

func TestInitClipWithNoConductorsKeepsFullContour(t *testing.T) {
	b, li := newTestBoard()
	poly := model.NewPolygon(squareContour(0, 0, 1000, 1000), nil, model.Flags{})
	b.Layer(li).Polygons.Add(*poly)

	ix := spatial.BuildFromBoard(b)
	e := New(b, ix)
	e.InitClip(li, poly)

	if poly.Clipped == nil || len(poly.Clipped.Islands) == 0 {
		t.Fatalf("expected a clipped shape with at least one island")
	}
}

func TestIsPointInPolygonRequiresInitClip(t *testing.T) {
	b, li := newTestBoard()
	poly := model.NewPolygon(squareContour(0, 0, 1000, 1000), nil, model.Flags{})
	e := New(b, spatial.BuildFromBoard(b))

	if e.IsPointInPolygon(geom.Point{X: 500, Y: 500}, poly) {
		t.Fatalf("expected false before InitClip runs")
	}

	e.InitClip(li, poly)
	if !e.IsPointInPolygon(geom.Point{X: 500, Y: 500}, poly) {
		t.Fatalf("expected center point to be inside the clipped shape")
	}
	if e.IsPointInPolygon(geom.Point{X: 5000, Y: 5000}, poly) {
		t.Fatalf("expected far point to be outside the clipped shape")
	}
}

func TestMorphPolygonDiscardsTinyIslands(t *testing.T) {
	poly := model.NewPolygon(squareContour(0, 0, 1000, 1000), nil, model.Flags{})
	poly.Clipped = &model.ClippedShape{Islands: []model.Island{
		{Paths: [][]geom.Point{squareContour(0, 0, 1000, 1000)}, Area: 1_000_000},
		{Paths: [][]geom.Point{squareContour(0, 0, 5, 5)}, Area: 25},
	}}
	e := &Engine{}
	out := e.MorphPolygon(poly)
	if len(out) != 1 {
		t.Fatalf("expected the tiny island to be discarded, got %d survivors", len(out))
	}
}

func TestMorphPolygonKeepsLargestOnlyWithoutFullPolyFlag(t *testing.T) {
	poly := model.NewPolygon(squareContour(0, 0, 1000, 1000), nil, model.Flags{})
	poly.Clipped = &model.ClippedShape{Islands: []model.Island{
		{Paths: [][]geom.Point{squareContour(0, 0, 1000, 1000)}, Area: 1_000_000},
		{Paths: [][]geom.Point{squareContour(2000, 2000, 3000, 3000)}, Area: 1_000_000},
	}}
	e := &Engine{}
	out := e.MorphPolygon(poly)
	if len(out) != 1 {
		t.Fatalf("expected exactly one surviving island without FullPoly, got %d", len(out))
	}
}

func TestMorphPolygonKeepsAllWithFullPolyFlag(t *testing.T) {
	poly := model.NewPolygon(squareContour(0, 0, 1000, 1000), nil, model.MakeFlags(model.FlagFullPoly))
	poly.Clipped = &model.ClippedShape{Islands: []model.Island{
		{Paths: [][]geom.Point{squareContour(0, 0, 1000, 1000)}, Area: 1_000_000},
		{Paths: [][]geom.Point{squareContour(2000, 2000, 3000, 3000)}, Area: 1_000_000},
	}}
	e := &Engine{}
	out := e.MorphPolygon(poly)
	if len(out) != 2 {
		t.Fatalf("expected both islands kept with FullPoly set, got %d", len(out))
	}
}

func TestClearFromPolygonMarksOverlappingPolygonsDirty(t *testing.T) {
	b, li := newTestBoard()
	poly := model.NewPolygon(squareContour(0, 0, 1000, 1000), nil, model.Flags{})
	idx := b.Layer(li).Polygons.Add(*poly)
	e := New(b, spatial.BuildFromBoard(b))
	e.InitClip(li, b.Layer(li).Polygons.Get(idx))

	got := b.Layer(li).Polygons.Get(idx)
	if got.Clipped == nil {
		t.Fatalf("expected InitClip to have populated Clipped")
	}

	e.ClearFromPolygon(li, Conductor{Box: geom.Box{X1: 100, Y1: 100, X2: 200, Y2: 200}})
	if b.Layer(li).Polygons.Get(idx).Clipped != nil {
		t.Fatalf("expected ClearFromPolygon to mark the overlapping polygon dirty")
	}
}

func TestDefaultFlaggedLineJoinsPolygon(t *testing.T) {
	b, li := newTestBoard()
	poly := model.NewPolygon(squareContour(0, 0, 1000, 1000), nil, model.Flags{})
	b.Layer(li).Polygons.Add(*poly)
	line, err := model.NewLine(geom.Point{X: 400, Y: 400}, geom.Point{X: 600, Y: 600}, 100, 50, model.Flags{})
	if err != nil {
		t.Fatalf("NewLine: %v", err)
	}
	b.Layer(li).Lines.Add(*line)

	e := New(b, spatial.BuildFromBoard(b))
	polyRef := b.Layer(li).Polygons.Get(0)
	e.InitClip(li, polyRef)

	if !e.IsPointInPolygon(geom.Point{X: 500, Y: 500}, polyRef) {
		t.Fatalf("expected a default-flagged line (CLEARLINEFLAG off) to join the polygon, leaving its center inside")
	}
}

func TestClearLineFlagSetCutsClearance(t *testing.T) {
	b, li := newTestBoard()
	poly := model.NewPolygon(squareContour(0, 0, 1000, 1000), nil, model.Flags{})
	b.Layer(li).Polygons.Add(*poly)
	line, err := model.NewLine(geom.Point{X: 400, Y: 400}, geom.Point{X: 600, Y: 600}, 100, 50, model.MakeFlags(model.FlagClearLine))
	if err != nil {
		t.Fatalf("NewLine: %v", err)
	}
	b.Layer(li).Lines.Add(*line)

	e := New(b, spatial.BuildFromBoard(b))
	polyRef := b.Layer(li).Polygons.Get(0)
	e.InitClip(li, polyRef)

	if e.IsPointInPolygon(geom.Point{X: 500, Y: 500}, polyRef) {
		t.Fatalf("expected a CLEARLINEFLAG line to cut a clearance ring, leaving its center outside")
	}
}

func TestDefaultFlaggedViaJoinsPolygon(t *testing.T) {
	b, li := newTestBoard()
	poly := model.NewPolygon(squareContour(0, 0, 1000, 1000), nil, model.Flags{})
	b.Layer(li).Polygons.Add(*poly)
	b.Vias.Add(*model.NewVia(geom.Point{X: 500, Y: 500}, 200, 50, 300, 100, "", model.Flags{}))

	e := New(b, spatial.BuildFromBoard(b))
	polyRef := b.Layer(li).Polygons.Get(0)
	e.InitClip(li, polyRef)

	if !e.IsPointInPolygon(geom.Point{X: 500, Y: 500}, polyRef) {
		t.Fatalf("expected a default-flagged via (CLEARPOLYFLAG off on the polygon) to join the polygon")
	}
}

func TestClearPolyFlagSetOnPolygonCutsVia(t *testing.T) {
	b, li := newTestBoard()
	poly := model.NewPolygon(squareContour(0, 0, 1000, 1000), nil, model.MakeFlags(model.FlagClearPoly))
	b.Layer(li).Polygons.Add(*poly)
	b.Vias.Add(*model.NewVia(geom.Point{X: 500, Y: 500}, 200, 50, 300, 100, "", model.Flags{}))

	e := New(b, spatial.BuildFromBoard(b))
	polyRef := b.Layer(li).Polygons.Get(0)
	e.InitClip(li, polyRef)

	if e.IsPointInPolygon(geom.Point{X: 500, Y: 500}, polyRef) {
		t.Fatalf("expected CLEARPOLYFLAG on the polygon to cut the via's clearance ring (flag present = via clears)")
	}
}

func TestThermalSolidViaIsNotCleared(t *testing.T) {
	b, li := newTestBoard()
	poly := model.NewPolygon(squareContour(0, 0, 1000, 1000), nil, model.MakeFlags(model.FlagClearPoly))
	b.Layer(li).Polygons.Add(*poly)
	flags := model.Flags{}.WithThermal(li, model.ThermalSolid)
	b.Vias.Add(*model.NewVia(geom.Point{X: 500, Y: 500}, 200, 50, 300, 100, "", flags))

	e := New(b, spatial.BuildFromBoard(b))
	polyRef := b.Layer(li).Polygons.Get(0)
	e.InitClip(li, polyRef)

	if !e.IsPointInPolygon(geom.Point{X: 500, Y: 500}, polyRef) {
		t.Fatalf("expected a ThermalSolid via to cut no clearance even with CLEARPOLYFLAG set, leaving its center inside")
	}
}

func TestThermalSpokeGeometrySkipsSolidAndNone(t *testing.T) {
	c := Conductor{Box: geom.Box{X1: 0, Y1: 0, X2: 100, Y2: 100}, Clearance: 10}
	if g := thermalSpokeGeometry(c, model.ThermalNone); g != nil {
		t.Fatalf("expected no spokes for ThermalNone, got %v", g)
	}
	if g := thermalSpokeGeometry(c, model.ThermalSolid); g != nil {
		t.Fatalf("expected no spokes for ThermalSolid, got %v", g)
	}
	if g := thermalSpokeGeometry(c, model.ThermalOrthogonalSharp); len(g) != 4 {
		t.Fatalf("expected 4 orthogonal spokes, got %d", len(g))
	}
	if g := thermalSpokeGeometry(c, model.ThermalDiagonalRounded); len(g) != 4 {
		t.Fatalf("expected 4 diagonal spokes, got %d", len(g))
	}
}
