package clearance

import (
	"github.com/pcb-core/pcb/internal/geom"
	"github.com/pcb-core/pcb/internal/model"
	"github.com/pcb-core/pcb/internal/spatial"
)

// MinIslandArea is the configured minimum area (in squared Coord units)
// below which MorphPolygon discards a split-off island rather than
// keeping it as its own polygon.
const MinIslandArea = 100

// Conductor is anything that can cast a clearance region onto a polygon:
// pins, vias, pads, lines, and arcs (spec 4.4). The engine only needs
// enough from a conductor to build its clearance outline and test the
// join/thermal predicates.
type Conductor struct {
	Ref       model.Ref
	Box       geom.Box
	Layer     int  // -1 for vias/pins, which pierce every copper layer within their span
	JoinsPoly bool // CLEAR_LINE absent on a line/arc, or CLEAR_POLY absent on the polygon for a pin/via/pad
	Outline   func(clearance geom.Coord) [][]geom.Point
	Clearance geom.Coord
	Thermal   func(polyLayer int) model.ThermalStyle
}

// Engine ties the clearance model to the board and its spatial index so
// InitClip can find every conductor a polygon overlaps.
type Engine struct {
	Board *model.Board
	Index *spatial.Index
}

func New(b *model.Board, ix *spatial.Index) *Engine {
	return &Engine{Board: b, Index: ix}
}

// InitClip computes polygon's effective shape from scratch by querying
// the spatial index for every overlapping conductor.
func (e *Engine) InitClip(layerIdx int, poly *model.Polygon) {
	subject := poly.Contours()
	conductors := e.overlappingConductors(layerIdx, poly)

	var clearRegions [][]geom.Point
	var thermalSpokes [][]geom.Point

	for _, c := range conductors {
		if c.JoinsPoly {
			continue
		}
		style := model.ThermalNone
		if c.Thermal != nil {
			style = c.Thermal(layerIdx)
		}
		if style == model.ThermalSolid {
			continue
		}
		if style != model.ThermalNone {
			clearRegions = append(clearRegions, c.Outline(c.Clearance)...)
			thermalSpokes = append(thermalSpokes, thermalSpokeGeometry(c, style)...)
			continue
		}
		clearRegions = append(clearRegions, c.Outline(c.Clearance)...)
	}

	clipped := subtract(subject, clearRegions)
	clipped = union(clipped, thermalSpokes)

	poly.Clipped = &model.ClippedShape{Islands: toIslands(clipped)}
	if !poly.Flags.Test(model.FlagFullPoly) {
		poly.Clipped.Islands = keepLargestIsland(poly.Clipped.Islands)
	}
}

func (e *Engine) overlappingConductors(layerIdx int, poly *model.Polygon) []Conductor {
	var out []Conductor
	region := poly.BBox()

	// Same-layer lines and arcs.
	layer := e.Board.Layer(layerIdx)
	if layer != nil {
		layer.Lines.Each(func(i int, l *model.Line) model.Control {
			if geom.Intersects(l.BBox(), region) {
				out = append(out, lineConductor(layerIdx, i, l))
			}
			return model.ControlContinue
		})
		layer.Arcs.Each(func(i int, a *model.Arc) model.Control {
			if geom.Intersects(a.BBox(), region) {
				out = append(out, arcConductor(layerIdx, i, a))
			}
			return model.ControlContinue
		})
	}

	// Vias and pins pierce every copper layer within their span.
	e.Board.Vias.Each(func(i int, v *model.Via) model.Control {
		if v.PiercesLayer(layerIdx) && geom.Intersects(v.BBox(), region) {
			out = append(out, viaConductor(i, v, poly))
		}
		return model.ControlContinue
	})
	e.Board.Elements.Each(func(ei int, el *model.Element) model.Control {
		el.Pins.Each(func(pi int, p *model.Pin) model.Control {
			if geom.Intersects(p.BBox(), region) {
				out = append(out, pinConductor(ei, pi, p, poly))
			}
			return model.ControlContinue
		})
		el.Pads.Each(func(pi int, p *model.Pad) model.Control {
			if geom.Intersects(p.BBox(), region) {
				out = append(out, padConductor(ei, pi, p, poly))
			}
			return model.ControlContinue
		})
		return model.ControlContinue
	})

	return out
}

func lineConductor(layer, idx int, l *model.Line) Conductor {
	ref := model.Ref{Kind: model.KindLine, Layer: layer, Element: -1, Index: idx}
	return Conductor{
		Ref: ref, Box: l.BBox(), Layer: layer,
		JoinsPoly: !l.Flags.Test(model.FlagClearLine),
		Clearance: l.Clearance,
		Outline: func(clear geom.Coord) [][]geom.Point {
			return [][]geom.Point{stadiumOutline(l.Point1, l.Point2, l.Thickness/2+clear)}
		},
	}
}

func arcConductor(layer, idx int, a *model.Arc) Conductor {
	ref := model.Ref{Kind: model.KindArc, Layer: layer, Element: -1, Index: idx}
	return Conductor{
		Ref: ref, Box: a.BBox(), Layer: layer,
		JoinsPoly: !a.Flags.Test(model.FlagClearLine),
		Clearance: a.Clearance,
		Outline: func(clear geom.Coord) [][]geom.Point {
			return [][]geom.Point{arcOutline(a, clear)}
		},
	}
}

func viaConductor(idx int, v *model.Via, poly *model.Polygon) Conductor {
	ref := model.Ref{Kind: model.KindVia, Layer: -1, Element: -1, Index: idx}
	return Conductor{
		Ref: ref, Box: v.BBox(), Layer: -1,
		JoinsPoly: !poly.Flags.Test(model.FlagClearPoly),
		Clearance: v.Clearance,
		Outline: func(clear geom.Coord) [][]geom.Point {
			return [][]geom.Point{circleOutline(v.Center, v.Diameter/2+clear)}
		},
		Thermal: func(polyLayer int) model.ThermalStyle { return v.Flags.Thermal(polyLayer) },
	}
}

func pinConductor(elementIdx, idx int, p *model.Pin, poly *model.Polygon) Conductor {
	ref := model.Ref{Kind: model.KindPin, Layer: -1, Element: elementIdx, Index: idx}
	return Conductor{
		Ref: ref, Box: p.BBox(), Layer: -1,
		JoinsPoly: !poly.Flags.Test(model.FlagClearPoly),
		Clearance: p.Clearance,
		Outline: func(clear geom.Coord) [][]geom.Point {
			return [][]geom.Point{circleOutline(p.Center, p.Diameter/2+clear)}
		},
		Thermal: func(polyLayer int) model.ThermalStyle { return p.Flags.Thermal(polyLayer) },
	}
}

func padConductor(elementIdx, idx int, p *model.Pad, poly *model.Polygon) Conductor {
	ref := model.Ref{Kind: model.KindPad, Layer: -1, Element: elementIdx, Index: idx}
	return Conductor{
		Ref: ref, Box: p.BBox(), Layer: -1,
		JoinsPoly: !poly.Flags.Test(model.FlagClearPoly),
		Clearance: p.Clearance,
		Outline: func(clear geom.Coord) [][]geom.Point {
			if p.Flags.Test(model.FlagSquare) {
				return [][]geom.Point{rectOutline(p.Point1, p.Point2, p.Thickness/2+clear)}
			}
			return [][]geom.Point{stadiumOutline(p.Point1, p.Point2, p.Thickness/2+clear)}
		},
	}
}

// ClearFromPolygon subtracts object's clearance region from every
// polygon whose bounding box intersects it.
func (e *Engine) ClearFromPolygon(layerIdx int, c Conductor) {
	layer := e.Board.Layer(layerIdx)
	if layer == nil {
		return
	}
	layer.Polygons.Each(func(i int, poly *model.Polygon) model.Control {
		if geom.Intersects(poly.BBox(), c.Box) {
			poly.MarkDirty()
		}
		return model.ControlContinue
	})
}

// RestoreToPolygon is ClearFromPolygon's inverse, issued before object is
// removed or moved; in this shape-from-scratch implementation both sides
// of the pair simply mark affected polygons dirty — InitClip recomputes
// the true effective shape once the paired operation's journal entry
// closes, satisfying the spec's batching allowance.
func (e *Engine) RestoreToPolygon(layerIdx int, c Conductor) {
	e.ClearFromPolygon(layerIdx, c)
}

// RecomputeDirty re-runs InitClip on every polygon in the board whose
// Clipped shape is nil, i.e. every polygon a Clear/Restore pair marked
// dirty since the last recompute. Call this once a journal entry closes.
func (e *Engine) RecomputeDirty() {
	for li, layer := range e.Board.Layers {
		layer.Polygons.Each(func(_ int, poly *model.Polygon) model.Control {
			if poly.Clipped == nil {
				e.InitClip(li, poly)
			}
			return model.ControlContinue
		})
	}
}

// IsPointInPolygon tests p against poly's effective (clipped) shape, not
// its raw declared contour.
func (e *Engine) IsPointInPolygon(p geom.Point, poly *model.Polygon) bool {
	if poly.Clipped == nil {
		return false
	}
	for _, island := range poly.Clipped.Islands {
		if !island.Contour.ContainsPoint(p) {
			continue
		}
		if pointInContours(p, island.Paths) {
			return true
		}
	}
	return false
}

func pointInContours(p geom.Point, paths [][]geom.Point) bool {
	inside := false
	for _, path := range paths {
		if pointInPolygonRayCast(p, path) {
			inside = !inside
		}
	}
	return inside
}

func pointInPolygonRayCast(p geom.Point, poly []geom.Point) bool {
	n := len(poly)
	if n < 3 {
		return false
	}
	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		pi, pj := poly[i], poly[j]
		if (pi.Y > p.Y) != (pj.Y > p.Y) {
			xIntersect := float64(pj.X-pi.X)*float64(p.Y-pi.Y)/float64(pj.Y-pi.Y) + float64(pi.X)
			if float64(p.X) < xIntersect {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// MorphPolygon replaces poly with one polygon per connected island of its
// effective shape when that shape has split into disconnected pieces;
// islands below MinIslandArea are discarded. It returns the contours for
// each surviving island's new polygon — the caller (the undo-journaled
// mutation layer) is responsible for turning each into an actual
// model.Polygon and journaling the replacement.
func (e *Engine) MorphPolygon(poly *model.Polygon) [][]geom.Point {
	if poly.Clipped == nil {
		return nil
	}
	islands := poly.Clipped.Islands
	if !poly.Flags.Test(model.FlagFullPoly) {
		islands = keepLargestIsland(islands)
	}
	var out [][]geom.Point
	for _, isl := range islands {
		if isl.Area < MinIslandArea {
			continue
		}
		if len(isl.Paths) == 0 {
			continue
		}
		out = append(out, isl.Paths[0])
	}
	return out
}

func toIslands(contours [][]geom.Point) []model.Island {
	// A contour whose first vertex lies inside another contour is a hole:
	// it is appended to the Paths of every island that contains it, so
	// pointInContours' even-odd test excludes it. Every other contour is
	// one island. Area is the outer contour's area alone.
	var out []model.Island
	for i, c := range contours {
		isHole := false
		for j, o := range contours {
			if i != j && len(c) > 0 && pointInPolygonRayCast(c[0], o) {
				isHole = true
			}
		}
		if isHole {
			continue
		}
		isl := model.Island{Contour: geom.BoundingBoxOfPoints(c), Paths: [][]geom.Point{c}, Area: area64(c)}
		for j, h := range contours {
			if i != j && len(h) > 0 && pointInPolygonRayCast(h[0], c) {
				isl.Paths = append(isl.Paths, h)
			}
		}
		out = append(out, isl)
	}
	return out
}

func keepLargestIsland(islands []model.Island) []model.Island {
	if len(islands) <= 1 {
		return islands
	}
	best := islands[0]
	for _, isl := range islands[1:] {
		if isl.Area > best.Area {
			best = isl
		}
	}
	return []model.Island{best}
}
