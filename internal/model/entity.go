package model

import (
	"github.com/pcb-core/pcb/internal/geom"
	"github.com/pcb-core/pcb/internal/pcberr"
)

var errZeroLengthLine = pcberr.New(pcberr.Geometry, "line endpoints must not coincide")

// Kind tags every entity variant. The source dispatches copy/move/remove/
// resize through a table of function pointers keyed by an
// ObjectFunctionType struct; here that becomes an exhaustive switch over
// Kind (see the Entity interface below and dispatch's undo_apply.go).
type Kind int

const (
	KindVia Kind = iota
	KindPin
	KindPad
	KindLine
	KindArc
	KindText
	KindPolygon
	KindElement
	KindRat
)

func (k Kind) String() string {
	switch k {
	case KindVia:
		return "via"
	case KindPin:
		return "pin"
	case KindPad:
		return "pad"
	case KindLine:
		return "line"
	case KindArc:
		return "arc"
	case KindText:
		return "text"
	case KindPolygon:
		return "polygon"
	case KindElement:
		return "element"
	case KindRat:
		return "rat"
	default:
		return "unknown"
	}
}

// Ref names one entity by its owning container and stable position,
// never by pointer — the systems-language replacement for the source's
// pointer back-references (design note: back-references become index
// positions). A Ref is only valid against the Board it was produced from.
type Ref struct {
	Kind    Kind
	Layer   int // -1 if not layer-owned (via, element, rat live on the board)
	Element int // -1 if not element-owned
	Index   int // position within the owning Pool
}

// Entity is the minimal contract every board object satisfies: a cached
// bounding box and a flag word. Geometry-specific accessors live on the
// concrete types; callers type-switch on Kind to reach them, matching the
// design note's "tagged variant + exhaustive match" replacement for the
// source's function-pointer dispatch table.
type Entity interface {
	BBox() geom.Box
	GetFlags() Flags
	SetFlags(Flags)
}

// Via is a through-hole or buried conductor owned directly by the board.
type Via struct {
	Center      geom.Point
	Diameter    geom.Coord
	Clearance   geom.Coord
	Mask        geom.Coord
	Drill       geom.Coord
	Name        string
	BuriedFrom  int // -1 if not buried (spans every copper layer)
	BuriedTo    int
	Flags       Flags
	cachedBBox  geom.Box
}

func NewVia(center geom.Point, diameter, clearance, mask, drill geom.Coord, name string, flags Flags) *Via {
	v := &Via{Center: center, Diameter: diameter, Clearance: clearance, Mask: mask, Drill: drill, Name: name, BuriedFrom: -1, BuriedTo: -1, Flags: flags}
	v.RecomputeBBox()
	return v
}

func (v *Via) RecomputeBBox() {
	r := v.Diameter / 2
	v.cachedBBox = geom.Box{X1: v.Center.X - r, Y1: v.Center.Y - r, X2: v.Center.X + r, Y2: v.Center.Y + r}
}
func (v *Via) BBox() geom.Box      { return v.cachedBBox }
func (v *Via) GetFlags() Flags     { return v.Flags }
func (v *Via) SetFlags(f Flags)    { v.Flags = f }
func (v *Via) PiercesLayer(l int) bool {
	if v.BuriedFrom < 0 {
		return true
	}
	return l >= v.BuriedFrom && l <= v.BuriedTo
}

// Pin is a via-like conductor owned by an Element.
type Pin struct {
	Center     geom.Point
	Diameter   geom.Coord
	Clearance  geom.Coord
	Mask       geom.Coord
	Drill      geom.Coord
	Name       string
	Number     string
	Flags      Flags
	cachedBBox geom.Box
}

func NewPin(center geom.Point, diameter, clearance, mask, drill geom.Coord, name, number string, flags Flags) *Pin {
	p := &Pin{Center: center, Diameter: diameter, Clearance: clearance, Mask: mask, Drill: drill, Name: name, Number: number, Flags: flags}
	p.RecomputeBBox()
	return p
}
func (p *Pin) RecomputeBBox() {
	r := p.Diameter / 2
	p.cachedBBox = geom.Box{X1: p.Center.X - r, Y1: p.Center.Y - r, X2: p.Center.X + r, Y2: p.Center.Y + r}
}
func (p *Pin) BBox() geom.Box   { return p.cachedBBox }
func (p *Pin) GetFlags() Flags  { return p.Flags }
func (p *Pin) SetFlags(f Flags) { p.Flags = f }

// Pad is a surface-mount shape: two endpoints. Equal endpoints make it
// round; unequal make it a stadium (or, with FlagSquare, a rectangle).
type Pad struct {
	Point1, Point2 geom.Point
	Thickness      geom.Coord
	Clearance      geom.Coord
	Mask           geom.Coord
	Name           string
	Number         string
	Flags          Flags
	cachedBBox     geom.Box
}

func NewPad(p1, p2 geom.Point, thickness, clearance, mask geom.Coord, name, number string, flags Flags) *Pad {
	p := &Pad{Point1: p1, Point2: p2, Thickness: thickness, Clearance: clearance, Mask: mask, Name: name, Number: number, Flags: flags}
	p.RecomputeBBox()
	return p
}
func (p *Pad) RecomputeBBox() {
	r := p.Thickness / 2
	b := geom.BoundingBoxOfPoints([]geom.Point{p.Point1, p.Point2})
	p.cachedBBox = b.InflateBy(r)
}
func (p *Pad) BBox() geom.Box   { return p.cachedBBox }
func (p *Pad) GetFlags() Flags  { return p.Flags }
func (p *Pad) SetFlags(f Flags) { p.Flags = f }
func (p *Pad) IsRound() bool    { return p.Point1 == p.Point2 }

// Line belongs to a layer; both endpoints are mutable.
type Line struct {
	Point1, Point2 geom.Point
	Thickness      geom.Coord
	Clearance      geom.Coord
	Flags          Flags
	cachedBBox     geom.Box
}

func NewLine(p1, p2 geom.Point, thickness, clearance geom.Coord, flags Flags) (*Line, error) {
	if p1 == p2 {
		return nil, errZeroLengthLine
	}
	l := &Line{Point1: p1, Point2: p2, Thickness: thickness, Clearance: clearance, Flags: flags}
	l.RecomputeBBox()
	return l, nil
}
func (l *Line) RecomputeBBox() {
	r := l.Thickness / 2
	b := geom.BoundingBoxOfPoints([]geom.Point{l.Point1, l.Point2})
	l.cachedBBox = b.InflateBy(r)
}
func (l *Line) BBox() geom.Box   { return l.cachedBBox }
func (l *Line) GetFlags() Flags  { return l.Flags }
func (l *Line) SetFlags(f Flags) { l.Flags = f }

// Arc belongs to a layer: an ellipse center, radii, start angle, delta.
type Arc struct {
	Center         geom.Point
	Width, Height  geom.Coord
	StartAngle     geom.Angle
	Delta          geom.Angle
	Thickness      geom.Coord
	Clearance      geom.Coord
	Flags          Flags
	cachedBBox     geom.Box
}

func NewArc(center geom.Point, width, height geom.Coord, start, delta geom.Angle, thickness, clearance geom.Coord, flags Flags) *Arc {
	a := &Arc{Center: center, Width: width, Height: height, StartAngle: start, Delta: delta, Thickness: thickness, Clearance: clearance, Flags: flags}
	a.RecomputeBBox()
	return a
}
func (a *Arc) RecomputeBBox() {
	r := a.Thickness / 2
	a.cachedBBox = geom.BoundingBoxOfArc(a.Center, a.Width, a.Height, a.StartAngle, a.Delta).InflateBy(r)
}
func (a *Arc) BBox() geom.Box   { return a.cachedBBox }
func (a *Arc) GetFlags() Flags  { return a.Flags }
func (a *Arc) SetFlags(f Flags) { a.Flags = f }

// Direction is a quarter-turn count, 0..3, for Text.
type Direction uint8

// Text belongs to a layer.
type Text struct {
	Anchor     geom.Point
	Direction  Direction
	Scale      int // percent
	String     string
	Font       string
	Flags      Flags
	cachedBBox geom.Box
}

func NewText(anchor geom.Point, dir Direction, scale int, s, font string, flags Flags, measured geom.Box) *Text {
	t := &Text{Anchor: anchor, Direction: dir, Scale: scale, String: s, Font: font, Flags: flags}
	t.cachedBBox = measured
	return t
}
func (t *Text) BBox() geom.Box   { return t.cachedBBox }
func (t *Text) GetFlags() Flags  { return t.Flags }
func (t *Text) SetFlags(f Flags) { t.Flags = f }

// SetBBox overrides the cached box directly, for callers (buffer
// transforms) that move a text object without access to font metrics to
// remeasure it from scratch — the box's corners are carried through the
// same rigid transform as the anchor instead.
func (t *Text) SetBBox(box geom.Box) { t.cachedBBox = box }

// Polygon belongs to a layer. Points is the outer contour plus any holes;
// Holes gives the starting index of each hole's points within Points
// (mirroring the source's hole-index list that partitions one flat point
// array into contours). Clipped is the derived effective shape and is
// invalidated (set to nil) by any overlapping change; the clearance
// engine recomputes it via InitClip.
type Polygon struct {
	Points     []geom.Point
	Holes      []int
	Flags      Flags
	Clipped    *ClippedShape
	cachedBBox geom.Box
}

// ClippedShape is the polygon's effective shape: the declared contour
// minus clearance regions, plus thermal spokes, possibly split into
// islands by MorphPolygon.
type ClippedShape struct {
	Islands []Island
}

// Island is one connected component of a polygon's effective shape,
// itself possibly containing holes.
type Island struct {
	Contour geom.Box // bounding box fast-path; actual contour lives in the clearance engine's clipper-backed representation
	Paths   [][]geom.Point
	Area    float64
}

func NewPolygon(points []geom.Point, holes []int, flags Flags) *Polygon {
	p := &Polygon{Points: points, Holes: holes, Flags: flags}
	p.RecomputeBBox()
	return p
}
func (p *Polygon) RecomputeBBox() { p.cachedBBox = geom.BoundingBoxOfPoints(p.Points) }
func (p *Polygon) BBox() geom.Box   { return p.cachedBBox }
func (p *Polygon) GetFlags() Flags  { return p.Flags }
func (p *Polygon) SetFlags(f Flags) { p.Flags = f }

// MarkDirty invalidates the derived clipped shape; the clearance engine
// must InitClip again before IsPointInPolygon is trustworthy.
func (p *Polygon) MarkDirty() { p.Clipped = nil }

// Contours splits Points/Holes into one slice per contour (the outer
// boundary first, then each hole), for consumers that want structured
// contours rather than the flat representation.
func (p *Polygon) Contours() [][]geom.Point {
	bounds := append(append([]int{}, p.Holes...), len(p.Points))
	out := make([][]geom.Point, 0, len(bounds))
	start := 0
	for _, end := range bounds {
		out = append(out, p.Points[start:end])
		start = end
	}
	return out
}

// Rat is an unrouted connection hint between two points, tagged with the
// layer groups it spans (by name — ownership-free, per the spec's
// "net membership is read-only" invariant).
type Rat struct {
	Point1, Point2       geom.Point
	LayerGroup1, LayerGroup2 string
	Thickness            geom.Coord
	Flags                Flags
	cachedBBox           geom.Box
}

func NewRat(p1, p2 geom.Point, group1, group2 string, thickness geom.Coord, flags Flags) *Rat {
	r := &Rat{Point1: p1, Point2: p2, LayerGroup1: group1, LayerGroup2: group2, Thickness: thickness, Flags: flags}
	r.cachedBBox = geom.BoundingBoxOfPoints([]geom.Point{p1, p2})
	return r
}
func (r *Rat) BBox() geom.Box   { return r.cachedBBox }
func (r *Rat) GetFlags() Flags  { return r.Flags }
func (r *Rat) SetFlags(f Flags) { r.Flags = f }
