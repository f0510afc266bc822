package model

import "github.com/pcb-core/pcb/internal/geom"

// LayerType tags what a layer is used for; copper layers participate in
// the clearance engine, silk/outline layers do not.
type LayerType int

const (
	LayerCopper LayerType = iota
	LayerSilk
	LayerOutline
	LayerMechanical
)

// Layer owns lines, arcs, texts, and polygons, each in its own Pool so
// positions are stable across unrelated removals.
type Layer struct {
	Name    string
	Type    LayerType
	Visible bool
	Group   string

	Lines    Pool[Line]
	Arcs     Pool[Arc]
	Texts    Pool[Text]
	Polygons Pool[Polygon]
}

// Element owns its mark point, silk lines/arcs, pins, pads, and the three
// standard texts (description, refdes, value).
type Element struct {
	Mark         geom.Point
	Description  string
	Refdes       string
	Value        string
	Attributes   map[string]string
	Flags        Flags

	SilkLines Pool[Line]
	SilkArcs  Pool[Arc]
	Pins      Pool[Pin]
	Pads      Pool[Pad]

	cachedBBox geom.Box
}

func NewElement(mark geom.Point, flags Flags) *Element {
	return &Element{Mark: mark, Flags: flags, Attributes: map[string]string{}}
}

func (e *Element) BBox() geom.Box   { return e.cachedBBox }
func (e *Element) GetFlags() Flags  { return e.Flags }
func (e *Element) SetFlags(f Flags) { e.Flags = f }

// RecomputeBBox rebuilds the element's cached box from every owned
// sub-entity, satisfying invariant 1 for composite entities.
func (e *Element) RecomputeBBox() {
	b := geom.EmptyBox()
	e.SilkLines.Each(func(_ int, l *Line) Control { b = geom.Union(b, l.BBox()); return ControlContinue })
	e.SilkArcs.Each(func(_ int, a *Arc) Control { b = geom.Union(b, a.BBox()); return ControlContinue })
	e.Pins.Each(func(_ int, p *Pin) Control { b = geom.Union(b, p.BBox()); return ControlContinue })
	e.Pads.Each(func(_ int, p *Pad) Control { b = geom.Union(b, p.BBox()); return ControlContinue })
	e.cachedBBox = b
}

// PropagateLock pushes the element's lock flag onto every pin/pad it
// owns — invariant 5. Clearing the element's lock clears its children's.
func (e *Element) PropagateLock() {
	locked := e.Flags.Test(FlagLock)
	e.Pins.Each(func(_ int, p *Pin) Control {
		p.Flags = p.Flags.Assign(FlagLock, locked)
		return ControlContinue
	})
	e.Pads.Each(func(_ int, p *Pad) Control {
		p.Flags = p.Flags.Assign(FlagLock, locked)
		return ControlContinue
	})
}

// Board is the top-level owner of every entity. Vias, elements, and rats
// live directly on the board; lines/arcs/texts/polygons live on layers.
type Board struct {
	Name               string
	MaxWidth, MaxHeight geom.Coord
	FileVersion        int

	Grid     geom.Coord
	PolyArea float64
	Thermal  ThermalStyle
	DRC      DRCSettings

	Layers     []*Layer
	LayerGroups map[string][]int // group name -> layer indices

	Vias     Pool[Via]
	Elements Pool[Element]
	Rats     Pool[Rat]

	Attributes map[string]string
	Netlist    map[string]Net // net name -> member pin identifiers
}

// DRCSettings mirrors the handful of board-global DRC knobs the board
// file format carries (full DRC policy lives in the external checker).
type DRCSettings struct {
	MinClearance geom.Coord
	MinLineWidth geom.Coord
	MinDrill     geom.Coord
}

// Net is a read-only annotation associating pin identifiers with a net
// name (invariant 6: entities know their net by name only).
type Net struct {
	Style string
	Pins  []string // "refdes-pinnumber" entries
}

func NewBoard(name string, width, height geom.Coord) *Board {
	return &Board{
		Name: name, MaxWidth: width, MaxHeight: height,
		LayerGroups: map[string][]int{},
		Attributes:  map[string]string{},
		Netlist:     map[string]Net{},
	}
}

func (b *Board) AddLayer(l *Layer) int {
	b.Layers = append(b.Layers, l)
	return len(b.Layers) - 1
}

func (b *Board) Layer(idx int) *Layer {
	if idx < 0 || idx >= len(b.Layers) {
		return nil
	}
	return b.Layers[idx]
}

// InBounds reports whether box lies within [0, max) on both axes — the
// spec is explicit that out-of-bounds boxes are legal intermediate state,
// reported by DRC rather than rejected, so this is advisory only.
func (b *Board) InBounds(box geom.Box) bool {
	return box.X1 >= 0 && box.Y1 >= 0 && box.X2 < b.MaxWidth && box.Y2 < b.MaxHeight
}

// ClearFoundAndConnected is the distinguished bulk operation connection
// tracing uses between runs; it touches every entity on the board and is
// journaled as a single atomic group by the caller (see undo.Atomic).
func (b *Board) ClearFoundAndConnected() {
	clear := func(f Flags) Flags { return f.Clear(FlagFound | FlagConnected) }
	b.Vias.Each(func(_ int, v *Via) Control { v.Flags = clear(v.Flags); return ControlContinue })
	b.Rats.Each(func(_ int, r *Rat) Control { r.Flags = clear(r.Flags); return ControlContinue })
	b.Elements.Each(func(_ int, e *Element) Control {
		e.Flags = clear(e.Flags)
		e.Pins.Each(func(_ int, p *Pin) Control { p.Flags = clear(p.Flags); return ControlContinue })
		e.Pads.Each(func(_ int, p *Pad) Control { p.Flags = clear(p.Flags); return ControlContinue })
		return ControlContinue
	})
	for _, layer := range b.Layers {
		layer.Lines.Each(func(_ int, l *Line) Control { l.Flags = clear(l.Flags); return ControlContinue })
		layer.Arcs.Each(func(_ int, a *Arc) Control { a.Flags = clear(a.Flags); return ControlContinue })
		layer.Texts.Each(func(_ int, t *Text) Control { t.Flags = clear(t.Flags); return ControlContinue })
		layer.Polygons.Each(func(_ int, p *Polygon) Control { p.Flags = clear(p.Flags); return ControlContinue })
	}
}
