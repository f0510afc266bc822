// Package core ties the model, spatial index, clearance engine, and undo
// journal together. model intentionally has no spatial or undo
// dependency, so any operation that must update all three atomically —
// add_to_layer/add_to_element/add_to_board and their removal/move
// counterparts — lives here instead (design note: the re-architecture
// keeps the data model a dumb container and pushes coordinated mutation
// up one layer, the way the source's AddObjectToUndoList call sites are
// scattered through the same few mutator functions that also update the
// spatial structures via the .tree fields).
package core

import (
	"strings"

	"github.com/pcb-core/pcb/internal/clearance"
	"github.com/pcb-core/pcb/internal/geom"
	"github.com/pcb-core/pcb/internal/model"
	"github.com/pcb-core/pcb/internal/netlist"
	"github.com/pcb-core/pcb/internal/spatial"
	"github.com/pcb-core/pcb/internal/undo"
)

// defaultRatThickness mirrors the plain trace thickness newline/newvia use
// as their own defaults; a rat-line is a visual hint, not a routed
// conductor, so it carries no clearance-engine consequence of its own.
const defaultRatThickness geom.Coord = 1000

// Context is the live editing session: one board, its spatial index, its
// clearance engine, and its undo journal, always kept in lockstep.
type Context struct {
	Board     *model.Board
	Index     *spatial.Index
	Clearance *clearance.Engine
	Undo      *undo.Journal
}

// New builds a Context over an already-loaded board, indexing it from
// scratch (the rebuild-from-list path spec 4.3 specifies for load time).
func New(b *model.Board) *Context {
	ix := spatial.BuildFromBoard(b)
	return &Context{
		Board:     b,
		Index:     ix,
		Clearance: clearance.New(b, ix),
		Undo:      undo.New(),
	}
}

// AddLineToLayer inserts l into layer, indexes it, journals a create
// entry, and marks any overlapping polygon on the same layer dirty so
// the clearance engine recomputes around the new conductor.
func (c *Context) AddLineToLayer(layerIdx int, l model.Line) (model.Ref, error) {
	layer := c.Board.Layer(layerIdx)
	if layer == nil {
		return model.Ref{}, errInvalidLayer(layerIdx)
	}
	idx := layer.Lines.Add(l)
	ref := model.Ref{Kind: model.KindLine, Layer: layerIdx, Element: -1, Index: idx}
	c.Index.Insert(ref, l.BBox())
	c.Undo.Push(undo.Entry{Kind: undo.KindCreate, Ref: ref})
	c.Clearance.ClearFromPolygon(layerIdx, clearance.Conductor{Box: l.BBox()})
	return ref, nil
}

// AddArcToLayer mirrors AddLineToLayer for arcs.
func (c *Context) AddArcToLayer(layerIdx int, a model.Arc) (model.Ref, error) {
	layer := c.Board.Layer(layerIdx)
	if layer == nil {
		return model.Ref{}, errInvalidLayer(layerIdx)
	}
	idx := layer.Arcs.Add(a)
	ref := model.Ref{Kind: model.KindArc, Layer: layerIdx, Element: -1, Index: idx}
	c.Index.Insert(ref, a.BBox())
	c.Undo.Push(undo.Entry{Kind: undo.KindCreate, Ref: ref})
	c.Clearance.ClearFromPolygon(layerIdx, clearance.Conductor{Box: a.BBox()})
	return ref, nil
}

// AddPolygonToLayer inserts poly, indexes it, journals a create entry,
// and runs InitClip immediately so the polygon's effective shape is
// correct before the next paint or hit test.
func (c *Context) AddPolygonToLayer(layerIdx int, poly model.Polygon) (model.Ref, error) {
	layer := c.Board.Layer(layerIdx)
	if layer == nil {
		return model.Ref{}, errInvalidLayer(layerIdx)
	}
	idx := layer.Polygons.Add(poly)
	ref := model.Ref{Kind: model.KindPolygon, Layer: layerIdx, Element: -1, Index: idx}
	p := layer.Polygons.Get(idx)
	c.Index.Insert(ref, p.BBox())
	c.Undo.Push(undo.Entry{Kind: undo.KindCreate, Ref: ref})
	c.Clearance.InitClip(layerIdx, p)
	return ref, nil
}

// AddViaToBoard inserts v, indexes it, journals a create entry, and
// dirties every polygon on every layer the via pierces.
func (c *Context) AddViaToBoard(v model.Via) model.Ref {
	idx := c.Board.Vias.Add(v)
	ref := model.Ref{Kind: model.KindVia, Layer: -1, Element: -1, Index: idx}
	c.Index.Insert(ref, v.BBox())
	c.Undo.Push(undo.Entry{Kind: undo.KindCreate, Ref: ref})
	for li := range c.Board.Layers {
		if v.PiercesLayer(li) {
			c.Clearance.ClearFromPolygon(li, clearance.Conductor{Box: v.BBox()})
		}
	}
	return ref
}

// AddElementToBoard inserts el and indexes its name, its pins, and its
// pads; the caller populates el's sub-pools before calling this (pins and
// pads are added to el directly and are not separately journaled here —
// Element creation is one atomic undo group per invariant 5's "element
// owns its children" rule).
func (c *Context) AddElementToBoard(el model.Element) model.Ref {
	el.RecomputeBBox()
	idx := c.Board.Elements.Add(el)
	ref := model.Ref{Kind: model.KindElement, Layer: -1, Element: idx, Index: idx}
	e := c.Board.Elements.Get(idx)
	if e.Refdes != "" {
		c.Index.Insert(ref, e.BBox())
	}
	c.Undo.Push(undo.Entry{Kind: undo.KindCreate, Ref: ref})

	e.Pins.Each(func(pi int, p *model.Pin) model.Control {
		pref := model.Ref{Kind: model.KindPin, Layer: -1, Element: idx, Index: pi}
		c.Index.Pins.Insert(p.BBox(), pref)
		for li := range c.Board.Layers {
			c.Clearance.ClearFromPolygon(li, clearance.Conductor{Box: p.BBox()})
		}
		return model.ControlContinue
	})
	e.Pads.Each(func(pi int, p *model.Pad) model.Control {
		pref := model.Ref{Kind: model.KindPad, Layer: -1, Element: idx, Index: pi}
		c.Index.InsertPad(pref, p.BBox(), p.Flags.Test(model.FlagOnSolder))
		return model.ControlContinue
	})
	return ref
}

// RemoveLine journals a remove entry (retaining the detached value for
// undo), deletes from the index, removes from the model, and dirties
// overlapping polygons via RestoreToPolygon.
func (c *Context) RemoveLine(layerIdx, index int) error {
	layer := c.Board.Layer(layerIdx)
	if layer == nil {
		return errInvalidLayer(layerIdx)
	}
	l := layer.Lines.Get(index)
	if l == nil {
		return errNotFound("line")
	}
	ref := model.Ref{Kind: model.KindLine, Layer: layerIdx, Element: -1, Index: index}
	c.Clearance.RestoreToPolygon(layerIdx, clearance.Conductor{Box: l.BBox()})
	detached, _ := layer.Lines.Remove(index)
	c.Index.Delete(ref)
	c.Undo.Push(undo.Entry{Kind: undo.KindRemove, Ref: ref, Detached: detached})
	return nil
}

// MoveLine translates a line by (dx,dy), journals the move, and updates
// both the spatial index and overlapping polygons.
func (c *Context) MoveLine(layerIdx, index int, dx, dy geom.Coord) error {
	layer := c.Board.Layer(layerIdx)
	if layer == nil {
		return errInvalidLayer(layerIdx)
	}
	l := layer.Lines.Get(index)
	if l == nil {
		return errNotFound("line")
	}
	ref := model.Ref{Kind: model.KindLine, Layer: layerIdx, Element: -1, Index: index}
	c.Clearance.RestoreToPolygon(layerIdx, clearance.Conductor{Box: l.BBox()})
	c.Index.Delete(ref)

	l.Point1 = geom.Point{X: l.Point1.X + dx, Y: l.Point1.Y + dy}
	l.Point2 = geom.Point{X: l.Point2.X + dx, Y: l.Point2.Y + dy}
	l.RecomputeBBox()

	c.Index.Insert(ref, l.BBox())
	c.Clearance.ClearFromPolygon(layerIdx, clearance.Conductor{Box: l.BBox()})
	c.Undo.Push(undo.Entry{Kind: undo.KindMove, Ref: ref, DX: dx, DY: dy})
	return nil
}

// RemoveVia mirrors RemoveLine for board-wide vias: it restores clearance
// on every layer the via pierces before detaching it, since a via (unlike
// a line) is not owned by a single layer.
func (c *Context) RemoveVia(index int) error {
	v := c.Board.Vias.Get(index)
	if v == nil {
		return errNotFound("via")
	}
	if v.Flags.Test(model.FlagLock) {
		return errLocked("via")
	}
	ref := model.Ref{Kind: model.KindVia, Layer: -1, Element: -1, Index: index}
	for li := range c.Board.Layers {
		if v.PiercesLayer(li) {
			c.Clearance.RestoreToPolygon(li, clearance.Conductor{Box: v.BBox()})
		}
	}
	detached, _ := c.Board.Vias.Remove(index)
	c.Index.Delete(ref)
	c.Undo.Push(undo.Entry{Kind: undo.KindRemove, Ref: ref, Detached: detached})
	return nil
}

// RemovePin detaches a pin from its owning element, restoring clearance on
// every layer (pins, like vias, pierce every copper layer) before the pin
// leaves the spatial index. The lock flag refuses removal the same way it
// refuses a via's.
func (c *Context) RemovePin(elementIdx, pinIdx int) error {
	el := c.Board.Elements.Get(elementIdx)
	if el == nil {
		return errNotFound("element")
	}
	p := el.Pins.Get(pinIdx)
	if p == nil {
		return errNotFound("pin")
	}
	if p.Flags.Test(model.FlagLock) {
		return errLocked("pin")
	}
	ref := model.Ref{Kind: model.KindPin, Layer: -1, Element: elementIdx, Index: pinIdx}
	for li := range c.Board.Layers {
		c.Clearance.RestoreToPolygon(li, clearance.Conductor{Box: p.BBox()})
	}
	detached, _ := el.Pins.Remove(pinIdx)
	c.Index.Delete(ref)
	el.RecomputeBBox()
	c.Undo.Push(undo.Entry{Kind: undo.KindRemove, Ref: ref, Detached: detached})
	return nil
}

// findPinPoint resolves a "refdes-pinnumber" net member string (the
// identifier form netlist.Net.Pins uses) to that pin's center point,
// scanning elements by Refdes and then pins by Number. Reports false if
// either half of the identifier doesn't resolve.
func (c *Context) findPinPoint(member string) (geom.Point, bool) {
	refdes, number, ok := strings.Cut(member, "-")
	if !ok {
		return geom.Point{}, false
	}
	var found geom.Point
	var ok2 bool
	c.Board.Elements.Each(func(_ int, el *model.Element) model.Control {
		if !strings.EqualFold(el.Refdes, refdes) {
			return model.ControlContinue
		}
		el.Pins.Each(func(_ int, p *model.Pin) model.Control {
			if p.Number != number {
				return model.ControlContinue
			}
			found = p.Center
			ok2 = true
			return model.ControlStop
		})
		return model.ControlStop
	})
	return found, ok2
}

// ImportNetlist records nets as the board's netlist (last-write-wins on
// conflicting names, matching netlist.ToBoardNetlist) and creates a rat
// line between each consecutive pair of resolved pin positions in a net,
// so the editor has something to display before the first trace is
// routed. Unresolved members (refdes or pin number not present on the
// board) are skipped rather than failing the whole import, since a
// netlist commonly references parts not yet placed. The whole import is
// one atomic undo group. It returns the number of rats created.
func (c *Context) ImportNetlist(nets []netlist.Net) int {
	c.Board.Netlist = netlist.ToBoardNetlist(nets)
	snap := c.Undo.Save()
	created := 0
	for _, net := range nets {
		var prev geom.Point
		havePrev := false
		for _, member := range net.Pins {
			p, ok := c.findPinPoint(member)
			if !ok {
				continue
			}
			if havePrev {
				rat := model.NewRat(prev, p, "", "", defaultRatThickness, model.Flags{})
				idx := c.Board.Rats.Add(*rat)
				ref := model.Ref{Kind: model.KindRat, Layer: -1, Element: -1, Index: idx}
				c.Index.Insert(ref, rat.BBox())
				c.Undo.Push(undo.Entry{Kind: undo.KindCreate, Ref: ref})
				created++
			}
			prev, havePrev = p, true
		}
	}
	if created == 0 {
		c.Undo.Restore(snap)
	} else {
		c.Undo.Close(snap)
	}
	return created
}

// RecomputeDirtyPolygons should be called once after an Atomic group
// closes, so a batch of moves recomputes each affected polygon's clipped
// shape exactly once rather than after every individual mutation (spec
// 4.4's allowance for paired Restore/Clear batching around a move).
func (c *Context) RecomputeDirtyPolygons() {
	c.Clearance.RecomputeDirty()
}
