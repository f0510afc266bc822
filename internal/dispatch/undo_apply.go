package dispatch

import (
	"github.com/pcb-core/pcb/internal/core"
	"github.com/pcb-core/pcb/internal/geom"
	"github.com/pcb-core/pcb/internal/model"
	"github.com/pcb-core/pcb/internal/undo"
)

// applyUndoGroup reverses each entry in group, in the order PopUndoGroup
// returned them (last-applied first, so a create is reversed before an
// earlier move in the same group is reversed). Only the entry kinds the
// action registry currently produces (Create, Remove, Move) are
// implemented; every other kind is a documented no-op here rather than a
// silent wrong answer, since nothing in this registry yet produces them.
//
// Reversing a Create tombstones the live entity via removeByRef, which
// hands back the value that was detached; that value is stamped onto the
// entry in place so the matching redo (pushed from this same, now-mutated
// slice via Journal.PushRedoGroup) has something to recreate from —
// a Create entry is never given a Detached value at push time.
func applyUndoGroup(c *core.Context, group []undo.Entry) {
	for i := range group {
		e := &group[i]
		switch e.Kind {
		case undo.KindCreate:
			e.Detached = removeByRef(c, e.Ref)
		case undo.KindRemove:
			readdByRef(c, e.Ref, e.Detached)
		case undo.KindMove:
			moveByRef(c, e.Ref, -e.DX, -e.DY)
		}
	}
}

// applyRedoGroup re-applies group in original order (PopRedoGroup already
// restores that order). Symmetric to applyUndoGroup: redoing a Remove
// recaptures a fresh Detached value (in case a subsequent undo needs it
// again), and redoing a Create restores from the Detached value the
// paired applyUndoGroup call stamped in when this Create was last undone.
func applyRedoGroup(c *core.Context, group []undo.Entry) {
	for i := range group {
		e := &group[i]
		switch e.Kind {
		case undo.KindCreate:
			readdByRef(c, e.Ref, e.Detached)
		case undo.KindRemove:
			e.Detached = removeByRef(c, e.Ref)
		case undo.KindMove:
			moveByRef(c, e.Ref, e.DX, e.DY)
		}
	}
}

// removeByRef detaches ref from its owning container and the spatial
// index, returning whatever value was there (nil if ref didn't resolve)
// so the caller can stash it for a later readd.
func removeByRef(c *core.Context, ref model.Ref) any {
	var detached any
	switch ref.Kind {
	case model.KindVia:
		detached, _ = c.Board.Vias.Remove(ref.Index)
	case model.KindLine:
		if layer := c.Board.Layer(ref.Layer); layer != nil {
			detached, _ = layer.Lines.Remove(ref.Index)
		}
	case model.KindArc:
		if layer := c.Board.Layer(ref.Layer); layer != nil {
			detached, _ = layer.Arcs.Remove(ref.Index)
		}
	case model.KindPolygon:
		if layer := c.Board.Layer(ref.Layer); layer != nil {
			detached, _ = layer.Polygons.Remove(ref.Index)
		}
	case model.KindPin:
		if el := c.Board.Elements.Get(ref.Element); el != nil {
			detached, _ = el.Pins.Remove(ref.Index)
			el.RecomputeBBox()
		}
	case model.KindRat:
		detached, _ = c.Board.Rats.Remove(ref.Index)
	}
	c.Index.Delete(ref)
	return detached
}

// readdByRef re-attaches a previously detached value at its original
// identity (ref.Index, and ref.Element for element-owned kinds), the
// inverse of removeByRef.
func readdByRef(c *core.Context, ref model.Ref, detached any) {
	switch ref.Kind {
	case model.KindLine:
		layer := c.Board.Layer(ref.Layer)
		if layer == nil {
			return
		}
		l, ok := detached.(model.Line)
		if !ok {
			return
		}
		layer.Lines.Readd(ref.Index, l)
		c.Index.Insert(ref, l.BBox())
	case model.KindVia:
		v, ok := detached.(model.Via)
		if !ok {
			return
		}
		c.Board.Vias.Readd(ref.Index, v)
		c.Index.Insert(ref, v.BBox())
	case model.KindPin:
		el := c.Board.Elements.Get(ref.Element)
		if el == nil {
			return
		}
		p, ok := detached.(model.Pin)
		if !ok {
			return
		}
		el.Pins.Readd(ref.Index, p)
		c.Index.Insert(ref, p.BBox())
		el.RecomputeBBox()
	case model.KindArc:
		layer := c.Board.Layer(ref.Layer)
		if layer == nil {
			return
		}
		a, ok := detached.(model.Arc)
		if !ok {
			return
		}
		layer.Arcs.Readd(ref.Index, a)
		c.Index.Insert(ref, a.BBox())
	case model.KindPolygon:
		layer := c.Board.Layer(ref.Layer)
		if layer == nil {
			return
		}
		p, ok := detached.(model.Polygon)
		if !ok {
			return
		}
		layer.Polygons.Readd(ref.Index, p)
		c.Index.Insert(ref, p.BBox())
	case model.KindRat:
		r, ok := detached.(model.Rat)
		if !ok {
			return
		}
		c.Board.Rats.Readd(ref.Index, r)
		c.Index.Insert(ref, r.BBox())
	}
}

func moveByRef(c *core.Context, ref model.Ref, dx, dy geom.Coord) {
	if ref.Kind != model.KindLine {
		return
	}
	layer := c.Board.Layer(ref.Layer)
	if layer == nil {
		return
	}
	l := layer.Lines.Get(ref.Index)
	if l == nil {
		return
	}
	c.Index.Delete(ref)
	l.Point1 = geom.Point{X: l.Point1.X + dx, Y: l.Point1.Y + dy}
	l.Point2 = geom.Point{X: l.Point2.X + dx, Y: l.Point2.Y + dy}
	l.RecomputeBBox()
	c.Index.Insert(ref, l.BBox())
}
