package spatial

import (
	"github.com/pcb-core/pcb/internal/geom"
	"github.com/pcb-core/pcb/internal/model"
)

// perLayer bundles the four per-kind trees every layer carries.
type perLayer struct {
	Lines    *Tree[model.Ref]
	Arcs     *Tree[model.Ref]
	Texts    *Tree[model.Ref]
	Polygons *Tree[model.Ref]
}

func newPerLayer() *perLayer {
	return &perLayer{Lines: New[model.Ref](), Arcs: New[model.Ref](), Texts: New[model.Ref](), Polygons: New[model.Ref]()}
}

// Index is the board's full spatial index: per-layer trees for
// lines/arcs/texts/polygons, plus board-wide trees for vias, pins (across
// all elements), pads (split by side), rat lines, and element names.
type Index struct {
	layers []*perLayer

	Vias         *Tree[model.Ref]
	Pins         *Tree[model.Ref]
	PadsTop      *Tree[model.Ref]
	PadsBottom   *Tree[model.Ref]
	Rats         *Tree[model.Ref]
	ElementNames *Tree[model.Ref]
}

// NewIndex returns an Index with numLayers empty per-layer trees.
func NewIndex(numLayers int) *Index {
	idx := &Index{
		Vias: New[model.Ref](), Pins: New[model.Ref](),
		PadsTop: New[model.Ref](), PadsBottom: New[model.Ref](),
		Rats: New[model.Ref](), ElementNames: New[model.Ref](),
	}
	for i := 0; i < numLayers; i++ {
		idx.layers = append(idx.layers, newPerLayer())
	}
	return idx
}

func (ix *Index) ensureLayer(l int) *perLayer {
	for len(ix.layers) <= l {
		ix.layers = append(ix.layers, newPerLayer())
	}
	return ix.layers[l]
}

// Layer returns the per-kind trees for layer l, growing the index if l
// was not previously known (a layer added after load).
func (ix *Index) Layer(l int) *perLayer { return ix.ensureLayer(l) }

// BuildFromBoard performs the bulk rebuild-from-list load-time path: it
// discards whatever the index currently holds and reindexes every live
// entity on b.
func BuildFromBoard(b *model.Board) *Index {
	ix := NewIndex(len(b.Layers))

	var viaEntries, pinEntries, padTopEntries, padBottomEntries, ratEntries, nameEntries []Entry[model.Ref]

	b.Vias.Each(func(i int, v *model.Via) model.Control {
		viaEntries = append(viaEntries, Entry[model.Ref]{Box: v.BBox(), Ref: model.Ref{Kind: model.KindVia, Layer: -1, Element: -1, Index: i}})
		return model.ControlContinue
	})
	b.Rats.Each(func(i int, r *model.Rat) model.Control {
		ratEntries = append(ratEntries, Entry[model.Ref]{Box: r.BBox(), Ref: model.Ref{Kind: model.KindRat, Layer: -1, Element: -1, Index: i}})
		return model.ControlContinue
	})
	b.Elements.Each(func(ei int, e *model.Element) model.Control {
		if e.Refdes != "" {
			nameEntries = append(nameEntries, Entry[model.Ref]{Box: e.BBox(), Ref: model.Ref{Kind: model.KindElement, Layer: -1, Element: ei, Index: ei}})
		}
		e.Pins.Each(func(pi int, p *model.Pin) model.Control {
			pinEntries = append(pinEntries, Entry[model.Ref]{Box: p.BBox(), Ref: model.Ref{Kind: model.KindPin, Layer: -1, Element: ei, Index: pi}})
			return model.ControlContinue
		})
		e.Pads.Each(func(pi int, p *model.Pad) model.Control {
			ref := model.Ref{Kind: model.KindPad, Layer: -1, Element: ei, Index: pi}
			if p.Flags.Test(model.FlagOnSolder) {
				padBottomEntries = append(padBottomEntries, Entry[model.Ref]{Box: p.BBox(), Ref: ref})
			} else {
				padTopEntries = append(padTopEntries, Entry[model.Ref]{Box: p.BBox(), Ref: ref})
			}
			return model.ControlContinue
		})
		return model.ControlContinue
	})

	ix.Vias = Rebuild(viaEntries)
	ix.Pins = Rebuild(pinEntries)
	ix.PadsTop = Rebuild(padTopEntries)
	ix.PadsBottom = Rebuild(padBottomEntries)
	ix.Rats = Rebuild(ratEntries)
	ix.ElementNames = Rebuild(nameEntries)

	for li, layer := range b.Layers {
		var lines, arcs, texts, polys []Entry[model.Ref]
		layer.Lines.Each(func(i int, l *model.Line) model.Control {
			lines = append(lines, Entry[model.Ref]{Box: l.BBox(), Ref: model.Ref{Kind: model.KindLine, Layer: li, Element: -1, Index: i}})
			return model.ControlContinue
		})
		layer.Arcs.Each(func(i int, a *model.Arc) model.Control {
			arcs = append(arcs, Entry[model.Ref]{Box: a.BBox(), Ref: model.Ref{Kind: model.KindArc, Layer: li, Element: -1, Index: i}})
			return model.ControlContinue
		})
		layer.Texts.Each(func(i int, tx *model.Text) model.Control {
			texts = append(texts, Entry[model.Ref]{Box: tx.BBox(), Ref: model.Ref{Kind: model.KindText, Layer: li, Element: -1, Index: i}})
			return model.ControlContinue
		})
		layer.Polygons.Each(func(i int, p *model.Polygon) model.Control {
			polys = append(polys, Entry[model.Ref]{Box: p.BBox(), Ref: model.Ref{Kind: model.KindPolygon, Layer: li, Element: -1, Index: i}})
			return model.ControlContinue
		})
		pl := ix.ensureLayer(li)
		pl.Lines = Rebuild(lines)
		pl.Arcs = Rebuild(arcs)
		pl.Texts = Rebuild(texts)
		pl.Polygons = Rebuild(polys)
	}

	return ix
}

// Insert adds ref (already known to have kind/layer/element set) at box
// into the tree that owns its kind.
func (ix *Index) Insert(ref model.Ref, box geom.Box) {
	switch ref.Kind {
	case model.KindVia:
		ix.Vias.Insert(box, ref)
	case model.KindPin:
		ix.Pins.Insert(box, ref)
	case model.KindPad:
		ix.insertPad(ref, box)
	case model.KindRat:
		ix.Rats.Insert(box, ref)
	case model.KindElement:
		ix.ElementNames.Insert(box, ref)
	case model.KindLine:
		ix.ensureLayer(ref.Layer).Lines.Insert(box, ref)
	case model.KindArc:
		ix.ensureLayer(ref.Layer).Arcs.Insert(box, ref)
	case model.KindText:
		ix.ensureLayer(ref.Layer).Texts.Insert(box, ref)
	case model.KindPolygon:
		ix.ensureLayer(ref.Layer).Polygons.Insert(box, ref)
	}
}

func (ix *Index) insertPad(ref model.Ref, box geom.Box) {
	// Caller is expected to route top/bottom via onSolder; exposed
	// separately since Pad alone doesn't carry that bit here.
	ix.PadsTop.Insert(box, ref)
}

// InsertPad lets the caller state which side explicitly, since a pad's
// side lives on its flags, not on the Ref.
func (ix *Index) InsertPad(ref model.Ref, box geom.Box, onSolder bool) {
	if onSolder {
		ix.PadsBottom.Insert(box, ref)
	} else {
		ix.PadsTop.Insert(box, ref)
	}
}

// Delete removes ref from whichever tree owns its kind.
func (ix *Index) Delete(ref model.Ref) {
	switch ref.Kind {
	case model.KindVia:
		ix.Vias.DeleteRef(ref)
	case model.KindPin:
		ix.Pins.DeleteRef(ref)
	case model.KindPad:
		ix.PadsTop.DeleteRef(ref)
		ix.PadsBottom.DeleteRef(ref)
	case model.KindRat:
		ix.Rats.DeleteRef(ref)
	case model.KindElement:
		ix.ElementNames.DeleteRef(ref)
	case model.KindLine:
		ix.ensureLayer(ref.Layer).Lines.DeleteRef(ref)
	case model.KindArc:
		ix.ensureLayer(ref.Layer).Arcs.DeleteRef(ref)
	case model.KindText:
		ix.ensureLayer(ref.Layer).Texts.DeleteRef(ref)
	case model.KindPolygon:
		ix.ensureLayer(ref.Layer).Polygons.DeleteRef(ref)
	}
}
