package dispatch

import (
	"math"
	"os"
	"strconv"

	"github.com/pcb-core/pcb/internal/boardfile"
	"github.com/pcb-core/pcb/internal/core"
	"github.com/pcb-core/pcb/internal/geom"
	"github.com/pcb-core/pcb/internal/model"
)

// PasteBuffer holds a detached copy of a selection, grounded on
// buffer.c's BufferType: an off-board scratch Board plus a cached
// bounding box, so paste-to-layout can reuse the normal
// add-to-layer/board operations once the buffer's contents are
// translated to the paste point.
type PasteBuffer struct {
	Board *model.Board
	BBox  geom.Box
}

// Clear empties the buffer (buffer.c's ClearBuffer).
func (b *PasteBuffer) Clear() {
	b.Board = nil
	b.BBox = geom.EmptyBox()
}

// IsEmpty reports whether the buffer holds nothing, either because it
// was never loaded or Clear ran.
func (b *PasteBuffer) IsEmpty() bool {
	return b.Board == nil
}

// SetBoundingBox recomputes BBox from the buffer board's contents
// (buffer.c's SetBufferBoundingBox), called after any mutation of the
// buffer's board (add, mirror, rotate, smash).
func (b *PasteBuffer) SetBoundingBox() {
	if b.Board == nil {
		b.BBox = geom.EmptyBox()
		return
	}
	box := geom.EmptyBox()
	b.Board.Vias.Each(func(_ int, v *model.Via) model.Control { box = geom.Union(box, v.BBox()); return model.ControlContinue })
	b.Board.Elements.Each(func(_ int, e *model.Element) model.Control { box = geom.Union(box, e.BBox()); return model.ControlContinue })
	for _, layer := range b.Board.Layers {
		layer.Lines.Each(func(_ int, l *model.Line) model.Control { box = geom.Union(box, l.BBox()); return model.ControlContinue })
		layer.Arcs.Each(func(_ int, a *model.Arc) model.Control { box = geom.Union(box, a.BBox()); return model.ControlContinue })
		layer.Polygons.Each(func(_ int, p *model.Polygon) model.Control { box = geom.Union(box, p.BBox()); return model.ControlContinue })
		layer.Texts.Each(func(_ int, t *model.Text) model.Control { box = geom.Union(box, t.BBox()); return model.ControlContinue })
	}
	b.BBox = box
}

// transformBox maps box's two corners through xf and rebuilds a
// normalized box from them, valid for the axis-preserving transforms
// (90-degree rotation and axis mirroring) Mirror/Rotate90 apply.
func transformBox(box geom.Box, xf func(geom.Point) geom.Point) geom.Box {
	p1 := xf(geom.Point{X: box.X1, Y: box.Y1})
	p2 := xf(geom.Point{X: box.X2, Y: box.Y2})
	return geom.BoundingBoxOfPoints([]geom.Point{p1, p2})
}

// transformElement moves an element's Mark and every owned pin/pad/silk
// entity through xf, so a buffer holding footprints transforms as one
// rigid body instead of leaving its sub-entities behind.
func transformElement(e *model.Element, xf func(geom.Point) geom.Point) {
	e.Mark = xf(e.Mark)
	e.Pins.Each(func(_ int, p *model.Pin) model.Control {
		p.Center = xf(p.Center)
		p.RecomputeBBox()
		return model.ControlContinue
	})
	e.Pads.Each(func(_ int, p *model.Pad) model.Control {
		p.Point1, p.Point2 = xf(p.Point1), xf(p.Point2)
		p.RecomputeBBox()
		return model.ControlContinue
	})
	e.SilkLines.Each(func(_ int, l *model.Line) model.Control {
		l.Point1, l.Point2 = xf(l.Point1), xf(l.Point2)
		l.RecomputeBBox()
		return model.ControlContinue
	})
	e.SilkArcs.Each(func(_ int, a *model.Arc) model.Control {
		a.Center = xf(a.Center)
		a.RecomputeBBox()
		return model.ControlContinue
	})
	e.RecomputeBBox()
}

// transformAll applies xf (a rigid, axis-preserving transform) to every
// entity kind the buffer board can hold, and rotQuarters quarter turns
// to angle-bearing entities (arcs, text); rotQuarters is 0 for Mirror
// and Translate, which don't turn anything.
func (b *PasteBuffer) transformAll(xf func(geom.Point) geom.Point, rotQuarters int) {
	b.Board.Vias.Each(func(_ int, v *model.Via) model.Control {
		v.Center = xf(v.Center)
		v.RecomputeBBox()
		return model.ControlContinue
	})
	b.Board.Elements.Each(func(_ int, e *model.Element) model.Control {
		transformElement(e, xf)
		return model.ControlContinue
	})
	for _, layer := range b.Board.Layers {
		layer.Lines.Each(func(_ int, l *model.Line) model.Control {
			l.Point1, l.Point2 = xf(l.Point1), xf(l.Point2)
			l.RecomputeBBox()
			return model.ControlContinue
		})
		layer.Arcs.Each(func(_ int, a *model.Arc) model.Control {
			a.Center = xf(a.Center)
			a.StartAngle = (a.StartAngle + geom.Angle(90*rotQuarters)).Normalize()
			a.RecomputeBBox()
			return model.ControlContinue
		})
		layer.Polygons.Each(func(_ int, p *model.Polygon) model.Control {
			for i, pt := range p.Points {
				p.Points[i] = xf(pt)
			}
			p.RecomputeBBox()
			p.MarkDirty()
			return model.ControlContinue
		})
		layer.Texts.Each(func(_ int, t *model.Text) model.Control {
			t.Anchor = xf(t.Anchor)
			t.Direction = model.Direction((int(t.Direction) + rotQuarters) % 4)
			t.SetBBox(transformBox(t.BBox(), xf))
			return model.ControlContinue
		})
	}
}

// Mirror flips every entity in the buffer across a horizontal axis
// (buffer.c's MirrorBuffer), used before pasting to the back of the
// board. A flip reverses the sense of every arc sweep, so arc angles
// are negated rather than quarter-turned.
func (b *PasteBuffer) Mirror() {
	if b.Board == nil {
		return
	}
	mirrorY := func(p geom.Point) geom.Point { return geom.Point{X: p.X, Y: -p.Y} }
	b.transformAll(mirrorY, 0)
	for _, layer := range b.Board.Layers {
		layer.Arcs.Each(func(_ int, a *model.Arc) model.Control {
			a.StartAngle = (-a.StartAngle - a.Delta).Normalize()
			a.Delta = -a.Delta
			a.RecomputeBBox()
			return model.ControlContinue
		})
	}
	b.SetBoundingBox()
}

// Rotate90 turns every entity in the buffer by n quarter turns about the
// buffer's own bounding-box center (buffer.c's RotateBuffer).
func (b *PasteBuffer) Rotate90(n int) {
	if b.Board == nil {
		return
	}
	n = ((n % 4) + 4) % 4
	cx := (b.BBox.X1 + b.BBox.X2) / 2
	cy := (b.BBox.Y1 + b.BBox.Y2) / 2
	rot := func(p geom.Point) geom.Point {
		x, y := p.X-cx, p.Y-cy
		for i := 0; i < n; i++ {
			x, y = -y, x
		}
		return geom.Point{X: x + cx, Y: y + cy}
	}
	b.transformAll(rot, n)
	b.SetBoundingBox()
}

// Translate shifts every entity in the buffer by (dx,dy), the step
// paste-to-layout uses to move the buffer's own origin to the cursor
// before handing entities to core.Context's add operations.
func (b *PasteBuffer) Translate(dx, dy geom.Coord) {
	if b.Board == nil {
		return
	}
	shift := func(p geom.Point) geom.Point { return geom.Point{X: p.X + dx, Y: p.Y + dy} }
	b.transformAll(shift, 0)
	b.SetBoundingBox()
}

// SmashElement flattens an element in the buffer into bare silk lines and
// arcs on the buffer's first layer, discarding the element with its pins,
// pads and texts (buffer.c's SmashBufferElement) — used when a footprint
// needs to be edited as raw silk rather than as a single element.
func (b *PasteBuffer) SmashElement(idx int) {
	if b.Board == nil {
		return
	}
	el := b.Board.Elements.Get(idx)
	if el == nil {
		return
	}
	if len(b.Board.Layers) == 0 {
		return
	}
	silk := b.Board.Layer(0)
	el.SilkLines.Each(func(_ int, l *model.Line) model.Control {
		silk.Lines.Add(*l)
		return model.ControlContinue
	})
	el.SilkArcs.Each(func(_ int, a *model.Arc) model.Control {
		silk.Arcs.Add(*a)
		return model.ControlContinue
	})
	b.Board.Elements.Remove(idx)
	b.SetBoundingBox()
}

// clonePolygon copies p with its own Points/Holes backing arrays and a
// cleared Clipped cache, since a bare struct copy would alias the
// original's slices — a later transform or clip on one copy would
// corrupt the other.
func clonePolygon(p *model.Polygon, clearSelected bool) model.Polygon {
	np := model.Polygon{Flags: p.Flags, Points: append([]geom.Point(nil), p.Points...), Holes: append([]int(nil), p.Holes...)}
	if clearSelected {
		np.Flags = np.Flags.Clear(model.FlagSelected)
	}
	return np
}

// ensureBoard lazily builds the buffer's scratch board, mirroring src's
// layer stack (name/type/visibility/group, no contents) so later copies
// land on a layer of the right kind.
func (b *PasteBuffer) ensureBoard(src *model.Board) {
	if b.Board != nil {
		return
	}
	b.Board = model.NewBoard("", src.MaxWidth, src.MaxHeight)
	for _, l := range src.Layers {
		b.Board.AddLayer(&model.Layer{Name: l.Name, Type: l.Type, Visible: l.Visible, Group: l.Group})
	}
}

// copyElement deep-copies e's owned pools into a new Element rather than
// copying the struct directly, since Pool[T] holds a slice a shallow
// struct copy would alias with the source.
func copyElement(e *model.Element) *model.Element {
	ne := model.NewElement(e.Mark, e.Flags.Clear(model.FlagSelected))
	ne.Description, ne.Refdes, ne.Value = e.Description, e.Refdes, e.Value
	for k, v := range e.Attributes {
		ne.Attributes[k] = v
	}
	e.SilkLines.Each(func(_ int, l *model.Line) model.Control { ne.SilkLines.Add(*l); return model.ControlContinue })
	e.SilkArcs.Each(func(_ int, a *model.Arc) model.Control { ne.SilkArcs.Add(*a); return model.ControlContinue })
	e.Pins.Each(func(_ int, p *model.Pin) model.Control {
		np := *p
		np.Flags = np.Flags.Clear(model.FlagSelected)
		ne.Pins.Add(np)
		return model.ControlContinue
	})
	e.Pads.Each(func(_ int, p *model.Pad) model.Control {
		npad := *p
		npad.Flags = npad.Flags.Clear(model.FlagSelected)
		ne.Pads.Add(npad)
		return model.ControlContinue
	})
	ne.RecomputeBBox()
	return ne
}

// AddSelected copies every entity on src carrying FlagSelected into the
// buffer, clearing the selected bit on the copies (buffer.c's
// AddSelectedToBuffer) — used to build the buffer from the current
// selection before a rotate/mirror/paste sequence.
func (b *PasteBuffer) AddSelected(src *model.Board) {
	b.ensureBoard(src)
	src.Vias.Each(func(_ int, v *model.Via) model.Control {
		if v.Flags.Test(model.FlagSelected) {
			nv := *v
			nv.Flags = nv.Flags.Clear(model.FlagSelected)
			b.Board.Vias.Add(nv)
		}
		return model.ControlContinue
	})
	src.Elements.Each(func(_ int, e *model.Element) model.Control {
		if e.Flags.Test(model.FlagSelected) {
			b.Board.Elements.Add(*copyElement(e))
		}
		return model.ControlContinue
	})
	for li, layer := range src.Layers {
		dst := b.Board.Layer(li)
		if dst == nil {
			continue
		}
		layer.Lines.Each(func(_ int, l *model.Line) model.Control {
			if l.Flags.Test(model.FlagSelected) {
				nl := *l
				nl.Flags = nl.Flags.Clear(model.FlagSelected)
				dst.Lines.Add(nl)
			}
			return model.ControlContinue
		})
		layer.Arcs.Each(func(_ int, a *model.Arc) model.Control {
			if a.Flags.Test(model.FlagSelected) {
				na := *a
				na.Flags = na.Flags.Clear(model.FlagSelected)
				dst.Arcs.Add(na)
			}
			return model.ControlContinue
		})
		layer.Polygons.Each(func(_ int, p *model.Polygon) model.Control {
			if p.Flags.Test(model.FlagSelected) {
				dst.Polygons.Add(clonePolygon(p, true))
			}
			return model.ControlContinue
		})
		layer.Texts.Each(func(_ int, t *model.Text) model.Control {
			if t.Flags.Test(model.FlagSelected) {
				nt := *t
				nt.Flags = nt.Flags.Clear(model.FlagSelected)
				dst.Texts.Add(nt)
			}
			return model.ControlContinue
		})
	}
	b.SetBoundingBox()
}

// FreeRotate turns every entity in the buffer by an arbitrary angle about
// the buffer's own bounding-box center (buffer.c's RotateBufferAngle). Arc
// sweeps are untouched since an arbitrary rotation doesn't preserve the
// quarter-turn alignment Rotate90 relies on for Direction/thermal byte
// indexing — only the arc's center and start angle move.
func (b *PasteBuffer) FreeRotate(angle geom.Angle) {
	if b.Board == nil {
		return
	}
	cx := (b.BBox.X1 + b.BBox.X2) / 2
	cy := (b.BBox.Y1 + b.BBox.Y2) / 2
	rad := float64(angle.Normalize()) * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	rot := func(p geom.Point) geom.Point {
		x, y := float64(p.X-cx), float64(p.Y-cy)
		nx := x*cos - y*sin
		ny := x*sin + y*cos
		return geom.Point{X: cx + geom.Coord(nx), Y: cy + geom.Coord(ny)}
	}
	for _, layer := range b.Board.Layers {
		layer.Arcs.Each(func(_ int, a *model.Arc) model.Control {
			a.StartAngle = (a.StartAngle + angle).Normalize()
			return model.ControlContinue
		})
	}
	b.transformAll(rot, 0)
	b.SetBoundingBox()
}

// SaveToFile writes the buffer's contents to path as a standalone board
// file (buffer.c's SaveBufferElements), reusing the same codec layout
// loads use so a saved buffer round-trips through loadOrNewBoard.
func (b *PasteBuffer) SaveToFile(path string) error {
	if b.Board == nil {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return boardfile.Write(f, b.Board)
}

// PasteToLayout translates the buffer so its bounding box's lower-left
// corner lands at (x,y) and inserts its vias, elements, lines, arcs and
// polygons into c's board through the normal Add* operations, so the
// paste is undoable and clearance-aware exactly like a freehand add
// (buffer.c's CopyPastebufferToLayout). Texts in the buffer are not
// pasted. The whole paste is one atomic undo group.
func (b *PasteBuffer) PasteToLayout(c *core.Context, x, y geom.Coord) {
	if b.Board == nil {
		return
	}
	dx, dy := x-b.BBox.X1, y-b.BBox.Y1
	b.Translate(dx, dy)

	snap := c.Undo.Save()
	b.Board.Vias.Each(func(_ int, v *model.Via) model.Control {
		c.AddViaToBoard(*v)
		return model.ControlContinue
	})
	b.Board.Elements.Each(func(_ int, e *model.Element) model.Control {
		c.AddElementToBoard(*copyElement(e))
		return model.ControlContinue
	})
	for li, layer := range b.Board.Layers {
		layer.Lines.Each(func(_ int, l *model.Line) model.Control {
			c.AddLineToLayer(li, *l)
			return model.ControlContinue
		})
		layer.Arcs.Each(func(_ int, a *model.Arc) model.Control {
			c.AddArcToLayer(li, *a)
			return model.ControlContinue
		})
		layer.Polygons.Each(func(_ int, p *model.Polygon) model.Control {
			c.AddPolygonToLayer(li, clonePolygon(p, false))
			return model.ControlContinue
		})
	}
	c.Undo.Close(snap)
	c.RecomputeDirtyPolygons()
}

// Convert folds the buffer's loose geometry into a single new Element
// (buffer.c's ConvertBufferToElement): vias become pins, free lines on
// copper layers become pads, axis-aligned polygons with aspect ratio at
// least 1 become square pads, and every silk line/arc becomes part of the
// element's outline. The buffer is left holding just the new element.
func (b *PasteBuffer) Convert() {
	if b.Board == nil {
		return
	}
	el := model.NewElement(geom.Point{X: b.BBox.X1, Y: b.BBox.Y1}, model.Flags{})
	pinNum := 0
	b.Board.Vias.Each(func(_ int, v *model.Via) model.Control {
		pinNum++
		pin := model.NewPin(v.Center, v.Diameter, v.Clearance, v.Mask, v.Drill, v.Name, strconv.Itoa(pinNum), model.Flags{})
		el.Pins.Add(*pin)
		return model.ControlContinue
	})
	for _, layer := range b.Board.Layers {
		isCopper := layer.Type == model.LayerCopper
		layer.Lines.Each(func(_ int, l *model.Line) model.Control {
			if isCopper {
				pinNum++
				pad := model.NewPad(l.Point1, l.Point2, l.Thickness, l.Clearance, 0, "", strconv.Itoa(pinNum), model.Flags{})
				el.Pads.Add(*pad)
			} else {
				el.SilkLines.Add(*l)
			}
			return model.ControlContinue
		})
		layer.Arcs.Each(func(_ int, a *model.Arc) model.Control {
			if !isCopper {
				el.SilkArcs.Add(*a)
			}
			return model.ControlContinue
		})
		layer.Polygons.Each(func(_ int, p *model.Polygon) model.Control {
			if !isCopper || len(p.Points) != 4 {
				return model.ControlContinue
			}
			for i, a := range p.Points {
				if b := p.Points[(i+1)%4]; a.X != b.X && a.Y != b.Y {
					return model.ControlContinue
				}
			}
			box := p.BBox()
			w, h := box.X2-box.X1, box.Y2-box.Y1
			if h == 0 {
				return model.ControlContinue
			}
			aspect := float64(w) / float64(h)
			if aspect < 1 {
				aspect = 1 / aspect
			}
			if aspect >= 1 {
				pinNum++
				side := w
				if h > side {
					side = h
				}
				center := geom.Point{X: (box.X1 + box.X2) / 2, Y: (box.Y1 + box.Y2) / 2}
				pad := model.NewPad(center, center, side, 0, 0, "", strconv.Itoa(pinNum), model.MakeFlags(model.FlagSquare))
				el.Pads.Add(*pad)
			}
			return model.ControlContinue
		})
	}
	el.RecomputeBBox()
	b.Board = model.NewBoard("", b.Board.MaxWidth, b.Board.MaxHeight)
	b.Board.Elements.Add(*el)
	b.SetBoundingBox()
}
