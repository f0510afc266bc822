package dispatch

import (
	"regexp"
	"strings"

	"github.com/pcb-core/pcb/internal/core"
	"github.com/pcb-core/pcb/internal/geom"
	"github.com/pcb-core/pcb/internal/model"
	"github.com/pcb-core/pcb/internal/spatial"
)

func searchInto(tr *spatial.Tree[model.Ref], region geom.Box, out *[]model.Ref) {
	tr.Search(region, func(e spatial.Entry[model.Ref]) spatial.Control {
		*out = append(*out, e.Ref)
		return spatial.ControlContinue
	})
}

// SearchScreen finds every entity whose bounding box contains p, in the
// spec's documented hit-test priority: pins/vias/pads first, so a
// conductor endpoint wins a tie against the trace it terminates, then
// lines/arcs/text/polygons per layer, then rat lines last.
func SearchScreen(c *core.Context, p geom.Point) []model.Ref {
	region := geom.Box{X1: p.X, Y1: p.Y, X2: p.X, Y2: p.Y}
	var hits []model.Ref

	searchInto(c.Index.Vias, region, &hits)
	searchInto(c.Index.Pins, region, &hits)
	searchInto(c.Index.PadsTop, region, &hits)
	searchInto(c.Index.PadsBottom, region, &hits)
	for li := range c.Board.Layers {
		pl := c.Index.Layer(li)
		searchInto(pl.Lines, region, &hits)
		searchInto(pl.Arcs, region, &hits)
		searchInto(pl.Texts, region, &hits)
		searchInto(pl.Polygons, region, &hits)
	}
	searchInto(c.Index.Rats, region, &hits)
	return hits
}

// SelectObject toggles (or forces, when force != nil) the FlagSelected
// bit on the single entity SearchScreen finds at p, returning the ref it
// touched and whether anything was found.
func SelectObject(c *core.Context, p geom.Point, force *bool) (model.Ref, bool) {
	hits := SearchScreen(c, p)
	if len(hits) == 0 {
		return model.Ref{}, false
	}
	ref := hits[0]
	setFlagOnRef(c, ref, model.FlagSelected, force)
	return ref, true
}

// SelectBlock selects every entity whose bounding box is fully contained
// in the marquee region (box.Contains semantics), the usual
// drag-a-rectangle selection gesture.
func SelectBlock(c *core.Context, region geom.Box, force *bool) []model.Ref {
	var touched []model.Ref
	visit := func(tr *spatial.Tree[model.Ref]) {
		for _, e := range tr.All() {
			if geom.Contains(region, e.Box) {
				setFlagOnRef(c, e.Ref, model.FlagSelected, force)
				touched = append(touched, e.Ref)
			}
		}
	}
	visit(c.Index.Vias)
	visit(c.Index.Pins)
	visit(c.Index.PadsTop)
	visit(c.Index.PadsBottom)
	for li := range c.Board.Layers {
		pl := c.Index.Layer(li)
		visit(pl.Lines)
		visit(pl.Arcs)
		visit(pl.Texts)
		visit(pl.Polygons)
	}
	visit(c.Index.Rats)
	return touched
}

// SelectByFlag selects every entity already carrying every bit in mask —
// used, for instance, to re-select everything the last connection trace
// marked FlagFound.
func SelectByFlag(c *core.Context, mask model.Flag) []model.Ref {
	var touched []model.Ref
	c.Board.Vias.Each(func(i int, v *model.Via) model.Control {
		if v.Flags.Test(mask) {
			v.Flags = v.Flags.Set(model.FlagSelected)
			touched = append(touched, model.Ref{Kind: model.KindVia, Layer: -1, Element: -1, Index: i})
		}
		return model.ControlContinue
	})
	for li, layer := range c.Board.Layers {
		layer.Lines.Each(func(i int, l *model.Line) model.Control {
			if l.Flags.Test(mask) {
				l.Flags = l.Flags.Set(model.FlagSelected)
				touched = append(touched, model.Ref{Kind: model.KindLine, Layer: li, Element: -1, Index: i})
			}
			return model.ControlContinue
		})
	}
	return touched
}

// SelectObjectByName selects elements whose Refdes matches pattern.
// action.c's ActionSelect tries pattern as a POSIX regular expression
// first and falls back to a plain case-insensitive substring match if it
// fails to compile — a board command line full of unescaped footprint
// designators like "U1" should still work even though it is also a
// (degenerate) valid regex.
func SelectObjectByName(c *core.Context, pattern string, force *bool) []model.Ref {
	var matches func(name string) bool
	if re, err := regexp.Compile(pattern); err == nil {
		matches = re.MatchString
	} else {
		lower := strings.ToLower(pattern)
		matches = func(name string) bool { return strings.Contains(strings.ToLower(name), lower) }
	}

	var touched []model.Ref
	c.Board.Elements.Each(func(i int, e *model.Element) model.Control {
		if matches(e.Refdes) {
			e.Flags = e.Flags.Assign(model.FlagSelected, forceOrToggle(e.Flags.Test(model.FlagSelected), force))
			touched = append(touched, model.Ref{Kind: model.KindElement, Layer: -1, Element: i, Index: i})
		}
		return model.ControlContinue
	})
	return touched
}

func forceOrToggle(current bool, force *bool) bool {
	if force != nil {
		return *force
	}
	return !current
}

func setFlagOnRef(c *core.Context, ref model.Ref, mask model.Flag, force *bool) {
	e := entityForRef(c, ref)
	if e == nil {
		return
	}
	e.SetFlags(e.GetFlags().Assign(mask, forceOrToggle(e.GetFlags().Test(mask), force)))
}

// entityForRef resolves a Ref to its live model.Entity, the one place
// that needs to know every Kind's storage location. Each branch returns
// the literal nil interface on a miss rather than a nil concrete pointer
// boxed into Entity, which would compare != nil.
func entityForRef(c *core.Context, ref model.Ref) model.Entity {
	switch ref.Kind {
	case model.KindVia:
		if v := c.Board.Vias.Get(ref.Index); v != nil {
			return v
		}
	case model.KindRat:
		if r := c.Board.Rats.Get(ref.Index); r != nil {
			return r
		}
	case model.KindElement:
		if e := c.Board.Elements.Get(ref.Element); e != nil {
			return e
		}
	case model.KindPin:
		if el := c.Board.Elements.Get(ref.Element); el != nil {
			if p := el.Pins.Get(ref.Index); p != nil {
				return p
			}
		}
	case model.KindPad:
		if el := c.Board.Elements.Get(ref.Element); el != nil {
			if p := el.Pads.Get(ref.Index); p != nil {
				return p
			}
		}
	case model.KindLine:
		if layer := c.Board.Layer(ref.Layer); layer != nil {
			if l := layer.Lines.Get(ref.Index); l != nil {
				return l
			}
		}
	case model.KindArc:
		if layer := c.Board.Layer(ref.Layer); layer != nil {
			if a := layer.Arcs.Get(ref.Index); a != nil {
				return a
			}
		}
	case model.KindText:
		if layer := c.Board.Layer(ref.Layer); layer != nil {
			if t := layer.Texts.Get(ref.Index); t != nil {
				return t
			}
		}
	case model.KindPolygon:
		if layer := c.Board.Layer(ref.Layer); layer != nil {
			if p := layer.Polygons.Get(ref.Index); p != nil {
				return p
			}
		}
	}
	return nil
}
