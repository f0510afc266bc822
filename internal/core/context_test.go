package core

import (
	"testing"

	"github.com/pcb-core/pcb/internal/geom"
	"github.com/pcb-core/pcb/internal/model"
	"github.com/pcb-core/pcb/internal/netlist"
)

func newTestContext() *Context {
	b := model.NewBoard("probe", 1000000, 1000000)
	b.AddLayer(&model.Layer{Name: "top", Type: model.LayerCopper, Visible: true})
	b.AddLayer(&model.Layer{Name: "bottom", Type: model.LayerCopper, Visible: true})
	return New(b)
}

func TestAddLineToLayerIndexesAndJournals(t *testing.T) {
	c := newTestContext()
	l, err := model.NewLine(geom.Point{X: 0, Y: 0}, geom.Point{X: 1000, Y: 0}, 100, 50, model.NoFlags())
	if err != nil {
		t.Fatalf("NewLine: %v", err)
	}
	ref, err := c.AddLineToLayer(0, *l)
	if err != nil {
		t.Fatalf("AddLineToLayer: %v", err)
	}
	if c.Board.Layers[0].Lines.Len() != 1 {
		t.Fatalf("expected 1 line on layer 0")
	}
	if !c.Undo.CanUndo() {
		t.Fatalf("expected a journaled create entry")
	}
	if ref.Kind != model.KindLine {
		t.Fatalf("expected KindLine, got %v", ref.Kind)
	}
}

func TestAddLineToLayerRejectsInvalidLayer(t *testing.T) {
	c := newTestContext()
	l, _ := model.NewLine(geom.Point{X: 0, Y: 0}, geom.Point{X: 1000, Y: 0}, 100, 50, model.NoFlags())
	if _, err := c.AddLineToLayer(5, *l); err == nil {
		t.Fatalf("expected an error for an out-of-range layer")
	}
}

func TestRemoveLineDetachesAndJournals(t *testing.T) {
	c := newTestContext()
	l, _ := model.NewLine(geom.Point{X: 0, Y: 0}, geom.Point{X: 1000, Y: 0}, 100, 50, model.NoFlags())
	ref, _ := c.AddLineToLayer(0, *l)

	if err := c.RemoveLine(0, ref.Index); err != nil {
		t.Fatalf("RemoveLine: %v", err)
	}
	if c.Board.Layers[0].Lines.Len() != 0 {
		t.Fatalf("expected the line to be gone")
	}
}

func TestMoveLineUpdatesEndpointsAndBBox(t *testing.T) {
	c := newTestContext()
	l, _ := model.NewLine(geom.Point{X: 0, Y: 0}, geom.Point{X: 1000, Y: 0}, 100, 50, model.NoFlags())
	ref, _ := c.AddLineToLayer(0, *l)

	if err := c.MoveLine(0, ref.Index, 500, 500); err != nil {
		t.Fatalf("MoveLine: %v", err)
	}
	moved := c.Board.Layers[0].Lines.Get(ref.Index)
	if moved.Point1 != (geom.Point{X: 500, Y: 500}) {
		t.Fatalf("expected endpoint shifted by (500,500), got %+v", moved.Point1)
	}
}

func TestAddViaToBoardPiercesEveryUnburiedLayer(t *testing.T) {
	c := newTestContext()
	via := model.NewVia(geom.Point{X: 0, Y: 0}, 1000, 100, 0, 500, "", model.NoFlags())
	ref := c.AddViaToBoard(*via)
	if c.Board.Vias.Len() != 1 {
		t.Fatalf("expected 1 via")
	}
	if ref.Kind != model.KindVia {
		t.Fatalf("expected KindVia, got %v", ref.Kind)
	}
	for li := range c.Board.Layers {
		if !c.Board.Vias.Get(ref.Index).PiercesLayer(li) {
			t.Fatalf("expected an unburied via to pierce layer %d", li)
		}
	}
}

func TestRemoveViaRefusesWhenLocked(t *testing.T) {
	c := newTestContext()
	via := model.NewVia(geom.Point{X: 0, Y: 0}, 1000, 100, 0, 500, "", model.MakeFlags(model.FlagLock))
	ref := c.AddViaToBoard(*via)

	if err := c.RemoveVia(ref.Index); err == nil {
		t.Fatalf("expected a locked via to refuse removal")
	}
	if c.Board.Vias.Len() != 1 {
		t.Fatalf("a refused removal should not detach the via")
	}
}

func TestRemoveViaDetachesWhenUnlocked(t *testing.T) {
	c := newTestContext()
	via := model.NewVia(geom.Point{X: 0, Y: 0}, 1000, 100, 0, 500, "", model.NoFlags())
	ref := c.AddViaToBoard(*via)

	if err := c.RemoveVia(ref.Index); err != nil {
		t.Fatalf("RemoveVia: %v", err)
	}
	if c.Board.Vias.Len() != 0 {
		t.Fatalf("expected the via to be gone")
	}
}

func newElementWithPins(refdes string, pins map[string]geom.Point) model.Element {
	el := model.NewElement(geom.Point{}, model.NoFlags())
	el.Refdes = refdes
	for number, p := range pins {
		el.Pins.Add(*model.NewPin(p, 100, 10, 150, 40, "", number, model.NoFlags()))
	}
	return *el
}

func TestRemovePinRefusesWhenLocked(t *testing.T) {
	c := newTestContext()
	el := newElementWithPins("U1", map[string]geom.Point{"1": {X: 0, Y: 0}})
	eref := c.AddElementToBoard(el)
	live := c.Board.Elements.Get(eref.Element)
	live.Pins.Get(0).Flags = model.MakeFlags(model.FlagLock)

	if err := c.RemovePin(eref.Element, 0); err == nil {
		t.Fatalf("expected a locked pin to refuse removal")
	}
}

func TestRemovePinDetachesFromElement(t *testing.T) {
	c := newTestContext()
	el := newElementWithPins("U1", map[string]geom.Point{"1": {X: 0, Y: 0}})
	eref := c.AddElementToBoard(el)

	if err := c.RemovePin(eref.Element, 0); err != nil {
		t.Fatalf("RemovePin: %v", err)
	}
	live := c.Board.Elements.Get(eref.Element)
	if live.Pins.Len() != 0 {
		t.Fatalf("expected the pin to be gone")
	}
}

func TestImportNetlistCreatesRatsBetweenConsecutivePins(t *testing.T) {
	c := newTestContext()
	c.AddElementToBoard(newElementWithPins("U1", map[string]geom.Point{"1": {X: 0, Y: 0}}))
	c.AddElementToBoard(newElementWithPins("U2", map[string]geom.Point{"1": {X: 1000, Y: 1000}}))

	nets := []netlist.Net{{Name: "NET1", Pins: []string{"U1-1", "U2-1"}}}
	created := c.ImportNetlist(nets)
	if created != 1 {
		t.Fatalf("expected 1 rat, got %d", created)
	}
	if c.Board.Rats.Len() != 1 {
		t.Fatalf("expected the rat to land in the board's pool")
	}
	if _, ok := c.Board.Netlist["net1"]; !ok {
		t.Fatalf("expected the net recorded under its lowercased name")
	}
}

func TestImportNetlistSkipsUnresolvedMembers(t *testing.T) {
	c := newTestContext()
	c.AddElementToBoard(newElementWithPins("U1", map[string]geom.Point{"1": {X: 0, Y: 0}}))
	// Drop the element's own create entry so only the import is observed.
	c.Undo.ClearList()

	nets := []netlist.Net{{Name: "NET1", Pins: []string{"U1-1", "U404-1"}}}
	created := c.ImportNetlist(nets)
	if created != 0 {
		t.Fatalf("expected no rat when the second member can't resolve, got %d", created)
	}
	if c.Undo.CanUndo() {
		t.Fatalf("a no-op import should not leave anything undoable")
	}
}
