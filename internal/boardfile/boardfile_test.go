package boardfile

import (
	"bytes"
	"testing"

	"github.com/pcb-core/pcb/internal/geom"
	"github.com/pcb-core/pcb/internal/model"
)

func sampleBoard() *model.Board {
	b := model.NewBoard("probe", 500000, 400000)
	b.LayerGroups = map[string][]int{"top": {0}}
	b.Attributes = map[string]string{"author": "tester"}
	b.Netlist = map[string]model.Net{"GND": {Style: "signal", Pins: []string{"U1-1", "U1-2"}}}

	layer := &model.Layer{Name: "top copper", Type: model.LayerCopper, Visible: true}
	l, _ := model.NewLine(geom.Point{X: 0, Y: 0}, geom.Point{X: 1000, Y: 1000}, 100, 50, model.MakeFlags(model.FlagSelected))
	layer.Lines.Add(*l)
	poly := model.NewPolygon([]geom.Point{{X: 0, Y: 0}, {X: 1000, Y: 0}, {X: 1000, Y: 1000}, {X: 0, Y: 1000}}, nil, model.MakeFlags(model.FlagFullPoly))
	layer.Polygons.Add(*poly)
	b.AddLayer(layer)

	b.Vias.Add(*model.NewVia(geom.Point{X: 2000, Y: 2000}, 600, 200, 800, 300, "TP1", model.Flags{}))

	el := model.NewElement(geom.Point{X: 5000, Y: 5000}, model.Flags{})
	el.Description, el.Refdes, el.Value = "0603", "R1", "10k"
	el.Pins.Add(*model.NewPin(geom.Point{X: 5100, Y: 5000}, 400, 100, 600, 200, "", "1", model.Flags{}))
	b.Elements.Add(*el)

	return b
}

func TestBoardFileRoundTrip(t *testing.T) {
	original := sampleBoard()

	var buf bytes.Buffer
	if err := Write(&buf, original); err != nil {
		t.Fatalf("Write: %v", err)
	}

	loaded, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if loaded.Name != original.Name {
		t.Errorf("name: got %q want %q", loaded.Name, original.Name)
	}
	if loaded.MaxWidth != original.MaxWidth || loaded.MaxHeight != original.MaxHeight {
		t.Errorf("size: got %dx%d want %dx%d", loaded.MaxWidth, loaded.MaxHeight, original.MaxWidth, original.MaxHeight)
	}
	if len(loaded.Layers) != len(original.Layers) {
		t.Fatalf("layer count: got %d want %d", len(loaded.Layers), len(original.Layers))
	}
	if loaded.Layers[0].Lines.Len() != original.Layers[0].Lines.Len() {
		t.Errorf("line count mismatch")
	}
	if loaded.Layers[0].Polygons.Len() != original.Layers[0].Polygons.Len() {
		t.Errorf("polygon count mismatch")
	}
	if loaded.Vias.Len() != original.Vias.Len() {
		t.Errorf("via count mismatch")
	}
	if loaded.Elements.Len() != original.Elements.Len() {
		t.Errorf("element count mismatch")
	}
	if len(loaded.Netlist) != len(original.Netlist) {
		t.Errorf("netlist count mismatch")
	}
}

func TestBoardFileRejectsOldVersion(t *testing.T) {
	data := "FileVersion[1]\nPCB[\"x\" 100 100]\n"
	if _, err := Read(bytes.NewBufferString(data)); err == nil {
		t.Fatalf("expected version error")
	}
}
