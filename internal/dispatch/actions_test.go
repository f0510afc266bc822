package dispatch

import (
	"testing"

	"github.com/pcb-core/pcb/internal/core"
	"github.com/pcb-core/pcb/internal/geom"
	"github.com/pcb-core/pcb/internal/model"
)

func newActionTestContext() *core.Context {
	b := model.NewBoard("t", 1000000, 1000000)
	b.AddLayer(&model.Layer{Name: "top", Type: model.LayerCopper, Visible: true})
	return core.New(b)
}

func dispatchOrFatal(t *testing.T, r *Registry, c *core.Context, s *State, argv ...string) string {
	t.Helper()
	out, err := r.Dispatch(c, s, argv)
	if err != nil {
		t.Fatalf("dispatch %v: %v", argv, err)
	}
	return out
}

func TestActionModeRejectsUnknownMode(t *testing.T) {
	r := NewRegistry()
	c := newActionTestContext()
	s := NewState()
	if _, err := r.Dispatch(c, s, []string{"mode", "bogus"}); err == nil {
		t.Fatalf("expected an error for an unknown mode")
	}
}

func TestActionModeSwitchesState(t *testing.T) {
	r := NewRegistry()
	c := newActionTestContext()
	s := NewState()
	dispatchOrFatal(t, r, c, s, "mode", "via")
	if s.Mode != ModeVia {
		t.Fatalf("expected ModeVia, got %v", s.Mode)
	}
}

// TestActionUndoRedoRoundTripRecreatesVia regresses the create/redo
// data-loss bug: placing a via, undoing it away, then redoing it must
// bring the board back to exactly one via, not zero.
func TestActionUndoRedoRoundTripRecreatesVia(t *testing.T) {
	r := NewRegistry()
	c := newActionTestContext()
	s := NewState()
	dispatchOrFatal(t, r, c, s, "mode", "via")
	dispatchOrFatal(t, r, c, s, "notify", "10000", "10000")
	if c.Board.Vias.Len() != 1 {
		t.Fatalf("expected 1 via after notify, got %d", c.Board.Vias.Len())
	}

	dispatchOrFatal(t, r, c, s, "undo")
	if c.Board.Vias.Len() != 0 {
		t.Fatalf("expected the via gone after undo, got %d", c.Board.Vias.Len())
	}

	dispatchOrFatal(t, r, c, s, "redo")
	if c.Board.Vias.Len() != 1 {
		t.Fatalf("expected the via back after redo, got %d", c.Board.Vias.Len())
	}
}

func TestActionUndoWithNothingToUndoIsANoOp(t *testing.T) {
	r := NewRegistry()
	c := newActionTestContext()
	s := NewState()
	out := dispatchOrFatal(t, r, c, s, "undo")
	if out == "" {
		t.Fatalf("expected a message explaining there was nothing to undo")
	}
}

// TestActionNotifyRemovePinAndUndoRestoresIt drives notify through
// ModeRemove against a pin and checks the removal round-trips through
// undo, the same property actionUndo/actionRedo already give vias.
func TestActionNotifyRemovePinAndUndoRestoresIt(t *testing.T) {
	r := NewRegistry()
	c := newActionTestContext()
	s := NewState()

	el := model.NewElement(geom.Point{}, model.NoFlags())
	el.Refdes = "U1"
	el.Pins.Add(*model.NewPin(geom.Point{X: 500, Y: 500}, 100, 10, 150, 40, "", "1", model.NoFlags()))
	eref := c.AddElementToBoard(*el)

	dispatchOrFatal(t, r, c, s, "mode", "remove")
	dispatchOrFatal(t, r, c, s, "notify", "500", "500")

	live := c.Board.Elements.Get(eref.Element)
	if live.Pins.Len() != 0 {
		t.Fatalf("expected the pin gone after notify, got %d", live.Pins.Len())
	}

	dispatchOrFatal(t, r, c, s, "undo")
	live = c.Board.Elements.Get(eref.Element)
	if live.Pins.Len() != 1 {
		t.Fatalf("expected the pin restored after undo, got %d", live.Pins.Len())
	}
}

func TestActionNotifyUnsupportedModeErrors(t *testing.T) {
	r := NewRegistry()
	c := newActionTestContext()
	s := NewState()
	dispatchOrFatal(t, r, c, s, "mode", "line")
	if _, err := r.Dispatch(c, s, []string{"notify", "0", "0"}); err == nil {
		t.Fatalf("expected notify to reject a mode it doesn't drive")
	}
}

func TestActionAtomicSaveBlockLeavesNoHistoryWhenNothingJournaled(t *testing.T) {
	r := NewRegistry()
	c := newActionTestContext()
	s := NewState()
	dispatchOrFatal(t, r, c, s, "atomic", "save")
	dispatchOrFatal(t, r, c, s, "atomic", "block")
	if c.Undo.CanUndo() {
		t.Fatalf("expected nothing undoable after an empty atomic bracket")
	}
}

func TestActionAtomicSaveCloseGroupsAnEdit(t *testing.T) {
	r := NewRegistry()
	c := newActionTestContext()
	s := NewState()
	dispatchOrFatal(t, r, c, s, "mode", "via")
	dispatchOrFatal(t, r, c, s, "atomic", "save")
	dispatchOrFatal(t, r, c, s, "notify", "10000", "10000")
	dispatchOrFatal(t, r, c, s, "atomic", "close")
	if !c.Undo.CanUndo() {
		t.Fatalf("expected the bracketed via placement to be undoable")
	}
	dispatchOrFatal(t, r, c, s, "undo")
	if c.Board.Vias.Len() != 0 {
		t.Fatalf("expected the via gone after undoing the atomic group")
	}
}

func TestActionAtomicRejectsDoubleSave(t *testing.T) {
	r := NewRegistry()
	c := newActionTestContext()
	s := NewState()
	dispatchOrFatal(t, r, c, s, "atomic", "save")
	if _, err := r.Dispatch(c, s, []string{"atomic", "save"}); err == nil {
		t.Fatalf("expected a second save with no intervening close/restore to fail")
	}
}

func TestActionAtomicRejectsCloseWithNoOpenBracket(t *testing.T) {
	r := NewRegistry()
	c := newActionTestContext()
	s := NewState()
	if _, err := r.Dispatch(c, s, []string{"atomic", "close"}); err == nil {
		t.Fatalf("expected close with nothing saved to fail")
	}
}

// TestActionPasteBufferAddSelectedAndPasteToLayoutRecreatesEntity exercises
// the end-to-end paste path the spec's scenario walks through: select a
// via, add it to the buffer, then paste it back to the layout.
func TestActionPasteBufferAddSelectedAndPasteToLayoutRecreatesEntity(t *testing.T) {
	r := NewRegistry()
	c := newActionTestContext()
	s := NewState()

	via := model.NewVia(geom.Point{X: 20000, Y: 20000}, 1000, 100, 0, 500, "", model.NoFlags())
	c.AddViaToBoard(*via)

	dispatchOrFatal(t, r, c, s, "select", "20000", "20000")
	dispatchOrFatal(t, r, c, s, "pastebuffer", "addselected")

	buf := s.Buffers[s.ActiveBuffer]
	if buf.IsEmpty() {
		t.Fatalf("expected the buffer to hold the selected via")
	}
	if buf.Board.Vias.Len() != 1 {
		t.Fatalf("expected 1 via copied into the buffer, got %d", buf.Board.Vias.Len())
	}

	dispatchOrFatal(t, r, c, s, "pastebuffer", "pastetolayout", "60000", "60000")
	if c.Board.Vias.Len() != 2 {
		t.Fatalf("expected the original via plus the pasted copy, got %d", c.Board.Vias.Len())
	}
}

// TestActionPasteBufferFourQuarterTurnsReturnsToOriginal is the
// registry-level regression for rotating a buffer four times by 90
// degrees landing back where it started.
func TestActionPasteBufferFourQuarterTurnsReturnsToOriginal(t *testing.T) {
	r := NewRegistry()
	c := newActionTestContext()
	s := NewState()

	via := model.NewVia(geom.Point{X: 20000, Y: 25000}, 1000, 100, 0, 500, "", model.NoFlags())
	c.AddViaToBoard(*via)

	dispatchOrFatal(t, r, c, s, "select", "20000", "25000")
	dispatchOrFatal(t, r, c, s, "pastebuffer", "addselected")

	buf := s.Buffers[s.ActiveBuffer]
	before := geom.Point{}
	buf.Board.Vias.Each(func(_ int, v *model.Via) model.Control {
		before = v.Center
		return model.ControlStop
	})

	dispatchOrFatal(t, r, c, s, "pastebuffer", "rotate", "2")
	dispatchOrFatal(t, r, c, s, "pastebuffer", "rotate", "2")

	var after geom.Point
	buf.Board.Vias.Each(func(_ int, v *model.Via) model.Control {
		after = v.Center
		return model.ControlStop
	})
	if after != before {
		t.Fatalf("expected 4x90-degree rotation to return to the original center, got %+v want %+v", after, before)
	}
}

func TestActionPasteBufferSmashRequiresValidIndex(t *testing.T) {
	r := NewRegistry()
	c := newActionTestContext()
	s := NewState()
	if _, err := r.Dispatch(c, s, []string{"pastebuffer", "smash", "not-a-number"}); err == nil {
		t.Fatalf("expected an error for a non-numeric element index")
	}
}

func TestActionPasteBufferUnknownSubActionErrors(t *testing.T) {
	r := NewRegistry()
	c := newActionTestContext()
	s := NewState()
	if _, err := r.Dispatch(c, s, []string{"pastebuffer", "bogus"}); err == nil {
		t.Fatalf("expected an error for an unknown pastebuffer sub-action")
	}
}
