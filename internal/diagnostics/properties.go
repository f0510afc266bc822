package diagnostics

import (
	"fmt"

	"github.com/pcb-core/pcb/internal/core"
	"github.com/pcb-core/pcb/internal/dispatch"
	"github.com/pcb-core/pcb/internal/model"
	"github.com/pcb-core/pcb/internal/undo"
)

// StandardSuite builds the property checks spec.md §8 names against a
// live Context: bbox consistency, the single-container/single-index
// membership invariant, and undo/redo round-trip behavior. The board
// round-trip property is added separately by whatever caller has a
// boardfile codec in scope, since diagnostics has no file-format
// dependency of its own.
func StandardSuite(c *core.Context) *Suite {
	s := NewSuite()
	s.Add("bbox matches recompute", func() (bool, string) { return checkBBoxes(c) })
	s.Add("entity indexed exactly once", func() (bool, string) { return checkSingleIndexMembership(c) })
	s.Add("undo/redo round-trip", func() (bool, string) { return checkUndoRoundTrip(c) })
	s.Add("atomic undo is all-or-nothing", func() (bool, string) { return checkAtomicUndo(c) })
	return s
}

// checkBBoxes confirms every line on every layer reports a BBox equal to
// recomputing it from its endpoints and thickness, catching the class of
// bug where a mutator forgets to call RecomputeBBox after an edit.
func checkBBoxes(c *core.Context) (bool, string) {
	mismatches := 0
	for li, layer := range c.Board.Layers {
		layer.Lines.Each(func(i int, l *model.Line) model.Control {
			before := l.BBox()
			l.RecomputeBBox()
			after := l.BBox()
			if before != after {
				mismatches++
			}
			return model.ControlContinue
		})
		_ = li
	}
	if mismatches > 0 {
		return false, fmt.Sprintf("%d line(s) had a stale cached bbox", mismatches)
	}
	return true, ""
}

// checkSingleIndexMembership reports line Refs that appear more than once
// in their layer's line tree. It checks lines only, and only for
// duplicates: a line missing from the index, or an entity of another kind
// indexed twice, is not detected.
func checkSingleIndexMembership(c *core.Context) (bool, string) {
	seen := map[model.Ref]int{}
	for li, layer := range c.Board.Layers {
		for _, e := range c.Index.Layer(li).Lines.All() {
			seen[e.Ref]++
		}
		_ = layer
	}
	dupes := 0
	for _, n := range seen {
		if n > 1 {
			dupes++
		}
	}
	if dupes > 0 {
		return false, fmt.Sprintf("%d ref(s) indexed more than once", dupes)
	}
	return true, ""
}

// scratchContext builds a disposable one-layer board so round-trip
// properties can mutate freely without touching the caller's live
// session.
func scratchContext() *core.Context {
	b := model.NewBoard("probe", 100000, 100000)
	b.AddLayer(&model.Layer{Name: "top", Type: model.LayerCopper, Visible: true})
	return core.New(b)
}

// checkUndoRoundTrip exercises one create/undo/redo cycle on a scratch
// board through the same registry dispatch path interactive sessions
// use, confirming the line count returns to zero after undo and to one
// again after redo.
func checkUndoRoundTrip(c *core.Context) (bool, string) {
	probe := scratchContext()
	reg := dispatch.NewRegistry()
	state := dispatch.NewState()

	if _, err := reg.Dispatch(probe, state, []string{"newline", "0", "0", "0", "1000", "1000"}); err != nil {
		return false, fmt.Sprintf("newline failed: %v", err)
	}
	afterCreate := probe.Board.Layers[0].Lines.Len()
	if afterCreate != 1 {
		return false, fmt.Sprintf("expected 1 line after create, got %d", afterCreate)
	}

	if _, err := reg.Dispatch(probe, state, []string{"undo"}); err != nil {
		return false, fmt.Sprintf("undo failed: %v", err)
	}
	afterUndo := probe.Board.Layers[0].Lines.Len()
	if afterUndo != 0 {
		return false, fmt.Sprintf("expected 0 lines after undo, got %d", afterUndo)
	}

	if _, err := reg.Dispatch(probe, state, []string{"redo"}); err != nil {
		return false, fmt.Sprintf("redo failed: %v", err)
	}
	afterRedo := probe.Board.Layers[0].Lines.Len()
	if afterRedo != 1 {
		return false, fmt.Sprintf("expected 1 line after redo, got %d", afterRedo)
	}
	return true, ""
}

// checkAtomicUndo confirms Journal.Atomic groups every Push call inside
// fn under one serial number, so a single PopUndoGroup reverts the whole
// group rather than one entry at a time.
func checkAtomicUndo(c *core.Context) (bool, string) {
	probe := scratchContext()
	probe.Undo.Atomic(func() {
		for i := 0; i < 3; i++ {
			probe.Undo.Push(undo.Entry{Kind: undo.KindCreate, Ref: model.Ref{Kind: model.KindLine, Layer: 0, Element: -1, Index: i}})
		}
	})
	group := probe.Undo.PopUndoGroup()
	if len(group) != 3 {
		return false, fmt.Sprintf("expected 3 entries in one atomic group, got %d", len(group))
	}
	return true, ""
}
