package undo

import (
	"testing"

	"github.com/pcb-core/pcb/internal/model"
)

func createEntry(idx int) Entry {
	return Entry{Kind: KindCreate, Ref: model.Ref{Kind: model.KindVia, Layer: -1, Element: -1, Index: idx}}
}

func TestSaveCloseSharesOneSerial(t *testing.T) {
	j := New()
	snap := j.Save()
	j.Push(createEntry(1))
	j.Push(createEntry(2))
	j.Push(createEntry(3))
	j.Close(snap)

	group := j.PopUndoGroup()
	if len(group) != 3 {
		t.Fatalf("expected 3 entries sharing one serial, got %d", len(group))
	}
}

func TestSaveRestoreAbandonsSerial(t *testing.T) {
	j := New()
	before := j.serial
	snap := j.Save()
	j.Restore(snap)
	if j.serial != before {
		t.Fatalf("restore should rewind serial to %d, got %d", before, j.serial)
	}
	if j.CanUndo() {
		t.Fatalf("restore with nothing pushed should leave nothing to undo")
	}
}

func TestBlockRestoresWhenNothingJournaled(t *testing.T) {
	j := New()
	before := j.serial
	snap := j.Save()
	j.Block(snap)
	if j.serial != before {
		t.Fatalf("block with no pushes should behave like restore, serial %d want %d", j.serial, before)
	}
}

func TestBlockClosesWhenSomethingJournaled(t *testing.T) {
	j := New()
	snap := j.Save()
	j.Push(createEntry(1))
	j.Block(snap)
	if !j.CanUndo() {
		t.Fatalf("block with a push should keep the entry undoable")
	}
	group := j.PopUndoGroup()
	if len(group) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(group))
	}
}

func TestAtomicGroupsEveryPushUnderOneSerial(t *testing.T) {
	j := New()
	j.Atomic(func() {
		j.Push(createEntry(1))
		j.Push(createEntry(2))
	})
	group := j.PopUndoGroup()
	if len(group) != 2 {
		t.Fatalf("expected 2 entries in the atomic group, got %d", len(group))
	}
}

func TestPopUndoGroupReturnsLastAppliedFirst(t *testing.T) {
	j := New()
	snap := j.Save()
	j.Push(createEntry(1))
	j.Push(createEntry(2))
	j.Close(snap)

	group := j.PopUndoGroup()
	if group[0].Ref.Index != 2 || group[1].Ref.Index != 1 {
		t.Fatalf("expected reverse application order, got %+v", group)
	}
}

func TestPopRedoGroupRestoresOriginalOrder(t *testing.T) {
	j := New()
	snap := j.Save()
	j.Push(createEntry(1))
	j.Push(createEntry(2))
	j.Close(snap)

	undoGroup := j.PopUndoGroup()
	j.PushRedoGroup(undoGroup)

	redoGroup := j.PopRedoGroup()
	if redoGroup[0].Ref.Index != 1 || redoGroup[1].Ref.Index != 2 {
		t.Fatalf("expected original application order, got %+v", redoGroup)
	}
}

func TestPushUndoGroupRoundTripsBackToUndoStack(t *testing.T) {
	j := New()
	snap := j.Save()
	j.Push(createEntry(1))
	j.Close(snap)

	undoGroup := j.PopUndoGroup()
	j.PushRedoGroup(undoGroup)
	if j.CanUndo() {
		t.Fatalf("undo stack should be empty once the group moved to redo")
	}
	redoGroup := j.PopRedoGroup()
	j.PushUndoGroup(redoGroup)
	if !j.CanUndo() || j.CanRedo() {
		t.Fatalf("expected the group back on the undo stack only")
	}
}

func TestPushClearsRedoStack(t *testing.T) {
	j := New()
	j.Push(createEntry(1))
	group := j.PopUndoGroup()
	j.PushRedoGroup(group)
	if !j.CanRedo() {
		t.Fatalf("setup: expected something to redo")
	}
	j.Push(createEntry(2))
	if j.CanRedo() {
		t.Fatalf("a new push should invalidate the redo stack")
	}
}

func TestSuppressedBlocksPush(t *testing.T) {
	j := New()
	j.Suppressed(func() {
		j.Push(createEntry(1))
	})
	if j.CanUndo() {
		t.Fatalf("a push made inside Suppressed should not be journaled")
	}
}

func TestClearListDropsBothStacks(t *testing.T) {
	j := New()
	j.Push(createEntry(1))
	group := j.PopUndoGroup()
	j.PushRedoGroup(group)
	j.ClearList()
	if j.CanUndo() || j.CanRedo() {
		t.Fatalf("ClearList should discard both stacks")
	}
}
