// Package undo implements the action journal: a serial-numbered stack of
// entries grouped into atomic transactions, each entry carrying enough
// information to reverse one mutation. Entries are a tagged sum type
// (design note: tagged-variant + exhaustive match replaces the source's
// per-kind undo function-pointer table).
package undo

import (
	"github.com/pcb-core/pcb/internal/geom"
	"github.com/pcb-core/pcb/internal/model"
)

// Kind tags which mutation an Entry reverses.
type Kind int

const (
	KindCreate Kind = iota
	KindRemove
	KindMove
	KindRotate
	KindMirror
	KindChangeSize
	KindChangeClearance
	KindChangeDrill
	KindChangeMask
	KindChangeName
	KindChangeNumber
	KindChangeFlag
	KindChangeThermal
	KindChangeLayer
	KindAddNet
	KindRemoveNet
	KindInsertPoint
	KindRemovePoint
	KindMoveToBuffer
	KindBulkClearFlags
)

// Entry is one reversible mutation. Not every field is used by every
// Kind; see the constructors below for which fields a given kind reads.
type Entry struct {
	Kind   Kind
	Serial int
	Ref    model.Ref

	// Detached holds a removed/moved-to-buffer entity's full value so it
	// can be reinserted verbatim; it is an opaque snapshot the journal
	// never interprets beyond handing it back to the caller that applies
	// undo/redo (the caller knows the concrete type for Ref.Kind).
	Detached any

	DX, DY         geom.Coord // Move
	Angle          geom.Angle // Rotate
	Axis           geom.Point // Mirror/Rotate pivot
	OldSize, NewSize geom.Coord
	OldClearance, NewClearance geom.Coord
	OldDrill, NewDrill geom.Coord
	OldMask, NewMask geom.Coord
	OldName, NewName string
	OldNumber, NewNumber string
	OldFlags, NewFlags model.Flags
	OldThermal, NewThermal model.ThermalStyle
	ThermalLayer int
	OldLayer, NewLayer int
	NetName string
	OldPin, NewPin string
	PointIndex int
	Point      geom.Point

	AffectedRefs []model.Ref // for KindBulkClearFlags, every ref touched
	AffectedOld  []model.Flags
}

// Journal is the undo/redo stack. Entries sharing a Serial undo or redo
// together as one user-visible action, mirroring the source's serial
// number grouping (AddObjectToUndoList family all stamp the same
// SaveUndoSerialNumber-issued value until Bump is called).
type Journal struct {
	undoStack []Entry
	redoStack []Entry
	serial    int
	depth     int // >0 while inside an Atomic block
	locked    bool
}

func New() *Journal {
	return &Journal{}
}

// Snapshot is what Save captures: the serial in effect before Save
// reserved a fresh one, and the undo stack's length at that moment, so
// Block can tell whether anything was journaled since.
type Snapshot struct {
	serial   int
	stackLen int
}

// Save reserves a fresh serial number for a composite action and
// suppresses further auto-increment until Restore or Close ends the
// bracket, mirroring the source's SaveUndoSerialNumber. Every Push made
// between Save and the matching Restore/Close shares the reserved
// serial, so the whole bracket undoes or redoes as one group.
func (j *Journal) Save() Snapshot {
	snap := Snapshot{serial: j.serial, stackLen: len(j.undoStack)}
	j.serial++
	j.depth++
	return snap
}

// Restore abandons the bracket opened by Save, rewinding the serial
// counter back to its pre-Save value so the reserved number is never
// seen in any entry (source's RestoreUndoSerialNumber). Use when the
// composite action turned out to journal nothing.
func (j *Journal) Restore(snap Snapshot) {
	j.serial = snap.serial
	if j.depth > 0 {
		j.depth--
	}
}

// Close ends the bracket opened by Save, confirming the reserved serial
// as used so the next independent action starts from serial+1 rather
// than colliding with it.
func (j *Journal) Close(snap Snapshot) {
	j.serial = snap.serial + 1
	if j.depth > 0 {
		j.depth--
	}
}

// Block ends the bracket opened by Save, choosing Restore if nothing was
// journaled since (the composite action turned out to be a no-op) or
// Close otherwise — the source's pattern of wrapping a tentative
// operation and only keeping the serial bump if it actually did
// something.
func (j *Journal) Block(snap Snapshot) {
	if len(j.undoStack) == snap.stackLen {
		j.Restore(snap)
		return
	}
	j.Close(snap)
}

// Atomic brackets a group of Push calls so they share one serial number
// and undo/redo together, for callers that have the whole composite
// operation as a single closure rather than separate Save/Close call
// sites.
func (j *Journal) Atomic(fn func()) {
	snap := j.Save()
	fn()
	j.Close(snap)
}

// Suppressed disables Push for the duration of fn, for operations the
// spec says must not themselves be undoable (e.g. the board-wide
// connection trace's found/connected clearing, captured instead as one
// KindBulkClearFlags entry by the caller before it runs the trace).
func (j *Journal) Suppressed(fn func()) {
	if j.locked {
		fn()
		return
	}
	j.locked = true
	defer func() { j.locked = false }()
	fn()
}

// Push appends e to the undo stack with the journal's current serial
// number and clears the redo stack, matching the usual editor convention
// that any new action invalidates previously undone redo history.
func (j *Journal) Push(e Entry) {
	if j.locked {
		return
	}
	if j.depth == 0 {
		j.serial++
	}
	e.Serial = j.serial
	j.undoStack = append(j.undoStack, e)
	j.redoStack = nil
}

// PopUndoGroup removes and returns every entry sharing the most recent
// serial number, in reverse application order (last-applied first), so
// the caller can undo them as one group. The group is not pushed onto the
// redo stack here: a caller that fills in data while reversing an entry
// (e.g. capturing a Create's live value as it tombstones the entity) must
// do so before the group becomes redoable, so that's left to a follow-up
// PushRedoGroup call once the reversal has run.
func (j *Journal) PopUndoGroup() []Entry {
	if len(j.undoStack) == 0 {
		return nil
	}
	serial := j.undoStack[len(j.undoStack)-1].Serial
	var group []Entry
	i := len(j.undoStack) - 1
	for ; i >= 0 && j.undoStack[i].Serial == serial; i-- {
		group = append(group, j.undoStack[i])
	}
	j.undoStack = j.undoStack[:i+1]
	return group
}

// PushRedoGroup appends group to the redo stack, in the order
// PopUndoGroup returned it (last-applied first) so a later PopRedoGroup's
// own reversal walks it back to original application order.
func (j *Journal) PushRedoGroup(group []Entry) {
	j.redoStack = append(j.redoStack, group...)
}

// PopRedoGroup mirrors PopUndoGroup for the redo direction; entries come
// back out in original application order. Like PopUndoGroup, it does not
// push the group back onto the undo stack — see PushUndoGroup.
func (j *Journal) PopRedoGroup() []Entry {
	if len(j.redoStack) == 0 {
		return nil
	}
	serial := j.redoStack[len(j.redoStack)-1].Serial
	var group []Entry
	i := len(j.redoStack) - 1
	for ; i >= 0 && j.redoStack[i].Serial == serial; i-- {
		group = append(group, j.redoStack[i])
	}
	j.redoStack = j.redoStack[:i+1]
	return group
}

// PushUndoGroup appends group to the undo stack, the redo-side
// counterpart of PushRedoGroup.
func (j *Journal) PushUndoGroup(group []Entry) {
	j.undoStack = append(j.undoStack, group...)
}

// ClearList discards all history without undoing it — used on board load
// and on the "undo list exceeds configured limit" policy the source
// enforces in its undo list sizing.
func (j *Journal) ClearList() {
	j.undoStack = nil
	j.redoStack = nil
	j.serial = 0
}

// CanUndo and CanRedo report whether a group is available in that
// direction.
func (j *Journal) CanUndo() bool { return len(j.undoStack) > 0 }
func (j *Journal) CanRedo() bool { return len(j.redoStack) > 0 }
