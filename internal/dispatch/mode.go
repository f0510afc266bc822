// Package dispatch implements the interactive tool dispatcher: the
// current tool mode, the state attached to an in-progress interactive
// gesture (a line being drawn, an object being dragged, a polygon being
// built point by point), and the action registry that turns one parsed
// command line into a mutation against a core.Context.
//
// Tool-mode numbering follows the upstream editor's const.h exactly
// (NO_MODE=0 through POLYGONHOLE_MODE=112) so any script or board
// annotation naming a mode by number means the same thing here.
package dispatch

import (
	"github.com/pcb-core/pcb/internal/geom"
	"github.com/pcb-core/pcb/internal/undo"
)

// Mode is the active interactive tool.
type Mode int

const (
	ModeNone Mode = 0
	ModeVia  Mode = 1
	ModeLine Mode = 2
	ModeRectangle Mode = 3
	ModePolygon   Mode = 4
	ModePasteBuffer Mode = 5
	ModeText      Mode = 6
	ModeRotate    Mode = 102
	ModeRemove    Mode = 103
	ModeMove      Mode = 104
	ModeCopy      Mode = 105
	ModeInsertPoint Mode = 106
	ModeRubberbandMove Mode = 107
	ModeThermal   Mode = 108
	ModeArc       Mode = 109
	ModeArrow     Mode = 110
	ModeLock      Mode = 111
	ModePolygonHole Mode = 112
)

func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeVia:
		return "via"
	case ModeLine:
		return "line"
	case ModeRectangle:
		return "rectangle"
	case ModePolygon:
		return "polygon"
	case ModePasteBuffer:
		return "pastebuffer"
	case ModeText:
		return "text"
	case ModeRotate:
		return "rotate"
	case ModeRemove:
		return "remove"
	case ModeMove:
		return "move"
	case ModeCopy:
		return "copy"
	case ModeInsertPoint:
		return "insertpoint"
	case ModeRubberbandMove:
		return "rubberbandmove"
	case ModeThermal:
		return "thermal"
	case ModeArc:
		return "arc"
	case ModeArrow:
		return "arrow"
	case ModeLock:
		return "lock"
	case ModePolygonHole:
		return "polygonhole"
	default:
		return "unknown"
	}
}

// LineClipPolicy controls how AttachedLine's free end tracks the cursor
// while drawing a two-segment line.
type LineClipPolicy int

const (
	ClipFree LineClipPolicy = iota
	ClipOrthogonalFirst
	ClipAngledFirst
)

// modeSlot is a stack of depth one: SaveMode remembers at most the mode
// that was active before a transient tool (e.g. a keyboard shortcut that
// temporarily switches to ModeLock) took over; a second SaveMode without
// an intervening RestoreMode overwrites the saved value rather than
// growing, matching the source's single SavedMode global.
type modeSlot struct {
	mode  Mode
	saved bool
}

// State is everything the dispatcher needs about the in-progress
// interactive gesture, on top of the current Mode.
type State struct {
	Mode     Mode
	saved    modeSlot
	ClipPolicy    LineClipPolicy
	AllDirections bool
	SwapStartDir  bool

	Line    *AttachedLine
	Box     *AttachedBox
	Object  *AttachedObject
	Polygon *AttachedPolygon
	Insert  *InsertScaffolding

	Buffers    [MaxPasteBuffers]*PasteBuffer
	ActiveBuffer int

	// atomicSnap is the snapshot an open "atomic save" dispatch action
	// reserved; atomicOpen guards against Restore/Close/Block firing
	// without a matching Save (the registry-level equivalent of the
	// source's nested-SaveUndoSerialNumber-without-Restore bug class).
	atomicSnap undo.Snapshot
	atomicOpen bool
}

// MaxPasteBuffers mirrors buffer.c's MAX_BUFFER.
const MaxPasteBuffers = 5

func NewState() *State {
	s := &State{Mode: ModeNone}
	for i := range s.Buffers {
		s.Buffers[i] = &PasteBuffer{}
	}
	return s
}

// SaveMode remembers the current mode and switches to m; a nested call
// before RestoreMode simply overwrites the saved value (stack of depth
// one, per the source's single SavedMode variable).
func (s *State) SaveMode(m Mode) {
	s.saved = modeSlot{mode: s.Mode, saved: true}
	s.Mode = m
}

// RestoreMode switches back to whatever SaveMode last recorded, if
// anything was saved.
func (s *State) RestoreMode() {
	if !s.saved.saved {
		return
	}
	s.Mode = s.saved.mode
	s.saved = modeSlot{}
}

// AttachedLine is the two-segment rubber-banded line being drawn in
// ModeLine/ModeArc.
type AttachedLine struct {
	Point1, Point2 geom.Point
	Started        bool
}

// AttachedBox is the rubber-band rectangle used by ModeRectangle and by
// SelectBlock's marquee.
type AttachedBox struct {
	Point1, Point2 geom.Point
	Started        bool
}

// AttachedObject is whatever ModeMove/ModeCopy/ModeRotate currently has
// picked up, named by Ref so the dispatcher doesn't hold a live pointer
// across the gesture (a concurrent undo could invalidate it).
type AttachedObject struct {
	Refs     []RefAndOffset
	Rotation geom.Angle
}

// RefAndOffset pairs a picked-up entity with its offset from the pick
// point, so a multi-select drag moves every entity by the same cursor
// delta.
type RefAndOffset struct {
	Ref    any // model.Ref; kept as any here to avoid an import cycle with core
	Offset geom.Point
}

// AttachedPolygon accumulates points for ModePolygon/ModePolygonHole
// before the polygon is committed.
type AttachedPolygon struct {
	Points  []geom.Point
	IsHole  bool
}

// InsertScaffolding tracks the line/polygon segment ModeInsertPoint is
// about to split.
type InsertScaffolding struct {
	Target   any // model.Ref
	AtPoint  geom.Point
}
