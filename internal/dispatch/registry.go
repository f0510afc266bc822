package dispatch

import (
	"strconv"
	"strings"

	"github.com/pcb-core/pcb/internal/core"
	"github.com/pcb-core/pcb/internal/geom"
	"github.com/pcb-core/pcb/internal/model"
	"github.com/pcb-core/pcb/internal/pcberr"
)

// Action is one named, argv-parsed command, the Go-native replacement
// for action.c's giant HID_Action table (name, syntax, help, function
// pointer) — here a name maps straight to a closure instead of a
// separate struct-of-function-pointers indirection.
type Action func(c *core.Context, s *State, argv []string) (string, error)

// Registry is the set of action names a command line can invoke.
type Registry struct {
	actions map[string]Action
}

// NewRegistry builds the standard action set.
func NewRegistry() *Registry {
	r := &Registry{actions: map[string]Action{}}
	r.register("mode", actionMode)
	r.register("select", actionSelect)
	r.register("selectbyname", actionSelectByName)
	r.register("unselectall", actionUnselectAll)
	r.register("undo", actionUndo)
	r.register("redo", actionRedo)
	r.register("newline", actionNewLine)
	r.register("newvia", actionNewVia)
	r.register("delete", actionDelete)
	r.register("move", actionMove)
	r.register("fanout", actionFanout)
	r.register("notify", actionNotify)
	r.register("atomic", actionAtomic)
	r.register("pastebuffer", actionPasteBuffer)
	return r
}

func (r *Registry) register(name string, a Action) {
	r.actions[name] = a
}

// Dispatch looks up argv[0] as an action name and invokes it with the
// rest of argv, case-insensitively (the source's action names are also
// matched case-insensitively against the board command file).
func (r *Registry) Dispatch(c *core.Context, s *State, argv []string) (string, error) {
	if len(argv) == 0 {
		return "", pcberr.New(pcberr.Argument, "empty command")
	}
	name := strings.ToLower(argv[0])
	action, ok := r.actions[name]
	if !ok {
		return "", pcberr.Newf(pcberr.Argument, "unknown action %q", argv[0])
	}
	return action(c, s, argv[1:])
}

func actionMode(_ *core.Context, s *State, argv []string) (string, error) {
	if len(argv) != 1 {
		return "", pcberr.New(pcberr.Argument, "mode requires exactly one argument")
	}
	m, ok := modeByName(argv[0])
	if !ok {
		return "", pcberr.Newf(pcberr.Argument, "unknown mode %q", argv[0])
	}
	s.Mode = m
	return "", nil
}

func modeByName(name string) (Mode, bool) {
	switch strings.ToLower(name) {
	case "none":
		return ModeNone, true
	case "via":
		return ModeVia, true
	case "line":
		return ModeLine, true
	case "rectangle":
		return ModeRectangle, true
	case "polygon":
		return ModePolygon, true
	case "polygonhole":
		return ModePolygonHole, true
	case "pastebuffer":
		return ModePasteBuffer, true
	case "text":
		return ModeText, true
	case "rotate":
		return ModeRotate, true
	case "remove":
		return ModeRemove, true
	case "move":
		return ModeMove, true
	case "copy":
		return ModeCopy, true
	case "insertpoint":
		return ModeInsertPoint, true
	case "rubberbandmove":
		return ModeRubberbandMove, true
	case "thermal":
		return ModeThermal, true
	case "arc":
		return ModeArc, true
	case "arrow":
		return ModeArrow, true
	case "lock":
		return ModeLock, true
	default:
		return ModeNone, false
	}
}

func parsePoint(xs, ys string) (geom.Point, error) {
	x, _, _, err := ParseCoord(xs)
	if err != nil {
		return geom.Point{}, err
	}
	y, _, _, err := ParseCoord(ys)
	if err != nil {
		return geom.Point{}, err
	}
	return geom.Point{X: x, Y: y}, nil
}

func actionSelect(c *core.Context, _ *State, argv []string) (string, error) {
	if len(argv) != 2 {
		return "", pcberr.New(pcberr.Argument, "select requires x y")
	}
	p, err := parsePoint(argv[0], argv[1])
	if err != nil {
		return "", err
	}
	ref, found := SelectObject(c, p, nil)
	if !found {
		return "nothing at that point", nil
	}
	return ref.Kind.String(), nil
}

func actionSelectByName(c *core.Context, _ *State, argv []string) (string, error) {
	if len(argv) != 1 {
		return "", pcberr.New(pcberr.Argument, "selectbyname requires a pattern")
	}
	touched := SelectObjectByName(c, argv[0], nil)
	return strconv.Itoa(len(touched)) + " matched", nil
}

func actionUnselectAll(c *core.Context, _ *State, _ []string) (string, error) {
	f := false
	region := geom.Box{X1: -1 << 30, Y1: -1 << 30, X2: 1 << 30, Y2: 1 << 30}
	SelectBlock(c, region, &f)
	return "", nil
}

func actionUndo(c *core.Context, _ *State, _ []string) (string, error) {
	if !c.Undo.CanUndo() {
		return "nothing to undo", nil
	}
	group := c.Undo.PopUndoGroup()
	applyUndoGroup(c, group)
	c.Undo.PushRedoGroup(group)
	c.RecomputeDirtyPolygons()
	return "", nil
}

func actionRedo(c *core.Context, _ *State, _ []string) (string, error) {
	if !c.Undo.CanRedo() {
		return "nothing to redo", nil
	}
	group := c.Undo.PopRedoGroup()
	applyRedoGroup(c, group)
	c.Undo.PushUndoGroup(group)
	c.RecomputeDirtyPolygons()
	return "", nil
}

func actionNewLine(c *core.Context, _ *State, argv []string) (string, error) {
	if len(argv) != 5 {
		return "", pcberr.New(pcberr.Argument, "newline requires layer x1 y1 x2 y2")
	}
	layerIdx, err := strconv.Atoi(argv[0])
	if err != nil {
		return "", pcberr.Newf(pcberr.Argument, "invalid layer index %q", argv[0])
	}
	p1, err := parsePoint(argv[1], argv[2])
	if err != nil {
		return "", err
	}
	p2, err := parsePoint(argv[3], argv[4])
	if err != nil {
		return "", err
	}
	line, err := model.NewLine(p1, p2, 1000, 1000, model.Flags{})
	if err != nil {
		return "", err
	}
	ref, err := c.AddLineToLayer(layerIdx, *line)
	if err != nil {
		return "", err
	}
	c.RecomputeDirtyPolygons()
	return ref.Kind.String(), nil
}

func actionNewVia(c *core.Context, _ *State, argv []string) (string, error) {
	if len(argv) != 2 {
		return "", pcberr.New(pcberr.Argument, "newvia requires x y")
	}
	p, err := parsePoint(argv[0], argv[1])
	if err != nil {
		return "", err
	}
	via := model.NewVia(p, 6000, 1000, 0, 2500, "", model.Flags{})
	ref := c.AddViaToBoard(*via)
	c.RecomputeDirtyPolygons()
	return ref.Kind.String(), nil
}

func actionDelete(c *core.Context, _ *State, argv []string) (string, error) {
	if len(argv) != 2 {
		return "", pcberr.New(pcberr.Argument, "delete requires layer-index entity-index")
	}
	layerIdx, err := strconv.Atoi(argv[0])
	if err != nil {
		return "", pcberr.Newf(pcberr.Argument, "invalid layer index %q", argv[0])
	}
	index, err := strconv.Atoi(argv[1])
	if err != nil {
		return "", pcberr.Newf(pcberr.Argument, "invalid entity index %q", argv[1])
	}
	if err := c.RemoveLine(layerIdx, index); err != nil {
		return "", err
	}
	c.RecomputeDirtyPolygons()
	return "", nil
}

func actionMove(c *core.Context, _ *State, argv []string) (string, error) {
	if len(argv) != 4 {
		return "", pcberr.New(pcberr.Argument, "move requires layer index dx dy")
	}
	layerIdx, err := strconv.Atoi(argv[0])
	if err != nil {
		return "", pcberr.Newf(pcberr.Argument, "invalid layer index %q", argv[0])
	}
	index, err := strconv.Atoi(argv[1])
	if err != nil {
		return "", pcberr.Newf(pcberr.Argument, "invalid entity index %q", argv[1])
	}
	dx, _, _, err := ParseCoord(argv[2])
	if err != nil {
		return "", err
	}
	dy, _, _, err := ParseCoord(argv[3])
	if err != nil {
		return "", err
	}
	if err := c.MoveLine(layerIdx, index, dx, dy); err != nil {
		return "", err
	}
	c.RecomputeDirtyPolygons()
	return "", nil
}
