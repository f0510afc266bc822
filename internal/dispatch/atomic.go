package dispatch

import (
	"strings"

	"github.com/pcb-core/pcb/internal/core"
	"github.com/pcb-core/pcb/internal/pcberr"
)

// actionAtomic exposes the journal's Save/Restore/Close/Block bracket as
// a dispatch action, for callers (scripted command sequences, the
// listen-mode protocol) that need to open and close a composite undo
// group across several separate notify/newline/etc calls rather than
// through one Go closure passed to Journal.Atomic.
func actionAtomic(c *core.Context, s *State, argv []string) (string, error) {
	if len(argv) != 1 {
		return "", pcberr.New(pcberr.Argument, "atomic requires exactly one argument")
	}
	switch strings.ToLower(argv[0]) {
	case "save":
		if s.atomicOpen {
			return "", pcberr.New(pcberr.Argument, "atomic save called with a bracket already open")
		}
		s.atomicSnap = c.Undo.Save()
		s.atomicOpen = true
		return "", nil
	case "restore":
		if !s.atomicOpen {
			return "", pcberr.New(pcberr.Argument, "atomic restore called with no open bracket")
		}
		c.Undo.Restore(s.atomicSnap)
		s.atomicOpen = false
		return "", nil
	case "close":
		if !s.atomicOpen {
			return "", pcberr.New(pcberr.Argument, "atomic close called with no open bracket")
		}
		c.Undo.Close(s.atomicSnap)
		s.atomicOpen = false
		c.RecomputeDirtyPolygons()
		return "", nil
	case "block":
		if !s.atomicOpen {
			return "", pcberr.New(pcberr.Argument, "atomic block called with no open bracket")
		}
		c.Undo.Block(s.atomicSnap)
		s.atomicOpen = false
		c.RecomputeDirtyPolygons()
		return "", nil
	default:
		return "", pcberr.Newf(pcberr.Argument, "unknown atomic sub-action %q", argv[0])
	}
}
