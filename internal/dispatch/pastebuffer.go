package dispatch

import (
	"strconv"
	"strings"

	"github.com/pcb-core/pcb/internal/core"
	"github.com/pcb-core/pcb/internal/geom"
	"github.com/pcb-core/pcb/internal/pcberr"
)

// actionPasteBuffer exposes PasteBuffer's operations (spec's
// add-selected, clear, convert, smash, mirror, rotate, free-rotate,
// save-to-file, paste-to-layout) as one dispatch action switching on its
// first argument, all against s.Buffers[s.ActiveBuffer].
func actionPasteBuffer(c *core.Context, s *State, argv []string) (string, error) {
	if len(argv) == 0 {
		return "", pcberr.New(pcberr.Argument, "pastebuffer requires a sub-action")
	}
	buf := s.Buffers[s.ActiveBuffer]
	rest := argv[1:]

	switch strings.ToLower(argv[0]) {
	case "addselected":
		buf.AddSelected(c.Board)
		return "", nil
	case "clear":
		buf.Clear()
		return "", nil
	case "convert":
		buf.Convert()
		return "", nil
	case "smash":
		if len(rest) != 1 {
			return "", pcberr.New(pcberr.Argument, "pastebuffer smash requires an element index")
		}
		idx, err := strconv.Atoi(rest[0])
		if err != nil {
			return "", pcberr.Newf(pcberr.Argument, "invalid element index %q", rest[0])
		}
		buf.SmashElement(idx)
		return "", nil
	case "mirror":
		buf.Mirror()
		return "", nil
	case "rotate":
		if len(rest) != 1 {
			return "", pcberr.New(pcberr.Argument, "pastebuffer rotate requires a quarter-turn count")
		}
		n, err := strconv.Atoi(rest[0])
		if err != nil {
			return "", pcberr.Newf(pcberr.Argument, "invalid rotation count %q", rest[0])
		}
		buf.Rotate90(n)
		return "", nil
	case "freerotate":
		if len(rest) != 1 {
			return "", pcberr.New(pcberr.Argument, "pastebuffer freerotate requires an angle in degrees")
		}
		deg, err := strconv.ParseFloat(rest[0], 64)
		if err != nil {
			return "", pcberr.Newf(pcberr.Argument, "invalid angle %q", rest[0])
		}
		buf.FreeRotate(geom.Angle(deg))
		return "", nil
	case "savetofile":
		if len(rest) != 1 {
			return "", pcberr.New(pcberr.Argument, "pastebuffer savetofile requires a path")
		}
		if err := buf.SaveToFile(rest[0]); err != nil {
			return "", err
		}
		return "", nil
	case "pastetolayout", "tolayout":
		if len(rest) != 2 {
			return "", pcberr.New(pcberr.Argument, "pastebuffer pastetolayout requires x y")
		}
		p, err := parsePoint(rest[0], rest[1])
		if err != nil {
			return "", err
		}
		buf.PasteToLayout(c, p.X, p.Y)
		return "", nil
	default:
		return "", pcberr.Newf(pcberr.Argument, "unknown pastebuffer sub-action %q", argv[0])
	}
}
