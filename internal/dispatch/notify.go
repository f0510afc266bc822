package dispatch

import (
	"github.com/pcb-core/pcb/internal/core"
	"github.com/pcb-core/pcb/internal/geom"
	"github.com/pcb-core/pcb/internal/model"
	"github.com/pcb-core/pcb/internal/pcberr"
)

// defaultVia mirrors actionNewVia's hardcoded geometry, the same
// diameter/clearance/mask/drill a freehand via placement uses.
func defaultVia(p geom.Point) *model.Via {
	return model.NewVia(p, 6000, 1000, 0, 2500, "", model.Flags{})
}

// actionNotify is the single entry point the source's NotifyMode calls
// from every input driver (mouse click, remote action, test harness):
// it dispatches on the active tool mode, placing or removing an entity
// at the given point. Only the modes the registry actually drives
// end-to-end (via placement and remove-by-hit-test) are implemented;
// every other mode is reported as unsupported rather than silently
// doing nothing, since notify is meant to be exhaustive over s.Mode.
func actionNotify(c *core.Context, s *State, argv []string) (string, error) {
	if len(argv) != 2 {
		return "", pcberr.New(pcberr.Argument, "notify requires x y")
	}
	p, err := parsePoint(argv[0], argv[1])
	if err != nil {
		return "", err
	}

	switch s.Mode {
	case ModeVia:
		ref := c.AddViaToBoard(*defaultVia(p))
		c.RecomputeDirtyPolygons()
		return ref.Kind.String(), nil
	case ModeRemove:
		return notifyRemove(c, p)
	default:
		return "", pcberr.Newf(pcberr.Argument, "notify not supported in mode %s", s.Mode)
	}
}

// notifyRemove hit-tests p and removes whatever single entity
// SearchScreen finds there, in the same priority order selection uses
// (pins/vias/pads before traces, traces before rat lines).
func notifyRemove(c *core.Context, p geom.Point) (string, error) {
	hits := SearchScreen(c, p)
	if len(hits) == 0 {
		return "nothing at that point", nil
	}
	ref := hits[0]
	var err error
	switch ref.Kind {
	case model.KindVia:
		err = c.RemoveVia(ref.Index)
	case model.KindPin:
		err = c.RemovePin(ref.Element, ref.Index)
	case model.KindLine:
		err = c.RemoveLine(ref.Layer, ref.Index)
	default:
		return "", pcberr.Newf(pcberr.Argument, "remove not supported for %s", ref.Kind.String())
	}
	if err != nil {
		return "", err
	}
	c.RecomputeDirtyPolygons()
	return ref.Kind.String(), nil
}
