package dispatch

import (
	"strconv"

	"github.com/pcb-core/pcb/internal/core"
	"github.com/pcb-core/pcb/internal/geom"
	"github.com/pcb-core/pcb/internal/model"
	"github.com/pcb-core/pcb/internal/pcberr"
)

// finePitchVia is one row of fanout.c's via-dimensions lookup table,
// converted from millimeters to Coord units at package init. BGA pin
// pitch selects the row; finer pitches get smaller pads, smaller drills
// and tighter clearance so the via fits between adjacent pads.
type finePitchVia struct {
	pitchMM                  float64
	padDiameter, drillDiameter, clearance geom.Coord
}

func mmToCoord(mm float64) geom.Coord {
	return geom.Coord(mm * 100 * 1000 / 25.4)
}

var finePitchTable = []finePitchVia{
	{pitchMM: 1.27, padDiameter: mmToCoord(0.635), drillDiameter: mmToCoord(0.30), clearance: mmToCoord(0.85)},
	{pitchMM: 1.00, padDiameter: mmToCoord(0.55), drillDiameter: mmToCoord(0.25), clearance: mmToCoord(0.70)},
	{pitchMM: 0.80, padDiameter: mmToCoord(0.50), drillDiameter: mmToCoord(0.25), clearance: mmToCoord(0.70)},
	{pitchMM: 0.75, padDiameter: mmToCoord(0.40), drillDiameter: mmToCoord(0.15), clearance: mmToCoord(0.60)},
	{pitchMM: 0.65, padDiameter: mmToCoord(0.45), drillDiameter: mmToCoord(0.15), clearance: mmToCoord(0.55)},
	{pitchMM: 0.50, padDiameter: mmToCoord(0.275), drillDiameter: mmToCoord(0.125), clearance: mmToCoord(0.40)},
	{pitchMM: 0.40, padDiameter: mmToCoord(0.25), drillDiameter: mmToCoord(0.125), clearance: mmToCoord(0.35)},
}

// viaForPitch picks the table row matching pitchMM within a small
// tolerance, or the closest finer row if no exact match — a pitch
// between two rows is fanned out as if it were the tighter of the two,
// never the looser (fanout.c's lookup always errs toward conservative
// clearance over an optimistic fit).
func viaForPitch(pitchMM float64) finePitchVia {
	const tolerance = 0.005
	for _, row := range finePitchTable {
		d := row.pitchMM - pitchMM
		if d < 0 {
			d = -d
		}
		if d <= tolerance {
			return row
		}
	}
	// finePitchTable runs coarse to fine, so the first smaller pitch is
	// the closest finer row.
	for _, row := range finePitchTable {
		if row.pitchMM < pitchMM {
			return row
		}
	}
	return finePitchTable[len(finePitchTable)-1]
}

// actionFanout expands every pad of elementRef into a fanout via placed
// directly under the pad center, sized from the fine-pitch table by the
// element's pitch argument (fanout.c's per-pad placement loop, adapted
// to flow through core.Context's journaled AddViaToBoard rather than
// mutating the board directly).
func actionFanout(c *core.Context, _ *State, argv []string) (string, error) {
	if len(argv) != 2 {
		return "", pcberr.New(pcberr.Argument, "fanout requires element-index pitch-mm")
	}
	elIdx, err := strconv.Atoi(argv[0])
	if err != nil {
		return "", pcberr.Newf(pcberr.Argument, "invalid element index %q", argv[0])
	}
	pitchMM, err := strconv.ParseFloat(argv[1], 64)
	if err != nil {
		return "", pcberr.Newf(pcberr.Argument, "invalid pitch %q", argv[1])
	}

	el := c.Board.Elements.Get(elIdx)
	if el == nil {
		return "", pcberr.Newf(pcberr.NotFound, "no element at index %d", elIdx)
	}
	row := viaForPitch(pitchMM)

	count := 0
	el.Pads.Each(func(_ int, p *model.Pad) model.Control {
		center := geom.Point{X: (p.Point1.X + p.Point2.X) / 2, Y: (p.Point1.Y + p.Point2.Y) / 2}
		via := model.NewVia(center, row.padDiameter, row.clearance, 0, row.drillDiameter, "", model.Flags{})
		c.AddViaToBoard(*via)
		count++
		return model.ControlContinue
	})
	c.RecomputeDirtyPolygons()
	return strconv.Itoa(count) + " vias placed", nil
}
