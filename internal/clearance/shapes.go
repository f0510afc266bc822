package clearance

import (
	"math"

	"github.com/pcb-core/pcb/internal/geom"
	"github.com/pcb-core/pcb/internal/model"
)

// circleOutline approximates a circle of radius r centered at c as a
// regular polygon. 32 sides is enough resolution that the clipper-backed
// boolean algebra never produces a visible facet at board zoom levels.
const circleSides = 32

func circleOutline(c geom.Point, r geom.Coord) []geom.Point {
	if r <= 0 {
		return nil
	}
	out := make([]geom.Point, circleSides)
	for i := 0; i < circleSides; i++ {
		a := 2 * math.Pi * float64(i) / circleSides
		out[i] = geom.Point{
			X: c.X + geom.RoundCoord(float64(r)*math.Cos(a)),
			Y: c.Y + geom.RoundCoord(float64(r)*math.Sin(a)),
		}
	}
	return out
}

// stadiumOutline is the clearance outline of a thick line segment: a
// rectangle the width of the segment capped by a half-circle at each end.
func stadiumOutline(p1, p2 geom.Point, r geom.Coord) []geom.Point {
	if r <= 0 {
		return []geom.Point{p1, p2}
	}
	dx := float64(p2.X - p1.X)
	dy := float64(p2.Y - p1.Y)
	length := math.Hypot(dx, dy)
	if length == 0 {
		return circleOutline(p1, r)
	}
	baseAngle := math.Atan2(dy, dx)

	const capSteps = 16
	out := make([]geom.Point, 0, capSteps*2+2)
	for i := 0; i <= capSteps; i++ {
		a := baseAngle + math.Pi/2 + math.Pi*float64(i)/float64(capSteps)
		out = append(out, geom.Point{
			X: p2.X + geom.RoundCoord(float64(r)*math.Cos(a)),
			Y: p2.Y + geom.RoundCoord(float64(r)*math.Sin(a)),
		})
	}
	for i := 0; i <= capSteps; i++ {
		a := baseAngle - math.Pi/2 + math.Pi*float64(i)/float64(capSteps)
		out = append(out, geom.Point{
			X: p1.X + geom.RoundCoord(float64(r)*math.Cos(a)),
			Y: p1.Y + geom.RoundCoord(float64(r)*math.Sin(a)),
		})
	}
	return out
}

// rectOutline is the clearance outline of a square/rectangular pad: the
// bounding box of the two endpoints inflated by r, with square corners.
func rectOutline(p1, p2 geom.Point, r geom.Coord) []geom.Point {
	b := geom.BoundingBoxOfPoints([]geom.Point{p1, p2}).InflateBy(r)
	return []geom.Point{
		{X: b.X1, Y: b.Y1},
		{X: b.X2, Y: b.Y1},
		{X: b.X2, Y: b.Y2},
		{X: b.X1, Y: b.Y2},
	}
}

// arcOutline approximates an arc's clearance ribbon by sampling points
// along its centerline and building a band of half-width r around them.
// It is a ribbon, not a true offset curve, which is adequate once it
// feeds into clipper2's own boolean cleanup.
func arcOutline(a *model.Arc, r geom.Coord) []geom.Point {
	const samples = 24
	pts := make([]geom.Point, 0, samples+1)
	for i := 0; i <= samples; i++ {
		ang := a.StartAngle + geom.Angle(float64(a.Delta)*float64(i)/float64(samples))
		from, _ := geom.ArcEndpoints(a.Center, a.Width, a.Height, ang, 0)
		pts = append(pts, from)
	}
	out := make([]geom.Point, 0, len(pts)*2)
	for _, p := range pts {
		out = append(out, geom.Point{X: p.X - r, Y: p.Y - r})
	}
	for i := len(pts) - 1; i >= 0; i-- {
		out = append(out, geom.Point{X: pts[i].X + r, Y: pts[i].Y + r})
	}
	return out
}

// spokeGeometry builds one four-point thermal finger per angle, halfWidth
// to either side of the ray; the finger's length, like the halfWidth its
// caller passes in, is derived from the conductor's own clearance distance
// so spokes scale with the same clearance the style is bridging.
func spokeGeometry(center geom.Point, outerR, clear geom.Coord, angles []float64, halfWidth geom.Coord, rounded bool) [][]geom.Point {
	var spokes [][]geom.Point
	length := outerR + clear + clear // reach from the conductor edge to just past the clearance ring
	for _, a := range angles {
		rad := a * math.Pi / 180
		ux, uy := math.Cos(rad), math.Sin(rad)
		nx, ny := -uy, ux
		near := geom.Point{
			X: center.X + geom.RoundCoord(float64(outerR-clear)*ux),
			Y: center.Y + geom.RoundCoord(float64(outerR-clear)*uy),
		}
		far := geom.Point{
			X: center.X + geom.RoundCoord(float64(outerR+length)*ux),
			Y: center.Y + geom.RoundCoord(float64(outerR+length)*uy),
		}
		hw := float64(halfWidth)
		spoke := []geom.Point{
			{X: near.X + geom.RoundCoord(hw*nx), Y: near.Y + geom.RoundCoord(hw*ny)},
			{X: far.X + geom.RoundCoord(hw*nx), Y: far.Y + geom.RoundCoord(hw*ny)},
			{X: far.X - geom.RoundCoord(hw*nx), Y: far.Y - geom.RoundCoord(hw*ny)},
			{X: near.X - geom.RoundCoord(hw*nx), Y: near.Y - geom.RoundCoord(hw*ny)},
		}
		spokes = append(spokes, spoke)
	}
	return spokes
}

// thermalSpokeGeometry returns the spoke contours that, unioned back into
// a polygon's clipped shape, reconnect a pin/via to the polygon under the
// given thermal style. ThermalSolid has no spokes: the conductor touches
// the polygon directly, so no clearance ring needs bridging and the
// caller skips adding a clearance region for it at all.
func thermalSpokeGeometry(c Conductor, style model.ThermalStyle) [][]geom.Point {
	box := c.Box
	center := geom.Point{X: (box.X1 + box.X2) / 2, Y: (box.Y1 + box.Y2) / 2}
	outerR := (box.X2 - box.X1) / 2
	halfWidth := c.Clearance / 2
	if halfWidth <= 0 {
		halfWidth = 1
	}

	switch style {
	case model.ThermalNone, model.ThermalSolid:
		return nil
	case model.ThermalOrthogonalSharp, model.ThermalOrthogonalRounded:
		return spokeGeometry(center, outerR, c.Clearance, []float64{0, 90, 180, 270}, halfWidth, style == model.ThermalOrthogonalRounded)
	case model.ThermalDiagonalSharp, model.ThermalDiagonalRounded:
		return spokeGeometry(center, outerR, c.Clearance, []float64{45, 135, 225, 315}, halfWidth, style == model.ThermalDiagonalRounded)
	default:
		return nil
	}
}
