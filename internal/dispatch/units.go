package dispatch

import (
	"strconv"
	"strings"

	"github.com/pcb-core/pcb/internal/geom"
	"github.com/pcb-core/pcb/internal/pcberr"
)

// The coordsPer* constants express every recognized unit suffix as a multiple of the
// board's native Coord unit (taken here to be 1/100 mil, matching the
// reference editor's internal unit exactly so mil/cmil arguments need no
// rounding).
const (
	coordsPerMil = 100
	coordsPerCmil = 1
	coordsPerInch = 100 * 1000
	coordsPerMM   = int64(float64(coordsPerInch) / 25.4)
)

// ParseCoord parses an argv-style distance argument: an optional
// leading '+' or '-' (relative to some caller-supplied base, which the
// action itself applies), a decimal number, and a unit suffix of mm,
// mil, cmil, or in. A bare number with no suffix is taken as internal
// board units.
func ParseCoord(arg string) (value geom.Coord, relative bool, negative bool, err error) {
	s := strings.TrimSpace(arg)
	if s == "" {
		return 0, false, false, pcberr.New(pcberr.Argument, "empty numeric argument")
	}
	if s[0] == '+' {
		relative = true
		s = s[1:]
	} else if s[0] == '-' {
		relative = true
		negative = true
		s = s[1:]
	}

	unit := ""
	for _, suffix := range []string{"cmil", "mil", "mm", "in"} {
		if strings.HasSuffix(s, suffix) {
			unit = suffix
			s = strings.TrimSuffix(s, suffix)
			break
		}
	}
	s = strings.TrimSpace(s)

	f, perr := strconv.ParseFloat(s, 64)
	if perr != nil {
		return 0, false, false, pcberr.Newf(pcberr.Argument, "invalid numeric argument %q", arg)
	}

	coords := f
	switch unit {
	case "mil":
		coords = f * coordsPerMil
	case "cmil":
		coords = f * coordsPerCmil
	case "mm":
		coords = f * float64(coordsPerMM)
	case "in":
		coords = f * float64(coordsPerInch)
	}
	value = geom.RoundCoord(coords)
	if negative {
		value = -value
	}
	return value, relative, negative, nil
}

// ApplyRelative resolves a possibly-relative parsed coordinate against a
// base value; actions that accept +N/-N arguments (move, resize,
// drill-size change) call this after ParseCoord.
func ApplyRelative(base, parsed geom.Coord, relative bool) geom.Coord {
	if relative {
		return base + parsed
	}
	return parsed
}
