// Package boardfile implements the text board file format spec §6
// names: a header with a monotonic file version, a PCB[] header line,
// per-layer blocks of lines/arcs/texts/polygons, via/element/rat-line
// records, and an optional netlist block. The shape follows the
// upstream editor's WritePCBFile/LoadDataFromPcb bracket-and-paren
// syntax (see original_source/src/file.c), simplified to the fields
// this core's model.Board actually carries — it is a round-trip codec
// for this core, not a byte-compatible reader of every historical
// upstream feature flag.
package boardfile

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pcb-core/pcb/internal/geom"
	"github.com/pcb-core/pcb/internal/model"
	"github.com/pcb-core/pcb/internal/pcberr"
)

// FileVersion is the lowest version this writer ever emits and the
// floor this reader accepts, mirroring PCB_FILE_VERSION_BASELINE.
const FileVersion = 20

// Write serializes b as a board file to w.
func Write(w io.Writer, b *model.Board) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "FileVersion[%d]\n", FileVersion)
	fmt.Fprintf(bw, "PCB[%s %d %d]\n", quote(b.Name), int64(b.MaxWidth), int64(b.MaxHeight))
	fmt.Fprintf(bw, "Grid[%d]\n", int64(b.Grid))
	fmt.Fprintf(bw, "Flags(%d)\n", 0)
	fmt.Fprintf(bw, "DRC[%d %d %d]\n", int64(b.DRC.MinClearance), int64(b.DRC.MinLineWidth), int64(b.DRC.MinDrill))

	for name, ix := range b.LayerGroups {
		fmt.Fprintf(bw, "Groups(%s", quote(name))
		for _, i := range ix {
			fmt.Fprintf(bw, " %d", i)
		}
		fmt.Fprintf(bw, ")\n")
	}
	for k, v := range b.Attributes {
		fmt.Fprintf(bw, "Attribute(%s %s)\n", quote(k), quote(v))
	}

	b.Vias.Each(func(_ int, v *model.Via) model.Control {
		fmt.Fprintf(bw, "Via[%d %d %d %d %d %d %s %d]\n",
			int64(v.Center.X), int64(v.Center.Y), int64(v.Diameter), int64(v.Clearance), int64(v.Mask), int64(v.Drill),
			quote(v.Name), uint32(v.Flags.Raw()))
		return model.ControlContinue
	})

	b.Rats.Each(func(_ int, r *model.Rat) model.Control {
		fmt.Fprintf(bw, "Rat[%d %d %s %d %d %s %d %d]\n",
			int64(r.Point1.X), int64(r.Point1.Y), quote(r.LayerGroup1),
			int64(r.Point2.X), int64(r.Point2.Y), quote(r.LayerGroup2),
			int64(r.Thickness), uint32(r.Flags.Raw()))
		return model.ControlContinue
	})

	b.Elements.Each(func(_ int, e *model.Element) model.Control {
		writeElement(bw, e)
		return model.ControlContinue
	})

	for li, layer := range b.Layers {
		writeLayer(bw, li, layer)
	}

	if len(b.Netlist) > 0 {
		fmt.Fprintf(bw, "NetList()\n(\n")
		for name, net := range b.Netlist {
			fmt.Fprintf(bw, "\tNet(%s %s)\n\t(\n", quote(name), quote(net.Style))
			for _, pin := range net.Pins {
				fmt.Fprintf(bw, "\t\tConnect(%s)\n", quote(pin))
			}
			fmt.Fprintf(bw, "\t)\n")
		}
		fmt.Fprintf(bw, ")\n")
	}

	return bw.Flush()
}

func writeElement(bw *bufio.Writer, e *model.Element) {
	fmt.Fprintf(bw, "Element[%d %s %s %s %d %d %d]\n(\n",
		uint32(e.Flags.Raw()), quote(e.Description), quote(e.Refdes), quote(e.Value),
		int64(e.Mark.X), int64(e.Mark.Y), 0)
	for k, v := range e.Attributes {
		fmt.Fprintf(bw, "\tAttribute(%s %s)\n", quote(k), quote(v))
	}
	e.Pins.Each(func(_ int, p *model.Pin) model.Control {
		fmt.Fprintf(bw, "\tPin[%d %d %d %d %d %d %s %s %d]\n",
			int64(p.Center.X-e.Mark.X), int64(p.Center.Y-e.Mark.Y), int64(p.Diameter), int64(p.Clearance), int64(p.Mask), int64(p.Drill),
			quote(p.Name), quote(p.Number), uint32(p.Flags.Raw()))
		return model.ControlContinue
	})
	e.Pads.Each(func(_ int, p *model.Pad) model.Control {
		fmt.Fprintf(bw, "\tPad[%d %d %d %d %d %d %d %s %s %d]\n",
			int64(p.Point1.X-e.Mark.X), int64(p.Point1.Y-e.Mark.Y),
			int64(p.Point2.X-e.Mark.X), int64(p.Point2.Y-e.Mark.Y),
			int64(p.Thickness), int64(p.Clearance), int64(p.Mask),
			quote(p.Name), quote(p.Number), uint32(p.Flags.Raw()))
		return model.ControlContinue
	})
	e.SilkLines.Each(func(_ int, l *model.Line) model.Control {
		fmt.Fprintf(bw, "\tElementLine[%d %d %d %d %d]\n",
			int64(l.Point1.X-e.Mark.X), int64(l.Point1.Y-e.Mark.Y),
			int64(l.Point2.X-e.Mark.X), int64(l.Point2.Y-e.Mark.Y), int64(l.Thickness))
		return model.ControlContinue
	})
	e.SilkArcs.Each(func(_ int, a *model.Arc) model.Control {
		fmt.Fprintf(bw, "\tElementArc[%d %d %d %d %d %d %d]\n",
			int64(a.Center.X-e.Mark.X), int64(a.Center.Y-e.Mark.Y), int64(a.Width), int64(a.Height),
			int64(a.StartAngle), int64(a.Delta), int64(a.Thickness))
		return model.ControlContinue
	})
	fmt.Fprintf(bw, ")\n")
}

func writeLayer(bw *bufio.Writer, idx int, layer *model.Layer) {
	fmt.Fprintf(bw, "Layer(%d %s %d %d)\n(\n", idx, quote(layer.Name), int(layer.Type), boolInt(layer.Visible))
	layer.Lines.Each(func(_ int, l *model.Line) model.Control {
		fmt.Fprintf(bw, "\tLine[%d %d %d %d %d %d %d]\n",
			int64(l.Point1.X), int64(l.Point1.Y), int64(l.Point2.X), int64(l.Point2.Y),
			int64(l.Thickness), int64(l.Clearance), uint32(l.Flags.Raw()))
		return model.ControlContinue
	})
	layer.Arcs.Each(func(_ int, a *model.Arc) model.Control {
		fmt.Fprintf(bw, "\tArc[%d %d %d %d %d %d %d %d %d]\n",
			int64(a.Center.X), int64(a.Center.Y), int64(a.Width), int64(a.Height),
			int64(a.Thickness), int64(a.Clearance), int64(a.StartAngle), int64(a.Delta), uint32(a.Flags.Raw()))
		return model.ControlContinue
	})
	layer.Texts.Each(func(_ int, t *model.Text) model.Control {
		fmt.Fprintf(bw, "\tText[%d %d %d %d %s %d]\n",
			int64(t.Anchor.X), int64(t.Anchor.Y), int(t.Direction), t.Scale, quote(t.String), uint32(t.Flags.Raw()))
		return model.ControlContinue
	})
	layer.Polygons.Each(func(_ int, p *model.Polygon) model.Control {
		fmt.Fprintf(bw, "\tPolygon(%d)\n\t(\n", uint32(p.Flags.Raw()))
		hole := 0
		for i, pt := range p.Points {
			if hole < len(p.Holes) && i == p.Holes[hole] {
				hole++
				fmt.Fprintf(bw, "\t\tHole\n")
			}
			fmt.Fprintf(bw, "\t\t[%d %d]\n", int64(pt.X), int64(pt.Y))
		}
		fmt.Fprintf(bw, "\t)\n")
		return model.ControlContinue
	})
	fmt.Fprintf(bw, ")\n")
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"', '\\':
			sb.WriteByte('\\')
			sb.WriteRune(r)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	var sb strings.Builder
	esc := false
	for _, r := range s {
		if esc {
			sb.WriteRune(r)
			esc = false
			continue
		}
		if r == '\\' {
			esc = true
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

var errBadLine = pcberr.New(pcberr.Parse, "malformed board file line")

// tokenize splits a bracketed arg list like `12 34 "a b" 56` into fields,
// keeping quoted strings intact despite internal whitespace.
func tokenize(s string) []string {
	var out []string
	var cur strings.Builder
	inQuote := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			inQuote = !inQuote
			cur.WriteByte(c)
		case c == ' ' && !inQuote:
			if cur.Len() > 0 {
				out = append(out, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteByte(c)
		}
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}

func argsBetween(line string, open, close byte) (string, bool) {
	i := strings.IndexByte(line, open)
	j := strings.LastIndexByte(line, close)
	if i < 0 || j < 0 || j <= i {
		return "", false
	}
	return line[i+1 : j], true
}

func atoi(tok string) int64 {
	n, _ := strconv.ParseInt(tok, 10, 64)
	return n
}

func coord(tok string) geom.Coord { return geom.Coord(atoi(tok)) }

func flagOf(tok string) model.Flags {
	n, _ := strconv.ParseUint(tok, 10, 32)
	return model.FlagsFromRaw(model.Flag(n), nil)
}
