// Package netlist parses the flat netlist file format spec §6 names: one
// net per line, colon-separating the net name from its route style, then
// whitespace-separated ref-pin entries; a trailing backslash continues
// the pin list onto the next line without repeating the name:style
// prefix. Net, style, and pin names are compared case-insensitively.
package netlist

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pcb-core/pcb/internal/model"
	"github.com/pcb-core/pcb/internal/pcberr"
)

// Net is one parsed net: its name, route style, and member pins in
// "refdes-pinnumber" form, matching model.Net's read-only-by-name
// annotation (invariant 6: no pointers into the pin list).
type Net struct {
	Name  string
	Style string
	Pins  []string
}

// Parse reads the netlist format from r, returning one Net per
// (possibly backslash-continued) logical line.
func Parse(r io.Reader) ([]Net, error) {
	var nets []Net
	scanner := bufio.NewScanner(r)
	lineNo := 0

	var current *Net
	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()
		continued := strings.HasSuffix(strings.TrimRight(raw, " \t"), "\\")
		line := strings.TrimSpace(strings.TrimSuffix(strings.TrimRight(raw, " \t"), "\\"))
		if line == "" {
			continue
		}

		if current == nil {
			name, style, pins, err := parseHeaderLine(line, lineNo)
			if err != nil {
				return nil, err
			}
			current = &Net{Name: name, Style: style, Pins: pins}
		} else {
			current.Pins = append(current.Pins, strings.Fields(line)...)
		}

		if !continued {
			nets = append(nets, *current)
			current = nil
		}
	}
	if current != nil {
		return nil, pcberr.Newf(pcberr.Parse, "netlist line %d: backslash continuation never closed", lineNo)
	}
	if err := scanner.Err(); err != nil {
		return nil, pcberr.New(pcberr.Resource, "error reading netlist").Wrap(err)
	}
	return nets, nil
}

// parseHeaderLine splits "name:style pin1 pin2 ..." into its parts. A
// missing ":style" is accepted with an empty style, matching the
// original importer's tolerance for netlists gnetlist emits without one.
func parseHeaderLine(line string, lineNo int) (name, style string, pins []string, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", "", nil, pcberr.Newf(pcberr.Parse, "netlist line %d: empty net header", lineNo)
	}
	head := fields[0]
	if idx := strings.IndexByte(head, ':'); idx >= 0 {
		name, style = head[:idx], head[idx+1:]
	} else {
		name = head
	}
	if name == "" {
		return "", "", nil, pcberr.Newf(pcberr.Parse, "netlist line %d: missing net name", lineNo)
	}
	return name, style, fields[1:], nil
}

// ToBoardNetlist converts parsed nets into the board's map[string]Net
// representation, keyed case-insensitively (the last net with a given
// name, compared case-insensitively, wins — matching the source's
// "case-insensitive names" rule for a format with no duplicate-detection
// pass of its own).
func ToBoardNetlist(nets []Net) map[string]model.Net {
	out := make(map[string]model.Net, len(nets))
	for _, n := range nets {
		out[strings.ToLower(n.Name)] = model.Net{Style: n.Style, Pins: n.Pins}
	}
	return out
}

// Write serializes nets back out in the same format Parse reads,
// wrapping long pin lists with a backslash continuation every maxPerLine
// pins so round-tripped files stay readable.
func Write(w io.Writer, nets []Net, maxPerLine int) error {
	if maxPerLine <= 0 {
		maxPerLine = 8
	}
	bw := bufio.NewWriter(w)
	for _, n := range nets {
		header := n.Name
		if n.Style != "" {
			header = fmt.Sprintf("%s:%s", n.Name, n.Style)
		}
		if len(n.Pins) == 0 {
			if _, err := fmt.Fprintln(bw, header); err != nil {
				return err
			}
			continue
		}
		first := true
		for i := 0; i < len(n.Pins); i += maxPerLine {
			end := i + maxPerLine
			if end > len(n.Pins) {
				end = len(n.Pins)
			}
			chunk := strings.Join(n.Pins[i:end], " ")
			more := end < len(n.Pins)
			prefix := ""
			if first {
				prefix = header + " "
				first = false
			}
			suffix := ""
			if more {
				suffix = " \\"
			}
			if _, err := fmt.Fprintln(bw, prefix+chunk+suffix); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}
