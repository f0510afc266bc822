package boardfile

import (
	"bufio"
	"io"
	"strings"

	"github.com/pcb-core/pcb/internal/geom"
	"github.com/pcb-core/pcb/internal/model"
	"github.com/pcb-core/pcb/internal/pcberr"
)

// lineReader is a pushback-capable line scanner; several constructs here
// (Layer, Element, Polygon, NetList) look ahead one line for the opening
// "(" the writer always emits on its own line.
type lineReader struct {
	sc      *bufio.Scanner
	pending string
	hasPend bool
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{sc: bufio.NewScanner(r)}
}

func (lr *lineReader) next() (string, bool) {
	if lr.hasPend {
		lr.hasPend = false
		return lr.pending, true
	}
	for lr.sc.Scan() {
		line := strings.TrimSpace(lr.sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return line, true
	}
	return "", false
}

func (lr *lineReader) push(line string) {
	lr.pending = line
	lr.hasPend = true
}

// Read parses a board file produced by Write into a fresh *model.Board.
// Parse errors abort the load and return nil, matching spec §7's policy
// of keeping the previous board rather than a half-applied one.
func Read(r io.Reader) (*model.Board, error) {
	lr := newLineReader(r)
	b := model.NewBoard("", 0, 0)
	b.LayerGroups = map[string][]int{}
	b.Attributes = map[string]string{}
	b.Netlist = map[string]model.Net{}

	fileVersion := 0

	for {
		line, ok := lr.next()
		if !ok {
			break
		}
		switch {
		case strings.HasPrefix(line, "FileVersion["):
			args, _ := argsBetween(line, '[', ']')
			fileVersion = int(atoi(strings.TrimSpace(args)))
		case strings.HasPrefix(line, "PCB["):
			args, ok := argsBetween(line, '[', ']')
			if !ok {
				return nil, errBadLine
			}
			tok := tokenize(args)
			if len(tok) < 3 {
				return nil, pcberr.New(pcberr.Parse, "malformed PCB[] header")
			}
			b.Name = unquote(tok[0])
			b.MaxWidth = coord(tok[1])
			b.MaxHeight = coord(tok[2])
		case strings.HasPrefix(line, "Grid["):
			args, _ := argsBetween(line, '[', ']')
			b.Grid = coord(strings.TrimSpace(args))
		case strings.HasPrefix(line, "DRC["):
			args, _ := argsBetween(line, '[', ']')
			tok := tokenize(args)
			if len(tok) >= 3 {
				b.DRC = model.DRCSettings{MinClearance: coord(tok[0]), MinLineWidth: coord(tok[1]), MinDrill: coord(tok[2])}
			}
		case strings.HasPrefix(line, "Groups("):
			args, _ := argsBetween(line, '(', ')')
			tok := tokenize(args)
			if len(tok) >= 1 {
				name := unquote(tok[0])
				var idxs []int
				for _, t := range tok[1:] {
					idxs = append(idxs, int(atoi(t)))
				}
				b.LayerGroups[name] = idxs
			}
		case strings.HasPrefix(line, "Attribute("):
			args, _ := argsBetween(line, '(', ')')
			tok := tokenize(args)
			if len(tok) >= 2 {
				b.Attributes[unquote(tok[0])] = unquote(tok[1])
			}
		case strings.HasPrefix(line, "Via["):
			v, err := parseVia(line)
			if err != nil {
				return nil, err
			}
			b.Vias.Add(v)
		case strings.HasPrefix(line, "Rat["):
			rat, err := parseRat(line)
			if err != nil {
				return nil, err
			}
			b.Rats.Add(rat)
		case strings.HasPrefix(line, "Element["):
			el, err := parseElement(lr, line)
			if err != nil {
				return nil, err
			}
			el.RecomputeBBox()
			b.Elements.Add(*el)
		case strings.HasPrefix(line, "Layer("):
			layer, err := parseLayer(lr, line)
			if err != nil {
				return nil, err
			}
			b.Layers = append(b.Layers, layer)
		case strings.HasPrefix(line, "NetList("):
			if err := parseNetList(lr, b); err != nil {
				return nil, err
			}
		}
	}

	if fileVersion < FileVersion {
		return nil, pcberr.Newf(pcberr.Parse, "board file version %d predates the baseline this reader supports (%d)", fileVersion, FileVersion)
	}
	return b, nil
}

func parseVia(line string) (model.Via, error) {
	args, ok := argsBetween(line, '[', ']')
	if !ok {
		return model.Via{}, errBadLine
	}
	tok := tokenize(args)
	if len(tok) < 7 {
		return model.Via{}, errBadLine
	}
	v := model.NewVia(geom.Point{X: coord(tok[0]), Y: coord(tok[1])}, coord(tok[2]), coord(tok[3]), coord(tok[4]), coord(tok[5]), unquote(tok[6]), flagOf(tok[len(tok)-1]))
	return *v, nil
}

func parseRat(line string) (model.Rat, error) {
	args, ok := argsBetween(line, '[', ']')
	if !ok {
		return model.Rat{}, errBadLine
	}
	tok := tokenize(args)
	if len(tok) < 8 {
		return model.Rat{}, errBadLine
	}
	p1 := geom.Point{X: coord(tok[0]), Y: coord(tok[1])}
	g1 := unquote(tok[2])
	p2 := geom.Point{X: coord(tok[3]), Y: coord(tok[4])}
	g2 := unquote(tok[5])
	thick := coord(tok[6])
	r := model.NewRat(p1, p2, g1, g2, thick, flagOf(tok[7]))
	return *r, nil
}

func expectOpen(lr *lineReader) error {
	line, ok := lr.next()
	if !ok || line != "(" {
		return pcberr.New(pcberr.Parse, "expected '(' to open a block")
	}
	return nil
}

func parseElement(lr *lineReader, header string) (*model.Element, error) {
	args, ok := argsBetween(header, '[', ']')
	if !ok {
		return nil, errBadLine
	}
	tok := tokenize(args)
	if len(tok) < 7 {
		return nil, errBadLine
	}
	flags := flagOf(tok[0])
	desc, refdes, value := unquote(tok[1]), unquote(tok[2]), unquote(tok[3])
	mark := geom.Point{X: coord(tok[4]), Y: coord(tok[5])}
	el := model.NewElement(mark, flags)
	el.Description, el.Refdes, el.Value = desc, refdes, value

	if err := expectOpen(lr); err != nil {
		return nil, err
	}
	for {
		line, ok := lr.next()
		if !ok {
			return nil, pcberr.New(pcberr.Parse, "unterminated Element block")
		}
		if line == ")" {
			break
		}
		switch {
		case strings.HasPrefix(line, "Attribute("):
			a, _ := argsBetween(line, '(', ')')
			t := tokenize(a)
			if len(t) >= 2 {
				el.Attributes[unquote(t[0])] = unquote(t[1])
			}
		case strings.HasPrefix(line, "Pin["):
			a, _ := argsBetween(line, '[', ']')
			t := tokenize(a)
			if len(t) < 8 {
				return nil, errBadLine
			}
			p := model.NewPin(geom.Point{X: mark.X + coord(t[0]), Y: mark.Y + coord(t[1])}, coord(t[2]), coord(t[3]), coord(t[4]), coord(t[5]), unquote(t[6]), unquote(t[7]), flagOf(t[len(t)-1]))
			el.Pins.Add(*p)
		case strings.HasPrefix(line, "Pad["):
			a, _ := argsBetween(line, '[', ']')
			t := tokenize(a)
			if len(t) < 9 {
				return nil, errBadLine
			}
			p1 := geom.Point{X: mark.X + coord(t[0]), Y: mark.Y + coord(t[1])}
			p2 := geom.Point{X: mark.X + coord(t[2]), Y: mark.Y + coord(t[3])}
			p := model.NewPad(p1, p2, coord(t[4]), coord(t[5]), coord(t[6]), unquote(t[7]), unquote(t[8]), flagOf(t[len(t)-1]))
			el.Pads.Add(*p)
		case strings.HasPrefix(line, "ElementLine["):
			a, _ := argsBetween(line, '[', ']')
			t := tokenize(a)
			if len(t) < 5 {
				return nil, errBadLine
			}
			p1 := geom.Point{X: mark.X + coord(t[0]), Y: mark.Y + coord(t[1])}
			p2 := geom.Point{X: mark.X + coord(t[2]), Y: mark.Y + coord(t[3])}
			l, err := model.NewLine(p1, p2, coord(t[4]), 0, model.Flags{})
			if err == nil {
				el.SilkLines.Add(*l)
			}
		case strings.HasPrefix(line, "ElementArc["):
			a, _ := argsBetween(line, '[', ']')
			t := tokenize(a)
			if len(t) < 7 {
				return nil, errBadLine
			}
			center := geom.Point{X: mark.X + coord(t[0]), Y: mark.Y + coord(t[1])}
			arc := model.NewArc(center, coord(t[2]), coord(t[3]), geom.Angle(atoi(t[4])), geom.Angle(atoi(t[5])), coord(t[6]), 0, model.Flags{})
			el.SilkArcs.Add(*arc)
		}
	}
	return el, nil
}

func parseLayer(lr *lineReader, header string) (*model.Layer, error) {
	args, ok := argsBetween(header, '(', ')')
	if !ok {
		return nil, errBadLine
	}
	tok := tokenize(args)
	if len(tok) < 4 {
		return nil, errBadLine
	}
	layer := &model.Layer{Name: unquote(tok[1]), Type: model.LayerType(atoi(tok[2])), Visible: atoi(tok[3]) != 0}

	if err := expectOpen(lr); err != nil {
		return nil, err
	}
	for {
		line, ok := lr.next()
		if !ok {
			return nil, pcberr.New(pcberr.Parse, "unterminated Layer block")
		}
		if line == ")" {
			break
		}
		switch {
		case strings.HasPrefix(line, "Line["):
			a, _ := argsBetween(line, '[', ']')
			t := tokenize(a)
			if len(t) < 7 {
				return nil, errBadLine
			}
			p1 := geom.Point{X: coord(t[0]), Y: coord(t[1])}
			p2 := geom.Point{X: coord(t[2]), Y: coord(t[3])}
			l, err := model.NewLine(p1, p2, coord(t[4]), coord(t[5]), flagOf(t[6]))
			if err != nil {
				return nil, pcberr.New(pcberr.Geometry, "zero-length Line in board file").Wrap(err)
			}
			layer.Lines.Add(*l)
		case strings.HasPrefix(line, "Arc["):
			a, _ := argsBetween(line, '[', ']')
			t := tokenize(a)
			if len(t) < 9 {
				return nil, errBadLine
			}
			center := geom.Point{X: coord(t[0]), Y: coord(t[1])}
			arc := model.NewArc(center, coord(t[2]), coord(t[3]), geom.Angle(atoi(t[6])), geom.Angle(atoi(t[7])), coord(t[4]), coord(t[5]), flagOf(t[8]))
			layer.Arcs.Add(*arc)
		case strings.HasPrefix(line, "Text["):
			a, _ := argsBetween(line, '[', ']')
			t := tokenize(a)
			if len(t) < 6 {
				return nil, errBadLine
			}
			anchor := geom.Point{X: coord(t[0]), Y: coord(t[1])}
			txt := model.NewText(anchor, model.Direction(atoi(t[2])), int(atoi(t[3])), unquote(t[4]), "", flagOf(t[5]), geom.Box{})
			layer.Texts.Add(*txt)
		case strings.HasPrefix(line, "Polygon("):
			poly, err := parsePolygon(lr, line)
			if err != nil {
				return nil, err
			}
			layer.Polygons.Add(*poly)
		}
	}
	return layer, nil
}

func parsePolygon(lr *lineReader, header string) (*model.Polygon, error) {
	args, _ := argsBetween(header, '(', ')')
	flags := flagOf(strings.TrimSpace(args))

	if err := expectOpen(lr); err != nil {
		return nil, err
	}
	var points []geom.Point
	var holes []int
	for {
		line, ok := lr.next()
		if !ok {
			return nil, pcberr.New(pcberr.Parse, "unterminated Polygon block")
		}
		if line == ")" {
			break
		}
		if line == "Hole" {
			holes = append(holes, len(points))
			continue
		}
		if strings.HasPrefix(line, "[") {
			a, ok := argsBetween(line, '[', ']')
			if !ok {
				continue
			}
			t := tokenize(a)
			if len(t) >= 2 {
				points = append(points, geom.Point{X: coord(t[0]), Y: coord(t[1])})
			}
		}
	}
	return model.NewPolygon(points, holes, flags), nil
}

func parseNetList(lr *lineReader, b *model.Board) error {
	if err := expectOpen(lr); err != nil {
		return err
	}
	for {
		line, ok := lr.next()
		if !ok {
			return pcberr.New(pcberr.Parse, "unterminated NetList block")
		}
		if line == ")" {
			return nil
		}
		if !strings.HasPrefix(line, "Net(") {
			continue
		}
		args, _ := argsBetween(line, '(', ')')
		tok := tokenize(args)
		name, style := "", ""
		if len(tok) >= 1 {
			name = unquote(tok[0])
		}
		if len(tok) >= 2 {
			style = unquote(tok[1])
		}
		if err := expectOpen(lr); err != nil {
			return err
		}
		var pins []string
		for {
			l2, ok := lr.next()
			if !ok {
				return pcberr.New(pcberr.Parse, "unterminated Net block")
			}
			if l2 == ")" {
				break
			}
			if strings.HasPrefix(l2, "Connect(") {
				a, _ := argsBetween(l2, '(', ')')
				pins = append(pins, unquote(a))
			}
		}
		b.Netlist[name] = model.Net{Style: style, Pins: pins}
	}
}
