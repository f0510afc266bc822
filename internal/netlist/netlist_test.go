package netlist

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseSimpleNet(t *testing.T) {
	input := "GND:signal U1-1 U1-2 C1-2\n"
	nets, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(nets) != 1 {
		t.Fatalf("expected 1 net, got %d", len(nets))
	}
	n := nets[0]
	if n.Name != "GND" || n.Style != "signal" {
		t.Errorf("got name=%q style=%q", n.Name, n.Style)
	}
	if len(n.Pins) != 3 {
		t.Errorf("expected 3 pins, got %d: %v", len(n.Pins), n.Pins)
	}
}

func TestParseBackslashContinuation(t *testing.T) {
	input := "VCC:power U1-3 U2-1 \\\n  U3-1 U4-1\n"
	nets, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(nets) != 1 {
		t.Fatalf("expected 1 net, got %d", len(nets))
	}
	if len(nets[0].Pins) != 4 {
		t.Errorf("expected 4 pins after continuation, got %d: %v", len(nets[0].Pins), nets[0].Pins)
	}
}

func TestParseMissingStyleTolerated(t *testing.T) {
	nets, err := Parse(strings.NewReader("NET1 A-1 B-2\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if nets[0].Style != "" {
		t.Errorf("expected empty style, got %q", nets[0].Style)
	}
}

func TestUnterminatedContinuationErrors(t *testing.T) {
	_, err := Parse(strings.NewReader("NET1:s A-1 \\\n"))
	if err == nil {
		t.Fatalf("expected error for unterminated continuation")
	}
}

func TestWriteParseRoundTrip(t *testing.T) {
	original := []Net{{Name: "GND", Style: "signal", Pins: []string{"U1-1", "U1-2", "U2-1"}}}
	var buf bytes.Buffer
	if err := Write(&buf, original, 2); err != nil {
		t.Fatalf("Write: %v", err)
	}
	nets, err := Parse(&buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(nets) != 1 || len(nets[0].Pins) != 3 {
		t.Fatalf("round-trip mismatch: %+v", nets)
	}
}
