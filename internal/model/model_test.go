package model

import (
	"testing"

	"github.com/pcb-core/pcb/internal/geom"
)

func TestPoolStableIdentityAcrossRemoval(t *testing.T) {
	var p Pool[int]
	a := p.Add(1)
	b := p.Add(2)
	c := p.Add(3)

	if _, ok := p.Remove(b); !ok {
		t.Fatalf("remove failed")
	}
	if p.Get(a) == nil || *p.Get(a) != 1 {
		t.Fatalf("a moved after removing b")
	}
	if p.Get(c) == nil || *p.Get(c) != 3 {
		t.Fatalf("c moved after removing b")
	}
	if p.Get(b) != nil {
		t.Fatalf("b should be dead")
	}

	d := p.Add(4)
	if d != b {
		t.Fatalf("expected tombstone reuse, got new slot %d want %d", d, b)
	}
}

func TestPoolReaddRestoresIdentity(t *testing.T) {
	var p Pool[string]
	a := p.Add("x")
	v, _ := p.Remove(a)
	p.Readd(a, v)
	if p.Get(a) == nil || *p.Get(a) != "x" {
		t.Fatalf("readd did not restore identity")
	}
}

func TestViaBBoxMatchesCenterAndDiameter(t *testing.T) {
	v := NewVia(geom.Point{X: 1000, Y: 1000}, 200, 50, 300, 80, "", NoFlags())
	want := geom.Box{X1: 900, Y1: 900, X2: 1100, Y2: 1100}
	if v.BBox() != want {
		t.Fatalf("got %+v want %+v", v.BBox(), want)
	}
}

func TestZeroLengthLineRejected(t *testing.T) {
	_, err := NewLine(geom.Point{X: 5, Y: 5}, geom.Point{X: 5, Y: 5}, 100, 10, NoFlags())
	if err == nil {
		t.Fatalf("expected geometry error for zero-length line")
	}
}

func TestElementLockPropagatesToChildren(t *testing.T) {
	e := NewElement(geom.Point{}, NoFlags())
	e.Pins.Add(*NewPin(geom.Point{}, 100, 10, 150, 40, "", "1", NoFlags()))
	e.Pads.Add(*NewPad(geom.Point{}, geom.Point{X: 100}, 60, 10, 80, "", "2", NoFlags()))

	e.Flags = e.Flags.Set(FlagLock)
	e.PropagateLock()

	e.Pins.Each(func(_ int, p *Pin) Control {
		if !p.Flags.Test(FlagLock) {
			t.Fatalf("pin did not inherit lock")
		}
		return ControlContinue
	})

	e.Flags = e.Flags.Clear(FlagLock)
	e.PropagateLock()
	e.Pads.Each(func(_ int, p *Pad) Control {
		if p.Flags.Test(FlagLock) {
			t.Fatalf("pad lock not cleared")
		}
		return ControlContinue
	})
}

func TestElementBBoxUnionsChildren(t *testing.T) {
	e := NewElement(geom.Point{}, NoFlags())
	e.Pins.Add(*NewPin(geom.Point{X: 0, Y: 0}, 100, 10, 150, 40, "", "1", NoFlags()))
	e.Pins.Add(*NewPin(geom.Point{X: 1000, Y: 1000}, 100, 10, 150, 40, "", "2", NoFlags()))
	e.RecomputeBBox()
	b := e.BBox()
	if b.X2 < 1000 || b.Y2 < 1000 {
		t.Fatalf("bbox did not cover second pin: %+v", b)
	}
}
