package spatial

import (
	"testing"

	"github.com/pcb-core/pcb/internal/geom"
)

func TestEmptyTreeHasNoHits(t *testing.T) {
	tr := New[int]()
	hits := 0
	tr.Search(geom.Box{X1: -1000, Y1: -1000, X2: 1000, Y2: 1000}, func(Entry[int]) Control {
		hits++
		return ControlContinue
	})
	if hits != 0 {
		t.Fatalf("expected no hits on empty tree, got %d", hits)
	}
}

func TestInsertAndSearchFindsEntry(t *testing.T) {
	tr := New[string]()
	tr.Insert(geom.Box{X1: 0, Y1: 0, X2: 10, Y2: 10}, "a")
	tr.Insert(geom.Box{X1: 1000, Y1: 1000, X2: 1010, Y2: 1010}, "b")

	var found []string
	tr.Search(geom.Box{X1: -5, Y1: -5, X2: 20, Y2: 20}, func(e Entry[string]) Control {
		found = append(found, e.Ref)
		return ControlContinue
	})
	if len(found) != 1 || found[0] != "a" {
		t.Fatalf("got %v", found)
	}
}

func TestDuplicateBoxesCoexist(t *testing.T) {
	tr := New[int]()
	box := geom.Box{X1: 0, Y1: 0, X2: 5, Y2: 5}
	tr.Insert(box, 1)
	tr.Insert(box, 2)
	if tr.Len() != 2 {
		t.Fatalf("expected both entries to coexist, got len %d", tr.Len())
	}
	tr.Delete(box, 1)
	if tr.Len() != 1 {
		t.Fatalf("expected one remaining entry")
	}
}

func TestManyInsertsTriggerSplitAndStillFind(t *testing.T) {
	tr := New[int]()
	for i := 0; i < 500; i++ {
		x := geom.Coord(i * 10)
		tr.Insert(geom.Box{X1: x, Y1: x, X2: x + 5, Y2: x + 5}, i)
	}
	if tr.Len() != 500 {
		t.Fatalf("lost entries across splits: %d", tr.Len())
	}
	var got []int
	tr.Search(geom.Box{X1: 2000, Y1: 2000, X2: 2005, Y2: 2005}, func(e Entry[int]) Control {
		got = append(got, e.Ref)
		return ControlContinue
	})
	if len(got) != 1 || got[0] != 200 {
		t.Fatalf("got %v", got)
	}
}

func TestSearchStopControl(t *testing.T) {
	tr := New[int]()
	for i := 0; i < 20; i++ {
		tr.Insert(geom.Box{X1: 0, Y1: 0, X2: 1, Y2: 1}, i)
	}
	count := 0
	tr.Search(geom.Box{X1: 0, Y1: 0, X2: 1, Y2: 1}, func(Entry[int]) Control {
		count++
		return ControlStop
	})
	if count != 1 {
		t.Fatalf("expected search to stop after first hit, got %d", count)
	}
}
