// Package spatial implements the R-tree index: one tree per layer per
// entity kind, plus board-wide trees for vias, pins, pads (by side), rat
// lines, and element-name lookups. Every tree holds non-owning references
// (model.Ref) identified by entity kind and container position — the
// model remains the sole owner.
package spatial

import "github.com/pcb-core/pcb/internal/geom"

// maxEntries bounds how many children a node holds before it splits.
// minEntries bounds the low end, used by the split and by underflow
// handling on delete.
const (
	maxEntries = 8
	minEntries = 3
)

// Control mirrors model.Control so Search callers don't need to import
// model just to answer "keep going / stop / skip this subtree".
type Control int

const (
	ControlContinue Control = iota
	ControlStop
	ControlSkipSubtree
)

// Entry is one leaf payload: a bounding box and an opaque reference the
// caller interprets (typically a model.Ref).
type Entry[T comparable] struct {
	Box geom.Box
	Ref T
}

type node[T comparable] struct {
	box      geom.Box
	leaf     bool
	entries  []Entry[T]  // populated when leaf
	children []*node[T]  // populated when internal
}

// Tree is an R-tree over entries keyed by an arbitrary comparable
// reference type (typically model.Ref). A tree with zero entries is
// valid and Search returns no hits, satisfying the spec's spatial-index
// semantics.
type Tree[T comparable] struct {
	root *node[T]
	size int
}

// New returns an empty tree, equivalent to the source's create_empty.
func New[T comparable]() *Tree[T] {
	return &Tree[T]{root: &node[T]{leaf: true, box: geom.EmptyBox()}}
}

// Len returns the number of entries currently indexed.
func (t *Tree[T]) Len() int { return t.size }

// Insert adds ref at box. A box matching an existing entry's box is
// legal; both coexist, distinguished by Ref.
func (t *Tree[T]) Insert(box geom.Box, ref T) {
	leaf := t.chooseLeaf(t.root, box)
	leaf.entries = append(leaf.entries, Entry[T]{Box: box, Ref: ref})
	leaf.box = geom.Union(leaf.box, box)
	t.size++

	if len(leaf.entries) > maxEntries {
		t.splitAndPropagate(leaf)
	} else {
		t.adjustBoxesUpward(t.root, leaf)
	}
}

func (t *Tree[T]) chooseLeaf(n *node[T], box geom.Box) *node[T] {
	if n.leaf {
		return n
	}
	best := n.children[0]
	bestGrowth := enlargement(best.box, box)
	for _, c := range n.children[1:] {
		g := enlargement(c.box, box)
		if g < bestGrowth {
			bestGrowth = g
			best = c
		}
	}
	return t.chooseLeaf(best, box)
}

func enlargement(box, add geom.Box) int64 {
	before := area(box)
	after := area(geom.Union(box, add))
	return after - before
}

func area(b geom.Box) int64 {
	if b.IsEmpty() {
		return 0
	}
	return int64(b.X2-b.X1) * int64(b.Y2-b.Y1)
}

// splitAndPropagate rebuilds the whole tree's shape from a simple
// bottom-up linear split, then re-links parents by box. R-tree
// maintenance is usually done with parent pointers; this implementation
// favors a small, obviously-correct rebuild-on-overflow approach since
// the core's mutation rate (user actions, not bulk load) does not need
// Guttman's quadratic split for performance.
func (t *Tree[T]) splitAndPropagate(overflowed *node[T]) {
	all := t.collectAllEntries()
	t.root = buildFromEntries(all)
}

func (t *Tree[T]) collectAllEntries() []Entry[T] {
	var out []Entry[T]
	var walk func(n *node[T])
	walk = func(n *node[T]) {
		if n.leaf {
			out = append(out, n.entries...)
			return
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(t.root)
	return out
}

// buildFromEntries is also the rebuild-from-list path used at load time
// (spec 4.3: "rebuild-from-list is used at load time").
func buildFromEntries[T comparable](entries []Entry[T]) *node[T] {
	if len(entries) == 0 {
		return &node[T]{leaf: true, box: geom.EmptyBox()}
	}
	if len(entries) <= maxEntries {
		b := geom.EmptyBox()
		for _, e := range entries {
			b = geom.Union(b, e.Box)
		}
		return &node[T]{leaf: true, box: b, entries: entries}
	}

	groups := splitLinear(entries)
	children := make([]*node[T], 0, len(groups))
	box := geom.EmptyBox()
	for _, g := range groups {
		c := buildFromEntries(g)
		children = append(children, c)
		box = geom.Union(box, c.box)
	}
	return &node[T]{leaf: false, box: box, children: children}
}

// splitLinear buckets entries into groups of at most maxEntries by
// sorting along their box centers' widest axis — O(n log n), sufficient
// given actions touch a handful of entries at a time.
func splitLinear[T comparable](entries []Entry[T]) [][]Entry[T] {
	xs, ys := spread(entries)
	sorted := append([]Entry[T]{}, entries...)
	if xs >= ys {
		sortByCenterX(sorted)
	} else {
		sortByCenterY(sorted)
	}
	var groups [][]Entry[T]
	for i := 0; i < len(sorted); i += maxEntries {
		end := i + maxEntries
		if end > len(sorted) {
			end = len(sorted)
		}
		groups = append(groups, sorted[i:end])
	}
	return groups
}

func spread[T comparable](entries []Entry[T]) (xs, ys int64) {
	minX, maxX, minY, maxY := int64(1)<<62, int64(-1)<<62, int64(1)<<62, int64(-1)<<62
	for _, e := range entries {
		cx := int64(e.Box.X1+e.Box.X2) / 2
		cy := int64(e.Box.Y1+e.Box.Y2) / 2
		if cx < minX {
			minX = cx
		}
		if cx > maxX {
			maxX = cx
		}
		if cy < minY {
			minY = cy
		}
		if cy > maxY {
			maxY = cy
		}
	}
	return maxX - minX, maxY - minY
}

func sortByCenterX[T comparable](e []Entry[T]) {
	insertionSort(e, func(a, b Entry[T]) bool { return a.Box.X1+a.Box.X2 < b.Box.X1+b.Box.X2 })
}
func sortByCenterY[T comparable](e []Entry[T]) {
	insertionSort(e, func(a, b Entry[T]) bool { return a.Box.Y1+a.Box.Y2 < b.Box.Y1+b.Box.Y2 })
}

// insertionSort avoids pulling in sort.Slice's interface-boxing cost for
// the small groups this ever sees, and keeps the comparison pure.
func insertionSort[T comparable](e []Entry[T], less func(a, b Entry[T]) bool) {
	for i := 1; i < len(e); i++ {
		for j := i; j > 0 && less(e[j], e[j-1]); j-- {
			e[j], e[j-1] = e[j-1], e[j]
		}
	}
}

func (t *Tree[T]) adjustBoxesUpward(n, target *node[T]) bool {
	if n == target {
		return true
	}
	if n.leaf {
		return false
	}
	for _, c := range n.children {
		if t.adjustBoxesUpward(c, target) {
			n.box = geom.Union(n.box, target.box)
			return true
		}
	}
	return false
}

// Delete removes the first entry matching both box and ref. It reports
// whether an entry was removed.
func (t *Tree[T]) Delete(box geom.Box, ref T) bool {
	all := t.collectAllEntries()
	for i, e := range all {
		if e.Ref == ref && e.Box == box {
			all = append(all[:i], all[i+1:]...)
			t.root = buildFromEntries(all)
			t.size--
			return true
		}
	}
	return false
}

// DeleteRef removes the first entry matching ref regardless of box —
// useful when a caller moved an entity and no longer knows its old box.
func (t *Tree[T]) DeleteRef(ref T) bool {
	all := t.collectAllEntries()
	for i, e := range all {
		if e.Ref == ref {
			all = append(all[:i], all[i+1:]...)
			t.root = buildFromEntries(all)
			t.size--
			return true
		}
	}
	return false
}

// Search visits every entry whose box intersects region, in no specified
// order among ties (see the spec's open question on SearchScreen
// ordering). The callback's Control return can stop the whole search or
// skip the current subtree.
func (t *Tree[T]) Search(region geom.Box, fn func(Entry[T]) Control) {
	searchNode(t.root, region, fn)
}

func searchNode[T comparable](n *node[T], region geom.Box, fn func(Entry[T]) Control) Control {
	if !geom.Intersects(n.box, region) {
		return ControlContinue
	}
	if n.leaf {
		for _, e := range n.entries {
			if !geom.Intersects(e.Box, region) {
				continue
			}
			switch fn(e) {
			case ControlStop:
				return ControlStop
			case ControlSkipSubtree:
				return ControlContinue
			}
		}
		return ControlContinue
	}
	for _, c := range n.children {
		switch searchNode(c, region, fn) {
		case ControlStop:
			return ControlStop
		}
	}
	return ControlContinue
}

// All returns every indexed entry, e.g. for a full re-scan before
// RecomputeBBox-driven reinsertion.
func (t *Tree[T]) All() []Entry[T] {
	return t.collectAllEntries()
}

// Rebuild replaces the tree's contents wholesale — the bulk-load path.
func Rebuild[T comparable](entries []Entry[T]) *Tree[T] {
	return &Tree[T]{root: buildFromEntries(entries), size: len(entries)}
}
