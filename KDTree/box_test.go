package KDTree

import "testing"

func buildBoxTree() *Tree[Box] {
	t := NewTree(MustRank(2), BoxLess)
	t.Insert(NewBox(NewPoint(0, 0), NewPoint(5, 5)))   // A: inside and overlapping the query box
	t.Insert(NewBox(NewPoint(10, 10), NewPoint(15, 15))) // B: far away, no overlap
	t.Insert(NewBox(NewPoint(3, 3), NewPoint(4, 4)))   // C: fully enclosed in the query box
	t.Insert(NewBox(NewPoint(4, 4), NewPoint(8, 8)))   // D: overlaps but extends past the query box
	t.Insert(NewBox(NewPoint(20, 20), NewPoint(25, 25))) // E: far away, no overlap
	return t
}

func collectBoxes(first, last FilterIterator[Box]) []Box {
	var out []Box
	for it := first; it.Valid(); it = it.Next() {
		out = append(out, it.Key())
	}
	return out
}

func hasBox(boxes []Box, low, high Point) bool {
	for _, b := range boxes {
		if b.Low() == low && b.High() == high {
			return true
		}
	}
	return false
}

// Overlap must match every box intersecting the query box, including one
// that extends past its far edge, and exclude boxes entirely outside it.
func TestTreeOverlap(t *testing.T) {
	tree := buildBoxTree()
	lower, upper := NewPoint(0, 0), NewPoint(6, 6)

	first, last := Overlap(tree, BracketLess, lower, upper)
	if last.Valid() {
		t.Fatalf("Overlap()'s second iterator should be End()")
	}
	got := collectBoxes(first, last)
	if len(got) != 3 {
		t.Fatalf("Overlap() produced %d boxes, want 3: %v", len(got), got)
	}
	if !hasBox(got, NewPoint(0, 0), NewPoint(5, 5)) {
		t.Fatalf("Overlap() missing box A")
	}
	if !hasBox(got, NewPoint(3, 3), NewPoint(4, 4)) {
		t.Fatalf("Overlap() missing box C")
	}
	if !hasBox(got, NewPoint(4, 4), NewPoint(8, 8)) {
		t.Fatalf("Overlap() missing box D")
	}
	if hasBox(got, NewPoint(10, 10), NewPoint(15, 15)) {
		t.Fatalf("Overlap() unexpectedly matched box B")
	}
}

// Enclose must match only boxes fully contained in the query box, which
// excludes a box that overlaps but extends past its far edge.
func TestTreeEnclose(t *testing.T) {
	tree := buildBoxTree()
	lower, upper := NewPoint(0, 0), NewPoint(6, 6)

	first, last := Enclose(tree, BracketLess, lower, upper)
	if last.Valid() {
		t.Fatalf("Enclose()'s second iterator should be End()")
	}
	got := collectBoxes(first, last)
	if len(got) != 2 {
		t.Fatalf("Enclose() produced %d boxes, want 2: %v", len(got), got)
	}
	if !hasBox(got, NewPoint(0, 0), NewPoint(5, 5)) {
		t.Fatalf("Enclose() missing box A")
	}
	if !hasBox(got, NewPoint(3, 3), NewPoint(4, 4)) {
		t.Fatalf("Enclose() missing box C")
	}
	if hasBox(got, NewPoint(4, 4), NewPoint(8, 8)) {
		t.Fatalf("Enclose() unexpectedly matched box D, which extends past the query's far edge")
	}
}

// RelaxedTree gets the same Overlap/Enclose free functions.
func TestRelaxedTreeOverlapAndEnclose(t *testing.T) {
	tree := NewRelaxedTree[Box, uint](MustRank(2), BoxLess, LoosePolicy[uint]{Threshold: 4})
	tree.Insert(NewBox(NewPoint(0, 0), NewPoint(5, 5)))
	tree.Insert(NewBox(NewPoint(10, 10), NewPoint(15, 15)))
	tree.Insert(NewBox(NewPoint(3, 3), NewPoint(4, 4)))

	lower, upper := NewPoint(0, 0), NewPoint(6, 6)

	overlapFirst, overlapLast := OverlapW(tree, BracketLess, lower, upper)
	count := 0
	for it := overlapFirst; it.Valid(); it = it.Next() {
		count++
	}
	if overlapLast.Valid() {
		t.Fatalf("OverlapW()'s second iterator should be End()")
	}
	if count != 2 {
		t.Fatalf("OverlapW() produced %d boxes, want 2", count)
	}

	encloseFirst, encloseLast := EncloseW(tree, BracketLess, lower, upper)
	count = 0
	for it := encloseFirst; it.Valid(); it = it.Next() {
		count++
	}
	if encloseLast.Valid() {
		t.Fatalf("EncloseW()'s second iterator should be End()")
	}
	if count != 2 {
		t.Fatalf("EncloseW() produced %d boxes, want 2", count)
	}
}
