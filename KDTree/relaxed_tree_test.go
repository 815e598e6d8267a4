package KDTree

import (
	"math/rand"
	"testing"
)

func newTestRelaxedTree() *RelaxedTree[Point, uint] {
	return NewRelaxedTree[Point, uint](MustRank(2), BracketLess, LoosePolicy[uint]{Threshold: 4})
}

// Scenario 4: ascending insertion along one dimension stays within the
// policy's depth bound, and the root weight tracks the element count.
func TestRelaxedTreeAscendingInsertBalances(t *testing.T) {
	tree := newTestRelaxedTree()
	const n = 1024
	for i := 1; i <= n; i++ {
		tree.Insert(NewPoint(float64(i), 0))
	}

	if got := tree.Size(); got != n {
		t.Fatalf("Size() = %d, want %d", got, n)
	}
	root := tree.root()
	if root == nil || tree.isEmpty(root) {
		t.Fatalf("tree has no root after %d inserts", n)
	}
	if got := root.weight; got != n {
		t.Fatalf("root weight = %d, want %d", got, n)
	}

	depth := relaxedDepth(tree)
	// c is the policy's own balance constant; a loose weight-balanced
	// policy keeps depth within a small constant factor of log2(n).
	const c = 3
	bound := c * ceilLog2(n+1)
	if depth > bound {
		t.Fatalf("depth = %d, want <= %d (c=%d * ceil(log2(n+1)))", depth, bound, c)
	}
}

func relaxedDepth(t *RelaxedTree[Point, uint]) int {
	var walk func(n *wnode[Point, uint], d int) int
	walk = func(n *wnode[Point, uint], d int) int {
		if n == nil {
			return d - 1
		}
		l := walk(n.left, d+1)
		r := walk(n.right, d+1)
		if l > r {
			return l
		}
		return r
	}
	if t.root() == nil || t.isEmpty(t.root()) {
		return 0
	}
	return walk(t.root(), 1)
}

// Scenario 5: equal_range enumerates exactly the coordinate-equal keys.
func TestRelaxedTreeEqualRange(t *testing.T) {
	tree := newTestRelaxedTree()
	pts := []Point{
		NewPoint(1, 1),
		NewPoint(1, 2),
		NewPoint(1, 1),
		NewPoint(2, 1),
		NewPoint(1, 1),
	}
	for _, p := range pts {
		tree.Insert(p)
	}

	first, last := tree.EqualRange(NewPoint(1, 1))
	if last.Valid() {
		t.Fatalf("EqualRange()'s second iterator should be End()")
	}
	count := 0
	for it := first; it.Valid(); it = it.Next() {
		if it.Key() != NewPoint(1, 1) {
			t.Fatalf("EqualRange((1,1)) produced unexpected key %v", it.Key())
		}
		count++
		if count > len(pts) {
			t.Fatalf("EqualRange iterator did not terminate within expected bound")
		}
	}
	if count != 3 {
		t.Fatalf("EqualRange((1,1)) produced %d elements, want 3", count)
	}
}

// Scenario 6: erasing every element via repeated erase(begin()) empties
// the tree.
func TestRelaxedTreeEraseAll(t *testing.T) {
	tree := newTestRelaxedTree()
	for _, p := range scenarioPoints() {
		tree.Insert(p)
	}

	for !tree.Empty() {
		tree.Erase(tree.Begin())
	}

	if !tree.Empty() {
		t.Fatalf("tree not Empty() after erasing every element")
	}
	if tree.Begin().n != tree.End().n {
		t.Fatalf("Begin() != End() after erasing every element")
	}
	if tree.Size() != 0 {
		t.Fatalf("Size() = %d after erasing every element, want 0", tree.Size())
	}
}

// Law: insert(k) then erase(find(k)) returns to the prior multiset, and
// weight bookkeeping along the real ancestor chain stays correct.
func TestRelaxedTreeInsertEraseIsIdentity(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))
	tree := newTestRelaxedTree()
	for i := 0; i < 50; i++ {
		tree.Insert(NewPoint(float64(rnd.Intn(100)), float64(rnd.Intn(100))))
	}
	before := tree.Size()
	beforeRootWeight := tree.root().weight

	extra := NewPoint(500, 500)
	tree.Insert(extra)
	if tree.Size() != before+1 {
		t.Fatalf("Size() after Insert = %d, want %d", tree.Size(), before+1)
	}

	tree.Erase(tree.Find(extra))
	if tree.Size() != before {
		t.Fatalf("Size() after Erase = %d, want %d", tree.Size(), before)
	}
	if got := tree.root().weight; got != beforeRootWeight {
		t.Fatalf("root weight after Insert+Erase = %d, want %d", got, beforeRootWeight)
	}
	if it := tree.Find(extra); it.Valid() {
		t.Fatalf("Find(%v) still valid after Erase", extra)
	}
}

// Invariant 2/4: after a long randomized sequence of inserts and erases,
// every node's weight equals one plus its children's weights, and the
// balancing policy's predicate holds everywhere.
func TestRelaxedTreeWeightsAndPolicyStayConsistent(t *testing.T) {
	rnd := rand.New(rand.NewSource(4))
	policy := LoosePolicy[uint]{Threshold: 4}
	tree := NewRelaxedTree[Point, uint](MustRank(2), BracketLess, policy)

	var live []Point
	for i := 0; i < 2000; i++ {
		if len(live) == 0 || rnd.Intn(3) != 0 {
			p := NewPoint(float64(rnd.Intn(500)), float64(rnd.Intn(500)))
			tree.Insert(p)
			live = append(live, p)
		} else {
			idx := rnd.Intn(len(live))
			p := live[idx]
			tree.Erase(tree.Find(p))
			live[idx] = live[len(live)-1]
			live = live[:len(live)-1]
		}
	}

	if got := tree.Size(); got != uint(len(live)) {
		t.Fatalf("Size() = %d, want %d", got, len(live))
	}
	checkWeights(t, tree.root(), &tree.hdr)
	checkPolicy(t, tree.root(), &tree.hdr, policy)
}

// Invariant 2/4, rank 1: fixImbalance takes the rotateToBalance branch
// (not rebuildSubtree) when rank.Dimension() == 1. A single-dimension
// tree still needs the weight and policy invariants to hold after a long
// randomized insert/erase sequence, exercising rotateLeftW/rotateRightW
// directly rather than only the rank>1 rebuild path the MustRank(2) tests
// in this file hit.
func TestRelaxedTreeRank1RotationsKeepWeightsAndPolicyConsistent(t *testing.T) {
	rnd := rand.New(rand.NewSource(5))
	policy := LoosePolicy[uint]{Threshold: 4}
	tree := NewRelaxedTree[Point, uint](MustRank(1), BracketLess, policy)

	var live []Point
	for i := 0; i < 2000; i++ {
		if len(live) == 0 || rnd.Intn(3) != 0 {
			p := NewPoint(float64(rnd.Intn(500)))
			tree.Insert(p)
			live = append(live, p)
		} else {
			idx := rnd.Intn(len(live))
			p := live[idx]
			tree.Erase(tree.Find(p))
			live[idx] = live[len(live)-1]
			live = live[:len(live)-1]
		}
	}

	if got := tree.Size(); got != uint(len(live)) {
		t.Fatalf("Size() = %d, want %d", got, len(live))
	}
	checkWeights(t, tree.root(), &tree.hdr)
	checkPolicy(t, tree.root(), &tree.hdr, policy)

	depth := relaxedDepth(tree)
	const c = 3
	bound := c * ceilLog2(len(live)+1)
	if depth > bound {
		t.Fatalf("depth = %d, want <= %d (c=%d * ceil(log2(n+1)))", depth, bound, c)
	}
}

// Erase's returned iterator must stay valid and in the live tree even
// when the ancestor retrace rotates (rank 1) or rebuilds (rank > 1) a
// subtree the captured pre-order successor pointed into.
func TestRelaxedTreeEraseIteratorSurvivesRebalance(t *testing.T) {
	for _, rank := range []Rank{MustRank(1), MustRank(2)} {
		rnd := rand.New(rand.NewSource(6))
		policy := LoosePolicy[uint]{Threshold: 2}
		tree := NewRelaxedTree[Point, uint](rank, BracketLess, policy)

		var live []Point
		for i := 0; i < 300; i++ {
			p := NewPoint(float64(rnd.Intn(50)), float64(rnd.Intn(50)))
			tree.Insert(p)
			live = append(live, p)
		}

		for len(live) > 0 {
			idx := rnd.Intn(len(live))
			p := live[idx]
			it := tree.Erase(tree.Find(p))
			live[idx] = live[len(live)-1]
			live = live[:len(live)-1]

			if it.Valid() {
				matched := false
				walkSubtreeW(tree.root(), &tree.hdr, func(k Point) {
					if k == it.Key() {
						matched = true
					}
				})
				if !matched {
					t.Fatalf("rank %d: Erase returned an iterator not reachable from the tree root", rank.Dimension())
				}
			}
		}
	}
}

func walkSubtreeW(n, hdr *wnode[Point, uint], visit func(Point)) {
	if n == nil || n == hdr {
		return
	}
	visit(n.key)
	walkSubtreeW(n.left, hdr, visit)
	walkSubtreeW(n.right, hdr, visit)
}

func checkWeights(t *testing.T, n *wnode[Point, uint], hdr *wnode[Point, uint]) uint {
	if n == nil || n == hdr {
		return 0
	}
	l := checkWeights(t, n.left, hdr)
	r := checkWeights(t, n.right, hdr)
	want := l + r + 1
	if n.weight != want {
		t.Fatalf("node %v has weight %d, want %d (left=%d, right=%d)", n.key, n.weight, want, l, r)
	}
	return n.weight
}

func checkPolicy(t *testing.T, n *wnode[Point, uint], hdr *wnode[Point, uint], policy Policy[uint]) {
	if n == nil || n == hdr {
		return
	}
	if n.left != nil && policy.Imbalanced(n.weight, n.left.weight) {
		t.Fatalf("node %v imbalanced on left child (weight %d, left weight %d)", n.key, n.weight, n.left.weight)
	}
	if n.right != nil && policy.Imbalanced(n.weight, n.right.weight) {
		t.Fatalf("node %v imbalanced on right child (weight %d, right weight %d)", n.key, n.weight, n.right.weight)
	}
	checkPolicy(t, n.left, hdr, policy)
	checkPolicy(t, n.right, hdr, policy)
}
