package KDTree

import (
	"github.com/emirpasic/gods/trees/binaryheap"
	"golang.org/x/exp/constraints"
)

// NeighborIteratorW is NeighborIterator's RelaxedTree counterpart (C11).
// See NeighborIterator's doc comment for why this is a stateful cursor
// rather than a value-semantics iterator.
type NeighborIteratorW[K any, S constraints.Unsigned] struct {
	t      *RelaxedTree[K, S]
	origin K
	metric Metric[K]
	heap   *binaryheap.Heap
	cur    *wnode[K, S]
}

type neighborEntryW[K any, S constraints.Unsigned] struct {
	leaf     bool
	n        *wnode[K, S]
	dim      int
	priority float64
}

// NeighborBegin constructs the frontier for a nearest-neighbor-ordered
// walk from origin. Call Next before the first Key.
func (t *RelaxedTree[K, S]) NeighborBegin(origin K, metric Metric[K]) *NeighborIteratorW[K, S] {
	less := func(a, b interface{}) int {
		pa, pb := a.(neighborEntryW[K, S]).priority, b.(neighborEntryW[K, S]).priority
		switch {
		case pa < pb:
			return -1
		case pa > pb:
			return 1
		default:
			return 0
		}
	}
	h := binaryheap.NewWith(less)
	if r := t.root(); r != nil && !t.isEmpty(r) {
		h.Push(neighborEntryW[K, S]{n: r, dim: 0, priority: 0})
	}
	return &NeighborIteratorW[K, S]{t: t, origin: origin, metric: metric, heap: h}
}

// Next advances to the next nearest key. It reports whether a key is
// available.
func (it *NeighborIteratorW[K, S]) Next() bool {
	for {
		v, ok := it.heap.Pop()
		if !ok {
			it.cur = nil
			return false
		}
		e := v.(neighborEntryW[K, S])
		if e.leaf {
			it.cur = e.n
			return true
		}
		it.expand(e)
	}
}

// Key returns the key Next most recently produced.
func (it *NeighborIteratorW[K, S]) Key() K { return it.cur.key }

// Distance returns Metric.Distance(origin, Key()).
func (it *NeighborIteratorW[K, S]) Distance() float64 {
	return it.metric.Distance(it.origin, it.cur.key)
}

func (it *NeighborIteratorW[K, S]) expand(e neighborEntryW[K, S]) {
	n := e.n
	it.heap.Push(neighborEntryW[K, S]{leaf: true, n: n, priority: it.metric.Distance(it.origin, n.key)})

	near, far := n.left, n.right
	if !it.t.cmp(e.dim, it.origin, n.key) {
		near, far = n.right, n.left
	}
	nextDim := it.t.rank.Next(e.dim)
	if near != nil {
		it.heap.Push(neighborEntryW[K, S]{n: near, dim: nextDim, priority: e.priority})
	}
	if far != nil {
		bound := it.metric.DistanceToPlane(e.dim, it.origin, n.key)
		if bound < e.priority {
			bound = e.priority
		}
		it.heap.Push(neighborEntryW[K, S]{n: far, dim: nextDim, priority: bound})
	}
}
