package KDTree

import "github.com/emirpasic/gods/trees/binaryheap"

// NeighborIterator (C11) yields keys in non-decreasing order of
// Metric.Distance from an origin, using the standard k-d tree best-first
// / branch-and-bound algorithm (Hjaltason-Samet incremental nearest
// neighbor, specialized to a k-d tree's own split planes instead of an
// R-tree's bounding boxes).
//
// Unlike Iterator/FilterIterator/MappingIterator, NeighborIterator is not
// a value type copyable into independent branches: it owns a frontier
// heap that Next mutates in place, the way the teacher has no precedent
// for but bufio.Scanner and database/sql.Rows do in the standard library:
// a single forward-only cursor, advanced with Next() bool before each
// Key() read.
type NeighborIterator[K any] struct {
	t      *Tree[K]
	origin K
	metric Metric[K]
	heap   *binaryheap.Heap
	cur    *node[K]
}

// neighborEntry is a frontier slot: either a subtree awaiting expansion
// (leaf==false, priority is an admissible lower bound on any key inside
// it) or an already-expanded node's own key, ready to be emitted
// (leaf==true, priority is its real distance).
type neighborEntry[K any] struct {
	leaf     bool
	n        *node[K]
	dim      int
	priority float64
}

// NeighborBegin constructs the frontier for a nearest-neighbor-ordered
// walk from origin. Call Next before the first Key.
func (t *Tree[K]) NeighborBegin(origin K, metric Metric[K]) *NeighborIterator[K] {
	less := func(a, b interface{}) int {
		pa, pb := a.(neighborEntry[K]).priority, b.(neighborEntry[K]).priority
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
		h.Push(neighborEntry[K]{n: r, dim: 0, priority: 0})
	}
	return &NeighborIterator[K]{t: t, origin: origin, metric: metric, heap: h}
}

// Next advances to the next nearest key, expanding subtree entries off
// the frontier until one resolves to an emittable node. It reports
// whether a key is available.
func (it *NeighborIterator[K]) Next() bool {
	for {
		v, ok := it.heap.Pop()
		if !ok {
			it.cur = nil
			return false
		}
		e := v.(neighborEntry[K])
		if e.leaf {
			it.cur = e.n
			return true
		}
		it.expand(e)
	}
}

// Key returns the key Next most recently produced. It must not be called
// before a successful Next.
func (it *NeighborIterator[K]) Key() K { return it.cur.key }

// Distance returns Metric.Distance(origin, Key()).
func (it *NeighborIterator[K]) Distance() float64 {
	return it.metric.Distance(it.origin, it.cur.key)
}

// expand opens one subtree entry: pushes its own key as an emittable
// leaf, the origin-favoring child unconditionally (its lower bound is
// inherited, since no new separating plane has been crossed), and the
// far child guarded by distance_to_plane, the branch-and-bound pruning
// bound this traversal relies on.
func (it *NeighborIterator[K]) expand(e neighborEntry[K]) {
	n := e.n
	it.heap.Push(neighborEntry[K]{leaf: true, n: n, priority: it.metric.Distance(it.origin, n.key)})

	near, far := n.left, n.right
	if !it.t.cmp(e.dim, it.origin, n.key) {
		near, far = n.right, n.left
	}
	nextDim := it.t.rank.Next(e.dim)
	if near != nil {
		it.heap.Push(neighborEntry[K]{n: near, dim: nextDim, priority: e.priority})
	}
	if far != nil {
		bound := it.metric.DistanceToPlane(e.dim, it.origin, n.key)
		if bound < e.priority {
			bound = e.priority
		}
		it.heap.Push(neighborEntry[K]{n: far, dim: nextDim, priority: bound})
	}
}
