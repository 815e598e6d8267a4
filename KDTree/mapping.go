package KDTree

// MappingIterator (C10) enumerates a Tree's keys in ascending order of a
// single chosen coordinate target, rather than the tree's own in-order
// sequence. It is an order-statistic walk, not a predicate-filtered
// pre-order walk like FilterIterator, every key in the tree is a
// candidate, just visited in a different order.
type MappingIterator[K any] struct {
	t      *Tree[K]
	n      *node[K]
	dim    int // n's own discriminating dimension
	target int
}

// mappingEnd returns the past-the-end mapping iterator for target.
func (t *Tree[K]) mappingEnd(target int) MappingIterator[K] {
	return MappingIterator[K]{t: t, n: &t.hdr, dim: t.rank.Dimension() - 1, target: target}
}

// LowerBoundMapping returns an iterator to the first key (in ascending
// order of target) with key[target] not less than value, or End() if none
// exists.
func (t *Tree[K]) LowerBoundMapping(target int, value K) (MappingIterator[K], error) {
	if !t.rank.validDim(target) {
		return MappingIterator[K]{}, InvalidDimensionError{Dim: target, Rank: int(t.rank)}
	}
	n := subtreeBoundAlongDim(t.root(), 0, t.rank, target, value, false, t.cmp)
	if n == nil {
		return t.mappingEnd(target), nil
	}
	return MappingIterator[K]{t: t, n: n, dim: t.depthDim(n), target: target}, nil
}

// UpperBoundMapping returns an iterator to the first key (in ascending
// order of target) with key[target] strictly greater than value, or
// End() if none exists.
func (t *Tree[K]) UpperBoundMapping(target int, value K) (MappingIterator[K], error) {
	if !t.rank.validDim(target) {
		return MappingIterator[K]{}, InvalidDimensionError{Dim: target, Rank: int(t.rank)}
	}
	n := subtreeBoundAlongDim(t.root(), 0, t.rank, target, value, true, t.cmp)
	if n == nil {
		return t.mappingEnd(target), nil
	}
	return MappingIterator[K]{t: t, n: n, dim: t.depthDim(n), target: target}, nil
}

// MappingBegin returns an iterator to the minimum key along target.
func (t *Tree[K]) MappingBegin(target int) (MappingIterator[K], error) {
	if !t.rank.validDim(target) {
		return MappingIterator[K]{}, InvalidDimensionError{Dim: target, Rank: int(t.rank)}
	}
	n := subtreeMinAlongDim(t.root(), 0, t.rank, target, t.cmp)
	if n == nil {
		return t.mappingEnd(target), nil
	}
	// Start at the first node in pre-order holding that value, so Next's
	// tie walk sees every tied key.
	n, dim := t.preorderMinimum(t.root(), 0, mappingEqualPredicate[K]{target: target, model: n.key, cmp: t.cmp})
	return MappingIterator[K]{t: t, n: n, dim: dim, target: target}, nil
}

// Key returns the key the iterator refers to. It must not be the end
// iterator.
func (it MappingIterator[K]) Key() K { return it.n.key }

// Valid reports whether the iterator refers to an element.
func (it MappingIterator[K]) Valid() bool { return it.n != &it.t.hdr }

// mappingEqualPredicate matches keys equivalent to model at exactly one
// dimension, ignoring every other dimension, the tie-break Classify/
// Matches pair used to walk same-valued nodes in the underlying tree's
// own pre-order, specialized to one axis.
type mappingEqualPredicate[K any] struct {
	target int
	model  K
	cmp    Comparator[K]
}

func (m mappingEqualPredicate[K]) Classify(dim int, splitValue K) Zone {
	if dim != m.target {
		return Matching
	}
	if m.cmp(m.target, splitValue, m.model) {
		return Below
	}
	if m.cmp(m.target, m.model, splitValue) {
		return Above
	}
	return Matching
}

func (m mappingEqualPredicate[K]) Matches(key K) bool {
	return !m.cmp(m.target, key, m.model) && !m.cmp(m.target, m.model, key)
}

// Next advances to the mapping-order successor. This
// requires backtracking to nodes whose bounding half-space on target may
// contain the successor. Nodes tied with the current key at target are
// exhausted first, in the underlying tree's own pre-order, before moving
// on to the next strictly greater value, ties only ever break an
// ordering that is otherwise by value.
func (it MappingIterator[K]) Next() MappingIterator[K] {
	t := it.t
	if it.n == &t.hdr {
		return it
	}
	curKey := it.n.key
	tie := mappingEqualPredicate[K]{target: it.target, model: curKey, cmp: t.cmp}
	if tn, td := t.preorderIncrement(it.n, it.dim, tie); tn != nil {
		return MappingIterator[K]{t: t, n: tn, dim: td, target: it.target}
	}
	succ := subtreeBoundAlongDim(t.root(), 0, t.rank, it.target, curKey, true, t.cmp)
	if succ == nil {
		return t.mappingEnd(it.target)
	}
	return MappingIterator[K]{t: t, n: succ, dim: t.depthDim(succ), target: it.target}
}

// Prev moves to the mapping-order predecessor, mirroring Next.
func (it MappingIterator[K]) Prev() MappingIterator[K] {
	t := it.t
	if it.n == &t.hdr {
		n := subtreeMaxAlongDim(t.root(), 0, t.rank, it.target, t.cmp)
		if n == nil {
			return it
		}
		n, dim := t.preorderMaximum(t.root(), 0, mappingEqualPredicate[K]{target: it.target, model: n.key, cmp: t.cmp})
		return MappingIterator[K]{t: t, n: n, dim: dim, target: it.target}
	}
	curKey := it.n.key
	tie := mappingEqualPredicate[K]{target: it.target, model: curKey, cmp: t.cmp}
	if tn, td := t.preorderDecrement(it.n, it.dim, tie); tn != nil {
		return MappingIterator[K]{t: t, n: tn, dim: td, target: it.target}
	}
	pred := subtreeBoundBelowAlongDim(t.root(), 0, t.rank, it.target, curKey, true, t.cmp)
	if pred == nil {
		return it
	}
	// Land on the last node in pre-order holding that value, so the tie
	// walk backward from it sees every tied key.
	pred, dim := t.preorderMaximum(t.root(), 0, mappingEqualPredicate[K]{target: it.target, model: pred.key, cmp: t.cmp})
	return MappingIterator[K]{t: t, n: pred, dim: dim, target: it.target}
}

// subtreeBoundAlongDim finds the minimum key along target within the
// subtree rooted at n (n's own discriminating dimension is dim) subject
// to key[target] >= bound (strict=false) or key[target] > bound
// (strict=true). It generalizes subtreeMinAlongDim with a lower bound,
// pruning the left child whenever the split at target already falls
// below the bound.
func subtreeBoundAlongDim[K any](n *node[K], dim int, rank Rank, target int, bound K, strict bool, cmp Comparator[K]) *node[K] {
	if n == nil {
		return nil
	}
	ok := func(k K) bool {
		if strict {
			return cmp(target, bound, k)
		}
		return !cmp(target, k, bound)
	}
	var best *node[K]
	consider := func(c *node[K]) {
		if c == nil || !ok(c.key) {
			return
		}
		if best == nil || cmp(target, c.key, best.key) {
			best = c
		}
	}
	consider(n)
	exploreLeft := dim != target
	if !exploreLeft {
		if strict {
			exploreLeft = cmp(target, bound, n.key)
		} else {
			exploreLeft = !cmp(target, n.key, bound)
		}
	}
	if exploreLeft {
		consider(subtreeBoundAlongDim(n.left, rank.Next(dim), rank, target, bound, strict, cmp))
	}
	consider(subtreeBoundAlongDim(n.right, rank.Next(dim), rank, target, bound, strict, cmp))
	return best
}

// subtreeBoundBelowAlongDim is subtreeBoundAlongDim's mirror: the maximum
// key along target subject to key[target] <= bound (strict=false) or
// key[target] < bound (strict=true).
func subtreeBoundBelowAlongDim[K any](n *node[K], dim int, rank Rank, target int, bound K, strict bool, cmp Comparator[K]) *node[K] {
	if n == nil {
		return nil
	}
	ok := func(k K) bool {
		if strict {
			return cmp(target, k, bound)
		}
		return !cmp(target, bound, k)
	}
	var best *node[K]
	consider := func(c *node[K]) {
		if c == nil || !ok(c.key) {
			return
		}
		if best == nil || cmp(target, best.key, c.key) {
			best = c
		}
	}
	consider(n)
	exploreRight := dim != target
	if !exploreRight {
		if strict {
			exploreRight = cmp(target, n.key, bound)
		} else {
			exploreRight = !cmp(target, bound, n.key)
		}
	}
	if exploreRight {
		consider(subtreeBoundBelowAlongDim(n.right, rank.Next(dim), rank, target, bound, strict, cmp))
	}
	consider(subtreeBoundBelowAlongDim(n.left, rank.Next(dim), rank, target, bound, strict, cmp))
	return best
}
