package KDTree

import "golang.org/x/exp/constraints"

// MappingIteratorW is MappingIterator's RelaxedTree counterpart (C10).
type MappingIteratorW[K any, S constraints.Unsigned] struct {
	t      *RelaxedTree[K, S]
	n      *wnode[K, S]
	dim    int
	target int
}

func (t *RelaxedTree[K, S]) mappingEndW(target int) MappingIteratorW[K, S] {
	return MappingIteratorW[K, S]{t: t, n: &t.hdr, dim: t.rank.Dimension() - 1, target: target}
}

// LowerBoundMapping returns an iterator to the first key (in ascending
// order of target) with key[target] not less than value, or End() if none
// exists.
func (t *RelaxedTree[K, S]) LowerBoundMapping(target int, value K) (MappingIteratorW[K, S], error) {
	if !t.rank.validDim(target) {
		return MappingIteratorW[K, S]{}, InvalidDimensionError{Dim: target, Rank: int(t.rank)}
	}
	n := wsubtreeBoundAlongDim(t.root(), 0, t.rank, target, value, false, t.cmp)
	if n == nil {
		return t.mappingEndW(target), nil
	}
	return MappingIteratorW[K, S]{t: t, n: n, dim: t.depthDim(n), target: target}, nil
}

// UpperBoundMapping returns an iterator to the first key (in ascending
// order of target) with key[target] strictly greater than value, or
// End() if none exists.
func (t *RelaxedTree[K, S]) UpperBoundMapping(target int, value K) (MappingIteratorW[K, S], error) {
	if !t.rank.validDim(target) {
		return MappingIteratorW[K, S]{}, InvalidDimensionError{Dim: target, Rank: int(t.rank)}
	}
	n := wsubtreeBoundAlongDim(t.root(), 0, t.rank, target, value, true, t.cmp)
	if n == nil {
		return t.mappingEndW(target), nil
	}
	return MappingIteratorW[K, S]{t: t, n: n, dim: t.depthDim(n), target: target}, nil
}

// MappingBegin returns an iterator to the minimum key along target.
func (t *RelaxedTree[K, S]) MappingBegin(target int) (MappingIteratorW[K, S], error) {
	if !t.rank.validDim(target) {
		return MappingIteratorW[K, S]{}, InvalidDimensionError{Dim: target, Rank: int(t.rank)}
	}
	n := wsubtreeMinAlongDim(t.root(), 0, t.rank, target, t.cmp)
	if n == nil {
		return t.mappingEndW(target), nil
	}
	// Start at the first node in pre-order holding that value, so Next's
	// tie walk sees every tied key.
	n, dim := wpreorderMinimum(t, t.root(), 0, mappingEqualPredicate[K]{target: target, model: n.key, cmp: t.cmp})
	return MappingIteratorW[K, S]{t: t, n: n, dim: dim, target: target}, nil
}

func (it MappingIteratorW[K, S]) Key() K { return it.n.key }

func (it MappingIteratorW[K, S]) Valid() bool { return it.n != &it.t.hdr }

func (it MappingIteratorW[K, S]) Next() MappingIteratorW[K, S] {
	t := it.t
	if it.n == &t.hdr {
		return it
	}
	curKey := it.n.key
	tie := mappingEqualPredicate[K]{target: it.target, model: curKey, cmp: t.cmp}
	if tn, td := wpreorderIncrement(t, it.n, it.dim, tie); tn != nil {
		return MappingIteratorW[K, S]{t: t, n: tn, dim: td, target: it.target}
	}
	succ := wsubtreeBoundAlongDim(t.root(), 0, t.rank, it.target, curKey, true, t.cmp)
	if succ == nil {
		return t.mappingEndW(it.target)
	}
	return MappingIteratorW[K, S]{t: t, n: succ, dim: t.depthDim(succ), target: it.target}
}

func (it MappingIteratorW[K, S]) Prev() MappingIteratorW[K, S] {
	t := it.t
	if it.n == &t.hdr {
		n := wsubtreeMaxAlongDim(t.root(), 0, t.rank, it.target, t.cmp)
		if n == nil {
			return it
		}
		n, dim := wpreorderMaximum(t, t.root(), 0, mappingEqualPredicate[K]{target: it.target, model: n.key, cmp: t.cmp})
		return MappingIteratorW[K, S]{t: t, n: n, dim: dim, target: it.target}
	}
	curKey := it.n.key
	tie := mappingEqualPredicate[K]{target: it.target, model: curKey, cmp: t.cmp}
	if tn, td := wpreorderDecrement(t, it.n, it.dim, tie); tn != nil {
		return MappingIteratorW[K, S]{t: t, n: tn, dim: td, target: it.target}
	}
	pred := wsubtreeBoundBelowAlongDim(t.root(), 0, t.rank, it.target, curKey, true, t.cmp)
	if pred == nil {
		return it
	}
	// Land on the last node in pre-order holding that value, so the tie
	// walk backward from it sees every tied key.
	pred, dim := wpreorderMaximum(t, t.root(), 0, mappingEqualPredicate[K]{target: it.target, model: pred.key, cmp: t.cmp})
	return MappingIteratorW[K, S]{t: t, n: pred, dim: dim, target: it.target}
}

func wsubtreeBoundAlongDim[K any, S constraints.Unsigned](n *wnode[K, S], dim int, rank Rank, target int, bound K, strict bool, cmp Comparator[K]) *wnode[K, S] {
	if n == nil {
		return nil
	}
	ok := func(k K) bool {
		if strict {
			return cmp(target, bound, k)
		}
		return !cmp(target, k, bound)
	}
	var best *wnode[K, S]
	consider := func(c *wnode[K, S]) {
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
		consider(wsubtreeBoundAlongDim(n.left, rank.Next(dim), rank, target, bound, strict, cmp))
	}
	consider(wsubtreeBoundAlongDim(n.right, rank.Next(dim), rank, target, bound, strict, cmp))
	return best
}

func wsubtreeBoundBelowAlongDim[K any, S constraints.Unsigned](n *wnode[K, S], dim int, rank Rank, target int, bound K, strict bool, cmp Comparator[K]) *wnode[K, S] {
	if n == nil {
		return nil
	}
	ok := func(k K) bool {
		if strict {
			return cmp(target, k, bound)
		}
		return !cmp(target, bound, k)
	}
	var best *wnode[K, S]
	consider := func(c *wnode[K, S]) {
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
		consider(wsubtreeBoundBelowAlongDim(n.right, rank.Next(dim), rank, target, bound, strict, cmp))
	}
	consider(wsubtreeBoundBelowAlongDim(n.left, rank.Next(dim), rank, target, bound, strict, cmp))
	return best
}
