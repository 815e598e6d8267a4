package KDTree

import "golang.org/x/exp/constraints"

// Zone classifies where a node's split value at one dimension sits
// relative to a query: entirely below the query's matching range at that
// dimension, entirely above it, or inside it (the node's own key may
// still fail to match once every other dimension is checked).
type Zone int

const (
	Below Zone = iota
	Matching
	Above
)

// Predicate is the single abstraction the pre-order traversal core (C7)
// is parameterized over. Classify answers "could the subtree split at
// splitValue along dim still contain a match" without looking at any
// other dimension; Matches performs the full rank-length scan that
// decides whether to emit the current node. The left subtree holds keys
// below splitValue at dim, so it can only be ruled out when the query
// lies entirely above splitValue (splitValue is Below the query,
// Classify == Below); descend-left is legal whenever Classify != Below.
// The right subtree holds keys at or above splitValue, so it can only be
// ruled out when the query lies entirely below splitValue (splitValue is
// Above the query, Classify == Above); descend-right is legal
// whenever Classify != Above. This holds for both the strict (Tree) and
// relaxed (RelaxedTree) invariants, since the tie-breaking difference
// between them only affects where coordinate-equal keys land, not
// whether a subtree can be ruled out.
type Predicate[K any] interface {
	Classify(dim int, splitValue K) Zone
	Matches(key K) bool
}

func descendLeft[K any](p Predicate[K], dim int, splitValue K) bool {
	return p.Classify(dim, splitValue) != Below
}

func descendRight[K any](p Predicate[K], dim int, splitValue K) bool {
	return p.Classify(dim, splitValue) != Above
}

// equalPredicate (C8) matches keys coordinate-equal to model.
type equalPredicate[K any] struct {
	model K
	cmp   Comparator[K]
	rank  Rank
}

// newEqualPredicate builds the C4 "equal" predicate against model.
func newEqualPredicate[K any](rank Rank, cmp Comparator[K], model K) *equalPredicate[K] {
	return &equalPredicate[K]{model: model, cmp: cmp, rank: rank}
}

func (e *equalPredicate[K]) Classify(dim int, splitValue K) Zone {
	if e.cmp(dim, splitValue, e.model) {
		return Below
	}
	if e.cmp(dim, e.model, splitValue) {
		return Above
	}
	return Matching
}

func (e *equalPredicate[K]) Matches(key K) bool {
	return equalAt(e.rank, e.cmp, key, e.model)
}

// rangePredicate (C9) matches keys in the half-open box [lower, upper).
type rangePredicate[K any] struct {
	lower, upper K
	cmp          Comparator[K]
	rank         Rank
}

// newRangePredicate builds the C4 "range" predicate over [lower, upper).
func newRangePredicate[K any](rank Rank, cmp Comparator[K], lower, upper K) *rangePredicate[K] {
	return &rangePredicate[K]{lower: lower, upper: upper, cmp: cmp, rank: rank}
}

func (r *rangePredicate[K]) Classify(dim int, splitValue K) Zone {
	if r.cmp(dim, splitValue, r.lower) {
		return Below
	}
	if !r.cmp(dim, splitValue, r.upper) {
		return Above
	}
	return Matching
}

func (r *rangePredicate[K]) Matches(key K) bool {
	for d := 0; d < r.rank.Dimension(); d++ {
		if r.cmp(d, key, r.lower) || !r.cmp(d, key, r.upper) {
			return false
		}
	}
	return true
}

// closedRangePredicate matches the closed box [lower, upper], the
// symmetric boundary variant alongside the half-open default.
type closedRangePredicate[K any] struct {
	lower, upper K
	cmp          Comparator[K]
	rank         Rank
}

func newClosedRangePredicate[K any](rank Rank, cmp Comparator[K], lower, upper K) *closedRangePredicate[K] {
	return &closedRangePredicate[K]{lower: lower, upper: upper, cmp: cmp, rank: rank}
}

func (r *closedRangePredicate[K]) Classify(dim int, splitValue K) Zone {
	if r.cmp(dim, splitValue, r.lower) {
		return Below
	}
	if r.cmp(dim, r.upper, splitValue) {
		return Above
	}
	return Matching
}

func (r *closedRangePredicate[K]) Matches(key K) bool {
	for d := 0; d < r.rank.Dimension(); d++ {
		if r.cmp(d, key, r.lower) || r.cmp(d, r.upper, key) {
			return false
		}
	}
	return true
}

// BoxKey is satisfied by key types representing an axis-aligned box
// rather than a single point, letting the range iterator additionally
// support the overlap and enclose predicates below.
type BoxKey[K any] interface {
	Low() K
	High() K
}

// overlapPredicate (C9 extension) matches boxes that intersect the query
// box [lower, upper] in every dimension.
type overlapPredicate[B BoxKey[K], K any] struct {
	lower, upper K
	cmp          Comparator[K]
	rank         Rank
}

func newOverlapPredicate[B BoxKey[K], K any](rank Rank, cmp Comparator[K], lower, upper K) *overlapPredicate[B, K] {
	return &overlapPredicate[B, K]{lower: lower, upper: upper, cmp: cmp, rank: rank}
}

// Classify is evaluated against a box's Low() coordinate, the value the
// tree discriminates on, a box can overlap the query even while its Low
// edge sits anywhere that isn't strictly above the query's upper bound.
func (o *overlapPredicate[B, K]) Classify(dim int, splitValue B) Zone {
	splitLow := splitValue.Low()
	if o.cmp(dim, o.upper, splitLow) {
		return Above
	}
	return Matching
}

func (o *overlapPredicate[B, K]) Matches(key B) bool {
	lo, hi := key.Low(), key.High()
	for d := 0; d < o.rank.Dimension(); d++ {
		if o.cmp(d, o.upper, lo) || o.cmp(d, hi, o.lower) {
			return false
		}
	}
	return true
}

// enclosePredicate (C9 extension) matches boxes fully contained in the
// query box [lower, upper].
type enclosePredicate[B BoxKey[K], K any] struct {
	lower, upper K
	cmp          Comparator[K]
	rank         Rank
}

func newEnclosePredicate[B BoxKey[K], K any](rank Rank, cmp Comparator[K], lower, upper K) *enclosePredicate[B, K] {
	return &enclosePredicate[B, K]{lower: lower, upper: upper, cmp: cmp, rank: rank}
}

func (e *enclosePredicate[B, K]) Classify(dim int, splitValue B) Zone {
	splitLow := splitValue.Low()
	if e.cmp(dim, splitLow, e.lower) {
		return Below
	}
	if e.cmp(dim, e.upper, splitLow) {
		return Above
	}
	return Matching
}

func (e *enclosePredicate[B, K]) Matches(key B) bool {
	lo, hi := key.Low(), key.High()
	for d := 0; d < e.rank.Dimension(); d++ {
		if e.cmp(d, lo, e.lower) || e.cmp(d, e.upper, hi) {
			return false
		}
	}
	return true
}

// Overlap returns iterators spanning every box in t whose extent
// intersects the query box [lower, upper] in every dimension. B is the
// tree's own box-shaped key type; cmp compares the coordinate type its
// corners are expressed in, separately from the Comparator[B] t was
// constructed with (which only ever needs to order boxes by their low
// corner, not test intersection).
func Overlap[B BoxKey[K], K any](t *Tree[B], cmp Comparator[K], lower, upper K) (FilterIterator[B], FilterIterator[B]) {
	return t.rangeWithPredicate(newOverlapPredicate[B](t.rank, cmp, lower, upper))
}

// Enclose returns iterators spanning every box in t fully contained in
// the query box [lower, upper].
func Enclose[B BoxKey[K], K any](t *Tree[B], cmp Comparator[K], lower, upper K) (FilterIterator[B], FilterIterator[B]) {
	return t.rangeWithPredicate(newEnclosePredicate[B](t.rank, cmp, lower, upper))
}

// OverlapW is Overlap's RelaxedTree counterpart.
func OverlapW[B BoxKey[K], K any, S constraints.Unsigned](t *RelaxedTree[B, S], cmp Comparator[K], lower, upper K) (FilterIteratorW[B, S], FilterIteratorW[B, S]) {
	return t.rangeWithPredicate(newOverlapPredicate[B](t.rank, cmp, lower, upper))
}

// EncloseW is Enclose's RelaxedTree counterpart.
func EncloseW[B BoxKey[K], K any, S constraints.Unsigned](t *RelaxedTree[B, S], cmp Comparator[K], lower, upper K) (FilterIteratorW[B, S], FilterIteratorW[B, S]) {
	return t.rangeWithPredicate(newEnclosePredicate[B](t.rank, cmp, lower, upper))
}
