package KDTree

// Tree is the frozen (static) k-d tree (C5). It rebalances only when
// Rebalance is called explicitly; ordinary Insert/Erase do not rotate.
//
// Insert uses the strict invariant (by convention, resolving how
// coordinate-equal keys land rather than by a formally-stated rule): at
// a node n discriminating on dim, it sends a key k left only when
// cmp(dim,k,n.key) is true (strictly less) and right otherwise, so keys
// equivalent to n.key at dim go right. Rebalance, BuildTree and Erase's
// key relocation do not keep that strictness: they can leave keys
// equivalent to n.key at dim in n's left subtree. Every operation keeps
// the weaker split the traversals rely on: no key in the left subtree
// is greater than n.key at dim, and no key in the right subtree is less.
//
// The zero value is not a usable Tree; construct one with NewTree.
// Like container/list.List, a Tree must not be copied after first use,
// hdr is a self-referencing sentinel and copying would leave the copy's
// internal pointers referring to the original's address.
type Tree[K any] struct {
	hdr      node[K] // sentinel; hdr.parent==root (or &hdr if empty); hdr.left==&hdr always; hdr.right==rightmost (or &hdr if empty)
	leftmost *node[K]
	rank     Rank
	cmp      Comparator[K]
	size     uint
}

// NewTree constructs an empty Tree of the given rank with the given
// per-dimension comparator.
func NewTree[K any](rank Rank, cmp Comparator[K]) *Tree[K] {
	t := &Tree[K]{rank: rank, cmp: cmp}
	t.hdr.left = &t.hdr
	t.hdr.parent = &t.hdr
	t.hdr.right = &t.hdr
	t.leftmost = &t.hdr
	return t
}

// BuildTree bulk-loads keys into a perfectly balanced Tree in O(n^2)
// worst-case time (each level insertion-sorts its slice), the static-tree
// equivalent of the teacher's BuildSBTree, but
// picking the median along the current discriminating dimension at every
// level instead of a single pre-sorted total order.
func BuildTree[K any](rank Rank, cmp Comparator[K], keys []K) *Tree[K] {
	t := NewTree(rank, cmp)
	if len(keys) == 0 {
		return t
	}
	buf := make([]K, len(keys))
	copy(buf, keys)
	t.hdr.parent = buildPlain(buf, rank, 0, cmp, &t.hdr)
	t.size = uint(len(keys))
	t.fixEnds()
	return t
}

func (t *Tree[K]) root() *node[K] {
	return t.hdr.parent
}

func (t *Tree[K]) isEmpty(n *node[K]) bool {
	return n == &t.hdr
}

// fixEnds recomputes leftmost/rightmost from scratch. Used after bulk
// operations (Build, Rebalance) where tracking the incremental delta
// isn't worth the bookkeeping.
func (t *Tree[K]) fixEnds() {
	if t.root() == nil {
		t.hdr.parent = &t.hdr
		t.leftmost = &t.hdr
		t.hdr.right = &t.hdr
		return
	}
	n := t.root()
	for n.left != nil {
		n = n.left
	}
	t.leftmost = n
	n = t.root()
	for n.right != nil {
		n = n.right
	}
	t.hdr.right = n
}

// Dimension returns the tree's rank.
func (t *Tree[K]) Dimension() int { return t.rank.Dimension() }

// Size returns the number of keys in the tree.
func (t *Tree[K]) Size() uint { return t.size }

// Empty reports whether the tree holds no keys.
func (t *Tree[K]) Empty() bool { return t.size == 0 }

// Clear removes every key from the tree; O(1), since Go's garbage
// collector reclaims the detached nodes without an explicit walk.
func (t *Tree[K]) Clear() {
	t.hdr.parent = &t.hdr
	t.hdr.right = &t.hdr
	t.leftmost = &t.hdr
	t.size = 0
}

// Swap exchanges the contents of t and other in O(1). Because the header
// sentinel is a self-referencing value embedded in the Tree struct,
// swapping the struct fields alone leaves stale self-references behind;
// this fixes them up afterward.
func (t *Tree[K]) Swap(other *Tree[K]) {
	tEmpty, oEmpty := t.Empty(), other.Empty()
	tRoot, oRoot := t.root(), other.root()

	t.hdr, other.hdr = other.hdr, t.hdr
	t.leftmost, other.leftmost = other.leftmost, t.leftmost
	t.rank, other.rank = other.rank, t.rank
	t.cmp, other.cmp = other.cmp, t.cmp
	t.size, other.size = other.size, t.size

	t.hdr.left = &t.hdr
	other.hdr.left = &other.hdr

	if oEmpty {
		t.hdr.parent, t.hdr.right, t.leftmost = &t.hdr, &t.hdr, &t.hdr
	} else {
		oRoot.parent = &t.hdr
	}
	if tEmpty {
		other.hdr.parent, other.hdr.right, other.leftmost = &other.hdr, &other.hdr, &other.hdr
	} else {
		tRoot.parent = &other.hdr
	}
}

// Iterator is a forward/backward iterator over a Tree, landing on the
// header (the end value) past either end.
type Iterator[K any] struct {
	t   *Tree[K]
	n   *node[K]
	dim int
}

// End returns the past-the-end iterator.
func (t *Tree[K]) End() Iterator[K] {
	return Iterator[K]{t: t, n: &t.hdr, dim: t.rank.Dimension() - 1}
}

// Begin returns an iterator to the leftmost (in-order minimum) key.
func (t *Tree[K]) Begin() Iterator[K] {
	return Iterator[K]{t: t, n: t.leftmost, dim: t.depthDim(t.leftmost)}
}

// depthDim recomputes the discriminating dimension of n by walking up to
// the root, used only where an iterator is manufactured without having
// tracked dim incrementally (Begin, Prev from End(), and the mapping
// iterator's bound lookups and cross-value jumps).
func (t *Tree[K]) depthDim(n *node[K]) int {
	dim, cur := 0, n
	for cur.parent != &t.hdr && !t.isEmpty(cur.parent) {
		cur = cur.parent
		dim++
	}
	if int(t.rank) == 0 {
		return 0
	}
	return dim % int(t.rank)
}

// Key returns the key the iterator refers to. It must not be the end
// iterator.
func (it Iterator[K]) Key() K { return it.n.key }

// Valid reports whether the iterator refers to an element (i.e. is not
// End()).
func (it Iterator[K]) Valid() bool { return it.n != &it.t.hdr }

// Next advances the iterator to the in-order successor.
func (it Iterator[K]) Next() Iterator[K] {
	n := it.n
	dim := it.dim
	if n.right != nil {
		n = n.right
		dim = it.t.rank.Next(dim)
		for n.left != nil {
			n = n.left
			dim = it.t.rank.Next(dim)
		}
		return Iterator[K]{t: it.t, n: n, dim: dim}
	}
	p := n.parent
	for p != &it.t.hdr && n == p.right {
		n = p
		p = p.parent
		dim = it.t.rank.Prev(dim)
	}
	if p == &it.t.hdr {
		return it.t.End()
	}
	return Iterator[K]{t: it.t, n: p, dim: it.t.rank.Prev(dim)}
}

// Prev moves the iterator to the in-order predecessor.
func (it Iterator[K]) Prev() Iterator[K] {
	n := it.n
	dim := it.dim
	if n == &it.t.hdr {
		return Iterator[K]{t: it.t, n: it.t.hdr.right, dim: it.t.depthDim(it.t.hdr.right)}
	}
	if n.left != nil {
		n = n.left
		dim = it.t.rank.Next(dim)
		for n.right != nil {
			n = n.right
			dim = it.t.rank.Next(dim)
		}
		return Iterator[K]{t: it.t, n: n, dim: dim}
	}
	p := n.parent
	for p != &it.t.hdr && n == p.left {
		n = p
		p = p.parent
		dim = it.t.rank.Prev(dim)
	}
	if p == &it.t.hdr {
		return it.t.End()
	}
	return Iterator[K]{t: it.t, n: p, dim: it.t.rank.Prev(dim)}
}

// Insert inserts key unconditionally; coordinate-equal keys are allowed
// and land in the right subtree by convention.
func (t *Tree[K]) Insert(key K) Iterator[K] {
	n := &node[K]{key: key}
	if t.root() == nil || t.isEmpty(t.root()) {
		n.parent = &t.hdr
		t.hdr.parent = n
		t.leftmost = n
		t.hdr.right = n
		t.size++
		return Iterator[K]{t: t, n: n, dim: 0}
	}
	cur, dim := t.root(), 0
	for {
		if t.cmp(dim, key, cur.key) {
			if cur.left == nil {
				n.parent = cur
				cur.left = n
				break
			}
			cur = cur.left
		} else {
			if cur.right == nil {
				n.parent = cur
				cur.right = n
				break
			}
			cur = cur.right
		}
		dim = t.rank.Next(dim)
	}
	dim = t.rank.Next(dim)
	t.size++
	if t.isNewLeftmost(n) {
		t.leftmost = n
	}
	if t.isNewRightmost(n) {
		t.hdr.right = n
	}
	return Iterator[K]{t: t, n: n, dim: dim}
}

func (t *Tree[K]) isNewLeftmost(n *node[K]) bool {
	cur := n
	for cur.parent != &t.hdr && !t.isEmpty(cur.parent) {
		if cur.parent.left != cur {
			return false
		}
		cur = cur.parent
	}
	return true
}

func (t *Tree[K]) isNewRightmost(n *node[K]) bool {
	cur := n
	for cur.parent != &t.hdr && !t.isEmpty(cur.parent) {
		if cur.parent.right != cur {
			return false
		}
		cur = cur.parent
	}
	return true
}

// Find returns an iterator to a node whose key is coordinate-equal to
// key, or End() if none exists. It descends using the comparator,
// backtracking into sibling subtrees whose bounding half-space could
// still hold a match.
func (t *Tree[K]) Find(key K) Iterator[K] {
	return t.FindIf(newEqualPredicate(t.rank, t.cmp, key))
}

// FindIf returns an iterator to the first node (in pre-order) satisfying
// pred, or End() if none exists.
func (t *Tree[K]) FindIf(pred Predicate[K]) Iterator[K] {
	n, dim := t.preorderMinimum(t.root(), 0, pred)
	if n == nil {
		return t.End()
	}
	return Iterator[K]{t: t, n: n, dim: dim}
}

// EqualRange returns the half-open range of iterators over all keys
// coordinate-equal to key.
func (t *Tree[K]) EqualRange(key K) (FilterIterator[K], FilterIterator[K]) {
	return t.rangeWithPredicate(newEqualPredicate(t.rank, t.cmp, key))
}

// Range returns iterators spanning every key in the half-open box
// [lower, upper).
func (t *Tree[K]) Range(lower, upper K) (FilterIterator[K], FilterIterator[K]) {
	return t.rangeWithPredicate(newRangePredicate(t.rank, t.cmp, lower, upper))
}

// ClosedRange is Range's closed-box variant [lower, upper].
func (t *Tree[K]) ClosedRange(lower, upper K) (FilterIterator[K], FilterIterator[K]) {
	return t.rangeWithPredicate(newClosedRangePredicate(t.rank, t.cmp, lower, upper))
}

func (t *Tree[K]) rangeWithPredicate(pred Predicate[K]) (FilterIterator[K], FilterIterator[K]) {
	end := t.filterEnd(pred)
	first, dim := t.preorderMinimum(t.root(), 0, pred)
	if first == nil {
		return end, end
	}
	return FilterIterator[K]{t: t, n: first, dim: dim, pred: pred}, end
}

func (t *Tree[K]) filterEnd(pred Predicate[K]) FilterIterator[K] {
	return FilterIterator[K]{t: t, n: &t.hdr, dim: t.rank.Dimension() - 1, pred: pred}
}

// FilterIterator is the predicate-driven pre-order walk (C7) that backs
// EqualRange (C8) and Range/ClosedRange (C9): unlike Iterator, Next and
// Prev skip anything pred.Matches rejects, rather than visiting every
// node in-order. Matching nodes are not generally contiguous in in-order
// sequence, so this is a distinct type rather than a constrained
// Iterator.
type FilterIterator[K any] struct {
	t    *Tree[K]
	n    *node[K]
	dim  int
	pred Predicate[K]
}

// Key returns the key the iterator refers to. It must not be the end
// iterator.
func (it FilterIterator[K]) Key() K { return it.n.key }

// Valid reports whether the iterator refers to an element.
func (it FilterIterator[K]) Valid() bool { return it.n != &it.t.hdr }

// Next advances to the next matching node in pre-order, or End() if none
// remains.
func (it FilterIterator[K]) Next() FilterIterator[K] {
	if it.n == &it.t.hdr {
		return it
	}
	n, dim := it.t.preorderIncrement(it.n, it.dim, it.pred)
	if n == nil {
		return it.t.filterEnd(it.pred)
	}
	return FilterIterator[K]{t: it.t, n: n, dim: dim, pred: it.pred}
}

// Prev moves to the previous matching node in pre-order.
func (it FilterIterator[K]) Prev() FilterIterator[K] {
	if it.n == &it.t.hdr {
		n, dim := it.t.preorderMaximum(it.t.root(), 0, it.pred)
		if n == nil {
			return it
		}
		return FilterIterator[K]{t: it.t, n: n, dim: dim, pred: it.pred}
	}
	n, dim := it.t.preorderDecrement(it.n, it.dim, it.pred)
	if n == nil {
		return it
	}
	return FilterIterator[K]{t: it.t, n: n, dim: dim, pred: it.pred}
}

// Erase splices the node it points at out of the tree. The replacement
// policy: find the successor along the node's discriminating dimension
// in the right subtree if present, otherwise the predecessor in the left
// subtree; swap keys and descend until a leaf is removed.
func (t *Tree[K]) Erase(it Iterator[K]) {
	n, dim := it.n, it.dim
	if t.isEmpty(n) {
		return
	}
	t.size--
	for {
		if n.right != nil {
			succ := subtreeMinAlongDim(n.right, t.rank.Next(dim), t.rank, dim, t.cmp)
			n.key = succ.key
			n = succ
			dim = t.rank.Next(dim)
			continue
		}
		if n.left != nil {
			pred := subtreeMaxAlongDim(n.left, t.rank.Next(dim), t.rank, dim, t.cmp)
			n.key = pred.key
			n = pred
			dim = t.rank.Next(dim)
			continue
		}
		break
	}
	t.unlinkLeaf(n)
	t.fixEnds()
}

func (t *Tree[K]) unlinkLeaf(n *node[K]) {
	p := n.parent
	if t.isEmpty(p) {
		t.hdr.parent = nil
		return
	}
	if p.left == n {
		p.left = nil
	} else {
		p.right = nil
	}
}

// EraseRange erases every key in [first, last).
func (t *Tree[K]) EraseRange(first, last Iterator[K]) {
	var keys []K
	for it := first; it.n != last.n; it = it.Next() {
		keys = append(keys, it.n.key)
	}
	for _, k := range keys {
		t.Erase(t.Find(k))
	}
}

// subtreeMinAlongDim descends to the node with the minimum key along
// target within the subtree rooted at n, whose own discriminating
// dimension is dim. This is Bentley's findmin, also used by the mapping
// iterator's Minimum.
func subtreeMinAlongDim[K any](n *node[K], dim int, rank Rank, target int, cmp Comparator[K]) *node[K] {
	if n == nil {
		return nil
	}
	if dim == target {
		if n.left != nil {
			return subtreeMinAlongDim(n.left, rank.Next(dim), rank, target, cmp)
		}
		return n
	}
	best := n
	if l := subtreeMinAlongDim(n.left, rank.Next(dim), rank, target, cmp); l != nil && cmp(target, l.key, best.key) {
		best = l
	}
	if r := subtreeMinAlongDim(n.right, rank.Next(dim), rank, target, cmp); r != nil && cmp(target, r.key, best.key) {
		best = r
	}
	return best
}

func subtreeMaxAlongDim[K any](n *node[K], dim int, rank Rank, target int, cmp Comparator[K]) *node[K] {
	if n == nil {
		return nil
	}
	if dim == target {
		if n.right != nil {
			return subtreeMaxAlongDim(n.right, rank.Next(dim), rank, target, cmp)
		}
		return n
	}
	best := n
	if l := subtreeMaxAlongDim(n.left, rank.Next(dim), rank, target, cmp); l != nil && cmp(target, best.key, l.key) {
		best = l
	}
	if r := subtreeMaxAlongDim(n.right, rank.Next(dim), rank, target, cmp); r != nil && cmp(target, best.key, r.key) {
		best = r
	}
	return best
}

// Rebalance collects every key and rebuilds the tree as a perfectly
// balanced one, picking the median along the current dimension at each
// level: copy-with-balancing.
func (t *Tree[K]) Rebalance() {
	keys := make([]K, 0, t.size)
	for it := t.Begin(); it.Valid(); it = it.Next() {
		keys = append(keys, it.Key())
	}
	t.hdr.parent = buildPlain(keys, t.rank, 0, t.cmp, &t.hdr)
	t.fixEnds()
}

// preorderMinimum descends to the first node in pre-order (root, then
// left subtree, then right subtree) whose key satisfies pred on every
// dimension, pruning subtrees Classify rules out (C7). Pre-order visits
// the root before either child, so a matching root is always the answer;
// otherwise the search looks in the left subtree (in full, since
// pre-order exhausts it before moving on) and only then the right.
func (t *Tree[K]) preorderMinimum(n *node[K], dim int, pred Predicate[K]) (*node[K], int) {
	if n == nil {
		return nil, 0
	}
	if pred.Matches(n.key) {
		return n, dim
	}
	if n.left != nil && descendLeft(pred, dim, n.key) {
		if got, gd := t.preorderMinimum(n.left, t.rank.Next(dim), pred); got != nil {
			return got, gd
		}
	}
	if n.right != nil && descendRight(pred, dim, n.key) {
		return t.preorderMinimum(n.right, t.rank.Next(dim), pred)
	}
	return nil, 0
}

// preorderIncrement moves from (n,dim) to the next pre-order node
// satisfying pred, or returns nil if none remains (C7).
func (t *Tree[K]) preorderIncrement(n *node[K], dim int, pred Predicate[K]) (*node[K], int) {
	if n.left != nil && descendLeft(pred, dim, n.key) {
		if got, gd := t.preorderMinimum(n.left, t.rank.Next(dim), pred); got != nil {
			return got, gd
		}
	}
	if n.right != nil && descendRight(pred, dim, n.key) {
		if got, gd := t.preorderMinimum(n.right, t.rank.Next(dim), pred); got != nil {
			return got, gd
		}
	}
	cur, curDim := n, dim
	for {
		p := cur.parent
		if t.isEmpty(p) {
			return nil, 0
		}
		pDim := t.rank.Prev(curDim)
		if p.left == cur && p.right != nil && descendRight(pred, pDim, p.key) {
			if got, gd := t.preorderMinimum(p.right, t.rank.Next(pDim), pred); got != nil {
				return got, gd
			}
		}
		cur, curDim = p, pDim
	}
}

// preorderMaximum descends to the last node in pre-order satisfying pred
// within the subtree rooted at n, preorderMinimum's mirror, checking the
// right subtree before the left before the node itself, since pre-order
// visits a node's descendants strictly after the node (C7).
func (t *Tree[K]) preorderMaximum(n *node[K], dim int, pred Predicate[K]) (*node[K], int) {
	if n == nil {
		return nil, 0
	}
	if n.right != nil && descendRight(pred, dim, n.key) {
		if got, gd := t.preorderMaximum(n.right, t.rank.Next(dim), pred); got != nil {
			return got, gd
		}
	}
	if n.left != nil && descendLeft(pred, dim, n.key) {
		if got, gd := t.preorderMaximum(n.left, t.rank.Next(dim), pred); got != nil {
			return got, gd
		}
	}
	if pred.Matches(n.key) {
		return n, dim
	}
	return nil, 0
}

// preorderDecrement moves from (n,dim) to the previous pre-order node
// satisfying pred, or returns nil if n was the first match (C7).
func (t *Tree[K]) preorderDecrement(n *node[K], dim int, pred Predicate[K]) (*node[K], int) {
	cur, curDim := n, dim
	for {
		p := cur.parent
		if t.isEmpty(p) {
			return nil, 0
		}
		pDim := t.rank.Prev(curDim)
		if p.left == cur {
			if pred.Matches(p.key) {
				return p, pDim
			}
			cur, curDim = p, pDim
			continue
		}
		if p.left != nil && descendLeft(pred, pDim, p.key) {
			if got, gd := t.preorderMaximum(p.left, t.rank.Next(pDim), pred); got != nil {
				return got, gd
			}
		}
		if pred.Matches(p.key) {
			return p, pDim
		}
		cur, curDim = p, pDim
	}
}
