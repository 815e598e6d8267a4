package KDTree

import (
	"github.com/emirpasic/gods/stacks/arraystack"
	"golang.org/x/exp/constraints"
)

// Policy decides, after each insertion or erasure, whether the affected
// ancestor chain has drifted out of weight balance (C6).
// Imbalanced(parentWeight, childWeight) must be a pure function of the
// two weights.
type Policy[S constraints.Unsigned] interface {
	Imbalanced(parentWeight, childWeight S) bool
}

// LoosePolicy is the "loose" canonical policy: a child is too heavy once
// it outweighs the rest of its parent's subtree by more than one node,
// provided it has also grown past Threshold, small subtrees are left
// alone to avoid rebuilding on every other insert. Threshold is named
// here rather than buried as a literal.
type LoosePolicy[S constraints.Unsigned] struct{ Threshold S }

func (p LoosePolicy[S]) Imbalanced(parentWeight, childWeight S) bool {
	return childWeight > parentWeight-childWeight+1 && childWeight >= p.Threshold
}

// TightPolicy is the "tight" canonical policy: a child is too heavy once
// it holds more than an Alpha fraction of the whole subtree, Alpha fixed
// at construction. Alpha must lie in (0.5, 1).
type TightPolicy[S constraints.Unsigned] struct{ Alpha float64 }

func (p TightPolicy[S]) Imbalanced(parentWeight, childWeight S) bool {
	return float64(childWeight) > p.Alpha*float64(parentWeight)
}

// RelaxedTree is the weighted, self-balancing k-d tree (C6). Unlike
// Tree, it uses the relaxed (non-strict) invariant, the right subtree
// may hold keys equivalent to the split at the discriminating dimension,
// because rebalancing can relocate equivalent keys across a split
// without their coordinates changing.
//
// Like Tree, the zero value is unusable; construct with NewRelaxedTree.
// The header sentinel is embedded by value; do not copy a RelaxedTree
// after first use.
type RelaxedTree[K any, S constraints.Unsigned] struct {
	hdr      wnode[K, S]
	leftmost *wnode[K, S]
	rank     Rank
	cmp      Comparator[K]
	policy   Policy[S]
	size     uint
}

// NewRelaxedTree constructs an empty RelaxedTree under policy.
func NewRelaxedTree[K any, S constraints.Unsigned](rank Rank, cmp Comparator[K], policy Policy[S]) *RelaxedTree[K, S] {
	t := &RelaxedTree[K, S]{rank: rank, cmp: cmp, policy: policy}
	t.hdr.left = &t.hdr
	t.hdr.parent = &t.hdr
	t.hdr.right = &t.hdr
	t.leftmost = &t.hdr
	return t
}

func (t *RelaxedTree[K, S]) root() *wnode[K, S] { return t.hdr.parent }

func (t *RelaxedTree[K, S]) isEmpty(n *wnode[K, S]) bool { return n == &t.hdr }

func (t *RelaxedTree[K, S]) fixEnds() {
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
func (t *RelaxedTree[K, S]) Dimension() int { return t.rank.Dimension() }

// Size is O(1): the root's weight.
func (t *RelaxedTree[K, S]) Size() uint {
	if t.isEmpty(t.root()) {
		return 0
	}
	return uint(t.root().weight)
}

// Empty reports whether the tree holds no keys.
func (t *RelaxedTree[K, S]) Empty() bool { return t.isEmpty(t.root()) }

// Clear removes every key from the tree.
func (t *RelaxedTree[K, S]) Clear() {
	t.hdr.parent = &t.hdr
	t.hdr.right = &t.hdr
	t.leftmost = &t.hdr
	t.size = 0
}

// Swap exchanges the contents of t and other in O(1), fixing up the
// self-referencing header sentinels the way Tree.Swap does.
func (t *RelaxedTree[K, S]) Swap(other *RelaxedTree[K, S]) {
	tEmpty, oEmpty := t.Empty(), other.Empty()
	tRoot, oRoot := t.root(), other.root()

	t.hdr, other.hdr = other.hdr, t.hdr
	t.leftmost, other.leftmost = other.leftmost, t.leftmost
	t.rank, other.rank = other.rank, t.rank
	t.cmp, other.cmp = other.cmp, t.cmp
	t.policy, other.policy = other.policy, t.policy
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

// RelaxedIterator is the in-order forward/backward iterator over a
// RelaxedTree, mirroring Iterator.
type RelaxedIterator[K any, S constraints.Unsigned] struct {
	t   *RelaxedTree[K, S]
	n   *wnode[K, S]
	dim int
}

func (t *RelaxedTree[K, S]) End() RelaxedIterator[K, S] {
	return RelaxedIterator[K, S]{t: t, n: &t.hdr, dim: t.rank.Dimension() - 1}
}

func (t *RelaxedTree[K, S]) Begin() RelaxedIterator[K, S] {
	return RelaxedIterator[K, S]{t: t, n: t.leftmost, dim: t.depthDim(t.leftmost)}
}

func (t *RelaxedTree[K, S]) depthDim(n *wnode[K, S]) int {
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

func (it RelaxedIterator[K, S]) Key() K { return it.n.key }

func (it RelaxedIterator[K, S]) Valid() bool { return it.n != &it.t.hdr }

// Weight returns the subtree-size counter rooted at the iterator's node.
func (it RelaxedIterator[K, S]) Weight() S { return it.n.weight }

func (it RelaxedIterator[K, S]) Next() RelaxedIterator[K, S] {
	n, dim := it.n, it.dim
	if n.right != nil {
		n = n.right
		dim = it.t.rank.Next(dim)
		for n.left != nil {
			n = n.left
			dim = it.t.rank.Next(dim)
		}
		return RelaxedIterator[K, S]{t: it.t, n: n, dim: dim}
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
	return RelaxedIterator[K, S]{t: it.t, n: p, dim: it.t.rank.Prev(dim)}
}

func (it RelaxedIterator[K, S]) Prev() RelaxedIterator[K, S] {
	n, dim := it.n, it.dim
	if n == &it.t.hdr {
		return RelaxedIterator[K, S]{t: it.t, n: it.t.hdr.right, dim: it.t.depthDim(it.t.hdr.right)}
	}
	if n.left != nil {
		n = n.left
		dim = it.t.rank.Next(dim)
		for n.right != nil {
			n = n.right
			dim = it.t.rank.Next(dim)
		}
		return RelaxedIterator[K, S]{t: it.t, n: n, dim: dim}
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
	return RelaxedIterator[K, S]{t: it.t, n: p, dim: it.t.rank.Prev(dim)}
}

// Insert inserts key unconditionally under the relaxed invariant
// (equivalent-at-dim keys may land on either side; by convention, on the
// right, same as Tree.Insert), then walks the ancestor chain bottom-up,
// on arraystack.Stack, adapted from the teacher's go.mod dependency that
// its own tree package never used, updating weights and rebalancing the
// first ancestor the policy flags: the invariant is restored at the
// bottom of the chain first, then the walk continues upward.
func (t *RelaxedTree[K, S]) Insert(key K) RelaxedIterator[K, S] {
	n := &wnode[K, S]{key: key, weight: 1}
	if t.isEmpty(t.root()) {
		n.parent = &t.hdr
		t.hdr.parent = n
		t.leftmost = n
		t.hdr.right = n
		t.size++
		return RelaxedIterator[K, S]{t: t, n: n, dim: 0}
	}
	path := arraystack.New()
	cur, dim := t.root(), 0
	for {
		path.Push(cur)
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
	resultDim := t.rank.Next(dim)
	t.size++
	if t.isNewLeftmost(n) {
		t.leftmost = n
	}
	if t.isNewRightmost(n) {
		t.hdr.right = n
	}
	t.retraceInsert(path, n)
	t.fixEnds()
	return RelaxedIterator[K, S]{t: t, n: n, dim: resultDim}
}

func (t *RelaxedTree[K, S]) retraceInsert(path *arraystack.Stack, leaf *wnode[K, S]) {
	child := leaf
	for !path.Empty() {
		v, _ := path.Pop()
		anc := v.(*wnode[K, S])
		anc.weight++
		if t.policy.Imbalanced(anc.weight, child.weight) {
			t.fixImbalance(anc)
		}
		child = anc
	}
}

func (t *RelaxedTree[K, S]) isNewLeftmost(n *wnode[K, S]) bool {
	cur := n
	for cur.parent != &t.hdr && !t.isEmpty(cur.parent) {
		if cur.parent.left != cur {
			return false
		}
		cur = cur.parent
	}
	return true
}

func (t *RelaxedTree[K, S]) isNewRightmost(n *wnode[K, S]) bool {
	cur := n
	for cur.parent != &t.hdr && !t.isEmpty(cur.parent) {
		if cur.parent.right != cur {
			return false
		}
		cur = cur.parent
	}
	return true
}

// fixImbalance restores the policy's invariant at n's subtree, in place
// within n's parent's child slot. For rank 1 every node discriminates on
// the same (only) dimension, so a literal rotation, adapted from the
// teacher's rotateLeft/rotateRight (Trees/Nodes.go), is dimension-safe.
// For rank > 1 a rotation would promote a child built against the old
// discriminating dimension into a shallower depth with a different one,
// silently breaking its own children's partition; this rebuilds the
// subtree from scratch instead, a scapegoat-tree-style resolution, since
// only the weight-triggered balancing contract is prescribed, not literal
// rotation as the only mechanism.
func (t *RelaxedTree[K, S]) fixImbalance(n *wnode[K, S]) {
	p := n.parent
	isLeft := !t.isEmpty(p) && p.left == n
	var newRoot *wnode[K, S]
	if t.rank.Dimension() == 1 {
		newRoot = t.rotateToBalance(n)
	} else {
		newRoot = t.rebuildSubtree(n)
	}
	if t.isEmpty(p) {
		t.hdr.parent = newRoot
	} else if isLeft {
		p.left = newRoot
	} else {
		p.right = newRoot
	}
}

// rotateToBalance restores the weight-balance policy at n, mirroring the
// teacher's maintain (Trees/SBTree.go:91-116), generalized from SBT's
// fixed size-ratio test to this tree's Policy interface. A rotation only
// relocates weight between n and its new parent, it does not redistribute
// weight within the subtree it demotes, so after rotating it recurses
// into that demoted subtree (matching maintain's own recursive calls on
// the node it rotates down) before re-checking the new root, the same way
// maintain re-examines curPtr after fixing its children.
func (t *RelaxedTree[K, S]) rotateToBalance(n *wnode[K, S]) *wnode[K, S] {
	for t.policy.Imbalanced(n.weight, weightOf(heavierChild(n))) {
		var root *wnode[K, S]
		if weightOf(n.left) > weightOf(n.right) {
			root = rotateRightW(n)
			root.right = t.rotateToBalance(n)
			root.right.parent = root
		} else {
			root = rotateLeftW(n)
			root.left = t.rotateToBalance(n)
			root.left.parent = root
		}
		n = root
	}
	return n
}

func heavierChild[K any, S constraints.Unsigned](n *wnode[K, S]) *wnode[K, S] {
	if weightOf(n.left) >= weightOf(n.right) {
		return n.left
	}
	return n.right
}

// rotateLeftW promotes n.right to root, adapted from the teacher's
// rotateLeft (Trees/Nodes.go) to the parent-linked wnode shape: the
// teacher rewrites a bare value-slot pointer; this additionally relinks
// the parent back-pointers the header-sentinel design depends on.
func rotateLeftW[K any, S constraints.Unsigned](n *wnode[K, S]) *wnode[K, S] {
	r := n.right
	n.right = r.left
	if r.left != nil {
		r.left.parent = n
	}
	r.left = n
	r.parent = n.parent
	n.parent = r
	r.weight = n.weight
	n.weight = weightOf(n.left) + weightOf(n.right) + 1
	return r
}

func rotateRightW[K any, S constraints.Unsigned](n *wnode[K, S]) *wnode[K, S] {
	l := n.left
	n.left = l.right
	if l.right != nil {
		l.right.parent = n
	}
	l.right = n
	l.parent = n.parent
	n.parent = l
	l.weight = n.weight
	n.weight = weightOf(n.left) + weightOf(n.right) + 1
	return l
}

// rebuildSubtree collects n's subtree in-order and rebuilds it as a
// perfectly balanced subtree on the same discriminating dimension n
// itself started on, preserving the partition every surviving descendant
// was built against.
func (t *RelaxedTree[K, S]) rebuildSubtree(n *wnode[K, S]) *wnode[K, S] {
	keys := make([]K, 0, n.weight)
	collectInOrderW(n, &keys)
	dim := t.depthDim(n)
	return buildWeighted(keys, t.rank, dim, t.cmp, n.parent)
}

func collectInOrderW[K any, S constraints.Unsigned](n *wnode[K, S], out *[]K) {
	if n == nil {
		return
	}
	collectInOrderW(n.left, out)
	*out = append(*out, n.key)
	collectInOrderW(n.right, out)
}

// Erase splices out the node it.n, using the same successor/predecessor
// replacement policy as Tree.Erase, then retraces the ancestor chain
// decrementing weights and rebalancing. It returns an iterator to the
// element that followed the removed one in pre-order, unlike Tree.Erase,
// which returns nothing. That element is recovered by key once every
// mutation is done rather than carried as a node pointer across the
// retrace, since rebalancing can discard and rebuild whole subtrees.
func (t *RelaxedTree[K, S]) Erase(it RelaxedIterator[K, S]) FilterIteratorW[K, S] {
	n, dim := it.n, it.dim
	if t.isEmpty(n) {
		return t.filterEndW(alwaysPredicate[K]{})
	}
	nextN, _ := wpreorderIncrement(t, n, dim, alwaysPredicate[K]{})

	t.size--
	chain := []*wnode[K, S]{n}
	for {
		if n.right != nil {
			succ := wsubtreeMinAlongDim(n.right, t.rank.Next(dim), t.rank, dim, t.cmp)
			n.key = succ.key
			n = succ
			dim = t.rank.Next(dim)
			chain = append(chain, n)
			continue
		}
		if n.left != nil {
			pred := wsubtreeMaxAlongDim(n.left, t.rank.Next(dim), t.rank, dim, t.cmp)
			n.key = pred.key
			n = pred
			dim = t.rank.Next(dim)
			chain = append(chain, n)
			continue
		}
		break
	}
	// The splice above copies each chain node's key from its replacement,
	// one step at a time, down to the unlinked leaf at the end of chain.
	// If the pre-order successor computed above turns out to be an
	// interior chain node rather than the leaf, its original value has
	// already been relocated one step earlier in chain, so redirect there
	// so the key captured below is the one it originally pointed at.
	if nextN != nil {
		for i := 1; i < len(chain)-1; i++ {
			if chain[i] == nextN {
				nextN = chain[i-1]
				break
			}
		}
	}
	var nextKey K
	haveNext := nextN != nil
	if haveNext {
		nextKey = nextN.key
	}

	t.unlinkLeaf(n)
	t.retraceErase(n)
	t.fixEnds()

	// retraceErase may call fixImbalance, which on a rebuilt subtree
	// (rebuildSubtree) discards every wnode it touches and allocates
	// fresh ones, so nextN can be left pointing at a detached node. Find
	// the successor by its key instead of trusting the pointer captured
	// before retraceErase ran.
	if !haveNext {
		return t.filterEndW(alwaysPredicate[K]{})
	}
	found := t.FindIf(newEqualPredicate(t.rank, t.cmp, nextKey))
	if !found.Valid() {
		return t.filterEndW(alwaysPredicate[K]{})
	}
	return FilterIteratorW[K, S]{t: t, n: found.n, dim: found.dim, pred: alwaysPredicate[K]{}}
}

// EraseRange erases every key in [first, last).
func (t *RelaxedTree[K, S]) EraseRange(first, last RelaxedIterator[K, S]) {
	var keys []K
	for it := first; it.n != last.n; it = it.Next() {
		keys = append(keys, it.n.key)
	}
	for _, k := range keys {
		t.Erase(t.Find(k))
	}
}

func (t *RelaxedTree[K, S]) unlinkLeaf(n *wnode[K, S]) {
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

// retraceErase decrements weight along removed's real ancestor chain,
// walking parent pointers rather than a pre-recorded path: the splice
// in Erase can relocate removed several real tree levels below the
// node the caller originally pointed at, so the ancestors that need a
// weight update are exactly removed's parent, grandparent, and so on,
// not the logical successor/predecessor chain Erase walked to find it.
// Each ancestor is checked against its heavier child, since an erase
// shrinks one side and can leave the other side too heavy.
// next is captured before fixImbalance runs on anc, since a rotation
// reassigns anc.parent to what was its own child, which would corrupt
// the walk if read afterward.
func (t *RelaxedTree[K, S]) retraceErase(removed *wnode[K, S]) {
	anc := removed.parent
	for !t.isEmpty(anc) {
		next := anc.parent
		anc.weight--
		if t.policy.Imbalanced(anc.weight, weightOf(heavierChild(anc))) {
			t.fixImbalance(anc)
		}
		anc = next
	}
}

func wsubtreeMinAlongDim[K any, S constraints.Unsigned](n *wnode[K, S], dim int, rank Rank, target int, cmp Comparator[K]) *wnode[K, S] {
	if n == nil {
		return nil
	}
	if dim == target {
		if n.left != nil {
			return wsubtreeMinAlongDim(n.left, rank.Next(dim), rank, target, cmp)
		}
		return n
	}
	best := n
	if l := wsubtreeMinAlongDim(n.left, rank.Next(dim), rank, target, cmp); l != nil && cmp(target, l.key, best.key) {
		best = l
	}
	if r := wsubtreeMinAlongDim(n.right, rank.Next(dim), rank, target, cmp); r != nil && cmp(target, r.key, best.key) {
		best = r
	}
	return best
}

func wsubtreeMaxAlongDim[K any, S constraints.Unsigned](n *wnode[K, S], dim int, rank Rank, target int, cmp Comparator[K]) *wnode[K, S] {
	if n == nil {
		return nil
	}
	if dim == target {
		if n.right != nil {
			return wsubtreeMaxAlongDim(n.right, rank.Next(dim), rank, target, cmp)
		}
		return n
	}
	best := n
	if l := wsubtreeMaxAlongDim(n.left, rank.Next(dim), rank, target, cmp); l != nil && cmp(target, best.key, l.key) {
		best = l
	}
	if r := wsubtreeMaxAlongDim(n.right, rank.Next(dim), rank, target, cmp); r != nil && cmp(target, best.key, r.key) {
		best = r
	}
	return best
}

// alwaysPredicate matches every node; Classify never prunes. Used where
// a plain pre-order walk is needed without any geometric filter, such as
// RelaxedTree.Erase's "successor in pre-order" return value.
type alwaysPredicate[K any] struct{}

func (alwaysPredicate[K]) Classify(dim int, splitValue K) Zone { return Matching }
func (alwaysPredicate[K]) Matches(key K) bool                  { return true }

func wpreorderMinimum[K any, S constraints.Unsigned](t *RelaxedTree[K, S], n *wnode[K, S], dim int, pred Predicate[K]) (*wnode[K, S], int) {
	if n == nil {
		return nil, 0
	}
	if pred.Matches(n.key) {
		return n, dim
	}
	if n.left != nil && descendLeft(pred, dim, n.key) {
		if got, gd := wpreorderMinimum(t, n.left, t.rank.Next(dim), pred); got != nil {
			return got, gd
		}
	}
	if n.right != nil && descendRight(pred, dim, n.key) {
		return wpreorderMinimum(t, n.right, t.rank.Next(dim), pred)
	}
	return nil, 0
}

func wpreorderMaximum[K any, S constraints.Unsigned](t *RelaxedTree[K, S], n *wnode[K, S], dim int, pred Predicate[K]) (*wnode[K, S], int) {
	if n == nil {
		return nil, 0
	}
	if n.right != nil && descendRight(pred, dim, n.key) {
		if got, gd := wpreorderMaximum(t, n.right, t.rank.Next(dim), pred); got != nil {
			return got, gd
		}
	}
	if n.left != nil && descendLeft(pred, dim, n.key) {
		if got, gd := wpreorderMaximum(t, n.left, t.rank.Next(dim), pred); got != nil {
			return got, gd
		}
	}
	if pred.Matches(n.key) {
		return n, dim
	}
	return nil, 0
}

func wpreorderIncrement[K any, S constraints.Unsigned](t *RelaxedTree[K, S], n *wnode[K, S], dim int, pred Predicate[K]) (*wnode[K, S], int) {
	if n.left != nil && descendLeft(pred, dim, n.key) {
		if got, gd := wpreorderMinimum(t, n.left, t.rank.Next(dim), pred); got != nil {
			return got, gd
		}
	}
	if n.right != nil && descendRight(pred, dim, n.key) {
		if got, gd := wpreorderMinimum(t, n.right, t.rank.Next(dim), pred); got != nil {
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
			if got, gd := wpreorderMinimum(t, p.right, t.rank.Next(pDim), pred); got != nil {
				return got, gd
			}
		}
		cur, curDim = p, pDim
	}
}

func wpreorderDecrement[K any, S constraints.Unsigned](t *RelaxedTree[K, S], n *wnode[K, S], dim int, pred Predicate[K]) (*wnode[K, S], int) {
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
			if got, gd := wpreorderMaximum(t, p.left, t.rank.Next(pDim), pred); got != nil {
				return got, gd
			}
		}
		if pred.Matches(p.key) {
			return p, pDim
		}
		cur, curDim = p, pDim
	}
}

// Find returns an iterator to a node coordinate-equal to key, or End().
func (t *RelaxedTree[K, S]) Find(key K) RelaxedIterator[K, S] {
	return t.FindIf(newEqualPredicate(t.rank, t.cmp, key))
}

func (t *RelaxedTree[K, S]) FindIf(pred Predicate[K]) RelaxedIterator[K, S] {
	n, dim := wpreorderMinimum(t, t.root(), 0, pred)
	if n == nil {
		return t.End()
	}
	return RelaxedIterator[K, S]{t: t, n: n, dim: dim}
}

// FilterIteratorW is FilterIterator's RelaxedTree counterpart.
type FilterIteratorW[K any, S constraints.Unsigned] struct {
	t    *RelaxedTree[K, S]
	n    *wnode[K, S]
	dim  int
	pred Predicate[K]
}

func (it FilterIteratorW[K, S]) Key() K { return it.n.key }

func (it FilterIteratorW[K, S]) Valid() bool { return it.n != &it.t.hdr }

func (it FilterIteratorW[K, S]) Next() FilterIteratorW[K, S] {
	if it.n == &it.t.hdr {
		return it
	}
	n, dim := wpreorderIncrement(it.t, it.n, it.dim, it.pred)
	if n == nil {
		return it.t.filterEndW(it.pred)
	}
	return FilterIteratorW[K, S]{t: it.t, n: n, dim: dim, pred: it.pred}
}

func (it FilterIteratorW[K, S]) Prev() FilterIteratorW[K, S] {
	if it.n == &it.t.hdr {
		n, dim := wpreorderMaximum(it.t, it.t.root(), 0, it.pred)
		if n == nil {
			return it
		}
		return FilterIteratorW[K, S]{t: it.t, n: n, dim: dim, pred: it.pred}
	}
	n, dim := wpreorderDecrement(it.t, it.n, it.dim, it.pred)
	if n == nil {
		return it
	}
	return FilterIteratorW[K, S]{t: it.t, n: n, dim: dim, pred: it.pred}
}

func (t *RelaxedTree[K, S]) filterEndW(pred Predicate[K]) FilterIteratorW[K, S] {
	return FilterIteratorW[K, S]{t: t, n: &t.hdr, dim: t.rank.Dimension() - 1, pred: pred}
}

func (t *RelaxedTree[K, S]) rangeWithPredicate(pred Predicate[K]) (FilterIteratorW[K, S], FilterIteratorW[K, S]) {
	end := t.filterEndW(pred)
	first, dim := wpreorderMinimum(t, t.root(), 0, pred)
	if first == nil {
		return end, end
	}
	return FilterIteratorW[K, S]{t: t, n: first, dim: dim, pred: pred}, end
}

// EqualRange returns the half-open range of iterators over all keys
// coordinate-equal to key.
func (t *RelaxedTree[K, S]) EqualRange(key K) (FilterIteratorW[K, S], FilterIteratorW[K, S]) {
	return t.rangeWithPredicate(newEqualPredicate(t.rank, t.cmp, key))
}

// Range returns iterators spanning every key in the half-open box
// [lower, upper).
func (t *RelaxedTree[K, S]) Range(lower, upper K) (FilterIteratorW[K, S], FilterIteratorW[K, S]) {
	return t.rangeWithPredicate(newRangePredicate(t.rank, t.cmp, lower, upper))
}

// ClosedRange is Range's closed-box variant [lower, upper].
func (t *RelaxedTree[K, S]) ClosedRange(lower, upper K) (FilterIteratorW[K, S], FilterIteratorW[K, S]) {
	return t.rangeWithPredicate(newClosedRangePredicate(t.rank, t.cmp, lower, upper))
}
