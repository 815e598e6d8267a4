package KDTree

import "golang.org/x/exp/constraints"

// node is the plain node shape (C2) used by Tree. parent is never nil:
// for the root it points at the tree's header sentinel.
type node[K any] struct {
	key                 K
	parent, left, right *node[K]
}

// wnode is the weighted node shape (C2) used by RelaxedTree. weight is
// the number of nodes in the subtree rooted at this node, including
// itself, kept consistent by every insert and erase.
type wnode[K any, S constraints.Unsigned] struct {
	key                 K
	parent, left, right *wnode[K, S]
	weight              S
}
