// Package KDTree implements associative containers keyed by points in
// k-dimensional space: a frozen Tree that rebalances only on request and a
// RelaxedTree that keeps itself balanced across inserts and erases.
//
// Both containers are single-threaded. A container may be read from
// multiple goroutines concurrently as long as none of them mutate it;
// mixing mutation with any other access is a data race the caller must
// serialize.
package KDTree
