package KDTree

// Point is a small worked example of a key type: a fixed-width
// coordinate vector. Most of the package is agnostic to the key
// representation, it only ever touches K through a Comparator and,
// for the neighbor iterator, a Metric, but tests and examples need one
// concrete key to exercise against.
type Point [8]float64

// NewPoint builds a Point from the first len(coords) coordinates.
func NewPoint(coords ...float64) Point {
	var p Point
	copy(p[:], coords)
	return p
}

// BracketLess compares two Points at a single dimension using ordinary
// float64 ordering.
func BracketLess(dim int, a, b Point) bool {
	return a[dim] < b[dim]
}

// Box is a worked example of a BoxKey (predicate.go): an axis-aligned
// box delimited by two Points. It lets a Tree or RelaxedTree hold boxes
// rather than single points, so Overlap and Enclose have a concrete key
// type to operate on.
type Box struct {
	low, high Point
}

// NewBox builds a Box from its low and high corners. It does not verify
// low <= high on every dimension; a degenerate box only ever fails to
// match anything.
func NewBox(low, high Point) Box { return Box{low: low, high: high} }

func (b Box) Low() Point  { return b.low }
func (b Box) High() Point { return b.high }

// BoxLess discriminates Boxes by their low corner. Overlap and Enclose
// only constrain how a box is tested against a query, not how boxes are
// otherwise ordered in the tree, so this picks the natural convention of
// treating a box's own low corner as its point for BST purposes.
func BoxLess(dim int, a, b Box) bool {
	return BracketLess(dim, a.low, b.low)
}
