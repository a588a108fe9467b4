package datasets

import (
	"fmt"
	"math/rand"
)

// SubsetDataset re-indexes another dataset through an explicit index list.
// The list may repeat and reorder indices freely; the view's length is the
// list's length, not the source's. No example data is copied.
type SubsetDataset struct {
	src     Dataset
	indices []int
}

// NewSubset builds a subset view of src. Every index is validated against
// [0, src.Len()) here, so an out-of-range entry fails at construction rather
// than on a later read. The index list is copied; the caller may reuse or
// mutate its slice afterwards.
func NewSubset(src Dataset, indices []int) (*SubsetDataset, error) {
	if src == nil {
		return nil, fmt.Errorf("nil source dataset: %w", ErrInvalidConfig)
	}
	n := src.Len()
	owned := make([]int, len(indices))
	for i, idx := range indices {
		if idx < 0 || idx >= n {
			return nil, fmt.Errorf("subset index %d at position %d out of range [0, %d): %w",
				idx, i, n, ErrIndexOutOfRange)
		}
		owned[i] = idx
	}
	return &SubsetDataset{src: src, indices: owned}, nil
}

// Len returns the number of indices in the view.
func (s *SubsetDataset) Len() int { return len(s.indices) }

// Example returns the source example at the i-th remapped index.
func (s *SubsetDataset) Example(i int) (Example, error) {
	if err := checkIndex(i, len(s.indices)); err != nil {
		return Example{}, err
	}
	return s.src.Example(s.indices[i])
}

// Indices returns a copy of the view's index list.
func (s *SubsetDataset) Indices() []int {
	out := make([]int, len(s.indices))
	copy(out, s.indices)
	return out
}

// NewShuffled returns a subset view covering all of src in an order drawn
// from seed. src itself is left untouched.
func NewShuffled(src Dataset, seed int64) (*SubsetDataset, error) {
	if src == nil {
		return nil, fmt.Errorf("nil source dataset: %w", ErrInvalidConfig)
	}
	rng := rand.New(rand.NewSource(seed))
	return NewSubset(src, rng.Perm(src.Len()))
}

// RandomSplit partitions src into two disjoint subset views drawn at random
// from seed: the first holds frac of the examples (rounded down), the second
// the rest. Together they cover src exactly once.
func RandomSplit(src Dataset, frac float64, seed int64) (*SubsetDataset, *SubsetDataset, error) {
	if src == nil {
		return nil, nil, fmt.Errorf("nil source dataset: %w", ErrInvalidConfig)
	}
	if frac < 0 || frac > 1 {
		return nil, nil, fmt.Errorf("split fraction %v outside [0, 1]: %w", frac, ErrInvalidConfig)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(src.Len())
	cut := int(float64(len(perm)) * frac)

	first, err := NewSubset(src, perm[:cut])
	if err != nil {
		return nil, nil, err
	}
	second, err := NewSubset(src, perm[cut:])
	if err != nil {
		return nil, nil, err
	}
	return first, second, nil
}
