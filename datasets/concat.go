package datasets

import (
	"fmt"
	"sort"
)

// ConcatDataset presents an ordered list of datasets as one contiguous
// dataset. A global index resolves through a cumulative-length table built
// once at construction; constituent boundaries are half-open, so index i
// belongs to the first constituent whose cumulative length exceeds i.
type ConcatDataset struct {
	srcs []Dataset

	// cum[k] holds the total length of srcs[:k]; len(cum) == len(srcs)+1.
	cum []int
}

// NewConcat concatenates srcs in order. An empty list is a valid zero-length
// dataset; a nil entry is not. Empty constituents are allowed and simply own
// no indices.
func NewConcat(srcs ...Dataset) (*ConcatDataset, error) {
	owned := make([]Dataset, len(srcs))
	cum := make([]int, len(srcs)+1)
	for i, src := range srcs {
		if src == nil {
			return nil, fmt.Errorf("nil dataset at position %d: %w", i, ErrInvalidConfig)
		}
		owned[i] = src
		cum[i+1] = cum[i] + src.Len()
	}
	return &ConcatDataset{srcs: owned, cum: cum}, nil
}

// Len returns the sum of the constituent lengths.
func (c *ConcatDataset) Len() int { return c.cum[len(c.srcs)] }

// Example maps the global index to a constituent and local offset and reads
// through.
func (c *ConcatDataset) Example(i int) (Example, error) {
	if err := checkIndex(i, c.Len()); err != nil {
		return Example{}, err
	}
	k, local := c.mapGlobalIndex(i)
	return c.srcs[k].Example(local)
}

// mapGlobalIndex maps a global index to (constituent index, local index) by
// binary search over the cumulative table.
func (c *ConcatDataset) mapGlobalIndex(i int) (k, local int) {
	k = sort.SearchInts(c.cum, i+1) - 1
	return k, i - c.cum[k]
}
