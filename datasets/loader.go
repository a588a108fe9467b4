package datasets

import (
	"fmt"
	"io"
	"math/rand"

	"github.com/gomlx/gomlx/pkg/core/tensors"
)

// Loader iterates a dataset in batches the way gomlx training loops consume
// them: Yield returns one batch per call and io.EOF once the epoch is
// exhausted, Restart rewinds for the next epoch. With shuffling enabled each
// epoch draws a fresh order from the loader's generator.
//
// Yield and Restart are not safe for concurrent use; the datasets underneath
// are, so separate loaders over one dataset can run in parallel.
type Loader struct {
	src       Dataset
	name      string
	batchSize int
	shuffle   bool
	rng       *rand.Rand

	order []int
	pos   int
}

// NewLoader builds a loader over src. batchSize must be positive. With
// shuffle set, the iteration order is seeded from seed and redrawn on every
// Restart.
func NewLoader(src Dataset, batchSize int, shuffle bool, seed int64) (*Loader, error) {
	if src == nil {
		return nil, fmt.Errorf("nil source dataset: %w", ErrInvalidConfig)
	}
	if batchSize <= 0 {
		return nil, fmt.Errorf("batch size %d must be positive: %w", batchSize, ErrInvalidConfig)
	}

	l := &Loader{
		src:       src,
		name:      "loader",
		batchSize: batchSize,
		shuffle:   shuffle,
		rng:       rand.New(rand.NewSource(seed)),
	}
	l.reset()
	return l, nil
}

// SetName sets the name reported to training loops.
func (l *Loader) SetName(name string) { l.name = name }

// Name returns the loader's name.
func (l *Loader) Name() string { return l.name }

func (l *Loader) reset() {
	n := l.src.Len()
	if l.shuffle {
		l.order = l.rng.Perm(n)
	} else {
		l.order = make([]int, n)
		for i := range n {
			l.order[i] = i
		}
	}
	l.pos = 0
}

// Yield returns the next batch as gomlx tensors: one input tensor and two
// label tensors (targets, then tasks). The final batch of an epoch may be
// short; after it, Yield returns io.EOF until Restart is called.
func (l *Loader) Yield() (spec any, inputs []*tensors.Tensor, labels []*tensors.Tensor, err error) {
	if l.pos >= len(l.order) {
		return nil, nil, nil, io.EOF
	}

	end := min(l.pos+l.batchSize, len(l.order))
	indices := l.order[l.pos:end]
	l.pos = end

	in, tgt, tasks, err := Tensors(l.src, indices)
	if err != nil {
		return nil, nil, nil, err
	}
	return nil, []*tensors.Tensor{in}, []*tensors.Tensor{tgt, tasks}, nil
}

// Restart rewinds the loader for a new epoch.
func (l *Loader) Restart() error {
	l.reset()
	return nil
}

// Batches returns the number of batches in one epoch.
func (l *Loader) Batches() int {
	return (l.src.Len() + l.batchSize - 1) / l.batchSize
}
