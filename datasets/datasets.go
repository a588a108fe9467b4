package datasets

import (
	"errors"
	"fmt"
)

// This package provides the dataset plumbing for continual-learning
// experiments: one index-addressable contract plus lazy views that relabel,
// subset and concatenate datasets without copying the underlying data.
//
// Everything here follows the same rules:
//   - Len is fixed once a value is constructed; nothing mutates in place.
//   - Example(i) is a pure read, safe for any number of concurrent readers.
//   - Whatever can be validated up front is validated at construction
//     (label counts, subset indices, column names), so a bad configuration
//     fails before an experiment starts rather than mid-epoch.
//
// Layout and intended usage:
//
// Sources load examples from somewhere concrete: TensorDataset (in-memory
// slices), CSVDataset (lazy multi-file CSV), ArrowDataset (an Arrow record
// batch), RedisDataset (a Redis list of JSON rows).
//
// Views recombine datasets: TaskDataset overrides task labels, SubsetDataset
// remaps indices, ConcatDataset joins datasets end to end. Views satisfy
// Dataset themselves, so they compose freely.
//
// Batch, MakeBatchFlat and Loader collate examples into gomlx tensors for
// training loops.
type Dataset interface {
	Len() int
	Example(i int) (Example, error)
}

// Example is a single training example: a feature vector, a target vector and
// the task it belongs to. Every dataset returns this one shape.
type Example struct {
	Input  []float32
	Target []float32
	Task   int
}

// Sentinel errors for the two ways a caller can get a dataset wrong.
// Constructors wrap ErrInvalidConfig, index lookups wrap ErrIndexOutOfRange;
// match them with errors.Is.
var (
	// ErrInvalidConfig reports a construction-time contract violation, such
	// as mismatched sequence lengths or a missing column.
	ErrInvalidConfig = errors.New("invalid dataset configuration")

	// ErrIndexOutOfRange reports an index outside [0, Len()). It surfaces at
	// the earliest detectable point: construction for subset index lists,
	// access time everywhere else.
	ErrIndexOutOfRange = errors.New("index out of range")
)

// checkIndex validates i against [0, n).
func checkIndex(i, n int) error {
	if i < 0 || i >= n {
		return fmt.Errorf("index %d out of range [0, %d): %w", i, n, ErrIndexOutOfRange)
	}
	return nil
}
