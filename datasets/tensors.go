package datasets

import (
	"fmt"
	"reflect"

	"github.com/spf13/cast"
)

// TensorDataset holds examples fully in memory, built from parallel sequences
// of feature vectors. It is the eager counterpart of the file-backed sources
// and the output shape of Materialize. Examples share the caller's backing
// slices; nothing is copied.
type TensorDataset struct {
	inputs  [][]float32
	targets [][]float32
	tasks   []int
}

// NewTensorDataset builds a dataset from two or more parallel sequences of
// equal length. The second sequence provides the targets; the remaining
// sequences are concatenated, in order, into each example's input.
func NewTensorDataset(seqs ...[][]float32) (*TensorDataset, error) {
	return NewTensorDatasetTarget(1, seqs...)
}

// NewTensorDatasetTarget is NewTensorDataset with an explicit choice of
// which sequence provides the targets.
func NewTensorDatasetTarget(target int, seqs ...[][]float32) (*TensorDataset, error) {
	if len(seqs) < 2 {
		return nil, fmt.Errorf("need at least 2 sequences, got %d: %w", len(seqs), ErrInvalidConfig)
	}
	if target < 0 || target >= len(seqs) {
		return nil, fmt.Errorf("target sequence %d out of range [0, %d): %w",
			target, len(seqs), ErrInvalidConfig)
	}
	if err := checkParallel(seqs); err != nil {
		return nil, err
	}

	dataSeqs := make([][][]float32, 0, len(seqs)-1)
	for s, seq := range seqs {
		if s != target {
			dataSeqs = append(dataSeqs, seq)
		}
	}
	return assembleTensorDataset(seqs[target], dataSeqs), nil
}

// NewTensorDatasetWithTargets builds a dataset whose targets come from an
// explicit sequence instead of one of the data sequences. One or more data
// sequences are required; all lengths must agree with the target sequence.
func NewTensorDatasetWithTargets(targets [][]float32, seqs ...[][]float32) (*TensorDataset, error) {
	if len(seqs) == 0 {
		return nil, fmt.Errorf("need at least 1 data sequence: %w", ErrInvalidConfig)
	}
	all := make([][][]float32, 0, len(seqs)+1)
	all = append(all, targets)
	all = append(all, seqs...)
	if err := checkParallel(all); err != nil {
		return nil, err
	}
	return assembleTensorDataset(targets, seqs), nil
}

// checkParallel verifies all sequences share the first one's length.
func checkParallel(seqs [][][]float32) error {
	n := len(seqs[0])
	for i, s := range seqs {
		if len(s) != n {
			return fmt.Errorf("sequence %d has %d entries, sequence 0 has %d: %w",
				i, len(s), n, ErrInvalidConfig)
		}
	}
	return nil
}

func assembleTensorDataset(targets [][]float32, dataSeqs [][][]float32) *TensorDataset {
	n := len(targets)
	ds := &TensorDataset{
		inputs:  make([][]float32, n),
		targets: targets,
		tasks:   make([]int, n),
	}
	for i := range n {
		// A single data sequence is aliased; several are concatenated per row.
		if len(dataSeqs) == 1 {
			ds.inputs[i] = dataSeqs[0][i]
			continue
		}
		width := 0
		for _, seq := range dataSeqs {
			width += len(seq[i])
		}
		in := make([]float32, 0, width)
		for _, seq := range dataSeqs {
			in = append(in, seq[i]...)
		}
		ds.inputs[i] = in
	}
	return ds
}

// SetTasks installs per-example task labels; the default is task 0
// everywhere. The list is copied. Call before the dataset is shared between
// goroutines.
func (d *TensorDataset) SetTasks(tasks []int) error {
	if len(tasks) != len(d.tasks) {
		return fmt.Errorf("task list has %d entries for %d examples: %w",
			len(tasks), len(d.tasks), ErrInvalidConfig)
	}
	copy(d.tasks, tasks)
	return nil
}

// Len returns the number of examples.
func (d *TensorDataset) Len() int { return len(d.inputs) }

// Example returns the example at index i.
func (d *TensorDataset) Example(i int) (Example, error) {
	if err := checkIndex(i, len(d.inputs)); err != nil {
		return Example{}, err
	}
	return Example{Input: d.inputs[i], Target: d.targets[i], Task: d.tasks[i]}, nil
}

// Column lifts a sequence of scalars into the [][]float32 shape the
// constructors take, one single-component vector per value.
func Column(vals []float32) [][]float32 {
	out := make([][]float32, len(vals))
	for i, v := range vals {
		out[i] = []float32{v}
	}
	return out
}

// ColumnFrom is Column for arbitrary numeric slices ([]int, []float64 and so
// on). Elements are coerced individually; the first element that does not
// convert reports an error.
func ColumnFrom(seq any) ([][]float32, error) {
	v := reflect.ValueOf(seq)
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return nil, fmt.Errorf("cannot build a column from %T: %w", seq, ErrInvalidConfig)
	}
	out := make([][]float32, v.Len())
	for i := range v.Len() {
		f, err := cast.ToFloat32E(v.Index(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("column element %d: %w", i, err)
		}
		out[i] = []float32{f}
	}
	return out, nil
}
