package datasets

import (
	"fmt"

	"github.com/gomlx/gomlx/pkg/core/tensors"
)

// Batch gathers the examples at the given indices, in order. The first read
// error aborts the batch.
func Batch(src Dataset, indices []int) ([]Example, error) {
	out := make([]Example, len(indices))
	for i, idx := range indices {
		ex, err := src.Example(idx)
		if err != nil {
			return nil, fmt.Errorf("read example %d: %w", idx, err)
		}
		out[i] = ex
	}
	return out, nil
}

// BatchFlat stores a batch in flat contiguous buffers, one row per example.
type BatchFlat struct {
	Inputs    []float32
	Targets   []float32
	Tasks     []int32
	BatchSize int
	InputDim  int
	TargetDim int
}

// MakeBatchFlat flattens a batch into contiguous buffers. Every example must
// share the first example's input and target widths.
func MakeBatchFlat(examples []Example) (*BatchFlat, error) {
	if len(examples) == 0 {
		return &BatchFlat{}, nil
	}

	batchSize := len(examples)
	inputDim := len(examples[0].Input)
	targetDim := len(examples[0].Target)

	flat := &BatchFlat{
		Inputs:    make([]float32, batchSize*inputDim),
		Targets:   make([]float32, batchSize*targetDim),
		Tasks:     make([]int32, batchSize),
		BatchSize: batchSize,
		InputDim:  inputDim,
		TargetDim: targetDim,
	}

	for i, ex := range examples {
		if len(ex.Input) != inputDim {
			return nil, fmt.Errorf("inconsistent input width at example %d: expected %d, got %d: %w",
				i, inputDim, len(ex.Input), ErrInvalidConfig)
		}
		if len(ex.Target) != targetDim {
			return nil, fmt.Errorf("inconsistent target width at example %d: expected %d, got %d: %w",
				i, targetDim, len(ex.Target), ErrInvalidConfig)
		}
		copy(flat.Inputs[i*inputDim:], ex.Input)
		copy(flat.Targets[i*targetDim:], ex.Target)
		flat.Tasks[i] = int32(ex.Task)
	}

	return flat, nil
}

// ToGomlxTensors converts the batch into gomlx tensors: inputs of shape
// [batch, inputDim], targets of shape [batch, targetDim], tasks of shape
// [batch].
func (b *BatchFlat) ToGomlxTensors() (inputs, targets, tasks *tensors.Tensor, err error) {
	// handle empty batch gracefully
	if b.BatchSize == 0 || b.InputDim == 0 || b.TargetDim == 0 {
		inputs = tensors.FromAnyValue(make([][]float32, 0))
		targets = tensors.FromAnyValue(make([][]float32, 0))
		tasks = tensors.FromAnyValue(make([]int32, 0))
		return inputs, targets, tasks, nil
	}

	// Reshape flat data into 2D slices
	ins := make([][]float32, b.BatchSize)
	tgts := make([][]float32, b.BatchSize)
	for i := range b.BatchSize {
		ins[i] = b.Inputs[i*b.InputDim : (i+1)*b.InputDim]
		tgts[i] = b.Targets[i*b.TargetDim : (i+1)*b.TargetDim]
	}

	inputs = tensors.FromAnyValue(ins)
	targets = tensors.FromAnyValue(tgts)
	tasks = tensors.FromAnyValue(b.Tasks)
	return inputs, targets, tasks, nil
}

// Tensors gathers a batch by index and converts it to gomlx tensors in one
// step.
func Tensors(src Dataset, indices []int) (inputs, targets, tasks *tensors.Tensor, err error) {
	examples, err := Batch(src, indices)
	if err != nil {
		return nil, nil, nil, err
	}
	flat, err := MakeBatchFlat(examples)
	if err != nil {
		return nil, nil, nil, err
	}
	return flat.ToGomlxTensors()
}
