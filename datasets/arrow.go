package datasets

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

// ArrowConfig names the record columns an ArrowDataset reads.
type ArrowConfig struct {
	// InputCols are the feature columns, in the order their values appear
	// in Example.Input.
	InputCols []string

	// TargetCols are the target columns, in order.
	TargetCols []string

	// TaskCol optionally names an integer column holding the task label.
	TaskCol string
}

// ArrowDataset adapts one Arrow record batch. Column names resolve against
// the record's schema at construction, and rows are read in place afterwards
// with no copying of column memory. Columns of type float64, float32, int64
// and int32 are accepted.
//
// The dataset retains the record; Close releases that reference.
type ArrowDataset struct {
	rec       arrow.Record
	inputIdx  []int
	targetIdx []int
	taskIdx   int // -1 when no task column is configured
	n         int
}

// NewArrowDataset resolves cfg's column names against rec's schema and
// validates the column types. The caller keeps its own reference to rec.
func NewArrowDataset(rec arrow.Record, cfg ArrowConfig) (*ArrowDataset, error) {
	if rec == nil {
		return nil, fmt.Errorf("nil record: %w", ErrInvalidConfig)
	}
	if len(cfg.InputCols) == 0 || len(cfg.TargetCols) == 0 {
		return nil, fmt.Errorf("input and target columns must both be named: %w", ErrInvalidConfig)
	}

	ds := &ArrowDataset{rec: rec, taskIdx: -1, n: int(rec.NumRows())}

	resolve := func(name string) (int, error) {
		indices := rec.Schema().FieldIndices(name)
		if len(indices) == 0 {
			return 0, fmt.Errorf("column %q not found in schema: %w", name, ErrInvalidConfig)
		}
		idx := indices[0]
		switch rec.Column(idx).(type) {
		case *array.Float64, *array.Float32, *array.Int64, *array.Int32:
			return idx, nil
		default:
			return 0, fmt.Errorf("column %q has unsupported type %s: %w",
				name, rec.Schema().Field(idx).Type, ErrInvalidConfig)
		}
	}

	for _, name := range cfg.InputCols {
		idx, err := resolve(name)
		if err != nil {
			return nil, err
		}
		ds.inputIdx = append(ds.inputIdx, idx)
	}
	for _, name := range cfg.TargetCols {
		idx, err := resolve(name)
		if err != nil {
			return nil, err
		}
		ds.targetIdx = append(ds.targetIdx, idx)
	}
	if cfg.TaskCol != "" {
		idx, err := resolve(cfg.TaskCol)
		if err != nil {
			return nil, err
		}
		ds.taskIdx = idx
	}

	rec.Retain()
	return ds, nil
}

// Len returns the record's row count.
func (d *ArrowDataset) Len() int { return d.n }

// Example reads row i across the configured columns.
func (d *ArrowDataset) Example(i int) (Example, error) {
	if err := checkIndex(i, d.n); err != nil {
		return Example{}, err
	}

	ex := Example{
		Input:  make([]float32, len(d.inputIdx)),
		Target: make([]float32, len(d.targetIdx)),
	}
	for k, col := range d.inputIdx {
		ex.Input[k] = d.cellFloat(col, i)
	}
	for k, col := range d.targetIdx {
		ex.Target[k] = d.cellFloat(col, i)
	}
	if d.taskIdx >= 0 {
		ex.Task = int(d.cellFloat(d.taskIdx, i))
	}
	return ex, nil
}

// cellFloat reads one numeric cell. Column types were validated at
// construction, so the switch covers every case that can occur.
func (d *ArrowDataset) cellFloat(col, row int) float32 {
	switch c := d.rec.Column(col).(type) {
	case *array.Float64:
		return float32(c.Value(row))
	case *array.Float32:
		return c.Value(row)
	case *array.Int64:
		return float32(c.Value(row))
	case *array.Int32:
		return float32(c.Value(row))
	}
	return 0
}

// Close releases the dataset's reference to the record.
func (d *ArrowDataset) Close() {
	d.rec.Release()
}
