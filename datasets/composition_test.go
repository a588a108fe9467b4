package datasets_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/ricklentz/avalanche/datasets"
)

// writeCSV writes a CSV file with the given header and rows to path.
func writeCSV(t *testing.T, path, header string, rows []string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create csv %s: %v", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(header + "\n"); err != nil {
		t.Fatalf("failed to write header: %v", err)
	}
	for _, r := range rows {
		if _, err := f.WriteString(r + "\n"); err != nil {
			t.Fatalf("failed to write row: %v", err)
		}
	}
}

// TestTaskStreamFromCSV walks the whole pipeline: a CSV source labeled from
// its target column, split into per-task subsets, concatenated back into a
// task-ordered stream and iterated in batches.
func TestTaskStreamFromCSV(t *testing.T) {
	tmp := t.TempDir()

	file := filepath.Join(tmp, "digits.csv")
	rows := []string{
		"0,0",
		"2,1",
		"4,0",
		"6,1",
		"8,0",
		"10,1",
	}
	writeCSV(t, file, "x,label", rows)

	src, err := datasets.NewCSVDataset(file, datasets.CSVConfig{
		InputCols:  []string{"x"},
		TargetCols: []string{"label"},
	})
	if err != nil {
		t.Fatalf("NewCSVDataset failed: %v", err)
	}

	labeled, err := datasets.NewTaskDataset(src, datasets.TaskFromTarget(0))
	if err != nil {
		t.Fatalf("NewTaskDataset failed: %v", err)
	}

	groups, err := datasets.ByTask(labeled)
	if err != nil {
		t.Fatalf("ByTask failed: %v", err)
	}
	if len(groups) != 2 || groups[0].Len() != 3 || groups[1].Len() != 3 {
		t.Fatalf("unexpected grouping: %v", groups)
	}

	// Task 0 first, then task 1.
	stream, err := datasets.NewConcat(groups[0], groups[1])
	if err != nil {
		t.Fatalf("NewConcat failed: %v", err)
	}
	if stream.Len() != 6 {
		t.Fatalf("expected stream length 6, got %d", stream.Len())
	}

	// Index 2 is the last task-0 example (x=8), index 3 the first task-1
	// example (x=2).
	ex2, err := stream.Example(2)
	if err != nil {
		t.Fatalf("Example(2) error: %v", err)
	}
	if ex2.Input[0] != 8 || ex2.Task != 0 {
		t.Fatalf("Example(2) = (%v, task %d), expected (8, task 0)", ex2.Input[0], ex2.Task)
	}
	ex3, err := stream.Example(3)
	if err != nil {
		t.Fatalf("Example(3) error: %v", err)
	}
	if ex3.Input[0] != 2 || ex3.Task != 1 {
		t.Fatalf("Example(3) = (%v, task %d), expected (2, task 1)", ex3.Input[0], ex3.Task)
	}

	counts, err := datasets.TaskCounts(stream)
	if err != nil {
		t.Fatalf("TaskCounts failed: %v", err)
	}
	if counts[0] != 3 || counts[1] != 3 {
		t.Fatalf("unexpected task counts: %v", counts)
	}

	// Two batches of three, then the epoch ends.
	loader, err := datasets.NewLoader(stream, 3, false, 0)
	if err != nil {
		t.Fatalf("NewLoader failed: %v", err)
	}
	for batch := range loader.Batches() {
		_, inputs, labels, err := loader.Yield()
		if err != nil {
			t.Fatalf("Yield %d error: %v", batch, err)
		}
		if len(inputs) != 1 || len(labels) != 2 {
			t.Fatalf("Yield %d returned %d input and %d label tensors", batch, len(inputs), len(labels))
		}
	}
	if _, _, _, err := loader.Yield(); err != io.EOF {
		t.Fatalf("expected io.EOF after the last batch, got %v", err)
	}
}

// TestMaterializedStreamMatchesLazy checks that materializing the composed
// stream preserves every example.
func TestMaterializedStreamMatchesLazy(t *testing.T) {
	tmp := t.TempDir()

	file := filepath.Join(tmp, "digits.csv")
	writeCSV(t, file, "x,label", []string{"1,10", "2,20", "3,30", "4,40"})

	src, err := datasets.NewCSVDataset(file, datasets.CSVConfig{
		InputCols:  []string{"x"},
		TargetCols: []string{"label"},
	})
	if err != nil {
		t.Fatalf("NewCSVDataset failed: %v", err)
	}

	// Reverse the source through a subset before materializing.
	view, err := datasets.NewSubset(src, []int{3, 2, 1, 0})
	if err != nil {
		t.Fatalf("NewSubset failed: %v", err)
	}

	eager, err := datasets.Materialize(view, 2)
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}
	if eager.Len() != view.Len() {
		t.Fatalf("expected len %d, got %d", view.Len(), eager.Len())
	}
	for i := range eager.Len() {
		want, err := view.Example(i)
		if err != nil {
			t.Fatalf("lazy Example(%d) error: %v", i, err)
		}
		got, err := eager.Example(i)
		if err != nil {
			t.Fatalf("eager Example(%d) error: %v", i, err)
		}
		if got.Input[0] != want.Input[0] || got.Target[0] != want.Target[0] || got.Task != want.Task {
			t.Fatalf("example %d diverged: lazy=%+v eager=%+v", i, want, got)
		}
	}
}
