package datasets

import (
	"errors"
	"testing"
)

// toyDataset builds the ten-example in-memory dataset used across the view
// tests: inputs 50..59, targets 10..19, task 0 everywhere.
func toyDataset(t *testing.T) *TensorDataset {
	t.Helper()
	xs := make([]float32, 10)
	ys := make([]float32, 10)
	for i := range 10 {
		xs[i] = float32(50 + i)
		ys[i] = float32(10 + i)
	}
	ds, err := NewTensorDataset(Column(xs), Column(ys))
	if err != nil {
		t.Fatalf("NewTensorDataset failed: %v", err)
	}
	return ds
}

func TestSubset_ReorderAndRepeat(t *testing.T) {
	toy := toyDataset(t)

	sub, err := NewSubset(toy, []int{0, 5, 8, 2})
	if err != nil {
		t.Fatalf("NewSubset failed: %v", err)
	}
	if got := sub.Len(); got != 4 {
		t.Fatalf("expected len 4, got %d", got)
	}

	want := []struct{ in, tgt float32 }{{50, 10}, {55, 15}, {58, 18}, {52, 12}}
	for i, w := range want {
		ex, err := sub.Example(i)
		if err != nil {
			t.Fatalf("Example(%d) error: %v", i, err)
		}
		if ex.Input[0] != w.in || ex.Target[0] != w.tgt || ex.Task != 0 {
			t.Fatalf("Example(%d) = (%v, %v, %d), expected (%v, %v, 0)",
				i, ex.Input[0], ex.Target[0], ex.Task, w.in, w.tgt)
		}
	}

	// The same underlying index may appear any number of times.
	rep, err := NewSubset(toy, []int{3, 3, 3})
	if err != nil {
		t.Fatalf("NewSubset with repeats failed: %v", err)
	}
	for i := range 3 {
		ex, err := rep.Example(i)
		if err != nil {
			t.Fatalf("Example(%d) error: %v", i, err)
		}
		if ex.Input[0] != 53 {
			t.Fatalf("Example(%d) input = %v, expected 53", i, ex.Input[0])
		}
	}
}

func TestSubset_OutOfRangeFailsAtConstruction(t *testing.T) {
	toy := toyDataset(t)

	if _, err := NewSubset(toy, []int{0, 10}); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange for index 10, got %v", err)
	}
	if _, err := NewSubset(toy, []int{-1}); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange for index -1, got %v", err)
	}
}

func TestSubset_AccessOutOfRange(t *testing.T) {
	toy := toyDataset(t)

	sub, err := NewSubset(toy, []int{0, 5, 8, 2})
	if err != nil {
		t.Fatalf("NewSubset failed: %v", err)
	}
	if _, err := sub.Example(4); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange for Example(4), got %v", err)
	}
	if _, err := sub.Example(-1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange for Example(-1), got %v", err)
	}
}

func TestSubset_CopiesIndices(t *testing.T) {
	toy := toyDataset(t)

	indices := []int{1, 2, 3}
	sub, err := NewSubset(toy, indices)
	if err != nil {
		t.Fatalf("NewSubset failed: %v", err)
	}

	indices[0] = 9
	ex, err := sub.Example(0)
	if err != nil {
		t.Fatalf("Example(0) error: %v", err)
	}
	if ex.Input[0] != 51 {
		t.Fatalf("subset observed caller mutation: input = %v, expected 51", ex.Input[0])
	}
}

func TestSubset_Composes(t *testing.T) {
	toy := toyDataset(t)

	back, err := NewSubset(toy, []int{5, 6, 7, 8, 9})
	if err != nil {
		t.Fatalf("NewSubset failed: %v", err)
	}
	picked, err := NewSubset(back, []int{0, 2})
	if err != nil {
		t.Fatalf("NewSubset over subset failed: %v", err)
	}

	if picked.Len() != 2 {
		t.Fatalf("expected len 2, got %d", picked.Len())
	}
	ex0, err := picked.Example(0)
	if err != nil {
		t.Fatalf("Example(0) error: %v", err)
	}
	ex1, err := picked.Example(1)
	if err != nil {
		t.Fatalf("Example(1) error: %v", err)
	}
	if ex0.Input[0] != 55 || ex1.Input[0] != 57 {
		t.Fatalf("composed subset returned (%v, %v), expected (55, 57)", ex0.Input[0], ex1.Input[0])
	}

	// An index valid in the outer view's terms but not the inner one's still
	// fails at construction.
	if _, err := NewSubset(back, []int{5}); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestNewShuffled_Permutation(t *testing.T) {
	toy := toyDataset(t)

	shuf, err := NewShuffled(toy, 42)
	if err != nil {
		t.Fatalf("NewShuffled failed: %v", err)
	}
	if shuf.Len() != toy.Len() {
		t.Fatalf("expected len %d, got %d", toy.Len(), shuf.Len())
	}

	seen := make(map[float32]int)
	for i := range shuf.Len() {
		ex, err := shuf.Example(i)
		if err != nil {
			t.Fatalf("Example(%d) error: %v", i, err)
		}
		seen[ex.Input[0]]++
	}
	for v := float32(50); v < 60; v++ {
		if seen[v] != 1 {
			t.Fatalf("value %v appears %d times after shuffle, expected once", v, seen[v])
		}
	}

	// The source keeps its original order.
	ex, err := toy.Example(0)
	if err != nil {
		t.Fatalf("Example(0) error: %v", err)
	}
	if ex.Input[0] != 50 {
		t.Fatalf("shuffle mutated the source: input = %v, expected 50", ex.Input[0])
	}
}

func TestRandomSplit_Partitions(t *testing.T) {
	toy := toyDataset(t)

	train, eval, err := RandomSplit(toy, 0.3, 7)
	if err != nil {
		t.Fatalf("RandomSplit failed: %v", err)
	}
	if train.Len() != 3 || eval.Len() != 7 {
		t.Fatalf("expected split 3/7, got %d/%d", train.Len(), eval.Len())
	}

	seen := make(map[int]bool)
	for _, idx := range append(train.Indices(), eval.Indices()...) {
		if seen[idx] {
			t.Fatalf("index %d appears in both splits", idx)
		}
		seen[idx] = true
	}
	if len(seen) != 10 {
		t.Fatalf("splits cover %d indices, expected 10", len(seen))
	}
}

func TestRandomSplit_BadFraction(t *testing.T) {
	toy := toyDataset(t)

	if _, _, err := RandomSplit(toy, 1.5, 7); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for frac 1.5, got %v", err)
	}
	if _, _, err := RandomSplit(toy, -0.1, 7); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for frac -0.1, got %v", err)
	}
}
