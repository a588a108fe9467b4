package datasets

import "fmt"

// TaskLabeler chooses the task label attached to each example of a
// TaskDataset. Implementations must be pure: the same (i, ex) pair always
// yields the same label.
type TaskLabeler interface {
	TaskFor(i int, ex Example) int
}

// ConstTask labels every example with the same task.
type ConstTask int

func (c ConstTask) TaskFor(int, Example) int { return int(c) }

// TaskList labels example i with entry i. Its length must equal the wrapped
// dataset's length; NewTaskDataset enforces this.
type TaskList []int

func (l TaskList) TaskFor(i int, _ Example) int { return l[i] }

// TaskFunc derives the label from the index and the example itself.
type TaskFunc func(i int, ex Example) int

func (f TaskFunc) TaskFor(i int, ex Example) int { return f(i, ex) }

// TaskFromTarget returns a labeler that reads the task from target component
// idx, truncated toward zero. Components outside the target vector label as
// task 0.
func TaskFromTarget(idx int) TaskFunc {
	return func(_ int, ex Example) int {
		if idx < 0 || idx >= len(ex.Target) {
			return 0
		}
		return int(ex.Target[idx])
	}
}

// TaskDataset wraps a dataset and overrides the task label on every example.
// It has the same length as the wrapped dataset and reads through on demand,
// so the underlying data is never copied.
type TaskDataset struct {
	src     Dataset
	labeler TaskLabeler
}

// NewTaskDataset decorates src with labels from labeler. A nil labeler
// labels every example with task 0. A TaskList whose length differs from
// src.Len() fails here rather than on a later read.
func NewTaskDataset(src Dataset, labeler TaskLabeler) (*TaskDataset, error) {
	if src == nil {
		return nil, fmt.Errorf("nil source dataset: %w", ErrInvalidConfig)
	}
	if labeler == nil {
		labeler = ConstTask(0)
	}
	if l, ok := labeler.(TaskList); ok && len(l) != src.Len() {
		return nil, fmt.Errorf("task list has %d entries for %d examples: %w",
			len(l), src.Len(), ErrInvalidConfig)
	}
	return &TaskDataset{src: src, labeler: labeler}, nil
}

// Len returns the wrapped dataset's length.
func (t *TaskDataset) Len() int { return t.src.Len() }

// Example returns the wrapped example with its task label replaced.
func (t *TaskDataset) Example(i int) (Example, error) {
	ex, err := t.src.Example(i)
	if err != nil {
		return Example{}, err
	}
	ex.Task = t.labeler.TaskFor(i, ex)
	return ex, nil
}

// TaskCounts reads src once and returns the number of examples per task.
func TaskCounts(src Dataset) (map[int]int, error) {
	counts := make(map[int]int)
	for i := range src.Len() {
		ex, err := src.Example(i)
		if err != nil {
			return nil, fmt.Errorf("read example %d: %w", i, err)
		}
		counts[ex.Task]++
	}
	return counts, nil
}

// ByTask groups src's indices by task label and returns one subset view per
// task. The subsets preserve source order and share src without copying any
// example data.
func ByTask(src Dataset) (map[int]*SubsetDataset, error) {
	groups := make(map[int][]int)
	for i := range src.Len() {
		ex, err := src.Example(i)
		if err != nil {
			return nil, fmt.Errorf("read example %d: %w", i, err)
		}
		groups[ex.Task] = append(groups[ex.Task], i)
	}

	out := make(map[int]*SubsetDataset, len(groups))
	for task, indices := range groups {
		sub, err := NewSubset(src, indices)
		if err != nil {
			return nil, err
		}
		out[task] = sub
	}
	return out, nil
}
