package datasets

import (
	"fmt"
	"runtime"
	"sync"
)

// Materialize copies src into an in-memory TensorDataset using a pool of
// workers. Order is preserved: example i of the result equals example i of
// src. workers <= 0 uses one worker per CPU.
//
// Use it when a lazy source (CSV, Redis) will be read many times and fits in
// memory.
func Materialize(src Dataset, workers int) (*TensorDataset, error) {
	if src == nil {
		return nil, fmt.Errorf("nil source dataset: %w", ErrInvalidConfig)
	}

	n := src.Len()
	// allocate containers up front so workers can safely write distinct slots.
	inputs := make([][]float32, n)
	targets := make([][]float32, n)
	taskList := make([]int, n)

	if n == 0 {
		return &TensorDataset{inputs: inputs, targets: targets, tasks: taskList}, nil
	}

	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers <= 0 {
		workers = 1
	}
	if workers > n {
		workers = n
	}

	jobs := make(chan int, n)
	errCh := make(chan error, workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				ex, err := src.Example(i)
				if err != nil {
					// report error and exit worker
					errCh <- fmt.Errorf("read example %d: %w", i, err)
					return
				}
				inputs[i] = ex.Input
				targets[i] = ex.Target
				taskList[i] = ex.Task
			}
		}()
	}

	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	close(errCh)

	// If any worker reported an error, return the first one.
	if err := <-errCh; err != nil {
		return nil, err
	}

	return &TensorDataset{inputs: inputs, targets: targets, tasks: taskList}, nil
}
