package main

// Example command that demonstrates composing dataset views: two in-memory
// experiences get task labels, are concatenated into one stream, subset and
// counted, and finally converted into gomlx tensors and iterated in batches.
//
// Everything here runs on synthetic in-memory data, so the example needs no
// files on disk.
//
// Usage:
//   go run ./datasets/example

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/ricklentz/avalanche/datasets"
)

func main() {
	// Two small experiences: inputs 50..54 with targets 10..14, and inputs
	// 60..64 with targets 20..24.
	expA, err := datasets.NewTensorDataset(
		datasets.Column([]float32{50, 51, 52, 53, 54}),
		datasets.Column([]float32{10, 11, 12, 13, 14}),
	)
	if err != nil {
		log.Fatalf("failed to build experience A: %v", err)
	}
	expB, err := datasets.NewTensorDataset(
		datasets.Column([]float32{60, 61, 62, 63, 64}),
		datasets.Column([]float32{20, 21, 22, 23, 24}),
	)
	if err != nil {
		log.Fatalf("failed to build experience B: %v", err)
	}

	// Label each experience with its own task id.
	taskA, err := datasets.NewTaskDataset(expA, datasets.ConstTask(0))
	if err != nil {
		log.Fatalf("failed to label experience A: %v", err)
	}
	taskB, err := datasets.NewTaskDataset(expB, datasets.ConstTask(1))
	if err != nil {
		log.Fatalf("failed to label experience B: %v", err)
	}

	// Concatenate into one continual stream.
	stream, err := datasets.NewConcat(taskA, taskB)
	if err != nil {
		log.Fatalf("failed to concatenate experiences: %v", err)
	}
	fmt.Printf("Stream length: %d examples across 2 tasks\n", stream.Len())

	counts, err := datasets.TaskCounts(stream)
	if err != nil {
		log.Fatalf("failed to count tasks: %v", err)
	}
	fmt.Printf("Examples per task: %v\n", counts)

	// A subset view re-orders and repeats examples without copying them.
	sub, err := datasets.NewSubset(stream, []int{0, 5, 8, 2})
	if err != nil {
		log.Fatalf("failed to build subset: %v", err)
	}
	fmt.Printf("Subset of %d examples:\n", sub.Len())
	for i := range sub.Len() {
		ex, err := sub.Example(i)
		if err != nil {
			log.Fatalf("failed to read subset example %d: %v", i, err)
		}
		fmt.Printf("  input=%v target=%v task=%d\n", ex.Input, ex.Target, ex.Task)
	}

	// Prepare a small batch (first N examples of the stream).
	n := min(8, stream.Len())
	indices := make([]int, n)
	for i := range n {
		indices[i] = i
	}

	fmt.Printf("Loading batch of %d examples...\n", n)
	examples, err := datasets.Batch(stream, indices)
	if err != nil {
		log.Fatalf("failed to build batch: %v", err)
	}

	// Convert to flat contiguous buffers and then to gomlx tensors.
	flat, err := datasets.MakeBatchFlat(examples)
	if err != nil {
		log.Fatalf("failed to flatten batch: %v", err)
	}
	inT, tgtT, taskT, err := flat.ToGomlxTensors()
	if err != nil {
		log.Fatalf("failed to convert batch to gomlx tensors: %v", err)
	}

	// We don't depend on any particular tensor API here; just show we have tensors.
	fmt.Printf("Created tensors: input=%T target=%T task=%T\n", inT, tgtT, taskT)
	fmt.Printf("  Input shape: [%d, %d]\n", flat.BatchSize, flat.InputDim)
	fmt.Printf("  Target shape: [%d, %d]\n", flat.BatchSize, flat.TargetDim)

	// Iterate the stream the way a training loop would.
	loader, err := datasets.NewLoader(stream, 4, true, 42)
	if err != nil {
		log.Fatalf("failed to build loader: %v", err)
	}
	loader.SetName("demo")

	batches := 0
	for {
		_, _, _, err := loader.Yield()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Fatalf("failed to yield batch: %v", err)
		}
		batches++
	}
	fmt.Printf("Loader %q yielded %d shuffled batches in one epoch\n", loader.Name(), batches)

	fmt.Println("\nExample completed successfully!")
}
