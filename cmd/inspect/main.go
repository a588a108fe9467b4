package main

// inspect summarizes the task structure of a dataset: how many examples each
// task holds, how a random train/eval split distributes them, and optionally
// a bar chart of the task distribution.
//
// The dataset comes from CSV files via -data, with column names configured
// through -input-cols/-target-cols/-task-col; without -data a small built-in
// demo dataset is used. Flags can also be loaded from a YAML file with
// -config; explicit CLI flags always override config values.
//
// Usage:
//   go run ./cmd/inspect -data 'assets/*.csv' -input-cols x,y -target-cols label -task-col task
//   go run ./cmd/inspect -config inspect.yaml
//   go run ./cmd/inspect -out-csv output/tasks.csv

import (
	"encoding/csv"
	"flag"
	"fmt"
	"image/color"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gopkg.in/yaml.v3"

	"github.com/ricklentz/avalanche/datasets"
)

// fileConfig mirrors the CLI flags for YAML configuration. Pointer fields
// distinguish absent keys from zero values.
type fileConfig struct {
	Data        *string  `yaml:"data"`
	InputCols   []string `yaml:"input_cols"`
	TargetCols  []string `yaml:"target_cols"`
	TaskCol     *string  `yaml:"task_col"`
	Task        *int     `yaml:"task"`
	TaskList    *string  `yaml:"task_list"`
	TrainFrac   *float64 `yaml:"train_frac"`
	Seed        *int64   `yaml:"seed"`
	Out         *string  `yaml:"out"`
	OutCSV      *string  `yaml:"out_csv"`
	CacheTTL    *string  `yaml:"cache_ttl"`
	Materialize *bool    `yaml:"materialize"`
	Workers     *int     `yaml:"workers"`
}

func main() {
	dataFlag := flag.String("data", "", "glob pattern for CSV files; empty runs on a built-in demo dataset")
	inputColsFlag := flag.String("input-cols", "x,y", "comma-separated feature columns for -data")
	targetColsFlag := flag.String("target-cols", "label", "comma-separated target columns for -data")
	taskColFlag := flag.String("task-col", "", "name of an integer CSV column holding the task label")
	taskFlag := flag.Int("task", -1, "constant task label applied to every example (-1 = keep existing labels)")
	taskListFlag := flag.String("task-list", "", "path to a whitespace-separated per-example task list")
	trainFrac := flag.Float64("train-frac", 0.8, "fraction of examples in the training split")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed for the train/eval split")
	outDir := flag.String("out", "plots", "output directory for generated plots")
	outCSV := flag.String("out-csv", "", "if set, write the task summary CSV to this path and skip plotting")
	configPath := flag.String("config", "", "path to a YAML config file; explicit CLI flags always override config values")
	cacheTTL := flag.Duration("cache-ttl", 5*time.Minute, "TTL for cached CSV rows (e.g., 5m)")
	materialize := flag.Bool("materialize", false, "read the whole dataset into memory before inspecting")
	workers := flag.Int("workers", 0, "worker count for -materialize (0 = NumCPU)")
	flag.Parse()

	// Track which flags the user passed explicitly so config values never
	// override them.
	explicit := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	if *configPath != "" {
		data, err := os.ReadFile(*configPath)
		if err != nil {
			log.Fatalf("failed to read config %s: %v", *configPath, err)
		}
		var fc fileConfig
		if err := yaml.Unmarshal(data, &fc); err != nil {
			log.Fatalf("failed to parse config %s: %v", *configPath, err)
		}

		if fc.Data != nil && !explicit["data"] {
			*dataFlag = *fc.Data
		}
		if len(fc.InputCols) > 0 && !explicit["input-cols"] {
			*inputColsFlag = strings.Join(fc.InputCols, ",")
		}
		if len(fc.TargetCols) > 0 && !explicit["target-cols"] {
			*targetColsFlag = strings.Join(fc.TargetCols, ",")
		}
		if fc.TaskCol != nil && !explicit["task-col"] {
			*taskColFlag = *fc.TaskCol
		}
		if fc.Task != nil && !explicit["task"] {
			*taskFlag = *fc.Task
		}
		if fc.TaskList != nil && !explicit["task-list"] {
			*taskListFlag = *fc.TaskList
		}
		if fc.TrainFrac != nil && !explicit["train-frac"] {
			*trainFrac = *fc.TrainFrac
		}
		if fc.Seed != nil && !explicit["seed"] {
			*seed = *fc.Seed
		}
		if fc.Out != nil && !explicit["out"] {
			*outDir = *fc.Out
		}
		if fc.OutCSV != nil && !explicit["out-csv"] {
			*outCSV = *fc.OutCSV
		}
		if fc.CacheTTL != nil && !explicit["cache-ttl"] {
			d, err := time.ParseDuration(*fc.CacheTTL)
			if err != nil {
				log.Fatalf("invalid cache_ttl in %s: %v", *configPath, err)
			}
			*cacheTTL = d
		}
		if fc.Materialize != nil && !explicit["materialize"] {
			*materialize = *fc.Materialize
		}
		if fc.Workers != nil && !explicit["workers"] {
			*workers = *fc.Workers
		}
		log.Printf("Loaded config from %s", *configPath)
	}

	// Build the source dataset.
	var ds datasets.Dataset
	if *dataFlag == "" {
		log.Printf("No -data pattern given; using built-in demo dataset")
		ds = demoDataset()
	} else {
		globPaths, _ := filepath.Glob(*dataFlag)
		log.Printf("Using CSV pattern: %s (found %d files)", *dataFlag, len(globPaths))
		csvDS, err := datasets.NewCSVDataset(*dataFlag, datasets.CSVConfig{
			InputCols:  splitCols(*inputColsFlag),
			TargetCols: splitCols(*targetColsFlag),
			TaskCol:    *taskColFlag,
		})
		if err != nil {
			log.Fatalf("failed to open CSV dataset: %v", err)
		}
		csvDS.SetCacheTTL(*cacheTTL)
		ds = csvDS
	}
	log.Printf("Dataset loaded: total examples=%d", ds.Len())

	// Apply task labeling overrides. A task list takes precedence over a
	// constant label.
	switch {
	case *taskListFlag != "":
		list, err := readTaskList(*taskListFlag)
		if err != nil {
			log.Fatalf("failed to read task list %s: %v", *taskListFlag, err)
		}
		labeled, err := datasets.NewTaskDataset(ds, datasets.TaskList(list))
		if err != nil {
			log.Fatalf("failed to apply task list: %v", err)
		}
		ds = labeled
	case *taskFlag >= 0:
		labeled, err := datasets.NewTaskDataset(ds, datasets.ConstTask(*taskFlag))
		if err != nil {
			log.Fatalf("failed to apply task label: %v", err)
		}
		ds = labeled
	}

	if *materialize {
		start := time.Now()
		eager, err := datasets.Materialize(ds, *workers)
		if err != nil {
			log.Fatalf("failed to materialize dataset: %v", err)
		}
		log.Printf("Materialized %d examples in %v", eager.Len(), time.Since(start))
		ds = eager
	}

	counts, err := datasets.TaskCounts(ds)
	if err != nil {
		log.Fatalf("failed to count tasks: %v", err)
	}
	log.Printf("Found %d distinct tasks", len(counts))
	for _, task := range sortedTasks(counts) {
		log.Printf("  task %d: %d examples", task, counts[task])
	}

	trainSet, evalSet, err := datasets.RandomSplit(ds, *trainFrac, *seed)
	if err != nil {
		log.Fatalf("failed to split dataset: %v", err)
	}
	log.Printf("Split: train=%d eval=%d (frac=%.2f)", trainSet.Len(), evalSet.Len(), *trainFrac)

	trainCounts, err := datasets.TaskCounts(trainSet)
	if err != nil {
		log.Fatalf("failed to count train tasks: %v", err)
	}
	evalCounts, err := datasets.TaskCounts(evalSet)
	if err != nil {
		log.Fatalf("failed to count eval tasks: %v", err)
	}

	if *outCSV != "" {
		if err := writeSummaryCSV(*outCSV, counts, trainCounts, evalCounts); err != nil {
			log.Fatalf("failed to write summary CSV %s: %v", *outCSV, err)
		}
		log.Printf("Task summary written to %s", *outCSV)
	} else {
		if err := plotTaskCounts(*outDir, counts); err != nil {
			log.Fatalf("failed to generate plot: %v", err)
		}
		log.Printf("Task distribution plot written to %s", *outDir)
	}
}

// demoDataset builds three labeled experiences (40, 30 and 30 examples for
// tasks 0, 1 and 2) concatenated into one stream.
func demoDataset() datasets.Dataset {
	sizes := []int{40, 30, 30}
	parts := make([]datasets.Dataset, 0, len(sizes))
	base := float32(0)
	for task, n := range sizes {
		xs := make([]float32, n)
		ys := make([]float32, n)
		for i := range n {
			xs[i] = base + float32(i)
			ys[i] = float32(task*100 + i)
		}
		part, err := datasets.NewTensorDataset(datasets.Column(xs), datasets.Column(ys))
		if err != nil {
			log.Fatalf("failed to build demo dataset: %v", err)
		}
		labeled, err := datasets.NewTaskDataset(part, datasets.ConstTask(task))
		if err != nil {
			log.Fatalf("failed to label demo dataset: %v", err)
		}
		parts = append(parts, labeled)
		base += float32(n)
	}
	stream, err := datasets.NewConcat(parts...)
	if err != nil {
		log.Fatalf("failed to build demo dataset: %v", err)
	}
	return stream
}

// splitCols splits a comma-separated column list, dropping empty entries.
func splitCols(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// readTaskList reads whitespace-separated integer task labels from path.
func readTaskList(path string) ([]int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	fields := strings.Fields(string(data))
	out := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("task %d (%q): %w", i, f, err)
		}
		out[i] = v
	}
	return out, nil
}

func sortedTasks(counts map[int]int) []int {
	tasks := make([]int, 0, len(counts))
	for task := range counts {
		tasks = append(tasks, task)
	}
	sort.Ints(tasks)
	return tasks
}

// writeSummaryCSV writes one row per task: total count, share of the whole
// dataset, and the train/eval split counts.
func writeSummaryCSV(path string, total, train, eval map[int]int) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"task", "count", "share", "train_count", "eval_count"}); err != nil {
		return err
	}

	sum := 0
	for _, c := range total {
		sum += c
	}
	for _, task := range sortedTasks(total) {
		share := 0.0
		if sum > 0 {
			share = float64(total[task]) / float64(sum)
		}
		row := []string{
			strconv.Itoa(task),
			strconv.Itoa(total[task]),
			strconv.FormatFloat(share, 'f', 4, 64),
			strconv.Itoa(train[task]),
			strconv.Itoa(eval[task]),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// plotTaskCounts writes a PNG bar chart of examples per task.
func plotTaskCounts(outDir string, counts map[int]int) error {
	p := plot.New()
	p.Title.Text = "Examples per task"
	p.Y.Label.Text = "examples"

	tasks := sortedTasks(counts)
	values := make(plotter.Values, len(tasks))
	labels := make([]string, len(tasks))
	for i, task := range tasks {
		values[i] = float64(counts[task])
		labels[i] = strconv.Itoa(task)
	}

	bars, err := plotter.NewBarChart(values, vg.Points(24))
	if err != nil {
		return err
	}
	bars.Color = color.RGBA{R: 20, G: 80, B: 200, A: 220}
	p.Add(bars)
	p.NominalX(labels...)

	if err := ensureDir(outDir); err != nil {
		return err
	}
	outPath := filepath.Join(outDir, "task_counts.png")
	return p.Save(8*vg.Inch, 6*vg.Inch, outPath)
}

func ensureDir(path string) error {
	// Attempt to create directory if it doesn't exist (silently succeed if present).
	if path == "" {
		return nil
	}
	return os.MkdirAll(path, 0755)
}
