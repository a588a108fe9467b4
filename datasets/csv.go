package datasets

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	cache "github.com/patrickmn/go-cache"
)

// defaultRowTTL is how long a cached CSV row stays valid.
const defaultRowTTL = 5 * time.Minute

// CSVConfig names the columns a CSVDataset reads. Names are matched
// case-insensitively against the header of the first matching file.
type CSVConfig struct {
	// InputCols are the feature columns, in the order their values appear
	// in Example.Input.
	InputCols []string

	// TargetCols are the target columns, in order.
	TargetCols []string

	// TaskCol optionally names an integer column holding the task label.
	// When empty every example carries task 0.
	TaskCol string
}

// CSVDataset lazily reads examples from CSV files matching a glob pattern.
// Only headers and row counts are read at construction; rows load on demand
// and recently read rows stay in a TTL cache, so repeated random access over
// the same region does not re-scan files.
//
// Files are taken in the glob's lexical order and a global index maps across
// them through cumulative row counts. All files must share the first file's
// header.
type CSVDataset struct {
	// Pattern used to find CSV files (e.g., "assets/splitmnist/*.csv").
	Pattern string

	cfg      CSVConfig
	csvPaths []string

	// Normalized header of the first file, used to verify the others.
	header []string

	// Column indices resolved from the header.
	inputIdx  []int
	targetIdx []int
	taskIdx   int // -1 when no task column is configured

	// Cache for counting rows in each file (file index -> row count)
	rowCounts map[int]int

	// Cumulative counts for fast index mapping
	cumCounts []int

	// Total number of examples across all files
	total int

	rows *cache.Cache
}

// NewCSVDataset creates a dataset over all CSV files matching pattern,
// reading the columns cfg names. Construction resolves columns and builds
// the cumulative row index; no example data is read until Example is called.
func NewCSVDataset(pattern string, cfg CSVConfig) (*CSVDataset, error) {
	if len(cfg.InputCols) == 0 || len(cfg.TargetCols) == 0 {
		return nil, fmt.Errorf("input and target columns must both be named: %w", ErrInvalidConfig)
	}

	csvPaths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to glob pattern %s: %w", pattern, err)
	}
	if len(csvPaths) == 0 {
		return nil, fmt.Errorf("no CSV files match pattern %s: %w", pattern, ErrInvalidConfig)
	}

	ds := &CSVDataset{
		Pattern:   pattern,
		cfg:       cfg,
		csvPaths:  csvPaths,
		taskIdx:   -1,
		rowCounts: make(map[int]int),
		rows:      cache.New(defaultRowTTL, defaultRowTTL),
	}

	// Read the first file to determine column structure
	if err := ds.initializeColumns(); err != nil {
		return nil, err
	}

	// Count rows in all files to build the index
	if err := ds.buildIndex(); err != nil {
		return nil, err
	}

	return ds, nil
}

// initializeColumns reads the first CSV header and resolves the configured
// column names to indices.
func (d *CSVDataset) initializeColumns() error {
	header, err := readCSVHeader(d.csvPaths[0])
	if err != nil {
		return fmt.Errorf("failed to read header of %s: %w", d.csvPaths[0], err)
	}
	d.header = header

	colIndex := make(map[string]int)
	for i, col := range header {
		colIndex[col] = i
	}

	resolve := func(names []string) ([]int, error) {
		out := make([]int, len(names))
		for i, name := range names {
			idx, ok := colIndex[normalizeCol(name)]
			if !ok {
				return nil, fmt.Errorf("column %q not found in CSV header: %w", name, ErrInvalidConfig)
			}
			out[i] = idx
		}
		return out, nil
	}

	if d.inputIdx, err = resolve(d.cfg.InputCols); err != nil {
		return err
	}
	if d.targetIdx, err = resolve(d.cfg.TargetCols); err != nil {
		return err
	}
	if d.cfg.TaskCol != "" {
		idx, err := resolve([]string{d.cfg.TaskCol})
		if err != nil {
			return err
		}
		d.taskIdx = idx[0]
	}

	return nil
}

// buildIndex counts rows in all files, verifies their headers agree with the
// first file, and builds cumulative counts.
func (d *CSVDataset) buildIndex() error {
	d.cumCounts = make([]int, len(d.csvPaths)+1)
	d.cumCounts[0] = 0

	for i, path := range d.csvPaths {
		if i > 0 {
			header, err := readCSVHeader(path)
			if err != nil {
				return fmt.Errorf("failed to read header of %s: %w", path, err)
			}
			if !equalHeaders(header, d.header) {
				return fmt.Errorf("header of %s differs from %s: %w",
					path, d.csvPaths[0], ErrInvalidConfig)
			}
		}
		count, err := countCSVRows(path)
		if err != nil {
			return fmt.Errorf("failed to count rows in %s: %w", path, err)
		}
		d.rowCounts[i] = count
		d.cumCounts[i+1] = d.cumCounts[i] + count
	}

	d.total = d.cumCounts[len(d.csvPaths)]
	return nil
}

func equalHeaders(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func normalizeCol(name string) string {
	return strings.TrimSpace(strings.ToLower(name))
}

// Len returns the total number of examples across all CSV files.
func (d *CSVDataset) Len() int {
	return d.total
}

// Example reads a single example by global index, consulting the row cache
// first.
func (d *CSVDataset) Example(i int) (Example, error) {
	if err := checkIndex(i, d.total); err != nil {
		return Example{}, err
	}

	fileIdx, rowIdx := d.mapGlobalIndex(i)
	record, err := d.readRow(fileIdx, rowIdx)
	if err != nil {
		return Example{}, err
	}
	return d.parseRecord(record)
}

// mapGlobalIndex maps a global index to (file index, row index within file)
// by binary search over the cumulative counts.
func (d *CSVDataset) mapGlobalIndex(i int) (fileIdx, rowIdx int) {
	k := sort.SearchInts(d.cumCounts, i+1) - 1
	return k, i - d.cumCounts[k]
}

// readRow returns one raw CSV record, caching it for subsequent reads.
func (d *CSVDataset) readRow(fileIdx, rowIdx int) ([]string, error) {
	key := rowCacheKey(fileIdx, rowIdx)
	if v, ok := d.rows.Get(key); ok {
		return v.([]string), nil
	}

	file, err := os.Open(d.csvPaths[fileIdx])
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	// Skip header
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	// Skip to the desired row
	for range rowIdx {
		if _, err := reader.Read(); err != nil {
			return nil, fmt.Errorf("failed to skip to row %d: %w", rowIdx, err)
		}
	}

	record, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read row %d: %w", rowIdx, err)
	}

	d.rows.Set(key, record, cache.DefaultExpiration)
	return record, nil
}

func rowCacheKey(fileIdx, rowIdx int) string {
	return strconv.Itoa(fileIdx) + "/" + strconv.Itoa(rowIdx)
}

// parseRecord converts one CSV record into an Example using the resolved
// column indices.
func (d *CSVDataset) parseRecord(record []string) (Example, error) {
	ex := Example{
		Input:  make([]float32, len(d.inputIdx)),
		Target: make([]float32, len(d.targetIdx)),
	}

	for i, col := range d.inputIdx {
		v, err := parseFloat32(record[col])
		if err != nil {
			return Example{}, fmt.Errorf("failed to parse %s: %w", d.cfg.InputCols[i], err)
		}
		ex.Input[i] = v
	}
	for i, col := range d.targetIdx {
		v, err := parseFloat32(record[col])
		if err != nil {
			return Example{}, fmt.Errorf("failed to parse %s: %w", d.cfg.TargetCols[i], err)
		}
		ex.Target[i] = v
	}
	if d.taskIdx >= 0 {
		v, err := parseFloat32(record[d.taskIdx])
		if err != nil {
			return Example{}, fmt.Errorf("failed to parse %s: %w", d.cfg.TaskCol, err)
		}
		ex.Task = int(v)
	}

	return ex, nil
}

// SetCacheTTL replaces the row cache with one using the given TTL; zero or
// negative restores the default. Call before sharing the dataset between
// goroutines, as it swaps the cache out.
func (d *CSVDataset) SetCacheTTL(ttl time.Duration) {
	if ttl <= 0 {
		ttl = defaultRowTTL
	}
	d.rows = cache.New(ttl, ttl)
}
