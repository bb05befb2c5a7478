package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"
	"unsafe"

	"github.com/orizon-lang/udalloc/internal/allocator"
)

func main() {
	var (
		iterations = flag.Int("iterations", 100000, "number of alloc/free operations to run")
		minSize    = flag.Int("min-size", 16, "minimum request size in bytes")
		maxSize    = flag.Int("max-size", 4096, "maximum request size in bytes")
		largeMix   = flag.Float64("large-fraction", 0.01, "fraction of requests routed above the large-heap threshold")
		seed       = flag.Int64("seed", 1, "PRNG seed")
		jsonOutput = flag.Bool("json", false, "emit the report as JSON")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Drives udalloc's allocator with a synthetic alloc/free/realloc workload\n")
		fmt.Fprintf(os.Stderr, "and reports the five introspection counters at the end of the run.\n\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	bench := &Benchmark{
		Iterations: *iterations,
		MinSize:    *minSize,
		MaxSize:    *maxSize,
		LargeMix:   *largeMix,
		Seed:       *seed,
	}

	report := bench.Run()

	if *jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		if err := enc.Encode(report); err != nil {
			fmt.Fprintf(os.Stderr, "encode report: %v\n", err)
			os.Exit(1)
		}

		return
	}

	report.Print(os.Stdout)
}

// Benchmark drives a single *allocator.Allocator through a mixed
// workload of allocations, frees, and reallocations at random sizes,
// occasionally crossing the large-heap threshold.
type Benchmark struct {
	Iterations int
	MinSize    int
	MaxSize    int
	LargeMix   float64
	Seed       int64
}

// Report summarizes one Benchmark run.
type Report struct {
	Iterations        int           `json:"iterations"`
	Elapsed           time.Duration `json:"elapsed_ns"`
	NumFreeBlocks     uintptr       `json:"num_free_blocks"`
	NumFreeBytes      uintptr       `json:"num_free_bytes"`
	NumAllocatedBloc  uintptr       `json:"num_allocated_blocks"`
	NumAllocatedBytes uintptr       `json:"num_allocated_bytes"`
	NumMetaDataBytes  uintptr       `json:"num_meta_data_bytes"`
	MetaDataSize      uintptr       `json:"meta_data_size"`
}

// Print writes a human-readable report.
func (r Report) Print(w *os.File) {
	fmt.Fprintf(w, "udalloc benchmark\n")
	fmt.Fprintf(w, "  iterations:            %d\n", r.Iterations)
	fmt.Fprintf(w, "  elapsed:               %s\n", r.Elapsed)
	fmt.Fprintf(w, "  meta_data_size:        %d\n", r.MetaDataSize)
	fmt.Fprintf(w, "  num_free_blocks:       %d\n", r.NumFreeBlocks)
	fmt.Fprintf(w, "  num_free_bytes:        %d\n", r.NumFreeBytes)
	fmt.Fprintf(w, "  num_allocated_blocks:  %d\n", r.NumAllocatedBloc)
	fmt.Fprintf(w, "  num_allocated_bytes:   %d\n", r.NumAllocatedBytes)
	fmt.Fprintf(w, "  num_meta_data_bytes:   %d\n", r.NumMetaDataBytes)
}

// Run executes the workload against a freshly constructed allocator and
// returns the final counter snapshot.
func (b *Benchmark) Run() Report {
	a, err := allocator.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "construct allocator: %v\n", err)
		os.Exit(1)
	}

	rng := rand.New(rand.NewSource(b.Seed))

	live := make([]unsafe.Pointer, 0, b.Iterations/4)
	sizes := make([]uintptr, 0, b.Iterations/4)

	start := time.Now()

	for i := 0; i < b.Iterations; i++ {
		switch {
		case len(live) > 0 && rng.Float64() < 0.35:
			idx := rng.Intn(len(live))
			a.Free(live[idx])
			live[idx] = live[len(live)-1]
			sizes[idx] = sizes[len(sizes)-1]
			live = live[:len(live)-1]
			sizes = sizes[:len(sizes)-1]

		case len(live) > 0 && rng.Float64() < 0.20:
			idx := rng.Intn(len(live))
			newSize := randomSize(rng, b.MinSize, b.MaxSize, b.LargeMix)

			p := a.Realloc(live[idx], newSize)
			if p != nil {
				live[idx] = p
				sizes[idx] = newSize
			}

		default:
			size := randomSize(rng, b.MinSize, b.MaxSize, b.LargeMix)

			p := a.Alloc(size)
			if p != nil {
				live = append(live, p)
				sizes = append(sizes, size)
			}
		}
	}

	elapsed := time.Since(start)

	for _, p := range live {
		a.Free(p)
	}

	return Report{
		Iterations:        b.Iterations,
		Elapsed:           elapsed,
		NumFreeBlocks:     a.NumFreeBlocks(),
		NumFreeBytes:      a.NumFreeBytes(),
		NumAllocatedBloc:  a.NumAllocatedBlocks(),
		NumAllocatedBytes: a.NumAllocatedBytes(),
		NumMetaDataBytes:  a.NumMetaDataBytes(),
		MetaDataSize:      allocator.MetaDataSize(),
	}
}

func randomSize(rng *rand.Rand, min, max int, largeMix float64) uintptr {
	if rng.Float64() < largeMix {
		return allocator.LargeThreshold + uintptr(rng.Intn(max*4))
	}

	span := max - min
	if span <= 0 {
		return uintptr(min)
	}

	return uintptr(min + rng.Intn(span+1))
}
