// Package bench provides a warmup-aware timed-repetition primitive for
// measuring synchronous operations with descriptive statistics.
package bench

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Defaults for one-shot operations such as mesh generation.
const (
	DefaultWarmupRuns = 3
	DefaultRuns       = 10
)

// Defaults for steady-state operations such as pathfinding queries,
// which need more iterations before internal caches settle.
const (
	DefaultQueryWarmupRuns = 10
	DefaultQueryRuns       = 100
)

// Options controls how many times Measure invokes an operation.
type Options struct {
	WarmupRuns int
	Runs       int
}

// BuildOptions returns the default iteration counts for one-shot
// measurements such as mesh generation.
func BuildOptions() Options {
	return Options{WarmupRuns: DefaultWarmupRuns, Runs: DefaultRuns}
}

// QueryOptions returns the default iteration counts for steady-state
// measurements such as repeated pathfinding queries.
func QueryOptions() Options {
	return Options{WarmupRuns: DefaultQueryWarmupRuns, Runs: DefaultQueryRuns}
}

// Result holds the timing statistics of a single Measure call. All values
// are wall-clock milliseconds. TimesMs preserves execution order; the
// sorted view used for median/min/max is internal to Measure.
type Result struct {
	Name       string    `json:"name"`
	WarmupRuns int       `json:"warmup_runs"`
	Runs       int       `json:"runs"`
	TimesMs    []float64 `json:"times_ms"`
	MeanMs     float64   `json:"mean_ms"`
	MedianMs   float64   `json:"median_ms"`
	MinMs      float64   `json:"min_ms"`
	MaxMs      float64   `json:"max_ms"`
	StdDevMs   float64   `json:"std_dev_ms"`
}

// String renders the one-line summary form used in run logs.
func (r Result) String() string {
	return fmt.Sprintf("%s: %.3f±%.3f ms (median %.3f, min %.3f, max %.3f, %d runs)",
		r.Name, r.MeanMs, r.StdDevMs, r.MedianMs, r.MinMs, r.MaxMs, r.Runs)
}

// Measure executes op WarmupRuns times without timing, then Runs times with
// each single invocation timed on the monotonic clock, and returns the
// statistics of the timed series. op must tolerate WarmupRuns+Runs
// invocations; callers that need an artifact produced by op should have it
// overwrite a single result slot they own and read it after Measure returns.
func Measure(name string, opts Options, op func()) (Result, error) {
	if opts.Runs < 1 {
		return Result{}, fmt.Errorf("bench %s: runs must be at least 1, got %d", name, opts.Runs)
	}

	if opts.WarmupRuns < 0 {
		return Result{}, fmt.Errorf("bench %s: warmup runs must not be negative, got %d", name, opts.WarmupRuns)
	}

	for i := 0; i < opts.WarmupRuns; i++ {
		op()
	}

	times := make([]float64, opts.Runs)

	for i := 0; i < opts.Runs; i++ {
		start := time.Now()
		op()
		times[i] = float64(time.Since(start)) / float64(time.Millisecond)
	}

	return summarize(name, opts, times), nil
}

// summarize computes the descriptive statistics over one timed series.
// Median is the element at floor(n/2) of the sorted series: for even n
// this is the upper-middle element, kept as-is (not averaged) so that
// reported numbers are reproducible from the raw series.
func summarize(name string, opts Options, times []float64) Result {
	sorted := make([]float64, len(times))
	copy(sorted, times)
	sort.Float64s(sorted)

	var sum float64
	for _, t := range times {
		sum += t
	}
	mean := sum / float64(len(times))

	// Population variance: divide by n, not n-1.
	var variance float64
	for _, t := range times {
		d := t - mean
		variance += d * d
	}
	variance /= float64(len(times))

	return Result{
		Name:       name,
		WarmupRuns: opts.WarmupRuns,
		Runs:       opts.Runs,
		TimesMs:    times,
		MeanMs:     mean,
		MedianMs:   sorted[len(sorted)/2],
		MinMs:      sorted[0],
		MaxMs:      sorted[len(sorted)-1],
		StdDevMs:   math.Sqrt(variance),
	}
}
