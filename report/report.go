// Package report formats benchmark comparisons into tables.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/weiihann/navbench/bench"
	"github.com/weiihann/navbench/harness"
)

// BackendRun collects everything one backend produced in a run.
type BackendRun struct {
	Backend    string             `json:"backend"`
	Generation bench.Result       `json:"generation"`
	Query      bench.Result       `json:"query"`
	Path       harness.Path       `json:"path"`
	Stats      harness.BuildStats `json:"stats"`
}

// Run is one complete harness run over all backends.
type Run struct {
	Scene     string       `json:"scene"`
	Vertices  int          `json:"vertices"`
	Triangles int          `json:"triangles"`
	Backends  []BackendRun `json:"backends"`
}

// Generate writes a markdown comparison for the run: one table for
// generation timing, one for query timing, and one for the produced paths.
// Times are milliseconds with mean±stdDev notation.
func Generate(w io.Writer, run Run) error {
	if len(run.Backends) == 0 {
		return fmt.Errorf("no results to report")
	}

	fmt.Fprintln(w, "## Navmesh Comparison")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Scene: %s (%d vertices, %d triangles)\n",
		run.Scene, run.Vertices, run.Triangles)
	fmt.Fprintln(w)

	writeTimingTable(w, "Generation", run.Backends, func(b BackendRun) bench.Result {
		return b.Generation
	})
	fmt.Fprintln(w)

	writeTimingTable(w, "Query", run.Backends, func(b BackendRun) bench.Result {
		return b.Query
	})
	fmt.Fprintln(w)

	fmt.Fprintln(w, "| Backend | Path Found | Points | Length | Nodes | Data Size |")
	fmt.Fprintln(w, "|---------|------------|--------|--------|-------|-----------|")

	for _, b := range run.Backends {
		found := "yes"
		if len(b.Path) == 0 {
			found = "no"
		}

		fmt.Fprintf(w, "| %s | %s | %d | %.2f | %d | %s |\n",
			b.Backend,
			found,
			len(b.Path),
			b.Path.Length(),
			b.Stats.Nodes,
			formatBytes(uint64(b.Stats.DataBytes)),
		)
	}

	return nil
}

// GenerateJSON writes the run as indented JSON to w.
func GenerateJSON(w io.Writer, run Run) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(run)
}

func writeTimingTable(w io.Writer, title string, backends []BackendRun, sel func(BackendRun) bench.Result) {
	fastest := findFastest(backends, sel)

	fmt.Fprintf(w, "### %s\n", title)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "| Backend | Mean | Median | Min | Max | Runs | Speedup |")
	fmt.Fprintln(w, "|---------|------|--------|-----|-----|------|---------|")

	for _, b := range backends {
		res := sel(b)

		speedup := 1.0
		if fastest > 0 && res.MeanMs > 0 {
			speedup = res.MeanMs / fastest
		}

		fmt.Fprintf(w, "| %s | %s ms | %s ms | %s ms | %s ms | %d | %.2fx |\n",
			b.Backend,
			formatMeanStd(res.MeanMs, res.StdDevMs),
			formatMs(res.MedianMs),
			formatMs(res.MinMs),
			formatMs(res.MaxMs),
			res.Runs,
			speedup,
		)
	}
}

func findFastest(backends []BackendRun, sel func(BackendRun) bench.Result) float64 {
	fastest := math.MaxFloat64

	for _, b := range backends {
		if mean := sel(b).MeanMs; mean > 0 && mean < fastest {
			fastest = mean
		}
	}

	if fastest == math.MaxFloat64 {
		return 0
	}

	return fastest
}

func formatMeanStd(mean, std float64) string {
	return fmt.Sprintf("%s ± %s", formatMs(mean), formatMs(std))
}

func formatMs(ms float64) string {
	return fmt.Sprintf("%.3f", ms)
}

func formatBytes(b uint64) string {
	if b == 0 {
		return "-"
	}

	units := []string{"B", "KB", "MB", "GB"}
	size := float64(b)
	unit := 0

	for size >= 1024 && unit < len(units)-1 {
		size /= 1024
		unit++
	}

	formatted := fmt.Sprintf("%.1f", size)
	formatted = strings.TrimRight(formatted, "0")
	formatted = strings.TrimRight(formatted, ".")

	return formatted + " " + units[unit]
}
