package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/weiihann/navbench/bench"
	"github.com/weiihann/navbench/harness"
)

func sampleRun() Run {
	return Run{
		Scene:     "demo",
		Vertices:  100,
		Triangles: 50,
		Backends: []BackendRun{
			{
				Backend: "grid",
				Generation: bench.Result{
					Name: "grid/build", Runs: 10, WarmupRuns: 3,
					MeanMs: 10, MedianMs: 9.5, MinMs: 8, MaxMs: 14, StdDevMs: 1.25,
				},
				Query: bench.Result{
					Name: "grid/query", Runs: 100, WarmupRuns: 10,
					MeanMs: 0.5, MedianMs: 0.45, MinMs: 0.4, MaxMs: 0.9, StdDevMs: 0.05,
				},
				Path:  harness.Path{{0, 0, 0}, {3, 0, 4}},
				Stats: harness.BuildStats{Nodes: 4, DataBytes: 2048},
			},
			{
				Backend: "octree",
				Generation: bench.Result{
					Name: "octree/build", Runs: 10, WarmupRuns: 3,
					MeanMs: 20, MedianMs: 19, MinMs: 17, MaxMs: 26, StdDevMs: 2.5,
				},
				Query: bench.Result{
					Name: "octree/query", Runs: 100, WarmupRuns: 10,
					MeanMs: 0.25, MedianMs: 0.2, MinMs: 0.2, MaxMs: 0.6, StdDevMs: 0.04,
				},
				Path:  harness.Path{},
				Stats: harness.BuildStats{Nodes: 900, DataBytes: 1 << 20},
			},
		},
	}
}

func TestGenerate(t *testing.T) {
	var buf bytes.Buffer
	if err := Generate(&buf, sampleRun()); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	output := buf.String()

	for _, want := range []string{
		"grid", "octree",
		"10.000 ± 1.250 ms",         // mean±std for the grid build
		"2.00x",                     // octree generation is twice as slow
		"0.250 ± 0.040 ms",          // octree query mean±std
		"| grid | yes | 2 | 5.00 |", // path found, 3-4-5 length
		"| octree | no | 0 |",       // empty path reported, not an error
		"1 MB",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q\n%s", want, output)
		}
	}
}

func TestGenerateQuerySpeedup(t *testing.T) {
	var buf bytes.Buffer
	if err := Generate(&buf, sampleRun()); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	// In the query table the octree backend is the fastest, so grid shows
	// the 2.00x factor there.
	if !strings.Contains(buf.String(), "| grid | 0.500 ± 0.050 ms | 0.450 ms | 0.400 ms | 0.900 ms | 100 | 2.00x |") {
		t.Errorf("query row malformed:\n%s", buf.String())
	}
}

func TestGenerateEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := Generate(&buf, Run{}); err == nil {
		t.Error("expected error for run without backends")
	}
}

func TestGenerateJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := GenerateJSON(&buf, sampleRun()); err != nil {
		t.Fatalf("GenerateJSON failed: %v", err)
	}

	var decoded Run
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if len(decoded.Backends) != 2 {
		t.Fatalf("decoded %d backends, want 2", len(decoded.Backends))
	}
	if decoded.Backends[0].Generation.MeanMs != 10 {
		t.Errorf("generation mean = %v, want 10", decoded.Backends[0].Generation.MeanMs)
	}
	if decoded.Backends[1].Stats.Nodes != 900 {
		t.Errorf("stats nodes = %v, want 900", decoded.Backends[1].Stats.Nodes)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   uint64
		want string
	}{
		{0, "-"},
		{512, "512 B"},
		{2048, "2 KB"},
		{1536, "1.5 KB"},
		{1 << 20, "1 MB"},
	}

	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
