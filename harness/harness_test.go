package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/weiihann/navbench/bench"
	"github.com/weiihann/navbench/scene"
)

type stubMesh struct {
	buildSeq int // which build invocation produced this handle
	path     Path
}

func (m *stubMesh) FindPath(start, end, halfExtents [3]float32) (Path, error) {
	return m.path, nil
}

func (m *stubMesh) Stats() BuildStats {
	return BuildStats{Nodes: 1, DataBytes: 64}
}

type stubBackend struct {
	name   string
	builds int
	path   Path
	fail   bool

	gotStart, gotEnd, gotExtents [3]float32
}

func (b *stubBackend) Name() string { return b.name }

func (b *stubBackend) Build(buf *scene.TriangleBuffer, opts Options) (NavMesh, error) {
	b.builds++
	if b.fail {
		return nil, fmt.Errorf("no walkable surface")
	}

	return &capturingMesh{backend: b, mesh: stubMesh{buildSeq: b.builds, path: b.path}}, nil
}

type capturingMesh struct {
	backend *stubBackend
	mesh    stubMesh
}

func (m *capturingMesh) FindPath(start, end, halfExtents [3]float32) (Path, error) {
	m.backend.gotStart, m.backend.gotEnd, m.backend.gotExtents = start, end, halfExtents

	return m.mesh.path, nil
}

func (m *capturingMesh) Stats() BuildStats { return m.mesh.Stats() }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testBuffer() *scene.TriangleBuffer {
	return &scene.TriangleBuffer{
		Positions: []float32{0, 0, 0, 1, 0, 0, 0, 0, 1},
		Indices:   []uint32{0, 1, 2},
	}
}

func TestCompareGenerationKeepsLastHandle(t *testing.T) {
	a := &stubBackend{name: "a", path: Path{{0, 0, 0}, {1, 0, 1}}}
	b := &stubBackend{name: "b"}

	r := NewRunner([]Backend{a, b}, testBuffer(), DefaultOptions(), discardLogger())

	bopts := bench.Options{WarmupRuns: 2, Runs: 3}

	results, err := r.CompareGeneration(context.Background(), bopts)
	if err != nil {
		t.Fatalf("CompareGeneration failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}

	for _, res := range results {
		mesh, ok := res.Mesh.(*capturingMesh)
		if !ok {
			t.Fatalf("unexpected mesh type %T", res.Mesh)
		}

		// Warmup and repeat iterations each overwrite the slot; the
		// handle from the final measured iteration must survive.
		want := bopts.WarmupRuns + bopts.Runs
		if mesh.mesh.buildSeq != want {
			t.Errorf("%s: surviving handle from build %d, want %d", res.Backend, mesh.mesh.buildSeq, want)
		}
		if res.Bench.Runs != bopts.Runs {
			t.Errorf("%s: bench runs = %d, want %d", res.Backend, res.Bench.Runs, bopts.Runs)
		}
		if res.Stats.Nodes != 1 {
			t.Errorf("%s: stats nodes = %d, want 1", res.Backend, res.Stats.Nodes)
		}
	}

	if a.builds != 5 {
		t.Errorf("backend a built %d times, want 5", a.builds)
	}
}

func TestCompareGenerationFatalOnFailure(t *testing.T) {
	a := &stubBackend{name: "a"}
	b := &stubBackend{name: "b", fail: true}

	r := NewRunner([]Backend{a, b}, testBuffer(), DefaultOptions(), discardLogger())

	_, err := r.CompareGeneration(context.Background(), bench.Options{WarmupRuns: 0, Runs: 1})
	if err == nil {
		t.Fatal("expected generation failure to abort the comparison")
	}

	// Downstream stages must refuse to run without all handles.
	if _, err := r.ComparePaths(context.Background(), [3]float32{}, [3]float32{}, [3]float32{}); err == nil {
		t.Error("ComparePaths should fail after aborted generation")
	}
	if _, err := r.CompareQueries(context.Background(), [3]float32{}, [3]float32{}, [3]float32{}, bench.QueryOptions()); err == nil {
		t.Error("CompareQueries should fail after aborted generation")
	}
}

func TestComparePathsIdenticalInputs(t *testing.T) {
	a := &stubBackend{name: "a", path: Path{{0, 0, 0}, {5, 0, 5}}}
	b := &stubBackend{name: "b"} // empty path is a valid outcome

	r := NewRunner([]Backend{a, b}, testBuffer(), DefaultOptions(), discardLogger())

	if _, err := r.CompareGeneration(context.Background(), bench.Options{Runs: 1}); err != nil {
		t.Fatalf("CompareGeneration failed: %v", err)
	}

	start := [3]float32{1, 0, 1}
	end := [3]float32{4, 0, 4}
	extents := [3]float32{2, 4, 2}

	results, err := r.ComparePaths(context.Background(), start, end, extents)
	if err != nil {
		t.Fatalf("ComparePaths failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("got %d path results, want 2", len(results))
	}
	if len(results[0].Path) != 2 {
		t.Errorf("backend a path has %d points, want 2", len(results[0].Path))
	}
	if len(results[1].Path) != 0 {
		t.Errorf("backend b path has %d points, want 0 (empty is valid)", len(results[1].Path))
	}

	for _, backend := range []*stubBackend{a, b} {
		if backend.gotStart != start || backend.gotEnd != end || backend.gotExtents != extents {
			t.Errorf("%s queried with (%v, %v, %v), want (%v, %v, %v)",
				backend.name, backend.gotStart, backend.gotEnd, backend.gotExtents,
				start, end, extents)
		}
	}
}

func TestCompareQueries(t *testing.T) {
	a := &stubBackend{name: "a"}
	b := &stubBackend{name: "b"}

	r := NewRunner([]Backend{a, b}, testBuffer(), DefaultOptions(), discardLogger())

	if _, err := r.CompareGeneration(context.Background(), bench.Options{Runs: 1}); err != nil {
		t.Fatalf("CompareGeneration failed: %v", err)
	}

	bopts := bench.Options{WarmupRuns: 1, Runs: 4}

	results, err := r.CompareQueries(context.Background(), [3]float32{0, 0, 0}, [3]float32{1, 0, 1}, [3]float32{2, 4, 2}, bopts)
	if err != nil {
		t.Fatalf("CompareQueries failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}

	for _, res := range results {
		if len(res.TimesMs) != bopts.Runs {
			t.Errorf("%s: %d times recorded, want %d", res.Name, len(res.TimesMs), bopts.Runs)
		}
	}
}

func TestPathLength(t *testing.T) {
	tests := []struct {
		name string
		path Path
		want float64
	}{
		{name: "empty", path: nil, want: 0},
		{name: "single point", path: Path{{1, 2, 3}}, want: 0},
		{name: "axis segment", path: Path{{0, 0, 0}, {3, 0, 0}}, want: 3},
		{name: "two segments", path: Path{{0, 0, 0}, {3, 0, 0}, {3, 4, 0}}, want: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.path.Length(); got != tt.want {
				t.Errorf("Length() = %v, want %v", got, tt.want)
			}
		})
	}
}
