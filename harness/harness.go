// Package harness drives two navmesh backends through identical generation
// and query workloads and records warmup-aware timing for each.
package harness

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/weiihann/navbench/bench"
	"github.com/weiihann/navbench/scene"
)

// Path is a backend-neutral path: ordered world-space position triples.
// An empty path means no route was found and is a valid outcome.
type Path [][3]float32

// Length returns the total world-space length of the polyline.
func (p Path) Length() float64 {
	var total float64

	for i := 1; i < len(p); i++ {
		dx := float64(p[i][0] - p[i-1][0])
		dy := float64(p[i][1] - p[i-1][1])
		dz := float64(p[i][2] - p[i-1][2])
		total += math.Sqrt(dx*dx + dy*dy + dz*dz)
	}

	return total
}

// BuildStats holds the coarse artifact statistics a backend reports after a
// build: Nodes is whatever the engine counts (regions, graph nodes) and
// DataBytes its approximate artifact size.
type BuildStats struct {
	Nodes     int `json:"nodes"`
	DataBytes int `json:"data_bytes"`
}

// NavMesh is an opaque navmesh handle. The harness only ever calls its
// read-only query operations and never introspects backend structure.
type NavMesh interface {
	// FindPath queries a route between two world-space points, snapping
	// each endpoint to the mesh within the given half-extents. An empty
	// path with a nil error means no route exists.
	FindPath(start, end, halfExtents [3]float32) (Path, error)

	// Stats reports coarse statistics about the built artifact.
	Stats() BuildStats
}

// Backend is one navmesh engine under comparison. Implementations own
// their native option encoding; they adapt the canonical Options
// themselves so each algebraic transform is applied exactly once, inside
// the backend that needs it.
type Backend interface {
	Name() string
	Build(buf *scene.TriangleBuffer, opts Options) (NavMesh, error)
}

// GenerationResult pairs a backend's surviving navmesh handle with the
// timing of its build calls.
type GenerationResult struct {
	Backend string
	Mesh    NavMesh
	Bench   bench.Result
	Stats   BuildStats
}

// PathResult is one backend's normalized answer to a path query.
type PathResult struct {
	Backend string
	Path    Path
}

// Runner drives a fixed set of backends through the comparison stages
// / strictly sequentially: CompareGeneration, then ComparePaths and
// CompareQueries against the handles generation produced.
type Runner struct {
	backends []Backend
	buf      *scene.TriangleBuffer
	opts     Options
	logger   *slog.Logger
	meshes   []NavMesh
}

// NewRunner creates a Runner over the given backends, triangle buffer, and
// canonical options. The buffer is treated as read-only from here on.
func NewRunner(backends []Backend, buf *scene.TriangleBuffer, opts Options, logger *slog.Logger) *Runner {
	return &Runner{
		backends: backends,
		buf:      buf,
		opts:     opts,
		logger:   logger,
	}
}

// CompareGeneration benchmarks every backend's build entry point with the
// same triangle buffer and canonical options. Each measured iteration
// overwrites a runner-owned handle slot, so the handle from the final
// iteration survives; a backend whose final iteration produced no usable
// handle fails the whole comparison, since path comparison needs every
// handle. The surviving handles are retained for the later stages.
func (r *Runner) CompareGeneration(ctx context.Context, bopts bench.Options) ([]GenerationResult, error) {
	results := make([]GenerationResult, 0, len(r.backends))
	r.meshes = make([]NavMesh, len(r.backends))

	for i, backend := range r.backends {
		logger := r.logger.With(slog.String("backend", backend.Name()))
		logger.InfoContext(ctx, "benchmarking generation",
			slog.Int("triangles", r.buf.TriangleCount()),
			slog.Int("warmup_runs", bopts.WarmupRuns),
			slog.Int("runs", bopts.Runs),
		)

		// Capture-last-result slot: every invocation overwrites it and
		// only the final measured iteration's handle is read back.
		var (
			mesh     NavMesh
			buildErr error
		)

		res, err := bench.Measure(backend.Name()+"/build", bopts, func() {
			mesh, buildErr = backend.Build(r.buf, r.opts)
		})
		if err != nil {
			return nil, fmt.Errorf("benchmark %s build: %w", backend.Name(), err)
		}

		if buildErr != nil {
			return nil, fmt.Errorf("generation failed for %s: %w", backend.Name(), buildErr)
		}

		if mesh == nil {
			return nil, fmt.Errorf("generation failed for %s: build produced no navmesh", backend.Name())
		}

		logger.InfoContext(ctx, "generation benchmarked",
			slog.String("summary", res.String()),
		)

		r.meshes[i] = mesh
		results = append(results, GenerationResult{
			Backend: backend.Name(),
			Mesh:    mesh,
			Bench:   res,
			Stats:   mesh.Stats(),
		})
	}

	return results, nil
}

// ComparePaths queries every backend exactly once with identical start,
// end, and half-extents and projects each native result into a normalized
// Path. Empty paths are valid outcomes, not errors. CompareGeneration must
// have succeeded first.
func (r *Runner) ComparePaths(ctx context.Context, start, end, halfExtents [3]float32) ([]PathResult, error) {
	if err := r.requireMeshes(); err != nil {
		return nil, err
	}

	results := make([]PathResult, 0, len(r.backends))

	for i, backend := range r.backends {
		path, err := r.meshes[i].FindPath(start, end, halfExtents)
		if err != nil {
			return nil, fmt.Errorf("query %s path: %w", backend.Name(), err)
		}

		r.logger.InfoContext(ctx, "path queried",
			slog.String("backend", backend.Name()),
			slog.Int("points", len(path)),
			slog.Float64("length", path.Length()),
		)

		results = append(results, PathResult{Backend: backend.Name(), Path: path})
	}

	return results, nil
}

// CompareQueries benchmarks every backend's point-to-point query with the
// same endpoints, reusing the benchmark engine unmodified; callers pass
// higher iteration counts than generation since this measures steady-state
// latency. CompareGeneration must have succeeded first.
func (r *Runner) CompareQueries(ctx context.Context, start, end, halfExtents [3]float32, bopts bench.Options) ([]bench.Result, error) {
	if err := r.requireMeshes(); err != nil {
		return nil, err
	}

	results := make([]bench.Result, 0, len(r.backends))

	for i, backend := range r.backends {
		mesh := r.meshes[i]

		res, err := bench.Measure(backend.Name()+"/query", bopts, func() {
			// Timing only; the comparison path was already captured by
			// ComparePaths.
			_, _ = mesh.FindPath(start, end, halfExtents)
		})
		if err != nil {
			return nil, fmt.Errorf("benchmark %s query: %w", backend.Name(), err)
		}

		r.logger.InfoContext(ctx, "query benchmarked",
			slog.String("backend", backend.Name()),
			slog.String("summary", res.String()),
		)

		results = append(results, res)
	}

	return results, nil
}

func (r *Runner) requireMeshes() error {
	if len(r.meshes) != len(r.backends) {
		return fmt.Errorf("no navmesh handles: run CompareGeneration first")
	}

	for i, mesh := range r.meshes {
		if mesh == nil {
			return fmt.Errorf("no navmesh handle for %s", r.backends[i].Name())
		}
	}

	return nil
}
