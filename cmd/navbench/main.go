// Package main provides the CLI entry point for navbench, a comparative
// benchmarking harness for navmesh engines.
package main

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	_ "github.com/weiihann/navbench/backends/grid"
	_ "github.com/weiihann/navbench/backends/octnav"

	"github.com/weiihann/navbench/bench"
	"github.com/weiihann/navbench/harness"
	"github.com/weiihann/navbench/report"
	"github.com/weiihann/navbench/scene"
	"github.com/weiihann/navbench/viz"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "navbench",
		Short: "Comparative navmesh generation and pathfinding benchmark",
		Long: `Navbench drives two interchangeable navmesh engines through identical
generation and query workloads over the same scene geometry, measures both with
warmup-aware statistics, and renders the resulting paths side by side for
visual cross-checking.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCmd())

	return root
}

type runConfig struct {
	scenePath   string
	groundSize  float32
	obstacles   int
	seed        int64
	backends    []string
	start       []float32
	end         []float32
	halfExtents []float32

	cellSize             float32
	cellHeight           float32
	agentRadius          float32
	agentClimb           float32
	agentHeight          float32
	maxSlope             float32
	minRegionSize        float32
	mergeRegionSize      float32
	maxEdgeLen           float32
	maxEdgeError         float32
	detailSampleDist     float32
	detailSampleMaxError float32
	vertsPerPoly         int

	genWarmup   int
	genRuns     int
	queryWarmup int
	queryRuns   int

	outPath    string
	pngPath    string
	objPath    string
	outputJSON bool
	verbose    bool
}

func newRunCmd() *cobra.Command {
	var cfg runConfig

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full generation, path, and query comparison",
		Long: `Extract a triangle buffer from the scene, benchmark both backends' mesh
generation, query one path from each with identical inputs, benchmark the query
at steady state, and write the comparison report.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runComparison(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.scenePath, "scene", "",
		"Wavefront OBJ scene to benchmark (default: procedural test scene)")
	flags.Float32Var(&cfg.groundSize, "ground-size", 40,
		"Procedural scene: ground slab side length")
	flags.IntVar(&cfg.obstacles, "obstacles", 12,
		"Procedural scene: number of box obstacles")
	flags.Int64Var(&cfg.seed, "seed", 1,
		"Procedural scene: random seed")
	flags.StringSliceVar(&cfg.backends, "backends", harness.KnownBackends(),
		"Backends to compare")
	flags.Float32SliceVar(&cfg.start, "start", []float32{-15, 0, -15},
		"Path query start position (x,y,z)")
	flags.Float32SliceVar(&cfg.end, "end", []float32{15, 0, 15},
		"Path query end position (x,y,z)")
	flags.Float32SliceVar(&cfg.halfExtents, "half-extents", []float32{2, 4, 2},
		"Snap-to-mesh search half-extents (x,y,z)")

	flags.Float32Var(&cfg.cellSize, "cell-size", 0.3, "Voxel cell size, world units")
	flags.Float32Var(&cfg.cellHeight, "cell-height", 0.2, "Voxel cell height, world units")
	flags.Float32Var(&cfg.agentRadius, "agent-radius", 0.6, "Agent radius, world units")
	flags.Float32Var(&cfg.agentClimb, "agent-climb", 0.9, "Max climb height, world units")
	flags.Float32Var(&cfg.agentHeight, "agent-height", 2.0, "Agent height, world units")
	flags.Float32Var(&cfg.maxSlope, "max-slope", 45, "Max walkable slope, degrees")
	flags.Float32Var(&cfg.minRegionSize, "region-min-size", 8, "Minimum region size")
	flags.Float32Var(&cfg.mergeRegionSize, "region-merge-size", 20, "Region merge size")
	flags.Float32Var(&cfg.maxEdgeLen, "edge-max-len", 12, "Max contour edge length, world units")
	flags.Float32Var(&cfg.maxEdgeError, "edge-max-error", 1.3, "Max simplification error, voxels")
	flags.Float32Var(&cfg.detailSampleDist, "detail-sample-dist", 6, "Detail sampling distance multiplier")
	flags.Float32Var(&cfg.detailSampleMaxError, "detail-sample-max-error", 1, "Detail sampling error multiplier")
	flags.IntVar(&cfg.vertsPerPoly, "verts-per-poly", 6, "Max vertices per polygon")

	flags.IntVar(&cfg.genWarmup, "gen-warmup", bench.DefaultWarmupRuns,
		"Unmeasured warmup iterations for generation")
	flags.IntVar(&cfg.genRuns, "gen-runs", bench.DefaultRuns,
		"Measured iterations for generation")
	flags.IntVar(&cfg.queryWarmup, "query-warmup", bench.DefaultQueryWarmupRuns,
		"Unmeasured warmup iterations for queries")
	flags.IntVar(&cfg.queryRuns, "query-runs", bench.DefaultQueryRuns,
		"Measured iterations for queries")

	flags.StringVar(&cfg.outPath, "out", "",
		"Write the report to a file instead of stdout")
	flags.StringVar(&cfg.pngPath, "png", "",
		"Write a top-down plot of the scene and paths to this PNG file")
	flags.StringVar(&cfg.objPath, "obj-out", "",
		"Write the normalized paths as OBJ polylines to this file")
	flags.BoolVar(&cfg.outputJSON, "json", false,
		"Output the report as JSON instead of markdown")
	flags.BoolVar(&cfg.verbose, "verbose", false,
		"Enable debug logging")

	return cmd
}

func runComparison(ctx context.Context, cfg runConfig) error {
	level := slog.LevelInfo
	if cfg.verbose {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	start, err := vec3(cfg.start, "start")
	if err != nil {
		return err
	}

	end, err := vec3(cfg.end, "end")
	if err != nil {
		return err
	}

	halfExtents, err := vec3(cfg.halfExtents, "half-extents")
	if err != nil {
		return err
	}

	backends, err := harness.Resolve(cfg.backends)
	if err != nil {
		return err
	}

	// Step 1: Build or load the scene and extract the triangle buffer.
	root, sceneName, err := buildScene(ctx, logger, cfg)
	if err != nil {
		return fmt.Errorf("build scene: %w", err)
	}

	buf := scene.Extract(root)

	logger.InfoContext(ctx, "scene extracted",
		slog.String("scene", sceneName),
		slog.Int("vertices", buf.VertexCount()),
		slog.Int("triangles", buf.TriangleCount()),
	)

	opts := harness.DeriveVoxelFields(harness.Options{
		CellSize:               cfg.cellSize,
		CellHeight:             cfg.cellHeight,
		AgentRadius:            cfg.agentRadius,
		AgentClimb:             cfg.agentClimb,
		AgentHeight:            cfg.agentHeight,
		AgentMaxSlopeDeg:       cfg.maxSlope,
		MinRegionSize:          cfg.minRegionSize,
		MergeRegionSize:        cfg.mergeRegionSize,
		MaxEdgeLen:             cfg.maxEdgeLen,
		MaxSimplificationError: cfg.maxEdgeError,
		DetailSampleDist:       cfg.detailSampleDist,
		DetailSampleMaxError:   cfg.detailSampleMaxError,
		MaxVertsPerPoly:        cfg.vertsPerPoly,
	})

	runner := harness.NewRunner(backends, buf, opts, logger)

	// Step 2: Benchmark mesh generation on each backend.
	genResults, err := runner.CompareGeneration(ctx, bench.Options{
		WarmupRuns: cfg.genWarmup,
		Runs:       cfg.genRuns,
	})
	if err != nil {
		return fmt.Errorf("generation comparison: %w", err)
	}

	// Step 3: Query one path from each backend with identical inputs.
	pathResults, err := runner.ComparePaths(ctx, start, end, halfExtents)
	if err != nil {
		return fmt.Errorf("path comparison: %w", err)
	}

	// Step 4: Benchmark the query at steady state.
	queryResults, err := runner.CompareQueries(ctx, start, end, halfExtents, bench.Options{
		WarmupRuns: cfg.queryWarmup,
		Runs:       cfg.queryRuns,
	})
	if err != nil {
		return fmt.Errorf("query comparison: %w", err)
	}

	// Step 5: Assemble and emit the report.
	run := report.Run{
		Scene:     sceneName,
		Vertices:  buf.VertexCount(),
		Triangles: buf.TriangleCount(),
	}

	for i := range backends {
		run.Backends = append(run.Backends, report.BackendRun{
			Backend:    genResults[i].Backend,
			Generation: genResults[i].Bench,
			Query:      queryResults[i],
			Path:       pathResults[i].Path,
			Stats:      genResults[i].Stats,
		})
	}

	if err := emitReport(cfg, run); err != nil {
		return err
	}

	// Step 6: Visualization artifacts.
	if cfg.pngPath != "" || cfg.objPath != "" {
		overlays := buildOverlays(genResults, pathResults)

		if cfg.pngPath != "" {
			img := viz.RenderTopDown(buf, overlays, viz.Options{})
			if err := viz.WritePNG(cfg.pngPath, img); err != nil {
				return fmt.Errorf("write plot: %w", err)
			}

			logger.InfoContext(ctx, "plot written", slog.String("path", cfg.pngPath))
		}

		if cfg.objPath != "" {
			if err := viz.SavePathsOBJ(cfg.objPath, overlays); err != nil {
				return fmt.Errorf("write path obj: %w", err)
			}

			logger.InfoContext(ctx, "paths written", slog.String("path", cfg.objPath))
		}
	}

	logger.InfoContext(ctx, "comparison complete")

	return nil
}

func buildScene(ctx context.Context, logger *slog.Logger, cfg runConfig) (*scene.Node, string, error) {
	if cfg.scenePath != "" {
		root, err := scene.LoadOBJ(cfg.scenePath)
		if err != nil {
			return nil, "", err
		}

		return root, cfg.scenePath, nil
	}

	gen := scene.NewGenerator(scene.Config{
		GroundSize:  cfg.groundSize,
		Obstacles:   cfg.obstacles,
		ObstacleMin: 1,
		ObstacleMax: 3,
		Seed:        cfg.seed,
	})
	root, summary := gen.Generate()

	logger.InfoContext(ctx, "scene generated",
		slog.Int64("seed", cfg.seed),
		slog.Int("nodes", summary.Nodes),
		slog.Int("triangles", summary.Triangles),
	)

	return root, fmt.Sprintf("procedural(seed=%d)", cfg.seed), nil
}

func emitReport(cfg runConfig, run report.Run) error {
	out := os.Stdout

	if cfg.outPath != "" {
		f, err := os.Create(cfg.outPath)
		if err != nil {
			return fmt.Errorf("create report file: %w", err)
		}
		defer f.Close()

		out = f
	}

	if cfg.outputJSON {
		if err := report.GenerateJSON(out, run); err != nil {
			return fmt.Errorf("generate JSON report: %w", err)
		}

		return nil
	}

	if err := report.Generate(out, run); err != nil {
		return fmt.Errorf("generate report: %w", err)
	}

	return nil
}

var overlayColors = []color.RGBA{
	{80, 200, 120, 255}, // green
	{235, 110, 80, 255}, // orange-red
	{90, 150, 235, 255}, // blue
}

// buildOverlays turns each backend's path into a colored overlay and adds
// the grid engine's region contours as faint outlines when available.
func buildOverlays(gen []harness.GenerationResult, paths []harness.PathResult) []viz.Overlay {
	overlays := make([]viz.Overlay, 0, len(paths))

	for i, pr := range paths {
		overlays = append(overlays, viz.Overlay{
			Name:   pr.Backend,
			Points: pr.Path,
			Color:  overlayColors[i%len(overlayColors)],
		})
	}

	outline := color.RGBA{140, 140, 60, 255}

	for _, gr := range gen {
		contoured, ok := gr.Mesh.(interface{ Contours() [][][3]float32 })
		if !ok {
			continue
		}

		for _, ring := range contoured.Contours() {
			overlays = append(overlays, viz.Overlay{
				Name:      gr.Backend + "-outline",
				Points:    ring,
				Color:     outline,
				Secondary: true,
			})
		}
	}

	return overlays
}

func vec3(v []float32, name string) ([3]float32, error) {
	if len(v) != 3 {
		return [3]float32{}, fmt.Errorf("--%s needs exactly 3 components, got %d", name, len(v))
	}

	return [3]float32{v[0], v[1], v[2]}, nil
}
