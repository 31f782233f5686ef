package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/particlebox/internal/automation"
	"github.com/san-kum/particlebox/internal/config"
	"github.com/san-kum/particlebox/internal/experiment"
	"github.com/san-kum/particlebox/internal/metrics"
	"github.com/san-kum/particlebox/internal/physics"
	"github.com/san-kum/particlebox/internal/sim"
	"github.com/san-kum/particlebox/internal/storage"
	"github.com/san-kum/particlebox/internal/stream"
	"github.com/san-kum/particlebox/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	preset     string
	dt         float64
	duration   float64
	gravity    float64
	radius     float64
	halfWidth  float64
	halfHeight float64
	collision  string
	scheme     string
	clampWall  bool
	seed       int64
	scatter    int
	posX       float64
	posY       float64
	velX       float64
	velY       float64
	frameRate  int
	addr       string
	tickRate   int
)

// main registers the commands and runs the root command. With no
// subcommand it opens the interactive preset menu.
func main() {
	rootCmd := &cobra.Command{
		Use:   "particlebox",
		Short: "2d particle sandbox with gravity and wall reflection",
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".particlebox", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a headless simulation and store it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSceneFlags(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the first particle of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tGRAVITY\tRADIUS\tBOX\tCOLLISION\tPARTICLES")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%.0f\t%.0f\t%.0fx%.0f\t%s\t%d\n",
					name, p.Params.Gravity, p.Params.ParticleRadius,
					p.Params.HalfExtents[0], p.Params.HalfExtents[1], p.Collision, len(p.Particles))
			}
			return w.Flush()
		},
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run the simulation in the terminal viewer",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSceneFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", config.DefaultFrameRate, "frame rate")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "stream the simulation over websocket",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	addSceneFlags(serveCmd)
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	serveCmd.Flags().IntVar(&tickRate, "rate", stream.DefaultTickRate, "frames broadcast per second")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark the tick loop",
		Args:  cobra.NoArgs,
		RunE:  benchTicks,
	}

	compareCmd := &cobra.Command{
		Use:   "compare [scheme1] [scheme2] ...",
		Short: "compare integration orderings on the same scene",
		RunE:  compareSchemes,
	}
	addSceneFlags(compareCmd)

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, exportCSVCmd, exportJSONCmd, presetsCmd, liveCmd, serveCmd, benchCmd, compareCmd)
	rootCmd.AddCommand(studyCommands()...)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSceneFlags(cmd *cobra.Command) {
	d := config.DefaultConfig()
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().Float64Var(&dt, "dt", d.Dt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", d.Duration, "duration")
	cmd.Flags().Float64Var(&gravity, "gravity", d.Params.Gravity, "gravity")
	cmd.Flags().Float64Var(&radius, "radius", d.Params.ParticleRadius, "particle radius")
	cmd.Flags().Float64Var(&halfWidth, "half-width", d.Params.HalfExtents[0], "box half width")
	cmd.Flags().Float64Var(&halfHeight, "half-height", d.Params.HalfExtents[1], "box half height")
	cmd.Flags().StringVar(&collision, "collision", d.Collision, "collision mode (box, floor)")
	cmd.Flags().StringVar(&scheme, "scheme", d.Scheme, "integration order (explicit, semi_implicit)")
	cmd.Flags().BoolVar(&clampWall, "clamp", false, "snap particles onto the wall when they cross it")
	cmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	cmd.Flags().IntVar(&scatter, "scatter", 0, "extra particles at random positions")
	cmd.Flags().Float64Var(&posX, "x", 0, "initial x")
	cmd.Flags().Float64Var(&posY, "y", 0, "initial y")
	cmd.Flags().Float64Var(&velX, "vx", 0, "initial x velocity")
	cmd.Flags().Float64Var(&velY, "vy", 0, "initial y velocity")
}

// buildConfig layers a preset, then a config file, then explicitly set
// flags over the defaults. Each layer only overrides what it names.
func buildConfig(cmd *cobra.Command) (*config.Config, string, error) {
	cfg := config.DefaultConfig()
	name := "custom"

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, "", fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		name = preset
	}

	if configFile != "" {
		loaded, err := config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("gravity") {
		cfg.Params.Gravity = gravity
	}
	if flags.Changed("radius") {
		cfg.Params.ParticleRadius = radius
	}
	if flags.Changed("half-width") {
		cfg.Params.HalfExtents[0] = halfWidth
	}
	if flags.Changed("half-height") {
		cfg.Params.HalfExtents[1] = halfHeight
	}
	if flags.Changed("collision") {
		cfg.Collision = collision
	}
	if flags.Changed("scheme") {
		cfg.Scheme = scheme
	}
	if flags.Changed("clamp") {
		cfg.ClampToWall = clampWall
	}
	if flags.Changed("scatter") {
		cfg.Scatter = scatter
	}
	if cfg.Seed == 0 || flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("x") || flags.Changed("y") || flags.Changed("vx") || flags.Changed("vy") {
		cfg.Particles = []config.ParticleConfig{{X: posX, Y: posY, VX: velX, VY: velY}}
	}
	if flags.Lookup("fps") != nil && flags.Changed("fps") {
		cfg.FrameRate = frameRate
	}

	return cfg, name, cfg.Validate()
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, name, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	exp := experiment.New(cfg)
	if err := exp.Setup(registry, registry.DefaultMetrics()); err != nil {
		return err
	}

	fmt.Printf("running %s simulation...\n", name)
	start := time.Now()

	result, err := exp.Run(context.Background())
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	runID, err := st.Save(storage.RunInfo{
		Name:      name,
		Collision: cfg.Collision,
		Scheme:    cfg.Scheme,
		Dt:        cfg.Dt,
		Duration:  cfg.Duration,
		Seed:      cfg.Seed,
		Params:    cfg.Params.Clamp(),
	}, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d (skipped %d)\n", result.StepsTaken, result.Skipped)
	fmt.Printf("bounces: %d\n", len(result.Bounces))
	if len(result.Bounces) > 0 {
		b := result.Bounces[0]
		fmt.Printf("first bounce: %s wall at t=%.2fs, speed %.1f\n", b.Location, b.Time, b.Speed)
	}
	fmt.Println("\nmetrics:")
	for _, m := range registry.DefaultMetrics() {
		fmt.Printf("  %s: %.6f\n", m.Name(), result.Metrics[m.Name()])
	}

	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tDURATION\tDT\tCOLLISION\tSCHEME\tBOUNCES")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%s\t%s\t%d\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Collision,
			run.Scheme,
			run.Bounces,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	states, _, err := st.LoadStates(runID)
	if err != nil {
		return err
	}

	if len(states) == 0 || len(states[0]) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("collision: %s, scheme: %s\n", meta.Collision, meta.Scheme)
	fmt.Printf("samples: %d\n\n", len(states))

	series := []struct {
		col     int
		caption string
	}{
		{0, "x (p0)"},
		{1, "y (p0)"},
		{3, "vy (p0)"},
	}
	for _, sr := range series {
		data := make([]float64, len(states))
		for i := range states {
			data[i] = states[i][0].Row()[sr.col]
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(sr.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	states, times, err := st.LoadStates(args[0])
	if err != nil {
		return err
	}

	if len(states) == 0 {
		return fmt.Errorf("no data to export")
	}

	return storage.WriteStates(csv.NewWriter(os.Stdout), states, times)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, result, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSONStdout(meta, result)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, name, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	return viz.Run(cfg, name)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, _, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	exp := experiment.New(cfg)
	if err := exp.Setup(experiment.NewRegistry(), nil); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	hub := stream.NewHub(exp.GetSimulator(), exp.Store(), cfg.Dt, tickRate)
	return hub.ListenAndServe(ctx, addr)
}

func benchTicks(cmd *cobra.Command, args []string) error {
	registry := experiment.NewRegistry()

	counts := []int{1, 100, 1000}
	dts := []float64{0.001, 0.01, 0.02}
	const dur = 10.0

	fmt.Println("benchmarking tick loop")
	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PARTICLES\tDT\tSTEPS\tTIME\tSTEPS/SEC\tPARTICLE-STEPS/SEC")

	for _, n := range counts {
		for _, d := range dts {
			cfg := config.GetPreset("drop")
			cfg.Dt = d
			cfg.Duration = dur
			cfg.Seed = 42
			cfg.Particles = nil
			cfg.Scatter = n

			exp := experiment.New(cfg)
			if err := exp.Setup(registry, nil); err != nil {
				return err
			}

			start := time.Now()
			result, err := exp.Run(context.Background())
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			stepsPerSec := float64(result.StepsTaken) / elapsed.Seconds()
			fmt.Fprintf(w, "%d\t%.4fs\t%d\t%v\t%.0f\t%.0f\n",
				n, d, result.StepsTaken, elapsed, stepsPerSec, stepsPerSec*float64(n))
		}
	}

	return w.Flush()
}

func compareSchemes(cmd *cobra.Command, args []string) error {
	cfg, name, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	schemes := args
	if len(schemes) == 0 {
		schemes = registry.ListSchemes()
	}

	fmt.Printf("comparing schemes for %s (dt=%.4f, duration=%.1fs)\n\n", name, cfg.Dt, cfg.Duration)
	fmt.Printf("%-14s  %-12s  %-8s  %-12s  %-12s\n", "scheme", "first_floor", "bounces", "energy_drift", "peak_speed")
	fmt.Println(strings.Repeat("-", 66))

	for _, s := range schemes {
		run := *cfg
		run.Scheme = s

		exp := experiment.New(&run)
		ms := []sim.Metric{metrics.NewEnergyDrift(), metrics.NewPeakSpeed()}
		if err := exp.Setup(registry, ms); err != nil {
			fmt.Printf("%-14s  error: %v\n", s, err)
			continue
		}

		result, err := exp.Run(context.Background())
		if err != nil {
			fmt.Printf("%-14s  error: %v\n", s, err)
			continue
		}

		first := formatTime(automation.FirstBounce(result, physics.Bottom))
		fmt.Printf("%-14s  %-12s  %-8d  %12.2e  %12.2f\n", s, first, len(result.Bounces),
			result.Metrics["energy_drift"], result.Metrics["peak_speed"])
	}

	return nil
}
