package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/san-kum/particlebox/internal/analysis"
	"github.com/san-kum/particlebox/internal/automation"
	"github.com/san-kum/particlebox/internal/experiment"
	"github.com/san-kum/particlebox/internal/export"
	"github.com/san-kum/particlebox/internal/optim"
	"github.com/san-kum/particlebox/internal/physics"
	"github.com/san-kum/particlebox/internal/storage"
	"github.com/spf13/cobra"
)

var (
	particleIdx  int
	xAxis        string
	yAxis        string
	sweepParam   string
	sweepMin     float64
	sweepMax     float64
	sweepSteps   int
	trials       int
	perturbation float64
	gridFlags    []string
	metricName   string
	maximize     bool
	svgOutput    string
	svgWidth     int
	svgHeight    int
)

func studyCommands() []*cobra.Command {
	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "bounce period and dominant frequency of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&particleIdx, "particle", 0, "particle index")

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase portrait of one particle",
		Args:  cobra.ExactArgs(1),
		RunE:  phaseRun,
	}
	phaseCmd.Flags().IntVar(&particleIdx, "particle", 0, "particle index")
	phaseCmd.Flags().StringVar(&xAxis, "x-axis", "y", "horizontal column (x, y, vx, vy)")
	phaseCmd.Flags().StringVar(&yAxis, "y-axis", "vy", "vertical column (x, y, vx, vy)")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep one parameter across a range",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addSceneFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "gravity", "parameter to sweep")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 50, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 500, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 10, "number of values")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "check containment over randomly perturbed starts",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	addSceneFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 100, "number of trials")
	monteCarloCmd.Flags().Float64Var(&perturbation, "perturb", 50, "max perturbation of each position and velocity component")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted scenario with timed parameter edits",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	optimizeCmd := &cobra.Command{
		Use:   "optimize",
		Short: "grid search parameters for the best metric value",
		Args:  cobra.NoArgs,
		RunE:  runOptimize,
	}
	addSceneFlags(optimizeCmd)
	optimizeCmd.Flags().StringArrayVar(&gridFlags, "grid", []string{"gravity=50:400:8"}, "name=min:max:steps, repeatable")
	optimizeCmd.Flags().StringVar(&metricName, "metric", "energy_drift", "metric to optimise")
	optimizeCmd.Flags().BoolVar(&maximize, "maximize", false, "keep the largest value instead of the smallest")

	svgCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "draw a run's trajectories and walls as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	svgCmd.Flags().StringVarP(&svgOutput, "output", "o", "", "output file (default stdout)")
	svgCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	svgCmd.Flags().IntVar(&svgHeight, "height", 480, "image height")

	return []*cobra.Command{analyzeCmd, phaseCmd, sweepCmd, monteCarloCmd, scenarioCmd, optimizeCmd, svgCmd}
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	states, times, err := st.LoadStates(args[0])
	if err != nil {
		return err
	}
	if len(states) < 2 || particleIdx < 0 || particleIdx >= len(states[0]) {
		return fmt.Errorf("no data for particle %d", particleIdx)
	}

	ys := make([]float64, len(states))
	vys := make([]float64, len(states))
	for i, s := range states {
		ys[i] = s[particleIdx].Position.Y()
		vys[i] = s[particleIdx].Velocity.Y()
	}

	fmt.Printf("run: %s (particle %d)\n", meta.ID, particleIdx)
	fmt.Printf("dominant frequency of y: %.4f Hz\n", analysis.DominantFrequency(ys, meta.Dt))

	periods := analysis.BouncePeriods(times, vys)
	if len(periods) == 0 {
		fmt.Println("bounce period: fewer than two bounces")
		return nil
	}
	mean, lo, hi := 0.0, math.Inf(1), math.Inf(-1)
	for _, p := range periods {
		mean += p
		lo = math.Min(lo, p)
		hi = math.Max(hi, p)
	}
	mean /= float64(len(periods))
	fmt.Printf("bounce period: %.4fs mean over %d (min %.4fs, max %.4fs)\n", mean, len(periods), lo, hi)
	return nil
}

func phaseRun(cmd *cobra.Command, args []string) error {
	x, err := analysis.ParseColumn(xAxis)
	if err != nil {
		return err
	}
	y, err := analysis.ParseColumn(yAxis)
	if err != nil {
		return err
	}

	states, _, err := storage.New(dataDir).LoadStates(args[0])
	if err != nil {
		return err
	}

	portrait := analysis.NewPhasePortrait(states, particleIdx, x, y)
	if len(portrait.Points) == 0 {
		return fmt.Errorf("no data for particle %d", particleIdx)
	}
	fmt.Printf("%s vs %s (particle %d)\n", y, x, particleIdx)
	fmt.Print(portrait.ToASCII(72, 24))
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, name, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	results, err := automation.RunSweep(context.Background(), &automation.ParameterSweep{
		Base:      cfg,
		ParamName: sweepParam,
		ParamMin:  sweepMin,
		ParamMax:  sweepMax,
		NumSteps:  sweepSteps,
	}, experiment.NewRegistry())
	if err != nil {
		return err
	}

	fmt.Printf("sweeping %s over %s\n\n", sweepParam, name)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tFIRST_FLOOR\tBOUNCES\tPEAK_SPEED\tENERGY_DRIFT\n", strings.ToUpper(sweepParam))
	for _, r := range results {
		fmt.Fprintf(w, "%.2f\t%s\t%d\t%.2f\t%.2e\n", r.ParamValue, formatTime(r.FirstFloor), r.Bounces, r.PeakSpeed, r.EnergyDrift)
	}
	return w.Flush()
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, name, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	results, err := automation.RunMonteCarlo(context.Background(), &automation.MonteCarloConfig{
		Base:         cfg,
		Perturbation: perturbation,
		NumTrials:    trials,
		Seed:         cfg.Seed,
	}, experiment.NewRegistry())
	if err != nil {
		return err
	}

	contained, escaped := automation.MonteCarloStats(results)
	fmt.Printf("%s: %d trials, perturbation %.1f\n", name, len(results), perturbation)
	fmt.Printf("contained: %d\n", contained)
	fmt.Printf("escaped:   %d\n", escaped)
	for _, r := range results {
		if !r.Contained {
			fmt.Printf("  trial %d escaped from %+v\n", r.TrialID, r.Initial)
		}
	}
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	result, applied, err := automation.RunScenario(context.Background(), scenario, experiment.NewRegistry())
	if err != nil {
		return err
	}

	fmt.Printf("scenario: %s\n", scenario.Name)
	if scenario.Description != "" {
		fmt.Printf("  %s\n", scenario.Description)
	}
	fmt.Println()
	for _, e := range applied {
		names := make([]string, 0, len(e.Set))
		for k := range e.Set {
			names = append(names, k)
		}
		sort.Strings(names)
		parts := make([]string, len(names))
		for i, k := range names {
			parts[i] = fmt.Sprintf("%s=%g", k, e.Set[k])
		}
		fmt.Printf("t=%.2fs tick %d: %s (version %d)\n", e.At, e.Tick, strings.Join(parts, " "), e.Version)
	}
	fmt.Printf("\nsteps: %d, bounces: %d, first floor bounce: %s\n",
		result.StepsTaken, len(result.Bounces), formatTime(automation.FirstBounce(result, physics.Bottom)))
	return nil
}

func runOptimize(cmd *cobra.Command, args []string) error {
	cfg, name, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(gridFlags))
	ranges := make([][]float64, 0, len(gridFlags))
	for _, g := range gridFlags {
		n, vals, err := parseGrid(g)
		if err != nil {
			return err
		}
		names = append(names, n)
		ranges = append(ranges, vals)
	}

	search := optim.NewGridSearch(names, ranges)
	if maximize {
		search.Maximize()
	}

	best, val, all, err := search.Search(context.Background(), optim.ConfigBuilder(cfg, experiment.NewRegistry()), metricName)
	if err != nil {
		return err
	}

	failed := 0
	for _, t := range all {
		if t.Err != nil {
			failed++
		}
	}
	fmt.Printf("%s: %d trials (%d failed)\n", name, len(all), failed)
	fmt.Printf("best %s: %.6g\n", metricName, val)
	for _, n := range names {
		fmt.Printf("  %s = %g\n", n, best[n])
	}
	return nil
}

// parseGrid reads "name=min:max:steps".
func parseGrid(arg string) (string, []float64, error) {
	name, rng, ok := strings.Cut(arg, "=")
	parts := strings.Split(rng, ":")
	if !ok || len(parts) != 3 {
		return "", nil, fmt.Errorf("bad grid %q, want name=min:max:steps", arg)
	}
	lo, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return "", nil, fmt.Errorf("grid %s: %w", name, err)
	}
	hi, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return "", nil, fmt.Errorf("grid %s: %w", name, err)
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil {
		return "", nil, fmt.Errorf("grid %s: %w", name, err)
	}
	return name, optim.Linspace(lo, hi, n), nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	states, _, err := st.LoadStates(args[0])
	if err != nil {
		return err
	}

	svg := export.TrajectoryToSVG(states, meta.Params, svgWidth, svgHeight)
	if svg == "" {
		return fmt.Errorf("not enough data to draw")
	}
	if svgOutput == "" {
		fmt.Println(svg)
		return nil
	}
	if err := os.WriteFile(svgOutput, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", svgOutput)
	return nil
}

func formatTime(t float64) string {
	if math.IsNaN(t) {
		return "-"
	}
	return fmt.Sprintf("%.2fs", t)
}
