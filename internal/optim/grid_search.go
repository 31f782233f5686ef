package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/particlebox/internal/config"
	"github.com/san-kum/particlebox/internal/experiment"
)

// Builder turns one grid point into a ready-to-run experiment.
type Builder func(params map[string]float64) (*experiment.Experiment, error)

// Trial is one evaluated grid point.
type Trial struct {
	Params map[string]float64
	Value  float64
	Err    error
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	maximize   bool
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Maximize flips the search to keep the largest metric value.
func (g *GridSearch) Maximize() *GridSearch {
	g.maximize = true
	return g
}

// Search runs every point of the grid and returns the best params, their
// metric value and every trial in grid order. A failed point is recorded in
// its trial and skipped; the search only fails when no point succeeded or
// ctx is done.
func (g *GridSearch) Search(ctx context.Context, build Builder, metricName string) (map[string]float64, float64, []Trial, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, nil, fmt.Errorf("grid search: %d params but %d ranges", len(g.paramNames), len(g.ranges))
	}

	best := math.Inf(1)
	if g.maximize {
		best = math.Inf(-1)
	}
	var bestParams map[string]float64
	var trials []Trial

	err := g.searchRecursive(ctx, 0, map[string]float64{}, func(current map[string]float64) {
		trial := Trial{Params: current}
		trial.Value, trial.Err = evaluate(ctx, build, current, metricName)
		trials = append(trials, trial)
		if trial.Err != nil {
			return
		}
		if (g.maximize && trial.Value > best) || (!g.maximize && trial.Value < best) {
			best = trial.Value
			bestParams = current
		}
	})
	if err != nil {
		return bestParams, best, trials, err
	}
	if bestParams == nil {
		return nil, 0, trials, fmt.Errorf("grid search: no successful trial for %s", metricName)
	}
	return bestParams, best, trials, nil
}

func (g *GridSearch) searchRecursive(ctx context.Context, depth int, current map[string]float64, visit func(map[string]float64)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.paramNames) {
		visit(current)
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		next := make(map[string]float64, len(current)+1)
		for k, v := range current {
			next[k] = v
		}
		next[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, next, visit); err != nil {
			return err
		}
	}
	return nil
}

func evaluate(ctx context.Context, build Builder, params map[string]float64, metricName string) (float64, error) {
	exp, err := build(params)
	if err != nil {
		return 0, err
	}
	result, err := exp.Run(ctx)
	if err != nil {
		return 0, err
	}
	val, ok := result.Metrics[metricName]
	if !ok {
		return 0, fmt.Errorf("metric %q not recorded", metricName)
	}
	return val, nil
}

// ConfigBuilder builds experiments from a copy of base with the grid point's
// params applied, collecting the default metrics.
func ConfigBuilder(base *config.Config, registry *experiment.Registry) Builder {
	return func(params map[string]float64) (*experiment.Experiment, error) {
		cfg := *base
		for name, v := range params {
			if err := cfg.Params.SetParam(name, v); err != nil {
				return nil, err
			}
		}
		exp := experiment.New(&cfg)
		if err := exp.Setup(registry, registry.DefaultMetrics()); err != nil {
			return nil, err
		}
		return exp, nil
	}
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}
	vals := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range vals {
		vals[i] = lo + float64(i)*step
	}
	vals[n-1] = hi
	return vals
}
