package automation

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sort"
	"time"

	"github.com/san-kum/particlebox/internal/config"
	"github.com/san-kum/particlebox/internal/dynamo"
	"github.com/san-kum/particlebox/internal/experiment"
	"github.com/san-kum/particlebox/internal/metrics"
	"github.com/san-kum/particlebox/internal/physics"
	"github.com/san-kum/particlebox/internal/sim"
	"gopkg.in/yaml.v3"
)

// Scenario is a run with scripted parameter edits, as if an editor had
// moved sliders at fixed simulation times.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Preset      string         `yaml:"preset"`
	Config      *config.Config `yaml:"config"`
	Edits       []Edit         `yaml:"edits"`
}

// Edit sets named params once simulation time reaches At.
type Edit struct {
	At  float64            `yaml:"at"`
	Set map[string]float64 `yaml:"set"`
}

// AppliedEdit records when an edit actually landed.
type AppliedEdit struct {
	Edit
	Tick    uint64
	Version uint64
}

type scenarioFile struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Preset      string    `yaml:"preset"`
	Config      yaml.Node `yaml:"config"`
	Edits       []Edit    `yaml:"edits"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	return scenario, nil
}

// ParseScenario decodes a scenario. An inline config is overlaid on the
// defaults the same way config.Load does.
func ParseScenario(data []byte) (*Scenario, error) {
	var raw scenarioFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	scenario := &Scenario{
		Name:        raw.Name,
		Description: raw.Description,
		Preset:      raw.Preset,
		Edits:       raw.Edits,
	}
	if raw.Config.Kind != 0 {
		cfg := config.DefaultConfig()
		if err := raw.Config.Decode(cfg); err != nil {
			return nil, err
		}
		scenario.Config = cfg
	}
	return scenario, nil
}

// BaseConfig resolves the scenario's starting configuration: the inline
// config if present, else the named preset, else the defaults.
func (s *Scenario) BaseConfig() (*config.Config, error) {
	if s.Config != nil {
		return s.Config, nil
	}
	if s.Preset != "" {
		cfg := config.GetPreset(s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
		return cfg, nil
	}
	return config.DefaultConfig(), nil
}

// editScript writes due edits into the store after a tick; the next tick
// is the first to see them.
type editScript struct {
	store   *config.Store
	pending []Edit
	applied []AppliedEdit
	err     error
}

func (e *editScript) OnStep(s sim.Step) {
	for len(e.pending) > 0 && s.Time+1e-9 >= e.pending[0].At {
		edit := e.pending[0]
		e.pending = e.pending[1:]
		e.store.Update(func(p *config.Params) {
			for name, v := range edit.Set {
				if err := p.SetParam(name, v); err != nil && e.err == nil {
					e.err = err
				}
			}
		})
		e.applied = append(e.applied, AppliedEdit{Edit: edit, Tick: s.Tick, Version: e.store.Version()})
	}
}

// RunScenario runs the scenario with the default metrics and returns the
// result along with the edits in the order they were applied.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry) (*sim.Result, []AppliedEdit, error) {
	cfg, err := scenario.BaseConfig()
	if err != nil {
		return nil, nil, err
	}

	edits := append([]Edit(nil), scenario.Edits...)
	sort.SliceStable(edits, func(i, j int) bool { return edits[i].At < edits[j].At })

	exp := experiment.New(cfg)
	if err := exp.Setup(registry, registry.DefaultMetrics()); err != nil {
		return nil, nil, err
	}

	script := &editScript{store: exp.Store(), pending: edits}
	exp.GetSimulator().AddObserver(script)

	result, err := exp.Run(ctx)
	if err != nil {
		return result, script.applied, err
	}
	if script.err != nil {
		return result, script.applied, fmt.Errorf("scenario %s: %w", scenario.Name, script.err)
	}
	return result, script.applied, nil
}

// ParameterSweep runs one configuration across evenly spaced values of a
// single param.
type ParameterSweep struct {
	Base      *config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

type SweepResult struct {
	ParamValue  float64
	Bounces     int
	FirstFloor  float64
	PeakSpeed   float64
	EnergyDrift float64
}

func RunSweep(ctx context.Context, sweep *ParameterSweep, registry *experiment.Registry) ([]SweepResult, error) {
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step")
	}
	results := make([]SweepResult, 0, sweep.NumSteps)

	paramStep := 0.0
	if sweep.NumSteps > 1 {
		paramStep = (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)
	}

	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep

		cfg := *sweep.Base
		if err := cfg.Params.SetParam(sweep.ParamName, paramVal); err != nil {
			return nil, err
		}

		exp := experiment.New(&cfg)
		ms := []sim.Metric{metrics.NewPeakSpeed(), metrics.NewEnergyDrift()}
		if err := exp.Setup(registry, ms); err != nil {
			return nil, err
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return nil, err
		}

		results = append(results, SweepResult{
			ParamValue:  paramVal,
			Bounces:     len(result.Bounces),
			FirstFloor:  FirstBounce(result, physics.Bottom),
			PeakSpeed:   result.Metrics["peak_speed"],
			EnergyDrift: result.Metrics["energy_drift"],
		})
	}

	return results, nil
}

// FirstBounce returns the time of the first reflection off loc, or NaN.
func FirstBounce(result *sim.Result, loc physics.Location) float64 {
	for _, b := range result.Bounces {
		if b.Location == loc {
			return b.Time
		}
	}
	return math.NaN()
}

// MonteCarloConfig perturbs the starting particles of Base.
type MonteCarloConfig struct {
	Base         *config.Config
	Perturbation float64
	NumTrials    int
	Seed         int64
}

type MonteCarloResult struct {
	TrialID   int
	Initial   []dynamo.Particle
	Final     []dynamo.Particle
	Contained bool
}

// RunMonteCarlo runs trials from randomly perturbed starting positions and
// velocities and checks that every particle ends inside the box. Configured
// particles are jittered by Perturbation; scattered ones are redrawn with a
// fresh seed per trial.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, registry *experiment.Registry) ([]MonteCarloResult, error) {
	results := make([]MonteCarloResult, 0, cfg.NumTrials)

	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	for trial := 0; trial < cfg.NumTrials; trial++ {
		run := *cfg.Base
		run.Seed = rng.Int63()
		run.Particles = make([]config.ParticleConfig, len(cfg.Base.Particles))
		for i, p := range cfg.Base.Particles {
			run.Particles[i] = config.ParticleConfig{
				X:  p.X + (rng.Float64()-0.5)*2*cfg.Perturbation,
				Y:  p.Y + (rng.Float64()-0.5)*2*cfg.Perturbation,
				VX: p.VX + (rng.Float64()-0.5)*2*cfg.Perturbation,
				VY: p.VY + (rng.Float64()-0.5)*2*cfg.Perturbation,
			}
		}

		exp := experiment.New(&run)
		if err := exp.Setup(registry, nil); err != nil {
			return nil, err
		}
		initial := exp.GetSimulator().Particles()

		result, err := exp.Run(ctx)
		if err != nil {
			return nil, err
		}

		var final []dynamo.Particle
		if len(result.States) > 0 {
			final = result.States[len(result.States)-1]
		}

		results = append(results, MonteCarloResult{
			TrialID:   trial,
			Initial:   initial,
			Final:     final,
			Contained: Contained(final, exp.Store().Snapshot()),
		})
	}

	return results, nil
}

// Contained reports whether every particle is finite and inside the half
// extents of the box.
func Contained(ps []dynamo.Particle, params config.Params) bool {
	for _, p := range ps {
		if !p.IsValid() {
			return false
		}
		if math.Abs(p.Position.X()) > params.HalfExtents[0] || math.Abs(p.Position.Y()) > params.HalfExtents[1] {
			return false
		}
	}
	return true
}

func MonteCarloStats(results []MonteCarloResult) (contained int, escaped int) {
	for _, r := range results {
		if r.Contained {
			contained++
		} else {
			escaped++
		}
	}
	return
}
