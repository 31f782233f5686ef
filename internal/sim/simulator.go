package sim

import (
	"context"
	"fmt"

	"github.com/san-kum/particlebox/internal/config"
	"github.com/san-kum/particlebox/internal/dynamo"
	"github.com/san-kum/particlebox/internal/integrators"
	"github.com/san-kum/particlebox/internal/physics"
)

// Simulator advances a set of particles inside four static walls. It is
// driven by two cadences: Tick on the fixed step and Frame once per render
// frame. A Simulator is not safe for concurrent use.
type Simulator struct {
	particles []dynamo.Particle
	initial   []dynamo.Particle
	hits      []physics.Hits
	scheme    integrators.Scheme
	reflector *physics.Reflector
	geometry  *physics.GeometrySync
	metrics   []Metric
	observers []Observer
	tick      uint64
	t         float64
	skipped   int
}

// New builds a simulator for particles. A nil scheme means Explicit and a
// nil reflector means all four walls. params lays out the walls once.
func New(particles []dynamo.Particle, scheme integrators.Scheme, reflector *physics.Reflector, params config.Params) *Simulator {
	if scheme == nil {
		scheme = integrators.NewExplicit()
	}
	if reflector == nil {
		reflector = physics.Box()
	}
	return &Simulator{
		particles: dynamo.CloneParticles(particles),
		initial:   dynamo.CloneParticles(particles),
		hits:      make([]physics.Hits, len(particles)),
		scheme:    scheme,
		reflector: reflector,
		geometry:  physics.NewGeometrySync(params),
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Tick runs one fixed step for every particle: the scheme (position and
// gravity), then wall reflection. A negative or non-finite dt, or a particle
// that is already non-finite, skips the whole tick and returns false.
func (s *Simulator) Tick(params config.Params, dt float64) bool {
	if !dynamo.Finite(dt) || dt < 0 || !s.Valid() {
		s.skipped++
		return false
	}
	params = params.Clamp()

	for i := range s.particles {
		p := &s.particles[i]
		s.scheme.Step(p, params.Gravity, dt)
		s.hits[i] = s.reflector.Reflect(p, params)
	}
	s.tick++
	s.t += dt

	if len(s.metrics) > 0 || len(s.observers) > 0 {
		step := Step{Tick: s.tick, Time: s.t, Dt: dt, Params: params, Particles: s.particles, Hits: s.hits}
		for _, m := range s.metrics {
			m.Observe(step)
		}
		for _, o := range s.observers {
			o.OnStep(step)
		}
	}
	return true
}

// Frame is the unconstrained update. It only relays the walls, and only
// when params changed since the last relayout.
func (s *Simulator) Frame(params config.Params) bool {
	return s.geometry.Sync(params)
}

// Snapshot copies out what a renderer needs.
func (s *Simulator) Snapshot() dynamo.Frame {
	return dynamo.Frame{
		Tick:      s.tick,
		Time:      s.t,
		Particles: dynamo.CloneParticles(s.particles),
		Walls:     s.geometry.Views(),
	}
}

func (s *Simulator) Particles() []dynamo.Particle { return dynamo.CloneParticles(s.particles) }
func (s *Simulator) Walls() []physics.Wall        { return s.geometry.Walls() }
func (s *Simulator) Time() float64                { return s.t }
func (s *Simulator) Ticks() uint64                { return s.tick }
func (s *Simulator) Skipped() int                 { return s.skipped }

// Hits returns the reflections of the last tick, one entry per particle.
func (s *Simulator) Hits() []physics.Hits { return append([]physics.Hits(nil), s.hits...) }

func (s *Simulator) Valid() bool {
	for _, p := range s.particles {
		if !p.IsValid() {
			return false
		}
	}
	return true
}

// Reset puts the particles back to their starting state and rewinds time.
// Metrics are reset too.
func (s *Simulator) Reset() {
	s.particles = dynamo.CloneParticles(s.initial)
	for i := range s.hits {
		s.hits[i] = 0
	}
	s.tick = 0
	s.t = 0
	s.skipped = 0
	for _, m := range s.metrics {
		m.Reset()
	}
}

// MaxSteps bounds Duration/Dt for a single Run.
const MaxSteps = config.MaxSteps

// maxPrealloc caps the recorded-state capacity reserved up front.
const maxPrealloc = 1 << 16

// Run advances Duration/Dt fixed ticks, reading a fresh snapshot from src
// before each one.
func (s *Simulator) Run(ctx context.Context, src ParamSource, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	every := cfg.RecordEvery
	if every < 1 {
		every = 1
	}

	steps := int(cfg.Duration/cfg.Dt + 1e-9)
	capacity := min(steps/every+1, maxPrealloc)
	result := &Result{
		States:  make([][]dynamo.Particle, 0, capacity),
		Times:   make([]float64, 0, capacity),
		Bounces: make([]Bounce, 0),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	result.States = append(result.States, s.Particles())
	result.Times = append(result.Times, s.t)

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, fmt.Errorf("%w: %v", dynamo.ErrContextCanceled, ctx.Err())
		default:
		}

		params := src.Snapshot()
		s.Frame(params)

		if !s.Tick(params, cfg.Dt) {
			result.Skipped++
			if cfg.ValidateState && !s.Valid() {
				result.Errors = append(result.Errors, &dynamo.SimulationError{Step: i, Time: s.t, Wrapped: dynamo.ErrInvalidState})
				break
			}
			continue
		}
		result.StepsTaken++

		for j, h := range s.hits {
			for _, loc := range physics.Locations {
				if h.Has(loc) {
					result.Bounces = append(result.Bounces, Bounce{
						Tick: s.tick, Time: s.t, Particle: j, Location: loc, Speed: s.particles[j].Speed(),
					})
				}
			}
		}

		if result.StepsTaken%every == 0 {
			result.States = append(result.States, s.Particles())
			result.Times = append(result.Times, s.t)
		}
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

// RunWithCallback ticks at dt until callback returns false or ctx is done.
func (s *Simulator) RunWithCallback(ctx context.Context, src ParamSource, dt float64, callback func(Step) bool) error {
	if !dynamo.Finite(dt) || dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %v", dynamo.ErrInvalidStep, dt)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		params := src.Snapshot()
		s.Frame(params)
		if !s.Tick(params, dt) {
			return &dynamo.SimulationError{Step: int(s.tick), Time: s.t, Wrapped: dynamo.ErrInvalidState}
		}

		step := Step{Tick: s.tick, Time: s.t, Dt: dt, Params: params, Particles: s.particles, Hits: s.hits}
		if !callback(step) {
			return nil
		}
	}
}

func validateConfig(cfg Config) error {
	if !dynamo.Finite(cfg.Dt) || cfg.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", dynamo.ErrInvalidConfig, cfg.Dt)
	}
	if !dynamo.Finite(cfg.Duration) || cfg.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %f", dynamo.ErrInvalidConfig, cfg.Duration)
	}
	if n := cfg.Duration / cfg.Dt; n > MaxSteps {
		return fmt.Errorf("%w: %.3g steps exceeds the limit of %d", dynamo.ErrInvalidConfig, n, MaxSteps)
	}
	return nil
}
