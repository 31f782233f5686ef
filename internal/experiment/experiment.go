package experiment

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/san-kum/particlebox/internal/config"
	"github.com/san-kum/particlebox/internal/dynamo"
	"github.com/san-kum/particlebox/internal/physics"
	"github.com/san-kum/particlebox/internal/sim"
)

// MaxScatterSpeed bounds each velocity component of a scattered particle.
const MaxScatterSpeed = 200.0

// Experiment is one configured run: a simulator plus the store that feeds it.
type Experiment struct {
	cfg        *config.Config
	store      *config.Store
	simulator  *sim.Simulator
	randSource *rand.Rand
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{
		cfg:        cfg,
		store:      config.NewStore(cfg.Params),
		randSource: rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Setup validates the config and builds the simulator from the registry.
func (e *Experiment) Setup(reg *Registry, ms []sim.Metric) error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}
	reflector, err := reg.GetCollision(e.cfg.Collision, e.cfg.ClampToWall)
	if err != nil {
		return err
	}
	scheme, err := reg.GetScheme(e.cfg.Scheme)
	if err != nil {
		return err
	}

	particles := append(e.cfg.InitialParticles(), e.scatter(e.cfg.Scatter)...)
	e.simulator = sim.New(particles, scheme, reflector, e.store.Snapshot())
	for _, m := range ms {
		e.simulator.AddMetric(m)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	simCfg := sim.DefaultConfig()
	simCfg.Dt = e.cfg.Dt
	simCfg.Duration = e.cfg.Duration

	return e.simulator.Run(ctx, e.store, simCfg)
}

// scatter places n particles uniformly inside the contact boundaries with
// random velocities. The same seed always yields the same particles.
func (e *Experiment) scatter(n int) []dynamo.Particle {
	params := e.store.Snapshot()
	left, right := physics.Boundary(params, physics.Left), physics.Boundary(params, physics.Right)
	bottom, top := physics.Boundary(params, physics.Bottom), physics.Boundary(params, physics.Top)

	ps := make([]dynamo.Particle, 0, n)
	for i := 0; i < n; i++ {
		x := left + e.randSource.Float64()*(right-left)
		y := bottom + e.randSource.Float64()*(top-bottom)
		vx := (2*e.randSource.Float64() - 1) * MaxScatterSpeed
		vy := (2*e.randSource.Float64() - 1) * MaxScatterSpeed
		ps = append(ps, dynamo.NewParticle(x, y, vx, vy))
	}
	return ps
}

func (e *Experiment) GetSimulator() *sim.Simulator { return e.simulator }

// Store is the live configuration the run reads each tick.
func (e *Experiment) Store() *config.Store { return e.store }

func (e *Experiment) Config() *config.Config { return e.cfg }
