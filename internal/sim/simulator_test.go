package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/particlebox/internal/config"
	"github.com/san-kum/particlebox/internal/dynamo"
	"github.com/san-kum/particlebox/internal/physics"
)

var testParams = config.Params{Gravity: 0, ParticleRadius: 30, HalfExtents: mgl64.Vec2{700, 400}}

func TestTickZeroGravity(t *testing.T) {
	s := New([]dynamo.Particle{dynamo.NewParticle(1, 2, 30, -40)}, nil, nil, testParams)

	if !s.Tick(testParams, 0.5) {
		t.Fatal("tick should succeed")
	}
	p := s.Particles()[0]
	if math.Abs(p.Position.X()-16) > 1e-12 || math.Abs(p.Position.Y()+18) > 1e-12 {
		t.Errorf("expected (16, -18), got %v", p.Position)
	}
	if p.Velocity.X() != 30 || p.Velocity.Y() != -40 {
		t.Errorf("velocity changed: %v", p.Velocity)
	}
	if s.Ticks() != 1 || s.Time() != 0.5 {
		t.Errorf("unexpected clock: ticks=%d t=%v", s.Ticks(), s.Time())
	}
}

func TestTickOrdering(t *testing.T) {
	params := testParams
	params.Gravity = 100
	s := New([]dynamo.Particle{dynamo.NewParticle(0, 0, 0, 0)}, nil, nil, params)

	s.Tick(params, 0.02)
	p := s.Particles()[0]
	if p.Position.Y() != 0 {
		t.Errorf("position should lag gravity by one tick, got y = %v", p.Position.Y())
	}
	if math.Abs(p.Velocity.Y()+2) > 1e-12 {
		t.Errorf("expected vy = -2, got %v", p.Velocity.Y())
	}
}

func TestTickReflects(t *testing.T) {
	s := New([]dynamo.Particle{dynamo.NewParticle(0, -390, 0, -50)}, nil, physics.FloorOnly(), testParams)

	s.Tick(testParams, 0)
	p := s.Particles()[0]
	if p.Velocity.Y() != 50 {
		t.Errorf("expected vy = 50, got %v", p.Velocity.Y())
	}
	if !s.Hits()[0].Has(physics.Bottom) {
		t.Error("expected a bottom hit")
	}
}

func TestTickSkipsInvalidDt(t *testing.T) {
	s := New([]dynamo.Particle{dynamo.NewParticle(0, 0, 1, 1)}, nil, nil, testParams)

	for _, dt := range []float64{-0.01, math.NaN(), math.Inf(1)} {
		if s.Tick(testParams, dt) {
			t.Errorf("dt=%v should skip the tick", dt)
		}
	}
	if s.Skipped() != 3 || s.Ticks() != 0 {
		t.Errorf("expected 3 skipped and 0 ticks, got %d and %d", s.Skipped(), s.Ticks())
	}
	if p := s.Particles()[0]; p.Position != (mgl64.Vec3{}) {
		t.Errorf("skipped ticks must not move the particle, got %v", p.Position)
	}
}

func TestTickSkipsInvalidState(t *testing.T) {
	s := New([]dynamo.Particle{dynamo.NewParticle(math.NaN(), 0, 0, 0)}, nil, nil, testParams)
	if s.Tick(testParams, 0.01) {
		t.Error("non-finite particle should skip the tick")
	}
}

func TestTickReadsFreshParams(t *testing.T) {
	store := config.NewStore(testParams)
	s := New([]dynamo.Particle{dynamo.NewParticle(0, 0, 0, 0)}, nil, nil, store.Snapshot())

	s.Tick(store.Snapshot(), 0.1)
	store.Update(func(p *config.Params) { p.Gravity = 10 })
	s.Tick(store.Snapshot(), 0.1)

	if got := s.Particles()[0].Velocity.Y(); math.Abs(got+1) > 1e-12 {
		t.Errorf("expected vy = -1 after gravity change, got %v", got)
	}
}

func TestFrameIdempotent(t *testing.T) {
	s := New([]dynamo.Particle{dynamo.NewParticle(0, 0, 0, 0)}, nil, nil, testParams)

	if s.Frame(testParams) {
		t.Error("unchanged params should not relayout")
	}
	wide := testParams
	wide.HalfExtents = mgl64.Vec2{900, 400}
	if !s.Frame(wide) {
		t.Error("changed params should relayout")
	}
	before := s.Snapshot().Walls
	if s.Frame(wide) {
		t.Error("second frame with the same params should not relayout")
	}
	after := s.Snapshot().Walls
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("wall %d changed", i)
		}
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := New([]dynamo.Particle{dynamo.NewParticle(0, 0, 1, 0)}, nil, nil, testParams)
	f := s.Snapshot()
	f.Particles[0].Position[0] = 99
	if s.Particles()[0].Position.X() == 99 {
		t.Error("snapshot must not alias simulator state")
	}
	if len(f.Walls) != 4 {
		t.Errorf("expected 4 walls, got %d", len(f.Walls))
	}
}

func TestReset(t *testing.T) {
	s := New([]dynamo.Particle{dynamo.NewParticle(0, 0, 5, 0)}, nil, nil, testParams)
	s.Tick(testParams, 1)
	s.Reset()
	if s.Ticks() != 0 || s.Time() != 0 || s.Particles()[0].Position.X() != 0 {
		t.Error("reset should restore the initial state")
	}
}

func TestRun(t *testing.T) {
	s := New([]dynamo.Particle{dynamo.NewParticle(0, 0, 10, 0)}, nil, nil, testParams)

	result, err := s.Run(context.Background(), Static(testParams), Config{Dt: 0.1, Duration: 1.0})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(result.States) != 11 || len(result.Times) != 11 {
		t.Errorf("expected 11 samples, got %d states and %d times", len(result.States), len(result.Times))
	}
	if result.StepsTaken != 10 {
		t.Errorf("expected 10 steps, got %d", result.StepsTaken)
	}
	final := result.States[len(result.States)-1][0]
	if math.Abs(final.Position.X()-10) > 1e-9 {
		t.Errorf("expected x = 10, got %v", final.Position.X())
	}
}

func TestRunRecordEvery(t *testing.T) {
	s := New([]dynamo.Particle{dynamo.NewParticle(0, 0, 0, 0)}, nil, nil, testParams)
	result, err := s.Run(context.Background(), Static(testParams), Config{Dt: 0.1, Duration: 1.0, RecordEvery: 5})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.States) != 3 {
		t.Errorf("expected 3 samples, got %d", len(result.States))
	}
}

func TestRunInvalidConfig(t *testing.T) {
	s := New([]dynamo.Particle{dynamo.NewParticle(0, 0, 0, 0)}, nil, nil, testParams)

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero dt", Config{Dt: 0, Duration: 1.0}},
		{"negative dt", Config{Dt: -0.1, Duration: 1.0}},
		{"zero duration", Config{Dt: 0.1, Duration: 0}},
		{"nan duration", Config{Dt: 0.1, Duration: math.NaN()}},
		{"tiny dt", Config{Dt: 1e-300, Duration: 10, RecordEvery: 1}},
		{"too many steps", Config{Dt: 1e-9, Duration: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Run(context.Background(), Static(testParams), tt.cfg)
			if !errors.Is(err, dynamo.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestRunStepLimit(t *testing.T) {
	s := New([]dynamo.Particle{dynamo.NewParticle(0, 0, 0, 0)}, nil, nil, testParams)

	// Exactly at the limit is accepted; the run is canceled before it starts.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Run(ctx, Static(testParams), Config{Dt: 1, Duration: MaxSteps})
	if errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("step count at the limit should be accepted, got %v", err)
	}
	if !errors.Is(err, dynamo.ErrContextCanceled) {
		t.Errorf("expected ErrContextCanceled, got %v", err)
	}
}

func TestRunInvalidState(t *testing.T) {
	s := New([]dynamo.Particle{dynamo.NewParticle(0, math.Inf(-1), 0, 0)}, nil, nil, testParams)
	result, err := s.Run(context.Background(), Static(testParams), Config{Dt: 0.1, Duration: 1.0, ValidateState: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Errors) != 1 || !errors.Is(result.Errors[0], dynamo.ErrInvalidState) {
		t.Errorf("expected one invalid state error, got %v", result.Errors)
	}
}

func TestRunCanceled(t *testing.T) {
	s := New([]dynamo.Particle{dynamo.NewParticle(0, 0, 0, 0)}, nil, nil, testParams)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Run(ctx, Static(testParams), Config{Dt: 0.1, Duration: 1.0})
	if !errors.Is(err, dynamo.ErrContextCanceled) {
		t.Errorf("expected ErrContextCanceled, got %v", err)
	}
}

type countMetric struct {
	count int
}

func (c *countMetric) Name() string   { return "count" }
func (c *countMetric) Observe(Step)   { c.count++ }
func (c *countMetric) Value() float64 { return float64(c.count) }
func (c *countMetric) Reset()         { c.count = 0 }

func TestRunMetrics(t *testing.T) {
	s := New([]dynamo.Particle{dynamo.NewParticle(0, 0, 0, 0)}, nil, nil, testParams)
	m := &countMetric{}
	s.AddMetric(m)

	result, err := s.Run(context.Background(), Static(testParams), Config{Dt: 0.1, Duration: 1.0})
	if err != nil {
		t.Fatal(err)
	}
	if result.Metrics["count"] != 10 {
		t.Errorf("expected 10 observations, got %v", result.Metrics["count"])
	}
}

type recorder struct {
	ticks []uint64
}

func (r *recorder) OnStep(s Step) { r.ticks = append(r.ticks, s.Tick) }

func TestObserver(t *testing.T) {
	s := New([]dynamo.Particle{dynamo.NewParticle(0, 0, 0, 0)}, nil, nil, testParams)
	r := &recorder{}
	s.AddObserver(r)
	for i := 0; i < 3; i++ {
		s.Tick(testParams, 0.1)
	}
	if len(r.ticks) != 3 || r.ticks[2] != 3 {
		t.Errorf("unexpected observed ticks %v", r.ticks)
	}
}

func TestRunWithCallback(t *testing.T) {
	s := New([]dynamo.Particle{dynamo.NewParticle(0, 0, 1, 0)}, nil, nil, testParams)
	calls := 0
	err := s.RunWithCallback(context.Background(), Static(testParams), 0.1, func(step Step) bool {
		calls++
		return calls < 5
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls != 5 || s.Ticks() != 5 {
		t.Errorf("expected 5 calls and ticks, got %d and %d", calls, s.Ticks())
	}

	if err := s.RunWithCallback(context.Background(), Static(testParams), 0, nil); !errors.Is(err, dynamo.ErrInvalidStep) {
		t.Errorf("expected ErrInvalidStep, got %v", err)
	}
}

func TestSimulationError(t *testing.T) {
	err := &dynamo.SimulationError{Step: 3, Time: 0.3, Wrapped: dynamo.ErrInvalidState}
	if err.Error() != dynamo.ErrInvalidState.Error() {
		t.Errorf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, dynamo.ErrInvalidState) {
		t.Error("SimulationError should unwrap")
	}
}
