package experiment

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/particlebox/internal/config"
	"github.com/san-kum/particlebox/internal/dynamo"
	"github.com/san-kum/particlebox/internal/physics"
)

func TestRegistry(t *testing.T) {
	reg := NewRegistry()

	if _, err := reg.GetCollision("box", false); err != nil {
		t.Errorf("box: %v", err)
	}
	rf, err := reg.GetCollision("floor", true)
	if err != nil {
		t.Fatalf("floor: %v", err)
	}
	if len(rf.Sides) != 1 || !rf.Clamp {
		t.Errorf("expected clamped floor-only reflector, got %+v", rf)
	}
	if _, err := reg.GetCollision("sphere", false); err == nil {
		t.Error("expected error for unknown collision mode")
	}

	s, err := reg.GetScheme("semi_implicit")
	if err != nil || s.Name() != "semi_implicit" {
		t.Errorf("expected semi_implicit scheme, got %v %v", s, err)
	}
	if _, err := reg.GetScheme("rk4"); err == nil {
		t.Error("expected error for unknown scheme")
	}

	if got := reg.ListSchemes(); len(got) != 2 || got[0] != "explicit" {
		t.Errorf("unexpected schemes %v", got)
	}
	if got := len(reg.DefaultMetrics()); got != 4 {
		t.Errorf("expected 4 default metrics, got %d", got)
	}
}

func TestRunBeforeSetup(t *testing.T) {
	exp := New(config.DefaultConfig())
	if _, err := exp.Run(context.Background()); err == nil {
		t.Error("expected error when running before setup")
	}
}

func TestSetupRejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Dt = 0
	err := New(cfg).Setup(NewRegistry(), nil)
	if !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestDropRun(t *testing.T) {
	reg := NewRegistry()
	cfg := config.GetPreset("drop")
	cfg.Duration = 4

	exp := New(cfg)
	if err := exp.Setup(reg, reg.DefaultMetrics()); err != nil {
		t.Fatal(err)
	}
	result, err := exp.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if result.StepsTaken != 200 {
		t.Errorf("expected 200 steps, got %d", result.StepsTaken)
	}
	if len(result.Bounces) != 1 || result.Bounces[0].Location != physics.Bottom {
		t.Fatalf("expected a single floor bounce, got %+v", result.Bounces)
	}
	if result.Metrics["bounces"] != 1 {
		t.Errorf("expected bounce metric 1, got %v", result.Metrics["bounces"])
	}
	if result.Metrics["peak_speed"] < 270 {
		t.Errorf("expected peak speed near 280, got %v", result.Metrics["peak_speed"])
	}
}

func TestScatterIsSeeded(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Scatter = 5
	cfg.Seed = 42

	a, b := New(cfg), New(cfg)
	reg := NewRegistry()
	if err := a.Setup(reg, nil); err != nil {
		t.Fatal(err)
	}
	if err := b.Setup(reg, nil); err != nil {
		t.Fatal(err)
	}

	pa, pb := a.GetSimulator().Particles(), b.GetSimulator().Particles()
	if len(pa) != 6 {
		t.Fatalf("expected 6 particles, got %d", len(pa))
	}

	params := a.Store().Snapshot()
	for i := range pa {
		if pa[i] != pb[i] {
			t.Errorf("particle %d differs across equal seeds", i)
		}
		x, y := pa[i].Position.X(), pa[i].Position.Y()
		if x < physics.Boundary(params, physics.Left) || x > physics.Boundary(params, physics.Right) ||
			y < physics.Boundary(params, physics.Bottom) || y > physics.Boundary(params, physics.Top) {
			t.Errorf("particle %d outside the box: %v", i, pa[i].Position)
		}
	}
}

func TestStoreEditsReachRun(t *testing.T) {
	cfg := config.GetPreset("drop")
	cfg.Duration = 1

	exp := New(cfg)
	if err := exp.Setup(NewRegistry(), nil); err != nil {
		t.Fatal(err)
	}
	exp.Store().Update(func(p *config.Params) { p.Gravity = 0 })

	result, err := exp.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	last := result.States[len(result.States)-1][0]
	if last.Position.Y() != 0 || last.Velocity.Y() != 0 {
		t.Errorf("expected particle at rest with gravity 0, got %+v", last)
	}
}
