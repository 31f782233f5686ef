package config

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

var Presets = map[string]*Config{
	"small": {
		Params: Params{Gravity: 50, ParticleRadius: 10, HalfExtents: mgl64.Vec2{700, 400}},
		Dt:     0.02, Duration: 20.0, Collision: "box", Scheme: "explicit",
		Particles: []ParticleConfig{{X: 0, Y: 0, VX: 80, VY: 0}},
	},
	"large": {
		Params: Params{Gravity: 50, ParticleRadius: 30, HalfExtents: mgl64.Vec2{700, 400}},
		Dt:     0.02, Duration: 20.0, Collision: "box", Scheme: "explicit",
		Particles: []ParticleConfig{{X: 0, Y: 0, VX: 80, VY: 0}},
	},
	"drop": {
		Params: Params{Gravity: 100, ParticleRadius: 30, HalfExtents: mgl64.Vec2{700, 400}},
		Dt:     0.02, Duration: 20.0, Collision: "box", Scheme: "explicit",
		Particles: []ParticleConfig{{}},
	},
	"pinball": {
		Params: Params{Gravity: 0, ParticleRadius: 20, HalfExtents: mgl64.Vec2{400, 300}},
		Dt:     0.01, Duration: 30.0, Collision: "box", Scheme: "explicit", ClampToWall: true,
		Particles: []ParticleConfig{{X: 0, Y: 0, VX: 300, VY: 170}, {X: 50, Y: -40, VX: -120, VY: 260}},
	},
	"floor": {
		Params: Params{Gravity: 100, ParticleRadius: 30, HalfExtents: mgl64.Vec2{700, 400}},
		Dt:     0.02, Duration: 20.0, Collision: "floor", Scheme: "explicit",
		Particles: []ParticleConfig{{X: 0, Y: 0, VX: 40, VY: 0}},
	},
}

// GetPreset returns a copy of the named preset merged over the defaults, or
// nil when no such preset exists.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Params = p.Params
	cfg.Dt = p.Dt
	cfg.Duration = p.Duration
	cfg.Collision = p.Collision
	cfg.Scheme = p.Scheme
	cfg.ClampToWall = p.ClampToWall
	cfg.Particles = append([]ParticleConfig(nil), p.Particles...)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
