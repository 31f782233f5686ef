package config

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	DefaultGravity    = 0.0
	DefaultRadius     = 30.0
	DefaultHalfWidth  = 700.0
	DefaultHalfHeight = 400.0

	MaxGravity    = 1000.0
	MaxRadius     = 100.0
	MaxHalfExtent = 2000.0
)

// Params is the runtime-tunable part of the configuration. Every physics
// component reads a fresh Params value each tick.
type Params struct {
	Gravity        float64    `yaml:"gravity" json:"gravity"`
	ParticleRadius float64    `yaml:"particle_radius" json:"particle_radius"`
	HalfExtents    mgl64.Vec2 `yaml:"half_extents" json:"half_extents"`
}

func DefaultParams() Params {
	return Params{
		Gravity:        DefaultGravity,
		ParticleRadius: DefaultRadius,
		HalfExtents:    mgl64.Vec2{DefaultHalfWidth, DefaultHalfHeight},
	}
}

// Clamp returns p with every field inside its valid range. Non-finite
// fields fall back to their defaults. The radius is also bounded so that the
// contact plane r/2 inside each wall never crosses the origin.
func (p Params) Clamp() Params {
	d := DefaultParams()
	out := Params{
		Gravity:        clamp(orDefault(p.Gravity, d.Gravity), 0, MaxGravity),
		ParticleRadius: clamp(orDefault(p.ParticleRadius, d.ParticleRadius), 0, MaxRadius),
		HalfExtents: mgl64.Vec2{
			math.Max(orDefault(p.HalfExtents[0], d.HalfExtents[0]), 0),
			math.Max(orDefault(p.HalfExtents[1], d.HalfExtents[1]), 0),
		},
	}
	limit := 2 * math.Min(out.HalfExtents[0], out.HalfExtents[1])
	if out.ParticleRadius > limit {
		out.ParticleRadius = limit
	}
	return out
}

// Field describes one editable parameter and its slider range.
type Field struct {
	Name string
	Min  float64
	Max  float64
}

var fields = map[string]Field{
	"gravity":     {Name: "gravity", Min: 0, Max: MaxGravity},
	"radius":      {Name: "radius", Min: 0, Max: MaxRadius},
	"half_width":  {Name: "half_width", Min: 0, Max: MaxHalfExtent},
	"half_height": {Name: "half_height", Min: 0, Max: MaxHalfExtent},
}

// Fields lists the editable parameters in a stable order.
func Fields() []Field {
	out := make([]Field, 0, len(fields))
	for _, f := range fields {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (p Params) GetParams() map[string]float64 {
	return map[string]float64{
		"gravity":     p.Gravity,
		"radius":      p.ParticleRadius,
		"half_width":  p.HalfExtents[0],
		"half_height": p.HalfExtents[1],
	}
}

// SetParam writes one named field, limited to the field's slider range.
func (p *Params) SetParam(name string, value float64) error {
	f, ok := fields[name]
	if !ok {
		return fmt.Errorf("unknown param: %s", name)
	}
	if math.IsNaN(value) {
		return fmt.Errorf("param %s: value is NaN", name)
	}
	value = clamp(value, f.Min, f.Max)
	switch name {
	case "gravity":
		p.Gravity = value
	case "radius":
		p.ParticleRadius = value
	case "half_width":
		p.HalfExtents[0] = value
	case "half_height":
		p.HalfExtents[1] = value
	}
	return nil
}

func orDefault(v, def float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
