package dynamo

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Particle is the kinematic state of one point mass in the plane.
type Particle struct {
	Position mgl64.Vec3 `json:"position"`
	Velocity mgl64.Vec3 `json:"velocity"`
}

// NewParticle places a particle at (x, y) moving with (vx, vy).
func NewParticle(x, y, vx, vy float64) Particle {
	return Particle{
		Position: mgl64.Vec3{x, y, 0},
		Velocity: mgl64.Vec3{vx, vy, 0},
	}
}

func (p Particle) IsValid() bool {
	for i := 0; i < 3; i++ {
		if !finite(p.Position[i]) || !finite(p.Velocity[i]) {
			return false
		}
	}
	return true
}

// Speed returns |v|.
func (p Particle) Speed() float64 {
	return p.Velocity.Len()
}

// Row flattens the planar components as x, y, vx, vy.
func (p Particle) Row() []float64 {
	return []float64{p.Position.X(), p.Position.Y(), p.Velocity.X(), p.Velocity.Y()}
}

// ParticleFromRow is the inverse of Row. Short rows leave the tail zeroed.
func ParticleFromRow(row []float64) Particle {
	var v [4]float64
	copy(v[:], row)
	return NewParticle(v[0], v[1], v[2], v[3])
}

// CloneParticles returns an independent copy of ps.
func CloneParticles(ps []Particle) []Particle {
	c := make([]Particle, len(ps))
	copy(c, ps)
	return c
}

// WallView is the drawable part of a boundary wall.
type WallView struct {
	Location string     `json:"location"`
	Position mgl64.Vec2 `json:"position"`
	Size     mgl64.Vec2 `json:"size"`
}

// Frame is everything a renderer needs to draw one instant. The core never
// reads a Frame back.
type Frame struct {
	Tick      uint64     `json:"tick"`
	Time      float64    `json:"time"`
	Particles []Particle `json:"particles"`
	Walls     []WallView `json:"walls"`
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Finite reports whether every value is neither NaN nor Inf.
func Finite(vs ...float64) bool {
	for _, v := range vs {
		if !finite(v) {
			return false
		}
	}
	return true
}
