package integrators

import (
	"github.com/san-kum/particlebox/internal/dynamo"
	"github.com/san-kum/particlebox/internal/physics"
)

// Scheme orders the position update and the gravity accumulation inside a
// single fixed tick.
type Scheme interface {
	Name() string
	Step(p *dynamo.Particle, g, dt float64)
}

// Explicit moves the particle with the velocity left by the previous tick
// and only then accumulates gravity, so gravity reaches the position one
// tick late.
type Explicit struct{}

func NewExplicit() *Explicit { return &Explicit{} }

func (Explicit) Name() string { return "explicit" }

func (Explicit) Step(p *dynamo.Particle, g, dt float64) {
	Position(p, dt)
	physics.ApplyGravity(p, g, dt)
}

// SemiImplicit accumulates gravity first and moves with the new velocity.
type SemiImplicit struct{}

func NewSemiImplicit() *SemiImplicit { return &SemiImplicit{} }

func (SemiImplicit) Name() string { return "semi_implicit" }

func (SemiImplicit) Step(p *dynamo.Particle, g, dt float64) {
	physics.ApplyGravity(p, g, dt)
	Position(p, dt)
}
