package metrics

import (
	"math"

	"github.com/san-kum/particlebox/internal/config"
	"github.com/san-kum/particlebox/internal/dynamo"
	"github.com/san-kum/particlebox/internal/physics"
	"github.com/san-kum/particlebox/internal/sim"
)

// MechanicalEnergy is the energy per unit mass of p measured from the
// floor plane: ½|v|² + g·(y − floor).
func MechanicalEnergy(p dynamo.Particle, params config.Params) float64 {
	floor := physics.Boundary(params, physics.Bottom)
	v2 := p.Velocity.Dot(p.Velocity)
	return 0.5*v2 + params.Gravity*(p.Position.Y()-floor)
}

// Energy averages the mechanical energy of the first particle.
type Energy struct {
	name        string
	samples     int
	totalEnergy float64
}

func NewEnergy() *Energy {
	return &Energy{name: "energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(s sim.Step) {
	if len(s.Particles) == 0 {
		return
	}
	e.totalEnergy += MechanicalEnergy(s.Particles[0], s.Params)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDrift is the largest relative departure of the first particle's
// energy from its first sample.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(s sim.Step) {
	if len(s.Particles) == 0 {
		return
	}
	energy := MechanicalEnergy(s.Particles[0], s.Params)

	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
