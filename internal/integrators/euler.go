package integrators

import "github.com/san-kum/particlebox/internal/dynamo"

// Position advances p along its current velocity: x += v*dt.
func Position(p *dynamo.Particle, dt float64) {
	p.Position = p.Position.Add(p.Velocity.Mul(dt))
}
