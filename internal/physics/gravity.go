package physics

import "github.com/san-kum/particlebox/internal/dynamo"

// ApplyGravity pulls p along -y: v.y -= g*dt. v.x is left alone.
func ApplyGravity(p *dynamo.Particle, g, dt float64) {
	p.Velocity[1] -= g * dt
}
