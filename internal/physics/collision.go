package physics

import (
	"github.com/san-kum/particlebox/internal/config"
	"github.com/san-kum/particlebox/internal/dynamo"
)

// Boundary returns the contact plane for the wall at loc. The particle
// touches a wall once it is within half its radius of the half-extent.
func Boundary(params config.Params, loc Location) float64 {
	hw := params.HalfExtents[0] - params.ParticleRadius/2
	hh := params.HalfExtents[1] - params.ParticleRadius/2
	switch loc {
	case Left:
		return -hw
	case Right:
		return hw
	case Top:
		return hh
	default:
		return -hh
	}
}

// Side is the symmetric wall test: a particle violates the side when it is
// strictly beyond the plane on Axis in the direction of Sign and still moving
// that way.
type Side struct {
	Location Location
	Axis     int
	Sign     float64
}

// SideFor returns the check for the wall at loc.
func SideFor(loc Location) Side {
	switch loc {
	case Left:
		return Side{Location: Left, Axis: 0, Sign: -1}
	case Right:
		return Side{Location: Right, Axis: 0, Sign: 1}
	case Top:
		return Side{Location: Top, Axis: 1, Sign: 1}
	default:
		return Side{Location: Bottom, Axis: 1, Sign: -1}
	}
}

// Check flips the velocity component on s.Axis if p violates the side.
// With clamp set the position is also put back onto the plane.
func (s Side) Check(p *dynamo.Particle, boundary float64, clamp bool) bool {
	pos := p.Position[s.Axis]
	vel := p.Velocity[s.Axis]
	if s.Sign*pos <= s.Sign*boundary || s.Sign*vel <= 0 {
		return false
	}
	p.Velocity[s.Axis] = -vel
	if clamp {
		p.Position[s.Axis] = boundary
	}
	return true
}

// Hits is the set of walls a particle reflected off during one check.
type Hits uint8

func (h Hits) Has(loc Location) bool { return h&(1<<loc) != 0 }

func (h Hits) Count() int {
	n := 0
	for _, loc := range Locations {
		if h.Has(loc) {
			n++
		}
	}
	return n
}

// Reflector resolves collisions against static walls. Reflection is
// lossless: the violating component only changes sign.
type Reflector struct {
	Sides []Side
	Clamp bool
}

// FloorOnly checks the bottom wall alone. The outward-motion guard still
// applies: a particle below the floor that already moves up keeps its
// velocity.
func FloorOnly() *Reflector {
	return &Reflector{Sides: []Side{SideFor(Bottom)}}
}

// Box checks all four walls.
func Box() *Reflector {
	sides := make([]Side, 0, len(Locations))
	for _, loc := range Locations {
		sides = append(sides, SideFor(loc))
	}
	return &Reflector{Sides: sides}
}

func (r *Reflector) Reflect(p *dynamo.Particle, params config.Params) Hits {
	var hits Hits
	for _, s := range r.Sides {
		if s.Check(p, Boundary(params, s.Location), r.Clamp) {
			hits |= 1 << s.Location
		}
	}
	return hits
}
