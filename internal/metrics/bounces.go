package metrics

import (
	"math"

	"github.com/san-kum/particlebox/internal/sim"
)

// Bounces counts wall reflections across all particles.
type Bounces struct {
	name  string
	count int
}

func NewBounces() *Bounces {
	return &Bounces{name: "bounces"}
}

func (b *Bounces) Name() string { return b.name }

func (b *Bounces) Observe(s sim.Step) {
	for _, h := range s.Hits {
		b.count += h.Count()
	}
}

func (b *Bounces) Value() float64 { return float64(b.count) }
func (b *Bounces) Reset()         { b.count = 0 }

// PeakSpeed tracks the largest |v| seen on any particle.
type PeakSpeed struct {
	name string
	max  float64
}

func NewPeakSpeed() *PeakSpeed {
	return &PeakSpeed{name: "peak_speed"}
}

func (p *PeakSpeed) Name() string { return p.name }

func (p *PeakSpeed) Observe(s sim.Step) {
	for _, particle := range s.Particles {
		p.max = math.Max(p.max, particle.Speed())
	}
}

func (p *PeakSpeed) Value() float64 { return p.max }
func (p *PeakSpeed) Reset()         { p.max = 0 }
