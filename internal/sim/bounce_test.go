package sim_test

import (
	"context"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/particlebox/internal/config"
	"github.com/san-kum/particlebox/internal/dynamo"
	"github.com/san-kum/particlebox/internal/integrators"
	"github.com/san-kum/particlebox/internal/physics"
	"github.com/san-kum/particlebox/internal/sim"
)

var _ = Describe("a particle dropped in the box", func() {
	const (
		gravity = 100.0
		dt      = 0.02
	)

	var (
		params config.Params
		floor  float64
	)

	BeforeEach(func() {
		params = config.Params{Gravity: gravity, ParticleRadius: 30, HalfExtents: mgl64.Vec2{700, 400}}
		floor = physics.Boundary(params, physics.Bottom)
	})

	run := func(reflector *physics.Reflector, duration float64) *sim.Result {
		s := sim.New([]dynamo.Particle{dynamo.NewParticle(0, 0, 0, 0)}, integrators.NewExplicit(), reflector, params)
		result, err := s.Run(context.Background(), sim.Static(params), sim.Config{Dt: dt, Duration: duration, RecordEvery: 1})
		Expect(err).NotTo(HaveOccurred())
		return result
	}

	It("places the floor half a radius inside the wall", func() {
		Expect(floor).To(Equal(-385.0))
	})

	It("first reflects once the fall reaches the floor", func() {
		result := run(physics.FloorOnly(), 4)
		Expect(result.Bounces).NotTo(BeEmpty())

		first := result.Bounces[0]
		Expect(first.Location).To(Equal(physics.Bottom))

		analytic := math.Sqrt(2 * 385 / gravity)
		Expect(first.Time).To(BeNumerically(">=", analytic))
		Expect(first.Time).To(BeNumerically("<", analytic+2*dt))

		y := result.States[first.Tick][0].Position.Y()
		Expect(y).To(BeNumerically("<", floor))
		Expect(-y).To(BeNumerically(">=", 385.0))
	})

	It("flips once per bounce and conserves speed across bounces", func() {
		result := run(physics.FloorOnly(), 20)
		Expect(len(result.Bounces)).To(BeNumerically(">=", 3))

		for i := 1; i < len(result.Bounces); i++ {
			Expect(result.Bounces[i].Tick - result.Bounces[i-1].Tick).To(BeNumerically(">", 1))
		}

		first := result.Bounces[0].Speed
		for k, b := range result.Bounces {
			Expect(b.Location).To(Equal(physics.Bottom))
			Expect(math.Abs(b.Speed - first)).To(BeNumerically("<=", float64(k)*gravity*dt+1e-6))
			Expect(b.Speed / first).To(BeNumerically("~", 1.0, 0.05))
		}
	})

	It("rises back after every bounce", func() {
		result := run(physics.FloorOnly(), 20)
		for _, b := range result.Bounces {
			after := result.States[b.Tick][0]
			Expect(after.Velocity.Y()).To(BeNumerically(">", 0))
		}
	})

	It("behaves the same with all four walls when it falls straight down", func() {
		floorOnly := run(physics.FloorOnly(), 10)
		box := run(physics.Box(), 10)
		Expect(box.Bounces).To(HaveLen(len(floorOnly.Bounces)))
		for i := range box.Bounces {
			Expect(box.Bounces[i].Tick).To(Equal(floorOnly.Bounces[i].Tick))
		}
	})

	It("only reports a flip when the vertical velocity changes sign", func() {
		s := sim.New([]dynamo.Particle{dynamo.NewParticle(0, 0, 0, 0)}, nil, physics.FloorOnly(), params)
		flips, upward := 0, 0
		prev := 0.0
		err := s.RunWithCallback(context.Background(), sim.Static(params), dt, func(step sim.Step) bool {
			vy := step.Particles[0].Velocity.Y()
			if step.Hits[0].Has(physics.Bottom) {
				flips++
				Expect(prev).To(BeNumerically("<", 0))
				Expect(vy).To(BeNumerically(">", 0))
			}
			if prev < 0 && vy > 0 {
				upward++
			}
			prev = vy
			return step.Time < 15
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(flips).To(Equal(upward))
		Expect(flips).To(BeNumerically(">=", 2))
	})
})

var _ = Describe("editing the configuration between ticks", func() {
	It("moves the floor for the next tick", func() {
		store := config.NewStore(config.Params{Gravity: 0, ParticleRadius: 30, HalfExtents: mgl64.Vec2{700, 400}})
		s := sim.New([]dynamo.Particle{dynamo.NewParticle(0, -300, 0, -10)}, nil, nil, store.Snapshot())

		Expect(s.Tick(store.Snapshot(), 0.01)).To(BeTrue())
		Expect(s.Hits()[0]).To(BeZero())

		store.Update(func(p *config.Params) { p.HalfExtents[1] = 200 })
		Expect(s.Tick(store.Snapshot(), 0.01)).To(BeTrue())
		Expect(s.Hits()[0].Has(physics.Bottom)).To(BeTrue())
		Expect(s.Particles()[0].Velocity.Y()).To(Equal(10.0))
	})

	It("relays the walls once per change", func() {
		store := config.NewStore(config.DefaultParams())
		s := sim.New(nil, nil, nil, store.Snapshot())

		Expect(s.Frame(store.Snapshot())).To(BeFalse())
		store.Update(func(p *config.Params) { p.HalfExtents[0] = 300 })
		Expect(s.Frame(store.Snapshot())).To(BeTrue())
		Expect(s.Frame(store.Snapshot())).To(BeFalse())

		for _, w := range s.Walls() {
			if w.Location == physics.Right {
				Expect(w.Position).To(Equal(mgl64.Vec2{150, 0}))
			}
		}
	})
})

var _ = Describe("the fixed clock", func() {
	It("drives whole ticks from uneven frames", func() {
		clock := sim.NewFixedClock(0.25)
		total := 0
		for _, frame := range []float64{0.125, 0.25, 0.0625, 0.3125, 0.25} {
			total += clock.Advance(frame)
		}
		Expect(total).To(Equal(4))
	})
})
