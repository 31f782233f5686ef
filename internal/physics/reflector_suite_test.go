package physics_test

import (
	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/particlebox/internal/config"
	"github.com/san-kum/particlebox/internal/dynamo"
	"github.com/san-kum/particlebox/internal/physics"
)

var _ = Describe("the wall reflector", func() {
	var params config.Params

	BeforeEach(func() {
		params = config.Params{Gravity: 0, ParticleRadius: 30, HalfExtents: mgl64.Vec2{700, 400}}
	})

	DescribeTable("floor mode below the plane",
		func(vy float64, fires bool, wantVY float64) {
			p := dynamo.NewParticle(0, -390, 0, vy)
			hits := physics.FloorOnly().Reflect(&p, params)
			Expect(hits.Has(physics.Bottom)).To(Equal(fires))
			Expect(p.Velocity.Y()).To(Equal(wantVY))
		},
		Entry("falling flips", -50.0, true, 50.0),
		Entry("rising is left alone", 50.0, false, 50.0),
		Entry("at rest is left alone", 0.0, false, 0.0),
	)

	It("never flips a particle back into the wall on consecutive checks", func() {
		p := dynamo.NewParticle(0, -395, 0, -10)
		r := physics.FloorOnly()
		Expect(r.Reflect(&p, params).Count()).To(Equal(1))
		Expect(r.Reflect(&p, params).Count()).To(Equal(0))
		Expect(p.Velocity.Y()).To(Equal(10.0))
	})

	It("checks every side symmetrically in box mode", func() {
		for _, loc := range physics.Locations {
			side := physics.SideFor(loc)
			b := physics.Boundary(params, loc)

			var pos, vel mgl64.Vec3
			pos[side.Axis] = b + side.Sign*5
			vel[side.Axis] = side.Sign * 20
			p := dynamo.Particle{Position: pos, Velocity: vel}

			hits := physics.Box().Reflect(&p, params)
			Expect(hits.Has(loc)).To(BeTrue(), "wall %s", loc)
			Expect(hits.Count()).To(Equal(1), "wall %s", loc)
			Expect(p.Velocity[side.Axis]).To(Equal(-side.Sign*20), "wall %s", loc)
		}
	})
})

var _ = Describe("geometry sync", func() {
	var (
		params config.Params
		g      *physics.GeometrySync
	)

	BeforeEach(func() {
		params = config.DefaultParams()
		g = physics.NewGeometrySync(params)
	})

	It("does nothing for an unchanged configuration", func() {
		Expect(g.Sync(params)).To(BeFalse())
		Expect(g.Recomputes()).To(Equal(0))
	})

	It("relays once per change", func() {
		params.HalfExtents = mgl64.Vec2{500, 300}
		Expect(g.Sync(params)).To(BeTrue())
		Expect(g.Sync(params)).To(BeFalse())
		Expect(g.Recomputes()).To(Equal(1))

		Expect(g.Wall(physics.Left).Position).To(Equal(mgl64.Vec2{-250, 0}))
		Expect(g.Wall(physics.Top).Position).To(Equal(mgl64.Vec2{0, 150}))
		Expect(g.Wall(physics.Bottom).Size).To(Equal(mgl64.Vec2{1010, physics.WallThickness}))
		Expect(g.Wall(physics.Right).Size).To(Equal(mgl64.Vec2{physics.WallThickness, 610}))
	})

	It("keeps each wall's tag whatever its position", func() {
		params.HalfExtents = mgl64.Vec2{0, 0}
		g.Sync(params)
		tags := make([]physics.Location, 0, 4)
		for _, w := range g.Walls() {
			tags = append(tags, w.Location)
		}
		Expect(tags).To(ConsistOf(physics.Left, physics.Right, physics.Top, physics.Bottom))
	})
})
