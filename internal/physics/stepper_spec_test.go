package physics_test

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kajencik/3DMolecules/internal/dynamo"
	"github.com/kajencik/3DMolecules/internal/physics"
)

func molecule(pos, vel mgl64.Vec3) dynamo.Particle {
	return dynamo.Particle{Position: pos, Velocity: vel, RotationAxis: dynamo.AxisZ, RotationSpeed: 1}
}

var _ = Describe("Stepper", func() {
	var (
		stepper *physics.Stepper
		params  physics.Params
	)

	BeforeEach(func() {
		stepper = physics.NewStepper()
		params = quietParams()
	})

	Describe("head-on collision", func() {
		It("flips both x velocities within ten unit steps", func() {
			params.CollisionRadius = 0.6
			params.Restitution = 1.0
			params.Separation = 0.01
			ps := []dynamo.Particle{
				molecule(mgl64.Vec3{-2, 0, 0}, mgl64.Vec3{0.5, 0, 0}),
				molecule(mgl64.Vec3{2, 0, 0}, mgl64.Vec3{-0.5, 0, 0}),
			}

			collided := false
			for i := 0; i < 10; i++ {
				d := stepper.Step(ps, params, physics.Identity{}, 1)
				collided = collided || d.Collisions > 0
			}

			Expect(collided).To(BeTrue())
			Expect(ps[0].Velocity.X()).To(BeNumerically("<", 0))
			Expect(ps[1].Velocity.X()).To(BeNumerically(">", 0))
			Expect(ps[0].Velocity.X()).To(BeNumerically("~", -0.5, 1e-12))
			Expect(ps[1].Velocity.X()).To(BeNumerically("~", 0.5, 1e-12))
		})
	})

	Describe("boundary reflection", func() {
		It("turns an escaping particle back inside the effective radius", func() {
			r := params.Vessel.Radius
			ps := []dynamo.Particle{molecule(mgl64.Vec3{r + 1, 0, 0}, mgl64.Vec3{1, 0, 0})}

			stepper.Step(ps, params, physics.Identity{}, 0.1)

			pos := ps[0].Position
			radial := ps[0].Velocity.Dot(mgl64.Vec3{pos.X(), pos.Y(), 0}.Normalize())
			Expect(radial).To(BeNumerically("<", 0))
			Expect(math.Hypot(pos.X(), pos.Y())).To(BeNumerically("<=", params.EffectiveRadius()))
		})

		It("keeps a tilted vessel's contents inside its local extents", func() {
			f := physics.TiltXY(0.4, -0.2)
			ps := []dynamo.Particle{
				molecule(f.ToWorld(mgl64.Vec3{12, 0, 3}), f.ToWorld(mgl64.Vec3{2, 0, 0})),
				molecule(f.ToWorld(mgl64.Vec3{0, 1, 15}), f.ToWorld(mgl64.Vec3{0, 0, 4})),
			}

			stepper.Step(ps, params, f, 0.05)

			for _, p := range ps {
				Expect(physics.Contains(params, f, p.Position)).To(BeTrue())
			}
			Expect(f.ToLocal(ps[0].Velocity).X()).To(BeNumerically("<", 0))
			Expect(f.ToLocal(ps[1].Velocity).Z()).To(BeNumerically("<", 0))
		})
	})

	Describe("no-force invariant", func() {
		It("leaves distant particles' velocities unchanged", func() {
			params.InteractionRadius = 1
			va, vb := mgl64.Vec3{0.1, 0.2, 0}, mgl64.Vec3{-0.3, 0, 0.1}
			ps := []dynamo.Particle{
				molecule(mgl64.Vec3{-2, 0, 0}, va),
				molecule(mgl64.Vec3{2, 0, 0}, vb),
			}

			stepper.Step(ps, params, physics.Identity{}, 0.01)

			Expect(vecNear(ps[0].Velocity, va, 1e-12)).To(BeTrue())
			Expect(vecNear(ps[1].Velocity, vb, 1e-12)).To(BeTrue())
		})
	})

	Describe("viscosity", func() {
		It("strictly reduces relative velocity between neighbours", func() {
			params.InteractionRadius = 1
			params.PreferredSpacing = 0.3
			params.Viscosity = 0.5
			ps := []dynamo.Particle{
				molecule(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0.5, 0, 0}),
				molecule(mgl64.Vec3{0.6, 0, 0}, mgl64.Vec3{-0.5, 0.2, 0}),
			}
			before := ps[1].Velocity.Sub(ps[0].Velocity).Len()

			d := stepper.Step(ps, params, physics.Identity{}, 0.01)

			Expect(d.Collisions).To(Equal(0))
			after := ps[1].Velocity.Sub(ps[0].Velocity).Len()
			Expect(after).To(BeNumerically("<", before))
		})
	})

	Describe("diagnostics", func() {
		It("checks every unordered pair exactly once", func() {
			params = physics.DefaultParams()
			factory := physics.NewSeededFactory(7, params.Vessel, physics.DefaultSpawnConfig())
			ps := physics.Populate(factory, 20)

			for i := 0; i < 5; i++ {
				d := stepper.Step(ps, params, physics.Identity{}, 1.0/60)
				Expect(d.PairChecks).To(Equal(20 * 19 / 2))
				Expect(d.Collisions).To(BeNumerically("<=", d.PairChecks))
				Expect(stepper.Diagnostics()).To(Equal(d))
			}
		})

		It("resets counters on every call", func() {
			ps := []dynamo.Particle{
				molecule(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{}),
				molecule(mgl64.Vec3{0.1, 0, 0}, mgl64.Vec3{}),
				molecule(mgl64.Vec3{0, 0.1, 0}, mgl64.Vec3{}),
			}

			first := stepper.Step(ps, params, physics.Identity{}, 0.01)
			Expect(first.PairChecks).To(Equal(3))
			Expect(first.Collisions).To(BeNumerically(">", 0))

			for i := range ps {
				ps[i].Position = mgl64.Vec3{float64(i)*3 - 3, 0, 0}
				ps[i].Velocity = mgl64.Vec3{}
			}
			second := stepper.Step(ps, params, physics.Identity{}, 0.01)
			Expect(second.PairChecks).To(Equal(3))
			Expect(second.Collisions).To(Equal(0))
		})
	})

	Describe("damping and speed clamp", func() {
		It("scales velocities by the damping factor", func() {
			params.LinearDamping = 2
			ps := []dynamo.Particle{molecule(mgl64.Vec3{}, mgl64.Vec3{1, 0, 0})}

			stepper.Step(ps, params, physics.Identity{}, 0.1)

			Expect(ps[0].Velocity.X()).To(BeNumerically("~", 0.8, 1e-12))
		})

		It("never flips velocities when damping exceeds one step", func() {
			params.LinearDamping = 50
			ps := []dynamo.Particle{molecule(mgl64.Vec3{}, mgl64.Vec3{1, 0, 0})}

			stepper.Step(ps, params, physics.Identity{}, 0.1)

			Expect(ps[0].Velocity.Len()).To(Equal(0.0))
		})

		It("clamps speed while keeping direction", func() {
			params.MaxSpeed = 2
			ps := []dynamo.Particle{molecule(mgl64.Vec3{}, mgl64.Vec3{3, 4, 0})}

			stepper.Step(ps, params, physics.Identity{}, 0.01)

			Expect(ps[0].Velocity.Len()).To(BeNumerically("~", 2, 1e-12))
			Expect(vecNear(ps[0].Velocity.Normalize(), mgl64.Vec3{0.6, 0.8, 0}, 1e-12)).To(BeTrue())
		})
	})

	Describe("integration", func() {
		It("applies world-space gravity and advances the spin angle with a floor", func() {
			params.Gravity = -10
			params.MinRotationSpeed = 2
			p := molecule(mgl64.Vec3{}, mgl64.Vec3{})
			p.RotationSpeed = 0.5
			ps := []dynamo.Particle{p}

			stepper.Step(ps, params, physics.Identity{}, 0.1)

			Expect(ps[0].Velocity.Z()).To(BeNumerically("~", -1, 1e-12))
			Expect(ps[0].Position.Z()).To(BeNumerically("~", -0.1, 1e-12))
			Expect(ps[0].RotationAngle).To(BeNumerically("~", 0.2, 1e-12))
		})

		It("produces identical results with the parallel pass enabled", func() {
			params = physics.DefaultParams()
			factory := physics.NewSeededFactory(3, params.Vessel, physics.DefaultSpawnConfig())
			serial := physics.Populate(factory, 64)
			parallel := dynamo.CloneParticles(serial)

			s1 := &physics.Stepper{}
			s2 := &physics.Stepper{ParallelThreshold: 4}
			for i := 0; i < 10; i++ {
				s1.Step(serial, params, physics.TiltXY(0.2, 0), 1.0/60)
				s2.Step(parallel, params, physics.TiltXY(0.2, 0), 1.0/60)
			}

			Expect(parallel).To(Equal(serial))
		})
	})

	Describe("tilted vessel", func() {
		It("lets contents flow toward the lower side", func() {
			params = physics.DefaultParams()
			f := physics.TiltXY(0.5, 0)
			factory := physics.NewSeededFactory(11, params.Vessel, physics.DefaultSpawnConfig())
			ps := physics.Populate(factory, 40)

			for i := 0; i < 300; i++ {
				stepper.Step(ps, params, f, 1.0/60)
			}

			// A positive x tilt lifts the local +y side, so gravity pulls
			// towards local -y.
			Expect(f.ToLocal(mgl64.Vec3{0, 0, -1}).Y()).To(BeNumerically("<", 0))
			meanY := 0.0
			for _, p := range ps {
				meanY += f.ToLocal(p.Position).Y()
			}
			meanY /= float64(len(ps))
			Expect(meanY).To(BeNumerically("<", 0))
			Expect(dynamo.ParticlesValid(ps)).To(BeTrue())
		})
	})
})
