package physics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/kajencik/3DMolecules/internal/dynamo"
)

func softParams() Params {
	return Params{
		InteractionRadius: 1,
		StiffnessFar:      4,
		StiffnessNear:     8,
		PreferredSpacing:  0.5,
	}
}

func TestInteractImpulses(t *testing.T) {
	tests := []struct {
		name     string
		dist     float64
		cohesion float64
		wantA    float64 // x velocity of a afterwards; b mirrors it
	}{
		{"repulsion inside spacing", 0.25, 0, -0.4},
		{"cohesion at exact spacing", 0.5, 2, 0.2},
		{"cohesion halfway out", 0.75, 2, 0.1},
		{"nothing at the radius edge", 1.0, 2, 0},
		{"nothing beyond radius", 1.5, 2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := softParams()
			params.Cohesion = tt.cohesion
			a := dynamo.Particle{}
			b := dynamo.Particle{Position: mgl64.Vec3{tt.dist, 0, 0}}

			interact(&a, &b, params, 0.1)

			if math.Abs(a.Velocity.X()-tt.wantA) > 1e-12 {
				t.Errorf("a.vx = %v, want %v", a.Velocity.X(), tt.wantA)
			}
			if math.Abs(b.Velocity.X()+tt.wantA) > 1e-12 {
				t.Errorf("b.vx = %v, want %v", b.Velocity.X(), -tt.wantA)
			}
		})
	}
}

func TestInteractCoincidentSkipped(t *testing.T) {
	params := softParams()
	params.Viscosity = 1
	a := dynamo.Particle{Velocity: mgl64.Vec3{1, 0, 0}}
	b := dynamo.Particle{Position: mgl64.Vec3{1e-7, 0, 0}}

	interact(&a, &b, params, 0.1)

	if a.Velocity != (mgl64.Vec3{1, 0, 0}) || b.Velocity != (mgl64.Vec3{}) {
		t.Errorf("coincident pair changed: a=%v b=%v", a.Velocity, b.Velocity)
	}
}

func TestInteractViscosity(t *testing.T) {
	params := softParams()
	params.StiffnessFar = 0
	params.StiffnessNear = 0
	params.Viscosity = 0.5
	a := dynamo.Particle{Velocity: mgl64.Vec3{1, 0, 0}}
	b := dynamo.Particle{Position: mgl64.Vec3{0.75, 0, 0}}

	interact(&a, &b, params, 0.1)

	// w = 1 - 0.75 = 0.25
	shift := 0.5 * 0.25 * 0.1
	if math.Abs(a.Velocity.X()-(1-shift)) > 1e-12 {
		t.Errorf("a.vx = %v, want %v", a.Velocity.X(), 1-shift)
	}
	if math.Abs(b.Velocity.X()-shift) > 1e-12 {
		t.Errorf("b.vx = %v, want %v", b.Velocity.X(), shift)
	}
	total := a.Velocity.Add(b.Velocity)
	if math.Abs(total.X()-1) > 1e-12 {
		t.Errorf("momentum not conserved: %v", total)
	}
}

func TestInteractNoCohesionWhenRadiusInsideSpacing(t *testing.T) {
	params := softParams()
	params.InteractionRadius = 0.5
	params.PreferredSpacing = 0.5
	params.Cohesion = 5
	a := dynamo.Particle{}
	b := dynamo.Particle{Position: mgl64.Vec3{0.5, 0, 0}}

	interact(&a, &b, params, 0.1)

	if !a.IsValid() || !b.IsValid() {
		t.Fatal("non-finite state")
	}
	if a.Velocity != (mgl64.Vec3{}) {
		t.Errorf("a.v = %v, want zero", a.Velocity)
	}
}
