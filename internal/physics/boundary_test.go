package physics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/kajencik/3DMolecules/internal/dynamo"
)

func TestEnforceBoundary(t *testing.T) {
	params := Params{
		BoundaryEpsilon: 1e-3,
		Vessel:          Vessel{Radius: 5, HalfHeight: 4, Margin: 0.15},
	}
	rMax := params.EffectiveRadius()
	zMax := params.EffectiveHalfHeight()

	tests := []struct {
		name    string
		pos     mgl64.Vec3
		vel     mgl64.Vec3
		wantPos mgl64.Vec3
		wantVel mgl64.Vec3
	}{
		{"inside untouched", mgl64.Vec3{1, 2, 3}, mgl64.Vec3{1, 1, 1}, mgl64.Vec3{1, 2, 3}, mgl64.Vec3{1, 1, 1}},
		{"radial outward reflects", mgl64.Vec3{6, 0, 0}, mgl64.Vec3{2, 1, 0}, mgl64.Vec3{rMax, 0, 0}, mgl64.Vec3{-2, 1, 0}},
		{"radial inward still mirrors", mgl64.Vec3{0, -6, 0}, mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, -rMax, 0}, mgl64.Vec3{0, -1, 0}},
		{"radial mirror keeps tangent", mgl64.Vec3{6, 0, 0}, mgl64.Vec3{-1, 0.5, 0}, mgl64.Vec3{rMax, 0, 0}, mgl64.Vec3{1, 0.5, 0}},
		{"top cap", mgl64.Vec3{0, 0, 5}, mgl64.Vec3{0, 0, 3}, mgl64.Vec3{0, 0, zMax}, mgl64.Vec3{0, 0, -3}},
		{"top cap already falling", mgl64.Vec3{0, 0, 5}, mgl64.Vec3{0, 0, -3}, mgl64.Vec3{0, 0, zMax}, mgl64.Vec3{0, 0, -3}},
		{"bottom cap", mgl64.Vec3{0, 0, -5}, mgl64.Vec3{0, 0, -2}, mgl64.Vec3{0, 0, -zMax}, mgl64.Vec3{0, 0, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := dynamo.Particle{Position: tt.pos, Velocity: tt.vel}

			enforceBoundary(&p, params, Identity{})

			if !vecNear(p.Position, tt.wantPos, 1e-12) {
				t.Errorf("position = %v, want %v", p.Position, tt.wantPos)
			}
			if !vecNear(p.Velocity, tt.wantVel, 1e-12) {
				t.Errorf("velocity = %v, want %v", p.Velocity, tt.wantVel)
			}
		})
	}
}

func TestEnforceBoundaryTilted(t *testing.T) {
	params := DefaultParams()
	f := TiltXY(0.3, 0.6)
	p := dynamo.Particle{
		Position: f.ToWorld(mgl64.Vec3{0, 7, 0}),
		Velocity: f.ToWorld(mgl64.Vec3{0, 1, 0.5}),
	}

	enforceBoundary(&p, params, f)

	local := f.ToLocal(p.Position)
	if math.Abs(local.Y()-params.EffectiveRadius()) > 1e-9 {
		t.Errorf("local y = %v, want %v", local.Y(), params.EffectiveRadius())
	}
	vel := f.ToLocal(p.Velocity)
	if !vecNear(vel, mgl64.Vec3{0, -1, 0.5}, 1e-9) {
		t.Errorf("local velocity = %v", vel)
	}
	if !Contains(params, f, p.Position) {
		t.Error("particle not contained after enforcement")
	}
}

func TestContains(t *testing.T) {
	params := DefaultParams()
	if !Contains(params, Identity{}, mgl64.Vec3{}) {
		t.Error("origin should be inside")
	}
	if Contains(params, Identity{}, mgl64.Vec3{params.Vessel.Radius, 0, 0}) {
		t.Error("wall point should be outside the effective radius")
	}
	if Contains(params, Identity{}, mgl64.Vec3{0, 0, -params.Vessel.HalfHeight}) {
		t.Error("floor point should be outside the effective half height")
	}
}

// vecNear compares component-wise against an absolute tolerance.
func vecNear(got, want mgl64.Vec3, tol float64) bool {
	for i := range got {
		if math.Abs(got[i]-want[i]) > tol {
			return false
		}
	}
	return true
}
