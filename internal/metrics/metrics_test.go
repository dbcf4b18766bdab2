package metrics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/kajencik/3DMolecules/internal/dynamo"
)

func moving(vs ...mgl64.Vec3) []dynamo.Particle {
	ps := make([]dynamo.Particle, len(vs))
	for i, v := range vs {
		ps[i] = dynamo.Particle{Velocity: v, Position: mgl64.Vec3{0, 0, float64(i)}}
	}
	return ps
}

func TestKinetic(t *testing.T) {
	tests := []struct {
		name string
		ps   []dynamo.Particle
		want float64
	}{
		{"empty", nil, 0},
		{"at rest", moving(mgl64.Vec3{}), 0},
		{"single", moving(mgl64.Vec3{3, 4, 0}), 12.5},
		{"pair", moving(mgl64.Vec3{2, 0, 0}, mgl64.Vec3{0, 0, 0}), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Kinetic(tt.ps); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Kinetic() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKineticEnergyAverage(t *testing.T) {
	m := NewKineticEnergy()
	m.Observe(moving(mgl64.Vec3{2, 0, 0}), dynamo.Diagnostics{}, 0)
	m.Observe(moving(mgl64.Vec3{0, 0, 0}), dynamo.Diagnostics{}, 1)

	if math.Abs(m.Value()-1) > 1e-12 {
		t.Errorf("expected mean energy 1, got %v", m.Value())
	}
	if m.Last() != 0 {
		t.Errorf("expected last energy 0, got %v", m.Last())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestMeanHeight(t *testing.T) {
	m := NewMeanHeight()
	m.Observe(moving(mgl64.Vec3{}, mgl64.Vec3{}, mgl64.Vec3{}), dynamo.Diagnostics{}, 0) // z = 0, 1, 2
	m.Observe(nil, dynamo.Diagnostics{}, 1)

	if math.Abs(m.Value()-1) > 1e-12 {
		t.Errorf("expected mean height 1, got %v", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestCollisionRate(t *testing.T) {
	m := NewCollisionRate()
	for _, c := range []int{0, 3, 6} {
		m.Observe(nil, dynamo.Diagnostics{PairChecks: 10, Collisions: c}, 0)
	}

	if m.Value() != 3 {
		t.Errorf("expected rate 3, got %v", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestStability(t *testing.T) {
	m := NewStability(5)
	if m.Value() != 1 {
		t.Errorf("unobserved stability = %v, want 1", m.Value())
	}

	m.Observe(moving(mgl64.Vec3{1, 0, 0}), dynamo.Diagnostics{}, 0)
	m.Observe(moving(mgl64.Vec3{6, 0, 0}), dynamo.Diagnostics{}, 1)
	m.Observe(moving(mgl64.Vec3{math.NaN(), 0, 0}), dynamo.Diagnostics{}, 2)
	m.Observe(moving(mgl64.Vec3{0, 2, 0}), dynamo.Diagnostics{}, 3)

	if m.Value() != 0.5 {
		t.Errorf("stability = %v, want 0.5", m.Value())
	}
}

func TestMetricsSatisfyInterface(t *testing.T) {
	for _, m := range []dynamo.Metric{NewKineticEnergy(), NewMeanHeight(), NewCollisionRate(), NewStability(1)} {
		if m.Name() == "" {
			t.Errorf("%T has empty name", m)
		}
	}
}
