package physics

import (
	"fmt"
	"math"
	"sort"

	"github.com/kajencik/3DMolecules/internal/dynamo"
)

// Vessel is the cylindrical container, centred on the origin with its axis
// along local z. Margin is the visual radius of a particle.
type Vessel struct {
	Radius     float64
	HalfHeight float64
	Margin     float64
}

// Params is the read-only coefficient bundle consumed by one step. It is
// passed by value; changing a tunable produces a new Params via With.
type Params struct {
	InteractionRadius float64
	StiffnessFar      float64
	StiffnessNear     float64
	Viscosity         float64
	Cohesion          float64
	PreferredSpacing  float64
	LinearDamping     float64
	// Gravity is the signed acceleration along world z.
	Gravity          float64
	Restitution      float64
	CollisionRadius  float64
	Separation       float64
	MaxSpeed         float64 // +Inf disables the speed clamp
	MinRotationSpeed float64
	BoundaryEpsilon  float64

	Vessel Vessel
}

// DefaultParams returns the coefficients the presets start from.
func DefaultParams() Params {
	return Params{
		InteractionRadius: 1.0,
		StiffnessFar:      4.0,
		StiffnessNear:     8.0,
		Viscosity:         0.5,
		Cohesion:          0.6,
		PreferredSpacing:  0.5,
		LinearDamping:     0.2,
		Gravity:           -9.81,
		Restitution:       0.3,
		CollisionRadius:   0.15,
		Separation:        0.005,
		MaxSpeed:          8.0,
		MinRotationSpeed:  0.2,
		BoundaryEpsilon:   1e-3,
		Vessel: Vessel{
			Radius:     5.0,
			HalfHeight: 5.0,
			Margin:     0.15,
		},
	}
}

// EffectiveRadius is the radial extent at which reflection happens.
func (p Params) EffectiveRadius() float64 {
	return p.Vessel.Radius - p.Vessel.Margin - p.BoundaryEpsilon
}

// EffectiveHalfHeight is the axial extent at which reflection happens.
func (p Params) EffectiveHalfHeight() float64 {
	return p.Vessel.HalfHeight - p.Vessel.Margin - p.BoundaryEpsilon
}

// Validate checks that the snapshot can be stepped without producing
// meaningless geometry.
func (p Params) Validate() error {
	nonNegative := map[string]float64{
		"interaction_radius": p.InteractionRadius,
		"stiffness_far":      p.StiffnessFar,
		"stiffness_near":     p.StiffnessNear,
		"viscosity":          p.Viscosity,
		"cohesion":           p.Cohesion,
		"preferred_spacing":  p.PreferredSpacing,
		"damping":            p.LinearDamping,
		"collision_radius":   p.CollisionRadius,
		"separation":         p.Separation,
		"min_rotation_speed": p.MinRotationSpeed,
		"boundary_epsilon":   p.BoundaryEpsilon,
		"vessel_margin":      p.Vessel.Margin,
	}
	for _, name := range sortedKeys(nonNegative) {
		v := nonNegative[name]
		if !finite(v) || v < 0 {
			return fmt.Errorf("%w: %s must be finite and >= 0, got %g", dynamo.ErrParameterBounds, name, v)
		}
	}
	if !(p.Restitution >= 0 && p.Restitution <= 1) {
		return fmt.Errorf("%w: restitution must be in [0, 1], got %g", dynamo.ErrParameterBounds, p.Restitution)
	}
	if !(p.MaxSpeed > 0) {
		return fmt.Errorf("%w: max_speed must be positive, got %g", dynamo.ErrParameterBounds, p.MaxSpeed)
	}
	if !finite(p.Gravity) {
		return fmt.Errorf("%w: gravity must be finite", dynamo.ErrParameterBounds)
	}
	if !finite(p.Vessel.Radius) || !finite(p.Vessel.HalfHeight) {
		return fmt.Errorf("%w: vessel extents must be finite", dynamo.ErrParameterBounds)
	}
	if p.EffectiveRadius() <= 0 {
		return fmt.Errorf("%w: vessel radius %g leaves no room inside margin", dynamo.ErrParameterBounds, p.Vessel.Radius)
	}
	if p.EffectiveHalfHeight() <= 0 {
		return fmt.Errorf("%w: vessel half height %g leaves no room inside margin", dynamo.ErrParameterBounds, p.Vessel.HalfHeight)
	}
	return nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// GetParams returns the tunables keyed by their config names.
func (p Params) GetParams() map[string]float64 {
	return map[string]float64{
		"interaction_radius": p.InteractionRadius,
		"stiffness_far":      p.StiffnessFar,
		"stiffness_near":     p.StiffnessNear,
		"viscosity":          p.Viscosity,
		"cohesion":           p.Cohesion,
		"preferred_spacing":  p.PreferredSpacing,
		"damping":            p.LinearDamping,
		"gravity":            p.Gravity,
		"restitution":        p.Restitution,
		"collision_radius":   p.CollisionRadius,
		"separation":         p.Separation,
		"max_speed":          p.MaxSpeed,
		"min_rotation_speed": p.MinRotationSpeed,
		"boundary_epsilon":   p.BoundaryEpsilon,
	}
}

// With returns a copy of p with the named tunable replaced.
func (p Params) With(name string, v float64) (Params, error) {
	switch name {
	case "interaction_radius":
		p.InteractionRadius = v
	case "stiffness_far":
		p.StiffnessFar = v
	case "stiffness_near":
		p.StiffnessNear = v
	case "viscosity":
		p.Viscosity = v
	case "cohesion":
		p.Cohesion = v
	case "preferred_spacing":
		p.PreferredSpacing = v
	case "damping":
		p.LinearDamping = v
	case "gravity":
		p.Gravity = v
	case "restitution":
		p.Restitution = v
	case "collision_radius":
		p.CollisionRadius = v
	case "separation":
		p.Separation = v
	case "max_speed":
		p.MaxSpeed = v
	case "min_rotation_speed":
		p.MinRotationSpeed = v
	case "boundary_epsilon":
		p.BoundaryEpsilon = v
	default:
		return p, fmt.Errorf("%w: %q", dynamo.ErrUnknownParameter, name)
	}
	return p, nil
}

// ParamNames lists the tunable names in sorted order.
func ParamNames() []string {
	return sortedKeys(Params{}.GetParams())
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
