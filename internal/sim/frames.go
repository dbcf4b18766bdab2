package sim

import (
	"math"

	"github.com/kajencik/3DMolecules/internal/physics"
)

// FrameProvider yields the vessel frame for simulated time t. It is asked
// once per step.
type FrameProvider interface {
	FrameAt(t float64) physics.Frame
}

type NoTilt struct{}

func (NoTilt) FrameAt(float64) physics.Frame { return physics.Identity{} }

// StaticTilt holds the vessel at a fixed orientation.
type StaticTilt struct {
	Frame physics.Frame
}

func (s StaticTilt) FrameAt(float64) physics.Frame {
	if s.Frame == nil {
		return physics.Identity{}
	}
	return s.Frame
}

// Rocking swings the vessel sinusoidally about world x and y. The y swing
// runs a quarter period ahead of the x swing, so equal amplitudes trace a
// circular wobble.
type Rocking struct {
	AmplitudeX float64
	AmplitudeY float64
	Period     float64
}

func (r Rocking) FrameAt(t float64) physics.Frame {
	if r.Period <= 0 {
		return physics.TiltXY(r.AmplitudeX, r.AmplitudeY)
	}
	phase := 2 * math.Pi * t / r.Period
	return physics.TiltXY(r.AmplitudeX*math.Sin(phase), r.AmplitudeY*math.Cos(phase))
}
