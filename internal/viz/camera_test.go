package viz

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/kajencik/3DMolecules/internal/dynamo"
	"github.com/kajencik/3DMolecules/internal/physics"
)

func TestCameraProject(t *testing.T) {
	cam := &Camera{Distance: 30, Zoom: 1}
	sw, sh := 100, 80

	x, y, _, ok := cam.Project(mgl64.Vec3{}, sw, sh)
	if !ok || x != sw/2 || y != sh/2 {
		t.Fatalf("origin at (%d,%d) visible=%v", x, y, ok)
	}

	if _, y, _, _ := cam.Project(mgl64.Vec3{0, 0, 2}, sw, sh); y >= sh/2 {
		t.Errorf("world +z drawn at row %d, want above %d", y, sh/2)
	}
	if x, _, _, _ := cam.Project(mgl64.Vec3{2, 0, 0}, sw, sh); x <= sw/2 {
		t.Errorf("world +x drawn at col %d, want right of %d", x, sw/2)
	}

	_, _, near, _ := cam.Project(mgl64.Vec3{0, -3, 0}, sw, sh)
	_, _, far, _ := cam.Project(mgl64.Vec3{0, 3, 0}, sw, sh)
	if near <= far {
		t.Errorf("depth near=%v far=%v", near, far)
	}

	if _, _, _, ok := cam.Project(mgl64.Vec3{0, -40, 0}, sw, sh); ok {
		t.Error("point behind the camera reported visible")
	}
}

func TestCameraControls(t *testing.T) {
	cam := NewCamera()
	cam.RotatePitch(10)
	if cam.Pitch != math.Pi/2 {
		t.Errorf("pitch %v not clamped", cam.Pitch)
	}
	for i := 0; i < 50; i++ {
		cam.ZoomIn()
	}
	if cam.Zoom != 10 {
		t.Errorf("zoom %v not capped", cam.Zoom)
	}
}

func TestVesselWireframe(t *testing.T) {
	v := physics.Vessel{Radius: 2, HalfHeight: 3}

	w := VesselWireframe(v, physics.Identity{}, 24)
	if len(w.Edges) != 2*24+4 {
		t.Fatalf("got %d edges, want %d", len(w.Edges), 2*24+4)
	}
	for _, e := range w.Edges {
		for _, p := range []mgl64.Vec3{e.Start, e.End} {
			if math.Abs(math.Abs(p.Z())-3) > 1e-12 {
				t.Fatalf("point %v off the rims", p)
			}
			if r := math.Hypot(p.X(), p.Y()); math.Abs(r-2) > 1e-12 {
				t.Fatalf("point %v off the wall", p)
			}
		}
	}

	f := physics.TiltXY(0.4, 0)
	tilted := VesselWireframe(v, f, 24)
	want := f.ToWorld(mgl64.Vec3{2, 0, 3})
	if !vecNear(tilted.Edges[0].Start, want, 1e-12) {
		t.Errorf("first rim point %v, want %v", tilted.Edges[0].Start, want)
	}

	if n := len(VesselWireframe(v, nil, 1).Edges); n != 2*3+4 {
		t.Errorf("degenerate segment count gave %d edges", n)
	}
}

func TestRenderDrawsParticles(t *testing.T) {
	c := NewCanvas(20, 10)
	cam := &Camera{Distance: 30, Zoom: 1}
	ps := []dynamo.Particle{{Position: mgl64.Vec3{}}}

	Render(c, ParticleWireframe(ps), cam)

	w, h := c.DotSize()
	if !c.IsSet(w/2, h/2) {
		t.Error("particle at origin not drawn at centre")
	}
	Render(nil, nil, nil)
}

func TestSparkline(t *testing.T) {
	if got := Sparkline(nil, 4); got != "────" {
		t.Errorf("empty sparkline %q", got)
	}
	if Sparkline([]float64{1, 2, 3}, 8) == "" {
		t.Error("sparkline empty")
	}
	if got := ratioBar(0.5, 4); got != "[==--]" {
		t.Errorf("ratioBar = %q", got)
	}
	if got := ratioBar(7, 2); got != "[==]" {
		t.Errorf("ratioBar clamp = %q", got)
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
