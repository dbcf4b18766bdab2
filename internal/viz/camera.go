package viz

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/kajencik/3DMolecules/internal/dynamo"
	"github.com/kajencik/3DMolecules/internal/physics"
)

// Camera orbits the origin. World z is screen up at zero pitch; yaw spins
// about world z and pitch tips the view towards looking down.
type Camera struct {
	Yaw, Pitch float64
	Distance   float64
	Zoom       float64
}

func NewCamera() *Camera {
	return &Camera{Pitch: 0.35, Distance: 30, Zoom: 1.0}
}

func (c *Camera) RotateYaw(a float64)   { c.Yaw += a }
func (c *Camera) RotatePitch(a float64) { c.Pitch = mgl64.Clamp(c.Pitch+a, -math.Pi/2, math.Pi/2) }
func (c *Camera) ZoomIn()               { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut()              { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

// view maps world space into camera space: x right, y up, z towards the
// viewer.
func (c *Camera) view() mgl64.Mat3 {
	// world z up -> camera y up
	toCamera := mgl64.Mat3{1, 0, 0, 0, 0, -1, 0, 1, 0}
	return mgl64.Rotate3DX(c.Pitch).Mul3(toCamera).Mul3(mgl64.Rotate3DZ(-c.Yaw))
}

// Project converts a world point to dot coordinates on a sw x sh surface.
// It returns the dot position, a depth for sorting and whether the point
// lands on screen.
func (c *Camera) Project(p mgl64.Vec3, sw, sh int) (int, int, float64, bool) {
	v := c.view().Mul3x1(p).Mul(c.Zoom)
	if v.Z() >= c.Distance-0.1 {
		return 0, 0, 0, false
	}
	scale := c.Distance / (c.Distance - v.Z())
	unit := float64(min(sw, sh)) / 12.0
	sx := int(math.Round(v.X()*scale*unit)) + sw/2
	sy := int(math.Round(-v.Y()*scale*unit)) + sh/2
	return sx, sy, v.Z(), sx >= 0 && sx < sw && sy >= 0 && sy < sh
}

type Edge struct {
	Start, End mgl64.Vec3
}

type Wireframe struct{ Edges []Edge }

func NewWireframe() *Wireframe               { return &Wireframe{Edges: make([]Edge, 0)} }
func (w *Wireframe) AddEdge(s, e mgl64.Vec3) { w.Edges = append(w.Edges, Edge{s, e}) }
func (w *Wireframe) AddPoint(p mgl64.Vec3)   { w.Edges = append(w.Edges, Edge{p, p}) }
func (w *Wireframe) Clear()                  { w.Edges = w.Edges[:0] }

type projectedEdge struct {
	x1, y1, x2, y2 int
	depth          float64
}

// Render draws the wireframe back to front.
func Render(c *Canvas, w *Wireframe, cam *Camera) {
	if c == nil || w == nil || cam == nil {
		return
	}
	sw, sh := c.DotSize()
	proj := make([]projectedEdge, 0, len(w.Edges))
	for _, e := range w.Edges {
		x1, y1, d1, v1 := cam.Project(e.Start, sw, sh)
		x2, y2, d2, v2 := cam.Project(e.End, sw, sh)
		if v1 || v2 {
			proj = append(proj, projectedEdge{x1, y1, x2, y2, (d1 + d2) / 2})
		}
	}
	sort.Slice(proj, func(i, j int) bool { return proj[i].depth < proj[j].depth })
	for _, e := range proj {
		if e.x1 == e.x2 && e.y1 == e.y2 {
			c.Set(e.x1, e.y1)
		} else {
			c.DrawLine(e.x1, e.y1, e.x2, e.y2)
		}
	}
}

// VesselWireframe outlines the cylinder in world space for frame f: both
// rims plus four vertical struts.
func VesselWireframe(v physics.Vessel, f physics.Frame, segments int) *Wireframe {
	if segments < 3 {
		segments = 3
	}
	if f == nil {
		f = physics.Identity{}
	}
	w := NewWireframe()
	rim := func(i int, z float64) mgl64.Vec3 {
		a := 2 * math.Pi * float64(i) / float64(segments)
		return f.ToWorld(mgl64.Vec3{v.Radius * math.Cos(a), v.Radius * math.Sin(a), z})
	}
	for i := 0; i < segments; i++ {
		w.AddEdge(rim(i, v.HalfHeight), rim(i+1, v.HalfHeight))
		w.AddEdge(rim(i, -v.HalfHeight), rim(i+1, -v.HalfHeight))
	}
	for k := 0; k < 4; k++ {
		i := k * segments / 4
		w.AddEdge(rim(i, v.HalfHeight), rim(i, -v.HalfHeight))
	}
	return w
}

// ParticleWireframe adds one point per particle.
func ParticleWireframe(ps []dynamo.Particle) *Wireframe {
	w := &Wireframe{Edges: make([]Edge, 0, len(ps))}
	for i := range ps {
		w.AddPoint(ps[i].Position)
	}
	return w
}
