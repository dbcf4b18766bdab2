package analysis

import (
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/kajencik/3DMolecules/internal/dynamo"
)

// Point is one sample of a 2D portrait.
type Point struct{ X, Y float64 }

// CenterOfMass averages positions and velocities; every molecule has unit
// mass. An empty population gives zeros.
func CenterOfMass(ps []dynamo.Particle) (pos, vel mgl64.Vec3) {
	if len(ps) == 0 {
		return
	}
	for i := range ps {
		pos = pos.Add(ps[i].Position)
		vel = vel.Add(ps[i].Velocity)
	}
	n := 1 / float64(len(ps))
	return pos.Mul(n), vel.Mul(n)
}

// CenterSeries extracts the centre-of-mass coordinate axis (0=x, 1=y, 2=z)
// from each frame, along with the frame times.
func CenterSeries(frames []dynamo.Snapshot, axis int) (times, values []float64) {
	times = make([]float64, len(frames))
	values = make([]float64, len(frames))
	for i, f := range frames {
		pos, _ := CenterOfMass(f.Particles)
		times[i] = f.Time
		values[i] = pos[axis]
	}
	return times, values
}

// PhasePortrait pairs the centre-of-mass position along axis with its
// velocity, one point per frame. Sloshing shows up as a loop.
func PhasePortrait(frames []dynamo.Snapshot, axis int) []Point {
	pts := make([]Point, 0, len(frames))
	for _, f := range frames {
		pos, vel := CenterOfMass(f.Particles)
		pts = append(pts, Point{X: pos[axis], Y: vel[axis]})
	}
	return pts
}

// PhasePortraitToASCII plots points on a width x height character grid,
// with axes drawn where they cross the data.
func PhasePortraitToASCII(points []Point, width, height int) string {
	if len(points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}
	rangeX, rangeY := maxX-minX, maxY-minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	col := func(x float64) int { return int((x - minX) / rangeX * float64(width-1)) }
	row := func(y float64) int { return height - 1 - int((y-minY)/rangeY*float64(height-1)) }

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}
	for _, p := range points {
		grid[row(p.Y)][col(p.X)] = '•'
	}

	if c := col(0); minX <= 0 && minX+rangeX >= 0 {
		for r := range grid {
			if grid[r][c] == ' ' {
				grid[r][c] = '│'
			}
		}
	}
	if r := row(0); minY <= 0 && minY+rangeY >= 0 {
		for c := range grid[r] {
			if grid[r][c] == ' ' {
				grid[r][c] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, r := range grid {
		sb.WriteString(string(r))
		sb.WriteByte('\n')
	}
	return sb.String()
}
