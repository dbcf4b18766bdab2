package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/kajencik/3DMolecules/internal/dynamo"
	"github.com/kajencik/3DMolecules/internal/physics"
	"github.com/kajencik/3DMolecules/internal/viz"
)

const svgHeader = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`

// CanvasToSVG converts a braille canvas to SVG, one circle per lit dot.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}
	dw, dh := canvas.DotSize()
	w, h := int(float64(dw)*scale), int(float64(dh)*scale)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(svgHeader, w, h, w, h))
	sb.WriteString("<g fill=\"#00ff00\">\n")
	for y := 0; y < dh; y++ {
		for x := 0; x < dw; x++ {
			if canvas.IsSet(x, y) {
				sb.WriteString(fmt.Sprintf("<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n",
					(float64(x)+0.5)*scale, (float64(y)+0.5)*scale, scale*0.4))
			}
		}
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// SnapshotToSVG draws a side view of a frame: world x across, world z up.
// The vessel is drawn as its x-z cross-section under f and each molecule
// as a circle of the vessel margin.
func SnapshotToSVG(snap dynamo.Snapshot, vessel physics.Vessel, f physics.Frame, size int) string {
	if size <= 0 {
		size = 400
	}
	if f == nil {
		f = physics.Identity{}
	}

	// the bounding sphere of the vessel fits any tilt
	extent := math.Hypot(vessel.Radius, vessel.HalfHeight) * 1.1
	if extent == 0 {
		extent = 1
	}
	scale := float64(size) / (2 * extent)
	toScreen := func(p mgl64.Vec3) (float64, float64) {
		return (p.X() + extent) * scale, (extent - p.Z()) * scale
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(svgHeader, size, size, size, size))

	corners := []mgl64.Vec3{
		{-vessel.Radius, 0, -vessel.HalfHeight},
		{vessel.Radius, 0, -vessel.HalfHeight},
		{vessel.Radius, 0, vessel.HalfHeight},
		{-vessel.Radius, 0, vessel.HalfHeight},
	}
	pts := make([]string, len(corners))
	for i, c := range corners {
		x, y := toScreen(f.ToWorld(c))
		pts[i] = fmt.Sprintf("%.1f,%.1f", x, y)
	}
	sb.WriteString(fmt.Sprintf("<polygon fill=\"none\" stroke=\"#888888\" stroke-width=\"1.5\" points=\"%s\"/>\n", strings.Join(pts, " ")))

	r := math.Max(vessel.Margin*scale, 1)
	sb.WriteString("<g fill=\"#00ccff\" fill-opacity=\"0.8\">\n")
	for _, p := range snap.Particles {
		x, y := toScreen(p.Position)
		sb.WriteString(fmt.Sprintf("<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", x, y, r))
	}
	sb.WriteString("</g>\n")
	sb.WriteString(fmt.Sprintf("<text x=\"8\" y=\"18\" fill=\"#cccccc\" font-family=\"monospace\" font-size=\"12\">step %d  t=%.2fs  n=%d</text>\n",
		snap.Step, snap.Time, len(snap.Particles)))
	sb.WriteString("</svg>")
	return sb.String()
}

// SeriesToSVG plots ys against xs as a single path.
func SeriesToSVG(xs, ys []float64, width, height int, strokeColor string) string {
	n := min(len(xs), len(ys))
	if n < 2 {
		return ""
	}
	xs, ys = xs[:n], ys[:n]

	minX, maxX := bounds(xs)
	minY, maxY := bounds(ys)
	rangeX, rangeY := maxX-minX, maxY-minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	// 10% padding
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(svgHeader, width, height, width, height))
	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokeColor))
	for i := range xs {
		x := (xs[i] - minX) / rangeX * float64(width)
		y := float64(height) - (ys[i]-minY)/rangeY*float64(height)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}
	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}

func bounds(v []float64) (float64, float64) {
	lo, hi := v[0], v[0]
	for _, x := range v[1:] {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	return lo, hi
}
