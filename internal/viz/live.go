package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/kajencik/3DMolecules/internal/config"
	"github.com/kajencik/3DMolecules/internal/dynamo"
	"github.com/kajencik/3DMolecules/internal/experiment"
	"github.com/kajencik/3DMolecules/internal/metrics"
	"github.com/kajencik/3DMolecules/internal/physics"
	"github.com/kajencik/3DMolecules/internal/sim"
)

const (
	width           = 64
	height          = 24
	historyCapacity = 240

	tiltStep      = 0.05
	maxTilt       = math.Pi / 3
	populationHop = 10
	cameraStep    = 0.1
)

// tunables are the parameters exposed to the arrow keys, in display order.
var tunables = []string{"viscosity", "cohesion", "damping", "gravity", "restitution", "stiffness_far", "stiffness_near"}

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model is the live viewer. Every frame advances the simulation by one dt
// inside a vessel the user tilts from the keyboard.
type Model struct {
	sim       *sim.Simulator
	source    physics.Source
	particles []dynamo.Particle
	initial   []dynamo.Particle
	name      string

	t, dt         float64
	tiltX, tiltY  float64
	initTiltX     float64
	initTiltY     float64
	initialParams physics.Params
	canvas        *Canvas
	camera        *Camera
	running       bool
	showHelp      bool
	selected      int
	last          dynamo.Diagnostics
	collisionHist []float64
	energyHist    []float64
	width, height int
	err           error
}

// NewModel wraps an experiment that has already been set up. Rocking tilt
// modes start from their amplitude; the keyboard takes over from there.
func NewModel(name string, exp *experiment.Experiment) *Model {
	cfg := exp.Config()
	tx, ty := 0.0, 0.0
	if cfg.Tilt.Mode != config.TiltNone && cfg.Tilt.Mode != "" {
		tx, ty = cfg.Tilt.AngleX, cfg.Tilt.AngleY
	}
	s := exp.GetSimulator()
	m := &Model{
		sim:           s,
		source:        exp.Factory(),
		particles:     dynamo.CloneParticles(exp.Particles()),
		initial:       dynamo.CloneParticles(exp.Particles()),
		name:          name,
		dt:            cfg.Dt,
		tiltX:         tx,
		tiltY:         ty,
		initTiltX:     tx,
		initTiltY:     ty,
		initialParams: s.Params(),
		canvas:        NewCanvas(width, height),
		camera:        NewCamera(),
		running:       true,
		width:         width,
		height:        height,
	}
	m.applyTilt()
	return m
}

func (m *Model) Init() tea.Cmd { return tick() }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg.String())
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) handleKey(key string) tea.Cmd {
	switch key {
	case "q", "ctrl+c":
		return tea.Quit
	case " ":
		m.running = !m.running
	case "r":
		m.reset()
	case "?":
		m.showHelp = !m.showHelp
	case "tab":
		m.selected = (m.selected + 1) % len(tunables)
	case "up", "k":
		m.adjustParam(1.05)
	case "down", "j":
		m.adjustParam(0.95)
	case "w":
		m.tilt(tiltStep, 0)
	case "s":
		m.tilt(-tiltStep, 0)
	case "a":
		m.tilt(0, -tiltStep)
	case "d":
		m.tilt(0, tiltStep)
	case "o":
		m.tiltX, m.tiltY = 0, 0
		m.applyTilt()
	case ">", ".":
		m.resize(len(m.particles) + populationHop)
	case "<", ",":
		m.resize(len(m.particles) - populationHop)
	case "x":
		m.camera.RotatePitch(cameraStep)
	case "X":
		m.camera.RotatePitch(-cameraStep)
	case "y":
		m.camera.RotateYaw(cameraStep)
	case "Y":
		m.camera.RotateYaw(-cameraStep)
	case "+", "=":
		m.camera.ZoomIn()
	case "-", "_":
		m.camera.ZoomOut()
	}
	return nil
}

func (m *Model) step() {
	m.last = m.sim.Tick(m.particles, m.t, m.dt)
	m.t += m.dt
	m.collisionHist = appendCapped(m.collisionHist, float64(m.last.Collisions))
	m.energyHist = appendCapped(m.energyHist, metrics.Kinetic(m.particles))
}

func appendCapped(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > historyCapacity {
		h = h[len(h)-historyCapacity:]
	}
	return h
}

func (m *Model) reset() {
	m.particles = dynamo.CloneParticles(m.initial)
	m.t = 0
	m.tiltX, m.tiltY = m.initTiltX, m.initTiltY
	m.collisionHist, m.energyHist = nil, nil
	m.last = dynamo.Diagnostics{}
	m.err = m.sim.SetParams(m.initialParams)
	m.applyTilt()
}

// adjustParam scales the selected tunable. Zero can't be scaled, so it is
// nudged off zero in the requested direction first.
func (m *Model) adjustParam(factor float64) {
	name := tunables[m.selected]
	v := m.sim.GetParams()[name]
	if v == 0 {
		v = 0.01
		if factor < 1 {
			v = -0.01
		}
	} else {
		v *= factor
	}
	m.err = m.sim.SetParam(name, v)
}

func (m *Model) tilt(dx, dy float64) {
	m.tiltX = clampTilt(m.tiltX + dx)
	m.tiltY = clampTilt(m.tiltY + dy)
	m.applyTilt()
}

func clampTilt(a float64) float64 { return math.Max(-maxTilt, math.Min(maxTilt, a)) }

func (m *Model) applyTilt() {
	m.sim.SetFrames(sim.StaticTilt{Frame: physics.TiltXY(m.tiltX, m.tiltY)})
}

func (m *Model) resize(n int) {
	m.particles = physics.Resize(m.particles, n, m.source)
}

// Frame returns the vessel orientation currently applied.
func (m *Model) Frame() physics.Frame { return m.sim.Frames().FrameAt(m.t) }

func (m *Model) Particles() []dynamo.Particle { return m.particles }

func (m *Model) draw() {
	m.canvas.Clear()
	Render(m.canvas, VesselWireframe(m.sim.Params().Vessel, m.Frame(), 24), m.camera)
	Render(m.canvas, ParticleWireframe(m.particles), m.camera)
}

func (m *Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.name)) + "\n")
	if m.running {
		s.WriteString(statusRunning.Render("RUNNING") + "\n\n")
	} else {
		s.WriteString(statusPaused.Render("PAUSED") + "\n\n")
	}

	if len(m.collisionHist) > 1 {
		chart := asciigraph.Plot(m.collisionHist, asciigraph.Height(4), asciigraph.Width(32), asciigraph.Caption("Collisions"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	s.WriteString(labelStyle.Render("Energy") + Sparkline(m.energyHist, 24) + "\n\n")

	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.2fs", m.t)) + "\n")
	s.WriteString(labelStyle.Render("Particles") + valueStyle.Render(fmt.Sprintf("%d", len(m.particles))) + "\n")
	s.WriteString(labelStyle.Render("Step") + valueStyle.Render(m.last.String()) + "\n")
	s.WriteString(labelStyle.Render("Tilt") + valueStyle.Render(fmt.Sprintf("x=%+.2f y=%+.2f rad", m.tiltX, m.tiltY)) + "\n")

	s.WriteString("\nPARAMETERS\n")
	params := m.sim.GetParams()
	initial := m.initialParams.GetParams()
	for i, k := range tunables {
		val := params[k]
		ratio := 0.5
		if ref := math.Abs(initial[k]); ref > 0 {
			ratio = math.Abs(val) / (2 * ref)
		}
		line := fmt.Sprintf("%-14s %s %.3f", k, ratioBar(ratio, 10), val)
		if i == m.selected {
			s.WriteString(activeParamStyle.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + valueStyle.Render(line) + "\n")
		}
	}
	if m.err != nil {
		s.WriteString("\n" + statusPaused.Render(m.err.Error()) + "\n")
	}
	s.WriteString(helpStyle.Render("SP:Pause R:Reset Q:Quit ?:Help\nWASD:Tilt O:Level <>:Population"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return helpText + "\n\n" + mainView
	}
	return mainView
}

const helpText = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  R        - Reset simulation         ║
║  Q        - Quit                     ║
║  Tab      - Cycle parameters         ║
║  Up/K     - Increase parameter (+5%) ║
║  Down/J   - Decrease parameter (-5%) ║
║  W/S      - Tilt about x             ║
║  A/D      - Tilt about y             ║
║  O        - Level the vessel         ║
║  > <      - Add/remove 10 molecules  ║
║  x/X y/Y  - Orbit camera             ║
║  + -      - Zoom                     ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`

// RunLive opens the viewer full screen and blocks until the user quits.
func RunLive(name string, exp *experiment.Experiment) error {
	_, err := tea.NewProgram(NewModel(name, exp), tea.WithAltScreen()).Run()
	return err
}
