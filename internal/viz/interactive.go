package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kajencik/3DMolecules/internal/config"
	"github.com/kajencik/3DMolecules/internal/experiment"
)

var presetInfo = map[string]string{
	"bouncy":   "springy, low damping",
	"calm":     "slow settling drift",
	"sloshing": "rocking vessel",
	"tilted":   "static tilt about x",
	"viscous":  "thick and cohesive",
}

var (
	menuTitle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	menuSub      = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	menuCursor   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	menuActive   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	menuActiveD  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	menuIdle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	menuIdleDesc = lipgloss.NewStyle().Foreground(lipgloss.Color("#444455"))
	menuKey      = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

// picker lists the presets and hands the chosen one to the live viewer.
type picker struct {
	cursor   int
	presets  []string
	base     *config.Config
	registry *experiment.Registry
	live     *Model
	err      error
}

func newPicker(base *config.Config, registry *experiment.Registry) *picker {
	return &picker{presets: config.ListPresets(), base: base, registry: registry}
}

func (p *picker) Init() tea.Cmd { return nil }

func (p *picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if p.live != nil {
		return p.live.Update(msg)
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return p, tea.Quit
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.presets)-1 {
			p.cursor++
		}
	case "enter":
		return p, p.start()
	}
	return p, nil
}

// start builds the experiment for the highlighted preset. The base config
// keeps its population size and seed.
func (p *picker) start() tea.Cmd {
	name := p.presets[p.cursor]
	cfg := config.GetPreset(name)
	if p.base != nil {
		cfg.Particles, cfg.Seed = p.base.Particles, p.base.Seed
	}
	exp := experiment.New(cfg, p.registry)
	if err := exp.Setup(nil); err != nil {
		p.err = err
		return nil
	}
	p.live = NewModel(name, exp)
	return p.live.Init()
}

func (p *picker) View() string {
	if p.live != nil {
		return p.live.View()
	}
	var b strings.Builder
	b.WriteString("\n\n    " + menuTitle.Render("MOLSIM") + "\n    " + menuSub.Render("molecules in a tilting vessel") + "\n    " + menuSub.Render("─────────────────────────") + "\n\n")
	for i, name := range p.presets {
		desc := presetInfo[name]
		if i == p.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", menuCursor.Render("▸"), menuActive.Render(fmt.Sprintf("%-12s", name)), menuActiveD.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", menuIdle.Render(fmt.Sprintf("  %-12s", name)), menuIdleDesc.Render(desc)))
		}
	}
	if p.err != nil {
		b.WriteString("\n    " + statusPaused.Render(p.err.Error()) + "\n")
	}
	b.WriteString("\n    " + menuKey.Render("j/k") + menuIdle.Render(" navigate  ") + menuKey.Render("enter") + menuIdle.Render(" select  ") + menuKey.Render("q") + menuIdle.Render(" quit") + "\n")
	return b.String()
}

// RunInteractive shows the preset menu and then the live viewer.
func RunInteractive(base *config.Config, registry *experiment.Registry) error {
	_, err := tea.NewProgram(newPicker(base, registry), tea.WithAltScreen()).Run()
	return err
}
