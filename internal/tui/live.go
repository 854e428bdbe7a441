package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/primordial/internal/config"
	"github.com/san-kum/primordial/internal/spectrum"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	green  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	red    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

const barWidth = 40

type progressMsg struct {
	done, total int
}

type finishedMsg struct {
	src spectrum.Source
	err error
}

type model struct {
	kind    string
	done    int
	total   int
	started time.Time
	err     error
	src     spectrum.Source
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	case progressMsg:
		m.done = msg.done
		m.total = msg.total
		return m, nil
	case finishedMsg:
		m.src = msg.src
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(cyan.Render("primordial") + dim.Render("  "+m.kind) + "\n\n")

	if m.err != nil {
		b.WriteString(red.Render("error: "+m.err.Error()) + "\n")
		return b.String()
	}

	if m.total > 0 {
		filled := m.done * barWidth / m.total
		bar := green.Render(strings.Repeat("█", filled)) +
			dim.Render(strings.Repeat("░", barWidth-filled))
		b.WriteString(fmt.Sprintf("  %s %s\n", bar,
			white.Render(fmt.Sprintf("%d/%d modes", m.done, m.total))))
	} else {
		b.WriteString(yellow.Render("  preparing background evolution...") + "\n")
	}

	b.WriteString(dim.Render(fmt.Sprintf("\n  elapsed %s  press q to abort\n",
		time.Since(m.started).Round(time.Second))))
	return b.String()
}

// Summary renders the derived spectral parameters of a completed run.
func Summary(d *spectrum.Derived) string {
	var b strings.Builder
	b.WriteString(cyan.Render("derived parameters") + "\n")
	row := func(name, value string) {
		b.WriteString(dim.Render(fmt.Sprintf("  %-8s", name)) + white.Render(value) + "\n")
	}
	row("A_s", fmt.Sprintf("%.6e", d.As))
	row("n_s", fmt.Sprintf("%.6f", d.Ns))
	row("alpha_s", fmt.Sprintf("%.6f", d.AlphaS))
	row("beta_s", fmt.Sprintf("%.6f", d.BetaS))
	if d.HasTensors {
		row("r", fmt.Sprintf("%.6f", d.R))
		row("n_t", fmt.Sprintf("%.6f", d.Nt))
		row("alpha_t", fmt.Sprintf("%.6f", d.AlphaT))
	}
	return b.String()
}

// RunLive computes the configured spectrum while showing a progress view
// for the mode-by-mode integration.
func RunLive(cfg *config.Config) (spectrum.Source, error) {
	p := tea.NewProgram(model{kind: cfg.Type, started: time.Now()})

	go func() {
		src, err := cfg.Source(func(done, total int) {
			p.Send(progressMsg{done: done, total: total})
		})
		p.Send(finishedMsg{src: src, err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	m := final.(model)
	if m.err != nil {
		return nil, m.err
	}
	if m.src == nil {
		return nil, fmt.Errorf("computation aborted")
	}
	return m.src, nil
}
