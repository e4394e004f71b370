package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kestrelworks/assetkit"
	"github.com/kestrelworks/assetkit/engine"
	"github.com/kestrelworks/assetkit/notify"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// requestRow is one issued request, erased over the handle's result type.
type requestRow struct {
	key     string
	verb    string
	state   func() notify.State
	summary func() string
	release func() error
}

type interactiveModel struct {
	eng     *engine.Sim
	assets  []engine.CatalogAsset
	rows    []*requestRow
	spin    spinner.Model
	cursor  int
	stepped int64
}

type frameMsg time.Time

func frameTick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func newInteractiveModel(eng *engine.Sim, catalog *engine.Catalog) *interactiveModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return &interactiveModel{
		eng:    eng,
		assets: catalog.Assets,
		spin:   sp,
	}
}

func runInteractive(eng *engine.Sim, catalog *engine.Catalog) error {
	m := newInteractiveModel(eng, catalog)
	p := tea.NewProgram(m)
	_, err := p.Run()
	for _, row := range m.rows {
		_ = row.release()
	}
	return err
}

func (m *interactiveModel) Init() tea.Cmd {
	return tea.Batch(frameTick(), m.spin.Tick)
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		m.eng.Step()
		m.stepped++
		return m, frameTick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.assets)-1 {
				m.cursor++
			}
		case "enter", "l":
			m.load(m.assets[m.cursor])
		case "s":
			m.spawnRow(m.assets[m.cursor])
		case "r":
			if len(m.rows) > 0 {
				last := m.rows[len(m.rows)-1]
				_ = last.release()
			}
		}
	}
	return m, nil
}

func (m *interactiveModel) load(asset engine.CatalogAsset) {
	h := assetkit.Load[any](m.eng, asset.Key)
	m.rows = append(m.rows, &requestRow{
		key:   asset.Key,
		verb:  "load",
		state: h.Future().State,
		summary: func() string {
			v, err := h.Future().Result()
			if err != nil {
				return err.Error()
			}
			return describe(v)
		},
		release: h.Release,
	})
}

func (m *interactiveModel) spawnRow(asset engine.CatalogAsset) {
	h := assetkit.Instantiate[any](m.eng, asset.Key)
	m.rows = append(m.rows, &requestRow{
		key:   asset.Key,
		verb:  "spawn",
		state: h.Future().State,
		summary: func() string {
			spawned, err := h.Future().Result()
			if err != nil {
				return err.Error()
			}
			return "spawned " + spawned.Instance.Name()
		},
		release: h.Release,
	})
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("loadsim"))
	b.WriteString(fmt.Sprintf("  frame %d, %d live instances\n\n",
		m.eng.Frame(), m.eng.LiveInstances()))

	for i, a := range m.assets {
		line := fmt.Sprintf("%s  %s", keyStyle.Render(fmt.Sprintf("%-24s", a.Key)),
			typeStyle.Render(a.Type))
		if i == m.cursor {
			line = selectedStyle.Render(fmt.Sprintf("> %-24s  %s", a.Key, a.Type))
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}

	if len(m.rows) > 0 {
		b.WriteByte('\n')
		for _, row := range m.rows {
			b.WriteString(m.renderRow(row))
			b.WriteByte('\n')
		}
	}

	b.WriteByte('\n')
	b.WriteString(helpStyle.Render("enter: load • s: spawn • r: release last • q: quit"))
	b.WriteByte('\n')
	return b.String()
}

func (m *interactiveModel) renderRow(row *requestRow) string {
	prefix := fmt.Sprintf("%-5s %-24s ", row.verb, row.key)
	switch row.state() {
	case notify.Pending:
		return prefix + m.spin.View() + " loading"
	case notify.Succeeded:
		return prefix + doneStyle.Render(row.summary())
	case notify.Canceled:
		return prefix + helpStyle.Render("canceled")
	default:
		return prefix + errStyle.Render(row.summary())
	}
}
