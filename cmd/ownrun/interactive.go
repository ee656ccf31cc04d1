package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tessalab/own-runtime/scenario"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	opStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#98FB98"))

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	ownedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	movedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	borrowedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type interactiveModel struct {
	runner   *scenario.Runner
	scn      *scenario.Scenario
	filename string
	last     *scenario.StepResult
	log      viewport.Model
	showLog  bool
	finished bool
	closeErr error
	width    int
}

func newInteractiveModel(filename string, scn *scenario.Scenario) *interactiveModel {
	vp := viewport.New(80, 10)
	return &interactiveModel{
		runner:   scenario.NewRunner(scn),
		scn:      scn,
		filename: filename,
		log:      vp,
	}
}

func runInteractive(filename string) error {
	scn, err := scenario.Load(filename)
	if err != nil {
		return err
	}

	m := newInteractiveModel(filename, scn)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.log.Width = msg.Width - 4
		m.log.Height = 10

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if !m.finished {
				m.closeErr = m.runner.Close()
			}
			return m, tea.Quit

		case " ", "enter":
			m.step()

		case "r":
			for !m.runner.Done() {
				m.step()
			}

		case "t":
			m.showLog = !m.showLog
			m.refreshLog()
		}
	}

	if m.showLog {
		var cmd tea.Cmd
		m.log, cmd = m.log.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *interactiveModel) step() {
	if m.runner.Done() {
		if !m.finished {
			m.closeErr = m.runner.Close()
			m.finished = true
			m.refreshLog()
		}
		return
	}
	res, ok := m.runner.Step()
	if ok {
		m.last = &res
	}
	m.refreshLog()
}

func (m *interactiveModel) refreshLog() {
	m.log.SetContent(m.runner.Recorder().Format())
	m.log.GotoBottom()
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Ownership Inspector"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	b.WriteString("Script:\n")
	for i, op := range m.scn.Ops {
		line := fmt.Sprintf("  %-10s %s", op.Kind, opTarget(op))
		switch {
		case i == m.runner.Pos() && !m.runner.Done():
			b.WriteString(cursorStyle.Render("> " + line[2:]))
		case i < m.runner.Pos():
			b.WriteString(movedStyle.Render(line))
		default:
			b.WriteString(opStyle.Render(line))
		}
		b.WriteString("\n")
	}

	if m.last != nil {
		b.WriteString("\nLast step: ")
		if m.last.Err != nil {
			b.WriteString(errorStyle.Render(m.last.Err.Error()))
		} else {
			b.WriteString(ownedStyle.Render(m.last.Note))
		}
		b.WriteString("\n")
	}

	b.WriteString("\nBindings:\n")
	for _, sc := range m.runner.Store().Snapshot() {
		fmt.Fprintf(&b, "  scope %s\n", sc.Label)
		for _, bi := range sc.Bindings {
			line := fmt.Sprintf("    %-12s %-9s %-8s len=%d", bi.Name, bi.State, bi.Resource, bi.Len)
			switch bi.State {
			case "owned":
				b.WriteString(ownedStyle.Render(line))
			case "borrowed":
				b.WriteString(borrowedStyle.Render(line))
			default:
				b.WriteString(movedStyle.Render(line))
			}
			b.WriteString("\n")
		}
	}

	stats := m.runner.Store().Arena().Stats()
	fmt.Fprintf(&b, "\nAllocated %d / Released %d / Live %d\n",
		stats.Allocated, stats.Released, stats.Live())

	if m.finished {
		if m.closeErr != nil {
			b.WriteString(errorStyle.Render("Lifetime check: " + m.closeErr.Error()))
		} else {
			b.WriteString(ownedStyle.Render("Lifetime check: every resource released exactly once"))
		}
		b.WriteString("\n")
	}

	if m.showLog {
		b.WriteString("\nEvent log:\n")
		b.WriteString(m.log.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("space step • r run all • t toggle log • q quit"))
	return b.String()
}

func opTarget(op scenario.Op) string {
	switch op.Kind {
	case "move", "duplicate":
		return op.From + " -> " + op.Binding
	case "enter", "close":
		return op.Scope
	case "allocate":
		if op.Data != "" {
			return fmt.Sprintf("%s = %q", op.Binding, op.Data)
		}
		return op.Binding
	default:
		return op.Binding
	}
}
