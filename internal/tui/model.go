// Package tui is the interactive terminal front end: a single-screen
// SQL prompt with a scrolling result view.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ItsPalash13/AdvanceDB/internal/sql/executor"
)

// Model holds the TUI state.
type Model struct {
	session *executor.Session
	input   textinput.Model
	results viewport.Model

	history    []string
	historyPos int
	output     string
	lastErr    error
	ready      bool
}

// NewModel builds the initial model over a session.
func NewModel(session *executor.Session) Model {
	ti := textinput.New()
	ti.Placeholder = "SELECT * FROM ..."
	ti.Prompt = promptStyle.Render("sql> ")
	ti.CharLimit = 2000
	ti.Focus()

	return Model{
		session:    session,
		input:      ti,
		historyPos: -1,
		output:     "Type a SQL statement and press enter. Ctrl+C quits.",
	}
}

// Run starts the program and blocks until exit.
func Run(session *executor.Session) error {
	_, err := tea.NewProgram(NewModel(session), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		headerHeight := 2
		footerHeight := 3
		if !m.ready {
			m.results = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.ready = true
		} else {
			m.results.Width = msg.Width
			m.results.Height = msg.Height - headerHeight - footerHeight
		}
		m.results.SetContent(m.output)
		m.input.Width = msg.Width - 8

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		case tea.KeyUp:
			if len(m.history) > 0 {
				if m.historyPos < 0 {
					m.historyPos = len(m.history) - 1
				} else if m.historyPos > 0 {
					m.historyPos--
				}
				m.input.SetValue(m.history[m.historyPos])
				m.input.CursorEnd()
			}
			return m, nil
		case tea.KeyDown:
			if m.historyPos >= 0 && m.historyPos < len(m.history)-1 {
				m.historyPos++
				m.input.SetValue(m.history[m.historyPos])
				m.input.CursorEnd()
			} else {
				m.historyPos = -1
				m.input.SetValue("")
			}
			return m, nil
		}
	}

	var inputCmd, viewCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	m.results, viewCmd = m.results.Update(msg)
	return m, tea.Batch(inputCmd, viewCmd)
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	sql := strings.TrimSpace(m.input.Value())
	if sql == "" {
		return m, nil
	}

	m.history = append(m.history, sql)
	m.historyPos = -1
	m.input.SetValue("")

	result, err := m.session.Execute(sql)
	if err != nil {
		m.lastErr = err
		m.output = errorStyle.Render("error: " + err.Error())
	} else {
		m.lastErr = nil
		m.output = executor.FormatResult(result)
	}
	if m.ready {
		m.results.SetContent(m.output)
		m.results.GotoTop()
	}
	return m, nil
}

func (m Model) View() string {
	if !m.ready {
		return "starting..."
	}

	header := titleStyle.Render("AdvanceDB")
	body := resultStyle.Width(m.results.Width - 2).Render(m.results.View())
	footer := lipgloss.JoinVertical(lipgloss.Left,
		m.input.View(),
		helpStyle.Render(fmt.Sprintf("%d statement(s) run · up/down for history · ctrl+c to quit", len(m.history))),
	)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}
