package tui

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/sokinpui/itc/internal/collector"
	"github.com/sokinpui/itc/itc"
	"github.com/sokinpui/itc/model"
)

// --- Styles ---
var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")) // Mauve
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))            // Green
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("197"))           // Red
	pathStyle    = lipgloss.NewStyle()
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

// ErrCancelled is the run's error when the user quits before the copy finished.
var ErrCancelled = errors.New("cancelled before the copy finished")

// --- Messages ---
type summaryMsg struct {
	model.Summary
}

type progressMsg struct {
	current, total int
}

type errorMsg struct{ err error }

func (e errorMsg) Error() string { return e.err.Error() }

// --- Model ---
type Model struct {
	app      *itc.App
	spinner  spinner.Model
	state    state
	progress progressMsg
	summary  summaryMsg
	err      error
}

type state int

const (
	stateProcessing state = iota
	stateSummary
	stateError
)

// New creates the TUI model. The summary view takes over the job of the
// terminal notifier.
func New(app *itc.App) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	app.SetNotifier(collector.NotifierFunc(func(string) {}))
	return &Model{
		app:     app,
		spinner: s,
		state:   stateProcessing,
	}
}

// SetProgram routes progress updates from the app into the running program.
func (m *Model) SetProgram(p *tea.Program) {
	m.app.SetProgressCallback(func(current, total int) {
		p.Send(progressMsg{current: current, total: total})
	})
}

// Err returns the error the run ended with, if any.
func (m *Model) Err() error {
	return m.err
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.runApp)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.state == stateProcessing {
				m.state = stateError
				m.err = ErrCancelled
			}
			return m, tea.Quit
		}

	case progressMsg:
		m.progress = msg

	case summaryMsg:
		// The copy finished, even if a quit key arrived first.
		m.state = stateSummary
		m.summary = msg
		m.err = nil
		return m, tea.Quit

	case errorMsg:
		m.state = stateError
		m.err = msg.err
		return m, tea.Quit

	default:
		var cmd tea.Cmd
		if m.state == stateProcessing {
			m.spinner, cmd = m.spinner.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

func (m *Model) View() string {
	switch m.state {
	case stateProcessing:
		if m.progress.total > 0 {
			return fmt.Sprintf("%s Reading %d/%d files...", m.spinner.View(), m.progress.current, m.progress.total)
		}
		return fmt.Sprintf("%s Collecting...", m.spinner.View())
	case stateError:
		return errorStyle.Render("Error: "+m.err.Error()) + "\n"
	case stateSummary:
		return m.renderSummary()
	default:
		return ""
	}
}

func (m *Model) renderSummary() string {
	var b strings.Builder

	if m.summary.Message != "" {
		b.WriteString(headerStyle.Render(m.summary.Message))
		b.WriteString("\n\n")
	}

	if len(m.summary.Copied) == 0 {
		b.WriteString(faintStyle.Render("No files were selected."))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(successStyle.Render(fmt.Sprintf("Copied %d file(s), %s to %s:",
		len(m.summary.Copied), humanize.Bytes(uint64(m.summary.Bytes)), m.summary.Destination)))
	b.WriteString("\n")
	for _, f := range m.summary.Copied {
		b.WriteString(fmt.Sprintf("  %s\n", pathStyle.Render(f)))
	}
	return b.String()
}

func (m *Model) runApp() tea.Msg {
	summary, err := m.app.Execute()
	if err != nil {
		// Check for detailed error to print stack
		if e, ok := err.(*itc.DetailedError); ok {
			// The TUI will exit, so we can print to stderr here for the stack trace.
			fmt.Fprintf(os.Stderr, "\n--- Stack Trace ---\n%s\n", e.Stack)
		}
		return errorMsg{err}
	}
	return summaryMsg{
		Summary: summary,
	}
}
