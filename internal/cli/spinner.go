package cli

import (
	"context"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type tickMsg time.Time

type doneMsg struct {
	err error
}

// spinnerModel drives a single-line progress indicator while a long
// pipeline run is in flight. It renders to stderr so it never mixes
// with the run summary printed on stdout.
type spinnerModel struct {
	label string
	frame int
	err   error
	done  bool
}

func (m spinnerModel) Init() tea.Cmd {
	return tickCmd()
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if m.done {
			return m, nil
		}
		m.frame = (m.frame + 1) % len(spinnerFrames)
		return m, tickCmd()
	case doneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	return lipgloss.NewStyle().Foreground(colorCyan).Render(spinnerFrames[m.frame]) + " " + m.label + "\n"
}

func tickCmd() tea.Cmd {
	return tea.Tick(120*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// withSpinner runs fn while a bubbletea spinner animates on stderr,
// stopping it as soon as fn returns. Used by the align command to give
// feedback during a run long enough to span several cache misses.
func withSpinner(ctx context.Context, label string, fn func() error) error {
	if !isInteractive() {
		return fn()
	}

	program := tea.NewProgram(spinnerModel{label: label}, tea.WithOutput(os.Stderr))

	errCh := make(chan error, 1)
	go func() {
		errCh <- fn()
		program.Send(doneMsg{})
	}()

	if _, err := program.Run(); err != nil {
		<-errCh
		return err
	}
	return <-errCh
}

// isInteractive reports whether stderr looks like a terminal. The
// spinner is skipped otherwise (CI logs, piped output) since redrawing
// frames into a non-terminal just produces noise.
func isInteractive() bool {
	fi, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
