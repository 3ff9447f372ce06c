package ui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// BusyLabel is shown while a message is on its way to the assistant.
const BusyLabel = "Sending..."

var ErrInterrupted = errors.New("interrupted")

// NewBusySpinner returns the spinner shown next to the busy label.
func NewBusySpinner() spinner.Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return s
}

type spinnerDoneMsg struct{}

// SpinnerModel shows a spinner until the work it waits for is done.
type SpinnerModel struct {
	spinner  spinner.Model
	text     string
	done     bool
	quitting bool
}

func NewSpinner(text string) SpinnerModel {
	return SpinnerModel{spinner: NewBusySpinner(), text: text}
}

func (m SpinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m SpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
	case spinnerDoneMsg:
		m.done = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func (m SpinnerModel) View() string {
	if m.done || m.quitting {
		return ""
	}
	return fmt.Sprintf("%s %s", m.spinner.View(), m.text)
}

// RunWithSpinner runs fn while a spinner labelled text is shown. Ctrl+C
// cancels the context passed to fn and returns ErrInterrupted.
func RunWithSpinner(ctx context.Context, text string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewSpinner(text))

	var fnErr error
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		fnErr = fn(ctx)
		p.Send(spinnerDoneMsg{})
	}()

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("spinner failed: %w", err)
	}
	if m, ok := final.(SpinnerModel); ok && m.quitting {
		cancel()
		return ErrInterrupted
	}
	<-finished
	return fnErr
}
