package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/schardosin/smartflight/pkg/chat"
	"github.com/schardosin/smartflight/pkg/dialog"
	"github.com/schardosin/smartflight/pkg/ui"
)

// ConsoleConfig contains configuration for the chat console
type ConsoleConfig struct {
	Controller     *chat.Controller
	HumanAssistant bool
}

// SetupLogging points the standard logger at path, or discards it when path
// is empty. The terminal belongs to the TUI, so nothing may log to stderr.
func SetupLogging(path string) (io.Closer, error) {
	if path == "" {
		log.SetOutput(io.Discard)
		return io.NopCloser(nil), nil
	}
	f, err := tea.LogToFile(path, "smartflight")
	if err != nil {
		return nil, fmt.Errorf("failed to open debug log: %w", err)
	}
	return f, nil
}

// RunConsole runs the chat TUI until the user quits or ctx is done.
func RunConsole(ctx context.Context, cfg *ConsoleConfig) error {
	model := NewChatModel(ctx, cfg.Controller, cfg.HumanAssistant)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("console failed: %w", err)
	}
	return nil
}

// replyMsg arrives when a round trip to the assistant has finished.
type replyMsg struct{ err error }

// ChatModel is the Bubble Tea model of the conversation screen.
type ChatModel struct {
	ctx        context.Context
	controller *chat.Controller

	bar      *ui.InputBar
	input    textinput.Model
	spinner  spinner.Model
	viewport viewport.Model
	dialog   dialog.Dialog

	// assistant entry index -> offer dialog already shown
	offersShown     map[int]bool
	confirmingHuman bool
	busy            bool

	width    int
	height   int
	ready    bool
	rendered int
}

func NewChatModel(ctx context.Context, controller *chat.Controller, humanAssistant bool) ChatModel {
	in := textinput.New()
	in.Placeholder = "Describe the change you need"
	in.Prompt = "› "
	in.CharLimit = 0
	in.Width = 60
	in.Focus()

	return ChatModel{
		ctx:         ctx,
		controller:  controller,
		bar:         ui.NewInputBar(humanAssistant),
		input:       in,
		spinner:     ui.NewBusySpinner(),
		offersShown: make(map[int]bool),
	}
}

func (m ChatModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.update(msg)
	m.refresh()
	return m, cmd
}

func (m *ChatModel) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.Width = max(msg.Width-4, 10)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, 1)
			m.ready = true
		}
		return nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case replyMsg:
		m.busy = false
		m.bar.SetDisabled(false)
		m.input.Focus()
		if msg.err != nil && !errors.Is(msg.err, chat.ErrSuperseded) {
			log.Printf("launcher: send failed: %v", msg.err)
		}
		m.checkOffers()
		return nil

	case spinner.TickMsg:
		if !m.busy {
			return nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *ChatModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()

	switch {
	case key == "ctrl+c":
		m.controller.Cancel()
		return tea.Quit

	case m.dialog.IsOpen():
		if text, ok := m.dialog.HandleKey(key); ok {
			return m.followUp(text)
		}
		return nil

	case m.confirmingHuman:
		switch key {
		case "y", "Y":
			m.confirmingHuman = false
			if text, ok := m.bar.RequestHuman(func(string) bool { return true }); ok {
				return m.followUp(text)
			}
		case "n", "N", "esc":
			m.confirmingHuman = false
		}
		return nil

	case key == "pgup" || key == "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd

	case m.busy:
		if key == "esc" {
			m.controller.Cancel()
		}
		return nil

	case key == "ctrl+h":
		if m.bar.HumanAssistantEnabled() {
			m.confirmingHuman = true
		}
		return nil

	case key == "enter":
		m.bar.SetDraft(m.input.Value())
		text, ok := m.bar.HandleEnter(false)
		if !ok {
			return nil
		}
		m.input.Reset()
		return m.send(text)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *ChatModel) startBusy() {
	m.busy = true
	m.bar.SetDisabled(true)
	m.input.Blur()
}

func (m *ChatModel) send(text string) tea.Cmd {
	m.startBusy()
	ctx, controller := m.ctx, m.controller
	return tea.Batch(
		func() tea.Msg { return replyMsg{err: controller.Send(ctx, text)} },
		m.spinner.Tick,
	)
}

// followUp echoes text into the transcript right away and sends it in the
// background under the echo's correlation id.
func (m *ChatModel) followUp(text string) tea.Cmd {
	id := m.controller.Echo(text)
	m.startBusy()
	ctx, controller := m.ctx, m.controller
	return tea.Batch(
		func() tea.Msg { return replyMsg{err: controller.Send(ctx, text, chat.WithCorrelation(id))} },
		m.spinner.Tick,
	)
}

// checkOffers opens the dialog for the newest offer not shown before.
func (m *ChatModel) checkOffers() {
	for i, e := range m.controller.Entries() {
		if m.offersShown[i] {
			continue
		}
		if o, ok := ui.OfferFor(e); ok {
			m.dialog.Open(o)
			m.offersShown[i] = true
		}
	}
}

func (m *ChatModel) refresh() {
	if !m.ready {
		return
	}
	entries := m.controller.Entries()
	followBottom := m.viewport.AtBottom() || len(entries) != m.rendered

	m.viewport.Width = m.width
	m.viewport.Height = max(m.height-lipgloss.Height(m.headerView())-lipgloss.Height(m.footerView()), 1)
	m.viewport.SetContent(ui.RenderTranscript(entries, m.width))
	if followBottom {
		m.viewport.GotoBottom()
	}
	m.rendered = len(entries)
}

func (m ChatModel) headerView() string {
	return ui.TitleStyle.Render(ui.AppTitle) + "\n"
}

func (m ChatModel) footerView() string {
	switch {
	case m.dialog.IsOpen():
		return "\n" + m.dialog.View(m.width)
	case m.confirmingHuman:
		return "\n" + ui.HumanAssistantPrompt + ui.HintStyle.Render(" (y/n)")
	case m.busy:
		return "\n" + m.spinner.View() + " " + ui.BusyLabel + ui.HintStyle.Render("  esc cancel")
	}

	hint := "enter send • pgup/pgdown scroll • ctrl+c quit"
	if m.bar.HumanAssistantEnabled() {
		hint = "enter send • ctrl+h human assistant • pgup/pgdown scroll • ctrl+c quit"
	}
	status := ""
	if m.controller.State() == chat.StateAwaitingMoreInput {
		status = ui.HintStyle.Render("The assistant is waiting for more details.") + "\n"
	}
	return "\n" + status + m.input.View() + "\n" + ui.HintStyle.Render(hint)
}

func (m ChatModel) View() string {
	if !m.ready {
		return "Loading..."
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.headerView(), m.viewport.View(), m.footerView())
}
