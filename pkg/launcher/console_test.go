package launcher

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/schardosin/smartflight/pkg/assistant"
	"github.com/schardosin/smartflight/pkg/chat"
	"github.com/schardosin/smartflight/pkg/stub"
	"github.com/schardosin/smartflight/pkg/ui"
)

func newTestModel(t *testing.T, humanAssistant bool) (ChatModel, *[]string) {
	t.Helper()
	srv := httptest.NewServer(stub.New(stub.Config{}).Router())
	t.Cleanup(srv.Close)

	opened := &[]string{}
	controller := chat.New(
		assistant.NewClient(srv.URL, 5*time.Second),
		chat.WithOpener(chat.OpenerFunc(func(url string) error {
			*opened = append(*opened, url)
			return nil
		})),
	)

	m := NewChatModel(context.Background(), controller, humanAssistant)
	m, _ = update(m, tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, opened
}

func update(m ChatModel, msg tea.Msg) (ChatModel, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(ChatModel), cmd
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+h":
		return tea.KeyMsg{Type: tea.KeyCtrlH}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// collect runs cmd, expanding batches, and returns every message produced.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// deliver runs cmd and feeds the reply it produces back into the model.
func deliver(t *testing.T, m ChatModel, cmd tea.Cmd) ChatModel {
	t.Helper()
	delivered := false
	for _, msg := range collect(cmd) {
		if r, ok := msg.(replyMsg); ok {
			m, _ = update(m, r)
			delivered = true
		}
	}
	if !delivered {
		t.Fatal("command produced no reply")
	}
	return m
}

func submit(t *testing.T, m ChatModel, text string) (ChatModel, tea.Cmd) {
	t.Helper()
	m.input.SetValue(text)
	return update(m, key("enter"))
}

func TestSubmitDisablesInputUntilReply(t *testing.T) {
	m, _ := newTestModel(t, false)

	m, cmd := submit(t, m, "  hello  ")
	if cmd == nil {
		t.Fatal("enter produced no command")
	}
	if !m.busy || !m.bar.Disabled() {
		t.Fatal("input not disabled while the request is outstanding")
	}
	if m.input.Value() != "" {
		t.Errorf("input = %q, expected it cleared", m.input.Value())
	}
	if !strings.Contains(m.View(), ui.BusyLabel) {
		t.Errorf("View() does not show %q", ui.BusyLabel)
	}

	m.input.SetValue("second")
	if _, cmd2 := update(m, key("enter")); cmd2 != nil {
		t.Error("a second message was sent while busy")
	}

	m = deliver(t, m, cmd)
	if m.busy || m.bar.Disabled() {
		t.Error("input still disabled after the reply")
	}
	entries := m.controller.Entries()
	if len(entries) != 2 || entries[0].Text != "hello" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestBlankSubmitIgnored(t *testing.T) {
	m, _ := newTestModel(t, false)

	m, cmd := submit(t, m, "   ")
	if cmd != nil {
		t.Error("blank input produced a command")
	}
	if m.busy || m.controller.Len() != 0 {
		t.Errorf("busy = %v, entries = %d", m.busy, m.controller.Len())
	}
}

func TestOfferDialogShownOnce(t *testing.T) {
	m, opened := newTestModel(t, false)

	m, cmd := submit(t, m, "I need to change my flight")
	m = deliver(t, m, cmd)
	if !m.dialog.IsOpen() {
		t.Fatal("dialog not opened for the alternative ticket")
	}
	if m.dialog.Offer().FlightNumber != "LH720" {
		t.Errorf("offer flight = %q", m.dialog.Offer().FlightNumber)
	}

	m, cmd = update(m, key("esc"))
	if cmd != nil || !m.dialog.IsOpen() {
		t.Fatal("esc dismissed the dialog")
	}

	m, cmd = update(m, key("n"))
	if cmd == nil {
		t.Fatal("cancel produced no command")
	}
	entries := m.controller.Entries()
	if last := entries[len(entries)-1]; last.Sender != chat.SenderSystem || last.Text != chat.MessageResearch {
		t.Errorf("echo entry = %+v", last)
	}

	m = deliver(t, m, cmd)
	if m.dialog.IsOpen() {
		t.Error("dialog reopened for an offer already shown")
	}
	if len(*opened) != 0 {
		t.Errorf("opened = %v, expected nothing", *opened)
	}
	if n := m.controller.Len(); n != 4 {
		t.Errorf("Len() = %d, expected 4", n)
	}
}

func TestConfirmOpensPurchaseLink(t *testing.T) {
	m, opened := newTestModel(t, false)

	m, cmd := submit(t, m, "change my ticket please")
	m = deliver(t, m, cmd)

	m, cmd = update(m, key("y"))
	m = deliver(t, m, cmd)

	if len(*opened) != 1 {
		t.Fatalf("opened = %v, expected one link", *opened)
	}
	if !strings.HasSuffix((*opened)[0], m.controller.SessionID()) {
		t.Errorf("link %q does not carry the session id", (*opened)[0])
	}
	if !strings.Contains(m.View(), ui.LinkLabel) {
		t.Error("purchase link not rendered")
	}
}

func TestHumanAssistantPrompt(t *testing.T) {
	m, _ := newTestModel(t, true)

	m, _ = update(m, key("ctrl+h"))
	if !m.confirmingHuman {
		t.Fatal("ctrl+h did not ask for confirmation")
	}
	if !strings.Contains(m.View(), ui.HumanAssistantPrompt) {
		t.Error("prompt not shown")
	}

	m, cmd := update(m, key("n"))
	if cmd != nil || m.confirmingHuman || m.controller.Len() != 0 {
		t.Fatal("declining still sent a message")
	}

	m, _ = update(m, key("ctrl+h"))
	m, cmd = update(m, key("y"))
	if cmd == nil {
		t.Fatal("confirming produced no command")
	}
	m = deliver(t, m, cmd)

	entries := m.controller.Entries()
	if entries[0].Text != chat.MessageHumanAssistant || entries[0].Sender != chat.SenderSystem {
		t.Errorf("first entry = %+v", entries[0])
	}
	if len(entries) != 2 {
		t.Errorf("len(entries) = %d, expected echo and reply only", len(entries))
	}
	if m.controller.State() != chat.StateAwaitingMoreInput {
		t.Errorf("State() = %v", m.controller.State())
	}
}

func TestHumanAssistantDisabledVariant(t *testing.T) {
	m, _ := newTestModel(t, false)

	m, _ = update(m, key("ctrl+h"))
	if m.confirmingHuman {
		t.Error("escalation prompt shown although the action is disabled")
	}
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t, false)

	_, cmd := update(m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("ctrl+c produced no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c did not quit")
	}
}
