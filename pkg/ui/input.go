package ui

import (
	"strings"

	"github.com/schardosin/smartflight/pkg/chat"
)

// HumanAssistantPrompt is asked before escalating to a human agent.
const HumanAssistantPrompt = "Are you sure you want to request a Human Assistant?"

// InputBar holds the draft message and decides when it may be sent.
type InputBar struct {
	draft          string
	disabled       bool
	humanAssistant bool
}

// NewInputBar creates an input bar. humanAssistant enables the escalation action.
func NewInputBar(humanAssistant bool) *InputBar {
	return &InputBar{humanAssistant: humanAssistant}
}

func (b *InputBar) SetDraft(s string) { b.draft = s }

func (b *InputBar) Draft() string { return b.draft }

// SetDisabled blocks submission while a request is outstanding.
func (b *InputBar) SetDisabled(disabled bool) { b.disabled = disabled }

func (b *InputBar) Disabled() bool { return b.disabled }

func (b *InputBar) HumanAssistantEnabled() bool { return b.humanAssistant }

// Submit returns the trimmed draft and clears it. Nothing is returned while
// disabled or when the draft is blank, and the draft is then left untouched.
func (b *InputBar) Submit() (string, bool) {
	if b.disabled {
		return "", false
	}
	text := strings.TrimSpace(b.draft)
	if text == "" {
		return "", false
	}
	b.draft = ""
	return text, true
}

// HandleEnter submits on Enter. Shift+Enter inserts a line break instead.
func (b *InputBar) HandleEnter(shift bool) (string, bool) {
	if shift {
		b.draft += "\n"
		return "", false
	}
	return b.Submit()
}

// RequestHuman asks confirm and returns the escalation message on yes.
func (b *InputBar) RequestHuman(confirm func(prompt string) bool) (string, bool) {
	if !b.humanAssistant || b.disabled {
		return "", false
	}
	if confirm == nil || !confirm(HumanAssistantPrompt) {
		return "", false
	}
	return chat.MessageHumanAssistant, true
}
