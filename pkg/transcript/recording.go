// Package transcript saves conversations to YAML so they can be replayed.
package transcript

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/schardosin/smartflight/pkg/chat"
	"gopkg.in/yaml.v3"
)

// Recording is a saved conversation.
type Recording struct {
	Title      string       `yaml:"title"`
	SessionID  string       `yaml:"session_id,omitempty"`
	RecordedAt time.Time    `yaml:"recorded_at"`
	Width      int          `yaml:"width"`
	Entries    []chat.Entry `yaml:"entries"`
}

// Source is anything holding a transcript, usually a *chat.Controller.
type Source interface {
	Entries() []chat.Entry
	SessionID() string
}

// Capture snapshots src.
func Capture(src Source, title string, width int) *Recording {
	return &Recording{
		Title:      title,
		SessionID:  src.SessionID(),
		RecordedAt: time.Now().UTC(),
		Width:      width,
		Entries:    src.Entries(),
	}
}

// Save writes r to path as YAML.
func (r *Recording) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode recording: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write recording: %w", err)
	}
	return nil
}

// Load reads a recording written by Save.
func Load(path string) (*Recording, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recording: %w", err)
	}

	var r Recording
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse recording: %w", err)
	}

	if r.Width <= 0 {
		r.Width = 80
	}
	for i, e := range r.Entries {
		switch e.Sender {
		case chat.SenderUser, chat.SenderAssistant, chat.SenderSystem:
		default:
			return nil, fmt.Errorf("entry %d: unknown sender %q", i, e.Sender)
		}
	}
	return &r, nil
}
