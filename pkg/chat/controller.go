package chat

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// AwaitSignal is the reply text the assistant sends when it wants another
	// user message before answering. It is never displayed.
	AwaitSignal = "SYSTEM_AWAIT_NEXT_INPUT"

	// Follow-up messages the client sends on the user's behalf.
	MessageConfirmChange  = "Confirm Change"
	MessageResearch       = "Re-search"
	MessageHumanAssistant = "Human Assistant"

	DefaultFailureText = "Service temporarily unavailable, please try again later."
	DefaultTimeout     = 60 * time.Second
)

var (
	ErrEmptyMessage = errors.New("message is empty")
	// ErrSuperseded is returned by a Send whose request was cancelled by a
	// newer Send or by Cancel.
	ErrSuperseded = errors.New("request superseded by a newer message")
)

// Assistant is the remote flight-booking assistant.
type Assistant interface {
	Chat(ctx context.Context, message, sessionID string) (Reply, error)
}

// Opener opens a purchase link in a new browsing context.
type Opener interface {
	Open(url string) error
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(url string) error

func (f OpenerFunc) Open(url string) error { return f(url) }

// Controller owns the session id and the transcript of one conversation.
// It is safe for concurrent use.
type Controller struct {
	assistant   Assistant
	opener      Opener
	timeout     time.Duration
	failureText string

	mu         sync.Mutex
	sessionID  string
	entries    []Entry
	state      State
	pending    map[string]string // correlation id -> echoed text
	generation uint64
	cancel     context.CancelFunc
}

// Option configures a Controller.
type Option func(*Controller)

// WithOpener sets the handler for purchase links.
func WithOpener(o Opener) Option {
	return func(c *Controller) { c.opener = o }
}

// WithTimeout bounds every request. Zero or negative disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) { c.timeout = d }
}

// WithFailureText overrides the entry appended when a request fails.
func WithFailureText(text string) Option {
	return func(c *Controller) {
		if text != "" {
			c.failureText = text
		}
	}
}

// New creates a Controller talking to assistant.
func New(assistant Assistant, opts ...Option) *Controller {
	c := &Controller{
		assistant:   assistant,
		timeout:     DefaultTimeout,
		failureText: DefaultFailureText,
		pending:     make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type sendOptions struct {
	correlationID string
}

// SendOption configures a single Send.
type SendOption func(*sendOptions)

// WithCorrelation marks the send as the delivery of the echo recorded by Echo.
func WithCorrelation(id string) SendOption {
	return func(o *sendOptions) { o.correlationID = id }
}

// Send records a user turn and runs one round trip to the assistant.
//
// Transport failures, bad statuses and malformed replies are not returned:
// they become a single assistant entry carrying the failure text. The only
// errors are ErrEmptyMessage (nothing recorded, nothing sent) and
// ErrSuperseded (the request was cancelled and its outcome was dropped).
func (c *Controller) Send(ctx context.Context, text string, opts ...SendOption) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}

	var so sendOptions
	for _, opt := range opts {
		opt(&so)
	}

	c.mu.Lock()
	if echoed, ok := c.pending[so.correlationID]; ok && so.correlationID != "" && echoed == text {
		delete(c.pending, so.correlationID)
	} else {
		c.entries = append(c.entries, Entry{Sender: SenderUser, Text: text})
	}

	if c.cancel != nil {
		c.cancel()
	}
	c.generation++
	gen := c.generation

	var reqCtx context.Context
	var cancel context.CancelFunc
	if c.timeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, c.timeout)
	} else {
		reqCtx, cancel = context.WithCancel(ctx)
	}
	c.cancel = cancel
	c.state = StateAwaitingResponse
	sessionID := c.sessionID
	c.mu.Unlock()
	defer cancel()

	reply, err := c.assistant.Chat(reqCtx, text, sessionID)

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		log.Printf("chat: dropping reply to superseded message %q", text)
		return ErrSuperseded
	}
	c.cancel = nil

	if err != nil {
		log.Printf("chat: request failed: %v", err)
		c.entries = append(c.entries, Entry{Sender: SenderAssistant, Text: c.failureText})
		c.state = StateIdle
		c.mu.Unlock()
		return nil
	}

	c.sessionID = reply.SessionID
	awaiting := reply.Text == AwaitSignal
	if !awaiting {
		c.entries = append(c.entries, Entry{
			Sender:      SenderAssistant,
			Text:        reply.Text,
			PurchaseURL: reply.FlightURL,
		})
	}

	switch {
	case reply.RequiresInput != nil && *reply.RequiresInput:
		c.state = StateAwaitingMoreInput
	case reply.RequiresInput != nil:
		c.state = StateIdle
	case awaiting:
		c.state = StateAwaitingMoreInput
	default:
		c.state = StateIdle
	}
	opener := c.opener
	c.mu.Unlock()

	if reply.FlightURL != "" && opener != nil {
		if err := opener.Open(reply.FlightURL); err != nil {
			log.Printf("chat: failed to open purchase link %s: %v", reply.FlightURL, err)
		}
	}
	return nil
}

// Echo records text as a system-originated entry and returns the correlation
// id under which a following Send may deliver it without a second entry.
func (c *Controller) Echo(text string) string {
	id := uuid.NewString()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending[id] = strings.TrimSpace(text)
	c.entries = append(c.entries, Entry{
		Sender:        SenderSystem,
		Text:          strings.TrimSpace(text),
		IsAwaitSignal: true,
		CorrelationID: id,
	})
	return id
}

// FollowUp echoes text into the transcript and sends it to the assistant.
func (c *Controller) FollowUp(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}
	id := c.Echo(text)
	return c.Send(ctx, text, WithCorrelation(id))
}

// Cancel aborts the outstanding request, if any. Its outcome is dropped.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel == nil {
		return
	}
	c.cancel()
	c.cancel = nil
	c.generation++
	c.state = StateIdle
}

// Entries returns a copy of the transcript.
func (c *Controller) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of entries.
func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// SessionID returns the id issued by the assistant, empty before the first exchange.
func (c *Controller) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// InputEnabled reports whether a new message may be submitted.
func (c *Controller) InputEnabled() bool {
	return c.State() != StateAwaitingResponse
}
