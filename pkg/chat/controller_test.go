package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type chatCall struct {
	message   string
	sessionID string
}

// fakeAssistant records calls and answers through fn.
type fakeAssistant struct {
	mu    sync.Mutex
	calls []chatCall
	fn    func(ctx context.Context, message, sessionID string) (Reply, error)
}

func (f *fakeAssistant) Chat(ctx context.Context, message, sessionID string) (Reply, error) {
	f.mu.Lock()
	f.calls = append(f.calls, chatCall{message: message, sessionID: sessionID})
	f.mu.Unlock()
	return f.fn(ctx, message, sessionID)
}

func (f *fakeAssistant) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func replyWith(r Reply) func(context.Context, string, string) (Reply, error) {
	return func(context.Context, string, string) (Reply, error) { return r, nil }
}

func boolPtr(b bool) *bool { return &b }

func TestSendRejectsBlankInput(t *testing.T) {
	tests := []string{"", "   ", "\n\t "}

	for _, text := range tests {
		fa := &fakeAssistant{fn: replyWith(Reply{Text: "hi", SessionID: "s1"})}
		c := New(fa)

		if err := c.Send(context.Background(), text); !errors.Is(err, ErrEmptyMessage) {
			t.Errorf("Send(%q) error = %v, expected ErrEmptyMessage", text, err)
		}
		if c.Len() != 0 {
			t.Errorf("Send(%q) appended %d entries, expected none", text, c.Len())
		}
		if fa.callCount() != 0 {
			t.Errorf("Send(%q) issued %d requests, expected none", text, fa.callCount())
		}
	}
}

func TestSendAppendsUserEntryBeforeReply(t *testing.T) {
	var c *Controller
	var seen []Entry
	var inputEnabled bool
	fa := &fakeAssistant{fn: func(ctx context.Context, message, sessionID string) (Reply, error) {
		seen = c.Entries()
		inputEnabled = c.InputEnabled()
		return Reply{Text: "Where would you like to fly?", SessionID: "s1"}, nil
	}}
	c = New(fa)

	if err := c.Send(context.Background(), "  change my flight  "); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if len(seen) != 1 || seen[0].Sender != SenderUser || seen[0].Text != "change my flight" {
		t.Errorf("entries during request = %+v, expected one trimmed user entry", seen)
	}
	if inputEnabled {
		t.Error("input was enabled while the request was outstanding")
	}

	entries := c.Entries()
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, expected 2", len(entries))
	}
	if entries[1].Sender != SenderAssistant || entries[1].Text != "Where would you like to fly?" {
		t.Errorf("assistant entry = %+v", entries[1])
	}
	if !c.InputEnabled() {
		t.Error("input not re-enabled after reply")
	}
	if c.State() != StateIdle {
		t.Errorf("State() = %v, expected idle", c.State())
	}
}

func TestSendEchoesSessionID(t *testing.T) {
	fa := &fakeAssistant{fn: func(ctx context.Context, message, sessionID string) (Reply, error) {
		if sessionID == "" {
			return Reply{Text: "first", SessionID: "abc"}, nil
		}
		return Reply{Text: "second", SessionID: "rotated"}, nil
	}}
	c := New(fa)

	if c.SessionID() != "" {
		t.Fatalf("SessionID() = %q before first exchange, expected empty", c.SessionID())
	}

	_ = c.Send(context.Background(), "one")
	_ = c.Send(context.Background(), "two")

	if fa.calls[0].sessionID != "" {
		t.Errorf("first request session = %q, expected empty", fa.calls[0].sessionID)
	}
	if fa.calls[1].sessionID != "abc" {
		t.Errorf("second request session = %q, expected abc", fa.calls[1].sessionID)
	}
	if c.SessionID() != "rotated" {
		t.Errorf("SessionID() = %q, expected server-rotated value", c.SessionID())
	}
}

func TestSendSuppressesAwaitSignal(t *testing.T) {
	fa := &fakeAssistant{fn: replyWith(Reply{Text: AwaitSignal, SessionID: "s-await"})}
	c := New(fa)

	if err := c.Send(context.Background(), "hello"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	entries := c.Entries()
	if len(entries) != 1 || entries[0].Sender != SenderUser {
		t.Errorf("entries = %+v, expected only the user entry", entries)
	}
	if c.SessionID() != "s-await" {
		t.Errorf("SessionID() = %q, expected s-await", c.SessionID())
	}
	if c.State() != StateAwaitingMoreInput {
		t.Errorf("State() = %v, expected awaiting_more_input", c.State())
	}
	if !c.InputEnabled() {
		t.Error("input not re-enabled after await signal")
	}
}

func TestRequiresInputOverridesAwaitHeuristic(t *testing.T) {
	tests := []struct {
		name          string
		reply         Reply
		expectedState State
		expectedLen   int
	}{
		{
			name:          "requires_input true on a normal reply",
			reply:         Reply{Text: "Need your ticket number", SessionID: "s", RequiresInput: boolPtr(true)},
			expectedState: StateAwaitingMoreInput,
			expectedLen:   2,
		},
		{
			name:          "requires_input false on the sentinel",
			reply:         Reply{Text: AwaitSignal, SessionID: "s", RequiresInput: boolPtr(false)},
			expectedState: StateIdle,
			expectedLen:   1,
		},
		{
			name:          "no flag on a normal reply",
			reply:         Reply{Text: "Done", SessionID: "s"},
			expectedState: StateIdle,
			expectedLen:   2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(&fakeAssistant{fn: replyWith(tt.reply)})
			_ = c.Send(context.Background(), "hi")

			if c.State() != tt.expectedState {
				t.Errorf("State() = %v, expected %v", c.State(), tt.expectedState)
			}
			if c.Len() != tt.expectedLen {
				t.Errorf("Len() = %d, expected %d", c.Len(), tt.expectedLen)
			}
			if !c.InputEnabled() {
				t.Error("input not re-enabled")
			}
		})
	}
}

func TestSendOpensPurchaseLinkOnce(t *testing.T) {
	const link = "https://booking.example.com/offer/42"
	var opened []string
	opener := OpenerFunc(func(url string) error {
		opened = append(opened, url)
		return nil
	})

	fa := &fakeAssistant{fn: replyWith(Reply{Text: "Your ticket is ready", SessionID: "s", FlightURL: link})}
	c := New(fa, WithOpener(opener))

	_ = c.Send(context.Background(), "book it")

	if len(opened) != 1 || opened[0] != link {
		t.Errorf("opened = %v, expected exactly [%s]", opened, link)
	}
	entries := c.Entries()
	if got := entries[len(entries)-1].PurchaseURL; got != link {
		t.Errorf("PurchaseURL = %q, expected %q", got, link)
	}
}

func TestSendOpenerFailureKeepsEntry(t *testing.T) {
	opener := OpenerFunc(func(string) error { return errors.New("no browser") })
	c := New(&fakeAssistant{fn: replyWith(Reply{Text: "ok", SessionID: "s", FlightURL: "https://x"})}, WithOpener(opener))

	if err := c.Send(context.Background(), "book"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, expected 2", c.Len())
	}
}

func TestSendFailureAppendsSingleErrorEntry(t *testing.T) {
	fa := &fakeAssistant{fn: func(context.Context, string, string) (Reply, error) {
		return Reply{}, errors.New("connection refused")
	}}
	c := New(fa, WithFailureText("service down"))

	if err := c.Send(context.Background(), "hello"); err != nil {
		t.Fatalf("Send() error = %v, expected failure to be absorbed", err)
	}

	entries := c.Entries()
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, expected 2", len(entries))
	}
	if entries[1].Sender != SenderAssistant || entries[1].Text != "service down" {
		t.Errorf("failure entry = %+v", entries[1])
	}
	if fa.callCount() != 1 {
		t.Errorf("callCount = %d, expected no retry", fa.callCount())
	}
	if !c.InputEnabled() {
		t.Error("input not re-enabled after failure")
	}
	if c.SessionID() != "" {
		t.Errorf("SessionID() = %q, expected unchanged", c.SessionID())
	}
}

func TestSendTimeout(t *testing.T) {
	fa := &fakeAssistant{fn: func(ctx context.Context, _, _ string) (Reply, error) {
		<-ctx.Done()
		return Reply{}, ctx.Err()
	}}
	c := New(fa, WithTimeout(20*time.Millisecond))

	done := make(chan error, 1)
	go func() { done <- c.Send(context.Background(), "hello") }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Send() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Send() did not time out")
	}

	entries := c.Entries()
	if len(entries) != 2 || entries[1].Text != DefaultFailureText {
		t.Errorf("entries = %+v, expected failure entry after timeout", entries)
	}
	if !c.InputEnabled() {
		t.Error("input not re-enabled after timeout")
	}
}

func TestNewerSendSupersedesOutstanding(t *testing.T) {
	started := make(chan struct{})
	fa := &fakeAssistant{fn: func(ctx context.Context, message, _ string) (Reply, error) {
		if message == "slow" {
			close(started)
			<-ctx.Done()
			return Reply{}, ctx.Err()
		}
		return Reply{Text: "fast reply", SessionID: "s2"}, nil
	}}
	c := New(fa)

	slowErr := make(chan error, 1)
	go func() { slowErr <- c.Send(context.Background(), "slow") }()
	<-started

	if err := c.Send(context.Background(), "fast"); err != nil {
		t.Fatalf("Send(fast) error = %v", err)
	}
	if err := <-slowErr; !errors.Is(err, ErrSuperseded) {
		t.Errorf("Send(slow) error = %v, expected ErrSuperseded", err)
	}

	entries := c.Entries()
	var texts []string
	for _, e := range entries {
		texts = append(texts, e.Text)
	}
	expected := []string{"slow", "fast", "fast reply"}
	if len(texts) != len(expected) {
		t.Fatalf("texts = %v, expected %v", texts, expected)
	}
	for i := range expected {
		if texts[i] != expected[i] {
			t.Errorf("texts[%d] = %q, expected %q", i, texts[i], expected[i])
		}
	}
	if c.SessionID() != "s2" {
		t.Errorf("SessionID() = %q, expected s2", c.SessionID())
	}
}

func TestCancelDropsOutstandingRequest(t *testing.T) {
	started := make(chan struct{})
	fa := &fakeAssistant{fn: func(ctx context.Context, _, _ string) (Reply, error) {
		close(started)
		<-ctx.Done()
		return Reply{}, ctx.Err()
	}}
	c := New(fa)

	errc := make(chan error, 1)
	go func() { errc <- c.Send(context.Background(), "hello") }()
	<-started

	c.Cancel()
	if err := <-errc; !errors.Is(err, ErrSuperseded) {
		t.Errorf("Send() error = %v, expected ErrSuperseded", err)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, expected only the user entry", c.Len())
	}
	if !c.InputEnabled() {
		t.Error("input not re-enabled after Cancel")
	}
}

func TestFollowUpRecordsSingleEcho(t *testing.T) {
	fa := &fakeAssistant{fn: replyWith(Reply{Text: "Your change is confirmed", SessionID: "s"})}
	c := New(fa)

	if err := c.FollowUp(context.Background(), MessageConfirmChange); err != nil {
		t.Fatalf("FollowUp() error = %v", err)
	}

	entries := c.Entries()
	if len(entries) != 2 {
		t.Fatalf("entries = %+v, expected echo + reply", entries)
	}
	if entries[0].Sender != SenderSystem || !entries[0].IsAwaitSignal || entries[0].CorrelationID == "" {
		t.Errorf("echo entry = %+v", entries[0])
	}
	if fa.calls[0].message != MessageConfirmChange {
		t.Errorf("sent %q, expected %q", fa.calls[0].message, MessageConfirmChange)
	}
}

func TestEqualTextFromUserIsNotSuppressed(t *testing.T) {
	fa := &fakeAssistant{fn: replyWith(Reply{Text: AwaitSignal, SessionID: "s"})}
	c := New(fa)

	c.Echo(MessageResearch)
	// Same text, typed by the user, without the correlation id.
	_ = c.Send(context.Background(), MessageResearch)

	entries := c.Entries()
	if len(entries) != 2 {
		t.Fatalf("entries = %+v, expected echo + user entry", entries)
	}
	if entries[1].Sender != SenderUser {
		t.Errorf("entries[1].Sender = %v, expected user", entries[1].Sender)
	}
}

func TestCorrelationIsConsumedOnce(t *testing.T) {
	fa := &fakeAssistant{fn: replyWith(Reply{Text: AwaitSignal, SessionID: "s"})}
	c := New(fa)

	id := c.Echo("Human Assistant")
	_ = c.Send(context.Background(), "Human Assistant", WithCorrelation(id))
	_ = c.Send(context.Background(), "Human Assistant", WithCorrelation(id))

	entries := c.Entries()
	if len(entries) != 2 {
		t.Fatalf("entries = %+v, expected echo + one user entry", entries)
	}
	if entries[0].Sender != SenderSystem || entries[1].Sender != SenderUser {
		t.Errorf("senders = %v, %v", entries[0].Sender, entries[1].Sender)
	}
}

func TestStateString(t *testing.T) {
	tests := map[State]string{
		StateIdle:              "idle",
		StateAwaitingResponse:  "awaiting_response",
		StateAwaitingMoreInput: "awaiting_more_input",
		State(42):              "unknown",
	}
	for s, expected := range tests {
		if s.String() != expected {
			t.Errorf("State(%d).String() = %q, expected %q", s, s.String(), expected)
		}
	}
}
