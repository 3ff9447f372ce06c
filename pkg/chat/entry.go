package chat

// Sender identifies who produced a conversation entry.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
	SenderSystem    Sender = "system"
)

// Entry is one displayed turn of the transcript. Entries are never modified
// once appended.
type Entry struct {
	Sender      Sender `json:"sender" yaml:"sender"`
	Text        string `json:"text" yaml:"text"`
	PurchaseURL string `json:"purchaseUrl,omitempty" yaml:"purchase_url,omitempty"`

	// IsAwaitSignal marks a system-originated echo of a follow-up message
	// (dialog decision, human assistant request). CorrelationID ties the
	// echo to the Send that carries the same text to the assistant.
	IsAwaitSignal bool   `json:"isAwaitSignal,omitempty" yaml:"is_await_signal,omitempty"`
	CorrelationID string `json:"correlationId,omitempty" yaml:"correlation_id,omitempty"`
}

// Reply is the assistant's answer to one chat request.
type Reply struct {
	Text      string
	SessionID string
	FlightURL string
	// RequiresInput is the optional server-declared input flag. nil when the
	// server did not send it.
	RequiresInput *bool
}

// State is the controller's position in the request lifecycle.
type State int

const (
	StateIdle State = iota
	StateAwaitingResponse
	StateAwaitingMoreInput
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingResponse:
		return "awaiting_response"
	case StateAwaitingMoreInput:
		return "awaiting_more_input"
	default:
		return "unknown"
	}
}
