package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/schardosin/smartflight/pkg/chat"
)

// ErrMalformedResponse is returned when a reply body cannot be decoded.
var ErrMalformedResponse = errors.New("malformed response from assistant")

// StatusError reports a non-2xx reply.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message   string  `json:"message"`
	SessionID *string `json:"session_id"`
}

// ChatResponse is the body returned by POST /chat.
type ChatResponse struct {
	Response      string  `json:"response"`
	SessionID     string  `json:"session_id"`
	FlightURL     *string `json:"flight_url,omitempty"`
	RequiresInput *bool   `json:"requires_input,omitempty"`
}

// LoginResponse is the body returned by POST /login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}

// Client talks to the flight assistant over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	transport  *bearerTransport
}

// NewClient creates a client for the assistant rooted at baseURL. A zero
// timeout leaves requests unbounded at the HTTP level; callers bound them
// through the context.
func NewClient(baseURL string, timeout time.Duration) *Client {
	t := &bearerTransport{base: http.DefaultTransport}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Transport: t,
			Timeout:   timeout,
		},
		transport: t,
	}
}

// SetToken installs the bearer credential sent with every later request.
func (c *Client) SetToken(token string) {
	c.transport.setToken(token)
}

// Chat sends one user message. An empty sessionID is sent as null.
func (c *Client) Chat(ctx context.Context, message, sessionID string) (chat.Reply, error) {
	req := ChatRequest{Message: message}
	if sessionID != "" {
		req.SessionID = &sessionID
	}

	body, err := json.Marshal(req)
	if err != nil {
		return chat.Reply{}, fmt.Errorf("failed to encode chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(body))
	if err != nil {
		return chat.Reply{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return chat.Reply{}, fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus("/chat", resp); err != nil {
		return chat.Reply{}, err
	}

	// pointers tell a missing field from an empty one; a null body leaves
	// them all nil
	var out struct {
		Response      *string `json:"response"`
		SessionID     *string `json:"session_id"`
		FlightURL     *string `json:"flight_url"`
		RequiresInput *bool   `json:"requires_input"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return chat.Reply{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if out.Response == nil || out.SessionID == nil {
		return chat.Reply{}, fmt.Errorf("%w: missing response or session_id", ErrMalformedResponse)
	}

	reply := chat.Reply{
		Text:          *out.Response,
		SessionID:     *out.SessionID,
		RequiresInput: out.RequiresInput,
	}
	if out.FlightURL != nil {
		reply.FlightURL = *out.FlightURL
	}
	return reply, nil
}

// Health checks that the assistant is up by calling GET /test.
func (c *Client) Health(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/test", nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus("/test", resp); err != nil {
		return err
	}

	var out struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if out.Status != "OK" {
		return fmt.Errorf("%w: status %q", ErrMalformedResponse, out.Status)
	}
	return nil
}

// Login exchanges a username and password for an access token. Credentials
// are sent form-encoded, the way OAuth2 password flows expect them.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	data := url.Values{}
	data.Set("username", username)
	data.Set("password", password)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login", strings.NewReader(data.Encode()))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus("/login", resp); err != nil {
		return "", err
	}

	var out LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("%w: missing access_token", ErrMalformedResponse)
	}
	return out.AccessToken, nil
}

func checkStatus(endpoint string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &StatusError{
		Endpoint:   endpoint,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}

// bearerTransport adds the Authorization header once a token is known.
type bearerTransport struct {
	base http.RoundTripper

	mu    sync.RWMutex
	token string
}

func (t *bearerTransport) setToken(token string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.token = token
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.mu.RLock()
	token := t.token
	t.mu.RUnlock()

	if token == "" {
		return t.base.RoundTrip(req)
	}

	// RoundTrip must not modify the caller's request.
	r := req.Clone(req.Context())
	r.Header.Set("Authorization", "Bearer "+token)
	return t.base.RoundTrip(r)
}
