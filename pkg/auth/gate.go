package auth

import (
	"context"
	"errors"
	"log"
	"sync"
)

// FailureMessage is shown for every failed login, whatever the cause.
const FailureMessage = "login failed"

var ErrLoginFailed = errors.New(FailureMessage)

// Authenticator exchanges credentials for a bearer token.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
}

// Gate blocks the conversation until a login succeeds.
type Gate struct {
	authn     Authenticator
	onSuccess func(token string)

	mu       sync.Mutex
	token    string
	errorMsg string
}

// NewGate creates a gate. onSuccess receives the token after a successful
// login and may be nil.
func NewGate(authn Authenticator, onSuccess func(token string)) *Gate {
	return &Gate{authn: authn, onSuccess: onSuccess}
}

// Login tries the credentials. Bad credentials and transport failures are
// reported identically.
func (g *Gate) Login(ctx context.Context, username, password string) error {
	token, err := g.authn.Login(ctx, username, password)
	if err == nil && token == "" {
		err = errors.New("empty access token")
	}

	g.mu.Lock()
	if err != nil {
		log.Printf("auth: login for %q failed: %v", username, err)
		g.errorMsg = FailureMessage
		g.mu.Unlock()
		return ErrLoginFailed
	}
	g.token = token
	g.errorMsg = ""
	onSuccess := g.onSuccess
	g.mu.Unlock()

	if onSuccess != nil {
		onSuccess(token)
	}
	return nil
}

// Token returns the credential, empty until a login succeeds.
func (g *Gate) Token() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.token
}

// ErrorMessage returns the user-visible error of the last failed attempt.
func (g *Gate) ErrorMessage() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.errorMsg
}

// Unlocked reports whether the conversation may start.
func (g *Gate) Unlocked() bool {
	return g.Token() != ""
}
