package launcher

import (
	"context"
	"errors"

	"github.com/schardosin/smartflight/pkg/auth"
	"github.com/schardosin/smartflight/pkg/ui"
)

const signingInLabel = "Signing in..."

// loginFlow drives the login gate. The fields are the terminal interactions
// so the loop can run without a terminal.
type loginFlow struct {
	readCredentials func(username, errMsg string) (ui.Credentials, error)
	runWithSpinner  func(ctx context.Context, text string, fn func(ctx context.Context) error) error
}

// Authenticate unlocks gate. Configured credentials are tried first; after
// that the login form is shown until a login succeeds or the user aborts.
func Authenticate(ctx context.Context, gate *auth.Gate, username, password string) error {
	flow := loginFlow{
		readCredentials: ui.ReadCredentials,
		runWithSpinner:  ui.RunWithSpinner,
	}
	return flow.run(ctx, gate, username, password)
}

func (f loginFlow) run(ctx context.Context, gate *auth.Gate, username, password string) error {
	login := func(u, p string) error {
		return f.runWithSpinner(ctx, signingInLabel, func(ctx context.Context) error {
			return gate.Login(ctx, u, p)
		})
	}

	if username != "" && password != "" {
		err := login(username, password)
		if err == nil || !errors.Is(err, auth.ErrLoginFailed) {
			return err
		}
	}

	for {
		creds, err := f.readCredentials(username, gate.ErrorMessage())
		if err != nil {
			return err
		}

		err = login(creds.Username, creds.Password)
		if err == nil {
			return nil
		}
		if !errors.Is(err, auth.ErrLoginFailed) {
			return err
		}
		username = creds.Username
	}
}
