package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
)

// LoginTitle heads the credentials form.
const LoginTitle = "Please Login"

// ErrAborted is returned when the user leaves a form without submitting.
var ErrAborted = errors.New("aborted by user")

// Credentials entered in the login form.
type Credentials struct {
	Username string
	Password string
}

// ReadCredentials asks for a username and password. username pre-fills the
// first field and errMsg, when set, is shown above the form.
func ReadCredentials(username, errMsg string) (Credentials, error) {
	creds := Credentials{Username: username}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title(LoginTitle).
				Description(errMsg),
			huh.NewInput().
				Title("Username").
				Value(&creds.Username).
				Validate(required("username")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&creds.Password).
				Validate(required("password")),
		),
	)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return Credentials{}, ErrAborted
		}
		return Credentials{}, fmt.Errorf("login form failed: %w", err)
	}

	creds.Username = strings.TrimSpace(creds.Username)
	return creds, nil
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}
