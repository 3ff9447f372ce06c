package ui

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/schardosin/smartflight/pkg/assistant"
	"github.com/schardosin/smartflight/pkg/config"
	"golang.org/x/term"
)

var (
	colorRed    = lipgloss.Color("196")
	colorYellow = lipgloss.Color("226")
	colorWhite  = lipgloss.Color("252")

	headerStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	indentStyle = lipgloss.NewStyle().
			PaddingLeft(3)

	reasonTextStyle = lipgloss.NewStyle().
			Foreground(colorWhite)

	suggestionTitleStyle = lipgloss.NewStyle().
				Foreground(colorYellow).
				Bold(true)

	suggestionTextStyle = lipgloss.NewStyle().
				Foreground(colorYellow)

	detailTitleStyle = lipgloss.NewStyle().
				Foreground(colorGray).
				Bold(true)

	detailTextStyle = lipgloss.NewStyle().
			Foreground(colorGray)
)

// TerminalWidth returns the width of stdout, or 80 when it is not a terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// RenderErrorBox renders an indented error block wrapped to the terminal.
func RenderErrorBox(title, reason, suggestion, details string) string {
	// terminal width minus indent and margin
	contentWidth := TerminalWidth() - 5

	header := indentStyle.Render(headerStyle.Render(fmt.Sprintf("✕ %s", title)))

	var blocks []string
	addSpacer := func() {
		if len(blocks) > 0 {
			blocks = append(blocks, "")
		}
	}

	if reason != "" {
		blocks = append(blocks, reasonTextStyle.Width(contentWidth).Render(reason))
	}

	if suggestion != "" {
		addSpacer()
		blocks = append(blocks,
			suggestionTitleStyle.Render("Suggestion:"),
			suggestionTextStyle.Width(contentWidth).Render(suggestion),
		)
	}

	if details != "" {
		addSpacer()
		blocks = append(blocks,
			detailTitleStyle.Render("Details:"),
			detailTextStyle.Width(contentWidth).Render(strings.TrimSpace(details)),
		)
	}

	body := indentStyle.Render(lipgloss.JoinVertical(lipgloss.Left, blocks...))
	return fmt.Sprintf("\n%s\n%s\n", header, body)
}

// RenderError picks a title and suggestion for the errors the client knows about.
func RenderError(err error) string {
	var cfgErr *config.ConfigError
	var statusErr *assistant.StatusError
	var netErr net.Error

	switch {
	case errors.As(err, &cfgErr):
		return RenderErrorBox("Configuration Error",
			fmt.Sprintf("The configuration from %s cannot be used.", cfgErr.Source),
			"Fix it with 'smartflight config edit' or recreate it with 'smartflight config init'.",
			cfgErr.Err.Error())
	case errors.As(err, &statusErr):
		return RenderErrorBox("Assistant Error",
			fmt.Sprintf("%s answered with HTTP %d.", statusErr.Endpoint, statusErr.StatusCode),
			"",
			statusErr.Body)
	case errors.Is(err, assistant.ErrMalformedResponse):
		return RenderErrorBox("Unexpected Response",
			"The assistant answered with something that is not a valid reply.",
			"Make sure assistant.base_url points at the flight assistant.",
			err.Error())
	case errors.As(err, &netErr):
		return RenderErrorBox("Connection Failed",
			"The assistant could not be reached.",
			"Start a local assistant with 'smartflight stub' or fix assistant.base_url.",
			err.Error())
	default:
		return RenderErrorBox("Error", err.Error(), "", "")
	}
}
