package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// AppTitle is shown in the header of every screen.
const AppTitle = "Smart Flight"

var (
	// Colors
	colorAccent    = lipgloss.Color("63")  // Blueish
	colorUser      = lipgloss.Color("86")  // Cyan
	colorAssistant = lipgloss.Color("252") // White
	colorSystem    = lipgloss.Color("246")
	colorLink      = lipgloss.Color("39")
	colorGray      = lipgloss.Color("240")

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255")).
			Background(colorAccent).
			Padding(0, 1)

	userLabelStyle      = lipgloss.NewStyle().Foreground(colorUser).Bold(true)
	assistantLabelStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	systemTextStyle     = lipgloss.NewStyle().Foreground(colorSystem).Italic(true)
	bodyStyle           = lipgloss.NewStyle().Foreground(colorAssistant)
	boldStyle           = lipgloss.NewStyle().Bold(true)
	linkStyle           = lipgloss.NewStyle().Foreground(colorLink).Underline(true)

	HintStyle = lipgloss.NewStyle().Foreground(colorGray)

	boxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(0, 2)

	boxTitleStyle = lipgloss.NewStyle().
			Foreground(colorUser).
			Bold(true)

	keyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	valueStyle = lipgloss.NewStyle().Foreground(colorAssistant)
)

// Field is one labelled row of a box.
type Field struct {
	Label string
	Value string
}

// RenderBox renders a bordered box with a title, labelled rows and a footer.
// Rows with an empty value are skipped.
func RenderBox(title string, fields []Field, footer string, width int) string {
	if width <= 0 || width > 60 {
		width = 60
	}

	var content strings.Builder
	content.WriteString(boxTitleStyle.Render(title))

	if len(fields) > 0 {
		content.WriteString("\n\n")
		for _, f := range fields {
			if f.Value == "" {
				continue
			}
			content.WriteString(keyStyle.Render(f.Label+":") + " " + valueStyle.Render(f.Value) + "\n")
		}
	}

	if footer != "" {
		content.WriteString("\n" + HintStyle.Render(footer))
	}

	return boxStyle.Width(width).Render(strings.TrimSpace(content.String()))
}
