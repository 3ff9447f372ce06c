package smartflight

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/schardosin/smartflight/pkg/ui"
)

// Version information
const (
	Version = "0.3.0"
	GitHub  = "https://github.com/schardosin/smartflight"
)

var asciiLogo = `
   _____                      __     ________ _       __    __
  / ___/____ ___  ____ ______/ /_   / ____/ /(_)___ _/ /_  / /_
  \__ \/ __ '__ \/ __ '/ ___/ __/  / /_  / // / __ '/ __ \/ __/
 ___/ / / / / / / /_/ / /  / /_   / __/ / // / /_/ / / / / /_
/____/_/ /_/ /_/\__,_/_/   \__/  /_/   /_//_/\__, /_/ /_/\__/
                                            /____/
`

func printVersion() {
	logoStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("63")).
		Bold(true)

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("86")).
		Bold(true)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	linkStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("39")).
		Underline(true)

	fmt.Println(logoStyle.Render(asciiLogo))
	fmt.Println()

	fmt.Println(labelStyle.Render(ui.AppTitle))
	fmt.Printf("%s %s\n", labelStyle.Render("Version:"), valueStyle.Render(Version))
	fmt.Printf("%s %s\n", labelStyle.Render("GitHub:"), linkStyle.Render(GitHub))
	fmt.Println()
}
