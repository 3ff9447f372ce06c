// Package dialog implements the modal that asks the user to accept or reject
// an alternative ticket.
package dialog

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/schardosin/smartflight/pkg/chat"
	"github.com/schardosin/smartflight/pkg/offer"
	"github.com/schardosin/smartflight/pkg/ui"
)

const Title = "Alternative Flight Found"

var (
	confirmButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("255")).
				Background(lipgloss.Color("35")).
				Padding(0, 2).
				MarginRight(2)

	cancelButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("255")).
				Background(lipgloss.Color("240")).
				Padding(0, 2)
)

// Dialog holds at most one offer at a time.
type Dialog struct {
	open  bool
	offer offer.Offer
}

// Open shows o, replacing whatever was shown before.
func (d *Dialog) Open(o offer.Offer) {
	d.offer = o
	d.open = true
}

func (d *Dialog) IsOpen() bool { return d.open }

// Offer returns the offer on display, zero when closed.
func (d *Dialog) Offer() offer.Offer {
	if !d.open {
		return offer.Offer{}
	}
	return d.offer
}

// Confirm closes the dialog and returns the acceptance message.
func (d *Dialog) Confirm() (string, bool) {
	return d.close(chat.MessageConfirmChange)
}

// Cancel closes the dialog and returns the message asking for another search.
func (d *Dialog) Cancel() (string, bool) {
	return d.close(chat.MessageResearch)
}

func (d *Dialog) close(message string) (string, bool) {
	if !d.open {
		return "", false
	}
	d.open = false
	d.offer = offer.Offer{}
	return message, true
}

// HandleKey maps a key press to Confirm or Cancel. Any other key, esc
// included, leaves the dialog open.
func (d *Dialog) HandleKey(key string) (string, bool) {
	switch key {
	case "y", "Y", "enter":
		return d.Confirm()
	case "n", "N", "c", "C":
		return d.Cancel()
	}
	return "", false
}

// View renders the open dialog, or nothing when closed.
func (d *Dialog) View(width int) string {
	if !d.open {
		return ""
	}
	o := d.offer

	fields := []ui.Field{
		{Label: "Route", Value: o.Route()},
		{Label: "Outbound", Value: o.Outbound()},
		{Label: "Return", Value: o.Return()},
		{Label: "Total Price", Value: o.Price},
		{Label: "Flight Number", Value: o.FlightNumber},
	}

	buttons := lipgloss.JoinHorizontal(lipgloss.Top,
		confirmButtonStyle.Render("[y] "+chat.MessageConfirmChange),
		cancelButtonStyle.Render("[n] "+chat.MessageResearch),
	)

	box := ui.RenderBox(Title, fields, "", width)
	return lipgloss.JoinVertical(lipgloss.Left, box, "", buttons)
}
