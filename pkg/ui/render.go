package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/schardosin/smartflight/pkg/chat"
	"github.com/schardosin/smartflight/pkg/offer"
)

// LinkLabel introduces the purchase link under an assistant entry.
const LinkLabel = "See flight details"

// RenderEntry renders one transcript entry wrapped to width.
func RenderEntry(e chat.Entry, width int) string {
	if width <= 0 {
		width = 80
	}
	body := lipgloss.NewStyle().Width(width - 2).PaddingLeft(2)

	switch e.Sender {
	case chat.SenderUser:
		return userLabelStyle.Render("You") + "\n" + body.Render(stripControl(e.Text))

	case chat.SenderSystem:
		return systemTextStyle.Width(width).Render("› " + stripControl(e.Text))

	default:
		text := bodyStyle.Render(Sanitize(e.Text, func(s string) string { return boldStyle.Render(s) }))
		out := assistantLabelStyle.Render("Assistant") + "\n" + body.Render(text)
		if e.PurchaseURL != "" {
			link := HintStyle.Render(LinkLabel+": ") + linkStyle.Render(stripControl(e.PurchaseURL))
			out += "\n" + body.Render(link)
		}
		return out
	}
}

// RenderTranscript renders entries in order, separated by blank lines.
func RenderTranscript(entries []chat.Entry, width int) string {
	blocks := make([]string, 0, len(entries))
	for _, e := range entries {
		blocks = append(blocks, RenderEntry(e, width))
	}
	return strings.Join(blocks, "\n\n")
}

// OfferFor returns the alternative-ticket offer carried by an assistant
// entry. User and system entries never carry one.
func OfferFor(e chat.Entry) (offer.Offer, bool) {
	if e.Sender != chat.SenderAssistant {
		return offer.Offer{}, false
	}
	return offer.Extract(e.Text)
}
