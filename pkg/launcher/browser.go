package launcher

import (
	"fmt"
	"io"
	"log"
	"net/url"

	"github.com/pkg/browser"
)

// BrowserOpener opens purchase links in the system browser.
type BrowserOpener struct {
	run func(link string) error
}

func NewBrowserOpener() *BrowserOpener {
	// the opener's own output would land on top of the TUI
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
	return &BrowserOpener{run: browser.OpenURL}
}

// Open launches the browser on rawURL. Only http and https links are opened.
func (b *BrowserOpener) Open(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid link %q: %w", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("refusing to open %q: unsupported scheme %q", rawURL, u.Scheme)
	}

	log.Printf("launcher: opening %s", u)
	if err := b.run(u.String()); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}
