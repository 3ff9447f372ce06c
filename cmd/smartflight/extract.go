package smartflight

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/schardosin/smartflight/pkg/chat"
	"github.com/schardosin/smartflight/pkg/dialog"
	"github.com/schardosin/smartflight/pkg/offer"
	"github.com/schardosin/smartflight/pkg/ui"
)

var errNoOffer = errors.New("no alternative ticket found")

func handleExtractCommand(args []string) error {
	extractCmd := flag.NewFlagSet("extract", flag.ExitOnError)
	extractCmd.Usage = printExtractUsage
	asJSON := extractCmd.Bool("json", false, "Print the offer as JSON")
	confirm := extractCmd.Bool("confirm", false, "Ask whether to accept the offer")

	if err := extractCmd.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	var in io.Reader = os.Stdin
	if path := extractCmd.Arg(0); path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		in = f
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("failed to read reply: %w", err)
	}

	o, err := extractOffer(string(data))
	if err != nil {
		return err
	}

	if *asJSON {
		return writeOfferJSON(os.Stdout, o)
	}

	var d dialog.Dialog
	d.Open(o)
	fmt.Println(d.View(ui.TerminalWidth()))

	if !*confirm {
		return nil
	}
	message, err := askConfirmation(&d)
	if err != nil {
		return err
	}
	fmt.Printf("\nWould send: %q\n", message)
	return nil
}

func extractOffer(reply string) (offer.Offer, error) {
	o, ok := offer.Extract(reply)
	if !ok {
		return offer.Offer{}, errNoOffer
	}
	return o, nil
}

func writeOfferJSON(w io.Writer, o offer.Offer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(o); err != nil {
		return fmt.Errorf("failed to encode offer: %w", err)
	}
	return nil
}

func askConfirmation(d *dialog.Dialog) (string, error) {
	var accept bool
	err := huh.NewConfirm().
		Title("Accept this alternative ticket?").
		Affirmative(chat.MessageConfirmChange).
		Negative(chat.MessageResearch).
		Value(&accept).
		Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", ui.ErrAborted
		}
		return "", fmt.Errorf("confirmation failed: %w", err)
	}

	var message string
	if accept {
		message, _ = d.Confirm()
	} else {
		message, _ = d.Cancel()
	}
	return message, nil
}

func printExtractUsage() {
	fmt.Println("usage: smartflight extract [-h] [--json] [--confirm] [FILE]")
	fmt.Println("")
	fmt.Println("Parse an alternative ticket out of an assistant reply read from FILE or stdin")
	fmt.Println("")
	fmt.Println("options:")
	fmt.Println("  -h, --help            show this help message and exit")
	fmt.Println("  --json                Print the offer as JSON")
	fmt.Println("  --confirm             Ask whether to accept the offer")
}
