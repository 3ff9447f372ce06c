package smartflight

import (
	"flag"
	"fmt"

	"github.com/schardosin/smartflight/pkg/transcript"
	"github.com/schardosin/smartflight/pkg/ui"
)

func handleReplayCommand(args []string) error {
	replayCmd := flag.NewFlagSet("replay", flag.ExitOnError)
	replayCmd.Usage = printReplayUsage
	width := replayCmd.Int("width", 0, "Wrap width (default: the recorded width)")

	if err := replayCmd.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}
	if replayCmd.NArg() != 1 {
		printReplayUsage()
		return fmt.Errorf("expected exactly one recording")
	}

	rec, err := transcript.Load(replayCmd.Arg(0))
	if err != nil {
		return err
	}

	w := rec.Width
	if *width > 0 {
		w = *width
	}

	title := rec.Title
	if title == "" {
		title = ui.AppTitle
	}
	fmt.Println(ui.TitleStyle.Render(title))
	if rec.SessionID != "" {
		fmt.Println(ui.HintStyle.Render("session " + rec.SessionID + " • " + rec.RecordedAt.Format("2006-01-02 15:04")))
	}
	fmt.Println()
	fmt.Println(ui.RenderTranscript(rec.Entries, w))
	return nil
}

func printReplayUsage() {
	fmt.Println("usage: smartflight replay [-h] [--width N] FILE")
	fmt.Println("")
	fmt.Println("Print a conversation saved with 'smartflight chat --record FILE'")
	fmt.Println("")
	fmt.Println("options:")
	fmt.Println("  -h, --help            show this help message and exit")
	fmt.Println("  --width N             Wrap width (default: the recorded width)")
}
