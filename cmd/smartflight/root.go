package smartflight

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/schardosin/smartflight/pkg/ui"
)

// ErrReported means the failure was already shown to the user and only the
// exit status is left to set.
var ErrReported = errors.New("error already reported")

// reportError renders err as an error box on w.
func reportError(w io.Writer, err error) error {
	fmt.Fprint(w, ui.RenderError(err))
	return ErrReported
}

// Execute is the main entry point for the CLI
func Execute() error {
	if len(os.Args) < 2 || os.Args[1] == "-h" || os.Args[1] == "--help" {
		printUsage()
		if len(os.Args) < 2 {
			return fmt.Errorf("no command provided")
		}
		return nil
	}

	command := os.Args[1]
	switch command {
	case "chat":
		return handleChatCommand(os.Args[2:])
	case "extract":
		return handleExtractCommand(os.Args[2:])
	case "replay":
		return handleReplayCommand(os.Args[2:])
	case "stub":
		return handleStubCommand(os.Args[2:])
	case "config":
		return handleConfigCommand(os.Args[2:])
	case "version", "--version":
		printVersion()
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

func printUsage() {
	fmt.Println("usage: smartflight [-h] {chat,extract,replay,stub,config,version} ...")
	fmt.Println("")
	fmt.Println("positional arguments:")
	fmt.Println("  {chat,extract,replay,stub,config,version}")
	fmt.Println("                        Smart Flight CLI commands")
	fmt.Println("    chat                Talk to the flight assistant")
	fmt.Println("    extract             Parse an alternative ticket out of a reply")
	fmt.Println("    replay              Print a saved conversation")
	fmt.Println("    stub                Run a scripted assistant locally")
	fmt.Println("    config              Manage configuration")
	fmt.Println("    version             Print version information")
	fmt.Println("")
	fmt.Println("options:")
	fmt.Println("  -h, --help            show this help message and exit")
}
