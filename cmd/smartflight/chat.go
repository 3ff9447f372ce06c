package smartflight

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/schardosin/smartflight/pkg/assistant"
	"github.com/schardosin/smartflight/pkg/auth"
	"github.com/schardosin/smartflight/pkg/chat"
	"github.com/schardosin/smartflight/pkg/config"
	"github.com/schardosin/smartflight/pkg/launcher"
	"github.com/schardosin/smartflight/pkg/transcript"
	"github.com/schardosin/smartflight/pkg/ui"
)

type chatOptions struct {
	baseURL  string
	username string
	password string
	timeout  time.Duration
	noLogin  bool
	noOpen   bool
	noHuman  bool
	debugLog string
	record   string
}

func parseChatArgs(cfg *config.AppConfig, args []string) (*chatOptions, error) {
	chatCmd := flag.NewFlagSet("chat", flag.ContinueOnError)
	chatCmd.Usage = printChatUsage

	opts := &chatOptions{}
	chatCmd.StringVar(&opts.baseURL, "url", cfg.Assistant.BaseURL, "Base URL of the flight assistant")
	chatCmd.StringVar(&opts.username, "user", cfg.Assistant.Login.Username, "Username to log in with")
	chatCmd.DurationVar(&opts.timeout, "timeout", cfg.Assistant.Timeout, "Timeout of a single request")
	chatCmd.BoolVar(&opts.noLogin, "no-login", !cfg.Assistant.Login.Enabled, "Skip the login gate")
	chatCmd.BoolVar(&opts.noOpen, "no-open", !cfg.UI.OpenLinks, "Do not open purchase links in the browser")
	chatCmd.BoolVar(&opts.noHuman, "no-human", !cfg.UI.HumanAssistant, "Hide the Human Assistant action")
	chatCmd.StringVar(&opts.debugLog, "debug", cfg.UI.DebugLog, "Write diagnostics to this file")
	chatCmd.StringVar(&opts.record, "record", "", "Save the conversation to this file on exit")

	if err := chatCmd.Parse(args); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}
	if chatCmd.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", chatCmd.Args())
	}

	opts.password = cfg.Assistant.Login.Password
	if opts.username != cfg.Assistant.Login.Username {
		// a password configured for someone else is of no use
		opts.password = ""
	}
	return opts, nil
}

func handleChatCommand(args []string) error {
	cfg, err := config.LoadAppConfig()
	if err != nil {
		return reportError(os.Stderr, err)
	}

	opts, err := parseChatArgs(cfg, args)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	closer, err := launcher.SetupLogging(opts.debugLog)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := assistant.NewClient(opts.baseURL, opts.timeout)
	if err := client.Health(ctx); err != nil {
		log.Printf("chat: %s is not reachable: %v", opts.baseURL, err)
		return reportError(os.Stderr, err)
	}

	if !opts.noLogin {
		gate := auth.NewGate(client, client.SetToken)
		if err := launcher.Authenticate(ctx, gate, opts.username, opts.password); err != nil {
			if errors.Is(err, ui.ErrAborted) || errors.Is(err, ui.ErrInterrupted) {
				return nil
			}
			return reportError(os.Stderr, err)
		}
	}

	controllerOpts := []chat.Option{chat.WithTimeout(opts.timeout)}
	if !opts.noOpen {
		controllerOpts = append(controllerOpts, chat.WithOpener(launcher.NewBrowserOpener()))
	}
	controller := chat.New(client, controllerOpts...)

	err = launcher.RunConsole(ctx, &launcher.ConsoleConfig{
		Controller:     controller,
		HumanAssistant: !opts.noHuman,
	})

	if err != nil {
		err = reportError(os.Stderr, err)
	}

	if opts.record != "" && controller.Len() > 0 {
		rec := transcript.Capture(controller, ui.AppTitle, ui.TerminalWidth())
		if saveErr := rec.Save(opts.record); saveErr != nil {
			return fmt.Errorf("failed to save conversation: %w", saveErr)
		}
		fmt.Printf("Conversation saved to %s\n", opts.record)
	}
	return err
}

func printChatUsage() {
	fmt.Println("usage: smartflight chat [-h] [--url URL] [--user NAME] [--timeout DURATION]")
	fmt.Println("                        [--no-login] [--no-open] [--no-human] [--debug FILE] [--record FILE]")
	fmt.Println("")
	fmt.Println("Talk to the flight assistant")
	fmt.Println("")
	fmt.Println("options:")
	fmt.Println("  -h, --help            show this help message and exit")
	fmt.Println("  --url URL             Base URL of the flight assistant (default: assistant.base_url)")
	fmt.Println("  --user NAME           Username to log in with")
	fmt.Println("  --timeout DURATION    Timeout of a single request (default: 60s)")
	fmt.Println("  --no-login            Skip the login gate")
	fmt.Println("  --no-open             Do not open purchase links in the browser")
	fmt.Println("  --no-human            Hide the Human Assistant action")
	fmt.Println("  --debug FILE          Write diagnostics to FILE")
	fmt.Println("  --record FILE         Save the conversation to FILE on exit")
}
