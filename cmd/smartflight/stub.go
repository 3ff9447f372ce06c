package smartflight

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/schardosin/smartflight/pkg/config"
	"github.com/schardosin/smartflight/pkg/launcher"
	"github.com/schardosin/smartflight/pkg/stub"
)

func handleStubCommand(args []string) error {
	cfg, err := config.LoadAppConfig()
	if err != nil {
		return reportError(os.Stderr, err)
	}

	stubCmd := flag.NewFlagSet("stub", flag.ExitOnError)
	stubCmd.Usage = printStubUsage
	port := stubCmd.Int("port", cfg.Stub.Port, "Port to run the stub assistant on")
	login := stubCmd.Bool("login", true, "Require a login before chatting")
	checkout := stubCmd.String("checkout-url", "", "Base of the purchase links handed out")
	ttl := stubCmd.Duration("session-ttl", stub.DefaultSessionTTL, "Forget idle sessions and tokens after this long")

	if err := stubCmd.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return launcher.RunStub(ctx, &launcher.StubConfig{
		Port:         *port,
		Username:     cfg.Stub.Username,
		Password:     cfg.Stub.Password,
		RequireLogin: *login,
		CheckoutURL:  *checkout,
		SessionTTL:   *ttl,
	})
}

func printStubUsage() {
	fmt.Println("usage: smartflight stub [-h] [--port PORT] [--login=false] [--checkout-url URL]")
	fmt.Println("                        [--session-ttl DURATION]")
	fmt.Println("")
	fmt.Println("Run a scripted flight assistant for local testing")
	fmt.Println("")
	fmt.Println("options:")
	fmt.Println("  -h, --help            show this help message and exit")
	fmt.Println("  --port PORT           Port to run the stub on (default: stub.port)")
	fmt.Println("  --login               Require a login before chatting (default: true)")
	fmt.Println("  --checkout-url URL    Base of the purchase links handed out")
	fmt.Println("  --session-ttl DURATION")
	fmt.Println("                        Forget idle sessions and tokens after this long (default: 30m)")
}
