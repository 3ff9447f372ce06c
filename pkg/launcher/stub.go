package launcher

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/schardosin/smartflight/pkg/stub"
)

// StubConfig contains configuration for the local stub assistant
type StubConfig struct {
	Port         int
	Username     string
	Password     string
	RequireLogin bool
	CheckoutURL  string
	SessionTTL   time.Duration
}

// RunStub serves the scripted assistant until ctx is done.
func RunStub(ctx context.Context, cfg *StubConfig) error {
	server := stub.New(stub.Config{
		Username:     cfg.Username,
		Password:     cfg.Password,
		RequireLogin: cfg.RequireLogin,
		CheckoutURL:  cfg.CheckoutURL,
		SessionTTL:   cfg.SessionTTL,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	fmt.Printf("\n")
	fmt.Printf("  ✈  Smart Flight stub assistant is running!\n")
	fmt.Printf("\n")
	fmt.Printf("  ➜  Local:   http://localhost:%d\n", cfg.Port)
	if cfg.RequireLogin {
		fmt.Printf("  ➜  Login:   %s / %s\n", cfg.Username, cfg.Password)
	}
	fmt.Printf("\n")
	fmt.Printf("  Press Ctrl+C to stop\n")
	fmt.Printf("\n")

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Printf("stub: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
