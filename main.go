package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/schardosin/smartflight/cmd/smartflight"
)

func main() {
	if err := smartflight.Execute(); err != nil {
		if errors.Is(err, smartflight.ErrReported) {
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
