package main

import (
	"errors"
	"fmt"
	"os"

	"pdf-analyzer/config"

	"github.com/joho/godotenv"
)

func init() {
	// Load .env file if exists
	_ = godotenv.Load()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// both were already reported to the user
		if !errors.Is(err, config.ErrMissingCredential) && !errors.Is(err, errChecksFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
