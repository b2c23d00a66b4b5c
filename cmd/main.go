package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/desertthunder/top5/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)

	if err := shared.LoadEnv(); err != nil {
		logger.Warn("failed to load .env", "error", err)
	}

	runner := NewRunner(RunnerOpts{Logger: logger})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := runner.app().Run(ctx, os.Args); err != nil {
		stop()
		if errors.Is(err, shared.ErrDeclined) {
			logger.Warn("aborted", "reason", err)
			os.Exit(1)
		}
		logger.Fatalf("application error: %v", err)
	}
}
