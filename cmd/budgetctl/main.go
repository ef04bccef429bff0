package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"budget/internal/cli"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cli.New(os.Stdout, os.Stderr).Execute(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		os.Exit(1)
	}
}
