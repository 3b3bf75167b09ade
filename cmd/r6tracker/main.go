package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	// Initialize context that cancelled on SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Getenv, os.Getwd, os.Args[1:]); err != nil {
		slog.Error("r6tracker stopped with error", "error", err.Error())
		os.Exit(1)
	}
}

// Load config: defaults, then .env, then environment, then flags. Serve until ctx is done
func run(ctx context.Context, getenv func(string) string, getwd func() (string, error), args []string) error {
	c := NewConfig()
	if err := c.LoadDotEnv(getwd); err != nil {
		return err
	}
	if err := c.LoadEnv(getenv); err != nil {
		return err
	}
	if err := c.ParseFlags(args); err != nil {
		return err
	}

	app, err := NewServerApp(ctx, c)
	if err != nil {
		return err
	}

	if err := app.Run(ctx); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
