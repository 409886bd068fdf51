package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/userdesk/user-management/internal/client"
	"github.com/userdesk/user-management/internal/client/cli"
	"github.com/userdesk/user-management/internal/infrastructure/config"
	"github.com/userdesk/user-management/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	cfg, err := config.LoadClient(ctx)
	if err != nil {
		return err
	}

	path := cfg.SessionFile
	if path == "" {
		if path, err = client.DefaultSessionPath(); err != nil {
			return err
		}
	}
	session, err := client.LoadSession(path)
	if err != nil {
		return err
	}

	api := client.New(session, client.Options{
		BaseURL:    cfg.BaseURL,
		Timeout:    cfg.Timeout,
		Retries:    cfg.Retries,
		RetryDelay: cfg.RetryDelay,
		Log:        logger.New(logger.Options{Level: cfg.LogLevel, Pretty: true, Output: os.Stderr}),
	})

	return cli.NewApp(api, os.Stdin, os.Stdout).Run(ctx, args)
}
