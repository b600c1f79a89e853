package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/eringen/pubsite"
	"github.com/eringen/pubsite/logging"
	"github.com/eringen/pubsite/views"
)

func newApp() (*pubsite.App, *slog.Logger, error) {
	cfg, err := pubsite.LoadConfig(envFiles...)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(logger)

	v, err := views.New()
	if err != nil {
		return nil, nil, err
	}
	return pubsite.New(cfg, v.Funcs(), pubsite.WithLogger(logger)), logger, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	app, logger, err := newApp()
	if err != nil {
		return fmt.Errorf("cannot load config: %w", err)
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go reloadOnSignal(ctx, app, hup)

	if err := app.Start(ctx); err != nil {
		return err
	}
	logger.Info("server exited")
	return nil
}

// reloadOnSignal drops cached posts each time sig fires until ctx ends.
func reloadOnSignal(ctx context.Context, app *pubsite.App, sig <-chan os.Signal) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-sig:
			app.ReloadContent(ctx)
		}
	}
}

func runExport(cmd *cobra.Command, args []string) error {
	app, logger, err := newApp()
	if err != nil {
		return fmt.Errorf("cannot load config: %w", err)
	}
	defer app.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	res, err := app.Export(ctx, outDir)
	logger.Info("export finished",
		slog.String("dir", outDir),
		slog.Int("written", res.Written),
		slog.Int("redirects", res.Redirects),
		slog.Int("failed", res.Failed),
	)
	return err
}
