package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abdulachik/sepsisx/internal/app"
	"github.com/abdulachik/sepsisx/internal/config"
	"github.com/abdulachik/sepsisx/internal/scheduler"
)

var serveDryRun bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the daily schedule locally",
	Long: `Run a long-lived process that fires each trigger at its daily JST time,
the same schedule the deployed EventBridge rules follow.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveDryRun, "dry-run", false, "Print messages instead of posting")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := cfg.ValidateForServe(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	a, err := app.New(ctx, cfg, app.Options{
		DryRun:    serveDryRun,
		DryRunOut: os.Stdout,
	})
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	sched, err := scheduler.New(scheduler.Config{
		Invoker:  a.Handler,
		Triggers: scheduler.DefaultTriggers(),
		Timeout:  cfg.FunctionTimeout,
	})
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}

	slog.Info("starting sepsisx scheduler",
		"secret_id", cfg.SecretID,
		"dry_run", serveDryRun,
	)

	// Run scheduler in background
	errCh := make(chan error, 1)
	go func() {
		errCh <- sched.Run(ctx)
	}()

	// Wait for shutdown signal or error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("received shutdown signal", "signal", sig)
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("scheduler error: %w", err)
		}
	}

	slog.Info("shutting down...")
	cancel()

	health := sched.Health()
	for _, name := range health.Names() {
		st := health.GetStatus(name)
		slog.Info("trigger summary",
			"name", name,
			"healthy", st.Healthy,
			"runs", st.Runs,
			"failures", st.Failures,
			"last_run", st.LastRun,
		)
	}

	return nil
}
