package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abdulachik/sepsisx/internal/app"
	"github.com/abdulachik/sepsisx/internal/config"
	"github.com/abdulachik/sepsisx/internal/job"
)

var (
	invokeEvent  string
	invokeDryRun bool
)

var invokeCmd = &cobra.Command{
	Use:   "invoke",
	Short: "Run the handler with a raw event",
	Long: `Decode an invocation event the way the Lambda runtime does and print the
handler's response. The event is read from --event, or from stdin when
--event is "-".

Examples:
  sepsisx invoke --event '{"post_type":"ards"}'
  echo '{}' | sepsisx invoke --event - --dry-run`,
	RunE: runInvoke,
}

func init() {
	invokeCmd.Flags().StringVarP(&invokeEvent, "event", "e", "{}", "Event JSON, or - for stdin")
	invokeCmd.Flags().BoolVar(&invokeDryRun, "dry-run", false, "Print the message instead of posting")
	rootCmd.AddCommand(invokeCmd)
}

func readEvent(raw string, stdin io.Reader) (job.Event, error) {
	var r io.Reader = strings.NewReader(raw)
	if raw == "-" {
		r = stdin
	}

	var event job.Event
	if err := json.NewDecoder(r).Decode(&event); err != nil {
		return job.Event{}, fmt.Errorf("decode event: %w", err)
	}
	return event, nil
}

func runInvoke(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	event, err := readEvent(invokeEvent, os.Stdin)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := cfg.ValidateForPosting(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	a, err := app.New(ctx, cfg, app.Options{
		DryRun:    invokeDryRun,
		DryRunOut: os.Stderr,
	})
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	resp, _ := a.Handler.Handle(ctx, event)
	return printResponse(resp)
}
