package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/abdulachik/sepsisx/internal/config"
	"github.com/abdulachik/sepsisx/internal/scheduler"
	"github.com/abdulachik/sepsisx/internal/stack"
)

var (
	synthFormat string
	synthOutput string
)

var synthCmd = &cobra.Command{
	Use:   "synth",
	Short: "Render the CloudFormation stack",
	Long: `Render the deployment stack: the execution role, the function and one
EventBridge rule per daily trigger.

Examples:
  sepsisx synth                          # JSON to stdout
  sepsisx synth --format yaml -o stack.yaml`,
	RunE: runSynth,
}

func init() {
	synthCmd.Flags().StringVarP(&synthFormat, "format", "f", "json", "Output format (json or yaml)")
	synthCmd.Flags().StringVarP(&synthOutput, "output", "o", "", "Write to file instead of stdout")
	rootCmd.AddCommand(synthCmd)
}

func runSynth(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := cfg.ValidateForSynth(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	tmpl, err := stack.Build(stack.Config{
		Description:  fmt.Sprintf("%s: scheduled research digest posts to X", cfg.StackName),
		FunctionName: cfg.FunctionName,
		SecretID:     cfg.SecretID,
		SecretARN:    cfg.SecretARN,
		CodeBucket:   cfg.CodeBucket,
		CodeKey:      cfg.CodeKey,
		Timeout:      cfg.FunctionTimeout,
		Triggers:     scheduler.DefaultTriggers(),
	})
	if err != nil {
		return err
	}

	data, err := stack.Render(tmpl, synthFormat)
	if err != nil {
		return err
	}

	if synthOutput == "" {
		_, err = os.Stdout.Write(data)
		return err
	}

	if err := os.WriteFile(synthOutput, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", synthOutput, err)
	}

	slog.Info("wrote stack", "path", synthOutput, "resources", len(tmpl.Resources))
	return nil
}
