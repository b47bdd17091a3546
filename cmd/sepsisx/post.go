package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/abdulachik/sepsisx/internal/app"
	"github.com/abdulachik/sepsisx/internal/config"
	"github.com/abdulachik/sepsisx/internal/job"
)

var (
	postType   string
	postDryRun bool
	postVerify bool
)

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Post today's digest",
	Long: `Fetch credentials, compose today's message and post it to X, exactly as
a scheduled invocation would.

Examples:
  sepsisx post                     # Post the sepsis digest
  sepsisx post --type ards         # Post the ARDS digest
  sepsisx post --dry-run           # Show what would be posted without posting
  sepsisx post --verify            # Read the post back after publishing`,
	RunE: runPost,
}

func init() {
	postCmd.Flags().StringVarP(&postType, "type", "t", "", "Post type (sepsis or ards, default sepsis)")
	postCmd.Flags().BoolVar(&postDryRun, "dry-run", false, "Show what would be posted without actually posting")
	postCmd.Flags().BoolVar(&postVerify, "verify", false, "Look the post up by id after publishing")
	rootCmd.AddCommand(postCmd)
}

func runPost(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := cfg.ValidateForPosting(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	a, err := app.New(ctx, cfg, app.Options{
		DryRun:    postDryRun,
		DryRunOut: os.Stdout,
	})
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	slog.Info("starting post workflow", "post_type", postType, "dry_run", postDryRun)

	resp, _ := a.Handler.Handle(ctx, job.Event{PostType: postType})
	if err := printResponse(resp); err != nil {
		return err
	}

	body, err := resp.DecodeBody()
	if err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("post failed with status %d: %s", resp.StatusCode, body.Message)
	}

	if postVerify && !postDryRun {
		return verifyPost(ctx, a, body.TweetID)
	}
	return nil
}

func verifyPost(ctx context.Context, a *app.App, id string) error {
	creds, err := a.Secrets.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch credentials: %w", err)
	}
	if err := creds.Validate(); err != nil {
		return err
	}

	text, err := app.NewTwitterPoster(a.Config, creds).Lookup(ctx, id)
	if err != nil {
		return fmt.Errorf("verify post: %w", err)
	}

	fmt.Println()
	fmt.Println("=== Verified ===")
	fmt.Println()
	fmt.Println(text)
	return nil
}

func printResponse(resp job.Response) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	return nil
}
