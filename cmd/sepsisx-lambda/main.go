// Command sepsisx-lambda is the function entry point. Build it as
// "bootstrap" for the provided.al2023 runtime.
package main

import (
	"context"
	"log/slog"
	"os"
	_ "time/tzdata"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/abdulachik/sepsisx/internal/app"
	"github.com/abdulachik/sepsisx/internal/config"
)

func main() {
	level := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	if err := cfg.ValidateForPosting(); err != nil {
		slog.Error("validate config", "error", err)
		os.Exit(1)
	}

	a, err := app.New(context.Background(), cfg, app.Options{})
	if err != nil {
		slog.Error("initialize", "error", err)
		os.Exit(1)
	}

	lambda.Start(a.Handler.Handle)
}
