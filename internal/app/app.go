package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	"github.com/abdulachik/sepsisx/internal/config"
	"github.com/abdulachik/sepsisx/internal/job"
	"github.com/abdulachik/sepsisx/internal/poster"
	"github.com/abdulachik/sepsisx/internal/secrets"
)

// App is the main application container holding all dependencies.
type App struct {
	Config  *config.Config
	Secrets *secrets.Provider
	Handler *job.Handler
}

// Options adjust how the app posts.
type Options struct {
	// DryRun prints messages to DryRunOut instead of posting them.
	DryRun    bool
	DryRunOut io.Writer
}

// New creates a new application instance with all dependencies wired up.
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	client, err := NewSecretsManagerClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	provider := secrets.NewProvider(secrets.Config{
		Client:   client,
		SecretID: cfg.SecretID,
	})

	newPoster := func(creds *secrets.Credentials) poster.Poster {
		return NewTwitterPoster(cfg, creds)
	}
	if opts.DryRun {
		dry := poster.NewDryRunPoster(opts.DryRunOut)
		newPoster = func(*secrets.Credentials) poster.Poster { return dry }
	}

	handler := job.NewHandler(job.Config{
		Secrets:   provider,
		NewPoster: newPoster,
	})

	slog.Debug("app initialized",
		"region", cfg.Region,
		"secret_id", cfg.SecretID,
		"dry_run", opts.DryRun,
	)

	return &App{
		Config:  cfg,
		Secrets: provider,
		Handler: handler,
	}, nil
}

// NewSecretsManagerClient builds a Secrets Manager client from cfg. Static
// keys and an endpoint override are used only when configured; otherwise
// the default credential chain (the execution role when deployed) applies.
func NewSecretsManagerClient(ctx context.Context, cfg *config.Config) (*secretsmanager.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	opts = append(opts, awsconfig.WithRegion(cfg.Region))

	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var smOpts []func(*secretsmanager.Options)
	if cfg.SecretsBaseURL != "" {
		smOpts = append(smOpts, func(o *secretsmanager.Options) {
			o.BaseEndpoint = aws.String(cfg.SecretsBaseURL)
		})
	}

	return secretsmanager.NewFromConfig(awsCfg, smOpts...), nil
}

// NewTwitterPoster builds an X poster from a credential bundle.
func NewTwitterPoster(cfg *config.Config, creds *secrets.Credentials) *poster.TwitterPoster {
	return poster.NewTwitterPoster(poster.TwitterConfig{
		APIKey:            creds.APIKey,
		APIKeySecret:      creds.APIKeySecret,
		AccessToken:       creds.AccessToken,
		AccessTokenSecret: creds.AccessTokenSecret,
		BearerToken:       creds.BearerToken,
		BaseURL:           cfg.TwitterBaseURL,
		Timeout:           cfg.HTTPTimeout,
	})
}
