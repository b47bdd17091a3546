package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// SecretsManagerAPI captures the Secrets Manager calls the provider makes.
// *secretsmanager.Client satisfies it; tests substitute a fake.
type SecretsManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// FetchError reports a failed read against the secret store.
type FetchError struct {
	SecretID string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("get secret %q: %v", e.SecretID, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Provider fetches the credential bundle for one fixed secret.
type Provider struct {
	client   SecretsManagerAPI
	secretID string
}

// Config holds configuration for the provider.
type Config struct {
	Client   SecretsManagerAPI
	SecretID string
}

// NewProvider creates a new provider.
func NewProvider(cfg Config) *Provider {
	return &Provider{
		client:   cfg.Client,
		secretID: cfg.SecretID,
	}
}

// SecretID returns the secret name or ARN read by Fetch.
func (p *Provider) SecretID() string {
	return p.secretID
}

// Fetch performs a single GetSecretValue call and decodes the JSON payload.
// Store errors come back as *FetchError. A secret without a string value
// yields (nil, nil); absent keys decode to empty fields and are left for the
// caller to validate.
func (p *Provider) Fetch(ctx context.Context) (*Credentials, error) {
	out, err := p.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(p.secretID),
	})
	if err != nil {
		return nil, &FetchError{SecretID: p.secretID, Err: err}
	}

	if out == nil || out.SecretString == nil {
		slog.Warn("secret has no string value", "secret_id", p.secretID)
		return nil, nil
	}

	var creds Credentials
	if err := json.Unmarshal([]byte(aws.ToString(out.SecretString)), &creds); err != nil {
		return nil, fmt.Errorf("decode secret %q: %w", p.secretID, err)
	}

	slog.Debug("fetched credentials",
		"secret_id", p.secretID,
		"version_id", aws.ToString(out.VersionId),
		"fields", creds,
	)

	return &creds, nil
}
