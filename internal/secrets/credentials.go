// Package secrets reads the X API credential bundle from AWS Secrets Manager.
package secrets

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrMissingCredentials is returned by Validate when one or more fields are empty.
var ErrMissingCredentials = errors.New("missing credentials")

// Credentials is the OAuth credential bundle stored in the secret.
// It is fetched per invocation and must never be logged.
type Credentials struct {
	APIKey            string `json:"api_key"`
	APIKeySecret      string `json:"api_key_secret"`
	AccessToken       string `json:"access_token"`
	AccessTokenSecret string `json:"access_token_secret"`
	BearerToken       string `json:"bearer_token"`
}

// Validate checks that all five fields are present.
func (c *Credentials) Validate() error {
	if c == nil {
		return ErrMissingCredentials
	}

	var missing []string
	for _, f := range []struct {
		key, val string
	}{
		{"api_key", c.APIKey},
		{"api_key_secret", c.APIKeySecret},
		{"access_token", c.AccessToken},
		{"access_token_secret", c.AccessTokenSecret},
		{"bearer_token", c.BearerToken},
	} {
		if f.val == "" {
			missing = append(missing, f.key)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}
	return nil
}

// String redacts every field.
func (c Credentials) String() string {
	return "secrets.Credentials{REDACTED}"
}

// GoString redacts every field for %#v.
func (c Credentials) GoString() string {
	return c.String()
}

// LogValue keeps credentials out of structured logs, reporting only which
// fields are populated.
func (c Credentials) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("api_key", c.APIKey != ""),
		slog.Bool("api_key_secret", c.APIKeySecret != ""),
		slog.Bool("access_token", c.AccessToken != ""),
		slog.Bool("access_token_secret", c.AccessTokenSecret != ""),
		slog.Bool("bearer_token", c.BearerToken != ""),
	)
}
