package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// AWS
	Region    string
	AccountID string

	// Secrets Manager
	SecretID        string // Name or ARN passed to GetSecretValue
	SecretARN       string // Full ARN granted to the execution role
	SecretsBaseURL  string // Optional endpoint override (localstack)
	AccessKeyID     string // Optional static credentials
	SecretAccessKey string

	// X API
	TwitterBaseURL string
	HTTPTimeout    time.Duration

	// Logging
	LogLevel string

	// Deployment
	StackName       string
	FunctionName    string
	FunctionTimeout time.Duration
	CodeBucket      string
	CodeKey         string
}

// Load reads configuration from environment variables.
// It automatically loads .env file if present.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		Region:          getEnv("AWS_REGION", "ap-northeast-1"),
		AccountID:       getEnv("AWS_ACCOUNT_ID", ""),
		SecretID:        getEnv("SECRET_ID", "twitter-api-keys"),
		SecretARN:       getEnv("SECRET_ARN", ""),
		SecretsBaseURL:  getEnv("AWS_ENDPOINT_URL_SECRETSMANAGER", ""),
		AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		TwitterBaseURL:  getEnv("TWITTER_API_BASE_URL", "https://api.twitter.com"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		StackName:       getEnv("STACK_NAME", "SepsisXStack"),
		FunctionName:    getEnv("FUNCTION_NAME", "TwitterBotFunction"),
		CodeBucket:      getEnv("CODE_BUCKET", ""),
		CodeKey:         getEnv("CODE_KEY", "sepsisx/bootstrap.zip"),
	}

	// Parse durations
	var err error
	cfg.HTTPTimeout, err = time.ParseDuration(getEnv("HTTP_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}

	cfg.FunctionTimeout, err = time.ParseDuration(getEnv("FUNCTION_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid FUNCTION_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Region == "" {
		return fmt.Errorf("AWS_REGION is required")
	}
	return nil
}

// ValidateForPosting checks configuration needed to fetch credentials and post.
func (c *Config) ValidateForPosting() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.SecretID == "" {
		return fmt.Errorf("SECRET_ID is required for posting")
	}
	if c.TwitterBaseURL == "" {
		return fmt.Errorf("TWITTER_API_BASE_URL is required for posting")
	}
	if (c.AccessKeyID == "") != (c.SecretAccessKey == "") {
		return fmt.Errorf("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set together")
	}
	return nil
}

// ValidateForSynth checks configuration needed to render the deployment stack.
func (c *Config) ValidateForSynth() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.SecretARN == "" {
		return fmt.Errorf("SECRET_ARN is required for synth")
	}
	if c.CodeBucket == "" {
		return fmt.Errorf("CODE_BUCKET is required for synth")
	}
	if c.FunctionTimeout <= 0 || c.FunctionTimeout > 15*time.Minute {
		return fmt.Errorf("FUNCTION_TIMEOUT must be between 1s and 15m, got %s", c.FunctionTimeout)
	}
	return nil
}

// ValidateForServe checks all configuration needed for serve mode.
func (c *Config) ValidateForServe() error {
	return c.ValidateForPosting()
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
