package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env and restore after test
	origEnv := os.Environ()
	t.Cleanup(func() {
		os.Clearenv()
		for _, e := range origEnv {
			for i := 0; i < len(e); i++ {
				if e[i] == '=' {
					os.Setenv(e[:i], e[i+1:])
					break
				}
			}
		}
	})

	t.Run("defaults", func(t *testing.T) {
		os.Clearenv()
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "ap-northeast-1", cfg.Region)
		assert.Equal(t, "twitter-api-keys", cfg.SecretID)
		assert.Equal(t, "https://api.twitter.com", cfg.TwitterBaseURL)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
		assert.Equal(t, 30*time.Second, cfg.FunctionTimeout)
		assert.Equal(t, "SepsisXStack", cfg.StackName)
	})

	t.Run("custom values", func(t *testing.T) {
		os.Clearenv()
		os.Setenv("AWS_REGION", "us-east-1")
		os.Setenv("SECRET_ID", "custom-secret")
		os.Setenv("SECRET_ARN", "arn:aws:secretsmanager:us-east-1:123456789012:secret:custom-secret-AbCdEf")
		os.Setenv("TWITTER_API_BASE_URL", "http://localhost:9999")
		os.Setenv("HTTP_TIMEOUT", "5s")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "us-east-1", cfg.Region)
		assert.Equal(t, "custom-secret", cfg.SecretID)
		assert.Contains(t, cfg.SecretARN, "custom-secret")
		assert.Equal(t, "http://localhost:9999", cfg.TwitterBaseURL)
		assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	})

	t.Run("invalid duration", func(t *testing.T) {
		os.Clearenv()
		os.Setenv("HTTP_TIMEOUT", "invalid")

		_, err := Load()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "HTTP_TIMEOUT")
	})

	t.Run("invalid function timeout", func(t *testing.T) {
		os.Clearenv()
		os.Setenv("FUNCTION_TIMEOUT", "soon")

		_, err := Load()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "FUNCTION_TIMEOUT")
	})
}

func TestConfig_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		cfg := &Config{Region: "ap-northeast-1"}
		assert.NoError(t, cfg.Validate())
	})

	t.Run("missing region", func(t *testing.T) {
		cfg := &Config{}
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "AWS_REGION")
	})

}

func TestConfig_ValidateForPosting(t *testing.T) {
	base := func() *Config {
		return &Config{
			Region:         "ap-northeast-1",
			SecretID:       "twitter-api-keys",
			TwitterBaseURL: "https://api.twitter.com",
		}
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, base().ValidateForPosting())
	})

	t.Run("missing secret id", func(t *testing.T) {
		cfg := base()
		cfg.SecretID = ""
		err := cfg.ValidateForPosting()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "SECRET_ID")
	})

	t.Run("half static credentials", func(t *testing.T) {
		cfg := base()
		cfg.AccessKeyID = "AKIA..."
		err := cfg.ValidateForPosting()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "AWS_SECRET_ACCESS_KEY")
	})
}

func TestConfig_ValidateForSynth(t *testing.T) {
	base := func() *Config {
		return &Config{
			Region:          "ap-northeast-1",
			SecretARN:       "arn:aws:secretsmanager:ap-northeast-1:123456789012:secret:twitter-api-keys-AbCdEf",
			CodeBucket:      "deploy-bucket",
			FunctionTimeout: 30 * time.Second,
		}
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, base().ValidateForSynth())
	})

	t.Run("missing secret arn", func(t *testing.T) {
		cfg := base()
		cfg.SecretARN = ""
		err := cfg.ValidateForSynth()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "SECRET_ARN")
	})

	t.Run("missing code bucket", func(t *testing.T) {
		cfg := base()
		cfg.CodeBucket = ""
		err := cfg.ValidateForSynth()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "CODE_BUCKET")
	})

	t.Run("timeout beyond lambda maximum", func(t *testing.T) {
		cfg := base()
		cfg.FunctionTimeout = time.Hour
		err := cfg.ValidateForSynth()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "FUNCTION_TIMEOUT")
	})
}
