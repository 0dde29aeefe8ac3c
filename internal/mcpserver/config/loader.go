package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultEnvFile is read by LoadDotEnv when no explicit path is given
const DefaultEnvFile = ".env"

// Load loads configuration from a file path and applies environment variable overrides
// Validation is deferred to allow CLI flag overrides to be applied first
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if err := loadFromFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := applyEnvironmentOverrides(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromEnvironment creates a configuration using only environment variables
// Validation is deferred to allow CLI flag overrides to be applied first
func LoadFromEnvironment() (*Config, error) {
	return Load("")
}

// LoadDotEnv exports the variables of a .env file into the process environment.
// Variables already present in the environment are left untouched. A missing
// default file is not an error; a missing explicit file is.
func LoadDotEnv(path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultEnvFile
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil
		}
		return fmt.Errorf("failed to read env file: %w", err)
	}

	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to parse env file %s: %w", path, err)
	}
	return nil
}

// loadFromFile decodes a JSON or YAML file (chosen by extension) over cfg
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrConfigFileNotFound
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfigFormat, err)
	}

	return nil
}

// applyEnvironmentOverrides applies configuration from environment variables
func applyEnvironmentOverrides(cfg *Config) error {
	if logLevel := os.Getenv("MCP_LOG_LEVEL"); logLevel != "" {
		cfg.LogLevel = logLevel
	}

	if debug := os.Getenv("MCP_DEBUG"); debug == "true" || debug == "1" {
		cfg.Debug = true
		if os.Getenv("MCP_LOG_LEVEL") == "" {
			cfg.LogLevel = "debug"
		}
	}

	if transport := os.Getenv("MCP_TRANSPORT"); transport != "" {
		cfg.Transport = strings.ToLower(strings.TrimSpace(transport))
	}

	setString(&cfg.HTTPAddr, "MCP_HTTP_ADDR")

	setString(&cfg.Database.Path, "SQLITE_DB_PATH")
	setString(&cfg.Database.URL, "DATABASE_URL")

	setString(&cfg.Twilio.AccountSID, "TWILIO_ACCOUNT_SID")
	setString(&cfg.Twilio.AuthToken, "TWILIO_AUTH_TOKEN")
	setString(&cfg.Twilio.FromNumber, "TWILIO_FROM_NUMBER")
	setString(&cfg.Twilio.DefaultTo, "TWILIO_DEFAULT_TO")
	setString(&cfg.Twilio.BaseURL, "TWILIO_API_BASE_URL")
	setString(&cfg.Twilio.LookupBaseURL, "TWILIO_LOOKUP_BASE_URL")

	setString(&cfg.Resend.APIKey, "RESEND_API_KEY")
	setString(&cfg.Resend.From, "RESEND_EMAIL_FROM")
	setString(&cfg.Resend.DefaultTo, "RESEND_EMAIL_TO")
	setString(&cfg.Resend.BaseURL, "RESEND_API_BASE_URL")

	setString(&cfg.Functions.DoctlPath, "DOCTL_PATH")
	setString(&cfg.Functions.DefaultRegion, "DO_DEFAULT_REGION")
	if timeout := strings.TrimSpace(os.Getenv("DO_DEPLOY_TIMEOUT")); timeout != "" {
		parsed, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid DO_DEPLOY_TIMEOUT: %w", err)
		}
		cfg.Functions.DeployTimeout = Duration{parsed}
	}

	setString(&cfg.DigitalOcean.APIToken, "DO_API_TOKEN")
	setString(&cfg.DigitalOcean.BaseURL, "DO_API_BASE_URL")

	return nil
}

func setString(dst *string, key string) {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		*dst = value
	}
}
