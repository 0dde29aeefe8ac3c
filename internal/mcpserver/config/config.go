package config

import (
	"fmt"
	"strings"
	"time"
)

// Server names accepted by Validate
const (
	ServerSQLite       = "sqlite"
	ServerTwilio       = "twilio"
	ServerResend       = "resend"
	ServerDOFunctions  = "do-function"
	ServerDigitalOcean = "do-api"
)

// Transports
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Config holds all configuration for one tool server process.
// It is resolved once at startup and treated as read-only afterwards.
type Config struct {
	LogLevel  string `json:"logLevel" yaml:"logLevel"`
	Debug     bool   `json:"debug" yaml:"debug"`
	Transport string `json:"transport" yaml:"transport"`
	HTTPAddr  string `json:"httpAddr" yaml:"httpAddr"`

	Database     DatabaseConfig     `json:"database" yaml:"database"`
	Twilio       TwilioConfig       `json:"twilio" yaml:"twilio"`
	Resend       ResendConfig       `json:"resend" yaml:"resend"`
	Functions    FunctionsConfig    `json:"functions" yaml:"functions"`
	DigitalOcean DigitalOceanConfig `json:"digitalocean" yaml:"digitalocean"`
}

// DatabaseConfig selects the backing store of the sqlite server.
// URL wins over Path when both are set.
type DatabaseConfig struct {
	Path string `json:"path" yaml:"path"`
	URL  string `json:"url" yaml:"url"`
}

// DSN returns the connection string handed to the db package
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return d.Path
}

// TwilioConfig holds Twilio REST credentials
type TwilioConfig struct {
	AccountSID    string `json:"accountSid" yaml:"accountSid"`
	AuthToken     string `json:"authToken" yaml:"authToken"`
	FromNumber    string `json:"fromNumber" yaml:"fromNumber"`
	DefaultTo     string `json:"defaultTo" yaml:"defaultTo"`
	BaseURL       string `json:"baseUrl" yaml:"baseUrl"`
	LookupBaseURL string `json:"lookupBaseUrl" yaml:"lookupBaseUrl"`
}

// ResendConfig holds Resend API settings
type ResendConfig struct {
	APIKey    string `json:"apiKey" yaml:"apiKey"`
	From      string `json:"from" yaml:"from"`
	DefaultTo string `json:"defaultTo" yaml:"defaultTo"`
	BaseURL   string `json:"baseUrl" yaml:"baseUrl"`
}

// FunctionsConfig drives doctl for serverless deployments
type FunctionsConfig struct {
	DoctlPath     string   `json:"doctlPath" yaml:"doctlPath"`
	DefaultRegion string   `json:"defaultRegion" yaml:"defaultRegion"`
	DeployTimeout Duration `json:"deployTimeout" yaml:"deployTimeout"`
}

// DigitalOceanConfig holds v2 API settings
type DigitalOceanConfig struct {
	APIToken string `json:"apiToken" yaml:"apiToken"`
	BaseURL  string `json:"baseUrl" yaml:"baseUrl"`
}

// Duration is a time.Duration written as a Go duration string ("5m") in config files
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = parsed
	return nil
}

// MarshalText renders the duration string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Validate checks that everything the named server needs is configured
func (c *Config) Validate(server string) error {
	switch c.Transport {
	case TransportStdio:
	case TransportHTTP:
		if c.HTTPAddr == "" {
			return ErrMissingHTTPAddr
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidTransport, c.Transport)
	}

	switch server {
	case ServerSQLite:
		if c.Database.DSN() == "" {
			return ErrMissingDatabase
		}

	case ServerTwilio:
		if c.Twilio.AccountSID == "" || c.Twilio.AuthToken == "" {
			return ErrMissingTwilioCredentials
		}
		if c.Twilio.FromNumber == "" {
			return ErrMissingTwilioFrom
		}

	case ServerResend:
		if c.Resend.APIKey == "" {
			return ErrMissingResendAPIKey
		}
		if c.Resend.From == "" {
			return ErrMissingResendFrom
		}

	case ServerDOFunctions:
		if c.Functions.DoctlPath == "" {
			return ErrMissingDoctlPath
		}
		if c.Functions.DeployTimeout.Duration <= 0 {
			return ErrInvalidDeployTimeout
		}

	case ServerDigitalOcean:
		if c.DigitalOcean.APIToken == "" {
			return ErrMissingDOAPIToken
		}

	default:
		return fmt.Errorf("%w: %q", ErrUnknownServer, server)
	}

	return nil
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		LogLevel:  "info",
		Transport: TransportStdio,
		HTTPAddr:  ":8080",
		Database: DatabaseConfig{
			Path: "database.db",
		},
		Twilio: TwilioConfig{
			BaseURL:       "https://api.twilio.com",
			LookupBaseURL: "https://lookups.twilio.com",
		},
		Resend: ResendConfig{
			BaseURL: "https://api.resend.com",
		},
		Functions: FunctionsConfig{
			DoctlPath:     "doctl",
			DefaultRegion: "nyc1",
			DeployTimeout: Duration{10 * time.Minute},
		},
		DigitalOcean: DigitalOceanConfig{
			BaseURL: "https://api.digitalocean.com/v2/",
		},
	}
}
