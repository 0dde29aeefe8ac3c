package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var configEnvKeys = []string{
	"MCP_LOG_LEVEL", "MCP_DEBUG", "MCP_TRANSPORT", "MCP_HTTP_ADDR",
	"SQLITE_DB_PATH", "DATABASE_URL",
	"TWILIO_ACCOUNT_SID", "TWILIO_AUTH_TOKEN", "TWILIO_FROM_NUMBER", "TWILIO_DEFAULT_TO",
	"TWILIO_API_BASE_URL", "TWILIO_LOOKUP_BASE_URL",
	"RESEND_API_KEY", "RESEND_EMAIL_FROM", "RESEND_EMAIL_TO", "RESEND_API_BASE_URL",
	"DOCTL_PATH", "DO_DEFAULT_REGION", "DO_DEPLOY_TIMEOUT", "DO_API_TOKEN", "DO_API_BASE_URL",
}

// clearEnv unsets every recognized variable for the duration of the test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnvKeys {
		if value, ok := os.LookupEnv(key); ok {
			os.Unsetenv(key)
			t.Cleanup(func() { os.Setenv(key, value) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		wantErr bool
		checks  func(*testing.T, *Config)
	}{
		{
			name: "defaults when no env set",
			checks: func(t *testing.T, cfg *Config) {
				if cfg.LogLevel != "info" {
					t.Errorf("expected default LogLevel=info, got %s", cfg.LogLevel)
				}
				if cfg.Transport != TransportStdio {
					t.Errorf("expected stdio transport, got %s", cfg.Transport)
				}
				if cfg.Database.DSN() != "database.db" {
					t.Errorf("expected default database path, got %s", cfg.Database.DSN())
				}
				if cfg.Functions.DefaultRegion != "nyc1" {
					t.Errorf("expected default region nyc1, got %s", cfg.Functions.DefaultRegion)
				}
				if cfg.Functions.DeployTimeout.Duration != 10*time.Minute {
					t.Errorf("expected 10m deploy timeout, got %s", cfg.Functions.DeployTimeout)
				}
			},
		},
		{
			name: "twilio credentials from env",
			envVars: map[string]string{
				"TWILIO_ACCOUNT_SID": "AC123",
				"TWILIO_AUTH_TOKEN":  "secret",
				"TWILIO_FROM_NUMBER": "+15550000000",
				"TWILIO_DEFAULT_TO":  "+15551234567",
			},
			checks: func(t *testing.T, cfg *Config) {
				if cfg.Twilio.AccountSID != "AC123" || cfg.Twilio.AuthToken != "secret" {
					t.Errorf("unexpected twilio credentials: %+v", cfg.Twilio)
				}
				if cfg.Twilio.DefaultTo != "+15551234567" {
					t.Errorf("expected default recipient, got %s", cfg.Twilio.DefaultTo)
				}
			},
		},
		{
			name: "database url wins over path",
			envVars: map[string]string{
				"SQLITE_DB_PATH": "/tmp/test.db",
				"DATABASE_URL":   "postgres://localhost/tools",
			},
			checks: func(t *testing.T, cfg *Config) {
				if cfg.Database.DSN() != "postgres://localhost/tools" {
					t.Errorf("expected DATABASE_URL to win, got %s", cfg.Database.DSN())
				}
			},
		},
		{
			name: "transport and debug",
			envVars: map[string]string{
				"MCP_TRANSPORT": " HTTP ",
				"MCP_HTTP_ADDR": "127.0.0.1:9090",
				"MCP_DEBUG":     "1",
			},
			checks: func(t *testing.T, cfg *Config) {
				if cfg.Transport != TransportHTTP || cfg.HTTPAddr != "127.0.0.1:9090" {
					t.Errorf("unexpected transport settings: %s %s", cfg.Transport, cfg.HTTPAddr)
				}
				if !cfg.Debug {
					t.Error("expected Debug=true")
				}
				if cfg.LogLevel != "debug" {
					t.Errorf("expected MCP_DEBUG to raise LogLevel to debug, got %s", cfg.LogLevel)
				}
			},
		},
		{
			name: "explicit log level wins over debug",
			envVars: map[string]string{
				"MCP_DEBUG":     "true",
				"MCP_LOG_LEVEL": "warn",
			},
			checks: func(t *testing.T, cfg *Config) {
				if !cfg.Debug || cfg.LogLevel != "warn" {
					t.Errorf("expected debug with warn level, got debug=%v level=%s", cfg.Debug, cfg.LogLevel)
				}
			},
		},
		{
			name:    "invalid deploy timeout",
			envVars: map[string]string{"DO_DEPLOY_TIMEOUT": "soon"},
			wantErr: true,
		},
		{
			name:    "deploy timeout",
			envVars: map[string]string{"DO_DEPLOY_TIMEOUT": "90s"},
			checks: func(t *testing.T, cfg *Config) {
				if cfg.Functions.DeployTimeout.Duration != 90*time.Second {
					t.Errorf("expected 90s, got %s", cfg.Functions.DeployTimeout)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for key, value := range tt.envVars {
				os.Setenv(key, value)
			}

			cfg, err := LoadFromEnvironment()
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadFromEnvironment() error = %v, wantErr %v", err, tt.wantErr)
			}

			if err == nil && tt.checks != nil {
				tt.checks(t, cfg)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	jsonPath := filepath.Join(tmpDir, "config.json")
	jsonConfig := `{
  "logLevel": "debug",
  "resend": {"apiKey": "re_file", "from": "bot@example.com"},
  "functions": {"deployTimeout": "2m"}
}`
	if err := os.WriteFile(jsonPath, []byte(jsonConfig), 0644); err != nil {
		t.Fatalf("failed to create test config file: %v", err)
	}

	yamlPath := filepath.Join(tmpDir, "config.yaml")
	yamlConfig := `
transport: http
httpAddr: ":7070"
twilio:
  accountSid: AC999
  authToken: yaml-token
functions:
  defaultRegion: sfo3
  deployTimeout: 45s
`
	if err := os.WriteFile(yamlPath, []byte(yamlConfig), 0644); err != nil {
		t.Fatalf("failed to create test config file: %v", err)
	}

	badPath := filepath.Join(tmpDir, "bad.json")
	if err := os.WriteFile(badPath, []byte(`{"logLevel":`), 0644); err != nil {
		t.Fatalf("failed to create test config file: %v", err)
	}

	tests := []struct {
		name       string
		configPath string
		envVars    map[string]string
		wantErr    error
		checks     func(*testing.T, *Config)
	}{
		{
			name:       "json file keeps unspecified defaults",
			configPath: jsonPath,
			checks: func(t *testing.T, cfg *Config) {
				if cfg.LogLevel != "debug" || cfg.Resend.APIKey != "re_file" {
					t.Errorf("expected values from file, got %+v", cfg)
				}
				if cfg.Resend.BaseURL != "https://api.resend.com" {
					t.Errorf("expected default base URL to survive, got %s", cfg.Resend.BaseURL)
				}
				if cfg.Functions.DeployTimeout.Duration != 2*time.Minute {
					t.Errorf("expected 2m timeout from file, got %s", cfg.Functions.DeployTimeout)
				}
			},
		},
		{
			name:       "yaml file",
			configPath: yamlPath,
			checks: func(t *testing.T, cfg *Config) {
				if cfg.Transport != TransportHTTP || cfg.HTTPAddr != ":7070" {
					t.Errorf("unexpected transport from yaml: %s %s", cfg.Transport, cfg.HTTPAddr)
				}
				if cfg.Twilio.AccountSID != "AC999" {
					t.Errorf("expected twilio sid from yaml, got %s", cfg.Twilio.AccountSID)
				}
				if cfg.Functions.DefaultRegion != "sfo3" || cfg.Functions.DeployTimeout.Duration != 45*time.Second {
					t.Errorf("unexpected functions config: %+v", cfg.Functions)
				}
			},
		},
		{
			name:       "env overrides file",
			configPath: jsonPath,
			envVars:    map[string]string{"RESEND_API_KEY": "re_env"},
			checks: func(t *testing.T, cfg *Config) {
				if cfg.Resend.APIKey != "re_env" {
					t.Errorf("expected env to override file, got %s", cfg.Resend.APIKey)
				}
				if cfg.Resend.From != "bot@example.com" {
					t.Errorf("expected From from file, got %s", cfg.Resend.From)
				}
			},
		},
		{
			name:       "nonexistent file",
			configPath: filepath.Join(tmpDir, "missing.json"),
			wantErr:    ErrConfigFileNotFound,
		},
		{
			name:       "malformed file",
			configPath: badPath,
			wantErr:    ErrInvalidConfigFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for key, value := range tt.envVars {
				os.Setenv(key, value)
			}

			cfg, err := Load(tt.configPath)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Load() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if tt.checks != nil {
				tt.checks(t, cfg)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)

	envPath := filepath.Join(t.TempDir(), "test.env")
	contents := "RESEND_API_KEY=re_dotenv\nRESEND_EMAIL_FROM=dotenv@example.com\n"
	if err := os.WriteFile(envPath, []byte(contents), 0644); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}

	// Real environment wins over the file
	os.Setenv("RESEND_EMAIL_FROM", "real@example.com")

	if err := LoadDotEnv(envPath); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}

	cfg, err := LoadFromEnvironment()
	if err != nil {
		t.Fatalf("LoadFromEnvironment() error = %v", err)
	}
	if cfg.Resend.APIKey != "re_dotenv" {
		t.Errorf("expected key from .env, got %s", cfg.Resend.APIKey)
	}
	if cfg.Resend.From != "real@example.com" {
		t.Errorf("expected real env to win, got %s", cfg.Resend.From)
	}
}

func TestLoadDotEnv_Missing(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "nope.env")); err == nil {
		t.Error("expected error for missing explicit env file")
	}

	wd, _ := os.Getwd()
	t.Cleanup(func() { os.Chdir(wd) })
	os.Chdir(t.TempDir())
	if err := LoadDotEnv(""); err != nil {
		t.Errorf("expected missing default .env to be ignored, got %v", err)
	}
}

func TestConfigValidation(t *testing.T) {
	valid := func(mutate func(*Config)) *Config {
		cfg := DefaultConfig()
		cfg.Twilio.AccountSID = "AC123"
		cfg.Twilio.AuthToken = "token"
		cfg.Twilio.FromNumber = "+15550000000"
		cfg.Resend.APIKey = "re_key"
		cfg.Resend.From = "bot@example.com"
		cfg.DigitalOcean.APIToken = "dop_v1_token"
		if mutate != nil {
			mutate(cfg)
		}
		return cfg
	}

	tests := []struct {
		name    string
		server  string
		config  *Config
		wantErr error
	}{
		{"sqlite defaults", ServerSQLite, valid(nil), nil},
		{"sqlite without database", ServerSQLite, valid(func(c *Config) { c.Database = DatabaseConfig{} }), ErrMissingDatabase},
		{"twilio valid", ServerTwilio, valid(nil), nil},
		{"twilio missing token", ServerTwilio, valid(func(c *Config) { c.Twilio.AuthToken = "" }), ErrMissingTwilioCredentials},
		{"twilio missing from", ServerTwilio, valid(func(c *Config) { c.Twilio.FromNumber = "" }), ErrMissingTwilioFrom},
		{"resend missing key", ServerResend, valid(func(c *Config) { c.Resend.APIKey = "" }), ErrMissingResendAPIKey},
		{"resend missing from", ServerResend, valid(func(c *Config) { c.Resend.From = "" }), ErrMissingResendFrom},
		{"functions valid", ServerDOFunctions, valid(nil), nil},
		{"functions zero timeout", ServerDOFunctions, valid(func(c *Config) { c.Functions.DeployTimeout = Duration{} }), ErrInvalidDeployTimeout},
		{"functions missing doctl", ServerDOFunctions, valid(func(c *Config) { c.Functions.DoctlPath = "" }), ErrMissingDoctlPath},
		{"do api missing token", ServerDigitalOcean, valid(func(c *Config) { c.DigitalOcean.APIToken = "" }), ErrMissingDOAPIToken},
		{"bad transport", ServerSQLite, valid(func(c *Config) { c.Transport = "websocket" }), ErrInvalidTransport},
		{"http without addr", ServerSQLite, valid(func(c *Config) { c.Transport = TransportHTTP; c.HTTPAddr = "" }), ErrMissingHTTPAddr},
		{"unknown server", "ftp", valid(nil), ErrUnknownServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate(tt.server)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
