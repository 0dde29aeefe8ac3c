package config

import "errors"

var (
	// ErrInvalidTransport indicates an unsupported transport name
	ErrInvalidTransport = errors.New("transport must be stdio or http")

	// ErrMissingHTTPAddr indicates the http transport has no listen address
	ErrMissingHTTPAddr = errors.New("httpAddr is required for the http transport")

	// ErrUnknownServer indicates Validate was called with an unknown server name
	ErrUnknownServer = errors.New("unknown server")

	// ErrMissingDatabase indicates neither SQLITE_DB_PATH nor DATABASE_URL is set
	ErrMissingDatabase = errors.New("database.path or database.url is required")

	// ErrMissingTwilioCredentials indicates the Twilio account SID or auth token is missing
	ErrMissingTwilioCredentials = errors.New("TWILIO_ACCOUNT_SID and TWILIO_AUTH_TOKEN are required")

	// ErrMissingTwilioFrom indicates the sending number is missing
	ErrMissingTwilioFrom = errors.New("TWILIO_FROM_NUMBER is required")

	// ErrMissingResendAPIKey indicates the Resend API key is missing
	ErrMissingResendAPIKey = errors.New("RESEND_API_KEY is required")

	// ErrMissingResendFrom indicates the sender address is missing
	ErrMissingResendFrom = errors.New("RESEND_EMAIL_FROM is required")

	// ErrMissingDoctlPath indicates no doctl executable is configured
	ErrMissingDoctlPath = errors.New("functions.doctlPath is required")

	// ErrInvalidDeployTimeout indicates a non-positive deployment timeout
	ErrInvalidDeployTimeout = errors.New("functions.deployTimeout must be positive")

	// ErrMissingDOAPIToken indicates the DigitalOcean API token is missing
	ErrMissingDOAPIToken = errors.New("DO_API_TOKEN is required")

	// ErrConfigFileNotFound indicates that the config file was not found
	ErrConfigFileNotFound = errors.New("configuration file not found")

	// ErrInvalidConfigFormat indicates that the config file could not be decoded
	ErrInvalidConfigFormat = errors.New("invalid configuration file format")
)
