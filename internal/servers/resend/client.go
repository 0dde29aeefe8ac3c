package resend

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/erauner12/mcp-toolservers/internal/mcpserver/client"
	"github.com/erauner12/mcp-toolservers/internal/mcpserver/config"
	"github.com/rs/zerolog"
)

// Email is one outgoing message
type Email struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Mailer is the email backend used by send_email
type Mailer interface {
	SendEmail(ctx context.Context, email Email) (string, error)
}

// Client talks to the Resend REST API
type Client struct {
	http *client.HTTPClient
}

// NewClient creates a Resend client from configuration
func NewClient(cfg config.ResendConfig, logger zerolog.Logger) *Client {
	return &Client{
		http: client.NewHTTPClient(cfg.BaseURL,
			client.WithAuth(client.BearerToken(cfg.APIKey)),
			client.WithLogger(logger.With().Str("backend", "resend").Logger()),
		),
	}
}

// SendEmail sends email and returns the Resend message id
func (c *Client) SendEmail(ctx context.Context, email Email) (string, error) {
	var resp struct {
		ID string `json:"id"`
	}
	if err := c.http.DoJSON(ctx, http.MethodPost, "/emails", email, &resp); err != nil {
		return "", fmt.Errorf("send email: %w", err)
	}
	if resp.ID == "" {
		return "", errors.New("send email: response carried no id")
	}
	return resp.ID, nil
}
