package twilio

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/erauner12/mcp-toolservers/internal/mcpserver/client"
	"github.com/erauner12/mcp-toolservers/internal/mcpserver/config"
	"github.com/rs/zerolog"
)

// Message is the subset of a Twilio message resource the tools report
type Message struct {
	SID    string `json:"sid"`
	To     string `json:"to"`
	Status string `json:"status"`
}

// Messenger is the messaging backend used by the tools
type Messenger interface {
	SendSMS(ctx context.Context, to, body string) (Message, error)
	ValidateNumber(ctx context.Context, number string) (bool, error)
}

// Client talks to the Twilio Messaging and Lookup v2 REST APIs
type Client struct {
	messages   *client.HTTPClient
	lookups    *client.HTTPClient
	accountSID string
	from       string
}

// NewClient creates a Twilio client from configuration
func NewClient(cfg config.TwilioConfig, logger zerolog.Logger) *Client {
	auth := client.WithAuth(client.BasicAuth(cfg.AccountSID, cfg.AuthToken))
	log := client.WithLogger(logger.With().Str("backend", "twilio").Logger())

	return &Client{
		messages:   client.NewHTTPClient(cfg.BaseURL, auth, log),
		lookups:    client.NewHTTPClient(cfg.LookupBaseURL, auth, log),
		accountSID: cfg.AccountSID,
		from:       cfg.FromNumber,
	}
}

// SendSMS sends body to the given number and returns the created message
func (c *Client) SendSMS(ctx context.Context, to, body string) (Message, error) {
	form := url.Values{}
	form.Set("To", to)
	form.Set("From", c.from)
	form.Set("Body", body)

	path := fmt.Sprintf("/2010-04-01/Accounts/%s/Messages.json", url.PathEscape(c.accountSID))

	var msg Message
	if err := c.messages.PostForm(ctx, path, form, &msg); err != nil {
		return Message{}, fmt.Errorf("send sms: %w", err)
	}
	if msg.SID == "" {
		return Message{}, errors.New("send sms: response carried no message sid")
	}
	return msg, nil
}

// ValidateNumber asks the Lookup API whether number is a valid phone number.
// Numbers the API does not know are reported invalid, not as errors.
func (c *Client) ValidateNumber(ctx context.Context, number string) (bool, error) {
	var lookup struct {
		Valid       bool   `json:"valid"`
		PhoneNumber string `json:"phone_number"`
	}

	err := c.lookups.DoJSON(ctx, http.MethodGet, "/v2/PhoneNumbers/"+url.PathEscape(number), nil, &lookup)
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && (apiErr.IsNotFound() || apiErr.StatusCode == http.StatusBadRequest) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup %s: %w", number, err)
	}
	return lookup.Valid, nil
}
