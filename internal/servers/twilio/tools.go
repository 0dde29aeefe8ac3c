// Package twilio exposes SMS sending and phone number validation as MCP tools.
package twilio

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/erauner12/mcp-toolservers/internal/mcpserver/tools"
	"github.com/rs/zerolog"
)

// ServerName identifies this server in initialize responses
const ServerName = "Twilio SMS"

var e164 = regexp.MustCompile(`^\+[1-9][0-9]{6,14}$`)

// Register adds send_sms and validate_phone to registry.
// defaultTo is used when send_sms is called without a recipient.
func Register(registry *tools.Registry, messenger Messenger, defaultTo string, logger zerolog.Logger) {
	// send_sms
	registry.MustRegister(tools.ToolDefinition{
		Name:        "send_sms",
		Description: "Send an SMS message. The recipient defaults to the configured number and is validated before sending",
		Params: []tools.Param{
			{Name: "body", Kind: tools.KindString, Description: "Message text", Required: true},
			{Name: "to", Kind: tools.KindString, Description: "Recipient in E.164 format, e.g. +15551234567"},
		},
		Result:  `{"delivery_id", "to", "status"}`,
		Handler: handleSendSMS(messenger, defaultTo),
	})

	// validate_phone
	registry.MustRegister(tools.ToolDefinition{
		Name:        "validate_phone",
		Description: "Check whether a phone number is valid",
		Params: []tools.Param{
			{Name: "number", Kind: tools.KindString, Description: "Phone number in E.164 format", Required: true},
		},
		Result:  `{"number", "valid", "source"}`,
		Handler: handleValidatePhone(messenger, logger),
	})
}

func handleSendSMS(messenger Messenger, defaultTo string) tools.Handler {
	return func(ctx context.Context, args tools.Arguments) (any, error) {
		body := args.String("body")
		if strings.TrimSpace(body) == "" {
			return nil, fmt.Errorf("message body cannot be empty")
		}

		to := strings.TrimSpace(args.String("to"))
		if to == "" {
			to = defaultTo
		}
		if to == "" {
			return nil, fmt.Errorf("no recipient specified and TWILIO_DEFAULT_TO is not set")
		}

		valid, err := messenger.ValidateNumber(ctx, to)
		if err != nil {
			return nil, fmt.Errorf("could not validate %s: %w", to, err)
		}
		if !valid {
			return nil, fmt.Errorf("invalid phone number: %s", to)
		}

		msg, err := messenger.SendSMS(ctx, to, body)
		if err != nil {
			return nil, err
		}

		return map[string]any{
			"delivery_id": msg.SID,
			"to":          to,
			"status":      msg.Status,
		}, nil
	}
}

func handleValidatePhone(messenger Messenger, logger zerolog.Logger) tools.Handler {
	return func(ctx context.Context, args tools.Arguments) (any, error) {
		number := strings.TrimSpace(args.String("number"))

		valid, err := messenger.ValidateNumber(ctx, number)
		if err != nil {
			logger.Warn().Err(err).Str("number", number).Msg("Lookup failed, falling back to local format check")
			return map[string]any{
				"number": number,
				"valid":  e164.MatchString(number),
				"source": "local",
			}, nil
		}

		return map[string]any{
			"number": number,
			"valid":  valid,
			"source": "lookup",
		}, nil
	}
}
