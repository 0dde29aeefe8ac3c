// Package resend exposes email sending through Resend as an MCP tool.
package resend

import (
	"context"
	"errors"
	"strings"

	"github.com/erauner12/mcp-toolservers/internal/mcpserver/config"
	"github.com/erauner12/mcp-toolservers/internal/mcpserver/tools"
)

// ServerName identifies this server in initialize responses
const ServerName = "Resend Email Sender"

var (
	errEmptySubject = errors.New("subject cannot be empty")
	errEmptyBody    = errors.New("email body cannot be empty")
	errNoRecipient  = errors.New("no recipient specified")
)

// Register adds send_email to registry
func Register(registry *tools.Registry, mailer Mailer, cfg config.ResendConfig) {
	// send_email
	registry.MustRegister(tools.ToolDefinition{
		Name:        "send_email",
		Description: "Send an HTML email. The recipient defaults to RESEND_EMAIL_TO",
		Params: []tools.Param{
			{Name: "subject", Kind: tools.KindString, Description: "Email subject line", Required: true},
			{Name: "html_body", Kind: tools.KindString, Description: "Email body as HTML", Required: true},
			{Name: "to_email", Kind: tools.KindString, Description: "Recipient address"},
		},
		Result: `{"delivery_id", "to"}`,
		Handler: func(ctx context.Context, args tools.Arguments) (any, error) {
			recipient := strings.TrimSpace(args.String("to_email"))
			if recipient == "" {
				recipient = cfg.DefaultTo
			}

			email := Email{
				From:    cfg.From,
				To:      recipient,
				Subject: args.String("subject"),
				HTML:    args.String("html_body"),
			}
			switch {
			case strings.TrimSpace(email.Subject) == "":
				return nil, errEmptySubject
			case strings.TrimSpace(email.HTML) == "":
				return nil, errEmptyBody
			case email.To == "":
				return nil, errNoRecipient
			}

			id, err := mailer.SendEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			return map[string]any{"delivery_id": id, "to": recipient}, nil
		},
	})
}
