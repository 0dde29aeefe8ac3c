package doapi

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/erauner12/mcp-toolservers/internal/mcpserver/server"
)

const summaryHistoryEntries = 10

// RegisterResources adds the read-only account views to resources
func RegisterResources(resources *server.Resources, api API) {
	add := func(uri, name, description string, read func(ctx context.Context) (any, error)) {
		resources.MustRegister(server.Resource{
			URI:         uri,
			Name:        name,
			Description: description,
			MimeType:    "application/json",
			Read: func(ctx context.Context) (string, error) {
				v, err := read(ctx)
				if err != nil {
					return "", err
				}
				return indent(v)
			},
		})
	}

	add("apps://list", "Apps", "All App Platform apps", func(ctx context.Context) (any, error) {
		apps, err := api.ListApps(ctx)
		if err != nil {
			return nil, err
		}
		summaries := make([]AppSummary, 0, len(apps))
		for _, app := range apps {
			summaries = append(summaries, summarize(app))
		}
		return summaries, nil
	})

	add("databases://list", "Databases", "All PostgreSQL clusters", func(ctx context.Context) (any, error) {
		databases, err := api.ListDatabases(ctx)
		if err != nil {
			return nil, err
		}
		return orEmpty(databases), nil
	})

	add("billing://summary", "Billing summary", "Account balance and recent billing history", func(ctx context.Context) (any, error) {
		balance, err := api.Balance(ctx)
		if err != nil {
			return nil, err
		}
		history, err := api.BillingHistory(ctx, summaryHistoryEntries)
		if err != nil {
			return nil, err
		}
		return map[string]any{"balance": balance, "recent_billing_history": orEmpty(history)}, nil
	})

	add("billing://history", "Billing history", "Billing history entries", func(ctx context.Context) (any, error) {
		history, err := api.BillingHistory(ctx, maxPageSize)
		if err != nil {
			return nil, err
		}
		return orEmpty(history), nil
	})

	add("billing://invoices", "Invoices", "Account invoices", func(ctx context.Context) (any, error) {
		invoices, err := api.Invoices(ctx, maxPageSize)
		if err != nil {
			return nil, err
		}
		return orEmpty(invoices), nil
	})
}

// RegisterPrompts adds the guided workflows backed by the registered tools
func RegisterPrompts(prompts *server.Prompts) {
	prompts.MustRegister(server.Prompt{
		Name:        "create_database_prompt",
		Description: "Create a PostgreSQL cluster with a user and a connection pool",
		Text: "I want to create a new PostgreSQL database on DigitalOcean.\n\n" +
			"1. Ask me for a cluster name and confirm region (default nyc), size (default db-s-1vcpu-1gb) and node count.\n" +
			"2. Create it with create_database.\n" +
			"3. Create an application user with create_database_user and show me its password once.\n" +
			"4. Offer to add a connection pool with create_connection_pool in transaction mode.\n" +
			"5. Summarize the connection details from get_database_details.",
	})

	prompts.MustRegister(server.Prompt{
		Name:        "analyze_costs_prompt",
		Description: "Review current spend across apps and databases",
		Text: "Analyze my DigitalOcean costs.\n\n" +
			"1. Read the current balance with get_account_balance.\n" +
			"2. List running apps with get_apps and clusters with get_databases.\n" +
			"3. Compare month-to-date usage with the last entries of get_billing_history.\n" +
			"4. Point out idle apps or oversized clusters worth removing and give an estimated monthly saving.",
	})

	prompts.MustRegister(server.Prompt{
		Name:        "billing_history_prompt",
		Description: "Summarize recent charges and invoices",
		Text: "Summarize my recent DigitalOcean billing.\n\n" +
			"1. Fetch get_billing_history with a limit of 20 and get_invoices with a limit of 6.\n" +
			"2. Group charges by month and show the trend.\n" +
			"3. Flag any month more than 20% above the previous one.",
	})
}

func indent(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode resource: %w", err)
	}
	return string(data), nil
}
