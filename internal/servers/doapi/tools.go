// Package doapi exposes a subset of the DigitalOcean v2 API as MCP tools.
package doapi

import (
	"context"
	"fmt"
	"strings"

	"github.com/erauner12/mcp-toolservers/internal/mcpserver/tools"
)

// ServerName identifies this server in initialize responses
const ServerName = "DigitalOcean App Platform"

const (
	maxPageSize = 200
	maxNodes    = 3
)

// PoolModes are the accepted connection pool modes
var PoolModes = []string{"transaction", "session", "statement"}

// API is the DigitalOcean surface used by the tools
type API interface {
	ListApps(ctx context.Context) ([]App, error)
	GetApp(ctx context.Context, appID string) (App, error)
	ListDeployments(ctx context.Context, appID string) ([]Deployment, error)
	CreateDeployment(ctx context.Context, appID string) (Deployment, error)
	DeleteApp(ctx context.Context, appID string) error
	ListDatabases(ctx context.Context) ([]Database, error)
	CreateDatabase(ctx context.Context, req DatabaseCreate) (Database, error)
	DeleteDatabase(ctx context.Context, dbID string) error
	GetDatabase(ctx context.Context, dbID string) (Database, error)
	ListDatabaseUsers(ctx context.Context, dbID string) ([]DatabaseUser, error)
	CreateDatabaseUser(ctx context.Context, dbID, username string) (DatabaseCredentials, error)
	ResetDatabaseUserPassword(ctx context.Context, dbID, username string) (DatabaseCredentials, error)
	CreateConnectionPool(ctx context.Context, dbID string, pool ConnectionPool) (ConnectionPool, error)
	Balance(ctx context.Context) (Balance, error)
	BillingHistory(ctx context.Context, limit int) ([]BillingEntry, error)
	Invoices(ctx context.Context, limit int) ([]Invoice, error)
}

// AppSummary is the per-app entry of get_apps
type AppSummary struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Region         string `json:"region"`
	DefaultIngress string `json:"default_ingress,omitempty"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

// Register adds the DigitalOcean tools to registry
func Register(registry *tools.Registry, api API) {
	appID := tools.Param{Name: "app_id", Kind: tools.KindString, Description: "App Platform app ID", Required: true}
	dbID := tools.Param{Name: "db_id", Kind: tools.KindString, Description: "Database cluster ID", Required: true}
	username := tools.Param{Name: "username", Kind: tools.KindString, Description: "Database user name", Required: true}

	registry.MustRegister(tools.ToolDefinition{
		Name:        "get_apps",
		Description: "List all apps in the DigitalOcean account",
		Result:      `{"apps": [{"id", "name", "region", "default_ingress", "created_at", "updated_at"}]}`,
		Handler: func(ctx context.Context, _ tools.Arguments) (any, error) {
			apps, err := api.ListApps(ctx)
			if err != nil {
				return nil, err
			}
			summaries := make([]AppSummary, 0, len(apps))
			for _, app := range apps {
				summaries = append(summaries, summarize(app))
			}
			return map[string]any{"apps": summaries}, nil
		},
	})

	registry.MustRegister(tools.ToolDefinition{
		Name:        "get_app_details",
		Description: "Get details of one app, including its active deployment",
		Params:      []tools.Param{appID},
		Handler: func(ctx context.Context, args tools.Arguments) (any, error) {
			return api.GetApp(ctx, strings.TrimSpace(args.String("app_id")))
		},
	})

	registry.MustRegister(tools.ToolDefinition{
		Name:        "get_deployments",
		Description: "List the deployments of an app",
		Params:      []tools.Param{appID},
		Result:      `{"deployments": [...]}`,
		Handler: func(ctx context.Context, args tools.Arguments) (any, error) {
			deployments, err := api.ListDeployments(ctx, strings.TrimSpace(args.String("app_id")))
			if err != nil {
				return nil, err
			}
			return map[string]any{"deployments": orEmpty(deployments)}, nil
		},
	})

	registry.MustRegister(tools.ToolDefinition{
		Name:        "deploy_app",
		Description: "Trigger a new deployment of an app",
		Params:      []tools.Param{appID},
		Handler: func(ctx context.Context, args tools.Arguments) (any, error) {
			return api.CreateDeployment(ctx, strings.TrimSpace(args.String("app_id")))
		},
	})

	registry.MustRegister(tools.ToolDefinition{
		Name:        "delete_app",
		Description: "Delete an app",
		Params:      []tools.Param{appID},
		Result:      `{"app_id", "deleted"}`,
		Handler: func(ctx context.Context, args tools.Arguments) (any, error) {
			id := strings.TrimSpace(args.String("app_id"))
			if err := api.DeleteApp(ctx, id); err != nil {
				return nil, err
			}
			return map[string]any{"app_id": id, "deleted": true}, nil
		},
	})

	registry.MustRegister(tools.ToolDefinition{
		Name:        "get_databases",
		Description: "List managed PostgreSQL clusters",
		Result:      `{"databases": [...]}`,
		Handler: func(ctx context.Context, _ tools.Arguments) (any, error) {
			databases, err := api.ListDatabases(ctx)
			if err != nil {
				return nil, err
			}
			return map[string]any{"databases": orEmpty(databases)}, nil
		},
	})

	registry.MustRegister(tools.ToolDefinition{
		Name:        "create_database",
		Description: "Create a managed PostgreSQL cluster",
		Params: []tools.Param{
			{Name: "name", Kind: tools.KindString, Description: "Cluster name", Required: true},
			{Name: "region", Kind: tools.KindString, Description: "Region slug", Default: "nyc"},
			{Name: "size", Kind: tools.KindString, Description: "Node size slug", Default: "db-s-1vcpu-1gb"},
			{Name: "version", Kind: tools.KindString, Description: "PostgreSQL major version", Default: "15"},
			{Name: "num_nodes", Kind: tools.KindInteger, Description: "Number of nodes", Default: 1},
		},
		Handler: func(ctx context.Context, args tools.Arguments) (any, error) {
			nodes := args.Int("num_nodes")
			if nodes < 1 || nodes > maxNodes {
				return nil, fmt.Errorf("num_nodes must be between 1 and %d", maxNodes)
			}
			return api.CreateDatabase(ctx, DatabaseCreate{
				Name:     strings.TrimSpace(args.String("name")),
				Engine:   EnginePostgres,
				Version:  args.String("version"),
				Region:   args.String("region"),
				Size:     args.String("size"),
				NumNodes: int(nodes),
			})
		},
	})

	registry.MustRegister(tools.ToolDefinition{
		Name:        "delete_database",
		Description: "Delete a database cluster",
		Params:      []tools.Param{dbID},
		Result:      `{"db_id", "deleted"}`,
		Handler: func(ctx context.Context, args tools.Arguments) (any, error) {
			id := strings.TrimSpace(args.String("db_id"))
			if err := api.DeleteDatabase(ctx, id); err != nil {
				return nil, err
			}
			return map[string]any{"db_id": id, "deleted": true}, nil
		},
	})

	registry.MustRegister(tools.ToolDefinition{
		Name:        "get_database_details",
		Description: "Get details and users of a database cluster",
		Params:      []tools.Param{dbID},
		Result:      `{"database", "users"}`,
		Handler: func(ctx context.Context, args tools.Arguments) (any, error) {
			id := strings.TrimSpace(args.String("db_id"))
			database, err := api.GetDatabase(ctx, id)
			if err != nil {
				return nil, err
			}
			users, err := api.ListDatabaseUsers(ctx, id)
			if err != nil {
				return nil, err
			}
			return map[string]any{"database": database, "users": orEmpty(users)}, nil
		},
	})

	registry.MustRegister(tools.ToolDefinition{
		Name:        "create_database_user",
		Description: "Create a user on a database cluster. The password is only shown once",
		Params:      []tools.Param{dbID, username},
		Result:      `{"db_id", "user": {"name", "role", "password"}}`,
		Handler: func(ctx context.Context, args tools.Arguments) (any, error) {
			id := strings.TrimSpace(args.String("db_id"))
			user, err := api.CreateDatabaseUser(ctx, id, strings.TrimSpace(args.String("username")))
			if err != nil {
				return nil, err
			}
			return map[string]any{"db_id": id, "user": user}, nil
		},
	})

	registry.MustRegister(tools.ToolDefinition{
		Name:        "reset_database_user_password",
		Description: "Generate a new password for a database user",
		Params:      []tools.Param{dbID, username},
		Result:      `{"db_id", "user": {"name", "role", "password"}}`,
		Handler: func(ctx context.Context, args tools.Arguments) (any, error) {
			id := strings.TrimSpace(args.String("db_id"))
			user, err := api.ResetDatabaseUserPassword(ctx, id, strings.TrimSpace(args.String("username")))
			if err != nil {
				return nil, err
			}
			return map[string]any{"db_id": id, "user": user}, nil
		},
	})

	registry.MustRegister(tools.ToolDefinition{
		Name:        "create_connection_pool",
		Description: "Create a connection pool on a database cluster",
		Params: []tools.Param{
			dbID,
			{Name: "name", Kind: tools.KindString, Description: "Pool name", Required: true},
			{Name: "mode", Kind: tools.KindEnum, Description: "Pooling mode", Enum: PoolModes, Default: "transaction"},
			{Name: "size", Kind: tools.KindInteger, Description: "Number of backend connections", Default: 10},
			{Name: "db", Kind: tools.KindString, Description: "Database to pool", Default: "defaultdb"},
			{Name: "user", Kind: tools.KindString, Description: "User the pool connects as", Default: "doadmin"},
		},
		Handler: func(ctx context.Context, args tools.Arguments) (any, error) {
			size := args.Int("size")
			if size < 1 {
				return nil, fmt.Errorf("size must be positive")
			}
			return api.CreateConnectionPool(ctx, strings.TrimSpace(args.String("db_id")), ConnectionPool{
				Name: strings.TrimSpace(args.String("name")),
				Mode: args.String("mode"),
				Size: int(size),
				DB:   args.String("db"),
				User: args.String("user"),
			})
		},
	})

	registry.MustRegister(tools.ToolDefinition{
		Name:        "get_account_balance",
		Description: "Get the current account balance. A positive balance is a credit",
		Handler: func(ctx context.Context, _ tools.Arguments) (any, error) {
			return api.Balance(ctx)
		},
	})

	registry.MustRegister(tools.ToolDefinition{
		Name:        "get_billing_history",
		Description: "Get recent billing history",
		Params: []tools.Param{
			{Name: "limit", Kind: tools.KindInteger, Description: "Maximum number of entries", Default: 10},
		},
		Result: `{"billing_history": [...]}`,
		Handler: func(ctx context.Context, args tools.Arguments) (any, error) {
			limit, err := pageLimit(args)
			if err != nil {
				return nil, err
			}
			history, err := api.BillingHistory(ctx, limit)
			if err != nil {
				return nil, err
			}
			return map[string]any{"billing_history": history}, nil
		},
	})

	registry.MustRegister(tools.ToolDefinition{
		Name:        "get_invoices",
		Description: "Get recent invoices",
		Params: []tools.Param{
			{Name: "limit", Kind: tools.KindInteger, Description: "Maximum number of invoices", Default: 5},
		},
		Result: `{"invoices": [...]}`,
		Handler: func(ctx context.Context, args tools.Arguments) (any, error) {
			limit, err := pageLimit(args)
			if err != nil {
				return nil, err
			}
			invoices, err := api.Invoices(ctx, limit)
			if err != nil {
				return nil, err
			}
			return map[string]any{"invoices": invoices}, nil
		},
	})
}

func pageLimit(args tools.Arguments) (int, error) {
	limit := args.Int("limit")
	if limit < 1 || limit > maxPageSize {
		return 0, fmt.Errorf("limit must be between 1 and %d", maxPageSize)
	}
	return int(limit), nil
}

func summarize(app App) AppSummary {
	region := app.Region.Name
	if region == "" {
		region = app.Region.Slug
	}
	return AppSummary{
		ID:             app.ID,
		Name:           app.Spec.Name,
		Region:         region,
		DefaultIngress: app.DefaultIngress,
		CreatedAt:      app.CreatedAt,
		UpdatedAt:      app.UpdatedAt,
	}
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
