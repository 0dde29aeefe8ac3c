// Package sqlite exposes a SQL database as MCP tools and a schema resource.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/erauner12/mcp-toolservers/internal/mcpserver/server"
	"github.com/erauner12/mcp-toolservers/internal/mcpserver/tools"
)

// ServerName identifies this server in initialize responses
const ServerName = "User Management"

// SchemaURI is the resource holding the database schema
const SchemaURI = "schema://main"

// maxQueryUsersLimit caps query_users page size
const maxQueryUsersLimit = 1000

// Register adds the sqlite tools to registry and the schema resource to resources
func Register(registry *tools.Registry, resources *server.Resources, store *Store) {
	// query_data
	registry.MustRegister(tools.ToolDefinition{
		Name:        "query_data",
		Description: "Execute a SQL query against the database and return the resulting rows",
		Params: []tools.Param{
			{Name: "sql", Kind: tools.KindString, Description: "SQL statement to execute", Required: true},
		},
		Result:  "array of row objects keyed by column name",
		Handler: handleQueryData(store),
	})

	// add_user
	registry.MustRegister(tools.ToolDefinition{
		Name:        "add_user",
		Description: "Insert a new user with name and city",
		Params: []tools.Param{
			{Name: "name", Kind: tools.KindString, Description: "User name", Required: true},
			{Name: "city", Kind: tools.KindString, Description: "City the user lives in", Required: true},
			{Name: "age", Kind: tools.KindInteger, Description: "User age in years"},
		},
		Result:  `{"id", "name", "city", "message"}`,
		Handler: handleAddUser(store),
	})

	// query_users
	registry.MustRegister(tools.ToolDefinition{
		Name:        "query_users",
		Description: "List users at least min_age years old, optionally filtered by city, ordered by name",
		Params: []tools.Param{
			{Name: "min_age", Kind: tools.KindInteger, Description: "Minimum age (inclusive)", Default: 0},
			{Name: "city", Kind: tools.KindString, Description: "Only return users from this city"},
			{Name: "limit", Kind: tools.KindInteger, Description: "Maximum number of users (1-1000)", Default: 100},
		},
		Result:  `array of {"name", "age"}`,
		Handler: handleQueryUsers(store),
	})

	resources.MustRegister(server.Resource{
		URI:         SchemaURI,
		Name:        "Database schema",
		Description: "CREATE TABLE statements of every table",
		MimeType:    "text/plain",
		Read:        store.Schema,
	})
}

func handleQueryData(store *Store) tools.Handler {
	return func(ctx context.Context, args tools.Arguments) (any, error) {
		query := strings.TrimSpace(args.String("sql"))
		if query == "" {
			return nil, errors.New("sql cannot be empty")
		}
		rows, err := store.Query(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("query failed: %w", err)
		}
		return rows, nil
	}
}

func handleAddUser(store *Store) tools.Handler {
	return func(ctx context.Context, args tools.Arguments) (any, error) {
		user := User{
			Name: args.String("name"),
			City: args.String("city"),
		}
		if args.Has("age") {
			age := args.Int("age")
			if age < 0 {
				return nil, errors.New("age cannot be negative")
			}
			user.Age = &age
		}

		id, err := store.AddUser(ctx, user)
		if err != nil {
			return nil, err
		}

		return map[string]any{
			"id":      id,
			"name":    user.Name,
			"city":    user.City,
			"message": fmt.Sprintf("User '%s' from '%s' added successfully.", user.Name, user.City),
		}, nil
	}
}

func handleQueryUsers(store *Store) tools.Handler {
	return func(ctx context.Context, args tools.Arguments) (any, error) {
		filter := UserFilter{
			MinAge: args.Int("min_age"),
			City:   args.String("city"),
			Limit:  args.Int("limit"),
		}
		if filter.Limit < 1 || filter.Limit > maxQueryUsersLimit {
			return nil, fmt.Errorf("limit must be between 1 and %d", maxQueryUsersLimit)
		}

		rows, err := store.QueryUsers(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("query users: %w", err)
		}
		return rows, nil
	}
}
