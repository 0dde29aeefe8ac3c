package main

import (
	"context"
	"errors"
	"os"

	"github.com/erauner12/mcp-toolservers/internal/cli"
	"github.com/erauner12/mcp-toolservers/internal/db"
	"github.com/erauner12/mcp-toolservers/internal/mcpserver/config"
	"github.com/erauner12/mcp-toolservers/internal/servers/sqlite"
)

// Set via ldflags at build time.
var version = "dev"

func main() {
	root := cli.NewRootCmd(cli.App{
		Use:     "sqlite-server",
		Server:  config.ServerSQLite,
		Name:    sqlite.ServerName,
		Version: version,
		Setup:   setup,
	})
	if err := root.Execute(); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

func setup(ctx context.Context, deps cli.Deps) (func() error, error) {
	database, err := db.Open(ctx, deps.Config.Database.DSN(), deps.Logger)
	if err != nil {
		return nil, err
	}

	store := sqlite.NewStore(database)
	if err := store.EnsureSchema(ctx); err != nil {
		database.Close()
		return nil, err
	}

	sqlite.Register(deps.Registry, deps.Resources, store)
	return database.Close, nil
}
