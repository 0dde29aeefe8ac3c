package main

import (
	"context"
	"errors"
	"os"

	"github.com/erauner12/mcp-toolservers/internal/cli"
	"github.com/erauner12/mcp-toolservers/internal/mcpserver/config"
	"github.com/erauner12/mcp-toolservers/internal/servers/doapi"
)

// Set via ldflags at build time.
var version = "dev"

func main() {
	root := cli.NewRootCmd(cli.App{
		Use:     "do-api-server",
		Server:  config.ServerDigitalOcean,
		Name:    doapi.ServerName,
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

func setup(_ context.Context, deps cli.Deps) (func() error, error) {
	client := doapi.NewClient(deps.Config.DigitalOcean, deps.Logger)
	doapi.Register(deps.Registry, client)
	doapi.RegisterResources(deps.Resources, client)
	doapi.RegisterPrompts(deps.Prompts)
	return nil, nil
}
