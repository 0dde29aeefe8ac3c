package main

import (
	"context"
	"errors"
	"os"

	"github.com/erauner12/mcp-toolservers/internal/cli"
	"github.com/erauner12/mcp-toolservers/internal/mcpserver/config"
	"github.com/erauner12/mcp-toolservers/internal/servers/resend"
)

// Set via ldflags at build time.
var version = "dev"

func main() {
	root := cli.NewRootCmd(cli.App{
		Use:     "resend-server",
		Server:  config.ServerResend,
		Name:    resend.ServerName,
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
	client := resend.NewClient(deps.Config.Resend, deps.Logger)
	resend.Register(deps.Registry, client, deps.Config.Resend)
	return nil, nil
}
