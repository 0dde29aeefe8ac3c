package main

import (
	"context"
	"errors"
	"os"

	"github.com/erauner12/mcp-toolservers/internal/cli"
	"github.com/erauner12/mcp-toolservers/internal/mcpserver/config"
	"github.com/erauner12/mcp-toolservers/internal/servers/twilio"
)

// Set via ldflags at build time.
var version = "dev"

func main() {
	root := cli.NewRootCmd(cli.App{
		Use:     "twilio-server",
		Server:  config.ServerTwilio,
		Name:    twilio.ServerName,
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
	client := twilio.NewClient(deps.Config.Twilio, deps.Logger)
	twilio.Register(deps.Registry, client, deps.Config.Twilio.DefaultTo, deps.Logger)
	return nil, nil
}
