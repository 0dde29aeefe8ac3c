package main

import (
	"context"
	"errors"
	"os"

	"github.com/erauner12/mcp-toolservers/internal/cli"
	"github.com/erauner12/mcp-toolservers/internal/mcpserver/config"
	"github.com/erauner12/mcp-toolservers/internal/servers/dofunctions"
)

// Set via ldflags at build time.
var version = "dev"

func main() {
	root := cli.NewRootCmd(cli.App{
		Use:     "do-function-server",
		Server:  config.ServerDOFunctions,
		Name:    dofunctions.ServerName,
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
	cfg := deps.Config.Functions
	runner := &dofunctions.ExecRunner{Path: cfg.DoctlPath, Logger: deps.Logger}
	deployer := dofunctions.NewDeployer(runner, cfg.DeployTimeout.Duration, deps.Logger)
	dofunctions.Register(deps.Registry, deployer, cfg.DefaultRegion)
	return nil, nil
}
