// Package dofunctions deploys Python files as DigitalOcean Functions through doctl.
package dofunctions

import (
	"context"
	"strings"

	"github.com/erauner12/mcp-toolservers/internal/mcpserver/tools"
)

// ServerName identifies this server in initialize responses
const ServerName = "DigitalOcean Function Deployer"

// Register adds deploy_function to registry. defaultRegion applies when the
// caller does not choose one.
func Register(registry *tools.Registry, deployer *Deployer, defaultRegion string) {
	// deploy_function
	registry.MustRegister(tools.ToolDefinition{
		Name:        "deploy_function",
		Description: "Deploy a Python file as a serverless function to DigitalOcean using doctl",
		Params: []tools.Param{
			{Name: "path", Kind: tools.KindString, Description: "Path to the .py file", Required: true},
			{Name: "namespace", Kind: tools.KindString, Description: "Functions namespace label or ID; created when missing", Required: true},
			{Name: "region", Kind: tools.KindString, Description: "Region for a newly created namespace", Default: defaultRegion},
			{Name: "requirements", Kind: tools.KindArray, Description: "Python package requirements", Items: &tools.Param{Kind: tools.KindString}},
		},
		Result: `{"url", "namespace", "namespace_id", "function", "output"}`,
		Handler: func(ctx context.Context, args tools.Arguments) (any, error) {
			req := DeployRequest{
				Path:         strings.TrimSpace(args.String("path")),
				Namespace:    strings.TrimSpace(args.String("namespace")),
				Region:       args.String("region"),
				Dependencies: args.Strings("requirements"),
			}
			deployment, err := deployer.Deploy(ctx, req)
			if err != nil {
				return nil, err
			}
			return deployment, nil
		},
	})
}
