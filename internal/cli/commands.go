package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/erauner12/mcp-toolservers/internal/mcpserver/config"
	"github.com/erauner12/mcp-toolservers/internal/mcpserver/tools"
	"github.com/spf13/cobra"
)

func runServe(cmd *cobra.Command, app App) error {
	rt, err := start(cmd, app)
	if err != nil {
		return err
	}
	defer rt.close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt.logger.Info().
		Str("version", app.Version).
		Str("transport", rt.cfg.Transport).
		Int("tools", rt.tools.Registry().Len()).
		Msg("Starting MCP server")

	switch rt.cfg.Transport {
	case config.TransportHTTP:
		err = rt.server.ListenAndServe(ctx, rt.cfg.HTTPAddr)
	default:
		err = rt.server.ServeStdio(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		rt.logger.Error().Err(err).Msg("MCP server failed")
		return exitError(1, "server failed: %v", err)
	}

	rt.logger.Info().Msg("MCP server stopped")
	return nil
}

func newToolsCmd(app App) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Print the registered tools as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := start(cmd, app)
			if err != nil {
				return err
			}
			defer rt.close()

			return writeJSON(cmd, map[string]any{"tools": rt.tools.Registry().List()})
		},
	}
}

func newCallCmd(app App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "call <tool>",
		Short: "Invoke one tool and print the result envelope",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, _ := cmd.Flags().GetString("args")

			var arguments map[string]any
			if err := json.Unmarshal([]byte(raw), &arguments); err != nil {
				return exitError(2, "--args must be a JSON object: %v", err)
			}

			rt, err := start(cmd, app)
			if err != nil {
				return err
			}
			defer rt.close()

			result := rt.tools.Dispatch(cmd.Context(), tools.InvocationRequest{
				Tool:      args[0],
				Arguments: arguments,
			})
			if err := writeJSON(cmd, result); err != nil {
				return err
			}
			if !result.OK {
				return exitError(1, "tool call failed: %v", result.Err())
			}
			return nil
		},
	}
	cmd.Flags().String("args", "{}", "Tool arguments as a JSON object")
	return cmd
}

func writeJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
