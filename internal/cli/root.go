// Package cli builds the command line shared by every tool server binary.
package cli

import (
	"context"
	"fmt"

	"github.com/erauner12/mcp-toolservers/internal/mcpserver/config"
	"github.com/erauner12/mcp-toolservers/internal/mcpserver/server"
	"github.com/erauner12/mcp-toolservers/internal/mcpserver/tools"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Deps is handed to a backend's Setup to populate the server
type Deps struct {
	Config    *config.Config
	Registry  *tools.Registry
	Resources *server.Resources
	Prompts   *server.Prompts
	Logger    zerolog.Logger
}

// Setup wires one backend. The returned cleanup runs on shutdown and may be nil.
type Setup func(ctx context.Context, deps Deps) (cleanup func() error, err error)

// App describes one server binary
type App struct {
	// Use is the binary name
	Use string
	// Server selects the configuration checks (config.ServerSQLite, ...)
	Server string
	// Name is announced as serverInfo.name
	Name    string
	Version string
	Setup   Setup
}

// NewRootCmd creates the command tree: the root serves MCP, "tools" lists the
// registered tools and "call" runs a single invocation.
func NewRootCmd(app App) *cobra.Command {
	root := &cobra.Command{
		Use:          app.Use,
		Short:        fmt.Sprintf("%s MCP server", app.Name),
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, app)
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "Path to configuration file (JSON or YAML)")
	flags.String("env-file", "", "Path to .env file (default: ./.env when present)")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.Bool("debug", false, "Enable debug logging")
	flags.String("transport", "", "Transport (stdio, http)")
	flags.String("http-addr", "", "Listen address for the http transport")

	root.Version = app.Version
	root.SetVersionTemplate(fmt.Sprintf("%s version %s\n", app.Use, app.Version))

	root.AddCommand(newToolsCmd(app))
	root.AddCommand(newCallCmd(app))

	return root
}

// loadConfig resolves configuration: .env, then file and environment, then flags
func loadConfig(cmd *cobra.Command, serverKind string) (*config.Config, error) {
	flags := cmd.Flags()
	envFile, _ := flags.GetString("env-file")
	configPath, _ := flags.GetString("config")

	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	// Flags win over file and environment
	if flags.Changed("debug") {
		cfg.Debug, _ = flags.GetBool("debug")
		if cfg.Debug && !flags.Changed("log-level") {
			cfg.LogLevel = "debug"
		}
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("transport") {
		cfg.Transport, _ = flags.GetString("transport")
	}
	if flags.Changed("http-addr") {
		cfg.HTTPAddr, _ = flags.GetString("http-addr")
	}

	if err := cfg.Validate(serverKind); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// runtime is a fully wired server ready to serve or dispatch
type runtime struct {
	cfg     *config.Config
	logger  zerolog.Logger
	server  *server.Server
	tools   *tools.Dispatcher
	cleanup func() error
}

func (r *runtime) close() {
	if r.cleanup == nil {
		return
	}
	if err := r.cleanup(); err != nil {
		r.logger.Warn().Err(err).Msg("Cleanup failed")
	}
}

func start(cmd *cobra.Command, app App) (*runtime, error) {
	cfg, err := loadConfig(cmd, app.Server)
	if err != nil {
		return nil, exitError(1, "Failed to load configuration: %v", err)
	}

	logger := setupLogging(cfg, cmd.ErrOrStderr()).With().Str("server", app.Server).Logger()

	registry := tools.NewRegistry()
	resources := server.NewResources()
	prompts := server.NewPrompts()

	cleanup, err := app.Setup(cmd.Context(), Deps{
		Config:    cfg,
		Registry:  registry,
		Resources: resources,
		Prompts:   prompts,
		Logger:    logger,
	})
	if err != nil {
		return nil, exitError(1, "Failed to initialize %s: %v", app.Name, err)
	}
	registry.Seal()

	opts := []tools.DispatcherOption{tools.WithLogger(logger)}
	observer, err := tools.NewGlobalObserver(app.Server)
	if err != nil {
		logger.Warn().Err(err).Msg("Telemetry disabled")
	} else {
		opts = append(opts, tools.WithObserver(observer))
	}
	dispatcher := tools.NewDispatcher(registry, opts...)

	srv := server.New(
		server.Info{Name: app.Name, Version: app.Version},
		dispatcher,
		server.WithResources(resources),
		server.WithPrompts(prompts),
		server.WithLogger(logger),
	)

	return &runtime{
		cfg:     cfg,
		logger:  logger,
		server:  srv,
		tools:   dispatcher,
		cleanup: cleanup,
	}, nil
}
