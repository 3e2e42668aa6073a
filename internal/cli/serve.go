package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pipelinecheck/internal/config"
	"github.com/matzehuels/pipelinecheck/internal/server"
)

// serveOptions holds flags of the serve command. Flags left unset keep the
// config file value.
type serveOptions struct {
	Addr     string
	Origins  []string
	Cache    string
	MaxNodes int
	MaxEdges int
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the pipeline check HTTP service",
		Long: `Run the HTTP service.

Routes:
  GET  /                 liveness probe
  POST /pipelines/parse  check a pipeline ({"num_nodes", "num_edges", "is_dag"})
  GET  /version          build information

The server stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			applyServeFlags(cmd, &cfg, opts)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return c.runServe(withLogger(cmd.Context(), c.Logger, "addr", cfg.Server.Addr), cfg)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (default \":8000\")")
	cmd.Flags().StringSliceVar(&opts.Origins, "origin", nil, "allowed CORS origin (repeatable)")
	cmd.Flags().StringVar(&opts.Cache, "cache", "", "verdict cache backend: none, file or redis")
	cmd.Flags().IntVar(&opts.MaxNodes, "max-nodes", 0, "maximum nodes per pipeline, 0 for unlimited")
	cmd.Flags().IntVar(&opts.MaxEdges, "max-edges", 0, "maximum edges per pipeline, 0 for unlimited")

	return cmd
}

func applyServeFlags(cmd *cobra.Command, cfg *config.Config, opts serveOptions) {
	flags := cmd.Flags()
	if flags.Changed("addr") {
		cfg.Server.Addr = opts.Addr
	}
	if flags.Changed("origin") {
		cfg.Server.AllowedOrigins = opts.Origins
	}
	if flags.Changed("cache") {
		cfg.Cache.Backend = opts.Cache
	}
	if flags.Changed("max-nodes") {
		cfg.Limits.MaxNodes = opts.MaxNodes
	}
	if flags.Changed("max-edges") {
		cfg.Limits.MaxEdges = opts.MaxEdges
	}
}

func (c *CLI) runServe(ctx context.Context, cfg config.Config) error {
	logger := loggerFromContext(ctx)

	store, err := c.newCache(ctx, cfg.Cache)
	if err != nil {
		return err
	}
	rec, err := c.newRecorder(ctx, cfg.Audit)
	if err != nil {
		store.Close()
		return err
	}
	runner := c.newRunner(logger, cfg, store, rec)
	defer func() {
		if err := runner.Close(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("close runner", "error", err)
		}
	}()

	logger.Info("starting server",
		"origins", cfg.Server.AllowedOrigins,
		"cache", cfg.Cache.Backend,
		"max_nodes", cfg.Limits.MaxNodes,
		"max_edges", cfg.Limits.MaxEdges)

	srv := server.New(server.Config{
		Addr:            cfg.Server.Addr,
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		MaxBodyBytes:    cfg.Server.MaxBodyBytes,
		RequestTimeout:  cfg.Server.RequestTimeout.Duration,
		ShutdownTimeout: cfg.Server.ShutdownTimeout.Duration,
	}, runner, logger)
	return srv.ListenAndServe(ctx)
}
