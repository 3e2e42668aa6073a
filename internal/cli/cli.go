package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pipelinecheck/internal/config"
	"github.com/matzehuels/pipelinecheck/pkg/audit"
	"github.com/matzehuels/pipelinecheck/pkg/buildinfo"
	"github.com/matzehuels/pipelinecheck/pkg/cache"
	"github.com/matzehuels/pipelinecheck/pkg/dag"
	"github.com/matzehuels/pipelinecheck/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "pipelinecheck"

	// connectTimeout bounds the initial Redis and MongoDB handshakes.
	connectTimeout = 15 * time.Second
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Pipelinecheck verifies that pipeline graphs are acyclic",
		Long:         `Pipelinecheck checks directed pipeline graphs, as built in node-based workflow editors, for cycles. It runs as an HTTP service or checks pipeline files from the command line.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default "+config.DefaultPath()+")")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config & Runner Factory
// =============================================================================

// loadConfig loads the file named by --config, which must exist, or the
// default config file if present.
func (c *CLI) loadConfig() (config.Config, error) {
	if c.configPath != "" {
		return config.Load(c.configPath, true)
	}
	return config.Load(config.DefaultPath(), false)
}

// newRunner creates a pipeline runner with the given cache and recorder that
// logs to logger.
func (c *CLI) newRunner(logger *log.Logger, cfg config.Config, store cache.Cache, rec audit.Recorder) *pipeline.Runner {
	var keyer cache.Keyer
	if cfg.Cache.Prefix != "" {
		keyer = cache.NewScopedKeyer(nil, cfg.Cache.Prefix)
	}
	r := pipeline.NewRunner(store, keyer, rec, logger)
	r.Limits = dag.Limits{MaxNodes: cfg.Limits.MaxNodes, MaxEdges: cfg.Limits.MaxEdges}
	r.TTL = cfg.Cache.TTL.Duration
	return r
}

// newCache opens the verdict cache selected by cfg.Backend.
func (c *CLI) newCache(ctx context.Context, cfg config.CacheConfig) (cache.Cache, error) {
	switch cfg.Backend {
	case config.CacheFile:
		return cache.NewFileCache(cfg.Dir)
	case config.CacheRedis:
		ctx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	default:
		return cache.NewNullCache(), nil
	}
}

// newRecorder opens the audit recorder selected by cfg.
func (c *CLI) newRecorder(ctx context.Context, cfg config.AuditConfig) (audit.Recorder, error) {
	switch {
	case cfg.MongoURI != "":
		ctx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		return audit.NewMongoRecorder(ctx, audit.MongoConfig{
			URI:        cfg.MongoURI,
			Database:   cfg.Database,
			Collection: cfg.Collection,
			TTL:        cfg.Retention.Duration,
		})
	case cfg.Log:
		return audit.NewLogRecorder(c.Logger), nil
	default:
		return audit.NullRecorder{}, nil
	}
}
