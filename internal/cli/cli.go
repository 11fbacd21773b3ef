package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/waterwheel/internal/config"
	"github.com/matzehuels/waterwheel/pkg/buildinfo"
	"github.com/matzehuels/waterwheel/pkg/cache"
	"github.com/matzehuels/waterwheel/pkg/errors"
	"github.com/matzehuels/waterwheel/pkg/observability"
	"github.com/matzehuels/waterwheel/pkg/transport"
	"github.com/matzehuels/waterwheel/pkg/waterwheel"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "waterwheel"

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
	Out    io.Writer

	// Global flags.
	base       string
	user       string
	pass       string
	configPath string
	noCache    bool
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Waterwheel talks to Drupal-style REST APIs",
		Long:         `Waterwheel discovers the resource types of a Drupal-style REST API, performs CRUD and query requests against them, and resolves the embedded references of HAL+JSON documents.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.SetOut(c.Out)

	flags := root.PersistentFlags()
	flags.StringVar(&c.base, "base", "", "API base URL (env "+config.EnvBase+")")
	flags.StringVar(&c.user, "user", "", "basic auth user (env "+config.EnvUser+")")
	flags.StringVar(&c.pass, "pass", "", "basic auth password (env "+config.EnvPass+")")
	flags.StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/waterwheel/config.toml)")
	flags.BoolVar(&c.noCache, "no-cache", false, "disable the response cache")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.resourcesCommand())
	root.AddCommand(c.getCommand())
	root.AddCommand(c.createCommand())
	root.AddCommand(c.updateCommand())
	root.AddCommand(c.deleteCommand())
	root.AddCommand(c.queryCommand())
	root.AddCommand(c.embeddedCommand())
	root.AddCommand(c.mockCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig resolves the configuration: file, then environment, then flags.
func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return cfg, err
	}
	cfg.ApplyEnv(os.Getenv)
	if c.base != "" {
		cfg.Base = c.base
	}
	if c.user != "" {
		cfg.Credentials.User = c.user
	}
	if c.pass != "" {
		cfg.Credentials.Pass = c.pass
	}
	if c.noCache {
		cfg.Cache.Backend = config.BackendNone
	}
	return cfg, cfg.Validate()
}

// =============================================================================
// Registry Factory
// =============================================================================

// session bundles what a command needs to talk to the server.
type session struct {
	cfg      config.Config
	registry *waterwheel.Waterwheel
	tr       transport.Transport
	cache    cache.Cache
}

func (s *session) Close() error {
	return s.cache.Close()
}

// newSession builds the transport and registry from the configuration.
// The caller must Close the session.
func (c *CLI) newSession(ctx context.Context) (*session, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Base == "" {
		return nil, errors.New(errors.ErrCodeMissingBase, "no base URL: use --base, %s or the config file", config.EnvBase)
	}
	if err := errors.ValidateURL(cfg.Base); err != nil {
		return nil, err
	}

	store, err := openCache(ctx, cfg.Cache)
	if err != nil {
		return nil, err
	}

	opts := []transport.Option{
		transport.WithTimeout(cfg.HTTP.Timeout.Duration),
		transport.WithCache(store, cfg.Cache.TTL.Duration),
	}
	if cfg.HTTP.UserAgent != "" {
		opts = append(opts, transport.WithHeaders(map[string]string{"User-Agent": cfg.HTTP.UserAgent}))
	}
	if cfg.HTTP.Retries > 0 {
		opts = append(opts, transport.WithRetry(cfg.HTTP.Retries))
	}
	if c.verbose {
		opts = append(opts, transport.WithHooks(observability.NewLogHooks(c.Logger)))
	}
	tr := transport.NewHTTP(opts...)

	wwOpts := []waterwheel.Option{
		waterwheel.WithTransport(tr),
		waterwheel.WithLogger(c.Logger),
	}
	if c.verbose {
		wwOpts = append(wwOpts, waterwheel.WithHooks(observability.NewLogHooks(c.Logger)))
	}
	ww, err := waterwheel.New(cfg.Base, cfg.Creds(), nil, wwOpts...)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return &session{cfg: cfg, registry: ww, tr: tr, cache: store}, nil
}

// populated returns a session whose registry holds the server catalog.
func (c *CLI) populated(ctx context.Context) (*session, error) {
	s, err := c.newSession(ctx)
	if err != nil {
		return nil, err
	}
	spinner := newSpinnerWithContext(ctx, "Fetching resource catalog...")
	spinner.Start()
	keys, err := s.registry.PopulateResources(ctx)
	spinner.Stop()
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("populate resources: %w", err)
	}
	loggerFromContext(ctx).Debug("catalog loaded", "resources", len(keys))
	return s, nil
}

// =============================================================================
// Cache
// =============================================================================

// openCache opens the configured cache backend.
func openCache(ctx context.Context, cfg config.Cache) (cache.Cache, error) {
	switch cfg.Backend {
	case "", config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendFile:
		dir, err := cacheDir(cfg)
		if err != nil {
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	case config.BackendRedis:
		return cache.NewRedisCache(ctx, cache.RedisConfig{Addr: cfg.RedisAddr})
	case config.BackendMongo:
		return cache.NewMongoCache(ctx, cache.MongoConfig{URI: cfg.MongoURI})
	}
	return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", cfg.Backend)
}

// cacheDir returns the file cache directory: the configured one, or the XDG
// default (~/.cache/waterwheel/).
func cacheDir(cfg config.Cache) (string, error) {
	if cfg.Dir != "" {
		return cfg.Dir, nil
	}
	return config.CacheDir()
}
