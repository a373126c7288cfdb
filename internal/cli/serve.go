package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tally/internal/api"
	"github.com/matzehuels/tally/pkg/cache"
	"github.com/matzehuels/tally/pkg/config"
	"github.com/matzehuels/tally/pkg/pipeline"
	"github.com/matzehuels/tally/pkg/store"
)

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr       string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the composition HTTP API",
		Long: `Run the composition HTTP API.

The server exposes endpoints to generate, store, and render compositions.
Backends for caching (file, redis) and persistence (memory, mongo) are
selected via the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, configPath)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&configPath, "config", "", "config file path (default ~/.config/tally/config.toml)")

	return cmd
}

// runServe wires the configured backends and serves until ctx is cancelled.
func (c *CLI) runServe(ctx context.Context, addr, configPath string) error {
	logger := loggerFromContext(ctx)

	if configPath == "" {
		configPath = config.DefaultPath()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Serve.Addr
	}

	cch, err := c.serveCache(ctx, cfg.Cache)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}

	st, err := c.serveStore(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}
	if st != nil {
		defer st.Close(context.Background())
	}

	runner := pipeline.NewRunner(cch, nil, logger)
	defer runner.Close()
	if cfg.Cache.TTLHours > 0 {
		ttl := time.Duration(cfg.Cache.TTLHours) * time.Hour
		runner.TTLs = cache.TTLs{Composition: ttl, Layout: ttl, Artifact: ttl}
	}

	handler := api.NewServer(runner, st, logger, api.WithDefaults(api.Defaults{
		MinDepth:  cfg.Generate.MinDepth,
		MaxDepth:  cfg.Generate.MaxDepth,
		MaxArity:  cfg.Generate.MaxArity,
		ProbEmpty: cfg.Generate.ProbEmpty,
		Format:    cfg.Render.Format,
		Scale:     cfg.Render.Scale,
		Detailed:  cfg.Render.Detailed,
	})).Routes()

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}

// serveCache builds the cache backend named in the config.
func (c *CLI) serveCache(ctx context.Context, cfg config.CacheConfig) (cache.Cache, error) {
	switch cfg.Backend {
	case "", "file":
		dir := cfg.Dir
		if dir == "" {
			var err error
			dir, err = cacheDir()
			if err != nil {
				return nil, err
			}
		}
		return cache.NewFileCache(dir)
	case "redis":
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	case "none":
		return cache.NewNullCache(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend: %q", cfg.Backend)
	}
}

// serveStore builds the store backend named in the config.
func (c *CLI) serveStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Backend {
	case "", "memory":
		return store.NewMemoryStore(), nil
	case "mongo":
		return store.NewMongoStore(ctx, store.MongoConfig{
			URI:        cfg.MongoURI,
			Database:   cfg.Database,
			Collection: cfg.Collection,
		})
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown store backend: %q", cfg.Backend)
	}
}
