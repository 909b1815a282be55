package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/hybridnet/pkg/api"
	"github.com/matzehuels/hybridnet/pkg/cache"
	"github.com/matzehuels/hybridnet/pkg/observability"
	"github.com/matzehuels/hybridnet/pkg/pipeline"
	"github.com/matzehuels/hybridnet/pkg/store"
)

// Job store backends accepted by --store.
const (
	storeMemory = "memory"
	storeFile   = "file"
	storeMongo  = "mongo"
)

const (
	shutdownTimeout = 15 * time.Second
	cleanupInterval = time.Hour
)

type serveOpts struct {
	addr      string
	store     string
	storeDir  string
	keyPrefix string
	maxJobs   int
	jobTTL    time.Duration
	timeout   time.Duration
}

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{
		addr:    ":8080",
		store:   storeMemory,
		maxJobs: api.DefaultMaxJobs,
		jobTTL:  store.DefaultTTL,
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve runs the HTTP API. Searches are submitted to POST /v1/solve and
run in the background; results are kept in the job store.

Results are cached in the configured cache backend. With cache = "redis" in
the config file, several servers share one cache.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.timeout = durationFlag(cmd, "timeout", c.Config.Timeout)
			if opts.store == storeMemory && c.Config.MongoURI != "" && !cmd.Flags().Changed("store") {
				opts.store = storeMongo
			}
			return c.runServe(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVar(&opts.store, "store", opts.store, "job store: memory (default), file, mongo")
	cmd.Flags().StringVar(&opts.storeDir, "store-dir", "", "directory for the file store (default <cache dir>/jobs)")
	cmd.Flags().StringVar(&opts.keyPrefix, "key-prefix", "", "namespace for cache keys when servers share a redis cache")
	cmd.Flags().IntVar(&opts.maxJobs, "max-jobs", opts.maxJobs, "searches running at once")
	cmd.Flags().DurationVar(&opts.jobTTL, "job-ttl", opts.jobTTL, "how long finished jobs are kept")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "limit for a single search (0 for the server default)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts *serveOpts) error {
	logger := loggerFromContext(ctx)

	st, err := c.newStore(ctx, opts)
	if err != nil {
		return err
	}
	defer st.Close()

	ch, err := c.newCache(ctx, false)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(ch, cache.NewScopedKeyer(nil, opts.keyPrefix), logger)
	defer runner.Close()

	if c.registry == nil {
		c.enableMetrics()
	}
	reg := c.registry
	observability.SetHTTPHooks(c.hooks)
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	srv := api.New(api.Config{
		Runner:   runner,
		Store:    st,
		Logger:   logger,
		Gatherer: reg,
		Timeout:  opts.timeout,
		MaxJobs:  opts.maxJobs,
		JobTTL:   opts.jobTTL,
	})
	httpSrv := &http.Server{
		Addr:              opts.addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go cleanupLoop(ctx, st, logger)

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", opts.addr, "store", opts.store, "cache", c.Config.Cache)
		errc <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "error", err)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("jobs still running at shutdown", "error", err)
	}
	return nil
}

func (c *CLI) newStore(ctx context.Context, opts *serveOpts) (store.Store, error) {
	switch opts.store {
	case storeMemory:
		return store.NewMemoryStore(), nil
	case storeFile:
		dir := opts.storeDir
		if dir == "" {
			base, err := cacheDir()
			if err != nil {
				return nil, fmt.Errorf("get cache dir: %w", err)
			}
			dir = filepath.Join(base, "jobs")
		}
		return store.NewFileStore(dir)
	case storeMongo:
		uri := c.Config.MongoURI
		if uri == "" {
			uri = os.Getenv("MONGODB_URI")
		}
		return store.NewMongoStore(ctx, store.MongoConfig{URI: uri})
	}
	return nil, fmt.Errorf("invalid store: %s (must be 'memory', 'file', or 'mongo')", opts.store)
}

// cleanupLoop removes expired jobs until ctx is done.
func cleanupLoop(ctx context.Context, st store.Store, logger *log.Logger) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := st.Cleanup(ctx); err != nil {
				logger.Warn("job cleanup failed", "error", err)
			}
		}
	}
}
