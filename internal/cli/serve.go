package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sugarcheck/internal/server"
	"github.com/matzehuels/sugarcheck/pkg/observability"
	"github.com/matzehuels/sugarcheck/pkg/store"
)

// defaultMemoryReports bounds the in-memory report store of serve.
const defaultMemoryReports = 1000

type serveOpts struct {
	addr        string
	mongoURI    string
	mongoDB     string
	maxUploadMB int64
	timeout     time.Duration
	trace       bool
	workers     int
	refdb       string
	cache       cacheFlags
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis API over HTTP",
		Long: `Serve runs the HTTP API. Reports are kept in memory unless a MongoDB URI is
given with --mongo or in the [mongo] section of the config file. With --trace,
analysis steps and requests are recorded as OpenTelemetry spans on the global
tracer provider.`,
		Example: `  sugarcheck serve --addr :8080
  sugarcheck serve --mongo mongodb://localhost:27017 --cache redis
  curl --data-binary @1bgc.pdb 'localhost:8080/analyze?filename=1bgc.pdb'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config, else "+server.DefaultAddr+")")
	cmd.Flags().StringVar(&opts.mongoURI, "mongo", "", "MongoDB URI for the report store")
	cmd.Flags().StringVar(&opts.mongoDB, "mongo-db", "", "MongoDB database (default "+store.DefaultDatabase+")")
	cmd.Flags().Int64Var(&opts.maxUploadMB, "max-upload", server.DefaultMaxUploadBytes>>20, "largest accepted model in MiB")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", server.DefaultRequestTimeout, "per-request timeout")
	cmd.Flags().BoolVar(&opts.trace, "trace", false, "record OpenTelemetry spans")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "residues classified concurrently per request")
	cmd.Flags().StringVar(&opts.refdb, "refdb", "", "TOML reference table merged over the built-in one")
	opts.cache.register(cmd)

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	logger := loggerFromContext(ctx)
	cfg, err := c.Config()
	if err != nil {
		return err
	}

	defaults, err := c.pipelineOptions()
	if err != nil {
		return err
	}
	if opts.workers != 0 {
		defaults.Workers = opts.workers
	}
	if opts.refdb != "" {
		defaults.RefDBPath = opts.refdb
	}
	// Fail on a bad reference table before listening.
	if err := defaults.ValidateAndSetDefaults(); err != nil {
		return err
	}

	if opts.trace {
		hooks := observability.NewTracingHooks(nil)
		observability.SetAnalysisHooks(hooks)
		observability.SetHTTPHooks(hooks)
		defer observability.Reset()
	}

	runner, err := c.newRunner(ctx, opts.cache)
	if err != nil {
		return err
	}
	defer runner.Close()

	st, err := openStore(ctx, cfg, opts)
	if err != nil {
		return err
	}
	defer st.Close()

	addr := opts.addr
	if addr == "" {
		addr = cfg.Server.Addr
	}
	srv := server.New(runner, st, logger, server.Config{
		Addr:           addr,
		MaxUploadBytes: opts.maxUploadMB << 20,
		RequestTimeout: opts.timeout,
		Defaults:       defaults,
	})
	return srv.ListenAndServe(ctx)
}

func openStore(ctx context.Context, cfg *Config, opts serveOpts) (store.Store, error) {
	uri, db := opts.mongoURI, opts.mongoDB
	if uri == "" {
		uri = cfg.Mongo.URI
	}
	if db == "" {
		db = cfg.Mongo.Database
	}
	if uri == "" {
		loggerFromContext(ctx).Info("report store", "backend", "memory", "max", defaultMemoryReports)
		return store.NewMemoryStore(defaultMemoryReports), nil
	}
	ms, err := store.NewMongoStore(ctx, uri, db)
	if err != nil {
		return nil, err
	}
	loggerFromContext(ctx).Info("report store", "backend", "mongo")
	return ms, nil
}
