package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/obonovai/graphonauts/cmd/graphonauts/internal"
	"github.com/obonovai/graphonauts/internal/config"
	"github.com/obonovai/graphonauts/internal/observability"
)

// skipConfig marks commands that run without a loaded configuration.
const skipConfig = "graphonauts.skip-config"

const shutdownTimeout = 5 * time.Second

// app carries the state shared by every command of one invocation.
type app struct {
	flags GlobalFlags

	cfg        *config.Config
	logger     *slog.Logger
	metrics    *observability.Metrics
	tracer     *sdktrace.TracerProvider
	metricsSrv *http.Server
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{}
	root := &cobra.Command{
		Use:   "graphonauts",
		Short: "Graphonauts - TPC-H graph database benchmark",
		Long: `Graphonauts loads the TPC-H dataset as a property graph into ArangoDB,
Neo4j, Memgraph or NebulaGraph and runs a shared catalogue of analytical
queries against it.

Connection settings come from graphonauts.yaml (see 'graphonauts config init'),
GRAPHONAUTS_* environment variables and the --backend flag.`,
		PersistentPreRunE: a.setup,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	a.flags.register(root)

	root.AddCommand(newLoadCmd(a))
	root.AddCommand(newQueryCmd(a))
	root.AddCommand(newClearCmd(a))
	root.AddCommand(newStatsCmd(a))
	root.AddCommand(newHealthCmd(a))
	root.AddCommand(newConfigCmd(a))
	root.AddCommand(newVersionCmd(a))
	root.AddCommand(newCompletionCmd())
	return root, a
}

// Execute runs the command line with signal handling and returns the process exit code.
func Execute(ctx context.Context, args []string) int {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	root, a := newRootCmd()
	return a.execute(ctx, root, args)
}

func (a *app) execute(ctx context.Context, root *cobra.Command, args []string) int {
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	a.shutdown()
	return internal.Report(root.ErrOrStderr(), err, a.flags.Verbose)
}

// setup runs before every command: it loads the configuration and starts logging,
// tracing and, when enabled, the metrics endpoint.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	if err := a.flags.validate(); err != nil {
		return err
	}
	if cmd.Annotations[skipConfig] == "true" || cmd.Name() == "help" || cmd.Name() == cobra.ShellCompRequestCmd {
		return nil
	}

	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = observability.NewLogger(cfg.Logging, cmd.ErrOrStderr())
	a.metrics = observability.NewMetrics()

	a.tracer, err = observability.InitTracing(cmd.Context(), cfg.Tracing)
	if err != nil {
		return internal.WrapError(internal.ExitConfigError, "failed to initialize tracing", err)
	}
	if cfg.Metrics.Enabled {
		a.serveMetrics()
	}
	a.logger.Debug("configuration loaded",
		"config", a.flags.ConfigFile,
		"backend", cfg.Backend)
	return nil
}

// loadConfig reads the config file, falling back to defaults when it is absent, and
// applies the command line overrides.
func (a *app) loadConfig() (*config.Config, error) {
	validator := config.NewValidator()
	cfg, err := config.NewConfigLoader(validator).LoadWithDefaults(a.flags.ConfigFile)
	if err != nil {
		return nil, err
	}
	if a.flags.Backend != "" {
		cfg.Backend = a.flags.Backend
		if err := validator.Validate(cfg); err != nil {
			return nil, err
		}
	}
	cfg.Logging.Level = a.flags.logLevel(cfg.Logging.Level)
	return cfg, nil
}

func (a *app) serveMetrics() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.metrics.Handler())
	a.metricsSrv = &http.Server{
		Addr:              a.cfg.Metrics.Address,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	srv := a.metricsSrv
	logger := a.logger
	go func() {
		logger.Info("serving metrics", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "address", srv.Addr, "error", err)
		}
	}()
}

// shutdown stops the metrics endpoint and flushes pending spans.
func (a *app) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if a.metricsSrv != nil {
		if err := a.metricsSrv.Shutdown(ctx); err != nil {
			a.logger.Warn("failed to stop metrics server", "error", err)
		}
		a.metricsSrv = nil
	}
	if a.tracer != nil {
		if err := observability.ShutdownTracing(ctx, a.tracer); err != nil {
			a.logger.Warn("failed to flush traces", "error", err)
		}
		a.tracer = nil
	}
}

// formatter returns the output formatter selected by --output.
func (a *app) formatter(cmd *cobra.Command) internal.Formatter {
	return internal.NewFormatter(a.flags.format(), cmd.OutOrStdout())
}
