package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/goliatone/go-auto-catalog/catalog"
	"github.com/goliatone/go-auto-catalog/internal/config"
	"github.com/goliatone/go-auto-catalog/internal/logging"
	"github.com/goliatone/go-auto-catalog/pkg/di"
)

// app carries the state one invocation shares between its commands.
type app struct {
	v          *viper.Viper
	configFile string
	out        io.Writer
	errOut     io.Writer

	logger   *zap.Logger
	registry *prometheus.Registry
	store    *catalog.Store
}

// run executes one command line and returns the process exit code.
func run(ctx context.Context, args []string, out, errOut io.Writer) int {
	a := &app{v: viper.New(), out: out, errOut: errOut}
	defer a.close()

	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errOut)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(errOut, describe(err))
		return exitCode(err)
	}
	return 0
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "autocatalog",
		Short:         "Manage a catalog of cities, auto markets and autos",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (yaml, json or toml)")
	flags.String("database", config.DefaultDatabase, "catalog location: a SQLite path or a postgres:// URL")
	flags.String("log-level", "info", "log level: debug, info, warn or error")
	flags.String("log-format", logging.FormatConsole, "log encoding: console or json")
	flags.Bool("cache", true, "memoize query results")
	flags.Bool("referential-checks", false, "reject markets and autos whose parent does not exist")
	flags.Bool("metrics", false, "log collected metrics on exit")

	bindings := map[string]string{
		config.KeyDatabase:          "database",
		config.KeyLogLevel:          "log-level",
		config.KeyLogFormat:         "log-format",
		config.KeyCacheEnabled:      "cache",
		config.KeyReferentialChecks: "referential-checks",
		config.KeyMetricsEnabled:    "metrics",
	}
	for key, flag := range bindings {
		if err := a.v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", flag, err))
		}
	}

	root.AddCommand(
		newAddCmd(a),
		newFindCmd(a),
		newListCmd(a),
		newCompareCmd(a),
		newImportCmd(a),
		newExportCmd(a),
	)
	return root
}

// withStore opens the catalog before fn runs. Commands that never reach it
// (help, completion) leave no database behind.
func (a *app) withStore(fn func(ctx context.Context, store *catalog.Store, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := a.open(cmd.Context()); err != nil {
			return err
		}
		return fn(cmd.Context(), a.store, args)
	}
}

func (a *app) open(ctx context.Context) error {
	config.LoadEnvFiles(".env", ".env.local")

	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	a.logger = logger

	opts := []di.Option{di.WithLogger(logger)}
	if !cfg.Cache.Enabled {
		opts = append(opts, di.WithoutCache())
	}
	if cfg.Metrics.Enabled {
		a.registry = prometheus.NewRegistry()
		opts = append(opts, di.WithMetrics(a.registry))
	}

	container, err := di.NewContainer(cfg.Cache.CacheServiceConfig(), opts...)
	if err != nil {
		return err
	}

	var storeOpts []catalog.Option
	if cfg.ReferentialChecks {
		storeOpts = append(storeOpts, catalog.WithReferentialChecks())
	}

	store, err := container.OpenCatalog(ctx, cfg.Database, storeOpts...)
	if err != nil {
		return err
	}
	a.store = store

	logger.Debug("catalog opened", zap.String("database", cfg.Database))
	return nil
}

func (a *app) close() {
	if a.store != nil {
		a.reportMetrics()
		if err := a.store.Close(); err != nil {
			fmt.Fprintln(a.errOut, describe(err))
		}
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

func (a *app) reportMetrics() {
	if a.registry == nil {
		return
	}
	families, err := a.registry.Gather()
	if err != nil {
		a.logger.Warn("gather metrics", zap.Error(err))
		return
	}

	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			fields := []zap.Field{zap.String("metric", mf.GetName())}
			for _, l := range m.GetLabel() {
				fields = append(fields, zap.String(l.GetName(), l.GetValue()))
			}
			switch {
			case m.GetCounter() != nil:
				fields = append(fields, zap.Float64("value", m.GetCounter().GetValue()))
			case m.GetGauge() != nil:
				fields = append(fields, zap.Float64("value", m.GetGauge().GetValue()))
			}
			a.logger.Info("metric", fields...)
		}
	}
}

// usageError marks malformed command arguments.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

// Exit codes.
const (
	exitFailure      = 1
	exitInvalidInput = 2
	exitStoreInit    = 3
	exitStoreWrite   = 4
)

func exitCode(err error) int {
	var uerr *usageError
	if errors.As(err, &uerr) {
		return exitInvalidInput
	}
	switch catalog.KindOf(err) {
	case catalog.KindInvalidInput:
		return exitInvalidInput
	case catalog.KindStoreInit:
		return exitStoreInit
	case catalog.KindStoreWrite:
		return exitStoreWrite
	default:
		return exitFailure
	}
}

func describe(err error) string {
	var uerr *usageError
	if errors.As(err, &uerr) {
		return "invalid arguments: " + uerr.Error()
	}
	switch catalog.KindOf(err) {
	case catalog.KindInvalidInput:
		return "invalid input: " + err.Error()
	case catalog.KindStoreInit:
		return "cannot open catalog: " + err.Error()
	case catalog.KindStoreWrite:
		return "write failed: " + err.Error()
	default:
		return "error: " + err.Error()
	}
}
