// Command owidreport turns the Our World in Data COVID-19 CSV into charts,
// exported tables and an optional HTTP report.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"owidreport/internal/app"
	"owidreport/internal/config"
	"owidreport/internal/infrastructure"
	"owidreport/internal/operations"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stderr))
}

// options are the parsed command-line flags
type options struct {
	configFile string
	serve      bool
	overrides  config.Overrides
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet(config.Executable, flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&o.configFile, "config", "", "YAML config file (default: owidreport.yaml if present)")
	fs.StringVar(&o.overrides.Source, "data", "", "path to owid-covid-data.csv")
	fs.StringVar(&o.overrides.OutputDir, "out", "", "output directory for charts and exports (default data/reports)")
	fs.StringVar(&o.overrides.Countries, "countries", "", "comma separated locations to keep")
	fs.StringVar(&o.overrides.Scope, "scope", "", "interpolation scope: entity or global")
	fs.IntVar(&o.overrides.Port, "port", 0, "report server port")
	fs.BoolVar(&o.serve, "serve", false, "serve the report over HTTP after generating it")

	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if fs.NArg() > 0 {
		return o, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return o, nil
}

// run is main without the exit, returning the process status
func run(ctx context.Context, args []string, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	cfg, err := config.Load(opts.configFile)
	if err != nil {
		fmt.Fprintf(stderr, "failed to load configuration: %v\n", err)
		return 1
	}
	if err := cfg.Apply(opts.overrides); err != nil {
		fmt.Fprintf(stderr, "invalid options: %v\n", err)
		return 1
	}

	if cfg.Logging.Output != "console" && cfg.Logging.FilePath == "" {
		paths, err := config.GetPaths(cfg)
		if err != nil {
			fmt.Fprintf(stderr, "failed to resolve paths: %v\n", err)
			return 1
		}
		cfg.Logging.FilePath = paths.GetLogPath(config.DefaultLogFile)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(stderr, "failed to initialize logger: %v\n", err)
		return 1
	}
	defer infrastructure.CloseLogFile()

	application, err := app.NewApplication(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize application", slog.String("error", err.Error()))
		return 1
	}

	report, err := application.Generate(ctx)
	if err != nil {
		attrs := []any{slog.String("error", err.Error())}
		var stepErr *operations.StepError
		if errors.As(err, &stepErr) {
			attrs = append(attrs, slog.String("step", stepErr.Step))
		}
		logger.ErrorContext(ctx, "Report generation failed", attrs...)
		application.Close(context.WithoutCancel(ctx))
		return 1
	}

	logger.InfoContext(ctx, "Report generated",
		slog.String("charts_dir", application.Paths.ChartsDir),
		slog.String("exports_dir", application.Paths.ExportsDir),
		slog.Int("charts", len(report.Manifest.Charts)),
		slog.Any("skipped_charts", report.Manifest.Skipped))

	if !opts.serve {
		application.Close(context.WithoutCancel(ctx))
		return 0
	}

	if err := application.Serve(ctx); err != nil {
		logger.Error("Server stopped with error", slog.String("error", err.Error()))
		return 1
	}
	return 0
}
