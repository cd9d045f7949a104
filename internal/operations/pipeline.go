package operations

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"owidreport/internal/charts"
	"owidreport/internal/config"
	"owidreport/internal/dataprocessing"
	"owidreport/internal/exporter"
	"owidreport/internal/infrastructure"
	"owidreport/pkg/contracts/domain"
)

// previewRows is how many leading rows the inspect step logs
const previewRows = 5

// Renderer draws the charts of a run
type Renderer interface {
	Render(ctx context.Context, ds *domain.Dataset, entities []string, snaps []domain.Snapshot) (*charts.Manifest, error)
}

// Pipeline turns the configured CSV into a Report
type Pipeline struct {
	cfg    *config.Config
	paths  *config.Paths
	logger *slog.Logger
	tracer *OperationTracer

	loader       *dataprocessing.Loader
	cleaner      *dataprocessing.Cleaner
	interpolator *dataprocessing.Interpolator
	summarizer   *dataprocessing.Summarizer
	tables       *exporter.TableExporter
	workbook     *exporter.WorkbookExporter
	renderer     Renderer
}

// NewPipeline wires every step from configuration
func NewPipeline(cfg *config.Config, paths *config.Paths, tracer *OperationTracer, logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = NewOperationTracer(nil, nil)
	}

	scope, err := dataprocessing.ParseScope(cfg.Data.InterpolationScope)
	if err != nil {
		return nil, err
	}

	metrics := tracer.Metrics()
	renderer := charts.NewRenderer(paths, charts.OptionsFromConfig(cfg.Output), logger).
		WithObserver(func(ctx context.Context, chart string, err error) {
			metrics.RecordChart(ctx, chart, err)
		})

	return &Pipeline{
		cfg:          cfg,
		paths:        paths,
		logger:       logger.With(slog.String("component", "pipeline")),
		tracer:       tracer,
		loader:       dataprocessing.NewLoader(logger),
		cleaner:      dataprocessing.NewCleaner(logger),
		interpolator: dataprocessing.NewInterpolator(scope, logger),
		summarizer:   dataprocessing.NewSummarizer(logger),
		tables:       exporter.NewTableExporter(paths, logger),
		workbook:     exporter.NewWorkbookExporter(paths, logger),
		renderer:     renderer,
	}, nil
}

// WithRenderer replaces the chart renderer
func (p *Pipeline) WithRenderer(r Renderer) *Pipeline {
	p.renderer = r
	return p
}

// Run executes every step in order. On failure the partial report is
// returned alongside the error so callers can see which step failed.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	ctx = infrastructure.EnsureTraceID(ctx)
	start := time.Now()

	source := p.paths.ResolveSource(p.cfg.Data.Source)
	entities := p.cfg.Data.Countries

	report := &Report{
		Source:   source,
		Entities: entities,
		Scope:    string(p.interpolator.Scope()),
	}
	for _, name := range Steps {
		report.Steps = append(report.Steps, NewStepState(name))
	}

	ctx, span := p.tracer.TraceRun(ctx, source, entities)
	defer span.End()

	p.logger.InfoContext(ctx, "Pipeline started",
		slog.String("source", source),
		slog.Any("entities", entities),
		slog.String("scope", report.Scope))

	err := p.run(ctx, report)
	report.GeneratedAt = time.Now().UTC()
	report.Duration = time.Since(start)
	p.tracer.RecordRunCompletion(ctx, span, err)

	if err != nil {
		p.logger.ErrorContext(ctx, "Pipeline failed",
			slog.String("error", err.Error()),
			slog.Duration("duration", report.Duration))
		return report, err
	}

	p.logger.InfoContext(ctx, "Pipeline completed",
		slog.Int("rows_loaded", report.RowsLoaded),
		slog.Int("rows_kept", report.RowsKept),
		slog.Int("charts", len(report.Manifest.Charts)),
		slog.Int("exports", len(report.Exports)),
		slog.Duration("duration", report.Duration))
	return report, nil
}

func (p *Pipeline) run(ctx context.Context, report *Report) error {
	var raw, cleaned *domain.Dataset

	steps := []struct {
		name string
		fn   func(ctx context.Context, st *StepState) error
	}{
		{StepLoad, func(ctx context.Context, st *StepState) error {
			ds, err := p.loader.Load(ctx, report.Source)
			if err != nil {
				return err
			}
			raw = ds
			report.RowsLoaded = ds.Len()
			report.Columns = append([]domain.Column(nil), ds.Columns...)
			st.Message = fmt.Sprintf("%d rows", ds.Len())
			return nil
		}},
		{StepInspect, func(ctx context.Context, st *StepState) error {
			report.Missing = dataprocessing.CountMissing(raw)
			p.logPreview(ctx, raw, report.Missing)
			return nil
		}},
		{StepSnapshot, func(ctx context.Context, st *StepState) error {
			snaps, err := dataprocessing.LatestSnapshot(raw)
			if err != nil {
				return err
			}
			report.Snapshot = snaps
			st.Message = fmt.Sprintf("%d locations", len(snaps))
			return nil
		}},
		{StepClean, func(ctx context.Context, st *StepState) error {
			ds, err := p.cleaner.Clean(ctx, raw, report.Entities, dataprocessing.ToColumns(p.cfg.Data.RequiredFields))
			if err != nil {
				return err
			}
			cleaned = ds
			report.Cleaned = ds
			report.RowsKept = ds.Len()
			p.tracer.Metrics().RecordRows(ctx, report.RowsLoaded, report.RowsKept)
			st.Message = fmt.Sprintf("%d of %d rows kept", ds.Len(), report.RowsLoaded)
			return nil
		}},
		{StepInterpolate, func(ctx context.Context, st *StepState) error {
			stats, err := p.interpolator.Interpolate(cleaned, dataprocessing.ToColumns(p.cfg.Data.NumericColumns))
			if err != nil {
				return err
			}
			report.Interpolation = stats
			p.tracer.Metrics().RecordInterpolated(ctx, stats.FilledByName())
			st.Message = fmt.Sprintf("%d values filled", stats.TotalFilled())
			return nil
		}},
		{StepDerive, func(ctx context.Context, st *StepState) error {
			return dataprocessing.DeriveDeathRate(cleaned)
		}},
		{StepSummarize, func(ctx context.Context, st *StepState) error {
			report.Summaries = p.summarizer.Summarize(ctx, cleaned, report.Entities)
			return nil
		}},
		{StepExport, func(ctx context.Context, st *StepState) error {
			exports, err := p.export(ctx, report)
			report.Exports = exports
			st.Message = fmt.Sprintf("%d files", len(exports))
			return err
		}},
		{StepRender, func(ctx context.Context, st *StepState) error {
			manifest, err := p.renderer.Render(ctx, cleaned, report.Entities, report.Snapshot)
			if err != nil {
				return err
			}
			report.Manifest = manifest
			st.Message = fmt.Sprintf("%d charts", len(manifest.Charts))
			return nil
		}},
	}

	for i, step := range steps {
		st := report.Steps[i]
		if err := ctx.Err(); err != nil {
			st.Skip("cancelled")
			return &StepError{Step: step.name, Cause: err}
		}
		if err := p.runStep(ctx, st, step.fn); err != nil {
			return &StepError{Step: step.name, Cause: err}
		}
	}
	return nil
}

func (p *Pipeline) runStep(ctx context.Context, st *StepState, fn func(context.Context, *StepState) error) error {
	ctx, span := p.tracer.TraceStep(ctx, st.Name)
	defer span.End()

	st.Start()
	err := fn(ctx, st)
	if err != nil {
		st.Fail(err)
	} else {
		st.Complete()
	}
	p.tracer.RecordStepCompletion(ctx, span, st.Name, st.Duration(), err)

	p.logger.DebugContext(ctx, "Step finished",
		slog.String("step", st.Name),
		slog.String("status", string(st.Status)),
		slog.Duration("duration", st.Duration()))
	return err
}

// export writes the configured tables and always the summary JSON
func (p *Pipeline) export(ctx context.Context, report *Report) ([]string, error) {
	if err := p.paths.EnsureDirectories(); err != nil {
		return nil, err
	}

	var written []string
	if p.cfg.Output.ExportCSV {
		path, err := p.tables.ExportCleaned(report.Cleaned)
		if err != nil {
			return written, err
		}
		written = append(written, path)

		if path, err = p.tables.ExportSnapshot(report.Snapshot); err != nil {
			return written, err
		}
		written = append(written, path)

		if path, err = p.tables.ExportSummaries(report.Summaries); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	if p.cfg.Output.ExportExcel {
		path, err := p.workbook.Export(exporter.WorkbookData{
			Cleaned:   report.Cleaned,
			Snapshot:  report.Snapshot,
			Summaries: report.Summaries,
			Missing:   report.Missing,
		})
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}

	jsonPath := p.paths.GetExportPath(config.ExportSummaryJSON)
	if err := exporter.WriteJSON(jsonPath, report.Summaries); err != nil {
		return written, err
	}
	written = append(written, jsonPath)

	p.logger.InfoContext(ctx, "Exports written", slog.Any("files", written))
	return written, nil
}

// logPreview logs the column list, the first rows and the null counts
func (p *Pipeline) logPreview(ctx context.Context, ds *domain.Dataset, missing domain.MissingReport) {
	cols := make([]string, len(ds.Columns))
	for i, c := range ds.Columns {
		cols[i] = string(c)
	}
	p.logger.InfoContext(ctx, "Dataset columns", slog.Any("columns", cols))

	for i, rec := range dataprocessing.Head(ds, previewRows) {
		cases, _ := rec.Value(domain.ColTotalCases)
		deaths, _ := rec.Value(domain.ColTotalDeaths)
		p.logger.DebugContext(ctx, "Dataset row",
			slog.Int("row", i),
			slog.String("location", rec.Location),
			slog.String("iso_code", rec.ISOCode),
			slog.String("date", rec.RawDate),
			slog.String("total_cases", formatValue(cases)),
			slog.String("total_deaths", formatValue(deaths)))
	}

	attrs := make([]any, 0, len(missing.Columns)+1)
	attrs = append(attrs, slog.Int("rows", missing.Rows))
	for _, mc := range missing.Columns {
		attrs = append(attrs, slog.Int(string(mc.Column), mc.Missing))
	}
	p.logger.InfoContext(ctx, "Missing values", slog.Group("missing", attrs...))
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
