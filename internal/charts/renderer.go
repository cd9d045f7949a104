package charts

import (
	"context"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"owidreport/internal/config"
	apperrors "owidreport/internal/errors"
	"owidreport/pkg/contracts/domain"
)

// Chart kinds in the manifest
const (
	KindLine       = "line"
	KindChoropleth = "choropleth"
)

// ChartFile is one written chart
type ChartFile struct {
	Name     string    `json:"name"`
	Title    string    `json:"title"`
	Kind     string    `json:"kind"`
	File     string    `json:"file"`
	Path     string    `json:"-"`
	Format   string    `json:"format"`
	Series   int       `json:"series"`
	Rendered time.Time `json:"rendered_at"`
}

// Manifest lists the charts of one run, in display order
type Manifest struct {
	Charts  []ChartFile `json:"charts"`
	Skipped []string    `json:"skipped,omitempty"`
}

// Find returns the chart written to file name
func (m *Manifest) Find(file string) (ChartFile, bool) {
	for _, c := range m.Charts {
		if c.File == file {
			return c, true
		}
	}
	return ChartFile{}, false
}

// Options controls figure size and the optional PNG capture
type Options struct {
	Width          float64
	Height         float64
	ChoroplethPNG  bool
	BrowserTimeout time.Duration
}

// OptionsFromConfig reads chart options from the output configuration
func OptionsFromConfig(cfg config.OutputConfig) Options {
	return Options{
		Width:          cfg.ChartWidth,
		Height:         cfg.ChartHeight,
		ChoroplethPNG:  cfg.ChoroplethPNG,
		BrowserTimeout: cfg.BrowserTimeout,
	}
}

// ChartObserver is told about every chart attempt
type ChartObserver func(ctx context.Context, chart string, err error)

// Renderer writes every report chart into the charts directory
type Renderer struct {
	paths    *config.Paths
	opts     Options
	logger   *slog.Logger
	observer ChartObserver
	capture  func(ctx context.Context, htmlPath, pngPath string, timeout time.Duration) error
}

// NewRenderer creates a renderer
func NewRenderer(paths *config.Paths, opts Options, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Width <= 0 {
		opts.Width = 12
	}
	if opts.Height <= 0 {
		opts.Height = 6
	}
	return &Renderer{
		paths:   paths,
		opts:    opts,
		logger:  logger.With(slog.String("component", "renderer")),
		capture: CaptureHTML,
	}
}

// WithObserver registers fn to be called after each chart
func (r *Renderer) WithObserver(fn ChartObserver) *Renderer {
	r.observer = fn
	return r
}

// Render draws the line charts for entities from the cleaned dataset and the
// choropleth from the snapshot. Charts render concurrently; the first failure
// cancels the rest.
func (r *Renderer) Render(ctx context.Context, ds *domain.Dataset, entities []string, snaps []domain.Snapshot) (*Manifest, error) {
	if err := os.MkdirAll(r.paths.ChartsDir, 0755); err != nil {
		return nil, apperrors.NewStorageError("failed to create charts directory", err)
	}

	var (
		mu       sync.Mutex
		manifest Manifest
	)
	add := func(c ChartFile) {
		mu.Lock()
		manifest.Charts = append(manifest.Charts, c)
		mu.Unlock()
	}
	skip := func(name string) {
		mu.Lock()
		manifest.Skipped = append(manifest.Skipped, name)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)

	for _, lc := range LineCharts {
		lc := lc
		if lc.Optional && !ds.HasColumn(lc.Metric) {
			r.logger.InfoContext(ctx, "Column absent, skipping chart",
				slog.String("chart", lc.Name),
				slog.String("column", string(lc.Metric)))
			skip(lc.Name)
			continue
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			path := r.paths.GetChartPath(lc.FileName)
			series, err := RenderLineChart(ds, entities, lc, path, r.opts.Width, r.opts.Height)
			r.observe(gctx, lc.Name, err)
			if err != nil {
				return err
			}
			add(ChartFile{
				Name: lc.Name, Title: lc.Title, Kind: KindLine,
				File: lc.FileName, Path: path, Format: "png",
				Series: series, Rendered: time.Now().UTC(),
			})
			r.logger.InfoContext(gctx, "Chart rendered",
				slog.String("chart", lc.Name),
				slog.String("file", path),
				slog.Int("series", series))
			return nil
		})
	}

	g.Go(func() error {
		return r.renderChoropleth(gctx, snaps, add)
	})

	if err := g.Wait(); err != nil {
		r.logger.ErrorContext(ctx, "Chart rendering failed",
			slog.String("error", err.Error()))
		return nil, err
	}

	order := make(map[string]int)
	for i, lc := range LineCharts {
		order[lc.FileName] = i
	}
	order[config.ChartChoroplethHTML] = len(LineCharts)
	order[config.ChartChoroplethPNG] = len(LineCharts) + 1
	sort.SliceStable(manifest.Charts, func(i, j int) bool {
		return order[manifest.Charts[i].File] < order[manifest.Charts[j].File]
	})

	return &manifest, nil
}

func (r *Renderer) renderChoropleth(ctx context.Context, snaps []domain.Snapshot, add func(ChartFile)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	htmlPath := r.paths.GetChartPath(config.ChartChoroplethHTML)
	result, err := RenderChoropleth(snaps, htmlPath)
	r.observe(ctx, "choropleth", err)
	if err != nil {
		return err
	}
	add(ChartFile{
		Name: "choropleth", Title: ChoroplethTitle, Kind: KindChoropleth,
		File: config.ChartChoroplethHTML, Path: htmlPath, Format: "html",
		Series: result.Regions, Rendered: time.Now().UTC(),
	})
	r.logger.InfoContext(ctx, "Choropleth rendered",
		slog.String("file", htmlPath),
		slog.Int("regions", result.Regions))
	if len(result.Unmatched) > 0 {
		r.logger.WarnContext(ctx, "Locations without a map region",
			slog.Any("iso_codes", result.Unmatched))
	}

	if !r.opts.ChoroplethPNG {
		return nil
	}

	// A missing browser should not sink the report; the HTML map is already written.
	pngPath := r.paths.GetChartPath(config.ChartChoroplethPNG)
	if err := r.capture(ctx, htmlPath, pngPath, r.opts.BrowserTimeout); err != nil {
		r.observe(ctx, "choropleth_png", err)
		r.logger.WarnContext(ctx, "Choropleth PNG capture failed",
			slog.String("file", pngPath),
			slog.String("error", err.Error()))
		return nil
	}
	r.observe(ctx, "choropleth_png", nil)
	add(ChartFile{
		Name: "choropleth_png", Title: ChoroplethTitle, Kind: KindChoropleth,
		File: config.ChartChoroplethPNG, Path: pngPath, Format: "png",
		Series: result.Regions, Rendered: time.Now().UTC(),
	})
	return nil
}

func (r *Renderer) observe(ctx context.Context, chart string, err error) {
	if r.observer != nil {
		r.observer(ctx, chart, err)
	}
}
