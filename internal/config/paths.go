package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains all the application paths.
// Directory structure under BaseDir:
//
//	data/                  (source CSV, when given as a bare file name)
//	data/reports/charts/   (PNG line charts, choropleth HTML)
//	data/reports/exports/  (cleaned CSV, workbook, summaries)
//	logs/
type Paths struct {
	BaseDir    string
	DataDir    string
	ReportsDir string
	ChartsDir  string
	ExportsDir string
	LogsDir    string
}

// NewPaths lays out every directory below baseDir
func NewPaths(baseDir string) *Paths {
	dataDir := filepath.Join(baseDir, "data")
	reportsDir := filepath.Join(dataDir, "reports")
	return &Paths{
		BaseDir:    baseDir,
		DataDir:    dataDir,
		ReportsDir: reportsDir,
		ChartsDir:  filepath.Join(reportsDir, "charts"),
		ExportsDir: filepath.Join(reportsDir, "exports"),
		LogsDir:    filepath.Join(baseDir, "logs"),
	}
}

// GetPaths resolves paths from configuration. An empty base dir means the
// current working directory; Output.Dir, when set, replaces the reports tree.
func GetPaths(cfg *Config) (*Paths, error) {
	base := cfg.Paths.BaseDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		base = wd
	}
	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	p := NewPaths(base)
	if cfg.Output.Dir != "" {
		out := cfg.Output.Dir
		if !filepath.IsAbs(out) {
			out = filepath.Join(base, out)
		}
		p.ReportsDir = out
		p.ChartsDir = filepath.Join(out, "charts")
		p.ExportsDir = filepath.Join(out, "exports")
	}
	return p, nil
}

// EnsureDirectories creates the output and log directories
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.ReportsDir, p.ChartsDir, p.ExportsDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		slog.Debug("Ensured directory exists", slog.String("directory", dir))
	}
	return nil
}

// ResolveSource locates the dataset. Absolute paths are returned unchanged;
// relative ones are tried against BaseDir first and then DataDir.
func (p *Paths) ResolveSource(source string) string {
	if filepath.IsAbs(source) {
		return source
	}
	direct := filepath.Join(p.BaseDir, source)
	if FileExists(direct) {
		return direct
	}
	inData := filepath.Join(p.DataDir, source)
	if FileExists(inData) {
		return inData
	}
	return direct
}

// GetChartPath returns the path for a rendered chart
func (p *Paths) GetChartPath(filename string) string {
	return filepath.Join(p.ChartsDir, filename)
}

// GetExportPath returns the path for an exported table
func (p *Paths) GetExportPath(filename string) string {
	return filepath.Join(p.ExportsDir, filename)
}

// GetLogPath returns the path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// LogPathResolution logs every resolved directory at debug level
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	logger.Debug("Resolved paths",
		slog.String("base_dir", p.BaseDir),
		slog.String("data_dir", p.DataDir),
		slog.String("reports_dir", p.ReportsDir),
		slog.String("charts_dir", p.ChartsDir),
		slog.String("exports_dir", p.ExportsDir),
		slog.String("logs_dir", p.LogsDir))
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
