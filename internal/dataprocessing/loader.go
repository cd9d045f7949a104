package dataprocessing

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	apperrors "owidreport/internal/errors"
	"owidreport/internal/validation"
	"owidreport/pkg/contracts/domain"
)

const utf8BOM = "\ufeff"

// cancelCheckEvery bounds how many rows are parsed between context checks
const cancelCheckEvery = 4096

// Loader reads the OWID CSV into a Dataset
type Loader struct {
	logger    *slog.Logger
	validator *validation.FileValidator
}

// NewLoader creates a loader. A nil logger falls back to slog.Default.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		logger:    logger.With(slog.String("component", "loader")),
		validator: validation.NewFileValidator(logger),
	}
}

// Load validates path and parses it. Every failure is a PARSING error.
func (l *Loader) Load(ctx context.Context, path string) (*domain.Dataset, error) {
	if err := l.validator.ValidateSourceFile(path); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to open dataset %s", path), err).
			WithContext("file", path)
	}
	defer f.Close()

	ds, err := ParseCSV(ctx, f)
	if err != nil {
		l.logger.ErrorContext(ctx, "Failed to parse dataset",
			slog.String("file", path),
			slog.String("error", err.Error()))
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			appErr.WithContext("file", path)
		}
		return nil, err
	}

	columns := make([]string, len(ds.Columns))
	for i, c := range ds.Columns {
		columns[i] = string(c)
	}
	l.logger.InfoContext(ctx, "Dataset loaded",
		slog.String("file", path),
		slog.Int("rows", ds.Len()),
		slog.Any("columns", columns))

	return ds, nil
}

// ParseCSV reads a header row followed by data rows. Columns are located by
// header name; unknown columns are ignored. Empty or unparsable numeric cells
// become NaN.
func ParseCSV(ctx context.Context, r io.Reader) (*domain.Dataset, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, apperrors.NewParsingError("dataset is empty", nil)
	}
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read header", err)
	}

	index := make(map[domain.Column]int)
	ds := &domain.Dataset{}
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		col := domain.Column(strings.TrimSpace(name))
		if !col.IsKnown() || col == domain.ColDeathRate {
			continue
		}
		if _, dup := index[col]; dup {
			continue
		}
		index[col] = i
		ds.Columns = append(ds.Columns, col)
	}

	line := 1
	for {
		if line%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, apperrors.NewParsingError(fmt.Sprintf("malformed CSV at line %d", line), err).
				WithContext("line", line)
		}

		rec := domain.NewRecord(
			cell(row, index, domain.ColLocation),
			cell(row, index, domain.ColISOCode),
			cell(row, index, domain.ColDate),
		)
		rec.Line = line
		for col, i := range index {
			if col.IsNumeric() {
				rec.SetValue(col, parseNumber(row[i]))
			}
		}
		ds.Records = append(ds.Records, rec)
	}

	return ds, nil
}

func cell(row []string, index map[domain.Column]int, col domain.Column) string {
	i, ok := index[col]
	if !ok {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
