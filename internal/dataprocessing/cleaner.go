package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	apperrors "owidreport/internal/errors"
	"owidreport/pkg/contracts/domain"
)

// Cleaner narrows the dataset to the entities of interest and makes the
// required fields usable.
type Cleaner struct {
	logger *slog.Logger
}

// NewCleaner creates a cleaner. A nil logger falls back to slog.Default.
func NewCleaner(logger *slog.Logger) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{logger: logger.With(slog.String("component", "cleaner"))}
}

// Filter keeps the records whose location is one of entities, in source order.
func (c *Cleaner) Filter(ds *domain.Dataset, entities []string) (*domain.Dataset, error) {
	if !ds.HasColumn(domain.ColLocation) {
		return nil, apperrors.NewColumnNotFoundError(string(domain.ColLocation))
	}

	keep := make(map[string]bool, len(entities))
	for _, e := range entities {
		keep[e] = true
	}

	out := &domain.Dataset{Columns: append([]domain.Column(nil), ds.Columns...)}
	for _, r := range ds.Records {
		if keep[r.Location] {
			out.Records = append(out.Records, r)
		}
	}
	return out, nil
}

// DropMissing removes records with a null in any required column. A required
// column absent from the dataset is a NOT_FOUND error.
func (c *Cleaner) DropMissing(ds *domain.Dataset, required []domain.Column) (*domain.Dataset, error) {
	for _, col := range required {
		if !ds.HasColumn(col) {
			return nil, apperrors.NewColumnNotFoundError(string(col))
		}
	}

	out := &domain.Dataset{Columns: append([]domain.Column(nil), ds.Columns...)}
	for _, r := range ds.Records {
		if !missingAny(&r, required) {
			out.Records = append(out.Records, r)
		}
	}
	return out, nil
}

func missingAny(r *domain.Record, cols []domain.Column) bool {
	for _, col := range cols {
		if r.IsMissing(col) {
			return true
		}
	}
	return false
}

// ParseDates converts RawDate into Date on every record, in place.
// The first malformed value aborts with a PARSING error naming the line.
func (c *Cleaner) ParseDates(ds *domain.Dataset) error {
	if !ds.HasColumn(domain.ColDate) {
		return apperrors.NewColumnNotFoundError(string(domain.ColDate))
	}

	for i := range ds.Records {
		r := &ds.Records[i]
		d, err := parseDate(r.RawDate)
		if err != nil {
			return apperrors.NewParsingError(
				fmt.Sprintf("line %d: invalid date %q for %s", r.Line, r.RawDate, r.Location), err).
				WithContext("line", r.Line).
				WithContext("value", r.RawDate)
		}
		r.Date = d
	}
	return nil
}

func parseDate(raw string) (time.Time, error) {
	return time.Parse(domain.DateLayout, strings.TrimSpace(raw))
}

// Clean runs Filter, DropMissing and ParseDates in that order.
func (c *Cleaner) Clean(ctx context.Context, ds *domain.Dataset, entities []string, required []domain.Column) (*domain.Dataset, error) {
	filtered, err := c.Filter(ds, entities)
	if err != nil {
		return nil, err
	}

	kept, err := c.DropMissing(filtered, required)
	if err != nil {
		return nil, err
	}

	if err := c.ParseDates(kept); err != nil {
		return nil, err
	}

	c.logger.InfoContext(ctx, "Dataset cleaned",
		slog.Int("input_rows", ds.Len()),
		slog.Int("filtered_rows", filtered.Len()),
		slog.Int("kept_rows", kept.Len()),
		slog.Any("entities", entities))

	for _, e := range entities {
		if len(kept.ForEntity(e)) == 0 {
			c.logger.WarnContext(ctx, "Entity has no rows after cleaning",
				slog.String("entity", e))
		}
	}

	return kept, nil
}

// ToColumns converts configured column names
func ToColumns(names []string) []domain.Column {
	out := make([]domain.Column, len(names))
	for i, n := range names {
		out[i] = domain.Column(n)
	}
	return out
}
