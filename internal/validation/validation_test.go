package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "owidreport/internal/errors"
)

func TestFileValidator_ValidateSourceFile(t *testing.T) {
	tests := []struct {
		name          string
		setup         func(t *testing.T) string
		wantErr       bool
		errorContains string
	}{
		{
			name: "valid csv",
			setup: func(t *testing.T) string {
				p := filepath.Join(t.TempDir(), "owid-covid-data.csv")
				require.NoError(t, os.WriteFile(p, []byte("location,date\n"), 0644))
				return p
			},
		},
		{
			name: "missing file",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "absent.csv")
			},
			wantErr:       true,
			errorContains: "does not exist",
		},
		{
			name: "directory",
			setup: func(t *testing.T) string {
				return t.TempDir()
			},
			wantErr:       true,
			errorContains: "is a directory",
		},
		{
			name: "empty file",
			setup: func(t *testing.T) string {
				p := filepath.Join(t.TempDir(), "empty.csv")
				require.NoError(t, os.WriteFile(p, nil, 0644))
				return p
			},
			wantErr:       true,
			errorContains: "is empty",
		},
		{
			name: "wrong extension",
			setup: func(t *testing.T) string {
				p := filepath.Join(t.TempDir(), "data.xlsx")
				require.NoError(t, os.WriteFile(p, []byte("x"), 0644))
				return p
			},
			wantErr:       true,
			errorContains: "not a CSV file",
		},
	}

	v := NewFileValidator(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateSourceFile(tt.setup(t))
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))
		})
	}
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	v := NewFileValidator(nil)

	dir := filepath.Join(t.TempDir(), "reports", "charts")
	require.NoError(t, v.ValidateOutputDirectory(dir))
	assert.DirExists(t, dir)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "write probe must be cleaned up")

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	err = v.ValidateOutputDirectory(filepath.Join(file, "sub"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
}

type sampleOptions struct {
	Scope   string   `yaml:"scope" validate:"oneof=entity global"`
	Columns []string `yaml:"columns" validate:"min=1,dive,numericcolumn"`
	Fields  []string `yaml:"fields" validate:"dive,column"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name     string
		in       sampleOptions
		wantErr  bool
		contains []string
	}{
		{
			name: "valid",
			in:   sampleOptions{Scope: "entity", Columns: []string{"total_cases"}, Fields: []string{"date", "location"}},
		},
		{
			name:     "bad scope",
			in:       sampleOptions{Scope: "country", Columns: []string{"total_cases"}},
			wantErr:  true,
			contains: []string{"scope must be one of [entity global]"},
		},
		{
			name:     "non numeric column",
			in:       sampleOptions{Scope: "global", Columns: []string{"location"}},
			wantErr:  true,
			contains: []string{`"location" is not a numeric column`},
		},
		{
			name:     "unknown field and empty columns",
			in:       sampleOptions{Scope: "global", Fields: []string{"stringency"}},
			wantErr:  true,
			contains: []string{"columns must be at least 1", `unknown column "stringency"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.in)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
			for _, c := range tt.contains {
				assert.Contains(t, err.Error(), c)
			}
		})
	}
}
