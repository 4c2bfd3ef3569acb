// Package source reads raw logger exports from disk and writes feature
// tables back out. Supported serializations are delimited text, Parquet
// (through DuckDB) and SQLite databases.
package source

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jengzang/mobiledna-go/internal/models"
	"github.com/jengzang/mobiledna-go/internal/records"
)

// Format is a file serialization
type Format string

const (
	FormatInfer   Format = ""
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
	FormatSQLite  Format = "sqlite"
	FormatPickle  Format = "pickle"
)

// DefaultSeparator is the field separator of logger CSV exports
const DefaultSeparator = ';'

// LoadOptions tunes Load
type LoadOptions struct {
	Format    Format
	Separator rune
	// Bare keeps only the minimal column set of the kind, when one is defined
	Bare bool
	// Table names the SQLite table to read; defaults to the kind
	Table  string
	Logger zerolog.Logger
}

// InferFormat derives the serialization from a file extension
func InferFormat(path string) (Format, error) {
	switch ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")); ext {
	case "csv", "txt":
		return FormatCSV, nil
	case "parquet", "pq":
		return FormatParquet, nil
	case "db", "sqlite", "sqlite3":
		return FormatSQLite, nil
	case "pickle", "pkl":
		return FormatPickle, nil
	default:
		return "", fmt.Errorf("could not infer file type of %s", path)
	}
}

// Load reads the raw table of one stream
func Load(ctx context.Context, path string, kind models.Kind, opts LoadOptions) (models.RawTable, error) {
	if !kind.Valid() {
		return models.RawTable{}, fmt.Errorf("invalid kind %q", kind)
	}
	log := opts.Logger.With().Str("component", "Source").Str("path", path).Logger()

	format := opts.Format
	if format == FormatInfer {
		f, err := InferFormat(path)
		if err != nil {
			return models.RawTable{}, err
		}
		format = f
		log.Debug().Str("format", string(format)).Msg("recognized file type")
	}

	var (
		table models.RawTable
		err   error
	)
	switch format {
	case FormatCSV:
		sep := opts.Separator
		if sep == 0 {
			sep = DefaultSeparator
		}
		table, err = readCSVFile(path, sep, log)
	case FormatParquet:
		table, err = readParquet(ctx, path)
	case FormatSQLite:
		name := opts.Table
		if name == "" {
			name = string(kind)
		}
		table, err = readSQLite(ctx, path, name)
	case FormatPickle:
		return models.RawTable{}, fmt.Errorf("pickle files are not supported, convert %s to csv or parquet", path)
	default:
		return models.RawTable{}, fmt.Errorf("unsupported file type %q", format)
	}
	if err != nil {
		return models.RawTable{}, err
	}

	table = dropThrowaway(table)
	if opts.Bare {
		if fields, ok := records.MinFields[kind]; ok {
			table = project(table, fields)
		}
	}
	log.Info().Int("rows", table.Len()).Int("columns", len(table.Columns)).Msg("loaded")
	return table, nil
}

func dropThrowaway(t models.RawTable) models.RawTable {
	keep := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		if !records.IsThrowaway(c) {
			keep = append(keep, c)
		}
	}
	if len(keep) == len(t.Columns) {
		return t
	}
	return project(t, keep)
}

// project keeps the given columns, in that order, skipping absent ones
func project(t models.RawTable, columns []string) models.RawTable {
	var (
		cols []string
		pos  []int
	)
	for _, c := range columns {
		if i := t.Index(c); i >= 0 {
			cols = append(cols, c)
			pos = append(pos, i)
		}
	}
	out := models.RawTable{Columns: cols, Rows: make([][]string, len(t.Rows))}
	for r, row := range t.Rows {
		cells := make([]string, len(pos))
		for j, p := range pos {
			if p < len(row) {
				cells[j] = row[p]
			}
		}
		out.Rows[r] = cells
	}
	return out
}
