package source

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/jengzang/mobiledna-go/internal/models"
)

func openDuckDB() (*sql.DB, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	return db, nil
}

// quoteLiteral renders s as a SQL string literal
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// quoteIdent renders s as a SQL identifier
func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func readParquet(ctx context.Context, path string) (models.RawTable, error) {
	db, err := openDuckDB()
	if err != nil {
		return models.RawTable{}, err
	}
	defer db.Close()

	src := "read_parquet(" + quoteLiteral(path) + ")"
	rows, err := db.QueryContext(ctx, "DESCRIBE SELECT * FROM "+src)
	if err != nil {
		return models.RawTable{}, fmt.Errorf("describe %s: %w", path, err)
	}
	var columns []string
	for rows.Next() {
		var (
			name, typ             string
			null, key, def, extra sql.NullString
		)
		if err := rows.Scan(&name, &typ, &null, &key, &def, &extra); err != nil {
			rows.Close()
			return models.RawTable{}, fmt.Errorf("scan parquet schema: %w", err)
		}
		columns = append(columns, name)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return models.RawTable{}, err
	}
	if len(columns) == 0 {
		return models.RawTable{}, nil
	}

	selects := make([]string, len(columns))
	for i, c := range columns {
		selects[i] = fmt.Sprintf("CAST(%s AS VARCHAR)", quoteIdent(c))
	}
	query := "SELECT " + strings.Join(selects, ", ") + " FROM " + src
	return queryStrings(ctx, db, query, columns)
}

// queryStrings runs a query whose columns all scan as text; NULL becomes ""
func queryStrings(ctx context.Context, db *sql.DB, query string, columns []string) (models.RawTable, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return models.RawTable{}, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	table := models.RawTable{Columns: columns}
	cells := make([]sql.NullString, len(columns))
	dest := make([]any, len(columns))
	for i := range cells {
		dest[i] = &cells[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return models.RawTable{}, fmt.Errorf("scan row: %w", err)
		}
		rec := make([]string, len(cells))
		for i, c := range cells {
			if c.Valid {
				rec[i] = c.String
			}
		}
		table.Rows = append(table.Rows, rec)
	}
	return table, rows.Err()
}
