package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/jengzang/mobiledna-go/internal/models"
)

func readCSVFile(path string, sep rune, log zerolog.Logger) (models.RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.RawTable{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadCSV(f, sep, log)
}

// ReadCSV parses delimited text with a header line. Lines that cannot be
// parsed or carry the wrong number of fields are skipped and counted.
func ReadCSV(r io.Reader, sep rune, log zerolog.Logger) (models.RawTable, error) {
	cr := csv.NewReader(r)
	cr.Comma = sep
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = false

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return models.RawTable{}, nil
	}
	if err != nil {
		return models.RawTable{}, fmt.Errorf("read csv header: %w", err)
	}

	table := models.RawTable{Columns: header}
	skipped := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			skipped++
			log.Debug().Int("line", parseErr.Line).Err(parseErr.Err).Msg("skipping malformed line")
			continue
		}
		if err != nil {
			return models.RawTable{}, fmt.Errorf("read csv: %w", err)
		}
		if len(rec) != len(header) {
			skipped++
			continue
		}
		table.Rows = append(table.Rows, rec)
	}

	if skipped > 0 {
		total := skipped + len(table.Rows)
		log.Warn().
			Str("check", "malformed lines").
			Int("count", skipped).
			Int("total", total).
			Float64("percent", 100*float64(skipped)/float64(total)).
			Msg("skipped lines that could not be parsed")
	}
	return table, nil
}
