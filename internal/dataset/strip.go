package dataset

import (
	"context"
	"math"

	"github.com/jengzang/mobiledna-go/internal/coverage"
	"github.com/jengzang/mobiledna-go/internal/models"
	"github.com/jengzang/mobiledna-go/internal/parallel"
)

// StripOptions selects the optional stages of Strip
type StripOptions struct {
	// Uninterrupted keeps only the longest run of consecutive logged days
	Uninterrupted bool
	// NumberOfDays keeps the first n calendar days of what remains; 0 disables
	NumberOfDays int
	// MinLogDays drops subjects with fewer distinct logged days; 0 disables
	MinLogDays int
}

// Strip removes partial and non-contiguous logging per subject: it drops
// the first and last logged day, then optionally reduces to the longest
// uninterrupted run, to the first NumberOfDays days and to subjects with at
// least MinLogDays days. Stripping twice is refused with a warning and
// returns d unchanged.
func (d *Dataset) Strip(ctx context.Context, opts StripOptions) (*Dataset, error) {
	if d.stripped {
		d.log.Warn().Msg("already stripped this dataset, skipping")
		return d, nil
	}

	groups, err := parallel.Map(ctx, d.opts.Workers, coverage.Split(d.rows),
		func(_ context.Context, g coverage.Group) (coverage.Group, error) {
			rows, err := coverage.TrimEdges(g.Rows)
			if err != nil {
				return g, err
			}
			if opts.Uninterrupted {
				if rows, err = coverage.LongestRun(rows); err != nil {
					return g, err
				}
			}
			if opts.NumberOfDays > 0 {
				if rows, err = coverage.FirstDays(rows, opts.NumberOfDays); err != nil {
					return g, err
				}
			}
			return coverage.Group{Subject: g.Subject, Rows: rows}, nil
		})
	if err != nil {
		return nil, err
	}

	out := d.derive(coverage.Join(groups))
	if opts.MinLogDays > 0 {
		out = out.ImposeMinDays(opts.MinLogDays)
	}
	out.stripped = true

	d.log.Info().
		Int("before", len(d.rows)).
		Int("after", len(out.rows)).
		Int("subjects", len(out.Users())).
		Msg("stripped logging edges")
	return out, nil
}

// SelectFirstDays keeps, per subject, rows dated within n days of the first logged date
func (d *Dataset) SelectFirstDays(n int) (*Dataset, error) {
	groups := coverage.Split(d.rows)
	for i, g := range groups {
		rows, err := coverage.FirstDays(g.Rows, n)
		if err != nil {
			return nil, err
		}
		groups[i].Rows = rows
	}
	return d.derive(coverage.Join(groups)), nil
}

// ImposeMinDays drops subjects with fewer than n distinct logged days
func (d *Dataset) ImposeMinDays(n int) *Dataset {
	days := d.Days()
	var keep []string
	for _, subject := range days.Subjects() {
		if v, _ := days.Get(subject); v >= float64(n) {
			keep = append(keep, subject)
		}
	}
	if dropped := len(days.Subjects()) - len(keep); dropped > 0 {
		d.log.Info().Int("dropped", dropped).Int("min_days", n).Msg("removed subjects with too few logging days")
	}
	if len(keep) == 0 {
		return d.derive(nil)
	}
	return d.Filter(models.Criteria{Subjects: keep})
}

// Sync restricts rows to the per-subject date range covered by reference.
// Subjects absent from reference are dropped.
func (d *Dataset) Sync(reference *Dataset) *Dataset {
	before := len(d.rows)
	rows := coverage.Restrict(d.rows, reference.Ranges())

	pct := 0.0
	if before > 0 {
		pct = math.Round(10000*float64(before-len(rows))/float64(before)) / 100
	}
	d.log.Info().
		Str("reference", string(reference.kind)).
		Int("before", before).
		Int("after", len(rows)).
		Float64("percent_removed", pct).
		Msg("synced to reference date ranges")
	return d.derive(rows)
}
