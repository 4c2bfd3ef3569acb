package dataset

import (
	"github.com/jengzang/mobiledna-go/internal/metadata"
	"github.com/jengzang/mobiledna-go/internal/models"
	"github.com/jengzang/mobiledna-go/internal/records"
)

// ensure computes the requested annotation columns that are still missing
func (d *Dataset) ensure(need annotation) {
	missing := need &^ d.have
	if missing == 0 {
		return
	}

	if missing&annCategory != 0 {
		unknown := 0
		for i := range d.rows {
			c := metadata.Category(d.opts.Metadata, d.rows[i].Application, d.opts.CustomCategories)
			if c == models.UnknownCategory {
				unknown++
			}
			d.rows[i].Category = c
		}
		records.Report(d.log, models.QualityWarning{
			Check: "unmapped applications", Count: unknown, Total: len(d.rows),
			Detail: "category set to unknown",
		})
	}
	if missing&annAppName != 0 {
		for i := range d.rows {
			d.rows[i].AppName = metadata.Name(d.opts.Metadata, d.rows[i].Application, false)
		}
	}
	if missing&annDayType != 0 {
		d.opts.Annotator.AnnotateDates(d.rows)
	}
	if missing&annTimeOfDay != 0 {
		d.opts.Annotator.AnnotateTimes(d.rows)
	}

	d.have |= missing
	d.log.Debug().Uint8("annotations", uint8(missing)).Msg("computed annotation columns")
}

// AddCategories annotates every row with its application category
func (d *Dataset) AddCategories() *Dataset {
	d.ensure(annCategory)
	return d
}

// AddAppNames annotates every row with the application display name
func (d *Dataset) AddAppNames() *Dataset {
	d.ensure(annAppName)
	return d
}

// AddDateTypes annotates every row with the week/weekend/holiday label
func (d *Dataset) AddDateTypes() *Dataset {
	d.ensure(annDayType)
	return d
}

// AddTimesOfDay annotates every row with its time-of-day bucket
func (d *Dataset) AddTimesOfDay() *Dataset {
	d.ensure(annTimeOfDay)
	return d
}
