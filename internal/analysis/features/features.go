// Package features holds the analyzers that turn datasets into per-subject
// feature tables. Each analyzer registers itself with the analysis engine.
package features

import (
	"github.com/jengzang/mobiledna-go/internal/analysis"
	"github.com/jengzang/mobiledna-go/internal/models"
)

// builder gathers series and keeps the first error
type builder struct {
	series []*models.Series
	err    error
}

func (b *builder) add(s *models.Series, err error) {
	if b.err != nil {
		return
	}
	if err != nil {
		b.err = err
		return
	}
	b.series = append(b.series, s)
}

func (b *builder) table() (*models.FeatureTable, error) {
	if b.err != nil {
		return nil, b.err
	}
	return analysis.Collect(b.series...), nil
}

// prefixed renames a series so streams with equal metric names do not collide
func prefixed(prefix string, s *models.Series, err error) (*models.Series, error) {
	if err != nil {
		return nil, err
	}
	s.Name = prefix + s.Name
	return s, nil
}
