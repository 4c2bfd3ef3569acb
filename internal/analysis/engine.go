package analysis

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jengzang/mobiledna-go/internal/dataset"
	"github.com/jengzang/mobiledna-go/internal/models"
)

// Analyzer is the interface that all feature skills must implement
type Analyzer interface {
	// Name returns the skill name the analyzer is registered under
	Name() string

	// Analyze computes one feature table with a row per subject
	Analyze(ctx context.Context, in *Input) (*models.FeatureTable, error)
}

// Input bundles the datasets of one pipeline run. Streams that were not
// loaded are nil.
type Input struct {
	AppEvents     *dataset.AppEvents
	Sessions      *dataset.Sessions
	Notifications *dataset.Notifications
	Connectivity  *dataset.Connectivity
	Params        Params
}

// Params holds the tunables analyzers read
type Params struct {
	// Categories gets a per-category column for the daily usage features
	Categories []string `json:"categories,omitempty"`

	HomeWindowStart string  `json:"home_window_start"`
	HomeWindowEnd   string  `json:"home_window_end"`
	HomeTolerance   float64 `json:"home_tolerance"`

	// ChurnApps lists the applications churn is evaluated for
	ChurnApps []string `json:"churn_apps,omitempty"`

	Workers int `json:"-"`
}

// DefaultParams returns the parameters used when a request leaves them out
func DefaultParams() Params {
	return Params{
		HomeWindowStart: "23:30",
		HomeWindowEnd:   "04:30",
		HomeTolerance:   1e-7,
	}
}

// ErrMissingStream is returned when an analyzer needs a stream the run did not load
var ErrMissingStream = errors.New("required stream not loaded")

// MissingStream wraps ErrMissingStream with the analyzer and stream names
func MissingStream(analyzer string, kind models.Kind) error {
	return fmt.Errorf("%s: %s: %w", analyzer, kind, ErrMissingStream)
}

// BaseAnalyzer provides common functionality for all analyzers
type BaseAnalyzer struct {
	name string
	Log  zerolog.Logger
}

// NewBaseAnalyzer creates a new base analyzer
func NewBaseAnalyzer(log zerolog.Logger, name string) *BaseAnalyzer {
	return &BaseAnalyzer{
		name: name,
		Log:  log.With().Str("component", "Analyzer").Str("skill", name).Logger(),
	}
}

// Name returns the analyzer name
func (a *BaseAnalyzer) Name() string {
	return a.name
}

// Collect pivots series into a fresh feature table
func Collect(series ...*models.Series) *models.FeatureTable {
	t := models.NewFeatureTable()
	for _, s := range series {
		if s != nil {
			t.AddSeries(s)
		}
	}
	return t
}

// AnalyzerFactory is a function that creates an analyzer instance
type AnalyzerFactory func(log zerolog.Logger) Analyzer

var (
	registryMu sync.RWMutex
	registry   = make(map[string]AnalyzerFactory)
)

// RegisterAnalyzer registers an analyzer factory for a skill name
func RegisterAnalyzer(skillName string, factory AnalyzerFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[skillName] = factory
}

// GetAnalyzer retrieves an analyzer instance for a skill name
func GetAnalyzer(skillName string, log zerolog.Logger) (Analyzer, bool) {
	registryMu.RLock()
	factory, ok := registry[skillName]
	registryMu.RUnlock()
	if !ok {
		return nil, false
	}
	return factory(log), true
}

// Skills returns the registered skill names, sorted
func Skills() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Run executes the named skills one after another and joins their tables.
// "all" anywhere in skills expands to every registered skill. A skill whose stream is missing is
// skipped with a warning; any other failure aborts the run. Datasets are not
// safe for concurrent use, so skills never run in parallel.
func Run(ctx context.Context, skills []string, in *Input, log zerolog.Logger, progress func(done, total int)) (*models.FeatureTable, error) {
	if len(skills) == 0 || slices.Contains(skills, models.SkillAll) {
		skills = Skills()
	}

	out := models.NewFeatureTable()
	for i, name := range skills {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		a, ok := GetAnalyzer(name, log)
		if !ok {
			return nil, fmt.Errorf("unknown skill %q", name)
		}

		start := time.Now()
		table, err := a.Analyze(ctx, in)
		switch {
		case errors.Is(err, ErrMissingStream):
			log.Warn().Err(err).Str("skill", name).Msg("skipping skill")
		case err != nil:
			return nil, fmt.Errorf("skill %s: %w", name, err)
		default:
			out.Join(table)
			log.Info().Str("skill", name).Int("columns", len(table.Columns)).
				Dur("took", time.Since(start)).Msg("skill finished")
		}
		if progress != nil {
			progress(i+1, len(skills))
		}
	}
	return out, nil
}
