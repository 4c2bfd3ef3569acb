package service

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jengzang/mobiledna-go/internal/analysis"
	"github.com/jengzang/mobiledna-go/internal/analysis/mining"
	"github.com/jengzang/mobiledna-go/internal/calendar"
	"github.com/jengzang/mobiledna-go/internal/config"
	"github.com/jengzang/mobiledna-go/internal/dataset"
	"github.com/jengzang/mobiledna-go/internal/metadata"
	"github.com/jengzang/mobiledna-go/internal/models"
	"github.com/jengzang/mobiledna-go/internal/repository"
	"github.com/jengzang/mobiledna-go/internal/source"
)

// MetadataSource hands out the app metadata current at the start of a run
type MetadataSource interface {
	Snapshot(ctx context.Context) (metadata.Snapshot, error)
}

// StripRequest overrides the configured stripping of app events
type StripRequest struct {
	Uninterrupted bool `json:"uninterrupted"`
	NumberOfDays  int  `json:"number_of_days"`
	MinLogDays    int  `json:"min_log_days"`
}

// RulesRequest asks for association rules over the app events sessions
type RulesRequest struct {
	MinSupport    float64 `json:"min_support"`
	MinConfidence float64 `json:"min_confidence"`
	MinLift       float64 `json:"min_lift"`
	MinLength     int     `json:"min_length"`
}

// miner applies the request thresholds over the usual defaults
func (r RulesRequest) miner() *mining.Apriori {
	m := mining.NewApriori()
	if r.MinSupport > 0 {
		m.MinSupport = r.MinSupport
	}
	if r.MinConfidence > 0 {
		m.MinConfidence = r.MinConfidence
	}
	if r.MinLift > 0 {
		m.MinLift = r.MinLift
	}
	return m
}

// PipelineRequest describes one feature extraction run. Relative input
// paths are resolved against the data directory.
type PipelineRequest struct {
	Skills        []string `json:"skills"`
	AppEvents     string   `json:"appevents,omitempty"`
	Sessions      string   `json:"sessions,omitempty"`
	Notifications string   `json:"notifications,omitempty"`
	Connectivity  string   `json:"connectivity,omitempty"`

	Format source.Format `json:"format,omitempty"`
	Bare   bool          `json:"bare,omitempty"`

	Strip      *StripRequest `json:"strip,omitempty"`
	Preprocess bool          `json:"preprocess,omitempty"`

	Categories      []string `json:"categories,omitempty"`
	ChurnApps       []string `json:"churn_apps,omitempty"`
	HomeWindowStart string   `json:"home_window_start,omitempty"`
	HomeWindowEnd   string   `json:"home_window_end,omitempty"`

	Rules *RulesRequest `json:"rules,omitempty"`

	// Output optionally exports the feature table as csv or parquet
	Output string `json:"output,omitempty"`
}

// PipelineResult summarises a finished run
type PipelineResult struct {
	RunID    string               `json:"run_id"`
	Subjects int                  `json:"subjects"`
	Columns  int                  `json:"columns"`
	Rows     map[models.Kind]int  `json:"rows"`
	Rules    []mining.Rule        `json:"rules,omitempty"`
	Took     string               `json:"took"`
	Table    *models.FeatureTable `json:"-"`
}

// FeatureService runs the load, strip, sync and analyze pipeline and stores the result
type FeatureService struct {
	features *repository.FeatureRepository
	meta     MetadataSource
	cfg      *config.Config
	log      zerolog.Logger
}

// NewFeatureService creates a new feature service
func NewFeatureService(features *repository.FeatureRepository, meta MetadataSource, cfg *config.Config, log zerolog.Logger) *FeatureService {
	return &FeatureService{
		features: features,
		meta:     meta,
		cfg:      cfg,
		log:      log.With().Str("component", "FeatureService").Logger(),
	}
}

// Validate rejects requests that cannot run
func (s *FeatureService) Validate(req PipelineRequest) error {
	if req.AppEvents == "" && req.Sessions == "" && req.Notifications == "" && req.Connectivity == "" {
		return fmt.Errorf("no input stream given")
	}
	for _, skill := range req.Skills {
		if skill == models.SkillAll {
			if len(req.Skills) > 1 {
				return fmt.Errorf("skill %q cannot be combined with other skills", models.SkillAll)
			}
			continue
		}
		if _, ok := analysis.GetAnalyzer(skill, s.log); !ok {
			return fmt.Errorf("invalid skill name: %s", skill)
		}
	}
	if req.Rules != nil && req.AppEvents == "" {
		return fmt.Errorf("association rules need app events")
	}
	return nil
}

func (s *FeatureService) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.cfg.Data.Dir, path)
}

func (s *FeatureService) datasetOptions(meta metadata.Provider) dataset.Options {
	a := s.cfg.Analysis
	return dataset.Options{
		Logger:                 s.log,
		Metadata:               meta,
		Annotator:              calendar.NewAnnotator(a.HolidaysSeparate),
		CustomCategories:       a.CustomCategories,
		ClearNegativeDurations: a.ClearNegativeDurations,
		StrictSchema:           a.StrictSchema,
		Workers:                a.Workers,
	}
}

func (s *FeatureService) params(req PipelineRequest) analysis.Params {
	p := analysis.DefaultParams()
	a := s.cfg.Analysis
	if a.HomeWindowStart != "" && a.HomeWindowEnd != "" {
		p.HomeWindowStart, p.HomeWindowEnd = a.HomeWindowStart, a.HomeWindowEnd
	}
	if a.HomeTolerance > 0 {
		p.HomeTolerance = a.HomeTolerance
	}
	if req.HomeWindowStart != "" && req.HomeWindowEnd != "" {
		p.HomeWindowStart, p.HomeWindowEnd = req.HomeWindowStart, req.HomeWindowEnd
	}
	p.Categories = req.Categories
	p.ChurnApps = req.ChurnApps
	p.Workers = a.Workers
	return p
}

func (s *FeatureService) stripOptions(req PipelineRequest) (dataset.StripOptions, bool) {
	if req.Strip != nil {
		return dataset.StripOptions(*req.Strip), true
	}
	st := s.cfg.Analysis.Strip
	return dataset.StripOptions{Uninterrupted: st.Uninterrupted, NumberOfDays: st.NumberOfDays, MinLogDays: st.MinLogDays}, st.Enabled
}

func (s *FeatureService) load(ctx context.Context, path string, kind models.Kind, req PipelineRequest, opts dataset.Options) (*dataset.Dataset, error) {
	sep := source.DefaultSeparator
	if r := []rune(s.cfg.Data.CSVSeparator); len(r) == 1 {
		sep = r[0]
	}
	raw, err := source.Load(ctx, s.resolve(path), kind, source.LoadOptions{
		Format:    req.Format,
		Separator: sep,
		Bare:      req.Bare,
		Logger:    s.log,
	})
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", kind, err)
	}
	d, err := dataset.FromRaw(kind, raw, opts)
	if err != nil {
		return nil, fmt.Errorf("normalize %s: %w", kind, err)
	}
	return d, nil
}

// Run executes the pipeline. progress, when set, is called after every skill.
func (s *FeatureService) Run(ctx context.Context, req PipelineRequest, progress func(done, total int)) (*PipelineResult, error) {
	if err := s.Validate(req); err != nil {
		return nil, err
	}
	start := time.Now()

	snap, err := s.meta.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load app metadata: %w", err)
	}
	opts := s.datasetOptions(snap)
	in := &analysis.Input{Params: s.params(req)}
	result := &PipelineResult{RunID: uuid.NewString(), Rows: make(map[models.Kind]int)}

	if req.AppEvents != "" {
		d, err := s.load(ctx, req.AppEvents, models.KindAppEvents, req, opts)
		if err != nil {
			return nil, err
		}
		ae, _ := dataset.AsAppEvents(d)
		if req.Preprocess {
			ae = ae.Preprocess()
		}
		if so, ok := s.stripOptions(req); ok {
			if ae, err = ae.Strip(ctx, so); err != nil {
				return nil, fmt.Errorf("strip app events: %w", err)
			}
		}
		in.AppEvents = ae
		result.Rows[models.KindAppEvents] = ae.Len()
	}

	if req.Sessions != "" {
		d, err := s.load(ctx, req.Sessions, models.KindSessions, req, opts)
		if err != nil {
			return nil, err
		}
		sessions, _ := dataset.AsSessions(d)
		if in.AppEvents != nil {
			sessions = sessions.Sync(in.AppEvents)
		}
		in.Sessions = sessions
		result.Rows[models.KindSessions] = sessions.Len()
	}

	if req.Notifications != "" {
		d, err := s.load(ctx, req.Notifications, models.KindNotifications, req, opts)
		if err != nil {
			return nil, err
		}
		notifications, _ := dataset.AsNotifications(d)
		if in.AppEvents != nil {
			notifications = notifications.Sync(in.AppEvents)
		}
		in.Notifications = notifications
		result.Rows[models.KindNotifications] = notifications.Len()
	}

	if req.Connectivity != "" {
		d, err := s.load(ctx, req.Connectivity, models.KindConnectivity, req, opts)
		if err != nil {
			return nil, err
		}
		in.Connectivity, _ = dataset.AsConnectivity(d)
		result.Rows[models.KindConnectivity] = d.Len()
	}

	table, err := analysis.Run(ctx, req.Skills, in, s.log, progress)
	if err != nil {
		return nil, err
	}

	if req.Rules != nil {
		miner := req.Rules.miner()
		rules, err := mining.AssociationRules(ctx, miner, mining.Transactions(in.AppEvents), req.Rules.MinLength)
		if err != nil {
			return nil, err
		}
		result.Rules = rules
	}

	skill := models.SkillAll
	if len(req.Skills) == 1 {
		skill = req.Skills[0]
	}
	run := &models.FeatureRun{ID: result.RunID, Skill: skill}
	if err := s.features.SaveTable(ctx, run, table); err != nil {
		return nil, fmt.Errorf("save features: %w", err)
	}

	if req.Output != "" {
		if err := source.SaveFeatures(ctx, s.resolve(req.Output), table); err != nil {
			return nil, fmt.Errorf("export features: %w", err)
		}
	}

	result.Subjects = run.Subjects
	result.Columns = run.Columns
	result.Table = table
	result.Took = time.Since(start).Round(time.Millisecond).String()

	s.log.Info().
		Str("run_id", result.RunID).
		Int("subjects", result.Subjects).
		Int("columns", result.Columns).
		Int("rules", len(result.Rules)).
		Str("took", result.Took).
		Msg("feature run stored")
	return result, nil
}

// ListRuns returns stored runs, newest first
func (s *FeatureService) ListRuns(ctx context.Context, limit, offset int) ([]*models.FeatureRun, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.features.ListRuns(ctx, limit, offset)
}

// GetRun returns the header and table of a run
func (s *FeatureService) GetRun(ctx context.Context, id string) (*models.FeatureRun, *models.FeatureTable, error) {
	run, err := s.features.GetRun(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	table, err := s.features.LoadTable(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return run, table, nil
}

// SubjectFeatures returns one subject's row of a run
func (s *FeatureService) SubjectFeatures(ctx context.Context, runID, subject string) (map[string]float64, error) {
	return s.features.SubjectFeatures(ctx, runID, subject)
}
