package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/jengzang/mobiledna-go/internal/analysis/features"
	"github.com/jengzang/mobiledna-go/internal/config"
	"github.com/jengzang/mobiledna-go/internal/database"
	"github.com/jengzang/mobiledna-go/internal/logging"
	"github.com/jengzang/mobiledna-go/internal/models"
	"github.com/jengzang/mobiledna-go/internal/repository"
)

const appEventsCSV = `id;application;session;startTime;endTime;latitude;longitude
A;com.whatsapp;s1;2021-01-04 00:30:00;2021-01-04 00:31:00;51.05;3.72
A;com.waze;s2;2021-01-04 12:00:00;2021-01-04 12:10:00;50.85;4.35
A;com.whatsapp;s3;2021-01-05 01:30:00;2021-01-05 01:31:00;51.05;3.72
A;com.whatsapp;s3;2021-01-05 01:32:00;2021-01-05 01:33:00;51.05;3.72
B;com.whatsapp;b1;2021-01-04 09:00:00;2021-01-04 09:01:00;;
`

type fixture struct {
	dir      string
	features *FeatureService
	tasks    *AnalysisTaskService
	apps     *AppMetaService
	store    *repository.FeatureRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "appevents.csv"), []byte(appEventsCSV), 0o644))

	db, err := database.Open(database.Config{Path: database.MemoryPath}, logging.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.NewMigrationManager(db, logging.Nop()).RunMigrations())

	cfg := &config.Config{
		Data: config.DataConfig{Dir: dir, CSVSeparator: ";"},
		Analysis: config.AnalysisConfig{
			ClearNegativeDurations: true,
			CustomCategories:       true,
			HomeWindowStart:        "23:30",
			HomeWindowEnd:          "04:30",
			HomeTolerance:          1e-7,
			Workers:                2,
		},
	}
	store := repository.NewFeatureRepository(db)
	metaRepo := repository.NewAppMetaRepository(db)
	features := NewFeatureService(store, metaRepo, cfg, logging.Nop())
	return &fixture{
		dir:      dir,
		features: features,
		tasks:    NewAnalysisTaskService(repository.NewAnalysisTaskRepository(db), features, logging.Nop()),
		apps:     NewAppMetaService(metaRepo, logging.Nop()),
		store:    store,
	}
}

func TestFeatureServiceRun(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var calls int
	res, err := f.features.Run(ctx, PipelineRequest{
		Skills:    []string{"daily_usage", "churn", "home_location"},
		AppEvents: "appevents.csv",
		ChurnApps: []string{"com.waze"},
		Rules:     &RulesRequest{MinSupport: 0.5},
		Output:    "out/features.csv",
	}, func(done, total int) {
		calls++
		assert.Equal(t, 3, total)
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, 2, res.Subjects)
	assert.Equal(t, 5, res.Rows[models.KindAppEvents])

	require.Len(t, res.Rules, 1)
	assert.Equal(t, []string{"com.whatsapp"}, res.Rules[0].Items)

	stored, err := f.store.LoadTable(ctx, res.RunID)
	require.NoError(t, err)
	assert.Equal(t, 2.0, stored.Value("A", "days"))
	assert.Equal(t, 1.0, stored.Value("A", "churned_com.waze"))
	assert.InDelta(t, 51.05, stored.Value("A", "home_latitude"), 1e-6)

	row, err := f.features.SubjectFeatures(ctx, res.RunID, "B")
	require.NoError(t, err)
	assert.Equal(t, 1.0, row["events"])

	_, err = os.Stat(filepath.Join(f.dir, "out", "features.csv"))
	assert.NoError(t, err)

	runs, err := f.features.ListRuns(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, models.SkillAll, runs[0].Skill)
}

func TestFeatureServiceValidate(t *testing.T) {
	f := newFixture(t)

	assert.Error(t, f.features.Validate(PipelineRequest{Skills: []string{"daily_usage"}}))
	assert.Error(t, f.features.Validate(PipelineRequest{Skills: []string{"no_such_skill"}, AppEvents: "a.csv"}))
	assert.Error(t, f.features.Validate(PipelineRequest{Sessions: "s.csv", Rules: &RulesRequest{}}))
	assert.NoError(t, f.features.Validate(PipelineRequest{Skills: []string{models.SkillAll}, AppEvents: "a.csv"}))
	assert.Error(t, f.features.Validate(PipelineRequest{Skills: []string{models.SkillAll, "churn"}, AppEvents: "a.csv"}))
}

func TestAnalysisTaskCompletes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task, err := f.tasks.CreateTask(ctx, PipelineRequest{Skills: []string{"daily_usage"}, AppEvents: "appevents.csv"}, "tester")
	require.NoError(t, err)
	assert.Equal(t, "daily_usage", task.SkillName)
	f.tasks.Wait()

	got, err := f.tasks.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusCompleted, got.Status)
	assert.NotEmpty(t, got.RunID)

	var summary PipelineResult
	require.NoError(t, json.Unmarshal([]byte(got.ResultSummary), &summary))
	assert.Equal(t, got.RunID, summary.RunID)
	assert.Equal(t, 2, summary.Subjects)

	var params PipelineRequest
	require.NoError(t, json.Unmarshal([]byte(got.ParamsJSON), &params))
	assert.Equal(t, "appevents.csv", params.AppEvents)

	err = f.tasks.CancelTask(ctx, task.ID)
	assert.True(t, errors.Is(err, ErrTaskNotRunning))
}

func TestCancelledTaskIsNotOverwritten(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task := &models.AnalysisTask{SkillName: "daily_usage", Status: models.TaskStatusPending}
	require.NoError(t, f.tasks.repo.Create(ctx, task))
	require.NoError(t, f.tasks.CancelTask(ctx, task.ID))

	// the worker starts after the cancellation was recorded
	f.tasks.wg.Add(1)
	f.tasks.execute(ctx, task.ID, PipelineRequest{Skills: []string{"daily_usage"}, AppEvents: "appevents.csv"})

	got, err := f.tasks.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusFailed, got.Status)
	assert.Equal(t, cancelMessage, got.ErrorMessage)
	assert.Empty(t, got.RunID)

	assert.ErrorIs(t, f.tasks.CancelTask(ctx, task.ID), ErrTaskNotRunning)
}

func TestAnalysisTaskFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task, err := f.tasks.CreateTask(ctx, PipelineRequest{AppEvents: "missing.csv"}, "tester")
	require.NoError(t, err)
	f.tasks.Wait()

	got, err := f.tasks.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusFailed, got.Status)
	assert.Contains(t, got.ErrorMessage, "Analysis failed")

	tasks, err := f.tasks.ListTasks(ctx, "", models.TaskStatusFailed, 0, -1)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)

	_, err = f.tasks.CreateTask(ctx, PipelineRequest{}, "tester")
	assert.Error(t, err)
}

func TestAppMetaEditAndExport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	m, err := f.apps.Edit(ctx, "com.whatsapp", models.AppMeta{Name: "WhatsApp", Genre: "Communication"}, false)
	require.NoError(t, err)
	assert.Equal(t, "WhatsApp", m.Name)

	m, err = f.apps.Edit(ctx, "com.whatsapp", models.AppMeta{Name: "WA", CustomCategory: "social"}, false)
	require.NoError(t, err)
	assert.Equal(t, "WhatsApp", m.Name, "without overwrite existing fields stay")
	assert.Equal(t, "social", m.CustomCategory)

	m, err = f.apps.Edit(ctx, "com.whatsapp", models.AppMeta{Name: "WA"}, true)
	require.NoError(t, err)
	assert.Equal(t, "WA", m.Name)

	path := filepath.Join(f.dir, "cache", "app_meta.json")
	require.NoError(t, f.apps.Export(ctx, path))
	n, err := f.apps.Import(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := f.apps.Get(ctx, "com.whatsapp")
	require.NoError(t, err)
	assert.Equal(t, "social", got.CustomCategory)
}
