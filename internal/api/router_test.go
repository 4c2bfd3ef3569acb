package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/jengzang/mobiledna-go/internal/analysis/features"
	"github.com/jengzang/mobiledna-go/internal/config"
	"github.com/jengzang/mobiledna-go/internal/database"
	"github.com/jengzang/mobiledna-go/internal/logging"
	"github.com/jengzang/mobiledna-go/internal/middleware"
	"github.com/jengzang/mobiledna-go/internal/models"
	"github.com/jengzang/mobiledna-go/internal/repository"
	"github.com/jengzang/mobiledna-go/internal/service"
)

const appEventsCSV = `id;application;session;startTime;endTime
A;com.whatsapp;s1;2021-01-04 09:00:00;2021-01-04 09:01:00
A;com.waze;s2;2021-01-05 12:00:00;2021-01-05 12:10:00
B;com.whatsapp;b1;2021-01-04 09:00:00;2021-01-04 09:01:00
`

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type server struct {
	t      *testing.T
	router *gin.Engine
	tasks  *service.AnalysisTaskService
	token  string
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "appevents.csv"), []byte(appEventsCSV), 0o644))

	db, err := database.Open(database.Config{Path: database.MemoryPath}, logging.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.NewMigrationManager(db, logging.Nop()).RunMigrations())

	cfg := &config.Config{
		Data:     config.DataConfig{Dir: dir, CSVSeparator: ";"},
		Analysis: config.AnalysisConfig{ClearNegativeDurations: true, HomeTolerance: 1e-7},
	}
	metaRepo := repository.NewAppMetaRepository(db)
	features := service.NewFeatureService(repository.NewFeatureRepository(db), metaRepo, cfg, logging.Nop())
	tasks := service.NewAnalysisTaskService(repository.NewAnalysisTaskRepository(db), features, logging.Nop())

	tokens, err := middleware.NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)
	token, err := tokens.GenerateToken("analyst")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	router := SetupRouter(
		Services{Tasks: tasks, Features: features, Apps: service.NewAppMetaService(metaRepo, logging.Nop())},
		Options{Logger: logging.Nop(), Tokens: tokens, Limiter: middleware.NewRateLimiter(ctx, 1000, time.Minute)},
	)
	return &server{t: t, router: router, tasks: tasks, token: token}
}

func (s *server) do(method, path string, body any) (int, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func TestHealthAndAuth(t *testing.T) {
	s := newServer(t)

	s.token = ""
	code, _ := s.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = s.do(http.MethodGet, "/api/v1/features/runs", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestTaskToFeaturesFlow(t *testing.T) {
	s := newServer(t)

	code, env := s.do(http.MethodPost, "/api/v1/analysis/tasks", map[string]any{
		"skills":     []string{"daily_usage", "churn"},
		"appevents":  "appevents.csv",
		"churn_apps": []string{"com.waze"},
	})
	require.Equal(t, http.StatusAccepted, code, env.Message)
	var task models.AnalysisTask
	require.NoError(t, json.Unmarshal(env.Data, &task))
	assert.Equal(t, "analyst", task.CreatedBy)
	s.tasks.Wait()

	code, env = s.do(http.MethodGet, "/api/v1/analysis/tasks/1", nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &task))
	require.Equal(t, models.TaskStatusCompleted, task.Status, task.ErrorMessage)

	code, env = s.do(http.MethodGet, "/api/v1/features/runs/"+task.RunID, nil)
	require.Equal(t, http.StatusOK, code)
	var run struct {
		Columns []string `json:"columns"`
		Rows    []struct {
			Subject string              `json:"id"`
			Values  map[string]*float64 `json:"values"`
		} `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &run))
	require.Len(t, run.Rows, 2)
	assert.Contains(t, run.Columns, "churned_com.waze")
	assert.Nil(t, run.Rows[1].Values["churned_com.waze"], "B never used the app")
	require.NotNil(t, run.Rows[0].Values["days"])
	assert.Equal(t, 2.0, *run.Rows[0].Values["days"])

	code, _ = s.do(http.MethodGet, "/api/v1/features/runs/"+task.RunID+"/subjects/A", nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = s.do(http.MethodGet, "/api/v1/features/runs/"+task.RunID+"/subjects/Z", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = s.do(http.MethodDelete, "/api/v1/analysis/tasks/1", nil)
	assert.Equal(t, http.StatusConflict, code)

	code, env = s.do(http.MethodGet, "/api/v1/analysis/tasks?status=completed", nil)
	require.Equal(t, http.StatusOK, code)
	var listing struct {
		Items []models.AnalysisTask `json:"items"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &listing))
	assert.Len(t, listing.Items, 1)
}

func TestTaskErrors(t *testing.T) {
	s := newServer(t)

	code, _ := s.do(http.MethodPost, "/api/v1/analysis/tasks", map[string]any{"skills": []string{"nope"}, "appevents": "a.csv"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(http.MethodGet, "/api/v1/analysis/tasks/abc", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(http.MethodGet, "/api/v1/analysis/tasks/42", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestAppMetadataRoutes(t *testing.T) {
	s := newServer(t)

	code, _ := s.do(http.MethodGet, "/api/v1/apps/com.whatsapp", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, env := s.do(http.MethodPut, "/api/v1/apps/com.whatsapp", map[string]any{"name": "WhatsApp", "custom_genre": "social"})
	require.Equal(t, http.StatusOK, code)

	code, env = s.do(http.MethodGet, "/api/v1/apps/com.whatsapp", nil)
	require.Equal(t, http.StatusOK, code)
	var meta models.AppMeta
	require.NoError(t, json.Unmarshal(env.Data, &meta))
	assert.Equal(t, "WhatsApp", meta.Name)
	assert.Equal(t, "social", meta.CustomCategory)
}
