package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/jengzang/mobiledna-go/internal/models"
	"github.com/jengzang/mobiledna-go/internal/repository"
)

// ErrTaskNotRunning is returned when cancelling a finished task
var ErrTaskNotRunning = errors.New("task is not running")

// cancelMessage is recorded on tasks stopped through CancelTask
const cancelMessage = "Task cancelled by user"

// AnalysisTaskService runs feature pipelines in the background and tracks them as tasks
type AnalysisTaskService struct {
	repo     *repository.AnalysisTaskRepository
	features *FeatureService
	log      zerolog.Logger

	mu      sync.Mutex
	cancels map[int64]context.CancelFunc
	wg      sync.WaitGroup
}

// NewAnalysisTaskService creates a new analysis task service
func NewAnalysisTaskService(repo *repository.AnalysisTaskRepository, features *FeatureService, log zerolog.Logger) *AnalysisTaskService {
	return &AnalysisTaskService{
		repo:     repo,
		features: features,
		log:      log.With().Str("component", "AnalysisTaskService").Logger(),
		cancels:  make(map[int64]context.CancelFunc),
	}
}

// CreateTask records a pending task and starts its pipeline asynchronously
func (s *AnalysisTaskService) CreateTask(ctx context.Context, req PipelineRequest, createdBy string) (*models.AnalysisTask, error) {
	if err := s.features.Validate(req); err != nil {
		return nil, err
	}

	params, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize params: %w", err)
	}

	skill := models.SkillAll
	if len(req.Skills) == 1 {
		skill = req.Skills[0]
	}
	task := &models.AnalysisTask{
		SkillName:  skill,
		Status:     models.TaskStatusPending,
		ParamsJSON: string(params),
		CreatedBy:  createdBy,
	}
	if err := s.repo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.cancels[task.ID] = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go s.execute(runCtx, task.ID, req)

	return task, nil
}

func (s *AnalysisTaskService) execute(ctx context.Context, id int64, req PipelineRequest) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		if cancel, ok := s.cancels[id]; ok {
			cancel()
			delete(s.cancels, id)
		}
		s.mu.Unlock()
	}()

	log := s.log.With().Int64("task_id", id).Logger()
	log.Info().Strs("skills", req.Skills).Msg("starting feature pipeline")

	// status writes must land even after cancellation
	bg := context.Background()
	if err := s.repo.MarkAsRunning(bg, id); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			log.Warn().Msg("task cancelled before start")
			return
		}
		log.Error().Err(err).Msg("failed to mark task as running")
		return
	}

	progress := func(done, total int) {
		if err := s.repo.UpdateProgress(bg, id, done, total); err != nil {
			log.Warn().Err(err).Msg("failed to update progress")
		}
	}

	result, err := s.features.Run(ctx, req, progress)
	if ctx.Err() != nil {
		log.Warn().Msg("feature pipeline cancelled")
		// CancelTask normally records the failure first
		if mErr := s.repo.MarkAsFailed(bg, id, cancelMessage); mErr != nil && !errors.Is(mErr, repository.ErrStatusConflict) {
			log.Error().Err(mErr).Msg("failed to mark task as failed")
		}
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("feature pipeline failed")
		if mErr := s.repo.MarkAsFailed(bg, id, fmt.Sprintf("Analysis failed: %v", err)); mErr != nil && !errors.Is(mErr, repository.ErrStatusConflict) {
			log.Error().Err(mErr).Msg("failed to mark task as failed")
		}
		return
	}

	summary, err := json.Marshal(result)
	if err != nil {
		summary = []byte("{}")
	}
	if err := s.repo.MarkAsCompleted(bg, id, result.RunID, string(summary)); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			log.Warn().Str("run_id", result.RunID).Msg("task cancelled before completion")
			return
		}
		log.Error().Err(err).Msg("failed to mark task as completed")
		return
	}
	log.Info().Str("run_id", result.RunID).Msg("feature pipeline completed")
}

// Wait blocks until every started pipeline has returned
func (s *AnalysisTaskService) Wait() {
	s.wg.Wait()
}

// GetTask retrieves a task by ID
func (s *AnalysisTaskService) GetTask(ctx context.Context, id int64) (*models.AnalysisTask, error) {
	return s.repo.GetByID(ctx, id)
}

// ListTasks retrieves tasks with optional filters
func (s *AnalysisTaskService) ListTasks(ctx context.Context, skillName, status string, limit, offset int) ([]*models.AnalysisTask, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	return s.repo.List(ctx, skillName, status, limit, offset)
}

// CancelTask stops a pending or running task and marks it failed
func (s *AnalysisTaskService) CancelTask(ctx context.Context, id int64) error {
	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if task.Status != models.TaskStatusPending && task.Status != models.TaskStatusRunning {
		return fmt.Errorf("%w (status: %s)", ErrTaskNotRunning, task.Status)
	}

	s.mu.Lock()
	if cancel, ok := s.cancels[id]; ok {
		cancel()
	}
	s.mu.Unlock()

	if err := s.repo.MarkAsFailed(ctx, id, cancelMessage); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return ErrTaskNotRunning
		}
		return err
	}
	return nil
}
