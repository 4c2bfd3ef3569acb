package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/jengzang/mobiledna-go/internal/metadata"
	"github.com/jengzang/mobiledna-go/internal/models"
	"github.com/jengzang/mobiledna-go/internal/repository"
)

// AppMetaService reads and edits the stored app metadata
type AppMetaService struct {
	repo *repository.AppMetaRepository
	log  zerolog.Logger
}

// NewAppMetaService creates a new app metadata service
func NewAppMetaService(repo *repository.AppMetaRepository, log zerolog.Logger) *AppMetaService {
	return &AppMetaService{repo: repo, log: log.With().Str("component", "AppMetaService").Logger()}
}

// Get returns the metadata of one app
func (s *AppMetaService) Get(ctx context.Context, app string) (models.AppMeta, error) {
	return s.repo.Get(ctx, app)
}

// Edit applies changes to an app. Without overwrite only empty fields are
// filled in. Unknown apps are created.
func (s *AppMetaService) Edit(ctx context.Context, app string, changes models.AppMeta, overwrite bool) (models.AppMeta, error) {
	current, err := s.repo.Get(ctx, app)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return models.AppMeta{}, err
	}

	snap := metadata.Snapshot{}
	if err == nil {
		snap[app] = current
	}
	edited := snap.Edit(app, changes, overwrite)[app]

	if err := s.repo.Upsert(ctx, app, edited); err != nil {
		return models.AppMeta{}, err
	}
	s.log.Info().Str("app", app).Bool("overwrite", overwrite).Msg("app metadata edited")
	return edited, nil
}

// Import loads a metadata cache file into the store
func (s *AppMetaService) Import(ctx context.Context, path string) (int, error) {
	snap, err := metadata.LoadFile(path)
	if err != nil {
		return 0, err
	}
	if err := s.repo.Import(ctx, snap); err != nil {
		return 0, err
	}
	return len(snap), nil
}

// Export writes the stored metadata to a cache file
func (s *AppMetaService) Export(ctx context.Context, path string) error {
	snap, err := s.repo.Snapshot(ctx)
	if err != nil {
		return err
	}
	return metadata.SaveFile(path, snap)
}
