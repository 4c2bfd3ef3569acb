package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jengzang/mobiledna-go/internal/metadata"
	"github.com/jengzang/mobiledna-go/internal/models"
)

// AppMetaRepository stores application metadata
type AppMetaRepository struct {
	db *sql.DB
}

// NewAppMetaRepository creates a new app metadata repository
func NewAppMetaRepository(db *sql.DB) *AppMetaRepository {
	return &AppMetaRepository{db: db}
}

// Upsert inserts or replaces the metadata of one app
func (r *AppMetaRepository) Upsert(ctx context.Context, app string, meta models.AppMeta) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO app_meta (app_id, name, alias, company, genre, custom_genre, installs, rating, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(app_id) DO UPDATE SET
			name = excluded.name,
			alias = excluded.alias,
			company = excluded.company,
			genre = excluded.genre,
			custom_genre = excluded.custom_genre,
			installs = excluded.installs,
			rating = excluded.rating,
			source = excluded.source,
			updated_at = CURRENT_TIMESTAMP`,
		app, meta.Name, meta.Alias, meta.Company, meta.Genre, meta.CustomCategory,
		meta.Installs, meta.Rating, meta.Source)
	if err != nil {
		return fmt.Errorf("failed to upsert app meta %s: %w", app, err)
	}
	return nil
}

// Import upserts every entry of a snapshot in one transaction
func (r *AppMetaRepository) Import(ctx context.Context, snap metadata.Snapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, app := range snap.Apps() {
		m := snap[app]
		if _, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO app_meta (app_id, name, alias, company, genre, custom_genre, installs, rating, source)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			app, m.Name, m.Alias, m.Company, m.Genre, m.CustomCategory, m.Installs, m.Rating, m.Source); err != nil {
			return fmt.Errorf("failed to import app meta %s: %w", app, err)
		}
	}
	return tx.Commit()
}

const appMetaColumns = `app_id, name, alias, company, genre, custom_genre, installs, rating, source`

func scanAppMeta(row scanner) (string, models.AppMeta, error) {
	var (
		app string
		m   models.AppMeta
	)
	err := row.Scan(&app, &m.Name, &m.Alias, &m.Company, &m.Genre, &m.CustomCategory, &m.Installs, &m.Rating, &m.Source)
	return app, m, err
}

// Get returns the metadata of one app
func (r *AppMetaRepository) Get(ctx context.Context, app string) (models.AppMeta, error) {
	_, m, err := scanAppMeta(r.db.QueryRowContext(ctx, `SELECT `+appMetaColumns+` FROM app_meta WHERE app_id = ?`, app))
	if errors.Is(err, sql.ErrNoRows) {
		return models.AppMeta{}, fmt.Errorf("app %s: %w", app, ErrNotFound)
	}
	if err != nil {
		return models.AppMeta{}, fmt.Errorf("failed to get app meta: %w", err)
	}
	return m, nil
}

// Snapshot loads every stored app into an immutable snapshot
func (r *AppMetaRepository) Snapshot(ctx context.Context) (metadata.Snapshot, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+appMetaColumns+` FROM app_meta`)
	if err != nil {
		return nil, fmt.Errorf("failed to query app meta: %w", err)
	}
	defer rows.Close()

	snap := make(metadata.Snapshot)
	for rows.Next() {
		app, m, err := scanAppMeta(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan app meta: %w", err)
		}
		snap[app] = m
	}
	return snap, rows.Err()
}
