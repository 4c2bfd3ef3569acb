package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/jengzang/mobiledna-go/internal/database"
	"github.com/jengzang/mobiledna-go/internal/models"
)

// FeatureRepository stores feature tables in long format
type FeatureRepository struct {
	db *sql.DB
}

// NewFeatureRepository creates a new feature repository
func NewFeatureRepository(db *sql.DB) *FeatureRepository {
	return &FeatureRepository{db: db}
}

func nullable(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

// SaveTable persists table under run. Missing and NaN cells are stored as NULL.
func (r *FeatureRepository) SaveTable(ctx context.Context, run *models.FeatureRun, table *models.FeatureTable) error {
	subjects := table.Subjects()
	run.Subjects = len(subjects)
	run.Columns = len(table.Columns)

	return database.Transaction(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO feature_runs (id, skill, subject_count, column_count) VALUES (?, ?, ?, ?)`,
			run.ID, run.Skill, run.Subjects, run.Columns)
		if err != nil {
			return fmt.Errorf("failed to create feature run: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO features (run_id, subject, name, position, value) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare feature insert: %w", err)
		}
		defer stmt.Close()

		for _, subject := range subjects {
			for pos, column := range table.Columns {
				v := table.Value(subject, column)
				if _, err := stmt.ExecContext(ctx, run.ID, subject, column, pos, nullable(v)); err != nil {
					return fmt.Errorf("failed to insert feature %s/%s: %w", subject, column, err)
				}
			}
		}
		return nil
	})
}

// GetRun retrieves one run's header
func (r *FeatureRepository) GetRun(ctx context.Context, id string) (*models.FeatureRun, error) {
	run := &models.FeatureRun{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, skill, subject_count, column_count, created_at FROM feature_runs WHERE id = ?`, id).
		Scan(&run.ID, &run.Skill, &run.Subjects, &run.Columns, &run.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("feature run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feature run: %w", err)
	}
	return run, nil
}

// ListRuns returns the stored runs, newest first
func (r *FeatureRepository) ListRuns(ctx context.Context, limit, offset int) ([]*models.FeatureRun, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, skill, subject_count, column_count, created_at
		FROM feature_runs
		ORDER BY created_at DESC, rowid DESC
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list feature runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.FeatureRun
	for rows.Next() {
		run := &models.FeatureRun{}
		if err := rows.Scan(&run.ID, &run.Skill, &run.Subjects, &run.Columns, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feature run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// LoadTable rebuilds the feature table of a run, NULL cells becoming NaN
func (r *FeatureRepository) LoadTable(ctx context.Context, runID string) (*models.FeatureTable, error) {
	if _, err := r.GetRun(ctx, runID); err != nil {
		return nil, err
	}
	return r.query(ctx, `
		SELECT subject, name, value FROM features
		WHERE run_id = ?
		ORDER BY position, subject`, runID)
}

// SubjectFeatures returns the features of one subject in a run
func (r *FeatureRepository) SubjectFeatures(ctx context.Context, runID, subject string) (map[string]float64, error) {
	table, err := r.query(ctx, `
		SELECT subject, name, value FROM features
		WHERE run_id = ? AND subject = ?
		ORDER BY position`, runID, subject)
	if err != nil {
		return nil, err
	}
	row, ok := table.Rows[subject]
	if !ok {
		return nil, fmt.Errorf("subject %s in run %s: %w", subject, runID, ErrNotFound)
	}
	return row, nil
}

func (r *FeatureRepository) query(ctx context.Context, query string, args ...any) (*models.FeatureTable, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query features: %w", err)
	}
	defer rows.Close()

	table := models.NewFeatureTable()
	for rows.Next() {
		var (
			subject, name string
			value         sql.NullFloat64
		)
		if err := rows.Scan(&subject, &name, &value); err != nil {
			return nil, fmt.Errorf("failed to scan feature: %w", err)
		}
		v := math.NaN()
		if value.Valid {
			v = value.Float64
		}
		table.Set(subject, name, v)
	}
	return table, rows.Err()
}
