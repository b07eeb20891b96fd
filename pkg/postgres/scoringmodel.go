package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/campusworks/seatwise/pkg/db"
)

// SaveScoringModel persists a new trained-model artifact. Prior artifacts
// are kept; LatestScoringModel resolves the newest one.
func (d *DB) SaveScoringModel(ctx context.Context, scoringModel db.ScoringModel) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO scoring_models (id, trained_at, samples, cv_r2, artifact)
		VALUES ($1, $2, $3, $4, $5)
	`, scoringModel.ID, scoringModel.TrainedAt, scoringModel.Samples, scoringModel.CVR2, scoringModel.Artifact)
	if err != nil {
		return fmt.Errorf("failed to save scoring model: %w", err)
	}
	return nil
}

// LatestScoringModel retrieves the most recently trained model artifact.
// Returns db.ErrNotFound when no model has ever been trained.
func (d *DB) LatestScoringModel(ctx context.Context) (*db.ScoringModel, error) {
	row := d.pool.QueryRow(ctx, `
		SELECT id, trained_at, samples, cv_r2, artifact
		FROM scoring_models
		ORDER BY trained_at DESC
		LIMIT 1
	`)

	var m db.ScoringModel
	err := row.Scan(&m.ID, &m.TrainedAt, &m.Samples, &m.CVR2, &m.Artifact)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, db.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query latest scoring model: %w", err)
	}
	return &m, nil
}
