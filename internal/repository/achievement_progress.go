package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/templui/coachflow/internal/model"
)

type ProgressRepository interface {
	// Upsert inserts the snapshot or refreshes the existing (client, achievement)
	// row. p.ID is set to the stored row's id.
	Upsert(ctx context.Context, p *model.AchievementProgress) error
	ByClient(ctx context.Context, clientID string) ([]*model.AchievementProgress, error)
}

type progressRepository struct {
	db *sqlx.DB
}

func NewProgressRepository(db *sqlx.DB) ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) Upsert(ctx context.Context, p *model.AchievementProgress) error {
	query := `INSERT INTO achievement_progress (id, client_id, achievement_id, current_value, target_value, last_updated)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          ON CONFLICT (client_id, achievement_id) DO UPDATE SET
	              current_value = excluded.current_value,
	              target_value = excluded.target_value,
	              last_updated = excluded.last_updated
	          RETURNING id`

	var id string
	err := r.db.QueryRowxContext(ctx, query,
		p.ID,
		p.ClientID,
		p.AchievementID,
		p.CurrentValue,
		p.TargetValue,
		p.LastUpdated,
	).Scan(&id)
	if err != nil {
		return err
	}

	p.ID = id
	return nil
}

func (r *progressRepository) ByClient(ctx context.Context, clientID string) ([]*model.AchievementProgress, error) {
	var rows []*model.AchievementProgress
	query := `SELECT * FROM achievement_progress WHERE client_id = $1 ORDER BY achievement_id ASC`

	err := r.db.SelectContext(ctx, &rows, query, clientID)
	if err != nil {
		return nil, err
	}

	return rows, nil
}
