package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/templui/coachflow/internal/model"
)

// AwardRepository is the append-only ledger of earned achievements.
type AwardRepository interface {
	EarnedIDs(ctx context.Context, clientID string) (map[string]bool, error)
	// Award records the achievement as earned. It reports false, without error,
	// when the client already holds it.
	Award(ctx context.Context, earned *model.EarnedAchievement) (bool, error)
	ByClient(ctx context.Context, clientID string) ([]*model.EarnedAchievement, error)
}

type awardRepository struct {
	db *sqlx.DB
}

func NewAwardRepository(db *sqlx.DB) AwardRepository {
	return &awardRepository{db: db}
}

func (r *awardRepository) EarnedIDs(ctx context.Context, clientID string) (map[string]bool, error) {
	var ids []string
	query := `SELECT achievement_id FROM user_achievements WHERE client_id = $1`

	err := r.db.SelectContext(ctx, &ids, query, clientID)
	if err != nil {
		return nil, err
	}

	earned := make(map[string]bool, len(ids))
	for _, id := range ids {
		earned[id] = true
	}
	return earned, nil
}

func (r *awardRepository) Award(ctx context.Context, earned *model.EarnedAchievement) (bool, error) {
	query := `INSERT INTO user_achievements (id, client_id, achievement_id, progress_value, earned_at)
	          VALUES ($1, $2, $3, $4, $5)
	          ON CONFLICT (client_id, achievement_id) DO NOTHING`

	result, err := r.db.ExecContext(ctx, query,
		earned.ID,
		earned.ClientID,
		earned.AchievementID,
		earned.ProgressValue,
		earned.EarnedAt,
	)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows == 1, nil
}

func (r *awardRepository) ByClient(ctx context.Context, clientID string) ([]*model.EarnedAchievement, error) {
	var rows []*model.EarnedAchievement
	query := `SELECT * FROM user_achievements WHERE client_id = $1 ORDER BY earned_at ASC`

	err := r.db.SelectContext(ctx, &rows, query, clientID)
	if err != nil {
		return nil, err
	}

	return rows, nil
}
