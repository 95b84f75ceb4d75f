package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/templui/coachflow/internal/model"
)

var (
	ErrAchievementNotFound = errors.New("achievement not found")
)

// AchievementRepository reads the achievement catalog. Definitions are
// maintained by administrators; the engine never writes them.
type AchievementRepository interface {
	Active(ctx context.Context) ([]*model.AchievementDefinition, error)
	ByID(ctx context.Context, id string) (*model.AchievementDefinition, error)
}

type achievementRepository struct {
	db *sqlx.DB
}

func NewAchievementRepository(db *sqlx.DB) AchievementRepository {
	return &achievementRepository{db: db}
}

func (r *achievementRepository) Active(ctx context.Context) ([]*model.AchievementDefinition, error) {
	var defs []*model.AchievementDefinition
	query := `SELECT * FROM achievements WHERE active = $1 ORDER BY category ASC, criteria_value ASC`

	err := r.db.SelectContext(ctx, &defs, query, true)
	if err != nil {
		return nil, err
	}

	return defs, nil
}

func (r *achievementRepository) ByID(ctx context.Context, id string) (*model.AchievementDefinition, error) {
	def := &model.AchievementDefinition{}
	query := `SELECT * FROM achievements WHERE id = $1`

	err := r.db.GetContext(ctx, def, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrAchievementNotFound
	}
	if err != nil {
		return nil, err
	}

	return def, nil
}
