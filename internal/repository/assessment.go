package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/templui/coachflow/internal/model"
)

type AssessmentRepository interface {
	Create(ctx context.Context, assessment *model.Assessment) error
}

type assessmentRepository struct {
	db *sqlx.DB
}

func NewAssessmentRepository(db *sqlx.DB) AssessmentRepository {
	return &assessmentRepository{db: db}
}

func (r *assessmentRepository) Create(ctx context.Context, a *model.Assessment) error {
	query := `INSERT INTO assessments (id, client_id, name, assessment_type, content, content_html, source_card_id, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		a.ID,
		a.ClientID,
		a.Name,
		a.AssessmentType,
		a.Content,
		a.ContentHTML,
		a.SourceCardID,
		a.CreatedAt,
	)

	return err
}
