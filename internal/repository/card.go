package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/templui/coachflow/internal/model"
)

var (
	ErrCardNotFound    = errors.New("card not found")
	ErrCardAlreadySent = errors.New("card already sent")
)

type CardRepository interface {
	ByID(ctx context.Context, cardID string) (*model.PendingReviewCard, error)
	// MarkSent flips the card to sent unless it already is.
	MarkSent(ctx context.Context, cardID, reviewer string, at time.Time) error
}

type cardRepository struct {
	db *sqlx.DB
}

func NewCardRepository(db *sqlx.DB) CardRepository {
	return &cardRepository{db: db}
}

func (r *cardRepository) ByID(ctx context.Context, cardID string) (*model.PendingReviewCard, error) {
	card := &model.PendingReviewCard{}
	query := `SELECT * FROM pending_review_cards WHERE id = $1`

	err := r.db.GetContext(ctx, card, query, cardID)
	if err == sql.ErrNoRows {
		return nil, ErrCardNotFound
	}
	if err != nil {
		return nil, err
	}

	return card, nil
}

func (r *cardRepository) MarkSent(ctx context.Context, cardID, reviewer string, at time.Time) error {
	query := `UPDATE pending_review_cards
	          SET status = $1, sent_at = $2, reviewed_by = $3, updated_at = $4
	          WHERE id = $5 AND status <> $6`

	result, err := r.db.ExecContext(ctx, query,
		model.CardStatusSent,
		at,
		reviewer,
		at,
		cardID,
		model.CardStatusSent,
	)
	if err != nil {
		return err
	}

	return expectOneRow(result, ErrCardAlreadySent)
}
