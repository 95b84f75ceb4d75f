package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/templui/coachflow/internal/model"
)

type HistoryRepository interface {
	Append(ctx context.Context, entry *model.WorkflowHistoryEntry) error
	ByClient(ctx context.Context, clientID string) ([]*model.WorkflowHistoryEntry, error)
}

type historyRepository struct {
	db *sqlx.DB
}

func NewHistoryRepository(db *sqlx.DB) HistoryRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) Append(ctx context.Context, entry *model.WorkflowHistoryEntry) error {
	query := `INSERT INTO workflow_history (id, client_id, stage, action, triggered_by, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.ClientID,
		string(entry.Stage),
		entry.Action,
		entry.TriggeredBy,
		entry.CreatedAt,
	)

	return err
}

func (r *historyRepository) ByClient(ctx context.Context, clientID string) ([]*model.WorkflowHistoryEntry, error) {
	var entries []*model.WorkflowHistoryEntry
	query := `SELECT * FROM workflow_history WHERE client_id = $1 ORDER BY created_at ASC`

	err := r.db.SelectContext(ctx, &entries, query, clientID)
	if err != nil {
		return nil, err
	}

	return entries, nil
}
