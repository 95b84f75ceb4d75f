package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/templui/coachflow/internal/model"
)

var (
	ErrClientNotFound = errors.New("client not found")
)

type ClientRepository interface {
	ByID(ctx context.Context, clientID string) (*model.Client, error)
}

type clientRepository struct {
	db *sqlx.DB
}

func NewClientRepository(db *sqlx.DB) ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) ByID(ctx context.Context, clientID string) (*model.Client, error) {
	client := &model.Client{}
	query := `SELECT * FROM clients WHERE id = $1`

	err := r.db.GetContext(ctx, client, query, clientID)
	if err == sql.ErrNoRows {
		return nil, ErrClientNotFound
	}
	if err != nil {
		return nil, err
	}

	return client, nil
}
