package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/templui/coachflow/internal/model"
)

// MessageRepository is write-only from the engine's point of view; rendering
// lives with the messaging product.
type MessageRepository interface {
	Create(ctx context.Context, msg *model.Message) error
}

type messageRepository struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, msg *model.Message) error {
	query := `INSERT INTO messages (id, client_id, sender_type, message_type, content, card_type, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		msg.ID,
		msg.ClientID,
		msg.SenderType,
		msg.MessageType,
		msg.Content,
		msg.CardType,
		msg.CreatedAt,
	)

	return err
}
