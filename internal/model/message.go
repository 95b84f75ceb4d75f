package model

import (
	"time"
)

const (
	MessageSenderSystem  = "system"
	MessageTypeAutomated = "automated"
)

type Message struct {
	ID          string    `db:"id"`
	ClientID    string    `db:"client_id"`
	SenderType  string    `db:"sender_type"`
	MessageType string    `db:"message_type"`
	Content     string    `db:"content"`
	CardType    *string   `db:"card_type"`
	CreatedAt   time.Time `db:"created_at"`
}
