package models

import (
	"eventmate/src/types"

	"github.com/google/uuid"
)

type Notification struct {
	ID         uuid.UUID    `gorm:"primarykey;type:uuid" json:"id"`
	Type       string       `json:"type"`
	Title      string       `json:"title"`
	Message    string       `json:"message"`
	ReceiverID uint         `json:"receiver_id"`
	SenderID   *uint        `json:"sender_id,omitempty"`
	Metadata   *types.JSONB `gorm:"type:jsonb" json:"metadata,omitempty"`

	Receiver *User `gorm:"foreignKey:receiver_id" json:"-"`

	types.Timestamps
}
