package models

import (
	"time"

	"eventmate/src/types"

	"github.com/google/uuid"
)

// TicketPurchase is an immutable receipt. It is written exactly once, in the
// same transaction as the inventory increment, and never updated afterwards
// except by the out-of-scope refund flow flipping Status to cancelled.
type TicketPurchase struct {
	ID           uuid.UUID            `gorm:"primarykey;type:uuid" json:"id"`
	UserID       uint                 `json:"user_id,omitempty"`
	EventID      uint                 `json:"event_id,omitempty"`
	TicketID     uint                 `json:"ticket_id,omitempty"`
	Quantity     uint                 `json:"quantity"`
	PurchaseDate time.Time            `json:"purchase_date,omitempty"`
	Status       types.PurchaseStatus `gorm:"default:'confirmed'" json:"status,omitempty"`
	QrCode       string               `gorm:"type:text" json:"qr_code,omitempty"`

	User   *User   `gorm:"foreignKey:user_id" json:"user,omitempty"`
	Event  *Event  `gorm:"foreignKey:event_id" json:"event,omitempty"`
	Ticket *Ticket `gorm:"foreignKey:ticket_id" json:"ticket,omitempty"`

	types.Timestamps
}
