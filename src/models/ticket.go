package models

import (
	"time"

	"eventmate/src/types"
)

// Ticket is a capacity-bounded inventory unit of an event. Sold only ever
// moves through the purchase path; 0 <= Sold <= Quantity holds at all times.
type Ticket struct {
	ID                 uint       `gorm:"primarykey" json:"id"`
	EventID            uint       `json:"event_id,omitempty"`
	Title              string     `json:"title,omitempty"`
	Description        string     `json:"description,omitempty"`
	Price              float64    `json:"price"`
	Currency           string     `gorm:"default:'USD'" json:"currency,omitempty"`
	Quantity           uint       `json:"quantity"`
	Sold               uint       `gorm:"default:0" json:"sold"`
	// No column default here: a default tag would drop an explicit false on
	// INSERT. CreateNewTicket decides the value.
	Published          bool       `json:"published"`
	TermsAndConditions string     `json:"terms_and_conditions,omitempty"`
	LastDateForRefund  *time.Time `json:"last_date_for_refund,omitempty"`

	Event *Event `gorm:"foreignKey:event_id" json:"event,omitempty"`

	types.Timestamps
}

func (t *Ticket) Remaining() uint {
	if t.Sold > t.Quantity {
		return 0
	}
	return t.Quantity - t.Sold
}
