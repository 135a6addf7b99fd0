package models

import (
	"time"

	"eventmate/src/types"
)

// Event is organizer-owned. This core reads it for ownership checks and holds
// the tickets sold against it.
type Event struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	Location    string     `json:"location,omitempty"`
	DateTime    *time.Time `json:"date_time,omitempty"`
	OrganizerID uint       `json:"organizer_id,omitempty"`

	Organizer *User    `gorm:"foreignKey:organizer_id" json:"organizer,omitempty"`
	Tickets   []Ticket `gorm:"foreignKey:event_id" json:"tickets,omitempty"`

	types.Timestamps
}
