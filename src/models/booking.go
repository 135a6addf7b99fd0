package models

import (
	"eventmate/src/types"
)

// Booking is the aggregate root of a price negotiation between the client who
// opened the inquiry and the vendor owning the service. Rows are never
// deleted; terminal states stay behind for audit.
type Booking struct {
	ID             uint                   `gorm:"primarykey" json:"id"`
	ServiceID      uint                   `json:"service_id,omitempty"`
	ClientID       uint                   `json:"client_id,omitempty"`
	SelectedDates  types.DateArray        `gorm:"type:jsonb" json:"selected_dates,omitempty"`
	Addons         types.StringArray      `gorm:"type:jsonb" json:"addons,omitempty"`
	InquiryMessage string                 `json:"inquiry_message,omitempty"`
	IsNegotiable   bool                   `gorm:"default:false" json:"is_negotiable"`
	Status         types.BookingStatus    `gorm:"default:'pending'" json:"status,omitempty"`
	FinalPrice     *float64               `json:"final_price,omitempty"`
	AdminMessage   *string                `json:"admin_message,omitempty"`
	UserResponse   *types.BookingResponse `gorm:"type:jsonb" json:"user_response,omitempty"`
	PaymentDone    bool                   `gorm:"default:false" json:"payment_done"`

	Service *Service `gorm:"foreignKey:service_id" json:"service,omitempty"`
	Client  *User    `gorm:"foreignKey:client_id" json:"client,omitempty"`

	types.Timestamps
}
