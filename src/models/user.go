package models

import (
	"eventmate/src/types"
)

type User struct {
	ID                  uint         `gorm:"primarykey" json:"id"`
	Name                string       `json:"name,omitempty"`
	Email               string       `json:"email,omitempty"`
	Role                string       `json:"role,omitempty"`
	UID                 string       `json:"uid,omitempty"`
	UnreadNotifications uint         `gorm:"default:0" json:"unread_notifications,omitempty"`
	NotificationPrefs   *types.JSONB `gorm:"type:jsonb" json:"notification_prefs,omitempty"`

	Bookings  []Booking        `gorm:"foreignKey:client_id" json:"bookings,omitempty"`
	Services  []Service        `gorm:"foreignKey:vendor_id" json:"services,omitempty"`
	Purchases []TicketPurchase `gorm:"foreignKey:user_id" json:"purchases,omitempty"`

	types.Timestamps
}

// PushEnabled reports whether the user allows push delivery for a
// notification type. Absent preference means enabled.
func (u *User) PushEnabled(notifType string) bool {
	if u.NotificationPrefs == nil {
		return true
	}
	v, ok := (*u.NotificationPrefs)[notifType]
	if !ok {
		return true
	}
	enabled, ok := v.(bool)
	if !ok {
		return true
	}
	return enabled
}
