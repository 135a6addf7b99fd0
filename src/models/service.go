package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"eventmate/src/types"
)

type ServiceAddon struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description,omitempty"`
}

type ServiceAddons []ServiceAddon

func (a ServiceAddons) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *ServiceAddons) Scan(value any) error {
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

// Service is a vendor-owned catalog entry. The negotiation core only reads
// it, for ownership and pricing-mode checks.
type Service struct {
	ID          uint              `gorm:"primarykey" json:"id"`
	VendorID    uint              `json:"vendor_id,omitempty"`
	Title       string            `json:"title,omitempty"`
	Category    string            `json:"category,omitempty"`
	Description string            `json:"description,omitempty"`
	BasePrice   float64           `json:"base_price,omitempty"`
	PricingMode types.PricingMode `gorm:"default:'fixed'" json:"pricing_mode,omitempty"`
	Addons      *ServiceAddons    `gorm:"type:jsonb" json:"addons,omitempty"`
	IsPublished bool              `gorm:"default:false" json:"is_published,omitempty"`

	Vendor   *User     `gorm:"foreignKey:vendor_id" json:"vendor,omitempty"`
	Bookings []Booking `gorm:"foreignKey:service_id" json:"bookings,omitempty"`

	types.Timestamps
}
