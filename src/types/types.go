package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

// jsonbBytes normalizes a scanned jsonb value. Postgres hands the driver
// []byte, sqlite hands it string.
func jsonbBytes(value any) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, errors.New("type assertion to []byte failed")
	}
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	b, err := jsonbBytes(value)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type StringArray []string

func (a StringArray) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *StringArray) Scan(value any) error {
	b, err := jsonbBytes(value)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type DateArray []time.Time

func (a DateArray) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *DateArray) Scan(value any) error {
	b, err := jsonbBytes(value)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

// BookingResponse is the client-authored answer to a vendor offer. Persisted
// as a single jsonb column so the pair (accepted, counterOffer) can never be
// mutated independently of each other.
type BookingResponse struct {
	Accepted     bool     `json:"accepted"`
	CounterOffer *float64 `json:"counter_offer,omitempty"`
	Message      string   `json:"message,omitempty"`
}

func (r BookingResponse) Value() (driver.Value, error) {
	valueString, err := json.Marshal(r)
	return string(valueString), err
}
func (r *BookingResponse) Scan(value any) error {
	b, err := jsonbBytes(value)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, &r); err != nil {
		return err
	}
	return nil
}

type BookingStatus string

const (
	BOOKING_PENDING   BookingStatus = "pending"
	BOOKING_ACCEPTED  BookingStatus = "accepted"
	BOOKING_REJECTED  BookingStatus = "rejected"
	BOOKING_COUNTERED BookingStatus = "countered"
	BOOKING_CONFIRMED BookingStatus = "confirmed"
	BOOKING_CANCELED  BookingStatus = "cancelled"
)

type PricingMode string

const (
	PRICING_FIXED      PricingMode = "fixed"
	PRICING_NEGOTIABLE PricingMode = "negotiable"
)

type PurchaseStatus string

const (
	PURCHASE_CONFIRMED PurchaseStatus = "confirmed"
	PURCHASE_CANCELED  PurchaseStatus = "cancelled"
)

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type EventTicketURIParams struct {
	EventID  uint `uri:"id" binding:"required"`
	TicketID uint `uri:"tid" binding:"required"`
}

type CreateBookingInquiryRequestBody struct {
	ServiceID     uint     `json:"service" binding:"required"`
	SelectedDates []string `json:"selected_dates" binding:"required,min=1,dive,bookabledate" time_format:"2006-01-02"`
	Addons        []string `json:"addons,omitempty"`
	Message       string   `json:"message,omitempty"`
}

type AcceptBookingRequestBody struct {
	FinalPrice   float64 `json:"final_price" binding:"required,gt=0"`
	AdminMessage string  `json:"admin_message,omitempty"`
}

type RejectBookingRequestBody struct {
	AdminMessage string `json:"admin_message,omitempty"`
}

type CounterOfferRequestBody struct {
	CounterOffer float64 `json:"counter_offer" binding:"required,gt=0"`
	Message      string  `json:"message,omitempty"`
}

type CreateTicketRequestBody struct {
	Title              string  `json:"title" binding:"required"`
	Description        string  `json:"description,omitempty"`
	Price              float64 `json:"price" binding:"required,gt=0"`
	Currency           string  `json:"currency,omitempty"`
	Quantity           uint    `json:"quantity" binding:"required,gt=0"`
	TermsAndConditions string  `json:"terms_and_conditions,omitempty"`
	LastDateForRefund  *string `json:"last_date_for_refund,omitempty" binding:"omitempty,bookabledate" time_format:"2006-01-02"`
	Published          *bool   `json:"published,omitempty"`
}

// UpdateTicketRequestBody deliberately carries a Sold field so that clients
// sending it are tolerated; the inventory manager never applies it.
type UpdateTicketRequestBody struct {
	Title              *string  `json:"title,omitempty"`
	Description        *string  `json:"description,omitempty"`
	Price              *float64 `json:"price,omitempty" binding:"omitempty,gt=0"`
	Currency           *string  `json:"currency,omitempty"`
	Quantity           *uint    `json:"quantity,omitempty" binding:"omitempty,gt=0"`
	TermsAndConditions *string  `json:"terms_and_conditions,omitempty"`
	Published          *bool    `json:"published,omitempty"`
	Sold               *uint    `json:"sold,omitempty"`
}

type PurchaseTicketRequestBody struct {
	Quantity uint `json:"quantity" binding:"required,gt=0"`
}
