package utils

import (
	"errors"
	"log"
	"slices"
	"time"

	"eventmate/src/config"
	"eventmate/src/db"
	"eventmate/src/models"
	"eventmate/src/types"

	"gorm.io/gorm"
)

func loadBooking(tx *gorm.DB, id uint) (*models.Booking, error) {
	var booking models.Booking
	if err := tx.Where(&models.Booking{ID: id}).First(&booking).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFound("booking [%d] not found", id)
		}
		return nil, err
	}
	return &booking, nil
}

// transitionBooking is the sole writer of Booking.Status. The caller holds a
// transaction; the UPDATE is guarded by the status read inside it, so a
// transition racing another writer affects zero rows and surfaces Conflict
// instead of silently overwriting.
func transitionBooking(tx *gorm.DB, booking *models.Booking, from []types.BookingStatus, to types.BookingStatus, updates map[string]any) error {
	if !slices.Contains(from, booking.Status) {
		return types.NewInvalidTransition("booking [%d] cannot move from %s to %s", booking.ID, booking.Status, to)
	}
	updates["status"] = to
	res := tx.
		Model(&models.Booking{}).
		Where("id = ? AND status = ?", booking.ID, booking.Status).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return types.NewConflict("booking [%d] was modified concurrently", booking.ID)
	}
	return nil
}

// CreateBookingInquiry opens a negotiation on a service. The booking starts
// in pending and records whether the service is priced negotiably.
func CreateBookingInquiry(clientId uint, params *types.CreateBookingInquiryRequestBody) (*models.Booking, error) {
	selectedDates := make(types.DateArray, 0, len(params.SelectedDates))
	for _, v := range params.SelectedDates {
		date, err := time.Parse(config.DATE_PARSE_FORMAT, v)
		if err != nil {
			return nil, types.NewValidationError("invalid date [%s]: expected format %s", v, config.DATE_PARSE_FORMAT)
		}
		selectedDates = append(selectedDates, date)
	}

	var booking models.Booking
	var service *models.Service
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		svc, err := loadService(tx, params.ServiceID)
		if err != nil {
			return err
		}
		service = svc
		booking = models.Booking{
			ServiceID:      service.ID,
			ClientID:       clientId,
			SelectedDates:  selectedDates,
			Addons:         types.StringArray(params.Addons),
			InquiryMessage: params.Message,
			IsNegotiable:   service.PricingMode == types.PRICING_NEGOTIABLE,
			Status:         types.BOOKING_PENDING,
		}
		if err := tx.Create(&booking).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	go emitBookingEvent("booking_inquiry", "New booking inquiry",
		"You received a new inquiry for your service", &booking, service.VendorID, clientId)

	return &booking, nil
}

// VendorAccept moves a pending or countered booking to accepted with the
// vendor's offered price.
func VendorAccept(bookingId uint, vendorId uint, params *types.AcceptBookingRequestBody) (*models.Booking, error) {
	var booking *models.Booking
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		b, err := loadBooking(tx, bookingId)
		if err != nil {
			return err
		}
		service, err := loadService(tx, b.ServiceID)
		if err != nil {
			return err
		}
		if service.VendorID != vendorId {
			return types.NewUnauthorized("user [%d] is not the vendor of service [%d]", vendorId, service.ID)
		}
		err = transitionBooking(tx, b, []types.BookingStatus{types.BOOKING_PENDING, types.BOOKING_COUNTERED}, types.BOOKING_ACCEPTED, map[string]any{
			"final_price":   params.FinalPrice,
			"admin_message": params.AdminMessage,
		})
		if err != nil {
			return err
		}
		booking, err = loadBooking(tx, bookingId)
		return err
	})
	if err != nil {
		return nil, err
	}

	go emitBookingEvent("booking_accepted", "Booking offer received",
		"The vendor accepted your inquiry and sent a price offer", booking, booking.ClientID, vendorId)

	return booking, nil
}

// VendorReject terminates the negotiation. The offered price is cleared so a
// rejected booking never carries one.
func VendorReject(bookingId uint, vendorId uint, params *types.RejectBookingRequestBody) (*models.Booking, error) {
	var booking *models.Booking
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		b, err := loadBooking(tx, bookingId)
		if err != nil {
			return err
		}
		service, err := loadService(tx, b.ServiceID)
		if err != nil {
			return err
		}
		if service.VendorID != vendorId {
			return types.NewUnauthorized("user [%d] is not the vendor of service [%d]", vendorId, service.ID)
		}
		err = transitionBooking(tx, b, []types.BookingStatus{types.BOOKING_PENDING, types.BOOKING_COUNTERED}, types.BOOKING_REJECTED, map[string]any{
			"final_price":   nil,
			"admin_message": params.AdminMessage,
		})
		if err != nil {
			return err
		}
		booking, err = loadBooking(tx, bookingId)
		return err
	})
	if err != nil {
		return nil, err
	}

	go emitBookingEvent("booking_rejected", "Booking declined",
		"The vendor declined your booking inquiry", booking, booking.ClientID, vendorId)

	return booking, nil
}

// ClientCounter answers an accepted offer with a counter price. Legal only
// from accepted and only for the client who opened the inquiry.
func ClientCounter(bookingId uint, clientId uint, params *types.CounterOfferRequestBody) (*models.Booking, error) {
	var booking *models.Booking
	var vendorId uint
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		b, err := loadBooking(tx, bookingId)
		if err != nil {
			return err
		}
		if b.ClientID != clientId {
			return types.NewUnauthorized("user [%d] is not the client of booking [%d]", clientId, b.ID)
		}
		service, err := loadService(tx, b.ServiceID)
		if err != nil {
			return err
		}
		vendorId = service.VendorID
		response := types.BookingResponse{
			Accepted:     false,
			CounterOffer: &params.CounterOffer,
			Message:      params.Message,
		}
		err = transitionBooking(tx, b, []types.BookingStatus{types.BOOKING_ACCEPTED}, types.BOOKING_COUNTERED, map[string]any{
			"user_response": response,
		})
		if err != nil {
			return err
		}
		booking, err = loadBooking(tx, bookingId)
		return err
	})
	if err != nil {
		return nil, err
	}

	go emitBookingEvent("booking_countered", "Counter offer received",
		"The client sent a counter offer for your service", booking, vendorId, clientId)

	return booking, nil
}

// ClientConfirm locks in the vendor's offered price. Legal only from
// accepted and only for the client who opened the inquiry.
func ClientConfirm(bookingId uint, clientId uint) (*models.Booking, error) {
	var booking *models.Booking
	var vendorId uint
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		b, err := loadBooking(tx, bookingId)
		if err != nil {
			return err
		}
		if b.ClientID != clientId {
			return types.NewUnauthorized("user [%d] is not the client of booking [%d]", clientId, b.ID)
		}
		service, err := loadService(tx, b.ServiceID)
		if err != nil {
			return err
		}
		vendorId = service.VendorID
		err = transitionBooking(tx, b, []types.BookingStatus{types.BOOKING_ACCEPTED}, types.BOOKING_CONFIRMED, map[string]any{
			"user_response": types.BookingResponse{Accepted: true},
		})
		if err != nil {
			return err
		}
		booking, err = loadBooking(tx, bookingId)
		return err
	})
	if err != nil {
		return nil, err
	}

	go emitBookingEvent("booking_confirmed", "Booking confirmed",
		"The client confirmed the final price for your service", booking, vendorId, clientId)

	return booking, nil
}

// MarkBookingPaid is the trusted payment callback. It flips paymentDone on a
// confirmed booking without changing status; payment verification itself
// happens upstream.
func MarkBookingPaid(bookingId uint) (*models.Booking, error) {
	var booking *models.Booking
	var vendorId uint
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		b, err := loadBooking(tx, bookingId)
		if err != nil {
			return err
		}
		if b.Status != types.BOOKING_CONFIRMED {
			return types.NewInvalidTransition("booking [%d] is %s, payment applies to confirmed bookings only", b.ID, b.Status)
		}
		service, err := loadService(tx, b.ServiceID)
		if err != nil {
			return err
		}
		vendorId = service.VendorID
		res := tx.
			Model(&models.Booking{}).
			Where("id = ? AND status = ?", b.ID, types.BOOKING_CONFIRMED).
			Update("payment_done", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return types.NewConflict("booking [%d] was modified concurrently", b.ID)
		}
		booking, err = loadBooking(tx, bookingId)
		return err
	})
	if err != nil {
		return nil, err
	}

	go emitBookingEvent("booking_paid", "Payment received",
		"Payment for a confirmed booking was completed", booking, vendorId, booking.ClientID)

	return booking, nil
}

// GetBooking returns a booking to one of the two negotiation parties.
func GetBooking(bookingId uint, requesterId uint) (*models.Booking, error) {
	var booking models.Booking
	db := db.GetDb()
	if err := db.
		Where(&models.Booking{ID: bookingId}).
		Preload("Service").
		First(&booking).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFound("booking [%d] not found", bookingId)
		}
		return nil, err
	}
	if booking.ClientID != requesterId && (booking.Service == nil || booking.Service.VendorID != requesterId) {
		return nil, types.NewUnauthorized("user [%d] is not a party of booking [%d]", requesterId, bookingId)
	}
	return &booking, nil
}

func GetClientBookings(clientId uint) ([]models.Booking, error) {
	var bookings []models.Booking
	db := db.GetDb()
	err := db.
		Model(&models.Booking{}).
		Where(&models.Booking{ClientID: clientId}).
		Preload("Service").
		Order("created_at DESC").
		Limit(100).
		Find(&bookings).
		Error
	return bookings, err
}

func GetVendorBookings(vendorId uint) ([]models.Booking, error) {
	var bookings []models.Booking
	db := db.GetDb()
	serviceIds := db.
		Model(&models.Service{}).
		Where(&models.Service{VendorID: vendorId}).
		Select("id")
	err := db.
		Model(&models.Booking{}).
		Where("service_id IN (?)", serviceIds).
		Preload("Service").
		Preload("Client").
		Order("created_at DESC").
		Limit(100).
		Find(&bookings).
		Error
	return bookings, err
}

func GetServiceBookings(serviceId uint, vendorId uint) ([]models.Booking, error) {
	service, err := GetServiceByID(serviceId)
	if err != nil {
		return nil, err
	}
	if service.VendorID != vendorId {
		return nil, types.NewUnauthorized("user [%d] is not the vendor of service [%d]", vendorId, serviceId)
	}
	var bookings []models.Booking
	db := db.GetDb()
	err = db.
		Model(&models.Booking{}).
		Where(&models.Booking{ServiceID: serviceId}).
		Preload("Client").
		Order("created_at DESC").
		Limit(100).
		Find(&bookings).
		Error
	return bookings, err
}

func emitBookingEvent(eventType string, title string, message string, booking *models.Booking, receiverId uint, senderId uint) {
	payload := map[string]any{
		"type":        eventType,
		"title":       title,
		"message":     message,
		"receiver_id": receiverId,
		"sender_id":   senderId,
		"metadata": map[string]any{
			"booking_id": booking.ID,
			"service_id": booking.ServiceID,
			"status":     booking.Status,
		},
	}
	if err := models.BookingEventProducer(payload); err != nil {
		log.Printf("Could not emit booking event [%s] for booking [%d]: %s\n", eventType, booking.ID, err.Error())
	}
}
