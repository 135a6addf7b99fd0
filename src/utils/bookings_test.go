package utils

import (
	"fmt"
	"testing"
	"time"

	"eventmate/src/config"
	"eventmate/src/db"
	"eventmate/src/models"
	"eventmate/src/types"

	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestDB opens a fresh in-memory database and installs it as the
// singleton. The shared-cache DSN plus a single connection keeps every
// transaction on the same memory store.
func newTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn))
	if err != nil {
		t.Fatalf("could not open test database: %s", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("could not access test database: %s", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := gdb.AutoMigrate(
		&models.User{},
		&models.Service{},
		&models.Event{},
		&models.Booking{},
		&models.Ticket{},
		&models.TicketPurchase{},
		&models.Notification{},
	); err != nil {
		t.Fatalf("could not migrate test database: %s", err)
	}
	db.NewDB(gdb)
	return gdb
}

func futureDate(days int) string {
	return time.Now().AddDate(0, 0, days).Format(config.DATE_PARSE_FORMAT)
}

type BookingsTestSuite struct {
	suite.Suite
	DB       *gorm.DB
	Client   models.User
	Vendor   models.User
	Stranger models.User
	Service  models.Service
}

func (s *BookingsTestSuite) SetupTest() {
	s.DB = newTestDB(s.T(), "bookings")

	s.Client = models.User{Name: "Client", Email: "client@test.local", Role: "client", UID: "client-uid"}
	s.Vendor = models.User{Name: "Vendor", Email: "vendor@test.local", Role: "vendor", UID: "vendor-uid"}
	s.Stranger = models.User{Name: "Stranger", Email: "stranger@test.local", Role: "client", UID: "stranger-uid"}
	s.Require().NoError(s.DB.Create(&s.Client).Error)
	s.Require().NoError(s.DB.Create(&s.Vendor).Error)
	s.Require().NoError(s.DB.Create(&s.Stranger).Error)

	s.Service = models.Service{
		VendorID:    s.Vendor.ID,
		Title:       "Wedding Photography",
		Category:    "photography",
		BasePrice:   120,
		PricingMode: types.PRICING_NEGOTIABLE,
		IsPublished: true,
	}
	s.Require().NoError(s.DB.Create(&s.Service).Error)
}

func (s *BookingsTestSuite) newInquiry() *models.Booking {
	booking, err := CreateBookingInquiry(s.Client.ID, &types.CreateBookingInquiryRequestBody{
		ServiceID:     s.Service.ID,
		SelectedDates: []string{futureDate(14)},
		Message:       "Looking forward to it",
	})
	s.Require().NoError(err)
	return booking
}

func (s *BookingsTestSuite) reload(id uint) *models.Booking {
	var booking models.Booking
	s.Require().NoError(s.DB.Where(&models.Booking{ID: id}).First(&booking).Error)
	return &booking
}

func (s *BookingsTestSuite) TestInquiryStartsPending() {
	booking := s.newInquiry()
	s.Equal(types.BOOKING_PENDING, booking.Status)
	s.True(booking.IsNegotiable)
	s.Nil(booking.FinalPrice)
	s.False(booking.PaymentDone)
	s.Len(booking.SelectedDates, 1)
}

func (s *BookingsTestSuite) TestInquiryFixedPriceService() {
	fixed := models.Service{VendorID: s.Vendor.ID, Title: "Passport Photos", PricingMode: types.PRICING_FIXED, IsPublished: true}
	s.Require().NoError(s.DB.Create(&fixed).Error)
	booking, err := CreateBookingInquiry(s.Client.ID, &types.CreateBookingInquiryRequestBody{
		ServiceID:     fixed.ID,
		SelectedDates: []string{futureDate(7)},
	})
	s.Require().NoError(err)
	s.False(booking.IsNegotiable)
}

func (s *BookingsTestSuite) TestInquiryUnknownService() {
	_, err := CreateBookingInquiry(s.Client.ID, &types.CreateBookingInquiryRequestBody{
		ServiceID:     9999,
		SelectedDates: []string{futureDate(7)},
	})
	s.True(types.IsKind(err, types.ErrNotFound))
}

func (s *BookingsTestSuite) TestInquiryBadDate() {
	_, err := CreateBookingInquiry(s.Client.ID, &types.CreateBookingInquiryRequestBody{
		ServiceID:     s.Service.ID,
		SelectedDates: []string{"14-06-2026"},
	})
	s.True(types.IsKind(err, types.ErrValidation))
}

func (s *BookingsTestSuite) TestFullNegotiationLifecycle() {
	booking := s.newInquiry()

	accepted, err := VendorAccept(booking.ID, s.Vendor.ID, &types.AcceptBookingRequestBody{FinalPrice: 100, AdminMessage: "Best I can do"})
	s.Require().NoError(err)
	s.Equal(types.BOOKING_ACCEPTED, accepted.Status)
	s.Require().NotNil(accepted.FinalPrice)
	s.Equal(100.0, *accepted.FinalPrice)

	countered, err := ClientCounter(booking.ID, s.Client.ID, &types.CounterOfferRequestBody{CounterOffer: 80, Message: "Can you do 80?"})
	s.Require().NoError(err)
	s.Equal(types.BOOKING_COUNTERED, countered.Status)
	s.Require().NotNil(countered.UserResponse)
	s.False(countered.UserResponse.Accepted)
	s.Require().NotNil(countered.UserResponse.CounterOffer)
	s.Equal(80.0, *countered.UserResponse.CounterOffer)

	reaccepted, err := VendorAccept(booking.ID, s.Vendor.ID, &types.AcceptBookingRequestBody{FinalPrice: 90})
	s.Require().NoError(err)
	s.Equal(types.BOOKING_ACCEPTED, reaccepted.Status)
	s.Equal(90.0, *reaccepted.FinalPrice)

	confirmed, err := ClientConfirm(booking.ID, s.Client.ID)
	s.Require().NoError(err)
	s.Equal(types.BOOKING_CONFIRMED, confirmed.Status)
	s.Require().NotNil(confirmed.UserResponse)
	s.True(confirmed.UserResponse.Accepted)

	paid, err := MarkBookingPaid(booking.ID)
	s.Require().NoError(err)
	s.Equal(types.BOOKING_CONFIRMED, paid.Status)
	s.True(paid.PaymentDone)
	s.Equal(90.0, *paid.FinalPrice)
}

func (s *BookingsTestSuite) TestRejectClearsFinalPrice() {
	booking := s.newInquiry()
	_, err := VendorAccept(booking.ID, s.Vendor.ID, &types.AcceptBookingRequestBody{FinalPrice: 100})
	s.Require().NoError(err)
	_, err = ClientCounter(booking.ID, s.Client.ID, &types.CounterOfferRequestBody{CounterOffer: 60})
	s.Require().NoError(err)

	rejected, err := VendorReject(booking.ID, s.Vendor.ID, &types.RejectBookingRequestBody{AdminMessage: "Too low"})
	s.Require().NoError(err)
	s.Equal(types.BOOKING_REJECTED, rejected.Status)
	s.Nil(rejected.FinalPrice)
}

func (s *BookingsTestSuite) TestTerminalStatesRefuseTransitions() {
	booking := s.newInquiry()
	_, err := VendorAccept(booking.ID, s.Vendor.ID, &types.AcceptBookingRequestBody{FinalPrice: 100})
	s.Require().NoError(err)
	_, err = ClientConfirm(booking.ID, s.Client.ID)
	s.Require().NoError(err)

	_, err = VendorReject(booking.ID, s.Vendor.ID, &types.RejectBookingRequestBody{})
	s.True(types.IsKind(err, types.ErrInvalidTransition))
	_, err = VendorAccept(booking.ID, s.Vendor.ID, &types.AcceptBookingRequestBody{FinalPrice: 50})
	s.True(types.IsKind(err, types.ErrInvalidTransition))
	s.Equal(types.BOOKING_CONFIRMED, s.reload(booking.ID).Status)
}

func (s *BookingsTestSuite) TestCounterRequiresAcceptedStatus() {
	booking := s.newInquiry()
	_, err := ClientCounter(booking.ID, s.Client.ID, &types.CounterOfferRequestBody{CounterOffer: 50})
	s.True(types.IsKind(err, types.ErrInvalidTransition))
	s.Equal(types.BOOKING_PENDING, s.reload(booking.ID).Status)
}

func (s *BookingsTestSuite) TestConfirmRequiresAcceptedStatus() {
	booking := s.newInquiry()
	_, err := ClientConfirm(booking.ID, s.Client.ID)
	s.True(types.IsKind(err, types.ErrInvalidTransition))
}

func (s *BookingsTestSuite) TestWrongVendorCannotDecide() {
	booking := s.newInquiry()
	_, err := VendorAccept(booking.ID, s.Stranger.ID, &types.AcceptBookingRequestBody{FinalPrice: 10})
	s.True(types.IsKind(err, types.ErrUnauthorized))
	_, err = VendorReject(booking.ID, s.Stranger.ID, &types.RejectBookingRequestBody{})
	s.True(types.IsKind(err, types.ErrUnauthorized))
	s.Equal(types.BOOKING_PENDING, s.reload(booking.ID).Status)
}

func (s *BookingsTestSuite) TestWrongClientCannotRespond() {
	booking := s.newInquiry()
	_, err := VendorAccept(booking.ID, s.Vendor.ID, &types.AcceptBookingRequestBody{FinalPrice: 100})
	s.Require().NoError(err)

	_, err = ClientCounter(booking.ID, s.Stranger.ID, &types.CounterOfferRequestBody{CounterOffer: 10})
	s.True(types.IsKind(err, types.ErrUnauthorized))
	_, err = ClientConfirm(booking.ID, s.Stranger.ID)
	s.True(types.IsKind(err, types.ErrUnauthorized))
	s.Equal(types.BOOKING_ACCEPTED, s.reload(booking.ID).Status)
}

func (s *BookingsTestSuite) TestMarkPaidRequiresConfirmed() {
	booking := s.newInquiry()
	_, err := MarkBookingPaid(booking.ID)
	s.True(types.IsKind(err, types.ErrInvalidTransition))
	s.False(s.reload(booking.ID).PaymentDone)
}

func (s *BookingsTestSuite) TestGetBookingPartyChecks() {
	booking := s.newInquiry()

	asClient, err := GetBooking(booking.ID, s.Client.ID)
	s.Require().NoError(err)
	s.Equal(booking.ID, asClient.ID)

	asVendor, err := GetBooking(booking.ID, s.Vendor.ID)
	s.Require().NoError(err)
	s.Equal(booking.ID, asVendor.ID)

	_, err = GetBooking(booking.ID, s.Stranger.ID)
	s.True(types.IsKind(err, types.ErrUnauthorized))
}

func (s *BookingsTestSuite) TestBookingLists() {
	s.newInquiry()
	s.newInquiry()

	clientBookings, err := GetClientBookings(s.Client.ID)
	s.Require().NoError(err)
	s.Len(clientBookings, 2)

	vendorBookings, err := GetVendorBookings(s.Vendor.ID)
	s.Require().NoError(err)
	s.Len(vendorBookings, 2)

	serviceBookings, err := GetServiceBookings(s.Service.ID, s.Vendor.ID)
	s.Require().NoError(err)
	s.Len(serviceBookings, 2)

	_, err = GetServiceBookings(s.Service.ID, s.Stranger.ID)
	s.True(types.IsKind(err, types.ErrUnauthorized))
}

func TestBookingsTestSuite(t *testing.T) {
	suite.Run(t, new(BookingsTestSuite))
}
