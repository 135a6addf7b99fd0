package main

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"eventmate/src/config"
	"eventmate/src/db"
	"eventmate/src/middlewares"
	"eventmate/src/models"
	"eventmate/src/types"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"github.com/tidwall/gjson"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type APITestSuite struct {
	suite.Suite
	DB          *gorm.DB
	Router      *gin.Engine
	Client      models.User
	Vendor      models.User
	ClientToken string
	VendorToken string
	Service     models.Service
	Event       models.Event
	Ticket      models.Ticket
}

func (s *APITestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	registerValidators()
}

func (s *APITestSuite) SetupTest() {
	dsn := fmt.Sprintf("file:api_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn))
	s.Require().NoError(err)
	sqlDB, err := gdb.DB()
	s.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)
	s.Require().NoError(gdb.AutoMigrate(
		&models.User{},
		&models.Service{},
		&models.Event{},
		&models.Booking{},
		&models.Ticket{},
		&models.TicketPurchase{},
		&models.Notification{},
	))
	db.NewDB(gdb)
	s.DB = gdb

	s.Client = models.User{Name: "Client", Email: "client@test.local", Role: "client", UID: "client-uid"}
	s.Vendor = models.User{Name: "Vendor", Email: "vendor@test.local", Role: "vendor", UID: "vendor-uid"}
	s.Require().NoError(gdb.Create(&s.Client).Error)
	s.Require().NoError(gdb.Create(&s.Vendor).Error)

	s.ClientToken, err = generateJWT(s.Client.ID, s.Client.Email, s.Client.Role, s.Client.UID)
	s.Require().NoError(err)
	s.VendorToken, err = generateJWT(s.Vendor.ID, s.Vendor.Email, s.Vendor.Role, s.Vendor.UID)
	s.Require().NoError(err)

	s.Service = models.Service{VendorID: s.Vendor.ID, Title: "Catering", PricingMode: types.PRICING_NEGOTIABLE, IsPublished: true}
	s.Require().NoError(gdb.Create(&s.Service).Error)

	eventDate := time.Now().AddDate(0, 1, 0)
	s.Event = models.Event{Title: "Launch Party", OrganizerID: s.Vendor.ID, DateTime: &eventDate}
	s.Require().NoError(gdb.Create(&s.Event).Error)

	s.Ticket = models.Ticket{EventID: s.Event.ID, Title: "Standard", Price: 15, Quantity: 10, Published: true}
	s.Require().NoError(gdb.Create(&s.Ticket).Error)

	router := setupRouter()
	authorized := apiv1Group(router)
	authorized.Use(middlewares.AuthMiddleware)
	{
		authorized = bookingHandlers(authorized)
		authorized = ticketHandlers(authorized)
		authorized = catalogHandlers(authorized)
		authorized = notificationHandlers(authorized)
	}
	internal := router.Group(apiPrefix + "/internal")
	internal.Use(middlewares.InternalSecretMiddleware)
	{
		internal = internalBookingHandlers(internal)
	}
	s.Router = router
}

func (s *APITestSuite) request(method string, target string, body string, token string, headers map[string]string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)
	return w
}

func (s *APITestSuite) createBooking() int64 {
	date := time.Now().AddDate(0, 0, 14).Format(config.DATE_PARSE_FORMAT)
	body := fmt.Sprintf(`{"service":%d,"selected_dates":["%s"],"message":"hello"}`, s.Service.ID, date)
	w := s.request(http.MethodPost, "/api/v1/bookings", body, s.ClientToken, nil)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	return gjson.Get(w.Body.String(), "data.id").Int()
}

func (s *APITestSuite) TestPing() {
	w := s.request(http.MethodGet, "/", "", "", nil)
	s.Equal(http.StatusOK, w.Code)
}

func (s *APITestSuite) TestAuthRequired() {
	w := s.request(http.MethodGet, "/api/v1/bookings", "", "", nil)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *APITestSuite) TestCreateBooking() {
	id := s.createBooking()
	s.Greater(id, int64(0))

	w := s.request(http.MethodGet, fmt.Sprintf("/api/v1/bookings/%d", id), "", s.ClientToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal("pending", gjson.Get(w.Body.String(), "data.status").String())
	s.True(gjson.Get(w.Body.String(), "data.is_negotiable").Bool())
}

func (s *APITestSuite) TestBookingDateBounds() {
	today := time.Now().Format(config.DATE_PARSE_FORMAT)
	body := fmt.Sprintf(`{"service":%d,"selected_dates":["%s"]}`, s.Service.ID, today)
	w := s.request(http.MethodPost, "/api/v1/bookings", body, s.ClientToken, nil)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	yesterday := time.Now().AddDate(0, 0, -1).Format(config.DATE_PARSE_FORMAT)
	body = fmt.Sprintf(`{"service":%d,"selected_dates":["%s"]}`, s.Service.ID, yesterday)
	w = s.request(http.MethodPost, "/api/v1/bookings", body, s.ClientToken, nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *APITestSuite) TestAcceptRequiresVendor() {
	id := s.createBooking()
	w := s.request(http.MethodPost, fmt.Sprintf("/api/v1/bookings/%d/accept", id), `{"final_price":100}`, s.ClientToken, nil)
	s.Equal(http.StatusForbidden, w.Code)
	s.Equal("unauthorized", gjson.Get(w.Body.String(), "kind").String())
}

func (s *APITestSuite) TestNegotiationOverHTTP() {
	id := s.createBooking()

	w := s.request(http.MethodPost, fmt.Sprintf("/api/v1/bookings/%d/accept", id), `{"final_price":100,"admin_message":"deal"}`, s.VendorToken, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Equal("accepted", gjson.Get(w.Body.String(), "data.status").String())

	w = s.request(http.MethodPost, fmt.Sprintf("/api/v1/bookings/%d/counter", id), `{"counter_offer":80}`, s.ClientToken, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Equal("countered", gjson.Get(w.Body.String(), "data.status").String())

	w = s.request(http.MethodPost, fmt.Sprintf("/api/v1/bookings/%d/accept", id), `{"final_price":90}`, s.VendorToken, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.request(http.MethodPost, fmt.Sprintf("/api/v1/bookings/%d/confirm", id), "", s.ClientToken, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Equal("confirmed", gjson.Get(w.Body.String(), "data.status").String())
	s.Equal(90.0, gjson.Get(w.Body.String(), "data.final_price").Float())
}

func (s *APITestSuite) TestMarkPaidRequiresInternalSecret() {
	s.T().Setenv("INTERNAL_API_SECRET", "sekret")
	id := s.createBooking()

	w := s.request(http.MethodPost, fmt.Sprintf("/api/v1/bookings/%d/accept", id), `{"final_price":100}`, s.VendorToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	w = s.request(http.MethodPost, fmt.Sprintf("/api/v1/bookings/%d/confirm", id), "", s.ClientToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.request(http.MethodPost, fmt.Sprintf("/api/v1/internal/bookings/%d/mark-paid", id), "", "", nil)
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.request(http.MethodPost, fmt.Sprintf("/api/v1/internal/bookings/%d/mark-paid", id), "", "", map[string]string{"x-internal-secret": "sekret"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.True(gjson.Get(w.Body.String(), "data.payment_done").Bool())
	s.Equal("confirmed", gjson.Get(w.Body.String(), "data.status").String())
}

func (s *APITestSuite) TestPurchaseOverHTTP() {
	target := fmt.Sprintf("/api/v1/events/%d/tickets/%d/purchase", s.Event.ID, s.Ticket.ID)
	w := s.request(http.MethodPost, target, `{"quantity":2}`, s.ClientToken, nil)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	s.True(strings.HasPrefix(gjson.Get(w.Body.String(), "data.qr_code").String(), "data:image/jpeg;base64,"))
	s.Equal(int64(2), gjson.Get(w.Body.String(), "data.quantity").Int())

	w = s.request(http.MethodPost, target, `{"quantity":20}`, s.ClientToken, nil)
	s.Equal(http.StatusConflict, w.Code)
	s.Equal("insufficient_inventory", gjson.Get(w.Body.String(), "kind").String())
}

func (s *APITestSuite) TestCatalogLookups() {
	w := s.request(http.MethodGet, fmt.Sprintf("/api/v1/services/%d", s.Service.ID), "", s.ClientToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal("negotiable", gjson.Get(w.Body.String(), "data.pricing_mode").String())

	w = s.request(http.MethodGet, "/api/v1/services/9999", "", s.ClientToken, nil)
	s.Equal(http.StatusNotFound, w.Code)

	w = s.request(http.MethodGet, fmt.Sprintf("/api/v1/events/%d", s.Event.ID), "", s.ClientToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal(int64(s.Vendor.ID), gjson.Get(w.Body.String(), "data.organizer_id").Int())
}

func TestAPITestSuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}
