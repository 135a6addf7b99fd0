package boot

import (
	"log"

	"eventmate/src/common"
	"eventmate/src/db"
	"eventmate/src/lib"
	"eventmate/src/models"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.User{},
		&models.Service{},
		&models.Event{},
		&models.Booking{},
		&models.Ticket{},
		&models.TicketPurchase{},
		&models.Notification{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

func InitBroker() {
	go lib.KafkaCreateTopics("booking-events", "ticket-events")
	go common.BookingEventsConsumer()
	go common.TicketEventsConsumer()
}
