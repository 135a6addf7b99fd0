package models

import (
	"log"

	"eventmate/src/lib"
)

// Domain events are emitted after the owning transaction commits; the
// notification consumers pick them up asynchronously. Delivery is best
// effort and never affects the primary mutation.

func BookingEventProducer(payload map[string]any) error {
	err := lib.KafkaProduceMessage("booking_events_producer", "booking-events", payload)
	if err != nil {
		log.Printf("Error on producing booking event: %s\n", err.Error())
		return err
	}
	return nil
}

func TicketEventProducer(payload map[string]any) error {
	err := lib.KafkaProduceMessage("ticket_events_producer", "ticket-events", payload)
	if err != nil {
		log.Printf("Error on producing ticket event: %s\n", err.Error())
		return err
	}
	return nil
}
