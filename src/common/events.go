package common

import (
	"log"

	"eventmate/src/lib"
	"eventmate/src/types"

	"github.com/tidwall/gjson"
)

// The consumers below turn domain events into user notifications. One
// consumer per topic; both share the envelope
// {type, title, message, receiver_id, sender_id, metadata}.

func handleDomainEvent(topic string, value []byte) {
	spayload := string(value)
	if !gjson.Valid(spayload) {
		log.Printf("[%s] invalid payload, skipping\n", topic)
		return
	}
	eventType := gjson.Get(spayload, "type").String()
	receiverId := gjson.Get(spayload, "receiver_id").Uint()
	if eventType == "" || receiverId == 0 {
		log.Printf("[%s] incomplete payload, skipping\n", topic)
		return
	}
	input := &RegisterNotificationInput{
		Type:       eventType,
		Title:      gjson.Get(spayload, "title").String(),
		Message:    gjson.Get(spayload, "message").String(),
		ReceiverID: uint(receiverId),
	}
	if sender := gjson.Get(spayload, "sender_id"); sender.Exists() && sender.Uint() > 0 {
		senderId := uint(sender.Uint())
		input.SenderID = &senderId
	}
	if metadata := gjson.Get(spayload, "metadata"); metadata.IsObject() {
		m := types.JSONB{}
		for k, v := range metadata.Map() {
			m[k] = v.Value()
		}
		input.Metadata = m
	}
	if err := RegisterNotification(input); err != nil {
		log.Printf("[%s] could not process event [%s]: %s\n", topic, eventType, err.Error())
	}
}

func BookingEventsConsumer() {
	lib.KafkaConsume("booking_events_consumer", []string{"booking-events"}, func(value []byte) {
		handleDomainEvent("booking-events", value)
	})
}

func TicketEventsConsumer() {
	lib.KafkaConsume("ticket_events_consumer", []string{"ticket-events"}, func(value []byte) {
		handleDomainEvent("ticket-events", value)
	})
}
