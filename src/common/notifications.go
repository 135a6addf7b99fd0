package common

import (
	"context"
	"fmt"
	"log"
	"os"

	"eventmate/src/db"
	"eventmate/src/lib"
	"eventmate/src/models"
	"eventmate/src/types"

	"firebase.google.com/go/v4/messaging"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RegisterNotificationInput struct {
	Type       string
	Title      string
	Message    string
	ReceiverID uint
	SenderID   *uint
	Metadata   types.JSONB
}

// bookingDecisionTypes also get an email leg on top of the stored
// notification and the push.
var bookingDecisionTypes = map[string]bool{
	"booking_accepted": true,
	"booking_rejected": true,
}

// RegisterNotification stores a notification row, bumps the receiver's
// unread counter, and fans out to push and email. Delivery legs are best
// effort: a failed push or email is logged and swallowed, only the database
// write can fail the call.
func RegisterNotification(input *RegisterNotificationInput) error {
	var receiver models.User
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&models.User{ID: input.ReceiverID}).First(&receiver).Error; err != nil {
			return err
		}
		metadata := input.Metadata
		notification := models.Notification{
			ID:         uuid.New(),
			Type:       input.Type,
			Title:      input.Title,
			Message:    input.Message,
			ReceiverID: receiver.ID,
			SenderID:   input.SenderID,
			Metadata:   &metadata,
		}
		if err := tx.Create(&notification).Error; err != nil {
			return err
		}
		return tx.
			Model(&models.User{}).
			Where(&models.User{ID: receiver.ID}).
			Update("unread_notifications", gorm.Expr("unread_notifications + ?", 1)).
			Error
	})
	if err != nil {
		log.Printf("Could not register notification [%s] for user [%d]: %s\n", input.Type, input.ReceiverID, err.Error())
		return err
	}

	if receiver.PushEnabled(input.Type) {
		sendPushNotification(&receiver, input)
	}
	if bookingDecisionTypes[input.Type] && receiver.Email != "" {
		sendEmailNotification(&receiver, input)
	}
	return nil
}

// sendPushNotification looks up the receiver's device token in redis and
// delivers through FCM.
func sendPushNotification(receiver *models.User, input *RegisterNotificationInput) {
	ctx := context.Background()
	rd := lib.GetRedisClient()
	if rd == nil {
		return
	}
	key := fmt.Sprintf("%s:fcm", receiver.UID)
	token := rd.JSONGet(ctx, key, "$.token").Val()
	if token == "" {
		return
	}
	fcm, err := lib.GetFirebaseMessaging()
	if err != nil {
		return
	}
	res, err := fcm.Send(ctx, &messaging.Message{
		Token: token,
		Data: map[string]string{
			"title": input.Title,
			"body":  input.Message,
			"type":  input.Type,
		},
	})
	if err != nil {
		log.Printf("[FCM] error sending notification message: %s", err.Error())
		return
	}
	log.Printf("[FCM] notification sent to user [%d]: %s", receiver.ID, res)
}

func sendEmailNotification(receiver *models.User, input *RegisterNotificationInput) {
	senderFrom := os.Getenv("SMTP_FROM")
	err := lib.SendMail(&lib.SendMailInput{
		Subject:  input.Title,
		From:     senderFrom,
		FromName: "noreply",
		To:       []string{receiver.Email},
		Body:     fmt.Sprintf("<p>%s</p>", input.Message),
		Html:     true,
	})
	if err != nil {
		log.Printf("[SMTP] error sending notification email to user [%d]: %s", receiver.ID, err.Error())
	}
}

// GetUserNotifications lists the newest notifications of a user.
func GetUserNotifications(userId uint) ([]models.Notification, error) {
	var notifications []models.Notification
	db := db.GetDb()
	err := db.
		Model(&models.Notification{}).
		Where(&models.Notification{ReceiverID: userId}).
		Order("created_at DESC").
		Limit(100).
		Find(&notifications).
		Error
	return notifications, err
}

// MarkNotificationsRead resets the unread counter.
func MarkNotificationsRead(userId uint) error {
	db := db.GetDb()
	return db.
		Model(&models.User{}).
		Where(&models.User{ID: userId}).
		Update("unread_notifications", 0).
		Error
}
