package utils

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"eventmate/src/config"
	"eventmate/src/db"
	"eventmate/src/lib"
	"eventmate/src/lib/aws"
	"eventmate/src/models"
	"eventmate/src/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const purchaseAttempts = 3

// errStaleCounter signals that the guarded sold-counter update matched zero
// rows because another purchase landed in between. Internal to the retry
// loop; callers only ever see Conflict.
var errStaleCounter = errors.New("stale sold counter")

// CreateNewTicket adds an inventory unit to an event owned by the requester.
func CreateNewTicket(eventId uint, organizerId uint, params *types.CreateTicketRequestBody) (*models.Ticket, error) {
	var ticket models.Ticket
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		event, err := loadEvent(tx, eventId)
		if err != nil {
			return err
		}
		if event.OrganizerID != organizerId {
			return types.NewUnauthorized("user [%d] is not the organizer of event [%d]", organizerId, eventId)
		}
		ticket = models.Ticket{
			EventID:            event.ID,
			Title:              params.Title,
			Description:        params.Description,
			Price:              params.Price,
			Quantity:           params.Quantity,
			Sold:               0,
			TermsAndConditions: params.TermsAndConditions,
		}
		if params.Currency != "" {
			ticket.Currency = params.Currency
		}
		if params.Published != nil {
			ticket.Published = *params.Published
		} else {
			ticket.Published = true
		}
		if params.LastDateForRefund != nil {
			refundDate, err := time.Parse(config.DATE_PARSE_FORMAT, *params.LastDateForRefund)
			if err != nil {
				return types.NewValidationError("invalid date [%s]: expected format %s", *params.LastDateForRefund, config.DATE_PARSE_FORMAT)
			}
			ticket.LastDateForRefund = &refundDate
		}
		return tx.Create(&ticket).Error
	})
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// UpdateTicket applies the non-nil fields of the request. Sold is never
// applied here no matter what the caller sends; only the purchase path moves
// it.
func UpdateTicket(eventId uint, ticketId uint, organizerId uint, params *types.UpdateTicketRequestBody) (*models.Ticket, error) {
	var ticket models.Ticket
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		event, err := loadEvent(tx, eventId)
		if err != nil {
			return err
		}
		if event.OrganizerID != organizerId {
			return types.NewUnauthorized("user [%d] is not the organizer of event [%d]", organizerId, eventId)
		}
		if err := tx.Where("id = ? AND event_id = ?", ticketId, eventId).First(&ticket).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.NewNotFound("ticket [%d] not found for event [%d]", ticketId, eventId)
			}
			return err
		}
		updates := map[string]any{}
		if params.Title != nil {
			updates["title"] = *params.Title
		}
		if params.Description != nil {
			updates["description"] = *params.Description
		}
		if params.Price != nil {
			updates["price"] = *params.Price
		}
		if params.Currency != nil {
			updates["currency"] = *params.Currency
		}
		if params.Quantity != nil {
			if *params.Quantity < ticket.Sold {
				return types.NewInvalidState("ticket [%d] has %d units sold, quantity cannot drop below that", ticket.ID, ticket.Sold)
			}
			updates["quantity"] = *params.Quantity
		}
		if params.TermsAndConditions != nil {
			updates["terms_and_conditions"] = *params.TermsAndConditions
		}
		if params.Published != nil {
			updates["published"] = *params.Published
		}
		if len(updates) == 0 {
			return nil
		}
		// A quantity change re-checks sold at write time: the UPDATE is
		// guarded against purchases landing after the read above, the same
		// way the purchase path guards the sold counter.
		query := tx.Model(&models.Ticket{}).Where("id = ?", ticket.ID)
		if params.Quantity != nil {
			query = query.Where("sold <= ?", *params.Quantity)
		}
		res := query.Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return types.NewConflict("ticket [%d] was modified concurrently", ticket.ID)
		}
		return tx.Where(&models.Ticket{ID: ticketId}).First(&ticket).Error
	})
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// DeleteTicket removes a ticket that has no sales. A ticket with recorded
// purchases stays behind for the life of its receipts.
func DeleteTicket(eventId uint, ticketId uint, organizerId uint) error {
	db := db.GetDb()
	return db.Transaction(func(tx *gorm.DB) error {
		event, err := loadEvent(tx, eventId)
		if err != nil {
			return err
		}
		if event.OrganizerID != organizerId {
			return types.NewUnauthorized("user [%d] is not the organizer of event [%d]", organizerId, eventId)
		}
		var ticket models.Ticket
		if err := tx.Where("id = ? AND event_id = ?", ticketId, eventId).First(&ticket).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.NewNotFound("ticket [%d] not found for event [%d]", ticketId, eventId)
			}
			return err
		}
		if ticket.Sold > 0 {
			return types.NewInvalidState("ticket [%d] has %d units sold and cannot be deleted", ticket.ID, ticket.Sold)
		}
		return tx.Delete(&ticket).Error
	})
}

// GetEventTickets lists the published tickets of an event. The organizer
// also sees unpublished ones.
func GetEventTickets(eventId uint, requesterId uint) ([]models.Ticket, error) {
	event, err := GetEventByID(eventId)
	if err != nil {
		return nil, err
	}
	var tickets []models.Ticket
	db := db.GetDb()
	query := db.Model(&models.Ticket{}).Where(&models.Ticket{EventID: eventId})
	if event.OrganizerID != requesterId {
		query = query.Where("published = ?", true)
	}
	err = query.Order("id").Find(&tickets).Error
	return tickets, err
}

// PurchaseResult is what the buyer gets back, whether the purchase was
// freshly executed or replayed from an idempotency hit.
type PurchaseResult struct {
	PurchaseID  string  `json:"purchase_id"`
	TicketTitle string  `json:"ticket_title"`
	Quantity    uint    `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	QrCode      string  `json:"qr_code"`
	Replayed    bool    `json:"replayed,omitempty"`
}

// PurchaseTicket atomically claims quantity units of a ticket and issues a
// receipt with an embedded proof-of-purchase code. The sold counter moves
// through a compare-and-swap: the UPDATE is guarded by the value read at the
// start of the attempt, and a zero-row result restarts the attempt with a
// fresh read. Three lost races surface as Conflict.
func PurchaseTicket(eventId uint, ticketId uint, quantity uint, userId uint, idemKey string) (*PurchaseResult, error) {
	if quantity == 0 {
		return nil, types.NewValidationError("purchase quantity must be greater than zero")
	}

	if idemKey != "" {
		if replay, err := replayPurchase(idemKey, userId); err == nil && replay != nil {
			return replay, nil
		}
	}

	var purchase models.TicketPurchase
	var ticket models.Ticket
	var organizerId uint
	db := db.GetDb()

	var lastErr error
	for attempt := 0; attempt < purchaseAttempts; attempt++ {
		lastErr = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("id = ? AND event_id = ?", ticketId, eventId).First(&ticket).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return types.NewNotFound("ticket [%d] not found for event [%d]", ticketId, eventId)
				}
				return err
			}
			if !ticket.Published {
				return types.NewNotFound("ticket [%d] not found for event [%d]", ticketId, eventId)
			}
			event, err := loadEvent(tx, eventId)
			if err != nil {
				return err
			}
			organizerId = event.OrganizerID
			var user models.User
			if err := tx.Where(&models.User{ID: userId}).First(&user).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return types.NewNotFound("user [%d] not found", userId)
				}
				return err
			}
			if ticket.Remaining() < quantity {
				return types.NewInsufficientInventory("ticket [%d] has %d of %d requested units remaining", ticket.ID, ticket.Remaining(), quantity)
			}
			res := tx.
				Model(&models.Ticket{}).
				Where("id = ? AND sold = ? AND quantity - sold >= ?", ticket.ID, ticket.Sold, quantity).
				Update("sold", gorm.Expr("sold + ?", quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return errStaleCounter
			}
			purchase = models.TicketPurchase{
				ID:           uuid.New(),
				UserID:       user.ID,
				EventID:      eventId,
				TicketID:     ticket.ID,
				Quantity:     quantity,
				PurchaseDate: time.Now(),
				Status:       types.PURCHASE_CONFIRMED,
			}
			qr, err := EncodeQR(&QrPayload{
				PurchaseID: purchase.ID.String(),
				EventID:    eventId,
				TicketID:   ticket.ID,
				Quantity:   quantity,
				IssuedAt:   purchase.PurchaseDate,
				UserID:     user.ID,
				Name:       user.Name,
			})
			if err != nil {
				return err
			}
			purchase.QrCode = qr
			return tx.Create(&purchase).Error
		})
		if lastErr == nil {
			break
		}
		if !errors.Is(lastErr, errStaleCounter) {
			return nil, lastErr
		}
	}
	if lastErr != nil {
		if errors.Is(lastErr, errStaleCounter) {
			return nil, types.NewConflict("ticket [%d] inventory is contended, retry the purchase", ticketId)
		}
		return nil, lastErr
	}

	if idemKey != "" {
		storePurchaseKey(idemKey, purchase.ID)
	}
	if organizerId != userId {
		go emitTicketEvent("ticket_purchase", "Tickets sold",
			fmt.Sprintf("%d unit(s) of %s were purchased", quantity, ticket.Title), &purchase, organizerId)
	}

	return &PurchaseResult{
		PurchaseID:  purchase.ID.String(),
		TicketTitle: ticket.Title,
		Quantity:    purchase.Quantity,
		UnitPrice:   ticket.Price,
		QrCode:      purchase.QrCode,
	}, nil
}

// replayPurchase returns the stored result of a previous purchase carrying
// the same idempotency key, or nil when the key is unknown. Redis being down
// degrades to executing the purchase again.
func replayPurchase(idemKey string, userId uint) (*PurchaseResult, error) {
	rdb := lib.GetRedisClient()
	if rdb == nil {
		return nil, errors.New("redis unavailable")
	}
	val, err := rdb.Get(context.Background(), purchaseIdemKey(idemKey)).Result()
	if err != nil {
		return nil, err
	}
	purchaseId, err := uuid.Parse(val)
	if err != nil {
		return nil, err
	}
	var purchase models.TicketPurchase
	db := db.GetDb()
	if err := db.
		Where("id = ? AND user_id = ?", purchaseId, userId).
		Preload("Ticket").
		First(&purchase).
		Error; err != nil {
		return nil, err
	}
	result := &PurchaseResult{
		PurchaseID: purchase.ID.String(),
		Quantity:   purchase.Quantity,
		QrCode:     purchase.QrCode,
		Replayed:   true,
	}
	if purchase.Ticket != nil {
		result.TicketTitle = purchase.Ticket.Title
		result.UnitPrice = purchase.Ticket.Price
	}
	return result, nil
}

func storePurchaseKey(idemKey string, purchaseId uuid.UUID) {
	rdb := lib.GetRedisClient()
	if rdb == nil {
		return
	}
	err := rdb.SetEx(context.Background(), purchaseIdemKey(idemKey), purchaseId.String(), 24*time.Hour).Err()
	if err != nil {
		log.Printf("Could not store idempotency key for purchase [%s]: %s\n", purchaseId, err.Error())
	}
}

func purchaseIdemKey(idemKey string) string {
	return fmt.Sprintf("purchase:idem:%s", idemKey)
}

// GetUserPasses lists the requester's purchase receipts, newest first.
func GetUserPasses(userId uint) ([]models.TicketPurchase, error) {
	var purchases []models.TicketPurchase
	db := db.GetDb()
	err := db.
		Model(&models.TicketPurchase{}).
		Where(&models.TicketPurchase{UserID: userId}).
		Preload("Event").
		Preload("Ticket").
		Order("purchase_date DESC").
		Limit(100).
		Find(&purchases).
		Error
	return purchases, err
}

// SharePass uploads the pass image to the assets bucket and returns a
// short-lived URL. The URL is cached so repeated shares of the same pass do
// not re-upload.
func SharePass(purchaseId uuid.UUID, userId uint) (*string, error) {
	var purchase models.TicketPurchase
	db := db.GetDb()
	if err := db.Where("id = ?", purchaseId).First(&purchase).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewNotFound("pass [%s] not found", purchaseId)
		}
		return nil, err
	}
	if purchase.UserID != userId {
		return nil, types.NewUnauthorized("user [%d] does not own pass [%s]", userId, purchaseId)
	}

	cacheKey := fmt.Sprintf("pass:share:%s", purchaseId)
	rdb := lib.GetRedisClient()
	if rdb != nil {
		if cached, err := rdb.Get(context.Background(), cacheKey).Result(); err == nil && cached != "" {
			return &cached, nil
		}
	}

	asset, err := DecodeQRAsset(purchase.QrCode)
	if err != nil {
		return nil, err
	}
	url, err := aws.S3UploadAsset(fmt.Sprintf("passes/%s.jpg", purchaseId), "image/jpeg", asset)
	if err != nil {
		return nil, err
	}
	if rdb != nil && url != nil {
		if err := rdb.SetEx(context.Background(), cacheKey, *url, 2*time.Hour).Err(); err != nil {
			log.Printf("Could not cache share URL for pass [%s]: %s\n", purchaseId, err.Error())
		}
	}
	return url, nil
}

func emitTicketEvent(eventType string, title string, message string, purchase *models.TicketPurchase, receiverId uint) {
	payload := map[string]any{
		"type":        eventType,
		"title":       title,
		"message":     message,
		"receiver_id": receiverId,
		"sender_id":   purchase.UserID,
		"metadata": map[string]any{
			"purchase_id": purchase.ID.String(),
			"event_id":    purchase.EventID,
			"ticket_id":   purchase.TicketID,
			"quantity":    purchase.Quantity,
		},
	}
	if err := models.TicketEventProducer(payload); err != nil {
		log.Printf("Could not emit ticket event [%s] for purchase [%s]: %s\n", eventType, purchase.ID, err.Error())
	}
}
