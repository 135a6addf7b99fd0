package utils

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/yeqown/go-qrcode"
)

// QrPayload is the fixed shape encoded into every purchase pass.
type QrPayload struct {
	PurchaseID string    `json:"purchaseId"`
	EventID    uint      `json:"eventId"`
	TicketID   uint      `json:"ticketId"`
	Quantity   uint      `json:"quantity"`
	IssuedAt   time.Time `json:"issuedAt"`
	UserID     uint      `json:"userId"`
	Name       string    `json:"name"`
}

const qrDataURIPrefix = "data:image/jpeg;base64,"

// EncodeQR renders the payload as a machine-readable code and returns it as a
// base64 data URI suitable for direct display or storage.
func EncodeQR(payload *QrPayload) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	qrc, err := qrcode.New(string(raw))
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := qrc.SaveTo(&buf); err != nil {
		return "", err
	}
	return qrDataURIPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DecodeQRAsset strips the data URI envelope and returns the raw image bytes.
func DecodeQRAsset(dataURI string) ([]byte, error) {
	encoded := dataURI
	if len(encoded) >= len(qrDataURIPrefix) && encoded[:len(qrDataURIPrefix)] == qrDataURIPrefix {
		encoded = encoded[len(qrDataURIPrefix):]
	}
	return base64.StdEncoding.DecodeString(encoded)
}
