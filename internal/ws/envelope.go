package ws

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

const eventTypeMessage = "message"

var validate = validator.New()

// clientFrame is the only schema a client may send after connecting. Anything
// that does not match it is a protocol violation and closes the connection.
type clientFrame struct {
	Type   string `json:"type" validate:"required,eq=identify"`
	UserID string `json:"userId" validate:"required,number"`
}

// parseIdentify decodes and validates an identify frame, returning the bound
// user id.
func parseIdentify(raw []byte) (int, error) {
	var frame clientFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return 0, fmt.Errorf("decode frame: %w", err)
	}
	if err := validate.Struct(frame); err != nil {
		return 0, fmt.Errorf("invalid frame: %w", err)
	}
	userID, err := strconv.Atoi(frame.UserID)
	if err != nil || userID <= 0 {
		return 0, fmt.Errorf("invalid userId %q", frame.UserID)
	}
	return userID, nil
}

// DeliveryEvent is pushed to the receiver's live connection after a message
// has been persisted. Delivery is best-effort: an offline receiver sees the
// message on their next fetch.
type DeliveryEvent struct {
	Type           string    `json:"type"`
	ConversationID int       `json:"conversationId"`
	AuthorID       int       `json:"authorId"`
	Text           string    `json:"text"`
	CreatedAt      time.Time `json:"createdAt"`
}
