package models

import "encoding/json"

// Socket event names. These are part of the wire protocol shared with the
// frontend client and must not change.
const (
	EventJoinConversation = "join_conversation"
	EventSendMessage      = "send_message"
	EventInitiateBooking  = "initiate_booking"

	EventReceiveMessage = "receive_message"
	EventAISuggestion   = "ai_suggestion"
	EventBookingCreated = "booking_created"
	EventBookingError   = "booking_error"
)

// EventEnvelope frames every websocket message in both directions.
type EventEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// NewEnvelope marshals data into an envelope. Marshal errors are not
// possible for the payload types used here, so they are swallowed.
func NewEnvelope(event string, data interface{}) EventEnvelope {
	raw, _ := json.Marshal(data)
	return EventEnvelope{Event: event, Data: raw}
}

type JoinConversationPayload struct {
	ConversationID string   `json:"conversationId"`
	UserID         string   `json:"userId"`
	UserType       UserType `json:"userType"`
}

// IncomingMessage is the client-authored part of a send_message payload;
// sender and timestamp are attached server-side.
type IncomingMessage struct {
	Text string      `json:"text"`
	Type MessageType `json:"type,omitempty"`
}

type SendMessagePayload struct {
	ConversationID string          `json:"conversationId"`
	Message        IncomingMessage `json:"message"`
	Sender         Sender          `json:"sender"`
	VehicleID      string          `json:"vehicleId,omitempty"`
}

type InitiateBookingPayload struct {
	ConversationID string         `json:"conversationId"`
	BookingDetails BookingRequest `json:"bookingDetails"`
}

type BookingCreatedPayload struct {
	BookingID string         `json:"bookingId"`
	Details   BookingRequest `json:"details"`
	Message   string         `json:"message"`
}

type BookingErrorPayload struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}
