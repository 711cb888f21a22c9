package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"rentwheels-backend/models"
)

// ConversationAnalyzer produces a verdict over a conversation's messages.
type ConversationAnalyzer interface {
	AnalyzeConversation(messages []models.ChatMessage) models.AnalysisResult
}

// VehicleLookup enriches a booking suggestion with vehicle context.
type VehicleLookup interface {
	GetVehicleDetails(ctx context.Context, vehicleID string) (*models.VehicleDetails, error)
}

// BookingCreator materializes an accepted suggestion into a booking record.
type BookingCreator interface {
	CreateBooking(ctx context.Context, req models.BookingRequest) (string, error)
}

// HistoryStore is the durable conversation log the hub reconciles with on
// join and records emitted suggestions to. Both uses are best-effort.
type HistoryStore interface {
	Conversation(ctx context.Context, conversationID string) (*models.Conversation, error)
	RecordSuggestion(ctx context.Context, conversationID string, suggestion models.StoredSuggestion) error
}

const suggestionMessage = "I notice you're interested in booking this vehicle. Would you like to proceed?"

// inboundEvent is a decoded client frame awaiting dispatch.
type inboundEvent struct {
	client   *Client
	envelope models.EventEnvelope
}

// outboundEvent routes an emission back through the dispatcher. Either
// conversationID (room broadcast) or target (unicast) is set.
type outboundEvent struct {
	conversationID string
	target         *Client
	envelope       models.EventEnvelope
}

// ChatHub routes socket events into the session registry and the analyzer,
// and broadcasts results to all sockets subscribed to a conversation. A
// single dispatcher goroutine processes events in arrival order, so
// per-conversation message ordering is preserved without locking the room
// maps. Slow I/O (vehicle lookup, booking persistence, history seeding)
// runs on worker goroutines and re-enters the dispatcher via the emit
// channel.
type ChatHub struct {
	registry *SessionRegistry
	analyzer ConversationAnalyzer
	vehicles VehicleLookup
	bookings BookingCreator
	history  HistoryStore // optional

	minMessages   int
	lookupTimeout time.Duration

	rooms      map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	events     chan inboundEvent
	emit       chan outboundEvent
}

// NewChatHub wires the hub's collaborators. history may be nil, which
// disables session seeding and suggestion recording.
func NewChatHub(
	registry *SessionRegistry,
	analyzer ConversationAnalyzer,
	vehicles VehicleLookup,
	bookings BookingCreator,
	history HistoryStore,
	minMessages int,
	lookupTimeout time.Duration,
) *ChatHub {
	return &ChatHub{
		registry:      registry,
		analyzer:      analyzer,
		vehicles:      vehicles,
		bookings:      bookings,
		history:       history,
		minMessages:   minMessages,
		lookupTimeout: lookupTimeout,
		rooms:         make(map[string]map[*Client]bool),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		events:        make(chan inboundEvent),
		emit:          make(chan outboundEvent, 64),
	}
}

// Run is the dispatcher loop. It must be started exactly once, before any
// connection is accepted.
func (h *ChatHub) Run() {
	for {
		select {
		case client := <-h.register:
			log.Printf("Client connected: %s", client.id)

		case client := <-h.unregister:
			h.disconnect(client)

		case event := <-h.events:
			h.dispatch(event)

		case out := <-h.emit:
			h.deliver(out)
		}
	}
}

func (h *ChatHub) dispatch(event inboundEvent) {
	switch event.envelope.Event {
	case models.EventJoinConversation:
		var payload models.JoinConversationPayload
		if err := json.Unmarshal(event.envelope.Data, &payload); err != nil {
			log.Printf("Malformed %s payload: %v", event.envelope.Event, err)
			return
		}
		h.handleJoin(event.client, payload)

	case models.EventSendMessage:
		var payload models.SendMessagePayload
		if err := json.Unmarshal(event.envelope.Data, &payload); err != nil {
			log.Printf("Malformed %s payload: %v", event.envelope.Event, err)
			return
		}
		h.handleSendMessage(payload)

	case models.EventInitiateBooking:
		var payload models.InitiateBookingPayload
		if err := json.Unmarshal(event.envelope.Data, &payload); err != nil {
			log.Printf("Malformed %s payload: %v", event.envelope.Event, err)
			return
		}
		h.handleInitiateBooking(event.client, payload)

	default:
		log.Printf("Unknown event %q from client %s", event.envelope.Event, event.client.id)
	}
}

func (h *ChatHub) handleJoin(client *Client, payload models.JoinConversationPayload) {
	if payload.ConversationID == "" {
		return
	}

	fresh := false
	if _, exists := h.registry.Session(payload.ConversationID); !exists {
		fresh = true
	}

	h.registry.Join(payload.ConversationID, client.id, payload.UserID, payload.UserType)

	room := h.rooms[payload.ConversationID]
	if room == nil {
		room = make(map[*Client]bool)
		h.rooms[payload.ConversationID] = room
	}
	room[client] = true
	client.rooms[payload.ConversationID] = true

	log.Printf("%s joined conversation: %s", payload.UserType, payload.ConversationID)

	// Best-effort history population for a brand-new session. A failure
	// here only means the analyzer starts from an empty window.
	if fresh && h.history != nil {
		go h.seedSession(payload.ConversationID)
	}
}

func (h *ChatHub) seedSession(conversationID string) {
	ctx, cancel := context.WithTimeout(context.Background(), h.lookupTimeout)
	defer cancel()

	conversation, err := h.history.Conversation(ctx, conversationID)
	if err != nil {
		log.Printf("History seed for conversation %s skipped: %v", conversationID, err)
		return
	}

	messages := conversation.Messages
	h.registry.SeedMessages(conversationID, messages)
}

func (h *ChatHub) handleSendMessage(payload models.SendMessagePayload) {
	message := models.ChatMessage{
		ID:        newMessageID(),
		Text:      payload.Message.Text,
		Sender:    payload.Sender,
		Timestamp: time.Now(),
		Type:      payload.Message.Type,
	}
	if message.Type == "" {
		message.Type = models.MessageTypeText
	}

	count, ok := h.registry.RecordMessage(payload.ConversationID, message, payload.VehicleID)
	if !ok {
		// No live session; the sender never joined this room.
		log.Printf("Dropping message for unknown conversation %s", payload.ConversationID)
		return
	}

	h.broadcast(payload.ConversationID, models.NewEnvelope(models.EventReceiveMessage, message))

	if count < h.minMessages {
		return
	}

	result := h.analyzer.AnalyzeConversation(h.registry.Messages(payload.ConversationID))
	if !result.IsBookingIntent {
		return
	}

	vehicleID, known := h.registry.VehicleID(payload.ConversationID)
	if !known {
		log.Printf("Booking intent in conversation %s but no vehicle context; suggestion suppressed", payload.ConversationID)
		return
	}

	go h.emitSuggestion(payload.ConversationID, vehicleID, result.SuggestedDates)
}

// emitSuggestion fetches vehicle context off the dispatcher goroutine and
// routes the suggestion back through it. A lookup failure suppresses the
// emission for this turn only.
func (h *ChatHub) emitSuggestion(conversationID, vehicleID string, suggestedDates []string) {
	ctx, cancel := context.WithTimeout(context.Background(), h.lookupTimeout)
	defer cancel()

	details, err := h.vehicles.GetVehicleDetails(ctx, vehicleID)
	if err != nil {
		log.Printf("Error fetching vehicle details for %s: %v", vehicleID, err)
		return
	}

	suggestion := models.BookingSuggestion{
		Type:           models.SuggestionTypeBooking,
		VehicleDetails: details,
		SuggestedDates: suggestedDates,
		Message:        suggestionMessage,
	}

	h.emit <- outboundEvent{
		conversationID: conversationID,
		envelope:       models.NewEnvelope(models.EventAISuggestion, suggestion),
	}

	if h.history != nil {
		stored := models.StoredSuggestion{
			Type:           suggestion.Type,
			Message:        suggestion.Message,
			SuggestedDates: suggestedDates,
			Timestamp:      time.Now(),
		}
		if err := h.history.RecordSuggestion(ctx, conversationID, stored); err != nil {
			log.Printf("Recording suggestion on conversation %s failed: %v", conversationID, err)
		}
	}
}

func (h *ChatHub) handleInitiateBooking(client *Client, payload models.InitiateBookingPayload) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), h.lookupTimeout)
		defer cancel()

		bookingID, err := h.bookings.CreateBooking(ctx, payload.BookingDetails)
		if err != nil {
			log.Printf("Booking creation failed: %v", err)
			h.emit <- outboundEvent{
				target: client,
				envelope: models.NewEnvelope(models.EventBookingError, models.BookingErrorPayload{
					Message: "Failed to create booking. Please try again.",
					Error:   err.Error(),
				}),
			}
			return
		}

		h.emit <- outboundEvent{
			conversationID: payload.ConversationID,
			envelope: models.NewEnvelope(models.EventBookingCreated, models.BookingCreatedPayload{
				BookingID: bookingID,
				Details:   payload.BookingDetails,
				Message:   "Booking has been initiated successfully!",
			}),
		}
	}()
}

func (h *ChatHub) deliver(out outboundEvent) {
	if out.target != nil {
		out.target.enqueue(out.envelope)
		return
	}
	h.broadcast(out.conversationID, out.envelope)
}

func (h *ChatHub) broadcast(conversationID string, envelope models.EventEnvelope) {
	for client := range h.rooms[conversationID] {
		client.enqueue(envelope)
	}
}

func (h *ChatHub) disconnect(client *Client) {
	h.registry.Leave(client.id)

	for conversationID := range client.rooms {
		room := h.rooms[conversationID]
		delete(room, client)
		if len(room) == 0 {
			delete(h.rooms, conversationID)
		}
	}

	client.closeSend()
	log.Printf("Client disconnected: %s", client.id)
}
