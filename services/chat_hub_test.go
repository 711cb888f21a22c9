package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"rentwheels-backend/models"
	"rentwheels-backend/utils"
)

type spyAnalyzer struct {
	mu     sync.Mutex
	calls  int
	result models.AnalysisResult
}

func (s *spyAnalyzer) AnalyzeConversation(messages []models.ChatMessage) models.AnalysisResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.result
}

func (s *spyAnalyzer) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type stubVehicles struct {
	details *models.VehicleDetails
	err     error
}

func (s *stubVehicles) GetVehicleDetails(ctx context.Context, vehicleID string) (*models.VehicleDetails, error) {
	return s.details, s.err
}

type stubBookings struct {
	bookingID string
	err       error
}

func (s *stubBookings) CreateBooking(ctx context.Context, req models.BookingRequest) (string, error) {
	return s.bookingID, s.err
}

// newHubServer runs the hub's dispatcher and exposes it over a test
// websocket endpoint.
func newHubServer(t *testing.T, hub *ChatHub) string {
	t.Helper()

	go hub.Run()

	upgrader := websocket.Upgrader{
		CheckOrigin: func(*http.Request) bool { return true },
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		client := NewClient(hub, conn)
		go client.WritePump()
		go client.ReadPump()
	}))
	t.Cleanup(server.Close)

	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func dial(t *testing.T, wsURL string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", wsURL, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendEvent(t *testing.T, conn *websocket.Conn, event string, payload interface{}) {
	t.Helper()
	if err := conn.WriteJSON(models.NewEnvelope(event, payload)); err != nil {
		t.Fatalf("write %s: %v", event, err)
	}
}

// readEvent blocks for the next frame and fails the test if it is not the
// expected event.
func readEvent(t *testing.T, conn *websocket.Conn, want string) models.EventEnvelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var envelope models.EventEnvelope
	if err := conn.ReadJSON(&envelope); err != nil {
		t.Fatalf("waiting for %s: %v", want, err)
	}
	if envelope.Event != want {
		t.Fatalf("event = %q, want %q", envelope.Event, want)
	}
	return envelope
}

// expectSilence asserts no frame arrives within the window. The connection
// is unusable afterwards, so this must be the last read on it.
func expectSilence(t *testing.T, conn *websocket.Conn, window time.Duration) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(window))
	var envelope models.EventEnvelope
	if err := conn.ReadJSON(&envelope); err == nil {
		t.Fatalf("unexpected frame %q", envelope.Event)
	}
}

func waitForParticipants(t *testing.T, registry *SessionRegistry, conversationID string, want int) {
	t.Helper()
	for i := 0; i < 100; i++ {
		if session, ok := registry.Session(conversationID); ok && len(session.Participants) == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("conversation %s never reached %d participants", conversationID, want)
}

func joinConversation(t *testing.T, conn *websocket.Conn, conversationID, userID string, userType models.UserType) {
	t.Helper()
	sendEvent(t, conn, models.EventJoinConversation, models.JoinConversationPayload{
		ConversationID: conversationID,
		UserID:         userID,
		UserType:       userType,
	})
}

func chatText(conversationID, text, vehicleID string, sender models.Sender) models.SendMessagePayload {
	return models.SendMessagePayload{
		ConversationID: conversationID,
		Message:        models.IncomingMessage{Text: text},
		Sender:         sender,
		VehicleID:      vehicleID,
	}
}

func TestHubEmitsSuggestionAfterBookingIntent(t *testing.T) {
	classifier := utils.NewIntentClassifier()
	if err := classifier.Train(utils.TrainingCorpus()); err != nil {
		t.Fatalf("Train: %v", err)
	}
	analyzer := NewAnalyzerService(classifier, 5, 0.65)

	registry := NewSessionRegistry()
	vehicles := &stubVehicles{details: &models.VehicleDetails{
		ID:    "veh-1",
		Name:  "Toyota Hiace",
		Price: 120,
		Owner: "Priya Nair",
	}}
	hub := NewChatHub(registry, analyzer, vehicles, &stubBookings{}, nil, 3, time.Second)
	wsURL := newHubServer(t, hub)

	renter := dial(t, wsURL)
	owner := dial(t, wsURL)
	joinConversation(t, renter, "c1", "renter-1", models.UserTypeRenter)
	joinConversation(t, owner, "c1", "owner-1", models.UserTypeOwner)
	waitForParticipants(t, registry, "c1", 2)

	sender := models.Sender{UserID: "renter-1", UserType: models.UserTypeRenter, Name: "Arun"}
	texts := []string{
		"Hi, is this van still available?",
		"What is the price per day?",
		"Great, I want to book it for this weekend. Can we confirm for tomorrow?",
	}
	for i, text := range texts {
		vehicleID := ""
		if i == 0 {
			vehicleID = "veh-1"
		}
		sendEvent(t, renter, models.EventSendMessage, chatText("c1", text, vehicleID, sender))
	}

	// Both sides see the messages in send order, then the suggestion.
	for _, conn := range []*websocket.Conn{renter, owner} {
		for _, text := range texts {
			envelope := readEvent(t, conn, models.EventReceiveMessage)
			var message models.ChatMessage
			if err := json.Unmarshal(envelope.Data, &message); err != nil {
				t.Fatalf("decode message: %v", err)
			}
			if message.Text != text {
				t.Errorf("message text = %q, want %q", message.Text, text)
			}
			if message.ID == "" || message.Timestamp.IsZero() {
				t.Error("server did not stamp message ID and timestamp")
			}
		}

		envelope := readEvent(t, conn, models.EventAISuggestion)
		var suggestion models.BookingSuggestion
		if err := json.Unmarshal(envelope.Data, &suggestion); err != nil {
			t.Fatalf("decode suggestion: %v", err)
		}
		if suggestion.Type != models.SuggestionTypeBooking {
			t.Errorf("suggestion type = %q, want %q", suggestion.Type, models.SuggestionTypeBooking)
		}
		if suggestion.VehicleDetails == nil || suggestion.VehicleDetails.Name != "Toyota Hiace" {
			t.Errorf("suggestion vehicle details = %+v", suggestion.VehicleDetails)
		}
		for _, want := range []string{"this weekend", "tomorrow"} {
			found := false
			for _, date := range suggestion.SuggestedDates {
				if strings.EqualFold(date, want) {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("suggested dates %v missing %q", suggestion.SuggestedDates, want)
			}
		}
		if suggestion.Message == "" {
			t.Error("suggestion message empty")
		}
	}
}

func TestHubDoesNotAnalyzeBelowMessageMinimum(t *testing.T) {
	analyzer := &spyAnalyzer{result: models.AnalysisResult{IsBookingIntent: true}}
	registry := NewSessionRegistry()
	hub := NewChatHub(registry, analyzer, &stubVehicles{}, &stubBookings{}, nil, 3, time.Second)
	wsURL := newHubServer(t, hub)

	conn := dial(t, wsURL)
	joinConversation(t, conn, "c1", "renter-1", models.UserTypeRenter)
	waitForParticipants(t, registry, "c1", 1)

	sender := models.Sender{UserID: "renter-1", UserType: models.UserTypeRenter}
	sendEvent(t, conn, models.EventSendMessage, chatText("c1", "hello", "veh-1", sender))
	sendEvent(t, conn, models.EventSendMessage, chatText("c1", "nice van", "", sender))

	readEvent(t, conn, models.EventReceiveMessage)
	readEvent(t, conn, models.EventReceiveMessage)
	expectSilence(t, conn, 200*time.Millisecond)

	if got := analyzer.callCount(); got != 0 {
		t.Errorf("analyzer invoked %d times below the message minimum", got)
	}
}

func TestHubSuppressesSuggestionWhenVehicleLookupFails(t *testing.T) {
	analyzer := &spyAnalyzer{result: models.AnalysisResult{
		Intent:          models.IntentBookingIntent,
		Score:           0.9,
		IsBookingIntent: true,
		SuggestedDates:  []string{"tomorrow"},
	}}
	registry := NewSessionRegistry()
	vehicles := &stubVehicles{err: errors.New("vehicle lookup down")}
	hub := NewChatHub(registry, analyzer, vehicles, &stubBookings{}, nil, 1, time.Second)
	wsURL := newHubServer(t, hub)

	conn := dial(t, wsURL)
	joinConversation(t, conn, "c1", "renter-1", models.UserTypeRenter)
	waitForParticipants(t, registry, "c1", 1)

	sender := models.Sender{UserID: "renter-1", UserType: models.UserTypeRenter}
	sendEvent(t, conn, models.EventSendMessage, chatText("c1", "I will take it tomorrow", "veh-1", sender))

	// The message still goes out; only the suggestion is suppressed.
	readEvent(t, conn, models.EventReceiveMessage)
	expectSilence(t, conn, 200*time.Millisecond)

	if got := analyzer.callCount(); got != 1 {
		t.Errorf("analyzer calls = %d, want 1", got)
	}
}

func TestHubBookingErrorGoesToInitiatorOnly(t *testing.T) {
	analyzer := &spyAnalyzer{}
	registry := NewSessionRegistry()
	bookings := &stubBookings{err: errors.New("overlapping booking")}
	hub := NewChatHub(registry, analyzer, &stubVehicles{}, bookings, nil, 3, time.Second)
	wsURL := newHubServer(t, hub)

	initiator := dial(t, wsURL)
	other := dial(t, wsURL)
	joinConversation(t, initiator, "c1", "renter-1", models.UserTypeRenter)
	joinConversation(t, other, "c1", "owner-1", models.UserTypeOwner)
	waitForParticipants(t, registry, "c1", 2)

	sendEvent(t, initiator, models.EventInitiateBooking, models.InitiateBookingPayload{
		ConversationID: "c1",
		BookingDetails: models.BookingRequest{VehicleID: "veh-1", UserID: "renter-1"},
	})

	envelope := readEvent(t, initiator, models.EventBookingError)
	var payload models.BookingErrorPayload
	if err := json.Unmarshal(envelope.Data, &payload); err != nil {
		t.Fatalf("decode booking_error: %v", err)
	}
	if payload.Message == "" || payload.Error != "overlapping booking" {
		t.Errorf("booking_error payload = %+v", payload)
	}

	expectSilence(t, other, 200*time.Millisecond)
}

func TestHubBroadcastsBookingCreated(t *testing.T) {
	analyzer := &spyAnalyzer{}
	registry := NewSessionRegistry()
	bookings := &stubBookings{bookingID: "66f1a2b3c4d5e6f7a8b9c0d1"}
	hub := NewChatHub(registry, analyzer, &stubVehicles{}, bookings, nil, 3, time.Second)
	wsURL := newHubServer(t, hub)

	initiator := dial(t, wsURL)
	other := dial(t, wsURL)
	joinConversation(t, initiator, "c1", "renter-1", models.UserTypeRenter)
	joinConversation(t, other, "c1", "owner-1", models.UserTypeOwner)
	waitForParticipants(t, registry, "c1", 2)

	request := models.BookingRequest{VehicleID: "veh-1", UserID: "renter-1"}
	sendEvent(t, initiator, models.EventInitiateBooking, models.InitiateBookingPayload{
		ConversationID: "c1",
		BookingDetails: request,
	})

	for _, conn := range []*websocket.Conn{initiator, other} {
		envelope := readEvent(t, conn, models.EventBookingCreated)
		var payload models.BookingCreatedPayload
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			t.Fatalf("decode booking_created: %v", err)
		}
		if payload.BookingID != bookings.bookingID {
			t.Errorf("bookingId = %q, want %q", payload.BookingID, bookings.bookingID)
		}
		if payload.Details.VehicleID != request.VehicleID {
			t.Errorf("details vehicleId = %q, want %q", payload.Details.VehicleID, request.VehicleID)
		}
	}
}
