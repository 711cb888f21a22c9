package models

import (
	"time"
)

type Intent string

const (
	IntentBookingIntent  Intent = "booking_intent"
	IntentGeneralInquiry Intent = "general_inquiry"
	IntentAvailability   Intent = "availability"
	IntentNegotiation    Intent = "negotiation"
	IntentUnknown        Intent = "unknown"
)

// UserType identifies a participant's role in a conversation
type UserType string

const (
	UserTypeRenter UserType = "renter"
	UserTypeOwner  UserType = "owner"
	UserTypeAdmin  UserType = "admin"
	UserTypeSystem UserType = "system"
)

type MessageType string

const (
	MessageTypeText    MessageType = "text"
	MessageTypeImage   MessageType = "image"
	MessageTypeSystem  MessageType = "system"
	MessageTypeBooking MessageType = "booking"
)

// Sender identifies who wrote a message
type Sender struct {
	UserID   string   `bson:"userId" json:"userId"`
	UserType UserType `bson:"userType" json:"userType"`
	Name     string   `bson:"name,omitempty" json:"name,omitempty"`
}

// ChatMessage is a single message in a conversation. Messages are immutable
// once appended; ordering is insertion order within a conversation.
type ChatMessage struct {
	ID        string      `bson:"id,omitempty" json:"id,omitempty"`
	Text      string      `bson:"text" json:"text"`
	Sender    Sender      `bson:"sender" json:"sender"`
	Timestamp time.Time   `bson:"timestamp" json:"timestamp"`
	Type      MessageType `bson:"type,omitempty" json:"type,omitempty"`
}

// AnalysisResult is the analyzer's verdict over a conversation's recent
// messages. Recomputed from scratch on each qualifying message, never stored.
type AnalysisResult struct {
	Intent                  Intent   `json:"intent"`
	Score                   float64  `json:"score"`
	SuggestedDates          []string `json:"suggestedDates"`
	IsBookingIntent         bool     `json:"isBookingIntent"`
	ContainsBookingKeywords bool     `json:"containsBookingKeywords"`
}

// BookingSuggestion is the payload broadcast as an ai_suggestion event when
// the analyzer reports booking intent.
type BookingSuggestion struct {
	Type           string          `json:"type"`
	VehicleDetails *VehicleDetails `json:"vehicleDetails"`
	SuggestedDates []string        `json:"suggestedDates"`
	Message        string          `json:"message"`
}

const SuggestionTypeBooking = "booking_suggestion"
