package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ConversationStatus string

const (
	ConversationStatusActive         ConversationStatus = "active"
	ConversationStatusArchived       ConversationStatus = "archived"
	ConversationStatusBookingCreated ConversationStatus = "booking_created"
	ConversationStatusDeleted        ConversationStatus = "deleted"
)

// Participant is a durable conversation member with read tracking.
type Participant struct {
	UserID   primitive.ObjectID `bson:"userId" json:"userId"`
	UserType UserType           `bson:"userType" json:"userType"`
	LastSeen time.Time          `bson:"lastSeen,omitempty" json:"lastSeen,omitempty"`
}

// StoredSuggestion records an emitted booking suggestion on the durable
// conversation, so a client reloading history can re-render it.
type StoredSuggestion struct {
	Type           string    `bson:"type" json:"type"`
	Message        string    `bson:"message,omitempty" json:"message,omitempty"`
	SuggestedDates []string  `bson:"suggestedDates,omitempty" json:"suggestedDates,omitempty"`
	Accepted       bool      `bson:"accepted" json:"accepted"`
	Timestamp      time.Time `bson:"timestamp" json:"timestamp"`
}

// Conversation is the durable chat log between one renter and one owner
// about one vehicle. The socket-side session cache is a working copy; this
// document is the source of truth.
type Conversation struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Participants  []Participant      `bson:"participants" json:"participants"`
	Vehicle       primitive.ObjectID `bson:"vehicle" json:"vehicle"`
	Messages      []ChatMessage      `bson:"messages" json:"messages"`
	AISuggestions []StoredSuggestion `bson:"aiSuggestions,omitempty" json:"aiSuggestions,omitempty"`
	LastMessageAt time.Time          `bson:"lastMessageAt" json:"lastMessageAt"`
	Status        ConversationStatus `bson:"status" json:"status"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}
