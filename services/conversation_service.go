package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rentwheels-backend/models"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
)

// ConversationService is the durable chat store behind the REST history API.
// The websocket session cache reconciles with it only on a best-effort basis
// when a room is first joined.
type ConversationService struct {
	conversations *mongo.Collection
	vehicles      *mongo.Collection
}

func NewConversationService(db *mongo.Database) *ConversationService {
	return &ConversationService{
		conversations: db.Collection("conversations"),
		vehicles:      db.Collection("vehicles"),
	}
}

// ConversationsForUser lists all conversations the user participates in,
// most recently active first.
func (s *ConversationService) ConversationsForUser(ctx context.Context, userID string) ([]models.Conversation, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID %q: %w", userID, err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "lastMessageAt", Value: -1}})
	cursor, err := s.conversations.Find(ctx, bson.M{"participants.userId": oid}, opts)
	if err != nil {
		return nil, fmt.Errorf("find conversations for user %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	conversations := []models.Conversation{}
	if err := cursor.All(ctx, &conversations); err != nil {
		return nil, fmt.Errorf("decode conversations: %w", err)
	}
	return conversations, nil
}

// Conversation fetches a single conversation by id.
func (s *ConversationService) Conversation(ctx context.Context, conversationID string) (*models.Conversation, error) {
	oid, err := primitive.ObjectIDFromHex(conversationID)
	if err != nil {
		return nil, fmt.Errorf("invalid conversation ID %q: %w", conversationID, err)
	}

	var conversation models.Conversation
	if err := s.conversations.FindOne(ctx, bson.M{"_id": oid}).Decode(&conversation); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("fetch conversation %s: %w", conversationID, err)
	}
	return &conversation, nil
}

// FindOrCreate returns the existing conversation between the renter and the
// vehicle's owner, or creates one. The owner is resolved from the vehicle.
func (s *ConversationService) FindOrCreate(ctx context.Context, renterID, vehicleID string) (*models.Conversation, error) {
	renterOID, err := primitive.ObjectIDFromHex(renterID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID %q: %w", renterID, err)
	}
	vehicleOID, err := primitive.ObjectIDFromHex(vehicleID)
	if err != nil {
		return nil, fmt.Errorf("invalid vehicle ID %q: %w", vehicleID, err)
	}

	var vehicle models.Vehicle
	if err := s.vehicles.FindOne(ctx, bson.M{"_id": vehicleOID}).Decode(&vehicle); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrVehicleNotFound
		}
		return nil, fmt.Errorf("fetch vehicle %s: %w", vehicleID, err)
	}

	var existing models.Conversation
	err = s.conversations.FindOne(ctx, bson.M{
		"vehicle":             vehicleOID,
		"participants.userId": bson.M{"$all": bson.A{renterOID, vehicle.Owner}},
	}).Decode(&existing)
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("find conversation: %w", err)
	}

	now := time.Now()
	conversation := models.Conversation{
		Participants: []models.Participant{
			{UserID: renterOID, UserType: models.UserTypeRenter, LastSeen: now},
			{UserID: vehicle.Owner, UserType: models.UserTypeOwner, LastSeen: now},
		},
		Vehicle:       vehicleOID,
		Messages:      []models.ChatMessage{},
		LastMessageAt: now,
		Status:        models.ConversationStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	result, err := s.conversations.InsertOne(ctx, conversation)
	if err != nil {
		return nil, fmt.Errorf("insert conversation: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		conversation.ID = oid
	}
	return &conversation, nil
}

// AppendMessage pushes a message onto the durable log.
func (s *ConversationService) AppendMessage(ctx context.Context, conversationID string, message models.ChatMessage) error {
	oid, err := primitive.ObjectIDFromHex(conversationID)
	if err != nil {
		return fmt.Errorf("invalid conversation ID %q: %w", conversationID, err)
	}

	now := time.Now()
	result, err := s.conversations.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{
			"$push": bson.M{"messages": message},
			"$set":  bson.M{"lastMessageAt": now, "updatedAt": now},
		},
	)
	if err != nil {
		return fmt.Errorf("append message to %s: %w", conversationID, err)
	}
	if result.MatchedCount == 0 {
		return ErrConversationNotFound
	}
	return nil
}

// RecordSuggestion stores an emitted suggestion on the conversation so
// reloading clients can re-render it.
func (s *ConversationService) RecordSuggestion(ctx context.Context, conversationID string, suggestion models.StoredSuggestion) error {
	oid, err := primitive.ObjectIDFromHex(conversationID)
	if err != nil {
		return fmt.Errorf("invalid conversation ID %q: %w", conversationID, err)
	}

	result, err := s.conversations.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{
			"$push": bson.M{"aiSuggestions": suggestion},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("record suggestion on %s: %w", conversationID, err)
	}
	if result.MatchedCount == 0 {
		return ErrConversationNotFound
	}
	return nil
}

// Delete soft-deletes a conversation.
func (s *ConversationService) Delete(ctx context.Context, conversationID string) error {
	oid, err := primitive.ObjectIDFromHex(conversationID)
	if err != nil {
		return fmt.Errorf("invalid conversation ID %q: %w", conversationID, err)
	}

	result, err := s.conversations.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"status": models.ConversationStatusDeleted, "updatedAt": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("delete conversation %s: %w", conversationID, err)
	}
	if result.MatchedCount == 0 {
		return ErrConversationNotFound
	}
	return nil
}
