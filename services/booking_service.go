package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"rentwheels-backend/models"
)

// BookingService materializes accepted booking suggestions into persisted
// booking records. Everything past creation (confirmation, cancellation)
// belongs to the booking workflow proper.
type BookingService struct {
	bookings *mongo.Collection
}

func NewBookingService(db *mongo.Database) *BookingService {
	return &BookingService{
		bookings: db.Collection("bookings"),
	}
}

// CreateBooking inserts a pending booking originating from the chat flow and
// returns its id.
func (s *BookingService) CreateBooking(ctx context.Context, req models.BookingRequest) (string, error) {
	vehicleOID, err := primitive.ObjectIDFromHex(req.VehicleID)
	if err != nil {
		return "", fmt.Errorf("invalid vehicle ID %q: %w", req.VehicleID, err)
	}

	renterOID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		return "", fmt.Errorf("invalid user ID %q: %w", req.UserID, err)
	}

	if req.Dates.StartDate.IsZero() || req.Dates.EndDate.IsZero() {
		return "", errors.New("booking dates are required")
	}
	if req.Dates.EndDate.Before(req.Dates.StartDate) {
		return "", errors.New("booking end date is before start date")
	}

	now := time.Now()
	booking := models.Booking{
		VehicleID:  vehicleOID,
		RenterID:   renterOID,
		StartDate:  req.Dates.StartDate,
		EndDate:    req.Dates.EndDate,
		Status:     models.BookingStatusPending,
		CreatedVia: models.BookingSourceAIChat,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	result, err := s.bookings.InsertOne(ctx, booking)
	if err != nil {
		return "", fmt.Errorf("insert booking: %w", err)
	}

	id, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", errors.New("unexpected inserted ID type")
	}
	return id.Hex(), nil
}
