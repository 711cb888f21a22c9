package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

// BookingDates is the date range a renter accepted.
type BookingDates struct {
	StartDate time.Time `bson:"startDate" json:"startDate"`
	EndDate   time.Time `bson:"endDate" json:"endDate"`
}

// BookingRequest is what an initiate_booking event carries.
type BookingRequest struct {
	VehicleID string       `json:"vehicleId"`
	UserID    string       `json:"userId"`
	Dates     BookingDates `json:"dates"`
}

// Booking is the persisted record created when a renter accepts a
// booking suggestion. Status transitions past "pending" belong to the
// booking service proper.
type Booking struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VehicleID  primitive.ObjectID `bson:"vehicleId" json:"vehicleId"`
	RenterID   primitive.ObjectID `bson:"renterId" json:"renterId"`
	StartDate  time.Time          `bson:"startDate" json:"startDate"`
	EndDate    time.Time          `bson:"endDate" json:"endDate"`
	Status     BookingStatus      `bson:"status" json:"status"`
	CreatedVia string             `bson:"createdVia,omitempty" json:"createdVia,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

const BookingSourceAIChat = "ai_chat"
