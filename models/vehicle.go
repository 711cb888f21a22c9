package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type VehicleStatus string

const (
	VehicleStatusPending  VehicleStatus = "pending"
	VehicleStatusApproved VehicleStatus = "approved"
	VehicleStatusRejected VehicleStatus = "rejected"
)

// Vehicle is a listing document. Listing CRUD and the approval workflow are
// handled elsewhere; the chat backend only reads these.
type Vehicle struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Owner       primitive.ObjectID `bson:"owner" json:"owner"`
	Name        string             `bson:"name" json:"name"`
	Brand       string             `bson:"brand,omitempty" json:"brand,omitempty"`
	Price       float64            `bson:"price,omitempty" json:"price,omitempty"`
	Type        string             `bson:"type,omitempty" json:"type,omitempty"`
	Seats       int                `bson:"seats,omitempty" json:"seats,omitempty"`
	Location    string             `bson:"location,omitempty" json:"location,omitempty"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Images      []string           `bson:"images,omitempty" json:"images,omitempty"`
	Thumbnail   string             `bson:"thumbnail,omitempty" json:"thumbnail,omitempty"`
	Status      VehicleStatus      `bson:"status,omitempty" json:"status,omitempty"`
	OwnerEmail  string             `bson:"ownerEmail,omitempty" json:"ownerEmail,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
}

// VehicleDetails is the trimmed view embedded in a booking suggestion.
type VehicleDetails struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Location  string  `json:"location"`
	Type      string  `json:"type"`
	Thumbnail string  `json:"thumbnail"`
	Owner     string  `json:"owner"`
}
