package services

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"rentwheels-backend/models"
)

var ErrVehicleNotFound = errors.New("vehicle not found")

// VehicleService reads vehicle listings for suggestion enrichment. Listing
// management is owned by a different part of the platform.
type VehicleService struct {
	vehicles *mongo.Collection
	users    *mongo.Collection
}

func NewVehicleService(db *mongo.Database) *VehicleService {
	return &VehicleService{
		vehicles: db.Collection("vehicles"),
		users:    db.Collection("users"),
	}
}

// GetVehicleDetails fetches a vehicle and resolves its owner's display name.
func (s *VehicleService) GetVehicleDetails(ctx context.Context, vehicleID string) (*models.VehicleDetails, error) {
	oid, err := primitive.ObjectIDFromHex(vehicleID)
	if err != nil {
		return nil, fmt.Errorf("invalid vehicle ID %q: %w", vehicleID, err)
	}

	var vehicle models.Vehicle
	if err := s.vehicles.FindOne(ctx, bson.M{"_id": oid}).Decode(&vehicle); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrVehicleNotFound
		}
		return nil, fmt.Errorf("fetch vehicle %s: %w", vehicleID, err)
	}

	ownerName := "Unknown"
	var owner models.User
	if err := s.users.FindOne(ctx, bson.M{"_id": vehicle.Owner}).Decode(&owner); err == nil {
		if name := owner.FullName(); name != "" {
			ownerName = name
		}
	}

	name := vehicle.Name
	if vehicle.Brand != "" {
		name = vehicle.Brand + " " + vehicle.Name
	}

	thumbnail := vehicle.Thumbnail
	if thumbnail == "" && len(vehicle.Images) > 0 {
		thumbnail = vehicle.Images[0]
	}

	return &models.VehicleDetails{
		ID:        vehicle.ID.Hex(),
		Name:      name,
		Price:     vehicle.Price,
		Location:  vehicle.Location,
		Type:      vehicle.Type,
		Thumbnail: thumbnail,
		Owner:     ownerName,
	}, nil
}
