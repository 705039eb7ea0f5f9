package repository

import (
	"context"
	"fmt"

	"safarsathi-service/internal/domain/entity"
	"safarsathi-service/internal/domain/repository"
	"safarsathi-service/pkg/apperror"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoBookingRepository implements the BookingRepository interface
type MongoBookingRepository struct {
	collection *mongo.Collection
}

// NewMongoBookingRepository creates a new MongoDB booking repository
func NewMongoBookingRepository(db *mongo.Database) repository.BookingRepository {
	return &MongoBookingRepository{
		collection: db.Collection(collBookings),
	}
}

// Create inserts a new booking
func (r *MongoBookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	if booking.ID == "" {
		booking.ID = newID()
	}

	_, err := r.collection.InsertOne(ctx, booking)
	if mongo.IsDuplicateKeyError(err) {
		return apperror.Conflict("already_booked", "You have already booked this package.").Wrap(err)
	}
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}

// Exists reports whether the tourist already booked the package
func (r *MongoBookingRepository) Exists(ctx context.Context, touristID, packageID string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{
		"tourist": touristID,
		"package": packageID,
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListByTourist finds a tourist's bookings, most recent first
func (r *MongoBookingRepository) ListByTourist(ctx context.Context, touristID string) ([]*entity.Booking, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"tourist": touristID}, &options.FindOptions{
		Sort: bson.D{{Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var bookings []*entity.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, err
	}

	return bookings, nil
}
