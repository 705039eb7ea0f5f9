package repository

import (
	"context"
	"fmt"
	"time"

	"safarsathi-service/internal/domain/entity"
	"safarsathi-service/internal/domain/repository"
	"safarsathi-service/pkg/apperror"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoLocationRepository implements the LocationRepository interface
type MongoLocationRepository struct {
	collection *mongo.Collection
}

// NewMongoLocationRepository creates a new MongoDB location repository
func NewMongoLocationRepository(db *mongo.Database) repository.LocationRepository {
	return &MongoLocationRepository{
		collection: db.Collection(collLocations),
	}
}

// Create inserts a new location
func (r *MongoLocationRepository) Create(ctx context.Context, location *entity.Location) error {
	if location.ID == "" {
		location.ID = newID()
	}

	_, err := r.collection.InsertOne(ctx, location)
	if mongo.IsDuplicateKeyError(err) {
		return apperror.Conflict("duplicate_location", "Location with this name already exists.").Wrap(err)
	}
	if err != nil {
		return fmt.Errorf("failed to insert location: %w", err)
	}
	return nil
}

// FindByName finds a location by its unique name
func (r *MongoLocationRepository) FindByName(ctx context.Context, name string) (*entity.Location, error) {
	var location entity.Location
	err := r.collection.FindOne(ctx, bson.M{"name": name}).Decode(&location)
	if err != nil {
		if isNoDocuments(err) {
			return nil, nil
		}
		return nil, err
	}
	return &location, nil
}

// FindByIDs finds multiple locations by ID (batch operation)
func (r *MongoLocationRepository) FindByIDs(ctx context.Context, ids []string) (map[string]*entity.Location, error) {
	result := make(map[string]*entity.Location)
	if len(ids) == 0 {
		return result, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var location entity.Location
		if err := cursor.Decode(&location); err != nil {
			return nil, err
		}
		result[location.ID] = &location
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// List returns every location, newest first
func (r *MongoLocationRepository) List(ctx context.Context) ([]*entity.Location, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var locations []*entity.Location
	if err := cursor.All(ctx, &locations); err != nil {
		return nil, err
	}
	return locations, nil
}

// MongoLocationRequestRepository implements the LocationRequestRepository interface
type MongoLocationRequestRepository struct {
	collection *mongo.Collection
}

// NewMongoLocationRequestRepository creates a new MongoDB location request repository
func NewMongoLocationRequestRepository(db *mongo.Database) repository.LocationRequestRepository {
	return &MongoLocationRequestRepository{
		collection: db.Collection(collLocationRequests),
	}
}

// Create inserts a new location request
func (r *MongoLocationRequestRepository) Create(ctx context.Context, request *entity.LocationRequest) error {
	if request.ID == "" {
		request.ID = newID()
	}

	if _, err := r.collection.InsertOne(ctx, request); err != nil {
		return fmt.Errorf("failed to insert location request: %w", err)
	}
	return nil
}

// FindByID finds a location request by ID
func (r *MongoLocationRequestRepository) FindByID(ctx context.Context, id string) (*entity.LocationRequest, error) {
	var request entity.LocationRequest
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&request)
	if err != nil {
		if isNoDocuments(err) {
			return nil, nil
		}
		return nil, err
	}
	return &request, nil
}

// List returns every location request, newest first
func (r *MongoLocationRequestRepository) List(ctx context.Context) ([]*entity.LocationRequest, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, &options.FindOptions{
		Sort: bson.D{{Key: "requestedAt", Value: -1}},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var requests []*entity.LocationRequest
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

// UpdateStatus applies a review decision if the stored status is still `from`
func (r *MongoLocationRequestRepository) UpdateStatus(ctx context.Context, id string, from, to entity.ReviewStatus, reviewer string, at time.Time) (*entity.LocationRequest, error) {
	var request entity.LocationRequest
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": bson.M{
			"status":     to,
			"approvedBy": reviewer,
			"reviewedAt": at,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&request)
	if err != nil {
		if isNoDocuments(err) {
			return nil, apperror.ErrInvalidTransition.WithMessage("The location request is no longer " + string(from) + ".")
		}
		return nil, fmt.Errorf("failed to update location request status: %w", err)
	}

	return &request, nil
}
