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

// MongoServiceOfferingRepository implements the ServiceOfferingRepository interface
type MongoServiceOfferingRepository struct {
	collection *mongo.Collection
}

// NewMongoServiceOfferingRepository creates a new MongoDB service offering repository
func NewMongoServiceOfferingRepository(db *mongo.Database) repository.ServiceOfferingRepository {
	return &MongoServiceOfferingRepository{
		collection: db.Collection(collOfferings),
	}
}

// Create inserts a new offering
func (r *MongoServiceOfferingRepository) Create(ctx context.Context, offering *entity.ServiceOffering) error {
	if offering.ID == "" {
		offering.ID = newID()
	}

	_, err := r.collection.InsertOne(ctx, offering)
	if mongo.IsDuplicateKeyError(err) {
		return apperror.Conflict("duplicate_offering", "You have already made a request with the same specific type and price.").Wrap(err)
	}
	if err != nil {
		return fmt.Errorf("failed to insert service offering: %w", err)
	}
	return nil
}

// FindByID finds an offering by ID
func (r *MongoServiceOfferingRepository) FindByID(ctx context.Context, id string) (*entity.ServiceOffering, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindApproved finds an offering by ID only if it is approved
func (r *MongoServiceOfferingRepository) FindApproved(ctx context.Context, id string) (*entity.ServiceOffering, error) {
	return r.findOne(ctx, bson.M{"_id": id, "status": entity.StatusApproved})
}

func (r *MongoServiceOfferingRepository) findOne(ctx context.Context, filter bson.M) (*entity.ServiceOffering, error) {
	var offering entity.ServiceOffering
	err := r.collection.FindOne(ctx, filter).Decode(&offering)
	if err != nil {
		if isNoDocuments(err) {
			return nil, nil
		}
		return nil, err
	}
	return &offering, nil
}

// FindByIDs finds multiple offerings by ID (batch operation)
func (r *MongoServiceOfferingRepository) FindByIDs(ctx context.Context, ids []string) (map[string]*entity.ServiceOffering, error) {
	result := make(map[string]*entity.ServiceOffering)
	if len(ids) == 0 {
		return result, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var offering entity.ServiceOffering
		if err := cursor.Decode(&offering); err != nil {
			return nil, err
		}
		result[offering.ID] = &offering
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// Exists reports whether the provider already requested this type at this price
func (r *MongoServiceOfferingRepository) Exists(ctx context.Context, providerID, specificType string, price float64) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{
		"provider":     providerID,
		"specificType": specificType,
		"price":        price,
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// List finds offerings newest first
func (r *MongoServiceOfferingRepository) List(ctx context.Context, f repository.OfferingFilter) ([]*entity.ServiceOffering, error) {
	filter := bson.M{}
	if f.ProviderID != "" {
		filter["provider"] = f.ProviderID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}

	cursor, err := r.collection.Find(ctx, filter, &options.FindOptions{
		Sort: bson.D{{Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var offerings []*entity.ServiceOffering
	if err := cursor.All(ctx, &offerings); err != nil {
		return nil, err
	}

	return offerings, nil
}

// UpdateStatus applies a review decision if the stored status is still `from`
func (r *MongoServiceOfferingRepository) UpdateStatus(ctx context.Context, id string, from, to entity.ReviewStatus, approvedBy string, at time.Time) (*entity.ServiceOffering, error) {
	set := bson.M{
		"status":     to,
		"reviewedAt": at,
	}
	// approvedBy is only stamped on approval
	if to == entity.StatusApproved {
		set["approvedBy"] = approvedBy
	}

	var offering entity.ServiceOffering
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&offering)
	if err != nil {
		if isNoDocuments(err) {
			return nil, apperror.ErrInvalidTransition.WithMessage("The service offering is no longer " + string(from) + ".")
		}
		return nil, fmt.Errorf("failed to update offering status: %w", err)
	}

	return &offering, nil
}
