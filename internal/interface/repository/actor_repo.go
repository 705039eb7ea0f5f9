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

// MongoActorRepository implements the ActorRepository interface
type MongoActorRepository struct {
	collection *mongo.Collection
}

// NewMongoActorRepository creates a new MongoDB actor repository
func NewMongoActorRepository(db *mongo.Database) repository.ActorRepository {
	return &MongoActorRepository{
		collection: db.Collection(collUsers),
	}
}

// Create inserts a new actor
func (r *MongoActorRepository) Create(ctx context.Context, actor *entity.Actor) error {
	if actor.ID == "" {
		actor.ID = newID()
	}
	if actor.CreatedAt.IsZero() {
		actor.CreatedAt = time.Now()
	}

	_, err := r.collection.InsertOne(ctx, actor)
	if mongo.IsDuplicateKeyError(err) {
		return apperror.Conflict("duplicate_email", "User with this email already exists.").Wrap(err)
	}
	if err != nil {
		return fmt.Errorf("failed to insert actor: %w", err)
	}
	return nil
}

// FindByID finds an actor by ID
func (r *MongoActorRepository) FindByID(ctx context.Context, id string) (*entity.Actor, error) {
	var actor entity.Actor
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&actor)
	if err != nil {
		if isNoDocuments(err) {
			return nil, nil
		}
		return nil, err
	}
	return &actor, nil
}

// FindByIDs finds multiple actors by ID (batch operation)
func (r *MongoActorRepository) FindByIDs(ctx context.Context, ids []string) (map[string]*entity.Actor, error) {
	result := make(map[string]*entity.Actor)
	if len(ids) == 0 {
		return result, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var actor entity.Actor
		if err := cursor.Decode(&actor); err != nil {
			return nil, err
		}
		result[actor.ID] = &actor
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// FindByEmail finds an actor by email address
func (r *MongoActorRepository) FindByEmail(ctx context.Context, email string) (*entity.Actor, error) {
	var actor entity.Actor
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&actor)
	if err != nil {
		if isNoDocuments(err) {
			return nil, nil
		}
		return nil, err
	}
	return &actor, nil
}

// FindProviders searches service providers
func (r *MongoActorRepository) FindProviders(ctx context.Context, f repository.ProviderFilter) ([]*entity.Actor, error) {
	filter := bson.M{"role": entity.RoleServiceProvider}

	if f.Email != "" {
		filter["email"] = f.Email
	}
	if f.FirstName != "" {
		filter["firstName"] = f.FirstName
	}
	if f.LastName != "" {
		filter["lastName"] = f.LastName
	}
	if f.Phone != "" {
		filter["phone"] = f.Phone
	}
	if f.ServiceType != "" {
		filter["provider.serviceType"] = f.ServiceType
	}
	if f.Experience != nil {
		filter["provider.individual.experience"] = *f.Experience
	}
	if len(f.Languages) > 0 {
		filter["provider.individual.languages"] = bson.M{"$in": f.Languages}
	}
	if len(f.Specialization) > 0 {
		filter["provider.individual.specialization"] = bson.M{"$in": f.Specialization}
	}
	if f.MinRating != nil {
		filter["provider.individual.rating"] = bson.M{"$gte": *f.MinRating}
	}
	if f.OrganizationName != "" {
		filter["provider.organization.organizationName"] = f.OrganizationName
	}
	if f.LicenseNumber != "" {
		filter["provider.organization.licenseNumber"] = f.LicenseNumber
	}
	if f.Website != "" {
		filter["provider.organization.website"] = f.Website
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var actors []*entity.Actor
	if err := cursor.All(ctx, &actors); err != nil {
		return nil, err
	}

	return actors, nil
}

// UpdateOrganizationImage replaces an organization's image URL
func (r *MongoActorRepository) UpdateOrganizationImage(ctx context.Context, id, imageURL string) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "provider.serviceType": entity.ProviderOrganization},
		bson.M{"$set": bson.M{"provider.organization.organizationImg": imageURL}},
	)
	if err != nil {
		return fmt.Errorf("failed to update organization image: %w", err)
	}

	if result.MatchedCount == 0 {
		return apperror.NotFound("provider_not_found", "Organization service provider not found.")
	}

	return nil
}
