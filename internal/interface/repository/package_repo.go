package repository

import (
	"context"
	"fmt"
	"time"

	"safarsathi-service/internal/domain/entity"
	"safarsathi-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoPackageRepository implements the PackageRepository interface
type MongoPackageRepository struct {
	collection *mongo.Collection
}

// NewMongoPackageRepository creates a new MongoDB package repository
func NewMongoPackageRepository(db *mongo.Database) repository.PackageRepository {
	return &MongoPackageRepository{
		collection: db.Collection(collPackages),
	}
}

// Create inserts a new package
func (r *MongoPackageRepository) Create(ctx context.Context, pkg *entity.Package) error {
	if pkg.ID == "" {
		pkg.ID = newID()
	}

	if _, err := r.collection.InsertOne(ctx, pkg); err != nil {
		return fmt.Errorf("failed to insert package: %w", err)
	}
	return nil
}

// FindByID finds a package by ID
func (r *MongoPackageRepository) FindByID(ctx context.Context, id string) (*entity.Package, error) {
	var pkg entity.Package
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&pkg)
	if err != nil {
		if isNoDocuments(err) {
			return nil, nil
		}
		return nil, err
	}
	return &pkg, nil
}

// FindOverlapping finds a package with the same name and type colliding with [start, end)
func (r *MongoPackageRepository) FindOverlapping(ctx context.Context, name string, pkgType entity.PackageType, start, end time.Time) (*entity.Package, error) {
	filter := overlapFilter(name, pkgType, start, end)

	var pkg entity.Package
	err := r.collection.FindOne(ctx, filter).Decode(&pkg)
	if err != nil {
		if isNoDocuments(err) {
			return nil, nil
		}
		return nil, err
	}
	return &pkg, nil
}

// overlapFilter matches a package of the same name and type with a start or end date
// inside [start, end), or with dates spanning the whole window
func overlapFilter(name string, pkgType entity.PackageType, start, end time.Time) bson.M {
	inWindow := bson.M{"$elemMatch": bson.M{"$gte": start, "$lt": end}}

	return bson.M{
		"name": name,
		"type": pkgType,
		"$or": []bson.M{
			{"startDates": inWindow},
			{"endDates": inWindow},
			{
				"startDates": bson.M{"$elemMatch": bson.M{"$lte": start}},
				"endDates":   bson.M{"$elemMatch": bson.M{"$gte": end}},
			},
		},
	}
}

// List finds packages newest first
func (r *MongoPackageRepository) List(ctx context.Context, pkgType entity.PackageType) ([]*entity.Package, error) {
	filter := bson.M{}
	if pkgType != "" {
		filter["type"] = pkgType
	}

	cursor, err := r.collection.Find(ctx, filter, &options.FindOptions{
		Sort: bson.D{{Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var packages []*entity.Package
	if err := cursor.All(ctx, &packages); err != nil {
		return nil, err
	}

	return packages, nil
}
