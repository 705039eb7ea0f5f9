package repository

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collUsers            = "users"
	collOfferings        = "serviceproviderrequests"
	collLocations        = "locations"
	collLocationRequests = "locationrequests"
	collPackages         = "packages"
	collBookings         = "bookings"
	collMailLogs         = "emailLogs"
)

// MongoIndexes lists the indexes every Mongo repository relies on, keyed by collection.
// Unique indexes back the duplicate checks the repositories report as conflicts.
func MongoIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		collUsers: {
			// Email is unique across every role
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetName("email_unique").SetUnique(true)},
			{Keys: bson.D{{Key: "role", Value: 1}, {Key: "provider.serviceType", Value: 1}}},
		},
		collOfferings: {
			{
				Keys: bson.D{
					{Key: "provider", Value: 1},
					{Key: "specificType", Value: 1},
					{Key: "price", Value: 1},
				},
				Options: options.Index().SetName("provider_type_price_unique").SetUnique(true),
			},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		collLocations: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetName("name_unique").SetUnique(true)},
		},
		collLocationRequests: {
			{Keys: bson.D{{Key: "requestedAt", Value: -1}}},
		},
		collPackages: {
			// Overlap checks always filter on (name, type)
			{Keys: bson.D{{Key: "name", Value: 1}, {Key: "type", Value: 1}}},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
		collBookings: {
			// The store settles concurrent inserts for the same pair
			{
				Keys:    bson.D{{Key: "tourist", Value: 1}, {Key: "package", Value: 1}},
				Options: options.Index().SetName("tourist_package_unique").SetUnique(true),
			},
			{Keys: bson.D{{Key: "tourist", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		collMailLogs: {
			{Keys: bson.D{{Key: "to", Value: 1}}},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
	}
}
