package entity

import "time"

type Coordinates struct {
	Latitude  float64 `json:"latitude" bson:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude"`
}

// Location is a point of interest packages can visit
type Location struct {
	ID          string      `json:"id" bson:"_id,omitempty"`
	Name        string      `json:"name" bson:"name"`
	ImageURL    string      `json:"imageUrl" bson:"imageUrl"`
	Description string      `json:"description,omitempty" bson:"description,omitempty"`
	Coordinates Coordinates `json:"coordinates" bson:"coordinates"`
	Address     string      `json:"address,omitempty" bson:"address,omitempty"`
	Types       []string    `json:"type" bson:"type"`
	CreatedBy   string      `json:"createdBy" bson:"createdBy"`
	CreatedAt   time.Time   `json:"createdAt" bson:"createdAt"`
}

// LocationRequest is a customer's suggestion for a new location
type LocationRequest struct {
	ID          string       `json:"id" bson:"_id,omitempty"`
	Coordinates Coordinates  `json:"coordinates" bson:"coordinates"`
	Description string       `json:"description" bson:"description"`
	ImageURL    string       `json:"imageUrl" bson:"imageUrl"`
	RequestedBy string       `json:"requestedBy" bson:"requestedBy"`
	RequestedAt time.Time    `json:"requestedAt" bson:"requestedAt"`
	ApprovedBy  string       `json:"approvedBy,omitempty" bson:"approvedBy,omitempty"`
	ReviewedAt  *time.Time   `json:"reviewedAt,omitempty" bson:"reviewedAt,omitempty"`
	Status      ReviewStatus `json:"status" bson:"status"`
}
