package repository

import (
	"context"
	"time"

	"safarsathi-service/internal/domain/entity"
)

// LocationRepository defines the interface for location storage.
// Create fails with a conflict error when the name is taken.
type LocationRepository interface {
	Create(ctx context.Context, location *entity.Location) error
	FindByName(ctx context.Context, name string) (*entity.Location, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]*entity.Location, error)
	List(ctx context.Context) ([]*entity.Location, error)
}

// LocationRequestRepository defines the interface for location request storage
type LocationRequestRepository interface {
	Create(ctx context.Context, request *entity.LocationRequest) error
	FindByID(ctx context.Context, id string) (*entity.LocationRequest, error)
	List(ctx context.Context) ([]*entity.LocationRequest, error)
	UpdateStatus(ctx context.Context, id string, from, to entity.ReviewStatus, reviewer string, at time.Time) (*entity.LocationRequest, error)
}
