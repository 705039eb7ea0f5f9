package repository

import (
	"context"

	"safarsathi-service/internal/domain/entity"
)

// BookingRepository defines the interface for booking storage. Create must
// reject a second booking for the same (tourist, package) with a conflict
// error even under concurrent inserts.
type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking) error
	Exists(ctx context.Context, touristID, packageID string) (bool, error)
	ListByTourist(ctx context.Context, touristID string) ([]*entity.Booking, error)
}
