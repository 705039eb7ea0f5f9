package repository

import (
	"context"
	"time"

	"safarsathi-service/internal/domain/entity"
)

// OfferingFilter selects offerings. Empty fields match everything.
type OfferingFilter struct {
	ProviderID string
	Status     entity.ReviewStatus
}

// ServiceOfferingRepository defines the interface for service offering storage.
// Create fails with a conflict error on a duplicate (provider, specificType, price).
type ServiceOfferingRepository interface {
	Create(ctx context.Context, offering *entity.ServiceOffering) error
	FindByID(ctx context.Context, id string) (*entity.ServiceOffering, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]*entity.ServiceOffering, error)
	FindApproved(ctx context.Context, id string) (*entity.ServiceOffering, error)
	Exists(ctx context.Context, providerID, specificType string, price float64) (bool, error)
	List(ctx context.Context, filter OfferingFilter) ([]*entity.ServiceOffering, error)
	// UpdateStatus moves the offering from `from` to `to` atomically. It fails
	// with an invalid-transition error when the stored status is no longer `from`.
	UpdateStatus(ctx context.Context, id string, from, to entity.ReviewStatus, approvedBy string, at time.Time) (*entity.ServiceOffering, error)
}
