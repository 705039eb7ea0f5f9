package repository

import (
	"context"

	"safarsathi-service/internal/domain/entity"
)

// ProviderFilter narrows a service provider search. Zero values are ignored.
type ProviderFilter struct {
	Email            string
	FirstName        string
	LastName         string
	Phone            string
	ServiceType      entity.ProviderType
	Experience       *int
	Languages        []string
	Specialization   []string
	MinRating        *float64
	OrganizationName string
	LicenseNumber    string
	Website          string
}

// ActorRepository defines the interface for actor storage operations.
// Create fails with a conflict error when the email is taken.
type ActorRepository interface {
	Create(ctx context.Context, actor *entity.Actor) error
	FindByID(ctx context.Context, id string) (*entity.Actor, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]*entity.Actor, error)
	FindByEmail(ctx context.Context, email string) (*entity.Actor, error)
	FindProviders(ctx context.Context, filter ProviderFilter) ([]*entity.Actor, error)
	UpdateOrganizationImage(ctx context.Context, id, imageURL string) error
}
