package repository

import (
	"context"
	"time"

	"safarsathi-service/internal/domain/entity"
)

// PackageRepository defines the interface for package storage
type PackageRepository interface {
	Create(ctx context.Context, pkg *entity.Package) error
	FindByID(ctx context.Context, id string) (*entity.Package, error)
	// FindOverlapping returns a package with the same name and type whose
	// dates collide with [start, end), or nil.
	FindOverlapping(ctx context.Context, name string, pkgType entity.PackageType, start, end time.Time) (*entity.Package, error)
	// List returns packages newest first; an empty type lists all.
	List(ctx context.Context, pkgType entity.PackageType) ([]*entity.Package, error)
}
