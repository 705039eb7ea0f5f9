package usecase

import (
	"safarsathi-service/internal/domain/entity"
	"safarsathi-service/internal/infrastructure/security"
)

// CredentialHasher hashes and verifies passwords
type CredentialHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) (bool, error)
}

// TokenIssuer signs and verifies session tokens
type TokenIssuer interface {
	Sign(actor *entity.Actor) (string, error)
	Verify(token string) (*security.Claims, error)
}

// Image folders in object storage
const (
	folderPackages        = "packages"
	folderLocations       = "locations"
	folderLocationRequest = "location-requests"
	folderOrganizations   = "organizations"
)
