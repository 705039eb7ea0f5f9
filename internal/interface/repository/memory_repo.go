package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"safarsathi-service/internal/domain/entity"
	"safarsathi-service/internal/domain/repository"
	"safarsathi-service/pkg/apperror"
)

// The memory repositories mirror the Mongo ones, unique indexes included.
// They back tests and local runs without a database.

// newestFirst orders items by created time descending; later inserts win ties
func newestFirst[T any](items []T, createdAt func(T) time.Time) []T {
	out := make([]T, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		out = append(out, items[i])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return createdAt(out[i]).After(createdAt(out[j]))
	})
	return out
}

// MemoryActorRepository implements the ActorRepository interface in memory
type MemoryActorRepository struct {
	mu     sync.RWMutex
	actors []*entity.Actor
}

func NewMemoryActorRepository() *MemoryActorRepository {
	return &MemoryActorRepository{}
}

func (r *MemoryActorRepository) Create(_ context.Context, actor *entity.Actor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.actors {
		if a.Email == actor.Email {
			return apperror.Conflict("duplicate_email", "User with this email already exists.")
		}
	}
	if actor.ID == "" {
		actor.ID = newID()
	}
	if actor.CreatedAt.IsZero() {
		actor.CreatedAt = time.Now()
	}
	stored := *actor
	r.actors = append(r.actors, &stored)
	return nil
}

func (r *MemoryActorRepository) FindByID(_ context.Context, id string) (*entity.Actor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.actors {
		if a.ID == id {
			found := *a
			return &found, nil
		}
	}
	return nil, nil
}

func (r *MemoryActorRepository) FindByIDs(_ context.Context, ids []string) (map[string]*entity.Actor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	result := make(map[string]*entity.Actor)
	for _, a := range r.actors {
		if wanted[a.ID] {
			found := *a
			result[a.ID] = &found
		}
	}
	return result, nil
}

func (r *MemoryActorRepository) FindByEmail(_ context.Context, email string) (*entity.Actor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.actors {
		if a.Email == email {
			found := *a
			return &found, nil
		}
	}
	return nil, nil
}

func (r *MemoryActorRepository) FindProviders(_ context.Context, f repository.ProviderFilter) ([]*entity.Actor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*entity.Actor
	for _, a := range r.actors {
		if a.Role != entity.RoleServiceProvider || a.Provider == nil || !matchesProvider(a, f) {
			continue
		}
		found := *a
		matched = append(matched, &found)
	}
	return newestFirst(matched, func(a *entity.Actor) time.Time { return a.CreatedAt }), nil
}

func matchesProvider(a *entity.Actor, f repository.ProviderFilter) bool {
	if f.Email != "" && a.Email != f.Email ||
		f.FirstName != "" && a.FirstName != f.FirstName ||
		f.LastName != "" && a.LastName != f.LastName ||
		f.Phone != "" && a.Phone != f.Phone ||
		f.ServiceType != "" && a.Provider.ServiceType != f.ServiceType {
		return false
	}

	ind := a.Provider.Individual
	if f.Experience != nil || len(f.Languages) > 0 || len(f.Specialization) > 0 || f.MinRating != nil {
		if ind == nil {
			return false
		}
		if f.Experience != nil && ind.Experience != *f.Experience ||
			len(f.Languages) > 0 && !anyOf(ind.Languages, f.Languages) ||
			len(f.Specialization) > 0 && !anyOf(ind.Specialization, f.Specialization) ||
			f.MinRating != nil && ind.Rating < *f.MinRating {
			return false
		}
	}

	org := a.Provider.Organization
	if f.OrganizationName != "" || f.LicenseNumber != "" || f.Website != "" {
		if org == nil {
			return false
		}
		if f.OrganizationName != "" && org.OrganizationName != f.OrganizationName ||
			f.LicenseNumber != "" && org.LicenseNumber != f.LicenseNumber ||
			f.Website != "" && org.Website != f.Website {
			return false
		}
	}
	return true
}

func anyOf(have, want []string) bool {
	for _, h := range have {
		for _, w := range want {
			if h == w {
				return true
			}
		}
	}
	return false
}

func (r *MemoryActorRepository) UpdateOrganizationImage(_ context.Context, id, imageURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.actors {
		if a.ID == id && a.IsOrganization() && a.Provider.Organization != nil {
			org := *a.Provider.Organization
			org.OrganizationImg = imageURL
			provider := *a.Provider
			provider.Organization = &org
			a.Provider = &provider
			return nil
		}
	}
	return apperror.NotFound("provider_not_found", "Organization service provider not found.")
}

// MemoryServiceOfferingRepository implements the ServiceOfferingRepository interface in memory
type MemoryServiceOfferingRepository struct {
	mu        sync.RWMutex
	offerings []*entity.ServiceOffering
}

func NewMemoryServiceOfferingRepository() *MemoryServiceOfferingRepository {
	return &MemoryServiceOfferingRepository{}
}

func (r *MemoryServiceOfferingRepository) Create(_ context.Context, offering *entity.ServiceOffering) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, o := range r.offerings {
		if o.ProviderID == offering.ProviderID && o.SpecificType == offering.SpecificType && o.Price == offering.Price {
			return apperror.Conflict("duplicate_offering", "You have already made a request with the same specific type and price.")
		}
	}
	if offering.ID == "" {
		offering.ID = newID()
	}
	stored := *offering
	r.offerings = append(r.offerings, &stored)
	return nil
}

func (r *MemoryServiceOfferingRepository) FindByID(_ context.Context, id string) (*entity.ServiceOffering, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, o := range r.offerings {
		if o.ID == id {
			found := *o
			return &found, nil
		}
	}
	return nil, nil
}

func (r *MemoryServiceOfferingRepository) FindByIDs(_ context.Context, ids []string) (map[string]*entity.ServiceOffering, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	result := make(map[string]*entity.ServiceOffering)
	for _, o := range r.offerings {
		if wanted[o.ID] {
			found := *o
			result[o.ID] = &found
		}
	}
	return result, nil
}

func (r *MemoryServiceOfferingRepository) FindApproved(ctx context.Context, id string) (*entity.ServiceOffering, error) {
	o, err := r.FindByID(ctx, id)
	if err != nil || o == nil || !o.IsApproved() {
		return nil, err
	}
	return o, nil
}

func (r *MemoryServiceOfferingRepository) Exists(_ context.Context, providerID, specificType string, price float64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, o := range r.offerings {
		if o.ProviderID == providerID && o.SpecificType == specificType && o.Price == price {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryServiceOfferingRepository) List(_ context.Context, f repository.OfferingFilter) ([]*entity.ServiceOffering, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*entity.ServiceOffering
	for _, o := range r.offerings {
		if f.ProviderID != "" && o.ProviderID != f.ProviderID || f.Status != "" && o.Status != f.Status {
			continue
		}
		found := *o
		matched = append(matched, &found)
	}
	return newestFirst(matched, func(o *entity.ServiceOffering) time.Time { return o.CreatedAt }), nil
}

func (r *MemoryServiceOfferingRepository) UpdateStatus(_ context.Context, id string, from, to entity.ReviewStatus, approvedBy string, at time.Time) (*entity.ServiceOffering, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, o := range r.offerings {
		if o.ID != id {
			continue
		}
		if o.Status != from {
			return nil, apperror.ErrInvalidTransition.WithMessage("The service offering is no longer " + string(from) + ".")
		}
		o.Status = to
		o.ReviewedAt = &at
		if to == entity.StatusApproved {
			o.ApprovedBy = approvedBy
		}
		found := *o
		return &found, nil
	}
	return nil, apperror.ErrInvalidTransition.WithMessage("The service offering is no longer " + string(from) + ".")
}

// MemoryLocationRepository implements the LocationRepository interface in memory
type MemoryLocationRepository struct {
	mu        sync.RWMutex
	locations []*entity.Location
}

func NewMemoryLocationRepository() *MemoryLocationRepository {
	return &MemoryLocationRepository{}
}

func (r *MemoryLocationRepository) Create(_ context.Context, location *entity.Location) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, l := range r.locations {
		if l.Name == location.Name {
			return apperror.Conflict("duplicate_location", "Location with this name already exists.")
		}
	}
	if location.ID == "" {
		location.ID = newID()
	}
	stored := *location
	r.locations = append(r.locations, &stored)
	return nil
}

func (r *MemoryLocationRepository) FindByName(_ context.Context, name string) (*entity.Location, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, l := range r.locations {
		if l.Name == name {
			found := *l
			return &found, nil
		}
	}
	return nil, nil
}

func (r *MemoryLocationRepository) FindByIDs(_ context.Context, ids []string) (map[string]*entity.Location, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	result := make(map[string]*entity.Location)
	for _, l := range r.locations {
		if wanted[l.ID] {
			found := *l
			result[l.ID] = &found
		}
	}
	return result, nil
}

func (r *MemoryLocationRepository) List(_ context.Context) ([]*entity.Location, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*entity.Location, 0, len(r.locations))
	for _, l := range r.locations {
		found := *l
		all = append(all, &found)
	}
	return newestFirst(all, func(l *entity.Location) time.Time { return l.CreatedAt }), nil
}

// MemoryLocationRequestRepository implements the LocationRequestRepository interface in memory
type MemoryLocationRequestRepository struct {
	mu       sync.RWMutex
	requests []*entity.LocationRequest
}

func NewMemoryLocationRequestRepository() *MemoryLocationRequestRepository {
	return &MemoryLocationRequestRepository{}
}

func (r *MemoryLocationRequestRepository) Create(_ context.Context, request *entity.LocationRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if request.ID == "" {
		request.ID = newID()
	}
	stored := *request
	r.requests = append(r.requests, &stored)
	return nil
}

func (r *MemoryLocationRequestRepository) FindByID(_ context.Context, id string) (*entity.LocationRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, req := range r.requests {
		if req.ID == id {
			found := *req
			return &found, nil
		}
	}
	return nil, nil
}

func (r *MemoryLocationRequestRepository) List(_ context.Context) ([]*entity.LocationRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*entity.LocationRequest, 0, len(r.requests))
	for _, req := range r.requests {
		found := *req
		all = append(all, &found)
	}
	return newestFirst(all, func(l *entity.LocationRequest) time.Time { return l.RequestedAt }), nil
}

func (r *MemoryLocationRequestRepository) UpdateStatus(_ context.Context, id string, from, to entity.ReviewStatus, reviewer string, at time.Time) (*entity.LocationRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, req := range r.requests {
		if req.ID != id {
			continue
		}
		if req.Status != from {
			break
		}
		req.Status = to
		req.ApprovedBy = reviewer
		req.ReviewedAt = &at
		found := *req
		return &found, nil
	}
	return nil, apperror.ErrInvalidTransition.WithMessage("The location request is no longer " + string(from) + ".")
}

// MemoryPackageRepository implements the PackageRepository interface in memory
type MemoryPackageRepository struct {
	mu       sync.RWMutex
	packages []*entity.Package
}

func NewMemoryPackageRepository() *MemoryPackageRepository {
	return &MemoryPackageRepository{}
}

func (r *MemoryPackageRepository) Create(_ context.Context, pkg *entity.Package) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if pkg.ID == "" {
		pkg.ID = newID()
	}
	stored := *pkg
	r.packages = append(r.packages, &stored)
	return nil
}

func (r *MemoryPackageRepository) FindByID(_ context.Context, id string) (*entity.Package, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.packages {
		if p.ID == id {
			found := *p
			return &found, nil
		}
	}
	return nil, nil
}

func (r *MemoryPackageRepository) FindOverlapping(_ context.Context, name string, pkgType entity.PackageType, start, end time.Time) (*entity.Package, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.packages {
		if p.Name == name && p.Type == pkgType && p.Overlaps(start, end) {
			found := *p
			return &found, nil
		}
	}
	return nil, nil
}

func (r *MemoryPackageRepository) List(_ context.Context, pkgType entity.PackageType) ([]*entity.Package, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*entity.Package
	for _, p := range r.packages {
		if pkgType != "" && p.Type != pkgType {
			continue
		}
		found := *p
		matched = append(matched, &found)
	}
	return newestFirst(matched, func(p *entity.Package) time.Time { return p.CreatedAt }), nil
}

// MemoryBookingRepository implements the BookingRepository interface in memory
type MemoryBookingRepository struct {
	mu       sync.RWMutex
	bookings []*entity.Booking
}

func NewMemoryBookingRepository() *MemoryBookingRepository {
	return &MemoryBookingRepository{}
}

func (r *MemoryBookingRepository) Create(_ context.Context, booking *entity.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, b := range r.bookings {
		if b.TouristID == booking.TouristID && b.PackageID == booking.PackageID {
			return apperror.Conflict("already_booked", "You have already booked this package.")
		}
	}
	if booking.ID == "" {
		booking.ID = newID()
	}
	stored := *booking
	r.bookings = append(r.bookings, &stored)
	return nil
}

func (r *MemoryBookingRepository) Exists(_ context.Context, touristID, packageID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, b := range r.bookings {
		if b.TouristID == touristID && b.PackageID == packageID {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryBookingRepository) ListByTourist(_ context.Context, touristID string) ([]*entity.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*entity.Booking
	for _, b := range r.bookings {
		if b.TouristID == touristID {
			found := *b
			matched = append(matched, &found)
		}
	}
	return newestFirst(matched, func(b *entity.Booking) time.Time { return b.CreatedAt }), nil
}

// Len returns the number of stored bookings
func (r *MemoryBookingRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bookings)
}

// Len returns the number of stored packages
func (r *MemoryPackageRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.packages)
}

// Len returns the number of stored actors
func (r *MemoryActorRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.actors)
}
