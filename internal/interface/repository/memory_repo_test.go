package repository

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"safarsathi-service/internal/domain/entity"
	"safarsathi-service/internal/domain/repository"
	"safarsathi-service/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2026, time.May, d, 0, 0, 0, 0, time.UTC)
}

func TestMemoryActorRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryActorRepository()

	org := &entity.Actor{
		Email: "stays@example.com",
		Role:  entity.RoleServiceProvider,
		Provider: &entity.ProviderProfile{
			ServiceType:  entity.ProviderOrganization,
			Organization: &entity.OrganizationDetails{OrganizationName: "Sahyadri Stays", LicenseNumber: "L1"},
		},
	}
	guide := &entity.Actor{
		FirstName: "Ravi",
		Email:     "ravi@example.com",
		Role:      entity.RoleServiceProvider,
		Provider: &entity.ProviderProfile{
			ServiceType: entity.ProviderIndividual,
			Individual:  &entity.IndividualDetails{Experience: 6, Rating: 4.5, Languages: []string{"Hindi"}},
		},
	}
	require.NoError(t, repo.Create(ctx, org))
	require.NoError(t, repo.Create(ctx, guide))
	require.NoError(t, repo.Create(ctx, &entity.Actor{Email: "asha@example.com", Role: entity.RoleCustomer}))

	err := repo.Create(ctx, &entity.Actor{Email: "ravi@example.com", Role: entity.RoleCustomer})
	assert.True(t, errors.Is(err, apperror.ErrConflict))

	found, err := repo.FindByEmail(ctx, "ravi@example.com")
	require.NoError(t, err)
	assert.Equal(t, guide.ID, found.ID)

	missing, err := repo.FindByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	byIDs, err := repo.FindByIDs(ctx, []string{org.ID, guide.ID, "nope"})
	require.NoError(t, err)
	assert.Len(t, byIDs, 2)

	minRating := 4.0
	tests := []struct {
		name   string
		filter repository.ProviderFilter
		want   int
	}{
		{"all_providers", repository.ProviderFilter{}, 2},
		{"organizations", repository.ProviderFilter{ServiceType: entity.ProviderOrganization}, 1},
		{"language_any_of", repository.ProviderFilter{Languages: []string{"Tamil", "Hindi"}}, 1},
		{"min_rating", repository.ProviderFilter{MinRating: &minRating}, 1},
		{"organization_name", repository.ProviderFilter{OrganizationName: "Sahyadri Stays"}, 1},
		{"no_match", repository.ProviderFilter{LicenseNumber: "L2"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			providers, err := repo.FindProviders(ctx, tt.filter)
			require.NoError(t, err)
			assert.Len(t, providers, tt.want)
		})
	}

	require.NoError(t, repo.UpdateOrganizationImage(ctx, org.ID, "https://cdn.example.com/new.png"))
	updated, err := repo.FindByID(ctx, org.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/new.png", updated.Provider.Organization.OrganizationImg)

	err = repo.UpdateOrganizationImage(ctx, guide.ID, "x")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestMemoryServiceOfferingRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryServiceOfferingRepository()

	offering := &entity.ServiceOffering{ProviderID: "p1", SpecificType: "guide", Price: 500, Status: entity.StatusPending}
	require.NoError(t, repo.Create(ctx, offering))

	dup := &entity.ServiceOffering{ProviderID: "p1", SpecificType: "guide", Price: 500, Status: entity.StatusPending}
	assert.True(t, errors.Is(repo.Create(ctx, dup), apperror.ErrConflict))

	approved, err := repo.FindApproved(ctx, offering.ID)
	require.NoError(t, err)
	assert.Nil(t, approved)

	updated, err := repo.UpdateStatus(ctx, offering.ID, entity.StatusPending, entity.StatusApproved, "m1", day(2))
	require.NoError(t, err)
	assert.Equal(t, "m1", updated.ApprovedBy)

	_, err = repo.UpdateStatus(ctx, offering.ID, entity.StatusPending, entity.StatusRejected, "m2", day(3))
	assert.True(t, errors.Is(err, apperror.ErrInvalidTransition))

	approved, err = repo.FindApproved(ctx, offering.ID)
	require.NoError(t, err)
	require.NotNil(t, approved)
	assert.Equal(t, entity.StatusApproved, approved.Status)
}

func TestMemoryServiceOfferingRepository_ConcurrentReview(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryServiceOfferingRepository()
	offering := &entity.ServiceOffering{ProviderID: "p1", SpecificType: "guide", Price: 500, Status: entity.StatusPending}
	require.NoError(t, repo.Create(ctx, offering))

	var wg sync.WaitGroup
	results := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			to := entity.StatusApproved
			if i%2 == 0 {
				to = entity.StatusRejected
			}
			_, err := repo.UpdateStatus(ctx, offering.ID, entity.StatusPending, to, "m", day(1))
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded)
}

func TestMemoryPackageRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryPackageRepository()

	konkan := &entity.Package{
		Name:       "Konkan",
		Type:       entity.PackageMajor,
		StartDates: []time.Time{day(1)},
		EndDates:   []time.Time{day(5)},
		CreatedAt:  day(1),
	}
	mini := &entity.Package{
		Name:       "Alibaug",
		Type:       entity.PackageMini,
		StartDates: []time.Time{day(10)},
		EndDates:   []time.Time{day(12)},
		CreatedAt:  day(2),
	}
	require.NoError(t, repo.Create(ctx, konkan))
	require.NoError(t, repo.Create(ctx, mini))

	hit, err := repo.FindOverlapping(ctx, "Konkan", entity.PackageMajor, day(4), day(8))
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, konkan.ID, hit.ID)

	miss, err := repo.FindOverlapping(ctx, "Konkan", entity.PackageMini, day(4), day(8))
	require.NoError(t, err)
	assert.Nil(t, miss)

	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, mini.ID, all[0].ID)

	majors, err := repo.List(ctx, entity.PackageMajor)
	require.NoError(t, err)
	assert.Len(t, majors, 1)
}

func TestMemoryBookingRepository_UniquePair(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryBookingRepository()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repo.Create(ctx, &entity.Booking{TouristID: "c1", PackageID: "p1", CreatedAt: day(1)})
		}()
	}
	wg.Wait()
	close(errs)

	conflicts := 0
	for err := range errs {
		if errors.Is(err, apperror.ErrConflict) {
			conflicts++
		}
	}
	assert.Equal(t, 7, conflicts)
	assert.Equal(t, 1, repo.Len())

	exists, err := repo.Exists(ctx, "c1", "p1")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, repo.Create(ctx, &entity.Booking{TouristID: "c1", PackageID: "p2", CreatedAt: day(2)}))
	mine, err := repo.ListByTourist(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "p2", mine[0].PackageID)
}

func TestMemoryImageRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryImageRepository()

	url, err := repo.Upload(ctx, "packages", repository.Image{Filename: "my photo.png", Content: strings.NewReader("png")})
	require.NoError(t, err)
	assert.Contains(t, url, "packages/")
	assert.Contains(t, url, "my_photo.png")
	assert.True(t, repo.Has(url))

	require.NoError(t, repo.Delete(ctx, url))
	assert.False(t, repo.Has(url))
	assert.Error(t, repo.Delete(ctx, url))
}
