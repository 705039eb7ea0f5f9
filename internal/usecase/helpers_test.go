package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"safarsathi-service/internal/domain/entity"
	"safarsathi-service/internal/domain/repository"
	repo "safarsathi-service/internal/interface/repository"
	"safarsathi-service/internal/infrastructure/security"
	"safarsathi-service/pkg/logger"
	"safarsathi-service/pkg/metrics"
	"safarsathi-service/templates"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) Send(ctx context.Context, mail *entity.Mail) error {
	args := m.Called(ctx, mail)
	return args.Error(0)
}

type mockImages struct {
	mock.Mock
}

func (m *mockImages) Upload(ctx context.Context, folder string, image repository.Image) (string, error) {
	args := m.Called(ctx, folder, image)
	return args.String(0), args.Error(1)
}

func (m *mockImages) Delete(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*entity.PaymentOrder, error) {
	args := m.Called(ctx, amount, currency, receipt)
	order, _ := args.Get(0).(*entity.PaymentOrder)
	return order, args.Error(1)
}

// fixture holds memory repositories and collaborators shared by the use case tests
type fixture struct {
	actors    *repo.MemoryActorRepository
	offerings *repo.MemoryServiceOfferingRepository
	locations *repo.MemoryLocationRepository
	requests  *repo.MemoryLocationRequestRepository
	packages  *repo.MemoryPackageRepository
	bookings  *repo.MemoryBookingRepository
	mailer    *mockMailer
	images    *mockImages
	metrics   *metrics.Metrics
	logger    logger.Logger
	notifier  *Notifier
	hasher    *security.PasswordHasher
	tokens    *security.TokenSigner
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		actors:    repo.NewMemoryActorRepository(),
		offerings: repo.NewMemoryServiceOfferingRepository(),
		locations: repo.NewMemoryLocationRepository(),
		requests:  repo.NewMemoryLocationRequestRepository(),
		packages:  repo.NewMemoryPackageRepository(),
		bookings:  repo.NewMemoryBookingRepository(),
		mailer:    &mockMailer{},
		images:    &mockImages{},
		metrics:   metrics.NewMetrics("test", prometheus.NewRegistry()),
		logger:    logger.NewNopLogger(),
		hasher:    security.NewPasswordHasher(bcrypt.MinCost),
		tokens:    security.NewTokenSigner("test-secret", time.Hour),
	}
	f.notifier = NewNotifier(f.mailer, templates.MustNewRenderer(), f.metrics, "http://localhost:3000", f.logger)
	return f
}

var testAddress = entity.Address{Street: "MG Road", City: "Pune", Pincode: "411001"}

func (f *fixture) identity(first, email string) entity.Identity {
	return entity.Identity{
		FirstName:    first,
		LastName:     "Sharma",
		Email:        email,
		PasswordHash: "hash",
		Phone:        "9876543210",
		Address:      &testAddress,
	}
}

func (f *fixture) store(t *testing.T, actor *entity.Actor, err error) *entity.Actor {
	t.Helper()
	require.NoError(t, err)
	require.NoError(t, f.actors.Create(context.Background(), actor))
	return actor
}

func (f *fixture) customer(t *testing.T, name string) *entity.Actor {
	actor, err := entity.NewCustomer(f.identity(name, strings.ToLower(name)+"@example.com"))
	return f.store(t, actor, err)
}

func (f *fixture) packageManager(t *testing.T) *entity.Actor {
	actor, err := entity.NewEmployee(f.identity("Meera", "meera@safarsathi.in"), entity.PackageManager)
	return f.store(t, actor, err)
}

func (f *fixture) providerVerifier(t *testing.T) *entity.Actor {
	actor, err := entity.NewEmployee(f.identity("Vikram", "vikram@safarsathi.in"), entity.ProviderVerifier)
	return f.store(t, actor, err)
}

func (f *fixture) provider(t *testing.T, name string) *entity.Actor {
	actor, err := entity.NewIndividualProvider(
		f.identity(name, strings.ToLower(name)+"@guides.in"),
		entity.IndividualDetails{Experience: 5, Languages: []string{"Hindi", "English"}},
	)
	return f.store(t, actor, err)
}

// offering stores an offering of provider in the given status
func (f *fixture) offering(t *testing.T, provider *entity.Actor, specificType string, status entity.ReviewStatus) *entity.ServiceOffering {
	t.Helper()
	o := &entity.ServiceOffering{
		ProviderID:      provider.ID,
		SpecificType:    specificType,
		Price:           500,
		ServicesOffered: []string{"city tour"},
		Status:          status,
		CreatedAt:       time.Now(),
	}
	require.NoError(t, f.offerings.Create(context.Background(), o))
	return o
}

func (f *fixture) location(t *testing.T, name string) *entity.Location {
	t.Helper()
	l := &entity.Location{
		Name:        name,
		ImageURL:    "https://cdn.example.com/" + name + ".jpg",
		Coordinates: entity.Coordinates{Latitude: 18.52, Longitude: 73.85},
		CreatedAt:   time.Now(),
	}
	require.NoError(t, f.locations.Create(context.Background(), l))
	return l
}

func pngImage(name string) *repository.Image {
	return &repository.Image{
		Filename:    name,
		ContentType: "image/png",
		Size:        4,
		Content:     strings.NewReader("data"),
	}
}

func date(month time.Month, day int) time.Time {
	return time.Date(2026, month, day, 0, 0, 0, 0, time.UTC)
}
