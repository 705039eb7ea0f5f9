package usecase

import (
	"context"
	"errors"
	"testing"

	"safarsathi-service/internal/domain/entity"
	"safarsathi-service/pkg/apperror"
	"safarsathi-service/templates"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newLocationRegistry(f *fixture) *LocationRegistry {
	return NewLocationRegistry(f.locations, f.requests, f.actors, f.images, f.notifier, f.metrics, f.logger)
}

func shaniwarWada() AddLocationInput {
	return AddLocationInput{
		Name:        " Shaniwar Wada ",
		Description: "Peshwa-era fortification",
		Coordinates: &entity.Coordinates{Latitude: 18.5195, Longitude: 73.8553},
		Address:     "Shaniwar Peth, Pune",
		Types:       []string{"heritage, fort"},
	}
}

func TestLocationRegistry_AddLocation(t *testing.T) {
	f := newFixture(t)
	registry := newLocationRegistry(f)
	ctx := context.Background()
	manager := f.packageManager(t)

	f.images.On("Upload", mock.Anything, folderLocations, mock.Anything).Return("https://cdn.example.com/wada.png", nil).Once()

	location, err := registry.AddLocation(ctx, manager, shaniwarWada(), pngImage("wada.png"))
	require.NoError(t, err)
	assert.Equal(t, "Shaniwar Wada", location.Name)
	assert.Equal(t, []string{"heritage", "fort"}, location.Types)
	assert.Equal(t, "https://cdn.example.com/wada.png", location.ImageURL)

	t.Run("duplicate_name", func(t *testing.T) {
		_, err := registry.AddLocation(ctx, manager, shaniwarWada(), pngImage("wada.png"))
		assert.True(t, errors.Is(err, ErrDuplicateLocation))
	})

	t.Run("missing_image", func(t *testing.T) {
		in := shaniwarWada()
		in.Name = "Sinhagad"
		_, err := registry.AddLocation(ctx, manager, in, nil)
		assert.True(t, errors.Is(err, ErrImageRequired))
	})

	t.Run("bad_coordinates", func(t *testing.T) {
		in := shaniwarWada()
		in.Name = "Sinhagad"
		in.Coordinates = &entity.Coordinates{Latitude: 120, Longitude: 73}
		_, err := registry.AddLocation(ctx, manager, in, pngImage("s.png"))
		assert.True(t, errors.Is(err, ErrInvalidCoordinates))

		in.Coordinates = nil
		_, err = registry.AddLocation(ctx, manager, in, pngImage("s.png"))
		assert.True(t, errors.Is(err, ErrInvalidCoordinates))
	})

	t.Run("customer_forbidden", func(t *testing.T) {
		_, err := registry.AddLocation(ctx, f.customer(t, "Asha"), shaniwarWada(), pngImage("wada.png"))
		assert.True(t, errors.Is(err, apperror.ErrForbidden))
	})

	locations, err := registry.ListLocations(ctx)
	require.NoError(t, err)
	assert.Len(t, locations, 1)
	f.images.AssertExpectations(t)
}

func TestLocationRegistry_Requests(t *testing.T) {
	f := newFixture(t)
	registry := newLocationRegistry(f)
	ctx := context.Background()
	manager := f.packageManager(t)
	customer := f.customer(t, "Asha")

	f.images.On("Upload", mock.Anything, folderLocationRequest, mock.Anything).Return("https://cdn.example.com/req.png", nil)

	submit := func(t *testing.T) *entity.LocationRequest {
		t.Helper()
		req, err := registry.SubmitLocationRequest(ctx, customer, LocationRequestInput{
			Coordinates: &entity.Coordinates{Latitude: 17.0, Longitude: 73.3},
			Description: "Hidden beach near Guhagar",
		}, pngImage("req.png"))
		require.NoError(t, err)
		return req
	}

	t.Run("accept_notifies_requester", func(t *testing.T) {
		req := submit(t)
		assert.Equal(t, entity.StatusPending, req.Status)

		f.mailer.On("Send", mock.Anything, mock.MatchedBy(func(m *entity.Mail) bool {
			return m.Template == templates.LocationStatus && m.To == customer.Email
		})).Return(nil).Once()

		result, err := registry.SetLocationRequestStatus(ctx, req.ID, entity.StatusAccepted, manager)
		require.NoError(t, err)
		assert.True(t, result.NotificationSent)
		assert.Equal(t, entity.StatusAccepted, result.Request.Status)
		assert.Equal(t, manager.ID, result.Request.ApprovedBy)

		_, err = registry.SetLocationRequestStatus(ctx, req.ID, entity.StatusRejected, manager)
		assert.True(t, errors.Is(err, apperror.ErrInvalidTransition))
	})

	t.Run("mail_failure_keeps_review", func(t *testing.T) {
		req := submit(t)
		f.mailer.On("Send", mock.Anything, mock.Anything).Return(errors.New("smtp down")).Once()

		result, err := registry.SetLocationRequestStatus(ctx, req.ID, entity.StatusRejected, manager)
		require.NoError(t, err)
		assert.False(t, result.NotificationSent)

		stored, err := f.requests.FindByID(ctx, req.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.StatusRejected, stored.Status)
		assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.NotificationFailures.WithLabelValues(templates.LocationStatus)))
	})

	t.Run("approved_is_not_a_location_outcome", func(t *testing.T) {
		req := submit(t)
		_, err := registry.SetLocationRequestStatus(ctx, req.ID, entity.StatusApproved, manager)
		assert.True(t, errors.Is(err, apperror.ErrInvalidTransition))
	})

	t.Run("not_found", func(t *testing.T) {
		_, err := registry.SetLocationRequestStatus(ctx, "missing", entity.StatusAccepted, manager)
		assert.True(t, errors.Is(err, ErrLocationRequestNotFound))
	})

	t.Run("list_resolves_requester", func(t *testing.T) {
		details, err := registry.ListLocationRequests(ctx)
		require.NoError(t, err)
		require.NotEmpty(t, details)
		for _, d := range details {
			require.NotNil(t, d.Requester)
			assert.Equal(t, customer.ID, d.Requester.ID)
		}
	})
}

func TestLocationRegistry_SubmitErrors(t *testing.T) {
	f := newFixture(t)
	registry := newLocationRegistry(f)
	ctx := context.Background()

	_, err := registry.SubmitLocationRequest(ctx, f.packageManager(t), LocationRequestInput{
		Coordinates: &entity.Coordinates{Latitude: 1, Longitude: 1},
	}, pngImage("x.png"))
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	f.images.On("Upload", mock.Anything, folderLocationRequest, mock.Anything).Return("", errors.New("denied")).Once()
	_, err = registry.SubmitLocationRequest(ctx, f.customer(t, "Asha"), LocationRequestInput{
		Coordinates: &entity.Coordinates{Latitude: 1, Longitude: 1},
	}, pngImage("x.png"))
	assert.True(t, errors.Is(err, ErrImageUploadFailed))
	assert.Equal(t, 500, apperror.From(err).Status())
}
