package usecase

import (
	"context"
	"strings"
	"time"

	"safarsathi-service/internal/domain/entity"
	"safarsathi-service/internal/domain/repository"
	"safarsathi-service/pkg/apperror"
	"safarsathi-service/pkg/logger"
	"safarsathi-service/pkg/metrics"
)

var (
	ErrDuplicateLocation       = apperror.Conflict("duplicate_location", "Location with this name already exists.")
	ErrLocationRequestNotFound = apperror.NotFound("location_request_not_found", "Location request not found.")
	ErrInvalidCoordinates      = apperror.Validation("invalid_coordinates", "Latitude and Longitude are required.")
)

// AddLocationInput carries a new catalog location
type AddLocationInput struct {
	Name        string
	Description string
	Coordinates *entity.Coordinates
	Address     string
	Types       []string
}

// LocationRequestInput carries a customer's location suggestion
type LocationRequestInput struct {
	Coordinates *entity.Coordinates
	Description string
}

// LocationRequestDetail is a location request with its requester resolved
type LocationRequestDetail struct {
	*entity.LocationRequest
	Requester *entity.Actor `json:"requester,omitempty"`
}

// ReviewResult reports a location request review and whether the requester was told
type ReviewResult struct {
	Request          *entity.LocationRequest `json:"locationRequest"`
	NotificationSent bool                    `json:"notificationSent"`
}

// LocationRegistry manages the location catalog and customer requests
type LocationRegistry struct {
	locationRepo repository.LocationRepository
	requestRepo  repository.LocationRequestRepository
	actorRepo    repository.ActorRepository
	imageRepo    repository.ImageRepository
	notifier     *Notifier
	metrics      *metrics.Metrics
	logger       logger.Logger
	now          func() time.Time
}

// NewLocationRegistry creates the location registry
func NewLocationRegistry(
	locationRepo repository.LocationRepository,
	requestRepo repository.LocationRequestRepository,
	actorRepo repository.ActorRepository,
	imageRepo repository.ImageRepository,
	notifier *Notifier,
	metrics *metrics.Metrics,
	logger logger.Logger,
) *LocationRegistry {
	return &LocationRegistry{
		locationRepo: locationRepo,
		requestRepo:  requestRepo,
		actorRepo:    actorRepo,
		imageRepo:    imageRepo,
		notifier:     notifier,
		metrics:      metrics,
		logger:       logger,
		now:          time.Now,
	}
}

// AddLocation adds a named location to the catalog
func (l *LocationRegistry) AddLocation(ctx context.Context, creator *entity.Actor, in AddLocationInput, image *repository.Image) (*entity.Location, error) {
	if err := Require(creator, entity.CapPackageManager); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperror.Validation("missing_fields", "Location name is required.")
	}
	if image == nil {
		return nil, ErrImageRequired.WithMessage("Location Image is required.")
	}
	if err := checkCoordinates(in.Coordinates); err != nil {
		return nil, err
	}

	existing, err := l.locationRepo.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateLocation
	}

	url, err := l.upload(ctx, folderLocations, *image)
	if err != nil {
		return nil, err
	}

	location := &entity.Location{
		Name:        name,
		ImageURL:    url,
		Description: strings.TrimSpace(in.Description),
		Coordinates: *in.Coordinates,
		Address:     strings.TrimSpace(in.Address),
		Types:       splitList(in.Types),
		CreatedBy:   creator.ID,
		CreatedAt:   l.now(),
	}
	if err := l.locationRepo.Create(ctx, location); err != nil {
		discardImage(l.imageRepo, l.logger, url)
		return nil, err
	}

	l.logger.Info("Location added", "locationID", location.ID, "name", name)
	return location, nil
}

// ListLocations returns the catalog, newest first
func (l *LocationRegistry) ListLocations(ctx context.Context) ([]*entity.Location, error) {
	return l.locationRepo.List(ctx)
}

// SubmitLocationRequest records a customer's suggestion in pending state
func (l *LocationRegistry) SubmitLocationRequest(ctx context.Context, customer *entity.Actor, in LocationRequestInput, image *repository.Image) (*entity.LocationRequest, error) {
	if err := Require(customer, entity.CapCustomer); err != nil {
		return nil, err
	}
	if image == nil {
		return nil, ErrImageRequired.WithMessage("Location image is required.")
	}
	if err := checkCoordinates(in.Coordinates); err != nil {
		return nil, err
	}

	url, err := l.upload(ctx, folderLocationRequest, *image)
	if err != nil {
		return nil, err
	}

	request := &entity.LocationRequest{
		Coordinates: *in.Coordinates,
		Description: strings.TrimSpace(in.Description),
		ImageURL:    url,
		RequestedBy: customer.ID,
		RequestedAt: l.now(),
		Status:      entity.LocationRequestReview.Initial(),
	}
	if err := l.requestRepo.Create(ctx, request); err != nil {
		discardImage(l.imageRepo, l.logger, url)
		return nil, err
	}

	l.logger.Info("Location request submitted", "requestID", request.ID, "customerID", customer.ID)
	return request, nil
}

// ListLocationRequests returns every request with its requester, newest first
func (l *LocationRegistry) ListLocationRequests(ctx context.Context) ([]LocationRequestDetail, error) {
	requests, err := l.requestRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(requests))
	for _, r := range requests {
		ids = append(ids, r.RequestedBy)
	}
	requesters, err := l.actorRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	details := make([]LocationRequestDetail, 0, len(requests))
	for _, r := range requests {
		details = append(details, LocationRequestDetail{LocationRequest: r, Requester: requesters[r.RequestedBy]})
	}
	return details, nil
}

// SetLocationRequestStatus reviews a pending request and emails the
// requester. A failed email does not undo the review.
func (l *LocationRegistry) SetLocationRequestStatus(ctx context.Context, id string, status entity.ReviewStatus, employee *entity.Actor) (*ReviewResult, error) {
	if err := Require(employee, entity.CapPackageManager); err != nil {
		return nil, err
	}
	if !isOutcome(entity.LocationRequestReview, status) {
		return nil, apperror.ErrInvalidTransition.WithMessage("Invalid status provided. Status must be 'accepted' or 'rejected'.")
	}

	request, err := l.requestRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, ErrLocationRequestNotFound
	}

	if err := entity.LocationRequestReview.Transition(request.Status, status); err != nil {
		return nil, err
	}

	updated, err := l.requestRepo.UpdateStatus(ctx, id, request.Status, status, employee.ID, l.now())
	if err != nil {
		return nil, err
	}
	l.metrics.ReviewTransitions.WithLabelValues("location_request", string(status)).Inc()
	l.logger.Info("Location request reviewed", "requestID", id, "status", status, "reviewerID", employee.ID)

	result := &ReviewResult{Request: updated}

	requester, err := l.actorRepo.FindByID(ctx, updated.RequestedBy)
	switch {
	case err != nil:
		l.logger.Error("Failed to load location requester", "requestID", id, "error", err)
	case requester == nil:
		l.logger.Warn("Location requester no longer exists", "requestID", id, "requesterID", updated.RequestedBy)
	default:
		result.NotificationSent = l.notifier.SendLocationStatus(ctx, requester, status) == nil
	}

	return result, nil
}

func (l *LocationRegistry) upload(ctx context.Context, folder string, image repository.Image) (string, error) {
	url, err := l.imageRepo.Upload(ctx, folder, image)
	if err != nil {
		l.logger.Error("Image upload failed", "folder", folder, "error", err)
		return "", ErrImageUploadFailed.Wrap(err)
	}
	return url, nil
}

func checkCoordinates(c *entity.Coordinates) error {
	if c == nil {
		return ErrInvalidCoordinates
	}
	if c.Latitude < -90 || c.Latitude > 90 || c.Longitude < -180 || c.Longitude > 180 {
		return ErrInvalidCoordinates.WithMessage("Latitude must be within ±90 and Longitude within ±180.")
	}
	return nil
}

// splitList trims items and splits comma-separated entries
func splitList(items []string) []string {
	out := []string{}
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
