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
	ErrDuplicateOffering = apperror.Conflict("duplicate_offering", "You have already made a request with the same specific type and price.")
	ErrOfferingNotFound  = apperror.NotFound("offering_not_found", "Service provider request not found.")
	ErrInvalidStatus     = apperror.Validation("invalid_status", "Invalid status provided.")
)

// SubmitOfferingInput carries a provider's new service offering
type SubmitOfferingInput struct {
	SpecificType    string
	Price           float64
	ServicesOffered []string
}

// OfferingDetail is an offering with its provider resolved
type OfferingDetail struct {
	*entity.ServiceOffering
	Provider *entity.Actor `json:"providerDetails,omitempty"`
}

// ServiceOfferingRegistry manages service offerings and their review
type ServiceOfferingRegistry struct {
	offeringRepo repository.ServiceOfferingRepository
	actorRepo    repository.ActorRepository
	metrics      *metrics.Metrics
	logger       logger.Logger
	now          func() time.Time
}

// NewServiceOfferingRegistry creates the service offering registry
func NewServiceOfferingRegistry(
	offeringRepo repository.ServiceOfferingRepository,
	actorRepo repository.ActorRepository,
	metrics *metrics.Metrics,
	logger logger.Logger,
) *ServiceOfferingRegistry {
	return &ServiceOfferingRegistry{
		offeringRepo: offeringRepo,
		actorRepo:    actorRepo,
		metrics:      metrics,
		logger:       logger,
		now:          time.Now,
	}
}

// Submit creates a pending offering for provider
func (r *ServiceOfferingRegistry) Submit(ctx context.Context, provider *entity.Actor, in SubmitOfferingInput) (*entity.ServiceOffering, error) {
	if err := Require(provider, entity.CapServiceProvider); err != nil {
		return nil, err
	}

	specificType := strings.TrimSpace(in.SpecificType)
	services := splitList(in.ServicesOffered)
	if specificType == "" || in.Price <= 0 || len(services) == 0 {
		return nil, apperror.Validation("missing_fields", "Specific type, price, and services offered are required.")
	}

	exists, err := r.offeringRepo.Exists(ctx, provider.ID, specificType, in.Price)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateOffering
	}

	offering := &entity.ServiceOffering{
		ProviderID:      provider.ID,
		SpecificType:    specificType,
		Price:           in.Price,
		ServicesOffered: services,
		Status:          entity.OfferingReview.Initial(),
		CreatedAt:       r.now(),
	}
	// The unique index settles concurrent duplicates
	if err := r.offeringRepo.Create(ctx, offering); err != nil {
		return nil, err
	}

	r.logger.Info("Service offering submitted",
		"offeringID", offering.ID,
		"providerID", provider.ID,
		"specificType", specificType)
	return offering, nil
}

// ListForProvider returns a provider's own offerings, newest first
func (r *ServiceOfferingRegistry) ListForProvider(ctx context.Context, providerID string, status entity.ReviewStatus) ([]*entity.ServiceOffering, error) {
	if err := checkStatusFilter(status); err != nil {
		return nil, err
	}
	return r.offeringRepo.List(ctx, repository.OfferingFilter{ProviderID: providerID, Status: status})
}

// ListAll returns every offering with its provider, newest first
func (r *ServiceOfferingRegistry) ListAll(ctx context.Context, status entity.ReviewStatus) ([]OfferingDetail, error) {
	if err := checkStatusFilter(status); err != nil {
		return nil, err
	}

	offerings, err := r.offeringRepo.List(ctx, repository.OfferingFilter{Status: status})
	if err != nil {
		return nil, err
	}
	return r.withProviders(ctx, offerings)
}

func (r *ServiceOfferingRegistry) withProviders(ctx context.Context, offerings []*entity.ServiceOffering) ([]OfferingDetail, error) {
	ids := make([]string, 0, len(offerings))
	for _, o := range offerings {
		ids = append(ids, o.ProviderID)
	}
	providers, err := r.actorRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	details := make([]OfferingDetail, 0, len(offerings))
	for _, o := range offerings {
		details = append(details, OfferingDetail{ServiceOffering: o, Provider: providers[o.ProviderID]})
	}
	return details, nil
}

// SetStatus applies a package manager's review decision
func (r *ServiceOfferingRegistry) SetStatus(ctx context.Context, id string, status entity.ReviewStatus, employee *entity.Actor) (*entity.ServiceOffering, error) {
	if err := Require(employee, entity.CapPackageManager); err != nil {
		return nil, err
	}

	if !isOutcome(entity.OfferingReview, status) {
		return nil, apperror.ErrInvalidTransition.WithMessage("Invalid status provided. Status must be 'approved' or 'rejected'.")
	}

	offering, err := r.offeringRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if offering == nil {
		return nil, ErrOfferingNotFound
	}

	if err := entity.OfferingReview.Transition(offering.Status, status); err != nil {
		return nil, err
	}

	updated, err := r.offeringRepo.UpdateStatus(ctx, id, offering.Status, status, employee.ID, r.now())
	if err != nil {
		return nil, err
	}

	r.metrics.ReviewTransitions.WithLabelValues("service_offering", string(status)).Inc()
	r.logger.Info("Service offering reviewed",
		"offeringID", id,
		"status", status,
		"reviewerID", employee.ID)
	return updated, nil
}

func checkStatusFilter(status entity.ReviewStatus) error {
	if status != "" && !entity.OfferingReview.Known(status) {
		return ErrInvalidStatus.WithMessage("Status must be 'pending', 'approved' or 'rejected'.")
	}
	return nil
}

func isOutcome(flow entity.ReviewFlow, status entity.ReviewStatus) bool {
	for _, s := range flow.Outcomes() {
		if s == status {
			return true
		}
	}
	return false
}
