package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"safarsathi-service/internal/domain/entity"
	"safarsathi-service/internal/domain/repository"
	"safarsathi-service/pkg/apperror"
	"safarsathi-service/pkg/logger"
	"safarsathi-service/pkg/metrics"
)

var (
	ErrAlreadyBooked       = apperror.Conflict("already_booked", "You have already booked this package.")
	ErrNoServicesSelected  = apperror.Validation("no_services_selected", "At least one service must be selected.")
	ErrServiceNotInPackage = apperror.Validation("service_not_in_package", "Some selected services are not part of the package.")
)

// BookInput carries a customer's booking request
type BookInput struct {
	PackageID        string
	Price            float64
	StartDate        time.Time
	LeadTraveller    *entity.LeadTraveller
	NoOfTravellers   *entity.TravellerCounts
	ServicesSelected []entity.SelectedService
	Vehicle          string
}

// BookingEngine creates bookings against composed packages
type BookingEngine struct {
	bookingRepo repository.BookingRepository
	packageRepo repository.PackageRepository
	metrics     *metrics.Metrics
	logger      logger.Logger
	now         func() time.Time
}

// NewBookingEngine creates the booking engine
func NewBookingEngine(
	bookingRepo repository.BookingRepository,
	packageRepo repository.PackageRepository,
	metrics *metrics.Metrics,
	logger logger.Logger,
) *BookingEngine {
	return &BookingEngine{
		bookingRepo: bookingRepo,
		packageRepo: packageRepo,
		metrics:     metrics,
		logger:      logger,
		now:         time.Now,
	}
}

// Book creates the customer's single booking of a package. Every selected
// service must be one the package offers for that service type.
func (b *BookingEngine) Book(ctx context.Context, customer *entity.Actor, in BookInput) (*entity.Booking, error) {
	if err := Require(customer, entity.CapCustomer); err != nil {
		return nil, err
	}
	if err := validateBooking(in); err != nil {
		return nil, err
	}

	pkg, err := b.packageRepo.FindByID(ctx, in.PackageID)
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return nil, ErrPackageNotFound
	}

	exists, err := b.bookingRepo.Exists(ctx, customer.ID, pkg.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyBooked
	}

	selected := normalizeSelection(in.ServicesSelected)
	for _, svc := range selected {
		for _, entry := range svc.ServicePlan {
			if !pkg.Offers(svc.ServiceType, entry) {
				return nil, ErrServiceNotInPackage.WithMessage(fmt.Sprintf(
					"Service %s for day %s is not offered as %s in this package.", entry.ActualService, entry.Day, svc.ServiceType))
			}
		}
	}

	booking := &entity.Booking{
		TouristID:        customer.ID,
		PackageID:        pkg.ID,
		Price:            in.Price,
		StartDate:        in.StartDate,
		LeadTraveller:    *in.LeadTraveller,
		NoOfTravellers:   *in.NoOfTravellers,
		ServicesSelected: selected,
		Vehicle:          strings.TrimSpace(in.Vehicle),
		CreatedAt:        b.now(),
	}
	// A concurrent duplicate is rejected by the store's unique index
	if err := b.bookingRepo.Create(ctx, booking); err != nil {
		return nil, err
	}

	b.metrics.BookingsCreated.Inc()
	b.logger.Info("Booking created",
		"bookingID", booking.ID,
		"packageID", pkg.ID,
		"customerID", customer.ID,
		"travellers", booking.NoOfTravellers.Total())
	return booking, nil
}

// ListBookings returns a customer's bookings, newest first
func (b *BookingEngine) ListBookings(ctx context.Context, customer *entity.Actor) ([]*entity.Booking, error) {
	if err := Require(customer, entity.CapCustomer); err != nil {
		return nil, err
	}
	return b.bookingRepo.ListByTourist(ctx, customer.ID)
}

func validateBooking(in BookInput) error {
	if strings.TrimSpace(in.PackageID) == "" || in.Price <= 0 || in.StartDate.IsZero() ||
		in.LeadTraveller == nil || in.NoOfTravellers == nil || strings.TrimSpace(in.Vehicle) == "" {
		return apperror.Validation("missing_fields",
			"Package ID, start date, lead traveller details, vehicle and number of travellers are required.")
	}

	lead := in.LeadTraveller
	if lead.FirstName == "" || lead.LastName == "" || lead.Email == "" || lead.Phone == "" {
		return apperror.Validation("invalid_lead_traveller", "Lead traveller needs a name, email and phone.")
	}

	counts := in.NoOfTravellers
	if counts.NoOfAdult < 0 || counts.NoOfChild1 < 0 || counts.NoOfChild2 < 0 || counts.NoOfInfant < 0 || counts.Total() == 0 {
		return apperror.Validation("invalid_travellers", "Number of travellers must be positive.")
	}

	if len(in.ServicesSelected) == 0 {
		return ErrNoServicesSelected
	}
	for _, svc := range in.ServicesSelected {
		if strings.TrimSpace(svc.ServiceType) == "" || len(svc.ServicePlan) == 0 {
			return apperror.Validation("invalid_service", "Every selected service needs a service type and a plan.")
		}
		if err := checkDayServices(svc.ServicePlan, svc.ServiceType); err != nil {
			return err
		}
	}
	return nil
}

// normalizeSelection trims fields and drops repeated day entries, keeping
// the first occurrence.
func normalizeSelection(selected []entity.SelectedService) []entity.SelectedService {
	out := make([]entity.SelectedService, 0, len(selected))
	for _, svc := range selected {
		seen := make(map[entity.DayService]bool, len(svc.ServicePlan))
		plan := make([]entity.DayService, 0, len(svc.ServicePlan))
		for _, entry := range svc.ServicePlan {
			entry = entity.DayService{
				Day:           strings.TrimSpace(entry.Day),
				ActualService: strings.TrimSpace(entry.ActualService),
			}
			if seen[entry] {
				continue
			}
			seen[entry] = true
			plan = append(plan, entry)
		}
		out = append(out, entity.SelectedService{
			ServiceType: strings.TrimSpace(svc.ServiceType),
			ServicePlan: plan,
		})
	}
	return out
}
