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
	ErrOverlappingPackage = apperror.Conflict("overlapping_package", "A package with the same name, start date, end date, and type already exists.")
	ErrUnapprovedService  = apperror.Validation("unapproved_service", "Some services in the service plan are not approved.")
	ErrPackageNotFound    = apperror.NotFound("package_not_found", "Package not found.")
	ErrUnknownLocation    = apperror.Validation("unknown_location", "Some locations do not exist.")
	ErrInvalidPackageType = apperror.Validation("invalid_package_type", "Invalid package type. Use 'Major', 'Mini', or 'all'.")
	ErrMismatchedDates    = apperror.Validation("mismatched_dates", "Start dates and end dates arrays must have the same length.")
)

// ComposeInput carries a package manager's package definition
type ComposeInput struct {
	PackageImg      string
	Name            string
	StartDates      []time.Time
	EndDates        []time.Time
	Type            entity.PackageType
	Price           float64
	Locations       []string
	Schedule        []entity.ScheduleDay
	ServicesOffered []entity.OfferedService
	Vehicles        []string
}

// PackageDetail is a package with its locations, offerings and providers resolved
type PackageDetail struct {
	*entity.Package
	LocationDetails []*entity.Location        `json:"locationDetails"`
	Services        map[string]OfferingDetail `json:"services"`
}

// PackageComposer builds packages from approved service offerings
type PackageComposer struct {
	packageRepo  repository.PackageRepository
	offeringRepo repository.ServiceOfferingRepository
	locationRepo repository.LocationRepository
	actorRepo    repository.ActorRepository
	imageRepo    repository.ImageRepository
	metrics      *metrics.Metrics
	logger       logger.Logger
	now          func() time.Time
}

// NewPackageComposer creates the package composer
func NewPackageComposer(
	packageRepo repository.PackageRepository,
	offeringRepo repository.ServiceOfferingRepository,
	locationRepo repository.LocationRepository,
	actorRepo repository.ActorRepository,
	imageRepo repository.ImageRepository,
	metrics *metrics.Metrics,
	logger logger.Logger,
) *PackageComposer {
	return &PackageComposer{
		packageRepo:  packageRepo,
		offeringRepo: offeringRepo,
		locationRepo: locationRepo,
		actorRepo:    actorRepo,
		imageRepo:    imageRepo,
		metrics:      metrics,
		logger:       logger,
		now:          time.Now,
	}
}

// UploadPackageImage stores a package image and returns its URL
func (p *PackageComposer) UploadPackageImage(ctx context.Context, manager *entity.Actor, image *repository.Image) (string, error) {
	if err := Require(manager, entity.CapPackageManager); err != nil {
		return "", err
	}
	if image == nil {
		return "", ErrImageRequired.WithMessage("Package Image is required.")
	}

	url, err := p.imageRepo.Upload(ctx, folderPackages, *image)
	if err != nil {
		p.logger.Error("Image upload failed", "folder", folderPackages, "error", err)
		return "", ErrImageUploadFailed.Wrap(err)
	}
	return url, nil
}

// Compose validates and persists a package. Every referenced offering must
// be approved at this moment; nothing is stored when any check fails.
func (p *PackageComposer) Compose(ctx context.Context, manager *entity.Actor, in ComposeInput) (*entity.Package, error) {
	if err := Require(manager, entity.CapPackageManager); err != nil {
		return nil, err
	}

	pkg, err := p.buildPackage(in)
	if err != nil {
		return nil, err
	}

	start, end := pkg.Window()
	existing, err := p.packageRepo.FindOverlapping(ctx, pkg.Name, pkg.Type, start, end)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		p.logger.Debug("Package overlaps an existing one", "name", pkg.Name, "existingID", existing.ID)
		return nil, ErrOverlappingPackage
	}

	if err := p.checkLocations(ctx, pkg.Locations); err != nil {
		return nil, err
	}

	if err := p.checkServices(ctx, pkg.ServicesOffered); err != nil {
		return nil, err
	}

	pkg.CreatedBy = manager.ID
	pkg.CreatedAt = p.now()
	if err := p.packageRepo.Create(ctx, pkg); err != nil {
		return nil, err
	}

	p.metrics.PackagesComposed.Inc()
	p.logger.Info("Package composed",
		"packageID", pkg.ID,
		"name", pkg.Name,
		"type", pkg.Type,
		"services", len(pkg.ServiceRefs()))
	return pkg, nil
}

func (p *PackageComposer) buildPackage(in ComposeInput) (*entity.Package, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || len(in.StartDates) == 0 || len(in.EndDates) == 0 || in.Type == "" ||
		in.Price <= 0 || len(in.Locations) == 0 || len(in.Schedule) == 0 || len(in.ServicesOffered) == 0 {
		return nil, apperror.Validation("missing_fields", "All required fields must be provided.")
	}
	if strings.TrimSpace(in.PackageImg) == "" {
		return nil, ErrImageRequired.WithMessage("Package Image is required.")
	}
	if in.Type != entity.PackageMajor && in.Type != entity.PackageMini {
		return nil, ErrInvalidPackageType.WithMessage("Package type must be 'Major' or 'Mini'.")
	}
	if len(in.StartDates) != len(in.EndDates) {
		return nil, ErrMismatchedDates
	}
	for i := range in.StartDates {
		if in.EndDates[i].Before(in.StartDates[i]) {
			return nil, apperror.Validation("invalid_dates", fmt.Sprintf("End date %d is before its start date.", i+1))
		}
	}

	services := make([]entity.OfferedService, 0, len(in.ServicesOffered))
	for i, svc := range in.ServicesOffered {
		svc.ServiceType = strings.TrimSpace(svc.ServiceType)
		if svc.ServiceType == "" || len(svc.ServicePlan) == 0 {
			return nil, apperror.Validation("invalid_service", fmt.Sprintf("Service %d needs a service type and at least one plan.", i+1))
		}
		plans := make([][]entity.DayService, 0, len(svc.ServicePlan))
		for j, plan := range svc.ServicePlan {
			if len(plan) == 0 {
				return nil, apperror.Validation("invalid_service", fmt.Sprintf("Plan %d of %s is empty.", j+1, svc.ServiceType))
			}
			if err := checkDayServices(plan, svc.ServiceType); err != nil {
				return nil, err
			}
			plans = append(plans, trimDayServices(plan))
		}
		if err := checkDayServices(svc.ExtraService, svc.ServiceType); err != nil {
			return nil, err
		}
		svc.ServicePlan = plans
		svc.ExtraService = trimDayServices(svc.ExtraService)
		services = append(services, svc)
	}

	return &entity.Package{
		PackageImg:      strings.TrimSpace(in.PackageImg),
		Name:            name,
		StartDates:      in.StartDates,
		EndDates:        in.EndDates,
		Type:            in.Type,
		Price:           in.Price,
		Locations:       in.Locations,
		Schedule:        in.Schedule,
		ServicesOffered: services,
		Vehicles:        splitList(in.Vehicles),
	}, nil
}

func checkDayServices(entries []entity.DayService, serviceType string) error {
	for _, e := range entries {
		if strings.TrimSpace(e.Day) == "" || strings.TrimSpace(e.ActualService) == "" {
			return apperror.Validation("invalid_service", fmt.Sprintf("Every %s entry needs a day and an actual service.", serviceType))
		}
	}
	return nil
}

// trimDayServices copies entries with surrounding spaces removed, matching
// how bookings normalize their selections
func trimDayServices(entries []entity.DayService) []entity.DayService {
	if entries == nil {
		return nil
	}
	out := make([]entity.DayService, 0, len(entries))
	for _, e := range entries {
		out = append(out, entity.DayService{
			Day:           strings.TrimSpace(e.Day),
			ActualService: strings.TrimSpace(e.ActualService),
		})
	}
	return out
}

func (p *PackageComposer) checkLocations(ctx context.Context, ids []string) error {
	found, err := p.locationRepo.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if found[id] == nil {
			return ErrUnknownLocation.WithMessage(fmt.Sprintf("Location %s does not exist.", id))
		}
	}
	return nil
}

// checkServices resolves every plan and extra entry in order and reports the
// first one that is not approved.
func (p *PackageComposer) checkServices(ctx context.Context, services []entity.OfferedService) error {
	approved := make(map[string]bool)
	resolve := func(ref string) (bool, error) {
		if ok, seen := approved[ref]; seen {
			return ok, nil
		}
		offering, err := p.offeringRepo.FindApproved(ctx, ref)
		if err != nil {
			return false, err
		}
		approved[ref] = offering != nil
		return offering != nil, nil
	}

	for _, svc := range services {
		for i, plan := range svc.ServicePlan {
			for _, entry := range plan {
				ok, err := resolve(entry.ActualService)
				if err != nil {
					return err
				}
				if !ok {
					return ErrUnapprovedService.WithMessage(fmt.Sprintf(
						"Service %s for day %s in %s plan %d is not approved.", entry.ActualService, entry.Day, svc.ServiceType, i+1))
				}
			}
		}
		for _, entry := range svc.ExtraService {
			ok, err := resolve(entry.ActualService)
			if err != nil {
				return err
			}
			if !ok {
				return ErrUnapprovedService.WithMessage(fmt.Sprintf(
					"Extra service %s for day %s in %s is not approved.", entry.ActualService, entry.Day, svc.ServiceType))
			}
		}
	}
	return nil
}

// ListPackages lists packages newest first. pkgType is "Major", "Mini",
// "all" or empty.
func (p *PackageComposer) ListPackages(ctx context.Context, pkgType string) ([]*entity.Package, error) {
	var filter entity.PackageType
	switch pkgType {
	case "", "all":
	case string(entity.PackageMajor), string(entity.PackageMini):
		filter = entity.PackageType(pkgType)
	default:
		return nil, ErrInvalidPackageType
	}
	return p.packageRepo.List(ctx, filter)
}

// GetPackage returns a package with its references resolved
func (p *PackageComposer) GetPackage(ctx context.Context, id string) (*PackageDetail, error) {
	pkg, err := p.packageRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return nil, ErrPackageNotFound
	}

	locations, err := p.locationRepo.FindByIDs(ctx, pkg.Locations)
	if err != nil {
		return nil, err
	}
	offerings, err := p.offeringRepo.FindByIDs(ctx, pkg.ServiceRefs())
	if err != nil {
		return nil, err
	}

	providerIDs := make([]string, 0, len(offerings))
	for _, o := range offerings {
		providerIDs = append(providerIDs, o.ProviderID)
	}
	providers, err := p.actorRepo.FindByIDs(ctx, providerIDs)
	if err != nil {
		return nil, err
	}

	detail := &PackageDetail{
		Package:         pkg,
		LocationDetails: make([]*entity.Location, 0, len(pkg.Locations)),
		Services:        make(map[string]OfferingDetail, len(offerings)),
	}
	for _, id := range pkg.Locations {
		if loc, ok := locations[id]; ok {
			detail.LocationDetails = append(detail.LocationDetails, loc)
		}
	}
	for id, o := range offerings {
		detail.Services[id] = OfferingDetail{ServiceOffering: o, Provider: providers[o.ProviderID]}
	}
	return detail, nil
}
