package usecase

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"safarsathi-service/internal/domain/entity"
	"safarsathi-service/internal/domain/repository"
	"safarsathi-service/pkg/apperror"
	"safarsathi-service/pkg/logger"
)

var (
	ErrDuplicateEmail     = apperror.Conflict("duplicate_email", "User with this email already exists.")
	ErrInvalidCredentials = apperror.Validation("invalid_credentials", "Invalid email or password.")
	ErrRoleMismatch       = apperror.Validation("role_mismatch", "User with provided role not found.")
	ErrWeakPassword       = apperror.Validation("weak_password", "Password must contain at least 8 characters.")
	ErrActorNotFound      = apperror.NotFound("user_not_found", "User not found.")
	ErrNoProviders        = apperror.NotFound("no_providers", "No service providers found.")
	ErrNotOrganization    = apperror.Validation("not_organization", "Only organization service providers have an organization image.")
	ErrImageRequired      = apperror.Validation("image_required", "Image is required.")
	ErrImageUploadFailed  = apperror.New(apperror.KindUpstream, "image_upload_failed", "Image upload failed.")
	ErrNotOwnProfile      = apperror.New(apperror.KindForbidden, "not_own_profile", "You can only update your own profile.")
	ErrMissingExperience  = apperror.Validation("invalid_provider_details", "Please provide first name, last name, and individual details.")
)

const codeDigits = 6

// RegisterCustomerInput carries a self-registration request
type RegisterCustomerInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Phone     string
	Address   *entity.Address
	Code      string
}

// AddEmployeeInput carries an employee account created by a provider verifier
type AddEmployeeInput struct {
	FirstName        string
	LastName         string
	Email            string
	Password         string
	Phone            string
	Address          entity.Address
	VerificationRole entity.VerificationRole
}

// RegisterProviderInput carries a service provider onboarded by a provider verifier
type RegisterProviderInput struct {
	FirstName    string
	LastName     string
	Email        string
	Password     string
	Phone        string
	Address      entity.Address
	ServiceType  entity.ProviderType
	Individual   entity.IndividualDetails
	Organization entity.OrganizationDetails
}

// Accounts manages actor registration, login and profiles
type Accounts struct {
	actorRepo repository.ActorRepository
	codeRepo  repository.CodeRepository
	imageRepo repository.ImageRepository
	hasher    CredentialHasher
	tokens    TokenIssuer
	notifier  *Notifier
	codeTTL   time.Duration
	logger    logger.Logger
	now       func() time.Time
}

// NewAccounts creates the accounts use case
func NewAccounts(
	actorRepo repository.ActorRepository,
	codeRepo repository.CodeRepository,
	imageRepo repository.ImageRepository,
	hasher CredentialHasher,
	tokens TokenIssuer,
	notifier *Notifier,
	codeTTL time.Duration,
	logger logger.Logger,
) *Accounts {
	return &Accounts{
		actorRepo: actorRepo,
		codeRepo:  codeRepo,
		imageRepo: imageRepo,
		hasher:    hasher,
		tokens:    tokens,
		notifier:  notifier,
		codeTTL:   codeTTL,
		logger:    logger,
		now:       time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RequestRegistrationCode issues a one-time code for email and mails it.
// A new request replaces any outstanding code.
func (a *Accounts) RequestRegistrationCode(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if !strings.Contains(email, "@") {
		return apperror.Validation("invalid_email", "Please provide a valid email.")
	}

	if err := a.ensureEmailFree(ctx, email); err != nil {
		return err
	}

	code, err := generateCode(codeDigits)
	if err != nil {
		return fmt.Errorf("failed to generate verification code: %w", err)
	}

	if err := a.codeRepo.Put(ctx, email, code, a.codeTTL); err != nil {
		return err
	}

	if err := a.notifier.SendVerification(ctx, email, code, a.codeTTL); err != nil {
		return err
	}

	a.logger.Info("Verification code issued", "email", email)
	return nil
}

// RegisterCustomer creates a customer account, consuming the emailed code
func (a *Accounts) RegisterCustomer(ctx context.Context, in RegisterCustomerInput) (*entity.Actor, string, error) {
	identity, err := a.identity(in.FirstName, in.LastName, in.Email, in.Password, in.Phone, in.Address)
	if err != nil {
		return nil, "", err
	}

	actor, err := entity.NewCustomer(identity)
	if err != nil {
		return nil, "", err
	}

	if err := a.ensureEmailFree(ctx, actor.Email); err != nil {
		return nil, "", err
	}

	if err := a.codeRepo.Consume(ctx, actor.Email, strings.TrimSpace(in.Code)); err != nil {
		a.logger.Debug("Verification code rejected", "email", actor.Email, "error", err)
		return nil, "", err
	}

	if err := a.create(ctx, actor); err != nil {
		return nil, "", err
	}

	token, err := a.tokens.Sign(actor)
	if err != nil {
		return nil, "", err
	}

	// Welcome mail is best effort; the account already exists
	if err := a.notifier.SendWelcome(ctx, actor); err != nil {
		a.logger.Warn("Welcome email not sent", "actorID", actor.ID, "error", err)
	}

	a.logger.Info("Customer registered", "actorID", actor.ID)
	return actor, token, nil
}

// Login checks credentials and that the stored role matches the requested one
func (a *Accounts) Login(ctx context.Context, email, password string, role entity.Role) (*entity.Actor, string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" || role == "" {
		return nil, "", apperror.Validation("missing_fields", "Please provide email, password and role.")
	}

	actor, err := a.actorRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if actor == nil {
		return nil, "", ErrInvalidCredentials
	}

	ok, err := a.hasher.Verify(password, actor.PasswordHash)
	if err != nil {
		return nil, "", fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return nil, "", ErrInvalidCredentials
	}

	if actor.Role != role {
		return nil, "", ErrRoleMismatch
	}

	token, err := a.tokens.Sign(actor)
	if err != nil {
		return nil, "", err
	}

	a.logger.Info("Actor logged in", "actorID", actor.ID, "role", actor.Role)
	return actor, token, nil
}

// Me returns the actor behind an authenticated request
func (a *Accounts) Me(ctx context.Context, id string) (*entity.Actor, error) {
	actor, err := a.actorRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, ErrActorNotFound
	}
	return actor, nil
}

// AddEmployee creates an employee account
func (a *Accounts) AddEmployee(ctx context.Context, in AddEmployeeInput) (*entity.Actor, error) {
	address := in.Address
	identity, err := a.identity(in.FirstName, in.LastName, in.Email, in.Password, in.Phone, &address)
	if err != nil {
		return nil, err
	}

	actor, err := entity.NewEmployee(identity, in.VerificationRole)
	if err != nil {
		return nil, err
	}

	if err := a.create(ctx, actor); err != nil {
		return nil, err
	}

	a.logger.Info("Employee added", "actorID", actor.ID, "verificationRole", in.VerificationRole)
	return actor, nil
}

// RegisterServiceProvider onboards an individual or organization provider.
// Organizations must supply an image.
func (a *Accounts) RegisterServiceProvider(ctx context.Context, in RegisterProviderInput, image *repository.Image) (*entity.Actor, error) {
	address := in.Address
	identity, err := a.identity(in.FirstName, in.LastName, in.Email, in.Password, in.Phone, &address)
	if err != nil {
		return nil, err
	}

	var actor *entity.Actor
	switch in.ServiceType {
	case entity.ProviderIndividual:
		if in.Individual.Experience <= 0 {
			return nil, ErrMissingExperience
		}
		actor, err = entity.NewIndividualProvider(identity, in.Individual)
	case entity.ProviderOrganization:
		in.Organization.OrganizationImg = ""
		actor, err = entity.NewOrganizationProvider(identity, in.Organization)
		if err == nil && image == nil {
			err = apperror.Validation("image_required", "Organization image is required.")
		}
	default:
		return nil, apperror.Validation("invalid_service_type", "Invalid service type.")
	}
	if err != nil {
		return nil, err
	}

	if err := a.ensureEmailFree(ctx, actor.Email); err != nil {
		return nil, err
	}

	if actor.IsOrganization() {
		url, err := a.upload(ctx, folderOrganizations, *image)
		if err != nil {
			return nil, err
		}
		actor.Provider.Organization.OrganizationImg = url

		if err := a.create(ctx, actor); err != nil {
			a.discard(url)
			return nil, err
		}
	} else if err := a.create(ctx, actor); err != nil {
		return nil, err
	}

	a.logger.Info("Service provider registered", "actorID", actor.ID, "serviceType", in.ServiceType)
	return actor, nil
}

// FindServiceProviders searches providers; an empty result is NotFound
func (a *Accounts) FindServiceProviders(ctx context.Context, filter repository.ProviderFilter) ([]*entity.Actor, error) {
	filter.Email = normalizeEmail(filter.Email)

	providers, err := a.actorRepo.FindProviders(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(providers) == 0 {
		return nil, ErrNoProviders
	}
	return providers, nil
}

// UpdateOrganizationImage replaces the image of the acting organization
// provider and removes the previous object.
func (a *Accounts) UpdateOrganizationImage(ctx context.Context, acting *entity.Actor, providerID string, image *repository.Image) (string, error) {
	if acting == nil || acting.ID != providerID {
		return "", ErrNotOwnProfile
	}
	if image == nil {
		return "", ErrImageRequired
	}

	provider, err := a.actorRepo.FindByID(ctx, providerID)
	if err != nil {
		return "", err
	}
	if provider == nil {
		return "", ErrActorNotFound
	}
	if !provider.IsOrganization() || provider.Provider.Organization == nil {
		return "", ErrNotOrganization
	}
	previous := provider.Provider.Organization.OrganizationImg

	url, err := a.upload(ctx, folderOrganizations, *image)
	if err != nil {
		return "", err
	}

	if err := a.actorRepo.UpdateOrganizationImage(ctx, providerID, url); err != nil {
		a.discard(url)
		return "", err
	}

	if previous != "" {
		a.discard(previous)
	}

	a.logger.Info("Organization image updated", "actorID", providerID)
	return url, nil
}

func (a *Accounts) identity(firstName, lastName, email, password, phone string, address *entity.Address) (entity.Identity, error) {
	if len(password) < 8 {
		return entity.Identity{}, ErrWeakPassword
	}

	hash, err := a.hasher.Hash(password)
	if err != nil {
		return entity.Identity{}, fmt.Errorf("failed to hash password: %w", err)
	}

	return entity.Identity{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PasswordHash: hash,
		Phone:        phone,
		Address:      address,
	}, nil
}

func (a *Accounts) ensureEmailFree(ctx context.Context, email string) error {
	existing, err := a.actorRepo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrDuplicateEmail
	}
	return nil
}

func (a *Accounts) create(ctx context.Context, actor *entity.Actor) error {
	actor.CreatedAt = a.now()
	return a.actorRepo.Create(ctx, actor)
}

func (a *Accounts) upload(ctx context.Context, folder string, image repository.Image) (string, error) {
	url, err := a.imageRepo.Upload(ctx, folder, image)
	if err != nil {
		a.logger.Error("Image upload failed", "folder", folder, "error", err)
		return "", ErrImageUploadFailed.Wrap(err)
	}
	return url, nil
}

// discard deletes an uploaded object; failures are only logged
func (a *Accounts) discard(url string) {
	discardImage(a.imageRepo, a.logger, url)
}

func discardImage(images repository.ImageRepository, log logger.Logger, url string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := images.Delete(ctx, url); err != nil {
		log.Error("Failed to delete image", "url", url, "error", err)
	}
}

// generateCode returns a uniformly random numeric code of n digits
func generateCode(n int) (string, error) {
	limit := big.NewInt(1)
	for i := 0; i < n; i++ {
		limit.Mul(limit, big.NewInt(10))
	}

	v, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", n, v), nil
}
