package entity

import (
	"strings"
	"time"

	"safarsathi-service/pkg/apperror"
)

// Role discriminates the Actor union
type Role string

const (
	RoleCustomer        Role = "customer"
	RoleEmployee        Role = "employee"
	RoleServiceProvider Role = "service_provider"
)

// VerificationRole is the employee sub-role
type VerificationRole string

const (
	PackageManager   VerificationRole = "package_manager"
	ProviderVerifier VerificationRole = "provider_verifier"
)

// ProviderType distinguishes individual providers from organizations
type ProviderType string

const (
	ProviderIndividual   ProviderType = "individual"
	ProviderOrganization ProviderType = "organization"
)

// Capability is what the access gate projects an actor onto
type Capability string

const (
	CapCustomer         Capability = "customer"
	CapPackageManager   Capability = "employee:package_manager"
	CapProviderVerifier Capability = "employee:provider_verifier"
	CapServiceProvider  Capability = "service_provider"
)

type Address struct {
	Street  string `json:"street" bson:"street"`
	City    string `json:"city" bson:"city"`
	Pincode string `json:"pincode" bson:"pincode"`
}

// EmployeeProfile is the payload of the employee variant
type EmployeeProfile struct {
	VerificationRole VerificationRole `json:"verificationRole" bson:"verificationRole"`
}

type IndividualDetails struct {
	Experience     int      `json:"experience" bson:"experience"`
	Specialization []string `json:"specialization,omitempty" bson:"specialization,omitempty"`
	Rating         float64  `json:"rating" bson:"rating"`
	Languages      []string `json:"languages,omitempty" bson:"languages,omitempty"`
}

type OrganizationDetails struct {
	OrganizationName string `json:"organizationName" bson:"organizationName"`
	LicenseNumber    string `json:"licenseNumber" bson:"licenseNumber"`
	Website          string `json:"website,omitempty" bson:"website,omitempty"`
	OrganizationImg  string `json:"organizationImg,omitempty" bson:"organizationImg,omitempty"`
}

// ProviderProfile is the payload of the service_provider variant. Exactly
// one of Individual and Organization is set, matching ServiceType.
type ProviderProfile struct {
	ServiceType  ProviderType         `json:"serviceType" bson:"serviceType"`
	Individual   *IndividualDetails   `json:"individual,omitempty" bson:"individual,omitempty"`
	Organization *OrganizationDetails `json:"organization,omitempty" bson:"organization,omitempty"`
}

// Actor is any authenticated identity. Role selects which payload is set:
// Employee for employees, Provider for service providers, neither for
// customers. Build actors through the New* constructors.
type Actor struct {
	ID           string           `json:"id" bson:"_id,omitempty"`
	FirstName    string           `json:"firstName,omitempty" bson:"firstName,omitempty"`
	LastName     string           `json:"lastName,omitempty" bson:"lastName,omitempty"`
	Email        string           `json:"email" bson:"email"`
	PasswordHash string           `json:"-" bson:"password"`
	Phone        string           `json:"phone" bson:"phone"`
	Role         Role             `json:"role" bson:"role"`
	Address      *Address         `json:"address,omitempty" bson:"address,omitempty"`
	Employee     *EmployeeProfile `json:"employee,omitempty" bson:"employee,omitempty"`
	Provider     *ProviderProfile `json:"provider,omitempty" bson:"provider,omitempty"`
	CreatedAt    time.Time        `json:"createdAt" bson:"createdAt"`
}

// Identity holds the fields shared by every variant
type Identity struct {
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Phone        string
	Address      *Address
}

func NewCustomer(id Identity) (*Actor, error) {
	a := id.actor(RoleCustomer)
	return a, a.Validate()
}

func NewEmployee(id Identity, role VerificationRole) (*Actor, error) {
	a := id.actor(RoleEmployee)
	a.Employee = &EmployeeProfile{VerificationRole: role}
	return a, a.Validate()
}

func NewIndividualProvider(id Identity, details IndividualDetails) (*Actor, error) {
	a := id.actor(RoleServiceProvider)
	a.Provider = &ProviderProfile{ServiceType: ProviderIndividual, Individual: &details}
	return a, a.Validate()
}

// NewOrganizationProvider drops personal names; organizations are identified
// by OrganizationName.
func NewOrganizationProvider(id Identity, details OrganizationDetails) (*Actor, error) {
	id.FirstName, id.LastName = "", ""
	a := id.actor(RoleServiceProvider)
	a.Provider = &ProviderProfile{ServiceType: ProviderOrganization, Organization: &details}
	return a, a.Validate()
}

func (id Identity) actor(role Role) *Actor {
	return &Actor{
		FirstName:    strings.TrimSpace(id.FirstName),
		LastName:     strings.TrimSpace(id.LastName),
		Email:        strings.ToLower(strings.TrimSpace(id.Email)),
		PasswordHash: id.PasswordHash,
		Phone:        strings.TrimSpace(id.Phone),
		Role:         role,
		Address:      id.Address,
	}
}

// Validate checks the union exhaustively
func (a *Actor) Validate() error {
	if a.Email == "" || !strings.Contains(a.Email, "@") {
		return apperror.Validation("invalid_email", "Please provide a valid email.")
	}
	if a.PasswordHash == "" {
		return apperror.Validation("missing_password", "Password is required.")
	}
	if len(a.Phone) != 10 {
		return apperror.Validation("invalid_phone", "Phone Number must contain exact 10 digits.")
	}

	switch a.Role {
	case RoleCustomer:
		if a.Employee != nil || a.Provider != nil {
			return apperror.Validation("invalid_actor", "A customer carries no employee or provider profile.")
		}
		return a.validateNames()

	case RoleEmployee:
		if a.Provider != nil || a.Employee == nil {
			return apperror.Validation("invalid_actor", "An employee requires an employee profile only.")
		}
		switch a.Employee.VerificationRole {
		case PackageManager, ProviderVerifier:
		default:
			return apperror.Validation("invalid_verification_role", "Verification role must be 'package_manager' or 'provider_verifier'.")
		}
		if err := a.validateAddress(); err != nil {
			return err
		}
		return a.validateNames()

	case RoleServiceProvider:
		if a.Employee != nil || a.Provider == nil {
			return apperror.Validation("invalid_actor", "A service provider requires a provider profile only.")
		}
		if err := a.validateAddress(); err != nil {
			return err
		}
		switch a.Provider.ServiceType {
		case ProviderIndividual:
			if a.Provider.Individual == nil || a.Provider.Organization != nil {
				return apperror.Validation("invalid_provider_details", "Please provide individual details.")
			}
			return a.validateNames()
		case ProviderOrganization:
			org := a.Provider.Organization
			if org == nil || a.Provider.Individual != nil || org.OrganizationName == "" || org.LicenseNumber == "" {
				return apperror.Validation("invalid_provider_details", "Please provide organization details.")
			}
			return nil
		default:
			return apperror.Validation("invalid_service_type", "Invalid service type.")
		}

	default:
		return apperror.Validation("invalid_role", "Invalid role selected.")
	}
}

func (a *Actor) validateNames() error {
	if len(a.FirstName) < 3 {
		return apperror.Validation("invalid_first_name", "First Name must contain at least 3 characters.")
	}
	if len(a.LastName) < 3 {
		return apperror.Validation("invalid_last_name", "Last Name must contain at least 3 characters.")
	}
	return nil
}

func (a *Actor) validateAddress() error {
	if a.Address == nil || a.Address.Street == "" || a.Address.City == "" || a.Address.Pincode == "" {
		return apperror.Validation("missing_address", "Street, city and pincode are required.")
	}
	return nil
}

// Capability projects the actor onto the capability set used for
// authorization. The second result is false for a malformed actor.
func (a *Actor) Capability() (Capability, bool) {
	switch a.Role {
	case RoleCustomer:
		return CapCustomer, true
	case RoleServiceProvider:
		return CapServiceProvider, true
	case RoleEmployee:
		if a.Employee == nil {
			return "", false
		}
		switch a.Employee.VerificationRole {
		case PackageManager:
			return CapPackageManager, true
		case ProviderVerifier:
			return CapProviderVerifier, true
		}
	}
	return "", false
}

// DisplayName is the name used in emails
func (a *Actor) DisplayName() string {
	if a.FirstName != "" {
		return a.FirstName
	}
	if a.Provider != nil && a.Provider.Organization != nil {
		return a.Provider.Organization.OrganizationName
	}
	return "User"
}

// IsOrganization reports whether a is an organization service provider
func (a *Actor) IsOrganization() bool {
	return a.Role == RoleServiceProvider && a.Provider != nil && a.Provider.ServiceType == ProviderOrganization
}
