package rest

import (
	"safarsathi-service/internal/domain/entity"
	"safarsathi-service/internal/domain/repository"
	"safarsathi-service/internal/usecase"

	"github.com/gofiber/fiber/v2"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=customer employee service_provider"`
}

type otpRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type addressRequest struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	Pincode string `json:"pincode"`
}

func (a *addressRequest) entity() *entity.Address {
	if a == nil {
		return nil
	}
	return &entity.Address{Street: a.Street, City: a.City, Pincode: a.Pincode}
}

type registerCustomerRequest struct {
	FirstName string          `json:"firstName" validate:"required"`
	LastName  string          `json:"lastName" validate:"required"`
	Email     string          `json:"email" validate:"required,email"`
	Password  string          `json:"password" validate:"required"`
	Phone     string          `json:"phone" validate:"required,len=10"`
	Address   *addressRequest `json:"address"`
	OTP       string          `json:"otp" validate:"required"`
}

type addEmployeeRequest struct {
	FirstName        string `json:"firstName" validate:"required"`
	LastName         string `json:"lastName" validate:"required"`
	Email            string `json:"email" validate:"required,email"`
	Password         string `json:"password" validate:"required"`
	Phone            string `json:"phone" validate:"required,len=10"`
	Street           string `json:"street" validate:"required"`
	City             string `json:"city" validate:"required"`
	Pincode          string `json:"pincode" validate:"required"`
	VerificationRole string `json:"verificationRole" validate:"required,oneof=package_manager provider_verifier"`
}

// registerProviderRequest arrives as multipart form data
type registerProviderRequest struct {
	FirstName        string  `form:"firstName"`
	LastName         string  `form:"lastName"`
	Email            string  `form:"email" validate:"required,email"`
	Password         string  `form:"password" validate:"required"`
	Phone            string  `form:"phone" validate:"required,len=10"`
	Street           string  `form:"street" validate:"required"`
	City             string  `form:"city" validate:"required"`
	Pincode          string  `form:"pincode" validate:"required"`
	ServiceType      string  `form:"serviceType" validate:"required,oneof=individual organization"`
	Experience       int     `form:"experience"`
	Specialization   string  `form:"specialization"`
	Languages        string  `form:"languages"`
	Rating           float64 `form:"rating"`
	OrganizationName string  `form:"organizationName"`
	LicenseNumber    string  `form:"licenseNumber"`
	Website          string  `form:"website"`
}

type findProvidersQuery struct {
	Email            string   `query:"email"`
	FirstName        string   `query:"firstName"`
	LastName         string   `query:"lastName"`
	Phone            string   `query:"phone"`
	ServiceType      string   `query:"serviceType"`
	Experience       *int     `query:"experience"`
	Languages        string   `query:"languages"`
	Specialization   string   `query:"specialization"`
	Rating           *float64 `query:"rating"`
	OrganizationName string   `query:"organizationName"`
	LicenseNumber    string   `query:"licenseNumber"`
	Website          string   `query:"website"`
}

// Login authenticates and sets the role's session cookie
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	actor, token, err := h.uc.Accounts.Login(c.UserContext(), req.Email, req.Password, entity.Role(req.Role))
	if err != nil {
		return err
	}
	return h.session(c, fiber.StatusOK, "Login Successfully!", actor, token)
}

// RequestRegistrationCode emails a one-time registration code
func (h *Handler) RequestRegistrationCode(c *fiber.Ctx) error {
	var req otpRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	if err := h.uc.Accounts.RequestRegistrationCode(c.UserContext(), req.Email); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "OTP sent to " + req.Email,
	})
}

func (h *Handler) RegisterCustomer(c *fiber.Ctx) error {
	var req registerCustomerRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	actor, token, err := h.uc.Accounts.RegisterCustomer(c.UserContext(), usecase.RegisterCustomerInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Phone:     req.Phone,
		Address:   req.Address.entity(),
		Code:      req.OTP,
	})
	if err != nil {
		return err
	}
	return h.session(c, fiber.StatusCreated, "User Registered Successfully.", actor, token)
}

func (h *Handler) session(c *fiber.Ctx, status int, message string, actor *entity.Actor, token string) error {
	h.setSessionCookie(c, actor, token)
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"message": message,
		"user":    actor,
		"token":   token,
	})
}

// Me returns the authenticated actor as currently stored
func (h *Handler) Me(c *fiber.Ctx) error {
	actor, err := h.uc.Accounts.Me(c.UserContext(), currentActor(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"user":    actor,
	})
}

// logout clears the session cookies of the given capabilities
func (h *Handler) logout(caps ...entity.Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		for _, sc := range sessionCookies {
			if hasCapability(caps, sc.capability) {
				h.clearSessionCookie(c, sc.name)
			}
		}
		return c.JSON(fiber.Map{
			"success": true,
			"message": "Logged Out Successfully.",
		})
	}
}

func (h *Handler) AddEmployee(c *fiber.Ctx) error {
	var req addEmployeeRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	actor, err := h.uc.Accounts.AddEmployee(c.UserContext(), usecase.AddEmployeeInput{
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Email:            req.Email,
		Password:         req.Password,
		Phone:            req.Phone,
		Address:          entity.Address{Street: req.Street, City: req.City, Pincode: req.Pincode},
		VerificationRole: entity.VerificationRole(req.VerificationRole),
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "New Employee Added!",
		"user":    actor,
	})
}

// RegisterServiceProvider onboards a provider from a multipart form. The
// organization image is read from the organizationImg file field.
func (h *Handler) RegisterServiceProvider(c *fiber.Ctx) error {
	var req registerProviderRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	image, closeImage, err := formImage(c, "organizationImg")
	if err != nil {
		return err
	}
	defer closeImage()

	actor, err := h.uc.Accounts.RegisterServiceProvider(c.UserContext(), usecase.RegisterProviderInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Password:    req.Password,
		Phone:       req.Phone,
		Address:     entity.Address{Street: req.Street, City: req.City, Pincode: req.Pincode},
		ServiceType: entity.ProviderType(req.ServiceType),
		Individual: entity.IndividualDetails{
			Experience:     req.Experience,
			Specialization: commaList(req.Specialization),
			Rating:         req.Rating,
			Languages:      commaList(req.Languages),
		},
		Organization: entity.OrganizationDetails{
			OrganizationName: req.OrganizationName,
			LicenseNumber:    req.LicenseNumber,
			Website:          req.Website,
		},
	}, image)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Service provider registered successfully!",
		"user":    actor,
	})
}

func (h *Handler) FindServiceProviders(c *fiber.Ctx) error {
	var q findProvidersQuery
	if err := c.QueryParser(&q); err != nil {
		return errInvalidBody.Wrap(err)
	}

	providers, err := h.uc.Accounts.FindServiceProviders(c.UserContext(), repository.ProviderFilter{
		Email:            q.Email,
		FirstName:        q.FirstName,
		LastName:         q.LastName,
		Phone:            q.Phone,
		ServiceType:      entity.ProviderType(q.ServiceType),
		Experience:       q.Experience,
		Languages:        commaList(q.Languages),
		Specialization:   commaList(q.Specialization),
		MinRating:        q.Rating,
		OrganizationName: q.OrganizationName,
		LicenseNumber:    q.LicenseNumber,
		Website:          q.Website,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":          true,
		"serviceProviders": providers,
	})
}

func (h *Handler) UpdateOrganizationImage(c *fiber.Ctx) error {
	image, closeImage, err := formImage(c, "organizationImg")
	if err != nil {
		return err
	}
	defer closeImage()

	url, err := h.uc.Accounts.UpdateOrganizationImage(c.UserContext(), currentActor(c), c.Params("serviceProviderId"), image)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":         true,
		"message":         "Organization image updated successfully.",
		"organizationImg": url,
	})
}
