// Package rest exposes the use cases over HTTP with fiber
package rest

import (
	"time"

	"safarsathi-service/internal/domain/entity"
	"safarsathi-service/internal/usecase"
	"safarsathi-service/pkg/logger"
	"safarsathi-service/pkg/metrics"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options configures the HTTP surface
type Options struct {
	AppVersion     string
	AllowedOrigins string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	BodyLimit      int
	CookieTTL      time.Duration
	SecureCookies  bool
	// Gatherer backs /metrics; nil uses the default registry
	Gatherer prometheus.Gatherer
}

// UseCases groups everything the handlers call into
type UseCases struct {
	Accounts  *usecase.Accounts
	Gate      *usecase.AccessGate
	Offerings *usecase.ServiceOfferingRegistry
	Locations *usecase.LocationRegistry
	Packages  *usecase.PackageComposer
	Bookings  *usecase.BookingEngine
	Payments  *usecase.Payments
}

// Handler serves every route of the API
type Handler struct {
	uc       UseCases
	validate *validator.Validate
	opts     Options
	metrics  *metrics.Metrics
	logger   logger.Logger
}

// NewHandler creates the HTTP handler set
func NewHandler(uc UseCases, opts Options, metrics *metrics.Metrics, logger logger.Logger) *Handler {
	return &Handler{
		uc:       uc,
		validate: newValidator(),
		opts:     opts,
		metrics:  metrics,
		logger:   logger,
	}
}

// NewApp builds the fiber application with middleware and routes
func NewApp(h *Handler) *fiber.App {
	bodyLimit := h.opts.BodyLimit
	if bodyLimit <= 0 {
		bodyLimit = 10 * 1024 * 1024
	}

	app := fiber.New(fiber.Config{
		AppName:      "safarsathi-service",
		ReadTimeout:  h.opts.ReadTimeout,
		WriteTimeout: h.opts.WriteTimeout,
		BodyLimit:    bodyLimit,
		ErrorHandler: ErrorHandler(h.metrics, h.logger),
	})

	app.Use(recover.New())
	if h.opts.AllowedOrigins != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     h.opts.AllowedOrigins,
			AllowMethods:     "GET,POST,PUT,DELETE",
			AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
			AllowCredentials: true,
		}))
	}
	app.Use(h.observe)

	h.Register(app)
	return app
}

// Register mounts every route on router
func (h *Handler) Register(router fiber.Router) {
	gatherer := h.opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	router.Get("/health", h.Health)
	router.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	customer := h.requireActor(entity.CapCustomer)
	provider := h.requireActor(entity.CapServiceProvider)
	manager := h.requireActor(entity.CapPackageManager)
	verifier := h.requireActor(entity.CapProviderVerifier)
	employee := h.requireActor(entity.CapPackageManager, entity.CapProviderVerifier)
	staff := h.requireActor(entity.CapPackageManager, entity.CapProviderVerifier, entity.CapServiceProvider)

	user := router.Group("/user")
	user.Post("/login", h.Login)
	user.Post("/customer/register/otp", h.RequestRegistrationCode)
	user.Post("/customer/register", h.RegisterCustomer)
	user.Get("/customer/me", customer, h.Me)
	user.Get("/customer/logout", customer, h.logout(entity.CapCustomer))
	user.Post("/customer/addLocationRequest", customer, h.SubmitLocationRequest)
	user.Post("/employee/add", verifier, h.AddEmployee)
	user.Get("/employee/me", employee, h.Me)
	user.Get("/employee/logout", employee, h.logout(entity.CapPackageManager, entity.CapProviderVerifier))
	user.Post("/employee/addserviceprovider", verifier, h.RegisterServiceProvider)
	user.Get("/employee_serviceprovider/me", staff, h.Me)
	user.Get("/employee_serviceprovider/logout", staff,
		h.logout(entity.CapPackageManager, entity.CapProviderVerifier, entity.CapServiceProvider))
	user.Get("/serviceprovider/find", h.FindServiceProviders)
	user.Get("/serviceprovider/logout", provider, h.logout(entity.CapServiceProvider))
	user.Post("/serviceprovider/request", provider, h.SubmitOffering)
	user.Get("/serviceprovider/getallrequest", provider, h.ListOwnOfferings)
	user.Put("/service-provider/:serviceProviderId/update-organization-image", provider, h.UpdateOrganizationImage)

	offering := router.Group("/service-offering")
	offering.Post("/", provider, h.SubmitOffering)
	offering.Put("/:id/status", manager, h.SetOfferingStatus)

	service := router.Group("/service")
	service.Get("/all", manager, h.ListOfferings)
	service.Put("/request/:id/status", manager, h.SetOfferingStatus)

	location := router.Group("/location")
	location.Post("/addnew", manager, h.AddLocation)
	location.Get("/all", manager, h.ListLocations)
	location.Get("/location-requests", manager, h.ListLocationRequests)
	location.Put("/location-requests/:id/status", manager, h.SetLocationRequestStatus)

	pkg := router.Group("/package")
	pkg.Post("/image", manager, h.UploadPackageImage)
	pkg.Post("/", manager, h.ComposePackage)
	pkg.Post("/addnew", manager, h.ComposePackage)
	pkg.Get("/", h.ListPackages)
	pkg.Get("/all", h.ListPackages)
	pkg.Get("/:id", h.GetPackage)

	booking := router.Group("/booking")
	booking.Post("/", customer, h.Book)
	booking.Get("/", customer, h.ListBookings)

	router.Post("/payment/createOrder", customer, h.CreatePaymentOrder)
}

// Health reports liveness
func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": h.opts.AppVersion,
	})
}
