package rest

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"safarsathi-service/internal/domain/entity"
	"safarsathi-service/internal/usecase"
	"safarsathi-service/pkg/apperror"
	"safarsathi-service/pkg/logger"
	"safarsathi-service/pkg/metrics"

	"github.com/gofiber/fiber/v2"
)

const actorKey = "actor"

// Session cookies, in the order they are tried
var sessionCookies = []struct {
	capability entity.Capability
	name       string
}{
	{entity.CapProviderVerifier, "provider_verifierToken"},
	{entity.CapPackageManager, "package_managerToken"},
	{entity.CapServiceProvider, "serviceProviderToken"},
	{entity.CapCustomer, "customerToken"},
}

// cookieName returns the session cookie an actor's token is stored in
func cookieName(actor *entity.Actor) string {
	capability, _ := actor.Capability()
	for _, sc := range sessionCookies {
		if sc.capability == capability {
			return sc.name
		}
	}
	return ""
}

// credentials collects the bearer token and every session cookie. Cookies of
// the allowed capabilities come first so a session of another role is only
// used, and then refused, when no allowed session is present.
func credentials(c *fiber.Ctx, allowed ...entity.Capability) []usecase.Credential {
	creds := []usecase.Credential{{Source: "authorization", Token: bearerToken(c)}}
	var others []usecase.Credential
	for _, sc := range sessionCookies {
		cred := usecase.Credential{Source: sc.name, Token: c.Cookies(sc.name)}
		if len(allowed) > 0 && !hasCapability(allowed, sc.capability) {
			others = append(others, cred)
			continue
		}
		creds = append(creds, cred)
	}
	return append(creds, others...)
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

func hasCapability(set []entity.Capability, c entity.Capability) bool {
	for _, s := range set {
		if s == c {
			return true
		}
	}
	return false
}

// requireActor authenticates the request and checks it holds one of allowed
func (h *Handler) requireActor(allowed ...entity.Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := h.uc.Gate.Authorize(c.UserContext(), credentials(c, allowed...), allowed...)
		if err != nil {
			return err
		}
		c.Locals(actorKey, actor)
		return c.Next()
	}
}

func currentActor(c *fiber.Ctx) *entity.Actor {
	actor, _ := c.Locals(actorKey).(*entity.Actor)
	return actor
}

func (h *Handler) setSessionCookie(c *fiber.Ctx, actor *entity.Actor, token string) {
	name := cookieName(actor)
	if name == "" {
		return
	}
	c.Cookie(h.cookie(name, token, time.Now().Add(h.opts.CookieTTL)))
}

func (h *Handler) clearSessionCookie(c *fiber.Ctx, name string) {
	c.Cookie(h.cookie(name, "", time.Now()))
}

func (h *Handler) cookie(name, value string, expires time.Time) *fiber.Cookie {
	sameSite := fiber.CookieSameSiteLaxMode
	if h.opts.SecureCookies {
		sameSite = fiber.CookieSameSiteNoneMode
	}
	return &fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   h.opts.SecureCookies,
		SameSite: sameSite,
	}
}

// observe records request duration by route and status
func (h *Handler) observe(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	status := c.Response().StatusCode()
	if err != nil {
		status = statusOf(err)
	}
	h.metrics.RequestDuration.
		WithLabelValues(c.Method(), c.Route().Path, strconv.Itoa(status)).
		Observe(time.Since(start).Seconds())
	return err
}

func statusOf(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return apperror.From(err).Status()
}

// ErrorHandler renders errors as {"success": false, "code", "message"}.
// Only 5xx responses are logged, with the internal cause.
func ErrorHandler(m *metrics.Metrics, log logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{
				"success": false,
				"code":    "http_error",
				"message": fe.Message,
			})
		}

		appErr := apperror.From(err)
		status := appErr.Status()
		if status >= fiber.StatusInternalServerError {
			m.ErrorsCount.WithLabelValues(c.Route().Path).Inc()
			log.Error("Request failed",
				"method", c.Method(),
				"path", c.Path(),
				"code", appErr.Code,
				"error", err)
		}

		code := appErr.Code
		if code == "" {
			code = appErr.Kind.String()
		}
		return c.Status(status).JSON(fiber.Map{
			"success": false,
			"code":    code,
			"message": appErr.Message,
		})
	}
}
