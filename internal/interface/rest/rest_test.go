package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"safarsathi-service/internal/domain/entity"
	repo "safarsathi-service/internal/interface/repository"
	"safarsathi-service/internal/infrastructure/security"
	"safarsathi-service/internal/usecase"
	"safarsathi-service/pkg/logger"
	"safarsathi-service/pkg/metrics"
	"safarsathi-service/templates"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testServer struct {
	app       *fiber.App
	actors    *repo.MemoryActorRepository
	offerings *repo.MemoryServiceOfferingRepository
	locations *repo.MemoryLocationRepository
	bookings  *repo.MemoryBookingRepository
	codes     *repo.MemoryCodeRepository
	images    *repo.MemoryImageRepository
	hasher    *security.PasswordHasher
	tokens    *security.TokenSigner
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	log := logger.NewNopLogger()
	registry := prometheus.NewRegistry()
	m := metrics.NewMetrics("test", registry)

	s := &testServer{
		actors:    repo.NewMemoryActorRepository(),
		offerings: repo.NewMemoryServiceOfferingRepository(),
		locations: repo.NewMemoryLocationRepository(),
		bookings:  repo.NewMemoryBookingRepository(),
		codes:     repo.NewMemoryCodeRepository(0, nil),
		images:    repo.NewMemoryImageRepository(),
		hasher:    security.NewPasswordHasher(bcrypt.MinCost),
		tokens:    security.NewTokenSigner("test-secret", time.Hour),
	}
	t.Cleanup(func() { s.codes.Close() })

	requests := repo.NewMemoryLocationRequestRepository()
	packages := repo.NewMemoryPackageRepository()
	notifier := usecase.NewNotifier(repo.NewLogMailRepository(log), templates.MustNewRenderer(), m, "http://localhost:3000", log)

	uc := UseCases{
		Accounts:  usecase.NewAccounts(s.actors, s.codes, s.images, s.hasher, s.tokens, notifier, 15*time.Minute, log),
		Gate:      usecase.NewAccessGate(s.actors, s.tokens, log),
		Offerings: usecase.NewServiceOfferingRegistry(s.offerings, s.actors, m, log),
		Locations: usecase.NewLocationRegistry(s.locations, requests, s.actors, s.images, notifier, m, log),
		Packages:  usecase.NewPackageComposer(packages, s.offerings, s.locations, s.actors, s.images, m, log),
		Bookings:  usecase.NewBookingEngine(s.bookings, packages, m, log),
		Payments:  usecase.NewPayments(nil, nil, "INR", m, log),
	}

	s.app = NewApp(NewHandler(uc, Options{
		AppVersion: "test",
		CookieTTL:  time.Hour,
		Gatherer:   registry,
	}, m, log))
	return s
}

var testAddress = entity.Address{Street: "MG Road", City: "Pune", Pincode: "411001"}

// actor stores an actor with password "secret123" and returns it with a token
func (s *testServer) actor(t *testing.T, build func(entity.Identity) (*entity.Actor, error), first, email string) (*entity.Actor, string) {
	t.Helper()

	hash, err := s.hasher.Hash("secret123")
	require.NoError(t, err)

	actor, err := build(entity.Identity{
		FirstName:    first,
		LastName:     "Sharma",
		Email:        email,
		PasswordHash: hash,
		Phone:        "9876543210",
		Address:      &testAddress,
	})
	require.NoError(t, err)
	require.NoError(t, s.actors.Create(context.Background(), actor))

	token, err := s.tokens.Sign(actor)
	require.NoError(t, err)
	return actor, token
}

func (s *testServer) customer(t *testing.T) (*entity.Actor, string) {
	return s.actor(t, entity.NewCustomer, "Asha", "asha@example.com")
}

func (s *testServer) manager(t *testing.T) (*entity.Actor, string) {
	return s.actor(t, func(id entity.Identity) (*entity.Actor, error) {
		return entity.NewEmployee(id, entity.PackageManager)
	}, "Meera", "meera@safarsathi.in")
}

func (s *testServer) provider(t *testing.T) (*entity.Actor, string) {
	return s.actor(t, func(id entity.Identity) (*entity.Actor, error) {
		return entity.NewIndividualProvider(id, entity.IndividualDetails{Experience: 4})
	}, "Ravi", "ravi@guides.in")
}

type response struct {
	status  int
	body    map[string]interface{}
	cookies []*http.Cookie
}

func (s *testServer) do(t *testing.T, req *http.Request) response {
	t.Helper()

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := response{status: resp.StatusCode, cookies: resp.Cookies()}
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(raw, &out.body))
	}
	return out
}

func jsonRequest(t *testing.T, method, path string, body interface{}, token string) *http.Request {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	return req
}

func imageRequest(t *testing.T, path, field, contentType, token string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="`+field+`"; filename="konkan.png"`)
	header.Set(fiber.HeaderContentType, contentType)
	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("png"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	return req
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, "ok", resp.body["status"])
	assert.Equal(t, "test", resp.body["version"])
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.do(t, httptest.NewRequest(http.MethodGet, "/health", nil))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "test_http_request_duration_seconds")
}

func TestAccessControl(t *testing.T) {
	s := newTestServer(t)
	_, customerToken := s.customer(t)

	t.Run("no_credentials", func(t *testing.T) {
		resp := s.do(t, jsonRequest(t, http.MethodGet, "/booking", nil, ""))

		assert.Equal(t, http.StatusUnauthorized, resp.status)
		assert.Equal(t, false, resp.body["success"])
		assert.Equal(t, "not_authenticated", resp.body["code"])
	})

	t.Run("invalid_token", func(t *testing.T) {
		resp := s.do(t, jsonRequest(t, http.MethodGet, "/booking", nil, "not-a-token"))

		assert.Equal(t, http.StatusUnauthorized, resp.status)
	})

	t.Run("wrong_capability", func(t *testing.T) {
		resp := s.do(t, jsonRequest(t, http.MethodGet, "/location/all", nil, customerToken))

		assert.Equal(t, http.StatusForbidden, resp.status)
		assert.Equal(t, "not_authorized", resp.body["code"])
	})

	t.Run("cookie_of_other_role_forbidden", func(t *testing.T) {
		req := jsonRequest(t, http.MethodGet, "/user/employee/me", nil, "")
		req.AddCookie(&http.Cookie{Name: "customerToken", Value: customerToken})

		resp := s.do(t, req)

		assert.Equal(t, http.StatusForbidden, resp.status)
		assert.Equal(t, "not_authorized", resp.body["code"])
	})

	t.Run("allowed_cookie_preferred", func(t *testing.T) {
		manager, managerToken := s.manager(t)
		req := jsonRequest(t, http.MethodGet, "/user/employee/me", nil, "")
		req.AddCookie(&http.Cookie{Name: "customerToken", Value: customerToken})
		req.AddCookie(&http.Cookie{Name: "package_managerToken", Value: managerToken})

		resp := s.do(t, req)

		require.Equal(t, http.StatusOK, resp.status)
		user, ok := resp.body["user"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, manager.ID, user["id"])
	})
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)
	customer, _ := s.customer(t)

	t.Run("sets_role_cookie", func(t *testing.T) {
		resp := s.do(t, jsonRequest(t, http.MethodPost, "/user/login", fiber.Map{
			"email":    customer.Email,
			"password": "secret123",
			"role":     "customer",
		}, ""))

		require.Equal(t, http.StatusOK, resp.status)
		assert.NotEmpty(t, resp.body["token"])

		var session *http.Cookie
		for _, c := range resp.cookies {
			if c.Name == "customerToken" {
				session = c
			}
		}
		require.NotNil(t, session)
		assert.True(t, session.HttpOnly)

		req := jsonRequest(t, http.MethodGet, "/user/customer/me", nil, "")
		req.AddCookie(&http.Cookie{Name: session.Name, Value: session.Value})
		me := s.do(t, req)

		require.Equal(t, http.StatusOK, me.status)
		user := me.body["user"].(map[string]interface{})
		assert.Equal(t, customer.ID, user["id"])
		assert.NotContains(t, user, "password")
	})

	t.Run("wrong_password", func(t *testing.T) {
		resp := s.do(t, jsonRequest(t, http.MethodPost, "/user/login", fiber.Map{
			"email":    customer.Email,
			"password": "wrong-pass",
			"role":     "customer",
		}, ""))

		assert.Equal(t, http.StatusBadRequest, resp.status)
		assert.Equal(t, "invalid_credentials", resp.body["code"])
	})

	t.Run("missing_fields", func(t *testing.T) {
		resp := s.do(t, jsonRequest(t, http.MethodPost, "/user/login", fiber.Map{}, ""))

		assert.Equal(t, http.StatusBadRequest, resp.status)
		assert.Equal(t, "invalid_email", resp.body["code"])
	})

	t.Run("unknown_role", func(t *testing.T) {
		resp := s.do(t, jsonRequest(t, http.MethodPost, "/user/login", fiber.Map{
			"email":    customer.Email,
			"password": "secret123",
			"role":     "admin",
		}, ""))

		assert.Equal(t, http.StatusBadRequest, resp.status)
		assert.Equal(t, "invalid_role", resp.body["code"])
	})
}

func TestRegisterCustomer(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.codes.Put(context.Background(), "kiran@example.com", "482913", 15*time.Minute))

	body := fiber.Map{
		"firstName": "Kiran",
		"lastName":  "Patil",
		"email":     "kiran@example.com",
		"password":  "password123",
		"phone":     "9123456780",
		"otp":       "482913",
	}

	resp := s.do(t, jsonRequest(t, http.MethodPost, "/user/customer/register", body, ""))
	require.Equal(t, http.StatusCreated, resp.status)
	assert.Equal(t, 1, s.actors.Len())

	again := s.do(t, jsonRequest(t, http.MethodPost, "/user/customer/register", body, ""))
	assert.Equal(t, http.StatusBadRequest, again.status)
}

func TestLogoutClearsCookie(t *testing.T) {
	s := newTestServer(t)
	_, token := s.customer(t)

	resp := s.do(t, jsonRequest(t, http.MethodGet, "/user/customer/logout", nil, token))

	require.Equal(t, http.StatusOK, resp.status)
	require.Len(t, resp.cookies, 1)
	assert.Equal(t, "customerToken", resp.cookies[0].Name)
	assert.Empty(t, resp.cookies[0].Value)
}

func TestUploadPackageImage(t *testing.T) {
	s := newTestServer(t)
	_, token := s.manager(t)

	t.Run("png", func(t *testing.T) {
		resp := s.do(t, imageRequest(t, "/package/image", "packageImg", "image/png", token))

		require.Equal(t, http.StatusCreated, resp.status)
		url, _ := resp.body["packageImg"].(string)
		assert.True(t, s.images.Has(url))
	})

	t.Run("unsupported_format", func(t *testing.T) {
		resp := s.do(t, imageRequest(t, "/package/image", "packageImg", "application/pdf", token))

		assert.Equal(t, http.StatusBadRequest, resp.status)
		assert.Equal(t, "unsupported_format", resp.body["code"])
	})

	t.Run("missing_file", func(t *testing.T) {
		resp := s.do(t, imageRequest(t, "/package/image", "other", "image/png", token))

		assert.Equal(t, http.StatusBadRequest, resp.status)
		assert.Equal(t, "image_required", resp.body["code"])
	})
}

func TestComposeAndBook(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	_, managerToken := s.manager(t)
	provider, providerToken := s.provider(t)
	_, customerToken := s.customer(t)

	location := &entity.Location{
		Name:        "Ratnagiri",
		ImageURL:    "memory://locations/ratnagiri.png",
		Coordinates: entity.Coordinates{Latitude: 16.99, Longitude: 73.31},
		CreatedAt:   time.Now(),
	}
	require.NoError(t, s.locations.Create(ctx, location))

	submitted := s.do(t, jsonRequest(t, http.MethodPost, "/service-offering", fiber.Map{
		"specificType":    "Guide",
		"price":           1500,
		"servicesOffered": "city tour, fort walk",
	}, providerToken))
	require.Equal(t, http.StatusCreated, submitted.status)
	offeringID := submitted.body["request"].(map[string]interface{})["id"].(string)

	plan := []fiber.Map{{"day": "1", "actualService": offeringID}}
	pkgBody := fiber.Map{
		"packageImg": "memory://packages/konkan.png",
		"name":       "Konkan Coast",
		"startDates": []string{"2026-05-01"},
		"endDates":   []string{"2026-05-05"},
		"type":       "Major",
		"price":      24999,
		"location":   []string{location.ID},
		"schedule":   []fiber.Map{{"day": "1", "description": []string{"Arrive at Ratnagiri"}}},
		"servicesOffered": []fiber.Map{
			{"serviceType": "Guide", "servicePlan": [][]fiber.Map{plan}},
		},
	}

	pending := s.do(t, jsonRequest(t, http.MethodPost, "/package", pkgBody, managerToken))
	require.Equal(t, http.StatusBadRequest, pending.status)
	assert.Equal(t, "unapproved_service", pending.body["code"])

	approved := s.do(t, jsonRequest(t, http.MethodPut, "/service-offering/"+offeringID+"/status",
		fiber.Map{"status": "approved"}, managerToken))
	require.Equal(t, http.StatusOK, approved.status)

	composed := s.do(t, jsonRequest(t, http.MethodPost, "/package", pkgBody, managerToken))
	require.Equal(t, http.StatusCreated, composed.status)
	packageID := composed.body["package"].(map[string]interface{})["id"].(string)

	detail := s.do(t, jsonRequest(t, http.MethodGet, "/package/"+packageID, nil, ""))
	require.Equal(t, http.StatusOK, detail.status)
	services := detail.body["package"].(map[string]interface{})["services"].(map[string]interface{})
	guide := services[offeringID].(map[string]interface{})
	assert.Equal(t, provider.ID, guide["providerDetails"].(map[string]interface{})["id"])

	booking := fiber.Map{
		"packageId": packageID,
		"price":     24999,
		"startDate": "2026-05-01",
		"leadTraveller": fiber.Map{
			"firstName": "Asha",
			"lastName":  "Sharma",
			"email":     "asha@example.com",
			"phone":     "9876543210",
		},
		"noOfTravellers":   fiber.Map{"noOfAdult": 2},
		"servicesSelected": []fiber.Map{{"serviceType": "Guide", "servicePlan": plan}},
		"vehicle":          "SUV",
	}

	booked := s.do(t, jsonRequest(t, http.MethodPost, "/booking", booking, customerToken))
	require.Equal(t, http.StatusCreated, booked.status)

	duplicate := s.do(t, jsonRequest(t, http.MethodPost, "/booking", booking, customerToken))
	assert.Equal(t, http.StatusBadRequest, duplicate.status)
	assert.Equal(t, "already_booked", duplicate.body["code"])

	listed := s.do(t, jsonRequest(t, http.MethodGet, "/booking", nil, customerToken))
	require.Equal(t, http.StatusOK, listed.status)
	assert.Len(t, listed.body["bookings"], 1)

	missing := s.do(t, jsonRequest(t, http.MethodGet, "/package/unknown", nil, ""))
	assert.Equal(t, http.StatusNotFound, missing.status)
}

func TestListPackagesRejectsUnknownType(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, jsonRequest(t, http.MethodGet, "/package?type=weekend", nil, ""))

	assert.Equal(t, http.StatusBadRequest, resp.status)
}
