package rest

import (
	"safarsathi-service/internal/domain/entity"
	"safarsathi-service/internal/usecase"

	"github.com/gofiber/fiber/v2"
)

// addLocationRequest arrives as multipart form data
type addLocationRequest struct {
	Name        string `form:"name" validate:"required"`
	Description string `form:"description"`
	Latitude    string `form:"latitude"`
	Longitude   string `form:"longitude"`
	Address     string `form:"address"`
	Type        string `form:"type"`
}

type locationRequestForm struct {
	Latitude    string `form:"latitude"`
	Longitude   string `form:"longitude"`
	Description string `form:"description"`
}

// formCoordinates parses a latitude/longitude pair; both or neither must be set
func formCoordinates(latitude, longitude string) (*entity.Coordinates, error) {
	lat, err := formFloat(latitude)
	if err != nil {
		return nil, usecase.ErrInvalidCoordinates
	}
	lng, err := formFloat(longitude)
	if err != nil {
		return nil, usecase.ErrInvalidCoordinates
	}
	if lat == nil && lng == nil {
		return nil, nil
	}
	if lat == nil || lng == nil {
		return nil, usecase.ErrInvalidCoordinates
	}
	return &entity.Coordinates{Latitude: *lat, Longitude: *lng}, nil
}

// AddLocation creates a catalog location; the image is the imageUrl file field
func (h *Handler) AddLocation(c *fiber.Ctx) error {
	var req addLocationRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	coordinates, err := formCoordinates(req.Latitude, req.Longitude)
	if err != nil {
		return err
	}

	image, closeImage, err := formImage(c, "imageUrl")
	if err != nil {
		return err
	}
	defer closeImage()

	location, err := h.uc.Locations.AddLocation(c.UserContext(), currentActor(c), usecase.AddLocationInput{
		Name:        req.Name,
		Description: req.Description,
		Coordinates: coordinates,
		Address:     req.Address,
		Types:       commaList(req.Type),
	}, image)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":  true,
		"message":  "Location added successfully!",
		"location": location,
	})
}

func (h *Handler) ListLocations(c *fiber.Ctx) error {
	locations, err := h.uc.Locations.ListLocations(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":   true,
		"locations": locations,
	})
}

// SubmitLocationRequest records a customer's location suggestion; the image
// is the image file field
func (h *Handler) SubmitLocationRequest(c *fiber.Ctx) error {
	var req locationRequestForm
	if err := h.bind(c, &req); err != nil {
		return err
	}
	coordinates, err := formCoordinates(req.Latitude, req.Longitude)
	if err != nil {
		return err
	}

	image, closeImage, err := formImage(c, "image")
	if err != nil {
		return err
	}
	defer closeImage()

	request, err := h.uc.Locations.SubmitLocationRequest(c.UserContext(), currentActor(c), usecase.LocationRequestInput{
		Coordinates: coordinates,
		Description: req.Description,
	}, image)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":         true,
		"message":         "Location request submitted successfully.",
		"locationRequest": request,
	})
}

func (h *Handler) ListLocationRequests(c *fiber.Ctx) error {
	requests, err := h.uc.Locations.ListLocationRequests(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":          true,
		"locationRequests": requests,
	})
}

func (h *Handler) SetLocationRequestStatus(c *fiber.Ctx) error {
	var req statusRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	result, err := h.uc.Locations.SetLocationRequestStatus(c.UserContext(), c.Params("id"), entity.ReviewStatus(req.Status), currentActor(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":          true,
		"message":          "Location request " + string(result.Request.Status) + ".",
		"locationRequest":  result.Request,
		"notificationSent": result.NotificationSent,
	})
}
