package rest

import (
	"safarsathi-service/internal/domain/entity"
	"safarsathi-service/internal/usecase"

	"github.com/gofiber/fiber/v2"
)

type bookRequest struct {
	PackageID        string                   `json:"packageId"`
	Price            float64                  `json:"price"`
	StartDate        Date                     `json:"startDate"`
	LeadTraveller    *entity.LeadTraveller    `json:"leadTraveller"`
	NoOfTravellers   *entity.TravellerCounts  `json:"noOfTravellers"`
	ServicesSelected []entity.SelectedService `json:"servicesSelected"`
	Vehicle          string                   `json:"vehicle"`
}

func (h *Handler) Book(c *fiber.Ctx) error {
	var req bookRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	booking, err := h.uc.Bookings.Book(c.UserContext(), currentActor(c), usecase.BookInput{
		PackageID:        req.PackageID,
		Price:            req.Price,
		StartDate:        req.StartDate.Time,
		LeadTraveller:    req.LeadTraveller,
		NoOfTravellers:   req.NoOfTravellers,
		ServicesSelected: req.ServicesSelected,
		Vehicle:          req.Vehicle,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Booking created successfully!",
		"booking": booking,
	})
}

// ListBookings returns the calling customer's bookings, newest first
func (h *Handler) ListBookings(c *fiber.Ctx) error {
	bookings, err := h.uc.Bookings.ListBookings(c.UserContext(), currentActor(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"bookings": bookings,
	})
}
