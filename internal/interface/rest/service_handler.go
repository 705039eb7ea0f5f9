package rest

import (
	"safarsathi-service/internal/domain/entity"
	"safarsathi-service/internal/usecase"

	"github.com/gofiber/fiber/v2"
)

type submitOfferingRequest struct {
	SpecificType    string     `json:"specificType" validate:"required"`
	Price           float64    `json:"price" validate:"required"`
	ServicesOffered stringList `json:"servicesOffered" validate:"required"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *Handler) SubmitOffering(c *fiber.Ctx) error {
	var req submitOfferingRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	offering, err := h.uc.Offerings.Submit(c.UserContext(), currentActor(c), usecase.SubmitOfferingInput{
		SpecificType:    req.SpecificType,
		Price:           req.Price,
		ServicesOffered: req.ServicesOffered,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Service provider request created successfully.",
		"request": offering,
	})
}

// ListOwnOfferings lists the calling provider's offerings, optionally by status
func (h *Handler) ListOwnOfferings(c *fiber.Ctx) error {
	offerings, err := h.uc.Offerings.ListForProvider(c.UserContext(), currentActor(c).ID, entity.ReviewStatus(c.Query("status")))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"requests": offerings,
	})
}

// ListOfferings lists every offering with its provider resolved
func (h *Handler) ListOfferings(c *fiber.Ctx) error {
	offerings, err := h.uc.Offerings.ListAll(c.UserContext(), entity.ReviewStatus(c.Query("status")))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"services": offerings,
	})
}

func (h *Handler) SetOfferingStatus(c *fiber.Ctx) error {
	var req statusRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	offering, err := h.uc.Offerings.SetStatus(c.UserContext(), c.Params("id"), entity.ReviewStatus(req.Status), currentActor(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Service status updated to " + string(offering.Status) + ".",
		"service": offering,
	})
}
