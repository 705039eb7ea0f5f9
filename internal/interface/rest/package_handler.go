package rest

import (
	"safarsathi-service/internal/domain/entity"
	"safarsathi-service/internal/usecase"

	"github.com/gofiber/fiber/v2"
)

type composePackageRequest struct {
	PackageImg      string                  `json:"packageImg" validate:"required"`
	Name            string                  `json:"name" validate:"required"`
	StartDates      []Date                  `json:"startDates" validate:"required,min=1"`
	EndDates        []Date                  `json:"endDates" validate:"required,min=1"`
	Type            string                  `json:"type" validate:"required,oneof=Major Mini"`
	Price           float64                 `json:"price" validate:"required"`
	Location        []string                `json:"location" validate:"required,min=1,dive,required"`
	Schedule        []entity.ScheduleDay    `json:"schedule" validate:"required,min=1"`
	ServicesOffered []entity.OfferedService `json:"servicesOffered" validate:"required,min=1"`
	Vehicles        []string                `json:"vehicles"`
}

// UploadPackageImage stores the packageImg file field and returns its URL
func (h *Handler) UploadPackageImage(c *fiber.Ctx) error {
	image, closeImage, err := formImage(c, "packageImg")
	if err != nil {
		return err
	}
	defer closeImage()

	url, err := h.uc.Packages.UploadPackageImage(c.UserContext(), currentActor(c), image)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":    true,
		"packageImg": url,
	})
}

func (h *Handler) ComposePackage(c *fiber.Ctx) error {
	var req composePackageRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	pkg, err := h.uc.Packages.Compose(c.UserContext(), currentActor(c), usecase.ComposeInput{
		PackageImg:      req.PackageImg,
		Name:            req.Name,
		StartDates:      dates(req.StartDates),
		EndDates:        dates(req.EndDates),
		Type:            entity.PackageType(req.Type),
		Price:           req.Price,
		Locations:       req.Location,
		Schedule:        req.Schedule,
		ServicesOffered: req.ServicesOffered,
		Vehicles:        req.Vehicles,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Package created successfully!",
		"package": pkg,
	})
}

// ListPackages lists packages newest first; ?type= is Major, Mini or all
func (h *Handler) ListPackages(c *fiber.Ctx) error {
	packages, err := h.uc.Packages.ListPackages(c.UserContext(), c.Query("type"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"packages": packages,
	})
}

func (h *Handler) GetPackage(c *fiber.Ctx) error {
	pkg, err := h.uc.Packages.GetPackage(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"package": pkg,
	})
}
