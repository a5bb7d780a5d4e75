package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/hairult/hairstyle-service/internal/api/dto"
	"github.com/hairult/hairstyle-service/internal/domain"
	"github.com/hairult/hairstyle-service/internal/service"
	apperrors "github.com/hairult/hairstyle-service/pkg/util/errorutil"
)

// Catalog reads and extends the hairstyle catalog.
type Catalog interface {
	List(ctx context.Context) ([]domain.Hairstyle, error)
	Get(ctx context.Context, id string) (*domain.Hairstyle, error)
	Create(ctx context.Context, input service.HairstyleInput) (*domain.Hairstyle, error)
}

// HairstylesHandler serves the catalog.
type HairstylesHandler struct {
	service Catalog
}

// NewHairstylesHandler constructs handler.
func NewHairstylesHandler(catalog Catalog) *HairstylesHandler {
	return &HairstylesHandler{service: catalog}
}

// List GET /hairstyles.
func (h *HairstylesHandler) List(c *fiber.Ctx) error {
	items, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]dto.HairstyleResponse, 0, len(items))
	for i := range items {
		out = append(out, hairstyleResponse(&items[i]))
	}
	return c.JSON(fiber.Map{"data": out})
}

// Get GET /hairstyles/:id.
func (h *HairstylesHandler) Get(c *fiber.Ctx) error {
	item, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": hairstyleResponse(item)})
}

// Create POST /admin/hairstyles.
func (h *HairstylesHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateHairstyleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	item, err := h.service.Create(c.UserContext(), service.HairstyleInput{
		Name:          req.Name,
		Description:   req.Description,
		HairLength:    req.HairLength,
		CutType:       req.CutType,
		PermType:      req.PermType,
		StraightType:  req.StraightType,
		UpdoType:      req.UpdoType,
		CurlPattern:   req.CurlPattern,
		BangsType:     req.BangsType,
		VolumeType:    req.VolumeType,
		LayeringType:  req.LayeringType,
		FinishTexture: req.FinishTexture,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": hairstyleResponse(item)})
}
