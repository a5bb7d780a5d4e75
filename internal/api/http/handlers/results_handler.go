package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/hairult/hairstyle-service/internal/api/dto"
	"github.com/hairult/hairstyle-service/internal/service"
)

// ResultsReader loads the results view.
type ResultsReader interface {
	GetResults(ctx context.Context, guestID string) (*service.Results, error)
}

// ResultsHandler serves the per-guest results view.
type ResultsHandler struct {
	service ResultsReader
}

// NewResultsHandler constructs handler.
func NewResultsHandler(reader ResultsReader) *ResultsHandler {
	return &ResultsHandler{service: reader}
}

// Get GET /results/:id.
func (h *ResultsHandler) Get(c *fiber.Ctx) error {
	res, err := h.service.GetResults(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}

	items := make([]dto.SuggestionResult, 0, len(res.Suggestions))
	for _, s := range res.Suggestions {
		items = append(items, dto.SuggestionResult{
			ID:            s.ID,
			HairstyleID:   s.HairstyleID,
			HairstyleName: s.HairstyleName,
			Status:        s.Status,
			ImageURL:      s.ImageURL,
			Error:         s.Error,
			CreatedAt:     s.CreatedAt,
			UpdatedAt:     s.UpdatedAt,
		})
	}
	// Rows keep changing until every suggestion is terminal.
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.JSON(fiber.Map{"data": dto.ResultsResponse{
		GuestID:     res.Guest.ID,
		Email:       res.Guest.Email,
		PortraitURL: res.PortraitURL,
		Suggestions: items,
	}})
}
