package handlers

import (
	"github.com/hairult/hairstyle-service/internal/api/dto"
	"github.com/hairult/hairstyle-service/internal/domain"
)

func suggestionSummary(s *domain.HairstyleSuggestion) dto.SuggestionSummary {
	return dto.SuggestionSummary{
		ID:          s.ID,
		GuestID:     s.GuestID,
		HairstyleID: s.HairstyleID,
		Status:      s.Status,
		ImagePath:   s.ImagePath,
		Error:       s.ErrorMessage,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func hairstyleResponse(h *domain.Hairstyle) dto.HairstyleResponse {
	return dto.HairstyleResponse{
		ID:            h.ID,
		Name:          h.Name,
		Description:   h.Description,
		HairLength:    h.HairLength,
		CutType:       h.CutType,
		PermType:      h.PermType,
		StraightType:  h.StraightType,
		UpdoType:      h.UpdoType,
		CurlPattern:   h.CurlPattern,
		BangsType:     h.BangsType,
		VolumeType:    h.VolumeType,
		LayeringType:  h.LayeringType,
		FinishTexture: h.FinishTexture,
		CreatedAt:     h.CreatedAt,
		UpdatedAt:     h.UpdatedAt,
	}
}
