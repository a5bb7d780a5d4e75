package dto

import (
	"time"

	"github.com/hairult/hairstyle-service/internal/domain"
)

// HairstyleResponse is a catalog entry.
type HairstyleResponse struct {
	ID            string                `json:"id"`
	Name          string                `json:"name"`
	Description   *string               `json:"description"`
	HairLength    domain.HairLength     `json:"hair_length"`
	CutType       *domain.CutType       `json:"cut_type"`
	PermType      *domain.PermType      `json:"perm_type"`
	StraightType  *domain.StraightType  `json:"straight_type"`
	UpdoType      *domain.UpdoType      `json:"updo_type"`
	CurlPattern   *domain.CurlPattern   `json:"curl_pattern"`
	BangsType     *domain.BangsType     `json:"bangs_type"`
	VolumeType    *domain.VolumeType    `json:"volume_type"`
	LayeringType  *domain.LayeringType  `json:"layering_type"`
	FinishTexture *domain.FinishTexture `json:"finish_texture"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// CreateHairstyleRequest payload.
type CreateHairstyleRequest struct {
	Name          string  `json:"name"`
	Description   *string `json:"description"`
	HairLength    string  `json:"hair_length"`
	CutType       *string `json:"cut_type"`
	PermType      *string `json:"perm_type"`
	StraightType  *string `json:"straight_type"`
	UpdoType      *string `json:"updo_type"`
	CurlPattern   *string `json:"curl_pattern"`
	BangsType     *string `json:"bangs_type"`
	VolumeType    *string `json:"volume_type"`
	LayeringType  *string `json:"layering_type"`
	FinishTexture *string `json:"finish_texture"`
}
