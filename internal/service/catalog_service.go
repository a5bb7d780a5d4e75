package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hairult/hairstyle-service/internal/domain"
	"github.com/hairult/hairstyle-service/internal/repository"
	apperrors "github.com/hairult/hairstyle-service/pkg/util/errorutil"
)

// CatalogService exposes the hairstyle catalog.
type CatalogService struct {
	hairstyles repository.HairstyleRepository
}

// HairstyleInput describes a catalog entry created by an operator.
type HairstyleInput struct {
	Name          string
	Description   *string
	HairLength    string
	CutType       *string
	PermType      *string
	StraightType  *string
	UpdoType      *string
	CurlPattern   *string
	BangsType     *string
	VolumeType    *string
	LayeringType  *string
	FinishTexture *string
}

// NewCatalogService constructs the service.
func NewCatalogService(hairstyles repository.HairstyleRepository) *CatalogService {
	return &CatalogService{hairstyles: hairstyles}
}

// List returns the catalog ordered by name.
func (s *CatalogService) List(ctx context.Context) ([]domain.Hairstyle, error) {
	items, err := s.hairstyles.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return items, nil
}

// Get returns one entry.
func (s *CatalogService) Get(ctx context.Context, id string) (*domain.Hairstyle, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NewNotFound("hairstyle", map[string]any{"id": id})
	}
	h, err := s.hairstyles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("hairstyle", map[string]any{"id": id})
		}
		return nil, apperrors.NewInternalError(err)
	}
	return h, nil
}

// Create validates and inserts a new entry.
func (s *CatalogService) Create(ctx context.Context, input HairstyleInput) (*domain.Hairstyle, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" || len([]rune(name)) > 256 {
		return nil, apperrors.NewValidationError("name required, at most 256 characters", nil)
	}

	invalid := map[string]any{}
	check := func(attribute string, value *string) *string {
		if value == nil || strings.TrimSpace(*value) == "" {
			return nil
		}
		v := strings.TrimSpace(*value)
		if !domain.ValidAttribute(attribute, v) {
			invalid[attribute] = v
			return nil
		}
		return &v
	}

	length := check("hair_length", &input.HairLength)
	if length == nil {
		if _, bad := invalid["hair_length"]; !bad {
			invalid["hair_length"] = "required"
		}
	}
	h := &domain.Hairstyle{Name: name}
	h.CutType = castAttr[domain.CutType](check("cut_type", input.CutType))
	h.PermType = castAttr[domain.PermType](check("perm_type", input.PermType))
	h.StraightType = castAttr[domain.StraightType](check("straight_type", input.StraightType))
	h.UpdoType = castAttr[domain.UpdoType](check("updo_type", input.UpdoType))
	h.CurlPattern = castAttr[domain.CurlPattern](check("curl_pattern", input.CurlPattern))
	h.BangsType = castAttr[domain.BangsType](check("bangs_type", input.BangsType))
	h.VolumeType = castAttr[domain.VolumeType](check("volume_type", input.VolumeType))
	h.LayeringType = castAttr[domain.LayeringType](check("layering_type", input.LayeringType))
	h.FinishTexture = castAttr[domain.FinishTexture](check("finish_texture", input.FinishTexture))
	if len(invalid) > 0 {
		return nil, apperrors.NewValidationError("invalid hairstyle attributes", invalid)
	}
	h.HairLength = domain.HairLength(*length)
	if input.Description != nil {
		if d := strings.TrimSpace(*input.Description); d != "" {
			h.Description = &d
		}
	}

	if err := s.hairstyles.Create(ctx, h); err != nil {
		if errors.Is(err, repository.ErrDuplicateName) {
			return nil, apperrors.NewConflict("hairstyle name already exists", map[string]any{"name": name})
		}
		return nil, apperrors.NewInternalError(err)
	}
	return h, nil
}

func castAttr[T ~string](v *string) *T {
	if v == nil {
		return nil
	}
	t := T(*v)
	return &t
}
