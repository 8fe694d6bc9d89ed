package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"asset-system/internal/dto"
	"asset-system/internal/entities"
	"asset-system/internal/repositories"
	apperrors "asset-system/pkg/errors"
	"asset-system/pkg/types"
)

type AssetTypeServiceInterface interface {
	GetAssetTypes(ctx context.Context, filter types.Filter) ([]dto.AssetTypeDTO, uint64, error)
	FindAssetType(ctx context.Context, id uint64) (*dto.AssetTypeDTO, error)
	CreateAssetType(ctx context.Context, req dto.CreateAssetTypeDTO) (*dto.AssetTypeDTO, error)
	UpdateAssetType(ctx context.Context, id uint64, req dto.UpdateAssetTypeDTO) (*dto.AssetTypeDTO, error)
	DeleteAssetType(ctx context.Context, id uint64) error
}

type AssetTypeService struct {
	typeRepository  repositories.AssetTypeRepositoryInterface
	assetRepository repositories.AssetRepositoryInterface
	logger          *zap.Logger
}

func NewAssetTypeService(
	typeRepo repositories.AssetTypeRepositoryInterface,
	assetRepo repositories.AssetRepositoryInterface,
	logger *zap.Logger,
) AssetTypeServiceInterface {
	return &AssetTypeService{
		typeRepository:  typeRepo,
		assetRepository: assetRepo,
		logger:          logger,
	}
}

func (s *AssetTypeService) GetAssetTypes(ctx context.Context, filter types.Filter) ([]dto.AssetTypeDTO, uint64, error) {
	list, total, err := s.typeRepository.GetAssetTypes(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	dtos := make([]dto.AssetTypeDTO, 0, len(list))
	for i := range list {
		dtos = append(dtos, assetTypeEntityToDTO(&list[i]))
	}
	return dtos, total, nil
}

func (s *AssetTypeService) FindAssetType(ctx context.Context, id uint64) (*dto.AssetTypeDTO, error) {
	t, err := s.typeRepository.FindAssetType(ctx, id)
	if err != nil {
		return nil, err
	}
	result := assetTypeEntityToDTO(t)
	return &result, nil
}

func (s *AssetTypeService) CreateAssetType(ctx context.Context, req dto.CreateAssetTypeDTO) (*dto.AssetTypeDTO, error) {
	t := &entities.AssetType{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description.Ptr(),
	}
	if t.Name == "" {
		return nil, apperrors.NewValidationError("name", "название обязательно")
	}
	if _, err := s.typeRepository.CreateAssetType(ctx, nil, t); err != nil {
		s.logger.Error("Ошибка при создании типа актива", zap.String("name", t.Name), zap.Error(err))
		return nil, err
	}
	result := assetTypeEntityToDTO(t)
	return &result, nil
}

func (s *AssetTypeService) UpdateAssetType(ctx context.Context, id uint64, req dto.UpdateAssetTypeDTO) (*dto.AssetTypeDTO, error) {
	t, err := s.typeRepository.FindAssetType(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name.Valid {
		name := strings.TrimSpace(req.Name.String)
		if name == "" {
			return nil, apperrors.NewValidationError("name", "название обязательно")
		}
		t.Name = name
	}
	if req.Description.Valid {
		t.Description = req.Description.Ptr()
	}

	if err := s.typeRepository.UpdateAssetType(ctx, t); err != nil {
		s.logger.Error("Ошибка при обновлении типа актива", zap.Uint64("id", id), zap.Error(err))
		return nil, err
	}
	result := assetTypeEntityToDTO(t)
	return &result, nil
}

// DeleteAssetType не удаляет тип, пока на него ссылается хотя бы один актив (включая списанные).
func (s *AssetTypeService) DeleteAssetType(ctx context.Context, id uint64) error {
	if _, err := s.typeRepository.FindAssetType(ctx, id); err != nil {
		return err
	}
	inUse, err := s.assetRepository.ExistsWithType(ctx, id)
	if err != nil {
		return err
	}
	if inUse {
		return apperrors.NewInvalidStateError("asset_type", id, "in_use", "delete")
	}
	return s.typeRepository.DeleteAssetType(ctx, id)
}
