package dto

import "github.com/aarondl/null/v8"

type CreateAssetTypeDTO struct {
	Name        string      `json:"name" validate:"required,min=2,max=100"`
	Description null.String `json:"description,omitempty" validate:"omitempty,max=1000"`
}

type UpdateAssetTypeDTO struct {
	Name        null.String `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Description null.String `json:"description,omitempty" validate:"omitempty,max=1000"`
}

type AssetTypeDTO struct {
	ID          uint64  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}
