package entities

import "asset-system/pkg/types"

type AssetType struct {
	ID          uint64  `db:"id"`
	Name        string  `db:"name"`
	Description *string `db:"description"`

	types.BaseEntity
}
