package validation

import (
	"github.com/go-playground/validator/v10"

	"asset-system/internal/depreciation"
	"asset-system/internal/entities"
)

// registerRules регистрирует теги, которые мы используем в struct tags
func registerRules(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"asset_condition":     isAssetCondition,
		"depreciation_method": isDepreciationMethod,
		"maintenance_status":  isMaintenanceStatus,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

func isAssetCondition(fl validator.FieldLevel) bool {
	return entities.AssetCondition(fl.Field().String()).Valid()
}

func isDepreciationMethod(fl validator.FieldLevel) bool {
	return depreciation.Method(fl.Field().String()).Valid()
}

func isMaintenanceStatus(fl validator.FieldLevel) bool {
	return entities.MaintenanceStatus(fl.Field().String()).Valid()
}
