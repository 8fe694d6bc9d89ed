package routes

import (
	"time"

	"github.com/labstack/echo/v4"

	"asset-system/internal/controllers"
)

// серия изменений одного тенанта сбрасывает кеш дашборда один раз
const cacheInvalidationWindow = 2 * time.Second

func runAssetRouter(secureGroup *echo.Group, ctrl *controllers.AssetController) {
	secureGroup.GET("/assets", ctrl.GetAssets)
	secureGroup.POST("/assets", ctrl.CreateAsset)
	secureGroup.POST("/assets/import", ctrl.ImportAssets)
	secureGroup.GET("/assets/:id", ctrl.FindAsset)
	secureGroup.PUT("/assets/:id", ctrl.UpdateAsset)
	secureGroup.DELETE("/assets/:id", ctrl.DeleteAsset)
	secureGroup.POST("/assets/:id/dispose", ctrl.DisposeAsset)
	secureGroup.GET("/assets/:id/history", ctrl.GetAssetHistory)
	secureGroup.GET("/assets/:id/depreciation-schedule", ctrl.GetDepreciationSchedule)
	secureGroup.POST("/assets/:id/documents", ctrl.UploadDocument)
}
