package routes

import (
	"github.com/labstack/echo/v4"

	"asset-system/internal/controllers"
)

func runAssetTypeRouter(secureGroup *echo.Group, ctrl *controllers.AssetTypeController) {
	secureGroup.GET("/asset-types", ctrl.GetAssetTypes)
	secureGroup.GET("/asset-types/:id", ctrl.FindAssetType)
	secureGroup.POST("/asset-types", ctrl.CreateAssetType)
	secureGroup.PUT("/asset-types/:id", ctrl.UpdateAssetType)
	secureGroup.DELETE("/asset-types/:id", ctrl.DeleteAssetType)
}
