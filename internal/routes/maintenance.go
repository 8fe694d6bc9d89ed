package routes

import (
	"github.com/labstack/echo/v4"

	"asset-system/internal/controllers"
)

func runMaintenanceRouter(secureGroup *echo.Group, ctrl *controllers.MaintenanceController) {
	secureGroup.POST("/assets/:id/maintenances", ctrl.ScheduleMaintenance)
	secureGroup.GET("/assets/:id/maintenances", ctrl.GetAssetMaintenances)
	secureGroup.PUT("/maintenances/:id/status", ctrl.UpdateMaintenanceStatus)
	secureGroup.GET("/maintenances/upcoming", ctrl.GetUpcoming)
}
