package routes

import (
	"github.com/labstack/echo/v4"

	"asset-system/internal/controllers"
)

func runReportRouter(secureGroup *echo.Group, ctrl *controllers.ReportController) {
	secureGroup.GET("/reports/dashboard", ctrl.GetDashboard)
	secureGroup.GET("/reports/depreciation", ctrl.GetDepreciationReport)
}
