package routes

import (
	"github.com/labstack/echo/v4"

	"asset-system/internal/controllers"
)

func runAssignmentRouter(secureGroup *echo.Group, ctrl *controllers.AssignmentController) {
	secureGroup.POST("/assets/:id/assignments", ctrl.AssignAsset)
	secureGroup.GET("/assets/:id/assignments", ctrl.GetAssetAssignments)
	secureGroup.POST("/assignments/:id/return", ctrl.ReturnAsset)
	secureGroup.GET("/assignments/overdue", ctrl.GetOverdue)
	secureGroup.GET("/employees/:id/assignments", ctrl.GetEmployeeAssignments)
}
