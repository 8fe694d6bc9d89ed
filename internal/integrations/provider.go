package integrations

import (
	"context"

	"asset-system/internal/integrations/dto"
)

// EmployeeDirectory - источник сведений о сотрудниках, которым выдаются активы.
type EmployeeDirectory interface {
	Name() string
	// GetEmployee возвращает nil, nil, если сотрудник в справочнике не найден.
	GetEmployee(ctx context.Context, tenantID, employeeID uint64) (*dto.EmployeeDTO, error)
}
