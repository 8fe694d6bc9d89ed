package static

import (
	"context"
	"fmt"
	"sync"

	"asset-system/internal/integrations/dto"
)

// Directory - справочник без внешней системы. Без заданного списка считает существующим любой id > 0.
type Directory struct {
	mu        sync.RWMutex
	employees map[uint64]dto.EmployeeDTO
}

func New(employees ...dto.EmployeeDTO) *Directory {
	d := &Directory{}
	if len(employees) > 0 {
		d.employees = make(map[uint64]dto.EmployeeDTO, len(employees))
		for _, e := range employees {
			d.employees[e.ID] = e
		}
	}
	return d
}

func (d *Directory) Name() string {
	return "static"
}

func (d *Directory) GetEmployee(ctx context.Context, tenantID, employeeID uint64) (*dto.EmployeeDTO, error) {
	if employeeID == 0 {
		return nil, nil
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.employees == nil {
		return &dto.EmployeeDTO{ID: employeeID, FullName: fmt.Sprintf("Сотрудник #%d", employeeID), IsActive: true}, nil
	}
	e, ok := d.employees[employeeID]
	if !ok {
		return nil, nil
	}
	return &e, nil
}
