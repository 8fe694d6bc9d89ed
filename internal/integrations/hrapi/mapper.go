package hrapi

import (
	"strings"

	"asset-system/internal/integrations/dto"
)

func mapEmployeeToInternal(ext EmployeeDTO) dto.EmployeeDTO {
	parts := make([]string, 0, 3)
	for _, p := range []string{ext.LastName, ext.FirstName, ext.MiddleName} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return dto.EmployeeDTO{
		ID:         ext.ID,
		FullName:   strings.Join(parts, " "),
		Department: ext.Department,
		IsActive:   ext.FireDate == nil,
	}
}
