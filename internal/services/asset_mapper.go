package services

import (
	"time"

	"asset-system/internal/depreciation"
	"asset-system/internal/dto"
	"asset-system/internal/entities"
	"asset-system/pkg/utils"
)

const timestampLayout = "2006-01-02 15:04:05"

func assetEntityToDTO(a *entities.Asset) *dto.AssetDTO {
	result := &dto.AssetDTO{
		ID:                 a.ID,
		Name:               a.Name,
		AssetType:          dto.ShortAssetTypeDTO{ID: a.AssetTypeID, Name: utils.SafeDeref(a.AssetTypeName)},
		SerialNumber:       a.SerialNumber,
		AssetCode:          a.AssetCode,
		PurchaseDate:       utils.FormatDate(a.PurchaseDate),
		PurchaseCost:       a.PurchaseCost,
		CurrentValue:       a.PurchaseCost,
		Status:             string(a.Status),
		Condition:          string(a.Condition),
		Location:           a.Location,
		Supplier:           a.Supplier,
		WarrantyExpiryDate: utils.FormatNullableDate(a.WarrantyExpiryDate),
		ImageRef:           a.ImageRef,
		DocumentRef:        a.DocumentRef,
		QRCodeRef:          a.QRCodeRef,
		Notes:              a.Notes,
		CreatedBy:          a.CreatedBy,
		CreatedAt:          a.CreatedAt.Local().Format(timestampLayout),
		UpdatedAt:          a.UpdatedAt.Local().Format(timestampLayout),
	}
	if a.CurrentValue != nil {
		result.CurrentValue = *a.CurrentValue
	}
	return result
}

func buildDepreciationDTO(a *entities.Asset, d *entities.AssetDepreciation) *dto.DepreciationDTO {
	if d == nil {
		return nil
	}
	return &dto.DepreciationDTO{
		Method:              string(d.Method),
		UsefulLifeYears:     d.UsefulLifeYears,
		SalvageValue:        d.SalvageValue,
		CurrentValue:        d.CurrentValue,
		LastCalculatedDate:  utils.FormatDate(d.LastCalculatedDate),
		DepreciationPercent: depreciation.Percentage(a.PurchaseCost, d.CurrentValue),
		AnnualRate:          depreciation.Rate(d.Policy(), a.PurchaseCost),
	}
}

func assignmentEntityToDTO(a *entities.AssetAssignment, asOf time.Time) *dto.AssignmentDTO {
	result := &dto.AssignmentDTO{
		ID:                 a.ID,
		AssetID:            a.AssetID,
		EmployeeID:         a.EmployeeID,
		AssignedBy:         a.AssignedBy,
		CheckoutDate:       utils.FormatDate(a.CheckoutDate),
		ExpectedReturnDate: utils.FormatNullableDate(a.ExpectedReturnDate),
		CheckinDate:        utils.FormatNullableDate(a.CheckinDate),
		CheckoutCondition:  string(a.CheckoutCondition),
		Notes:              a.Notes,
		IsOpen:             a.IsOpen(),
		IsOverdue:          a.IsOverdue(asOf),
	}
	if a.CheckinCondition != nil {
		c := string(*a.CheckinCondition)
		result.CheckinCondition = &c
	}
	return result
}

func assignmentsToDTOs(list []entities.AssetAssignment, asOf time.Time) []dto.AssignmentDTO {
	result := make([]dto.AssignmentDTO, 0, len(list))
	for i := range list {
		result = append(result, *assignmentEntityToDTO(&list[i], asOf))
	}
	return result
}

func maintenanceEntityToDTO(m *entities.AssetMaintenance) *dto.MaintenanceDTO {
	return &dto.MaintenanceDTO{
		ID:              m.ID,
		AssetID:         m.AssetID,
		MaintenanceType: m.MaintenanceType,
		StartDate:       utils.FormatDate(m.StartDate),
		EndDate:         utils.FormatNullableDate(m.EndDate),
		Status:          string(m.Status),
		Cost:            m.Cost,
		Supplier:        m.Supplier,
		Details:         m.Details,
		CompletionNotes: m.CompletionNotes,
		CreatedBy:       m.CreatedBy,
	}
}

func historyEntityToDTO(h entities.AssetHistory) dto.AssetHistoryDTO {
	return dto.AssetHistoryDTO{
		ID:        h.ID,
		UserID:    h.UserID,
		EventType: h.EventType,
		OldValue:  h.OldValue,
		NewValue:  h.NewValue,
		Comment:   h.Comment,
		CreatedAt: h.CreatedAt.Local().Format(timestampLayout),
	}
}

func upcomingToDTOs(list []entities.UpcomingMaintenance) []dto.UpcomingMaintenanceDTO {
	result := make([]dto.UpcomingMaintenanceDTO, 0, len(list))
	for _, m := range list {
		result = append(result, dto.UpcomingMaintenanceDTO{
			MaintenanceID:   m.MaintenanceID,
			AssetID:         m.AssetID,
			AssetName:       m.AssetName,
			MaintenanceType: m.MaintenanceType,
			StartDate:       utils.FormatDate(m.StartDate),
		})
	}
	return result
}

func warrantiesToDTOs(list []entities.ExpiringWarranty, asOf time.Time) []dto.ExpiringWarrantyDTO {
	result := make([]dto.ExpiringWarrantyDTO, 0, len(list))
	for _, w := range list {
		result = append(result, dto.ExpiringWarrantyDTO{
			AssetID:            w.AssetID,
			AssetName:          w.AssetName,
			AssetCode:          w.AssetCode,
			WarrantyExpiryDate: utils.FormatDate(w.WarrantyExpiryDate),
			DaysLeft:           utils.DaysBetween(asOf, w.WarrantyExpiryDate),
		})
	}
	return result
}

func assetTypeEntityToDTO(t *entities.AssetType) dto.AssetTypeDTO {
	return dto.AssetTypeDTO{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		CreatedAt:   t.CreatedAt.Local().Format(timestampLayout),
		UpdatedAt:   t.UpdatedAt.Local().Format(timestampLayout),
	}
}
