package services

import (
	"context"
	"testing"

	"github.com/aarondl/null/v8"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asset-system/internal/dto"
	"asset-system/internal/entities"
	apperrors "asset-system/pkg/errors"
)

func scheduleReq(start string) dto.ScheduleMaintenanceDTO {
	return dto.ScheduleMaintenanceDTO{
		MaintenanceType: "Замена батареи",
		StartDate:       date(start),
		Cost:            decimal.NewNullDecimal(decimal.NewFromInt(4500)),
	}
}

func TestSchedule_AvailableAsset(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	asset := f.createAsset(t)

	m, err := f.maintenance.Schedule(ctx, testActor, asset.ID, scheduleReq("2025-06-20"))
	require.NoError(t, err)
	assert.Equal(t, string(entities.MaintenanceScheduled), m.Status)
	assert.Equal(t, entities.AssetStatusUnderMaintenance, f.store.asset(asset.ID).Status)

	_, err = f.maintenance.Schedule(ctx, testActor, asset.ID, scheduleReq("2025-06-21"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}

// Выданный актив уходит на обслуживание, выдача остаётся открытой.
func TestSchedule_AssignedAssetKeepsAssignmentOpen(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	asset := f.createAsset(t)
	a, err := f.assignments.Assign(ctx, testActor, asset.ID, dto.AssignAssetDTO{EmployeeID: 100, CheckoutDate: date("2025-01-01")})
	require.NoError(t, err)

	m, err := f.maintenance.Schedule(ctx, testActor, asset.ID, scheduleReq("2025-06-16"))
	require.NoError(t, err)
	assert.Equal(t, entities.AssetStatusUnderMaintenance, f.store.asset(asset.ID).Status)

	open, err := fakeAssignmentRepo{f.store}.FindOpenByAsset(ctx, nil, asset.ID)
	require.NoError(t, err)
	require.NotNil(t, open)
	assert.Equal(t, a.ID, open.ID)

	_, err = f.maintenance.UpdateStatus(ctx, testActor, m.ID, dto.UpdateMaintenanceStatusDTO{Status: "in_progress"})
	require.NoError(t, err)
	_, err = f.maintenance.UpdateStatus(ctx, testActor, m.ID, dto.UpdateMaintenanceStatusDTO{
		Status: "completed", EndDate: datePointer("2025-06-18"), CompletionNotes: null.StringFrom("готово"),
	})
	require.NoError(t, err)

	assert.Equal(t, entities.AssetStatusAssigned, f.store.asset(asset.ID).Status, "выдача открыта - актив снова выдан")
}

func TestReturnDuringMaintenance(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	asset := f.createAsset(t)
	a, err := f.assignments.Assign(ctx, testActor, asset.ID, dto.AssignAssetDTO{EmployeeID: 100, CheckoutDate: date("2025-01-01")})
	require.NoError(t, err)
	m, err := f.maintenance.Schedule(ctx, testActor, asset.ID, scheduleReq("2025-06-16"))
	require.NoError(t, err)

	_, err = f.assignments.Return(ctx, testActor, a.ID, dto.ReturnAssetDTO{CheckinDate: date("2025-06-17")})
	require.NoError(t, err)
	assert.Equal(t, entities.AssetStatusUnderMaintenance, f.store.asset(asset.ID).Status)

	_, err = f.maintenance.UpdateStatus(ctx, testActor, m.ID, dto.UpdateMaintenanceStatusDTO{
		Status: "cancelled", EndDate: datePointer("2025-06-17"),
	})
	require.NoError(t, err)
	assert.Equal(t, entities.AssetStatusAvailable, f.store.asset(asset.ID).Status)
}

func TestUpdateMaintenanceStatus_Transitions(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	asset := f.createAsset(t)
	m, err := f.maintenance.Schedule(ctx, testActor, asset.ID, scheduleReq("2025-06-16"))
	require.NoError(t, err)

	t.Run("scheduled -> completed запрещён", func(t *testing.T) {
		_, err := f.maintenance.UpdateStatus(ctx, testActor, m.ID, dto.UpdateMaintenanceStatusDTO{
			Status: "completed", EndDate: datePointer("2025-06-20"),
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidState)
	})

	t.Run("end_date обязателен для финального статуса", func(t *testing.T) {
		_, err := f.maintenance.UpdateStatus(ctx, testActor, m.ID, dto.UpdateMaintenanceStatusDTO{Status: "cancelled"})
		requireValidationField(t, err, "end_date")
	})

	t.Run("end_date раньше start_date", func(t *testing.T) {
		_, err := f.maintenance.UpdateStatus(ctx, testActor, m.ID, dto.UpdateMaintenanceStatusDTO{
			Status: "cancelled", EndDate: datePointer("2025-06-01"),
		})
		requireValidationField(t, err, "end_date")
	})

	t.Run("in_progress -> completed", func(t *testing.T) {
		_, err := f.maintenance.UpdateStatus(ctx, testActor, m.ID, dto.UpdateMaintenanceStatusDTO{Status: "in_progress"})
		require.NoError(t, err)

		done, err := f.maintenance.UpdateStatus(ctx, testActor, m.ID, dto.UpdateMaintenanceStatusDTO{
			Status: "completed", EndDate: datePointer("2025-06-19"), Cost: decimal.NewNullDecimal(decimal.NewFromInt(5000)),
		})
		require.NoError(t, err)
		assert.Equal(t, string(entities.MaintenanceCompleted), done.Status)
		assert.True(t, done.Cost.Equal(decimal.NewFromInt(5000)))
		assert.Equal(t, entities.AssetStatusAvailable, f.store.asset(asset.ID).Status)
	})

	t.Run("из финального статуса переходов нет", func(t *testing.T) {
		_, err := f.maintenance.UpdateStatus(ctx, testActor, m.ID, dto.UpdateMaintenanceStatusDTO{
			Status: "cancelled", EndDate: datePointer("2025-06-20"),
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidState)
	})

	t.Run("чужой тенант", func(t *testing.T) {
		_, err := f.maintenance.UpdateStatus(ctx, otherActor, m.ID, dto.UpdateMaintenanceStatusDTO{Status: "in_progress"})
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestSchedule_DisposedAsset(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	asset := f.createAsset(t)
	_, err := f.assets.DisposeAsset(ctx, testActor, asset.ID, dto.DisposeAssetDTO{})
	require.NoError(t, err)

	_, err = f.maintenance.Schedule(ctx, testActor, asset.ID, scheduleReq("2025-06-16"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestDisposeAsset_WithActiveMaintenance(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	asset := f.createAsset(t)
	_, err := f.maintenance.Schedule(ctx, testActor, asset.ID, scheduleReq("2025-06-16"))
	require.NoError(t, err)

	_, err = f.assets.DisposeAsset(ctx, testActor, asset.ID, dto.DisposeAssetDTO{})
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
	assert.Equal(t, entities.AssetStatusUnderMaintenance, f.store.asset(asset.ID).Status)
}

func TestListUpcoming(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	soon := f.createAsset(t)
	later := f.createAsset(t)
	_, err := f.maintenance.Schedule(ctx, testActor, soon.ID, scheduleReq("2025-06-20"))
	require.NoError(t, err)
	_, err = f.maintenance.Schedule(ctx, testActor, later.ID, scheduleReq("2025-09-01"))
	require.NoError(t, err)

	upcoming, err := f.maintenance.ListUpcoming(ctx, testActor, 30)
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Equal(t, soon.ID, upcoming[0].AssetID)

	upcoming, err = f.maintenance.ListUpcoming(ctx, testActor, 120)
	require.NoError(t, err)
	assert.Len(t, upcoming, 2)

	upcoming, err = f.maintenance.ListUpcoming(ctx, otherActor, 120)
	require.NoError(t, err)
	assert.Empty(t, upcoming)
}
