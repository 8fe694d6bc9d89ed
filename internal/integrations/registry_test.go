package integrations_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asset-system/internal/integrations"
	"asset-system/internal/integrations/dto"
	"asset-system/internal/integrations/static"
)

func TestRegistry_DelegatesToActive(t *testing.T) {
	registry := integrations.NewRegistry()

	_, err := registry.GetEmployee(context.Background(), 1, 5)
	assert.Error(t, err, "без активного справочника")

	require.NoError(t, registry.Register(static.New(dto.EmployeeDTO{ID: 5, FullName: "Иванов И.И.", IsActive: true})))
	assert.Error(t, registry.Register(static.New()), "повторная регистрация того же имени")
	assert.Error(t, registry.SetActive("unknown"))
	require.NoError(t, registry.SetActive("static"))

	employee, err := registry.GetEmployee(context.Background(), 1, 5)
	require.NoError(t, err)
	require.NotNil(t, employee)
	assert.Equal(t, "Иванов И.И.", employee.FullName)

	missing, err := registry.GetEmployee(context.Background(), 1, 6)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStaticDirectory_OpenMode(t *testing.T) {
	directory := static.New()

	e, err := directory.GetEmployee(context.Background(), 1, 42)
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, uint64(42), e.ID)

	zero, err := directory.GetEmployee(context.Background(), 1, 0)
	require.NoError(t, err)
	assert.Nil(t, zero)
}
