package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/fleetservis/backend/src/database"
	"github.com/username/fleetservis/backend/src/models"
)

func strPtr(s string) *string { return &s }

// -- Vehicle tests --

func TestCreateVehicle_NormalizesPlate(t *testing.T) {
	newTestDB(t)
	svc := NewFleetService(database.DB)

	v := &models.Vehicle{Plate: " 34 abc 123 ", OwnerName: strPtr("Ahmet Yılmaz")}
	require.NoError(t, svc.CreateVehicle(context.Background(), v))

	assert.Equal(t, "34ABC123", v.Plate)
	assert.Equal(t, "individual", v.CustomerType)
	require.NotZero(t, v.ID)

	got, err := svc.GetVehicle(context.Background(), v.ID)
	require.NoError(t, err)
	assert.Equal(t, "34ABC123", got.Plate)
	require.NotNil(t, got.OwnerName)
	assert.Equal(t, "Ahmet Yılmaz", *got.OwnerName)
}

func TestCreateVehicle_DuplicatePlate(t *testing.T) {
	newTestDB(t)
	svc := NewFleetService(database.DB)

	require.NoError(t, svc.CreateVehicle(context.Background(), &models.Vehicle{Plate: "34ABC123"}))
	err := svc.CreateVehicle(context.Background(), &models.Vehicle{Plate: "34 abc 123"})
	assert.ErrorIs(t, err, ErrDuplicatePlate)
}

func TestCreateVehicle_EmptyPlate(t *testing.T) {
	newTestDB(t)
	svc := NewFleetService(database.DB)

	err := svc.CreateVehicle(context.Background(), &models.Vehicle{Plate: "   "})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestListVehicles_Search(t *testing.T) {
	newTestDB(t)
	svc := NewFleetService(database.DB)
	require.NoError(t, svc.CreateVehicle(context.Background(), &models.Vehicle{Plate: "34ABC123"}))
	require.NoError(t, svc.CreateVehicle(context.Background(), &models.Vehicle{Plate: "06XYZ77"}))

	all, err := svc.ListVehicles(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "06XYZ77", all[0].Plate)

	matched, err := svc.ListVehicles(context.Background(), "34abc")
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "34ABC123", matched[0].Plate)
}

func TestVehicle_UpdateAndDelete(t *testing.T) {
	newTestDB(t)
	svc := NewFleetService(database.DB)

	v := &models.Vehicle{Plate: "34ABC123"}
	require.NoError(t, svc.CreateVehicle(context.Background(), v))

	v.Plate = "34 DEF 456"
	v.Brand = strPtr("Renault")
	require.NoError(t, svc.UpdateVehicle(context.Background(), v))

	got, err := svc.GetVehicle(context.Background(), v.ID)
	require.NoError(t, err)
	assert.Equal(t, "34DEF456", got.Plate)

	require.NoError(t, svc.DeleteVehicle(context.Background(), v.ID))
	_, err = svc.GetVehicle(context.Background(), v.ID)
	assert.ErrorIs(t, err, ErrVehicleNotFound)
	assert.ErrorIs(t, svc.DeleteVehicle(context.Background(), v.ID), ErrVehicleNotFound)
}

// -- Personnel tests --

func TestPersonnel_Lifecycle(t *testing.T) {
	newTestDB(t)
	svc := NewFleetService(database.DB)

	p := &models.Personnel{FullName: "  Mehmet   Demir ", Role: "usta"}
	require.NoError(t, svc.CreatePersonnel(context.Background(), p))
	assert.Equal(t, "Mehmet Demir", p.FullName)
	assert.Equal(t, "active", p.Status)

	p.Status = "inactive"
	require.NoError(t, svc.UpdatePersonnel(context.Background(), p))

	active, err := svc.ListPersonnel(context.Background(), "active")
	require.NoError(t, err)
	assert.Empty(t, active)

	inactive, err := svc.ListPersonnel(context.Background(), "inactive")
	require.NoError(t, err)
	require.Len(t, inactive, 1)
	assert.Equal(t, "Mehmet Demir", inactive[0].FullName)

	require.NoError(t, svc.DeletePersonnel(context.Background(), p.ID))
	_, err = svc.GetPersonnel(context.Background(), p.ID)
	assert.ErrorIs(t, err, ErrPersonnelNotFound)
}

func TestCreatePersonnel_EmptyName(t *testing.T) {
	newTestDB(t)
	svc := NewFleetService(database.DB)

	err := svc.CreatePersonnel(context.Background(), &models.Personnel{FullName: " \t "})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

// -- Category tests --

func TestCategory_Lifecycle(t *testing.T) {
	newTestDB(t)
	svc := NewFleetService(database.DB)

	c := &models.TransactionCategory{Name: "Bakım", Description: strPtr("Periyodik bakım işleri")}
	require.NoError(t, svc.CreateCategory(context.Background(), c))
	require.NotZero(t, c.ID)

	err := svc.CreateCategory(context.Background(), &models.TransactionCategory{Name: "Bakım"})
	assert.ErrorIs(t, err, ErrDuplicateCategory)

	c.Name = "Ağır Bakım"
	require.NoError(t, svc.UpdateCategory(context.Background(), c))

	categories, err := svc.ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "Ağır Bakım", categories[0].Name)

	require.NoError(t, svc.DeleteCategory(context.Background(), c.ID))
	assert.ErrorIs(t, svc.DeleteCategory(context.Background(), c.ID), ErrCategoryNotFound)
}
