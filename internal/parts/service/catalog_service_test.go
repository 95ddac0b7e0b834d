package service_test

import (
	"context"
	"testing"

	"github.com/bitfantasy/partslib/internal/parts/repository"
	"github.com/bitfantasy/partslib/internal/parts/service"
	"github.com/bitfantasy/partslib/internal/parts/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupplierLifecycle(t *testing.T) {
	ctx := context.Background()
	env := testutil.SetupEnv(t)

	sup, err := env.Services.Supplier.Create(ctx, &service.SupplierInput{Name: "Würth", City: "Künzelsau"})
	require.NoError(t, err)

	_, err = env.Services.Supplier.Create(ctx, &service.SupplierInput{Name: "Würth"})
	assert.ErrorIs(t, err, service.ErrDuplicateKey)

	c, err := env.Services.Component.Create(ctx, &service.CreateComponentInput{
		Number: "S-1", Name: "supplied", SupplierID: &sup.ID,
	})
	require.NoError(t, err)

	got, err := env.Services.Supplier.Get(ctx, sup.ID)
	require.NoError(t, err)
	require.Len(t, got.Components, 1)
	assert.Equal(t, "S-1", got.Components[0].Number)

	updated, err := env.Services.Supplier.Update(ctx, sup.ID, &service.SupplierInput{Name: "Würth GmbH", Country: "DE"})
	require.NoError(t, err)
	assert.Equal(t, "Würth GmbH", updated.Name)
	assert.Empty(t, updated.City)

	require.NoError(t, env.Services.Supplier.Delete(ctx, sup.ID))
	comp, err := env.Services.Component.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, comp.SupplierID)
}

func TestSupplierArchive(t *testing.T) {
	ctx := context.Background()
	env := testutil.SetupEnv(t)
	sup, err := env.Services.Supplier.Create(ctx, &service.SupplierInput{Name: "Acme"})
	require.NoError(t, err)

	require.NoError(t, env.Services.Supplier.SetArchived(ctx, sup.ID, true))
	_, total, err := env.Services.Supplier.List(ctx, repository.ListFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)

	assert.ErrorIs(t, env.Services.Supplier.SetArchived(ctx, "nope", true), service.ErrNotFound)
}

func TestMaterialCRUD(t *testing.T) {
	ctx := context.Background()
	env := testutil.SetupEnv(t)
	density := 7850.0

	m, err := env.Services.Material.Create(ctx, &service.MaterialInput{Name: "S235", Category: "steel", Density: &density})
	require.NoError(t, err)
	_, err = env.Services.Material.Create(ctx, &service.MaterialInput{Name: "PA6", Category: "polymer"})
	require.NoError(t, err)

	steels, total, err := env.Services.Material.List(ctx, repository.ListFilter{}, "steel")
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, m.ID, steels[0].ID)

	bad := -0.1
	_, err = env.Services.Material.Create(ctx, &service.MaterialInput{Name: "Bad", Density: &bad})
	assert.ErrorIs(t, err, service.ErrValidation)

	require.NoError(t, env.Services.Material.Delete(ctx, m.ID))
	_, err = env.Services.Material.Get(ctx, m.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestRequirementDefaults(t *testing.T) {
	ctx := context.Background()
	env := testutil.SetupEnv(t)

	r, err := env.Services.Requirement.Create(ctx, &service.RequirementInput{Title: "IP67"})
	require.NoError(t, err)
	assert.EqualValues(t, "desirable", r.Type)

	_, err = env.Services.Requirement.Create(ctx, &service.RequirementInput{Title: "x", Type: "optional"})
	assert.ErrorIs(t, err, service.ErrValidation)

	require.NoError(t, env.Services.Requirement.SetArchived(ctx, r.ID, true))
	_, total, err := env.Services.Requirement.List(ctx, repository.ListFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}
