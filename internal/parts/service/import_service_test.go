package service_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/bitfantasy/partslib/internal/parts/service"
	"github.com/bitfantasy/partslib/internal/parts/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// workbook builds an xlsx with the rows on the given sheet.
func workbook(t *testing.T, sheet string, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestImport_SkipsRowsMissingUUID(t *testing.T) {
	ctx := context.Background()
	env := testutil.SetupEnv(t)

	buf := workbook(t, "Sheet1", [][]interface{}{
		{"uuid", "number", "name"},
		{"u1", "N1", "Screw"},
		{"", "N2", "Bolt"},
	})

	summary, err := env.Services.Import.Import(ctx, buf, "")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Imported)
	assert.Equal(t, 1, summary.Skipped)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, 3, summary.Errors[0].Row)
	assert.Contains(t, summary.Errors[0].Reason, "uuid")

	c, err := env.Services.Component.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "N1", c.Number)
	assert.Equal(t, "Screw", c.Name)

	_, err = env.Services.Component.GetByNumber(ctx, "N2")
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestImport_AppliesDefaults(t *testing.T) {
	ctx := context.Background()
	env := testutil.SetupEnv(t)

	buf := workbook(t, "Parts", [][]interface{}{
		{"UUID", "Number", "Name", "Unit Price", "Qty", "Color"},
		{"p-1", "SCR-M3", "Screw M3", "0.1", "100", "black"},
	})

	summary, err := env.Services.Import.Import(ctx, buf, "Parts")
	require.NoError(t, err)
	assert.Equal(t, "Parts", summary.Sheet)
	assert.Equal(t, 1, summary.Imported)

	c, err := env.Services.Component.Get(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, "No description", c.Description)
	assert.Equal(t, "1", c.Revision)
	assert.Equal(t, "In Work", c.LifecycleState)
	assert.Equal(t, "System", c.Owner)
	assert.Equal(t, "EUR", c.Currency)
	assert.Equal(t, 100, c.Quantity)
	assert.Equal(t, "0.10", c.UnitPrice.Decimal.StringFixed(2))
	assert.Equal(t, "black", c.Attributes["color"])
}

func TestImport_SupplierByName(t *testing.T) {
	ctx := context.Background()
	env := testutil.SetupEnv(t)
	sup, err := env.Services.Supplier.Create(ctx, &service.SupplierInput{Name: "Acme"})
	require.NoError(t, err)

	buf := workbook(t, "Sheet1", [][]interface{}{
		{"uuid", "number", "name", "supplier"},
		{"a", "A", "Known", "Acme"},
		{"b", "B", "Unknown", "Globex"},
	})
	_, err = env.Services.Import.Import(ctx, buf, "")
	require.NoError(t, err)

	known, err := env.Services.Component.Get(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, known.SupplierID)
	assert.Equal(t, sup.ID, *known.SupplierID)

	unknown, err := env.Services.Component.Get(ctx, "b")
	require.NoError(t, err)
	assert.Nil(t, unknown.SupplierID)
	assert.Equal(t, "Globex", unknown.Attributes["supplier"])
}

func TestImport_BadValuesAreSkipped(t *testing.T) {
	env := testutil.SetupEnv(t)

	buf := workbook(t, "Sheet1", [][]interface{}{
		{"uuid", "number", "name", "quantity", "make_or_buy"},
		{"x1", "X1", "ok", "3", "buy"},
		{"x2", "X2", "bad qty", "lots", ""},
		{"x3", "X3", "bad mob", "1", "rent"},
		{},
	})
	summary, err := env.Services.Import.Import(context.Background(), buf, "")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Imported)
	assert.Equal(t, 2, summary.Skipped)
}

func TestImport_DuplicateRejectsWholeBatch(t *testing.T) {
	ctx := context.Background()
	env := testutil.SetupEnv(t)
	rows := [][]interface{}{
		{"uuid", "number", "name"},
		{"d1", "D1", "first"},
		{"d2", "D2", "second"},
	}

	_, err := env.Services.Import.Import(ctx, workbook(t, "Sheet1", rows), "")
	require.NoError(t, err)

	_, err = env.Services.Import.Import(ctx, workbook(t, "Sheet1", rows), "")
	assert.ErrorIs(t, err, service.ErrDuplicateKey)

	n, err := env.Repos.Component.Count(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestImport_HeaderAndSheetErrors(t *testing.T) {
	ctx := context.Background()
	env := testutil.SetupEnv(t)

	_, err := env.Services.Import.Import(ctx, workbook(t, "Sheet1", [][]interface{}{
		{"number", "name"},
		{"N1", "no uuid column"},
	}), "")
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = env.Services.Import.Import(ctx, workbook(t, "Sheet1", [][]interface{}{
		{"uuid", "number", "name"},
	}), "Missing")
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestExportThenImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := testutil.SetupEnv(t)
	require.NoError(t, src.Services.Library.SeedSample(ctx))

	f, name, err := src.Services.Export.Export(ctx, false)
	require.NoError(t, err)
	assert.Contains(t, name, ".xlsx")
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	f.Close()

	dst := testutil.SetupEnv(t)
	summary, err := dst.Services.Import.Import(ctx, buf, "Components")
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Imported)
	assert.Zero(t, summary.Skipped)

	srcTotal, err := src.Services.Library.TotalValue(ctx)
	require.NoError(t, err)
	dstTotal, err := dst.Services.Library.TotalValue(ctx)
	require.NoError(t, err)
	assert.True(t, srcTotal.Equal(dstTotal), "%s != %s", srcTotal, dstTotal)
}
