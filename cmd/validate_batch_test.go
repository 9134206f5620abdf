package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"einvoice/internal/ubl"
	"einvoice/pkg/models"
)

func writeInvoice(t *testing.T, dir, name, country string) string {
	t.Helper()
	inv := &models.Invoice{
		InvoiceID:                    name,
		IssueDate:                    "2025-01-01",
		Currency:                     "EUR",
		Buyer:                        "Buyer",
		Supplier:                     "Supplier",
		BuyerAddress:                 &models.Address{Street: "1 Rd", Country: country},
		SupplierAddress:              &models.Address{Street: "2 Rd", Country: "DEU"},
		PaymentAccountID:             "DE89370400440532013000",
		PaymentAccountName:           "Supplier",
		FinancialInstitutionBranchID: "COBADEFFXXX",
		Items:                        []models.LineItem{{Name: "Work", Count: decimal.NewFromInt(2), Cost: decimal.NewFromInt(50)}},
		Total:                        decimal.NewFromInt(100),
	}
	xml, err := ubl.Generate(inv)
	require.NoError(t, err)

	path := filepath.Join(dir, name+".xml")
	require.NoError(t, os.WriteFile(path, []byte(xml), 0o644))
	return path
}

func TestValidateFilesKeepsInputOrder(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.Mkdir(sub, 0o755))

	writeInvoice(t, dir, "a", "DEU")
	writeInvoice(t, dir, "b", "ZZZ")
	writeInvoice(t, sub, "c", "FRA")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "d.xml"), []byte("<NotInvoice/>"), 0o644))

	files, err := findFiles(dir, ".xml")
	require.NoError(t, err)
	require.Len(t, files, 4)

	results := validateFiles(context.Background(), files, 3, zerolog.Nop())
	require.Len(t, results, len(files))

	byName := map[string]fileResult{}
	for i, r := range results {
		assert.Equal(t, files[i], r.File)
		byName[filepath.Base(r.File)] = r
	}

	assert.True(t, byName["a.xml"].Valid)
	assert.Equal(t, "a", byName["a.xml"].Summary.InvoiceID)
	assert.Equal(t, "100", byName["a.xml"].Summary.Total.String())

	assert.False(t, byName["b.xml"].Valid)
	require.Len(t, byName["b.xml"].Errors, 1)
	assert.Contains(t, byName["b.xml"].Errors[0], "ZZZ")

	assert.True(t, byName["c.xml"].Valid)
	assert.False(t, byName["d.xml"].Valid)
	assert.Empty(t, byName["d.xml"].Err)
}

func TestValidateFilesCancelled(t *testing.T) {
	dir := t.TempDir()
	path := writeInvoice(t, dir, "a", "DEU")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := validateFiles(ctx, []string{path}, 1, zerolog.Nop())
	require.Len(t, results, 1)
	assert.False(t, results[0].Valid)
	assert.NotEmpty(t, results[0].Err)
}

func TestFindFilesErrors(t *testing.T) {
	_, err := findFiles(filepath.Join(t.TempDir(), "missing"), ".xml")
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "f.xml")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	_, err = findFiles(file, ".xml")
	assert.Error(t, err)
}

func TestReadInputFile(t *testing.T) {
	dir := t.TempDir()
	log := zerolog.Nop()

	_, err := readInputFile(filepath.Join(dir, "missing.json"), ".json", log)
	assert.ErrorContains(t, err, "not found")

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = readInputFile(empty, ".json", log)
	assert.ErrorContains(t, err, "empty")

	_, err = readInputFile(dir, ".json", log)
	assert.ErrorContains(t, err, "not a regular file")

	ok := filepath.Join(dir, "ok.json")
	require.NoError(t, os.WriteFile(ok, []byte("{}"), 0o644))
	data, err := readInputFile(ok, ".json", log)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}
