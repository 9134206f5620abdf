package ubl_test

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"einvoice/internal/ubl"
	"einvoice/internal/xmltree"
	"einvoice/pkg/models"
)

func scenarioInvoice() *models.Invoice {
	return &models.Invoice{
		InvoiceID:       "INV1",
		IssueDate:       "2025-01-01",
		DueDate:         "2025-01-10",
		Currency:        "AUD",
		Buyer:           "B",
		Supplier:        "S",
		BuyerAddress:    &models.Address{Street: "1 Rd", Country: "AUS"},
		SupplierAddress: &models.Address{Street: "2 Rd", Country: "AUS"},
		Total:           decimal.NewFromInt(100),
		Items: []models.LineItem{
			{Name: "X", Count: decimal.NewFromInt(1), Cost: decimal.NewFromInt(100)},
		},
		PaymentAccountID:             "1",
		PaymentAccountName:           "N",
		FinancialInstitutionBranchID: "2",
	}
}

func TestGenerateScenario(t *testing.T) {
	out, err := ubl.Generate(scenarioInvoice())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, out, `<cbc:PayableAmount currencyID="AUD">100</cbc:PayableAmount>`)
	assert.Contains(t, out, `<cbc:CustomizationID>`+ubl.CustomizationID+`</cbc:CustomizationID>`)
	assert.Contains(t, out, `<cbc:ProfileID>`+ubl.ProfileID+`</cbc:ProfileID>`)
	assert.Contains(t, out, `<cbc:InvoiceTypeCode>380</cbc:InvoiceTypeCode>`)
	assert.Contains(t, out, `xmlns="`+ubl.NamespaceInvoice+`"`)
	assert.Contains(t, out, `xmlns:cac="`+ubl.NamespaceCac+`"`)
	assert.Contains(t, out, `xmlns:cbc="`+ubl.NamespaceCbc+`"`)
}

func TestGenerateIsDeterministic(t *testing.T) {
	first, err := ubl.Generate(scenarioInvoice())
	require.NoError(t, err)
	second, err := ubl.Generate(scenarioInvoice())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGenerateRoundTripsTotal(t *testing.T) {
	inv := scenarioInvoice()
	inv.Items = []models.LineItem{
		{Name: "A", Count: decimal.NewFromInt(3), Cost: decimal.RequireFromString("12.50")},
		{Name: "B", Count: decimal.RequireFromString("0.5"), Cost: decimal.NewFromInt(5)},
	}
	inv.Total = inv.ItemsTotal()

	out, err := ubl.Generate(inv)
	require.NoError(t, err)

	root := xmltree.Parse(out)
	require.NotNil(t, root)

	payable := root.Find("LegalMonetaryTotal", "PayableAmount")
	require.NotNil(t, payable)
	assert.Equal(t, "AUD", payable.Attr("currencyID"))
	assert.True(t, decimal.RequireFromString(payable.Text).Equal(inv.Total))

	lines := root.ChildrenNamed("InvoiceLine")
	require.Len(t, lines, 2)
	assert.Equal(t, "1", lines[0].TextAt("ID"))
	assert.Equal(t, "2", lines[1].TextAt("ID"))
	assert.Equal(t, "B", lines[1].TextAt("Item", "Name"))
	assert.Equal(t, "12.5", lines[0].TextAt("Price", "PriceAmount"))
	assert.NotNil(t, lines[0].Find("Price", "BaseQuantity"))
}

func TestGenerateDoesNotEnforceLineTotal(t *testing.T) {
	inv := scenarioInvoice()
	inv.Items = []models.LineItem{{Name: "X", Count: decimal.NewFromInt(2), Cost: decimal.NewFromInt(100)}}
	inv.Total = decimal.NewFromInt(150)

	out, err := ubl.Generate(inv)
	require.NoError(t, err)
	assert.Contains(t, out, `<cbc:PayableAmount currencyID="AUD">150</cbc:PayableAmount>`)
	assert.Contains(t, out, `<cbc:LineExtensionAmount currencyID="AUD">200</cbc:LineExtensionAmount>`)
}

func TestGenerateOmitsMissingOptionalFields(t *testing.T) {
	inv := &models.Invoice{
		InvoiceID: "INV2",
		IssueDate: "2025-02-01",
		Currency:  "EUR",
		Buyer:     "Buyer",
		Supplier:  "Supplier",
		Total:     decimal.NewFromInt(10),
		Items:     []models.LineItem{{Name: "Pen", Count: decimal.NewFromInt(1), Cost: decimal.NewFromInt(10)}},
	}

	out, err := ubl.Generate(inv)
	require.NoError(t, err)

	for _, absent := range []string{"DueDate", "PaymentMeans", "PostalAddress", "Contact", "TaxTotal", "TaxInclusiveAmount"} {
		assert.NotContains(t, out, absent)
	}
}

func TestGenerateOptionalBlocks(t *testing.T) {
	inv := scenarioInvoice()
	inv.InvoiceTypeCode = "381"
	inv.SupplierPhone = "+61 2 0000 0000"
	inv.BuyerEmail = "buyer@example.com"
	inv.TaxRate = decimal.NewNullDecimal(decimal.NewFromInt(10))
	inv.Items[0].Currency = "EUR"

	out, err := ubl.Generate(inv)
	require.NoError(t, err)

	root := xmltree.Parse(out)
	require.NotNil(t, root)

	assert.Equal(t, "381", root.TextAt("InvoiceTypeCode"))
	assert.Equal(t, "+61 2 0000 0000", root.TextAt("AccountingSupplierParty", "Party", "Contact", "Telephone"))
	assert.Equal(t, "buyer@example.com", root.TextAt("AccountingCustomerParty", "Party", "Contact", "ElectronicMail"))
	assert.Equal(t, "10", root.TextAt("TaxTotal", "TaxAmount"))
	assert.Equal(t, "110", root.TextAt("LegalMonetaryTotal", "TaxInclusiveAmount"))
	assert.Equal(t, "100", root.TextAt("LegalMonetaryTotal", "PayableAmount"))
	assert.Equal(t, "EUR", root.Find("InvoiceLine", "Price", "PriceAmount").Attr("currencyID"))
	assert.Equal(t, "2", root.TextAt("PaymentMeans", "PayeeFinancialAccount", "FinancialInstitutionBranch", "ID"))
}

func TestGenerateNilInvoice(t *testing.T) {
	_, err := ubl.Generate(nil)
	assert.ErrorIs(t, err, ubl.ErrNilInvoice)
}
