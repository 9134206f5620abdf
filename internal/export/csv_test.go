package export

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"einvoice/internal/summary"
)

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, []summary.Summary{
		{InvoiceID: "INV1", IssueDate: "2025-01-01", DueDate: "2025-01-10", Supplier: "S", Buyer: "B", Currency: "AUD", Total: decimal.NewFromInt(100)},
		{InvoiceID: "INV2", IssueDate: "2025-02-01", Supplier: "Acme, Inc.", Buyer: "B", Currency: "EUR", Total: decimal.RequireFromString("12.5")},
	})
	require.NoError(t, err)

	assert.Equal(t,
		"Invoice ID,Issue Date,Due Date,Supplier,Buyer,Currency,Total\n"+
			"INV1,2025-01-01,2025-01-10,S,B,AUD,100.00\n"+
			"INV2,2025-02-01,,\"Acme, Inc.\",B,EUR,12.50\n",
		buf.String())
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "Invoice ID,Issue Date,Due Date,Supplier,Buyer,Currency,Total\n", buf.String())
}
