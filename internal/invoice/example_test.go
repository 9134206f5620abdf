package invoice_test

import (
	"context"
	"fmt"
	"log"

	"github.com/shopspring/decimal"

	"einvoice/internal/invoice"
	"einvoice/internal/store"
	"einvoice/internal/validation"
	"einvoice/pkg/models"
)

// Example demonstrates creating and sharing an invoice.
func Example() {
	ctx := context.Background()

	// Any store.Repository works; the MySQL one is opened with store.OpenMySQL(dsn)
	svc := invoice.NewService(store.NewMemoryStore(), validation.NewValidator())

	res, err := svc.Create(ctx, "alice", &models.Invoice{
		InvoiceID:       "INV-2025-001",
		IssueDate:       "2025-01-01",
		DueDate:         "2025-01-31",
		Currency:        "EUR",
		Buyer:           "Buyer GmbH",
		Supplier:        "Supplier AG",
		BuyerAddress:    &models.Address{Street: "Hauptstr. 1", Country: "DEU"},
		SupplierAddress: &models.Address{Street: "Ringstr. 2", Country: "DEU"},
		Items: []models.LineItem{
			{Name: "Consulting", Count: decimal.NewFromInt(4), Cost: decimal.RequireFromString("125.00")},
		},
		Total:                        decimal.NewFromInt(500),
		PaymentAccountID:             "DE89370400440532013000",
		PaymentAccountName:           "Supplier AG",
		FinancialInstitutionBranchID: "COBADEFFXXX",
	})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%s valid: %t\n", res.Record.InvoiceID, res.Validation.Valid)

	if err := svc.Share(ctx, "alice", res.Record.ID, "bob"); err != nil {
		log.Fatal(err)
	}

	page, err := svc.List(ctx, "bob", invoice.ListOptions{Scope: invoice.ScopeShared})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("bob sees %d invoice(s), total %s %s\n", page.Total, page.Items[0].Total, page.Items[0].Currency)

	// Output:
	// INV-2025-001 valid: true
	// bob sees 1 invoice(s), total 500 EUR
}
