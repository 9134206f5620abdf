package invoice

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"einvoice/internal/codelist"
	"einvoice/pkg/models"
)

const dateLayout = "2006-01-02"

// Check verifies the shape of an invoice payload before a document is generated from it. It
// returns ValidationErrors listing every problem, or nil.
func Check(inv *models.Invoice) error {
	if inv == nil {
		return ValidationErrors{NewValidationError("invoice", nil, "is required")}
	}

	var errs ValidationErrors
	add := func(field string, value interface{}, format string, args ...interface{}) {
		errs = append(errs, NewValidationError(field, value, fmt.Sprintf(format, args...)))
	}

	required := []struct {
		field, value string
	}{
		{"invoiceId", inv.InvoiceID},
		{"issueDate", inv.IssueDate},
		{"currency", inv.Currency},
		{"buyer", inv.Buyer},
		{"supplier", inv.Supplier},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			add(r.field, nil, "is required")
		}
	}

	issued, issuedOK := parseDate(inv.IssueDate)
	if inv.IssueDate != "" && !issuedOK {
		add("issueDate", inv.IssueDate, "must be a date in YYYY-MM-DD format")
	}
	if inv.DueDate != "" {
		due, ok := parseDate(inv.DueDate)
		switch {
		case !ok:
			add("dueDate", inv.DueDate, "must be a date in YYYY-MM-DD format")
		case issuedOK && !due.After(issued):
			add("dueDate", inv.DueDate, "must be after issueDate")
		}
	}

	if inv.Currency != "" && !codelist.IsCurrencyShape(inv.Currency) {
		add("currency", inv.Currency, "must be a 3-letter uppercase ISO 4217 code")
	}

	checkAddress := func(field string, addr *models.Address) {
		if addr != nil && addr.Country != "" && !codelist.IsCountryShape(addr.Country) {
			add(field+".country", addr.Country, "must be a 3-letter uppercase ISO 3166 code")
		}
	}
	checkAddress("buyerAddress", inv.BuyerAddress)
	checkAddress("supplierAddress", inv.SupplierAddress)

	if inv.InvoiceTypeCode != "" && !isDigits(inv.InvoiceTypeCode) {
		add("invoiceTypeCode", inv.InvoiceTypeCode, "must be a numeric UNTDID 1001 code")
	}

	if len(inv.Items) == 0 {
		add("items", nil, "must contain at least one item")
	}
	for i, item := range inv.Items {
		field := fmt.Sprintf("items[%d]", i)
		if strings.TrimSpace(item.Name) == "" {
			add(field+".name", nil, "is required")
		}
		if !item.Count.IsPositive() {
			add(field+".count", item.Count.String(), "must be greater than 0")
		}
		if !item.Cost.IsPositive() {
			add(field+".cost", item.Cost.String(), "must be greater than 0")
		}
		if item.Currency != "" && !codelist.IsCurrencyShape(item.Currency) {
			add(field+".currency", item.Currency, "must be a 3-letter uppercase ISO 4217 code")
		}
	}

	if len(inv.Items) > 0 {
		if sum := inv.ItemsTotal(); !inv.Total.Equal(sum) {
			add("total", inv.Total.String(), "must equal the sum of count x cost over all items (%s)", sum.String())
		}
	}

	for _, tax := range []struct {
		field string
		value decimal.NullDecimal
	}{
		{"taxRate", inv.TaxRate},
		{"taxTotal", inv.TaxTotal},
	} {
		if tax.value.Valid && tax.value.Decimal.IsNegative() {
			add(tax.field, tax.value.Decimal.String(), "must not be negative")
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func parseDate(value string) (time.Time, bool) {
	t, err := time.Parse(dateLayout, value)
	return t, err == nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
