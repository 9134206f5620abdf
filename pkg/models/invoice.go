package models

import "github.com/shopspring/decimal"

// DefaultInvoiceTypeCode is the UNTDID 1001 code for a commercial invoice.
const DefaultInvoiceTypeCode = "380"

// Invoice is the JSON invoice payload accepted by the API and the CLI.
// Amounts are decimals so the line total invariant can be checked exactly.
type Invoice struct {
	// Core identifiers
	InvoiceID       string `json:"invoiceId"`
	InvoiceTypeCode string `json:"invoiceTypeCode,omitempty"` // defaults to 380

	// Dates, formatted YYYY-MM-DD
	IssueDate string `json:"issueDate"`
	DueDate   string `json:"dueDate,omitempty"`

	Currency string `json:"currency"` // ISO 4217 code

	// Parties
	Buyer           string   `json:"buyer"`
	Supplier        string   `json:"supplier"`
	BuyerAddress    *Address `json:"buyerAddress,omitempty"`
	SupplierAddress *Address `json:"supplierAddress,omitempty"`
	BuyerPhone      string   `json:"buyerPhone,omitempty"`
	SupplierPhone   string   `json:"supplierPhone,omitempty"`
	BuyerEmail      string   `json:"buyerEmail,omitempty"`
	SupplierEmail   string   `json:"supplierEmail,omitempty"`

	// Payment / banking
	PaymentAccountID             string `json:"paymentAccountId,omitempty"`
	PaymentAccountName           string `json:"paymentAccountName,omitempty"`
	FinancialInstitutionBranchID string `json:"financialInstitutionBranchId,omitempty"`

	Items []LineItem `json:"items"`

	// Amounts
	Total    decimal.Decimal     `json:"total"`
	TaxRate  decimal.NullDecimal `json:"taxRate"`
	TaxTotal decimal.NullDecimal `json:"taxTotal"`
}

// Address is a postal address; Country is a 3-letter ISO 3166 code.
type Address struct {
	Street  string `json:"street,omitempty"`
	Country string `json:"country,omitempty"`
}

// LineItem is a single invoiced good or service.
type LineItem struct {
	Name     string          `json:"name"`
	Count    decimal.Decimal `json:"count"`
	Cost     decimal.Decimal `json:"cost"`
	Currency string          `json:"currency,omitempty"` // defaults to the invoice currency
}

// LineTotal returns count * cost.
func (li LineItem) LineTotal() decimal.Decimal {
	return li.Count.Mul(li.Cost)
}

// ItemsTotal sums count * cost over all items.
func (inv *Invoice) ItemsTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range inv.Items {
		sum = sum.Add(item.LineTotal())
	}
	return sum
}

// TypeCode returns the invoice type code, falling back to 380.
func (inv *Invoice) TypeCode() string {
	if inv.InvoiceTypeCode == "" {
		return DefaultInvoiceTypeCode
	}
	return inv.InvoiceTypeCode
}

// HasPayment reports whether any payment or banking field is set.
func (inv *Invoice) HasPayment() bool {
	return inv.PaymentAccountID != "" || inv.PaymentAccountName != "" || inv.FinancialInstitutionBranchID != ""
}

// HasTax reports whether a tax rate or tax total was given.
func (inv *Invoice) HasTax() bool {
	return inv.TaxRate.Valid || inv.TaxTotal.Valid
}

// TaxAmount returns the explicit tax total, or total * taxRate / 100 when only a rate is given.
func (inv *Invoice) TaxAmount() decimal.Decimal {
	if inv.TaxTotal.Valid {
		return inv.TaxTotal.Decimal
	}
	if inv.TaxRate.Valid {
		return inv.Total.Mul(inv.TaxRate.Decimal).Div(decimal.NewFromInt(100)).Round(2)
	}
	return decimal.Zero
}
