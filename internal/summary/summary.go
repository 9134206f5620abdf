// Package summary extracts the list-view fields of a stored UBL invoice.
package summary

import (
	"cmp"

	"github.com/shopspring/decimal"

	"einvoice/internal/xmltree"
)

// Summary holds the fields shown when invoices are listed, sorted or exported.
type Summary struct {
	InvoiceID string          `json:"invoiceId"`
	IssueDate string          `json:"issueDate"`
	DueDate   string          `json:"dueDate,omitempty"`
	Currency  string          `json:"currency"`
	Supplier  string          `json:"supplier"`
	Buyer     string          `json:"buyer"`
	Total     decimal.Decimal `json:"total"`
}

// FromXML parses xml and extracts its summary. ok is false when the document cannot be parsed.
func FromXML(xml string) (s Summary, ok bool) {
	root := xmltree.Parse(xml)
	if root == nil {
		return Summary{}, false
	}
	return FromTree(root), true
}

// FromTree extracts a summary from a parsed invoice. Missing fields stay empty and a missing or
// non-numeric payable amount reads as zero.
func FromTree(root *xmltree.Node) Summary {
	s := Summary{
		InvoiceID: root.TextAt("ID"),
		IssueDate: root.TextAt("IssueDate"),
		DueDate:   root.TextAt("DueDate"),
		Currency:  root.TextAt("DocumentCurrencyCode"),
		Supplier:  root.TextAt("AccountingSupplierParty", "Party", "PartyName", "Name"),
		Buyer:     root.TextAt("AccountingCustomerParty", "Party", "PartyName", "Name"),
	}
	if total, err := decimal.NewFromString(root.TextAt("LegalMonetaryTotal", "PayableAmount")); err == nil {
		s.Total = total
	}
	return s
}

// ByIssueDate orders summaries by issue date. ISO dates compare correctly as strings.
func ByIssueDate(a, b Summary) int {
	return cmp.Compare(a.IssueDate, b.IssueDate)
}

// ByDueDate orders summaries by due date; invoices without one sort last.
func ByDueDate(a, b Summary) int {
	switch {
	case a.DueDate == b.DueDate:
		return 0
	case a.DueDate == "":
		return 1
	case b.DueDate == "":
		return -1
	}
	return cmp.Compare(a.DueDate, b.DueDate)
}

// ByTotal orders summaries by payable amount.
func ByTotal(a, b Summary) int {
	return a.Total.Cmp(b.Total)
}
