// Package paycode renders payment details of an invoice as a QR code.
package paycode

import (
	"errors"
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"

	"einvoice/internal/summary"
	"einvoice/internal/xmltree"
)

// DefaultSize is the edge length of generated images in pixels.
const DefaultSize = 300

// ErrNoPaymentAccount is returned when the invoice carries no payee account.
var ErrNoPaymentAccount = errors.New("paycode: invoice has no payee financial account")

// Payment is the information encoded in the QR code.
type Payment struct {
	Reference   string
	Payee       string
	AccountID   string
	AccountName string
	BranchID    string
	Amount      string
	Currency    string
	DueDate     string
}

// FromTree reads the payment details of a parsed UBL invoice.
func FromTree(root *xmltree.Node) Payment {
	s := summary.FromTree(root)
	account := root.Find("PaymentMeans", "PayeeFinancialAccount")
	return Payment{
		Reference:   s.InvoiceID,
		Payee:       s.Supplier,
		AccountID:   account.TextAt("ID"),
		AccountName: account.TextAt("Name"),
		BranchID:    account.TextAt("FinancialInstitutionBranch", "ID"),
		Amount:      s.Total.String(),
		Currency:    s.Currency,
		DueDate:     s.DueDate,
	}
}

// Payload returns the plain-text content of the code, one "KEY:value" pair per line. Empty
// values are skipped.
func (p Payment) Payload() string {
	var b strings.Builder
	line := func(key, value string) {
		if value != "" {
			fmt.Fprintf(&b, "%s:%s\n", key, value)
		}
	}
	line("INVOICE", p.Reference)
	line("PAYEE", p.Payee)
	line("ACCOUNT", p.AccountID)
	line("ACCOUNT NAME", p.AccountName)
	line("BRANCH", p.BranchID)
	if p.Amount != "" {
		line("AMOUNT", strings.TrimSpace(p.Currency+" "+p.Amount))
	}
	line("DUE", p.DueDate)
	return strings.TrimSuffix(b.String(), "\n")
}

// PNG encodes p as a QR code image. size <= 0 uses DefaultSize.
func PNG(p Payment, size int) ([]byte, error) {
	if p.AccountID == "" {
		return nil, ErrNoPaymentAccount
	}
	if size <= 0 {
		size = DefaultSize
	}
	png, err := qrcode.Encode(p.Payload(), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("paycode: encode: %w", err)
	}
	return png, nil
}
