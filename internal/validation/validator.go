// Package validation checks UBL invoice documents against Peppol BIS Billing 3.0 business rules.
//
// Rules run in a fixed order and independently of each other, so one violation never hides
// another. Problems in the input document are reported through the returned result; Validate
// never fails with an error.
package validation

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"einvoice/internal/codelist"
	"einvoice/internal/logger"
	"einvoice/internal/ubl"
	"einvoice/internal/xmltree"
	"einvoice/pkg/models"
)

// Validator evaluates the Peppol rule set. It holds no per-call state and is safe for
// concurrent use.
type Validator struct {
	log   zerolog.Logger
	rules []rule
}

// rule records its findings in the report.
type rule func(doc *xmltree.Node, r *report)

type report struct {
	errors   []string
	warnings []string
}

func (r *report) errorf(format string, args ...any) {
	r.errors = append(r.errors, fmt.Sprintf(format, args...))
}

func (r *report) warnf(format string, args ...any) {
	r.warnings = append(r.warnings, fmt.Sprintf(format, args...))
}

// NewValidator creates a validator with the standard rule order.
func NewValidator() *Validator {
	return &Validator{
		log: logger.WithComponent("peppol-validator"),
		rules: []rule{
			checkNamespace,
			checkRequiredElements,
			checkInvoiceTypeCode,
			checkPartyNames,
			checkPostalAddresses,
			checkPayableCurrency,
			checkCountryCodes,
			checkInvoiceLines,
			checkLineCurrencies,
			checkBaseQuantities,
			checkPayableAmount,
			checkPaymentAccount,
		},
	}
}

// Validate parses xml and evaluates every rule against it.
func (v *Validator) Validate(xml string) *models.ValidationResult {
	doc := xmltree.Parse(xml)
	if doc == nil {
		v.log.Debug().Msg("Document could not be parsed")
		return invalid(msgUnparseable)
	}
	return v.ValidateTree(doc)
}

// ValidateTree evaluates every rule against an already parsed document.
func (v *Validator) ValidateTree(doc *xmltree.Node) *models.ValidationResult {
	if doc == nil {
		return invalid(msgUnparseable)
	}
	if doc.Name != "Invoice" {
		v.log.Debug().Str("root", doc.Name).Msg("Root element is not Invoice")
		return invalid(msgMissingRoot)
	}

	r := &report{}
	for _, check := range v.rules {
		check(doc, r)
	}

	result := &models.ValidationResult{
		Valid:    len(r.errors) == 0,
		Errors:   r.errors,
		Warnings: r.warnings,
	}
	if result.Errors == nil {
		result.Errors = []string{}
	}
	if result.Warnings == nil {
		result.Warnings = []string{}
	}

	v.log.Debug().
		Str("invoice_id", doc.TextAt("ID")).
		Bool("valid", result.Valid).
		Int("errors", len(result.Errors)).
		Int("warnings", len(result.Warnings)).
		Msg("Validation completed")

	return result
}

func invalid(msg string) *models.ValidationResult {
	return &models.ValidationResult{
		Valid:    false,
		Errors:   []string{msg},
		Warnings: []string{},
	}
}

type partyRef struct {
	label   string // used in messages
	element string
	codes   [3]string // name, street, country
}

var parties = []partyRef{
	{"Supplier", "AccountingSupplierParty", [3]string{"BR-06", "BR-08", "BR-09"}},
	{"Customer", "AccountingCustomerParty", [3]string{"BR-07", "BR-10", "BR-11"}},
}

func (p partyRef) node(doc *xmltree.Node) *xmltree.Node {
	return doc.Find(p.element, "Party")
}

func checkNamespace(doc *xmltree.Node, r *report) {
	if !doc.DeclaresNamespace(ubl.NamespaceInvoice) {
		r.errorf(msgNamespace)
	}
}

func checkRequiredElements(doc *xmltree.Node, r *report) {
	for _, req := range requiredElements {
		if doc.Child(req.name) == nil {
			r.errorf(msgMissingElement, req.name, req.code)
		}
	}
}

func checkInvoiceTypeCode(doc *xmltree.Node, r *report) {
	el := doc.Child("InvoiceTypeCode")
	if el == nil {
		return // reported as a missing element
	}
	if el.Text != models.DefaultInvoiceTypeCode {
		r.warnf(msgTypeCode, el.Text)
	}
}

func checkPartyNames(doc *xmltree.Node, r *report) {
	for _, p := range parties {
		if p.node(doc).TextAt("PartyName", "Name") == "" {
			r.errorf(msgMissingPartyName, p.label, p.codes[0])
		}
	}
}

func checkPostalAddresses(doc *xmltree.Node, r *report) {
	for _, p := range parties {
		addr := p.node(doc).Child("PostalAddress")
		if addr.TextAt("StreetName") == "" {
			r.errorf(msgMissingStreet, p.label, p.codes[1])
		}
		if addr.TextAt("Country", "IdentificationCode") == "" {
			r.errorf(msgMissingCountry, p.label, p.codes[2])
		}
	}
}

func checkPayableCurrency(doc *xmltree.Node, r *report) {
	currency := doc.Find("LegalMonetaryTotal", "PayableAmount").Attr("currencyID")
	switch {
	case currency == "":
		r.errorf(msgMissingCurrency)
	case !codelist.IsValidCurrencyCode(currency):
		r.errorf(msgInvalidCurrency, currency)
	}
}

func checkCountryCodes(doc *xmltree.Node, r *report) {
	for _, p := range parties {
		code := p.node(doc).TextAt("PostalAddress", "Country", "IdentificationCode")
		if code == "" {
			continue // reported by the postal address rule
		}
		if !codelist.IsValidCountryCode(code) {
			r.errorf(msgInvalidCountry, strings.ToLower(p.label), code)
		}
	}
}

func checkInvoiceLines(doc *xmltree.Node, r *report) {
	lines := doc.ChildrenNamed("InvoiceLine")
	if len(lines) == 0 {
		r.errorf(msgNoLines)
		return
	}
	for i, line := range lines {
		pos := i + 1
		if line.TextAt("ID") == "" {
			r.errorf(msgLineMissingID, pos)
		}
		if line.TextAt("Item", "Name") == "" {
			r.errorf(msgLineMissingName, pos)
		}
		if line.TextAt("Price", "PriceAmount") == "" {
			r.errorf(msgLineMissingPrice, pos)
		}
	}
}

func checkLineCurrencies(doc *xmltree.Node, r *report) {
	documentCurrency := doc.TextAt("DocumentCurrencyCode")
	if documentCurrency == "" {
		return
	}
	for i, line := range doc.ChildrenNamed("InvoiceLine") {
		currency := line.Find("Price", "PriceAmount").Attr("currencyID")
		if currency != "" && currency != documentCurrency {
			r.warnf(msgLineCurrency, i+1, currency, documentCurrency)
		}
	}
}

func checkBaseQuantities(doc *xmltree.Node, r *report) {
	for i, line := range doc.ChildrenNamed("InvoiceLine") {
		if line.Find("Price", "BaseQuantity") == nil && line.Child("BaseQuantity") == nil {
			r.errorf(msgLineMissingBaseQuantity, i+1)
		}
	}
}

func checkPayableAmount(doc *xmltree.Node, r *report) {
	el := doc.Find("LegalMonetaryTotal", "PayableAmount")
	if el == nil || el.Text == "" {
		r.errorf(msgMissingPayable)
		return
	}
	if _, err := decimal.NewFromString(el.Text); err != nil {
		r.errorf(msgNonNumericPayable, el.Text)
	}
}

func checkPaymentAccount(doc *xmltree.Node, r *report) {
	account := doc.Find("PaymentMeans", "PayeeFinancialAccount")
	if account.TextAt("ID") == "" {
		r.errorf(msgMissingAccountID)
	}
	if account.TextAt("Name") == "" {
		r.errorf(msgMissingAccountName)
	}
	if account.TextAt("FinancialInstitutionBranch", "ID") == "" {
		r.errorf(msgMissingBranchID)
	}
}
