// Package ubl renders invoices as UBL 2.1 documents following Peppol BIS Billing 3.0.
//
// Specification: https://docs.peppol.eu/poacc/billing/3.0/syntax/ubl-invoice/tree/
// The output can be checked with the validation package.
package ubl

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"einvoice/pkg/models"
)

const (
	NamespaceInvoice = "urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"
	NamespaceCac     = "urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
	NamespaceCbc     = "urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2"

	// Peppol BIS Billing 3.0 identifiers
	CustomizationID = "urn:cen.eu:en16931:2017#compliant#urn:fdc:peppol.eu:2017:poacc:billing:3.0"
	ProfileID       = "urn:fdc:peppol.eu:2017:poacc:billing:01:1.0"

	// UNCL4461 credit transfer
	paymentMeansCreditTransfer = "30"
	// UNECE Rec 20 "one"
	unitCodeOne = "C62"
)

// ErrNilInvoice is returned when Generate is called without an invoice.
var ErrNilInvoice = errors.New("ubl: nil invoice")

// Generate renders inv as a UBL invoice document including the XML declaration.
//
// The function is pure and deterministic. Required fields are assumed to have been checked
// upstream; missing optional fields are left out of the document. The line total invariant is
// not enforced here.
func Generate(inv *models.Invoice) (string, error) {
	if inv == nil {
		return "", ErrNilInvoice
	}

	doc := &xmlInvoice{
		Xmlns:            NamespaceInvoice,
		Cac:              NamespaceCac,
		Cbc:              NamespaceCbc,
		CustomizationID:  CustomizationID,
		ProfileID:        ProfileID,
		ID:               inv.InvoiceID,
		IssueDate:        inv.IssueDate,
		DueDate:          inv.DueDate,
		InvoiceTypeCode:  inv.TypeCode(),
		DocumentCurrency: inv.Currency,
		SupplierParty: xmlPartyWrapper{
			Party: party(inv.Supplier, inv.SupplierAddress, inv.SupplierPhone, inv.SupplierEmail),
		},
		CustomerParty: xmlPartyWrapper{
			Party: party(inv.Buyer, inv.BuyerAddress, inv.BuyerPhone, inv.BuyerEmail),
		},
	}

	if inv.HasPayment() {
		doc.PaymentMeans = paymentMeans(inv)
	}

	addLines(doc, inv)
	addTotals(doc, inv)

	output, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("xml marshal failed: %w", err)
	}
	return xml.Header + string(output), nil
}

func party(name string, addr *models.Address, phone, email string) xmlParty {
	p := xmlParty{PartyName: name}

	if addr != nil && (addr.Street != "" || addr.Country != "") {
		p.PostalAddress = &xmlPostalAddress{StreetName: addr.Street}
		if addr.Country != "" {
			p.PostalAddress.Country = &xmlCountry{IdentificationCode: addr.Country}
		}
	}

	if phone != "" || email != "" {
		p.Contact = &xmlContact{Telephone: phone, ElectronicMail: email}
	}
	return p
}

func paymentMeans(inv *models.Invoice) *xmlPaymentMeans {
	pm := &xmlPaymentMeans{
		PaymentMeansCode: paymentMeansCreditTransfer,
		PayeeFinancialAccount: xmlFinancialAccount{
			ID:   inv.PaymentAccountID,
			Name: inv.PaymentAccountName,
		},
	}
	if inv.FinancialInstitutionBranchID != "" {
		pm.PayeeFinancialAccount.FinancialInstitutionBranch = &xmlFinancialInstitutionBranch{
			ID: inv.FinancialInstitutionBranchID,
		}
	}
	return pm
}

func addLines(doc *xmlInvoice, inv *models.Invoice) {
	doc.InvoiceLines = make([]xmlInvoiceLine, 0, len(inv.Items))
	for i, item := range inv.Items {
		currency := item.Currency
		if currency == "" {
			currency = inv.Currency
		}

		doc.InvoiceLines = append(doc.InvoiceLines, xmlInvoiceLine{
			ID:                  strconv.Itoa(i + 1),
			InvoicedQuantity:    xmlQuantity{Value: item.Count.String(), UnitCode: unitCodeOne},
			LineExtensionAmount: amount(item.LineTotal(), currency),
			Item:                xmlItem{Name: item.Name},
			Price: xmlPrice{
				PriceAmount:  amount(item.Cost, currency),
				BaseQuantity: xmlQuantity{Value: "1", UnitCode: unitCodeOne},
			},
		})
	}
}

func addTotals(doc *xmlInvoice, inv *models.Invoice) {
	doc.LegalMonetaryTotal = xmlMonetaryTotal{
		LineExtensionAmount: amount(inv.Total, inv.Currency),
		TaxExclusiveAmount:  amount(inv.Total, inv.Currency),
		PayableAmount:       amount(inv.Total, inv.Currency),
	}

	if !inv.HasTax() {
		return
	}

	tax := inv.TaxAmount()
	inclusive := amount(inv.Total.Add(tax), inv.Currency)
	doc.LegalMonetaryTotal.TaxInclusiveAmount = &inclusive

	doc.TaxTotal = &xmlTaxTotal{TaxAmount: amount(tax, inv.Currency)}
	if inv.TaxRate.Valid {
		doc.TaxTotal.TaxSubtotal = &xmlTaxSubtotal{
			TaxableAmount: amount(inv.Total, inv.Currency),
			TaxAmount:     amount(tax, inv.Currency),
			TaxCategory: xmlTaxCategory{
				ID:        "S",
				Percent:   inv.TaxRate.Decimal.String(),
				TaxScheme: xmlTaxScheme{ID: "VAT"},
			},
		}
	}
}

func amount(value decimal.Decimal, currency string) xmlAmount {
	return xmlAmount{Value: value.String(), CurrencyID: currency}
}
