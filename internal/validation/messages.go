package validation

// Message catalog, version 2. Consumers display these strings verbatim, so any change of
// wording is a catalog version bump. Rule codes in parentheses are diagnostic codes; only
// BR-01 and BR-DE-08 are fixed by the API contract.
const (
	msgUnparseable = "Invalid XML: the document could not be parsed"
	msgMissingRoot = "Invalid UBL document: missing root Invoice element"

	msgNamespace = "Invoice root element must declare the UBL Invoice-2 namespace " +
		"urn:oasis:names:specification:ubl:schema:xsd:Invoice-2 (BR-01)"

	msgMissingElement = "Missing required element: %s (%s)"

	msgTypeCode = "InvoiceTypeCode should be 380 (commercial invoice) but is %q (BR-DE-08)"

	msgMissingPartyName = "%s party name is missing (%s)"
	msgMissingStreet    = "%s postal address street name is missing (%s)"
	msgMissingCountry   = "%s postal address country code is missing (%s)"

	msgMissingCurrency = "PayableAmount is missing the currencyID attribute (BR-CL-03)"
	msgInvalidCurrency = "Invalid currency code %q on PayableAmount (BR-CL-03)"

	msgInvalidCountry = "Invalid %s country code %q (BR-CL-14)"

	msgNoLines          = "Invoice must contain at least one InvoiceLine (BR-16)"
	msgLineMissingID    = "InvoiceLine %d: missing line ID (BR-21)"
	msgLineMissingName  = "InvoiceLine %d: missing Item/Name (BR-25)"
	msgLineMissingPrice = "InvoiceLine %d: missing Price/PriceAmount (BR-26)"

	msgLineCurrency = "InvoiceLine %d: price currency %q does not match document currency %q (PEPPOL-EN16931-R051)"

	msgLineMissingBaseQuantity = "InvoiceLine %d: missing BaseQuantity (PEPPOL-EN16931-R121)"

	msgMissingPayable    = "Missing LegalMonetaryTotal/PayableAmount (BR-15)"
	msgNonNumericPayable = "PayableAmount must be numeric, got %q (BR-15)"

	msgMissingAccountID   = "Missing PaymentMeans/PayeeFinancialAccount/ID (BR-50)"
	msgMissingAccountName = "Missing PaymentMeans/PayeeFinancialAccount/Name (BR-PAY-01)"
	msgMissingBranchID    = "Missing PaymentMeans/PayeeFinancialAccount/FinancialInstitutionBranch/ID (BR-PAY-02)"
)

// requiredElements lists the top-level elements every invoice needs, in reporting order.
var requiredElements = []struct {
	name string
	code string
}{
	{"ID", "BR-02"},
	{"IssueDate", "BR-03"},
	{"InvoiceTypeCode", "BR-04"},
	{"AccountingSupplierParty", "BR-06"},
	{"AccountingCustomerParty", "BR-07"},
	{"LegalMonetaryTotal", "BR-12"},
	{"InvoiceLine", "BR-16"},
}
