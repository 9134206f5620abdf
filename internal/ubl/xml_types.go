package ubl

import "encoding/xml"

type xmlInvoice struct {
	XMLName            xml.Name         `xml:"Invoice"`
	Xmlns              string           `xml:"xmlns,attr"`
	Cac                string           `xml:"xmlns:cac,attr"`
	Cbc                string           `xml:"xmlns:cbc,attr"`
	CustomizationID    string           `xml:"cbc:CustomizationID"`
	ProfileID          string           `xml:"cbc:ProfileID"`
	ID                 string           `xml:"cbc:ID"`
	IssueDate          string           `xml:"cbc:IssueDate"`
	DueDate            string           `xml:"cbc:DueDate,omitempty"`
	InvoiceTypeCode    string           `xml:"cbc:InvoiceTypeCode"`
	DocumentCurrency   string           `xml:"cbc:DocumentCurrencyCode"`
	SupplierParty      xmlPartyWrapper  `xml:"cac:AccountingSupplierParty"`
	CustomerParty      xmlPartyWrapper  `xml:"cac:AccountingCustomerParty"`
	PaymentMeans       *xmlPaymentMeans `xml:"cac:PaymentMeans,omitempty"`
	TaxTotal           *xmlTaxTotal     `xml:"cac:TaxTotal,omitempty"`
	LegalMonetaryTotal xmlMonetaryTotal `xml:"cac:LegalMonetaryTotal"`
	InvoiceLines       []xmlInvoiceLine `xml:"cac:InvoiceLine"`
}

type xmlPartyWrapper struct {
	Party xmlParty `xml:"cac:Party"`
}

type xmlParty struct {
	PartyName     string            `xml:"cac:PartyName>cbc:Name"`
	PostalAddress *xmlPostalAddress `xml:"cac:PostalAddress,omitempty"`
	Contact       *xmlContact       `xml:"cac:Contact,omitempty"`
}

type xmlPostalAddress struct {
	StreetName string      `xml:"cbc:StreetName,omitempty"`
	Country    *xmlCountry `xml:"cac:Country,omitempty"`
}

type xmlCountry struct {
	IdentificationCode string `xml:"cbc:IdentificationCode"`
}

type xmlContact struct {
	Telephone      string `xml:"cbc:Telephone,omitempty"`
	ElectronicMail string `xml:"cbc:ElectronicMail,omitempty"`
}

type xmlPaymentMeans struct {
	PaymentMeansCode      string              `xml:"cbc:PaymentMeansCode"`
	PayeeFinancialAccount xmlFinancialAccount `xml:"cac:PayeeFinancialAccount"`
}

type xmlFinancialAccount struct {
	ID                         string                         `xml:"cbc:ID,omitempty"`
	Name                       string                         `xml:"cbc:Name,omitempty"`
	FinancialInstitutionBranch *xmlFinancialInstitutionBranch `xml:"cac:FinancialInstitutionBranch,omitempty"`
}

type xmlFinancialInstitutionBranch struct {
	ID string `xml:"cbc:ID"`
}

type xmlTaxTotal struct {
	TaxAmount   xmlAmount       `xml:"cbc:TaxAmount"`
	TaxSubtotal *xmlTaxSubtotal `xml:"cac:TaxSubtotal,omitempty"`
}

type xmlTaxSubtotal struct {
	TaxableAmount xmlAmount      `xml:"cbc:TaxableAmount"`
	TaxAmount     xmlAmount      `xml:"cbc:TaxAmount"`
	TaxCategory   xmlTaxCategory `xml:"cac:TaxCategory"`
}

type xmlTaxCategory struct {
	ID        string       `xml:"cbc:ID"`
	Percent   string       `xml:"cbc:Percent"`
	TaxScheme xmlTaxScheme `xml:"cac:TaxScheme"`
}

type xmlTaxScheme struct {
	ID string `xml:"cbc:ID"`
}

type xmlMonetaryTotal struct {
	LineExtensionAmount xmlAmount  `xml:"cbc:LineExtensionAmount"`
	TaxExclusiveAmount  xmlAmount  `xml:"cbc:TaxExclusiveAmount"`
	TaxInclusiveAmount  *xmlAmount `xml:"cbc:TaxInclusiveAmount,omitempty"`
	PayableAmount       xmlAmount  `xml:"cbc:PayableAmount"`
}

type xmlAmount struct {
	Value      string `xml:",chardata"`
	CurrencyID string `xml:"currencyID,attr"`
}

// Possible values for the unitcode:
// https://docs.peppol.eu/poacc/billing/3.0/codelist/UNECERec20/
type xmlQuantity struct {
	Value    string `xml:",chardata"`
	UnitCode string `xml:"unitCode,attr"`
}

type xmlInvoiceLine struct {
	ID                  string      `xml:"cbc:ID"`
	InvoicedQuantity    xmlQuantity `xml:"cbc:InvoicedQuantity"`
	LineExtensionAmount xmlAmount   `xml:"cbc:LineExtensionAmount"`
	Item                xmlItem     `xml:"cac:Item"`
	Price               xmlPrice    `xml:"cac:Price"`
}

type xmlItem struct {
	Name string `xml:"cbc:Name"`
}

type xmlPrice struct {
	PriceAmount  xmlAmount   `xml:"cbc:PriceAmount"`
	BaseQuantity xmlQuantity `xml:"cbc:BaseQuantity"`
}
