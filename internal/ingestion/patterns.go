package ingestion

import (
	"regexp"
	"strings"

	"github.com/tradedocs/lcverify/internal/currency"
	"github.com/tradedocs/lcverify/internal/domain"
)

// labelPattern captures a field value following a label. The first capture
// group is the value.
type labelPattern struct {
	id        string
	re        *regexp.Regexp
	normalize func(string) string
}

// Value shapes. Labels are matched case-insensitively, values are not.
const (
	refValue    = `([A-Z0-9][A-Za-z0-9\-/.]*[A-Za-z0-9])`
	amountValue = `(?:[A-Z]{3}|US\$|[$€£¥₹])?[ \t]*([0-9][0-9,.']*[0-9]|[0-9])`
	dateValue   = `([0-9]{4}-[0-9]{2}-[0-9]{2}|[0-9]{1,2}[/.\-][0-9]{1,2}[/.\-][0-9]{2,4}|[0-9]{1,2}[ \-][A-Za-z]{3,9}[ \-][0-9]{4}|[A-Za-z]{3,9} [0-9]{1,2}, [0-9]{4})`
	textValue   = `([^\r\n]+)`
	numberValue = `([0-9][0-9,]*)`
	weightValue = `([0-9][0-9,.]*(?:[ \t]*(?i:kgs?|lbs?|mt|tons?))?)`
	labelSep    = `[ \t]*[:#=]?[ \t]*`
	numberLabel = `[ \t]*(?i:no\.?|number|#)[ \t]*[:#.]?[ \t]*`
)

// labelled builds a pattern for "label: value" anywhere in the text.
func labelled(id, labels, value string) labelPattern {
	return labelPattern{id: id, re: regexp.MustCompile(`(?m)\b(?i:` + labels + `)` + labelSep + value)}
}

// lineLabelled requires the label to start a line and a colon separator. Used
// for free-text values so prose sentences are not captured.
func lineLabelled(id, labels, value string) labelPattern {
	return labelPattern{id: id, re: regexp.MustCompile(`(?m)^[ \t]*(?i:` + labels + `)[ \t]*:[ \t]*` + value)}
}

// numbered matches "<label> No.: value".
func numbered(id, labels string) labelPattern {
	return labelPattern{id: id, re: regexp.MustCompile(`(?m)\b(?i:` + labels + `)` + numberLabel + refValue)}
}

func withNormalize(p labelPattern, fn func(string) string) labelPattern {
	p.normalize = fn
	return p
}

func symbolToCode(s string) string {
	if code, ok := currency.FromSymbol(s); ok {
		return code
	}
	return s
}

// commonFields are attempted on every non-message document.
var commonFields = []domain.FieldName{
	domain.FieldAmount,
	domain.FieldCurrency,
	domain.FieldDate,
	domain.FieldReferenceNumber,
}

// typeExtras are attempted on top of the mandatory fields of a type.
var typeExtras = map[domain.DocumentType][]domain.FieldName{
	domain.DocCreditMessage:        {domain.FieldDate, domain.FieldLatestShipmentDate, domain.FieldPortOfLoading, domain.FieldPortOfDischarge, domain.FieldDescription},
	domain.DocCommercialInvoice:    {domain.FieldCreditNumber},
	domain.DocBillOfLading:         {domain.FieldVessel, domain.FieldDescription, domain.FieldCreditNumber},
	domain.DocPackingList:          {domain.FieldNetWeight, domain.FieldDescription},
	domain.DocInsuranceCertificate: {domain.FieldCreditNumber, domain.FieldDescription},
}

// fieldPatterns is the label library. Patterns are tried in order and the
// first one that matches wins.
var fieldPatterns = map[domain.FieldName][]labelPattern{
	domain.FieldAmount: {
		labelled("amount/total", `grand\s+total|total\s+amount|total\s+invoice\s+value|invoice\s+(?:amount|value|total)|total\s+value`, amountValue),
		labelled("amount/insured", `amount\s+insured|insured\s+(?:amount|value)|sum\s+insured`, amountValue),
		labelled("amount/credit", `credit\s+amount|l/?c\s+amount|amount\s+of\s+credit|for\s+an\s+amount\s+of|amount\s+of\s+draft`, amountValue),
		labelled("amount/label", `amount`, amountValue),
		labelled("amount/total-any", `total`, amountValue),
	},
	domain.FieldCurrency: {
		{id: "currency/label", re: regexp.MustCompile(`(?m)\b(?i:currency)[ \t]*[:=]?[ \t]*([A-Z]{3})\b`)},
		{id: "currency/amount-prefix", re: regexp.MustCompile(`(?m)\b(?i:amount|total|value|sum\s+insured|for)\b[^\r\n]{0,24}?\b([A-Z]{3})[ \t]*[0-9]`)},
		withNormalize(labelPattern{id: "currency/symbol", re: regexp.MustCompile(`(US\$|[$€£¥₹])[ \t]*[0-9]`)}, symbolToCode),
		{id: "currency/code", re: regexp.MustCompile(`\b(USD|EUR|GBP|JPY|CNY|CHF|AUD|CAD|HKD|SGD|INR|AED)\b`)},
	},
	domain.FieldDate: {
		lineLabelledDate("date/label", `invoice\s+date|date\s+of\s+issue|issue\s+date|date\s+of\s+invoice|dated|date`),
		labelled("date/dated", `dated`, dateValue),
	},
	domain.FieldReferenceNumber: {
		numbered("ref/reference", `reference|our\s+ref\b\.?|your\s+ref\b\.?|ref\b\.?`),
		labelled("ref/label", `reference|ref\b\.?`, refValue),
		numbered("ref/document", `packing\s+list|document|doc\.?|draft|bill\s+of\s+exchange|exchange`),
	},
	domain.FieldInvoiceNumber: {
		numbered("invoice/number", `commercial\s+invoice|invoice`),
	},
	domain.FieldCreditNumber: {
		numbered("credit/number", `documentary\s+credit|letter\s+of\s+credit|l/c|lc|credit`),
	},
	domain.FieldBeneficiary: {
		lineLabelled("beneficiary/label", `beneficiary|seller|vendor|supplier`, textValue),
	},
	domain.FieldApplicant: {
		lineLabelled("applicant/label", `applicant|buyer|importer|sold\s+to|bill\s+to|messrs\.?`, textValue),
		labelled("applicant/account-of", `for\s+account\s+of`, textValue),
	},
	domain.FieldDescription: {
		lineLabelled("description/goods", `description\s+of\s+goods|goods\s+description|description`, textValue),
	},
	domain.FieldExpiryDate: {
		labelled("expiry/label", `expiry\s+date|date\s+of\s+expiry|expires?(?:\s+on)?|valid\s+until`, dateValue),
	},
	domain.FieldLatestShipmentDate: {
		labelled("latest-shipment/label", `latest\s+(?:date\s+of\s+)?shipment`, dateValue),
	},
	domain.FieldBLNumber: {
		numbered("bl/number", `b/l|bill\s+of\s+lading`),
	},
	domain.FieldShipper: {
		lineLabelled("shipper/label", `shipper|consignor`, textValue),
	},
	domain.FieldConsignee: {
		lineLabelled("consignee/label", `consignee`, textValue),
	},
	domain.FieldVessel: {
		lineLabelled("vessel/label", `ocean\s+vessel|vessel(?:\s+name)?|m\.?v\.?`, textValue),
	},
	domain.FieldPortOfLoading: {
		lineLabelled("pol/label", `port\s+of\s+loading|loading\s+port`, textValue),
	},
	domain.FieldPortOfDischarge: {
		lineLabelled("pod/label", `port\s+of\s+discharge|discharge\s+port`, textValue),
	},
	domain.FieldShippingDate: {
		labelled("shipping-date/label", `shipped\s+on\s+board(?:\s+date)?|on\s+board\s+date|shipping\s+date|date\s+of\s+shipment|shipment\s+date|sailing\s+date`, dateValue),
	},
	domain.FieldCertificateNumber: {
		numbered("certificate/number", `certificate|coo`),
	},
	domain.FieldCountryOfOrigin: {
		lineLabelled("origin/label", `country\s+of\s+origin|origin\s+of\s+goods|made\s+in`, textValue),
	},
	domain.FieldExporter: {
		lineLabelled("exporter/label", `exporter|consignor|shipper`, textValue),
	},
	domain.FieldPolicyNumber: {
		numbered("policy/number", `policy|insurance\s+certificate|certificate\s+of\s+insurance`),
	},
	domain.FieldPackages: {
		labelled("packages/label", `total\s+packages|no\.\s*of\s+packages|number\s+of\s+packages|packages|cartons`, numberValue),
	},
	domain.FieldGrossWeight: {
		labelled("gross-weight/label", `total\s+gross\s+weight|gross\s+weight|g\.w\.`, weightValue),
	},
	domain.FieldNetWeight: {
		labelled("net-weight/label", `total\s+net\s+weight|net\s+weight|n\.w\.`, weightValue),
	},
	domain.FieldDrawee: {
		lineLabelled("drawee/label", `drawee|drawn\s+on|to`, textValue),
	},
}

func lineLabelledDate(id, labels string) labelPattern {
	return labelPattern{id: id, re: regexp.MustCompile(`(?m)^[ \t]*(?i:` + labels + `)` + labelSep + dateValue)}
}

// cleanValue trims whitespace and trailing separators left by OCR.
func cleanValue(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, " \t,;")
	return strings.Join(strings.Fields(s), " ")
}
