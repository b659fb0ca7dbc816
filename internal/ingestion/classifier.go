package ingestion

import (
	"strings"

	"github.com/tradedocs/lcverify/internal/domain"
)

// MinConfidence is the share of a type's keywords that must appear before the
// classifier commits to it.
const MinConfidence = 0.25

// Classification is the outcome of the keyword fallback classifier.
type Classification struct {
	Type       domain.DocumentType `json:"document_type"`
	Confidence float64             `json:"confidence"`
	Matched    []string            `json:"matched_keywords,omitempty"`
}

type keywordSet struct {
	docType  domain.DocumentType
	keywords []string
}

// Ordered so ties resolve to the earlier, more specific type.
var documentKeywords = []keywordSet{
	{domain.DocCreditMessage, []string{"documentary credit", "letter of credit", "beneficiary", "applicant", "issuing bank", "expiry"}},
	{domain.DocCommercialInvoice, []string{"commercial invoice", "invoice", "seller", "buyer", "total amount", "unit price"}},
	{domain.DocBillOfLading, []string{"bill of lading", "b/l", "vessel", "port of loading", "shipper", "consignee"}},
	{domain.DocCertificateOfOrigin, []string{"certificate of origin", "country of origin", "chamber of commerce", "exporter"}},
	{domain.DocPackingList, []string{"packing list", "packages", "gross weight", "net weight", "cartons"}},
	{domain.DocBillOfExchange, []string{"bill of exchange", "drawee", "pay to the order", "at sight"}},
	{domain.DocInsuranceCertificate, []string{"insurance", "policy", "insured", "premium", "underwriter"}},
}

// Classify guesses the type of a document whose type was not supplied.
// Tag-formatted text is always a credit message.
func Classify(text string) Classification {
	if IsMessageFormatted(text) {
		return Classification{Type: domain.DocCreditMessage, Confidence: 1}
	}

	lower := strings.ToLower(text)
	best := Classification{Type: domain.DocUnknown}
	for _, ks := range documentKeywords {
		var matched []string
		for _, kw := range ks.keywords {
			if strings.Contains(lower, kw) {
				matched = append(matched, kw)
			}
		}
		conf := float64(len(matched)) / float64(len(ks.keywords))
		if conf > best.Confidence {
			best = Classification{Type: ks.docType, Confidence: conf, Matched: matched}
		}
	}
	if best.Confidence < MinConfidence {
		return Classification{Type: domain.DocUnknown, Confidence: best.Confidence}
	}
	return best
}
