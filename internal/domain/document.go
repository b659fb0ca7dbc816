package domain

import (
	"fmt"
	"strings"
	"time"
)

type DocumentType string

const (
	DocCreditMessage        DocumentType = "credit_message"
	DocCommercialInvoice    DocumentType = "commercial_invoice"
	DocBillOfLading         DocumentType = "bill_of_lading"
	DocCertificateOfOrigin  DocumentType = "certificate_of_origin"
	DocPackingList          DocumentType = "packing_list"
	DocBillOfExchange       DocumentType = "bill_of_exchange"
	DocInsuranceCertificate DocumentType = "insurance_certificate"
	DocUnknown              DocumentType = "unknown"
)

// DocumentTypes lists every known type in a stable order.
var DocumentTypes = []DocumentType{
	DocCreditMessage,
	DocCommercialInvoice,
	DocBillOfLading,
	DocCertificateOfOrigin,
	DocPackingList,
	DocBillOfExchange,
	DocInsuranceCertificate,
	DocUnknown,
}

// ParseDocumentType accepts the canonical names case-insensitively. An empty
// string maps to DocUnknown.
func ParseDocumentType(s string) (DocumentType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DocUnknown, nil
	}
	for _, t := range DocumentTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return DocUnknown, fmt.Errorf("unknown document type %q", s)
}

type DocumentStatus string

const (
	StatusPending    DocumentStatus = "pending"
	StatusExtracting DocumentStatus = "extracting"
	StatusExtracted  DocumentStatus = "extracted"
	StatusFailed     DocumentStatus = "failed"
	StatusValidated  DocumentStatus = "validated"
)

// Document is a single presented document within a document set. Fields is
// only ever replaced as a whole by re-extraction.
type Document struct {
	ID         string         `json:"id"`
	SetID      string         `json:"set_id"`
	Type       DocumentType   `json:"document_type"`
	SourceName string         `json:"source_name,omitempty"`
	RawText    string         `json:"raw_text"`
	Status     DocumentStatus `json:"status"`
	Fields     FieldMap       `json:"fields"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}
