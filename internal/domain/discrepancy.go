package domain

import (
	"fmt"
	"time"
)

type DiscrepancyType string

const (
	DiscrepancyMissingField      DiscrepancyType = "missing_field"
	DiscrepancyFormatViolation   DiscrepancyType = "format_violation"
	DiscrepancyDataInconsistency DiscrepancyType = "data_inconsistency"
	DiscrepancyQuantitative      DiscrepancyType = "quantitative_discrepancy"
	DiscrepancyContextual        DiscrepancyType = "contextual_violation"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Severities in descending order of weight.
var Severities = []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}

func ParseSeverity(s string) (Severity, error) {
	for _, sev := range Severities {
		if string(sev) == s {
			return sev, nil
		}
	}
	return "", fmt.Errorf("unknown severity %q", s)
}

// Rank orders severities; higher is worse. Unknown severities rank 0.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	}
	return 0
}

// FieldValidation is one pass/fail outcome for a field. Field is qualified by
// document type, e.g. "commercial_invoice.amount".
type FieldValidation struct {
	Field         string          `json:"field"`
	Kind          DiscrepancyType `json:"kind"`
	IsValid       bool            `json:"is_valid"`
	Value         string          `json:"value,omitempty"`
	ExpectedValue string          `json:"expected_value,omitempty"`
	Rule          string          `json:"rule"`
	Severity      Severity        `json:"severity"`
}

// QualifiedField joins a document type and a field name.
func QualifiedField(t DocumentType, name FieldName) string {
	return string(t) + "." + string(name)
}

// Discrepancy is a reportable mismatch between documents. Values is keyed by
// document type.
type Discrepancy struct {
	Type        DiscrepancyType   `json:"type"`
	Field       FieldName         `json:"field"`
	Documents   []DocumentType    `json:"documents"`
	Values      map[string]string `json:"values"`
	Severity    Severity          `json:"severity"`
	Description string            `json:"description"`
}

// DocumentRef identifies a compared document without owning it.
type DocumentRef struct {
	ID   string       `json:"id"`
	Type DocumentType `json:"document_type"`
}

type DocumentComparison struct {
	Document1        DocumentRef       `json:"document1"`
	Document2        DocumentRef       `json:"document2"`
	FieldComparisons []FieldValidation `json:"field_comparisons"`
	Discrepancies    []Discrepancy     `json:"discrepancies"`
}

// SkippedComparison records a required pair that could not be evaluated.
type SkippedComparison struct {
	Document1 DocumentRef `json:"document1"`
	Document2 DocumentRef `json:"document2"`
	Reason    string      `json:"reason"`
}

// Citation is the compliance rule attached to a finding.
type Citation struct {
	Reference   string `json:"reference"`
	Explanation string `json:"explanation"`
	Advice      string `json:"advice,omitempty"`
}

// Finding is an annotated failing validation or cross-document discrepancy.
// It is the unit persisted per document set.
type Finding struct {
	ID          string            `json:"id"`
	SetID       string            `json:"set_id"`
	DocumentID  string            `json:"document_id,omitempty"`
	Kind        DiscrepancyType   `json:"kind"`
	Field       string            `json:"field"`
	Severity    Severity          `json:"severity"`
	Description string            `json:"description"`
	Values      map[string]string `json:"values,omitempty"`
	Citation    Citation          `json:"citation"`
	DetectedAt  time.Time         `json:"detected_at"`
}

type Recommendation string

const (
	RecommendAccept        Recommendation = "accept"
	RecommendSeekAmendment Recommendation = "seek_amendment"
	RecommendReject        Recommendation = "reject"
)

type ReportSummary struct {
	TotalFindings  int            `json:"total_findings"`
	BySeverity     map[string]int `json:"by_severity"`
	ByKind         map[string]int `json:"by_kind"`
	Compliant      bool           `json:"compliant"`
	Degraded       bool           `json:"degraded"`
	Recommendation Recommendation `json:"recommendation"`
}

// DiscrepancyReport is the engine output for one document set. It is never
// modified once built; a new analysis produces a new report. Severities in
// Validations and Comparisons already include any rule override, so they
// agree with the matching Findings.
type DiscrepancyReport struct {
	ID               string               `json:"id"`
	DocumentSetID    string               `json:"document_set_id"`
	GeneratedAt      time.Time            `json:"generated_at"`
	Validations      []FieldValidation    `json:"validations"`
	Comparisons      []DocumentComparison `json:"comparisons"`
	Skipped          []SkippedComparison  `json:"skipped"`
	ExtractionErrors []ExtractionError    `json:"extraction_errors"`
	Findings         []Finding            `json:"findings"`
	Summary          ReportSummary        `json:"summary"`
}
