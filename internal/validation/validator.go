// Package validation checks a single document's field map against the
// mandatory-field table and the per-field format rules. It reads nothing but
// its arguments.
package validation

import (
	"fmt"

	"github.com/tradedocs/lcverify/internal/currency"
	"github.com/tradedocs/lcverify/internal/domain"
	"github.com/tradedocs/lcverify/internal/rules"
)

const (
	ruleAmountFormat   = "Amount must be numeric with an optional decimal part"
	ruleDateFormat     = "Date must be a valid calendar date"
	ruleCurrencyFormat = "Currency must be exactly three upper-case letters"
	ruleCurrencyISO    = "Currency should be an ISO 4217 code"
)

// MandatoryRule is the rule text attached to a missing required field.
func MandatoryRule(t domain.DocumentType) string {
	return fmt.Sprintf("Mandatory field for %s", t)
}

// Validate returns one failing entry per missing mandatory field, in table
// order, followed by the format checks of the present fields in field-map
// order.
func Validate(docType domain.DocumentType, fields domain.FieldMap, rs *rules.RuleSet) []domain.FieldValidation {
	var out []domain.FieldValidation

	for _, name := range rs.MandatoryFields(docType) {
		if fields.Has(name) {
			continue
		}
		out = append(out, domain.FieldValidation{
			Field:    domain.QualifiedField(docType, name),
			Kind:     domain.DiscrepancyMissingField,
			IsValid:  false,
			Rule:     MandatoryRule(docType),
			Severity: domain.SeverityCritical,
		})
	}

	for _, f := range fields.Fields() {
		switch {
		case f.Name == domain.FieldAmount:
			out = append(out, CheckAmount(docType, f.Value))
		case f.Name == domain.FieldCurrency:
			out = append(out, CheckCurrency(docType, f.Value)...)
		case domain.IsDateField(f.Name):
			out = append(out, CheckDate(docType, f.Name, f.Value))
		}
	}
	return out
}

// CheckAmount accepts digits with an optional decimal part once the decimal
// mark and grouping separators are normalized.
func CheckAmount(docType domain.DocumentType, value string) domain.FieldValidation {
	return domain.FieldValidation{
		Field:         domain.QualifiedField(docType, domain.FieldAmount),
		Kind:          domain.DiscrepancyFormatViolation,
		IsValid:       domain.IsNumericAmount(value),
		Value:         value,
		ExpectedValue: "numeric amount, e.g. 12345.00",
		Rule:          ruleAmountFormat,
		Severity:      domain.SeverityHigh,
	}
}

func CheckDate(docType domain.DocumentType, name domain.FieldName, value string) domain.FieldValidation {
	_, err := domain.ParseDate(value)
	return domain.FieldValidation{
		Field:         domain.QualifiedField(docType, name),
		Kind:          domain.DiscrepancyFormatViolation,
		IsValid:       err == nil,
		Value:         value,
		ExpectedValue: "calendar date, e.g. 2025-06-30 or 30/06/2025",
		Rule:          ruleDateFormat,
		Severity:      domain.SeverityMedium,
	}
}

// CheckCurrency checks the three-letter shape. A well-formed code that is not
// a listed ISO 4217 currency adds a low-severity advisory.
func CheckCurrency(docType domain.DocumentType, value string) []domain.FieldValidation {
	field := domain.QualifiedField(docType, domain.FieldCurrency)
	_, err := domain.ParseCurrencyCode(value)
	out := []domain.FieldValidation{{
		Field:         field,
		Kind:          domain.DiscrepancyFormatViolation,
		IsValid:       err == nil,
		Value:         value,
		ExpectedValue: "three upper-case letters, e.g. USD",
		Rule:          ruleCurrencyFormat,
		Severity:      domain.SeverityHigh,
	}}
	if err == nil && !currency.IsKnown(value) {
		out = append(out, domain.FieldValidation{
			Field:         field,
			Kind:          domain.DiscrepancyFormatViolation,
			IsValid:       false,
			Value:         value,
			ExpectedValue: "ISO 4217 currency code",
			Rule:          ruleCurrencyISO,
			Severity:      domain.SeverityLow,
		})
	}
	return out
}

// Failures filters out passing entries.
func Failures(vs []domain.FieldValidation) []domain.FieldValidation {
	var out []domain.FieldValidation
	for _, v := range vs {
		if !v.IsValid {
			out = append(out, v)
		}
	}
	return out
}
