// Package rules holds the read-only compliance configuration shared by every
// stage of the engine: mandatory fields per document type, field severities,
// the comparison pairing table and the UCP 600 citation table.
package rules

import (
	"github.com/tradedocs/lcverify/internal/domain"
)

// UCPRule is one citation entry, keyed by field name.
type UCPRule struct {
	Field       domain.FieldName
	Reference   string
	Explanation string
	Advice      string
	// Severity overrides the computed severity when set.
	Severity domain.Severity
}

// Citation converts the rule to the form attached to findings.
func (r UCPRule) Citation() domain.Citation {
	return domain.Citation{
		Reference:   r.Reference,
		Explanation: r.Explanation,
		Advice:      r.Advice,
	}
}

// Pairing is a pair of document types whose shared fields must agree.
// Left is the reference side (usually the credit).
type Pairing struct {
	Left  domain.DocumentType
	Right domain.DocumentType
}

// RuleSet is immutable after construction. Accessors return copies.
type RuleSet struct {
	version         string
	mandatory       map[domain.DocumentType][]domain.FieldName
	fieldSeverity   map[domain.FieldName]domain.Severity
	defaultSeverity domain.Severity
	comparedFields  []domain.FieldName
	pairings        []Pairing
	rules           map[domain.FieldName]UCPRule
	fallback        UCPRule
}

func (rs *RuleSet) Version() string { return rs.version }

// MandatoryFields returns the ordered required fields for t.
func (rs *RuleSet) MandatoryFields(t domain.DocumentType) []domain.FieldName {
	src := rs.mandatory[t]
	out := make([]domain.FieldName, len(src))
	copy(out, src)
	return out
}

// MandatoryTypes lists the document types that have a mandatory table entry,
// in domain.DocumentTypes order.
func (rs *RuleSet) MandatoryTypes() []domain.DocumentType {
	var out []domain.DocumentType
	for _, t := range domain.DocumentTypes {
		if _, ok := rs.mandatory[t]; ok {
			out = append(out, t)
		}
	}
	return out
}

// FieldSeverity returns the mismatch severity for a field, falling back to the
// configured default for unrecognised fields.
func (rs *RuleSet) FieldSeverity(name domain.FieldName) domain.Severity {
	if s, ok := rs.fieldSeverity[name]; ok {
		return s
	}
	return rs.defaultSeverity
}

func (rs *RuleSet) ComparedFields() []domain.FieldName {
	out := make([]domain.FieldName, len(rs.comparedFields))
	copy(out, rs.comparedFields)
	return out
}

func (rs *RuleSet) Pairings() []Pairing {
	out := make([]Pairing, len(rs.pairings))
	copy(out, rs.pairings)
	return out
}

// Lookup finds the citation rule for a field.
func (rs *RuleSet) Lookup(name domain.FieldName) (UCPRule, bool) {
	r, ok := rs.rules[name]
	return r, ok
}

// Fallback is the generic citation for fields without a rule.
func (rs *RuleSet) Fallback() UCPRule { return rs.fallback }

// Rules returns every rule ordered by field name.
func (rs *RuleSet) Rules() []UCPRule {
	out := make([]UCPRule, 0, len(rs.rules))
	for _, r := range rs.rules {
		out = append(out, r)
	}
	sortRules(out)
	return out
}
