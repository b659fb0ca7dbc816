package reconciliation

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tradedocs/lcverify/internal/domain"
	"github.com/tradedocs/lcverify/internal/rules"
)

// Annotator turns failing validations and discrepancies into findings that
// carry a UCP 600 citation.
type Annotator struct {
	rules *rules.RuleSet
	now   func() time.Time
	newID func() string
}

func NewAnnotator(rs *rules.RuleSet) *Annotator {
	return &Annotator{rules: rs, now: time.Now, newID: uuid.NewString}
}

// ruleKey strips the document-type prefix from a qualified field name.
func ruleKey(field string) domain.FieldName {
	if i := strings.LastIndex(field, "."); i >= 0 {
		return domain.FieldName(field[i+1:])
	}
	return domain.FieldName(field)
}

// Cite returns the rule for a field, or the general fallback.
func (a *Annotator) Cite(field string) rules.UCPRule {
	if r, ok := a.rules.Lookup(ruleKey(field)); ok {
		return r
	}
	return a.rules.Fallback()
}

// severity keeps the computed value unless the rule sets its own.
func severity(r rules.UCPRule, computed domain.Severity) domain.Severity {
	if r.Severity != "" {
		return r.Severity
	}
	return computed
}

// Severity is the severity a finding on field will carry.
func (a *Annotator) Severity(field string, computed domain.Severity) domain.Severity {
	return severity(a.Cite(field), computed)
}

// Validation annotates a failing field validation of one document.
func (a *Annotator) Validation(setID, documentID string, v domain.FieldValidation) domain.Finding {
	r := a.Cite(v.Field)
	desc := fmt.Sprintf("%s: %s", v.Field, v.Rule)
	var values map[string]string
	if v.Kind != domain.DiscrepancyMissingField {
		desc = fmt.Sprintf("%s: %s (got %q)", v.Field, v.Rule, v.Value)
		values = map[string]string{"value": v.Value}
		if v.ExpectedValue != "" {
			values["expected"] = v.ExpectedValue
		}
	}
	return domain.Finding{
		ID:          a.newID(),
		SetID:       setID,
		DocumentID:  documentID,
		Kind:        v.Kind,
		Field:       v.Field,
		Severity:    severity(r, v.Severity),
		Description: desc,
		Values:      values,
		Citation:    r.Citation(),
		DetectedAt:  a.now(),
	}
}

// Discrepancy annotates a cross-document discrepancy.
func (a *Annotator) Discrepancy(setID string, d domain.Discrepancy) domain.Finding {
	r := a.Cite(string(d.Field))
	values := make(map[string]string, len(d.Values))
	for k, v := range d.Values {
		values[k] = v
	}
	return domain.Finding{
		ID:          a.newID(),
		SetID:       setID,
		Kind:        d.Type,
		Field:       string(d.Field),
		Severity:    severity(r, d.Severity),
		Description: d.Description,
		Values:      values,
		Citation:    r.Citation(),
		DetectedAt:  a.now(),
	}
}
