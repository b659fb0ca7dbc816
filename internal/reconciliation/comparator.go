package reconciliation

import (
	"fmt"
	"strings"

	"github.com/tradedocs/lcverify/internal/domain"
	"github.com/tradedocs/lcverify/internal/rules"
)

const ruleCrossDocument = "Must not conflict with the corresponding field of the paired document"

// Normalize trims, lower-cases and collapses internal whitespace. Numbers are
// not reformatted, so "100000.00" and "100,000.00" still differ.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Member is one document of a set as the comparator sees it. Available is
// false when extraction never produced a usable field map.
type Member struct {
	Document  *domain.Document
	Available bool
	Reason    string
}

func ref(d *domain.Document) domain.DocumentRef {
	return domain.DocumentRef{ID: d.ID, Type: d.Type}
}

// Compare checks the configured fields present on both documents, in rule
// order, then runs the cross-document checks for the pair. Fields missing on
// either side are left to mandatory-field validation.
func Compare(a, b *domain.Document, rs *rules.RuleSet) domain.DocumentComparison {
	cmp := domain.DocumentComparison{
		Document1:        ref(a),
		Document2:        ref(b),
		FieldComparisons: []domain.FieldValidation{},
		Discrepancies:    []domain.Discrepancy{},
	}

	for _, name := range rs.ComparedFields() {
		fa, okA := a.Fields.Get(name)
		fb, okB := b.Fields.Get(name)
		if !okA || !okB {
			continue
		}

		sev := rs.FieldSeverity(name)
		match := Normalize(fa.Value) == Normalize(fb.Value)
		cmp.FieldComparisons = append(cmp.FieldComparisons, domain.FieldValidation{
			Field:         string(name),
			Kind:          domain.DiscrepancyDataInconsistency,
			IsValid:       match,
			Value:         fb.Value,
			ExpectedValue: fa.Value,
			Rule:          ruleCrossDocument,
			Severity:      sev,
		})
		if match {
			continue
		}
		cmp.Discrepancies = append(cmp.Discrepancies, domain.Discrepancy{
			Type:      domain.DiscrepancyDataInconsistency,
			Field:     name,
			Documents: []domain.DocumentType{a.Type, b.Type},
			Values: map[string]string{
				string(a.Type): fa.Value,
				string(b.Type): fb.Value,
			},
			Severity:    sev,
			Description: fmt.Sprintf("%s differs between %s and %s", name, a.Type, b.Type),
		})
	}

	cmp.Discrepancies = append(cmp.Discrepancies, pairChecks(a, b)...)
	return cmp
}

// CompareSet evaluates every configured pairing whose two types are both
// present in the set. A pair with an unavailable member is reported as
// skipped instead of compared.
func CompareSet(members []Member, rs *rules.RuleSet) ([]domain.DocumentComparison, []domain.SkippedComparison) {
	comparisons := []domain.DocumentComparison{}
	skipped := []domain.SkippedComparison{}

	for _, p := range rs.Pairings() {
		for _, l := range members {
			if l.Document.Type != p.Left {
				continue
			}
			for _, r := range members {
				if r.Document.Type != p.Right || r.Document.ID == l.Document.ID {
					continue
				}
				if !l.Available || !r.Available {
					skipped = append(skipped, domain.SkippedComparison{
						Document1: ref(l.Document),
						Document2: ref(r.Document),
						Reason:    unavailableReason(l, r),
					})
					continue
				}
				comparisons = append(comparisons, Compare(l.Document, r.Document, rs))
			}
		}
	}
	return comparisons, skipped
}

func unavailableReason(members ...Member) string {
	var parts []string
	for _, m := range members {
		if m.Available {
			continue
		}
		reason := m.Reason
		if reason == "" {
			reason = "extraction not completed"
		}
		parts = append(parts, fmt.Sprintf("%s %s unavailable for comparison: %s", m.Document.Type, m.Document.ID, reason))
	}
	return strings.Join(parts, "; ")
}
