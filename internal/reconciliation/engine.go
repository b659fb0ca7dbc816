package reconciliation

import (
	"time"

	"github.com/google/uuid"

	"github.com/tradedocs/lcverify/internal/domain"
	"github.com/tradedocs/lcverify/internal/ingestion"
	"github.com/tradedocs/lcverify/internal/rules"
	"github.com/tradedocs/lcverify/internal/validation"
)

// Engine runs validate, compare and annotate over extraction outcomes that
// have all reached a terminal state. It performs no I/O.
type Engine struct {
	rules     *rules.RuleSet
	annotator *Annotator
	now       func() time.Time
	newID     func() string
}

func NewEngine(rs *rules.RuleSet) *Engine {
	return &Engine{
		rules:     rs,
		annotator: NewAnnotator(rs),
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// BuildReport produces a fresh report for a document set. Documents whose
// extraction failed are listed as extraction errors and every pairing that
// needs them is reported as skipped.
func (e *Engine) BuildReport(setID string, outcomes []ingestion.Outcome) *domain.DiscrepancyReport {
	report := &domain.DiscrepancyReport{
		ID:               e.newID(),
		DocumentSetID:    setID,
		GeneratedAt:      e.now().UTC(),
		Validations:      []domain.FieldValidation{},
		ExtractionErrors: []domain.ExtractionError{},
		Findings:         []domain.Finding{},
	}

	members := make([]Member, 0, len(outcomes))
	for _, o := range outcomes {
		doc := *o.Document
		if o.Result != nil && o.Result.Type != "" {
			doc.Type = o.Result.Type
		}

		if o.Err != nil || !o.Result.OK() {
			reason := "extraction not completed"
			if o.Result != nil && len(o.Result.Errors) > 0 {
				report.ExtractionErrors = append(report.ExtractionErrors, o.Result.Errors...)
				reason = string(o.Result.Errors[0].Kind)
			} else if o.Err != nil {
				ee := domain.NewExtractionError(&doc, o.Err)
				report.ExtractionErrors = append(report.ExtractionErrors, *ee)
				reason = string(ee.Kind)
			}
			members = append(members, Member{Document: &doc, Reason: reason})
			continue
		}

		doc.Fields = o.Result.Fields
		members = append(members, Member{Document: &doc, Available: true})

		vs := validation.Validate(doc.Type, doc.Fields, e.rules)
		for i := range vs {
			vs[i].Severity = e.annotator.Severity(vs[i].Field, vs[i].Severity)
		}
		report.Validations = append(report.Validations, vs...)
		for _, v := range validation.Failures(vs) {
			report.Findings = append(report.Findings, e.annotator.Validation(setID, doc.ID, v))
		}
	}

	report.Comparisons, report.Skipped = CompareSet(members, e.rules)
	for _, c := range report.Comparisons {
		for i, fv := range c.FieldComparisons {
			c.FieldComparisons[i].Severity = e.annotator.Severity(fv.Field, fv.Severity)
		}
		for i, d := range c.Discrepancies {
			c.Discrepancies[i].Severity = e.annotator.Severity(string(d.Field), d.Severity)
			report.Findings = append(report.Findings, e.annotator.Discrepancy(setID, c.Discrepancies[i]))
		}
	}

	report.Summary = Summarize(report)
	return report
}

// Summarize counts findings and derives the recommendation: reject on any
// critical finding, accept only when nothing failed and no document or pair
// was left out.
func Summarize(r *domain.DiscrepancyReport) domain.ReportSummary {
	s := domain.ReportSummary{
		TotalFindings: len(r.Findings),
		BySeverity:    map[string]int{},
		ByKind:        map[string]int{},
		Degraded:      len(r.ExtractionErrors) > 0 || len(r.Skipped) > 0,
	}
	critical := false
	for _, f := range r.Findings {
		s.BySeverity[string(f.Severity)]++
		s.ByKind[string(f.Kind)]++
		if f.Severity == domain.SeverityCritical {
			critical = true
		}
	}
	s.Compliant = s.TotalFindings == 0 && !s.Degraded

	switch {
	case critical:
		s.Recommendation = domain.RecommendReject
	case s.Compliant:
		s.Recommendation = domain.RecommendAccept
	default:
		s.Recommendation = domain.RecommendSeekAmendment
	}
	return s
}
