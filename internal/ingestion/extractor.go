package ingestion

import (
	"github.com/tradedocs/lcverify/internal/domain"
	"github.com/tradedocs/lcverify/internal/rules"
)

// ExtractFields runs the label library over free-form text. The attempted
// fields are the common set, then the mandatory fields of docType, then a few
// type-specific extras. Values are kept as captured; numeric and date
// normalization happens later.
func ExtractFields(text string, docType domain.DocumentType, rs *rules.RuleSet) domain.FieldMap {
	var fields []domain.Field
	for _, name := range attemptedFields(docType, rs) {
		if f, ok := extractField(text, name); ok {
			fields = append(fields, f)
		}
	}
	return domain.NewFieldMap(fields...)
}

func attemptedFields(docType domain.DocumentType, rs *rules.RuleSet) []domain.FieldName {
	seen := make(map[domain.FieldName]bool)
	var out []domain.FieldName
	add := func(names []domain.FieldName) {
		for _, n := range names {
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}
	add(commonFields)
	if rs != nil {
		add(rs.MandatoryFields(docType))
	}
	add(typeExtras[docType])
	return out
}

// extractField returns the first capture of the first pattern that matches.
func extractField(text string, name domain.FieldName) (domain.Field, bool) {
	for _, p := range fieldPatterns[name] {
		m := p.re.FindStringSubmatch(text)
		if len(m) < 2 {
			continue
		}
		v := cleanValue(m[1])
		if p.normalize != nil {
			v = p.normalize(v)
		}
		if v == "" {
			continue
		}
		return domain.Field{Name: name, Value: v, Source: p.id}, true
	}
	return domain.Field{}, false
}
