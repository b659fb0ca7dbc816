package ingestion

import (
	"regexp"
	"strings"
	"time"

	"github.com/tradedocs/lcverify/internal/domain"
)

const defaultMessageType = "MT700"

var (
	// A field opener at the start of a line, e.g. ":32B:".
	tagLinePattern = regexp.MustCompile(`(?m)^[ \t]*:([0-9]{2}[A-Z]?):`)

	// Application header {2:I700...} or a literal "MT700" / "MT 700".
	familyPattern = regexp.MustCompile(`\{2:[IO](7[0-9]{2})|\bMT[ \-]?(7[0-9]{2})\b`)

	sentinelPattern = regexp.MustCompile(`(?m)^[ \t]*:20:`)

	swiftAmountPattern = regexp.MustCompile(`^([A-Z]{3})[ \t]*([0-9][0-9.,' ]*)`)
	swiftDatePattern   = regexp.MustCompile(`^([0-9]{6})[ \t]*(.*)$`)
)

// MessageResult is the field map of one tag-formatted message.
type MessageResult struct {
	MessageType string
	Fields      domain.FieldMap
	RawText     string
}

type tagDecoder func(tag, block string) []domain.Field

type tagSpec struct {
	tag    string
	decode tagDecoder
}

// messageTags maps each recognised tag to its decoder. Tags not listed are
// ignored.
var messageTags = map[string]tagSpec{
	"20":  {"20", firstLine(domain.FieldCreditNumber)},
	"27":  {"27", firstLine(domain.FieldSequence)},
	"40A": {"40A", firstLine(domain.FieldFormOfCredit)},
	"40E": {"40E", firstLine(domain.FieldApplicableRules)},
	"31C": {"31C", swiftDate(domain.FieldDate)},
	"31D": {"31D", expiry},
	"50":  {"50", party(domain.FieldApplicant)},
	"59":  {"59", party(domain.FieldBeneficiary)},
	"32B": {"32B", currencyAmount},
	"39A": {"39A", firstLine(domain.FieldTolerance)},
	"41A": {"41A", joined(domain.FieldAvailableWith)},
	"41D": {"41D", joined(domain.FieldAvailableWith)},
	"42C": {"42C", joined(domain.FieldTenor)},
	"42A": {"42A", firstLine(domain.FieldDrawee)},
	"42D": {"42D", firstLine(domain.FieldDrawee)},
	"43P": {"43P", firstLine(domain.FieldPartialShipments)},
	"43T": {"43T", firstLine(domain.FieldTranshipment)},
	"44E": {"44E", joined(domain.FieldPortOfLoading)},
	"44F": {"44F", joined(domain.FieldPortOfDischarge)},
	"44C": {"44C", swiftDate(domain.FieldLatestShipmentDate)},
	"45A": {"45A", joined(domain.FieldDescription)},
	"46A": {"46A", joined(domain.FieldDocumentsRequired)},
	"47A": {"47A", joined(domain.FieldAdditionalConditions)},
	"71B": {"71B", joined(domain.FieldCharges)},
	"48":  {"48", joined(domain.FieldPresentationPeriod)},
	"49":  {"49", firstLine(domain.FieldConfirmation)},
}

// IsMessageFormatted reports whether text looks like an MT7xx message: it has
// a ":20:" line or a message family header.
func IsMessageFormatted(text string) bool {
	return sentinelPattern.MatchString(text) || familyPattern.MatchString(text)
}

// DetectMessageType returns "MT7xx" from the family header, or MT700 when
// the text carries no header.
func DetectMessageType(text string) string {
	m := familyPattern.FindStringSubmatch(text)
	if m == nil {
		return defaultMessageType
	}
	for _, g := range m[1:] {
		if g != "" {
			return "MT" + g
		}
	}
	return defaultMessageType
}

// ParseMessage splits text into tag blocks in one pass and decodes the first
// block of each recognised tag. Missing tags are simply absent from the
// result.
func ParseMessage(text string) MessageResult {
	body := text
	if i := strings.Index(body, "\n-}"); i >= 0 {
		body = body[:i]
	}

	locs := tagLinePattern.FindAllStringSubmatchIndex(body, -1)
	seen := make(map[string]bool, len(locs))
	var fields []domain.Field

	for i, loc := range locs {
		tag := body[loc[2]:loc[3]]
		if seen[tag] {
			continue
		}
		spec, ok := messageTags[tag]
		if !ok {
			continue
		}
		seen[tag] = true

		end := len(body)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		block := strings.TrimSpace(body[loc[1]:end])
		if block == "" {
			continue
		}
		fields = append(fields, spec.decode(spec.tag, block)...)
	}

	return MessageResult{
		MessageType: DetectMessageType(text),
		Fields:      domain.NewFieldMap(fields...),
		RawText:     text,
	}
}

func source(tag string) string { return ":" + tag + ":" }

func blockLines(block string) []string {
	var out []string
	for _, l := range strings.Split(block, "\n") {
		l = strings.TrimSpace(strings.TrimRight(l, "\r"))
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

func single(name domain.FieldName, tag, value string) []domain.Field {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return []domain.Field{{Name: name, Value: value, Source: source(tag)}}
}

func firstLine(name domain.FieldName) tagDecoder {
	return func(tag, block string) []domain.Field {
		lines := blockLines(block)
		if len(lines) == 0 {
			return nil
		}
		return single(name, tag, lines[0])
	}
}

func joined(name domain.FieldName) tagDecoder {
	return func(tag, block string) []domain.Field {
		return single(name, tag, strings.Join(blockLines(block), " "))
	}
}

// party takes the name line of a party field; lines starting with "/" carry
// an account number.
func party(name domain.FieldName) tagDecoder {
	return func(tag, block string) []domain.Field {
		for _, l := range blockLines(block) {
			if strings.HasPrefix(l, "/") {
				continue
			}
			return single(name, tag, l)
		}
		return nil
	}
}

func swiftDate(name domain.FieldName) tagDecoder {
	return func(tag, block string) []domain.Field {
		lines := blockLines(block)
		if len(lines) == 0 {
			return nil
		}
		m := swiftDatePattern.FindStringSubmatch(lines[0])
		if m == nil {
			return single(name, tag, lines[0])
		}
		return single(name, tag, decodeSwiftDate(m[1]))
	}
}

// expiry splits 31D into the date and the place of expiry.
func expiry(tag, block string) []domain.Field {
	lines := blockLines(block)
	if len(lines) == 0 {
		return nil
	}
	m := swiftDatePattern.FindStringSubmatch(lines[0])
	if m == nil {
		return single(domain.FieldExpiryDate, tag, lines[0])
	}
	out := single(domain.FieldExpiryDate, tag, decodeSwiftDate(m[1]))
	place := strings.TrimSpace(strings.Join(append([]string{m[2]}, lines[1:]...), " "))
	return append(out, single(domain.FieldPlaceOfExpiry, tag, place)...)
}

// currencyAmount decodes 32B "USD45000,00" into currency and amount.
func currencyAmount(tag, block string) []domain.Field {
	lines := blockLines(block)
	if len(lines) == 0 {
		return nil
	}
	m := swiftAmountPattern.FindStringSubmatch(lines[0])
	if m == nil {
		return nil
	}
	out := single(domain.FieldCurrency, tag, m[1])
	return append(out, single(domain.FieldAmount, tag, decodeSwiftAmount(m[2]))...)
}

// decodeSwiftAmount converts the SWIFT decimal comma to a point and strips
// grouping separators. Whichever separator comes last is the decimal mark.
func decodeSwiftAmount(raw string) string {
	s := strings.NewReplacer("'", "", " ", "").Replace(strings.TrimSpace(raw))
	comma, dot := strings.LastIndex(s, ","), strings.LastIndex(s, ".")
	if comma > dot {
		whole := strings.NewReplacer(",", "", ".", "").Replace(s[:comma])
		s = whole + "." + s[comma+1:]
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}
	return strings.TrimSuffix(s, ".")
}

// decodeSwiftDate turns YYMMDD into YYYY-MM-DD, leaving invalid dates as-is
// so format validation can flag them.
func decodeSwiftDate(raw string) string {
	t, err := time.Parse("060102", raw)
	if err != nil {
		return raw
	}
	return t.Format("2006-01-02")
}
