package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CurrencyCode is an upper-case three letter code such as USD.
type CurrencyCode string

var (
	currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)
	amountPattern   = regexp.MustCompile(`^\d+(\.\d+)?$`)
)

// ParseCurrencyCode checks the three-letter shape only; whether the code is a
// real ISO 4217 currency is a separate concern (see internal/currency).
func ParseCurrencyCode(s string) (CurrencyCode, error) {
	s = strings.TrimSpace(s)
	if !currencyPattern.MatchString(s) {
		return "", fmt.Errorf("currency %q is not three upper-case letters", s)
	}
	return CurrencyCode(s), nil
}

// NormalizeAmount rewrites a written amount as a point-decimal string.
// Spaces, apostrophes, underscores and no-break spaces are always grouping.
// When both comma and point appear the last one is the decimal mark. A lone
// comma followed by at most two digits is a decimal comma, any other commas
// group thousands. Repeated points group thousands.
func NormalizeAmount(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\'', '_', '\u00a0':
			return -1
		}
		return r
	}, strings.TrimSpace(s))

	comma, dot := strings.LastIndex(s, ","), strings.LastIndex(s, ".")
	switch {
	case comma >= 0 && dot >= 0:
		mark, group := ".", ","
		if comma > dot {
			mark, group = ",", "."
		}
		i := strings.LastIndex(s, mark)
		whole := s[:i]
		if strings.Contains(whole, mark) {
			return s
		}
		return strings.ReplaceAll(whole, group, "") + "." + s[i+1:]
	case comma >= 0:
		if strings.Count(s, ",") == 1 && len(s)-comma-1 <= 2 {
			return strings.TrimSuffix(s[:comma]+"."+s[comma+1:], ".")
		}
		return strings.ReplaceAll(s, ",", "")
	case strings.Count(s, ".") > 1:
		return strings.ReplaceAll(s, ".", "")
	}
	return s
}

// IsNumericAmount reports whether s is digits with an optional decimal part
// once normalized.
func IsNumericAmount(s string) bool {
	return amountPattern.MatchString(NormalizeAmount(s))
}

// ParseAmount parses an amount written with either decimal mark and optional
// grouping separators.
func ParseAmount(s string) (decimal.Decimal, error) {
	clean := NormalizeAmount(s)
	if !amountPattern.MatchString(clean) {
		return decimal.Zero, fmt.Errorf("amount %q is not numeric", s)
	}
	return decimal.NewFromString(clean)
}

var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"02.01.2006",
	"02-01-2006",
	"02/01/06",
	"060102",
	"20060102",
	"02 Jan 2006",
	"2 Jan 2006",
	"02 January 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"02-Jan-2006",
	"2006/01/02",
}

// ParseDate tries the supported layouts in order. Day-first is preferred over
// month-first for slash dates, matching trade document practice.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("date %q is not a recognised calendar date", s)
}
