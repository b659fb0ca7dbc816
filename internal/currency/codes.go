package currency

import "strings"

// isoCodes holds the ISO 4217 codes seen on documentary credits. It is not
// exhaustive; an unknown code is only an advisory finding.
var isoCodes = map[string]string{
	"AED": "UAE Dirham",
	"AUD": "Australian Dollar",
	"BDT": "Bangladeshi Taka",
	"BRL": "Brazilian Real",
	"CAD": "Canadian Dollar",
	"CHF": "Swiss Franc",
	"CNY": "Chinese Yuan",
	"CZK": "Czech Koruna",
	"DKK": "Danish Krone",
	"EGP": "Egyptian Pound",
	"EUR": "Euro",
	"GBP": "Pound Sterling",
	"HKD": "Hong Kong Dollar",
	"IDR": "Indonesian Rupiah",
	"INR": "Indian Rupee",
	"JPY": "Japanese Yen",
	"KES": "Kenyan Shilling",
	"KRW": "Korean Won",
	"LKR": "Sri Lankan Rupee",
	"MXN": "Mexican Peso",
	"MYR": "Malaysian Ringgit",
	"NGN": "Nigerian Naira",
	"NOK": "Norwegian Krone",
	"NZD": "New Zealand Dollar",
	"PHP": "Philippine Peso",
	"PKR": "Pakistani Rupee",
	"PLN": "Polish Zloty",
	"QAR": "Qatari Riyal",
	"SAR": "Saudi Riyal",
	"SEK": "Swedish Krona",
	"SGD": "Singapore Dollar",
	"THB": "Thai Baht",
	"TRY": "Turkish Lira",
	"TWD": "New Taiwan Dollar",
	"USD": "US Dollar",
	"VND": "Vietnamese Dong",
	"ZAR": "South African Rand",
}

// symbols maps the common printed symbols to a code. The dollar sign is
// read as USD.
var symbols = map[string]string{
	"$":   "USD",
	"US$": "USD",
	"€":   "EUR",
	"£":   "GBP",
	"¥":   "JPY",
	"₹":   "INR",
}

// IsKnown reports whether code is a listed ISO 4217 code.
func IsKnown(code string) bool {
	_, ok := isoCodes[code]
	return ok
}

// Name returns the currency name for a known code.
func Name(code string) (string, bool) {
	n, ok := isoCodes[code]
	return n, ok
}

// FromSymbol resolves a printed symbol or code to an upper-case code. The
// second return is false when nothing matches.
func FromSymbol(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if code, ok := symbols[strings.ToUpper(s)]; ok {
		return code, true
	}
	up := strings.ToUpper(s)
	if IsKnown(up) {
		return up, true
	}
	return "", false
}
