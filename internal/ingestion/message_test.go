package ingestion

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradedocs/lcverify/internal/domain"
)

func readFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return string(data)
}

func TestParseMessageMT700(t *testing.T) {
	res := ParseMessage(readFixture(t, "mt700.txt"))

	assert.Equal(t, "MT700", res.MessageType)

	want := map[domain.FieldName]string{
		domain.FieldCreditNumber:       "LC-2025-0042",
		domain.FieldSequence:           "1/1",
		domain.FieldFormOfCredit:       "IRREVOCABLE",
		domain.FieldDate:               "2025-03-01",
		domain.FieldApplicableRules:    "UCP LATEST VERSION",
		domain.FieldExpiryDate:         "2025-06-30",
		domain.FieldPlaceOfExpiry:      "NEW YORK",
		domain.FieldApplicant:          "GLOBAL IMPORTS LLC",
		domain.FieldBeneficiary:        "ACME EXPORTS LTD",
		domain.FieldCurrency:           "USD",
		domain.FieldAmount:             "100000.00",
		domain.FieldTolerance:          "05/05",
		domain.FieldAvailableWith:      "ANY BANK BY NEGOTIATION",
		domain.FieldTenor:              "AT SIGHT",
		domain.FieldDrawee:             "BANKUS33",
		domain.FieldPortOfLoading:      "SHANGHAI",
		domain.FieldPortOfDischarge:    "NEW YORK",
		domain.FieldLatestShipmentDate: "2025-06-15",
		domain.FieldDescription:        "500 UNITS OF INDUSTRIAL PUMPS MODEL X-200",
		domain.FieldConfirmation:       "WITHOUT",
	}
	for name, v := range want {
		assert.Equal(t, v, res.Fields.Value(name), "field %s", name)
	}

	amount, ok := res.Fields.Get(domain.FieldAmount)
	require.True(t, ok)
	assert.Equal(t, ":32B:", amount.Source)
}

func TestParseMessageFirstTagWins(t *testing.T) {
	res := ParseMessage(":20:FIRST\n:20:SECOND\n")
	assert.Equal(t, "FIRST", res.Fields.Value(domain.FieldCreditNumber))
	assert.Equal(t, 1, res.Fields.Len())
}

func TestParseMessageNoTags(t *testing.T) {
	res := ParseMessage("This letter confirms our telephone conversation of yesterday.")

	assert.Equal(t, 0, res.Fields.Len())
	assert.Equal(t, "MT700", res.MessageType)
	assert.NotEmpty(t, res.RawText)
}

func TestParseMessageIgnoresUnknownAndEmptyTags(t *testing.T) {
	res := ParseMessage(":20:LC1\n:99Z:whatever\n:59:\n:32B:EUR5000,\n")

	assert.Equal(t, "LC1", res.Fields.Value(domain.FieldCreditNumber))
	assert.False(t, res.Fields.Has(domain.FieldBeneficiary))
	assert.Equal(t, "EUR", res.Fields.Value(domain.FieldCurrency))
	assert.Equal(t, "5000", res.Fields.Value(domain.FieldAmount))
}

func TestDetectMessageType(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"{1:F01X}{2:I710BANKXXXX}{4:\n:20:A\n-}", "MT710"},
		{"{2:O720123}", "MT720"},
		{"Message type MT 707 amendment", "MT707"},
		{":20:REF", "MT700"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectMessageType(tt.text), tt.text)
	}
}

func TestIsMessageFormatted(t *testing.T) {
	assert.True(t, IsMessageFormatted(":20:LC-1\n:32B:USD1,"))
	assert.True(t, IsMessageFormatted("  :20:LC-1"))
	assert.True(t, IsMessageFormatted("MT700 issue of a documentary credit"))
	assert.False(t, IsMessageFormatted(readFixture(t, "invoice.txt")))
	assert.False(t, IsMessageFormatted("ref :20: inline"))
}

func TestDecodeSwiftAmount(t *testing.T) {
	tests := map[string]string{
		"100000,00":  "100000.00",
		"100000,":    "100000",
		"1.250,5":    "1250.5",
		"1,250.50":   "1250.50",
		"45 000,00":  "45000.00",
		"7'500,25":   "7500.25",
		"12":         "12",
	}
	for in, want := range tests {
		assert.Equal(t, want, decodeSwiftAmount(in), in)
	}
}

func TestDecodeSwiftDate(t *testing.T) {
	assert.Equal(t, "2025-06-30", decodeSwiftDate("250630"))
	assert.Equal(t, "251399", decodeSwiftDate("251399"))
}
