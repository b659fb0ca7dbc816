package reconciliation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradedocs/lcverify/internal/domain"
	"github.com/tradedocs/lcverify/internal/rules"
)

func doc(id string, t domain.DocumentType, kv ...string) *domain.Document {
	var fields []domain.Field
	for i := 0; i+1 < len(kv); i += 2 {
		fields = append(fields, domain.Field{Name: domain.FieldName(kv[i]), Value: kv[i+1], Source: "test"})
	}
	return &domain.Document{ID: id, Type: t, Fields: domain.NewFieldMap(fields...)}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "acme corp", Normalize("  ACME   Corp  "))
	assert.Equal(t, "acme corp", Normalize("acme\tcorp\n"))
	assert.Equal(t, "", Normalize("   "))
	assert.NotEqual(t, Normalize("100000.00"), Normalize("100,000.00"))
}

func TestCompareMatchingPair(t *testing.T) {
	rs := rules.MustDefault()
	credit := doc("lc", domain.DocCreditMessage, "amount", "100000.00", "currency", "USD", "beneficiary", "Acme Corp")
	invoice := doc("inv", domain.DocCommercialInvoice, "amount", "100000.00", "currency", "USD", "beneficiary", "ACME CORP")

	cmp := Compare(credit, invoice, rs)

	assert.Empty(t, cmp.Discrepancies)
	require.Len(t, cmp.FieldComparisons, 3)
	for _, fc := range cmp.FieldComparisons {
		assert.True(t, fc.IsValid, fc.Field)
	}
}

func TestCompareCurrencyMismatch(t *testing.T) {
	rs := rules.MustDefault()
	credit := doc("lc", domain.DocCreditMessage, "amount", "100000.00", "currency", "USD", "beneficiary", "Acme Corp")
	invoice := doc("inv", domain.DocCommercialInvoice, "amount", "100000.00", "currency", "EUR", "beneficiary", "ACME CORP")

	cmp := Compare(credit, invoice, rs)

	require.Len(t, cmp.Discrepancies, 1)
	d := cmp.Discrepancies[0]
	assert.Equal(t, domain.FieldCurrency, d.Field)
	assert.Equal(t, domain.SeverityCritical, d.Severity)
	assert.Equal(t, domain.DiscrepancyDataInconsistency, d.Type)
	assert.Equal(t, map[string]string{"credit_message": "USD", "commercial_invoice": "EUR"}, d.Values)
	assert.Equal(t, []domain.DocumentType{domain.DocCreditMessage, domain.DocCommercialInvoice}, d.Documents)
}

func TestCompareBeneficiaryNormalization(t *testing.T) {
	rs := rules.MustDefault()
	cmp := Compare(
		doc("lc", domain.DocCreditMessage, "beneficiary", "  ACME Corp  "),
		doc("inv", domain.DocCommercialInvoice, "beneficiary", "acme corp"),
		rs,
	)
	require.Len(t, cmp.FieldComparisons, 1)
	assert.True(t, cmp.FieldComparisons[0].IsValid)
}

func TestCompareOrderIgnoresInsertionOrder(t *testing.T) {
	rs := rules.MustDefault()
	credit := doc("lc", domain.DocCreditMessage,
		"date", "2025-01-01", "beneficiary", "A", "currency", "USD", "amount", "1")
	invoice := doc("inv", domain.DocCommercialInvoice,
		"beneficiary", "B", "amount", "2", "date", "2025-02-02", "currency", "EUR")

	cmp := Compare(credit, invoice, rs)

	var got []domain.FieldName
	for _, d := range cmp.Discrepancies {
		if d.Type == domain.DiscrepancyDataInconsistency {
			got = append(got, d.Field)
		}
	}
	assert.Equal(t, []domain.FieldName{
		domain.FieldAmount, domain.FieldCurrency, domain.FieldBeneficiary, domain.FieldDate,
	}, got)

	var checked []string
	for _, fc := range cmp.FieldComparisons {
		checked = append(checked, fc.Field)
	}
	assert.Equal(t, []string{"amount", "currency", "beneficiary", "date"}, checked)
}

func TestCompareSkipsFieldsMissingOnEitherSide(t *testing.T) {
	rs := rules.MustDefault()
	cmp := Compare(
		doc("lc", domain.DocCreditMessage, "amount", "1", "beneficiary", "A"),
		doc("bl", domain.DocBillOfLading, "currency", "USD", "beneficiary", "B"),
		rs,
	)
	require.Len(t, cmp.Discrepancies, 1)
	assert.Equal(t, domain.FieldBeneficiary, cmp.Discrepancies[0].Field)
	assert.Equal(t, domain.SeverityHigh, cmp.Discrepancies[0].Severity)
}

// Equivalent amounts written differently are still a mismatch.
func TestCompareAmountsAsStrings(t *testing.T) {
	rs := rules.MustDefault()
	cmp := Compare(
		doc("lc", domain.DocCreditMessage, "amount", "100000.00"),
		doc("inv", domain.DocCommercialInvoice, "amount", "100,000.0"),
		rs,
	)
	require.Len(t, cmp.Discrepancies, 1)
	assert.Equal(t, domain.FieldAmount, cmp.Discrepancies[0].Field)
	assert.Equal(t, domain.DiscrepancyDataInconsistency, cmp.Discrepancies[0].Type)
}

func TestCompareSet(t *testing.T) {
	rs := rules.MustDefault()
	members := []Member{
		{Document: doc("lc", domain.DocCreditMessage, "amount", "1"), Available: true},
		{Document: doc("inv", domain.DocCommercialInvoice, "amount", "1"), Available: true},
		{Document: doc("bl", domain.DocBillOfLading), Reason: "timeout"},
		{Document: doc("pl", domain.DocPackingList, "amount", "9"), Available: true},
	}

	comparisons, skipped := CompareSet(members, rs)

	require.Len(t, comparisons, 1)
	assert.Equal(t, "lc", comparisons[0].Document1.ID)
	assert.Equal(t, "inv", comparisons[0].Document2.ID)

	require.Len(t, skipped, 1)
	assert.Equal(t, "bl", skipped[0].Document2.ID)
	assert.Contains(t, skipped[0].Reason, "bill_of_lading bl unavailable for comparison: timeout")
}

func TestCompareSetWithoutPairs(t *testing.T) {
	comparisons, skipped := CompareSet([]Member{
		{Document: doc("inv", domain.DocCommercialInvoice), Available: true},
	}, rules.MustDefault())

	assert.Empty(t, comparisons)
	assert.Empty(t, skipped)
	assert.NotNil(t, comparisons)
}
