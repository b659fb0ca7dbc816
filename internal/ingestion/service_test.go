package ingestion

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradedocs/lcverify/internal/domain"
	"github.com/tradedocs/lcverify/internal/logger"
	"github.com/tradedocs/lcverify/internal/metrics"
	"github.com/tradedocs/lcverify/internal/rules"
)

// stubSource returns canned text per document and can block until ctx ends.
type stubSource struct {
	texts map[string]string
	block map[string]bool
	calls atomic.Int32
}

func (s *stubSource) Text(ctx context.Context, doc *domain.Document) (string, error) {
	s.calls.Add(1)
	if s.block[doc.ID] {
		<-ctx.Done()
		return "", ctx.Err()
	}
	text, ok := s.texts[doc.ID]
	if !ok {
		return "", domain.ErrDecodeFailure
	}
	return text, nil
}

func newTestService(t *testing.T, src TextSource, opts Options) (*Service, *metrics.Metrics) {
	t.Helper()
	m := metrics.New(prometheus.NewRegistry())
	return NewService(rules.MustDefault(), src, opts, logger.Discard(), m), m
}

func TestExtractDispatchesOnTextShape(t *testing.T) {
	svc, _ := newTestService(t, nil, Options{})
	ctx := context.Background()

	credit := &domain.Document{ID: "d1", Type: domain.DocCreditMessage, RawText: readFixture(t, "mt700.txt")}
	res, err := svc.Extract(ctx, credit)
	require.NoError(t, err)
	assert.Equal(t, MethodMessageGrammar, res.Method)
	assert.Equal(t, "MT700", res.MessageType)
	assert.Equal(t, "LC-2025-0042", res.Fields.Value(domain.FieldCreditNumber))
	assert.True(t, res.OK())

	invoice := &domain.Document{ID: "d2", Type: domain.DocCommercialInvoice, RawText: readFixture(t, "invoice.txt")}
	res, err = svc.Extract(ctx, invoice)
	require.NoError(t, err)
	assert.Equal(t, MethodLabelPatterns, res.Method)
	assert.Empty(t, res.MessageType)
	assert.Equal(t, "INV-2025-118", res.Fields.Value(domain.FieldInvoiceNumber))
}

func TestExtractClassifiesUnknownDocuments(t *testing.T) {
	svc, _ := newTestService(t, nil, Options{})

	res, err := svc.Extract(context.Background(), &domain.Document{ID: "d1", RawText: readFixture(t, "bill_of_lading.txt")})
	require.NoError(t, err)
	assert.True(t, res.Classified)
	assert.Equal(t, domain.DocBillOfLading, res.Type)
	assert.Equal(t, "MSCU1234567", res.Fields.Value(domain.FieldBLNumber))
}

func TestExtractDecodeFailure(t *testing.T) {
	svc, m := newTestService(t, nil, Options{})

	res, err := svc.Extract(context.Background(), &domain.Document{ID: "empty", Type: domain.DocCommercialInvoice, RawText: "  \n"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDecodeFailure)

	require.Len(t, res.Errors, 1)
	assert.Equal(t, domain.ErrorDecodeFailure, res.Errors[0].Kind)
	assert.Equal(t, 0, res.Fields.Len())
	assert.False(t, res.OK())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Extractions.WithLabelValues("none", "failed")))
}

func TestExtractInvalidUTF8(t *testing.T) {
	svc, _ := newTestService(t, nil, Options{})
	_, err := svc.Extract(context.Background(), &domain.Document{ID: "bin", RawText: "\xff\xfe\x00"})
	assert.ErrorIs(t, err, domain.ErrDecodeFailure)
}

func TestExtractTimeout(t *testing.T) {
	src := &stubSource{block: map[string]bool{"slow": true}}
	svc, _ := newTestService(t, src, Options{Timeout: 20 * time.Millisecond})

	res, err := svc.Extract(context.Background(), &domain.Document{ID: "slow", Type: domain.DocBillOfLading})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrExtractionTimeout))
	require.Len(t, res.Errors, 1)
	assert.Equal(t, domain.ErrorTimeout, res.Errors[0].Kind)
}

func TestExtractIsIdempotentAndCached(t *testing.T) {
	svc, m := newTestService(t, nil, Options{})
	doc := &domain.Document{ID: "d1", Type: domain.DocCommercialInvoice, RawText: readFixture(t, "invoice.txt")}

	first, err := svc.Extract(context.Background(), doc)
	require.NoError(t, err)
	second, err := svc.Extract(context.Background(), doc)
	require.NoError(t, err)

	assert.True(t, first.Fields.Equal(second.Fields))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHits))

	// Same text under a different type is a different input.
	other := *doc
	other.Type = domain.DocPackingList
	_, err = svc.Extract(context.Background(), &other)
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHits))
}

func TestExtractAllJoinsEveryDocument(t *testing.T) {
	src := &stubSource{
		texts: map[string]string{
			"lc":  readFixture(t, "mt700.txt"),
			"inv": readFixture(t, "invoice.txt"),
		},
		block: map[string]bool{"bl": true},
	}
	svc, _ := newTestService(t, src, Options{Timeout: 30 * time.Millisecond, Concurrency: 2})

	docs := []*domain.Document{
		{ID: "lc", Type: domain.DocCreditMessage},
		{ID: "bl", Type: domain.DocBillOfLading},
		{ID: "inv", Type: domain.DocCommercialInvoice},
		{ID: "missing", Type: domain.DocPackingList},
	}
	out := svc.ExtractAll(context.Background(), docs)

	require.Len(t, out, 4)
	assert.EqualValues(t, 4, src.calls.Load())

	assert.Equal(t, "lc", out[0].Document.ID)
	assert.NoError(t, out[0].Err)
	assert.Equal(t, "USD", out[0].Result.Fields.Value(domain.FieldCurrency))

	assert.ErrorIs(t, out[1].Err, domain.ErrExtractionTimeout)

	assert.NoError(t, out[2].Err)
	assert.Equal(t, "USD", out[2].Result.Fields.Value(domain.FieldCurrency))

	assert.ErrorIs(t, out[3].Err, domain.ErrDecodeFailure)
	assert.Equal(t, domain.ErrorDecodeFailure, out[3].Result.Errors[0].Kind)
}
