package ingestion

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/tradedocs/lcverify/internal/domain"
	"github.com/tradedocs/lcverify/internal/logger"
	"github.com/tradedocs/lcverify/internal/metrics"
	"github.com/tradedocs/lcverify/internal/rules"
)

// Extraction methods reported on a result.
const (
	MethodMessageGrammar = "message_grammar"
	MethodLabelPatterns  = "label_patterns"
)

// TextSource supplies the raw text of a document. Implementations backed by
// OCR or remote storage should honour ctx.
type TextSource interface {
	Text(ctx context.Context, doc *domain.Document) (string, error)
}

// RawTextSource reads the text already stored on the document.
type RawTextSource struct{}

func (RawTextSource) Text(_ context.Context, doc *domain.Document) (string, error) {
	if strings.TrimSpace(doc.RawText) == "" {
		return "", fmt.Errorf("%w: document %s has no text", domain.ErrDecodeFailure, doc.ID)
	}
	if !utf8.ValidString(doc.RawText) {
		return "", fmt.Errorf("%w: document %s is not valid UTF-8", domain.ErrDecodeFailure, doc.ID)
	}
	return doc.RawText, nil
}

// ExtractionResult is the field map of one document plus how it was obtained.
// Errors is non-empty only when the text could not be read.
type ExtractionResult struct {
	DocumentID  string                   `json:"document_id"`
	Type        domain.DocumentType      `json:"document_type"`
	Classified  bool                     `json:"classified"`
	Confidence  float64                  `json:"confidence,omitempty"`
	MessageType string                   `json:"message_type,omitempty"`
	Method      string                   `json:"method,omitempty"`
	Fields      domain.FieldMap          `json:"fields"`
	Errors      []domain.ExtractionError `json:"errors"`
}

// OK reports whether the document reached a usable field map.
func (r *ExtractionResult) OK() bool { return r != nil && len(r.Errors) == 0 }

// Outcome is the terminal extraction state of one document in a set.
type Outcome struct {
	Document *domain.Document
	Result   *ExtractionResult
	Err      error
}

type Options struct {
	// Timeout bounds reading and parsing a single document.
	Timeout time.Duration
	// Concurrency caps parallel extractions in ExtractAll.
	Concurrency int
	// CacheTTL keeps field maps for identical (type, text) inputs.
	CacheTTL time.Duration
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 4
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = 10 * time.Minute
	}
	return o
}

// Service extracts field maps from documents. It holds no per-document state;
// the cache only short-circuits identical inputs.
type Service struct {
	rules   *rules.RuleSet
	source  TextSource
	opts    Options
	cache   *cache.Cache
	log     *logrus.Entry
	metrics *metrics.Metrics
}

// NewService creates an extraction service. source defaults to RawTextSource;
// m may be nil.
func NewService(rs *rules.RuleSet, source TextSource, opts Options, log logrus.FieldLogger, m *metrics.Metrics) *Service {
	if source == nil {
		source = RawTextSource{}
	}
	opts = opts.withDefaults()
	return &Service{
		rules:   rs,
		source:  source,
		opts:    opts,
		cache:   cache.New(opts.CacheTTL, 2*opts.CacheTTL),
		log:     logger.WithComponent(log, "ingestion"),
		metrics: m,
	}
}

type cachedFields struct {
	method      string
	messageType string
	fields      domain.FieldMap
}

// Extract produces the field map for a single document. The returned error is
// non-nil only when the text could not be obtained; the result then carries
// the matching ExtractionError and an empty field map.
func (s *Service) Extract(ctx context.Context, doc *domain.Document) (*ExtractionResult, error) {
	start := time.Now()
	res := &ExtractionResult{DocumentID: doc.ID, Type: doc.Type}
	if res.Type == "" {
		res.Type = domain.DocUnknown
	}

	text, err := s.readText(ctx, doc)
	if err != nil {
		ee := domain.NewExtractionError(doc, err)
		res.Errors = []domain.ExtractionError{*ee}
		s.observe(res, "failed", start)
		s.log.WithFields(logrus.Fields{
			"document_id": doc.ID,
			"kind":        ee.Kind,
		}).Warn(err.Error())
		return res, ee
	}

	if res.Type == domain.DocUnknown {
		c := Classify(text)
		res.Type = c.Type
		res.Classified = true
		res.Confidence = c.Confidence
	}

	key := cacheKey(res.Type, text)
	if v, ok := s.cache.Get(key); ok {
		cf := v.(cachedFields)
		res.Method, res.MessageType, res.Fields = cf.method, cf.messageType, cf.fields
		if s.metrics != nil {
			s.metrics.CacheHits.Inc()
		}
		s.observe(res, "cached", start)
		return res, nil
	}

	cf := s.parse(res.Type, text)
	s.cache.SetDefault(key, cf)
	res.Method, res.MessageType, res.Fields = cf.method, cf.messageType, cf.fields

	s.observe(res, "extracted", start)
	s.log.WithFields(logrus.Fields{
		"document_id": doc.ID,
		"type":        res.Type,
		"method":      res.Method,
		"fields":      res.Fields.Len(),
	}).Debug("extracted document")
	return res, nil
}

// parse dispatches on the text shape: tag-formatted messages go through the
// grammar parser, everything else through the label library.
func (s *Service) parse(docType domain.DocumentType, text string) cachedFields {
	if IsMessageFormatted(text) {
		m := ParseMessage(text)
		return cachedFields{method: MethodMessageGrammar, messageType: m.MessageType, fields: m.Fields}
	}
	return cachedFields{method: MethodLabelPatterns, fields: ExtractFields(text, docType, s.rules)}
}

// ExtractAll extracts every document concurrently and returns once each one
// has reached a terminal state. Outcomes are in input order. A failure of
// one document never cancels its siblings.
func (s *Service) ExtractAll(ctx context.Context, docs []*domain.Document) []Outcome {
	out := make([]Outcome, len(docs))
	var g errgroup.Group
	g.SetLimit(s.opts.Concurrency)
	for i, doc := range docs {
		i, doc := i, doc
		g.Go(func() error {
			res, err := s.Extract(ctx, doc)
			out[i] = Outcome{Document: doc, Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// readText bounds the text source by the per-document timeout. A source that
// ignores ctx is abandoned once the deadline passes.
func (s *Service) readText(ctx context.Context, doc *domain.Document) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	type read struct {
		text string
		err  error
	}
	ch := make(chan read, 1)
	go func() {
		text, err := s.source.Text(ctx, doc)
		ch <- read{text, err}
	}()

	select {
	case r := <-ch:
		if r.err != nil && ctx.Err() != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrExtractionTimeout, ctx.Err())
		}
		return r.text, r.err
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %v", domain.ErrExtractionTimeout, ctx.Err())
	}
}

func (s *Service) observe(res *ExtractionResult, outcome string, start time.Time) {
	if s.metrics == nil {
		return
	}
	method := res.Method
	if method == "" {
		method = "none"
	}
	s.metrics.Extractions.WithLabelValues(method, outcome).Inc()
	s.metrics.ExtractionDuration.WithLabelValues(string(res.Type)).Observe(time.Since(start).Seconds())
}

func cacheKey(t domain.DocumentType, text string) string {
	sum := sha256.Sum256([]byte(string(t) + "\x00" + text))
	return hex.EncodeToString(sum[:])
}
