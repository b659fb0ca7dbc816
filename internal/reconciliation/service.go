package reconciliation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tradedocs/lcverify/internal/domain"
	"github.com/tradedocs/lcverify/internal/ingestion"
	"github.com/tradedocs/lcverify/internal/logger"
	"github.com/tradedocs/lcverify/internal/metrics"
)

// DocumentStore is the storage collaborator for documents.
type DocumentStore interface {
	Insert(ctx context.Context, d *domain.Document) (*domain.Document, bool, error)
	GetDocument(ctx context.Context, id string) (*domain.Document, error)
	ListBySet(ctx context.Context, setID string) ([]*domain.Document, error)
	UpdateDocumentStatus(ctx context.Context, id string, status domain.DocumentStatus) error
	UpdateDocumentExtractedData(ctx context.Context, id string, docType domain.DocumentType, fields domain.FieldMap) error
}

// FindingStore persists the findings of the latest analysis of each set.
type FindingStore interface {
	ReplaceForSet(ctx context.Context, setID string, findings []domain.Finding) error
	GetDiscrepanciesBySet(ctx context.Context, setID string) ([]domain.Finding, error)
}

type ReportStore interface {
	SaveReport(ctx context.Context, r *domain.DiscrepancyReport) error
	LatestReport(ctx context.Context, setID string) (*domain.DiscrepancyReport, error)
}

// Extractor runs extraction over a whole set and returns once every document
// is terminal.
type Extractor interface {
	ExtractAll(ctx context.Context, docs []*domain.Document) []ingestion.Outcome
}

// Service drives a document set through extraction, analysis and storage.
type Service struct {
	docs      DocumentStore
	findings  FindingStore
	reports   ReportStore
	extractor Extractor
	engine    *Engine
	log       *logrus.Entry
	metrics   *metrics.Metrics
}

// NewService creates a new reconciliation service. m may be nil.
func NewService(
	docs DocumentStore,
	findings FindingStore,
	reports ReportStore,
	extractor Extractor,
	engine *Engine,
	log logrus.FieldLogger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		docs:      docs,
		findings:  findings,
		reports:   reports,
		extractor: extractor,
		engine:    engine,
		log:       logger.WithComponent(log, "reconciliation"),
		metrics:   m,
	}
}

// NewDocument is a document submitted for a set.
type NewDocument struct {
	SetID      string `json:"set_id" validate:"required,max=128"`
	Type       string `json:"document_type" validate:"omitempty,oneof=credit_message commercial_invoice bill_of_lading certificate_of_origin packing_list bill_of_exchange insurance_certificate unknown"`
	SourceName string `json:"source_name" validate:"max=256"`
	RawText    string `json:"raw_text" validate:"required"`
}

// Normalize trims the set id and lower-cases the document type so that
// validation accepts any case ParseDocumentType does.
func (n *NewDocument) Normalize() {
	n.SetID = strings.TrimSpace(n.SetID)
	n.Type = strings.ToLower(strings.TrimSpace(n.Type))
}

// RegisterDocument stores a document for later analysis. A missing type is
// guessed with the keyword classifier. Submitting the same text to the same
// set again returns the stored document and created=false.
func (s *Service) RegisterDocument(ctx context.Context, in NewDocument) (*domain.Document, bool, error) {
	docType, err := domain.ParseDocumentType(in.Type)
	if err != nil {
		return nil, false, err
	}
	if docType == domain.DocUnknown {
		docType = ingestion.Classify(in.RawText).Type
	}

	now := time.Now().UTC()
	doc := &domain.Document{
		ID:         uuid.NewString(),
		SetID:      strings.TrimSpace(in.SetID),
		Type:       docType,
		SourceName: in.SourceName,
		RawText:    in.RawText,
		Status:     domain.StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	stored, created, err := s.docs.Insert(ctx, doc)
	if err != nil {
		return nil, false, fmt.Errorf("store document: %w", err)
	}
	if created {
		s.log.WithFields(logrus.Fields{
			"document_id": stored.ID,
			"set_id":      stored.SetID,
			"type":        stored.Type,
		}).Info("registered document")
	}
	return stored, created, nil
}

func (s *Service) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	return s.docs.GetDocument(ctx, id)
}

// AnalyzeSet extracts every document of the set, waits for all of them,
// builds a fresh report and stores it together with its findings. Documents
// that fail extraction degrade the report; they do not fail the call.
func (s *Service) AnalyzeSet(ctx context.Context, setID string) (*domain.DiscrepancyReport, error) {
	docs, err := s.docs.ListBySet(ctx, setID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrEmptySet, setID)
	}

	for _, d := range docs {
		if err := s.docs.UpdateDocumentStatus(ctx, d.ID, domain.StatusExtracting); err != nil {
			return nil, fmt.Errorf("mark extracting %s: %w", d.ID, err)
		}
	}

	outcomes := s.extractor.ExtractAll(ctx, docs)

	for _, o := range outcomes {
		if err := s.recordOutcome(ctx, o); err != nil {
			return nil, err
		}
	}

	report := s.engine.BuildReport(setID, outcomes)

	if err := s.findings.ReplaceForSet(ctx, setID, report.Findings); err != nil {
		logger.LogError(s.log, "store findings", err, logrus.Fields{"set_id": setID})
		return nil, fmt.Errorf("store findings: %w", err)
	}
	if err := s.reports.SaveReport(ctx, report); err != nil {
		logger.LogError(s.log, "store report", err, logrus.Fields{"set_id": setID, "report_id": report.ID})
		return nil, fmt.Errorf("store report: %w", err)
	}

	s.observe(report)
	s.log.WithFields(logrus.Fields{
		"set_id":         setID,
		"report_id":      report.ID,
		"documents":      len(docs),
		"findings":       report.Summary.TotalFindings,
		"skipped":        len(report.Skipped),
		"recommendation": report.Summary.Recommendation,
	}).Info("analysed document set")

	return report, nil
}

func (s *Service) recordOutcome(ctx context.Context, o ingestion.Outcome) error {
	id := o.Document.ID
	if o.Err != nil || !o.Result.OK() {
		if err := s.docs.UpdateDocumentStatus(ctx, id, domain.StatusFailed); err != nil {
			return fmt.Errorf("mark failed %s: %w", id, err)
		}
		return nil
	}
	if err := s.docs.UpdateDocumentExtractedData(ctx, id, o.Result.Type, o.Result.Fields); err != nil {
		return fmt.Errorf("store fields %s: %w", id, err)
	}
	if err := s.docs.UpdateDocumentStatus(ctx, id, domain.StatusValidated); err != nil {
		return fmt.Errorf("mark validated %s: %w", id, err)
	}
	return nil
}

func (s *Service) observe(r *domain.DiscrepancyReport) {
	if s.metrics == nil {
		return
	}
	s.metrics.Analyses.WithLabelValues(string(r.Summary.Recommendation)).Inc()
	for _, f := range r.Findings {
		s.metrics.Findings.WithLabelValues(string(f.Kind), string(f.Severity)).Inc()
	}
}

// Report returns the latest stored report of a set.
func (s *Service) Report(ctx context.Context, setID string) (*domain.DiscrepancyReport, error) {
	return s.reports.LatestReport(ctx, setID)
}

// Discrepancies returns the stored findings of a set.
func (s *Service) Discrepancies(ctx context.Context, setID string) ([]domain.Finding, error) {
	return s.findings.GetDiscrepanciesBySet(ctx, setID)
}
