package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/tradedocs/lcverify/internal/domain"
	"github.com/tradedocs/lcverify/internal/reconciliation"
	"github.com/tradedocs/lcverify/internal/repository"
)

// Handlers groups all HTTP handler methods and their dependencies.
type Handlers struct {
	svc       *reconciliation.Service
	discRepo  *repository.DiscrepancyRepo
	validate  *validator.Validate
	maxUpload int64
	log       *logrus.Entry
}

// --- helpers ---

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.WithError(err).Warn("encode response")
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps storage and engine sentinels to status codes.
func (h *Handlers) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrDocumentNotFound),
		errors.Is(err, domain.ErrReportNotFound),
		errors.Is(err, domain.ErrEmptySet):
		h.writeError(w, http.StatusNotFound, err.Error())
	default:
		h.log.WithError(err).Error("request failed")
		h.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t, err = time.Parse("2006-01-02", s)
		if err != nil {
			return nil
		}
	}
	return &t
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return def
	}
	return v
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}

// --- RegisterDocument ---

// RegisterDocument accepts either a JSON body or a multipart form with the
// document text in a "file" part.
func (h *Handlers) RegisterDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	var in reconciliation.NewDocument
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if !h.readMultipart(w, r, &in) {
			return
		}
	} else if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		if isTooLarge(err) {
			h.writeError(w, http.StatusRequestEntityTooLarge, "document exceeds upload limit")
			return
		}
		h.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	in.Normalize()
	if err := h.validate.Struct(in); err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	doc, created, err := h.svc.RegisterDocument(r.Context(), in)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	h.writeJSON(w, status, map[string]any{
		"document": doc,
		"created":  created,
	})
}

func (h *Handlers) readMultipart(w http.ResponseWriter, r *http.Request, in *reconciliation.NewDocument) bool {
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		if isTooLarge(err) {
			h.writeError(w, http.StatusRequestEntityTooLarge, "document exceeds upload limit")
			return false
		}
		h.writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "file field is required: "+err.Error())
		return false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "read file: "+err.Error())
		return false
	}

	in.SetID = r.FormValue("set_id")
	in.Type = r.FormValue("document_type")
	in.SourceName = r.FormValue("source_name")
	if in.SourceName == "" {
		in.SourceName = header.Filename
	}
	in.RawText = string(data)
	return true
}

// --- GetDocument ---

func (h *Handlers) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := h.svc.GetDocument(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, doc)
}

// --- AnalyzeSet ---

func (h *Handlers) AnalyzeSet(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.AnalyzeSet(r.Context(), chi.URLParam(r, "setID"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}

// --- GetReport ---

func (h *Handlers) GetReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Report(r.Context(), chi.URLParam(r, "setID"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}

// --- ListSetDiscrepancies ---

func (h *Handlers) ListSetDiscrepancies(w http.ResponseWriter, r *http.Request) {
	setID := chi.URLParam(r, "setID")
	findings, err := h.svc.Discrepancies(r.Context(), setID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"set_id":        setID,
		"discrepancies": findings,
		"total":         len(findings),
	})
}

// --- ListDiscrepancies ---

func (h *Handlers) ListDiscrepancies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.DiscrepancyFilter{
		SetID:    q.Get("set_id"),
		Kind:     q.Get("kind"),
		Severity: q.Get("severity"),
		Field:    q.Get("field"),
		From:     parseTime(q.Get("from")),
		To:       parseTime(q.Get("to")),
		Page:     parseIntDefault(q.Get("page"), 1),
		Limit:    parseIntDefault(q.Get("limit"), 50),
	}

	if filter.Severity != "" {
		if _, err := domain.ParseSeverity(filter.Severity); err != nil {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	findings, total, err := h.discRepo.List(r.Context(), filter)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"discrepancies": findings,
		"total":         total,
		"page":          filter.Page,
		"limit":         filter.Limit,
	})
}

// --- GetDiscrepancySummary ---

func (h *Handlers) GetDiscrepancySummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.discRepo.GetSummary(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}
