package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dvloznov/finsight/internal/analysis"
	"github.com/dvloznov/finsight/internal/api/middleware"
	"github.com/dvloznov/finsight/internal/domain"
	"github.com/dvloznov/finsight/internal/export"
	"github.com/dvloznov/finsight/internal/jobs"
	"github.com/dvloznov/finsight/internal/observability"
	"github.com/dvloznov/finsight/internal/pipeline"
	"github.com/dvloznov/finsight/internal/session"
)

// MaxUploadBytes caps the size of an analyze request body.
const MaxUploadBytes = 20 << 20

// SessionsHandler handles session, analysis and snapshot endpoints.
type SessionsHandler struct {
	store     *session.Store
	publisher jobs.Publisher
	metrics   *observability.Metrics
	log       zerolog.Logger
	now       func() time.Time
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(store *session.Store, publisher jobs.Publisher, metrics *observability.Metrics, log zerolog.Logger) *SessionsHandler {
	return &SessionsHandler{
		store:     store,
		publisher: publisher,
		metrics:   metrics,
		log:       log,
		now:       time.Now,
	}
}

// CreateSession handles POST /api/sessions
func (h *SessionsHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess := h.store.Create()
	w.Header().Set("Location", sessionURL(sess.ID))
	middleware.WriteJSON(w, http.StatusCreated, sess)
}

// ListSessions handles GET /api/sessions
func (h *SessionsHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions := h.store.List()
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

// GetSession handles GET /api/sessions/{id}
func (h *SessionsHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, sess)
}

// DeleteSession handles DELETE /api/sessions/{id}
func (h *SessionsHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ResetSession handles POST /api/sessions/{id}/reset
func (h *SessionsHandler) ResetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.store.Reset(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, sess)
}

type analyzeRequest struct {
	Text string `json:"text"`
	File *struct {
		MIMEType string `json:"mimeType"`
		Data     []byte `json:"data"` // base64 in JSON
	} `json:"file,omitempty"`
}

// Analyze handles POST /api/sessions/{id}/analyze. The body is either JSON
// with a base64 file or a multipart form with "text" and "file" fields.
// The analysis runs asynchronously; the response carries the job ID.
func (h *SessionsHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := chi.URLParam(r, "id")

	if _, err := h.store.Get(sessionID); err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	in, err := readStatementInput(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if in.IsEmpty() {
		writeServiceError(w, h.log, domain.ErrEmptyInput)
		return
	}

	// The job ID is fixed up front so the session only accepts this job's outcome.
	jobID := uuid.New().String()
	if _, err := h.store.BeginAnalysis(sessionID, jobID); err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	job := &jobs.AnalyzeStatementJob{
		JobID:     jobID,
		SessionID: sessionID,
		Input:     in,
	}
	if in.HasFile() {
		job.MIMEType = in.File.MIMEType
	}

	if err := h.publisher.PublishAnalyzeStatement(ctx, job); err != nil {
		if failErr := h.store.Fail(sessionID, jobID, domain.UserFacingAnalysisError); failErr != nil {
			h.log.Warn().Err(failErr).Str("session_id", sessionID).Msg("Failed to mark session as failed")
		}
		writeServiceError(w, h.log, fmt.Errorf("Analyze: enqueue job: %w", err))
		return
	}

	h.log.Info().
		Str("job_id", jobID).
		Str("session_id", sessionID).
		Bool("has_file", in.HasFile()).
		Msg("Analysis job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id":     jobID,
		"session_id": sessionID,
		"status":     string(jobs.JobStatusPending),
	})
}

func readStatementInput(r *http.Request) (pipeline.StatementInput, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return readMultipartInput(r)
	}

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return pipeline.StatementInput{}, errors.New("invalid request body")
	}

	in := pipeline.StatementInput{Text: req.Text}
	if req.File != nil && len(req.File.Data) > 0 {
		mimeType := req.File.MIMEType
		if mimeType == "" {
			mimeType = http.DetectContentType(req.File.Data)
		}
		in.File = &pipeline.Attachment{MIMEType: mimeType, Data: req.File.Data}
	}
	return in, nil
}

func readMultipartInput(r *http.Request) (pipeline.StatementInput, error) {
	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		return pipeline.StatementInput{}, errors.New("invalid multipart form")
	}

	in := pipeline.StatementInput{Text: r.FormValue("text")}

	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return in, nil
	}
	if err != nil {
		return pipeline.StatementInput{}, errors.New("invalid file upload")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return pipeline.StatementInput{}, errors.New("failed to read uploaded file")
	}
	if len(data) == 0 {
		return in, nil
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}
	in.File = &pipeline.Attachment{MIMEType: mimeType, Data: data}
	return in, nil
}

// result returns the current snapshot of a session.
func (h *SessionsHandler) result(id string) (*domain.AnalysisResult, error) {
	sess, err := h.store.Get(id)
	if err != nil {
		return nil, err
	}
	if sess.Result == nil {
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrNoAnalysis)
	}
	return sess.Result, nil
}

// ListTransactions handles GET /api/sessions/{id}/transactions
// Query parameters: search, category, sort, page, page_size.
func (h *SessionsHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	result, err := h.result(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	query := r.URL.Query()
	q := analysis.Query{
		Search:   query.Get("search"),
		Category: query.Get("category"),
		Sort:     query.Get("sort"),
	}
	if v, err := strconv.Atoi(query.Get("page")); err == nil {
		q.Page = v
	}
	if v, err := strconv.Atoi(query.Get("page_size")); err == nil {
		q.PageSize = v
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"page":       analysis.QueryTransactions(result.Transactions, q),
		"categories": analysis.Categories(result.Transactions),
	})
}

// UpdateTransaction handles PUT /api/sessions/{id}/transactions/{index}
// and returns the session with the recomputed snapshot.
func (h *SessionsHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Transaction index must be an integer")
		return
	}

	var txn domain.Transaction
	if err := json.NewDecoder(r.Body).Decode(&txn); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sess, err := h.store.ApplyEdit(chi.URLParam(r, "id"), index, txn)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	h.metrics.IncrRecalculation()

	middleware.WriteJSON(w, http.StatusOK, sess)
}

// ExportCSV handles GET /api/sessions/{id}/export.csv
func (h *SessionsHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	result, err := h.result(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(h.now())))
	w.WriteHeader(http.StatusOK)
	if err := export.WriteCSV(w, result.Transactions); err != nil {
		h.log.Warn().Err(err).Msg("Failed to write CSV export")
		return
	}
	h.metrics.IncrExport("csv")
}

type budgetsRequest struct {
	Limits map[string]float64 `json:"limits"`
}

// EvaluateBudgets handles POST /api/sessions/{id}/budgets
func (h *SessionsHandler) EvaluateBudgets(w http.ResponseWriter, r *http.Request) {
	result, err := h.result(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	var req budgetsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	budgets := analysis.EvaluateBudgets(result.CategoryBreakdown, req.Limits)
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"budgets": budgets,
		"count":   len(budgets),
	})
}

const sessionsPath = "/api/sessions"

func sessionURL(id string) string {
	return sessionsPath + "/" + id
}
