package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/venuescope/pkg/bulk"
	"github.com/umputun/venuescope/pkg/domain"
	"github.com/umputun/venuescope/pkg/parser"
	"github.com/umputun/venuescope/pkg/repository"
)

// batch modes, bulk is the default
const (
	batchModeBulk   = "bulk"
	batchModeSimple = "simple"
)

// batchRequest is the json form of a batch start request, a plain text body is taken as Text
type batchRequest struct {
	Text          string `json:"text"`
	Mode          string `json:"mode"`
	BatchSize     int    `json:"batch_size"`
	DelayMs       int    `json:"delay_ms"`
	MaxConcurrent int    `json:"max_concurrent"`
}

// bulkOptions fills unset fields from processor defaults, all unset means processor defaults
func (req batchRequest) bulkOptions() (bulk.Options, error) {
	if req.BatchSize == 0 && req.DelayMs == 0 && req.MaxConcurrent == 0 {
		return bulk.Options{}, nil
	}
	opts := bulk.DefaultOptions
	if req.BatchSize != 0 {
		opts.BatchSize = req.BatchSize
	}
	if req.DelayMs != 0 {
		opts.Delay = time.Duration(req.DelayMs) * time.Millisecond
	}
	if req.MaxConcurrent != 0 {
		opts.MaxConcurrent = req.MaxConcurrent
	}
	if opts.BatchSize <= 0 || opts.MaxConcurrent <= 0 || opts.Delay < 0 {
		return opts, errors.New("batch_size and max_concurrent must be positive, delay_ms non-negative")
	}
	return opts, nil
}

// simpleOptions maps the request to the fixed chunk path, all unset means orchestrator defaults
func (req batchRequest) simpleOptions() (parser.BatchOptions, error) {
	if req.MaxConcurrent != 0 {
		return parser.BatchOptions{}, errors.New("max_concurrent is not supported in simple mode")
	}
	opts := parser.BatchOptions{BatchSize: req.BatchSize, Delay: time.Duration(req.DelayMs) * time.Millisecond}
	if opts == (parser.BatchOptions{}) {
		return opts, nil
	}
	if opts.BatchSize <= 0 || opts.Delay < 0 {
		return opts, errors.New("batch_size must be positive, delay_ms non-negative")
	}
	return opts, nil
}

// batchAccepted is the response of a started batch run
type batchAccepted struct {
	Accepted int                 `json:"accepted"`
	Invalid  []domain.InvalidURL `json:"invalid_urls"`
}

// startBatchHandler parses the url list and starts a bulk run in background.
// The finished report is stored, clients poll GET /batch and GET /runs.
func (s *Server) startBatchHandler(w http.ResponseWriter, r *http.Request) {
	req, err := decodeBatchRequest(r)
	if err != nil {
		renderError(w, r, err, http.StatusBadRequest)
		return
	}

	list := bulk.ParseURLList(req.Text)
	if len(list.Valid) == 0 {
		renderJSON(w, r, http.StatusBadRequest, map[string]any{"error": "no valid urls", "invalid_urls": list.Invalid})
		return
	}

	var run func(ctx context.Context)
	switch req.Mode {
	case "", batchModeBulk:
		opts, err := req.bulkOptions()
		if err != nil {
			renderError(w, r, err, http.StatusBadRequest)
			return
		}
		run = func(ctx context.Context) { s.runBatch(ctx, list.Valid, opts) }
	case batchModeSimple:
		opts, err := req.simpleOptions()
		if err != nil {
			renderError(w, r, err, http.StatusBadRequest)
			return
		}
		run = func(ctx context.Context) { s.runSimpleBatch(ctx, list.Valid, opts) }
	default:
		renderError(w, r, fmt.Errorf("unknown batch mode %q", req.Mode), http.StatusBadRequest)
		return
	}

	if !s.batchActive.CompareAndSwap(false, true) {
		renderError(w, r, bulk.ErrRunInProgress, http.StatusConflict)
		return
	}

	s.lock.Lock()
	ctx := s.runCtx
	s.lock.Unlock()

	s.batchWG.Add(1)
	go func() {
		defer s.batchWG.Done()
		defer s.batchActive.Store(false)
		run(ctx)
	}()

	lgr.Printf("[INFO] batch of %d urls accepted, %d invalid, mode %q", len(list.Valid), len(list.Invalid), req.Mode)
	renderJSON(w, r, http.StatusAccepted, batchAccepted{Accepted: len(list.Valid), Invalid: list.Invalid})
}

// runBatch runs a bulk parse and stores its report
func (s *Server) runBatch(ctx context.Context, urls []string, opts bulk.Options) {
	report, err := s.batch.Run(ctx, urls, opts)
	if err != nil {
		lgr.Printf("[WARN] batch run failed: %v", err)
		return
	}
	s.storeRun(ctx, report)
}

// runSimpleBatch parses urls in fixed chunks and stores the report of whatever was parsed
func (s *Server) runSimpleBatch(ctx context.Context, urls []string, opts parser.BatchOptions) {
	started := time.Now()
	outs, err := s.parser.ParseBatch(ctx, urls, opts)
	if err != nil && len(outs) == 0 {
		lgr.Printf("[WARN] simple batch run failed: %v", err)
		return
	}
	s.storeRun(ctx, bulk.NewReport(urls, outs, started, time.Now()))
}

func (s *Server) storeRun(ctx context.Context, report *domain.Report) {
	// store even if ctx is done, the run itself is over
	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()
	if err := s.runs.SaveRun(storeCtx, report); err != nil {
		lgr.Printf("[ERROR] can't save run %s: %v", report.ID, err)
	}
	lgr.Printf("[INFO] batch run %s finished, %d/%d successful, %d events",
		report.ID, report.Summary.Successful, report.Summary.TotalProcessed, report.Summary.TotalEvents)
}

// batchStatusHandler returns the current or last run status
func (s *Server) batchStatusHandler(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, r, http.StatusOK, s.batch.Status())
}

// stopBatchHandler asks the active run to stop after the current chunk
func (s *Server) stopBatchHandler(w http.ResponseWriter, r *http.Request) {
	s.batch.Stop()
	renderJSON(w, r, http.StatusOK, map[string]any{"stopping": s.batch.Status().Processing})
}

// listRunsHandler lists stored runs, newest first
func (s *Server) listRunsHandler(w http.ResponseWriter, r *http.Request) {
	limit, err := limitParam(r)
	if err != nil {
		renderError(w, r, err, http.StatusBadRequest)
		return
	}
	runs, err := s.runs.ListRuns(r.Context(), limit)
	if err != nil {
		lgr.Printf("[ERROR] failed to list runs: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	renderJSON(w, r, http.StatusOK, runs)
}

// getRunHandler returns a stored run report
func (s *Server) getRunHandler(w http.ResponseWriter, r *http.Request) {
	report, ok := s.loadRun(w, r)
	if !ok {
		return
	}
	renderJSON(w, r, http.StatusOK, report)
}

// exportRunHandler sends a stored run report as json or csv attachment
func (s *Server) exportRunHandler(w http.ResponseWriter, r *http.Request) {
	report, ok := s.loadRun(w, r)
	if !ok {
		return
	}

	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = bulk.FormatJSON
	}
	data, err := bulk.Export(report, format)
	if err != nil {
		renderError(w, r, err, http.StatusBadRequest)
		return
	}

	contentType := "application/json"
	if format == bulk.FormatCSV {
		contentType = "text/csv; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "run-"+report.ID+"."+format))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		lgr.Printf("[WARN] can't write export of %s: %v", report.ID, err)
	}
}

func (s *Server) loadRun(w http.ResponseWriter, r *http.Request) (*domain.Report, bool) {
	id := r.PathValue("id")
	report, err := s.runs.GetRun(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		renderError(w, r, err, http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		lgr.Printf("[ERROR] failed to get run %s: %v", id, err)
		renderError(w, r, err, http.StatusInternalServerError)
		return nil, false
	}
	return report, true
}

func decodeBatchRequest(r *http.Request) (batchRequest, error) {
	var req batchRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, fmt.Errorf("invalid request body: %w", err)
		}
		return req, nil
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return req, fmt.Errorf("read request body: %w", err)
	}
	req.Text = string(body)
	return req, nil
}
