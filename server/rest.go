package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/umputun/venuescope/pkg/domain"
)

const defaultListLimit = 50

// parseRequest is the body of parse and analyze requests
type parseRequest struct {
	URL      string          `json:"url"`
	Strategy domain.Strategy `json:"strategy,omitempty"`
}

// statusHandler returns server status
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"status":        "ok",
		"version":       s.version,
		"time":          time.Now().UTC(),
		"is_processing": s.batch.Status().Processing,
		"cache":         s.parser.CacheStats(),
	}
	renderJSON(w, r, http.StatusOK, status)
}

// parseHandler parses a single venue, with an optional forced strategy
func (s *Server) parseHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeParseRequest(w, r)
	if !ok {
		return
	}

	var out domain.Outcome
	var err error
	if req.Strategy != "" {
		out, err = s.parser.ParseWithStrategy(r.Context(), req.URL, req.Strategy)
	} else {
		out, err = s.parser.ParseVenue(r.Context(), req.URL)
	}
	if err != nil {
		renderError(w, r, err, http.StatusBadRequest)
		return
	}
	renderJSON(w, r, http.StatusOK, out)
}

// analyzeHandler returns the content analysis of a page without parsing it
func (s *Server) analyzeHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeParseRequest(w, r)
	if !ok {
		return
	}

	res, err := s.analyzer.AnalyzeURL(r.Context(), req.URL)
	if err != nil {
		var invalid *domain.InvalidURLError
		var fetchErr *domain.FetchError
		switch {
		case errors.As(err, &invalid):
			renderError(w, r, err, http.StatusBadRequest)
		case errors.As(err, &fetchErr):
			renderError(w, r, err, http.StatusBadGateway)
		default:
			renderError(w, r, err, http.StatusInternalServerError)
		}
		return
	}
	renderJSON(w, r, http.StatusOK, res)
}

// clearCacheHandler drops cached parse outcomes
func (s *Server) clearCacheHandler(w http.ResponseWriter, r *http.Request) {
	s.parser.ClearCache()
	renderJSON(w, r, http.StatusOK, map[string]any{"cleared": true})
}

// learningHandler returns learning log summaries per fingerprint
func (s *Server) learningHandler(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, r, http.StatusOK, s.parser.LearningStats())
}

// gatewayHandler returns proxy rotation tallies
func (s *Server) gatewayHandler(w http.ResponseWriter, r *http.Request) {
	st := s.gateway.Stats()
	renderJSON(w, r, http.StatusOK, map[string]any{
		"stats":           st,
		"failing_proxies": st.SortedFailures(),
	})
}

// gatewayResetHandler clears proxy tallies
func (s *Server) gatewayResetHandler(w http.ResponseWriter, r *http.Request) {
	s.gateway.ResetStats()
	renderJSON(w, r, http.StatusOK, s.gateway.Stats())
}

func decodeParseRequest(w http.ResponseWriter, r *http.Request) (parseRequest, bool) {
	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, r, fmt.Errorf("invalid request body: %w", err), http.StatusBadRequest)
		return req, false
	}
	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		renderError(w, r, errors.New("url is required"), http.StatusBadRequest)
		return req, false
	}
	return req, true
}

// limitParam reads the limit query parameter, defaultListLimit if absent
func limitParam(r *http.Request) (int, error) {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return defaultListLimit, nil
	}
	limit, err := strconv.Atoi(v)
	if err != nil || limit < 0 {
		return 0, fmt.Errorf("invalid limit %q", v)
	}
	return limit, nil
}
