package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/venuescope/pkg/bulk"
	"github.com/umputun/venuescope/pkg/domain"
	"github.com/umputun/venuescope/pkg/parser"
	"github.com/umputun/venuescope/pkg/repository"
	"github.com/umputun/venuescope/server/mocks"
)

func testRunReport(id string) *domain.Report {
	return &domain.Report{
		ID:      id,
		Summary: domain.Summary{TotalProcessed: 2, Successful: 1, Failed: 1, SuccessRate: 50, TotalEvents: 2},
		Results: []domain.URLResult{
			{URL: "https://a.com", Success: true, Outcome: domain.Outcome{Strategy: domain.StrategyFeed, Confidence: 0.9,
				Events: []domain.Event{{Title: "x"}, {Title: "y"}}}},
			{URL: "https://b.com", Outcome: domain.Outcome{Error: "all parsing methods failed"}},
		},
	}
}

func TestServer_startBatchHandler(t *testing.T) {
	t.Run("plain text body with defaults", func(t *testing.T) {
		report := testRunReport("run-1")
		saved := make(chan struct{})
		deps := testDeps()
		br := &mocks.BatchRunnerMock{RunFunc: func(ctx context.Context, urls []string, opts bulk.Options) (*domain.Report, error) {
			return report, nil
		}}
		rs := &mocks.RunStoreMock{SaveRunFunc: func(ctx context.Context, r *domain.Report) error {
			close(saved)
			return nil
		}}
		deps.Batch, deps.Runs = br, rs
		srv := New(deps, "1.0.0", false)

		w := serve(t, srv, "POST", "/api/v1/batch", "https://a.com\n# comment\nnot a url\nhttps://b.com\n")
		require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
		var resp batchAccepted
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 2, resp.Accepted)
		require.Len(t, resp.Invalid, 1)
		assert.Equal(t, "not a url", resp.Invalid[0].URL)

		select {
		case <-saved:
		case <-time.After(2 * time.Second):
			t.Fatal("run was not stored")
		}
		srv.batchWG.Wait()

		require.Len(t, br.RunCalls(), 1)
		assert.Equal(t, []string{"https://a.com", "https://b.com"}, br.RunCalls()[0].Urls)
		assert.Equal(t, bulk.Options{}, br.RunCalls()[0].Opts, "zero options mean processor defaults")
		require.Len(t, rs.SaveRunCalls(), 1)
		assert.Equal(t, "run-1", rs.SaveRunCalls()[0].Report.ID)
		assert.False(t, srv.batchActive.Load())
	})

	t.Run("json body with options", func(t *testing.T) {
		deps := testDeps()
		br := &mocks.BatchRunnerMock{RunFunc: func(ctx context.Context, urls []string, opts bulk.Options) (*domain.Report, error) {
			return nil, errors.New("run failed")
		}}
		rs := &mocks.RunStoreMock{}
		deps.Batch, deps.Runs = br, rs
		srv := New(deps, "1.0.0", false)

		w := serve(t, srv, "POST", "/api/v1/batch", `{"text":"https://a.com","batch_size":3,"delay_ms":0,"max_concurrent":2}`)
		require.Equal(t, http.StatusAccepted, w.Code)
		srv.batchWG.Wait()

		require.Len(t, br.RunCalls(), 1)
		opts := br.RunCalls()[0].Opts
		assert.Equal(t, 3, opts.BatchSize)
		assert.Equal(t, 2, opts.MaxConcurrent)
		assert.Equal(t, bulk.DefaultOptions.Delay, opts.Delay)
		assert.Equal(t, bulk.DefaultOptions.GroupPause, opts.GroupPause)
		assert.Empty(t, rs.SaveRunCalls(), "failed run is not stored")
	})

	t.Run("simple mode", func(t *testing.T) {
		saved := make(chan *domain.Report, 1)
		deps := testDeps()
		pm := &mocks.ParserMock{ParseBatchFunc: func(ctx context.Context, urls []string, opts parser.BatchOptions) ([]domain.Outcome, error) {
			return []domain.Outcome{
				{Strategy: domain.StrategyStructuredData, Confidence: 0.9, Events: []domain.Event{{Title: "x"}}},
				domain.Failed("", urls[1], domain.ErrNoEvents),
			}, nil
		}}
		br := &mocks.BatchRunnerMock{}
		rs := &mocks.RunStoreMock{SaveRunFunc: func(ctx context.Context, r *domain.Report) error {
			saved <- r
			return nil
		}}
		deps.Parser, deps.Batch, deps.Runs = pm, br, rs
		srv := New(deps, "1.0.0", false)

		w := serve(t, srv, "POST", "/api/v1/batch", `{"text":"https://a.com\nhttps://b.com","mode":"simple","batch_size":5}`)
		require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
		srv.batchWG.Wait()

		require.Len(t, pm.ParseBatchCalls(), 1)
		assert.Equal(t, []string{"https://a.com", "https://b.com"}, pm.ParseBatchCalls()[0].Urls)
		assert.Equal(t, parser.BatchOptions{BatchSize: 5}, pm.ParseBatchCalls()[0].Opts)
		assert.Empty(t, br.RunCalls(), "bulk processor not used")

		report := <-saved
		assert.Equal(t, 2, report.Summary.TotalProcessed)
		assert.Equal(t, 1, report.Summary.Successful)
		assert.Equal(t, 1, report.ErrorTypes[string(domain.ErrorKindNoEvents)])
		assert.Equal(t, "https://b.com", report.Results[1].URL)
	})

	t.Run("run in progress", func(t *testing.T) {
		release := make(chan struct{})
		deps := testDeps()
		deps.Batch = &mocks.BatchRunnerMock{RunFunc: func(ctx context.Context, urls []string, opts bulk.Options) (*domain.Report, error) {
			<-release
			return nil, bulk.ErrRunInProgress
		}}
		srv := New(deps, "1.0.0", false)

		w := serve(t, srv, "POST", "/api/v1/batch", "https://a.com")
		require.Equal(t, http.StatusAccepted, w.Code)

		w = serve(t, srv, "POST", "/api/v1/batch", "https://b.com")
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "already in progress")

		close(release)
		srv.batchWG.Wait()
	})

	t.Run("rejected", func(t *testing.T) {
		deps := testDeps()
		br := &mocks.BatchRunnerMock{}
		deps.Batch = br
		srv := New(deps, "1.0.0", false)

		w := serve(t, srv, "POST", "/api/v1/batch", "nothing here\n\n")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "no valid urls")

		w = serve(t, srv, "POST", "/api/v1/batch", `{"text":"https://a.com","batch_size":-1}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = serve(t, srv, "POST", "/api/v1/batch", `{"text":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = serve(t, srv, "POST", "/api/v1/batch", `{"text":"https://a.com","mode":"fast"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "unknown batch mode")

		w = serve(t, srv, "POST", "/api/v1/batch", `{"text":"https://a.com","mode":"simple","max_concurrent":3}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, br.RunCalls())
	})
}

func TestServer_batchStatusAndStop(t *testing.T) {
	processing := true
	deps := testDeps()
	br := &mocks.BatchRunnerMock{
		StatusFunc: func() bulk.Status {
			return bulk.Status{RunID: "run-7", Processing: processing, Total: 10, ResultsCount: 4}
		},
		StopFunc: func() { processing = false },
	}
	deps.Batch = br
	srv := New(deps, "1.0.0", false)

	w := serve(t, srv, "GET", "/api/v1/batch", "")
	require.Equal(t, http.StatusOK, w.Code)
	var st bulk.Status
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	assert.Equal(t, "run-7", st.RunID)
	assert.True(t, st.Processing)
	assert.Equal(t, 4, st.ResultsCount)

	w = serve(t, srv, "POST", "/api/v1/batch/stop", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"stopping":false}`, w.Body.String())
	assert.Len(t, br.StopCalls(), 1)
}

func TestServer_runsHandlers(t *testing.T) {
	rs := &mocks.RunStoreMock{
		ListRunsFunc: func(ctx context.Context, limit int) ([]domain.RunInfo, error) {
			return []domain.RunInfo{{ID: "run-2"}, {ID: "run-1"}}, nil
		},
		GetRunFunc: func(ctx context.Context, id string) (*domain.Report, error) {
			switch id {
			case "run-1":
				return testRunReport("run-1"), nil
			case "broken":
				return nil, errors.New("db error")
			}
			return nil, fmt.Errorf("run %s: %w", id, repository.ErrNotFound)
		},
	}
	deps := testDeps()
	deps.Runs = rs
	srv := New(deps, "1.0.0", false)

	t.Run("list", func(t *testing.T) {
		w := serve(t, srv, "GET", "/api/v1/runs?limit=10", "")
		require.Equal(t, http.StatusOK, w.Code)
		var runs []domain.RunInfo
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &runs))
		require.Len(t, runs, 2)
		assert.Equal(t, "run-2", runs[0].ID)
		assert.Equal(t, 10, rs.ListRunsCalls()[0].Limit)
	})

	t.Run("get", func(t *testing.T) {
		w := serve(t, srv, "GET", "/api/v1/runs/run-1", "")
		require.Equal(t, http.StatusOK, w.Code)
		var report domain.Report
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
		assert.Equal(t, 2, report.Summary.TotalEvents)

		w = serve(t, srv, "GET", "/api/v1/runs/missing", "")
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = serve(t, srv, "GET", "/api/v1/runs/broken", "")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("export csv", func(t *testing.T) {
		w := serve(t, srv, "GET", "/api/v1/runs/run-1/export?format=CSV", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="run-run-1.csv"`, w.Header().Get("Content-Disposition"))
		lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
		require.Len(t, lines, 3)
		assert.Equal(t, "URL,Success,Events Found,Confidence,Method,Error", lines[0])
		assert.Equal(t, `"https://a.com","Yes","2","0.9","feed",""`, lines[1])
	})

	t.Run("export json default", func(t *testing.T) {
		w := serve(t, srv, "GET", "/api/v1/runs/run-1/export", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		var report domain.Report
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
		assert.Equal(t, "run-1", report.ID)
	})

	t.Run("export unsupported", func(t *testing.T) {
		w := serve(t, srv, "GET", "/api/v1/runs/run-1/export?format=xml", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "unsupported export format")

		w = serve(t, srv, "GET", "/api/v1/runs/missing/export?format=csv", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
