// Package fetch retrieves remote html and json through a rotating list of proxy endpoints.
// Each logical fetch tries every endpoint at most once, starting from the shared cursor,
// and moves the cursor forward on every failed attempt. There is no backoff between attempts.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/repeater/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/umputun/venuescope/pkg/domain"
)

// DirectEndpoint is an endpoint template fetching the target url without any proxy
const DirectEndpoint = ""

// DefaultEndpoints are public cors-bypass proxies, used when no endpoints configured
var DefaultEndpoints = []string{
	"https://api.allorigins.win/raw?url=",
	"https://cors-anywhere.herokuapp.com/",
	"https://thingproxy.freeboard.io/fetch/",
	"https://api.codetabs.com/v1/proxy?quest=",
	"https://corsproxy.io/?",
	"https://api.corsproxy.io/?",
}

const (
	defaultTimeout   = 10 * time.Second
	defaultMaxBytes  = 10 * 1024 * 1024
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

// Config defines gateway parameters
type Config struct {
	Endpoints []string      // proxy templates, target url is appended query-escaped
	Timeout   time.Duration // per attempt
	UserAgent string
	MaxBytes  int64
}

// Gateway fetches text through rotating proxy endpoints and keeps per-endpoint tallies.
// Tallies are diagnostics only, they don't change the rotation.
type Gateway struct {
	client    *http.Client
	endpoints []string
	timeout   time.Duration
	userAgent string
	maxBytes  int64

	mu        sync.Mutex
	current   int
	successes map[int]int
	failures  map[int]int
	failed    map[int]bool

	attempts *prometheus.CounterVec
}

// Stats is a snapshot of gateway tallies
type Stats struct {
	TotalProxies  int            `json:"total_proxies"`
	FailedProxies int            `json:"failed_proxies"`
	SuccessCounts map[string]int `json:"success_counts"`
	FailureCounts map[string]int `json:"failure_counts"`
	CurrentProxy  int            `json:"current_proxy"`
}

// New makes a gateway. Empty endpoint list means DefaultEndpoints.
func New(cfg Config) *Gateway {
	if len(cfg.Endpoints) == 0 {
		cfg.Endpoints = DefaultEndpoints
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = defaultMaxBytes
	}

	endpoints := make([]string, len(cfg.Endpoints))
	copy(endpoints, cfg.Endpoints)

	return &Gateway{
		client: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		endpoints: endpoints,
		timeout:   cfg.Timeout,
		userAgent: cfg.UserAgent,
		maxBytes:  cfg.MaxBytes,
		successes: map[int]int{},
		failures:  map[int]int{},
		failed:    map[int]bool{},
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "venuescope",
			Subsystem: "gateway",
			Name:      "fetch_attempts_total",
			Help:      "Fetch attempts per proxy endpoint and result",
		}, []string{"endpoint", "result"}),
	}
}

// FetchText retrieves the body of target as text
func (g *Gateway) FetchText(ctx context.Context, target string) (string, error) {
	body, err := g.fetch(ctx, target, acceptHTML)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// FetchJSON retrieves target and checks the body is valid json
func (g *Gateway) FetchJSON(ctx context.Context, target string) (json.RawMessage, error) {
	body, err := g.fetch(ctx, target, acceptJSON)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("invalid json from %s", target)
	}
	return body, nil
}

// fetch walks the endpoint list starting at the cursor, at most once per endpoint
func (g *Gateway) fetch(ctx context.Context, target, accept string) ([]byte, error) {
	start := g.cursor()
	n := len(g.endpoints)
	attempt := 0
	var body []byte

	err := repeater.NewFixed(n, 0).Do(ctx, func() error {
		idx := (start + attempt) % n
		attempt++
		b, err := g.attempt(ctx, g.endpoints[idx], target, accept)
		if err != nil {
			lgr.Printf("[DEBUG] proxy %d/%d failed for %s: %v", idx+1, n, target, err)
			g.recordFailure(idx)
			return err
		}
		g.recordSuccess(idx)
		body = b
		return nil
	})
	if err != nil {
		return nil, &domain.FetchError{URL: target, Err: err}
	}
	return body, nil
}

// attempt makes a single GET through one endpoint with the per-attempt timeout
func (g *Gateway) attempt(ctx context.Context, endpoint, target, accept string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	reqURL := target
	if endpoint != DirectEndpoint {
		reqURL = endpoint + url.QueryEscape(target)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", g.userAgent)
	addBrowserHeaders(req, accept)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, g.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

func (g *Gateway) cursor() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}

func (g *Gateway) recordSuccess(idx int) {
	g.mu.Lock()
	g.successes[idx]++
	delete(g.failed, idx)
	g.mu.Unlock()
	g.attempts.WithLabelValues(g.label(idx), "success").Inc()
}

// recordFailure marks the endpoint failed and moves the shared cursor past it
func (g *Gateway) recordFailure(idx int) {
	g.mu.Lock()
	g.failures[idx]++
	g.failed[idx] = true
	if g.current == idx {
		g.current = (idx + 1) % len(g.endpoints)
	}
	g.mu.Unlock()
	g.attempts.WithLabelValues(g.label(idx), "failure").Inc()
}

func (g *Gateway) label(idx int) string {
	if g.endpoints[idx] == DirectEndpoint {
		return "direct"
	}
	return g.endpoints[idx]
}

// Stats returns a snapshot of tallies keyed by endpoint template
func (g *Gateway) Stats() Stats {
	g.mu.Lock()
	defer g.mu.Unlock()

	res := Stats{
		TotalProxies:  len(g.endpoints),
		FailedProxies: len(g.failed),
		SuccessCounts: make(map[string]int, len(g.successes)),
		FailureCounts: make(map[string]int, len(g.failures)),
		CurrentProxy:  g.current,
	}
	for idx, cnt := range g.successes {
		res.SuccessCounts[g.label(idx)] = cnt
	}
	for idx, cnt := range g.failures {
		res.FailureCounts[g.label(idx)] = cnt
	}
	return res
}

// ResetStats clears tallies and rewinds the cursor
func (g *Gateway) ResetStats() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.current = 0
	g.successes = map[int]int{}
	g.failures = map[int]int{}
	g.failed = map[int]bool{}
}

// Endpoints returns configured endpoint templates in rotation order
func (g *Gateway) Endpoints() []string {
	res := make([]string, len(g.endpoints))
	copy(res, g.endpoints)
	return res
}

// Collectors returns prometheus collectors for registration by the caller
func (g *Gateway) Collectors() []prometheus.Collector {
	return []prometheus.Collector{g.attempts}
}

// SortedFailures lists endpoints with failures, most failing first
func (s Stats) SortedFailures() []string {
	res := make([]string, 0, len(s.FailureCounts))
	for k := range s.FailureCounts {
		res = append(res, k)
	}
	sort.Slice(res, func(i, j int) bool {
		if s.FailureCounts[res[i]] != s.FailureCounts[res[j]] {
			return s.FailureCounts[res[i]] > s.FailureCounts[res[j]]
		}
		return res[i] < res[j]
	})
	return res
}
