// Package parser is the adaptive orchestrator. It fetches a venue page once, analyzes it,
// runs the recommended strategy and walks a fallback chain picked by the reason of the
// recommendation until some strategy yields events. Outcomes are cached per url.
package parser

import (
	"context"
	"fmt"
	"time"

	"github.com/go-pkgz/lgr"
	"golang.org/x/sync/errgroup"

	"github.com/umputun/venuescope/pkg/cache"
	"github.com/umputun/venuescope/pkg/domain"
	"github.com/umputun/venuescope/pkg/strategy"
)

//go:generate moq -out mocks/fetcher.go -pkg mocks -skip-ensure -fmt goimports . Fetcher
//go:generate moq -out mocks/strategy.go -pkg mocks -skip-ensure -fmt goimports ../strategy Strategy

// Fetcher loads the venue page
type Fetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
}

// Analyzer classifies a fetched page
type Analyzer interface {
	Analyze(pageURL, html string) *domain.Analysis
}

// Config holds orchestrator dependencies and parameters
type Config struct {
	Fetcher       Fetcher
	Analyzer      Analyzer
	Strategies    []strategy.Strategy
	CacheTTL      time.Duration
	LearningLimit int          // entries kept per fingerprint
	Batch         BatchOptions // defaults of ParseBatch
}

// BatchOptions control the simple batch path
type BatchOptions struct {
	BatchSize int
	Delay     time.Duration
}

// Orchestrator runs strategies adaptively. Safe for concurrent use.
type Orchestrator struct {
	fetcher    Fetcher
	analyzer   Analyzer
	strategies map[domain.Strategy]strategy.Strategy
	sites      []siteStrategy // tried first for urls they match
	cache      *cache.TTL[domain.Outcome]
	batch      BatchOptions
	learning   *learningLog
}

type siteStrategy interface {
	strategy.Strategy
	strategy.SiteMatcher
}

// New makes an orchestrator. Zero values in cfg get defaults (10m ttl, 100 learning entries, batch 10 / 1s).
func New(cfg Config) *Orchestrator {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	if cfg.LearningLimit <= 0 {
		cfg.LearningLimit = 100
	}
	if cfg.Batch.BatchSize <= 0 {
		cfg.Batch.BatchSize = 10
	}
	if cfg.Batch.Delay < 0 {
		cfg.Batch.Delay = 0
	}
	res := &Orchestrator{
		fetcher:    cfg.Fetcher,
		analyzer:   cfg.Analyzer,
		strategies: make(map[domain.Strategy]strategy.Strategy, len(cfg.Strategies)),
		cache:      cache.NewTTL[domain.Outcome](cfg.CacheTTL),
		batch:      cfg.Batch,
		learning:   newLearningLog(cfg.LearningLimit),
	}
	for _, s := range cfg.Strategies {
		res.strategies[s.Name()] = s
		if site, ok := s.(siteStrategy); ok {
			res.sites = append(res.sites, site)
		}
	}
	return res
}

// ParseVenue returns events of a venue page. The only error is *domain.InvalidURLError,
// every other failure is reported inside the outcome.
func (o *Orchestrator) ParseVenue(ctx context.Context, pageURL string) (domain.Outcome, error) {
	if err := domain.ValidateURL(pageURL); err != nil {
		return domain.Outcome{}, err
	}
	if res, ok := o.cache.Get(pageURL); ok {
		lgr.Printf("[DEBUG] cached outcome for %s", pageURL)
		return res, nil
	}

	res := o.parse(ctx, pageURL)
	res.Settle()
	if ctx.Err() != nil {
		lgr.Printf("[DEBUG] not caching %s, parse interrupted: %v", pageURL, ctx.Err())
		return res, nil
	}
	o.cache.Set(pageURL, res)
	return res, nil
}

func (o *Orchestrator) parse(ctx context.Context, pageURL string) domain.Outcome {
	for _, site := range o.sites {
		if !site.Matches(pageURL) {
			continue
		}
		if res := o.run(ctx, site.Name(), strategy.Request{URL: pageURL}); res.Success() {
			lgr.Printf("[INFO] parsed %s with site strategy %s: %d events", pageURL, res.Strategy, len(res.Events))
			return res
		}
	}

	html, err := o.fetcher.FetchText(ctx, pageURL)
	if err != nil {
		lgr.Printf("[WARN] can't fetch %s, trying feed and api: %v", pageURL, err)
		req := strategy.Request{URL: pageURL}
		if res, ok := o.walk(ctx, req, fallbackOrder(domain.ReasonFetchFailed, "")); ok {
			res.FallbackUsed = true
			return res
		}
		return domain.Failed("", pageURL, fmt.Errorf("%w: %w", domain.ErrNoEvents, err))
	}

	an := o.analyzer.Analyze(pageURL, html)
	req := strategy.Request{URL: pageURL, HTML: html, Analysis: an}

	recommended := an.Recommended
	res := o.run(ctx, recommended, req)
	if !res.Success() {
		lgr.Printf("[DEBUG] %s gave no events for %s, walking fallbacks for %s", recommended, pageURL, an.Reason)
		fb, ok := o.walk(ctx, req, fallbackOrder(an.Reason, recommended))
		if !ok {
			failed := domain.Failed(recommended, pageURL, domain.ErrNoEvents)
			failed.Analysis = an
			return failed
		}
		fb.FallbackUsed = true
		res = fb
	}

	res.Analysis = an
	res.AdaptiveConfidence = AdaptiveConfidence(res, an)
	o.learning.record(an, res)
	lgr.Printf("[INFO] parsed %s with %s: %d events, confidence %.2f", pageURL, res.Strategy, len(res.Events), res.Confidence)
	return res
}

// walk runs strategies in order and returns the first outcome with events
func (o *Orchestrator) walk(ctx context.Context, req strategy.Request, order []domain.Strategy) (domain.Outcome, bool) {
	for _, name := range order {
		if ctx.Err() != nil {
			return domain.Outcome{}, false
		}
		if res := o.run(ctx, name, req); res.Success() {
			return res, true
		}
	}
	return domain.Outcome{}, false
}

func (o *Orchestrator) run(ctx context.Context, name domain.Strategy, req strategy.Request) domain.Outcome {
	s, ok := o.strategies[name]
	if !ok {
		return domain.Failed(name, req.URL, fmt.Errorf("strategy %s is not registered", name))
	}
	res := s.Parse(ctx, req)
	res.Settle()
	if res.Error != "" {
		lgr.Printf("[DEBUG] strategy %s on %s: %s", name, req.URL, res.Error)
	}
	return res
}

// ParseWithStrategy runs the named strategy first and falls back to adaptive parsing when it finds nothing
func (o *Orchestrator) ParseWithStrategy(ctx context.Context, pageURL string, name domain.Strategy) (domain.Outcome, error) {
	if err := domain.ValidateURL(pageURL); err != nil {
		return domain.Outcome{}, err
	}
	if _, ok := o.strategies[name]; !ok {
		return domain.Outcome{}, fmt.Errorf("unknown strategy %q", name)
	}
	res := o.run(ctx, name, strategy.Request{URL: pageURL})
	if res.Success() {
		return res, nil
	}
	lgr.Printf("[INFO] %s found nothing on %s, using adaptive parsing", name, pageURL)
	res, err := o.ParseVenue(ctx, pageURL)
	if err != nil {
		return domain.Outcome{}, err
	}
	res.FallbackUsed = true
	return res, nil
}

// ParseBatch parses urls in sequential chunks, urls of a chunk in parallel, pausing between chunks.
// Zero options use the orchestrator defaults. Invalid urls give failed outcomes, in input order.
func (o *Orchestrator) ParseBatch(ctx context.Context, urls []string, opts BatchOptions) ([]domain.Outcome, error) {
	if opts == (BatchOptions{}) {
		opts = o.batch
	}
	if opts.BatchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", opts.BatchSize)
	}
	if opts.Delay < 0 {
		return nil, fmt.Errorf("batch delay must be non-negative, got %v", opts.Delay)
	}

	res := make([]domain.Outcome, len(urls))
	for start := 0; start < len(urls); start += opts.BatchSize {
		if start > 0 && opts.Delay > 0 {
			select {
			case <-ctx.Done():
				return res[:start], ctx.Err()
			case <-time.After(opts.Delay):
			}
		}
		end := min(start+opts.BatchSize, len(urls))

		var g errgroup.Group
		for i := start; i < end; i++ {
			g.Go(func() error {
				out, err := o.ParseVenue(ctx, urls[i])
				if err != nil {
					out = domain.Failed("", urls[i], err)
					out.Settle()
				}
				res[i] = out
				return nil
			})
		}
		_ = g.Wait()
		lgr.Printf("[DEBUG] batch chunk %d-%d of %d done", start+1, end, len(urls))
	}
	return res, nil
}

// LearningStats summarizes successful strategies per signal fingerprint
func (o *Orchestrator) LearningStats() map[string]LearningSummary {
	return o.learning.stats()
}

// CacheStats returns the state of the outcome cache
func (o *Orchestrator) CacheStats() cache.Stats {
	return o.cache.Stats()
}

// ClearCache drops cached outcomes
func (o *Orchestrator) ClearCache() {
	o.cache.Clear()
}
