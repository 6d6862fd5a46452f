// Package analyzer inspects raw venue html and reports which extraction strategy fits it best.
// Signal families are computed independently and then combined into a weighted score
// and a recommendation. Missing signals score zero, nothing here fails on malformed html.
package analyzer

import (
	"context"
	"fmt"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/venuescope/pkg/cache"
	"github.com/umputun/venuescope/pkg/domain"
)

// weights of the aggregated confidence, in order of importance
const (
	weightJSONLD       = 0.4
	weightMicrodata    = 0.3
	weightRDFa         = 0.2
	weightEventClasses = 0.2
	weightDates        = 0.15
	weightTimes        = 0.1
	weightLocations    = 0.1
	weightFeeds        = 0.2
	weightAPI          = 0.15
	weightQualityData  = 0.1
	weightQualityEvent = 0.1
	weightQualityDate  = 0.05
	weightQualityPlace = 0.05
)

//go:generate moq -out mocks/fetcher.go -pkg mocks -skip-ensure -fmt goimports . Fetcher

// Fetcher loads page text
type Fetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
}

// Analyzer produces analysis reports and caches the ones made for fetched urls
type Analyzer struct {
	fetcher Fetcher
	cache   *cache.TTL[*domain.Analysis]
	now     func() time.Time
}

// New makes an analyzer. The fetcher is only needed for AnalyzeURL.
func New(fetcher Fetcher, ttl time.Duration) *Analyzer {
	return &Analyzer{fetcher: fetcher, cache: cache.NewTTL[*domain.Analysis](ttl), now: time.Now}
}

// Analyze builds the signal report for html fetched from pageURL
func (a *Analyzer) Analyze(pageURL, html string) *domain.Analysis {
	res := &domain.Analysis{
		URL:            pageURL,
		Timestamp:      a.now(),
		StructuredData: detectStructuredData(html),
		EventPatterns:  findEventPatterns(html),
		Feeds:          discoverFeeds(html, pageURL),
		APIEndpoints:   findAPIEndpoints(html, pageURL),
		CMS:            detectCMS(html),
		Quality:        assessQuality(html),
	}
	res.Confidence = Confidence(res)
	res.Recommended, res.Reason = Recommend(res)
	lgr.Printf("[DEBUG] analyzed %s, confidence %.2f, recommended %s (%s)", pageURL, res.Confidence, res.Recommended, res.Reason)
	return res
}

// AnalyzeURL fetches pageURL and analyzes it, reusing a fresh cached report if there is one
func (a *Analyzer) AnalyzeURL(ctx context.Context, pageURL string) (*domain.Analysis, error) {
	if err := domain.ValidateURL(pageURL); err != nil {
		return nil, err
	}
	if res, ok := a.cache.Get(pageURL); ok {
		return res, nil
	}
	if a.fetcher == nil {
		return nil, fmt.Errorf("no fetcher for %s", pageURL)
	}
	html, err := a.fetcher.FetchText(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	res := a.Analyze(pageURL, html)
	a.cache.Set(pageURL, res)
	return res, nil
}

// CacheStats returns the state of the analysis cache
func (a *Analyzer) CacheStats() cache.Stats {
	return a.cache.Stats()
}

// ClearCache drops cached reports
func (a *Analyzer) ClearCache() {
	a.cache.Clear()
}

// Confidence sums fixed weights for every signal present, clamped to 1.
// Only page-declared feeds and apis count, conventional path guesses don't.
func Confidence(an *domain.Analysis) float64 {
	var res float64
	add := func(cond bool, w float64) {
		if cond {
			res += w
		}
	}

	add(len(an.StructuredData.JSONLD) > 0, weightJSONLD)
	add(an.StructuredData.Microdata > 0, weightMicrodata)
	add(an.StructuredData.RDFa > 0, weightRDFa)

	add(len(an.EventPatterns.EventClasses) > 0, weightEventClasses)
	add(len(an.EventPatterns.Dates) > 0, weightDates)
	add(len(an.EventPatterns.Times) > 0, weightTimes)
	add(len(an.EventPatterns.Locations) > 0, weightLocations)

	add(len(an.DeclaredFeeds()) > 0, weightFeeds)
	add(len(an.DeclaredAPIs()) > 0, weightAPI)

	add(an.Quality.HasStructuredData, weightQualityData)
	add(an.Quality.HasEventElements, weightQualityEvent)
	add(an.Quality.HasDateInfo, weightQualityDate)
	add(an.Quality.HasLocationInfo, weightQualityPlace)

	return domain.Clamp(res)
}

// Recommend picks the strategy by fixed priority, first match wins
func Recommend(an *domain.Analysis) (domain.Strategy, domain.Reason) {
	switch {
	case len(an.StructuredData.JSONLD) > 0:
		return domain.StrategyStructuredData, domain.ReasonJSONLD
	case len(an.DeclaredFeeds()) > 0:
		return domain.StrategyFeed, domain.ReasonFeeds
	case len(an.DeclaredAPIs()) > 0:
		return domain.StrategyAPI, domain.ReasonAPI
	case len(an.EventPatterns.EventClasses) > 0 && len(an.EventPatterns.Dates) > 0:
		return domain.StrategyHTMLPattern, domain.ReasonEventPatterns
	default:
		return domain.StrategyGeneric, domain.ReasonNoSignal
	}
}

// Fingerprint buckets an analysis by its boolean signal combination
func Fingerprint(an *domain.Analysis) string {
	flag := func(cond bool, name string) string {
		if cond {
			return "has_" + name
		}
		return "no_" + name
	}
	cms := an.CMS.Type
	if cms == "" {
		cms = "unknown"
	}
	return cms + "_" + flag(len(an.StructuredData.JSONLD) > 0, "jsonld") + "_" + flag(len(an.DeclaredFeeds()) > 0, "feeds") +
		"_" + flag(len(an.DeclaredAPIs()) > 0, "api") + "_" + flag(len(an.EventPatterns.EventClasses) > 0, "event_classes")
}
