package parser

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/venuescope/pkg/analyzer"
	"github.com/umputun/venuescope/pkg/domain"
	"github.com/umputun/venuescope/pkg/parser/mocks"
	"github.com/umputun/venuescope/pkg/strategy"
	smocks "github.com/umputun/venuescope/pkg/strategy/mocks"
)

const (
	jsonLDPage = `<html><head><script type="application/ld+json">
{"@context":"https://schema.org","@type":"Event","name":"Jazz Night","startDate":"2025-11-01","location":{"name":"Main Hall"}}
</script></head><body></body></html>`

	patternPage = `<html><body><div class="event-card"><h3>Jazz Night</h3>
<span class="event-date">2025-11-01</span></div></body></html>`

	plainPage = `<html><body><p>welcome</p></body></html>`
)

// stub makes a strategy returning fixed events
func stub(name domain.Strategy, events ...domain.Event) *mocks.StrategyMock {
	return &mocks.StrategyMock{
		NameFunc: func() domain.Strategy { return name },
		ParseFunc: func(ctx context.Context, req strategy.Request) domain.Outcome {
			if len(events) == 0 {
				return domain.Failed(name, req.URL, errors.New("nothing found"))
			}
			return domain.Outcome{Events: events, Confidence: 0.9, Strategy: name, SourceURL: req.URL}
		},
	}
}

// unused makes a strategy which must never run
func unused(name domain.Strategy) *mocks.StrategyMock {
	return &mocks.StrategyMock{NameFunc: func() domain.Strategy { return name }}
}

func pageFetcher(pages map[string]string) *mocks.FetcherMock {
	return &mocks.FetcherMock{FetchTextFunc: func(ctx context.Context, url string) (string, error) {
		if body, ok := pages[url]; ok {
			return body, nil
		}
		return "", &domain.FetchError{URL: url, Err: errors.New("unexpected status code: 404")}
	}}
}

func newOrchestrator(f Fetcher, ss ...strategy.Strategy) *Orchestrator {
	return New(Config{Fetcher: f, Analyzer: analyzer.New(nil, time.Minute), Strategies: ss})
}

func TestOrchestrator_StructuredDataNoFallback(t *testing.T) {
	pageSite := &smocks.FetcherMock{}
	others := []*mocks.StrategyMock{
		unused(domain.StrategyFeed), unused(domain.StrategyAPI),
		unused(domain.StrategyHTMLPattern), unused(domain.StrategyGeneric),
	}
	ss := []strategy.Strategy{strategy.NewStructuredData(pageSite)}
	for _, s := range others {
		ss = append(ss, s)
	}
	o := newOrchestrator(pageFetcher(map[string]string{"https://hall.example": jsonLDPage}), ss...)

	res, err := o.ParseVenue(context.Background(), "https://hall.example")
	require.NoError(t, err)
	require.Len(t, res.Events, 1)
	assert.Equal(t, "Jazz Night", res.Events[0].Title)
	assert.Equal(t, domain.StrategyStructuredData, res.Strategy)
	assert.InDelta(t, strategy.StructuredDataCeiling, res.Confidence, 0.0001)
	assert.False(t, res.FallbackUsed)
	require.NotNil(t, res.Analysis)
	assert.Equal(t, domain.ReasonJSONLD, res.Analysis.Reason)
	assert.Empty(t, pageSite.FetchTextCalls(), "page html reused")
	for _, s := range others {
		assert.Empty(t, s.ParseCalls(), "fallback %s consulted", s.Name())
	}
}

func TestOrchestrator_CacheIdempotence(t *testing.T) {
	fetcher := pageFetcher(map[string]string{"https://hall.example": patternPage})
	html := stub(domain.StrategyHTMLPattern, domain.Event{Title: "Jazz Night", Date: "2025-11-01"})
	o := New(Config{Fetcher: fetcher, Analyzer: analyzer.New(nil, time.Minute), Strategies: []strategy.Strategy{html},
		CacheTTL: 100 * time.Millisecond})

	first, err := o.ParseVenue(context.Background(), "https://hall.example")
	require.NoError(t, err)
	second, err := o.ParseVenue(context.Background(), "https://hall.example")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, fetcher.FetchTextCalls(), 1)
	assert.Len(t, html.ParseCalls(), 1)
	assert.Equal(t, 1, o.CacheStats().Size)

	time.Sleep(150 * time.Millisecond)
	_, err = o.ParseVenue(context.Background(), "https://hall.example")
	require.NoError(t, err)
	assert.Len(t, fetcher.FetchTextCalls(), 2, "expired entry refetched")

	o.ClearCache()
	assert.Zero(t, o.CacheStats().Size)
}

func TestOrchestrator_Fallback(t *testing.T) {
	fetcher := pageFetcher(map[string]string{"https://hall.example": patternPage})
	html := stub(domain.StrategyHTMLPattern)
	structured := stub(domain.StrategyStructuredData)
	feed := stub(domain.StrategyFeed, domain.Event{Title: "Jazz Night", Date: "2025-11-01", Location: "Main Hall"})
	api := unused(domain.StrategyAPI)
	o := newOrchestrator(fetcher, html, structured, feed, api, unused(domain.StrategyGeneric))

	res, err := o.ParseVenue(context.Background(), "https://hall.example")
	require.NoError(t, err)
	require.Len(t, res.Events, 1)
	assert.Equal(t, domain.StrategyFeed, res.Strategy)
	assert.True(t, res.FallbackUsed)
	assert.Empty(t, res.Error)
	assert.Len(t, html.ParseCalls(), 1)
	assert.Len(t, structured.ParseCalls(), 1)
	assert.Empty(t, api.ParseCalls())

	// strategies get pre-fetched html and the analysis
	req := feed.ParseCalls()[0].Req
	assert.Equal(t, patternPage, req.HTML)
	require.NotNil(t, req.Analysis)
	assert.Equal(t, domain.ReasonEventPatterns, req.Analysis.Reason)

	assert.Greater(t, res.AdaptiveConfidence, res.Confidence)
	stats := o.LearningStats()
	require.Len(t, stats, 1)
	for _, s := range stats {
		assert.Equal(t, 1, s.Entries)
		assert.Equal(t, 1, s.Strategies[domain.StrategyFeed])
	}
}

func TestOrchestrator_AllFailed(t *testing.T) {
	fetcher := pageFetcher(map[string]string{"https://hall.example": plainPage})
	ss := []strategy.Strategy{}
	for _, name := range []domain.Strategy{domain.StrategyStructuredData, domain.StrategyFeed, domain.StrategyAPI,
		domain.StrategyHTMLPattern, domain.StrategyGeneric} {
		ss = append(ss, stub(name))
	}
	o := newOrchestrator(fetcher, ss...)

	res, err := o.ParseVenue(context.Background(), "https://hall.example")
	require.NoError(t, err)
	assert.Empty(t, res.Events)
	assert.NotNil(t, res.Events)
	assert.Zero(t, res.Confidence)
	assert.Equal(t, domain.ErrAllStrategiesFailed, res.Error)
	assert.Equal(t, domain.StrategyGeneric, res.Strategy)
	for _, s := range ss {
		assert.Len(t, s.(*mocks.StrategyMock).ParseCalls(), 1)
	}
	assert.Empty(t, o.LearningStats(), "failures are not learned")

	// failures are cached too
	_, err = o.ParseVenue(context.Background(), "https://hall.example")
	require.NoError(t, err)
	assert.Len(t, fetcher.FetchTextCalls(), 1)
}

func TestOrchestrator_PageFetchFailed(t *testing.T) {
	t.Run("api rescues", func(t *testing.T) {
		feed := stub(domain.StrategyFeed)
		api := stub(domain.StrategyAPI, domain.Event{Title: "Gala"})
		html := unused(domain.StrategyHTMLPattern)
		o := newOrchestrator(pageFetcher(nil), feed, api, html)

		res, err := o.ParseVenue(context.Background(), "https://hall.example")
		require.NoError(t, err)
		require.Len(t, res.Events, 1)
		assert.Equal(t, domain.StrategyAPI, res.Strategy)
		assert.True(t, res.FallbackUsed)
		assert.Nil(t, res.Analysis)
		assert.Empty(t, feed.ParseCalls()[0].Req.HTML)
		assert.Empty(t, html.ParseCalls())
	})

	t.Run("nothing works", func(t *testing.T) {
		o := newOrchestrator(pageFetcher(nil), stub(domain.StrategyFeed), stub(domain.StrategyAPI))
		res, err := o.ParseVenue(context.Background(), "https://hall.example")
		require.NoError(t, err)
		assert.Empty(t, res.Events)
		assert.Zero(t, res.Confidence)
		assert.Contains(t, res.Error, domain.ErrAllStrategiesFailed)
		assert.Contains(t, res.Error, "all proxies failed")
	})
}

func TestOrchestrator_InvalidURL(t *testing.T) {
	fetcher := pageFetcher(nil)
	o := newOrchestrator(fetcher)
	for _, u := range []string{"", "not a url", "ftp://hall.example", "/events"} {
		_, err := o.ParseVenue(context.Background(), u)
		var ie *domain.InvalidURLError
		require.ErrorAs(t, err, &ie, u)
	}
	assert.Empty(t, fetcher.FetchTextCalls())
}

func TestOrchestrator_ParseWithStrategy(t *testing.T) {
	t.Run("named strategy succeeds", func(t *testing.T) {
		dc := stub(domain.StrategyThingsToDoDC, domain.Event{Title: "Embassy Night"})
		fetcher := pageFetcher(nil)
		o := newOrchestrator(fetcher, dc)
		res, err := o.ParseWithStrategy(context.Background(), "https://thingstododc.com", domain.StrategyThingsToDoDC)
		require.NoError(t, err)
		assert.Equal(t, domain.StrategyThingsToDoDC, res.Strategy)
		assert.False(t, res.FallbackUsed)
		assert.Empty(t, fetcher.FetchTextCalls())
	})

	t.Run("falls back to adaptive parsing", func(t *testing.T) {
		fetcher := pageFetcher(map[string]string{"https://hall.example": patternPage})
		o := newOrchestrator(fetcher, stub(domain.StrategyThingsToDoDC),
			stub(domain.StrategyHTMLPattern, domain.Event{Title: "Jazz Night"}))
		res, err := o.ParseWithStrategy(context.Background(), "https://hall.example", domain.StrategyThingsToDoDC)
		require.NoError(t, err)
		assert.Equal(t, domain.StrategyHTMLPattern, res.Strategy)
		assert.True(t, res.FallbackUsed)
	})

	t.Run("unknown strategy", func(t *testing.T) {
		o := newOrchestrator(pageFetcher(nil))
		_, err := o.ParseWithStrategy(context.Background(), "https://hall.example", "nope")
		require.Error(t, err)
	})
}

func TestOrchestrator_ParseBatch(t *testing.T) {
	var mu sync.Mutex
	inFlight, maxInFlight := 0, 0
	fetcher := &mocks.FetcherMock{FetchTextFunc: func(ctx context.Context, url string) (string, error) {
		mu.Lock()
		inFlight++
		maxInFlight = max(maxInFlight, inFlight)
		mu.Unlock()
		time.Sleep(10 * time.Millisecond)
		mu.Lock()
		inFlight--
		mu.Unlock()
		return patternPage, nil
	}}
	o := newOrchestrator(fetcher, stub(domain.StrategyHTMLPattern, domain.Event{Title: "Jazz Night"}))

	urls := []string{"https://a.example", "https://b.example", "not a url", "https://c.example", "https://d.example"}
	res, err := o.ParseBatch(context.Background(), urls, BatchOptions{BatchSize: 2})
	require.NoError(t, err)
	require.Len(t, res, 5)
	for i, u := range urls {
		assert.Equal(t, u, res[i].SourceURL)
	}
	assert.True(t, res[0].Success())
	assert.False(t, res[2].Success())
	assert.Contains(t, res[2].Error, "invalid url")
	assert.LessOrEqual(t, maxInFlight, 2)
	assert.Len(t, fetcher.FetchTextCalls(), 4)

	_, err = o.ParseBatch(context.Background(), urls, BatchOptions{BatchSize: -1})
	require.Error(t, err)
	_, err = o.ParseBatch(context.Background(), urls, BatchOptions{BatchSize: 1, Delay: -time.Second})
	require.Error(t, err)
}

func TestOrchestrator_ParseBatchCanceled(t *testing.T) {
	o := newOrchestrator(pageFetcher(map[string]string{"https://a.example": patternPage}),
		stub(domain.StrategyHTMLPattern, domain.Event{Title: "Jazz Night"}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := o.ParseBatch(ctx, []string{"https://a.example", "https://b.example"}, BatchOptions{BatchSize: 1, Delay: time.Hour})
	require.ErrorIs(t, err, context.Canceled)
	assert.Len(t, res, 1)
}

func TestFallbackOrder(t *testing.T) {
	tests := []struct {
		reason domain.Reason
		failed domain.Strategy
		want   []domain.Strategy
	}{
		{domain.ReasonJSONLD, domain.StrategyStructuredData,
			[]domain.Strategy{domain.StrategyHTMLPattern, domain.StrategyFeed, domain.StrategyAPI, domain.StrategyGeneric}},
		{domain.ReasonFeeds, domain.StrategyFeed,
			[]domain.Strategy{domain.StrategyStructuredData, domain.StrategyHTMLPattern, domain.StrategyAPI, domain.StrategyGeneric}},
		{domain.ReasonAPI, domain.StrategyAPI,
			[]domain.Strategy{domain.StrategyFeed, domain.StrategyStructuredData, domain.StrategyHTMLPattern, domain.StrategyGeneric}},
		{domain.ReasonEventPatterns, domain.StrategyHTMLPattern,
			[]domain.Strategy{domain.StrategyStructuredData, domain.StrategyFeed, domain.StrategyAPI, domain.StrategyGeneric}},
		{domain.ReasonNoSignal, domain.StrategyGeneric,
			[]domain.Strategy{domain.StrategyStructuredData, domain.StrategyFeed, domain.StrategyAPI, domain.StrategyHTMLPattern}},
		{domain.ReasonFetchFailed, "", []domain.Strategy{domain.StrategyFeed, domain.StrategyAPI}},
	}
	for _, tt := range tests {
		t.Run(string(tt.reason), func(t *testing.T) {
			got := fallbackOrder(tt.reason, tt.failed)
			assert.Equal(t, tt.want, got)
			assert.NotContains(t, got, tt.failed)
		})
	}
}

func TestAdaptiveConfidence(t *testing.T) {
	complete := domain.Event{Title: "a", Date: "2025-11-01", Location: "Hall"}
	partial := domain.Event{Title: "b"}

	tests := []struct {
		name    string
		outcome domain.Outcome
		an      *domain.Analysis
		want    float64
	}{
		{"no events", domain.Outcome{}, &domain.Analysis{Confidence: 0.9}, 0},
		{"high analysis, one complete", domain.Outcome{Events: []domain.Event{complete}, Confidence: 0.5},
			&domain.Analysis{Confidence: 0.9}, 0.5 + 0.1 + 0.02 + 0.1},
		{"medium analysis, half complete", domain.Outcome{Events: []domain.Event{complete, partial}, Confidence: 0.5},
			&domain.Analysis{Confidence: 0.7}, 0.5 + 0.05 + 0.04 + 0.05},
		{"low analysis, count capped", domain.Outcome{Events: make([]domain.Event, 10), Confidence: 0.5},
			&domain.Analysis{Confidence: 0.2}, 0.5 + 0.1},
		{"clamped", domain.Outcome{Events: []domain.Event{complete}, Confidence: 0.95},
			&domain.Analysis{Confidence: 0.9}, 1},
		{"no analysis", domain.Outcome{Events: []domain.Event{partial}, Confidence: 0.5}, nil, 0.52},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, AdaptiveConfidence(tt.outcome, tt.an), 0.0001)
		})
	}
}

func TestLearningLog_Limit(t *testing.T) {
	l := newLearningLog(3)
	an := &domain.Analysis{CMS: domain.CMS{Type: "wordpress"}}
	for i := 0; i < 5; i++ {
		l.record(an, domain.Outcome{Strategy: domain.StrategyFeed, Confidence: 0.9, Events: []domain.Event{{Title: "a"}}})
	}
	l.record(an, domain.Outcome{Strategy: domain.StrategyAPI, Confidence: 0.3, Events: []domain.Event{{Title: "a"}}})

	stats := l.stats()
	s, ok := stats["wordpress_no_jsonld_no_feeds_no_api_no_event_classes"]
	require.True(t, ok)
	assert.Equal(t, 3, s.Entries)
	assert.Equal(t, 2, s.Strategies[domain.StrategyFeed])
	assert.Equal(t, 1, s.Strategies[domain.StrategyAPI])
	assert.InDelta(t, 0.7, s.AverageConfidence, 0.0001)
}

func TestOrchestrator_CanceledParseNotCached(t *testing.T) {
	fetcher := &mocks.FetcherMock{FetchTextFunc: func(ctx context.Context, url string) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", &domain.FetchError{URL: url, Err: err}
		}
		return jsonLDPage, nil
	}}
	o := newOrchestrator(fetcher, stub(domain.StrategyStructuredData, domain.Event{Title: "Jazz Night"}),
		stub(domain.StrategyFeed), stub(domain.StrategyAPI))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := o.ParseVenue(ctx, "https://hall.example")
	require.NoError(t, err)
	assert.Empty(t, res.Events)
	assert.Equal(t, domain.ErrorKindCanceled, res.ErrorKind)
	assert.Zero(t, o.CacheStats().Size)

	res, err = o.ParseVenue(context.Background(), "https://hall.example")
	require.NoError(t, err)
	require.Len(t, res.Events, 1)
	assert.Equal(t, "Jazz Night", res.Events[0].Title)
	assert.Len(t, fetcher.FetchTextCalls(), 2)
}

func TestOrchestrator_ErrorKinds(t *testing.T) {
	t.Run("unreachable page", func(t *testing.T) {
		o := newOrchestrator(pageFetcher(nil), stub(domain.StrategyFeed), stub(domain.StrategyAPI))
		res, err := o.ParseVenue(context.Background(), "https://hall.example")
		require.NoError(t, err)
		assert.Equal(t, domain.ErrorKindFetch, res.ErrorKind)
	})

	t.Run("no strategy found events", func(t *testing.T) {
		fetcher := pageFetcher(map[string]string{"https://hall.example": plainPage})
		o := newOrchestrator(fetcher, stub(domain.StrategyHTMLPattern), stub(domain.StrategyGeneric))
		res, err := o.ParseVenue(context.Background(), "https://hall.example")
		require.NoError(t, err)
		assert.Equal(t, domain.ErrAllStrategiesFailed, res.Error)
		assert.Equal(t, domain.ErrorKindNoEvents, res.ErrorKind)
	})
}

// siteStub is a strategy dedicated to urls containing host
type siteStub struct {
	*mocks.StrategyMock
	host string
}

func (s siteStub) Matches(pageURL string) bool { return strings.Contains(pageURL, s.host) }

func TestOrchestrator_SiteStrategy(t *testing.T) {
	dc := siteStub{StrategyMock: stub(domain.StrategyThingsToDoDC, domain.Event{Title: "Embassy Night"}), host: "thingstododc.com"}
	fetcher := pageFetcher(map[string]string{"https://hall.example": patternPage})
	o := newOrchestrator(fetcher, dc, stub(domain.StrategyHTMLPattern, domain.Event{Title: "Jazz Night"}))

	res, err := o.ParseVenue(context.Background(), "https://www.thingstododc.com/events")
	require.NoError(t, err)
	require.Len(t, res.Events, 1)
	assert.Equal(t, domain.StrategyThingsToDoDC, res.Strategy)
	assert.Empty(t, fetcher.FetchTextCalls(), "site strategy fetches on its own")

	res, err = o.ParseVenue(context.Background(), "https://hall.example")
	require.NoError(t, err)
	assert.Equal(t, domain.StrategyHTMLPattern, res.Strategy)
	assert.Len(t, dc.ParseCalls(), 1, "not tried for other sites")
}
