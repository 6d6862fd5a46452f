package analyzer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/venuescope/pkg/analyzer/mocks"
	"github.com/umputun/venuescope/pkg/domain"
)

func TestAnalyzer_Analyze_Recommendation(t *testing.T) {
	tests := []struct {
		name       string
		html       string
		wantStrat  domain.Strategy
		wantReason domain.Reason
	}{
		{
			name: "json-ld wins",
			html: `<html><head><script type="application/ld+json">{"@type":"Event","name":"Jazz"}</script>
				<link rel="alternate" type="application/rss+xml" href="/events.rss"></head>
				<body><div class="event">Oct 12, 2025</div></body></html>`,
			wantStrat:  domain.StrategyStructuredData,
			wantReason: domain.ReasonJSONLD,
		},
		{
			name: "declared feed",
			html: `<html><head><link rel="alternate" type="application/atom+xml" href="/atom.xml"></head>
				<body><div class="event">Oct 12, 2025</div></body></html>`,
			wantStrat:  domain.StrategyFeed,
			wantReason: domain.ReasonFeeds,
		},
		{
			name:       "fetch call site",
			html:       `<html><body><script>fetch("/api/events?limit=10").then(r => r.json())</script></body></html>`,
			wantStrat:  domain.StrategyAPI,
			wantReason: domain.ReasonAPI,
		},
		{
			name: "event classes and dates",
			html: `<html><body><ul><li class="upcoming-event-item"><h3>Blues Night</h3>
				<span class="when">Saturday, Oct 11, 2025</span></li></ul></body></html>`,
			wantStrat:  domain.StrategyHTMLPattern,
			wantReason: domain.ReasonEventPatterns,
		},
		{
			name:       "event classes without dates",
			html:       `<html><body><div class="event">Blues Night</div></body></html>`,
			wantStrat:  domain.StrategyGeneric,
			wantReason: domain.ReasonNoSignal,
		},
		{
			name:       "broken json-ld is skipped",
			html:       `<script type="application/ld+json">{"@type": "Event",</script><p>hello</p>`,
			wantStrat:  domain.StrategyGeneric,
			wantReason: domain.ReasonNoSignal,
		},
		{
			name:       "empty page",
			html:       "",
			wantStrat:  domain.StrategyGeneric,
			wantReason: domain.ReasonNoSignal,
		},
	}

	a := New(nil, time.Minute)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := a.Analyze("https://venue.example/events", tt.html)
			assert.Equal(t, tt.wantStrat, res.Recommended)
			assert.Equal(t, tt.wantReason, res.Reason)
			assert.GreaterOrEqual(t, res.Confidence, 0.0)
			assert.LessOrEqual(t, res.Confidence, 1.0)
		})
	}
}

func TestAnalyzer_HTMLPatternWithoutOtherSignals(t *testing.T) {
	// pages with event classes and dates but no json-ld, feed link or api call always go to html pattern
	dates := []string{"10/12/2025", "2025-10-12", "October 12, 2025", "Sunday"}
	classes := []string{"event", "event-card", "my-events", "special-event-row"}
	a := New(nil, time.Minute)
	for _, d := range dates {
		for _, c := range classes {
			html := `<div class="` + c + `"><h2>Show</h2><p>` + d + `</p></div>`
			res := a.Analyze("https://venue.example", html)
			assert.Equal(t, domain.StrategyHTMLPattern, res.Recommended, "class %q date %q", c, d)
		}
	}
}

func TestAnalyzer_EventDensity(t *testing.T) {
	frag := `<div class="event">A</div>`
	html := strings.Repeat(frag, 3)
	html += strings.Repeat(" ", 3000-len(html))
	require.Len(t, html, 3000)

	res := New(nil, time.Minute).Analyze("https://venue.example", html)
	assert.Len(t, res.EventPatterns.EventElements, 3)
	assert.Equal(t, 3000, res.Quality.ContentLength)
	assert.InDelta(t, 1.0, res.Quality.EventDensity, 0.0001)
	assert.True(t, res.Quality.HasEventElements)
}

func TestAnalyzer_StructuredData(t *testing.T) {
	html := `<html><head>
		<script type="application/ld+json">[{"@type":"Event","name":"A"},{"@type":"Event","name":"B"}, 5]</script>
		<script type='application/ld+json'>
			{"@context":"https://schema.org","@type":"Organization","name":"Club"}
		</script>
		<script type="application/ld+json">not json</script>
		<meta property="og:title" content="Club"><meta property="og:type" content="website">
		<meta name="twitter:card" content="summary">
		</head><body><div itemscope itemtype="https://schema.org/Event"></div>
		<div vocab="https://schema.org/" typeof="Event"></div></body></html>`

	res := New(nil, time.Minute).Analyze("https://venue.example", html)
	require.Len(t, res.StructuredData.JSONLD, 3)
	assert.Equal(t, "A", res.StructuredData.JSONLD[0]["name"])
	assert.Equal(t, "Organization", res.StructuredData.JSONLD[2]["@type"])
	assert.Equal(t, 1, res.StructuredData.Microdata)
	assert.Equal(t, 1, res.StructuredData.RDFa)
	assert.Equal(t, 2, res.StructuredData.OpenGraph)
	assert.Equal(t, 1, res.StructuredData.TwitterCards)
	assert.True(t, res.Quality.HasStructuredData)
}

func TestAnalyzer_FeedsAndAPIs(t *testing.T) {
	html := `<html><head>
		<link rel="alternate" type="application/rss+xml" title="Events" href="/calendar/rss">
		<link rel="alternate" type="application/rss+xml" href="/calendar/rss">
		<link rel="stylesheet" type="application/rss+xml" href="/styles/feed.xml">
		<link rel="alternate nofollow" type="application/atom+xml" href="https://cdn.venue.example/atom.xml">
		</head><body><script>
		fetch('/api/shows/upcoming'); fetch("https://venue.example/static/data.json");
		</script></body></html>`

	res := New(nil, time.Minute).Analyze("https://venue.example/events/", html)

	declared := res.DeclaredFeeds()
	require.Len(t, declared, 2, "links without rel=alternate are not feeds")
	assert.Equal(t, "https://venue.example/calendar/rss", declared[0].URL)
	assert.InDelta(t, 0.9, declared[0].Confidence, 0.0001)
	assert.Equal(t, "https://cdn.venue.example/atom.xml", declared[1].URL)
	assert.Len(t, res.Feeds, 2+len(feedPaths))
	assert.Equal(t, "https://venue.example/feed", res.Feeds[2].URL)
	assert.Equal(t, domain.CandidatePotential, res.Feeds[2].Kind)

	apis := res.DeclaredAPIs()
	require.Len(t, apis, 1)
	assert.Equal(t, "https://venue.example/api/shows/upcoming", apis[0].URL)
	assert.InDelta(t, 0.8, apis[0].Confidence, 0.0001)
	assert.Len(t, res.APIEndpoints, len(apiPaths)+1)
	assert.Equal(t, "https://venue.example/api/events", res.APIEndpoints[0].URL)
}

func TestAnalyzer_CMS(t *testing.T) {
	tests := []struct {
		html string
		want string
	}{
		{`<link href="/wp-content/themes/x.css"><script src="https://cdn.shopify.com/s.js"></script>`, "wordpress"},
		{`<script src="https://static1.squarespace.com/static/x.js"></script>`, "squarespace"},
		{`<img src="https://static.wixstatic.com/media/a.jpg">`, "wix"},
		{`<script src="//cdn.shopify.com/app.js"></script>`, "shopify"},
		{`<link href="/sites/default/files/style.css">`, "drupal"},
		{`<a href="/index.php?option=com_content">x</a><img src="/components/com_events/a.png">`, "joomla"},
		{`<p>plain page</p>`, "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			res := detectCMS(tt.html)
			assert.Equal(t, tt.want, res.Type)
			if tt.want == "unknown" {
				assert.InDelta(t, 0.1, res.Confidence, 0.0001)
				return
			}
			assert.InDelta(t, 0.8, res.Confidence, 0.0001)
		})
	}
}

func TestAnalyzer_Patterns(t *testing.T) {
	html := `<div class="event-list"><div class="calendar-day">
		<span class="venue-name">Main Hall</span><span class="ticket-price">$25.00</span>
		<time>7:30 PM</time> doors 19:00, ends at midnight, 12/31/2025</div></div>`

	p := New(nil, time.Minute).Analyze("https://venue.example", html).EventPatterns
	assert.Equal(t, []string{`class="event-list"`, `class="calendar-day"`}, p.EventClasses)
	assert.Contains(t, p.Dates, "12/31/2025")
	assert.Contains(t, p.Times, "7:30 PM")
	assert.Contains(t, p.Times, "19:00")
	assert.Contains(t, p.Times, "midnight")
	assert.Equal(t, []string{`class="venue-name"`}, p.Locations)
	assert.Contains(t, p.Prices, "$25.00")
	assert.Contains(t, p.Prices, `class="ticket-price"`)
	assert.Len(t, p.EventElements, 1)
}

func TestConfidence(t *testing.T) {
	t.Run("monotonic", func(t *testing.T) {
		an := &domain.Analysis{}
		prev := Confidence(an)
		assert.Zero(t, prev)

		steps := []func(){
			func() { an.EventPatterns.EventClasses = []string{"x"} },
			func() { an.EventPatterns.Dates = []string{"x"} },
			func() { an.Quality.HasLocationInfo = true },
			func() { an.Feeds = []domain.Candidate{{Kind: domain.CandidateDeclared}} },
			func() { an.StructuredData.JSONLD = []map[string]any{{}} },
			func() { an.StructuredData.Microdata = 3 },
			func() { an.StructuredData.RDFa = 1 },
		}
		for i, step := range steps {
			step()
			cur := Confidence(an)
			assert.GreaterOrEqual(t, cur, prev, "step %d", i)
			prev = cur
		}
		assert.InDelta(t, 1.0, prev, 0.0001, "clamped")
	})

	t.Run("potential candidates don't count", func(t *testing.T) {
		an := &domain.Analysis{
			Feeds:        []domain.Candidate{{Kind: domain.CandidatePotential}},
			APIEndpoints: []domain.Candidate{{Kind: domain.CandidatePotential}},
		}
		assert.Zero(t, Confidence(an))
	})
}

func TestFingerprint(t *testing.T) {
	an := &domain.Analysis{
		CMS:            domain.CMS{Type: "wordpress"},
		StructuredData: domain.StructuredData{JSONLD: []map[string]any{{}}},
		EventPatterns:  domain.EventPatterns{EventClasses: []string{"x"}},
		Feeds:          []domain.Candidate{{Kind: domain.CandidatePotential}},
	}
	assert.Equal(t, "wordpress_has_jsonld_no_feeds_no_api_has_event_classes", Fingerprint(an))
	assert.Equal(t, "unknown_no_jsonld_no_feeds_no_api_no_event_classes", Fingerprint(&domain.Analysis{}))
}

func TestAnalyzer_AnalyzeURL(t *testing.T) {
	fetcher := &mocks.FetcherMock{FetchTextFunc: func(ctx context.Context, url string) (string, error) {
		if url == "https://down.example" {
			return "", errors.New("all proxies failed")
		}
		return `<div class="event">Oct 12, 2025</div>`, nil
	}}
	a := New(fetcher, time.Minute)

	res, err := a.AnalyzeURL(context.Background(), "https://venue.example")
	require.NoError(t, err)
	assert.Equal(t, domain.StrategyHTMLPattern, res.Recommended)

	res2, err := a.AnalyzeURL(context.Background(), "https://venue.example")
	require.NoError(t, err)
	assert.Same(t, res, res2)
	assert.Len(t, fetcher.FetchTextCalls(), 1, "second call served from cache")
	assert.Equal(t, 1, a.CacheStats().Size)

	_, err = a.AnalyzeURL(context.Background(), "https://down.example")
	require.Error(t, err)

	_, err = a.AnalyzeURL(context.Background(), "not a url")
	var invalid *domain.InvalidURLError
	require.ErrorAs(t, err, &invalid)
	assert.Len(t, fetcher.FetchTextCalls(), 2, "invalid url never fetched")

	a.ClearCache()
	assert.Zero(t, a.CacheStats().Size)
}
