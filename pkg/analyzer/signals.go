package analyzer

import (
	"encoding/json"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/umputun/venuescope/pkg/domain"
)

const (
	declaredFeedConfidence  = 0.9
	potentialFeedConfidence = 0.5
	potentialAPIConfidence  = 0.6
	declaredAPIConfidence   = 0.8
	cmsMatchConfidence      = 0.8
	cmsUnknownConfidence    = 0.1
)

var (
	reJSONLD    = regexp.MustCompile(`(?is)<script[^>]*type=["']application/ld\+json["'][^>]*>(.*?)</script>`)
	reMicrodata = regexp.MustCompile(`itemscope[^>]*>`)
	reRDFa      = regexp.MustCompile(`typeof[^>]*>`)
	reOpenGraph = regexp.MustCompile(`<meta[^>]*property=["']og:[^"']*["'][^>]*>`)
	reTwitter   = regexp.MustCompile(`<meta[^>]*name=["']twitter:[^"']*["'][^>]*>`)

	reEventClass = classPattern("event")
	eventClasses = []*regexp.Regexp{
		reEventClass, classPattern("calendar"), classPattern("schedule"), classPattern("program"), classPattern("listing"),
	}
	locationClasses = []*regexp.Regexp{
		classPattern("location"), classPattern("venue"), classPattern("address"), classPattern("place"),
	}
	rePrice      = regexp.MustCompile(`\$\d+(?:\.\d{2})?`)
	priceClasses = []*regexp.Regexp{rePrice, classPattern("price"), classPattern("cost"), classPattern("ticket")}

	reSlashDate  = regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{2,4}\b`)
	reISODate    = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
	reMonthDate  = regexp.MustCompile(`(?i)\b(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+\d{1,2},?\s+\d{4}\b`)
	reWeekday    = regexp.MustCompile(`(?i)\b(?:Monday|Tuesday|Wednesday|Thursday|Friday|Saturday|Sunday)[a-z]*\b`)
	datePatterns = []*regexp.Regexp{reSlashDate, reISODate, reMonthDate, reWeekday}

	timePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{1,2}:\d{2}\s*(?:AM|PM|am|pm)\b`),
		regexp.MustCompile(`\b\d{1,2}:\d{2}\b`),
		regexp.MustCompile(`(?i)\b(?:noon|midnight)\b`),
	}

	eventElements = []*regexp.Regexp{
		elementPattern("div"), elementPattern("article"), elementPattern("li"), elementPattern("section"),
	}

	reFetchAPI = regexp.MustCompile(`fetch\(["']([^"']*/api/[^"']*)["']`)
)

// conventional paths offered as unverified candidates
var (
	feedPaths = []string{"/feed", "/rss", "/events/feed", "/calendar/feed", "/events.rss", "/feed.xml", "/rss.xml"}
	apiPaths  = []string{
		"/api/events", "/api/calendar", "/events.json", "/calendar.json",
		"/api/v1/events", "/api/v2/events", "/events/api", "/calendar/api",
	}
)

type cmsGroup struct {
	name     string
	keywords []string
}

// first match wins, order matters
var cmsGroups = []cmsGroup{
	{name: "wordpress", keywords: []string{"wp-content", "wp-includes", "wordpress", "wp-json"}},
	{name: "squarespace", keywords: []string{"squarespace", "sqs", "squarespace.com"}},
	{name: "wix", keywords: []string{"wix.com", "wixstatic", "wix"}},
	{name: "shopify", keywords: []string{"shopify", "myshopify.com", "cdn.shopify.com"}},
	{name: "drupal", keywords: []string{"drupal", "sites/default"}},
	{name: "joomla", keywords: []string{"joomla", "components/com_"}},
}

// classPattern matches a class attribute containing keyword anywhere in its value
func classPattern(keyword string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)class=["'][^"']*` + keyword + `[^"']*["']`)
}

func elementPattern(tag string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)<` + tag + `[^>]*class=["'][^"']*event[^"']*["'][^>]*>`)
}

func detectStructuredData(html string) domain.StructuredData {
	res := domain.StructuredData{JSONLD: ExtractJSONLD(html)}
	res.Microdata = len(reMicrodata.FindAllStringIndex(html, -1))
	res.RDFa = len(reRDFa.FindAllStringIndex(html, -1))
	res.OpenGraph = len(reOpenGraph.FindAllStringIndex(html, -1))
	res.TwitterCards = len(reTwitter.FindAllStringIndex(html, -1))
	return res
}

// ExtractJSONLD returns every json-ld object found in script tags of html
func ExtractJSONLD(html string) []map[string]any {
	res := []map[string]any{}
	for _, m := range reJSONLD.FindAllStringSubmatch(html, -1) {
		res = append(res, parseJSONLD(m[1])...)
	}
	return res
}

// parseJSONLD decodes one script body, flattening top-level arrays. Bad json yields nothing.
func parseJSONLD(body string) []map[string]any {
	var v any
	if err := json.Unmarshal([]byte(strings.TrimSpace(body)), &v); err != nil {
		return nil
	}
	switch vv := v.(type) {
	case map[string]any:
		return []map[string]any{vv}
	case []any:
		res := make([]map[string]any, 0, len(vv))
		for _, item := range vv {
			if m, ok := item.(map[string]any); ok {
				res = append(res, m)
			}
		}
		return res
	}
	return nil
}

func findEventPatterns(html string) domain.EventPatterns {
	return domain.EventPatterns{
		EventClasses:  matchAll(html, eventClasses),
		Dates:         matchAll(html, datePatterns),
		Times:         matchAll(html, timePatterns),
		Locations:     matchAll(html, locationClasses),
		Prices:        matchAll(html, priceClasses),
		EventElements: matchAll(html, eventElements),
	}
}

func matchAll(html string, patterns []*regexp.Regexp) []string {
	res := []string{}
	for _, re := range patterns {
		res = append(res, re.FindAllString(html, -1)...)
	}
	return res
}

// discoverFeeds returns feeds declared by link tags followed by conventional paths
func discoverFeeds(html, baseURL string) []domain.Candidate {
	res := []domain.Candidate{}
	seen := map[string]bool{}

	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
		doc.Find(`link[rel~="alternate"][type="application/rss+xml"], link[rel~="alternate"][type="application/atom+xml"]`).Each(func(_ int, s *goquery.Selection) {
			href, ok := s.Attr("href")
			if !ok || strings.TrimSpace(href) == "" {
				return
			}
			u := resolveURL(baseURL, strings.TrimSpace(href))
			if seen[u] {
				return
			}
			seen[u] = true
			res = append(res, domain.Candidate{URL: u, Kind: domain.CandidateDeclared, Confidence: declaredFeedConfidence})
		})
	}

	for _, p := range feedPaths {
		res = append(res, domain.Candidate{URL: resolveURL(baseURL, p), Kind: domain.CandidatePotential, Confidence: potentialFeedConfidence})
	}
	return res
}

// findAPIEndpoints returns conventional api paths followed by fetch() call sites found in scripts
func findAPIEndpoints(html, baseURL string) []domain.Candidate {
	res := make([]domain.Candidate, 0, len(apiPaths))
	for _, p := range apiPaths {
		res = append(res, domain.Candidate{URL: resolveURL(baseURL, p), Kind: domain.CandidatePotential, Confidence: potentialAPIConfidence})
	}
	seen := map[string]bool{}
	for _, m := range reFetchAPI.FindAllStringSubmatch(html, -1) {
		u := resolveURL(baseURL, m[1])
		if seen[u] {
			continue
		}
		seen[u] = true
		res = append(res, domain.Candidate{URL: u, Kind: domain.CandidateDeclared, Confidence: declaredAPIConfidence})
	}
	return res
}

func detectCMS(html string) domain.CMS {
	lower := strings.ToLower(html)
	for _, g := range cmsGroups {
		for _, kw := range g.keywords {
			if strings.Contains(lower, kw) {
				return domain.CMS{Type: g.name, Confidence: cmsMatchConfidence}
			}
		}
	}
	return domain.CMS{Type: "unknown", Confidence: cmsUnknownConfidence}
}

func assessQuality(html string) domain.ContentQuality {
	res := domain.ContentQuality{
		HasStructuredData: strings.Contains(html, "application/ld+json") || strings.Contains(html, "itemscope") ||
			strings.Contains(html, "typeof"),
		HasEventElements: reEventClass.MatchString(html),
		HasDateInfo:      reSlashDate.MatchString(html) || reMonthDate.MatchString(html),
		HasLocationInfo:  locationClasses[0].MatchString(html) || locationClasses[1].MatchString(html) || locationClasses[2].MatchString(html),
		HasPriceInfo:     rePrice.MatchString(html) || priceClasses[1].MatchString(html),
		ContentLength:    utf8.RuneCountInString(html),
	}
	if res.ContentLength > 0 {
		matches := len(reEventClass.FindAllStringIndex(html, -1))
		res.EventDensity = float64(matches) / (float64(res.ContentLength) / 1000)
	}
	return res
}

// resolveURL resolves ref against base, falling back to concatenation when base does not parse
func resolveURL(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return base + ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return base + ref
	}
	return b.ResolveReference(r).String()
}
