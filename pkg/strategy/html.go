package strategy

import (
	"context"
	"errors"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-pkgz/lgr"

	"github.com/umputun/venuescope/pkg/domain"
)

// fragments are matched by class substring, so "upcoming-events" and "eventItem" both count
const fragmentSelector = `div[class*="event"], article[class*="event"], li[class*="event"]`

var (
	fragTitleSel    = []string{"h1", "h2", "h3", "h4", `[class*="title"]`}
	fragDateSel     = []string{`[class*="date"]`, "time"}
	fragTimeSel     = []string{`[class*="time"]`}
	fragLocationSel = []string{`[class*="location"]`, `[class*="venue"]`, `[class*="address"]`}
	fragPriceSel    = []string{`[class*="price"]`, `[class*="cost"]`}
	fragDescSel     = []string{`[class*="description"]`, `[class*="summary"]`, "p"}

	rePrice = regexp.MustCompile(`\$\d+(?:\.\d{2})?`)
)

// HTMLPattern extracts events from dom fragments whose class mentions "event"
type HTMLPattern struct {
	fetcher Fetcher
}

// NewHTMLPattern makes html pattern strategy
func NewHTMLPattern(fetcher Fetcher) *HTMLPattern {
	return &HTMLPattern{fetcher: fetcher}
}

// Name returns strategy id
func (h *HTMLPattern) Name() domain.Strategy { return domain.StrategyHTMLPattern }

// Parse fetches the page when needed and extracts titled event fragments
func (h *HTMLPattern) Parse(ctx context.Context, req Request) domain.Outcome {
	html, err := page(ctx, h.fetcher, req)
	if err != nil {
		return fail(h.Name(), req.URL, err)
	}
	events, err := PatternEvents(html, req.URL, h.Name())
	if err != nil {
		return fail(h.Name(), req.URL, err)
	}
	lgr.Printf("[DEBUG] html pattern: %d events on %s", len(events), req.URL)
	return succeed(h.Name(), req.URL, events, HTMLPatternCeiling)
}

// PatternEvents extracts events from event-classed fragments of html. Containers holding
// several titled fragments are skipped in favor of the fragments themselves, and parts of
// a card like div.event-title are skipped in favor of the card.
func PatternEvents(html, pageURL string, method domain.Strategy) ([]domain.Event, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, errors.New("can't parse html")
	}
	base, _ := url.Parse(pageURL)

	events := []domain.Event{}
	doc.Find(fragmentSelector).Each(func(_ int, s *goquery.Selection) {
		if isContainer(s) || insideTitledFragment(s) {
			return
		}
		if ev, ok := fragmentEvent(s, base, method); ok {
			events = append(events, ev)
		}
	})
	return dedupe(events), nil
}

// isContainer reports whether the fragment wraps more than one titled event fragment
func isContainer(s *goquery.Selection) bool {
	titled := 0
	s.Find(fragmentSelector).EachWithBreak(func(_ int, inner *goquery.Selection) bool {
		if selectText(inner, fragTitleSel) != "" {
			titled++
		}
		return titled < 2
	})
	return titled >= 2
}

// insideTitledFragment reports whether the nearest event-classed ancestor is itself an event
func insideTitledFragment(s *goquery.Selection) bool {
	parent := s.ParentsFiltered(fragmentSelector).First()
	if parent.Length() == 0 || isContainer(parent) {
		return false
	}
	return selectText(parent, fragTitleSel) != ""
}

func fragmentEvent(s *goquery.Selection, base *url.URL, method domain.Strategy) (domain.Event, bool) {
	title := cleanText(selectText(s, fragTitleSel))
	if title == "" {
		return domain.Event{}, false
	}
	ev := domain.Event{
		Title:       title,
		Description: cleanText(selectText(s, fragDescSel)),
		Location:    cleanText(selectText(s, fragLocationSel)),
		Price:       cleanText(selectText(s, fragPriceSel)),
		Method:      method,
	}
	if ev.Price == "" {
		ev.Price = rePrice.FindString(s.Text())
	}

	rawDate, _ := s.Find("time[datetime]").First().Attr("datetime")
	if rawDate == "" {
		rawDate = selectText(s, fragDateSel)
	}
	ev.Date, ev.Time = normalizeDate(cleanText(rawDate), cleanText(selectText(s, fragTimeSel)))

	if href, ok := s.Find("a[href]").First().Attr("href"); ok {
		ev.SourceURL = resolve(base, href)
	}
	if src, ok := s.Find("img[src]").First().Attr("src"); ok {
		ev.ImageURL = resolve(base, src)
	}
	return ev, true
}

// selectText returns the text of the first non-empty match, trying selectors in order
func selectText(s *goquery.Selection, selectors []string) string {
	for _, sel := range selectors {
		var res string
		s.Find(sel).EachWithBreak(func(_ int, m *goquery.Selection) bool {
			res = strings.TrimSpace(m.Text())
			return res == ""
		})
		if res != "" {
			return res
		}
	}
	return ""
}

func resolve(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if base == nil || ref == "" {
		return ref
	}
	u, err := base.Parse(ref)
	if err != nil {
		return ref
	}
	return u.String()
}
