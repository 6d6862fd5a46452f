package strategy

import (
	"context"
	"errors"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/venuescope/pkg/content"
	"github.com/umputun/venuescope/pkg/domain"
)

// Generic is the last resort strategy for pages without usable structure.
// It tries the html pattern pass, then the llm extractor when configured,
// then a single page-level event made of page title and date.
type Generic struct {
	fetcher   Fetcher
	extractor EventExtractor
}

// NewGeneric makes generic strategy, extractor may be nil
func NewGeneric(fetcher Fetcher, extractor EventExtractor) *Generic {
	return &Generic{fetcher: fetcher, extractor: extractor}
}

// Name returns strategy id
func (g *Generic) Name() domain.Strategy { return domain.StrategyGeneric }

// Parse runs the generic extraction chain
func (g *Generic) Parse(ctx context.Context, req Request) domain.Outcome {
	html, err := page(ctx, g.fetcher, req)
	if err != nil {
		return fail(g.Name(), req.URL, err)
	}

	if events, perr := PatternEvents(html, req.URL, g.Name()); perr == nil && len(events) > 0 {
		return succeed(g.Name(), req.URL, events, GenericCeiling)
	}

	pg, err := content.Extract(html, req.URL)
	if err != nil {
		return fail(g.Name(), req.URL, err)
	}

	if g.extractor != nil && pg.Text != "" {
		events, lerr := g.extractor.ExtractEvents(ctx, req.URL, pg.Text)
		if lerr != nil {
			lgr.Printf("[WARN] llm extraction failed for %s: %v", req.URL, lerr)
		}
		if len(events) > 0 {
			return succeed(g.Name(), req.URL, dedupe(events), GenericCeiling)
		}
	}

	ev, ok := pageEvent(pg)
	if !ok {
		return fail(g.Name(), req.URL, errors.New("no event-like content"))
	}
	return succeed(g.Name(), req.URL, []domain.Event{ev}, GenericCeiling)
}

// pageEvent treats the whole page as one event, requires a title and a page date
func pageEvent(pg content.Page) (domain.Event, bool) {
	title := cleanText(pg.Title)
	if title == "" || pg.Date.IsZero() {
		return domain.Event{}, false
	}
	ev := domain.Event{
		Title:       title,
		Description: cleanText(pg.Description),
		Date:        pg.Date.Format(time.DateOnly),
		ImageURL:    pg.Image,
		Method:      domain.StrategyGeneric,
	}
	if pg.Date.Hour() != 0 || pg.Date.Minute() != 0 {
		ev.Time = pg.Date.Format("15:04")
	}
	return ev, true
}
