package strategy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/mmcdole/gofeed"

	"github.com/umputun/venuescope/pkg/domain"
)

// conventional feed suffixes, appended to the page url
var feedSuffixes = []string{"/feed", "/rss", "/events/feed", "/calendar/feed", "/events.rss"}

// Feed extracts events from rss or atom feeds
type Feed struct {
	fetcher Fetcher
	parser  *gofeed.Parser
}

// NewFeed makes feed strategy
func NewFeed(fetcher Fetcher) *Feed {
	return &Feed{fetcher: fetcher, parser: gofeed.NewParser()}
}

// Name returns strategy id
func (f *Feed) Name() domain.Strategy { return domain.StrategyFeed }

// Parse tries feeds declared by the page first, then conventional paths.
// The first feed giving at least one titled item wins.
func (f *Feed) Parse(ctx context.Context, req Request) domain.Outcome {
	var lastErr error
	for _, feedURL := range f.candidates(req) {
		if ctx.Err() != nil {
			return fail(f.Name(), req.URL, ctx.Err())
		}
		events, err := f.fromFeed(ctx, feedURL)
		if err != nil {
			lgr.Printf("[DEBUG] feed %s: %v", feedURL, err)
			lastErr = err
			continue
		}
		if len(events) == 0 {
			continue
		}
		res := succeed(f.Name(), req.URL, events, FeedCeiling)
		res.Endpoint = feedURL
		return res
	}
	if lastErr != nil {
		return fail(f.Name(), req.URL, fmt.Errorf("no feed with events: %w", lastErr))
	}
	return fail(f.Name(), req.URL, errors.New("no feed with events"))
}

func (f *Feed) candidates(req Request) []string {
	res := []string{}
	seen := map[string]bool{}
	add := func(u string) {
		if !seen[u] {
			seen[u] = true
			res = append(res, u)
		}
	}
	if req.Analysis != nil {
		for _, c := range req.Analysis.DeclaredFeeds() {
			add(c.URL)
		}
	}
	for _, s := range feedSuffixes {
		add(suffixURL(req.URL, s))
	}
	return res
}

func (f *Feed) fromFeed(ctx context.Context, feedURL string) ([]domain.Event, error) {
	body, err := f.fetcher.FetchText(ctx, feedURL)
	if err != nil {
		return nil, err
	}
	feed, err := f.parser.ParseString(body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	events := make([]domain.Event, 0, len(feed.Items))
	for _, item := range feed.Items {
		if ev, ok := feedItemEvent(item); ok {
			events = append(events, ev)
		}
	}
	return dedupe(events), nil
}

func feedItemEvent(item *gofeed.Item) (domain.Event, bool) {
	title := cleanText(item.Title)
	if title == "" {
		return domain.Event{}, false
	}
	ev := domain.Event{
		Title:       title,
		Description: cleanText(item.Description),
		SourceURL:   strings.TrimSpace(item.Link),
		Method:      domain.StrategyFeed,
	}
	switch {
	case item.PublishedParsed != nil:
		ev.Date = item.PublishedParsed.Format(time.DateOnly)
	case item.Published != "":
		ev.Date, ev.Time = normalizeDate(item.Published, "")
	}
	if item.Image != nil {
		ev.ImageURL = item.Image.URL
	}
	if len(item.Categories) > 0 {
		ev.Category = cleanText(item.Categories[0])
	}
	return ev, true
}
