// Package strategy implements interchangeable event extraction algorithms.
// Every strategy catches its own failures and reports them as a zero-confidence outcome,
// callers never get an error from Parse.
package strategy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/umputun/venuescope/pkg/domain"
)

//go:generate moq -out mocks/fetcher.go -pkg mocks -skip-ensure -fmt goimports . Fetcher
//go:generate moq -out mocks/event_extractor.go -pkg mocks -skip-ensure -fmt goimports . EventExtractor

// confidence ceilings used when a strategy finds events
const (
	StructuredDataCeiling = 0.95
	APICeiling            = 0.95
	FeedCeiling           = 0.9
	SpecializedCeiling    = 0.9
	HTMLPatternCeiling    = 0.7
	GenericCeiling        = 0.5
)

// Strategy extracts normalized events for one url
type Strategy interface {
	Name() domain.Strategy
	Parse(ctx context.Context, req Request) domain.Outcome
}

// SiteMatcher is implemented by strategies dedicated to particular sites
type SiteMatcher interface {
	Matches(pageURL string) bool
}

// Request is the input of a strategy run. HTML and Analysis are optional,
// a strategy fetches the page itself when HTML is empty.
type Request struct {
	URL      string
	HTML     string
	Analysis *domain.Analysis
}

// Fetcher loads remote text and json
type Fetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
	FetchJSON(ctx context.Context, url string) (json.RawMessage, error)
}

// EventExtractor finds events in plain page text
type EventExtractor interface {
	ExtractEvents(ctx context.Context, pageURL, text string) ([]domain.Event, error)
}

// All makes every strategy sharing the fetcher. Extractor may be nil.
func All(fetcher Fetcher, extractor EventExtractor) map[domain.Strategy]Strategy {
	list := []Strategy{
		NewStructuredData(fetcher),
		NewFeed(fetcher),
		NewAPI(fetcher),
		NewHTMLPattern(fetcher),
		NewGeneric(fetcher, extractor),
		NewThingsToDoDC(fetcher),
	}
	res := make(map[domain.Strategy]Strategy, len(list))
	for _, s := range list {
		res[s.Name()] = s
	}
	return res
}

// page returns the request html, fetching it when not provided
func page(ctx context.Context, f Fetcher, req Request) (string, error) {
	if req.HTML != "" {
		return req.HTML, nil
	}
	html, err := f.FetchText(ctx, req.URL)
	if err != nil {
		return "", fmt.Errorf("fetch page: %w", err)
	}
	return html, nil
}

// succeed makes a settled outcome, with the ceiling as confidence when events were found
func succeed(name domain.Strategy, pageURL string, events []domain.Event, ceiling float64) domain.Outcome {
	for i := range events {
		if events[i].Method == "" {
			events[i].Method = name
		}
		if events[i].SourceURL == "" {
			events[i].SourceURL = pageURL
		}
	}
	res := domain.Outcome{Events: events, Strategy: name, SourceURL: pageURL, Confidence: ceiling}
	res.Settle()
	return res
}

// fail makes a zero-confidence outcome, wrapping non-fetch errors into an extraction error
func fail(name domain.Strategy, pageURL string, err error) domain.Outcome {
	if err != nil && !isFetchErr(err) {
		err = &domain.ExtractionError{Strategy: name, Err: err}
	}
	res := domain.Failed(name, pageURL, err)
	res.Settle()
	return res
}

func isFetchErr(err error) bool {
	var fe *domain.FetchError
	return errors.As(err, &fe)
}

// suffixURL appends a path suffix to the page url as is, without resolving against the host root
func suffixURL(pageURL, suffix string) string {
	return strings.TrimRight(pageURL, "/") + suffix
}

// dedupe drops repeated events by title, date and location
func dedupe(events []domain.Event) []domain.Event {
	seen := map[string]bool{}
	res := make([]domain.Event, 0, len(events))
	for _, e := range events {
		key := strings.ToLower(e.Title) + "|" + e.Date + "|" + strings.ToLower(e.Location)
		if seen[key] {
			continue
		}
		seen[key] = true
		res = append(res, e)
	}
	return res
}
