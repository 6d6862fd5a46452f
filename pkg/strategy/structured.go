package strategy

import (
	"context"
	"strings"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/venuescope/pkg/analyzer"
	"github.com/umputun/venuescope/pkg/domain"
)

// StructuredData extracts schema.org events from json-ld blocks
type StructuredData struct {
	fetcher Fetcher
}

// NewStructuredData makes json-ld strategy
func NewStructuredData(fetcher Fetcher) *StructuredData {
	return &StructuredData{fetcher: fetcher}
}

// Name returns strategy id
func (s *StructuredData) Name() domain.Strategy { return domain.StrategyStructuredData }

// Parse finds json-ld objects typed as Event, including inside @graph and arrays
func (s *StructuredData) Parse(ctx context.Context, req Request) domain.Outcome {
	var blocks []map[string]any
	switch {
	case req.Analysis != nil && req.HTML != "":
		blocks = req.Analysis.StructuredData.JSONLD
	default:
		html, err := page(ctx, s.fetcher, req)
		if err != nil {
			return fail(s.Name(), req.URL, err)
		}
		blocks = analyzer.ExtractJSONLD(html)
	}

	events := []domain.Event{}
	for _, b := range blocks {
		for _, obj := range eventObjects(b) {
			if ev, ok := Normalize(obj, s.Name()); ok {
				events = append(events, ev)
			}
		}
	}
	events = dedupe(events)
	lgr.Printf("[DEBUG] structured data: %d events from %d json-ld blocks on %s", len(events), len(blocks), req.URL)
	return succeed(s.Name(), req.URL, events, StructuredDataCeiling)
}

// eventObjects walks a json-ld object and returns nested objects typed as events
func eventObjects(obj map[string]any) []map[string]any {
	res := []map[string]any{}
	if isEventType(obj["@type"]) {
		res = append(res, obj)
	}
	for _, key := range []string{"@graph", "itemListElement", "item", "subEvent"} {
		switch v := obj[key].(type) {
		case map[string]any:
			res = append(res, eventObjects(v)...)
		case []any:
			for _, it := range v {
				if m, ok := it.(map[string]any); ok {
					res = append(res, eventObjects(m)...)
				}
			}
		}
	}
	return res
}

// isEventType accepts Event and its schema.org subtypes like MusicEvent, as a string or in a list
func isEventType(v any) bool {
	switch t := v.(type) {
	case string:
		return strings.HasSuffix(t, "Event")
	case []any:
		for _, it := range t {
			if isEventType(it) {
				return true
			}
		}
	}
	return false
}
