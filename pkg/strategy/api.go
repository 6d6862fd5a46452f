package strategy

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-pkgz/lgr"
	"github.com/tidwall/gjson"

	"github.com/umputun/venuescope/pkg/domain"
)

// conventional api suffixes, appended to the page url
var apiSuffixes = []string{"/api/events", "/api/calendar", "/events.json", "/calendar.json", "/api/v1/events", "/api/v2/events"}

// paths searched for an events array when the payload is not an array itself
var apiArrayPaths = []string{"events", "data", "results", "data.events", "items"}

// API extracts events from json endpoints
type API struct {
	fetcher Fetcher
}

// NewAPI makes api strategy
func NewAPI(fetcher Fetcher) *API {
	return &API{fetcher: fetcher}
}

// Name returns strategy id
func (a *API) Name() domain.Strategy { return domain.StrategyAPI }

// Parse tries api endpoints declared by the page first, then conventional paths.
// The first endpoint giving at least one titled event wins.
func (a *API) Parse(ctx context.Context, req Request) domain.Outcome {
	var lastErr error
	for _, endpoint := range a.candidates(req) {
		if ctx.Err() != nil {
			return fail(a.Name(), req.URL, ctx.Err())
		}
		raw, err := a.fetcher.FetchJSON(ctx, endpoint)
		if err != nil {
			lgr.Printf("[DEBUG] api %s: %v", endpoint, err)
			lastErr = err
			continue
		}
		events := eventsFromPayload(gjson.ParseBytes(raw), a.Name())
		if len(events) == 0 {
			continue
		}
		res := succeed(a.Name(), req.URL, events, APICeiling)
		res.Endpoint = endpoint
		return res
	}
	if lastErr != nil {
		return fail(a.Name(), req.URL, fmt.Errorf("no api endpoint with events: %w", lastErr))
	}
	return fail(a.Name(), req.URL, errors.New("no api endpoint with events"))
}

func (a *API) candidates(req Request) []string {
	res := []string{}
	seen := map[string]bool{}
	add := func(u string) {
		if !seen[u] {
			seen[u] = true
			res = append(res, u)
		}
	}
	if req.Analysis != nil {
		for _, c := range req.Analysis.DeclaredAPIs() {
			add(c.URL)
		}
	}
	for _, s := range apiSuffixes {
		add(suffixURL(req.URL, s))
	}
	return res
}

// eventsFromPayload finds the events array in a json payload and normalizes its objects
func eventsFromPayload(payload gjson.Result, method domain.Strategy) []domain.Event {
	arr := payload
	if !arr.IsArray() {
		arr = gjson.Result{}
		for _, p := range apiArrayPaths {
			if r := payload.Get(p); r.IsArray() {
				arr = r
				break
			}
		}
	}
	if !arr.IsArray() {
		return nil
	}

	events := []domain.Event{}
	arr.ForEach(func(_, item gjson.Result) bool {
		obj, ok := item.Value().(map[string]any)
		if !ok {
			return true
		}
		if ev, ok := Normalize(obj, method); ok {
			events = append(events, ev)
		}
		return true
	})
	return dedupe(events)
}
