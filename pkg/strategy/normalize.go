package strategy

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/microcosm-cc/bluemonday"

	"github.com/umputun/venuescope/pkg/domain"
)

// source field aliases, first present wins
var (
	titleKeys    = []string{"title", "name", "event_title", "event_name"}
	descKeys     = []string{"description", "summary", "details", "content"}
	dateKeys     = []string{"date", "start_date", "startDate", "event_date", "datetime", "start_datetime", "start"}
	timeKeys     = []string{"time", "start_time", "startTime", "event_time"}
	locationKeys = []string{"location", "venue", "address", "place", "event_location"}
	priceKeys    = []string{"price", "cost", "ticket_price", "fee"}
	urlKeys      = []string{"url", "link", "event_url", "ticket_url"}
	imageKeys    = []string{"image", "image_url", "photo", "thumbnail"}
	categoryKeys = []string{"category", "type", "event_type", "genre"}
)

var textPolicy = bluemonday.StrictPolicy()

// Normalize maps a heterogeneous source record onto an event. Fields that can't be resolved stay empty.
// Returns false when the record has no title.
func Normalize(raw map[string]any, method domain.Strategy) (domain.Event, bool) {
	ev := domain.Event{
		Title:       cleanText(first(raw, titleKeys)),
		Description: cleanText(first(raw, descKeys)),
		Time:        strings.TrimSpace(first(raw, timeKeys)),
		Location:    cleanText(first(raw, locationKeys)),
		Price:       strings.TrimSpace(first(raw, priceKeys)),
		SourceURL:   strings.TrimSpace(first(raw, urlKeys)),
		ImageURL:    strings.TrimSpace(first(raw, imageKeys)),
		Category:    cleanText(first(raw, categoryKeys)),
		Method:      method,
	}
	if ev.Title == "" {
		return domain.Event{}, false
	}
	if ev.Price == "" {
		if offers, ok := raw["offers"]; ok {
			ev.Price = offerPrice(offers)
		}
	}
	ev.Date, ev.Time = normalizeDate(first(raw, dateKeys), ev.Time)
	return ev, true
}

// normalizeDate turns a parsable date into YYYY-MM-DD, keeping the source text otherwise.
// The clock part of a full timestamp fills tm when it is empty.
func normalizeDate(raw, tm string) (date, timeOfDay string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", tm
	}
	t, err := dateparse.ParseAny(raw)
	if err != nil {
		return raw, tm
	}
	if tm == "" && (t.Hour() != 0 || t.Minute() != 0) {
		tm = t.Format("15:04")
	}
	return t.Format(time.DateOnly), tm
}

// cleanText strips markup and collapses whitespace
func cleanText(s string) string {
	if s == "" {
		return ""
	}
	s = html.UnescapeString(textPolicy.Sanitize(s))
	return strings.Join(strings.Fields(s), " ")
}

func first(raw map[string]any, keys []string) string {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok {
			continue
		}
		if s := stringValue(v); s != "" {
			return s
		}
	}
	return ""
}

// stringValue flattens json-ish values, objects are read by their usual name-like keys
func stringValue(v any) string {
	switch vv := v.(type) {
	case string:
		return vv
	case float64:
		return strconv.FormatFloat(vv, 'f', -1, 64)
	case bool, nil:
		return ""
	case []any:
		for _, item := range vv {
			if s := stringValue(item); s != "" {
				return s
			}
		}
		return ""
	case map[string]any:
		for _, k := range []string{"name", "@value", "url", "streetAddress", "address"} {
			if s := stringValue(vv[k]); s != "" {
				return s
			}
		}
		return ""
	default:
		return fmt.Sprint(vv)
	}
}

// offerPrice reads price out of a schema.org offer or list of offers
func offerPrice(v any) string {
	switch vv := v.(type) {
	case []any:
		for _, item := range vv {
			if s := offerPrice(item); s != "" {
				return s
			}
		}
	case map[string]any:
		price := stringValue(vv["price"])
		if price == "" {
			price = stringValue(vv["lowPrice"])
		}
		if price == "" {
			return ""
		}
		if cur := stringValue(vv["priceCurrency"]); cur != "" {
			return price + " " + cur
		}
		return price
	}
	return ""
}
