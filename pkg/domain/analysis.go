package domain

import "time"

// Analysis is the signal report produced for one page snapshot
type Analysis struct {
	URL            string         `json:"url"`
	Timestamp      time.Time      `json:"timestamp"`
	StructuredData StructuredData `json:"structured_data"`
	EventPatterns  EventPatterns  `json:"event_patterns"`
	Feeds          []Candidate    `json:"feeds"`
	APIEndpoints   []Candidate    `json:"api_endpoints"`
	CMS            CMS            `json:"cms"`
	Quality        ContentQuality `json:"content_quality"`
	Confidence     float64        `json:"confidence"`
	Recommended    Strategy       `json:"recommended_strategy"`
	Reason         Reason         `json:"reason"`
}

// StructuredData holds structured markup found on a page
type StructuredData struct {
	JSONLD       []map[string]any `json:"json_ld"`
	Microdata    int              `json:"microdata"`
	RDFa         int              `json:"rdfa"`
	OpenGraph    int              `json:"open_graph"`
	TwitterCards int              `json:"twitter_cards"`
}

// EventPatterns holds raw event-like matches found on a page
type EventPatterns struct {
	EventClasses  []string `json:"event_classes"`
	Dates         []string `json:"dates"`
	Times         []string `json:"times"`
	Locations     []string `json:"locations"`
	Prices        []string `json:"prices"`
	EventElements []string `json:"event_elements"`
}

// CandidateKind tells how a feed or api candidate was found
type CandidateKind string

const (
	CandidateDeclared  CandidateKind = "declared"  // link tag or fetch call site on the page
	CandidatePotential CandidateKind = "potential" // conventional path, not verified
)

// Candidate is a feed or api endpoint that may serve events
type Candidate struct {
	URL        string        `json:"url"`
	Kind       CandidateKind `json:"kind"`
	Confidence float64       `json:"confidence"`
}

// CMS is the detected site platform
type CMS struct {
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
}

// ContentQuality summarizes page quality heuristics
type ContentQuality struct {
	HasStructuredData bool    `json:"has_structured_data"`
	HasEventElements  bool    `json:"has_event_elements"`
	HasDateInfo       bool    `json:"has_date_info"`
	HasLocationInfo   bool    `json:"has_location_info"`
	HasPriceInfo      bool    `json:"has_price_info"`
	ContentLength     int     `json:"content_length"`
	EventDensity      float64 `json:"event_density"`
}

// Reason explains why a strategy was recommended
type Reason string

const (
	ReasonJSONLD        Reason = "jsonld"
	ReasonFeeds         Reason = "feeds"
	ReasonAPI           Reason = "api"
	ReasonEventPatterns Reason = "event_patterns"
	ReasonNoSignal      Reason = "no_signal"
	ReasonFetchFailed   Reason = "fetch_failed"
)

// DeclaredFeeds returns feed candidates found on the page itself
func (a *Analysis) DeclaredFeeds() []Candidate {
	return declared(a.Feeds)
}

// DeclaredAPIs returns api candidates found on the page itself
func (a *Analysis) DeclaredAPIs() []Candidate {
	return declared(a.APIEndpoints)
}

func declared(cc []Candidate) []Candidate {
	res := []Candidate{}
	for _, c := range cc {
		if c.Kind == CandidateDeclared {
			res = append(res, c)
		}
	}
	return res
}
