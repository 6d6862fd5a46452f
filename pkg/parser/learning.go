package parser

import (
	"sync"
	"time"

	"github.com/umputun/venuescope/pkg/analyzer"
	"github.com/umputun/venuescope/pkg/domain"
)

// LearningEntry records which strategy worked for a page with a given signal fingerprint.
// Entries are kept for inspection only, strategy selection never reads them.
type LearningEntry struct {
	URL        string          `json:"url"`
	Strategy   domain.Strategy `json:"strategy"`
	Confidence float64         `json:"confidence"`
	Events     int             `json:"events"`
	Timestamp  time.Time       `json:"timestamp"`
}

// LearningSummary aggregates entries of one fingerprint
type LearningSummary struct {
	Entries           int                     `json:"entries"`
	Strategies        map[domain.Strategy]int `json:"strategies"`
	AverageConfidence float64                 `json:"average_confidence"`
	LastSeen          time.Time               `json:"last_seen"`
}

type learningLog struct {
	limit int
	now   func() time.Time

	mu      sync.Mutex
	entries map[string][]LearningEntry
}

func newLearningLog(limit int) *learningLog {
	return &learningLog{limit: limit, now: time.Now, entries: map[string][]LearningEntry{}}
}

// record appends a successful outcome, dropping the oldest entry of the fingerprint over the limit
func (l *learningLog) record(an *domain.Analysis, res domain.Outcome) {
	key := analyzer.Fingerprint(an)
	e := LearningEntry{URL: res.SourceURL, Strategy: res.Strategy, Confidence: res.Confidence,
		Events: len(res.Events), Timestamp: l.now()}

	l.mu.Lock()
	defer l.mu.Unlock()
	list := append(l.entries[key], e)
	if len(list) > l.limit {
		list = list[len(list)-l.limit:]
	}
	l.entries[key] = list
}

func (l *learningLog) stats() map[string]LearningSummary {
	l.mu.Lock()
	defer l.mu.Unlock()
	res := make(map[string]LearningSummary, len(l.entries))
	for key, list := range l.entries {
		sum := LearningSummary{Entries: len(list), Strategies: map[domain.Strategy]int{}}
		var conf float64
		for _, e := range list {
			sum.Strategies[e.Strategy]++
			conf += e.Confidence
			if e.Timestamp.After(sum.LastSeen) {
				sum.LastSeen = e.Timestamp
			}
		}
		if len(list) > 0 {
			sum.AverageConfidence = conf / float64(len(list))
		}
		res[key] = sum
	}
	return res
}

// AdaptiveConfidence boosts strategy confidence by analyzer certainty, event count and completeness of events
func AdaptiveConfidence(res domain.Outcome, an *domain.Analysis) float64 {
	if !res.Success() {
		return 0
	}
	conf := res.Confidence
	if an != nil {
		switch {
		case an.Confidence > 0.8:
			conf += 0.1
		case an.Confidence > 0.6:
			conf += 0.05
		}
	}
	conf += min(float64(len(res.Events))*0.02, 0.1)

	complete := 0
	for _, e := range res.Events {
		if e.Complete() {
			complete++
		}
	}
	conf += float64(complete) / float64(len(res.Events)) * 0.1
	return domain.Clamp(conf)
}
