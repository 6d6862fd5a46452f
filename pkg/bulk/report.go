package bulk

import (
	"fmt"
	"maps"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/umputun/venuescope/pkg/domain"
)

// recommendation thresholds
const (
	lowSuccessRate     = 0.7
	parserDominance    = 0.8
	dominantErrorCount = 5
)

// NewReport builds a run report from outcomes of the simple batch path, outs[i] belongs to urls[i].
// Fewer outcomes than urls mark the run as stopped.
func NewReport(urls []string, outs []domain.Outcome, started, finished time.Time) *domain.Report {
	results := make([]domain.URLResult, 0, len(outs))
	for i, out := range outs {
		out.Settle()
		results = append(results, domain.URLResult{URL: urls[i], Success: out.Success(), Outcome: out})
	}

	stats := domain.NewStatistics()
	stats.StartTime, stats.EndTime = started, finished
	stats.ProcessingTime = finished.Sub(started)
	foldStatistics(&stats, results)
	if stats.TotalProcessed > 0 {
		stats.AverageConfidence = stats.ConfidenceSum / float64(stats.TotalProcessed)
	}

	report := buildReport(uuid.NewString(), stats, results)
	report.Summary.Stopped = len(outs) < len(urls)
	return report
}

// foldStatistics adds settled results of a chunk to the running statistics.
// A result counts as successful only when it carries events.
func foldStatistics(st *domain.Statistics, results []domain.URLResult) {
	for _, r := range results {
		st.TotalProcessed++
		st.ConfidenceSum += r.Outcome.Confidence
		if r.Success && len(r.Outcome.Events) > 0 {
			st.Successful++
			st.TotalEvents += len(r.Outcome.Events)
			parser := string(r.Outcome.Strategy)
			if parser == "" {
				parser = "unknown"
			}
			st.ParserUsage[parser]++
			if r.Outcome.Analysis != nil && r.Outcome.Analysis.CMS.Type != "" {
				st.VenueTypes[r.Outcome.Analysis.CMS.Type]++
			}
			continue
		}
		st.Failed++
		st.ErrorTypes[errorKind(r.Outcome)]++
	}
}

// errorKind keys the error histogram, outcomes without a kind fall back to other or unknown_error
func errorKind(out domain.Outcome) string {
	switch {
	case out.ErrorKind != "":
		return string(out.ErrorKind)
	case out.Error != "":
		return string(domain.ErrorKindOther)
	}
	return "unknown_error"
}

func copyStatistics(st domain.Statistics) domain.Statistics {
	res := st
	res.ParserUsage = maps.Clone(st.ParserUsage)
	res.VenueTypes = maps.Clone(st.VenueTypes)
	res.ErrorTypes = maps.Clone(st.ErrorTypes)
	return res
}

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

func buildReport(runID string, st domain.Statistics, results []domain.URLResult) *domain.Report {
	summary := domain.Summary{
		TotalProcessed:    st.TotalProcessed,
		Successful:        st.Successful,
		Failed:            st.Failed,
		SuccessRate:       percent(st.Successful, st.TotalProcessed),
		TotalEvents:       st.TotalEvents,
		AverageConfidence: math.Round(st.AverageConfidence*100) / 100,
		ProcessingTimeMs:  st.ProcessingTime.Milliseconds(),
	}
	if st.TotalProcessed > 0 {
		summary.AverageTimePerVenue = int64(math.Round(float64(summary.ProcessingTimeMs) / float64(st.TotalProcessed)))
	}
	return &domain.Report{
		ID:              runID,
		StartedAt:       st.StartTime,
		FinishedAt:      st.EndTime,
		Summary:         summary,
		ParserUsage:     maps.Clone(st.ParserUsage),
		VenueTypes:      maps.Clone(st.VenueTypes),
		ErrorTypes:      maps.Clone(st.ErrorTypes),
		Results:         results,
		Recommendations: Recommendations(st),
	}
}

// Recommendations derives human-readable hints from run statistics
func Recommendations(st domain.Statistics) []domain.Recommendation {
	res := []domain.Recommendation{}
	if st.TotalProcessed == 0 {
		return res
	}

	if float64(st.Successful)/float64(st.TotalProcessed) < lowSuccessRate {
		res = append(res, domain.Recommendation{
			Type:     "success_rate",
			Message:  "Low success rate detected. Consider reviewing failed URLs and improving parsing strategies.",
			Priority: domain.PriorityHigh,
		})
	}

	if parser, cnt := mostCommon(st.ParserUsage); parser != "" && st.Successful > 0 {
		if share := float64(cnt) / float64(st.Successful); share > parserDominance {
			res = append(res, domain.Recommendation{
				Type:     "parser_diversity",
				Message:  fmt.Sprintf("Most venues (%d%%) use %s parser. Consider optimizing other parsers.", int(math.Round(share*100)), parser),
				Priority: domain.PriorityMedium,
			})
		}
	}

	if errType, cnt := mostCommon(st.ErrorTypes); errType != "" && cnt > dominantErrorCount {
		res = append(res, domain.Recommendation{
			Type:     "error_pattern",
			Message:  fmt.Sprintf("Most common error: %s (%d occurrences). Consider addressing this issue.", errType, cnt),
			Priority: domain.PriorityHigh,
		})
	}
	return res
}

// mostCommon returns the key with the highest count, ties broken by key order
func mostCommon(m map[string]int) (key string, count int) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if m[k] > count {
			key, count = k, m[k]
		}
	}
	return key, count
}
