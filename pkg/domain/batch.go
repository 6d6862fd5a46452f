package domain

import "time"

// URLResult is the outcome of one url inside a batch run
type URLResult struct {
	URL     string  `json:"url"`
	Success bool    `json:"success"`
	Outcome Outcome `json:"result"`
}

// Statistics are the running counters of a batch run
type Statistics struct {
	TotalProcessed    int            `json:"total_processed"`
	Successful        int            `json:"successful"`
	Failed            int            `json:"failed"`
	TotalEvents       int            `json:"total_events"`
	ConfidenceSum     float64        `json:"-"`
	AverageConfidence float64        `json:"average_confidence"`
	ParserUsage       map[string]int `json:"parser_usage"`
	VenueTypes        map[string]int `json:"venue_types"`
	ErrorTypes        map[string]int `json:"error_types"`
	StartTime         time.Time      `json:"start_time"`
	EndTime           time.Time      `json:"end_time"`
	ProcessingTime    time.Duration  `json:"processing_time"`
}

// NewStatistics makes empty statistics with initialized maps
func NewStatistics() Statistics {
	return Statistics{
		ParserUsage: map[string]int{},
		VenueTypes:  map[string]int{},
		ErrorTypes:  map[string]int{},
	}
}

// Progress is a snapshot sent to progress subscribers after each chunk
type Progress struct {
	RunID        string      `json:"run_id"`
	Processed    int         `json:"processed"`
	Total        int         `json:"total"`
	Percentage   int         `json:"percentage"`
	Successful   int         `json:"successful"`
	Failed       int         `json:"failed"`
	TotalEvents  int         `json:"total_events"`
	CurrentBatch []URLResult `json:"current_batch"`
}

// Summary is the headline part of a batch report
type Summary struct {
	TotalProcessed      int     `json:"total_processed"`
	Successful          int     `json:"successful"`
	Failed              int     `json:"failed"`
	SuccessRate         int     `json:"success_rate"` // percent
	TotalEvents         int     `json:"total_events"`
	AverageConfidence   float64 `json:"average_confidence"`
	ProcessingTimeMs    int64   `json:"processing_time_ms"`
	AverageTimePerVenue int64   `json:"average_time_per_venue_ms"`
	Stopped             bool    `json:"stopped,omitempty"`
}

// Priority of a recommendation
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
)

// Recommendation is a human-readable hint derived from run statistics
type Recommendation struct {
	Type     string   `json:"type"`
	Message  string   `json:"message"`
	Priority Priority `json:"priority"`
}

// Report is the final result of a batch run
type Report struct {
	ID              string           `json:"id"`
	StartedAt       time.Time        `json:"started_at"`
	FinishedAt      time.Time        `json:"finished_at"`
	Summary         Summary          `json:"summary"`
	ParserUsage     map[string]int   `json:"parser_usage"`
	VenueTypes      map[string]int   `json:"venue_types"`
	ErrorTypes      map[string]int   `json:"error_types"`
	Results         []URLResult      `json:"results"`
	Recommendations []Recommendation `json:"recommendations"`
}

// InvalidURL is a rejected entry of an url list
type InvalidURL struct {
	URL    string `json:"url"`
	Reason string `json:"reason"`
}

// URLList is the result of parsing a text blob of urls
type URLList struct {
	Valid   []string     `json:"valid_urls"`
	Invalid []InvalidURL `json:"invalid_urls"`
}

// RunInfo is the stored headline of a finished batch run
type RunInfo struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Summary    Summary   `json:"summary"`
}
