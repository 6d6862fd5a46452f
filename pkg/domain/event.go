package domain

// Strategy identifies one interchangeable event extraction algorithm
type Strategy string

const (
	StrategyStructuredData Strategy = "structured_data"
	StrategyFeed           Strategy = "feed"
	StrategyAPI            Strategy = "api"
	StrategyHTMLPattern    Strategy = "html_pattern"
	StrategyGeneric        Strategy = "ai_content"
	StrategyThingsToDoDC   Strategy = "things_to_do_dc"
)

// Event represents a normalized event extracted from a venue page
type Event struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Date        string   `json:"date,omitempty"` // ISO date when parsable, source text otherwise
	Time        string   `json:"time,omitempty"`
	Location    string   `json:"location,omitempty"`
	Price       string   `json:"price,omitempty"`
	Category    string   `json:"category,omitempty"`
	SourceURL   string   `json:"source_url,omitempty"`
	ImageURL    string   `json:"image_url,omitempty"`
	Method      Strategy `json:"method,omitempty"`
}

// Complete reports whether the event carries title, date and location
func (e Event) Complete() bool {
	return e.Title != "" && e.Date != "" && e.Location != ""
}
