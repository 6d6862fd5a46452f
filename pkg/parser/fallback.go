package parser

import "github.com/umputun/venuescope/pkg/domain"

type fallbackKey struct {
	reason domain.Reason
	failed domain.Strategy
}

// fallbackTable orders the remaining strategies by why the failed one was recommended
var fallbackTable = map[fallbackKey][]domain.Strategy{
	{domain.ReasonJSONLD, domain.StrategyStructuredData}: {
		domain.StrategyHTMLPattern, domain.StrategyFeed, domain.StrategyAPI, domain.StrategyGeneric},
	{domain.ReasonFeeds, domain.StrategyFeed}: {
		domain.StrategyStructuredData, domain.StrategyHTMLPattern, domain.StrategyAPI, domain.StrategyGeneric},
	{domain.ReasonAPI, domain.StrategyAPI}: {
		domain.StrategyFeed, domain.StrategyStructuredData, domain.StrategyHTMLPattern, domain.StrategyGeneric},
	{domain.ReasonEventPatterns, domain.StrategyHTMLPattern}: {
		domain.StrategyStructuredData, domain.StrategyFeed, domain.StrategyAPI, domain.StrategyGeneric},
}

// without a page only strategies fetching their own sources can help
var fetchFailedOrder = []domain.Strategy{domain.StrategyFeed, domain.StrategyAPI}

var defaultOrder = []domain.Strategy{
	domain.StrategyStructuredData, domain.StrategyFeed, domain.StrategyAPI, domain.StrategyHTMLPattern, domain.StrategyGeneric,
}

// fallbackOrder returns strategies to try after failed, never including failed itself
func fallbackOrder(reason domain.Reason, failed domain.Strategy) []domain.Strategy {
	order, ok := fallbackTable[fallbackKey{reason: reason, failed: failed}]
	switch {
	case ok:
	case reason == domain.ReasonFetchFailed:
		order = fetchFailedOrder
	default:
		order = defaultOrder
	}

	res := make([]domain.Strategy, 0, len(order))
	for _, s := range order {
		if s != failed {
			res = append(res, s)
		}
	}
	return res
}
