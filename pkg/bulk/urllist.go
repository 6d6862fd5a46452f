package bulk

import (
	"strings"

	"github.com/umputun/venuescope/pkg/domain"
)

// ParseURLList splits a text blob into urls, one per line. Blank lines and lines starting
// with # are skipped, a csv-like line contributes its first non-empty column.
func ParseURLList(text string) domain.URLList {
	res := domain.URLList{Valid: []string{}, Invalid: []domain.InvalidURL{}}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		candidate := line
		if strings.Contains(line, ",") {
			candidate = ""
			for _, col := range strings.Split(line, ",") {
				if col = strings.Trim(strings.TrimSpace(col), `"`); col != "" {
					candidate = col
					break
				}
			}
			if candidate == "" {
				continue
			}
		}
		if err := domain.ValidateURL(candidate); err != nil {
			res.Invalid = append(res.Invalid, domain.InvalidURL{URL: candidate, Reason: "Invalid URL format"})
			continue
		}
		res.Valid = append(res.Valid, candidate)
	}
	return res
}
