package bulk

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/umputun/venuescope/pkg/domain"
)

// export formats
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

var csvHeader = []string{"URL", "Success", "Events Found", "Confidence", "Method", "Error"}

// Export renders a report as pretty json or as csv with one row per url
func Export(report *domain.Report, format string) ([]byte, error) {
	if report == nil {
		return nil, fmt.Errorf("no report to export")
	}
	switch strings.ToLower(format) {
	case FormatJSON, "":
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal report: %w", err)
		}
		return data, nil
	case FormatCSV:
		return exportCSV(report), nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}

// exportCSV quotes every value of data rows, the header stays bare
func exportCSV(report *domain.Report) []byte {
	var sb strings.Builder
	sb.WriteString(strings.Join(csvHeader, ","))
	for _, r := range report.Results {
		success := "No"
		if r.Success {
			success = "Yes"
		}
		method := string(r.Outcome.Strategy)
		if method == "" {
			method = "unknown"
		}
		row := []string{
			r.URL,
			success,
			strconv.Itoa(len(r.Outcome.Events)),
			strconv.FormatFloat(r.Outcome.Confidence, 'f', -1, 64),
			method,
			r.Outcome.Error,
		}
		sb.WriteString("\n")
		for i, v := range row {
			if i > 0 {
				sb.WriteString(",")
			}
			sb.WriteString(`"` + strings.ReplaceAll(v, `"`, `""`) + `"`)
		}
	}
	return []byte(sb.String())
}
