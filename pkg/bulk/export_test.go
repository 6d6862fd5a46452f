package bulk

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/venuescope/pkg/domain"
)

func sampleReport() *domain.Report {
	return &domain.Report{
		ID: "run-1",
		Results: []domain.URLResult{
			{URL: "https://a.example", Success: true, Outcome: domain.Outcome{
				Events: []domain.Event{{Title: "a"}, {Title: "b"}}, Confidence: 0.9, Strategy: domain.StrategyFeed}},
			{URL: "https://b.example", Outcome: domain.Outcome{Events: []domain.Event{}, Error: "timeout"}},
		},
	}
}

func TestExport_CSV(t *testing.T) {
	data, err := Export(sampleReport(), FormatCSV)
	require.NoError(t, err)
	lines := strings.Split(string(data), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "URL,Success,Events Found,Confidence,Method,Error", lines[0])
	assert.Equal(t, `"https://a.example","Yes","2","0.9","feed",""`, lines[1])
	assert.Equal(t, `"https://b.example","No","0","0","unknown","timeout"`, lines[2])
}

func TestExport_CSVQuotes(t *testing.T) {
	r := &domain.Report{Results: []domain.URLResult{
		{URL: "https://a.example", Outcome: domain.Outcome{Error: `bad "json", really`}},
	}}
	data, err := Export(r, "CSV")
	require.NoError(t, err)
	assert.Contains(t, string(data), `"bad ""json"", really"`)
}

func TestExport_JSON(t *testing.T) {
	data, err := Export(sampleReport(), FormatJSON)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"id\": \"run-1\"")

	var back domain.Report
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, "run-1", back.ID)
	assert.Len(t, back.Results, 2)
}

func TestExport_Errors(t *testing.T) {
	_, err := Export(sampleReport(), "xml")
	require.EqualError(t, err, "unsupported export format: xml")
	_, err = Export(nil, FormatJSON)
	require.Error(t, err)
}
