package main

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/umputun/venuescope/pkg/domain"
)

// renderSummary makes a table of run totals, parser usage and recommendations
func renderSummary(report *domain.Report) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle("run " + report.ID)
	tw.AppendHeader(table.Row{"Metric", "Value"})

	sm := report.Summary
	tw.AppendRows([]table.Row{
		{"Processed", sm.TotalProcessed},
		{"Successful", sm.Successful},
		{"Failed", sm.Failed},
		{"Success rate", strconv.Itoa(sm.SuccessRate) + "%"},
		{"Events", sm.TotalEvents},
		{"Average confidence", strconv.FormatFloat(sm.AverageConfidence, 'f', 2, 64)},
		{"Processing time", fmt.Sprintf("%dms", sm.ProcessingTimeMs)},
		{"Per venue", fmt.Sprintf("%dms", sm.AverageTimePerVenue)},
	})
	if sm.Stopped {
		tw.AppendRow(table.Row{"Stopped", "yes"})
	}

	if len(report.ParserUsage) > 0 {
		tw.AppendSeparator()
		for _, name := range sortedKeys(report.ParserUsage) {
			tw.AppendRow(table.Row{"parser " + name, report.ParserUsage[name]})
		}
	}
	if len(report.ErrorTypes) > 0 {
		tw.AppendSeparator()
		for _, name := range sortedKeys(report.ErrorTypes) {
			tw.AppendRow(table.Row{"error " + name, report.ErrorTypes[name]})
		}
	}
	for _, rec := range report.Recommendations {
		tw.AppendFooter(table.Row{string(rec.Priority), rec.Message})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft, WidthMax: 80},
	})
	return tw.Render()
}

func sortedKeys(m map[string]int) []string {
	res := make([]string, 0, len(m))
	for k := range m {
		res = append(res, k)
	}
	slices.Sort(res)
	return res
}
