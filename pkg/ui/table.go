package ui

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"pixdedup/pkg/dedup"
	"pixdedup/pkg/source"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := range headers {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// RenderSummary renders the end-of-run totals of report
func RenderSummary(report *dedup.Report) string {
	if report == nil {
		return ""
	}

	mode := "delete"
	removedLabel := "Removed"
	reclaimedLabel := "Reclaimed"
	if report.DryRun {
		mode = "dry run"
		removedLabel = "Would remove"
		reclaimedLabel = "Would reclaim"
	}

	rows := [][]string{
		{"Scan root", report.Root},
		{"Mode", mode},
		{"Files listed", fmt.Sprint(report.Listed)},
		{"Candidates", fmt.Sprint(report.Candidates)},
		{"Skipped", fmt.Sprint(len(report.Skipped))},
		{"Duplicate groups", fmt.Sprint(report.Groups)},
		{removedLabel, fmt.Sprint(len(report.Removed))},
		{"Failed", fmt.Sprint(len(report.Failed))},
		{reclaimedLabel, humanize.Bytes(uint64(report.Reclaimed))},
		{"Duration", report.Duration.Round(time.Millisecond).String()},
	}

	return renderTable([]string{"Summary", ""}, rows, []columnAlignment{alignLeft, alignRight})
}

// Classification is one row of the classify command output
type Classification struct {
	Path string
	Stem string
	Tag  source.Tag
}

// RenderClassifications renders how each file name was classified
func RenderClassifications(items []Classification) string {
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		rows = append(rows, []string{it.Path, it.Stem, it.Tag.String()})
	}
	return renderTable([]string{"File", "Stem", "Source"}, rows, nil)
}
