package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/stemsi/bezem-backend/internal/model"
	"github.com/stemsi/bezem-backend/internal/sheet"
)

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("99")).Bold(true).Padding(1, 0, 0, 0)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("99")).Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	linkStyle   = cellStyle.Foreground(lipgloss.Color("86")).Underline(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// renderTable draws the raw values of a rendered sheet. limit <= 0 shows
// every row.
func renderTable(t *sheet.Table, limit int) string {
	if len(t.Rows) == 0 {
		return titleStyle.Render(string(t.Sheet)) + "\n" + mutedStyle.Render("(no rows)")
	}

	first := t.Rows[0].Cells
	headers := make([]string, len(first))
	links := make(map[int]bool)
	for i, c := range first {
		headers[i] = string(c.Field)
		if headers[i] == "" {
			headers[i] = c.Key
		}
		if c.Link {
			links[i] = true
		}
	}

	rows := t.Rows
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case links[col]:
				return linkStyle
			default:
				return cellStyle
			}
		})
	for _, r := range rows {
		values := make([]string, len(r.Cells))
		for i, c := range r.Cells {
			values[i] = c.Raw
		}
		tbl.Row(values...)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s (%d rows)", t.Sheet, len(t.Rows))))
	b.WriteString("\n")
	b.WriteString(tbl.String())
	if len(rows) < len(t.Rows) {
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render(fmt.Sprintf("… %d more", len(t.Rows)-len(rows))))
	}
	return b.String()
}

// renderReport summarises an import per worksheet.
func renderReport(report *model.ImportReport, withIssues bool) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Import " + report.ImportID.String()))
	b.WriteString("\n")

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		Headers("sheet", "status", "rendered", "persisted", "skipped").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, s := range report.Sheets {
		tbl.Row(s.Sheet, statusLabel(s.Status), fmt.Sprint(s.Rendered), fmt.Sprint(s.Persisted), fmt.Sprint(s.SkippedRows))
	}
	tbl.Row("total", "", fmt.Sprint(report.Rendered), fmt.Sprint(report.Persisted), fmt.Sprint(report.SkippedRows))
	b.WriteString(tbl.String())

	if withIssues {
		for _, s := range report.Sheets {
			for _, issue := range s.Issues {
				b.WriteString("\n")
				b.WriteString(warnStyle.Render(fmt.Sprintf("%s row %d: %s", s.Sheet, issue.Row, issue.Reason)))
			}
		}
	}
	return b.String()
}

func statusLabel(status model.SheetStatus) string {
	switch status {
	case model.SheetStatusImported:
		return okStyle.Render(string(status))
	case model.SheetStatusUnknown:
		return warnStyle.Render(string(status))
	default:
		return errorStyle.Render(string(status))
	}
}

func progressLine(ev model.ProgressEvent) string {
	label := ev.Type
	if ev.Sheet != "" {
		label += " " + ev.Sheet
	}
	return mutedStyle.Render("› ") + label + mutedStyle.Render(" "+ev.Message)
}
