package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/DeafMist/news-scraper/internal/aggregator"
	"github.com/DeafMist/news-scraper/internal/processing"
	"github.com/DeafMist/news-scraper/internal/session"
)

var (
	colorPrimary = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"}
	colorDim     = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#626262"}
	colorBorder  = lipgloss.AdaptiveColor{Light: "#DBDBDB", Dark: "#383838"}
	colorGreen   = lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#25D366"}
	colorError   = lipgloss.AdaptiveColor{Light: "#D7263D", Dark: "#FF5F6D"}

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	promptStyle = lipgloss.NewStyle().Foreground(colorPrimary)
	dimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	errorStyle  = lipgloss.NewStyle().Foreground(colorError)
	sourceStyle = lipgloss.NewStyle().Foreground(colorGreen)

	tabStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(colorDim)
	tabActiveStyle = lipgloss.NewStyle().Padding(0, 1).Bold(true).Underline(true).Foreground(colorPrimary)

	headerCellStyle = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Padding(0, 1)
	cellStyle       = lipgloss.NewStyle().Padding(0, 1)
)

const (
	snippetWidth = 60
	titleWidth   = 50
)

func sortIndicator(order aggregator.SortOrder) string {
	if order == aggregator.Ascending {
		return "▲ oldest first"
	}
	return "▼ newest first"
}

// renderTabs lays out All followed by the batch keywords, highlighting the
// active one.
func renderTabs(keywords []string, active string) string {
	tabs := make([]string, 0, len(keywords)+1)
	for _, kw := range append([]string{aggregator.All}, keywords...) {
		if kw == active {
			tabs = append(tabs, tabActiveStyle.Render(kw))
		} else {
			tabs = append(tabs, tabStyle.Render(kw))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func renderView(sess *session.Session) string {
	if !sess.HasResults() {
		return dimStyle.Render("No results. Try: search <keyword>") + "\n"
	}

	var b strings.Builder
	b.WriteString(renderTabs(sess.Keywords(), sess.ActiveKeyword()))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render(sortIndicator(sess.Order())))
	b.WriteString("\n")

	view := sess.View()
	if len(view) == 0 {
		b.WriteString(dimStyle.Render("No results for this tab.") + "\n")
		return b.String()
	}

	rows := make([][]string, 0, len(view))
	for _, r := range view {
		rows = append(rows, []string{
			r.Date,
			sourceStyle.Render(r.Source),
			processing.Truncate(r.Title, titleWidth) + "\n" + dimStyle.Render(r.Link),
			processing.Truncate(r.Snippet, snippetWidth),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorBorder)).
		BorderRow(true).
		Headers("Date", "Source", "Title", "Snippet").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerCellStyle
			}
			return cellStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("%d result(s)", len(view))))
	b.WriteString("\n")
	return b.String()
}

func renderDomains(domains []string) string {
	if len(domains) == 0 {
		return dimStyle.Render("No domains allowed. Results will be empty until you add one.")
	}
	lines := make([]string, len(domains))
	for i, d := range domains {
		lines[i] = fmt.Sprintf("%d. %s", i+1, d)
	}
	return strings.Join(lines, "\n")
}
