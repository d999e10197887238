package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/hoanghai1803/newsdash/internal/dashboard"
	"github.com/hoanghai1803/newsdash/internal/models"
)

// titleWidth caps the title column so rows stay on one line.
const titleWidth = 60

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(header)
	return t
}

func renderPage(w io.Writer, view dashboard.PageView) {
	t := newTable(w, table.Row{"ID", "Published", "Source", "Category", "Title", "★"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 5, WidthMax: titleWidth},
	})
	t.Style().Format.Footer = text.FormatDefault

	for _, a := range view.Articles {
		star := ""
		if a.IsFavorite {
			star = "★"
		}
		t.AppendRow(table.Row{a.ID, publishedDate(a), a.Source, a.Category(), a.Title, star})
	}

	if view.ShowPagination {
		t.AppendFooter(table.Row{"", "", "", "", fmt.Sprintf("page %d/%d · %d articles", view.Page, view.TotalPages, view.TotalItems), ""})
	} else {
		t.AppendFooter(table.Row{"", "", "", "", fmt.Sprintf("%d articles", view.TotalItems), ""})
	}
	t.Render()
}

func publishedDate(a models.Article) string {
	if ts, ok := a.PublishedTime(); ok {
		return ts.Format("2006-01-02 15:04")
	}
	return a.Published
}

func renderFacets(w io.Writer, f dashboard.Facets) {
	t := newTable(w, table.Row{"Sources", "Categories"})
	for i := range max(len(f.Sources), len(f.Categories)) {
		var src, cat string
		if i < len(f.Sources) {
			src = f.Sources[i]
		}
		if i < len(f.Categories) {
			cat = f.Categories[i]
		}
		t.AppendRow(table.Row{src, cat})
	}
	t.Render()
}

func renderKeywords(w io.Writer, stats []models.KeywordStat) {
	t := newTable(w, table.Row{"#", "Keyword", "Count"})
	for i, s := range stats {
		t.AppendRow(table.Row{i + 1, s.Keyword, s.Count})
	}
	t.Render()
}

func renderCategories(w io.Writer, stats []models.CategoryStat) {
	t := newTable(w, table.Row{"Category", "Count", ""})
	top := 0
	for _, s := range stats {
		top = max(top, s.Count)
	}
	for _, s := range stats {
		t.AppendRow(table.Row{s.Category, s.Count, bar(s.Count, top, 30)})
	}
	t.Render()
}

// bar draws n relative to top as a block bar of at most width cells.
func bar(n, top, width int) string {
	if top <= 0 || n <= 0 {
		return ""
	}
	return strings.Repeat("█", max(1, n*width/top))
}

func renderStats(w io.Writer, s models.SummaryStats) {
	t := newTable(w, table.Row{"Total articles", "Sources", "Today", "Favorites"})
	t.AppendRow(table.Row{s.TotalArticles, s.TotalSources, s.TodayArticles, s.FavoriteCount})
	t.Render()
}

func renderCollections(w io.Writer, cs []models.Collection) {
	t := newTable(w, table.Row{"ID", "Name", "Keywords", "Sources", "Categories"})
	for _, c := range cs {
		t.AppendRow(table.Row{
			c.ID,
			c.Name,
			strings.Join(c.Rules.Keywords, ", "),
			strings.Join(c.Rules.Sources, ", "),
			strings.Join(c.Rules.Categories, ", "),
		})
	}
	t.Render()
}
