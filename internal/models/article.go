package models

import (
	"strings"
	"time"
)

// Category sentinels the collectors assign when no category keyword matched.
const (
	UncategorizedLabel = "기타"
	OtherLabel         = "other"
)

// Article is one ingested news item as served by the news API.
type Article struct {
	ID           int64    `json:"id"`
	Title        string   `json:"title"`
	Link         string   `json:"link"`
	Published    string   `json:"published"`
	Source       string   `json:"source"`
	Summary      *string  `json:"summary,omitempty"`
	Keywords     []string `json:"keywords"`
	IsFavorite   bool     `json:"is_favorite"`
	MainCategory *string  `json:"main_category,omitempty"`
	SubCategory  *string  `json:"sub_category,omitempty"`
}

var publishedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// PublishedTime parses the published timestamp. ok is false when the value
// is empty or in none of the known layouts.
func (a Article) PublishedTime() (t time.Time, ok bool) {
	s := strings.TrimSpace(a.Published)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range publishedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// SummaryText returns the summary or "" when absent.
func (a Article) SummaryText() string {
	if a.Summary == nil {
		return ""
	}
	return *a.Summary
}

// Category returns the main category or "" when absent.
func (a Article) Category() string {
	if a.MainCategory == nil {
		return ""
	}
	return *a.MainCategory
}

// IsUncategorized reports whether c is empty or one of the sentinel labels.
func IsUncategorized(c string) bool {
	return c == "" || c == UncategorizedLabel || c == OtherLabel
}
