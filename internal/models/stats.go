package models

// KeywordStat is the frequency of one keyword across all articles.
type KeywordStat struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// CategoryStat is the number of articles in one main category.
type CategoryStat struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// SummaryStats holds the dashboard header counters.
type SummaryStats struct {
	TotalArticles int `json:"total_articles"`
	TotalSources  int `json:"total_sources"`
	TodayArticles int `json:"today_articles"`
	FavoriteCount int `json:"favorite_count"`
}

// CollectResult is the outcome of a "collect now" run.
type CollectResult struct {
	Message  string `json:"message,omitempty"`
	Inserted int    `json:"inserted"`
	Updated  int    `json:"updated"`
	Skipped  int    `json:"skipped"`
}
