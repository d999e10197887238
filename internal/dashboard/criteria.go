// Package dashboard holds the in-memory article pipeline behind the news
// dashboard: filter criteria, the per-article predicate, pagination, facet
// rollups and the Store that ties them together.
package dashboard

import "time"

// All is the wildcard value for the source and category selectors.
const All = "all"

// Criteria is the full set of active filter parameters. It is a value type:
// every change produces a new Criteria through Merge.
type Criteria struct {
	SearchTerm    string     `json:"search_term"`
	Source        string     `json:"source"`
	Category      string     `json:"category"`
	FavoritesOnly bool       `json:"favorites_only"`
	DateFrom      *time.Time `json:"date_from,omitempty"`
	DateTo        *time.Time `json:"date_to,omitempty"`
}

// CriteriaPatch is a partial update. Nil fields keep the current value.
type CriteriaPatch struct {
	SearchTerm    *string    `json:"search_term,omitempty"`
	Source        *string    `json:"source,omitempty"`
	Category      *string    `json:"category,omitempty"`
	FavoritesOnly *bool      `json:"favorites_only,omitempty"`
	DateFrom      *time.Time `json:"date_from,omitempty"`
	DateTo        *time.Time `json:"date_to,omitempty"`
	ClearDateFrom bool       `json:"clear_date_from,omitempty"`
	ClearDateTo   bool       `json:"clear_date_to,omitempty"`
}

// DefaultCriteria matches everything published in the trailing windowDays
// days ending today. A non-positive window leaves both date bounds unset.
func DefaultCriteria(now time.Time, windowDays int) Criteria {
	c := Criteria{Source: All, Category: All}
	if windowDays <= 0 {
		return c
	}
	to := truncateDay(now)
	from := to.AddDate(0, 0, -windowDays)
	c.DateFrom, c.DateTo = &from, &to
	return c
}

// Merge returns a copy of c with the non-nil patch fields applied. Empty
// source and category values collapse to All.
func (c Criteria) Merge(p CriteriaPatch) Criteria {
	out := c
	if p.SearchTerm != nil {
		out.SearchTerm = *p.SearchTerm
	}
	if p.Source != nil {
		out.Source = *p.Source
	}
	if p.Category != nil {
		out.Category = *p.Category
	}
	if p.FavoritesOnly != nil {
		out.FavoritesOnly = *p.FavoritesOnly
	}
	if p.DateFrom != nil {
		d := truncateDay(*p.DateFrom)
		out.DateFrom = &d
	}
	if p.DateTo != nil {
		d := truncateDay(*p.DateTo)
		out.DateTo = &d
	}
	if p.ClearDateFrom {
		out.DateFrom = nil
	}
	if p.ClearDateTo {
		out.DateTo = nil
	}
	return out.normalized()
}

// Equal reports whether two criteria select the same articles.
func (c Criteria) Equal(o Criteria) bool {
	a, b := c.normalized(), o.normalized()
	return a.SearchTerm == b.SearchTerm &&
		a.Source == b.Source &&
		a.Category == b.Category &&
		a.FavoritesOnly == b.FavoritesOnly &&
		sameDate(a.DateFrom, b.DateFrom) &&
		sameDate(a.DateTo, b.DateTo)
}

func (c Criteria) normalized() Criteria {
	if c.Source == "" {
		c.Source = All
	}
	if c.Category == "" {
		c.Category = All
	}
	return c
}

// upperBound is the first instant after the inclusive DateTo day.
func (c Criteria) upperBound() time.Time {
	return c.DateTo.AddDate(0, 0, 1)
}

func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
