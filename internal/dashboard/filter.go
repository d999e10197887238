package dashboard

import (
	"strings"

	"github.com/hoanghai1803/newsdash/internal/models"
)

// Predicate is one independent filter condition.
type Predicate func(a models.Article, c Criteria) bool

// Predicates lists every condition Matches evaluates. The order carries no
// meaning.
var Predicates = []Predicate{
	MatchFavorites,
	MatchSource,
	MatchCategory,
	MatchDateFrom,
	MatchDateTo,
	MatchSearch,
}

// Matches reports whether a satisfies every predicate of c.
func Matches(a models.Article, c Criteria) bool {
	for _, p := range Predicates {
		if !p(a, c) {
			return false
		}
	}
	return true
}

// MatchFavorites passes favorites, or everything when FavoritesOnly is off.
func MatchFavorites(a models.Article, c Criteria) bool {
	return !c.FavoritesOnly || a.IsFavorite
}

// MatchSource passes articles from the selected source.
func MatchSource(a models.Article, c Criteria) bool {
	return c.Source == All || c.Source == "" || a.Source == c.Source
}

// MatchCategory passes articles in the selected main category.
func MatchCategory(a models.Article, c Criteria) bool {
	return c.Category == All || c.Category == "" || a.Category() == c.Category
}

// MatchDateFrom passes articles published on or after DateFrom. An
// unparseable published value fails whenever the bound is set.
func MatchDateFrom(a models.Article, c Criteria) bool {
	if c.DateFrom == nil {
		return true
	}
	t, ok := a.PublishedTime()
	return ok && !t.Before(*c.DateFrom)
}

// MatchDateTo passes articles published on or before the DateTo day.
func MatchDateTo(a models.Article, c Criteria) bool {
	if c.DateTo == nil {
		return true
	}
	t, ok := a.PublishedTime()
	return ok && t.Before(c.upperBound())
}

// MatchSearch passes articles whose title, summary or any keyword contains
// the search term, ignoring case and differences in whitespace.
func MatchSearch(a models.Article, c Criteria) bool {
	term := searchKey(c.SearchTerm)
	if term == "" {
		return true
	}

	if strings.Contains(searchKey(a.Title), term) {
		return true
	}
	if strings.Contains(searchKey(plainText(a.SummaryText())), term) {
		return true
	}
	for _, kw := range a.Keywords {
		if strings.Contains(searchKey(kw), term) {
			return true
		}
	}
	return false
}

// Filter returns the articles matching c, in their original order.
func Filter(articles []models.Article, c Criteria) []models.Article {
	out := make([]models.Article, 0, len(articles))
	for _, a := range articles {
		if Matches(a, c) {
			out = append(out, a)
		}
	}
	return out
}
