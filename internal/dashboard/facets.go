package dashboard

import (
	"cmp"
	"slices"

	"github.com/hoanghai1803/newsdash/internal/models"
)

// Facets are the option lists of the source and category selectors.
type Facets struct {
	Sources    []string `json:"sources"`
	Categories []string `json:"categories"`
}

// BuildFacets computes both facet lists from the raw collection.
func BuildFacets(articles []models.Article) Facets {
	return Facets{
		Sources:    DistinctSources(articles),
		Categories: DistinctCategories(articles),
	}
}

// DistinctSources returns the unique non-empty sources, sorted.
func DistinctSources(articles []models.Article) []string {
	return distinct(articles, func(a models.Article) (string, bool) {
		return a.Source, a.Source != ""
	})
}

// DistinctCategories returns the unique main categories, sorted. Absent
// categories and the uncategorized sentinels are left out.
func DistinctCategories(articles []models.Article) []string {
	return distinct(articles, func(a models.Article) (string, bool) {
		c := a.Category()
		return c, !models.IsUncategorized(c)
	})
}

func distinct(articles []models.Article, key func(models.Article) (string, bool)) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, a := range articles {
		k, ok := key(a)
		if !ok {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// FavoritesSubset returns the favorite articles in collection order.
func FavoritesSubset(articles []models.Article) []models.Article {
	out := []models.Article{}
	for _, a := range articles {
		if a.IsFavorite {
			out = append(out, a)
		}
	}
	return out
}

// CategoryCounts tallies articles per main category, most frequent first,
// ties broken by name. Uncategorized articles are not counted.
func CategoryCounts(articles []models.Article) []models.CategoryStat {
	counts := make(map[string]int)
	for _, a := range articles {
		if c := a.Category(); !models.IsUncategorized(c) {
			counts[c]++
		}
	}

	out := make([]models.CategoryStat, 0, len(counts))
	for c, n := range counts {
		out = append(out, models.CategoryStat{Category: c, Count: n})
	}
	slices.SortFunc(out, func(a, b models.CategoryStat) int {
		if a.Count != b.Count {
			return cmp.Compare(b.Count, a.Count)
		}
		return cmp.Compare(a.Category, b.Category)
	})
	return out
}
