package dashboard

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/hoanghai1803/newsdash/internal/models"
)

// ErrInvalidPage is returned when a page number below 1 is selected.
var ErrInvalidPage = errors.New("page number must be >= 1")

// PageView is the displayed slice of the filtered collection together with
// what a pagination control needs.
type PageView struct {
	Articles       []models.Article `json:"articles"`
	Page           int              `json:"page"`
	PageSize       int              `json:"page_size"`
	TotalPages     int              `json:"total_pages"`
	TotalItems     int              `json:"total_items"`
	ShowPagination bool             `json:"show_pagination"`
}

// Store owns the raw article collection, the active criteria and the
// filtered view derived from them. Every mutation recomputes the filtered
// view synchronously. Criteria and collection changes reset the current page
// to 1; a favorite flip resets it only when the filtered set changes.
//
// Store is safe for concurrent use. Accessors return copies.
type Store struct {
	mu       sync.RWMutex
	articles []models.Article
	filtered []models.Article
	criteria Criteria
	page     int
	pageSize int

	// clock is non-nil while the date bounds follow the trailing window.
	clock  func() time.Time
	window int

	// loads counts Load calls.
	loads uint64
}

// NewStore creates an empty store with the given page size and initial
// criteria.
func NewStore(pageSize int, criteria Criteria) *Store {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Store{
		criteria: criteria.normalized(),
		page:     1,
		pageSize: pageSize,
		filtered: []models.Article{},
		articles: []models.Article{},
	}
}

// NewWindowedStore creates a store whose date bounds cover the trailing
// windowDays days ending on clock's current day. The bounds are re-derived
// on every Load until a filter change moves or clears either of them.
func NewWindowedStore(pageSize, windowDays int, clock func() time.Time) *Store {
	s := NewStore(pageSize, DefaultCriteria(clock(), windowDays))
	if windowDays > 0 {
		s.clock, s.window = clock, windowDays
	}
	return s
}

// Load replaces the raw collection wholesale.
func (s *Store) Load(articles []models.Article) {
	raw := make([]models.Article, len(articles))
	for i, a := range articles {
		if a.Keywords == nil {
			a.Keywords = []string{}
		}
		raw[i] = a
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clock != nil {
		d := DefaultCriteria(s.clock(), s.window)
		s.criteria.DateFrom, s.criteria.DateTo = d.DateFrom, d.DateTo
	}
	s.articles = raw
	s.loads++
	s.recompute()
}

// ToggleFavorite flips the favorite flag of the article with the given id.
// It reports false, changing nothing, when no such article is loaded; a
// concurrent reload may have dropped it.
func (s *Store) ToggleFavorite(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.replaceAt(i, !s.articles[i].IsFavorite)
	return true
}

// SetFavorite forces the favorite flag of an article and returns the load
// generation it was applied to. It reports false when the article is not
// loaded.
func (s *Store) SetFavorite(id int64, favorite bool) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return s.loads, false
	}
	if s.articles[i].IsFavorite != favorite {
		s.replaceAt(i, favorite)
	}
	return s.loads, true
}

// RevertFavorite undoes an optimistic SetFavorite made at load generation
// gen. It does nothing, reporting false, once the collection was reloaded
// since then, because the reload carries the server's value.
func (s *Store) RevertFavorite(id int64, favorite bool, gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 || s.loads != gen {
		return false
	}
	if s.articles[i].IsFavorite != favorite {
		s.replaceAt(i, favorite)
	}
	return true
}

// Article returns the loaded article with the given id.
func (s *Store) Article(id int64) (models.Article, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.Article{}, false
	}
	return s.articles[i], true
}

// ApplyFilter replaces the criteria and recomputes the filtered view.
func (s *Store) ApplyFilter(c Criteria) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setCriteria(c.normalized())
}

// UpdateFilter merges p into the current criteria and applies the result.
func (s *Store) UpdateFilter(p CriteriaPatch) Criteria {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setCriteria(s.criteria.Merge(p))
	return s.criteria
}

// Windowed reports whether the date bounds still follow the trailing window.
func (s *Store) Windowed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clock != nil
}

// setCriteria must be called with mu held for writing. Moving either date
// bound pins the dates for the rest of the session.
func (s *Store) setCriteria(c Criteria) {
	if !sameDate(c.DateFrom, s.criteria.DateFrom) || !sameDate(c.DateTo, s.criteria.DateTo) {
		s.clock = nil
	}
	s.criteria = c
	s.recompute()
}

// Criteria returns the active criteria.
func (s *Store) Criteria() Criteria {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.criteria
}

// Articles returns a copy of the raw collection.
func (s *Store) Articles() []models.Article {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.articles)
}

// Filtered returns a copy of the filtered collection.
func (s *Store) Filtered() []models.Article {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.filtered)
}

// CurrentPage returns the selected 1-indexed page.
func (s *Store) CurrentPage() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.page
}

// SetPage selects a page. Pages past the end are allowed and display empty.
func (s *Store) SetPage(n int) error {
	if n < 1 {
		return ErrInvalidPage
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.page = n
	return nil
}

// PageView projects the current page over the filtered collection.
func (s *Store) PageView() PageView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := TotalPages(len(s.filtered), s.pageSize)
	return PageView{
		Articles:       slices.Clone(PageOf(s.filtered, s.page, s.pageSize)),
		Page:           s.page,
		PageSize:       s.pageSize,
		TotalPages:     total,
		TotalItems:     len(s.filtered),
		ShowPagination: ShowPagination(total),
	}
}

// Facets returns the selector option lists for the raw collection.
func (s *Store) Facets() Facets {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return BuildFacets(s.articles)
}

// Favorites returns the favorite articles in collection order.
func (s *Store) Favorites() []models.Article {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return FavoritesSubset(s.articles)
}

// CategoryCounts tallies the filtered collection per main category.
func (s *Store) CategoryCounts() []models.CategoryStat {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return CategoryCounts(s.filtered)
}

func (s *Store) indexOf(id int64) int {
	return slices.IndexFunc(s.articles, func(a models.Article) bool {
		return a.ID == id
	})
}

// replaceAt swaps in a new collection with article i's flag set. The old
// slice is left untouched for any reader still holding it. The page only
// resets when the flip changes which articles pass the filter.
func (s *Store) replaceAt(i int, favorite bool) {
	next := slices.Clone(s.articles)
	next[i].IsFavorite = favorite
	s.articles = next

	prev := s.filtered
	s.filtered = Filter(s.articles, s.criteria)
	if !sameIDs(prev, s.filtered) {
		s.page = 1
	}
}

// recompute must be called with mu held for writing.
func (s *Store) recompute() {
	s.filtered = Filter(s.articles, s.criteria)
	s.page = 1
}

func sameIDs(a, b []models.Article) bool {
	return slices.EqualFunc(a, b, func(x, y models.Article) bool {
		return x.ID == y.ID
	})
}
