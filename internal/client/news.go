package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hoanghai1803/newsdash/internal/models"
)

// MaxArticleLimit is the largest page the API serves.
const MaxArticleLimit = 1000

// dateLayout is the format of date_from/date_to query parameters.
const dateLayout = "2006-01-02"

// allSelector means "no filter" for source and category parameters.
const allSelector = "all"

// ArticleQuery holds the optional server-side filters for ListArticles.
type ArticleQuery struct {
	Limit         int
	Offset        int
	Source        string
	Search        string
	MainCategory  string
	FavoritesOnly bool
	DateFrom      *time.Time
	DateTo        *time.Time
}

// Values encodes the query, omitting unset filters.
func (q ArticleQuery) Values() url.Values {
	v := url.Values{}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(min(q.Limit, MaxArticleLimit)))
	}
	if q.Offset > 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}
	if q.Source != "" && q.Source != allSelector {
		v.Set("source", q.Source)
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		v.Set("search", s)
	}
	if q.MainCategory != "" && q.MainCategory != allSelector {
		v.Set("main_category", q.MainCategory)
	}
	if q.FavoritesOnly {
		v.Set("favorites_only", "true")
	}
	if q.DateFrom != nil {
		v.Set("date_from", q.DateFrom.Format(dateLayout))
	}
	if q.DateTo != nil {
		v.Set("date_to", q.DateTo.Format(dateLayout))
	}
	return v
}

// ListArticles fetches articles matching q. A missing keywords array is
// returned as an empty slice.
func (c *Client) ListArticles(ctx context.Context, q ArticleQuery) ([]models.Article, error) {
	var articles []models.Article
	err := c.do(ctx, request{
		op:     "list articles",
		method: http.MethodGet,
		path:   "/api/articles",
		query:  q.Values(),
	}, &articles)
	if err != nil {
		return nil, err
	}

	if articles == nil {
		articles = []models.Article{}
	}
	for i := range articles {
		if articles[i].Keywords == nil {
			articles[i].Keywords = []string{}
		}
	}
	return articles, nil
}

// Sources fetches the distinct source names known to the API.
func (c *Client) Sources(ctx context.Context) ([]string, error) {
	var sources []string
	err := c.do(ctx, request{op: "sources", method: http.MethodGet, path: "/api/sources"}, &sources)
	if err != nil {
		return nil, err
	}
	if sources == nil {
		sources = []string{}
	}
	return sources, nil
}

// KeywordStats fetches the top limit keywords by frequency.
func (c *Client) KeywordStats(ctx context.Context, limit int) ([]models.KeywordStat, error) {
	var stats []models.KeywordStat
	err := c.do(ctx, request{
		op:     "keyword stats",
		method: http.MethodGet,
		path:   "/api/keywords/stats",
		query:  limitQuery(limit),
	}, &stats)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		stats = []models.KeywordStat{}
	}
	return stats, nil
}

// KeywordNetwork fetches the co-occurrence graph of the top limit keywords.
func (c *Client) KeywordNetwork(ctx context.Context, limit int) (*models.NetworkGraph, error) {
	var graph models.NetworkGraph
	err := c.do(ctx, request{
		op:     "keyword network",
		method: http.MethodGet,
		path:   "/api/keywords/network",
		query:  limitQuery(limit),
	}, &graph)
	if err != nil {
		return nil, err
	}
	if graph.Nodes == nil {
		graph.Nodes = []models.NetworkNode{}
	}
	if graph.Edges == nil {
		graph.Edges = []models.NetworkEdge{}
	}
	return &graph, nil
}

// CategoryStats fetches per-category article counts.
func (c *Client) CategoryStats(ctx context.Context) ([]models.CategoryStat, error) {
	var stats []models.CategoryStat
	err := c.do(ctx, request{op: "category stats", method: http.MethodGet, path: "/api/categories/stats"}, &stats)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		stats = []models.CategoryStat{}
	}
	return stats, nil
}

// SummaryStats fetches the header counters.
func (c *Client) SummaryStats(ctx context.Context) (*models.SummaryStats, error) {
	var stats models.SummaryStats
	err := c.do(ctx, request{op: "summary stats", method: http.MethodGet, path: "/api/stats"}, &stats)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// Collections fetches the saved collections.
func (c *Client) Collections(ctx context.Context) ([]models.Collection, error) {
	var collections []models.Collection
	err := c.do(ctx, request{op: "collections", method: http.MethodGet, path: "/api/collections"}, &collections)
	if err != nil {
		return nil, err
	}
	if collections == nil {
		collections = []models.Collection{}
	}
	return collections, nil
}

// ErrEmptyName is returned when creating a collection without a name.
var ErrEmptyName = errors.New("collection name is required")

// CreateCollection saves a named rule set and returns the stored collection.
func (c *Client) CreateCollection(ctx context.Context, name string, rules models.CollectionRules) (*models.Collection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	body := struct {
		Name  string                 `json:"name"`
		Rules models.CollectionRules `json:"rules"`
	}{Name: name, Rules: rules}

	var created models.Collection
	err := c.do(ctx, request{
		op:     "create collection",
		method: http.MethodPost,
		path:   "/api/collections",
		body:   body,
	}, &created)
	if err != nil {
		return nil, err
	}
	if created.Name == "" {
		created.Name = name
		created.Rules = rules
	}
	return &created, nil
}

// AddFavorite marks an article as a favorite.
func (c *Client) AddFavorite(ctx context.Context, id int64) error {
	body := struct {
		ArticleID int64 `json:"article_id"`
	}{ArticleID: id}

	return c.do(ctx, request{
		op:     "add favorite",
		method: http.MethodPost,
		path:   "/api/favorites/add",
		body:   body,
	}, nil)
}

// RemoveFavorite clears an article's favorite flag.
func (c *Client) RemoveFavorite(ctx context.Context, id int64) error {
	return c.do(ctx, request{
		op:     "remove favorite",
		method: http.MethodDelete,
		path:   "/api/favorites/" + strconv.FormatInt(id, 10),
	}, nil)
}

// CollectNow triggers an immediate server-side collection run. It uses the
// extended collect timeout. maxFeeds <= 0 lets the server decide.
func (c *Client) CollectNow(ctx context.Context, maxFeeds int) (*models.CollectResult, error) {
	var q url.Values
	if maxFeeds > 0 {
		q = url.Values{"max_feeds": {strconv.Itoa(maxFeeds)}}
	}

	var result models.CollectResult
	err := c.do(ctx, request{
		op:     "collect now",
		method: http.MethodPost,
		path:   "/api/collect-news-now",
		query:  q,
		long:   true,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func limitQuery(limit int) url.Values {
	if limit <= 0 {
		return nil
	}
	return url.Values{"limit": {strconv.Itoa(limit)}}
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Describe returns a short user-facing message for an error from Client.
func Describe(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnavailable):
		return "news API is temporarily unavailable"
	case errors.Is(err, ErrEmptyName):
		return ErrEmptyName.Error()
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	case errors.Is(err, context.DeadlineExceeded):
		return "news API timed out"
	default:
		return fmt.Sprintf("news API request failed: %v", err)
	}
}
