package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hoanghai1803/newsdash/internal/config"
	"github.com/hoanghai1803/newsdash/internal/models"
)

// newTestClient starts srv-backed client with rate limiting disabled.
func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(config.APIConfig{
		BaseURL:               srv.URL,
		TimeoutSeconds:        5,
		CollectTimeoutMinutes: 1,
		BreakerFailures:       3,
		BreakerCooldownSecs:   60,
	})
}

// fakeAPI serves a minimal but complete news API.
func fakeAPI() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/articles", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[
			{"id": 1, "title": "AI 반도체", "link": "https://a.example/1", "published": "2024-01-15T09:00:00",
			 "source": "ZDNet", "summary": null, "keywords": ["AI", "반도체"], "main_category": "AI", "is_favorite": false},
			{"id": 2, "title": "클라우드", "link": "https://a.example/2", "published": "2024-01-16T09:00:00",
			 "source": "Bloter", "keywords": null, "is_favorite": true}
		]`)
	})
	mux.HandleFunc("GET /api/keywords/stats", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"keyword": "AI", "count": 12}, {"keyword": "반도체", "count": 4}]`)
	})
	mux.HandleFunc("GET /api/categories/stats", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"category": "AI", "count": 9}]`)
	})
	mux.HandleFunc("GET /api/keywords/network", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"nodes": [{"id": "AI", "label": "AI", "value": 12}, {"id": "반도체", "label": "반도체", "value": 4}],
			"edges": [{"source": "AI", "target": "반도체", "value": 3}]}`)
	})
	mux.HandleFunc("GET /api/stats", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"total_articles": 2, "total_sources": 2, "today_articles": 1, "favorite_count": 1}`)
	})
	mux.HandleFunc("GET /api/collections", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"id": 7, "name": "chips", "rules": {"keywords": ["반도체"]}}]`)
	})
	return mux
}

func TestArticleQueryValues(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		q    ArticleQuery
		want string
	}{
		{name: "empty", q: ArticleQuery{}, want: ""},
		{name: "all selectors omitted", q: ArticleQuery{Source: "all", MainCategory: "all"}, want: ""},
		{name: "limit capped", q: ArticleQuery{Limit: 5000}, want: "limit=1000"},
		{name: "blank search omitted", q: ArticleQuery{Search: "   "}, want: ""},
		{
			name: "everything",
			q: ArticleQuery{
				Limit: 50, Offset: 100, Source: "ZDNet", Search: " AI ", MainCategory: "AI",
				FavoritesOnly: true, DateFrom: &from, DateTo: &to,
			},
			want: "date_from=2024-01-01&date_to=2024-01-31&favorites_only=true&limit=50&main_category=AI&offset=100&search=AI&source=ZDNet",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.q.Values().Encode(); got != tt.want {
				t.Errorf("Values() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestListArticles(t *testing.T) {
	var gotQuery string
	mux := fakeAPI()
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		mux.ServeHTTP(w, r)
	}))

	articles, err := c.ListArticles(context.Background(), ArticleQuery{Limit: 1000, Source: "ZDNet"})
	if err != nil {
		t.Fatalf("ListArticles: %v", err)
	}

	if gotQuery != "limit=1000&source=ZDNet" {
		t.Errorf("query = %q", gotQuery)
	}
	if len(articles) != 2 {
		t.Fatalf("got %d articles, want 2", len(articles))
	}
	if articles[0].Summary != nil {
		t.Errorf("null summary decoded as %q", *articles[0].Summary)
	}
	if articles[1].Keywords == nil || len(articles[1].Keywords) != 0 {
		t.Errorf("null keywords = %#v, want empty slice", articles[1].Keywords)
	}
	if !articles[1].IsFavorite {
		t.Error("is_favorite not decoded")
	}
}

func TestSources(t *testing.T) {
	mux := fakeAPI()
	mux.HandleFunc("GET /api/sources", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `["Bloter", "ZDNet"]`)
	})
	c := newTestClient(t, mux)

	sources, err := c.Sources(context.Background())
	if err != nil {
		t.Fatalf("Sources: %v", err)
	}
	if len(sources) != 2 || sources[0] != "Bloter" {
		t.Errorf("sources = %v", sources)
	}
}

func TestIsNotFound(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"detail": "Article not found"}`)
	}))

	err := c.AddFavorite(context.Background(), 99)
	if !IsNotFound(err) {
		t.Errorf("IsNotFound(%v) = false, want true", err)
	}
	if IsNotFound(ErrUnavailable) || IsNotFound(nil) {
		t.Error("IsNotFound matched a non-404 error")
	}
}

func TestAPIErrorDetail(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{name: "string detail", status: 500, body: `{"detail": "Failed to fetch articles."}`, want: "Failed to fetch articles."},
		{name: "list detail", status: 422, body: `{"detail": [{"loc": ["query", "limit"]}]}`, want: `[{"loc": ["query", "limit"]}]`},
		{name: "plain text", status: 502, body: "bad gateway\n", want: "bad gateway"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))

			_, err := c.CategoryStats(context.Background())

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("error %v is not an *APIError", err)
			}
			if apiErr.Status != tt.status {
				t.Errorf("Status = %d, want %d", apiErr.Status, tt.status)
			}
			if apiErr.Message != tt.want {
				t.Errorf("Message = %q, want %q", apiErr.Message, tt.want)
			}
		})
	}
}

func TestFavorites(t *testing.T) {
	var (
		addBody    map[string]int64
		removePath string
	)
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/favorites/add", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&addBody); err != nil {
			t.Errorf("decoding body: %v", err)
		}
		io.WriteString(w, `{"status": "success"}`)
	})
	mux.HandleFunc("DELETE /api/favorites/{id}", func(w http.ResponseWriter, r *http.Request) {
		removePath = r.URL.Path
		io.WriteString(w, `{"status": "success"}`)
	})
	c := newTestClient(t, mux)

	if err := c.AddFavorite(context.Background(), 42); err != nil {
		t.Fatalf("AddFavorite: %v", err)
	}
	if addBody["article_id"] != 42 {
		t.Errorf("article_id = %d, want 42", addBody["article_id"])
	}

	if err := c.RemoveFavorite(context.Background(), 42); err != nil {
		t.Fatalf("RemoveFavorite: %v", err)
	}
	if removePath != "/api/favorites/42" {
		t.Errorf("remove path = %q", removePath)
	}
}

func TestCollectNow(t *testing.T) {
	var maxFeeds string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/collect-news-now" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		maxFeeds = r.URL.Query().Get("max_feeds")
		io.WriteString(w, `{"message": "started", "inserted": 3, "updated": 1}`)
	}))

	res, err := c.CollectNow(context.Background(), 5)
	if err != nil {
		t.Fatalf("CollectNow: %v", err)
	}
	if maxFeeds != "5" {
		t.Errorf("max_feeds = %q, want 5", maxFeeds)
	}
	if res.Message != "started" || res.Inserted != 3 || res.Updated != 1 {
		t.Errorf("result = %+v", res)
	}
	if c.collect.Timeout != time.Minute {
		t.Errorf("collect timeout = %v, want 1m", c.collect.Timeout)
	}
	if c.http.Timeout != 5*time.Second {
		t.Errorf("default timeout = %v, want 5s", c.http.Timeout)
	}
}

func TestCreateCollection(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		var body struct {
			Name  string                 `json:"name"`
			Rules models.CollectionRules `json:"rules"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(models.Collection{ID: 9, Name: body.Name, Rules: body.Rules})
	}))

	if _, err := c.CreateCollection(context.Background(), "  ", models.CollectionRules{}); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("blank name error = %v, want ErrEmptyName", err)
	}
	if hits.Load() != 0 {
		t.Fatal("blank name reached the server")
	}

	rules := models.CollectionRules{Keywords: []string{"AI"}}
	got, err := c.CreateCollection(context.Background(), "ai", rules)
	if err != nil {
		t.Fatalf("CreateCollection: %v", err)
	}
	if got.ID != 9 || got.Name != "ai" || len(got.Rules.Keywords) != 1 {
		t.Errorf("created = %+v", got)
	}
}

func TestFetchDashboard(t *testing.T) {
	c := newTestClient(t, fakeAPI())

	snap, err := c.FetchDashboard(context.Background(), DashboardQuery{ArticleLimit: 1000, KeywordLimit: 50, NetworkLimit: 30})
	if err != nil {
		t.Fatalf("FetchDashboard: %v", err)
	}

	if len(snap.Articles) != 2 {
		t.Errorf("articles = %d, want 2", len(snap.Articles))
	}
	if len(snap.Keywords) != 2 || snap.Keywords[0].Keyword != "AI" {
		t.Errorf("keywords = %+v", snap.Keywords)
	}
	if len(snap.Categories) != 1 {
		t.Errorf("categories = %+v", snap.Categories)
	}
	if snap.Network == nil || len(snap.Network.Nodes) != 2 || len(snap.Network.Edges) != 1 {
		t.Errorf("network = %+v", snap.Network)
	}
	if snap.Stats.TotalArticles != 2 || snap.Stats.FavoriteCount != 1 {
		t.Errorf("stats = %+v", snap.Stats)
	}
	if len(snap.Collections) != 1 || snap.Collections[0].Name != "chips" {
		t.Errorf("collections = %+v", snap.Collections)
	}
	if snap.FetchedAt.IsZero() {
		t.Error("FetchedAt not set")
	}
}

func TestFetchDashboard_OneFailureFailsBatch(t *testing.T) {
	for _, path := range []string{"/api/stats", "/api/keywords/network", "/api/collections"} {
		t.Run(path, func(t *testing.T) {
			mux := fakeAPI()
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == path {
					w.WriteHeader(http.StatusInternalServerError)
					io.WriteString(w, `{"detail": "boom"}`)
					return
				}
				mux.ServeHTTP(w, r)
			}))

			snap, err := c.FetchDashboard(context.Background(), DashboardQuery{ArticleLimit: 10})
			if err == nil {
				t.Fatal("expected batch error, got nil")
			}
			if snap != nil {
				t.Errorf("partial snapshot returned: %+v", snap)
			}

			var apiErr *APIError
			if !errors.As(err, &apiErr) || apiErr.Message != "boom" {
				t.Errorf("error = %v, want wrapped APIError(boom)", err)
			}
		})
	}
}

func TestBreakerOpensOnServerErrors(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	for range 3 {
		if _, err := c.SummaryStats(context.Background()); err == nil {
			t.Fatal("expected error")
		}
	}
	if c.BreakerState() != "open" {
		t.Fatalf("breaker state = %q, want open", c.BreakerState())
	}

	_, err := c.SummaryStats(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("error = %v, want ErrUnavailable", err)
	}
	if hits.Load() != 3 {
		t.Errorf("server hits = %d, want 3 (open breaker must not call out)", hits.Load())
	}
}

func TestBreakerIgnoresClientErrors(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"detail": "Not Found"}`)
	}))

	for range 5 {
		err := c.RemoveFavorite(context.Background(), 1)
		if !IsNotFound(err) {
			t.Fatalf("error = %v, want 404", err)
		}
	}
	if c.BreakerState() != "closed" {
		t.Errorf("breaker state = %q, want closed", c.BreakerState())
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "unavailable", err: ErrUnavailable, want: "news API is temporarily unavailable"},
		{name: "api detail", err: &APIError{Status: 500, Message: "Failed to get keyword stats."}, want: "Failed to get keyword stats."},
		{name: "timeout", err: context.DeadlineExceeded, want: "news API timed out"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Describe(tt.err); got != tt.want {
				t.Errorf("Describe() = %q, want %q", got, tt.want)
			}
		})
	}
}
