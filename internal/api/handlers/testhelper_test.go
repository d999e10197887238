package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hoanghai1803/newsdash/internal/client"
	"github.com/hoanghai1803/newsdash/internal/controller"
	"github.com/hoanghai1803/newsdash/internal/dashboard"
	"github.com/hoanghai1803/newsdash/internal/models"
	"github.com/hoanghai1803/newsdash/internal/network"
)

func ptr[T any](v T) *T { return &v }

// stubAPI is a canned news API. Set an error field to make that call fail.
type stubAPI struct {
	snap       *client.Snapshot
	fetchErr   error
	favErr     error
	collectErr error
}

func (s *stubAPI) FetchDashboard(ctx context.Context, q client.DashboardQuery) (*client.Snapshot, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return s.snap, nil
}

func (s *stubAPI) AddFavorite(ctx context.Context, id int64) error    { return s.favErr }
func (s *stubAPI) RemoveFavorite(ctx context.Context, id int64) error { return s.favErr }

func (s *stubAPI) CreateCollection(ctx context.Context, name string, rules models.CollectionRules) (*models.Collection, error) {
	if name == "" {
		return nil, client.ErrEmptyName
	}
	return &models.Collection{ID: 3, Name: name, Rules: rules}, nil
}

func (s *stubAPI) CollectNow(ctx context.Context, maxFeeds int) (*models.CollectResult, error) {
	if s.collectErr != nil {
		return nil, s.collectErr
	}
	return &models.CollectResult{Message: "started"}, nil
}

// testArticles is 12 articles: even ids from ZDNet in the AI category,
// odd ids from Bloter; #12 is the only favorite.
func testArticles() []models.Article {
	out := make([]models.Article, 12)
	for i := range out {
		id := int64(i + 1)
		a := models.Article{
			ID:        id,
			Title:     "기사",
			Source:    "Bloter",
			Published: "2024-01-10T09:00:00",
			Keywords:  []string{"클라우드"},
		}
		if id%2 == 0 {
			a.Source = "ZDNet"
			a.MainCategory = ptr("AI")
			a.Keywords = []string{"AI"}
		}
		a.IsFavorite = id == 12
		out[i] = a
	}
	return out
}

func testSnapshot() *client.Snapshot {
	return &client.Snapshot{
		Articles:   testArticles(),
		Keywords:   []models.KeywordStat{{Keyword: "AI", Count: 6}, {Keyword: "클라우드", Count: 6}},
		Categories: []models.CategoryStat{{Category: "AI", Count: 6}},
		Network: &models.NetworkGraph{
			Nodes: []models.NetworkNode{{ID: "AI", Label: "AI", Value: 6}, {ID: "클라우드", Label: "클라우드", Value: 6}},
			Edges: []models.NetworkEdge{{Source: "AI", Target: "클라우드", Value: 2}},
		},
		Stats:       models.SummaryStats{TotalArticles: 12, TotalSources: 2, FavoriteCount: 1},
		Collections: []models.Collection{},
	}
}

// newTestController creates a controller over api. When api has a snapshot
// the controller is refreshed once so handlers see loaded data.
func newTestController(t *testing.T, api *stubAPI) *controller.Controller {
	t.Helper()

	store := dashboard.NewStore(10, dashboard.Criteria{})
	ctrl := controller.New(api, store, controller.Options{
		Query:   client.DashboardQuery{ArticleLimit: 1000},
		Width:   120,
		Height:  80,
		Palette: network.LightPalette,
	})
	if api.snap != nil && api.fetchErr == nil {
		if err := ctrl.Refresh(context.Background()); err != nil {
			t.Fatalf("refreshing test controller: %v", err)
		}
	}
	return ctrl
}

// withURLParam returns r with a chi route context carrying key=value.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func dashboardPatchSource(source string) dashboard.CriteriaPatch {
	return dashboard.CriteriaPatch{Source: &source}
}
