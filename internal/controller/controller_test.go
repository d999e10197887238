package controller

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/hoanghai1803/newsdash/internal/client"
	"github.com/hoanghai1803/newsdash/internal/dashboard"
	"github.com/hoanghai1803/newsdash/internal/models"
	"github.com/hoanghai1803/newsdash/internal/network"
)

// fakeAPI is an in-memory NewsAPI. Set an err field to make that call fail.
type fakeAPI struct {
	mu sync.Mutex

	snap       *client.Snapshot
	fetchErr   error
	favErr     error
	createErr  error
	collectErr error

	added   []int64
	removed []int64
	fetches int

	// onFavorite runs inside AddFavorite/RemoveFavorite before they return.
	onFavorite func(id int64)
}

func (f *fakeAPI) FetchDashboard(ctx context.Context, q client.DashboardQuery) (*client.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.snap, nil
}

func (f *fakeAPI) AddFavorite(ctx context.Context, id int64) error {
	f.mu.Lock()
	f.added = append(f.added, id)
	hook, err := f.onFavorite, f.favErr
	f.mu.Unlock()
	if hook != nil {
		hook(id)
	}
	return err
}

func (f *fakeAPI) RemoveFavorite(ctx context.Context, id int64) error {
	f.mu.Lock()
	f.removed = append(f.removed, id)
	hook, err := f.onFavorite, f.favErr
	f.mu.Unlock()
	if hook != nil {
		hook(id)
	}
	return err
}

func (f *fakeAPI) CreateCollection(ctx context.Context, name string, rules models.CollectionRules) (*models.Collection, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &models.Collection{ID: 5, Name: name, Rules: rules}, nil
}

func (f *fakeAPI) CollectNow(ctx context.Context, maxFeeds int) (*models.CollectResult, error) {
	if f.collectErr != nil {
		return nil, f.collectErr
	}
	return &models.CollectResult{Inserted: 4, Updated: 2}, nil
}

func testSnapshot() *client.Snapshot {
	return &client.Snapshot{
		Articles: []models.Article{
			{ID: 1, Title: "AI 반도체", Source: "ZDNet", Published: "2024-01-15T09:00:00", Keywords: []string{"AI"}},
			{ID: 2, Title: "클라우드", Source: "Bloter", Published: "2024-01-16T09:00:00", IsFavorite: true},
		},
		Keywords:   []models.KeywordStat{{Keyword: "AI", Count: 12}},
		Categories: []models.CategoryStat{{Category: "AI", Count: 9}},
		Network: &models.NetworkGraph{
			Nodes: []models.NetworkNode{{ID: "AI", Label: "AI", Value: 12}, {ID: "칩", Label: "칩", Value: 4}},
			Edges: []models.NetworkEdge{{Source: "AI", Target: "칩", Value: 3}},
		},
		Stats:       models.SummaryStats{TotalArticles: 2, FavoriteCount: 1},
		Collections: []models.Collection{{ID: 1, Name: "chips"}},
		FetchedAt:   time.Date(2024, 1, 16, 10, 0, 0, 0, time.UTC),
	}
}

func newTestController(t *testing.T, api *fakeAPI) *Controller {
	t.Helper()
	store := dashboard.NewStore(10, dashboard.Criteria{})
	return New(api, store, Options{
		Query:   client.DashboardQuery{ArticleLimit: 1000},
		Width:   200,
		Height:  150,
		Palette: network.LightPalette,
		Seed:    7,
	})
}

func TestRefresh(t *testing.T) {
	api := &fakeAPI{snap: testSnapshot()}
	c := newTestController(t, api)

	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	if got := len(c.Store().Articles()); got != 2 {
		t.Errorf("store holds %d articles, want 2", got)
	}
	if len(c.Keywords()) != 1 || len(c.Categories()) != 1 || len(c.Collections()) != 1 {
		t.Error("aggregates not stored")
	}
	if c.Stats().TotalArticles != 2 {
		t.Errorf("stats = %+v", c.Stats())
	}
	if c.Loading() {
		t.Error("still loading after Refresh returned")
	}

	st := c.Status()
	if st.FetchedAt == nil || st.Loaded != 2 || st.Filtered != 2 || st.LastError != "" {
		t.Errorf("status = %+v", st)
	}

	var buf bytes.Buffer
	result, err := c.WriteNetworkPNG(&buf)
	if err != nil {
		t.Fatalf("WriteNetworkPNG: %v", err)
	}
	if result != network.Rendered {
		t.Fatalf("result = %v, want Rendered", result)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decoding PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 200 || b.Dy() != 150 {
		t.Errorf("PNG size = %v, want 200x150", b)
	}
}

func TestRefresh_FailureKeepsPreviousData(t *testing.T) {
	api := &fakeAPI{snap: testSnapshot()}
	c := newTestController(t, api)
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("first Refresh: %v", err)
	}

	api.fetchErr = &client.APIError{Status: 500, Message: "Failed to get keyword stats."}
	if err := c.Refresh(context.Background()); err == nil {
		t.Fatal("expected error from failing refresh")
	}

	if got := len(c.Store().Articles()); got != 2 {
		t.Errorf("store holds %d articles after failed refresh, want 2", got)
	}
	if len(c.Keywords()) != 1 {
		t.Error("keywords cleared by failed refresh")
	}
	if c.Network() == nil {
		t.Error("network cleared by failed refresh")
	}

	notices := c.Notices()
	if len(notices) != 1 || notices[0].Level != LevelError {
		t.Fatalf("notices = %+v, want one error", notices)
	}
	if c.Status().LastError != "Failed to get keyword stats." {
		t.Errorf("LastError = %q", c.Status().LastError)
	}
}

func TestRefresh_InsufficientNetwork(t *testing.T) {
	snap := testSnapshot()
	snap.Network = &models.NetworkGraph{Nodes: []models.NetworkNode{{ID: "AI"}}}
	c := newTestController(t, &fakeAPI{snap: snap})

	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	var buf bytes.Buffer
	result, err := c.WriteNetworkPNG(&buf)
	if err != nil {
		t.Fatalf("WriteNetworkPNG: %v", err)
	}
	if result != network.InsufficientData {
		t.Errorf("result = %v, want InsufficientData", result)
	}
	if buf.Len() != 0 {
		t.Errorf("wrote %d bytes for insufficient data", buf.Len())
	}
}

func TestToggleFavorite(t *testing.T) {
	api := &fakeAPI{snap: testSnapshot()}
	c := newTestController(t, api)
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	got, err := c.ToggleFavorite(context.Background(), 1)
	if err != nil {
		t.Fatalf("ToggleFavorite(1): %v", err)
	}
	if !got.IsFavorite {
		t.Error("article 1 not favorite after toggle")
	}
	if c.Stats().FavoriteCount != 2 {
		t.Errorf("FavoriteCount = %d, want 2", c.Stats().FavoriteCount)
	}

	got, err = c.ToggleFavorite(context.Background(), 2)
	if err != nil {
		t.Fatalf("ToggleFavorite(2): %v", err)
	}
	if got.IsFavorite {
		t.Error("article 2 still favorite after toggle")
	}

	if len(api.added) != 1 || api.added[0] != 1 {
		t.Errorf("added = %v, want [1]", api.added)
	}
	if len(api.removed) != 1 || api.removed[0] != 2 {
		t.Errorf("removed = %v, want [2]", api.removed)
	}
}

func TestToggleFavorite_RollbackOnRemoteError(t *testing.T) {
	api := &fakeAPI{snap: testSnapshot()}
	c := newTestController(t, api)
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	api.favErr = client.ErrUnavailable
	got, err := c.ToggleFavorite(context.Background(), 1)
	if !errors.Is(err, client.ErrUnavailable) {
		t.Fatalf("error = %v, want ErrUnavailable", err)
	}
	if got.IsFavorite {
		t.Error("returned article shows the failed flip")
	}

	a, ok := c.Store().Article(1)
	if !ok {
		t.Fatal("article 1 missing")
	}
	if a.IsFavorite {
		t.Error("favorite flag not rolled back")
	}
	if c.Stats().FavoriteCount != 1 {
		t.Errorf("FavoriteCount = %d, want unchanged 1", c.Stats().FavoriteCount)
	}

	notices := c.Notices()
	if len(notices) != 1 || notices[0].Level != LevelError {
		t.Errorf("notices = %+v, want one error", notices)
	}
}

func TestToggleFavorite_RollbackKeepsRefreshedValue(t *testing.T) {
	api := &fakeAPI{snap: testSnapshot()}
	c := newTestController(t, api)
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	// While the add call is in flight, a refresh loads article 1 as
	// favorited elsewhere. The failed call must not undo that.
	fresh := testSnapshot().Articles
	fresh[0].IsFavorite = true
	api.favErr = client.ErrUnavailable
	api.onFavorite = func(id int64) {
		c.Store().Load(fresh)
	}

	got, err := c.ToggleFavorite(context.Background(), 1)
	if !errors.Is(err, client.ErrUnavailable) {
		t.Fatalf("error = %v, want ErrUnavailable", err)
	}
	if !got.IsFavorite {
		t.Error("returned article should carry the refreshed flag")
	}

	a, ok := c.Store().Article(1)
	if !ok {
		t.Fatal("article 1 missing")
	}
	if !a.IsFavorite {
		t.Error("rollback overwrote the value a concurrent refresh loaded")
	}
}

func TestToggleFavorite_UnknownID(t *testing.T) {
	api := &fakeAPI{snap: testSnapshot()}
	c := newTestController(t, api)
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	if _, err := c.ToggleFavorite(context.Background(), 99); !errors.Is(err, ErrUnknownArticle) {
		t.Fatalf("error = %v, want ErrUnknownArticle", err)
	}
	if len(api.added)+len(api.removed) != 0 {
		t.Error("unknown id reached the API")
	}
}

func TestCreateCollection(t *testing.T) {
	api := &fakeAPI{snap: testSnapshot()}
	c := newTestController(t, api)
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	created, err := c.CreateCollection(context.Background(), "ai", models.CollectionRules{Keywords: []string{"AI"}})
	if err != nil {
		t.Fatalf("CreateCollection: %v", err)
	}
	if created.ID != 5 {
		t.Errorf("created = %+v", created)
	}
	if got := len(c.Collections()); got != 2 {
		t.Errorf("collections = %d, want 2", got)
	}

	api.createErr = errors.New("boom")
	if _, err := c.CreateCollection(context.Background(), "x", models.CollectionRules{}); err == nil {
		t.Fatal("expected error")
	}
	if got := len(c.Collections()); got != 2 {
		t.Errorf("failed create changed collections to %d", got)
	}
}

func TestCollectNow(t *testing.T) {
	api := &fakeAPI{snap: testSnapshot()}
	c := newTestController(t, api)

	res, err := c.CollectNow(context.Background(), 0)
	if err != nil {
		t.Fatalf("CollectNow: %v", err)
	}
	if res.Inserted != 4 {
		t.Errorf("result = %+v", res)
	}
	if api.fetches != 1 {
		t.Errorf("fetches = %d, want a refresh after collecting", api.fetches)
	}
	if got := len(c.Store().Articles()); got != 2 {
		t.Errorf("store holds %d articles, want 2", got)
	}

	notices := c.Notices()
	if len(notices) != 1 || notices[0].Level != LevelInfo {
		t.Fatalf("notices = %+v, want one info", notices)
	}
}

func TestCollectNow_Failure(t *testing.T) {
	api := &fakeAPI{snap: testSnapshot(), collectErr: context.DeadlineExceeded}
	c := newTestController(t, api)

	if _, err := c.CollectNow(context.Background(), 0); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error = %v, want DeadlineExceeded", err)
	}
	if api.fetches != 0 {
		t.Error("refreshed after a failed collect")
	}
	if c.Loading() {
		t.Error("loading flag left set")
	}
}

func TestNoticesBounded(t *testing.T) {
	c := newTestController(t, &fakeAPI{fetchErr: errors.New("down")})

	for range maxNotices + 5 {
		_ = c.Refresh(context.Background())
	}

	if got := len(c.Notices()); got != maxNotices {
		t.Errorf("kept %d notices, want %d", got, maxNotices)
	}
}

func TestUpdateCriteria(t *testing.T) {
	c := newTestController(t, &fakeAPI{snap: testSnapshot()})
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	source := "ZDNet"
	got := c.UpdateCriteria(dashboard.CriteriaPatch{Source: &source})
	if got.Source != "ZDNet" {
		t.Errorf("criteria source = %q", got.Source)
	}
	if n := len(c.Store().Filtered()); n != 1 {
		t.Errorf("filtered = %d, want 1", n)
	}
}

func TestRenderNetworkOnOwnSurface(t *testing.T) {
	c := newTestController(t, &fakeAPI{snap: testSnapshot()})

	svg := network.NewSVG(100, 100)
	if got := c.RenderNetwork(svg, 100, 100, network.DarkPalette, nil); got != network.InsufficientData {
		t.Errorf("before refresh = %v, want InsufficientData", got)
	}

	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if got := c.RenderNetwork(svg, 100, 100, network.DarkPalette, nil); got != network.Rendered {
		t.Errorf("after refresh = %v, want Rendered", got)
	}
}

func TestSetTheme(t *testing.T) {
	c := newTestController(t, &fakeAPI{snap: testSnapshot()})
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	if got := c.SetTheme(network.DarkPalette); got != network.Rendered {
		t.Errorf("SetTheme = %v, want Rendered", got)
	}
	if c.Palette() != network.DarkPalette {
		t.Error("palette not switched")
	}
}
