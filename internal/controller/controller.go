// Package controller joins the news API client, the article store and the
// keyword network view into one dashboard session.
package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/hoanghai1803/newsdash/internal/client"
	"github.com/hoanghai1803/newsdash/internal/dashboard"
	"github.com/hoanghai1803/newsdash/internal/metrics"
	"github.com/hoanghai1803/newsdash/internal/models"
	"github.com/hoanghai1803/newsdash/internal/network"
)

// NewsAPI is the subset of the remote API the dashboard needs.
type NewsAPI interface {
	FetchDashboard(ctx context.Context, q client.DashboardQuery) (*client.Snapshot, error)
	AddFavorite(ctx context.Context, id int64) error
	RemoveFavorite(ctx context.Context, id int64) error
	CreateCollection(ctx context.Context, name string, rules models.CollectionRules) (*models.Collection, error)
	CollectNow(ctx context.Context, maxFeeds int) (*models.CollectResult, error)
}

// Compile-time interface check.
var _ NewsAPI = (*client.Client)(nil)

// ErrUnknownArticle is returned when toggling an id that is not loaded.
var ErrUnknownArticle = errors.New("article not found")

// maxNotices bounds the notification history.
const maxNotices = 20

// Notice levels.
const (
	LevelInfo  = "info"
	LevelError = "error"
)

// Notice is one user-facing notification.
type Notice struct {
	Level   string    `json:"level"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// Status summarises the session for the status endpoint.
type Status struct {
	Loading   bool       `json:"loading"`
	FetchedAt *time.Time `json:"fetched_at"`
	LastError string     `json:"last_error,omitempty"`
	Loaded    int        `json:"loaded"`
	Filtered  int        `json:"filtered"`
}

// Options configures a Controller.
type Options struct {
	Query   client.DashboardQuery
	Width   int
	Height  int
	Palette network.Palette
	// Seed fixes the network layout sequence; 0 re-randomizes every draw.
	Seed uint64
}

// Controller owns the dashboard session state.
type Controller struct {
	api    NewsAPI
	store  *dashboard.Store
	query  client.DashboardQuery
	canvas *network.Raster
	view   *network.View
	width  int
	height int

	mu          sync.RWMutex
	loading     int
	keywords    []models.KeywordStat
	categories  []models.CategoryStat
	graph       *models.NetworkGraph
	stats       models.SummaryStats
	collections []models.Collection
	fetchedAt   time.Time
	lastErr     string
	notices     []Notice
}

// New creates a Controller. The network view draws onto an in-memory
// raster canvas of opts.Width by opts.Height.
func New(api NewsAPI, store *dashboard.Store, opts Options) *Controller {
	var rng *rand.Rand
	if opts.Seed != 0 {
		rng = rand.New(rand.NewPCG(opts.Seed, opts.Seed))
	}

	c := &Controller{
		api:         api,
		store:       store,
		query:       opts.Query,
		width:       opts.Width,
		height:      opts.Height,
		keywords:    []models.KeywordStat{},
		categories:  []models.CategoryStat{},
		collections: []models.Collection{},
	}
	if opts.Width > 0 && opts.Height > 0 {
		c.canvas = network.NewRaster(opts.Width, opts.Height)
	}
	c.view = network.NewView(opts.Width, opts.Height, opts.Palette, c.mount, rng)
	return c
}

func (c *Controller) mount() network.Surface {
	if c.canvas == nil {
		return nil
	}
	return c.canvas
}

// Store returns the article store.
func (c *Controller) Store() *dashboard.Store {
	return c.store
}

// Refresh fetches the whole dashboard batch. On failure the previous data
// stays in place and an error notice is posted. Concurrent refreshes are not
// fenced; the last one to finish wins.
func (c *Controller) Refresh(ctx context.Context) error {
	c.setLoading(1)
	snap, err := c.api.FetchDashboard(ctx, c.query)
	c.setLoading(-1)

	if err != nil {
		slog.Error("dashboard refresh failed", "error", err)
		c.mu.Lock()
		c.lastErr = client.Describe(err)
		c.mu.Unlock()
		c.notify(LevelError, "데이터를 불러오지 못했습니다: "+client.Describe(err))
		return fmt.Errorf("refreshing dashboard: %w", err)
	}

	c.store.Load(snap.Articles)

	c.mu.Lock()
	c.keywords = snap.Keywords
	c.categories = snap.Categories
	c.graph = snap.Network
	c.stats = snap.Stats
	c.collections = snap.Collections
	c.fetchedAt = snap.FetchedAt
	c.lastErr = ""
	c.mu.Unlock()

	result := c.view.SetGraph(snap.Network)
	c.recordStoreSize()

	slog.Info("dashboard refreshed",
		"articles", len(snap.Articles),
		"keywords", len(snap.Keywords),
		"network", result.String(),
	)
	return nil
}

// Run refreshes every interval until ctx is done.
func (c *Controller) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = c.Refresh(ctx)
		}
	}
}

// ToggleFavorite flips the article's favorite flag locally, then persists
// it. A remote failure rolls the flag back and posts an error notice. The
// rollback is skipped when a refresh has replaced the flipped flag meanwhile.
func (c *Controller) ToggleFavorite(ctx context.Context, id int64) (models.Article, error) {
	before, ok := c.store.Article(id)
	if !ok {
		return models.Article{}, fmt.Errorf("toggling favorite %d: %w", id, ErrUnknownArticle)
	}
	want := !before.IsFavorite

	gen, ok := c.store.SetFavorite(id, want)
	if !ok {
		return models.Article{}, fmt.Errorf("toggling favorite %d: %w", id, ErrUnknownArticle)
	}

	var err error
	if want {
		err = c.api.AddFavorite(ctx, id)
	} else {
		err = c.api.RemoveFavorite(ctx, id)
	}
	if err != nil {
		rolledBack := c.store.RevertFavorite(id, before.IsFavorite, gen)
		c.recordStoreSize()
		slog.Warn("favorite toggle failed", "article_id", id, "rolled_back", rolledBack, "error", err)
		c.notify(LevelError, "즐겨찾기 변경에 실패했습니다: "+client.Describe(err))
		if current, ok := c.store.Article(id); ok {
			before = current
		}
		return before, fmt.Errorf("toggling favorite %d: %w", id, err)
	}

	c.mu.Lock()
	if want {
		c.stats.FavoriteCount++
	} else if c.stats.FavoriteCount > 0 {
		c.stats.FavoriteCount--
	}
	c.mu.Unlock()
	c.recordStoreSize()

	after, _ := c.store.Article(id)
	return after, nil
}

// UpdateCriteria merges patch into the active criteria and refilters.
func (c *Controller) UpdateCriteria(patch dashboard.CriteriaPatch) dashboard.Criteria {
	criteria := c.store.UpdateFilter(patch)
	c.recordStoreSize()
	return criteria
}

// CreateCollection saves a collection and adds it to the session list.
func (c *Controller) CreateCollection(ctx context.Context, name string, rules models.CollectionRules) (*models.Collection, error) {
	created, err := c.api.CreateCollection(ctx, name, rules)
	if err != nil {
		c.notify(LevelError, "컬렉션을 만들지 못했습니다: "+client.Describe(err))
		return nil, fmt.Errorf("creating collection: %w", err)
	}

	c.mu.Lock()
	c.collections = append(c.collections, *created)
	c.mu.Unlock()

	c.notify(LevelInfo, fmt.Sprintf("컬렉션 %q 생성됨", created.Name))
	return created, nil
}

// CollectNow triggers a server-side collection run and then refreshes.
// The run result is returned even if the follow-up refresh fails.
func (c *Controller) CollectNow(ctx context.Context, maxFeeds int) (*models.CollectResult, error) {
	c.setLoading(1)
	res, err := c.api.CollectNow(ctx, maxFeeds)
	c.setLoading(-1)
	if err != nil {
		c.notify(LevelError, "뉴스 수집에 실패했습니다: "+client.Describe(err))
		return nil, fmt.Errorf("collecting news: %w", err)
	}

	msg := res.Message
	if msg == "" {
		msg = fmt.Sprintf("수집 완료: %d건 추가, %d건 갱신", res.Inserted, res.Updated)
	}
	c.notify(LevelInfo, msg)

	if err := c.Refresh(ctx); err != nil {
		return res, err
	}
	return res, nil
}

// SetTheme switches the network palette and redraws.
func (c *Controller) SetTheme(p network.Palette) network.Result {
	return c.view.SetPalette(p)
}

// RelayoutNetwork redraws the session view with a fresh random layout.
func (c *Controller) RelayoutNetwork() network.Result {
	return c.view.Redraw()
}

// RenderNetwork draws the current graph onto s with its own size, palette
// and layout source, independent of the session view.
func (c *Controller) RenderNetwork(s network.Surface, width, height int, p network.Palette, rng *rand.Rand) network.Result {
	return network.Render(s, c.Network(), width, height, p, rng)
}

// WriteNetworkPNG encodes the session view's last drawing. It reports the
// last render result and writes nothing unless that result is Rendered.
func (c *Controller) WriteNetworkPNG(w io.Writer) (network.Result, error) {
	var result network.Result
	err := c.view.Read(func(s network.Surface, last network.Result) error {
		result = last
		if last != network.Rendered {
			return nil
		}
		raster, ok := s.(*network.Raster)
		if !ok {
			return fmt.Errorf("network surface %T cannot encode PNG", s)
		}
		return raster.EncodePNG(w)
	})
	return result, err
}

// NetworkSize returns the session view's canvas size.
func (c *Controller) NetworkSize() (int, int) {
	return c.width, c.height
}

// Palette returns the session view's palette.
func (c *Controller) Palette() network.Palette {
	return c.view.Palette()
}

// Keywords returns the keyword stats from the last refresh.
func (c *Controller) Keywords() []models.KeywordStat {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.KeywordStat{}, c.keywords...)
}

// Categories returns the category stats from the last refresh.
func (c *Controller) Categories() []models.CategoryStat {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.CategoryStat{}, c.categories...)
}

// Network returns the keyword graph from the last refresh, or nil.
func (c *Controller) Network() *models.NetworkGraph {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.graph
}

// Stats returns the summary counters.
func (c *Controller) Stats() models.SummaryStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

// Collections returns the saved collections.
func (c *Controller) Collections() []models.Collection {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.Collection{}, c.collections...)
}

// Loading reports whether a batch fetch or collect run is in flight.
func (c *Controller) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading > 0
}

// Notices returns the most recent notifications, oldest first.
func (c *Controller) Notices() []Notice {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Notice{}, c.notices...)
}

// Status summarises the session.
func (c *Controller) Status() Status {
	c.mu.RLock()
	st := Status{
		Loading:   c.loading > 0,
		LastError: c.lastErr,
	}
	if !c.fetchedAt.IsZero() {
		t := c.fetchedAt
		st.FetchedAt = &t
	}
	c.mu.RUnlock()

	st.Loaded = len(c.store.Articles())
	st.Filtered = len(c.store.Filtered())
	return st
}

func (c *Controller) setLoading(delta int) {
	c.mu.Lock()
	c.loading += delta
	c.mu.Unlock()
}

func (c *Controller) notify(level, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notices = append(c.notices, Notice{Level: level, Message: message, Time: time.Now()})
	if over := len(c.notices) - maxNotices; over > 0 {
		c.notices = append([]Notice(nil), c.notices[over:]...)
	}
}

func (c *Controller) recordStoreSize() {
	metrics.SetStoreSize(len(c.store.Articles()), len(c.store.Filtered()))
}
