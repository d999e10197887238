package client

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hoanghai1803/newsdash/internal/metrics"
	"github.com/hoanghai1803/newsdash/internal/models"
)

// DashboardQuery sizes the dashboard batch.
type DashboardQuery struct {
	ArticleLimit int
	KeywordLimit int
	NetworkLimit int
}

// Snapshot is one complete, consistent set of dashboard data.
type Snapshot struct {
	Articles    []models.Article
	Keywords    []models.KeywordStat
	Categories  []models.CategoryStat
	Network     *models.NetworkGraph
	Stats       models.SummaryStats
	Collections []models.Collection
	FetchedAt   time.Time
}

// batchParts is the number of requests in a dashboard batch.
const batchParts = 6

// FetchDashboard issues the dashboard requests concurrently and joins them.
// Any single failure fails the whole batch; no partial snapshot is returned.
func (c *Client) FetchDashboard(ctx context.Context, q DashboardQuery) (*Snapshot, error) {
	start := time.Now()

	var snap Snapshot

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(batchParts)

	g.Go(func() error {
		articles, err := c.ListArticles(ctx, ArticleQuery{Limit: q.ArticleLimit})
		snap.Articles = articles
		return err
	})
	g.Go(func() error {
		keywords, err := c.KeywordStats(ctx, q.KeywordLimit)
		snap.Keywords = keywords
		return err
	})
	g.Go(func() error {
		categories, err := c.CategoryStats(ctx)
		snap.Categories = categories
		return err
	})
	g.Go(func() error {
		graph, err := c.KeywordNetwork(ctx, q.NetworkLimit)
		snap.Network = graph
		return err
	})
	g.Go(func() error {
		stats, err := c.SummaryStats(ctx)
		if stats != nil {
			snap.Stats = *stats
		}
		return err
	})
	g.Go(func() error {
		collections, err := c.Collections(ctx)
		snap.Collections = collections
		return err
	})

	if err := g.Wait(); err != nil {
		metrics.RecordBatch("error", time.Since(start).Seconds())
		return nil, fmt.Errorf("fetching dashboard: %w", err)
	}

	metrics.RecordBatch("success", time.Since(start).Seconds())
	snap.FetchedAt = time.Now()
	return &snap, nil
}
