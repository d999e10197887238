package main

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hoanghai1803/newsdash/internal/app"
	"github.com/hoanghai1803/newsdash/internal/client"
	"github.com/hoanghai1803/newsdash/internal/dashboard"
	"github.com/hoanghai1803/newsdash/internal/models"
	"github.com/hoanghai1803/newsdash/internal/network"
)

func newServeCmd(e *env) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard API on localhost",
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != 0 {
				e.cfg.Server.Port = port
			}
			ctrl, err := app.NewController(e.cfg, e.client)
			if err != nil {
				return err
			}
			return app.Serve(cmd.Context(), e.cfg, ctrl)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides config)")
	return cmd
}

// articleFlags are the filter flags of the articles command.
type articleFlags struct {
	search    string
	source    string
	category  string
	favorites bool
	from      string
	to        string
	allDates  bool
	page      int
}

func (f articleFlags) patch(cmd *cobra.Command) (dashboard.CriteriaPatch, error) {
	var p dashboard.CriteriaPatch
	if cmd.Flags().Changed("search") {
		p.SearchTerm = &f.search
	}
	if cmd.Flags().Changed("source") {
		p.Source = &f.source
	}
	if cmd.Flags().Changed("category") {
		p.Category = &f.category
	}
	if f.favorites {
		p.FavoritesOnly = &f.favorites
	}
	if f.allDates {
		p.ClearDateFrom, p.ClearDateTo = true, true
	}
	if f.from != "" {
		t, err := time.Parse("2006-01-02", f.from)
		if err != nil {
			return p, fmt.Errorf("invalid --from %q: want YYYY-MM-DD", f.from)
		}
		p.DateFrom = &t
	}
	if f.to != "" {
		t, err := time.Parse("2006-01-02", f.to)
		if err != nil {
			return p, fmt.Errorf("invalid --to %q: want YYYY-MM-DD", f.to)
		}
		p.DateTo = &t
	}
	return p, nil
}

// loadStore fetches the article collection and applies the flags to it.
func loadStore(cmd *cobra.Command, e *env, f articleFlags) (*dashboard.Store, error) {
	patch, err := f.patch(cmd)
	if err != nil {
		return nil, err
	}

	articles, err := e.client.ListArticles(cmd.Context(), client.ArticleQuery{Limit: e.cfg.Dashboard.ArticleLimit})
	if err != nil {
		return nil, err
	}

	store := app.NewStore(e.cfg, time.Now)
	store.Load(articles)
	store.UpdateFilter(patch)
	return store, nil
}

func newArticlesCmd(e *env) *cobra.Command {
	var f articleFlags
	cmd := &cobra.Command{
		Use:     "articles",
		Aliases: []string{"ls"},
		Short:   "List articles with the dashboard filters",
		Long: `List articles from the news API, filtered and paginated the same way
as the dashboard. Without --from/--to the configured default window applies;
--all-dates removes it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := loadStore(cmd, e, f)
			if err != nil {
				return err
			}
			if err := store.SetPage(f.page); err != nil {
				return err
			}
			view := store.PageView()
			return e.emit(cmd.OutOrStdout(), view, func() { renderPage(cmd.OutOrStdout(), view) })
		},
	}
	cmd.Flags().StringVarP(&f.search, "search", "s", "", "search title, summary and keywords")
	cmd.Flags().StringVar(&f.source, "source", dashboard.All, "only this source")
	cmd.Flags().StringVar(&f.category, "category", dashboard.All, "only this main category")
	cmd.Flags().BoolVar(&f.favorites, "favorites", false, "only favorites")
	cmd.Flags().StringVar(&f.from, "from", "", "published on or after (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.to, "to", "", "published on or before (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&f.allDates, "all-dates", false, "ignore the default date window")
	cmd.Flags().IntVarP(&f.page, "page", "p", 1, "page number")
	return cmd
}

func newFacetsCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "facets",
		Short: "List the known sources and the categories of the loaded articles",
		RunE: func(cmd *cobra.Command, args []string) error {
			articles, err := e.client.ListArticles(cmd.Context(), client.ArticleQuery{Limit: e.cfg.Dashboard.ArticleLimit})
			if err != nil {
				return err
			}
			facets := dashboard.BuildFacets(articles)

			// The server knows sources beyond the article limit.
			sources, err := e.client.Sources(cmd.Context())
			if err != nil {
				return err
			}
			facets.Sources = sources
			return e.emit(cmd.OutOrStdout(), facets, func() { renderFacets(cmd.OutOrStdout(), facets) })
		},
	}
}

func newKeywordsCmd(e *env) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "keywords",
		Short: "Show the most frequent keywords",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("limit") {
				limit = e.cfg.Dashboard.KeywordLimit
			}
			stats, err := e.client.KeywordStats(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return e.emit(cmd.OutOrStdout(), stats, func() { renderKeywords(cmd.OutOrStdout(), stats) })
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "number of keywords")
	return cmd
}

func newCategoriesCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "Show article counts per main category",
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := e.client.CategoryStats(cmd.Context())
			if err != nil {
				return err
			}
			return e.emit(cmd.OutOrStdout(), stats, func() { renderCategories(cmd.OutOrStdout(), stats) })
		},
	}
}

func newStatsCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the summary counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := e.client.SummaryStats(cmd.Context())
			if err != nil {
				return err
			}
			return e.emit(cmd.OutOrStdout(), stats, func() { renderStats(cmd.OutOrStdout(), *stats) })
		},
	}
}

// errNotEnoughData is returned when the network has nothing to draw.
var errNotEnoughData = errors.New("not enough keyword data to draw a network")

func newNetworkCmd(e *env) *cobra.Command {
	var (
		out           string
		theme         string
		width, height int
		limit         int
		seed          uint64
	)
	cmd := &cobra.Command{
		Use:   "network",
		Short: "Draw the keyword co-occurrence network to a PNG or SVG file",
		RunE: func(cmd *cobra.Command, args []string) error {
			palette, err := app.Palette(e.cfg)
			if err != nil {
				return err
			}
			if theme != "" {
				p, ok := network.PaletteFor(theme)
				if !ok {
					return fmt.Errorf("invalid --theme %q: must be light or dark", theme)
				}
				palette = p
			}
			if width <= 0 {
				width = e.cfg.Network.Width
			}
			if height <= 0 {
				height = e.cfg.Network.Height
			}
			if !cmd.Flags().Changed("limit") {
				limit = e.cfg.Dashboard.NetworkLimit
			}
			if !cmd.Flags().Changed("seed") {
				seed = e.cfg.Network.Seed
			}
			var rng *rand.Rand
			if seed != 0 {
				rng = rand.New(rand.NewPCG(seed, seed))
			}

			graph, err := e.client.KeywordNetwork(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if err := drawNetworkFile(out, graph, width, height, palette, rng); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d keywords, %d links)\n", out, len(graph.Nodes), len(graph.Edges))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "network.png", "output file (.png or .svg)")
	cmd.Flags().StringVar(&theme, "theme", "", "light or dark (default from config)")
	cmd.Flags().IntVar(&width, "width", 0, "image width (default from config)")
	cmd.Flags().IntVar(&height, "height", 0, "image height (default from config)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 30, "number of keywords")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "layout seed; 0 picks a random layout")
	return cmd
}

func newCollectCmd(e *env) *cobra.Command {
	var maxFeeds int
	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Trigger a news collection run on the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := e.client.CollectNow(cmd.Context(), maxFeeds)
			if err != nil {
				return err
			}
			return e.emit(cmd.OutOrStdout(), res, func() {
				if res.Message != "" {
					fmt.Fprintln(cmd.OutOrStdout(), res.Message)
					return
				}
				fmt.Fprintf(cmd.OutOrStdout(), "inserted %d, updated %d, skipped %d\n", res.Inserted, res.Updated, res.Skipped)
			})
		},
	}
	cmd.Flags().IntVar(&maxFeeds, "max-feeds", 0, "limit the number of feeds (0 = server default)")
	return cmd
}

func newFavoriteCmd(e *env) *cobra.Command {
	var remove bool
	cmd := &cobra.Command{
		Use:   "favorite <article-id>",
		Short: "Mark an article as a favorite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid article id %q: %w", args[0], err)
			}
			if remove {
				err = e.client.RemoveFavorite(cmd.Context(), id)
			} else {
				err = e.client.AddFavorite(cmd.Context(), id)
			}
			if client.IsNotFound(err) {
				return fmt.Errorf("article %d not found", id)
			}
			if err != nil {
				return err
			}
			verb := "added"
			if remove {
				verb = "removed"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "favorite %s: %d\n", verb, id)
			return nil
		},
	}
	cmd.Flags().BoolVar(&remove, "remove", false, "remove the favorite instead")
	return cmd
}

func newCollectionsCmd(e *env) *cobra.Command {
	var create string
	var keywords, sources, categories []string
	cmd := &cobra.Command{
		Use:   "collections",
		Short: "List saved collections, or create one with --create",
		RunE: func(cmd *cobra.Command, args []string) error {
			if create != "" {
				rules := rulesFrom(keywords, sources, categories)
				created, err := e.client.CreateCollection(cmd.Context(), create, rules)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created collection %d: %s\n", created.ID, created.Name)
				return nil
			}

			cs, err := e.client.Collections(cmd.Context())
			if err != nil {
				return err
			}
			return e.emit(cmd.OutOrStdout(), cs, func() { renderCollections(cmd.OutOrStdout(), cs) })
		},
	}
	cmd.Flags().StringVar(&create, "create", "", "name of a collection to create")
	cmd.Flags().StringSliceVar(&keywords, "keyword", nil, "rule keyword (repeatable)")
	cmd.Flags().StringSliceVar(&sources, "source", nil, "rule source (repeatable)")
	cmd.Flags().StringSliceVar(&categories, "category", nil, "rule category (repeatable)")
	return cmd
}

func rulesFrom(keywords, sources, categories []string) models.CollectionRules {
	return models.CollectionRules{
		Keywords:   trimAll(keywords),
		Sources:    trimAll(sources),
		Categories: trimAll(categories),
	}
}

func trimAll(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func drawNetworkFile(path string, graph *models.NetworkGraph, width, height int, p network.Palette, rng *rand.Rand) error {
	var (
		result network.Result
		write  func(f *os.File) error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		raster := network.NewRaster(width, height)
		result = network.Render(raster, graph, width, height, p, rng)
		write = func(f *os.File) error { return raster.EncodePNG(f) }
	case ".svg":
		svg := network.NewSVG(width, height)
		result = network.Render(svg, graph, width, height, p, rng)
		write = func(f *os.File) error {
			_, err := svg.WriteTo(f)
			return err
		}
	default:
		return fmt.Errorf("unsupported output extension %q: use .png or .svg", ext)
	}

	if result == network.InsufficientData {
		return errNotEnoughData
	}
	if result != network.Rendered {
		return fmt.Errorf("drawing network: %s", result)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
