// Package app wires the configuration, the news API client, the dashboard
// controller and the HTTP router into a runnable service.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/hoanghai1803/newsdash/internal/api"
	"github.com/hoanghai1803/newsdash/internal/client"
	"github.com/hoanghai1803/newsdash/internal/config"
	"github.com/hoanghai1803/newsdash/internal/controller"
	"github.com/hoanghai1803/newsdash/internal/dashboard"
	"github.com/hoanghai1803/newsdash/internal/network"
)

const shutdownTimeout = 5 * time.Second

// SetupLogging installs a text slog handler on stderr at the given level.
func SetupLogging(level string) error {
	lvl, err := config.ParseLevel(level)
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
	return nil
}

// Palette resolves the configured theme and its hex overrides.
func Palette(cfg *config.Config) (network.Palette, error) {
	base, ok := network.PaletteFor(cfg.Network.Theme)
	if !ok {
		return network.Palette{}, fmt.Errorf("unknown theme %q", cfg.Network.Theme)
	}
	p, err := base.Override(cfg.Theme.Background, cfg.Theme.Accent, cfg.Theme.Foreground, cfg.Theme.Divider)
	if err != nil {
		return network.Palette{}, fmt.Errorf("applying [theme] overrides: %w", err)
	}
	return p, nil
}

// DashboardQuery sizes the dashboard batch from config.
func DashboardQuery(cfg *config.Config) client.DashboardQuery {
	return client.DashboardQuery{
		ArticleLimit: cfg.Dashboard.ArticleLimit,
		KeywordLimit: cfg.Dashboard.KeywordLimit,
		NetworkLimit: cfg.Dashboard.NetworkLimit,
	}
}

// NewStore creates an article store with the configured page size and the
// default trailing date window, which moves forward with clock on every
// refresh until the user picks dates.
func NewStore(cfg *config.Config, clock func() time.Time) *dashboard.Store {
	return dashboard.NewWindowedStore(cfg.Dashboard.PageSize, cfg.Dashboard.DefaultWindowDays, clock)
}

// NewController builds the dashboard session over newsAPI.
func NewController(cfg *config.Config, newsAPI controller.NewsAPI) (*controller.Controller, error) {
	palette, err := Palette(cfg)
	if err != nil {
		return nil, err
	}

	return controller.New(newsAPI, NewStore(cfg, time.Now), controller.Options{
		Query:   DashboardQuery(cfg),
		Width:   cfg.Network.Width,
		Height:  cfg.Network.Height,
		Palette: palette,
		Seed:    cfg.Network.Seed,
	}), nil
}

// Serve loads the dashboard once, starts the optional background refresh,
// and serves HTTP on localhost until ctx is cancelled.
func Serve(ctx context.Context, cfg *config.Config, ctrl *controller.Controller) error {
	// An unreachable API at startup is not fatal; the dashboard can be
	// refreshed once it comes back.
	if err := ctrl.Refresh(ctx); err != nil {
		slog.Warn("initial dashboard load failed", "error", err)
	}

	if interval := cfg.Dashboard.RefreshInterval(); interval > 0 {
		slog.Info("background refresh enabled", "interval", interval.String())
		go ctrl.Run(ctx, interval)
	}

	// Localhost only: the dashboard has no authentication.
	addr := fmt.Sprintf("localhost:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.NewRouter(ctrl),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if cfg.Server.AutoOpenBrowser {
		go func() {
			time.Sleep(500 * time.Millisecond)
			if err := OpenBrowser("http://" + addr); err != nil {
				slog.Warn("failed to open browser", "error", err)
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", "http://"+addr, "api", cfg.API.BaseURL)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// OpenBrowser opens an http(s) URL in the user's default browser.
func OpenBrowser(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("refusing to open URL with scheme %q", u.Scheme)
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", rawURL)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", rawURL)
	default:
		cmd = exec.Command("xdg-open", rawURL)
	}
	return cmd.Start()
}
