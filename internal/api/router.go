package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hoanghai1803/newsdash/internal/api/handlers"
	"github.com/hoanghai1803/newsdash/internal/controller"
)

// NewRouter creates the dashboard HTTP router: the JSON API under /api and
// Prometheus metrics under /metrics.
func NewRouter(ctrl *controller.Controller) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(RequestLogger)
	r.Use(Recovery)
	r.Use(Metrics)
	r.Use(CORS)

	r.Route("/api", func(api chi.Router) {
		api.Get("/articles", handlers.GetArticles(ctrl))

		api.Get("/criteria", handlers.GetCriteria(ctrl))
		api.Put("/criteria", handlers.UpdateCriteria(ctrl))
		api.Get("/facets", handlers.GetFacets(ctrl))

		api.Get("/favorites", handlers.GetFavorites(ctrl))
		api.Post("/favorites/{id}/toggle", handlers.ToggleFavorite(ctrl))

		api.Post("/refresh", handlers.Refresh(ctrl))
		api.Get("/keywords", handlers.GetKeywords(ctrl))
		api.Get("/categories", handlers.GetCategories(ctrl))
		api.Get("/stats", handlers.GetStats(ctrl))

		api.Get("/network.png", handlers.NetworkPNG(ctrl))
		api.Get("/network.svg", handlers.NetworkSVG(ctrl))
		api.Post("/network/relayout", handlers.RelayoutNetwork(ctrl))
		api.Put("/theme", handlers.SetTheme(ctrl))

		api.Get("/collections", handlers.GetCollections(ctrl))
		api.Post("/collections", handlers.CreateCollection(ctrl))
		api.Post("/collect", handlers.CollectNow(ctrl))

		api.Get("/notices", handlers.GetNotices(ctrl))
		api.Get("/status", handlers.GetStatus(ctrl))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not found"}` + "\n"))
	})

	return r
}
