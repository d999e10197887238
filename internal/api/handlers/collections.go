package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hoanghai1803/newsdash/internal/controller"
	"github.com/hoanghai1803/newsdash/internal/models"
)

// GetCollections handles GET /api/collections.
func GetCollections(ctrl *controller.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, ctrl.Collections())
	}
}

// CreateCollection handles POST /api/collections. Body:
// {"name": "...", "rules": {"keywords": [...], "sources": [...], "categories": [...]}}.
func CreateCollection(ctrl *controller.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Name  string                 `json:"name"`
			Rules models.CollectionRules `json:"rules"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}

		created, err := ctrl.CreateCollection(r.Context(), body.Name, body.Rules)
		if err != nil {
			slog.Warn("failed to create collection", "name", body.Name, "error", err)
			writeUpstreamError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, created)
	}
}

// CollectNow handles POST /api/collect. It triggers a server-side collection
// run (optionally capped by "max_feeds") and refreshes the dashboard.
func CollectNow(ctrl *controller.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		maxFeeds, _, err := queryInt(r.URL.Query(), "max_feeds", 1, 10000)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		res, err := ctrl.CollectNow(r.Context(), maxFeeds)
		if res == nil {
			slog.Error("collect now failed", "error", err)
			writeUpstreamError(w, err)
			return
		}
		if err != nil {
			slog.Warn("refresh after collect failed", "error", err)
		}

		writeJSON(w, http.StatusOK, res)
	}
}
