package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/hoanghai1803/newsdash/internal/controller"
	"github.com/hoanghai1803/newsdash/internal/network"
)

// Refresh handles POST /api/refresh. It refetches the whole dashboard batch;
// on failure the previous data stays in place.
func Refresh(ctrl *controller.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := ctrl.Refresh(r.Context()); err != nil {
			writeUpstreamError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ctrl.Status())
	}
}

// GetKeywords handles GET /api/keywords.
func GetKeywords(ctrl *controller.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, ctrl.Keywords())
	}
}

// GetCategories handles GET /api/categories. By default it returns the
// server-side counts; "scope=filtered" counts the local filtered view.
func GetCategories(ctrl *controller.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch scope := r.URL.Query().Get("scope"); scope {
		case "", "all":
			writeJSON(w, http.StatusOK, ctrl.Categories())
		case "filtered":
			writeJSON(w, http.StatusOK, ctrl.Store().CategoryCounts())
		default:
			writeError(w, http.StatusBadRequest, "scope must be \"all\" or \"filtered\"")
		}
	}
}

// GetStats handles GET /api/stats.
func GetStats(ctrl *controller.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, ctrl.Stats())
	}
}

// GetNotices handles GET /api/notices.
func GetNotices(ctrl *controller.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, ctrl.Notices())
	}
}

// GetStatus handles GET /api/status.
func GetStatus(ctrl *controller.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, ctrl.Status())
	}
}

// SetTheme handles PUT /api/theme. Body: {"theme": "light"|"dark"}.
func SetTheme(ctrl *controller.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Theme string `json:"theme"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}

		p, ok := network.PaletteFor(body.Theme)
		if !ok {
			writeError(w, http.StatusBadRequest, "theme must be \"light\" or \"dark\"")
			return
		}

		result := ctrl.SetTheme(p)
		writeJSON(w, http.StatusOK, map[string]string{
			"theme":   body.Theme,
			"network": result.String(),
		})
	}
}
