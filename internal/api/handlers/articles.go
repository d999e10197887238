package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/hoanghai1803/newsdash/internal/controller"
	"github.com/hoanghai1803/newsdash/internal/dashboard"
)

// filterKeys are the query parameters GetArticles treats as criteria.
var filterKeys = []string{"search", "source", "category", "favorites_only", "date_from", "date_to"}

// GetArticles handles GET /api/articles. Filter parameters present in the
// query are merged into the active criteria (which resets the page), then
// the optional "page" parameter selects the page to return.
func GetArticles(ctrl *controller.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		patch, changed, err := patchFromQuery(q)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if changed {
			ctrl.UpdateCriteria(patch)
		}

		page, ok, err := queryInt(q, "page", math.MinInt, math.MaxInt)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if ok {
			if err := ctrl.Store().SetPage(page); errors.Is(err, dashboard.ErrInvalidPage) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
		}

		writeJSON(w, http.StatusOK, ctrl.Store().PageView())
	}
}

// GetFavorites handles GET /api/favorites. It returns every favorite in the
// loaded collection regardless of the active criteria.
func GetFavorites(ctrl *controller.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, ctrl.Store().Favorites())
	}
}

// ToggleFavorite handles POST /api/favorites/{id}/toggle. The flag flips
// immediately and rolls back if the news API rejects the change.
func ToggleFavorite(ctrl *controller.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		article, err := ctrl.ToggleFavorite(r.Context(), id)
		if err != nil {
			slog.Warn("failed to toggle favorite", "article_id", id, "error", err)
			writeUpstreamError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, article)
	}
}

// patchFromQuery builds a criteria patch from the filter query parameters.
// An empty date value clears that bound.
func patchFromQuery(q url.Values) (dashboard.CriteriaPatch, bool, error) {
	var (
		patch   dashboard.CriteriaPatch
		changed bool
	)
	for _, key := range filterKeys {
		if _, present := q[key]; !present {
			continue
		}
		changed = true
		raw := q.Get(key)

		switch key {
		case "search":
			patch.SearchTerm = &raw
		case "source":
			patch.Source = &raw
		case "category":
			patch.Category = &raw
		case "favorites_only":
			v, err := strconv.ParseBool(raw)
			if err != nil {
				return patch, false, fmt.Errorf("invalid %q parameter: %w", key, err)
			}
			patch.FavoritesOnly = &v
		case "date_from":
			if raw == "" {
				patch.ClearDateFrom = true
				continue
			}
			t, err := parseDate(key, raw)
			if err != nil {
				return patch, false, err
			}
			patch.DateFrom = &t
		case "date_to":
			if raw == "" {
				patch.ClearDateTo = true
				continue
			}
			t, err := parseDate(key, raw)
			if err != nil {
				return patch, false, err
			}
			patch.DateTo = &t
		}
	}
	return patch, changed, nil
}
