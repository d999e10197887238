package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/hoanghai1803/newsdash/internal/controller"
	"github.com/hoanghai1803/newsdash/internal/dashboard"
)

// criteriaRequest is the PUT /api/criteria body. Absent fields keep their
// value; an empty date string clears that bound.
type criteriaRequest struct {
	SearchTerm    *string `json:"search_term"`
	Source        *string `json:"source"`
	Category      *string `json:"category"`
	FavoritesOnly *bool   `json:"favorites_only"`
	DateFrom      *string `json:"date_from"`
	DateTo        *string `json:"date_to"`
}

func (req criteriaRequest) patch() (dashboard.CriteriaPatch, error) {
	p := dashboard.CriteriaPatch{
		SearchTerm:    req.SearchTerm,
		Source:        req.Source,
		Category:      req.Category,
		FavoritesOnly: req.FavoritesOnly,
	}
	if req.DateFrom != nil {
		if *req.DateFrom == "" {
			p.ClearDateFrom = true
		} else {
			t, err := parseDate("date_from", *req.DateFrom)
			if err != nil {
				return p, err
			}
			p.DateFrom = &t
		}
	}
	if req.DateTo != nil {
		if *req.DateTo == "" {
			p.ClearDateTo = true
		} else {
			t, err := parseDate("date_to", *req.DateTo)
			if err != nil {
				return p, err
			}
			p.DateTo = &t
		}
	}
	return p, nil
}

// GetCriteria handles GET /api/criteria.
func GetCriteria(ctrl *controller.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, ctrl.Store().Criteria())
	}
}

// UpdateCriteria handles PUT /api/criteria. It merges the body into the
// active criteria and returns the first page of the new filtered view.
func UpdateCriteria(ctrl *controller.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req criteriaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}

		patch, err := req.patch()
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		criteria := ctrl.UpdateCriteria(patch)
		writeJSON(w, http.StatusOK, map[string]any{
			"criteria": criteria,
			"page":     ctrl.Store().PageView(),
		})
	}
}

// GetFacets handles GET /api/facets. It returns the source and category
// selector options of the loaded collection.
func GetFacets(ctrl *controller.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, ctrl.Store().Facets())
	}
}
