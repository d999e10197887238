package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hoanghai1803/newsdash/internal/client"
	"github.com/hoanghai1803/newsdash/internal/controller"
)

// dateLayout is the wire format of date filter values.
const dateLayout = "2006-01-02"

// writeJSON encodes v as JSON and writes it to the response with the given
// HTTP status code. Content-Type is always set to application/json.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already sent, so the status cannot change.
		slog.Warn("failed to encode response", "error", err)
	}
}

// writeError writes a JSON error response with the given HTTP status code.
// The response body is {"error": "message"}.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeUpstreamError maps an error from the controller or news API client
// to a status code and a user-facing message.
func writeUpstreamError(w http.ResponseWriter, err error) {
	var apiErr *client.APIError
	switch {
	case errors.Is(err, controller.ErrUnknownArticle):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, client.ErrEmptyName):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, client.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, client.Describe(err))
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, client.Describe(err))
	case errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500:
		writeError(w, apiErr.Status, client.Describe(err))
	default:
		writeError(w, http.StatusBadGateway, client.Describe(err))
	}
}

// parseID extracts an int64 from a chi URL parameter.
func parseID(r *http.Request, param string) (int64, error) {
	raw := chi.URLParam(r, param)
	if raw == "" {
		return 0, fmt.Errorf("missing URL parameter %q", param)
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %q parameter: %w", param, err)
	}
	return id, nil
}

// queryInt reads an optional integer query parameter within [lo, hi].
// ok is false when the parameter is absent.
func queryInt(q url.Values, key string, lo, hi int) (v int, ok bool, err error) {
	raw := q.Get(key)
	if raw == "" {
		return 0, false, nil
	}
	v, err = strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("invalid %q parameter: %w", key, err)
	}
	if v < lo || v > hi {
		return 0, false, fmt.Errorf("invalid %q parameter: must be between %d and %d", key, lo, hi)
	}
	return v, true, nil
}

// parseDate parses a YYYY-MM-DD filter value.
func parseDate(key, raw string) (time.Time, error) {
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %q value %q: want YYYY-MM-DD", key, raw)
	}
	return t, nil
}
