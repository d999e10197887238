package handlers

import (
	"bytes"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"net/http"
	"net/url"

	"github.com/hoanghai1803/newsdash/internal/controller"
	"github.com/hoanghai1803/newsdash/internal/network"
)

// maxImageSide bounds requested image dimensions.
const maxImageSide = 4096

// renderParams are the optional query parameters of the network images.
type renderParams struct {
	width, height int
	palette       network.Palette
	rng           *rand.Rand
	custom        bool
}

func parseRenderParams(ctrl *controller.Controller, q url.Values) (renderParams, error) {
	w, h := ctrl.NetworkSize()
	p := renderParams{width: w, height: h, palette: ctrl.Palette()}

	if v, ok, err := queryInt(q, "width", 1, maxImageSide); err != nil {
		return p, err
	} else if ok {
		p.width, p.custom = v, true
	}
	if v, ok, err := queryInt(q, "height", 1, maxImageSide); err != nil {
		return p, err
	} else if ok {
		p.height, p.custom = v, true
	}
	if v, ok, err := queryInt(q, "seed", 1, math.MaxInt); err != nil {
		return p, err
	} else if ok {
		p.rng = rand.New(rand.NewPCG(uint64(v), uint64(v)))
		p.custom = true
	}
	if theme := q.Get("theme"); theme != "" {
		palette, ok := network.PaletteFor(theme)
		if !ok {
			return p, fmt.Errorf("invalid %q parameter: must be \"light\" or \"dark\"", "theme")
		}
		p.palette, p.custom = palette, true
	}
	return p, nil
}

// NetworkPNG handles GET /api/network.png. Without parameters it serves the
// session view's current drawing; width, height, theme or seed render a
// fresh image. Insufficient graph data yields 204 No Content.
func NetworkPNG(ctrl *controller.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := parseRenderParams(ctrl, r.URL.Query())
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		var (
			buf    bytes.Buffer
			result network.Result
		)
		if params.custom {
			raster := network.NewRaster(params.width, params.height)
			result = ctrl.RenderNetwork(raster, params.width, params.height, params.palette, params.rng)
			if result == network.Rendered {
				err = raster.EncodePNG(&buf)
			}
		} else {
			result, err = ctrl.WriteNetworkPNG(&buf)
		}
		if err != nil {
			slog.Error("failed to encode network image", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to encode network image")
			return
		}

		writeImage(w, result, "image/png", &buf)
	}
}

// NetworkSVG handles GET /api/network.svg with the same parameters as
// NetworkPNG. Every request lays the graph out afresh.
func NetworkSVG(ctrl *controller.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := parseRenderParams(ctrl, r.URL.Query())
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		svg := network.NewSVG(params.width, params.height)
		result := ctrl.RenderNetwork(svg, params.width, params.height, params.palette, params.rng)

		var buf bytes.Buffer
		if result == network.Rendered {
			if _, err := svg.WriteTo(&buf); err != nil {
				slog.Error("failed to write network svg", "error", err)
				writeError(w, http.StatusInternalServerError, "Failed to encode network image")
				return
			}
		}

		writeImage(w, result, "image/svg+xml", &buf)
	}
}

// RelayoutNetwork handles POST /api/network/relayout. It places the nodes
// of the session drawing again and reports the render result.
func RelayoutNetwork(ctrl *controller.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result := ctrl.RelayoutNetwork()
		writeJSON(w, http.StatusOK, map[string]string{"network": result.String()})
	}
}

func writeImage(w http.ResponseWriter, result network.Result, contentType string, buf *bytes.Buffer) {
	switch result {
	case network.Rendered:
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		_, _ = buf.WriteTo(w)
	case network.InsufficientData:
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusServiceUnavailable, "network canvas is not available")
	}
}
