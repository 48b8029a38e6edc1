package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/MrSnakeDoc/tutor/internal/httpserver/deps"
)

type componentStatus struct {
	OK          bool     `json:"ok"`
	PagesLoaded *int     `json:"pages_loaded,omitempty"`
	Languages   []string `json:"languages,omitempty"`
	Mode        string   `json:"mode,omitempty"`
	Error       string   `json:"error,omitempty"`
}

type infraResponse struct {
	ServingMode string                     `json:"serving_mode"`
	Components  map[string]componentStatus `json:"components"`
}

// Infra reports the state of the content sources and the highlighter.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")

		components := map[string]componentStatus{
			"content":     checkContent(d, r),
			"highlighter": checkHighlighter(d),
			"metrics": {
				OK:   true,
				Mode: metricsMode(d),
			},
		}

		response := infraResponse{
			ServingMode: determineServingMode(components),
			Components:  components,
		}

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

func determineServingMode(components map[string]componentStatus) string {
	// No pages means every tutorial request redirects to the 404 page
	if c, exists := components["content"]; exists {
		if !c.OK || (c.PagesLoaded != nil && *c.PagesLoaded == 0) {
			return "critical"
		}
	}

	// Code blocks still render, only without colors
	if h, exists := components["highlighter"]; exists && !h.OK {
		return "degraded"
	}

	return "ok"
}

func checkContent(d deps.Deps, r *http.Request) componentStatus {
	if err := d.Site.Check(); err != nil {
		return componentStatus{OK: false, Error: err.Error()}
	}
	pages, err := d.Site.LoadPages(r.Context())
	if err != nil {
		return componentStatus{OK: false, Error: err.Error()}
	}
	n := len(pages)
	return componentStatus{OK: true, PagesLoaded: &n}
}

func checkHighlighter(d deps.Deps) componentStatus {
	langs := d.Site.Languages()
	if len(langs) == 0 {
		return componentStatus{OK: false, Mode: "plaintext", Error: "no languages registered"}
	}
	return componentStatus{OK: true, Mode: "chroma", Languages: langs}
}

func metricsMode(d deps.Deps) string {
	if d.MetricsHandler == nil {
		return "disabled"
	}
	return "prometheus"
}
