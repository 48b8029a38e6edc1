package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/MrSnakeDoc/tutor/internal/httpserver/deps"
	"github.com/MrSnakeDoc/tutor/internal/logger"
)

type readyzResponse struct {
	Ready bool   `json:"ready"`
	Error string `json:"error,omitempty"`
}

// Readyz reports whether the content sources are readable.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")

		if err := d.Site.Check(); err != nil {
			d.Logger.Warn("readiness check failed", logger.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(readyzResponse{Ready: false, Error: err.Error()})
			return
		}

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(readyzResponse{
			Ready: true,
		})
	}
}
