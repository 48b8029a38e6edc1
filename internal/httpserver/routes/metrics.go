package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/tutor/internal/httpserver/deps"
	"github.com/MrSnakeDoc/tutor/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/tutor/internal/httpserver/mw"
)

func init() { Register("metrics", registerMetrics) }

func registerMetrics(r chi.Router, d deps.Deps) {
	if d.MetricsHandler == nil {
		return
	}
	r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger)).Method(http.MethodGet, "/metrics", handlers.Metrics(d))
}
