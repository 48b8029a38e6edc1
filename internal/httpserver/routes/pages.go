package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/tutor/internal/httpserver/deps"
	"github.com/MrSnakeDoc/tutor/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/tutor/internal/httpserver/mw"
	"github.com/MrSnakeDoc/tutor/internal/logger"
)

func init() { Register("pages", registerPages) }

func registerPages(r chi.Router, d deps.Deps) {
	r.Group(func(r chi.Router) {
		r.Use(mw.EnforceHost(d.AllowedHosts, d.Logger))
		if d.RateLimitBurst > 0 {
			r.Use(mw.RateLimit(pageRateLimit(d)))
		}
		r.Get("/", handlers.Entry(d))
		r.Get("/tutorial/{href}", handlers.Tutorial(d))
		r.Method(http.MethodGet, handlers.StaticPrefix+"*", handlers.Static(d))
	})
}

// pageRateLimit limits rendered pages and assets per client. Ops endpoints
// stay reachable for health checks and scrapers.
func pageRateLimit(d deps.Deps) mw.RateLimitConfig {
	return mw.RateLimitConfig{
		Burst:             d.RateLimitBurst,
		RefillPerIPPerMin: d.RateLimitPerMin,
		MaxEntries:        10000,
		TrustProxy:        d.TrustProxy,
		Now:               d.TimeNow,
		OnReject: func(r *http.Request) {
			if d.Metrics != nil {
				d.Metrics.IncRateLimited()
			}
			d.Logger.Debug("page request rate limited", logger.String("path", r.URL.Path))
		},
	}
}
