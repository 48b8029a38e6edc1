package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/tutor/internal/httpserver/deps"
)

func Metrics(d deps.Deps) http.Handler {
	if d.MetricsHandler == nil {
		return http.NotFoundHandler()
	}
	return d.MetricsHandler
}
