package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/tutor/internal/httpserver/deps"
)

type healthzResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	ContentDir    string  `json:"content_dir,omitempty"`
	StaticDir     string  `json:"static_dir,omitempty"`
	Version       string  `json:"version,omitempty"`
	Commit        string  `json:"commit,omitempty"`
	BuildDate     string  `json:"build_date,omitempty"`
	GoVersion     string  `json:"go_version,omitempty"`
}

// Healthz reports liveness only. The served directories are included so a
// misconfigured mount shows up without reading the logs; /readyz checks them.
func Healthz(d deps.Deps) http.HandlerFunc {
	start := d.StartTime
	var contentDir, staticDir string
	if d.Site != nil {
		contentDir, staticDir = d.Site.ContentDir(), d.Site.StaticDir()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(healthzResponse{
			Status:        "ok",
			UptimeSeconds: time.Since(start).Seconds(),
			ContentDir:    contentDir,
			StaticDir:     staticDir,
			Version:       d.Version,
			Commit:        d.Commit,
			BuildDate:     d.BuildDate,
			GoVersion:     d.GoVersion,
		})
	}
}
