package deps

import (
	"net/http"
	"time"

	"github.com/MrSnakeDoc/tutor/internal/logger"
	"github.com/MrSnakeDoc/tutor/internal/metrics"
	"github.com/MrSnakeDoc/tutor/internal/site"
)

type Deps struct {
	Logger          logger.Logger
	StartTime       time.Time
	Version         string
	Commit          string
	BuildDate       string
	GoVersion       string
	TimeNow         func() time.Time // for testing, defaults to time.Now
	AllowedHosts    []string         // Host headers allowed to access the server
	AllowedCIDRS    []string         // IPs allowed to access the ops endpoints
	TrustProxy      bool             // true if running behind a trusted reverse proxy (e.g., cloudflared)
	Site            *site.Site       // page assembly shared with the static builder
	Metrics         metrics.Recorder // never nil, NoopRecorder when disabled
	MetricsHandler  http.Handler     // nil disables /metrics
	RateLimitBurst  int              // page requests per client before 429, 0 disables
	RateLimitPerMin int              // refill per client per minute
}
