package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultHighlightLanguages are registered with the code highlighter when
// TUTOR_HIGHLIGHT_LANGUAGES is unset.
var DefaultHighlightLanguages = []string{
	"javascript", "markdown", "bash", "xml", "css", "plaintext", "json", "handlebars",
}

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request timeout applied by chi middleware

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Content
	ContentDir string // directory holding one Markdown file per tutorial page
	IndexFile  string // Markdown file rendered as the entry page
	StaticDir  string // assets copied verbatim / served under /static
	OutputDir  string // static build output root
	LayoutFile string // optional html/template overriding the embedded layout

	// Rendering
	HighlightLanguages []string // chroma lexers registered at startup
	HighlightStyle     string   // chroma style used for the generated stylesheet
	TOCMinLevel        int      // shallowest heading level listed in the TOC
	TOCMaxLevel        int      // deepest heading level listed in the TOC

	WatchDebounce time.Duration // quiet period before a watched change triggers a rebuild

	MetricsEnabled bool // expose /metrics

	AllowedHosts []string // optional, restrict access to specific Host headers
	AllowedCIDRS []string // optional, restrict ops endpoints to specific IPs/CIDRs
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)

	RateLimitBurst  int // 0 disables rate limiting
	RateLimitPerMin int // token refill per client IP per minute
}

// Load reads the configuration from the environment. A .env file in the
// working directory, if present, is applied first without overriding
// variables that are already set.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[WARN] failed to load .env: %v", err)
	}

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("TUTOR_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("TUTOR_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("TUTOR_REQUEST_TIMEOUT", 10*time.Second),

		// Logging
		LogLevel:  getenv("TUTOR_LOG_LEVEL", "info"),
		PrettyLog: mustBool("TUTOR_PRETTY_LOG", true),

		// Content
		ContentDir: getenv("TUTOR_CONTENT_DIR", "markdown"),
		IndexFile:  getenv("TUTOR_INDEX_FILE", "index.md"),
		StaticDir:  getenv("TUTOR_STATIC_DIR", "static"),
		OutputDir:  getenv("TUTOR_OUTPUT_DIR", "_site"),
		LayoutFile: getenv("TUTOR_LAYOUT_FILE", ""),

		// Rendering
		HighlightLanguages: getenvSlice("TUTOR_HIGHLIGHT_LANGUAGES", DefaultHighlightLanguages),
		HighlightStyle:     getenv("TUTOR_HIGHLIGHT_STYLE", "github"),
		TOCMinLevel:        getenvInt("TUTOR_TOC_MIN_LEVEL", 1),
		TOCMaxLevel:        getenvInt("TUTOR_TOC_MAX_LEVEL", 6),

		WatchDebounce: mustDuration("TUTOR_WATCH_DEBOUNCE", 500*time.Millisecond),

		MetricsEnabled: mustBool("TUTOR_METRICS_ENABLED", true),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("TUTOR_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("TUTOR_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("TUTOR_TRUST_PROXY", false),

		RateLimitBurst:  getenvInt("TUTOR_RATE_LIMIT_BURST", 0),
		RateLimitPerMin: getenvInt("TUTOR_RATE_LIMIT_PER_MIN", 120),
	}

	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("❌ FATAL: %v", err))
	}

	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", *cfg)
	}

	return cfg
}

// Validate rejects settings the builder and server cannot work with.
func (c *Config) Validate() error {
	if c.ContentDir == "" {
		return fmt.Errorf("TUTOR_CONTENT_DIR must not be empty")
	}
	if err := c.validateOutputDir(); err != nil {
		return err
	}
	if c.TOCMinLevel < 1 || c.TOCMaxLevel > 6 || c.TOCMinLevel > c.TOCMaxLevel {
		return fmt.Errorf("invalid TOC level range %d-%d (must be within 1-6)", c.TOCMinLevel, c.TOCMaxLevel)
	}
	if c.RateLimitBurst < 0 {
		return fmt.Errorf("TUTOR_RATE_LIMIT_BURST must be >= 0, got %d", c.RateLimitBurst)
	}
	return nil
}

// validateOutputDir rejects build targets whose removal would take sources
// or the working directory with them, and targets inside the content or
// static tree.
func (c *Config) validateOutputDir() error {
	if strings.TrimSpace(c.OutputDir) == "" {
		return fmt.Errorf("TUTOR_OUTPUT_DIR must not be empty")
	}
	out, err := filepath.Abs(c.OutputDir)
	if err != nil {
		return fmt.Errorf("failed to resolve TUTOR_OUTPUT_DIR %q: %w", c.OutputDir, err)
	}
	if filepath.Dir(out) == out {
		return fmt.Errorf("TUTOR_OUTPUT_DIR %q is a filesystem root", c.OutputDir)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to resolve working directory: %w", err)
	}
	protected := map[string]string{
		"working directory": cwd,
		"TUTOR_CONTENT_DIR": c.ContentDir,
		"TUTOR_STATIC_DIR":  c.StaticDir,
		"TUTOR_INDEX_FILE":  c.IndexFile,
		"TUTOR_LAYOUT_FILE": c.LayoutFile,
	}
	for name, path := range protected {
		if path == "" {
			continue
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("failed to resolve %s %q: %w", name, path, err)
		}
		if within(abs, out) {
			return fmt.Errorf("TUTOR_OUTPUT_DIR %q would remove %s %q", c.OutputDir, name, path)
		}
	}

	for name, dir := range map[string]string{"TUTOR_CONTENT_DIR": c.ContentDir, "TUTOR_STATIC_DIR": c.StaticDir} {
		if dir == "" {
			continue
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			return fmt.Errorf("failed to resolve %s %q: %w", name, dir, err)
		}
		if within(out, abs) {
			return fmt.Errorf("TUTOR_OUTPUT_DIR %q is inside %s %q", c.OutputDir, name, dir)
		}
	}
	return nil
}

// within reports whether path is dir or lies below it. Both must be absolute.
func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvSlice(key string, def []string) []string {
	if v := splitAndTrim(os.Getenv(key)); len(v) > 0 {
		return v
	}
	out := make([]string, len(def))
	copy(out, def)
	return out
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
