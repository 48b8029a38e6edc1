package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/MrSnakeDoc/tutor/internal/httpserver/deps"
	"github.com/MrSnakeDoc/tutor/internal/logger"
)

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"healthz", "infra", "metrics", "pages", "readyz"}, Names())
}

func TestRegisterAll_AppliesRouteMiddlewares(t *testing.T) {
	saved := registry
	t.Cleanup(func() { registry = saved })
	registry = nil

	var order []string
	tag := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Add("X-Group", name)
				next.ServeHTTP(w, r)
			})
		}
	}
	Register("b", func(r chi.Router, d deps.Deps) {
		order = append(order, "b")
		r.Get("/b", func(w http.ResponseWriter, r *http.Request) {})
	}, tag("b"))
	Register("a", func(r chi.Router, d deps.Deps) {
		order = append(order, "a")
		r.Get("/a", func(w http.ResponseWriter, r *http.Request) {})
	})

	r := chi.NewRouter()
	RegisterAll(r, deps.Deps{Logger: logger.NewNop()})
	assert.Equal(t, []string{"a", "b"}, order)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/b", nil))
	assert.Equal(t, "b", rec.Header().Get("X-Group"))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/a", nil))
	assert.Empty(t, rec.Header().Get("X-Group"))
}
