package routes

import (
	"cmp"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/tutor/internal/httpserver/deps"
	"github.com/MrSnakeDoc/tutor/internal/logger"
)

type (
	Registrar  func(r chi.Router, d deps.Deps)
	Middleware = func(http.Handler) http.Handler
)

type entry struct {
	name string
	reg  Registrar
	mws  []Middleware
}

var registry []entry

// Register a named registrar with optional per-route middlewares.
// Registration order does not matter; routes mount sorted by name.
func Register(name string, reg Registrar, mws ...Middleware) {
	registry = append(registry, entry{name: name, reg: reg, mws: mws})
}

// Names lists the registered route groups in mount order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for _, e := range sorted() {
		names = append(names, e.name)
	}
	return names
}

// RegisterAll mounts the page, ops and metrics routes. Called once from
// httpserver.NewRouter.
func RegisterAll(r chi.Router, d deps.Deps) {
	for _, e := range sorted() {
		if len(e.mws) == 0 {
			e.reg(r, d)
		} else {
			e.reg(r.With(e.mws...), d)
		}
		if d.Logger != nil {
			d.Logger.Debug("routes mounted", logger.String("group", e.name))
		}
	}
}

func sorted() []entry {
	out := slices.Clone(registry)
	slices.SortStableFunc(out, func(a, b entry) int { return cmp.Compare(a.name, b.name) })
	return out
}
