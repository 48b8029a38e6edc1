package handlers

import (
	"bytes"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/tutor/internal/content"
	"github.com/MrSnakeDoc/tutor/internal/httpserver/deps"
	"github.com/MrSnakeDoc/tutor/internal/logger"
	"github.com/MrSnakeDoc/tutor/internal/menu"
	"github.com/MrSnakeDoc/tutor/internal/metrics"
	"github.com/MrSnakeDoc/tutor/internal/render"
)

// NotFoundPath is where unknown tutorials are redirected.
const NotFoundPath = "/404"

// Entry renders the index file.
func Entry(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := d.Site.EntryData()
		if err != nil {
			d.Metrics.IncPageRender(metrics.RouteEntry, metrics.ResultFailure)
			d.Logger.Error("failed to render entry page", logger.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		writePage(d, w, http.StatusOK, metrics.RouteEntry, data)
	}
}

// Tutorial reloads the content, looks the page up by href and renders it
// with the menu and table of contents. Unknown hrefs redirect to NotFoundPath.
func Tutorial(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		href := chi.URLParam(r, "href")

		pages, err := d.Site.LoadPages(r.Context())
		if err != nil {
			d.Metrics.IncPageRender(metrics.RouteTutorial, metrics.ResultFailure)
			d.Logger.Error("failed to load content", logger.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		page, ok := content.Find(pages, href)
		if !ok {
			d.Metrics.IncPageRender(metrics.RouteTutorial, metrics.ResultMissing)
			d.Logger.Debug("tutorial not found", logger.String("href", href))
			http.Redirect(w, r, NotFoundPath, http.StatusFound)
			return
		}

		data, err := d.Site.TutorialData(page, menu.Build(pages))
		if err != nil {
			d.Metrics.IncPageRender(metrics.RouteTutorial, metrics.ResultFailure)
			d.Logger.Error("error processing page",
				logger.String("file", page.FileName),
				logger.String("href", href),
				logger.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		writePage(d, w, http.StatusOK, metrics.RouteTutorial, data)
	}
}

// NotFound renders the fixed not-found page with status 404.
func NotFound(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writePage(d, w, http.StatusNotFound, metrics.RouteNotFound, d.Site.NotFoundData())
	}
}

// writePage renders into a buffer first so a template error can still
// become a 500.
func writePage(d deps.Deps, w http.ResponseWriter, status int, route metrics.Route, data render.Data) {
	var buf bytes.Buffer
	if err := d.Site.Render(&buf, data); err != nil {
		d.Metrics.IncPageRender(route, metrics.ResultFailure)
		d.Logger.Error("failed to render page", logger.String("route", string(route)), logger.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	d.Metrics.IncPageRender(route, metrics.ResultSuccess)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		d.Logger.Debug("failed to write response", logger.Error(err))
	}
}
