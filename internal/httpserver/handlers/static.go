package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/tutor/internal/httpserver/deps"
)

// StaticPrefix is the URL prefix of the asset directory.
const StaticPrefix = "/static/"

// Static serves the asset directory below StaticPrefix.
func Static(d deps.Deps) http.Handler {
	return http.StripPrefix(StaticPrefix, http.FileServer(http.Dir(d.Site.StaticDir())))
}
