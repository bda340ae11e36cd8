package api

import (
	"html"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
)

// hello echoes the name query parameter without escaping.
func (h *Handler) hello(w http.ResponseWriter, r *http.Request) {
	respondHTML(w, http.StatusOK, "hello, "+r.URL.Query().Get("name"))
}

// hello2 echoes the path segment HTML-escaped. chi matches on RawPath when
// the path holds an encoded slash, so the segment is unescaped here.
func (h *Handler) hello2(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if r.URL.RawPath != "" {
		if decoded, err := url.PathUnescape(name); err == nil {
			name = decoded
		}
	}
	respondHTML(w, http.StatusOK, "hello, "+html.EscapeString(name))
}
