// internal/api/handler/api/params.go
package api

import "net/http"

// modeParam reads the trading mode from the request. An empty value is
// passed through to the gateway, which decides whether a default applies.
func modeParam(r *http.Request) string {
	return r.URL.Query().Get("mode")
}

// confirmed reports whether the request carries the confirm=true field that
// bulk destructive routes require.
func confirmed(r *http.Request) bool {
	return r.URL.Query().Get("confirm") == "true"
}
