package api

import (
	"net/http"
	"strings"
)

// LimitBody caps the request body at maxBytes. Reads past the limit fail
// with *http.MaxBytesError. A non-positive limit disables the cap.
func LimitBody(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if maxBytes <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// clientIDFrom returns the socket id an upload is addressed to. Form
// fields win over the header.
func clientIDFrom(r *http.Request) string {
	for _, key := range []string{"socket_id", "socket-id"} {
		if v := strings.TrimSpace(r.FormValue(key)); v != "" {
			return v
		}
	}
	return strings.TrimSpace(r.Header.Get("socket-id"))
}
