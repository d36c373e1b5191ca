package middleware

import (
	"encoding/json"
	"net/http"
)

// tooLargeBody is the API error envelope sent when a request advertises a
// body over the limit. It matches the handler package's error responses.
var tooLargeBody, _ = json.Marshal(map[string]any{
	"error": map[string]string{
		"code":    "payload_too_large",
		"message": "request body too large",
	},
})

// NewMaxBodySizeHandler returns a middleware that limits incoming request body
// sizes to limit bytes. A leg or composition request with a known
// Content-Length over the limit is rejected with 413 before it reaches the
// handler. Otherwise the body is wrapped in http.MaxBytesReader, so reading
// past the limit fails inside the handler's JSON decode, which maps it to the
// same 413 response.
func NewMaxBodySizeHandler(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusRequestEntityTooLarge)
				_, _ = w.Write(tooLargeBody)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
