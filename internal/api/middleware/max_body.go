package middleware

import (
	"net/http"

	"github.com/cloo-solutions/linkshelf/internal/api"
)

// DefaultMaxBodyBytes bounds API request bodies; save payloads are a URL or a short shared text.
const DefaultMaxBodyBytes int64 = 64 * 1024

// RejectFunc writes the response for a body over the limit
type RejectFunc func(w http.ResponseWriter, status int, message string)

// MaxBodyBytes limits request body size, answering oversized requests with a plain error.
func MaxBodyBytes(limit int64) func(http.Handler) http.Handler {
	return MaxBodyBytesWith(limit, api.Error)
}

// MaxBodyBytesWith is MaxBodyBytes with a custom response for declared lengths
// over the limit. Bodies without a declared length are cut off by
// http.MaxBytesReader and surface as a read error in the handler.
func MaxBodyBytesWith(limit int64, reject RejectFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limit <= 0 || r.Body == nil {
				next.ServeHTTP(w, r)
				return
			}

			if r.ContentLength > limit {
				reject(w, http.StatusRequestEntityTooLarge, api.BodyTooLargeMessage)
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
