package middleware

import (
	"net/http"

	apperrors "stablebook/pkg/errors"
	httputil "stablebook/pkg/http"
)

// MaxRequestSize caps request bodies at limit bytes. Requests that declare a
// larger Content-Length are refused up front; others fail on read.
func MaxRequestSize(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				_ = httputil.WriteError(w, apperrors.New(
					apperrors.CodeInvalidInput,
					"Request body too large",
					http.StatusRequestEntityTooLarge,
				))
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
