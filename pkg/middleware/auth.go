package middleware

import (
	"net/http"
	"strings"

	"stablebook/pkg/auth"
	apperrors "stablebook/pkg/errors"
	httputil "stablebook/pkg/http"
	"stablebook/pkg/logger"
)

type TokenVerifier interface {
	Verify(token string) (*auth.Caller, error)
}

// Authenticate resolves the bearer token into a caller on the request
// context. Requests without an Authorization header continue anonymously;
// a header that does not verify is refused.
func Authenticate(verifier TokenVerifier, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := strings.TrimSpace(r.Header.Get("Authorization"))
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			scheme, token, ok := strings.Cut(header, " ")
			token = strings.TrimSpace(token)
			if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
				rejectUnauthenticated(w, log, r, "malformed authorization header")
				return
			}

			caller, err := verifier.Verify(token)
			if err != nil {
				rejectUnauthenticated(w, log, r, err.Error())
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithCaller(r.Context(), caller)))
		})
	}
}

func rejectUnauthenticated(w http.ResponseWriter, log *logger.Logger, r *http.Request, reason string) {
	log.Warn("Authentication failed",
		"request_id", logger.RequestID(r.Context()),
		"reason", reason,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr,
	)

	w.Header().Set("WWW-Authenticate", `Bearer realm="stablebook"`)
	_ = httputil.WriteError(w, apperrors.Unauthorized("Invalid bearer token"))
}
