package middleware

import (
	"net/http"
	"strings"

	"eventhub/pkg/auth"
	apperrors "eventhub/pkg/errors"
	httputil "eventhub/pkg/http"
	"eventhub/pkg/logger"
)

// Authenticate resolves the bearer token into an auth.Principal stored on the
// request context. Requests without a valid token are rejected with 401.
func Authenticate(authn auth.Authenticator, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, _ := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			principal, err := authn.Authenticate(strings.TrimSpace(token))
			if err != nil {
				log.Warn("Authentication failed",
					"request_id", RequestIDFromContext(r.Context()),
					"path", r.URL.Path,
					"error", err,
				)
				_ = httputil.WriteError(w, apperrors.Unauthorized("a valid bearer token is required"))
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), principal)))
		})
	}
}
