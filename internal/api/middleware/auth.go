package middleware

import (
	"log/slog"
	"net/http"

	"showcase/internal/common"
	"showcase/internal/common/security"
)

// RequirePrincipal resolves the caller with res and stores the principal in
// the request context. Unauthenticated callers get 401, callers of the wrong
// kind or role get 403.
func RequirePrincipal(res *security.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := res.Resolve(r)
			if err != nil {
				slog.DebugContext(r.Context(), "principal rejected",
					"path", r.URL.Path, "kind", res.Kind(), "error", err)
				common.RespondWithServiceError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(security.WithPrincipal(r.Context(), p)))
		})
	}
}
