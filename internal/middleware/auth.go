package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/templui/coachflow/internal/ctxkeys"
	"github.com/templui/coachflow/internal/model"
	"github.com/templui/coachflow/internal/service"
)

// Authenticate resolves a bearer token into an identity on the request
// context. Requests without a valid token continue anonymously; RequireRole
// decides whether that is acceptable.
func Authenticate(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			identity, err := authService.VerifyJWT(token)
			if err != nil {
				slog.Warn("rejected bearer token", "error", err, "path", r.URL.Path)
				next.ServeHTTP(w, r)
				return
			}

			ctx := ctxkeys.WithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole ensures the caller is authenticated with one of roles.
func RequireRole(roles ...model.Role) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			identity := ctxkeys.Identity(r.Context())
			if identity == nil {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			for _, role := range roles {
				if identity.Role == role {
					next(w, r)
					return
				}
			}

			slog.Warn("caller lacks role",
				"caller", identity.Subject,
				"role", identity.Role,
				"path", r.URL.Path,
			)
			writeError(w, http.StatusForbidden, "not allowed")
		}
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
