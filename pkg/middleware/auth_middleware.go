package middleware

import (
	"log"
	"net/http"

	"fintrack-service/pkg/jwtutil"
	"fintrack-service/pkg/response"
)

// AuthMiddleware resolves the bearer credential into an authenticated
// principal. Verification is a pure function of the token and a fixed
// verification key loaded at startup; no per-request state is consulted.
type AuthMiddleware struct {
	Verifier *jwtutil.Verifier
}

func NewAuthMiddleware(verifier *jwtutil.Verifier) *AuthMiddleware {
	return &AuthMiddleware{Verifier: verifier}
}

// handleAuth validates the token and optional role restrictions.
func (am *AuthMiddleware) handleAuth(
	w http.ResponseWriter,
	r *http.Request,
	allowedRoles []string,
) (string, *jwtutil.Claims, bool) {

	token, claims, ok := am.extractAndVerifyToken(r, w)
	if !ok {
		return "", nil, false
	}

	if len(allowedRoles) > 0 {
		if claims.Role == "" {
			response.Error(w, http.StatusForbidden, "role not found in claims")
			return "", nil, false
		}
		if !contains(allowedRoles, claims.Role) {
			log.Printf("forbidden: role %q not in %v for %s", claims.Role, allowedRoles, r.URL.Path)
			response.Error(w, http.StatusForbidden, "insufficient role")
			return "", nil, false
		}
	}

	return token, claims, true
}

// Middleware authenticates without role restrictions.
func (am *AuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, ok := am.handleAuth(w, r, nil)
		if !ok {
			return
		}
		next.ServeHTTP(w, setContextValues(r, claims, token))
	})
}

// Require restricts the wrapped handlers to the given roles.
func (am *AuthMiddleware) Require(allowedRoles []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, claims, ok := am.handleAuth(w, r, allowedRoles)
			if !ok {
				return
			}
			next.ServeHTTP(w, setContextValues(r, claims, token))
		})
	}
}

func contains(list []string, item string) bool {
	for _, v := range list {
		if v == item {
			return true
		}
	}
	return false
}
