package http

import (
	"net/http"
	"strings"
)

// The gateway in front of this service handles authentication and forwards
// the principal as headers. This layer only reads them; there is no token
// verification here.
const (
	headerUserID   = "X-User-Id"
	headerUserRole = "X-User-Role"
)

func principal(r *http.Request) (id, role string) {
	return strings.TrimSpace(r.Header.Get(headerUserID)),
		strings.TrimSpace(r.Header.Get(headerUserRole))
}

// requireRole guards authoring and grading routes.
func requireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, ro := range roles {
		allowed[ro] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, role := principal(r)
			if _, ok := allowed[role]; !ok {
				writeErrCode(w, http.StatusForbidden, "forbidden", "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requirePrincipal rejects requests missing an identity header.
func requirePrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, _ := principal(r); id == "" {
			writeErrCode(w, http.StatusUnauthorized, "unauthenticated", "missing principal")
			return
		}
		next.ServeHTTP(w, r)
	})
}
