package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/xavierca1/lead-pipeline/internal/auth"
)

// UserIDHeader is set by the identity gateway in front of the API after it
// has verified the session.
const UserIDHeader = "X-User-ID"

// RequireUser puts the gateway-verified identity on the request context and
// rejects requests that arrive without one.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(UserIDHeader))
		if userID == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{
				"error":   "UNAUTHENTICATED",
				"message": auth.ErrUnauthenticated.Error(),
			})
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), userID)))
	})
}
