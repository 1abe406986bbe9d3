package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/mcoot/netplay-go/internal/api/apierr"
	"github.com/mcoot/netplay-go/internal/model"
)

// AdminTokenHeader carries the shared admin secret
const AdminTokenHeader = "X-Admin-Token"

// Admin creates middleware guarding endpoints behind a shared admin token,
// compared in constant time. An empty configured token disables the guarded
// endpoints outright
func Admin(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				apierr.WriteError(w, model.ErrForbidden)
				return
			}

			supplied := r.Header.Get(AdminTokenHeader)
			if subtle.ConstantTimeCompare([]byte(supplied), []byte(token)) != 1 {
				apierr.WriteError(w, model.ErrForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
