package web

import (
	"crypto/subtle"
	"net/http"
	"slices"

	"moonday/internal/config"
)

// credentials returns the configured basic auth pair. Auth stays off unless
// both halves are set.
func credentials(cfg *config.Config) (user, pass string, ok bool) {
	if cfg == nil || cfg.BasicAuth == nil {
		return "", "", false
	}
	user, pass = cfg.BasicAuth.Username, cfg.BasicAuth.Password
	return user, pass, user != "" && pass != ""
}

func requireBasicAuth(next http.Handler, user, pass string, open ...string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if slices.Contains(open, r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if ok && equalConstantTime(u, user) && equalConstantTime(p, pass) {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("WWW-Authenticate", `Basic realm="Moonday", charset="UTF-8"`)
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
	})
}

func equalConstantTime(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
