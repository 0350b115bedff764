// Package route holds HTTP path helpers shared by dragon.arena services.
package route

import (
	"net/http"
	"strings"
)

// Canonical returns path without trailing "/" characters. The root path
// stays "/".
func Canonical(path string) string {
	canonical := strings.TrimRight(path, "/")
	if canonical == "" {
		return "/"
	}
	return canonical
}

// CanonicalUnder redirects requests below prefix whose path ends in "/" to
// the trimmed path. Reads get 301; other methods get 308 so the body and
// method survive the redirect. Paths outside prefix pass through untouched.
func CanonicalUnder(prefix string, next http.Handler) http.Handler {
	prefix = Canonical(prefix)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if path != prefix && !strings.HasPrefix(path, prefix+"/") {
			next.ServeHTTP(w, r)
			return
		}
		canonical := Canonical(path)
		if canonical == path {
			next.ServeHTTP(w, r)
			return
		}

		target := canonical
		if r.URL.RawQuery != "" {
			target += "?" + r.URL.RawQuery
		}
		status := http.StatusPermanentRedirect
		if r.Method == http.MethodGet || r.Method == http.MethodHead {
			status = http.StatusMovedPermanently
		}
		http.Redirect(w, r, target, status)
	})
}
