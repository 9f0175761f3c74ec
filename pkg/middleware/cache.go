package middleware

import "net/http"

// NoStore marks responses as private and uncacheable. Cart and checkout
// replies are specific to one session.
func NoStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store, private")
		next.ServeHTTP(w, r)
	})
}
