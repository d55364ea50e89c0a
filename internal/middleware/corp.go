package middleware

import "net/http"

// CrossOriginResource sets Cross-Origin-Resource-Policy: cross-origin so the
// frontend, served from another origin, can embed artifacts and API responses.
func CrossOriginResource(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cross-Origin-Resource-Policy", "cross-origin")
		next.ServeHTTP(w, r)
	})
}
