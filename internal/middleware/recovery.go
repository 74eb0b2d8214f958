package middleware

import (
	"log"
	"net/http"
	"runtime/debug"
)

// Recovery converts handler panics into a 500 response. The dispatch path
// has its own per-batch panic containment; this is the outer net for
// everything else.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				org := r.Header.Get("X-Org-ID")
				log.Printf("PANIC: %s %s (org=%s): %v\n%s", r.Method, r.URL.Path, org, err, debug.Stack())

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"error":{"code":"INTERNAL_ERROR","message":"An internal error occurred"}}`))
			}
		}()

		next.ServeHTTP(w, r)
	})
}
