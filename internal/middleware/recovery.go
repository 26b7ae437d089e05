package middleware

import (
	"log"
	"net/http"
	"runtime/debug"

	"resto-backend/pkg/utils"
)

// PanicRecovery turns handler panics into a 500 instead of killing the
// connection. The stack goes to the log, never to the client.
func PanicRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("[Recovery] panic on %s %s: %v\n%s", r.Method, r.URL.Path, err, debug.Stack())
				utils.RespondError(w, http.StatusInternalServerError, "Internal server error")
			}
		}()

		next.ServeHTTP(w, r)
	})
}
