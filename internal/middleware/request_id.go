package middleware

import (
	"net/http"

	"github.com/BerylCAtieno/identity-ocr-api/internal/utils"
)

const RequestIDHeader = "X-Request-Id"

// RequestID propagates or assigns a request id, stores it on the context and
// echoes it in the response header.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if id == "" || len(id) > 128 {
				id = utils.GenerateID()
			}
			w.Header().Set(RequestIDHeader, id)
			next.ServeHTTP(w, r.WithContext(utils.WithRequestID(r.Context(), id)))
		})
	}
}
