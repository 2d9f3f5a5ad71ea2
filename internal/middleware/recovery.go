package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	"github.com/BerylCAtieno/identity-ocr-api/internal/models"
	"github.com/BerylCAtieno/identity-ocr-api/internal/utils"
)

// Recovery turns a panic into a 500 {"message": ...} response.
func Recovery(logger *utils.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				appErr := utils.NewInternalError(utils.DefaultErrorMessage)
				logger.Error("panic",
					"request_id", utils.RequestIDFromContext(r.Context()),
					"error", rec,
					"stack", string(debug.Stack()),
					"method", r.Method,
					"path", r.URL.Path,
					"kind", appErr.Kind)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(appErr.StatusCode)
				json.NewEncoder(w).Encode(models.ErrorResponse{Message: appErr.Message})
			}()
			next.ServeHTTP(w, r)
		})
	}
}
