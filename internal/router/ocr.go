package router

import (
	"net/http"

	"github.com/BerylCAtieno/identity-ocr-api/internal/handlers"
	"github.com/BerylCAtieno/identity-ocr-api/internal/middleware"
	"github.com/BerylCAtieno/identity-ocr-api/internal/services"
	"github.com/BerylCAtieno/identity-ocr-api/internal/utils"

	"github.com/gorilla/mux"
)

type Options struct {
	MaxRequestBytes  int64
	CORSAllowOrigins []string
}

func NewRouter(ocrService services.OCRService, opts Options, logger *utils.Logger) http.Handler {
	r := mux.NewRouter()

	// Middlewares
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(opts.CORSAllowOrigins))

	ocrHandler := handlers.NewOCRHandler(ocrService, opts.MaxRequestBytes, logger)

	// Routes
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/health", ocrHandler.Health).Methods(http.MethodGet)

	// OPTIONS is routed so the CORS middleware can answer preflight requests.
	api.HandleFunc("/ocr", ocrHandler.Extract).Methods(http.MethodPost, http.MethodOptions)

	return r
}
