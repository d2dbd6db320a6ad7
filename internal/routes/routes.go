package routes

import (
	"net/http"

	"lpservice/internal/config"
	"lpservice/internal/handler"
	"lpservice/internal/logger"
	"lpservice/internal/middleware"
)

// SetupRoutes registers the API endpoints and wraps the mux with the
// request ID, access log, recovery and CORS middleware. Recognition and
// camera capture endpoints are rate limited per client.
func SetupRoutes(svc handler.Service, cfg *config.Config, logger *logger.Logger) http.Handler {
	mux := http.NewServeMux()
	limited := middleware.RateLimit(cfg.RateLimit, cfg.RateBurst, logger)

	mux.HandleFunc("GET /health", handler.HealthHandler(svc))

	// Recognition endpoints
	mux.Handle("POST /api/recognize", limited(handler.RecognizeHandler(svc, cfg, logger)))
	mux.Handle("POST /api/recognize/camera", limited(handler.RecognizeCameraHandler(svc, logger)))

	// Camera endpoints
	mux.HandleFunc("POST /api/camera/start", handler.StartCameraHandler(svc, logger))
	mux.HandleFunc("POST /api/camera/stop", handler.StopCameraHandler(svc, logger))
	mux.HandleFunc("GET /api/camera/status", handler.CameraStatusHandler(svc))
	mux.Handle("GET /api/camera/preview", limited(handler.CameraPreviewHandler(svc, logger)))
	mux.HandleFunc("GET /api/camera/stream", handler.CameraStreamHandler(svc, cfg, logger))

	return middleware.Chain(mux,
		middleware.RequestID,
		middleware.Logging(logger),
		middleware.Recover(logger),
		middleware.CORS(cfg.AllowedOrigins),
	)
}
