package handler

import (
	"net/http"
	"slices"

	"github.com/gorilla/websocket"

	"lpservice/internal/apperr"
	"lpservice/internal/config"
	"lpservice/internal/logger"
)

func newUpgrader(cfg *config.Config) websocket.Upgrader {
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" ||
				slices.Contains(cfg.AllowedOrigins, "*") ||
				slices.Contains(cfg.AllowedOrigins, origin)
		},
	}
}

// CameraStreamHandler registers a websocket viewer for the live preview.
// Frames are pushed by the service manager while the camera is active.
func CameraStreamHandler(svc Service, cfg *config.Config, logger *logger.Logger) http.HandlerFunc {
	upgrader := newUpgrader(cfg)

	return func(w http.ResponseWriter, r *http.Request) {
		if !svc.CameraSupported() {
			writeError(w, logger, apperr.New(apperr.CameraUnsupported, "camera is not available on this platform"))
			return
		}

		connection, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("WebSocket upgrade error: %v", err)
			return
		}

		hub := svc.Hub()
		hub.Register(connection)
		defer hub.Unregister(connection)

		for {
			if _, _, err := connection.ReadMessage(); err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					logger.Info("Preview viewer disconnected")
				} else {
					logger.Warning("Preview viewer disconnected with error: %v", err)
				}
				return
			}
		}
	}
}
