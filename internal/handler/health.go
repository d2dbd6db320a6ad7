package handler

import (
	"net/http"

	"lpservice/internal/dto"
)

const (
	ServiceName = "License Plate Recognition API"
	Version     = "1.0.0"
)

// HealthHandler reports readiness of the models and the camera.
func HealthHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ready := svc.Ready()
		status := "ok"
		if !ready {
			status = "error"
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(dto.Health{
			Status:  status,
			Service: ServiceName,
			Version: Version,
			Ready:   ready,
			Camera: dto.CameraHealth{
				Supported: svc.CameraSupported(),
				Active:    svc.CameraStatus().Active,
			},
		})
	}
}
