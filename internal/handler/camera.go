package handler

import (
	"net/http"

	"lpservice/internal/dto"
	"lpservice/internal/logger"
	"lpservice/internal/service"
	"lpservice/internal/service/camera"
)

func cameraState(message string, status camera.Status) dto.CameraState {
	return dto.CameraState{
		Message:         message,
		Active:          status.Active,
		HasFrame:        status.HasFrame,
		LastCaptureTime: status.LastCaptureTime,
	}
}

// StartCameraHandler opens the camera session.
func StartCameraHandler(svc Service, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		message, err := svc.StartCamera()
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeData(w, cameraState(message, svc.CameraStatus()))
	}
}

// StopCameraHandler releases the camera session.
func StopCameraHandler(svc Service, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		message, err := svc.StopCamera()
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeData(w, cameraState(message, svc.CameraStatus()))
	}
}

func CameraStatusHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeData(w, cameraState("", svc.CameraStatus()))
	}
}

// CameraPreviewHandler returns a fresh frame as a JPEG data URL.
func CameraPreviewHandler(svc Service, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot, err := svc.Preview()
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeData(w, dto.PreviewData{
			ImageData: service.DataURL("image/jpeg", snapshot.JPEG),
			Timestamp: snapshot.At,
		})
	}
}
