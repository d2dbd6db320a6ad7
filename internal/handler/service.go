package handler

import (
	"context"

	"lpservice/internal/recognition"
	"lpservice/internal/service"
	"lpservice/internal/service/camera"
	"lpservice/internal/service/websocket"
)

// Service is what the handlers need from the service manager.
type Service interface {
	Ready() bool
	CameraSupported() bool
	RecognizeImage(ctx context.Context, data []byte, ext string) recognition.Result
	RecognizeCamera(ctx context.Context) (service.CameraRecognition, error)
	StartCamera() (string, error)
	StopCamera() (string, error)
	CameraStatus() camera.Status
	Preview() (service.Snapshot, error)
	Hub() *websocket.HubService
}
