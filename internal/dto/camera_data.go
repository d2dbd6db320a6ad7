package dto

import "time"

// CameraState is returned by the camera start, stop and status endpoints.
type CameraState struct {
	Message         string     `json:"message,omitempty"`
	Active          bool       `json:"active"`
	HasFrame        bool       `json:"hasFrame"`
	LastCaptureTime *time.Time `json:"lastCaptureTime"`
}

// PreviewData is a single camera frame as a data URL.
type PreviewData struct {
	ImageData string    `json:"imageData"`
	Timestamp time.Time `json:"timestamp"`
}
