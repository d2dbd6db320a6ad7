package dto

import (
	"time"

	jsoniter "github.com/json-iterator/go"
)

// TimestampLayout is the local ISO-8601 layout used in responses.
const TimestampLayout = "2006-01-02T15:04:05.000000"

// ImageMeta describes the image a recognition was run on.
type ImageMeta struct {
	MimeType string `json:"mimeType"`
	Size     int    `json:"size"`
	Filename string `json:"filename,omitempty"`
}

// RecognitionData is the payload of a successful recognition.
type RecognitionData struct {
	LicensePlate string     `json:"licensePlate"`
	Confidence   float64    `json:"confidence"`
	Timestamp    time.Time  `json:"timestamp"`
	ImageData    string     `json:"imageData,omitempty"`
	ImageMeta    *ImageMeta `json:"imageMeta,omitempty"`
}

// MarshalJSON formats Timestamp with TimestampLayout.
func (d RecognitionData) MarshalJSON() ([]byte, error) {
	type Alias RecognitionData
	return jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(&struct {
		Timestamp string `json:"timestamp"`
		Alias
	}{
		Timestamp: d.Timestamp.Format(TimestampLayout),
		Alias:     (Alias)(d),
	})
}
