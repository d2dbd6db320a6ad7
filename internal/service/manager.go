// Package service ties the recognition pipeline, the camera session, the
// temp-file store and the preview hub together behind the operations the
// HTTP layer exposes.
package service

import (
	"context"
	"encoding/base64"
	"time"

	jsoniter "github.com/json-iterator/go"

	"lpservice/internal/apperr"
	"lpservice/internal/logger"
	"lpservice/internal/recognition"
	"lpservice/internal/service/camera"
	"lpservice/internal/service/storage"
	"lpservice/internal/service/websocket"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Frame is the image type flowing through the manager.
type Frame[F any] interface {
	Crop(box recognition.BoundingBox) (F, error)
	Clone() F
	Close() error
	EncodeJPEG() ([]byte, error)
}

// Snapshot is an encoded camera frame.
type Snapshot struct {
	JPEG []byte
	At   time.Time
}

// CameraRecognition is the outcome of recognizing a fresh camera frame.
type CameraRecognition struct {
	Result   recognition.Result
	Snapshot Snapshot
}

// PreviewMessage is pushed to preview viewers.
type PreviewMessage struct {
	ImageData string    `json:"imageData"`
	Timestamp time.Time `json:"timestamp"`
}

type Manager[F Frame[F]] struct {
	pipeline        *recognition.Pipeline[F]
	camera          *camera.Manager[F]
	tempStore       *storage.TempStore
	hubService      *websocket.HubService
	cameraSupported bool
	previewInterval time.Duration
	logger          *logger.Logger
}

type Options struct {
	CameraSupported bool
	PreviewInterval time.Duration
}

func NewManager[F Frame[F]](pipeline *recognition.Pipeline[F], camera *camera.Manager[F], tempStore *storage.TempStore, hubService *websocket.HubService, opts Options, logger *logger.Logger) *Manager[F] {
	return &Manager[F]{
		pipeline:        pipeline,
		camera:          camera,
		tempStore:       tempStore,
		hubService:      hubService,
		cameraSupported: opts.CameraSupported,
		previewInterval: opts.PreviewInterval,
		logger:          logger,
	}
}

func (m *Manager[F]) Ready() bool {
	return m.pipeline.Ready()
}

func (m *Manager[F]) CameraSupported() bool {
	return m.cameraSupported
}

func (m *Manager[F]) Hub() *websocket.HubService {
	return m.hubService
}

// RecognizeImage stores the encoded image in a temp file, recognizes it and
// removes the file again.
func (m *Manager[F]) RecognizeImage(ctx context.Context, data []byte, ext string) recognition.Result {
	if !m.Ready() {
		return recognition.Failure(apperr.ServiceNotReady, "recognition service not ready")
	}

	path, err := m.tempStore.Save(data, ext)
	if err != nil {
		m.logger.Error("Could not store upload: %v", err)
		return recognition.Result{Err: apperr.Wrap(apperr.InternalError, "could not store image", err)}
	}
	defer m.tempStore.Remove(path)

	return m.pipeline.RecognizeFromPath(ctx, path)
}

// RecognizeCamera captures a frame from the active session and recognizes it.
// Camera failures are returned as errors; recognition outcomes, good or bad,
// are in the result.
func (m *Manager[F]) RecognizeCamera(ctx context.Context) (CameraRecognition, error) {
	if !m.Ready() {
		return CameraRecognition{}, apperr.New(apperr.ServiceNotReady, "recognition service not ready")
	}
	if err := m.checkCamera(); err != nil {
		return CameraRecognition{}, err
	}

	capture, err := m.camera.GetFrame()
	if err != nil {
		return CameraRecognition{}, err
	}
	defer capture.Frame.Close()

	result := m.pipeline.Recognize(ctx, capture.Frame)

	out := CameraRecognition{Result: result, Snapshot: Snapshot{At: capture.At}}
	if result.OK() {
		jpeg, err := capture.Frame.EncodeJPEG()
		if err != nil {
			m.logger.Warning("Could not encode camera frame: %v", err)
		}
		out.Snapshot.JPEG = jpeg
	}
	return out, nil
}

func (m *Manager[F]) StartCamera() (string, error) {
	if err := m.checkCamera(); err != nil {
		return "", err
	}
	return m.camera.Start()
}

func (m *Manager[F]) StopCamera() (string, error) {
	return m.camera.Stop()
}

func (m *Manager[F]) CameraStatus() camera.Status {
	return m.camera.Status()
}

// Preview captures a fresh frame and returns it encoded.
func (m *Manager[F]) Preview() (Snapshot, error) {
	if err := m.checkCamera(); err != nil {
		return Snapshot{}, err
	}

	capture, err := m.camera.GetFrame()
	if err != nil {
		return Snapshot{}, err
	}
	defer capture.Frame.Close()

	jpeg, err := capture.Frame.EncodeJPEG()
	if err != nil {
		return Snapshot{}, apperr.Wrap(apperr.InternalError, "could not encode frame", err)
	}
	return Snapshot{JPEG: jpeg, At: capture.At}, nil
}

// StreamPreview pushes a frame to the preview viewers on every tick while
// the camera is active and somebody is watching. It returns when ctx is done.
func (m *Manager[F]) StreamPreview(ctx context.Context) {
	if m.previewInterval <= 0 {
		return
	}
	ticker := time.NewTicker(m.previewInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if m.hubService.ClientCount() == 0 || !m.camera.Status().Active {
				continue
			}
			if err := m.pushPreview(); err != nil {
				m.logger.Debug("Preview frame skipped: %v", err)
			}
		}
	}
}

func (m *Manager[F]) pushPreview() error {
	snapshot, err := m.Preview()
	if err != nil {
		return err
	}

	message, err := json.Marshal(PreviewMessage{
		ImageData: DataURL("image/jpeg", snapshot.JPEG),
		Timestamp: snapshot.At,
	})
	if err != nil {
		return err
	}
	m.hubService.Broadcast(message)
	return nil
}

// Close releases the camera during shutdown.
func (m *Manager[F]) Close() error {
	return m.camera.Close()
}

func (m *Manager[F]) checkCamera() error {
	if !m.cameraSupported {
		return apperr.New(apperr.CameraUnsupported, "camera is not available on this platform")
	}
	return nil
}

// DataURL encodes data as a base64 data URL of the given MIME type.
func DataURL(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
