// Package camera owns the single capture session of the process.
package camera

import (
	"runtime"
	"sync"
	"time"

	"lpservice/internal/apperr"
	"lpservice/internal/config"
	"lpservice/internal/logger"
)

// Frame is what the session needs from a captured image.
type Frame[F any] interface {
	Clone() F
	Close() error
}

// Device is an opened camera.
type Device[F any] interface {
	Read() (F, error)
	Close() error
}

// OpenFunc acquires the camera hardware, warm-up included. A device returned
// together with an error is released by the caller.
type OpenFunc[F any] func() (Device[F], error)

// Capture is a frame and the time it was taken.
type Capture[F any] struct {
	Frame F
	At    time.Time
}

type Status struct {
	Active          bool       `json:"active"`
	HasFrame        bool       `json:"hasFrame"`
	LastCaptureTime *time.Time `json:"lastCaptureTime"`
}

// Messages returned by Start and Stop.
const (
	MessageStarted        = "camera started"
	MessageAlreadyRunning = "camera already running"
	MessageStopped        = "camera stopped"
	MessageNotActive      = "camera not active"
)

// Supported reports whether a camera can be used under the configured mode.
// In auto mode only ARM boards, where the camera module is attached, qualify.
func Supported(mode string) bool {
	switch mode {
	case config.CameraModeOn:
		return true
	case config.CameraModeOff:
		return false
	}
	return runtime.GOARCH == "arm" || runtime.GOARCH == "arm64"
}

// Manager is the camera session state machine. The session is either closed
// (no device) or active (device held). Every operation holds the session lock
// for its whole duration, so starts, stops and captures never interleave.
type Manager[F Frame[F]] struct {
	open   OpenFunc[F]
	logger *logger.Logger

	mu          sync.Mutex
	device      Device[F]
	lastFrame   F
	hasFrame    bool
	lastCapture time.Time
}

func NewManager[F Frame[F]](open OpenFunc[F], logger *logger.Logger) *Manager[F] {
	return &Manager[F]{open: open, logger: logger}
}

// Start acquires the camera. Starting an active session does nothing.
func (m *Manager[F]) Start() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device != nil {
		return MessageAlreadyRunning, nil
	}

	device, err := m.open()
	if err != nil {
		if device != nil {
			if cerr := device.Close(); cerr != nil {
				m.logger.Warning("Error releasing partially opened camera: %v", cerr)
			}
		}
		m.logger.Error("Failed to start camera: %v", err)
		return "", apperr.Wrap(apperr.CameraInitFailed, "failed to start camera", err)
	}

	m.device = device
	m.logger.Info("Camera started")
	return MessageStarted, nil
}

// GetFrame captures a frame from the active session. The caller owns the
// returned frame; the session keeps its own copy as the last frame.
func (m *Manager[F]) GetFrame() (Capture[F], error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device == nil {
		return Capture[F]{}, apperr.New(apperr.CameraNotActive, "camera not active, start it first")
	}

	frame, err := m.device.Read()
	if err != nil {
		m.logger.Warning("Camera capture failed: %v", err)
		return Capture[F]{}, apperr.Wrap(apperr.CameraCaptureFailed, "failed to capture frame", err)
	}

	now := time.Now()
	m.clearFrame()
	m.lastFrame = frame.Clone()
	m.hasFrame = true
	m.lastCapture = now

	return Capture[F]{Frame: frame, At: now}, nil
}

// LastFrame returns a copy of the most recent capture, if any.
func (m *Manager[F]) LastFrame() (Capture[F], bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.hasFrame {
		return Capture[F]{}, false
	}
	return Capture[F]{Frame: m.lastFrame.Clone(), At: m.lastCapture}, true
}

// Stop releases the camera. Release errors are logged and the session ends
// closed regardless. Stopping a closed session does nothing.
func (m *Manager[F]) Stop() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device == nil {
		return MessageNotActive, nil
	}

	if err := m.device.Close(); err != nil {
		m.logger.Warning("Error releasing camera: %v", err)
	}
	m.device = nil
	m.clearFrame()
	m.lastCapture = time.Time{}

	m.logger.Info("Camera stopped")
	return MessageStopped, nil
}

func (m *Manager[F]) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	status := Status{Active: m.device != nil, HasFrame: m.hasFrame}
	if !m.lastCapture.IsZero() {
		at := m.lastCapture
		status.LastCaptureTime = &at
	}
	return status
}

// Close stops the session during shutdown.
func (m *Manager[F]) Close() error {
	_, err := m.Stop()
	return err
}

func (m *Manager[F]) clearFrame() {
	if !m.hasFrame {
		return
	}
	if err := m.lastFrame.Close(); err != nil {
		m.logger.Warning("Error releasing cached frame: %v", err)
	}
	var zero F
	m.lastFrame = zero
	m.hasFrame = false
}
