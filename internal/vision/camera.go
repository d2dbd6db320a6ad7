package vision

import (
	"errors"
	"fmt"
	"time"

	"gocv.io/x/gocv"
)

// Camera is an opened capture device.
type Camera struct {
	capture *gocv.VideoCapture
}

// OpenCamera opens device, requests the given resolution and reads frames
// for the warmup period so exposure settles before the first real capture.
// Nothing stays open when it fails.
func OpenCamera(device, width, height int, warmup time.Duration) (*Camera, error) {
	capture, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("failed to open camera %d: %w", device, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("camera %d did not open", device)
	}

	capture.Set(gocv.VideoCaptureFrameWidth, float64(width))
	capture.Set(gocv.VideoCaptureFrameHeight, float64(height))

	camera := &Camera{capture: capture}
	if err := camera.warmUp(warmup); err != nil {
		camera.Close()
		return nil, err
	}
	return camera, nil
}

func (c *Camera) warmUp(d time.Duration) error {
	mat := gocv.NewMat()
	defer mat.Close()

	deadline := time.Now().Add(d)
	for {
		if !c.capture.Read(&mat) || mat.Empty() {
			return errors.New("camera returned no frame during warm-up")
		}
		if !time.Now().Before(deadline) {
			return nil
		}
	}
}

// Read captures one frame. The caller owns the returned frame.
func (c *Camera) Read() (*Frame, error) {
	mat := gocv.NewMat()
	if !c.capture.Read(&mat) {
		mat.Close()
		return nil, errors.New("camera read failed")
	}
	if mat.Empty() {
		mat.Close()
		return nil, errors.New("camera returned an empty frame")
	}
	return FromMat(mat), nil
}

func (c *Camera) Close() error {
	return c.capture.Close()
}
