// Package vision wraps the OpenCV types used by the service: decoded frames
// and the attached camera device.
package vision

import (
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"lpservice/internal/recognition"
)

// Frame is a decoded BGR image. Every Frame must be closed.
type Frame struct {
	mat gocv.Mat
}

// Decode decodes an encoded image (JPEG, PNG, BMP...).
func Decode(data []byte) (*Frame, error) {
	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if mat.Empty() {
		mat.Close()
		return nil, errors.New("decoded image is empty")
	}
	return &Frame{mat: mat}, nil
}

// Load reads and decodes the image file at path.
func Load(path string) (*Frame, error) {
	mat := gocv.IMRead(path, gocv.IMReadColor)
	if mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("could not read image %s", path)
	}
	return &Frame{mat: mat}, nil
}

// FromMat takes ownership of mat.
func FromMat(mat gocv.Mat) *Frame {
	return &Frame{mat: mat}
}

func (f *Frame) Mat() gocv.Mat {
	return f.mat
}

func (f *Frame) Width() int {
	return f.mat.Cols()
}

func (f *Frame) Height() int {
	return f.mat.Rows()
}

// Crop copies the region under box, clamped to the frame.
func (f *Frame) Crop(box recognition.BoundingBox) (*Frame, error) {
	rect := image.Rect(box.X, box.Y, box.X+box.Width, box.Y+box.Height).
		Intersect(image.Rect(0, 0, f.Width(), f.Height()))
	if rect.Empty() {
		return nil, fmt.Errorf("box %+v lies outside the %dx%d frame", box, f.Width(), f.Height())
	}

	region := f.mat.Region(rect)
	defer region.Close()
	return &Frame{mat: region.Clone()}, nil
}

func (f *Frame) Clone() *Frame {
	return &Frame{mat: f.mat.Clone()}
}

func (f *Frame) Close() error {
	return f.mat.Close()
}

// EncodeJPEG returns the frame as JPEG bytes.
func (f *Frame) EncodeJPEG() ([]byte, error) {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, f.mat)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	defer buf.Close()

	encoded := make([]byte, buf.Len())
	copy(encoded, buf.GetBytes())
	return encoded, nil
}
